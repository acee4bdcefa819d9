package entity

import "github.com/google/uuid"

// Actor is the authenticated caller, resolved once at request entry from the
// token claims. Usecases branch on Role instead of re-reading headers.
type Actor struct {
	ID    uuid.UUID
	Name  string
	Email string
	Role  string
}

func (a Actor) IsDoctor() bool {
	return a.Role == RoleDoctor
}

func (a Actor) IsPatient() bool {
	return a.Role == RolePatient
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}
