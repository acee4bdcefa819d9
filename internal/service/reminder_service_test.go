package service

import (
	"testing"
	"time"

	"medicare-backend/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedAt(startsAt time.Time) entity.Appointment {
	return entity.Appointment{
		ID:        uuid.New(),
		PatientID: uuid.New(),
		DoctorID:  uuid.New(),
		Date:      time.Date(startsAt.Year(), startsAt.Month(), startsAt.Day(), 0, 0, 0, 0, time.UTC),
		Time:      startsAt.Format("15:04"),
		Status:    entity.AppointmentStatusConfirmed,
		Patient:   entity.User{Name: "Alice"},
		Doctor:    entity.User{Name: "Dr. Bob"},
	}
}

func TestDueReminders(t *testing.T) {
	now := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)

	t.Run("one hour window fires for both parties", func(t *testing.T) {
		appointments := []entity.Appointment{confirmedAt(now.Add(90 * time.Minute))}

		due := DueReminders(appointments, now)
		require.Len(t, due, 2)

		recipients := []string{due[0].Recipient, due[1].Recipient}
		assert.Contains(t, recipients, "Alice")
		assert.Contains(t, recipients, "Dr. Bob")
		assert.Equal(t, time.Hour, due[0].Window)
	})

	t.Run("24 hour window fires", func(t *testing.T) {
		appointments := []entity.Appointment{confirmedAt(now.Add(24*time.Hour + 30*time.Minute))}

		due := DueReminders(appointments, now)
		require.Len(t, due, 2)
		assert.Equal(t, 24*time.Hour, due[0].Window)
	})

	t.Run("nothing due outside the windows", func(t *testing.T) {
		appointments := []entity.Appointment{
			confirmedAt(now.Add(30 * time.Minute)),  // too close for the 1h window
			confirmedAt(now.Add(3 * time.Hour)),     // between windows
			confirmedAt(now.Add(48 * time.Hour)),    // too far out
			confirmedAt(now.Add(-2 * time.Hour)),    // already started
		}

		assert.Empty(t, DueReminders(appointments, now))
	})

	t.Run("window boundaries are half-open", func(t *testing.T) {
		exactly := []entity.Appointment{confirmedAt(now.Add(time.Hour))}
		assert.Len(t, DueReminders(exactly, now), 2, "lead == window is due")

		justUnder := []entity.Appointment{confirmedAt(now.Add(2*time.Hour - time.Minute))}
		assert.Len(t, DueReminders(justUnder, now), 2)

		atSpanEnd := []entity.Appointment{confirmedAt(now.Add(2 * time.Hour))}
		assert.Empty(t, DueReminders(atSpanEnd, now), "lead == window+span belongs to no sweep")
	})

	t.Run("unparseable time is skipped", func(t *testing.T) {
		broken := confirmedAt(now.Add(90 * time.Minute))
		broken.Time = "not-a-time"

		assert.Empty(t, DueReminders([]entity.Appointment{broken}, now))
	})
}
