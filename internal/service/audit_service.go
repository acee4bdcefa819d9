package service

import (
	"context"

	"medicare-backend/internal/domain/entity"
	"medicare-backend/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// AuditMeta carries the request metadata recorded alongside an admin action
type AuditMeta struct {
	IPAddress string
	UserAgent string
}

// AuditService writes the append-only admin audit trail. Recording is
// best-effort: a failed write is logged and swallowed so the admin action
// itself still succeeds.
type AuditService struct {
	log          *logrus.Logger
	auditLogRepo repository.AuditLogRepository
}

func NewAuditService(log *logrus.Logger, auditLogRepo repository.AuditLogRepository) *AuditService {
	return &AuditService{
		log:          log,
		auditLogRepo: auditLogRepo,
	}
}

func (s *AuditService) Record(ctx context.Context, action string, userID *uuid.UUID, adminID uuid.UUID, details entity.JSON, meta AuditMeta) {
	entry := &entity.AuditLog{
		Action:    action,
		UserID:    userID,
		AdminID:   adminID,
		Details:   details,
		IPAddress: meta.IPAddress,
		UserAgent: meta.UserAgent,
	}

	if err := s.auditLogRepo.Create(ctx, entry); err != nil {
		s.log.Warnf("Failed to record audit log action=%s: %+v", action, err)
	}
}
