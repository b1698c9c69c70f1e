package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"ptero-discord-admin/internal/constants"
	"ptero-discord-admin/internal/db/repository"
	apperrors "ptero-discord-admin/internal/errors"
	"ptero-discord-admin/internal/models"
)

// AuditService records and queries privileged-action audit entries.
type AuditService struct {
	repo   *repository.AuditRepository
	logger *logrus.Logger
}

// NewAuditService creates a new audit service
func NewAuditService(repo *repository.AuditRepository, logger *logrus.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Record appends an entry. A storage failure is returned as *AuditWriteError
// so callers can surface a secondary warning; it must never abort or roll
// back the action that triggered the entry.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditEntry) error {
	if err := s.repo.Create(ctx, entry); err != nil {
		s.logger.WithFields(logrus.Fields{
			"guild_id": entry.GuildID,
			"user_id":  entry.UserID,
			"action":   entry.Action,
		}).Errorf("Audit write failed: %v", err)
		return &apperrors.AuditWriteError{Action: entry.Action, Err: err}
	}
	return nil
}

// Query returns a guild's entries newest first. The limit is clamped to the
// configured maximum; zero means the default page size.
func (s *AuditService) Query(ctx context.Context, guildID string, filter models.AuditFilter, limit, offset int) ([]*models.AuditEntry, error) {
	if limit <= 0 {
		limit = constants.DefaultAuditQueryLimit
	}
	if limit > constants.MaxAuditQueryLimit {
		limit = constants.MaxAuditQueryLimit
	}
	if offset < 0 {
		offset = 0
	}
	return s.repo.List(ctx, guildID, filter, limit, offset)
}

// RetentionCleanup deletes entries older than the cutoff and returns how
// many were removed.
func (s *AuditService) RetentionCleanup(ctx context.Context, olderThan time.Time) (int64, error) {
	deleted, err := s.repo.DeleteOld(ctx, olderThan)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.logger.Infof("Audit retention cleanup removed %d entries older than %s",
			deleted, olderThan.Format(constants.DateFormat))
	}
	return deleted, nil
}
