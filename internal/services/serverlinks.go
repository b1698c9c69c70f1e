package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"ptero-discord-admin/internal/db/repository"
	apperrors "ptero-discord-admin/internal/errors"
	"ptero-discord-admin/internal/models"
)

// ErrMaxServersReached is returned by Link when the user's quota is full.
// The check runs before any panel API call.
var ErrMaxServersReached = fmt.Errorf("maximum number of linked servers reached")

// ServerLinkService manages the per-user link cache between Discord users
// and panel servers, and enforces the max_servers quota.
type ServerLinkService struct {
	servers *repository.ServerRepository
	users   *repository.UserRepository
	audit   *AuditService
	logger  *logrus.Logger
}

// NewServerLinkService creates a new server link service
func NewServerLinkService(
	servers *repository.ServerRepository,
	users *repository.UserRepository,
	audit *AuditService,
	logger *logrus.Logger,
) *ServerLinkService {
	return &ServerLinkService{
		servers: servers,
		users:   users,
		audit:   audit,
		logger:  logger,
	}
}

// CheckQuota verifies the user may link one more server. Called before any
// panel API call; a quota failure is audited as a failed link attempt.
// Re-linking an already linked server is always allowed.
func (s *ServerLinkService) CheckQuota(ctx context.Context, guildID, userID, identifier string) error {
	cfg, err := s.users.Get(ctx, guildID, userID)
	if err != nil {
		return err
	}
	if cfg == nil {
		return apperrors.ErrNotConfigured
	}

	existing, err := s.servers.Get(ctx, guildID, userID, identifier)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	count, err := s.servers.CountByUser(ctx, guildID, userID)
	if err != nil {
		return err
	}
	if count >= cfg.MaxServers {
		s.recordLink(ctx, guildID, userID, identifier, models.ResultFailure,
			fmt.Sprintf("quota reached: %d/%d", count, cfg.MaxServers))
		return ErrMaxServersReached
	}
	return nil
}

// Link records a panel server as managed by the user, enforcing the user's
// max_servers quota first. Re-linking an already linked server only
// refreshes it and never counts against the quota.
func (s *ServerLinkService) Link(ctx context.Context, guildID, userID, identifier, name string) error {
	if err := s.CheckQuota(ctx, guildID, userID, identifier); err != nil {
		return err
	}

	if err := s.servers.Link(ctx, &models.ServerLink{
		GuildID:          guildID,
		UserID:           userID,
		ServerIdentifier: identifier,
		FriendlyName:     name,
	}); err != nil {
		return err
	}

	return s.recordLink(ctx, guildID, userID, identifier, models.ResultSuccess, "")
}

// Unlink removes a linked server; idempotent.
func (s *ServerLinkService) Unlink(ctx context.Context, guildID, userID, identifier string) error {
	if err := s.servers.Unlink(ctx, guildID, userID, identifier); err != nil {
		return err
	}
	return s.audit.Record(ctx, &models.AuditEntry{
		GuildID: guildID,
		UserID:  userID,
		Action:  models.ActionServerUnlink,
		Target:  identifier,
		Result:  models.ResultSuccess,
	})
}

// List returns the user's linked servers
func (s *ServerLinkService) List(ctx context.Context, guildID, userID string) ([]*models.ServerLink, error) {
	return s.servers.ListByUser(ctx, guildID, userID)
}

// Count returns how many servers the user has linked
func (s *ServerLinkService) Count(ctx context.Context, guildID, userID string) (int, error) {
	return s.servers.CountByUser(ctx, guildID, userID)
}

func (s *ServerLinkService) recordLink(ctx context.Context, guildID, userID, identifier, result, detail string) error {
	return s.audit.Record(ctx, &models.AuditEntry{
		GuildID: guildID,
		UserID:  userID,
		Action:  models.ActionServerLink,
		Target:  identifier,
		Result:  result,
		Detail:  detail,
	})
}
