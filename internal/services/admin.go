package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"ptero-discord-admin/internal/db/repository"
	apperrors "ptero-discord-admin/internal/errors"
	"ptero-discord-admin/internal/models"
	"ptero-discord-admin/internal/validation"
)

// AdminService carries the admin-only mutations: capability flag updates and
// full user resets.
type AdminService struct {
	users       *repository.UserRepository
	credentials *CredentialService
	audit       *AuditService
	logger      *logrus.Logger
}

// NewAdminService creates a new admin service
func NewAdminService(
	users *repository.UserRepository,
	credentials *CredentialService,
	audit *AuditService,
	logger *logrus.Logger,
) *AdminService {
	return &AdminService{
		users:       users,
		credentials: credentials,
		audit:       audit,
		logger:      logger,
	}
}

// UpdatePermissions applies an admin-initiated capability change to a
// configured user and audits the changed fields.
func (s *AdminService) UpdatePermissions(ctx context.Context, guildID, actorID, targetID string, update models.PermissionUpdate) error {
	if update.CanManageServers == nil && update.CanCreateUsers == nil && update.MaxServers == nil {
		return &apperrors.ValidationError{Field: "permissions", Message: "no fields to update"}
	}
	if update.MaxServers != nil {
		if err := validation.ValidateMaxServers(*update.MaxServers); err != nil {
			return err
		}
	}

	updated, err := s.users.UpdatePermissions(ctx, guildID, targetID, update)
	if err != nil {
		return err
	}
	if !updated {
		return apperrors.ErrNotConfigured
	}

	s.logger.WithFields(logrus.Fields{
		"guild_id": guildID,
		"actor_id": actorID,
		"target":   targetID,
	}).Info("Updated user permissions")

	return s.audit.Record(ctx, &models.AuditEntry{
		GuildID: guildID,
		UserID:  actorID,
		Action:  models.ActionPermissionsUpdate,
		Target:  targetID,
		Result:  models.ResultSuccess,
		Detail:  describePermissionUpdate(update),
	})
}

// ResetUser clears the target's credentials and server links on behalf of an
// admin. The credential clear itself is audited under the target; the reset
// is audited under the actor.
func (s *AdminService) ResetUser(ctx context.Context, guildID, actorID, targetID string) error {
	if err := s.credentials.Clear(ctx, guildID, targetID); err != nil {
		return err
	}

	return s.audit.Record(ctx, &models.AuditEntry{
		GuildID: guildID,
		UserID:  actorID,
		Action:  models.ActionUserReset,
		Target:  targetID,
		Result:  models.ResultSuccess,
	})
}

// ListUsers returns all configured users in the guild
func (s *AdminService) ListUsers(ctx context.Context, guildID string) ([]*models.UserConfig, error) {
	return s.users.ListByGuild(ctx, guildID)
}

func describePermissionUpdate(update models.PermissionUpdate) string {
	var parts []string
	if update.CanManageServers != nil {
		parts = append(parts, fmt.Sprintf("can_manage_servers=%t", *update.CanManageServers))
	}
	if update.CanCreateUsers != nil {
		parts = append(parts, fmt.Sprintf("can_create_users=%t", *update.CanCreateUsers))
	}
	if update.MaxServers != nil {
		parts = append(parts, fmt.Sprintf("max_servers=%d", *update.MaxServers))
	}
	return strings.Join(parts, ", ")
}
