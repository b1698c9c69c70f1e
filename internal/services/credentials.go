package services

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"ptero-discord-admin/internal/constants"
	"ptero-discord-admin/internal/crypto"
	"ptero-discord-admin/internal/db/repository"
	apperrors "ptero-discord-admin/internal/errors"
	"ptero-discord-admin/internal/models"
	"ptero-discord-admin/internal/validation"
)

// CredentialService stores per-user panel credentials encrypted at rest.
// Every mutation emits one audit entry with the panel hostname as the only
// credential-derived detail.
type CredentialService struct {
	users   *repository.UserRepository
	servers *repository.ServerRepository
	cipher  *crypto.Cipher
	audit   *AuditService
	logger  *logrus.Logger
}

// Credentials is a decrypted panel URL / API key pair. It exists only in
// memory on its way to the panel client.
type Credentials struct {
	PanelURL string
	APIKey   string
}

// NewCredentialService creates a new credential service
func NewCredentialService(
	users *repository.UserRepository,
	servers *repository.ServerRepository,
	cipher *crypto.Cipher,
	audit *AuditService,
	logger *logrus.Logger,
) *CredentialService {
	return &CredentialService{
		users:   users,
		servers: servers,
		cipher:  cipher,
		audit:   audit,
		logger:  logger,
	}
}

// Set validates, encrypts and upserts a user's credentials. The upsert
// replaces both fields in one statement, so concurrent readers never see a
// mixed pair. The returned audit error, if any, is secondary: the
// credentials were stored.
func (s *CredentialService) Set(ctx context.Context, guildID, userID, panelURL, apiKey string) error {
	normalizedURL, err := validation.ValidatePanelURL(panelURL)
	if err != nil {
		return err
	}
	if err := validation.ValidateAPIKey(apiKey); err != nil {
		return err
	}

	encryptedURL, err := s.cipher.Encrypt(normalizedURL)
	if err != nil {
		return fmt.Errorf("failed to encrypt panel URL: %w", err)
	}
	encryptedKey, err := s.cipher.Encrypt(apiKey)
	if err != nil {
		return fmt.Errorf("failed to encrypt API key: %w", err)
	}

	cfg := &models.UserConfig{
		GuildID:           guildID,
		UserID:            userID,
		EncryptedPanelURL: encryptedURL,
		EncryptedAPIKey:   encryptedKey,
		CanManageServers:  constants.DefaultCanManageServers,
		CanCreateUsers:    constants.DefaultCanCreateUsers,
		MaxServers:        constants.DefaultMaxServers,
	}
	if err := s.users.UpsertCredentials(ctx, cfg); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"guild_id": guildID,
		"user_id":  userID,
	}).Info("Stored panel credentials")

	return s.audit.Record(ctx, &models.AuditEntry{
		GuildID: guildID,
		UserID:  userID,
		Action:  models.ActionCredentialsSet,
		Result:  models.ResultSuccess,
		Detail:  fmt.Sprintf("panel host: %s", validation.RedactURL(normalizedURL)),
	})
}

// Get returns a user's decrypted credentials, or ErrNotConfigured when the
// user has none stored.
func (s *CredentialService) Get(ctx context.Context, guildID, userID string) (*Credentials, error) {
	cfg, err := s.users.Get(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, apperrors.ErrNotConfigured
	}

	panelURL, err := s.cipher.Decrypt(cfg.EncryptedPanelURL)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"guild_id": guildID,
			"user_id":  userID,
		}).Error("Failed to decrypt panel URL: key mismatch or corrupted blob")
		return nil, err
	}
	apiKey, err := s.cipher.Decrypt(cfg.EncryptedAPIKey)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"guild_id": guildID,
			"user_id":  userID,
		}).Error("Failed to decrypt API key: key mismatch or corrupted blob")
		return nil, err
	}

	return &Credentials{PanelURL: panelURL, APIKey: apiKey}, nil
}

// GetConfig returns the stored user config without decrypting anything, or
// nil when absent.
func (s *CredentialService) GetConfig(ctx context.Context, guildID, userID string) (*models.UserConfig, error) {
	return s.users.Get(ctx, guildID, userID)
}

// Clear removes a user's credentials and linked servers. Clearing an absent
// configuration is not an error.
func (s *CredentialService) Clear(ctx context.Context, guildID, userID string) error {
	if err := s.users.Delete(ctx, guildID, userID); err != nil {
		return err
	}
	if err := s.servers.DeleteByUser(ctx, guildID, userID); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"guild_id": guildID,
		"user_id":  userID,
	}).Info("Cleared panel credentials")

	return s.audit.Record(ctx, &models.AuditEntry{
		GuildID: guildID,
		UserID:  userID,
		Action:  models.ActionCredentialsCleared,
		Result:  models.ResultSuccess,
	})
}
