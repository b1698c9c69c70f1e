package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"ptero-discord-admin/internal/constants"
	"ptero-discord-admin/internal/db/repository"
	"ptero-discord-admin/internal/models"
)

// GuildService manages per-guild bot configuration. Reads go through a
// short-lived cache since every command dispatch needs the guild config for
// authorization.
type GuildService struct {
	guilds *repository.GuildRepository
	audit  *AuditService
	cache  *cache.Cache
	logger *logrus.Logger
}

// NewGuildService creates a new guild service
func NewGuildService(guilds *repository.GuildRepository, audit *AuditService, logger *logrus.Logger) *GuildService {
	return &GuildService{
		guilds: guilds,
		audit:  audit,
		cache:  cache.New(constants.CacheExpiration*time.Minute, constants.CacheCleanupInterval*time.Minute),
		logger: logger,
	}
}

// Setup creates or updates the guild configuration. An empty adminRoleID
// means platform administrators manage the bot.
func (s *GuildService) Setup(ctx context.Context, guildID, actorID, adminRoleID string) error {
	if err := s.guilds.Upsert(ctx, &models.GuildConfig{
		GuildID:     guildID,
		AdminRoleID: adminRoleID,
	}); err != nil {
		return err
	}
	s.cache.Delete(guildCacheKey(guildID))

	s.logger.WithField("guild_id", guildID).Info("Guild configured")

	detail := "admin role: platform administrators"
	if adminRoleID != "" {
		detail = fmt.Sprintf("admin role: %s", adminRoleID)
	}
	return s.audit.Record(ctx, &models.AuditEntry{
		GuildID: guildID,
		UserID:  actorID,
		Action:  models.ActionGuildSetup,
		Result:  models.ResultSuccess,
		Detail:  detail,
	})
}

// Get returns the guild configuration, or nil when setup has never run
func (s *GuildService) Get(ctx context.Context, guildID string) (*models.GuildConfig, error) {
	key := guildCacheKey(guildID)
	if cached, found := s.cache.Get(key); found {
		if cfg, ok := cached.(*models.GuildConfig); ok {
			return cfg, nil
		}
	}

	cfg, err := s.guilds.Get(ctx, guildID)
	if err != nil {
		return nil, err
	}
	if cfg != nil {
		s.cache.Set(key, cfg, cache.DefaultExpiration)
	}
	return cfg, nil
}

// CountUsers returns how many users have configured credentials in the guild
func (s *GuildService) CountUsers(ctx context.Context, guildID string) (int, error) {
	return s.guilds.CountUsers(ctx, guildID)
}

func guildCacheKey(guildID string) string {
	return "guild_config_" + guildID
}
