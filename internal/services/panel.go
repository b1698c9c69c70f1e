package services

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"

	"ptero-discord-admin/internal/constants"
	"ptero-discord-admin/internal/models"
	"ptero-discord-admin/pkg/panelclient"
)

// PanelService builds panel API clients from stored credentials. Server
// listings are cached briefly per user; decrypted credentials are never
// cached.
type PanelService struct {
	credentials *CredentialService
	listCache   *cache.Cache
	logger      *logrus.Logger
}

// NewPanelService creates a new panel service
func NewPanelService(credentials *CredentialService, logger *logrus.Logger) *PanelService {
	return &PanelService{
		credentials: credentials,
		listCache:   cache.New(constants.CacheExpiration*time.Minute, constants.CacheCleanupInterval*time.Minute),
		logger:      logger,
	}
}

// ClientFor returns a panel client for the user's stored credentials.
// Returns ErrNotConfigured or ErrDecryption from the credential store.
func (s *PanelService) ClientFor(ctx context.Context, guildID, userID string) (*panelclient.Client, error) {
	creds, err := s.credentials.Get(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}
	return panelclient.NewClient(creds.PanelURL, creds.APIKey, s.logger), nil
}

// ListServers returns the user's panel servers, served from a short-lived
// cache when possible.
func (s *PanelService) ListServers(ctx context.Context, guildID, userID string) ([]models.PanelServer, error) {
	key := listCacheKey(guildID, userID)
	if cached, found := s.listCache.Get(key); found {
		if servers, ok := cached.([]models.PanelServer); ok {
			return servers, nil
		}
	}

	client, err := s.ClientFor(ctx, guildID, userID)
	if err != nil {
		return nil, err
	}

	servers, err := client.ListServers(ctx)
	if err != nil {
		return nil, err
	}

	s.listCache.Set(key, servers, cache.DefaultExpiration)
	return servers, nil
}

// InvalidateServers drops the user's cached server listing
func (s *PanelService) InvalidateServers(guildID, userID string) {
	s.listCache.Delete(listCacheKey(guildID, userID))
}

func listCacheKey(guildID, userID string) string {
	return fmt.Sprintf("servers_%s_%s", guildID, userID)
}
