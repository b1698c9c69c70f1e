package services

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"

	"ptero-discord-admin/internal/crypto"
	"ptero-discord-admin/internal/db"
	"ptero-discord-admin/internal/db/repository"
)

// testEnv wires the service layer against an in-memory database, the way
// main does against the real one.
type testEnv struct {
	db          *db.DB
	cipher      *crypto.Cipher
	audit       *AuditService
	credentials *CredentialService
	links       *ServerLinkService
	admin       *AdminService
	guilds      *GuildService
	users       *repository.UserRepository
	auditRepo   *repository.AuditRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.RunMigrations(database); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	cipher, err := crypto.New("unit-test-master-secret")
	if err != nil {
		t.Fatalf("failed to create cipher: %v", err)
	}

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	users := repository.NewUserRepository(database.DB)
	servers := repository.NewServerRepository(database.DB)
	guilds := repository.NewGuildRepository(database.DB)
	auditRepo := repository.NewAuditRepository(database.DB)

	audit := NewAuditService(auditRepo, logger)
	credentials := NewCredentialService(users, servers, cipher, audit, logger)

	return &testEnv{
		db:          database,
		cipher:      cipher,
		audit:       audit,
		credentials: credentials,
		links:       NewServerLinkService(servers, users, audit, logger),
		admin:       NewAdminService(users, credentials, audit, logger),
		guilds:      NewGuildService(guilds, audit, logger),
		users:       users,
		auditRepo:   auditRepo,
	}
}
