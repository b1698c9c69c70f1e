package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	apperrors "ptero-discord-admin/internal/errors"
	"ptero-discord-admin/internal/models"
)

func TestUpdatePermissionsRequiresConfiguredUser(t *testing.T) {
	env := newTestEnv(t)

	on := true
	err := env.admin.UpdatePermissions(context.Background(), "g1", "admin", "ghost", models.PermissionUpdate{
		CanManageServers: &on,
	})
	if !errors.Is(err, apperrors.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured, got %v", err)
	}
}

func TestUpdatePermissionsRejectsEmptyUpdate(t *testing.T) {
	env := newTestEnv(t)

	var validationErr *apperrors.ValidationError
	err := env.admin.UpdatePermissions(context.Background(), "g1", "admin", "u1", models.PermissionUpdate{})
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError, got %v", err)
	}
}

func TestUpdatePermissionsPersistsAndAudits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.credentials.Set(ctx, "g1", "u1", "https://panel.example.com", "key-abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	canCreate := true
	maxServers := 5
	err := env.admin.UpdatePermissions(ctx, "g1", "admin", "u1", models.PermissionUpdate{
		CanCreateUsers: &canCreate,
		MaxServers:     &maxServers,
	})
	if err != nil {
		t.Fatalf("UpdatePermissions failed: %v", err)
	}

	cfg, err := env.credentials.GetConfig(ctx, "g1", "u1")
	if err != nil || cfg == nil {
		t.Fatalf("GetConfig failed: %v", err)
	}
	if !cfg.CanCreateUsers || cfg.MaxServers != 5 {
		t.Errorf("permissions not persisted: create=%t max=%d", cfg.CanCreateUsers, cfg.MaxServers)
	}
	if !cfg.CanManageServers {
		t.Error("untouched flag changed")
	}

	entries, err := env.audit.Query(ctx, "g1", models.AuditFilter{Action: models.ActionPermissionsUpdate}, 10, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 permissions_update entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.UserID != "admin" || entry.Target != "u1" {
		t.Errorf("entry attribution wrong: actor=%s target=%s", entry.UserID, entry.Target)
	}
	if !strings.Contains(entry.Detail, "can_create_users=true") ||
		!strings.Contains(entry.Detail, "max_servers=5") {
		t.Errorf("detail missing changed fields: %q", entry.Detail)
	}
	if strings.Contains(entry.Detail, "can_manage_servers") {
		t.Errorf("detail names an unchanged field: %q", entry.Detail)
	}
}

func TestUpdatePermissionsValidatesQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.credentials.Set(ctx, "g1", "u1", "https://panel.example.com", "key-abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	var validationErr *apperrors.ValidationError
	negative := -1
	err := env.admin.UpdatePermissions(ctx, "g1", "admin", "u1", models.PermissionUpdate{
		MaxServers: &negative,
	})
	if !errors.As(err, &validationErr) {
		t.Errorf("expected ValidationError for negative quota, got %v", err)
	}
}

func TestResetUserClearsEverythingAndAuditsBothSides(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.credentials.Set(ctx, "g1", "u1", "https://panel.example.com", "key-abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := env.links.Link(ctx, "g1", "u1", "srv1", "Lobby"); err != nil {
		t.Fatalf("Link failed: %v", err)
	}

	if err := env.admin.ResetUser(ctx, "g1", "admin", "u1"); err != nil {
		t.Fatalf("ResetUser failed: %v", err)
	}

	if _, err := env.credentials.Get(ctx, "g1", "u1"); !errors.Is(err, apperrors.ErrNotConfigured) {
		t.Errorf("expected ErrNotConfigured after reset, got %v", err)
	}
	count, err := env.links.Count(ctx, "g1", "u1")
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected links removed on reset, got %d", count)
	}

	// The reset is attributed to the admin; the clear to the target.
	resets, err := env.audit.Query(ctx, "g1", models.AuditFilter{Action: models.ActionUserReset}, 10, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(resets) != 1 || resets[0].UserID != "admin" || resets[0].Target != "u1" {
		t.Errorf("unexpected user_reset entries: %+v", resets)
	}
	cleared, err := env.audit.Query(ctx, "g1", models.AuditFilter{Action: models.ActionCredentialsCleared}, 10, 0)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(cleared) != 1 || cleared[0].UserID != "u1" {
		t.Errorf("unexpected credentials_cleared entries: %+v", cleared)
	}
}

func TestListUsersScopedToGuild(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	if err := env.credentials.Set(ctx, "g1", "u1", "https://panel.example.com", "key-abc"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := env.credentials.Set(ctx, "g2", "u2", "https://panel.example.com", "key-def"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	users, err := env.admin.ListUsers(ctx, "g1")
	if err != nil {
		t.Fatalf("ListUsers failed: %v", err)
	}
	if len(users) != 1 || users[0].UserID != "u1" {
		t.Errorf("unexpected guild user list: %+v", users)
	}
}
