package repository

import (
	"context"
	"testing"
	"time"

	"ptero-discord-admin/internal/db"
	"ptero-discord-admin/internal/models"
)

// newTestDB opens an in-memory database with the full schema applied.
func newTestDB(t *testing.T) *db.DB {
	t.Helper()

	database, err := db.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	if err := db.RunMigrations(database); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return database
}

func TestAuditCreateAssignsIDAndTimestamp(t *testing.T) {
	repo := NewAuditRepository(newTestDB(t).DB)
	ctx := context.Background()

	entry := &models.AuditEntry{
		GuildID: "g1",
		UserID:  "u1",
		Action:  models.ActionServerPower,
		Target:  "abc123",
		Result:  models.ResultSuccess,
		Detail:  "signal: restart",
	}
	if err := repo.Create(ctx, entry); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if entry.ID == 0 {
		t.Error("expected entry ID to be assigned")
	}
	if entry.Timestamp.IsZero() {
		t.Error("expected entry timestamp to be assigned")
	}
}

func TestAuditListFilters(t *testing.T) {
	repo := NewAuditRepository(newTestDB(t).DB)
	ctx := context.Background()

	seed := []*models.AuditEntry{
		{GuildID: "g1", UserID: "u1", Action: models.ActionServerPower, Result: models.ResultSuccess},
		{GuildID: "g1", UserID: "u1", Action: models.ActionServerLink, Result: models.ResultFailure},
		{GuildID: "g1", UserID: "u2", Action: models.ActionServerPower, Result: models.ResultSuccess},
		{GuildID: "g2", UserID: "u1", Action: models.ActionServerPower, Result: models.ResultSuccess},
	}
	for _, e := range seed {
		if err := repo.Create(ctx, e); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	all, err := repo.List(ctx, "g1", models.AuditFilter{}, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 entries for g1, got %d", len(all))
	}

	byUser, err := repo.List(ctx, "g1", models.AuditFilter{UserID: "u1"}, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(byUser) != 2 {
		t.Errorf("expected 2 entries for u1, got %d", len(byUser))
	}

	byAction, err := repo.List(ctx, "g1", models.AuditFilter{Action: models.ActionServerLink}, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(byAction) != 1 || byAction[0].Result != models.ResultFailure {
		t.Errorf("unexpected action filter result: %+v", byAction)
	}

	both, err := repo.List(ctx, "g1", models.AuditFilter{UserID: "u2", Action: models.ActionServerPower}, 10, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(both) != 1 {
		t.Errorf("expected 1 entry for combined filter, got %d", len(both))
	}
}

func TestAuditListPagination(t *testing.T) {
	repo := NewAuditRepository(newTestDB(t).DB)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		err := repo.Create(ctx, &models.AuditEntry{
			GuildID: "g1", UserID: "u1",
			Action: models.ActionServerCommand, Result: models.ResultSuccess,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	first, err := repo.List(ctx, "g1", models.AuditFilter{}, 2, 0)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	second, err := repo.List(ctx, "g1", models.AuditFilter{}, 2, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected two pages of 2, got %d and %d", len(first), len(second))
	}
	// Newest first: ids strictly descending across pages.
	if !(first[0].ID > first[1].ID && first[1].ID > second[0].ID && second[0].ID > second[1].ID) {
		t.Errorf("entries not in descending id order: %d %d %d %d",
			first[0].ID, first[1].ID, second[0].ID, second[1].ID)
	}
}

func TestAuditListTimeFilters(t *testing.T) {
	repo := NewAuditRepository(newTestDB(t).DB)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		err := repo.Create(ctx, &models.AuditEntry{
			GuildID: "g1", UserID: "u1",
			Action: models.ActionServerPower, Result: models.ResultSuccess,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	// Filter times arrive in whatever zone the caller holds; the match must
	// depend on the instant, not its offset.
	eastOfUTC := time.FixedZone("UTC+5", 5*3600)
	hourAgo := time.Now().Add(-time.Hour)
	hourAhead := time.Now().Add(time.Hour)

	tests := []struct {
		name   string
		filter models.AuditFilter
		want   int
	}{
		{"since past, non-UTC zone", models.AuditFilter{Since: hourAgo.In(eastOfUTC)}, 2},
		{"since past, UTC", models.AuditFilter{Since: hourAgo.UTC()}, 2},
		{"since future", models.AuditFilter{Since: hourAhead.In(eastOfUTC)}, 0},
		{"until future, non-UTC zone", models.AuditFilter{Until: hourAhead.In(eastOfUTC)}, 2},
		{"until past", models.AuditFilter{Until: hourAgo.In(eastOfUTC)}, 0},
		{"window around now", models.AuditFilter{Since: hourAgo.In(eastOfUTC), Until: hourAhead.In(eastOfUTC)}, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := repo.List(ctx, "g1", tt.filter, 10, 0)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(entries) != tt.want {
				t.Errorf("matched %d entries, want %d", len(entries), tt.want)
			}
		})
	}
}

func TestAuditDeleteOldNonUTCCutoff(t *testing.T) {
	repo := NewAuditRepository(newTestDB(t).DB)
	ctx := context.Background()

	if err := repo.Create(ctx, &models.AuditEntry{
		GuildID: "g1", UserID: "u1",
		Action: models.ActionServerPower, Result: models.ResultSuccess,
	}); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	westOfUTC := time.FixedZone("UTC-7", -7*3600)

	deleted, err := repo.DeleteOld(ctx, time.Now().Add(-time.Hour).In(westOfUTC))
	if err != nil {
		t.Fatalf("DeleteOld failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("past cutoff deleted %d entries, want 0", deleted)
	}

	deleted, err = repo.DeleteOld(ctx, time.Now().Add(time.Hour).In(westOfUTC))
	if err != nil {
		t.Fatalf("DeleteOld failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("future cutoff deleted %d entries, want 1", deleted)
	}
}

func TestAuditDeleteOld(t *testing.T) {
	database := newTestDB(t)
	repo := NewAuditRepository(database.DB)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		err := repo.Create(ctx, &models.AuditEntry{
			GuildID: "g1", UserID: "u1",
			Action: models.ActionServerPower, Result: models.ResultSuccess,
		})
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}

	deleted, err := repo.DeleteOld(ctx, time.Now().UTC().Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteOld failed: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected nothing deleted with past cutoff, got %d", deleted)
	}

	deleted, err = repo.DeleteOld(ctx, time.Now().UTC().Add(time.Hour))
	if err != nil {
		t.Fatalf("DeleteOld failed: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted with future cutoff, got %d", deleted)
	}

	count, err := repo.CountByGuild(ctx, "g1")
	if err != nil {
		t.Fatalf("CountByGuild failed: %v", err)
	}
	if count != 0 {
		t.Errorf("expected empty log after cleanup, got %d", count)
	}
}
