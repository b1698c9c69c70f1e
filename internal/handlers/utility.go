package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"ptero-discord-admin/internal/commands"
	"ptero-discord-admin/internal/models"
	"ptero-discord-admin/internal/permissions"
)

// UtilityHandler handles the /utility command group
type UtilityHandler struct {
	BaseHandler
	retentionDays int
}

// NewUtilityHandler creates a new utility handler
func NewUtilityHandler(base BaseHandler, retentionDays int) *UtilityHandler {
	return &UtilityHandler{BaseHandler: base, retentionDays: retentionDays}
}

// Definition returns the slash command definition
func (h *UtilityHandler) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        commands.Utility,
		Description: "Utility commands",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.UtilityPing,
				Description: "Check bot latency and panel reachability",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.UtilityCleanup,
				Description: "Delete audit entries past the retention window",
			},
		},
	}
}

// Handle dispatches a /utility invocation
func (h *UtilityHandler) Handle(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub, _ := subcommand(i)
	switch sub {
	case commands.UtilityPing:
		return h.handlePing(ctx, s, i)
	case commands.UtilityCleanup:
		return h.handleCleanup(ctx, s, i)
	default:
		return h.respond(s, i, "Unknown subcommand.")
	}
}

// handlePing reports gateway latency and, when configured, panel reachability
func (h *UtilityHandler) handlePing(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	latency := s.HeartbeatLatency().Round(time.Millisecond)

	panel := "not configured"
	if client, err := h.panelService.ClientFor(ctx, i.GuildID, actor(i).UserID); err == nil {
		start := time.Now()
		if err := client.TestConnection(ctx); err == nil {
			panel = fmt.Sprintf("reachable (%s)", time.Since(start).Round(time.Millisecond))
		} else {
			panel = "unreachable"
		}
	}

	return h.respond(s, i, fmt.Sprintf("🏓 Gateway: %s · Panel: %s", latency, panel))
}

// handleCleanup runs audit retention for entries older than the configured
// window. Admin only.
func (h *UtilityHandler) handleCleanup(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ok, err := h.requireCapability(ctx, s, i, permissions.ManagePermissions)
	if !ok {
		return err
	}

	cutoff := retentionCutoff(h.retentionDays)
	deleted, err := h.auditService.RetentionCleanup(ctx, cutoff)
	if err != nil {
		return h.respondError(s, i, err)
	}

	auditErr := h.auditService.Record(ctx, &models.AuditEntry{
		GuildID: i.GuildID,
		UserID:  actor(i).UserID,
		Action:  models.ActionRetentionCleanup,
		Result:  models.ResultSuccess,
		Detail:  fmt.Sprintf("deleted %d entries older than %d days", deleted, h.retentionDays),
	})

	return h.respond(s, i, withAuditWarning(
		fmt.Sprintf("✅ Removed %d audit entries older than %d days.", deleted, h.retentionDays), auditErr))
}
