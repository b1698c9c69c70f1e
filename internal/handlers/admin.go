package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"ptero-discord-admin/internal/commands"
	"ptero-discord-admin/internal/constants"
	apperrors "ptero-discord-admin/internal/errors"
	"ptero-discord-admin/internal/helpers"
	"ptero-discord-admin/internal/models"
	"ptero-discord-admin/internal/permissions"
)

// AdminHandler handles the /admin command group
type AdminHandler struct {
	BaseHandler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(base BaseHandler) *AdminHandler {
	return &AdminHandler{BaseHandler: base}
}

// Definition returns the slash command definition
func (h *AdminHandler) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        commands.Admin,
		Description: "Admin-only bot management",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.AdminStatus,
				Description: "Show bot configuration statistics for this server",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.AdminUsers,
				Description: "List users with configured panels",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.AdminAudit,
				Description: "Query the audit log",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Filter by user", Required: false},
					{Type: discordgo.ApplicationCommandOptionString, Name: "action", Description: "Filter by action type", Required: false},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "limit", Description: "Entries to show (max 50)", Required: false},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "page", Description: "Result page, starting at 1", Required: false},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.AdminPermissions,
				Description: "Change a user's capabilities",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Target user", Required: true},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "can_manage_servers", Description: "Allow server management", Required: false},
					{Type: discordgo.ApplicationCommandOptionBoolean, Name: "can_create_users", Description: "Allow panel account management", Required: false},
					{Type: discordgo.ApplicationCommandOptionInteger, Name: "max_servers", Description: "Maximum linked servers", Required: false},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.AdminReset,
				Description: "Reset a user's credentials and server links",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionUser, Name: "user", Description: "Target user", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "confirm", Description: "Type RESET to confirm", Required: true},
				},
			},
		},
	}
}

// Handle dispatches an /admin invocation. Every subcommand is admin-only.
func (h *AdminHandler) Handle(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub, options := subcommand(i)
	opts := optionMap(options)

	capability := permissions.ManagePermissions
	switch sub {
	case commands.AdminAudit:
		capability = permissions.ViewAudit
	case commands.AdminReset:
		capability = permissions.ResetUsers
	}
	ok, err := h.requireCapability(ctx, s, i, capability)
	if !ok {
		return err
	}

	switch sub {
	case commands.AdminStatus:
		return h.handleStatus(ctx, s, i)
	case commands.AdminUsers:
		return h.handleUsers(ctx, s, i)
	case commands.AdminAudit:
		return h.handleAudit(ctx, s, i, opts)
	case commands.AdminPermissions:
		return h.handlePermissions(ctx, s, i, opts)
	case commands.AdminReset:
		return h.handleReset(ctx, s, i, opts)
	default:
		return h.respond(s, i, "Unknown subcommand.")
	}
}

// handleStatus shows guild configuration statistics
func (h *AdminHandler) handleStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	guildCfg, err := h.guildService.Get(ctx, i.GuildID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	adminRole := "server administrators"
	if guildCfg != nil && guildCfg.AdminRoleID != "" {
		adminRole = fmt.Sprintf("<@&%s>", guildCfg.AdminRoleID)
	}

	userCount, err := h.guildService.CountUsers(ctx, i.GuildID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	return h.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title: "Bot Status",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Admin role", Value: adminRole, Inline: true},
			{Name: "Configured users", Value: fmt.Sprintf("%d", userCount), Inline: true},
		},
	})
}

// handleUsers lists configured users; credential values stay encrypted
func (h *AdminHandler) handleUsers(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	configs, err := h.adminService.ListUsers(ctx, i.GuildID)
	if err != nil {
		return h.respondError(s, i, err)
	}
	if len(configs) == 0 {
		return h.respond(s, i, "No users have configured panel credentials yet.")
	}

	var b strings.Builder
	for _, cfg := range configs {
		linked, err := h.linkService.Count(ctx, cfg.GuildID, cfg.UserID)
		if err != nil {
			return h.respondError(s, i, err)
		}
		fmt.Fprintf(&b, "<@%s> — servers: %s, users: %s, linked: %d/%d\n",
			cfg.UserID,
			helpers.FormatBool(cfg.CanManageServers),
			helpers.FormatBool(cfg.CanCreateUsers),
			linked, cfg.MaxServers)
	}

	return h.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Configured Users (%d)", len(configs)),
		Description: b.String(),
	})
}

// handleAudit queries the audit log, newest first
func (h *AdminHandler) handleAudit(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	filter := models.AuditFilter{
		Action: stringOption(opts, "action"),
	}
	if opt, ok := opts["user"]; ok {
		filter.UserID = opt.UserValue(nil).ID
	}

	limit := constants.DefaultAuditQueryLimit
	if opt, ok := opts["limit"]; ok {
		limit = int(opt.IntValue())
	}
	offset := 0
	if opt, ok := opts["page"]; ok && opt.IntValue() > 1 {
		offset = (int(opt.IntValue()) - 1) * limit
	}

	entries, err := h.auditService.Query(ctx, i.GuildID, filter, limit, offset)
	if err != nil {
		return h.respondError(s, i, err)
	}
	if len(entries) == 0 {
		return h.respond(s, i, "No audit entries match.")
	}

	var b strings.Builder
	for _, entry := range entries {
		mark := "✅"
		if entry.Result == models.ResultFailure {
			mark = "❌"
		}
		fmt.Fprintf(&b, "%s `%s` <@%s>", mark, entry.Action, entry.UserID)
		if entry.Target != "" {
			fmt.Fprintf(&b, " → `%s`", entry.Target)
		}
		fmt.Fprintf(&b, " — %s", entry.Timestamp.Format(constants.TimestampFormat))
		if entry.Detail != "" {
			fmt.Fprintf(&b, "\n    %s", entry.Detail)
		}
		b.WriteString("\n")
	}

	return h.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Audit Log (%d entries)", len(entries)),
		Description: b.String(),
	})
}

// handlePermissions applies capability changes to a configured user
func (h *AdminHandler) handlePermissions(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	targetOpt, ok := opts["user"]
	if !ok {
		return h.respond(s, i, "❌ A target user is required.")
	}
	targetID := targetOpt.UserValue(nil).ID

	var update models.PermissionUpdate
	if opt, ok := opts["can_manage_servers"]; ok {
		v := opt.BoolValue()
		update.CanManageServers = &v
	}
	if opt, ok := opts["can_create_users"]; ok {
		v := opt.BoolValue()
		update.CanCreateUsers = &v
	}
	if opt, ok := opts["max_servers"]; ok {
		v := int(opt.IntValue())
		update.MaxServers = &v
	}

	err := h.adminService.UpdatePermissions(ctx, i.GuildID, actor(i).UserID, targetID, update)
	if err != nil {
		if _, isAudit := err.(*apperrors.AuditWriteError); !isAudit {
			return h.respondError(s, i, err)
		}
	}
	return h.respond(s, i, withAuditWarning(fmt.Sprintf("✅ Updated permissions for <@%s>.", targetID), err))
}

// handleReset clears a user's credentials and links after confirmation
func (h *AdminHandler) handleReset(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	if stringOption(opts, "confirm") != "RESET" {
		return h.respond(s, i, "❌ Type `RESET` in the confirm field to proceed.")
	}

	targetOpt, ok := opts["user"]
	if !ok {
		return h.respond(s, i, "❌ A target user is required.")
	}
	targetID := targetOpt.UserValue(nil).ID

	err := h.adminService.ResetUser(ctx, i.GuildID, actor(i).UserID, targetID)
	if err != nil {
		if _, isAudit := err.(*apperrors.AuditWriteError); !isAudit {
			return h.respondError(s, i, err)
		}
	}
	h.panelService.InvalidateServers(i.GuildID, targetID)
	return h.respond(s, i, withAuditWarning(
		fmt.Sprintf("✅ Reset <@%s>. They must run `/config set` to reconfigure.", targetID), err))
}

// retentionCutoff converts a day count into the deletion cutoff
func retentionCutoff(days int) time.Time {
	return time.Now().UTC().AddDate(0, 0, -days)
}
