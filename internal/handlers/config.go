package handlers

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"ptero-discord-admin/internal/commands"
	apperrors "ptero-discord-admin/internal/errors"
	"ptero-discord-admin/internal/helpers"
	"ptero-discord-admin/internal/validation"
	"ptero-discord-admin/pkg/panelclient"
)

// ConfigHandler handles the /config command group: the user-facing surface
// of the credential store.
type ConfigHandler struct {
	BaseHandler
}

// NewConfigHandler creates a new config handler
func NewConfigHandler(base BaseHandler) *ConfigHandler {
	return &ConfigHandler{BaseHandler: base}
}

// Definition returns the slash command definition
func (h *ConfigHandler) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        commands.Config,
		Description: "Manage your Pterodactyl panel credentials",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ConfigSet,
				Description: "Store your panel URL and API key",
				Options: []*discordgo.ApplicationCommandOption{
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "panel_url",
						Description: "Panel URL, e.g. https://panel.example.com",
						Required:    true,
					},
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "api_key",
						Description: "Application API key",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ConfigStatus,
				Description: "Check your configuration and panel connection",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ConfigRemove,
				Description: "Remove your stored credentials and server links",
			},
		},
	}
}

// Handle dispatches a /config invocation
func (h *ConfigHandler) Handle(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	sub, options := subcommand(i)
	switch sub {
	case commands.ConfigSet:
		return h.handleSet(ctx, s, i, options)
	case commands.ConfigStatus:
		return h.handleStatus(ctx, s, i)
	case commands.ConfigRemove:
		return h.handleRemove(ctx, s, i)
	default:
		return h.respond(s, i, "Unknown subcommand.")
	}
}

// handleSet verifies the panel connection, then stores the credentials
func (h *ConfigHandler) handleSet(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, options []*discordgo.ApplicationCommandInteractionDataOption) error {
	opts := optionMap(options)
	panelURL := stringOption(opts, "panel_url")
	apiKey := stringOption(opts, "api_key")

	normalizedURL, err := validation.ValidatePanelURL(panelURL)
	if err != nil {
		return h.respondError(s, i, err)
	}
	if err := validation.ValidateAPIKey(apiKey); err != nil {
		return h.respondError(s, i, err)
	}

	// Reject credentials the panel won't accept before persisting them.
	client := panelclient.NewClient(normalizedURL, apiKey, h.logger)
	if err := client.TestConnection(ctx); err != nil {
		return h.respondError(s, i, err)
	}

	act := actor(i)
	if err := h.credentialService.Set(ctx, i.GuildID, act.UserID, normalizedURL, apiKey); err != nil {
		if _, isAudit := err.(*apperrors.AuditWriteError); !isAudit {
			return h.respondError(s, i, err)
		}
		return h.respond(s, i, withAuditWarning("✅ Panel credentials saved.", err))
	}

	h.panelService.InvalidateServers(i.GuildID, act.UserID)
	return h.respond(s, i, "✅ Panel credentials saved. You can now use `/server` commands.")
}

// handleStatus reports configuration state, permissions and panel reachability
func (h *ConfigHandler) handleStatus(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	act := actor(i)

	cfg, err := h.credentialService.GetConfig(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}
	if cfg == nil {
		return h.respond(s, i, "❌ Not configured. Run `/config set` to store your panel credentials.")
	}

	creds, err := h.credentialService.Get(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	connection := "✅ connected"
	serverCount := "-"
	client := panelclient.NewClient(creds.PanelURL, creds.APIKey, h.logger)
	if err := client.TestConnection(ctx); err != nil {
		connection = "❌ unreachable"
	} else if servers, err := client.ListServers(ctx); err == nil {
		serverCount = fmt.Sprintf("%d", len(servers))
	}

	linked, err := h.linkService.Count(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	embed := &discordgo.MessageEmbed{
		Title: "Configuration Status",
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Panel host", Value: validation.RedactURL(creds.PanelURL), Inline: true},
			{Name: "Connection", Value: connection, Inline: true},
			{Name: "Accessible servers", Value: serverCount, Inline: true},
			{Name: "Linked servers", Value: fmt.Sprintf("%d / %d", linked, cfg.MaxServers), Inline: true},
			{Name: "Can manage servers", Value: helpers.FormatBool(cfg.CanManageServers), Inline: true},
			{Name: "Can create users", Value: helpers.FormatBool(cfg.CanCreateUsers), Inline: true},
		},
	}
	return h.respondEmbed(s, i, embed)
}

// handleRemove clears the user's own credentials; idempotent
func (h *ConfigHandler) handleRemove(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	act := actor(i)
	if err := h.credentialService.Clear(ctx, i.GuildID, act.UserID); err != nil {
		if _, isAudit := err.(*apperrors.AuditWriteError); !isAudit {
			return h.respondError(s, i, err)
		}
		return h.respond(s, i, withAuditWarning("✅ Your configuration has been removed.", err))
	}
	h.panelService.InvalidateServers(i.GuildID, act.UserID)
	return h.respond(s, i, "✅ Your configuration has been removed.")
}
