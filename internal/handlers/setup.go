package handlers

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"ptero-discord-admin/internal/commands"
	"ptero-discord-admin/internal/permissions"
)

// SetupHandler handles the /setup command
type SetupHandler struct {
	BaseHandler
}

// NewSetupHandler creates a new setup handler
func NewSetupHandler(base BaseHandler) *SetupHandler {
	return &SetupHandler{BaseHandler: base}
}

// Definition returns the slash command definition
func (h *SetupHandler) Definition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        commands.Setup,
		Description: "Set up the bot for this server",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionRole,
				Name:        "admin_role",
				Description: "Role that can manage the bot (defaults to server administrators)",
				Required:    false,
			},
		},
	}
}

// Handle processes a /setup invocation
func (h *SetupHandler) Handle(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ok, err := h.requireCapability(ctx, s, i, permissions.ManagePermissions)
	if !ok {
		return err
	}

	var adminRoleID string
	data := i.ApplicationCommandData()
	for _, opt := range data.Options {
		if opt.Name == "admin_role" {
			adminRoleID = opt.RoleValue(nil, i.GuildID).ID
		}
	}

	if err := h.guildService.Setup(ctx, i.GuildID, actor(i).UserID, adminRoleID); err != nil {
		return h.respondError(s, i, err)
	}

	msg := "✅ Bot configured. Server administrators manage the bot."
	if adminRoleID != "" {
		msg = fmt.Sprintf("✅ Bot configured. Members with <@&%s> manage the bot.", adminRoleID)
	}
	return h.respond(s, i, msg+"\nNext: run `/config set` to store your panel credentials.")
}
