package handlers

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	apperrors "ptero-discord-admin/internal/errors"
	"ptero-discord-admin/internal/models"
	"ptero-discord-admin/internal/permissions"
	"ptero-discord-admin/internal/services"
)

// CommandHandler is one top-level slash command with its subcommands.
type CommandHandler interface {
	Definition() *discordgo.ApplicationCommand
	Handle(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	guildService      *services.GuildService
	credentialService *services.CredentialService
	linkService       *services.ServerLinkService
	adminService      *services.AdminService
	panelService      *services.PanelService
	auditService      *services.AuditService
	logger            *logrus.Logger
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(
	guildService *services.GuildService,
	credentialService *services.CredentialService,
	linkService *services.ServerLinkService,
	adminService *services.AdminService,
	panelService *services.PanelService,
	auditService *services.AuditService,
	logger *logrus.Logger,
) BaseHandler {
	return BaseHandler{
		guildService:      guildService,
		credentialService: credentialService,
		linkService:       linkService,
		adminService:      adminService,
		panelService:      panelService,
		auditService:      auditService,
		logger:            logger,
	}
}

// respond sends an ephemeral text reply to the interaction
func (h *BaseHandler) respond(s *discordgo.Session, i *discordgo.InteractionCreate, content string) error {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.Errorf("Failed to respond to interaction: %v", err)
	}
	return err
}

// respondEmbed sends an ephemeral embed reply to the interaction
func (h *BaseHandler) respondEmbed(s *discordgo.Session, i *discordgo.InteractionCreate, embed *discordgo.MessageEmbed) error {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds: []*discordgo.MessageEmbed{embed},
			Flags:  discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.Errorf("Failed to respond to interaction: %v", err)
	}
	return err
}

// respondError translates the error taxonomy into a user-facing message
func (h *BaseHandler) respondError(s *discordgo.Session, i *discordgo.InteractionCreate, err error) error {
	var validationErr *apperrors.ValidationError
	var panelErr *apperrors.PanelAPIError
	var auditErr *apperrors.AuditWriteError

	switch {
	case errors.As(err, &validationErr):
		return h.respond(s, i, fmt.Sprintf("❌ %s: %s", validationErr.Field, validationErr.Message))
	case errors.Is(err, apperrors.ErrNotConfigured):
		return h.respond(s, i, "❌ No panel credentials configured. Run `/config set` first.")
	case errors.Is(err, apperrors.ErrDecryption):
		// Details stay in the server log; the user gets a generic failure.
		return h.respond(s, i, "❌ Stored credentials could not be read. Ask an admin to reset your configuration.")
	case errors.Is(err, services.ErrMaxServersReached):
		return h.respond(s, i, "❌ You have reached your maximum number of linked servers.")
	case errors.As(err, &panelErr):
		if panelErr.Retryable() {
			return h.respond(s, i, "❌ The panel is unreachable right now. Please try again shortly.")
		}
		return h.respond(s, i, fmt.Sprintf("❌ Panel error: %s", panelErr.Message))
	case errors.As(err, &auditErr):
		// The primary action succeeded; surface only a secondary warning.
		return h.respond(s, i, "✅ Done, but audit logging failed. Please notify an admin.")
	default:
		h.logger.Errorf("Command failed: %v", err)
		return h.respond(s, i, "❌ An internal error occurred. Please try again later.")
	}
}

// withAuditWarning appends a secondary warning when the primary action
// succeeded but its audit entry could not be written.
func withAuditWarning(msg string, err error) string {
	var auditErr *apperrors.AuditWriteError
	if errors.As(err, &auditErr) {
		return msg + "\n⚠️ Audit logging failed; please notify an admin."
	}
	return msg
}

// actor builds the authorization view of the invoking guild member
func actor(i *discordgo.InteractionCreate) permissions.Actor {
	a := permissions.Actor{}
	if i.Member != nil && i.Member.User != nil {
		a.UserID = i.Member.User.ID
		a.RoleIDs = i.Member.Roles
		a.IsAdministrator = i.Member.Permissions&discordgo.PermissionAdministrator != 0
	}
	return a
}

// requireCapability runs the single authorization decision point. On deny it
// records the failed attempt and answers the user; callers must stop.
func (h *BaseHandler) requireCapability(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, capability permissions.Capability) (bool, error) {
	act := actor(i)

	guildCfg, err := h.guildService.Get(ctx, i.GuildID)
	if err != nil {
		return false, h.respondError(s, i, err)
	}
	userCfg, err := h.credentialService.GetConfig(ctx, i.GuildID, act.UserID)
	if err != nil {
		return false, h.respondError(s, i, err)
	}

	if permissions.Authorize(act, guildCfg, userCfg, capability) == permissions.Allow {
		return true, nil
	}

	denied := &apperrors.AuthorizationError{
		UserID:     act.UserID,
		GuildID:    i.GuildID,
		Capability: string(capability),
	}
	h.logger.Warn(denied.Error())

	if err := h.auditService.Record(ctx, &models.AuditEntry{
		GuildID: i.GuildID,
		UserID:  act.UserID,
		Action:  models.ActionAuthorizationDeny,
		Result:  models.ResultFailure,
		Detail:  fmt.Sprintf("capability: %s", capability),
	}); err != nil {
		h.logger.Warnf("Failed to audit authorization deny: %v", err)
	}

	return false, h.respond(s, i, "❌ You don't have permission to do that.")
}

// subcommand returns the invoked subcommand name and its options
func subcommand(i *discordgo.InteractionCreate) (string, []*discordgo.ApplicationCommandInteractionDataOption) {
	data := i.ApplicationCommandData()
	if len(data.Options) == 0 {
		return "", nil
	}
	sub := data.Options[0]
	return sub.Name, sub.Options
}

// optionMap indexes interaction options by name
func optionMap(options []*discordgo.ApplicationCommandInteractionDataOption) map[string]*discordgo.ApplicationCommandInteractionDataOption {
	m := make(map[string]*discordgo.ApplicationCommandInteractionDataOption, len(options))
	for _, opt := range options {
		m[opt.Name] = opt
	}
	return m
}

// stringOption returns a string option value or empty
func stringOption(m map[string]*discordgo.ApplicationCommandInteractionDataOption, name string) string {
	if opt, ok := m[name]; ok {
		return opt.StringValue()
	}
	return ""
}
