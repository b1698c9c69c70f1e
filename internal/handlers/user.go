package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"ptero-discord-admin/internal/commands"
	"ptero-discord-admin/internal/models"
	"ptero-discord-admin/internal/permissions"
	"ptero-discord-admin/internal/validation"
)

// UserHandler handles the /user command group: panel account management.
type UserHandler struct {
	BaseHandler
}

// NewUserHandler creates a new user handler
func NewUserHandler(base BaseHandler) *UserHandler {
	return &UserHandler{BaseHandler: base}
}

// Definition returns the slash command definition
func (h *UserHandler) Definition() *discordgo.ApplicationCommand {
	userIDOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "user_id",
		Description: "Panel user ID",
		Required:    true,
	}

	return &discordgo.ApplicationCommand{
		Name:        commands.User,
		Description: "Manage Pterodactyl panel accounts",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.UserCreate,
				Description: "Create a panel account",
				Options: []*discordgo.ApplicationCommandOption{
					{Type: discordgo.ApplicationCommandOptionString, Name: "username", Description: "Account username", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "email", Description: "Account email", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "password", Description: "Account password", Required: true},
					{Type: discordgo.ApplicationCommandOptionString, Name: "first_name", Description: "First name", Required: false},
					{Type: discordgo.ApplicationCommandOptionString, Name: "last_name", Description: "Last name", Required: false},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.UserList,
				Description: "List panel accounts",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.UserInfo,
				Description: "Show one panel account",
				Options:     []*discordgo.ApplicationCommandOption{userIDOption},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.UserUpdateEmail,
				Description: "Change a panel account's email",
				Options: []*discordgo.ApplicationCommandOption{
					userIDOption,
					{Type: discordgo.ApplicationCommandOptionString, Name: "email", Description: "New email", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.UserUpdatePassword,
				Description: "Change a panel account's password",
				Options: []*discordgo.ApplicationCommandOption{
					userIDOption,
					{Type: discordgo.ApplicationCommandOptionString, Name: "password", Description: "New password", Required: true},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.UserDelete,
				Description: "Delete a panel account",
				Options:     []*discordgo.ApplicationCommandOption{userIDOption},
			},
		},
	}
}

// Handle dispatches a /user invocation. Everything here requires the
// create_users capability.
func (h *UserHandler) Handle(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ok, err := h.requireCapability(ctx, s, i, permissions.CreateUsers)
	if !ok {
		return err
	}

	sub, options := subcommand(i)
	opts := optionMap(options)

	switch sub {
	case commands.UserCreate:
		return h.handleCreate(ctx, s, i, opts)
	case commands.UserList:
		return h.handleList(ctx, s, i)
	case commands.UserInfo:
		return h.handleInfo(ctx, s, i, stringOption(opts, "user_id"))
	case commands.UserUpdateEmail:
		return h.handleUpdateEmail(ctx, s, i, stringOption(opts, "user_id"), stringOption(opts, "email"))
	case commands.UserUpdatePassword:
		return h.handleUpdatePassword(ctx, s, i, stringOption(opts, "user_id"), stringOption(opts, "password"))
	case commands.UserDelete:
		return h.handleDelete(ctx, s, i, stringOption(opts, "user_id"))
	default:
		return h.respond(s, i, "Unknown subcommand.")
	}
}

// handleCreate validates inputs, creates the account and audits the outcome
func (h *UserHandler) handleCreate(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, opts map[string]*discordgo.ApplicationCommandInteractionDataOption) error {
	newUser := models.NewPanelUser{
		Username:  stringOption(opts, "username"),
		Email:     stringOption(opts, "email"),
		Password:  stringOption(opts, "password"),
		FirstName: stringOption(opts, "first_name"),
		LastName:  stringOption(opts, "last_name"),
	}
	if newUser.FirstName == "" {
		newUser.FirstName = newUser.Username
	}
	if newUser.LastName == "" {
		newUser.LastName = newUser.Username
	}

	if err := validation.ValidateUsername(newUser.Username); err != nil {
		return h.respondError(s, i, err)
	}
	if err := validation.ValidateEmail(newUser.Email); err != nil {
		return h.respondError(s, i, err)
	}
	if err := validation.ValidatePassword(newUser.Password); err != nil {
		return h.respondError(s, i, err)
	}

	act := actor(i)
	client, err := h.panelService.ClientFor(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	created, createErr := client.CreateUser(ctx, newUser)

	result := models.ResultSuccess
	target := ""
	if createErr != nil {
		result = models.ResultFailure
	} else {
		target = fmt.Sprintf("%d", created.ID)
	}
	auditErr := h.auditService.Record(ctx, &models.AuditEntry{
		GuildID: i.GuildID,
		UserID:  act.UserID,
		Action:  models.ActionPanelUserCreate,
		Target:  target,
		Result:  result,
		Detail:  fmt.Sprintf("username: %s", newUser.Username),
	})

	if createErr != nil {
		return h.respondError(s, i, createErr)
	}
	return h.respond(s, i, withAuditWarning(
		fmt.Sprintf("✅ Created panel account **%s** (id %d).", created.Username, created.ID), auditErr))
}

// handleList shows all panel accounts
func (h *UserHandler) handleList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	act := actor(i)
	client, err := h.panelService.ClientFor(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	users, err := client.ListUsers(ctx)
	if err != nil {
		return h.respondError(s, i, err)
	}
	if len(users) == 0 {
		return h.respond(s, i, "The panel has no accounts.")
	}

	var b strings.Builder
	for _, user := range users {
		admin := ""
		if user.RootAdmin {
			admin = " (admin)"
		}
		fmt.Fprintf(&b, "`%d` **%s**%s — %s\n", user.ID, user.Username, admin, user.Email)
	}
	return h.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Panel Accounts (%d)", len(users)),
		Description: b.String(),
	})
}

// handleInfo shows one panel account
func (h *UserHandler) handleInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	act := actor(i)
	client, err := h.panelService.ClientFor(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	user, err := client.GetUser(ctx, userID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	return h.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title: user.Username,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "ID", Value: fmt.Sprintf("%d", user.ID), Inline: true},
			{Name: "Email", Value: user.Email, Inline: true},
			{Name: "Name", Value: strings.TrimSpace(user.FirstName + " " + user.LastName), Inline: true},
			{Name: "Root admin", Value: fmt.Sprintf("%t", user.RootAdmin), Inline: true},
			{Name: "Created", Value: user.CreatedAt, Inline: true},
		},
	})
}

// handleUpdateEmail changes one account's email
func (h *UserHandler) handleUpdateEmail(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID, email string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return h.respondError(s, i, err)
	}

	act := actor(i)
	client, err := h.panelService.ClientFor(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	updateErr := client.UpdateUserEmail(ctx, userID, email)
	auditErr := h.recordUserUpdate(ctx, i, userID, "email", updateErr)

	if updateErr != nil {
		return h.respondError(s, i, updateErr)
	}
	return h.respond(s, i, withAuditWarning("✅ Email updated.", auditErr))
}

// handleUpdatePassword changes one account's password. The new password is
// never echoed back or written to the audit log.
func (h *UserHandler) handleUpdatePassword(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID, password string) error {
	if err := validation.ValidatePassword(password); err != nil {
		return h.respondError(s, i, err)
	}

	act := actor(i)
	client, err := h.panelService.ClientFor(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	updateErr := client.UpdateUserPassword(ctx, userID, password)
	auditErr := h.recordUserUpdate(ctx, i, userID, "password", updateErr)

	if updateErr != nil {
		return h.respondError(s, i, updateErr)
	}
	return h.respond(s, i, withAuditWarning("✅ Password updated.", auditErr))
}

// handleDelete removes a panel account
func (h *UserHandler) handleDelete(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, userID string) error {
	act := actor(i)
	client, err := h.panelService.ClientFor(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	deleteErr := client.DeleteUser(ctx, userID)

	result := models.ResultSuccess
	if deleteErr != nil {
		result = models.ResultFailure
	}
	auditErr := h.auditService.Record(ctx, &models.AuditEntry{
		GuildID: i.GuildID,
		UserID:  act.UserID,
		Action:  models.ActionPanelUserDelete,
		Target:  userID,
		Result:  result,
	})

	if deleteErr != nil {
		return h.respondError(s, i, deleteErr)
	}
	return h.respond(s, i, withAuditWarning(fmt.Sprintf("✅ Deleted panel account `%s`.", userID), auditErr))
}

// recordUserUpdate audits a typed account update; the changed field name is
// recorded, never its value.
func (h *UserHandler) recordUserUpdate(ctx context.Context, i *discordgo.InteractionCreate, userID, field string, opErr error) error {
	result := models.ResultSuccess
	if opErr != nil {
		result = models.ResultFailure
	}
	return h.auditService.Record(ctx, &models.AuditEntry{
		GuildID: i.GuildID,
		UserID:  actor(i).UserID,
		Action:  models.ActionPanelUserUpdate,
		Target:  userID,
		Result:  result,
		Detail:  fmt.Sprintf("field: %s", field),
	})
}
