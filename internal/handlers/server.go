package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"ptero-discord-admin/internal/commands"
	"ptero-discord-admin/internal/helpers"
	"ptero-discord-admin/internal/models"
	"ptero-discord-admin/internal/permissions"
)

// ServerHandler handles the /server command group
type ServerHandler struct {
	BaseHandler
}

// NewServerHandler creates a new server handler
func NewServerHandler(base BaseHandler) *ServerHandler {
	return &ServerHandler{BaseHandler: base}
}

// Definition returns the slash command definition
func (h *ServerHandler) Definition() *discordgo.ApplicationCommand {
	serverIDOption := &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "server_id",
		Description: "Panel server ID",
		Required:    true,
	}

	return &discordgo.ApplicationCommand{
		Name:        commands.Server,
		Description: "Manage your Pterodactyl servers",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ServerList,
				Description: "List servers accessible with your credentials",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ServerInfo,
				Description: "Show server details and live resource usage",
				Options:     []*discordgo.ApplicationCommandOption{serverIDOption},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ServerStart,
				Description: "Start a server",
				Options:     []*discordgo.ApplicationCommandOption{serverIDOption},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ServerStop,
				Description: "Stop a server",
				Options:     []*discordgo.ApplicationCommandOption{serverIDOption},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ServerRestart,
				Description: "Restart a server",
				Options:     []*discordgo.ApplicationCommandOption{serverIDOption},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ServerKill,
				Description: "Force kill a server",
				Options:     []*discordgo.ApplicationCommandOption{serverIDOption},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ServerCommand,
				Description: "Send a command to the server console",
				Options: []*discordgo.ApplicationCommandOption{
					serverIDOption,
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "command",
						Description: "Console command to run",
						Required:    true,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ServerLink,
				Description: "Link a panel server to your account",
				Options: []*discordgo.ApplicationCommandOption{
					serverIDOption,
					{
						Type:        discordgo.ApplicationCommandOptionString,
						Name:        "name",
						Description: "Friendly name for the server",
						Required:    false,
					},
				},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        commands.ServerUnlink,
				Description: "Unlink a panel server from your account",
				Options:     []*discordgo.ApplicationCommandOption{serverIDOption},
			},
		},
	}
}

// Handle dispatches a /server invocation. Everything here requires the
// manage_servers capability.
func (h *ServerHandler) Handle(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	ok, err := h.requireCapability(ctx, s, i, permissions.ManageServers)
	if !ok {
		return err
	}

	sub, options := subcommand(i)
	opts := optionMap(options)

	switch sub {
	case commands.ServerList:
		return h.handleList(ctx, s, i)
	case commands.ServerInfo:
		return h.handleInfo(ctx, s, i, stringOption(opts, "server_id"))
	case commands.ServerStart, commands.ServerStop, commands.ServerRestart, commands.ServerKill:
		return h.handlePower(ctx, s, i, stringOption(opts, "server_id"), sub)
	case commands.ServerCommand:
		return h.handleCommand(ctx, s, i, stringOption(opts, "server_id"), stringOption(opts, "command"))
	case commands.ServerLink:
		return h.handleLink(ctx, s, i, stringOption(opts, "server_id"), stringOption(opts, "name"))
	case commands.ServerUnlink:
		return h.handleUnlink(ctx, s, i, stringOption(opts, "server_id"))
	default:
		return h.respond(s, i, "Unknown subcommand.")
	}
}

// handleList shows the panel's server list and refreshes the link cache
func (h *ServerHandler) handleList(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate) error {
	act := actor(i)
	servers, err := h.panelService.ListServers(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	if len(servers) == 0 {
		return h.respond(s, i, "No servers are accessible with your credentials.")
	}

	var b strings.Builder
	for _, server := range servers {
		state := ""
		if server.Suspended {
			state = " (suspended)"
		}
		fmt.Fprintf(&b, "**%s**%s — id `%d`, identifier `%s`\n", server.Name, state, server.ID, server.Identifier)
	}

	return h.respondEmbed(s, i, &discordgo.MessageEmbed{
		Title:       fmt.Sprintf("Your Servers (%d)", len(servers)),
		Description: b.String(),
	})
}

// handleInfo shows details plus live resources for one server
func (h *ServerHandler) handleInfo(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, serverID string) error {
	act := actor(i)
	client, err := h.panelService.ClientFor(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	server, err := client.GetServer(ctx, serverID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	embed := &discordgo.MessageEmbed{
		Title:       server.Name,
		Description: server.Description,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Identifier", Value: server.Identifier, Inline: true},
			{Name: "Memory limit", Value: helpers.FormatMegabytes(server.Limits.Memory), Inline: true},
			{Name: "Disk limit", Value: helpers.FormatMegabytes(server.Limits.Disk), Inline: true},
		},
	}

	// Live usage is best effort; the server row is still useful without it.
	if resources, err := client.GetResources(ctx, serverID); err == nil {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "State", Value: resources.State, Inline: true},
			&discordgo.MessageEmbedField{Name: "Memory", Value: helpers.FormatBytes(resources.Resources.MemoryBytes), Inline: true},
			&discordgo.MessageEmbedField{Name: "CPU", Value: fmt.Sprintf("%.1f%%", resources.Resources.CPUAbsolute), Inline: true},
		)
	}

	return h.respondEmbed(s, i, embed)
}

// handlePower runs a power action and audits the outcome
func (h *ServerHandler) handlePower(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, serverID, signal string) error {
	act := actor(i)
	client, err := h.panelService.ClientFor(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	powerErr := client.PowerAction(ctx, serverID, signal)

	result := models.ResultSuccess
	detail := fmt.Sprintf("signal: %s", signal)
	if powerErr != nil {
		result = models.ResultFailure
		detail += "; failed"
	}
	auditErr := h.auditService.Record(ctx, &models.AuditEntry{
		GuildID: i.GuildID,
		UserID:  act.UserID,
		Action:  models.ActionServerPower,
		Target:  serverID,
		Result:  result,
		Detail:  detail,
	})

	if powerErr != nil {
		return h.respondError(s, i, powerErr)
	}
	return h.respond(s, i, withAuditWarning(fmt.Sprintf("✅ Sent `%s` to server `%s`.", signal, serverID), auditErr))
}

// handleCommand submits a console command and audits the outcome
func (h *ServerHandler) handleCommand(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, serverID, command string) error {
	if strings.TrimSpace(command) == "" {
		return h.respond(s, i, "❌ Command must not be empty.")
	}

	act := actor(i)
	client, err := h.panelService.ClientFor(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	cmdErr := client.SendCommand(ctx, serverID, command)

	result := models.ResultSuccess
	if cmdErr != nil {
		result = models.ResultFailure
	}
	auditErr := h.auditService.Record(ctx, &models.AuditEntry{
		GuildID: i.GuildID,
		UserID:  act.UserID,
		Action:  models.ActionServerCommand,
		Target:  serverID,
		Result:  result,
		Detail:  fmt.Sprintf("command: %s", command),
	})

	if cmdErr != nil {
		return h.respondError(s, i, cmdErr)
	}
	return h.respond(s, i, withAuditWarning(fmt.Sprintf("✅ Command sent to server `%s`.", serverID), auditErr))
}

// handleLink links a server after verifying it exists on the panel. The
// quota check runs inside the link service before any state changes.
func (h *ServerHandler) handleLink(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, serverID, name string) error {
	act := actor(i)

	// Quota first: a user over quota is denied before any panel call.
	if err := h.linkService.CheckQuota(ctx, i.GuildID, act.UserID, serverID); err != nil {
		return h.respondError(s, i, err)
	}

	client, err := h.panelService.ClientFor(ctx, i.GuildID, act.UserID)
	if err != nil {
		return h.respondError(s, i, err)
	}
	server, err := client.GetServer(ctx, serverID)
	if err != nil {
		return h.respondError(s, i, err)
	}

	if name == "" {
		name = server.Name
	}
	if err := h.linkService.Link(ctx, i.GuildID, act.UserID, serverID, name); err != nil {
		return h.respondError(s, i, err)
	}

	return h.respond(s, i, fmt.Sprintf("✅ Linked **%s** (`%s`).", name, serverID))
}

// handleUnlink removes a server link; idempotent
func (h *ServerHandler) handleUnlink(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, serverID string) error {
	act := actor(i)
	if err := h.linkService.Unlink(ctx, i.GuildID, act.UserID, serverID); err != nil {
		return h.respondError(s, i, err)
	}
	return h.respond(s, i, fmt.Sprintf("✅ Unlinked server `%s`.", serverID))
}
