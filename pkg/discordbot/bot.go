// Package discordbot owns the Discord session: slash-command registration
// and dispatch into the handler layer.
package discordbot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"
	"github.com/sirupsen/logrus"

	"ptero-discord-admin/internal/config"
	"ptero-discord-admin/internal/handlers"
)

// Bot represents the Discord bot
type Bot struct {
	session  *discordgo.Session
	config   *config.Config
	handlers map[string]handlers.CommandHandler
	logger   *logrus.Logger
}

// NewBot creates a new Discord bot and wires the command handlers
func NewBot(cfg *config.Config, commandHandlers []handlers.CommandHandler, logger *logrus.Logger) (*Bot, error) {
	session, err := discordgo.New("Bot " + cfg.Discord.Token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Discord session: %w", err)
	}

	session.Identify.Intents = discordgo.IntentsGuilds

	bot := &Bot{
		session:  session,
		config:   cfg,
		handlers: make(map[string]handlers.CommandHandler, len(commandHandlers)),
		logger:   logger,
	}
	for _, h := range commandHandlers {
		bot.handlers[h.Definition().Name] = h
	}

	session.AddHandler(bot.handleInteraction)
	session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		logger.Infof("Logged in as %s, serving %d guilds", r.User.Username, len(r.Guilds))
	})

	return bot, nil
}

// Start opens the gateway connection, registers commands and blocks until
// the context is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open Discord connection: %w", err)
	}

	if err := b.registerCommands(); err != nil {
		b.session.Close()
		return err
	}

	b.logger.Info("Bot is running")
	<-ctx.Done()

	b.logger.Info("Stopping Discord bot")
	return b.session.Close()
}

// registerCommands registers all slash commands, globally or scoped to one
// guild when DISCORD_GUILD_ID is set (guild commands propagate instantly,
// useful for staging).
func (b *Bot) registerCommands() error {
	appID := b.session.State.User.ID
	for name, h := range b.handlers {
		if _, err := b.session.ApplicationCommandCreate(appID, b.config.Discord.GuildID, h.Definition()); err != nil {
			return fmt.Errorf("failed to register command /%s: %w", name, err)
		}
		b.logger.Infof("Registered command: /%s", name)
	}
	return nil
}

// handleInteraction routes a slash-command interaction to its handler
func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}
	if i.GuildID == "" {
		// All commands are guild-scoped; ignore DMs.
		return
	}

	name := i.ApplicationCommandData().Name
	handler, ok := b.handlers[name]
	if !ok {
		b.logger.Warnf("No handler for command /%s", name)
		return
	}

	b.logger.WithFields(logrus.Fields{
		"guild_id": i.GuildID,
		"command":  name,
	}).Debug("Dispatching command")

	if err := handler.Handle(context.Background(), s, i); err != nil {
		b.logger.Errorf("Command /%s failed: %v", name, err)
	}
}
