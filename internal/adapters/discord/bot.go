package discord

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/bwmarrin/discordgo"
)

const interactionTimeout = 30 * time.Second

// Intents needed for slash commands, prefix commands and role holder counts.
const Intents = discordgo.IntentsGuilds |
	discordgo.IntentsGuildMessages |
	discordgo.IntentsMessageContent |
	discordgo.IntentsGuildMembers

// Bot is the Discord adapter: it owns the session and routes events to the Handler.
type Bot struct {
	session *discordgo.Session
	guildID string
	handler *Handler
}

func NewBot(session *discordgo.Session, guildID string, handler *Handler) *Bot {
	session.Identify.Intents = Intents
	bot := &Bot{
		session: session,
		guildID: guildID,
		handler: handler,
	}
	session.AddHandler(bot.onInteraction)
	session.AddHandler(bot.onMessage)
	return bot
}

// AdminLookup resolves administrator rights from the session state, for prefix commands.
func AdminLookup(s *discordgo.Session) adminLookup {
	return func(userID, channelID string) bool {
		perms, err := s.UserChannelPermissions(userID, channelID)
		if err != nil {
			log.Printf("⚠️ Permissions de %s introuvables: %v", userID, err)
			return false
		}
		return perms&discordgo.PermissionAdministrator != 0
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	b.handler.HandleInteraction(ctx, s, i.Interaction)
}

func (b *Bot) onMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot || m.GuildID != b.guildID {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), interactionTimeout)
	defer cancel()
	b.handler.HandleMessage(ctx, s, m.Message)
}

// Start opens the session, registers the guild commands and blocks until ctx is done.
// A rejected token is returned as an error.
func (b *Bot) Start(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("erreur lors de l'ouverture de la session: %w", err)
	}
	defer b.session.Close()

	appID := b.session.State.User.ID
	registered, err := b.session.ApplicationCommandBulkOverwrite(appID, b.guildID, Commands())
	if err != nil {
		log.Printf("⚠️ Erreur lors de l'enregistrement des commandes: %v", err)
	} else {
		log.Printf("✅ %d commandes enregistrées pour le serveur %s", len(registered), b.guildID)
	}

	log.Println("🤖 Bot en ligne !")
	<-ctx.Done()
	log.Println("🤖 Arrêt du bot.")
	return nil
}
