package discord

import (
	"log"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/domain/entities"
)

// interactionResponder is the subset of *discordgo.Session used to answer interactions.
type interactionResponder interface {
	InteractionRespond(interaction *discordgo.Interaction, resp *discordgo.InteractionResponse, options ...discordgo.RequestOption) error
	InteractionResponseEdit(interaction *discordgo.Interaction, newresp *discordgo.WebhookEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

func respondEphemeral(s interactionResponder, i *discordgo.Interaction, content string) {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		log.Printf("❌ Réponse à l'interaction: %v", err)
	}
}

// deferEphemeral acknowledges i so that slow actions can answer later with editResponse.
func deferEphemeral(s interactionResponder, i *discordgo.Interaction) bool {
	err := s.InteractionRespond(i, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		log.Printf("❌ Accusé de réception de l'interaction: %v", err)
		return false
	}
	return true
}

func editResponse(s interactionResponder, i *discordgo.Interaction, content string) {
	if _, err := s.InteractionResponseEdit(i, &discordgo.WebhookEdit{Content: &content}); err != nil {
		log.Printf("❌ Mise à jour de la réponse: %v", err)
	}
}

// actorOf identifies who triggered i. Administrator rights come from the resolved member
// permissions Discord sends with guild interactions.
func actorOf(i *discordgo.Interaction) entities.Actor {
	if i.Member != nil && i.Member.User != nil {
		return entities.Actor{
			UserID:  i.Member.User.ID,
			IsAdmin: i.Member.Permissions&discordgo.PermissionAdministrator != 0,
		}
	}
	if i.User != nil {
		return entities.Actor{UserID: i.User.ID}
	}
	return entities.Actor{}
}

func localeOf(i *discordgo.Interaction, fallback string) string {
	if i.Locale != "" {
		return string(i.Locale)
	}
	return fallback
}
