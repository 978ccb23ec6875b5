package discord

import (
	"context"
	"log"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/input"
	"eventbot/internal/ports/output"
	pkgdiscord "eventbot/pkg/discord"
)

// adminLookup reports whether userID has administrator rights in channelID.
type adminLookup func(userID, channelID string) bool

// Handler turns slash commands, buttons and prefix commands into lifecycle calls. Every front
// end goes through the same action methods below, so a given action replies identically.
type Handler struct {
	events  input.EventLifecycle
	tr      output.Translator
	locale  string
	prefix  string
	isAdmin adminLookup
}

func NewHandler(events input.EventLifecycle, tr output.Translator, locale, prefix string, isAdmin adminLookup) *Handler {
	if isAdmin == nil {
		isAdmin = func(string, string) bool { return false }
	}
	return &Handler{events: events, tr: tr, locale: locale, prefix: prefix, isAdmin: isAdmin}
}

func (h *Handler) failure(locale, title string, err error) string {
	if domain.KindOf(err) == "" {
		log.Printf("❌ Action sur %q: %v", title, err)
	}
	return pkgdiscord.ErrorMessage(h.tr, locale, err, map[string]any{"Title": title})
}

func (h *Handler) hostEvent(ctx context.Context, actor entities.Actor, locale string, in input.CreateEventInput) string {
	event, err := h.events.CreateEvent(ctx, actor, in)
	if err != nil {
		return h.failure(locale, in.Title, err)
	}
	return h.tr.T(locale, "success.created", map[string]any{
		"Title": event.Title,
		"Date":  event.Date,
		"Time":  event.Time,
	})
}

func (h *Handler) join(ctx context.Context, actor entities.Actor, locale, title string) string {
	if _, err := h.events.JoinEvent(ctx, actor, title); err != nil {
		return h.failure(locale, title, err)
	}
	return h.tr.T(locale, "success.joined", map[string]any{"Title": title})
}

func (h *Handler) leave(ctx context.Context, actor entities.Actor, locale, title string) string {
	if _, err := h.events.LeaveEvent(ctx, actor, title); err != nil {
		return h.failure(locale, title, err)
	}
	return h.tr.T(locale, "success.left", map[string]any{"Title": title})
}

func (h *Handler) transferHost(ctx context.Context, actor entities.Actor, locale, title, newHost string) string {
	if _, err := h.events.TransferHost(ctx, actor, title, newHost); err != nil {
		return h.failure(locale, title, err)
	}
	return h.tr.T(locale, "success.host_transferred", map[string]any{
		"Title": title,
		"Host":  pkgdiscord.UserMention(newHost),
	})
}

func (h *Handler) removeParticipant(ctx context.Context, actor entities.Actor, locale, title, member string) string {
	if _, err := h.events.RemoveParticipant(ctx, actor, title, member); err != nil {
		return h.failure(locale, title, err)
	}
	return h.tr.T(locale, "success.participant_removed", map[string]any{
		"Title": title,
		"User":  pkgdiscord.UserMention(member),
	})
}

func (h *Handler) edit(ctx context.Context, actor entities.Actor, locale, title string, field input.EditField, value string) string {
	event, err := h.events.EditEvent(ctx, actor, title, field, value)
	if err != nil {
		return h.failure(locale, title, err)
	}
	if field == input.FieldCapacity && event.Capacity == nil {
		return h.tr.T(locale, "success.capacity_cleared", map[string]any{"Title": title})
	}
	return h.tr.T(locale, "success.edited", map[string]any{
		"Title": title,
		"Field": string(field),
		"Value": editedValue(event, field),
	})
}

func editedValue(e *entities.Event, field input.EditField) string {
	switch field {
	case input.FieldTime:
		return e.Time
	case input.FieldDate:
		return e.Date
	case input.FieldDescription:
		return e.Description
	case input.FieldCapacity:
		if e.Capacity != nil {
			return strconv.Itoa(*e.Capacity)
		}
	}
	return ""
}

func (h *Handler) complete(ctx context.Context, actor entities.Actor, locale, title string) string {
	if _, err := h.events.CompleteEvent(ctx, actor, title); err != nil {
		return h.failure(locale, title, err)
	}
	return h.tr.T(locale, "success.completed", map[string]any{"Title": title})
}

func (h *Handler) deleteEvent(ctx context.Context, actor entities.Actor, locale, title string) string {
	if err := h.events.DeleteEvent(ctx, actor, title); err != nil {
		return h.failure(locale, title, err)
	}
	return h.tr.T(locale, "success.deleted", map[string]any{"Title": title})
}

func (h *Handler) deleteAll(ctx context.Context, actor entities.Actor, locale string) string {
	summary, err := h.events.DeleteAllEvents(ctx, actor)
	if err != nil {
		return h.failure(locale, "", err)
	}
	if len(summary.Events) == 0 {
		return h.tr.T(locale, "success.deleted_none", nil)
	}
	log.Printf("🗑 Suppression globale: %s", strings.Join(summary.Events, ", "))
	return h.tr.T(locale, "success.deleted_all", map[string]any{
		"Markers":  summary.Markers,
		"Messages": summary.Messages,
	})
}

func (h *Handler) help(locale string) string {
	return h.tr.T(locale, "help.commands", map[string]any{"Prefix": h.prefix})
}

// messageReplier is the subset of *discordgo.Session used to answer prefix commands.
type messageReplier interface {
	ChannelMessageSendReply(channelID, content string, reference *discordgo.MessageReference, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// HandleInteraction routes slash commands, autocomplete requests and card buttons.
func (h *Handler) HandleInteraction(ctx context.Context, s interactionResponder, i *discordgo.Interaction) {
	actor := actorOf(i)
	locale := localeOf(i, h.locale)

	switch i.Type {
	case discordgo.InteractionApplicationCommandAutocomplete:
		typed, _ := focusedValue(i.ApplicationCommandData().Options)
		err := s.InteractionRespond(i, &discordgo.InteractionResponse{
			Type: discordgo.InteractionApplicationCommandAutocompleteResult,
			Data: &discordgo.InteractionResponseData{Choices: h.titleChoices(ctx, typed)},
		})
		if err != nil {
			log.Printf("❌ Autocomplétion: %v", err)
		}
	case discordgo.InteractionApplicationCommand:
		data := i.ApplicationCommandData()
		if data.Name == "commands" {
			respondEphemeral(s, i, h.help(locale))
			return
		}
		if !deferEphemeral(s, i) {
			return
		}
		editResponse(s, i, h.runCommand(ctx, actor, locale, i.ChannelID, data))
	case discordgo.InteractionMessageComponent:
		customID := i.MessageComponentData().CustomID
		if _, _, ok := pkgdiscord.ParseCustomID(customID); !ok {
			return
		}
		if !deferEphemeral(s, i) {
			return
		}
		reply, _ := h.runButton(ctx, actor, locale, customID)
		editResponse(s, i, reply)
	}
}

// HandleMessage answers prefix commands in guild text channels.
func (h *Handler) HandleMessage(ctx context.Context, s messageReplier, m *discordgo.Message) {
	if m.Author == nil || h.prefix == "" || !strings.HasPrefix(m.Content, h.prefix) {
		return
	}
	actor := entities.Actor{UserID: m.Author.ID, IsAdmin: h.isAdmin(m.Author.ID, m.ChannelID)}
	reply, handled := h.runPrefix(ctx, actor, h.locale, m.ChannelID, m.Content)
	if !handled {
		return
	}
	if _, err := s.ChannelMessageSendReply(m.ChannelID, reply, m.Reference()); err != nil {
		log.Printf("❌ Réponse à la commande %q: %v", m.Content, err)
	}
}
