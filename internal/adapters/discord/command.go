package discord

import (
	"context"
	"strconv"
	"strings"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/input"
)

const maxAutocompleteChoices = 25

var adminPermission int64 = discordgo.PermissionAdministrator

func titleOption(name string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:         discordgo.ApplicationCommandOptionString,
		Name:         name,
		Description:  "Event title",
		Required:     true,
		Autocomplete: true,
	}
}

func stringOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func userOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionUser,
		Name:        name,
		Description: description,
		Required:    true,
	}
}

func subCommand(name, description string, options ...*discordgo.ApplicationCommandOption) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionSubCommand,
		Name:        name,
		Description: description,
		Options:     options,
	}
}

// Commands lists the guild slash commands.
func Commands() []*discordgo.ApplicationCommand {
	zero := 0.0
	return []*discordgo.ApplicationCommand{
		{
			Name:        "host_event",
			Description: "Create a new event",
			Options: []*discordgo.ApplicationCommandOption{
				stringOption("title", "Event title"),
				stringOption("date", "Date (DD-MM-YYYY)"),
				stringOption("time", "Time (HH:MM, UTC)"),
				stringOption("description", "What is it about?"),
				{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "max_attendees",
					Description: "Maximum participants including the host (0 = unlimited)",
					MinValue:    &zero,
				},
			},
		},
		{Name: "join", Description: "Join an event", Options: []*discordgo.ApplicationCommandOption{titleOption("title")}},
		{Name: "leave", Description: "Leave an event", Options: []*discordgo.ApplicationCommandOption{titleOption("title")}},
		{
			Name:        "transferhost",
			Description: "Transfer event host to another participant",
			Options: []*discordgo.ApplicationCommandOption{
				titleOption("event_title"),
				userOption("new_host", "The participant who becomes host"),
			},
		},
		{Name: "complete", Description: "Mark an event as completed", Options: []*discordgo.ApplicationCommandOption{titleOption("event_title")}},
		{Name: "deleteevent", Description: "Delete a specific event", Options: []*discordgo.ApplicationCommandOption{titleOption("event_title")}},
		{Name: "deleteallevents", Description: "Delete all events (admin only)", DefaultMemberPermissions: &adminPermission},
		{Name: "commands", Description: "List all available commands"},
		{
			Name:        "edit",
			Description: "Edit an event",
			Options: []*discordgo.ApplicationCommandOption{
				subCommand("time", "Edit the time of an event", titleOption("event_title"), stringOption("time", "New time (HH:MM)")),
				subCommand("date", "Edit the date of an event", titleOption("event_title"), stringOption("date", "New date (DD-MM-YYYY)")),
				subCommand("description", "Edit the description of an event", titleOption("event_title"), stringOption("description", "New description")),
				subCommand("max", "Edit the maximum number of participants", titleOption("event_title"), &discordgo.ApplicationCommandOption{
					Type:        discordgo.ApplicationCommandOptionInteger,
					Name:        "max_attendees",
					Description: "New maximum (0 = unlimited)",
					Required:    true,
				}),
				subCommand("remove", "Remove a participant from an event", titleOption("event_title"), userOption("user", "Participant to remove")),
			},
		},
	}
}

type commandOptions map[string]*discordgo.ApplicationCommandInteractionDataOption

func optionsOf(opts []*discordgo.ApplicationCommandInteractionDataOption) commandOptions {
	m := make(commandOptions, len(opts))
	for _, o := range opts {
		m[o.Name] = o
	}
	return m
}

func (o commandOptions) str(name string) string {
	if v, ok := o[name]; ok {
		return strings.TrimSpace(v.StringValue())
	}
	return ""
}

func (o commandOptions) integer(name string) int {
	if v, ok := o[name]; ok {
		return int(v.IntValue())
	}
	return 0
}

func (o commandOptions) user(name string) string {
	if v, ok := o[name]; ok {
		if u := v.UserValue(nil); u != nil {
			return u.ID
		}
	}
	return ""
}

// runCommand executes a slash command and returns the reply.
func (h *Handler) runCommand(ctx context.Context, actor entities.Actor, locale, channelID string, data discordgo.ApplicationCommandInteractionData) string {
	opts := optionsOf(data.Options)
	switch data.Name {
	case "host_event":
		return h.hostEvent(ctx, actor, locale, input.CreateEventInput{
			Title:       opts.str("title"),
			Date:        opts.str("date"),
			Time:        opts.str("time"),
			Description: opts.str("description"),
			Capacity:    opts.integer("max_attendees"),
			ChannelID:   channelID,
		})
	case "join":
		return h.join(ctx, actor, locale, opts.str("title"))
	case "leave":
		return h.leave(ctx, actor, locale, opts.str("title"))
	case "transferhost":
		return h.transferHost(ctx, actor, locale, opts.str("event_title"), opts.user("new_host"))
	case "complete":
		return h.complete(ctx, actor, locale, opts.str("event_title"))
	case "deleteevent":
		return h.deleteEvent(ctx, actor, locale, opts.str("event_title"))
	case "deleteallevents":
		return h.deleteAll(ctx, actor, locale)
	case "commands":
		return h.help(locale)
	case "edit":
		if len(data.Options) == 1 {
			return h.runEdit(ctx, actor, locale, data.Options[0])
		}
	}
	return h.tr.T(locale, "errors.unknown_command", map[string]any{"Prefix": h.prefix})
}

func (h *Handler) runEdit(ctx context.Context, actor entities.Actor, locale string, sub *discordgo.ApplicationCommandInteractionDataOption) string {
	opts := optionsOf(sub.Options)
	title := opts.str("event_title")
	switch sub.Name {
	case "time":
		return h.edit(ctx, actor, locale, title, input.FieldTime, opts.str("time"))
	case "date":
		return h.edit(ctx, actor, locale, title, input.FieldDate, opts.str("date"))
	case "description":
		return h.edit(ctx, actor, locale, title, input.FieldDescription, opts.str("description"))
	case "max":
		return h.edit(ctx, actor, locale, title, input.FieldCapacity, strconv.Itoa(opts.integer("max_attendees")))
	case "remove":
		return h.removeParticipant(ctx, actor, locale, title, opts.user("user"))
	}
	return h.tr.T(locale, "errors.unknown_field", nil)
}

// focusedValue returns the text typed into the focused option, searching subcommands too.
func focusedValue(opts []*discordgo.ApplicationCommandInteractionDataOption) (string, bool) {
	for _, o := range opts {
		if o.Focused {
			s, _ := o.Value.(string)
			return s, true
		}
		if v, ok := focusedValue(o.Options); ok {
			return v, true
		}
	}
	return "", false
}

// titleChoices suggests up to 25 event titles starting with typed, case-insensitively.
func (h *Handler) titleChoices(ctx context.Context, typed string) []*discordgo.ApplicationCommandOptionChoice {
	events, err := h.events.ListEvents(ctx)
	if err != nil {
		return nil
	}
	typed = strings.ToLower(strings.TrimSpace(typed))
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, min(len(events), maxAutocompleteChoices))
	for _, e := range events {
		if len(choices) == maxAutocompleteChoices {
			break
		}
		if strings.HasPrefix(strings.ToLower(e.Title), typed) {
			choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: e.Title, Value: e.Title})
		}
	}
	return choices
}
