package discord

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
)

const (
	colorUpcoming  = 0x2ECC71
	colorOngoing   = 0xF1C40F
	colorCompleted = 0xE74C3C
	colorUnknown   = 0x99AAB5

	gridWidth = 4
)

// Button actions carried in component custom IDs ("<action>:<title>").
const (
	ActionJoin     = "join"
	ActionLeave    = "leave"
	ActionComplete = "complete"
)

func CustomID(action, title string) string {
	return action + ":" + title
}

func ParseCustomID(id string) (action, title string, ok bool) {
	action, title, ok = strings.Cut(id, ":")
	if !ok || title == "" {
		return "", "", false
	}
	switch action {
	case ActionJoin, ActionLeave, ActionComplete:
		return action, title, true
	}
	return "", "", false
}

// Card is a rendered status card.
type Card struct {
	Embed      *discordgo.MessageEmbed
	Components []discordgo.MessageComponent
}

// BuildCard renders the status card of e at now. A final card has no buttons.
func BuildCard(tr output.Translator, locale string, e *entities.Event, now time.Time, final bool) Card {
	if final {
		return Card{Embed: finalEmbed(tr, locale, e)}
	}
	return Card{
		Embed:      liveEmbed(tr, locale, e, now),
		Components: participationButtons(tr, locale, e.Title),
	}
}

func liveEmbed(tr output.Translator, locale string, e *entities.Event, now time.Time) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: tr.T(locale, "card.status", nil), Value: "**" + statusLabel(tr, locale, e.Status) + "**", Inline: false},
		{Name: tr.T(locale, "card.date", nil), Value: "**" + DisplayDate(e.Date) + "**", Inline: true},
		{Name: tr.T(locale, "card.game_time", nil), Value: "**" + DisplayClock(e.Time) + "**", Inline: true},
	}

	start, err := e.StartInstant()
	if err == nil {
		countdown := tr.T(locale, "card.already_started", nil)
		if start.After(now) {
			countdown = Timestamp(start, TimestampRelative)
		}
		fields = append(fields,
			&discordgo.MessageEmbedField{Name: tr.T(locale, "card.local_time", nil), Value: Timestamp(start, TimestampShortTime), Inline: true},
			&discordgo.MessageEmbedField{Name: tr.T(locale, "card.countdown", nil), Value: countdown, Inline: false},
		)
	}

	participants := ParticipantGrid(e.Members())
	if e.Capacity != nil {
		participants += slotsBlock(tr, locale, e.HeadCount(), *e.Capacity)
	}
	if strings.TrimSpace(participants) == "" {
		participants = tr.T(locale, "card.no_participants", nil)
	}
	fields = append(fields,
		&discordgo.MessageEmbedField{Name: tr.T(locale, "card.participants", nil), Value: participants},
		infoField(tr, locale, e),
	)

	return &discordgo.MessageEmbed{
		Title:       "📅 " + e.Title,
		Description: "📝 " + e.Description,
		Color:       statusColor(e.Status),
		Fields:      fields,
		Footer:      &discordgo.MessageEmbedFooter{Text: tr.T(locale, "card.footer", nil)},
	}
}

func finalEmbed(tr output.Translator, locale string, e *entities.Event) *discordgo.MessageEmbed {
	participants := ParticipantGrid(e.Members())
	if participants == "" {
		participants = tr.T(locale, "card.no_participants", nil)
	}
	return &discordgo.MessageEmbed{
		Title:       "📅 " + e.Title,
		Description: "📝 " + e.Description,
		Color:       colorCompleted,
		Fields: []*discordgo.MessageEmbedField{
			{Name: tr.T(locale, "card.status", nil), Value: statusLabel(tr, locale, entities.StatusCompleted)},
			{Name: tr.T(locale, "card.date", nil), Value: "**" + DisplayDate(e.Date) + "**", Inline: true},
			{Name: tr.T(locale, "card.game_time", nil), Value: "**" + DisplayClock(e.Time) + "** UTC", Inline: true},
			{Name: tr.T(locale, "card.final_participants", nil), Value: participants},
			infoField(tr, locale, e),
		},
		Footer: &discordgo.MessageEmbedFooter{Text: tr.T(locale, "card.final_footer", nil)},
	}
}

func infoField(tr output.Translator, locale string, e *entities.Event) *discordgo.MessageEmbedField {
	return &discordgo.MessageEmbedField{
		Name: tr.T(locale, "card.info", nil),
		Value: tr.T(locale, "card.info_body", map[string]any{
			"Host":    UserMention(e.Host),
			"Created": DisplayCreatedAt(e.CreatedAt),
			"Size":    e.HeadCount(),
		}),
	}
}

// ParticipantGrid lays member mentions out gridWidth per line.
func ParticipantGrid(ids []string) string {
	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = UserMention(id)
	}
	return grid(mentions)
}

func slotsBlock(tr output.Translator, locale string, count, capacity int) string {
	var b strings.Builder
	if open := capacity - count; open > 0 {
		slot := "`" + tr.T(locale, "card.open_slot", nil) + "`"
		slots := make([]string, open)
		for i := range slots {
			slots[i] = slot
		}
		b.WriteString("\n")
		b.WriteString(grid(slots))
	}
	b.WriteString("\n\n")
	b.WriteString(tr.T(locale, "card.slots_filled", map[string]any{
		"Count": strconv.Itoa(count),
		"Max":   strconv.Itoa(capacity),
	}))
	if count >= capacity {
		b.WriteString(" ")
		b.WriteString(tr.T(locale, "card.full", nil))
	}
	return b.String()
}

func grid(cells []string) string {
	lines := make([]string, 0, (len(cells)+gridWidth-1)/gridWidth)
	for i := 0; i < len(cells); i += gridWidth {
		lines = append(lines, strings.Join(cells[i:min(i+gridWidth, len(cells))], " "))
	}
	return strings.Join(lines, "\n")
}

func participationButtons(tr output.Translator, locale, title string) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{Label: tr.T(locale, "button.join", nil), Style: discordgo.SuccessButton, CustomID: CustomID(ActionJoin, title)},
			discordgo.Button{Label: tr.T(locale, "button.leave", nil), Style: discordgo.SecondaryButton, CustomID: CustomID(ActionLeave, title)},
			discordgo.Button{Label: tr.T(locale, "button.complete", nil), Style: discordgo.DangerButton, CustomID: CustomID(ActionComplete, title)},
		}},
	}
}

func statusLabel(tr output.Translator, locale string, s entities.Status) string {
	if !s.Valid() {
		return "❓ " + string(s)
	}
	return tr.T(locale, "card.status."+string(s), nil)
}

func statusColor(s entities.Status) int {
	switch s {
	case entities.StatusUpcoming:
		return colorUpcoming
	case entities.StatusOngoing:
		return colorOngoing
	case entities.StatusCompleted:
		return colorCompleted
	}
	return colorUnknown
}
