package discord

import (
	"context"
	"strconv"
	"strings"

	"github.com/google/shlex"

	"eventbot/internal/domain"
	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/input"
	pkgdiscord "eventbot/pkg/discord"
)

var prefixUsage = map[string]string{
	"host_event":      `host_event "title" DD-MM-YYYY HH:MM "description" [max]`,
	"join":            `join "title"`,
	"leave":           `leave "title"`,
	"transferhost":    `transferhost "title" @member`,
	"remove":          `remove "title" @member`,
	"edit":            `edit "title" time|date|description|max|capacity|remove value`,
	"complete":        `complete "title"`,
	"deleteevent":     `deleteevent "title"`,
	"deleteallevents": `deleteallevents`,
	"commands":        `commands`,
}

var curlyQuotes = strings.NewReplacer("“", `"`, "”", `"`)

// editFieldAliases maps the field names typed after "edit" to editable fields.
var editFieldAliases = map[string]input.EditField{
	"time":        input.FieldTime,
	"date":        input.FieldDate,
	"description": input.FieldDescription,
	"max":         input.FieldCapacity,
	"capacity":    input.FieldCapacity,
}

// splitArgs tokenizes a command line with shell quoting rules. Curly double quotes, as typed by
// mobile keyboards, count as straight ones.
func splitArgs(line string) ([]string, error) {
	return shlex.Split(curlyQuotes.Replace(line))
}

// runPrefix executes a text command. handled is false when content is not addressed to the bot.
func (h *Handler) runPrefix(ctx context.Context, actor entities.Actor, locale, channelID, content string) (reply string, handled bool) {
	if h.prefix == "" || !strings.HasPrefix(content, h.prefix) {
		return "", false
	}
	line := strings.TrimPrefix(content, h.prefix)
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", false
	}
	name := strings.ToLower(fields[0])
	usage, known := prefixUsage[name]
	if !known {
		return h.tr.T(locale, "errors.unknown_command", map[string]any{"Prefix": h.prefix}), true
	}
	args, err := splitArgs(line)
	if err == nil && len(args) > 0 {
		if reply, ok := h.dispatchPrefix(ctx, actor, locale, channelID, name, args[1:]); ok {
			return reply, true
		}
	}
	return h.tr.T(locale, "errors.usage", map[string]any{"Usage": h.prefix + usage}), true
}

// dispatchPrefix returns ok=false when args do not fit the command's usage.
func (h *Handler) dispatchPrefix(ctx context.Context, actor entities.Actor, locale, channelID, name string, args []string) (string, bool) {
	switch name {
	case "host_event":
		if len(args) != 4 && len(args) != 5 {
			return "", false
		}
		capacity := 0
		if len(args) == 5 {
			n, err := strconv.Atoi(args[4])
			if err != nil {
				return h.failure(locale, args[0], domain.ErrInvalidCapacity), true
			}
			capacity = n
		}
		return h.hostEvent(ctx, actor, locale, input.CreateEventInput{
			Title:       args[0],
			Date:        args[1],
			Time:        args[2],
			Description: args[3],
			Capacity:    capacity,
			ChannelID:   channelID,
		}), true
	case "join", "leave", "complete", "deleteevent":
		if len(args) != 1 {
			return "", false
		}
		switch name {
		case "join":
			return h.join(ctx, actor, locale, args[0]), true
		case "leave":
			return h.leave(ctx, actor, locale, args[0]), true
		case "complete":
			return h.complete(ctx, actor, locale, args[0]), true
		}
		return h.deleteEvent(ctx, actor, locale, args[0]), true
	case "transferhost", "remove":
		if len(args) != 2 {
			return "", false
		}
		member, ok := pkgdiscord.ParseUserID(args[1])
		if !ok {
			return "", false
		}
		if name == "transferhost" {
			return h.transferHost(ctx, actor, locale, args[0], member), true
		}
		return h.removeParticipant(ctx, actor, locale, args[0], member), true
	case "edit":
		if len(args) < 3 {
			return "", false
		}
		title, field, value := args[0], strings.ToLower(args[1]), strings.Join(args[2:], " ")
		if field == "remove" {
			member, ok := pkgdiscord.ParseUserID(value)
			if !ok {
				return "", false
			}
			return h.removeParticipant(ctx, actor, locale, title, member), true
		}
		editField, ok := editFieldAliases[field]
		if !ok {
			editField = input.EditField(field)
		}
		return h.edit(ctx, actor, locale, title, editField, value), true
	case "deleteallevents":
		return h.deleteAll(ctx, actor, locale), true
	case "commands":
		return h.help(locale), true
	}
	return "", false
}
