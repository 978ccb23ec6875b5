package discord

import (
	"context"

	"eventbot/internal/domain/entities"
	pkgdiscord "eventbot/pkg/discord"
)

// runButton handles a status card button. Custom IDs carry the event title, so buttons on
// cards posted before a restart keep working.
func (h *Handler) runButton(ctx context.Context, actor entities.Actor, locale, customID string) (string, bool) {
	action, title, ok := pkgdiscord.ParseCustomID(customID)
	if !ok {
		return "", false
	}
	switch action {
	case pkgdiscord.ActionJoin:
		return h.join(ctx, actor, locale, title), true
	case pkgdiscord.ActionLeave:
		return h.leave(ctx, actor, locale, title), true
	case pkgdiscord.ActionComplete:
		return h.complete(ctx, actor, locale, title), true
	}
	return "", false
}
