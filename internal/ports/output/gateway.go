package output

import (
	"context"
	"errors"

	"eventbot/internal/domain/entities"
)

// Soft failure conditions a Gateway wraps its errors with.
var (
	ErrGatewayNotFound  = errors.New("gateway: not found")
	ErrGatewayForbidden = errors.New("gateway: forbidden")
)

// IsSoftFailure reports whether err is a missing or forbidden object on the platform side,
// as opposed to a transport or server failure.
func IsSoftFailure(err error) bool {
	return errors.Is(err, ErrGatewayNotFound) || errors.Is(err, ErrGatewayForbidden)
}

type AnnouncementKind string

const (
	AnnounceReminder  AnnouncementKind = "reminder"
	AnnounceStarted   AnnouncementKind = "started"
	AnnounceConcluded AnnouncementKind = "concluded"
)

// Announcement is a channel message addressed to everyone holding an event's marker.
type Announcement struct {
	Kind      AnnouncementKind
	ChannelID string
	MarkerID  string
	Title     string
}

// Gateway is the chat platform seen from the lifecycle engine. Every call may fail with a
// "not found" or "forbidden" condition; callers treat failures as soft.
type Gateway interface {
	CreateMarker(ctx context.Context, title string) (markerID string, err error)
	DeleteMarker(ctx context.Context, markerID string) error
	GrantMarker(ctx context.Context, userID, markerID string) error
	RevokeMarker(ctx context.Context, userID, markerID string) error
	MarkerHolderCount(ctx context.Context, markerID string) (int, error)

	Announce(ctx context.Context, a Announcement) error

	// RenderCard edits the event's status card, or posts a new one when it has none or the
	// stored message is gone. It returns the id of the message now showing the card.
	// final renders the concluded card without interactive controls.
	RenderCard(ctx context.Context, event *entities.Event, final bool) (messageID string, err error)
	DeleteCard(ctx context.Context, channelID, messageID string) error
}
