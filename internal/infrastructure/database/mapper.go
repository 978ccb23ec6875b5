package database

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"eventbot/internal/domain/entities"
	"eventbot/internal/infrastructure/database/sqlc_generated"
	"eventbot/pkg/tz"
)

const attendeeDelimiter = ", "

func encodeAttendees(s entities.AttendeeSet) string {
	return strings.Join(s.IDs(), attendeeDelimiter)
}

// decodeAttendees splits the stored list. Rows written as mentions (<@id>, <@!id>) are
// normalized to bare user IDs.
func decodeAttendees(raw string) entities.AttendeeSet {
	var s entities.AttendeeSet
	for _, part := range strings.Split(raw, attendeeDelimiter) {
		s.Add(normalizeUserID(part))
	}
	return s
}

func normalizeUserID(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimPrefix(strings.TrimSuffix(s[2:], ">"), "!")
	}
	return s
}

// snowflakeToInt8 converts a Discord ID to a nullable BIGINT; "" maps to NULL.
func snowflakeToInt8(id string) (pgtype.Int8, error) {
	if id == "" {
		return pgtype.Int8{}, nil
	}
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return pgtype.Int8{}, fmt.Errorf("invalid snowflake %q: %w", id, err)
	}
	return pgtype.Int8{Int64: n, Valid: true}, nil
}

func int8ToSnowflake(v pgtype.Int8) string {
	if !v.Valid {
		return ""
	}
	return strconv.FormatInt(v.Int64, 10)
}

func capacityToInt4(c *int) pgtype.Int4 {
	if c == nil || *c <= 0 {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: int32(*c), Valid: true}
}

func textOrNull(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *s, Valid: true}
}

func pgtypeText(s string) pgtype.Text {
	return pgtype.Text{String: s, Valid: true}
}

func eventToDomain(e sqlc_generated.Event) (entities.Event, error) {
	createdAt, err := time.ParseInLocation(tz.CreatedAtLayout, e.CreatedAt, tz.Canonical)
	if err != nil {
		return entities.Event{}, fmt.Errorf("event %q: created_at %q: %w", e.Title, e.CreatedAt, err)
	}
	out := entities.Event{
		Title:       e.Title,
		Date:        e.Date,
		Time:        e.Time,
		Description: e.Description,
		Host:        normalizeUserID(e.Host),
		Attendees:   decodeAttendees(e.Attendees),
		MarkerID:    int8ToSnowflake(e.RoleID),
		MessageID:   e.MessageID,
		Status:      entities.Status(e.Status),
		CreatedAt:   createdAt,
	}
	if e.ChannelID != 0 {
		out.ChannelID = strconv.FormatInt(e.ChannelID, 10)
	}
	if e.MaxAttendees.Valid && e.MaxAttendees.Int32 > 0 {
		n := int(e.MaxAttendees.Int32)
		out.Capacity = &n
	}
	return out, nil
}

func eventToCreateParams(e *entities.Event) (sqlc_generated.CreateEventParams, error) {
	roleID, err := snowflakeToInt8(e.MarkerID)
	if err != nil {
		return sqlc_generated.CreateEventParams{}, fmt.Errorf("role id: %w", err)
	}
	channelID, err := snowflakeToInt8(e.ChannelID)
	if err != nil {
		return sqlc_generated.CreateEventParams{}, fmt.Errorf("channel id: %w", err)
	}
	return sqlc_generated.CreateEventParams{
		Title:        e.Title,
		Date:         e.Date,
		Time:         e.Time,
		Description:  e.Description,
		Attendees:    encodeAttendees(e.Attendees),
		MessageID:    e.MessageID,
		RoleID:       roleID,
		ChannelID:    channelID.Int64,
		Host:         e.Host,
		Status:       string(e.Status),
		CreatedAt:    e.CreatedAt.In(tz.Canonical).Format(tz.CreatedAtLayout),
		MaxAttendees: capacityToInt4(e.Capacity),
	}, nil
}
