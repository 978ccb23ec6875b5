package discord

import (
	"fmt"
	"strings"
	"time"

	"eventbot/pkg/tz"
)

// Timestamp styles understood by the Discord client.
const (
	TimestampShortTime = "t"
	TimestampRelative  = "R"
)

// Timestamp renders t as a client-localized <t:unix:style> tag.
func Timestamp(t time.Time, style string) string {
	return fmt.Sprintf("<t:%d:%s>", t.Unix(), style)
}

// DisplayDate renders a stored DD-MM-YYYY date as MM/DD/YYYY; unparsable input is returned as is.
func DisplayDate(date string) string {
	d, err := time.ParseInLocation(tz.DateLayout, date, tz.Canonical)
	if err != nil {
		return date
	}
	return d.Format("01/02/2006")
}

// DisplayClock strips the zone suffix from a stored "HH:MM UTC" time.
func DisplayClock(clock string) string {
	return strings.TrimSpace(strings.TrimSuffix(clock, "UTC"))
}

func DisplayCreatedAt(t time.Time) string {
	return t.In(tz.Canonical).Format("Jan 02, 2006 at 03:04 PM")
}

func UserMention(id string) string {
	return "<@" + id + ">"
}

func RoleMention(id string) string {
	return "<@&" + id + ">"
}

// ParseUserID accepts a raw ID or a <@id> / <@!id> mention and returns the ID.
// ok is false when the input is not a user reference.
func ParseUserID(s string) (id string, ok bool) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "<@") && strings.HasSuffix(s, ">") {
		s = strings.TrimPrefix(s[2:len(s)-1], "!")
	}
	if s == "" {
		return "", false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return "", false
		}
	}
	return s, true
}
