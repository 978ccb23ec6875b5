package discord

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/domain"
	"eventbot/internal/ports/output"
)

// ClassifyRESTError tags discordgo REST failures so callers can tell a missing or forbidden
// object apart from a transport error. Other errors are returned unchanged.
func ClassifyRESTError(err error) error {
	if err == nil {
		return nil
	}
	var rest *discordgo.RESTError
	if !errors.As(err, &rest) || rest.Response == nil {
		return err
	}
	switch {
	case rest.Response.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %w", output.ErrGatewayNotFound, err)
	case rest.Response.StatusCode == http.StatusForbidden:
		return fmt.Errorf("%w: %w", output.ErrGatewayForbidden, err)
	case rest.Message != nil && isUnknownObject(rest.Message.Code):
		return fmt.Errorf("%w: %w", output.ErrGatewayNotFound, err)
	}
	return err
}

func isUnknownObject(code int) bool {
	switch code {
	case discordgo.ErrCodeUnknownRole,
		discordgo.ErrCodeUnknownMessage,
		discordgo.ErrCodeUnknownChannel,
		discordgo.ErrCodeUnknownMember:
		return true
	}
	return false
}

// ErrorMessage renders the reply for a failed action. Domain errors map to "errors.<code>";
// anything else is reported as an internal error.
func ErrorMessage(tr output.Translator, locale string, err error, data map[string]any) string {
	if err == nil {
		return ""
	}
	if code := domain.Code(err); code != "" {
		return tr.T(locale, "errors."+code, data)
	}
	return tr.T(locale, "errors.internal", data)
}
