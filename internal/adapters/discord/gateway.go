package discord

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/bwmarrin/discordgo"

	"eventbot/internal/domain/entities"
	"eventbot/internal/ports/output"
	pkgdiscord "eventbot/pkg/discord"
)

const membersPageSize = 1000

// restAPI is the subset of *discordgo.Session the gateway calls.
type restAPI interface {
	GuildRoleCreate(guildID string, data *discordgo.RoleParams, options ...discordgo.RequestOption) (*discordgo.Role, error)
	GuildRoleDelete(guildID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMembers(guildID, after string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
	ChannelMessageSendComplex(channelID string, data *discordgo.MessageSend, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditComplex(m *discordgo.MessageEdit, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
}

var _ output.Gateway = (*Gateway)(nil)

// Gateway implements output.Gateway on a Discord guild: markers are guild roles, cards and
// announcements are channel messages.
type Gateway struct {
	api     restAPI
	guildID string
	tr      output.Translator
	locale  string
	now     func() time.Time
}

func NewGateway(api restAPI, guildID string, tr output.Translator, locale string) *Gateway {
	return &Gateway{api: api, guildID: guildID, tr: tr, locale: locale, now: time.Now}
}

func (g *Gateway) CreateMarker(ctx context.Context, title string) (string, error) {
	mentionable := true
	role, err := g.api.GuildRoleCreate(g.guildID, &discordgo.RoleParams{
		Name:        title,
		Mentionable: &mentionable,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("create role %q: %w", title, pkgdiscord.ClassifyRESTError(err))
	}
	return role.ID, nil
}

func (g *Gateway) DeleteMarker(ctx context.Context, markerID string) error {
	if err := g.api.GuildRoleDelete(g.guildID, markerID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete role %s: %w", markerID, pkgdiscord.ClassifyRESTError(err))
	}
	return nil
}

func (g *Gateway) GrantMarker(ctx context.Context, userID, markerID string) error {
	if err := g.api.GuildMemberRoleAdd(g.guildID, userID, markerID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("add role %s to %s: %w", markerID, userID, pkgdiscord.ClassifyRESTError(err))
	}
	return nil
}

func (g *Gateway) RevokeMarker(ctx context.Context, userID, markerID string) error {
	if err := g.api.GuildMemberRoleRemove(g.guildID, userID, markerID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("remove role %s from %s: %w", markerID, userID, pkgdiscord.ClassifyRESTError(err))
	}
	return nil
}

// MarkerHolderCount pages through the guild member list counting holders of markerID.
func (g *Gateway) MarkerHolderCount(ctx context.Context, markerID string) (int, error) {
	count := 0
	after := ""
	for {
		members, err := g.api.GuildMembers(g.guildID, after, membersPageSize, discordgo.WithContext(ctx))
		if err != nil {
			return 0, fmt.Errorf("list members: %w", pkgdiscord.ClassifyRESTError(err))
		}
		for _, m := range members {
			if slices.Contains(m.Roles, markerID) {
				count++
			}
		}
		if len(members) < membersPageSize {
			return count, nil
		}
		last := members[len(members)-1]
		if last.User == nil {
			return count, nil
		}
		after = last.User.ID
	}
}

func (g *Gateway) Announce(ctx context.Context, a output.Announcement) error {
	if a.ChannelID == "" {
		return fmt.Errorf("announce %s for %q: %w", a.Kind, a.Title, output.ErrGatewayNotFound)
	}
	content := g.tr.T(g.locale, "announce."+string(a.Kind), map[string]any{
		"Title":   a.Title,
		"Mention": pkgdiscord.RoleMention(a.MarkerID),
	})
	_, err := g.api.ChannelMessageSendComplex(a.ChannelID, &discordgo.MessageSend{
		Content:         content,
		AllowedMentions: &discordgo.MessageAllowedMentions{Roles: []string{a.MarkerID}},
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("announce %s for %q: %w", a.Kind, a.Title, pkgdiscord.ClassifyRESTError(err))
	}
	return nil
}

func (g *Gateway) RenderCard(ctx context.Context, event *entities.Event, final bool) (string, error) {
	if event.ChannelID == "" {
		return "", fmt.Errorf("render card %q: no channel: %w", event.Title, output.ErrGatewayNotFound)
	}
	card := pkgdiscord.BuildCard(g.tr, g.locale, event, g.now(), final)
	embeds := []*discordgo.MessageEmbed{card.Embed}
	components := card.Components
	if components == nil {
		components = []discordgo.MessageComponent{}
	}

	if event.MessageID != "" {
		msg, err := g.api.ChannelMessageEditComplex(&discordgo.MessageEdit{
			ID:         event.MessageID,
			Channel:    event.ChannelID,
			Embeds:     &embeds,
			Components: &components,
		}, discordgo.WithContext(ctx))
		if err == nil {
			return msg.ID, nil
		}
		if err = pkgdiscord.ClassifyRESTError(err); !errors.Is(err, output.ErrGatewayNotFound) {
			return "", fmt.Errorf("edit card %q: %w", event.Title, err)
		}
	}

	msg, err := g.api.ChannelMessageSendComplex(event.ChannelID, &discordgo.MessageSend{
		Embeds:     embeds,
		Components: card.Components,
	}, discordgo.WithContext(ctx))
	if err != nil {
		return "", fmt.Errorf("send card %q: %w", event.Title, pkgdiscord.ClassifyRESTError(err))
	}
	return msg.ID, nil
}

func (g *Gateway) DeleteCard(ctx context.Context, channelID, messageID string) error {
	if err := g.api.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete message %s: %w", messageID, pkgdiscord.ClassifyRESTError(err))
	}
	return nil
}
