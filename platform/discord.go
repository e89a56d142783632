package platform

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"autothread-bot/models"

	"github.com/bwmarrin/discordgo"
	lru "github.com/hashicorp/golang-lru"
)

// Discord implements onboarding.Platform on top of a discordgo session.
type Discord struct {
	s *discordgo.Session
	// parent channel ID -> bool (is forum)
	forums *lru.Cache
}

// NewDiscord wraps s. cacheSize bounds the parent channel type cache.
func NewDiscord(s *discordgo.Session, cacheSize int) (*Discord, error) {
	cache, err := lru.New(cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create channel cache: %w", err)
	}
	return &Discord{s: s, forums: cache}, nil
}

// ResolveMember looks the member up in the state cache first, then over REST.
func (d *Discord) ResolveMember(guildID, userID string) (*models.Member, error) {
	if m, err := d.s.State.Member(guildID, userID); err == nil {
		return ToMember(m, userID), nil
	}
	m, err := d.s.GuildMember(guildID, userID)
	if err != nil {
		if IsUnknownMember(err) {
			return nil, nil
		}
		return nil, err
	}
	return ToMember(m, userID), nil
}

// IsForum reports whether channelID is a forum channel.
func (d *Discord) IsForum(channelID string) (bool, error) {
	if v, ok := d.forums.Get(channelID); ok {
		return v.(bool), nil
	}
	ch, err := d.s.State.Channel(channelID)
	if err != nil {
		ch, err = d.s.Channel(channelID)
		if err != nil {
			return false, err
		}
	}
	isForum := ch.Type == discordgo.ChannelTypeGuildForum
	d.forums.Add(channelID, isForum)
	return isForum, nil
}

// threadMembersPage is the largest page the thread members endpoint returns.
const threadMembersPage = 100

// ThreadMemberIDs lists the users already in a thread, following pages.
func (d *Discord) ThreadMemberIDs(threadID string) (map[string]bool, error) {
	ids := make(map[string]bool)
	after := ""
	for {
		members, err := d.s.ThreadMembers(threadID, threadMembersPage, false, after)
		if err != nil {
			return nil, err
		}
		for _, m := range members {
			ids[m.UserID] = true
		}
		if len(members) < threadMembersPage {
			return ids, nil
		}
		after = members[len(members)-1].UserID
	}
}

func (d *Discord) RenameThread(threadID, name string) error {
	_, err := d.s.ChannelEdit(threadID, &discordgo.ChannelEdit{Name: name})
	return err
}

func (d *Discord) UnlockThread(threadID string) error {
	locked := false
	_, err := d.s.ChannelEdit(threadID, &discordgo.ChannelEdit{Locked: &locked})
	return err
}

func (d *Discord) PinMessage(channelID, messageID string) error {
	return d.s.ChannelMessagePin(channelID, messageID)
}

func (d *Discord) SendMessage(channelID, content string) (string, error) {
	msg, err := d.s.ChannelMessageSend(channelID, content)
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (d *Discord) SendNotice(channelID, title, description string) error {
	_, err := d.s.ChannelMessageSendEmbed(channelID, &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       0xff0000,
		Timestamp:   time.Now().Format(time.RFC3339),
	})
	return err
}

func (d *Discord) EditMessage(channelID, messageID, content string) error {
	_, err := d.s.ChannelMessageEdit(channelID, messageID, content)
	return err
}

func (d *Discord) DeleteMessage(channelID, messageID string) error {
	return d.s.ChannelMessageDelete(channelID, messageID)
}

// IsUnknownMember reports whether err is Discord's answer for a user that is
// not (or no longer) part of the guild.
func IsUnknownMember(err error) bool {
	var restErr *discordgo.RESTError
	if !errors.As(err, &restErr) {
		return false
	}
	if restErr.Message != nil {
		switch restErr.Message.Code {
		case discordgo.ErrCodeUnknownMember, discordgo.ErrCodeUnknownUser:
			return true
		}
	}
	return restErr.Response != nil && restErr.Response.StatusCode == http.StatusNotFound
}

// ToMember converts a discordgo member looked up by userID.
func ToMember(m *discordgo.Member, userID string) *models.Member {
	out := &models.Member{UserID: userID, Nick: m.Nick, Roles: m.Roles}
	if m.User != nil {
		out.UserID = m.User.ID
		out.Username = m.User.Username
	}
	return out
}

// ToMessage converts a received discordgo message.
func ToMessage(m *discordgo.Message) *models.Message {
	out := &models.Message{
		ID:        m.ID,
		ChannelID: m.ChannelID,
		GuildID:   m.GuildID,
		IsWebhook: m.WebhookID != "",
	}
	if m.Author != nil {
		out.AuthorID = m.Author.ID
		out.AuthorUsername = m.Author.Username
		out.IsBot = m.Author.Bot
	}
	if m.Member != nil {
		out.AuthorNick = m.Member.Nick
	}
	return out
}

// ToThread converts a thread channel. The parent channel type is resolved later.
func ToThread(ch *discordgo.Channel) models.Thread {
	return models.Thread{
		ID:       ch.ID,
		GuildID:  ch.GuildID,
		ParentID: ch.ParentID,
		Name:     ch.Name,
	}
}
