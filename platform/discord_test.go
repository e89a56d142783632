package platform

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUnknownMember(t *testing.T) {
	unknownMember := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMember}}
	notFound := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	rateLimited := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusTooManyRequests},
		Message:  &discordgo.APIErrorMessage{Code: 0},
	}

	assert.True(t, IsUnknownMember(unknownMember))
	assert.True(t, IsUnknownMember(fmt.Errorf("lookup: %w", unknownMember)))
	assert.True(t, IsUnknownMember(notFound))
	assert.False(t, IsUnknownMember(rateLimited))
	assert.False(t, IsUnknownMember(errors.New("connection reset")))
	assert.False(t, IsUnknownMember(nil))
}

func TestToMessage(t *testing.T) {
	m := ToMessage(&discordgo.Message{
		ID:        "M1",
		ChannelID: "T1",
		GuildID:   "G1",
		Author:    &discordgo.User{ID: "A1", Username: "alexandra"},
		Member:    &discordgo.Member{Nick: "Alex"},
	})
	assert.Equal(t, "A1", m.AuthorID)
	assert.Equal(t, "Alex", m.DisplayName())
	assert.False(t, m.IsBot)
	assert.False(t, m.IsWebhook)

	hook := ToMessage(&discordgo.Message{ID: "M2", ChannelID: "T1", WebhookID: "W1", Author: &discordgo.User{ID: "W1", Bot: true}})
	assert.True(t, hook.IsWebhook)
	assert.True(t, hook.IsBot)
	assert.Equal(t, "", hook.AuthorNick)
}

func TestToMember(t *testing.T) {
	m := ToMember(&discordgo.Member{User: &discordgo.User{ID: "U1", Username: "bob"}, Roles: []string{"R1"}}, "U1")
	assert.Equal(t, "U1", m.UserID)
	assert.Equal(t, "bob", m.Username)
	assert.True(t, m.HasRole("R1"))

	m = ToMember(&discordgo.Member{Nick: "Bobby"}, "U2")
	assert.Equal(t, "U2", m.UserID)
	assert.Equal(t, "Bobby", m.Nick)
}

func TestToThread(t *testing.T) {
	th := ToThread(&discordgo.Channel{ID: "T1", GuildID: "G1", ParentID: "C1", Name: "Help"})
	assert.Equal(t, "T1", th.ID)
	assert.Equal(t, "C1", th.ParentID)
	assert.False(t, th.ParentIsForum)
}

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func TestThreadMemberIDsFollowsPages(t *testing.T) {
	var mu sync.Mutex
	var afters []string
	s, err := discordgo.New("Bot test")
	require.NoError(t, err)
	s.Client = &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		after := r.URL.Query().Get("after")
		mu.Lock()
		afters = append(afters, after)
		mu.Unlock()

		var page []*discordgo.ThreadMember
		switch after {
		case "":
			for i := 0; i < threadMembersPage; i++ {
				page = append(page, &discordgo.ThreadMember{ID: "T1", UserID: fmt.Sprintf("U%03d", i)})
			}
		case "U099":
			page = append(page, &discordgo.ThreadMember{ID: "T1", UserID: "U100"})
		}
		body, _ := json.Marshal(page)
		return &http.Response{
			StatusCode: http.StatusOK,
			Header:     http.Header{"Content-Type": []string{"application/json"}},
			Body:       io.NopCloser(strings.NewReader(string(body))),
			Request:    r,
		}, nil
	})}

	d, err := NewDiscord(s, 16)
	require.NoError(t, err)
	ids, err := d.ThreadMemberIDs("T1")
	require.NoError(t, err)

	assert.Len(t, ids, 101)
	assert.True(t, ids["U000"])
	assert.True(t, ids["U100"])
	assert.Equal(t, []string{"", "U099"}, afters)
}
