package models

// Thread is the metadata of a newly created thread the pipeline works on.
type Thread struct {
	ID            string
	GuildID       string
	ParentID      string
	Name          string
	ParentIsForum bool
}

// Message is the subset of a received message used for creator correlation.
type Message struct {
	ID             string
	ChannelID      string
	GuildID        string
	AuthorID       string
	AuthorUsername string
	AuthorNick     string
	IsBot          bool
	IsWebhook      bool
}

// DisplayName returns the nickname when set, the username otherwise.
func (m *Message) DisplayName() string {
	if m.AuthorNick != "" {
		return m.AuthorNick
	}
	return m.AuthorUsername
}

// Member is a resolved guild member.
type Member struct {
	UserID   string
	Username string
	Nick     string
	Roles    []string
}

// HasRole reports whether the member holds roleID.
func (m *Member) HasRole(roleID string) bool {
	for _, r := range m.Roles {
		if r == roleID {
			return true
		}
	}
	return false
}
