package onboarding

import "autothread-bot/models"

// Platform is the subset of the chat platform the pipeline needs. Every call
// may fail independently.
type Platform interface {
	// ResolveMember returns nil, nil when the user is no longer in the guild.
	ResolveMember(guildID, userID string) (*models.Member, error)
	IsForum(channelID string) (bool, error)
	ThreadMemberIDs(threadID string) (map[string]bool, error)

	RenameThread(threadID, name string) error
	UnlockThread(threadID string) error
	PinMessage(channelID, messageID string) error
	SendMessage(channelID, content string) (string, error)
	SendNotice(channelID, title, description string) error
	EditMessage(channelID, messageID, content string) error
	DeleteMessage(channelID, messageID string) error
}
