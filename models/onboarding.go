package models

import "strings"

// Plan is the inert result of the onboarding decision for one thread.
type Plan struct {
	// NewName is empty when the thread keeps its name.
	NewName string
	// PinMessageID is empty when nothing is pinned.
	PinMessageID string
	Greeting     string
	// Mentions lists the users to add, in roster order.
	Mentions      []string
	ExtraAddPings string
	// RemovedUsers are roster entries that no longer resolve to a guild member.
	RemovedUsers []string
}

// MentionText is the content of the silent bulk mention, empty when there is nothing to send.
func (p *Plan) MentionText() string {
	parts := make([]string, 0, len(p.Mentions)+1)
	for _, id := range p.Mentions {
		parts = append(parts, "<@"+id+">")
	}
	if p.ExtraAddPings != "" {
		parts = append(parts, p.ExtraAddPings)
	}
	return strings.Join(parts, " ")
}

// OnboardingRun is one completed pipeline run, as stored in the history database.
type OnboardingRun struct {
	RunID        string
	GuildID      string
	ThreadID     string
	ParentID     string
	CreatorID    string
	FinalName    string
	Pinned       bool
	AddedUsers   []string
	RemovedUsers []string
	Timestamp    int64
}
