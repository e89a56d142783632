package onboarding

import (
	"fmt"

	"autothread-bot/models"
	"autothread-bot/utils"
)

// mentionPlaceholder is posted first and then edited into the mention list,
// so the users are pulled into the thread without an "added N members" line.
const mentionPlaceholder = "(Adding users to thread...)"

// Result reports what the mutator managed to do.
type Result struct {
	Renamed   bool
	Pinned    bool
	Greeted   bool
	Mentioned bool
	Failures  int
}

// Mutator executes a plan against the platform. Every step is best-effort.
type Mutator struct {
	platform Platform
}

// NewMutator creates a mutator for p.
func NewMutator(p Platform) *Mutator {
	return &Mutator{platform: p}
}

// ApplyLocked performs the rename, pin, greeting and stale-user notices. It
// runs while the tenant lock is held.
func (m *Mutator) ApplyLocked(thread models.Thread, plan models.Plan, res *Result) {
	if plan.NewName != "" {
		if err := m.platform.RenameThread(thread.ID, plan.NewName); err != nil {
			m.fail(res, "Rename", thread, err)
		} else {
			res.Renamed = true
		}
	}
	if plan.PinMessageID != "" {
		if err := m.platform.PinMessage(thread.ID, plan.PinMessageID); err != nil {
			m.fail(res, "Pin", thread, err)
		} else {
			res.Pinned = true
		}
	}
	if plan.Greeting != "" {
		if _, err := m.platform.SendMessage(thread.ID, plan.Greeting); err != nil {
			m.fail(res, "Greeting", thread, err)
		} else {
			res.Greeted = true
		}
	}
	for _, userID := range plan.RemovedUsers {
		desc := fmt.Sprintf("Failed to add user %s - did they leave the Discord?", userID)
		if err := m.platform.SendNotice(thread.ID, "Error", desc); err != nil {
			m.fail(res, "RemovedUserNotice", thread, err)
		}
	}
}

// Mention performs the silent bulk mention. It does not touch tenant state
// and runs after the tenant lock is released.
func (m *Mutator) Mention(thread models.Thread, plan models.Plan, res *Result) {
	text := plan.MentionText()
	if text == "" {
		return
	}
	msgID, err := m.platform.SendMessage(thread.ID, mentionPlaceholder)
	if err != nil {
		m.fail(res, "MentionPlaceholder", thread, err)
		return
	}
	if err := m.platform.EditMessage(thread.ID, msgID, text); err != nil {
		m.fail(res, "MentionEdit", thread, err)
	} else {
		res.Mentioned = true
	}
	if err := m.platform.DeleteMessage(thread.ID, msgID); err != nil {
		m.fail(res, "MentionDelete", thread, err)
	}
}

// Apply runs both phases back to back.
func (m *Mutator) Apply(thread models.Thread, plan models.Plan) Result {
	var res Result
	m.ApplyLocked(thread, plan, &res)
	m.Mention(thread, plan, &res)
	return res
}

func (m *Mutator) fail(res *Result, operation string, thread models.Thread, err error) {
	res.Failures++
	utils.Warn("Onboarding", operation, fmt.Sprintf("thread %s in guild %s: %v", thread.ID, thread.GuildID, err))
}
