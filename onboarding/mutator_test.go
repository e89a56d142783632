package onboarding

import (
	"testing"

	"autothread-bot/models"

	"github.com/stretchr/testify/assert"
)

func fullPlan() models.Plan {
	return models.Plan{
		NewName:      "(Alexandra) Help",
		PinMessageID: "M1",
		Greeting:     "Welcome!",
		Mentions:     []string{"U1", "U2"},
		RemovedUsers: []string{"U9"},
	}
}

func TestMutatorOrder(t *testing.T) {
	p := newFakePlatform()
	res := NewMutator(p).Apply(models.Thread{ID: "T1"}, fullPlan())

	assert.Equal(t, []string{"rename", "pin", "send", "notice", "send", "edit", "delete"}, p.Ops())
	calls := p.Calls()
	assert.Equal(t, "(Alexandra) Help", calls[0].Arg)
	assert.Equal(t, "M1", calls[1].Arg)
	assert.Equal(t, "Welcome!", calls[2].Arg)
	assert.Equal(t, "Failed to add user U9 - did they leave the Discord?", calls[3].Arg)
	assert.Equal(t, mentionPlaceholder, calls[4].Arg)
	assert.Equal(t, "<@U1> <@U2>", calls[5].Arg)
	assert.Equal(t, "sent2", calls[6].Arg)
	for _, c := range calls {
		assert.Equal(t, "T1", c.Channel)
	}
	assert.Equal(t, Result{Renamed: true, Pinned: true, Greeted: true, Mentioned: true}, res)
}

func TestMutatorContinuesAfterFailures(t *testing.T) {
	p := newFakePlatform()
	p.failOn["rename"] = errBoom
	p.failOn["pin"] = errBoom
	p.failOn["edit"] = errBoom

	res := NewMutator(p).Apply(models.Thread{ID: "T1"}, fullPlan())

	assert.Equal(t, []string{"rename", "pin", "send", "notice", "send", "edit", "delete"}, p.Ops())
	assert.False(t, res.Renamed)
	assert.False(t, res.Pinned)
	assert.True(t, res.Greeted)
	assert.False(t, res.Mentioned)
	assert.Equal(t, 3, res.Failures)
}

func TestMutatorPlaceholderFailureSkipsEdit(t *testing.T) {
	p := newFakePlatform()
	p.failOn["send"] = errBoom

	res := NewMutator(p).Apply(models.Thread{ID: "T1"}, models.Plan{Mentions: []string{"U1"}})

	assert.Equal(t, []string{"send"}, p.Ops())
	assert.Equal(t, 1, res.Failures)
}

func TestMutatorEmptyPlanDoesNothing(t *testing.T) {
	p := newFakePlatform()
	res := NewMutator(p).Apply(models.Thread{ID: "T1"}, models.Plan{})
	assert.Empty(t, p.Calls())
	assert.Equal(t, Result{}, res)
}
