package handlers

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"autothread-bot/database"
	"autothread-bot/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, maxUsers int) *database.TenantStore {
	t.Helper()
	return database.NewTenantStore(t.TempDir(), maxUsers)
}

func TestAddAndRemoveUser(t *testing.T) {
	store := newStore(t, 2)

	r := addUser(store, "G1", "U1")
	assert.True(t, r.Positive)
	assert.Equal(t, "Added user <@U1> to the auto-thread-join list.", r.Description)

	r = addUser(store, "G1", "U1")
	assert.False(t, r.Positive)
	assert.Equal(t, "That user is already listed.", r.Description)

	addUser(store, "G1", "U2")
	r = addUser(store, "G1", "U3")
	assert.False(t, r.Positive)
	assert.Equal(t, "List too long.", r.Title)
	assert.Contains(t, r.Description, "limit of 2")

	r = removeUser(store, "G1", "U1")
	assert.True(t, r.Positive)
	r = removeUser(store, "G1", "U1")
	assert.False(t, r.Positive)
	assert.Equal(t, "That user already isn't listed.", r.Description)
}

func TestListUsers(t *testing.T) {
	store := newStore(t, 0)
	addUser(store, "G1", "U1")
	addUser(store, "G1", "U2")
	filterCommand(store, "G1", "mode", "U2", "", "whitelist", false)
	filterCommand(store, "G1", "add_channel", "U2", "C1", "", false)

	r := listUsers(store, "G1")
	assert.True(t, r.Positive)
	assert.Equal(t, "List of 2 Users", r.Title)
	assert.Equal(t, "<@U1>\n<@U2> (only in <#C1>)", r.Description)
}

func TestFilterCommand(t *testing.T) {
	store := newStore(t, 0)

	r := filterCommand(store, "G1", "mode", "U1", "", "blacklist", false)
	assert.False(t, r.Positive)
	assert.Equal(t, "That user already isn't listed.", r.Description)

	addUser(store, "G1", "U1")
	r = filterCommand(store, "G1", "mode", "U1", "", "sideways", false)
	assert.False(t, r.Positive)
	assert.Equal(t, "Invalid Input", r.Title)

	r = filterCommand(store, "G1", "add_channel", "U1", "C1", "", false)
	assert.True(t, r.Positive)
	assert.Equal(t, "Filter of <@U1> is now (not in <#C1>).", r.Description)

	r = filterCommand(store, "G1", "forum_exclude", "U1", "", "", true)
	assert.Equal(t, "Filter of <@U1> is now (not in <#C1>; no forum posts).", r.Description)

	r = filterCommand(store, "G1", "remove_channel", "U1", "C1", "", false)
	assert.Equal(t, "Filter of <@U1> is now (no forum posts).", r.Description)

	r = filterCommand(store, "G1", "clear", "U1", "", "", false)
	assert.True(t, r.Positive)
	assert.Equal(t, "Removed the filter of <@U1>.", r.Description)

	r = filterCommand(store, "G1", "mode", "U1", "", "whitelist", false)
	assert.Equal(t, "Filter of <@U1> is now (no effect).", r.Description)
}

func TestSettingsCommand(t *testing.T) {
	store := newStore(t, 0)

	r := settingsCommand(store, "G1", "auto_prefix", "", "", "", true)
	assert.Equal(t, "Auto-Prefix is now enabled.", r.Description)
	r = settingsCommand(store, "G1", "auto_unlock", "", "", "", true)
	assert.Equal(t, "Auto-Unlock is now enabled.", r.Description)
	r = settingsCommand(store, "G1", "first_message", "  Welcome!  ", "", "", false)
	assert.Equal(t, "First-Message set to:\nWelcome!", r.Description)
	r = settingsCommand(store, "G1", "role_limit", "", "C1", "R1", false)
	assert.Equal(t, "Threads under <#C1> now only add holders of <@&R1>.", r.Description)

	r = settingsCommand(store, "G1", "show", "", "", "", false)
	assert.True(t, r.Positive)
	assert.Contains(t, r.Description, "Auto-Prefix is **enabled**")
	assert.Contains(t, r.Description, "Auto-Pin is **disabled**")
	assert.Contains(t, r.Description, "Auto-Unlock is **enabled**")
	assert.Contains(t, r.Description, "First-Message:\nWelcome!")
	assert.Contains(t, r.Description, "<#C1> only add holders of <@&R1>")

	r = settingsCommand(store, "G1", "first_message", "", "", "", false)
	assert.Equal(t, "First-Message disabled.", r.Description)
	r = settingsCommand(store, "G1", "role_limit", "", "C1", "", false)
	assert.Equal(t, "Removed the role limit of <#C1>.", r.Description)
	r = settingsCommand(store, "G1", "role_limit", "", "", "R1", false)
	assert.False(t, r.Positive)

	var cfg *models.TenantConfig
	require.NoError(t, store.View("G1", func(tn *database.Tenant) { cfg = tn.Config }))
	assert.True(t, cfg.AutoPrefix)
	assert.Empty(t, cfg.FirstMessage)
	assert.Empty(t, cfg.ChannelRoleLimits)
}

type fakeHistory struct {
	runs []models.OnboardingRun
	err  error
}

func (f fakeHistory) Recent(guildID string, limit int) ([]models.OnboardingRun, error) {
	return f.runs, f.err
}

func TestHistoryReply(t *testing.T) {
	assert.False(t, historyReply(nil, "G1").Positive)
	assert.False(t, historyReply(fakeHistory{err: errors.New("locked")}, "G1").Positive)
	assert.Equal(t, "No threads were onboarded yet.", historyReply(fakeHistory{}, "G1").Description)

	r := historyReply(fakeHistory{runs: []models.OnboardingRun{
		{ThreadID: "T1", Timestamp: 0, AddedUsers: []string{"U1", "U2"}, RemovedUsers: []string{"U3"}},
	}}, "G1")
	assert.True(t, r.Positive)
	assert.Equal(t, "Last 1 Threads", r.Title)
	assert.Equal(t, "<#T1> 1970-01-01 00:00: 2 added, 1 removed", r.Description)
}

func TestHelpReply(t *testing.T) {
	r := helpReply()
	assert.True(t, r.Positive)
	assert.Contains(t, r.Description, "/add (user)")
}

func TestListUsersWithNullFilterEntry(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "G1.yml"), []byte("users: [U1]\nuser_filters:\n  U1:\n"), 0644))
	store := database.NewTenantStore(dir, 0)

	r := listUsers(store, "G1")
	assert.True(t, r.Positive)
	assert.Equal(t, "<@U1>", r.Description)

	r = filterCommand(store, "G1", "add_channel", "U1", "C1", "", false)
	assert.True(t, r.Positive)
	assert.Equal(t, "Filter of <@U1> is now (not in <#C1>).", r.Description)
}
