package handlers

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"autothread-bot/database"
	"autothread-bot/models"
)

// reply is the outcome of a config command, rendered as an embed.
type reply struct {
	Title       string
	Description string
	Positive    bool
}

func positive(title, description string) reply {
	return reply{Title: title, Description: description, Positive: true}
}

func negative(title, description string) reply {
	return reply{Title: title, Description: description}
}

const helpText = "The auto-thread join bot automatically adds specific users to any new threads created on the Discord." +
	"\nAdmins can use `/add (user)` to add a user to the auto-thread list, or `/remove (user)` to remove them from that list." +
	"\nAlso `/list` to view the current user list." +
	"\nAlso `/filter` to limit a user to (or keep them out of) specific channels, or away from forum posts." +
	"\nAlso `/settings` to configure the first-message, auto-prefix, auto-pin, auto-unlock and per-channel role limits." +
	"\nAlso `/history` to see the threads handled most recently." +
	"\nIf you're on the list, you can block this bot to hide the notifications but still be added to threads."

func helpReply() reply {
	return positive("Auto Thread Join Bot - Help", helpText)
}

// errorReply maps a configuration error to a user facing reply.
func errorReply(err error, maxUsers int) reply {
	switch {
	case errors.Is(err, database.ErrAlreadyListed):
		return negative("Invalid Input", "That user is already listed.")
	case errors.Is(err, database.ErrNotListed):
		return negative("Invalid Input", "That user already isn't listed.")
	case errors.Is(err, database.ErrRosterFull):
		return negative("List too long.", fmt.Sprintf("The user list has reached the limit of %d.\nRemove some users to be able to add more.", maxUsers))
	case errors.Is(err, database.ErrInvalidInput):
		return negative("Invalid Input", "Give a user, channel or role. Any other input won't work.")
	default:
		return negative("Error", "Failed to save the settings, try again later.")
	}
}

// mutate runs fn under the tenant lock and turns the outcome into a reply.
func mutate(store *database.TenantStore, guildID string, fn func(t *database.Tenant) (reply, error)) reply {
	var out reply
	maxUsers := models.DefaultMaxUsers
	err := store.Update(guildID, func(t *database.Tenant) error {
		maxUsers = t.MaxUsers()
		r, err := fn(t)
		out = r
		return err
	})
	if err != nil {
		return errorReply(err, maxUsers)
	}
	return out
}

func addUser(store *database.TenantStore, guildID, userID string) reply {
	return mutate(store, guildID, func(t *database.Tenant) (reply, error) {
		if err := t.AddUser(userID); err != nil {
			return reply{}, err
		}
		return positive("Added", fmt.Sprintf("Added user <@%s> to the auto-thread-join list.", userID)), nil
	})
}

func removeUser(store *database.TenantStore, guildID, userID string) reply {
	return mutate(store, guildID, func(t *database.Tenant) (reply, error) {
		if err := t.RemoveUser(userID); err != nil {
			return reply{}, err
		}
		return positive("Removed", fmt.Sprintf("Removed user <@%s> from the auto-thread-join list.", userID)), nil
	})
}

func listUsers(store *database.TenantStore, guildID string) reply {
	var out reply
	err := store.View(guildID, func(t *database.Tenant) {
		cfg := t.Config
		lines := make([]string, 0, len(cfg.Users))
		for _, id := range cfg.Users {
			line := fmt.Sprintf("<@%s>", id)
			if f, ok := cfg.UserFilters[id]; ok && f != nil {
				line += " " + describeFilter(f)
			}
			lines = append(lines, line)
		}
		out = positive(fmt.Sprintf("List of %d Users", len(cfg.Users)), strings.Join(lines, "\n"))
	})
	if err != nil {
		return errorReply(err, 0)
	}
	return out
}

func describeFilter(f *models.UserFilter) string {
	var parts []string
	if len(f.ChannelSet) > 0 {
		mode := "only in"
		if !f.IsWhitelist {
			mode = "not in"
		}
		channels := make([]string, 0, len(f.ChannelSet))
		for _, c := range f.ChannelSet {
			channels = append(channels, "<#"+c+">")
		}
		parts = append(parts, mode+" "+strings.Join(channels, ", "))
	}
	if f.ForumExclude {
		parts = append(parts, "no forum posts")
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, "; ") + ")"
}

func filterCommand(store *database.TenantStore, guildID, sub, userID, channelID, mode string, enabled bool) reply {
	return mutate(store, guildID, func(t *database.Tenant) (reply, error) {
		var err error
		switch sub {
		case "mode":
			if mode != "whitelist" && mode != "blacklist" {
				return reply{}, database.ErrInvalidInput
			}
			err = t.SetFilterMode(userID, mode == "whitelist")
		case "add_channel":
			err = t.AddFilterChannel(userID, channelID)
		case "remove_channel":
			err = t.RemoveFilterChannel(userID, channelID)
		case "forum_exclude":
			err = t.SetForumExclude(userID, enabled)
		case "clear":
			err = t.ClearFilter(userID)
			if err == nil {
				return positive("Filter", fmt.Sprintf("Removed the filter of <@%s>.", userID)), nil
			}
		default:
			return reply{}, database.ErrInvalidInput
		}
		if err != nil {
			return reply{}, err
		}
		desc := describeFilter(t.Config.UserFilters[userID])
		if desc == "" {
			desc = "(no effect)"
		}
		return positive("Filter", fmt.Sprintf("Filter of <@%s> is now %s.", userID, desc)), nil
	})
}

func onOff(b bool) string {
	if b {
		return "enabled"
	}
	return "disabled"
}

func showSettings(store *database.TenantStore, guildID string) reply {
	var out reply
	err := store.View(guildID, func(t *database.Tenant) {
		cfg := t.Config
		var b strings.Builder
		fmt.Fprintf(&b, "Auto-Prefix is **%s**\n", onOff(cfg.AutoPrefix))
		fmt.Fprintf(&b, "Auto-Pin is **%s**\n", onOff(cfg.AutoPin))
		fmt.Fprintf(&b, "Auto-Unlock is **%s**\n", onOff(cfg.AutoUnlock))
		if cfg.FirstMessage == "" {
			b.WriteString("First-Message is **disabled**\n")
		} else {
			fmt.Fprintf(&b, "First-Message:\n%s\n", cfg.FirstMessage)
		}
		if cfg.ExtraAddPings != "" {
			fmt.Fprintf(&b, "Extra pings: %s\n", cfg.ExtraAddPings)
		}
		for ch, role := range cfg.ChannelRoleLimits {
			fmt.Fprintf(&b, "Threads under <#%s> only add holders of <@&%s>\n", ch, role)
		}
		out = positive("Settings", b.String())
	})
	if err != nil {
		return errorReply(err, 0)
	}
	return out
}

func settingsCommand(store *database.TenantStore, guildID, sub, text, channelID, roleID string, enabled bool) reply {
	if sub == "show" {
		return showSettings(store, guildID)
	}
	return mutate(store, guildID, func(t *database.Tenant) (reply, error) {
		switch sub {
		case "first_message":
			t.SetFirstMessage(strings.TrimSpace(text))
			if t.Config.FirstMessage == "" {
				return positive("First-Message", "First-Message disabled."), nil
			}
			return positive("First-Message", "First-Message set to:\n"+t.Config.FirstMessage), nil
		case "extra_pings":
			t.SetExtraAddPings(strings.TrimSpace(text))
			if t.Config.ExtraAddPings == "" {
				return positive("Extra Pings", "Extra pings cleared."), nil
			}
			return positive("Extra Pings", "Extra pings set to: "+t.Config.ExtraAddPings), nil
		case "auto_prefix":
			t.SetAutoPrefix(enabled)
			return positive("Auto-Prefix Status", fmt.Sprintf("Auto-Prefix is now %s.", onOff(enabled))), nil
		case "auto_pin":
			t.SetAutoPin(enabled)
			return positive("Auto-Pin Status", fmt.Sprintf("Auto-Pin is now %s.", onOff(enabled))), nil
		case "auto_unlock":
			t.SetAutoUnlock(enabled)
			return positive("Auto-Unlock Status", fmt.Sprintf("Auto-Unlock is now %s.", onOff(enabled))), nil
		case "role_limit":
			if err := t.SetChannelRoleLimit(channelID, roleID); err != nil {
				return reply{}, err
			}
			if roleID == "" {
				return positive("Role Limit", fmt.Sprintf("Removed the role limit of <#%s>.", channelID)), nil
			}
			return positive("Role Limit", fmt.Sprintf("Threads under <#%s> now only add holders of <@&%s>.", channelID, roleID)), nil
		default:
			return reply{}, database.ErrInvalidInput
		}
	})
}

// historyLister is the part of the history database used by /history.
type historyLister interface {
	Recent(guildID string, limit int) ([]models.OnboardingRun, error)
}

func historyReply(h historyLister, guildID string) reply {
	if h == nil {
		return negative("History", "Onboarding history is disabled on this bot.")
	}
	runs, err := h.Recent(guildID, 10)
	if err != nil {
		return negative("History", "Failed to read the onboarding history.")
	}
	if len(runs) == 0 {
		return positive("History", "No threads were onboarded yet.")
	}
	lines := make([]string, 0, len(runs))
	for _, run := range runs {
		lines = append(lines, fmt.Sprintf("<#%s> %s: %d added, %d removed",
			run.ThreadID, time.Unix(run.Timestamp, 0).UTC().Format("2006-01-02 15:04"), len(run.AddedUsers), len(run.RemovedUsers)))
	}
	return positive(fmt.Sprintf("Last %d Threads", len(runs)), strings.Join(lines, "\n"))
}
