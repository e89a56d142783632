package onboarding

import (
	"regexp"
	"strings"

	"autothread-bot/models"
)

const (
	// Runs of name characters at most this long are considered too short to
	// stand for the author, so the whole trimmed name is used instead.
	minNameRun = 5
	// maxPrefixRunes bounds the author fragment: "Alexandra_Smith123" becomes "Alexandra_S".
	maxPrefixRunes = 11
	// Discord allows 100; leave room for the platform's own accounting.
	maxThreadNameRunes = 98
)

var nameRun = regexp.MustCompile(`[A-Za-z0-9_]+`)

// PlanInput is everything the decision needs. Members maps roster user IDs
// to their resolved guild member; a nil value means the user is gone from the
// guild, a missing key means resolution failed for another reason and the
// user is skipped this time.
type PlanInput struct {
	Config        *models.TenantConfig
	Thread        models.Thread
	Creator       *models.Message
	Members       map[string]*models.Member
	ThreadMembers map[string]bool
}

// BuildPlan decides how a new thread is onboarded. It performs no I/O.
func BuildPlan(in PlanInput) models.Plan {
	cfg := in.Config
	plan := models.Plan{
		Greeting:      cfg.FirstMessage,
		ExtraAddPings: cfg.ExtraAddPings,
	}

	if cfg.AutoPrefix && in.Creator != nil {
		plan.NewName = PrefixedName(in.Creator.DisplayName(), in.Thread.Name)
	}
	if cfg.AutoPin && in.Creator != nil {
		plan.PinMessageID = in.Creator.ID
	}

	for _, userID := range cfg.Users {
		member, ok := in.Members[userID]
		if !ok {
			continue
		}
		if member == nil {
			plan.RemovedUsers = append(plan.RemovedUsers, userID)
			continue
		}
		if !Eligible(cfg, in.Thread, userID, member) {
			continue
		}
		if in.ThreadMembers[userID] {
			continue
		}
		plan.Mentions = append(plan.Mentions, userID)
	}
	return plan
}

// Eligible applies the user filter and the channel role limit.
func Eligible(cfg *models.TenantConfig, thread models.Thread, userID string, member *models.Member) bool {
	if f, ok := cfg.UserFilters[userID]; ok && f != nil {
		if len(f.ChannelSet) > 0 && f.HasChannel(thread.ParentID) != f.IsWhitelist {
			return false
		}
		if f.ForumExclude && thread.ParentIsForum {
			return false
		}
	}
	if role, ok := cfg.ChannelRoleLimits[thread.ParentID]; ok && role != "" {
		if !member.HasRole(role) {
			return false
		}
	}
	return true
}

// PrefixedName returns "(<fragment>) <name>", or "" when the thread name
// already carries a prefix or no fragment can be derived.
func PrefixedName(displayName, threadName string) string {
	if strings.HasPrefix(threadName, "(") || strings.HasPrefix(threadName, "[") {
		return ""
	}
	fragment := ShortName(displayName)
	if fragment == "" {
		return ""
	}
	return truncateRunes("("+fragment+") "+threadName, maxThreadNameRunes)
}

// ShortName derives the author fragment used in thread prefixes. The cap of
// maxPrefixRunes follows the documented example, where "Alexandra_Smith123"
// must yield "Alexandra_S" (11 characters), rather than a 10 character reading.
func ShortName(displayName string) string {
	name := strings.TrimSpace(displayName)
	if run := nameRun.FindString(name); len(run) > minNameRun {
		name = run
	}
	return truncateRunes(name, maxPrefixRunes)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
