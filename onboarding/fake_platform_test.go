package onboarding

import (
	"errors"
	"fmt"
	"sync"

	"autothread-bot/models"
)

var errBoom = errors.New("boom")

type call struct {
	Op      string
	Channel string
	Arg     string
}

// fakePlatform records every mutating call. Users missing from members
// resolve as gone unless listed in resolveErr.
type fakePlatform struct {
	mu            sync.Mutex
	members       map[string]*models.Member
	resolveErr    map[string]error
	forums        map[string]bool
	threadMembers map[string]bool
	failOn        map[string]error
	panicChannel  string
	calls         []call
	nextID        int
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		members:    make(map[string]*models.Member),
		resolveErr: make(map[string]error),
		forums:     make(map[string]bool),
		failOn:     make(map[string]error),
	}
}

func (f *fakePlatform) addMember(id string, roles ...string) {
	f.members[id] = &models.Member{UserID: id, Username: "user" + id, Roles: roles}
}

func (f *fakePlatform) record(op, channel, arg string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if channel != "" && channel == f.panicChannel {
		panic("platform exploded on " + channel)
	}
	f.calls = append(f.calls, call{Op: op, Channel: channel, Arg: arg})
	return f.failOn[op]
}

func (f *fakePlatform) Calls() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakePlatform) Ops() []string {
	var ops []string
	for _, c := range f.Calls() {
		ops = append(ops, c.Op)
	}
	return ops
}

func (f *fakePlatform) Find(op string) (call, bool) {
	for _, c := range f.Calls() {
		if c.Op == op {
			return c, true
		}
	}
	return call{}, false
}

func (f *fakePlatform) ResolveMember(guildID, userID string) (*models.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.resolveErr[userID]; ok {
		return nil, err
	}
	return f.members[userID], nil
}

func (f *fakePlatform) IsForum(channelID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.forums[channelID], nil
}

func (f *fakePlatform) ThreadMemberIDs(threadID string) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.threadMembers, nil
}

func (f *fakePlatform) RenameThread(threadID, name string) error {
	return f.record("rename", threadID, name)
}

func (f *fakePlatform) UnlockThread(threadID string) error {
	return f.record("unlock", threadID, "")
}

func (f *fakePlatform) PinMessage(channelID, messageID string) error {
	return f.record("pin", channelID, messageID)
}

func (f *fakePlatform) SendMessage(channelID, content string) (string, error) {
	if err := f.record("send", channelID, content); err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	return fmt.Sprintf("sent%d", f.nextID), nil
}

func (f *fakePlatform) SendNotice(channelID, title, description string) error {
	return f.record("notice", channelID, description)
}

func (f *fakePlatform) EditMessage(channelID, messageID, content string) error {
	return f.record("edit", channelID, content)
}

func (f *fakePlatform) DeleteMessage(channelID, messageID string) error {
	return f.record("delete", channelID, messageID)
}
