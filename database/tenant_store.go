package database

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"autothread-bot/models"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
	"gopkg.in/yaml.v3"
)

var (
	ErrAlreadyListed = errors.New("user is already listed")
	ErrNotListed     = errors.New("user isn't listed")
	ErrRosterFull    = errors.New("user list is full")
	ErrInvalidInput  = errors.New("invalid input")
)

// Tenant is the in-memory state of one guild. Its fields may only be read or
// written while its lock is held, which TenantStore.Update takes care of.
type Tenant struct {
	GuildID string
	Config  *models.TenantConfig

	mu       sync.Mutex
	modified bool
	maxUsers int
}

// Modified reports whether the tenant has unsaved changes.
func (t *Tenant) Modified() bool {
	return t.modified
}

// MaxUsers is the roster capacity.
func (t *Tenant) MaxUsers() int {
	return t.maxUsers
}

// AddUser appends userID to the roster.
func (t *Tenant) AddUser(userID string) error {
	if userID == "" {
		return ErrInvalidInput
	}
	if t.Config.HasUser(userID) {
		return ErrAlreadyListed
	}
	if len(t.Config.Users) >= t.maxUsers {
		return ErrRosterFull
	}
	t.Config.Users = append(t.Config.Users, userID)
	t.modified = true
	return nil
}

// RemoveUser drops userID from the roster together with its filter.
func (t *Tenant) RemoveUser(userID string) error {
	idx := -1
	for i, id := range t.Config.Users {
		if id == userID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrNotListed
	}
	t.Config.Users = append(t.Config.Users[:idx], t.Config.Users[idx+1:]...)
	delete(t.Config.UserFilters, userID)
	t.modified = true
	return nil
}

// Filter returns the filter of a roster user, creating an empty blacklist
// filter when none exists yet.
func (t *Tenant) Filter(userID string) (*models.UserFilter, error) {
	if !t.Config.HasUser(userID) {
		return nil, ErrNotListed
	}
	f, ok := t.Config.UserFilters[userID]
	if !ok || f == nil {
		f = &models.UserFilter{}
		t.Config.UserFilters[userID] = f
		t.modified = true
	}
	return f, nil
}

// SetFilterMode switches a user's channel set between allow-list and deny-list.
func (t *Tenant) SetFilterMode(userID string, whitelist bool) error {
	f, err := t.Filter(userID)
	if err != nil {
		return err
	}
	f.IsWhitelist = whitelist
	t.modified = true
	return nil
}

// AddFilterChannel adds channelID to a user's channel set.
func (t *Tenant) AddFilterChannel(userID, channelID string) error {
	if channelID == "" {
		return ErrInvalidInput
	}
	f, err := t.Filter(userID)
	if err != nil {
		return err
	}
	if !f.HasChannel(channelID) {
		f.ChannelSet = append(f.ChannelSet, channelID)
	}
	t.modified = true
	return nil
}

// RemoveFilterChannel removes channelID from a user's channel set.
func (t *Tenant) RemoveFilterChannel(userID, channelID string) error {
	f, err := t.Filter(userID)
	if err != nil {
		return err
	}
	for i, id := range f.ChannelSet {
		if id == channelID {
			f.ChannelSet = append(f.ChannelSet[:i], f.ChannelSet[i+1:]...)
			break
		}
	}
	t.modified = true
	return nil
}

// SetForumExclude toggles whether a user is kept out of forum threads.
func (t *Tenant) SetForumExclude(userID string, exclude bool) error {
	f, err := t.Filter(userID)
	if err != nil {
		return err
	}
	f.ForumExclude = exclude
	t.modified = true
	return nil
}

// ClearFilter removes a user's filter entirely.
func (t *Tenant) ClearFilter(userID string) error {
	if !t.Config.HasUser(userID) {
		return ErrNotListed
	}
	delete(t.Config.UserFilters, userID)
	t.modified = true
	return nil
}

// SetFirstMessage sets the greeting posted in new threads; empty disables it.
func (t *Tenant) SetFirstMessage(text string) {
	t.Config.FirstMessage = text
	t.modified = true
}

// SetExtraAddPings sets mentions appended to the bulk mention, such as role pings.
func (t *Tenant) SetExtraAddPings(text string) {
	t.Config.ExtraAddPings = text
	t.modified = true
}

// SetAutoPrefix toggles prefixing thread names with the author.
func (t *Tenant) SetAutoPrefix(enabled bool) {
	t.Config.AutoPrefix = enabled
	t.modified = true
}

// SetAutoPin toggles pinning the first message of new threads.
func (t *Tenant) SetAutoPin(enabled bool) {
	t.Config.AutoPin = enabled
	t.modified = true
}

// SetAutoUnlock toggles unlocking threads that get archived and locked.
func (t *Tenant) SetAutoUnlock(enabled bool) {
	t.Config.AutoUnlock = enabled
	t.modified = true
}

// SetChannelRoleLimit restricts additions under channelID to holders of roleID.
// An empty roleID removes the limit.
func (t *Tenant) SetChannelRoleLimit(channelID, roleID string) error {
	if channelID == "" {
		return ErrInvalidInput
	}
	if roleID == "" {
		delete(t.Config.ChannelRoleLimits, channelID)
	} else {
		t.Config.ChannelRoleLimits[channelID] = roleID
	}
	t.modified = true
	return nil
}

// TenantStore is the registry of per-guild configs, backed by one YAML file per guild.
type TenantStore struct {
	dir      string
	maxUsers int

	mu      sync.Mutex
	tenants map[string]*Tenant
	loads   singleflight.Group
}

// NewTenantStore creates a store that keeps its files under dir.
func NewTenantStore(dir string, maxUsers int) *TenantStore {
	if maxUsers <= 0 {
		maxUsers = models.DefaultMaxUsers
	}
	return &TenantStore{
		dir:      dir,
		maxUsers: maxUsers,
		tenants:  make(map[string]*Tenant),
	}
}

// FilePath is the save file of a guild.
func (ts *TenantStore) FilePath(guildID string) string {
	return filepath.Join(ts.dir, guildID+".yml")
}

// Get returns the cached tenant, loading it from disk on first reference.
// A missing file yields a default config.
func (ts *TenantStore) Get(guildID string) (*Tenant, error) {
	ts.mu.Lock()
	t, ok := ts.tenants[guildID]
	ts.mu.Unlock()
	if ok {
		return t, nil
	}

	v, err, _ := ts.loads.Do(guildID, func() (interface{}, error) {
		ts.mu.Lock()
		if t, ok := ts.tenants[guildID]; ok {
			ts.mu.Unlock()
			return t, nil
		}
		ts.mu.Unlock()

		t, err := ts.load(guildID)
		if err != nil {
			return nil, err
		}

		ts.mu.Lock()
		ts.tenants[guildID] = t
		ts.mu.Unlock()
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Tenant), nil
}

func (ts *TenantStore) load(guildID string) (*Tenant, error) {
	t := &Tenant{
		GuildID:  guildID,
		Config:   models.NewTenantConfig(),
		maxUsers: ts.maxUsers,
	}
	data, err := os.ReadFile(ts.FilePath(guildID))
	if errors.Is(err, os.ErrNotExist) {
		log.Info().Str("guild", guildID).Msg("no saved config, starting with defaults")
		return t, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config for guild %s: %w", guildID, err)
	}
	if err := yaml.Unmarshal(data, t.Config); err != nil {
		return nil, fmt.Errorf("failed to parse config for guild %s: %w", guildID, err)
	}
	t.normalize()
	return t, nil
}

// normalize repairs a hand-edited or outdated save file: it drops empty and
// duplicate roster entries, trims the roster to the configured maximum and
// removes filters that are null or belong to users who are not listed. Any
// repair marks the tenant modified so the cleaned file is written back.
func (t *Tenant) normalize() {
	cfg := t.Config
	if cfg.UserFilters == nil {
		cfg.UserFilters = make(map[string]*models.UserFilter)
	}
	if cfg.ChannelRoleLimits == nil {
		cfg.ChannelRoleLimits = make(map[string]string)
	}

	users := make([]string, 0, len(cfg.Users))
	listed := make(map[string]bool, len(cfg.Users))
	for _, id := range cfg.Users {
		if id == "" || listed[id] {
			t.modified = true
			continue
		}
		listed[id] = true
		users = append(users, id)
	}
	if len(users) > t.maxUsers {
		log.Warn().Str("guild", t.GuildID).Int("users", len(users)).Int("max", t.maxUsers).
			Msg("user list above the maximum, dropping the newest entries")
		for _, id := range users[t.maxUsers:] {
			delete(listed, id)
		}
		users = users[:t.maxUsers]
		t.modified = true
	}
	cfg.Users = users

	for id, f := range cfg.UserFilters {
		if f == nil || !listed[id] {
			delete(cfg.UserFilters, id)
			t.modified = true
		}
	}
	for ch, role := range cfg.ChannelRoleLimits {
		if role == "" {
			delete(cfg.ChannelRoleLimits, ch)
			t.modified = true
		}
	}
	if t.modified {
		log.Warn().Str("guild", t.GuildID).Msg("repaired saved config")
	}
}

// Update runs fn with the tenant lock held and saves the tenant afterwards if
// fn left it modified. fn's error is returned before any save error.
func (ts *TenantStore) Update(guildID string, fn func(t *Tenant) error) error {
	t, err := ts.Get(guildID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()

	fnErr := fn(t)
	saveErr := ts.saveLocked(t)
	if fnErr != nil {
		return fnErr
	}
	return saveErr
}

// View runs fn with the tenant lock held, without saving.
func (ts *TenantStore) View(guildID string, fn func(t *Tenant)) error {
	t, err := ts.Get(guildID)
	if err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(t)
	return nil
}

// Save persists a tenant if it has unsaved changes.
func (ts *TenantStore) Save(guildID string) error {
	ts.mu.Lock()
	t, ok := ts.tenants[guildID]
	ts.mu.Unlock()
	if !ok {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return ts.saveLocked(t)
}

func (ts *TenantStore) saveLocked(t *Tenant) error {
	if !t.modified {
		return nil
	}
	data, err := yaml.Marshal(t.Config)
	if err != nil {
		return fmt.Errorf("failed to encode config for guild %s: %w", t.GuildID, err)
	}
	if err := os.MkdirAll(ts.dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	path := ts.FilePath(t.GuildID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write config for guild %s: %w", t.GuildID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace config for guild %s: %w", t.GuildID, err)
	}
	t.modified = false
	return nil
}

// GuildIDs returns the IDs of every cached tenant, sorted.
func (ts *TenantStore) GuildIDs() []string {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ids := make([]string, 0, len(ts.tenants))
	for id := range ts.tenants {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SaveAll saves every modified tenant, logging individual failures. It returns
// the number of tenants that failed to save.
func (ts *TenantStore) SaveAll() int {
	failed := 0
	for _, id := range ts.GuildIDs() {
		if err := ts.Save(id); err != nil {
			log.Error().Err(err).Str("guild", id).Msg("failed to save guild config")
			failed++
		}
	}
	return failed
}

// ShutdownAll flushes every tenant. One broken save does not stop the others.
func (ts *TenantStore) ShutdownAll() {
	failed := ts.SaveAll()
	log.Info().Int("tenants", len(ts.GuildIDs())).Int("failed", failed).Msg("tenant configs flushed")
}
