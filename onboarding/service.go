package onboarding

import (
	"context"
	"fmt"
	"sync"
	"time"

	"autothread-bot/database"
	"autothread-bot/models"
	"autothread-bot/utils"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// TenantStore is the part of the config store the pipeline uses.
type TenantStore interface {
	Update(guildID string, fn func(t *database.Tenant) error) error
}

// Recorder persists completed runs. It may be nil.
type Recorder interface {
	Record(run models.OnboardingRun) error
}

// Options tunes the pipeline.
type Options struct {
	CorrelationTimeout time.Duration
	// MaxThreadAge drops creation events for older threads; zero disables the check.
	MaxThreadAge time.Duration
	// Now is used for the age check and run timestamps.
	Now func() time.Time
}

// Service owns the shared registries of the pipeline and runs one onboarding
// per newly created thread.
type Service struct {
	store      TenantStore
	platform   Platform
	recorder   Recorder
	seen       *SeenThreads
	correlator *Correlator
	mutator    *Mutator
	opts       Options

	// turns chains the runs of each guild in creation event order: the
	// value is the done channel of the guild's most recently dispatched run.
	turnsMu sync.Mutex
	turns   map[string]chan struct{}

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// turn is a run's place in its guild's queue.
type turn struct {
	prev <-chan struct{}
	done chan struct{}
	once sync.Once
}

// wait blocks until the previous run of the guild has left the tenant update.
func (t *turn) wait() {
	if t.prev != nil {
		<-t.prev
	}
}

// release lets the next run of the guild proceed. It is safe to call twice.
func (t *turn) release() {
	t.once.Do(func() { close(t.done) })
}

// NewService creates a pipeline. recorder may be nil.
func NewService(store TenantStore, platform Platform, recorder Recorder, opts Options) *Service {
	if opts.CorrelationTimeout <= 0 {
		opts.CorrelationTimeout = 6 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Service{
		store:      store,
		platform:   platform,
		recorder:   recorder,
		seen:       NewSeenThreads(),
		correlator: NewCorrelator(),
		mutator:    NewMutator(platform),
		opts:       opts,
		turns:      make(map[string]chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Correlator exposes the message registry to the message handler.
func (s *Service) Correlator() *Correlator {
	return s.correlator
}

// Seen exposes the duplicate suppressor.
func (s *Service) Seen() *SeenThreads {
	return s.seen
}

// Dispatch gates a thread creation event and, when it passes, starts the
// onboarding in the background. created is the thread's creation time. It
// reports whether a run was started. Runs of one guild wait for their first
// message concurrently but apply their plans one at a time, in the order
// Dispatch was called.
func (s *Service) Dispatch(thread models.Thread, created time.Time) bool {
	if !s.seen.TryClaim(thread.ID) {
		log.Debug().Str("thread", thread.ID).Msg("duplicate thread creation event ignored")
		return false
	}
	if s.opts.MaxThreadAge > 0 && !created.IsZero() && s.opts.Now().Sub(created) > s.opts.MaxThreadAge {
		log.Debug().Str("thread", thread.ID).Time("created", created).Msg("thread too old, ignored")
		return false
	}

	pending := s.correlator.Register(thread.ID)
	tn := s.takeTurn(thread.GuildID)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.finishTurn(thread.GuildID, tn)
		s.onboard(thread, pending, tn)
	}()
	return true
}

// HandleMessage feeds a received message to the correlator.
func (s *Service) HandleMessage(m *models.Message) {
	s.correlator.Deliver(m)
}

// Wait blocks until every started run has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Shutdown cuts pending correlation waits short and waits up to timeout for
// in-flight runs.
func (s *Service) Shutdown(timeout time.Duration) {
	s.cancel()
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		log.Warn().Msg("in-flight onboarding runs did not finish before shutdown")
	}
}

func (s *Service) takeTurn(guildID string) *turn {
	s.turnsMu.Lock()
	defer s.turnsMu.Unlock()
	tn := &turn{prev: s.turns[guildID], done: make(chan struct{})}
	s.turns[guildID] = tn.done
	return tn
}

// finishTurn releases tn and forgets the guild's chain once tn is its tail.
func (s *Service) finishTurn(guildID string, tn *turn) {
	tn.release()
	s.turnsMu.Lock()
	defer s.turnsMu.Unlock()
	if s.turns[guildID] == tn.done {
		delete(s.turns, guildID)
	}
}

func (s *Service) onboard(thread models.Thread, pending *Pending, tn *turn) {
	defer func() {
		if r := recover(); r != nil {
			utils.Error("Onboarding", "Panic", fmt.Sprintf("thread %s: %v", thread.ID, r))
		}
	}()

	creator := s.correlator.Wait(s.ctx, pending, s.opts.CorrelationTimeout)
	if creator == nil {
		log.Info().Str("thread", thread.ID).Msg("no first message observed, onboarding without creator")
	}

	if !thread.ParentIsForum && thread.ParentID != "" {
		forum, err := s.platform.IsForum(thread.ParentID)
		if err != nil {
			log.Warn().Err(err).Str("channel", thread.ParentID).Msg("failed to resolve parent channel type")
		}
		thread.ParentIsForum = forum
	}

	var plan models.Plan
	var res Result
	tn.wait()
	err := s.store.Update(thread.GuildID, func(t *database.Tenant) error {
		cfg := t.Config
		plan = BuildPlan(PlanInput{
			Config:        cfg,
			Thread:        thread,
			Creator:       creator,
			Members:       s.resolveRoster(thread.GuildID, cfg.Users),
			ThreadMembers: s.threadMembers(thread.ID, cfg.Users),
		})
		for _, userID := range plan.RemovedUsers {
			if err := t.RemoveUser(userID); err != nil {
				log.Warn().Err(err).Str("user", userID).Msg("stale roster entry already removed")
			}
		}
		s.mutator.ApplyLocked(thread, plan, &res)
		return nil
	})
	tn.release()
	if err != nil {
		utils.Error("Onboarding", "TenantUpdate", fmt.Sprintf("guild %s thread %s: %v", thread.GuildID, thread.ID, err))
		return
	}

	s.mutator.Mention(thread, plan, &res)
	s.record(thread, creator, plan, res)
}

func (s *Service) resolveRoster(guildID string, users []string) map[string]*models.Member {
	members := make(map[string]*models.Member, len(users))
	for _, userID := range users {
		member, err := s.platform.ResolveMember(guildID, userID)
		if err != nil {
			log.Warn().Err(err).Str("guild", guildID).Str("user", userID).Msg("failed to resolve roster member, skipping")
			continue
		}
		members[userID] = member
	}
	return members
}

func (s *Service) threadMembers(threadID string, roster []string) map[string]bool {
	if len(roster) == 0 {
		return nil
	}
	ids, err := s.platform.ThreadMemberIDs(threadID)
	if err != nil {
		log.Warn().Err(err).Str("thread", threadID).Msg("failed to list thread members")
		return nil
	}
	return ids
}

func (s *Service) record(thread models.Thread, creator *models.Message, plan models.Plan, res Result) {
	run := models.OnboardingRun{
		RunID:        uuid.NewString(),
		GuildID:      thread.GuildID,
		ThreadID:     thread.ID,
		ParentID:     thread.ParentID,
		FinalName:    thread.Name,
		Pinned:       res.Pinned,
		RemovedUsers: plan.RemovedUsers,
		Timestamp:    s.opts.Now().Unix(),
	}
	if creator != nil {
		run.CreatorID = creator.AuthorID
	}
	if res.Renamed {
		run.FinalName = plan.NewName
	}
	if res.Mentioned {
		run.AddedUsers = plan.Mentions
	}
	log.Info().Str("guild", thread.GuildID).Str("thread", thread.ID).
		Int("added", len(run.AddedUsers)).Int("removed", len(run.RemovedUsers)).
		Int("failures", res.Failures).Msg("thread onboarded")

	if s.recorder == nil {
		return
	}
	if err := s.recorder.Record(run); err != nil {
		utils.Warn("Onboarding", "History", fmt.Sprintf("failed to record run for thread %s: %v", thread.ID, err))
	}
}

// HandleThreadUpdate unlocks a thread that was just archived and locked when
// the guild has auto-unlock enabled.
func (s *Service) HandleThreadUpdate(guildID, threadID string, wasArchived, archived, locked bool) {
	if wasArchived || !archived || !locked {
		return
	}
	err := s.store.Update(guildID, func(t *database.Tenant) error {
		if !t.Config.AutoUnlock {
			return nil
		}
		if err := s.platform.UnlockThread(threadID); err != nil {
			utils.Warn("AutoUnlock", "Unlock", fmt.Sprintf("thread %s: %v", threadID, err))
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("auto-unlock failed to load tenant")
	}
}
