package onboarding

import "sync"

// SeenThreads remembers every thread dispatched to the pipeline during the
// process lifetime. Entries are never evicted.
type SeenThreads struct {
	ids sync.Map
}

// NewSeenThreads creates an empty set.
func NewSeenThreads() *SeenThreads {
	return &SeenThreads{}
}

// TryClaim adds threadID and reports whether it was absent.
func (s *SeenThreads) TryClaim(threadID string) bool {
	_, loaded := s.ids.LoadOrStore(threadID, struct{}{})
	return !loaded
}

// Seen reports whether threadID was already claimed.
func (s *SeenThreads) Seen(threadID string) bool {
	_, ok := s.ids.Load(threadID)
	return ok
}
