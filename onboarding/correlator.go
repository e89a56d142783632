package onboarding

import (
	"context"
	"sync"
	"time"

	"autothread-bot/models"
)

// Pending is a registered wait for the first human message of a thread.
type Pending struct {
	threadID string
	ch       chan *models.Message
}

// Correlator hands the first human-authored message delivered to a thread to
// whoever registered for that thread.
type Correlator struct {
	pending sync.Map // thread ID -> *Pending
}

// NewCorrelator creates an empty registry.
func NewCorrelator() *Correlator {
	return &Correlator{}
}

// Register starts waiting for threadID. A second registration for the same
// thread replaces the first, whose waiter then runs into its timeout.
func (c *Correlator) Register(threadID string) *Pending {
	p := &Pending{threadID: threadID, ch: make(chan *models.Message, 1)}
	c.pending.Store(threadID, p)
	return p
}

// Deliver offers a received message to the registry. It reports whether the
// message filled a pending registration.
func (c *Correlator) Deliver(m *models.Message) bool {
	if m == nil || m.IsBot || m.IsWebhook {
		return false
	}
	v, ok := c.pending.LoadAndDelete(m.ChannelID)
	if !ok {
		return false
	}
	v.(*Pending).ch <- m
	return true
}

// Wait blocks until p is filled, timeout elapses or ctx is done. It returns
// nil when no message arrived in time.
func (c *Correlator) Wait(ctx context.Context, p *Pending, timeout time.Duration) *models.Message {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case m := <-p.ch:
		return m
	case <-timer.C:
	case <-ctx.Done():
	}

	c.pending.CompareAndDelete(p.threadID, p)
	// Deliver may have won the race against the timer.
	select {
	case m := <-p.ch:
		return m
	default:
		return nil
	}
}

// AwaitFirstMessage registers threadID and waits for its first human message.
func (c *Correlator) AwaitFirstMessage(ctx context.Context, threadID string, timeout time.Duration) *models.Message {
	return c.Wait(ctx, c.Register(threadID), timeout)
}

// PendingCount is the number of registrations still waiting.
func (c *Correlator) PendingCount() int {
	n := 0
	c.pending.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}
