package submission

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"internApply/internal/metrics"
)

type draftEntry struct {
	orchestrator *Orchestrator
	lastSeen     time.Time
}

// Registry 在内存中保存草稿，闲置超过 ttl 的草稿由 Sweep 清理。
type Registry struct {
	mu      sync.Mutex
	drafts  map[string]*draftEntry
	ttl     time.Duration
	factory func() *Orchestrator
	now     func() time.Time
}

// NewRegistry creates an empty registry; factory builds each new draft.
func NewRegistry(ttl time.Duration, factory func() *Orchestrator) *Registry {
	return &Registry{
		drafts:  make(map[string]*draftEntry),
		ttl:     ttl,
		factory: factory,
		now:     time.Now,
	}
}

// Create starts a new draft and returns its id.
func (r *Registry) Create() (string, *Orchestrator) {
	id := uuid.NewString()
	o := r.factory()

	r.mu.Lock()
	r.drafts[id] = &draftEntry{orchestrator: o, lastSeen: r.now()}
	r.mu.Unlock()
	return id, o
}

// Get returns the draft and refreshes its idle timer.
func (r *Registry) Get(id string) (*Orchestrator, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entry, ok := r.drafts[id]
	if !ok {
		return nil, false
	}
	entry.lastSeen = r.now()
	return entry.orchestrator, true
}

// Len returns the number of live drafts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.drafts)
}

// Sweep removes idle drafts and returns how many were dropped. Drafts in the
// middle of a submission are kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, entry := range r.drafts {
		if entry.lastSeen.After(cutoff) {
			continue
		}
		if entry.orchestrator.State() == StateSubmitting {
			continue
		}
		delete(r.drafts, id)
		removed++
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reap()
		}
	}
}

// reap 清理过期草稿并上报剩余数量。
func (r *Registry) reap() int {
	removed := r.Sweep()
	metrics.SetOpenDrafts(r.Len())
	return removed
}
