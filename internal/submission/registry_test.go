package submission

import (
	"testing"
	"time"
)

func TestRegistryCreateGetSweep(t *testing.T) {
	now := time.Unix(0, 0)
	r := NewRegistry(time.Hour, func() *Orchestrator {
		return NewOrchestrator(newGuard(), NewDegradedSubmitter(0, discardLogger))
	})
	r.now = func() time.Time { return now }

	stale, _ := r.Create()
	fresh, _ := r.Create()
	if stale == fresh {
		t.Fatalf("ids must be unique")
	}

	now = now.Add(50 * time.Minute)
	if _, ok := r.Get(fresh); !ok {
		t.Fatalf("fresh draft missing")
	}

	now = now.Add(20 * time.Minute)
	if removed := r.Sweep(); removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}
	if _, ok := r.Get(stale); ok {
		t.Fatalf("stale draft should be gone")
	}
	if _, ok := r.Get(fresh); !ok {
		t.Fatalf("recently used draft should survive")
	}
	if r.Len() != 1 {
		t.Fatalf("unexpected registry size %d", r.Len())
	}
}

func TestRegistryKeepsSubmittingDrafts(t *testing.T) {
	now := time.Unix(0, 0)
	r := NewRegistry(time.Minute, func() *Orchestrator {
		return NewOrchestrator(newGuard(), NewDegradedSubmitter(0, discardLogger))
	})
	r.now = func() time.Time { return now }

	id, o := r.Create()
	o.state = StateSubmitting

	now = now.Add(time.Hour)
	if removed := r.Sweep(); removed != 0 {
		t.Fatalf("in-flight draft swept")
	}
	if _, ok := r.Get(id); !ok {
		t.Fatalf("in-flight draft missing")
	}
}

func TestRegistryReapDropsExpiredDrafts(t *testing.T) {
	now := time.Unix(0, 0)
	r := NewRegistry(time.Minute, func() *Orchestrator {
		return NewOrchestrator(newGuard(), NewDegradedSubmitter(0, discardLogger))
	})
	r.now = func() time.Time { return now }
	r.Create()
	r.Create()

	now = now.Add(2 * time.Minute)
	if removed := r.reap(); removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	if r.Len() != 0 {
		t.Fatalf("registry should be empty, got %d", r.Len())
	}
}
