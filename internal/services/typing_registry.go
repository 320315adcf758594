package services

import (
	"sort"
	"sync"
	"time"
)

// TypingRegistry tracks who is currently composing a message. It is
// intentionally volatile: marks live only in process memory and a restart
// clears them with no correctness impact. Expiry is applied lazily at read
// time, so no background sweeper is required.
type TypingRegistry struct {
	mu    sync.RWMutex
	marks map[string]time.Time
	idle  time.Duration
	now   func() time.Time
}

// NewTypingRegistry builds a registry with the given idle threshold. The
// clock is injectable so tests can drive expiry deterministically.
func NewTypingRegistry(idle time.Duration, now func() time.Time) *TypingRegistry {
	if now == nil {
		now = time.Now
	}
	return &TypingRegistry{
		marks: make(map[string]time.Time),
		idle:  idle,
		now:   now,
	}
}

// Mark upserts the identity's last-typed timestamp.
func (r *TypingRegistry) Mark(userHex string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.marks[userHex] = r.now()
}

// Clear removes the identity's mark immediately. Called on message send, on
// input going empty and on sign-out.
func (r *TypingRegistry) Clear(userHex string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.marks, userHex)
}

// Typing returns identities whose mark is younger than the idle threshold,
// sorted for stable rendering. Stale marks are swept as a side effect, but
// readers never see an expired mark even before a sweep runs.
func (r *TypingRegistry) Typing() []string {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	active := make([]string, 0, len(r.marks))
	for userHex, markedAt := range r.marks {
		if now.Sub(markedAt) > r.idle {
			delete(r.marks, userHex)
			continue
		}
		active = append(active, userHex)
	}

	sort.Strings(active)
	return active
}
