package alerts

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// Window suppresses re-emission of an alert already sent within the
// current UTC hour bucket. Capacity-bounded LRU with per-entry TTL;
// eviction under pressure can only cause a duplicate notification,
// never a lost one.
//
// ShouldEmit and MarkEmitted are deliberately separate: callers mark
// only after a successful dispatch, so a failed send stays eligible
// for retry on the next cycle within the same hour.
type Window struct {
	mu    sync.Mutex
	cache *lru.Cache[string, time.Time]
	ttl   time.Duration
}

// NewWindow builds a dedup window. maxKeys bounds memory; ttl is the
// suppression lifetime of an entry (1 hour in production).
func NewWindow(maxKeys int, ttl time.Duration) *Window {
	c, _ := lru.New[string, time.Time](maxKeys)
	return &Window{cache: c, ttl: ttl}
}

// BuildKey derives the dedup key for an alert. The hour bucket comes
// from the alert's own occurred_at truncated to the UTC hour.
func BuildKey(a *Alert) string {
	bucket := a.OccurredAt.UTC().Truncate(time.Hour)
	return fmt.Sprintf("%s|%s|%s|%s", a.HazardType, a.LocationName, a.Severity, bucket.Format("2006010215"))
}

// ShouldEmit reports whether no live entry exists for the alert's key.
// It does not record anything.
func (w *Window) ShouldEmit(a *Alert) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	addedAt, ok := w.cache.Get(BuildKey(a))
	if !ok {
		return true
	}
	// Entry may outlive its TTL inside the LRU; treat it as gone.
	return time.Since(addedAt) >= w.ttl
}

// MarkEmitted records the alert's key. Call only after dispatch succeeded.
func (w *Window) MarkEmitted(a *Alert) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.cache.Add(BuildKey(a), time.Now())
}

// Len returns the number of live-or-expired entries currently held.
func (w *Window) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.cache.Len()
}
