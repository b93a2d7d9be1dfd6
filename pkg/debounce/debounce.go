// Package debounce provides trailing-edge debouncing helpers used by the
// event bus and the DOM integration.
package debounce

import (
	"sync"
	"time"
)

// New wraps fn so that rapid calls within delay collapse into a single
// invocation carrying the most recent value. Only the trailing call in a
// burst fires; earlier values are discarded.
func New[T any](delay time.Duration, fn func(T)) func(T) {
	var (
		mu    sync.Mutex
		timer *time.Timer
	)
	return func(v T) {
		mu.Lock()
		defer mu.Unlock()
		if timer != nil {
			timer.Stop()
		}
		timer = time.AfterFunc(delay, func() {
			fn(v)
		})
	}
}

// Map is a keyed trailing-edge debouncer. Each key owns at most one pending
// timer; scheduling a key that already has a pending timer cancels the old
// one and starts a fresh window.
type Map struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
}

// NewMap creates an empty keyed debouncer.
func NewMap() *Map {
	return &Map{timers: make(map[string]*time.Timer)}
}

// Call schedules fn to run after delay, replacing any pending call for the
// same key. fn runs on the timer goroutine.
func (m *Map) Call(key string, delay time.Duration, fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if t, ok := m.timers[key]; ok {
		t.Stop()
	}
	m.timers[key] = time.AfterFunc(delay, func() {
		m.mu.Lock()
		delete(m.timers, key)
		m.mu.Unlock()
		fn()
	})
}

// Cancel stops the pending call for key, if any. It reports whether a call
// was pending.
func (m *Map) Cancel(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.timers[key]
	if !ok {
		return false
	}
	t.Stop()
	delete(m.timers, key)
	return true
}

// CancelAll stops every pending call.
func (m *Map) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, t := range m.timers {
		t.Stop()
		delete(m.timers, key)
	}
}

// Pending reports whether key has a scheduled call.
func (m *Map) Pending(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.timers[key]
	return ok
}
