package duration

import (
	"errors"
	"slices"
	"sync"
	"time"
)

// Errors returned by the timer manager.
var (
	ErrTimerNotFound   = errors.New("timer not found")
	ErrInvalidDuration = errors.New("invalid duration")
)

// Duration limits.
const (
	// MinDuration is the shortest accepted timer.
	MinDuration = 1 * time.Millisecond

	// MaxDuration is the longest accepted timer.
	MaxDuration = 24 * time.Hour
)

// Timer is a snapshot of one pending timer.
type Timer struct {
	// Key identifies the timer within its manager.
	Key string

	// StartTime is when the timer was set.
	StartTime time.Time

	// Duration is how long the timer runs.
	Duration time.Duration

	// Value is handed to the expiry callback.
	Value any

	timer *time.Timer
}

// ExpiresAt returns when the timer will expire.
func (t *Timer) ExpiresAt() time.Time {
	return t.StartTime.Add(t.Duration)
}

// RemainingTime returns the time until expiry (0 if expired).
func (t *Timer) RemainingTime() time.Duration {
	remaining := t.Duration - time.Since(t.StartTime)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// IsExpired returns true if the timer has expired.
func (t *Timer) IsExpired() bool {
	return time.Since(t.StartTime) >= t.Duration
}

func (t *Timer) snapshot() *Timer {
	return &Timer{Key: t.Key, StartTime: t.StartTime, Duration: t.Duration, Value: t.Value}
}

// Manager tracks named timers.
type Manager struct {
	mu sync.RWMutex

	timers map[string]*Timer

	onExpiry func(key string, value any)
}

// NewManager creates an empty manager.
func NewManager() *Manager {
	return &Manager{
		timers: make(map[string]*Timer),
	}
}

// CheckDuration reports whether d is within MinDuration and MaxDuration.
func CheckDuration(d time.Duration) error {
	if d < MinDuration || d > MaxDuration {
		return ErrInvalidDuration
	}
	return nil
}

// SetTimer starts a timer under key, replacing any existing one.
func (m *Manager) SetTimer(key string, d time.Duration, value any) error {
	if err := CheckDuration(d); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, exists := m.timers[key]; exists {
		existing.timer.Stop()
	}

	t := &Timer{
		Key:       key,
		StartTime: time.Now(),
		Duration:  d,
		Value:     value,
	}
	t.timer = time.AfterFunc(d, func() {
		m.expireTimer(t)
	})

	m.timers[key] = t
	return nil
}

// CancelTimer cancels a timer without triggering the expiry callback.
func (m *Manager) CancelTimer(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, exists := m.timers[key]
	if !exists {
		return ErrTimerNotFound
	}
	t.timer.Stop()
	delete(m.timers, key)
	return nil
}

// CancelAll cancels every timer.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, t := range m.timers {
		t.timer.Stop()
		delete(m.timers, key)
	}
}

// GetTimer returns a snapshot of the timer under key, or nil if not set.
func (m *Manager) GetTimer(key string) *Timer {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if t, exists := m.timers[key]; exists {
		return t.snapshot()
	}
	return nil
}

// Active returns the keys of all pending timers, sorted.
func (m *Manager) Active() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.timers))
	for key := range m.timers {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

// Count returns the total number of active timers.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.timers)
}

// OnExpiry sets the callback for timer expiry. The callback runs on the
// timer's goroutine, outside the manager lock.
func (m *Manager) OnExpiry(fn func(key string, value any)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpiry = fn
}

// expireTimer handles timer expiry. A timer that was replaced or cancelled
// after it fired is ignored.
func (m *Manager) expireTimer(t *Timer) {
	m.mu.Lock()

	if m.timers[t.Key] != t {
		m.mu.Unlock()
		return
	}
	delete(m.timers, t.Key)
	callback := m.onExpiry

	m.mu.Unlock()

	if callback != nil {
		callback(t.Key, t.Value)
	}
}
