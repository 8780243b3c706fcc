// Package sim drives weapons, grav guns and the physics world at a fixed
// tick rate and replays scripted scenarios against them.
package sim

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/udisondev/armory/internal/game/debuglog"
)

// Ticker is advanced once per simulation tick.
type Ticker interface {
	Update(dt float64)
}

// TickerFunc adapts a function to Ticker.
type TickerFunc func(dt float64)

// Update calls f(dt).
func (f TickerFunc) Update(dt float64) { f(dt) }

// Disabler is implemented by tickers that can be switched off after a fault
// (e.g. *weapon.Weapon).
type Disabler interface {
	Disable(reason error)
}

type entry struct {
	ticker  Ticker
	faulted bool
}

// TickManager ticks registered tickers in registration order.
//
// A ticker that panics is isolated: the panic is logged, the ticker is
// disabled (if it implements Disabler) and skipped on later ticks. Other
// tickers keep running.
//
// Thread-safe: Register/Unregister may be called while Start runs.
type TickManager struct {
	interval time.Duration

	mu      sync.Mutex
	entries map[string]*entry
	order   []string

	stopOnce sync.Once
	stopCh   chan struct{}
}

// NewTickManager creates a tick manager with the given fixed step.
func NewTickManager(interval time.Duration) *TickManager {
	return &TickManager{
		interval: interval,
		entries:  make(map[string]*entry),
		stopCh:   make(chan struct{}),
	}
}

// Interval returns the fixed step.
func (m *TickManager) Interval() time.Duration { return m.interval }

// Register adds a ticker under id. Re-registering an id replaces its
// ticker and clears a previous fault but keeps its position in the order.
func (m *TickManager) Register(id string, t Ticker) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		m.order = append(m.order, id)
	}
	m.entries[id] = &entry{ticker: t}

	slog.Debug("ticker registered", "id", id)
}

// Unregister removes a ticker. Unknown ids are ignored.
func (m *TickManager) Unregister(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return
	}
	delete(m.entries, id)
	m.order = slices.DeleteFunc(m.order, func(s string) bool { return s == id })

	slog.Debug("ticker unregistered", "id", id)
}

// Count returns number of registered tickers.
func (m *TickManager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Faulted reports whether the ticker under id panicked and is being skipped.
func (m *TickManager) Faulted(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	return ok && e.faulted
}

// Start runs the tick loop (blocks until ctx is canceled or Stop is called).
func (m *TickManager) Start(ctx context.Context) error {
	if m.interval <= 0 {
		return fmt.Errorf("tick interval must be positive, got %s", m.interval)
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	dt := m.interval.Seconds()
	slog.Info("tick manager started", "interval", m.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Info("tick manager stopping")
			return ctx.Err()

		case <-m.stopCh:
			slog.Info("tick manager stopped")
			return nil

		case <-ticker.C:
			m.TickOnce(dt)
		}
	}
}

// Stop stops the tick loop. Safe to call more than once.
func (m *TickManager) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// TickOnce advances every healthy ticker by dt and returns how many ran.
func (m *TickManager) TickOnce(dt float64) int {
	m.mu.Lock()
	ids := slices.Clone(m.order)
	entries := make([]*entry, len(ids))
	for i, id := range ids {
		entries[i] = m.entries[id]
	}
	m.mu.Unlock()

	count := 0
	for i, e := range entries {
		if e.faulted {
			continue
		}
		if err := tick(e.ticker, dt); err != nil {
			m.fault(ids[i], e, err)
			continue
		}
		count++
	}

	if count > 0 && debuglog.Enabled() {
		slog.Debug("tick completed", "tickers", count, "dt", dt)
	}
	return count
}

// tick runs one update, converting a panic into an error.
func tick(t Ticker, dt float64) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("ticker panic: %v", r)
		}
	}()
	t.Update(dt)
	return nil
}

func (m *TickManager) fault(id string, e *entry, err error) {
	m.mu.Lock()
	e.faulted = true
	m.mu.Unlock()

	slog.Error("ticker faulted, disabling", "id", id, "error", err)
	if d, ok := e.ticker.(Disabler); ok {
		d.Disable(err)
	}
}
