// Package routine runs multi-tick work as resumable steps.
//
// A Step is called once per tick with the elapsed time and reports whether
// it finished. Progress lives in the closure that built the step, never in
// shared state, so two routines of the same kind never interfere.
//
// Not thread-safe: a Scheduler belongs to the tick goroutine of its owner.
package routine

import "github.com/udisondev/armory/internal/model"

// Step advances a routine by dt seconds. Returns true when finished.
type Step func(dt float64) bool

// Handle controls a started routine.
type Handle struct {
	step      Step
	done      bool
	cancelled bool
}

// Cancel requests cancellation. The step is never called again.
// Cancelling a finished routine is a no-op.
func (h *Handle) Cancel() {
	if h == nil || h.done {
		return
	}
	h.cancelled = true
}

// Done reports whether the routine ran to completion.
func (h *Handle) Done() bool { return h != nil && h.done }

// Cancelled reports whether the routine was cancelled before completion.
func (h *Handle) Cancelled() bool { return h != nil && h.cancelled }

// Active reports whether the routine will run on the next tick.
func (h *Handle) Active() bool { return h != nil && !h.done && !h.cancelled }

// Scheduler advances started routines once per Tick.
type Scheduler struct {
	running []*Handle
	pending []*Handle
	ticking bool
}

// NewScheduler creates an empty scheduler.
func NewScheduler() *Scheduler {
	return &Scheduler{}
}

// Start registers step. It first runs on the next Tick; routines started
// from inside a step wait for the following Tick.
func (s *Scheduler) Start(step Step) *Handle {
	h := &Handle{step: step}
	if s.ticking {
		s.pending = append(s.pending, h)
	} else {
		s.running = append(s.running, h)
	}
	return h
}

// Tick runs every active routine once and drops finished or cancelled ones.
func (s *Scheduler) Tick(dt float64) {
	s.ticking = true
	live := s.running[:0]
	for _, h := range s.running {
		if h.cancelled {
			continue
		}
		if h.step(dt) {
			h.done = true
			h.step = nil
			continue
		}
		if !h.cancelled {
			live = append(live, h)
		}
	}
	clear(s.running[len(live):])
	s.running = append(live, s.pending...)
	s.pending = s.pending[:0]
	s.ticking = false
}

// Len returns number of routines that will run on the next Tick.
func (s *Scheduler) Len() int {
	n := 0
	for _, h := range s.running {
		if h.Active() {
			n++
		}
	}
	return n
}

// CancelAll cancels every routine.
func (s *Scheduler) CancelAll() {
	for _, h := range s.running {
		h.Cancel()
	}
	for _, h := range s.pending {
		h.Cancel()
	}
}

// Slot holds at most one routine of an owner. Starting a new one cancels
// the previous routine first.
type Slot struct {
	h *Handle
}

// Start cancels the current routine and starts step on s.
func (sl *Slot) Start(s *Scheduler, step Step) *Handle {
	sl.h.Cancel()
	sl.h = s.Start(step)
	return sl.h
}

// Cancel cancels the current routine, if any.
func (sl *Slot) Cancel() {
	sl.h.Cancel()
	sl.h = nil
}

// Active reports whether the slot's routine is still running.
func (sl *Slot) Active() bool { return sl.h.Active() }

// Lerp moves a value from `from` towards to() over duration seconds,
// calling set after every step. The target is re-read each tick so it can
// follow a moving point. A non-positive duration snaps on the first tick.
func Lerp(from model.Vec3, to func() model.Vec3, duration float64, set func(model.Vec3)) Step {
	elapsed := 0.0
	return func(dt float64) bool {
		elapsed += dt
		t := 1.0
		if duration > 0 {
			t = elapsed / duration
		}
		set(from.Lerp(to(), t))
		return t >= 1
	}
}

// Until polls cond every tick and calls then once it holds.
func Until(cond func() bool, then func()) Step {
	return func(float64) bool {
		if !cond() {
			return false
		}
		if then != nil {
			then()
		}
		return true
	}
}
