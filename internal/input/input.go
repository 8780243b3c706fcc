// Package input delivers discrete button edges and axis values to the
// components that subscribed to them. There is no global event bus: every
// owner holds its own Router and passes it to the components it wires.
package input

import (
	"fmt"
	"sync"
)

// Edge is a discrete button transition.
type Edge int8

const (
	Pressed Edge = iota
	Held
	Released
)

// String returns human-readable edge name.
func (e Edge) String() string {
	switch e {
	case Pressed:
		return "PRESSED"
	case Held:
		return "HELD"
	case Released:
		return "RELEASED"
	default:
		return fmt.Sprintf("EDGE(%d)", int8(e))
	}
}

// Action names a bindable input, e.g. "fire" or "grav".
type Action string

const (
	ActionFire Action = "fire"
	ActionGrav Action = "grav"
	ActionLook Action = "look"
)

// Event is one input sample.
// Axis is meaningful only for axis subscriptions.
type Event struct {
	Action Action
	Edge   Edge
	Axis   float64
}

// Handler consumes events for one action.
type Handler func(Event)

type subscription struct {
	id      uint64
	handler Handler
}

// Router dispatches events to subscribed handlers in subscription order.
//
// Thread-safe: subscriptions may change from any goroutine; handlers run on
// the dispatching goroutine (the tick goroutine).
type Router struct {
	mu     sync.RWMutex
	subs   map[Action][]subscription
	nextID uint64
}

// NewRouter creates an empty router.
func NewRouter() *Router {
	return &Router{subs: make(map[Action][]subscription)}
}

// Subscribe registers h for action and returns a function removing it.
// Calling the returned function more than once is a no-op.
func (r *Router) Subscribe(action Action, h Handler) (unsubscribe func()) {
	r.mu.Lock()
	r.nextID++
	id := r.nextID
	r.subs[action] = append(r.subs[action], subscription{id: id, handler: h})
	r.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { r.remove(action, id) })
	}
}

func (r *Router) remove(action Action, id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	subs := r.subs[action]
	for i, s := range subs {
		if s.id == id {
			r.subs[action] = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(r.subs[action]) == 0 {
		delete(r.subs, action)
	}
}

// Dispatch delivers ev to every handler subscribed to ev.Action.
// Returns number of handlers invoked.
func (r *Router) Dispatch(ev Event) int {
	r.mu.RLock()
	subs := r.subs[ev.Action]
	handlers := make([]Handler, len(subs))
	for i, s := range subs {
		handlers[i] = s.handler
	}
	r.mu.RUnlock()

	for _, h := range handlers {
		h(ev)
	}
	return len(handlers)
}

// Press, Release and Hold are shorthands for Dispatch.
func (r *Router) Press(a Action) int   { return r.Dispatch(Event{Action: a, Edge: Pressed}) }
func (r *Router) Hold(a Action) int    { return r.Dispatch(Event{Action: a, Edge: Held}) }
func (r *Router) Release(a Action) int { return r.Dispatch(Event{Action: a, Edge: Released}) }

// Subscribers returns number of handlers registered for action.
func (r *Router) Subscribers(action Action) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[action])
}
