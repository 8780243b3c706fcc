package sim

import (
	"fmt"
	"log/slog"
	"runtime/debug"
)

// CommandQueue hands work from other goroutines (console, network) to the
// tick goroutine. Commands run at the start of the next tick, in push order.
//
// Thread-safe: Push may be called from any goroutine; Update runs on the
// tick goroutine.
type CommandQueue struct {
	ch chan func()
}

// NewCommandQueue creates a queue holding up to size pending commands.
func NewCommandQueue(size int) *CommandQueue {
	return &CommandQueue{ch: make(chan func(), size)}
}

// Push enqueues cmd. Returns false if the queue is full.
func (q *CommandQueue) Push(cmd func()) bool {
	select {
	case q.ch <- cmd:
		return true
	default:
		return false
	}
}

// Len returns number of pending commands.
func (q *CommandQueue) Len() int { return len(q.ch) }

// Update runs every pending command. A panicking command is logged and
// dropped; the remaining commands still run.
func (q *CommandQueue) Update(float64) {
	for {
		select {
		case cmd := <-q.ch:
			if err := runCommand(cmd); err != nil {
				slog.Error("command panicked", "err", err)
			}
		default:
			return
		}
	}
}

// runCommand calls cmd and converts a panic into an error.
func runCommand(cmd func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	cmd()
	return nil
}
