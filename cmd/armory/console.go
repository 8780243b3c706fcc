package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/gookit/color"

	"github.com/udisondev/armory/internal/sim"
)

const consoleHelp = `commands:
  fire [seconds]          pull (and hold) the trigger
  press | release         grav-gun button
  attach <part>           attach a catalog part
  detach <slot>           mechanism, barrel, scope, grip
  look <x> <y> <z>        turn the bearer
  spawn <x> <y> <z> [m]   spawn a crate
  status                  print the session report
  quit`

// console feeds stdin commands into a session's command queue.
type console struct {
	in   io.Reader
	sess *sim.Session

	mu  sync.Mutex // out is written from the tick goroutine too
	out io.Writer
}

func newConsole(in io.Reader, out io.Writer, sess *sim.Session) *console {
	return &console{in: in, out: out, sess: sess}
}

func (c *console) printf(format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, format, args...)
}

// Run reads commands until EOF or quit.
func (c *console) Run() {
	c.printf("%s\n", color.Cyan.Sprint(consoleHelp))

	scanner := bufio.NewScanner(c.in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "quit", "exit":
			return
		case "help":
			c.printf("%s\n", consoleHelp)
			continue
		case "status":
			c.push(c.status)
			continue
		}

		step, err := sim.ParseCommand(line)
		if errors.Is(err, sim.ErrEmptyCommand) {
			continue
		}
		if err != nil {
			c.printf("%s\n", color.Red.Sprint(err))
			continue
		}
		c.push(func() {
			if err := c.sess.Apply(step); err != nil {
				c.printf("%s\n", color.Red.Sprint(err))
			}
		})
	}
	if err := scanner.Err(); err != nil {
		slog.Error("reading console", "err", err)
	}
}

func (c *console) push(cmd func()) {
	if !c.sess.Queue().Push(cmd) {
		c.printf("%s\n", color.Yellow.Sprint("busy, command dropped"))
	}
}

// status runs on the tick goroutine.
func (c *console) status() {
	rep := c.sess.Report()
	c.printf("%s t=%.2fs fired=%d skipped=%d hits=%d grav=%s throws=%d loadout=%v\n",
		color.Green.Sprint(rep.Weapon),
		rep.Elapsed, rep.Shots.Fired, rep.Shots.Skipped(), rep.Hits,
		rep.GravState, rep.Throws, rep.Loadout)
}
