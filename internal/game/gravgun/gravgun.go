// Package gravgun implements the grav-gun capture state machine:
//
//	Idle --pressed--> TryDrawObject --target within snap distance--> GrabAndHold
//	TryDrawObject --released--> Idle
//	GrabAndHold --second release / target destroyed--> Idle
//
// The machine has no terminal state; it cycles for the lifetime of its owner.
package gravgun

import (
	"log/slog"

	"github.com/udisondev/armory/internal/game/debuglog"
	"github.com/udisondev/armory/internal/game/routine"
	"github.com/udisondev/armory/internal/input"
	"github.com/udisondev/armory/internal/model"
	"github.com/udisondev/armory/internal/physics"
)

// Bearer is the character holding the grav gun.
type Bearer interface {
	// Eye returns the bearer's view position and look direction.
	Eye() model.Pose
	// Anchor returns the transform held bodies are parented to.
	Anchor() physics.ParentID
}

// session exists only between Pressed in Idle and the return to Idle.
type session struct {
	target physics.Body

	// GrabAndHold only
	savedConstraints physics.Constraints
	savedParent      physics.ParentID
	readyToThrow     bool
	heldTime         float64
}

// GravGun is the capture state machine.
//
// Not thread-safe: HandleInput and Update run on the tick goroutine.
type GravGun struct {
	bearer Bearer
	rc     physics.Raycaster
	tuning Tuning

	state    State
	sess     *session
	routines *routine.Scheduler
	lerp     routine.Slot

	lastThrow model.Vec3
	throws    uint64
}

// New creates a grav gun in Idle.
func New(bearer Bearer, rc physics.Raycaster, tuning Tuning) *GravGun {
	return &GravGun{
		bearer:   bearer,
		rc:       rc,
		tuning:   tuning,
		state:    Idle,
		routines: routine.NewScheduler(),
	}
}

// State returns the current state.
func (g *GravGun) State() State { return g.state }

// Target returns the body being drawn in or held, or nil.
func (g *GravGun) Target() physics.Body {
	if g.sess == nil {
		return nil
	}
	return g.sess.target
}

// Held returns the held body in GrabAndHold, or nil.
func (g *GravGun) Held() physics.Body {
	if g.state != GrabAndHold {
		return nil
	}
	return g.Target()
}

// ReadyToThrow reports whether the next release throws the held body.
func (g *GravGun) ReadyToThrow() bool {
	return g.state == GrabAndHold && g.sess.readyToThrow
}

// LastThrow returns the impulse applied when the last held body was let go.
func (g *GravGun) LastThrow() model.Vec3 { return g.lastThrow }

// Throws returns number of releases with a non-zero impulse.
func (g *GravGun) Throws() uint64 { return g.throws }

// Bind subscribes the grav gun to action on router.
func (g *GravGun) Bind(router *input.Router, action input.Action) (unsubscribe func()) {
	return router.Subscribe(action, func(ev input.Event) {
		g.HandleInput(ev.Edge)
	})
}

// HandleInput feeds one button edge into the machine.
func (g *GravGun) HandleInput(edge input.Edge) {
	switch g.state {
	case Idle:
		if edge == input.Pressed {
			g.enterTryDraw()
		}

	case TryDrawObject:
		if edge == input.Released {
			g.exit("released before grab")
		}

	case GrabAndHold:
		if edge != input.Released {
			return
		}
		if !g.sess.readyToThrow {
			g.sess.readyToThrow = true
			g.sess.heldTime = 0
			return
		}
		g.exitHold(g.throwImpulse(), "released")
	}
}

// Update advances the machine by dt seconds.
func (g *GravGun) Update(dt float64) {
	switch g.state {
	case TryDrawObject:
		g.updateTryDraw(dt)
	case GrabAndHold:
		g.updateHold(dt)
	}
	g.routines.Tick(dt)
}

func (g *GravGun) setState(next State, reason string) {
	prev := g.state
	g.state = next
	if debuglog.Enabled() {
		slog.Debug("grav gun state changed", "from", prev, "to", next, "reason", reason)
	}
}

func (g *GravGun) enterTryDraw() {
	g.sess = &session{}
	g.setState(TryDrawObject, "pressed")
}

func (g *GravGun) updateTryDraw(dt float64) {
	s := g.sess
	eye := g.bearer.Eye()

	if s.target != nil && s.target.Destroyed() {
		s.target = nil
	}
	if s.target == nil {
		hit, ok := g.rc.Raycast(model.NewRay(eye.Position, eye.Forward), g.tuning.MaxRange)
		if ok && hit.Body != nil && !hit.Body.Destroyed() {
			s.target = hit.Body
			if debuglog.Enabled() {
				slog.Debug("grav gun target acquired", "body", hit.Body.ID(), "distance", hit.Distance)
			}
		}
		return
	}

	toTarget := s.target.Position().Sub(eye.Position)
	dir := toTarget.Normalize()
	if eye.Forward.Dot(dir) < g.tuning.LookSensitivity {
		if debuglog.Enabled() {
			slog.Debug("grav gun target lost", "body", s.target.ID())
		}
		s.target = nil
		return
	}

	if toTarget.Len() <= g.tuning.SnapDistance {
		g.enterHold()
		return
	}

	// pull force integrated over this tick
	s.target.AddImpulse(dir.Scale(-g.tuning.PullStrength * dt))
}

func (g *GravGun) enterHold() {
	s := g.sess
	body := s.target

	s.savedConstraints = body.Constraints()
	s.savedParent = body.Parent()
	body.SetConstraints(physics.FreezeAll)
	body.SetParent(g.bearer.Anchor())

	g.lerp.Start(g.routines, routine.Lerp(body.Position(), g.holdPoint, g.tuning.HoldLerpDuration, func(p model.Vec3) {
		if !body.Destroyed() {
			body.SetPosition(p)
		}
	}))

	g.setState(GrabAndHold, "within snap distance")
}

func (g *GravGun) updateHold(dt float64) {
	s := g.sess
	if s.target == nil || s.target.Destroyed() {
		g.exitHold(model.Vec3{}, "target destroyed")
		return
	}
	if s.readyToThrow {
		s.heldTime += dt
	}
	if !g.lerp.Active() {
		s.target.SetPosition(g.holdPoint())
	}
}

func (g *GravGun) holdPoint() model.Vec3 {
	eye := g.bearer.Eye()
	return eye.Position.Add(eye.Forward.Scale(g.tuning.HoldOffset))
}

func (g *GravGun) throwImpulse() model.Vec3 {
	s := g.sess
	if s.heldTime < g.tuning.ThrowThreshold || s.target == nil || s.target.Destroyed() {
		return model.Vec3{}
	}
	return g.bearer.Eye().Forward.Scale(s.target.Mass() * g.tuning.ThrowForce)
}

// exitHold leaves GrabAndHold: restores the body's constraints, applies
// impulse, reparents it back and drops the reference.
func (g *GravGun) exitHold(impulse model.Vec3, reason string) {
	g.lerp.Cancel()

	if body := g.sess.target; body != nil && !body.Destroyed() {
		body.SetConstraints(g.sess.savedConstraints)
		if !impulse.IsZero() {
			body.AddImpulse(impulse)
		}
		body.SetParent(g.sess.savedParent)
	} else {
		impulse = model.Vec3{}
	}

	g.lastThrow = impulse
	if !impulse.IsZero() {
		g.throws++
	}
	g.exit(reason)
}

func (g *GravGun) exit(reason string) {
	g.sess = nil
	g.setState(Idle, reason)
}

// Reset forces the machine back to Idle, letting go of any held body.
func (g *GravGun) Reset() {
	switch g.state {
	case GrabAndHold:
		g.exitHold(model.Vec3{}, "reset")
	case TryDrawObject:
		g.exit("reset")
	}
}
