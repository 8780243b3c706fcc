package sim

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/armory/internal/data"
	"github.com/udisondev/armory/internal/db"
	"github.com/udisondev/armory/internal/game/gravgun"
	"github.com/udisondev/armory/internal/game/weapon"
	"github.com/udisondev/armory/internal/input"
	"github.com/udisondev/armory/internal/model"
	"github.com/udisondev/armory/internal/physics"
)

// bearerAnchor is the transform held bodies are parented to.
const bearerAnchor physics.ParentID = 1

// commandQueueSize bounds commands pushed between two ticks.
const commandQueueSize = 256

// bearer is the character of a session.
type bearer struct {
	eye model.Pose
}

func (b *bearer) Eye() model.Pose          { return b.eye }
func (b *bearer) Anchor() physics.ParentID { return bearerAnchor }

// crate accumulates damage dealt to a spawned body.
type crate struct {
	damage *float64
}

func (c crate) ApplyDamage(amount float64, _, _ model.Vec3, _ physics.Cause) {
	*c.damage += amount
}

// Session is one live rig: a world, a bearer with a catalog weapon and a
// grav gun, wired to an input router and a tick manager.
//
// Tick order: queued commands, held trigger, grav gun, weapon, world, clock.
//
// Not thread-safe: everything except Queue().Push runs on the tick goroutine.
type Session struct {
	sc     *Scenario
	cat    *data.Catalog
	store  LoadoutStore
	world  *physics.World
	bearer *bearer
	weapon *weapon.Weapon
	gun    *gravgun.GravGun
	router *input.Router
	queue  *CommandQueue
	mgr    *TickManager

	dt    float64
	now   float64
	ticks int

	triggerUntil float64 // trigger is held while now < triggerUntil
	triggerDown  bool
	justPressed  bool // Pressed already dispatched this tick
	damage       float64
}

// NewSession builds a session for sc and restores the bearer's stored
// loadout if the runner has a store.
func (r *Runner) NewSession(ctx context.Context, sc *Scenario) (*Session, error) {
	dt := sc.Dt
	if dt <= 0 {
		dt = r.opts.Dt
	}

	world := physics.NewWorld(sc.Gravity)
	b := &bearer{eye: model.NewPose(sc.Eye, sc.Forward)}

	opts := r.opts.Weapon
	opts.Raycaster = world
	opts.Rand = rand.New(rand.NewPCG(sc.Seed, sc.Seed^0x9e3779b97f4a7c15))

	w, err := weapon.Build(r.cat, sc.Weapon, b, opts)
	if err != nil {
		return nil, fmt.Errorf("scenario %q: %w", sc.Name, err)
	}

	s := &Session{
		sc:     sc,
		cat:    r.cat,
		store:  r.opts.Store,
		world:  world,
		bearer: b,
		weapon: w,
		gun:    gravgun.New(b, world, r.opts.GravGun),
		router: input.NewRouter(),
		queue:  NewCommandQueue(commandQueueSize),
		mgr:    NewTickManager(time.Duration(dt * float64(time.Second))),
		dt:     dt,
	}

	s.gun.Bind(s.router, input.ActionGrav)
	s.router.Subscribe(input.ActionFire, func(ev input.Event) {
		if ev.Edge == input.Released {
			return
		}
		s.fire()
	})

	s.mgr.Register("commands", s.queue)
	s.mgr.Register("trigger", TickerFunc(s.feedTrigger))
	s.mgr.Register("gravgun", s.gun)
	s.mgr.Register("weapon", s.weapon)
	s.mgr.Register("world", TickerFunc(world.Step))
	s.mgr.Register("clock", TickerFunc(s.advance))

	if err := s.restore(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Session) Weapon() *weapon.Weapon    { return s.weapon }
func (s *Session) GravGun() *gravgun.GravGun { return s.gun }
func (s *Session) World() *physics.World     { return s.world }
func (s *Session) Router() *input.Router     { return s.router }
func (s *Session) Queue() *CommandQueue      { return s.queue }
func (s *Session) Manager() *TickManager     { return s.mgr }
func (s *Session) Now() float64              { return s.now }

// Apply performs one step immediately, ignoring its At.
func (s *Session) Apply(st Step) error {
	switch st.Op {
	case OpAttach:
		return s.weapon.AttachByName(s.cat, st.Part)
	case OpDetach:
		if st.Slot == nil {
			return fmt.Errorf("%s needs slot: %w", st.Op, ErrIncompleteStep)
		}
		s.weapon.DetachPart(*st.Slot)
	case OpFire:
		s.router.Press(input.ActionFire)
		s.triggerDown = true
		s.justPressed = true
		s.triggerUntil = math.Max(s.triggerUntil, s.now+st.Duration)
	case OpGravPress:
		s.router.Press(input.ActionGrav)
	case OpGravRelease:
		s.router.Release(input.ActionGrav)
	case OpSpawnCrate:
		if st.Position == nil {
			return fmt.Errorf("%s needs position: %w", st.Op, ErrIncompleteStep)
		}
		s.world.Spawn(physics.SphereOptions{
			Position: *st.Position,
			Mass:     st.Mass,
			Radius:   st.Radius,
			Receiver: crate{damage: &s.damage},
		})
	case OpLook:
		if st.Forward == nil {
			return fmt.Errorf("%s needs forward: %w", st.Op, ErrIncompleteStep)
		}
		s.bearer.eye = model.NewPose(s.bearer.eye.Position, *st.Forward)
	default:
		return fmt.Errorf("unknown op %q", st.Op)
	}
	return nil
}

// fire pulls the trigger once. A panic inside the fire path disables the
// weapon instead of faulting the ticker that dispatched the input.
func (s *Session) fire() {
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("fire panicked: %v", r)
			slog.Error("weapon faulted", "weapon", s.weapon.Name(), "err", err)
			s.weapon.Disable(err)
		}
	}()
	s.weapon.Fire()
}

// Tick advances the session by its fixed step.
func (s *Session) Tick() {
	s.mgr.TickOnce(s.dt)
}

// feedTrigger repeats the fire button while it is held and releases it
// once the hold time is over.
func (s *Session) feedTrigger(float64) {
	if !s.triggerDown {
		return
	}
	if s.now < s.triggerUntil {
		if !s.justPressed {
			s.router.Hold(input.ActionFire)
		}
		s.justPressed = false
		return
	}
	s.justPressed = false
	s.router.Release(input.ActionFire)
	s.triggerDown = false
}

func (s *Session) advance(dt float64) {
	s.ticks++
	s.now = float64(s.ticks) * dt
}

func (s *Session) persistent() bool {
	return s.store != nil && s.sc.BearerID != uuid.Nil
}

func (s *Session) restore(ctx context.Context) error {
	if !s.persistent() {
		return nil
	}
	l, err := s.store.Load(ctx, s.sc.BearerID, s.sc.Weapon)
	if errors.Is(err, db.ErrLoadoutNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("restoring loadout: %w", err)
	}
	if err := s.weapon.ApplyLoadout(s.cat, weapon.Loadout(l.Parts)); err != nil {
		return fmt.Errorf("applying stored loadout %s/%s: %w", s.sc.BearerID, s.sc.Weapon, err)
	}
	slog.Info("restored loadout", "bearerID", s.sc.BearerID, "weapon", s.sc.Weapon, "parts", len(l.Parts))
	return nil
}

// Save persists the current loadout. No-op without a store or bearer id.
func (s *Session) Save(ctx context.Context) error {
	if !s.persistent() {
		return nil
	}
	err := s.store.Save(ctx, db.Loadout{
		BearerID: s.sc.BearerID,
		Weapon:   s.sc.Weapon,
		Parts:    s.weapon.Loadout(),
	})
	if err != nil {
		return fmt.Errorf("saving loadout: %w", err)
	}
	return nil
}

// Report summarizes the session so far.
func (s *Session) Report() Report {
	rep := Report{
		Scenario:  s.sc.Name,
		Weapon:    s.weapon.Name(),
		Ticks:     s.ticks,
		Elapsed:   s.now,
		Shots:     s.weapon.Stats(),
		Damage:    s.damage,
		Throws:    s.gun.Throws(),
		LastThrow: s.gun.LastThrow(),
		GravState: s.gun.State(),
		Stats:     s.weapon.CurrentData(),
		Loadout:   s.weapon.Loadout(),
		Crates:    s.world.Count(),
		Disabled:  s.weapon.Disabled(),
	}
	if pool := s.weapon.Pool(); pool != nil {
		rep.Hits = pool.Hits()
		rep.Expired = pool.Expired()
	}
	return rep
}
