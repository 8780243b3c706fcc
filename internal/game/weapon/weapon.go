package weapon

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand/v2"

	"github.com/udisondev/armory/internal/game/debuglog"
	"github.com/udisondev/armory/internal/game/projectile"
	"github.com/udisondev/armory/internal/game/routine"
	"github.com/udisondev/armory/internal/model"
	"github.com/udisondev/armory/internal/physics"
)

// DefaultSpreadFactor scales WeaponData.Spread into per-axis aim jitter.
const DefaultSpreadFactor = 0.01

// ErrDisabled is the reason recorded when a weapon is disabled without one.
var ErrDisabled = errors.New("weapon disabled")

// Bearer is the character wielding a weapon.
type Bearer interface {
	// Eye returns the bearer's view position and look direction.
	Eye() model.Pose
}

// FireResult is the outcome of a fire attempt.
type FireResult int8

const (
	Fired FireResult = iota
	CoolingDown
	NoMechanism
	PoolExhausted
	Disabled
)

// String returns human-readable result name.
func (r FireResult) String() string {
	switch r {
	case Fired:
		return "FIRED"
	case CoolingDown:
		return "COOLING_DOWN"
	case NoMechanism:
		return "NO_MECHANISM"
	case PoolExhausted:
		return "POOL_EXHAUSTED"
	case Disabled:
		return "DISABLED"
	default:
		return "UNKNOWN"
	}
}

// Options configures a weapon.
type Options struct {
	// SpreadFactor scales Spread into aim jitter. 0 means DefaultSpreadFactor.
	SpreadFactor float64
	// Pool controls growth of projectile pools built for Mechanism parts.
	Pool projectile.Options
	// Rand drives spread jitter. Nil seeds a fresh generator.
	Rand *rand.Rand
	// Raycaster resolves projectile flight. Nil lets projectiles fly until expiry.
	Raycaster physics.Raycaster
}

// Weapon owns attached parts, the derived stats and the projectile pool of
// its Mechanism.
//
// Invariant: current == Recompute(base, Parts()) after every attach or detach.
//
// Not thread-safe: every method runs on the tick goroutine of the owner.
type Weapon struct {
	name    string
	base    model.WeaponData
	current model.WeaponData
	slots   [model.AttachPointCount]*Part

	bearer Bearer
	opts   Options
	rng    *rand.Rand

	pool     *projectile.Pool
	retiring []*projectile.Pool
	routines *routine.Scheduler

	// shotTime counts down to the next allowed shot, in seconds.
	shotTime float64
	disabled error
	stats    FireStats
}

// New creates a weapon with no parts attached.
func New(name string, base model.WeaponData, bearer Bearer, opts Options) *Weapon {
	if opts.SpreadFactor == 0 {
		opts.SpreadFactor = DefaultSpreadFactor
	}
	rng := opts.Rand
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Weapon{
		name:     name,
		base:     base,
		current:  base,
		bearer:   bearer,
		opts:     opts,
		rng:      rng,
		routines: routine.NewScheduler(),
	}
}

// Name returns the weapon name.
func (w *Weapon) Name() string { return w.name }

// BaseData returns the stats before any part is applied.
func (w *Weapon) BaseData() model.WeaponData { return w.base }

// CurrentData returns the stats with every attached part applied.
func (w *Weapon) CurrentData() model.WeaponData { return w.current }

// Part returns the part attached at point, or nil.
func (w *Weapon) Part(point model.AttachPoint) *Part {
	if !point.Valid() {
		return nil
	}
	return w.slots[point]
}

// Parts returns attached parts in slot declaration order.
func (w *Weapon) Parts() []*Part {
	parts := make([]*Part, 0, len(w.slots))
	for _, p := range w.slots {
		if p != nil {
			parts = append(parts, p)
		}
	}
	return parts
}

// Pool returns the live projectile pool, or nil without a Mechanism.
func (w *Weapon) Pool() *projectile.Pool { return w.pool }

// Retiring returns number of replaced pools still waiting for their
// projectiles to land.
func (w *Weapon) Retiring() int { return len(w.retiring) }

// ShotTime returns seconds until the next shot is allowed.
func (w *Weapon) ShotTime() float64 { return w.shotTime }

// Stats returns fire attempt counters.
func (w *Weapon) Stats() FireStats { return w.stats }

// AttachPart attaches p at its slot, discarding the previous occupant.
// A new Mechanism replaces the projectile pool; the old pool is destroyed
// once its in-flight projectiles are gone. Stats are recomputed before
// AttachPart returns.
func (w *Weapon) AttachPart(p *Part) {
	if p == nil || !p.point.Valid() {
		return
	}

	old := w.slots[p.point]
	if old != nil && old != p {
		w.discard(old)
	}
	w.slots[p.point] = p

	if mech, ok := p.Mechanism(); ok && (old != p || w.pool == nil) {
		w.pool = projectile.NewPool(mech.Projectile, w.opts.Pool)
	}

	w.recompute()

	slog.Debug("part attached",
		"weapon", w.name,
		"slot", p.point,
		"part", p.Name(),
		"fireRate", w.current.FireRate,
		"spread", w.current.Spread)
}

// DetachPart removes the part at point and returns it, or nil if the slot is empty.
func (w *Weapon) DetachPart(point model.AttachPoint) *Part {
	old := w.Part(point)
	if old == nil {
		return nil
	}
	w.discard(old)
	w.slots[point] = nil
	w.recompute()

	slog.Debug("part detached", "weapon", w.name, "slot", point, "part", old.Name())
	return old
}

// discard releases resources owned by a part leaving its slot.
func (w *Weapon) discard(p *Part) {
	if p.point == model.AttachMechanism && w.pool != nil {
		w.retire(w.pool)
		w.pool = nil
	}
}

// retire queues pool for destruction once no projectile of it is in flight.
func (w *Weapon) retire(pool *projectile.Pool) {
	w.retiring = append(w.retiring, pool)
	w.routines.Start(routine.Until(
		func() bool { return pool.InUse() == 0 },
		func() {
			if err := pool.Close(); err != nil {
				slog.Warn("closing retired projectile pool", "weapon", w.name, "err", err)
				return
			}
			w.dropRetired(pool)
		},
	))
}

func (w *Weapon) dropRetired(pool *projectile.Pool) {
	for i, p := range w.retiring {
		if p == pool {
			w.retiring = append(w.retiring[:i], w.retiring[i+1:]...)
			return
		}
	}
}

func (w *Weapon) recompute() {
	w.current = Recompute(w.base, w.Parts())
}

// Fire attempts one shot.
//
// Workflow:
//  1. Refuse while disabled, cooling down or without a Mechanism
//  2. Acquire a projectile; an exhausted pool skips the shot
//  3. Reset the cooldown to 1/FireRate
//  4. Aim from the muzzle (or the bearer's eye) with spread jitter and launch
func (w *Weapon) Fire() (*projectile.Projectile, FireResult) {
	if w.disabled != nil {
		w.stats.Disabled++
		return nil, Disabled
	}
	interval := w.current.ShotInterval()
	if w.shotTime > 0 || math.IsInf(interval, 1) {
		w.stats.CoolingDown++
		return nil, CoolingDown
	}
	if w.pool == nil {
		w.stats.NoMechanism++
		return nil, NoMechanism
	}

	pr, err := w.pool.Acquire()
	if err != nil {
		w.stats.Exhausted++
		if debuglog.Enabled() {
			slog.Debug("shot skipped", "weapon", w.name, "err", err)
		}
		return nil, PoolExhausted
	}

	w.shotTime = interval
	ray := w.aim()
	pr.Launch(w.name, ray, w.current)
	w.stats.Fired++

	if debuglog.Enabled() {
		slog.Debug("weapon fired",
			"weapon", w.name,
			"projectile", pr.ID(),
			"origin", ray.Origin,
			"dir", ray.Dir,
			"nextShotIn", interval)
	}
	return pr, Fired
}

// aim builds the shot ray: muzzle or eye origin, eye forward with
// per-axis jitter of up to Spread*SpreadFactor.
func (w *Weapon) aim() model.Ray {
	eye := w.bearer.Eye()
	origin := eye.Position
	if b, ok := w.barrel(); ok && b.HasMuzzle {
		origin = eye.Local(b.Muzzle)
	}

	jitter := w.current.Spread * w.opts.SpreadFactor
	dir := eye.Forward
	if jitter != 0 {
		dir = dir.Add(model.Vec3{
			X: w.jitter(jitter),
			Y: w.jitter(jitter),
			Z: w.jitter(jitter),
		})
	}
	return model.NewRay(origin, dir)
}

func (w *Weapon) jitter(scale float64) float64 {
	return (w.rng.Float64()*2 - 1) * scale
}

func (w *Weapon) barrel() (Barrel, bool) {
	p := w.slots[model.AttachBarrel]
	if p == nil {
		return Barrel{}, false
	}
	return p.Barrel()
}

// Update advances the weapon by dt seconds: cooldown, projectiles of the
// live and retiring pools, and the retired-pool drain queue.
func (w *Weapon) Update(dt float64) {
	w.shotTime = max(w.shotTime-dt, 0)

	if w.pool != nil {
		w.pool.Update(dt, w.opts.Raycaster)
	}
	for _, p := range w.retiring {
		p.Update(dt, w.opts.Raycaster)
	}
	w.routines.Tick(dt)
}

// Disable stops the weapon from firing. A nil reason records ErrDisabled.
func (w *Weapon) Disable(reason error) {
	if reason == nil {
		reason = ErrDisabled
	}
	if w.disabled == nil {
		slog.Warn("weapon disabled", "weapon", w.name, "reason", reason)
	}
	w.disabled = reason
}

// Enable clears a previous Disable.
func (w *Weapon) Enable() { w.disabled = nil }

// Disabled returns the reason the weapon was disabled, or nil.
func (w *Weapon) Disabled() error { return w.disabled }

// String returns a short description for logs.
func (w *Weapon) String() string {
	return fmt.Sprintf("%s%v", w.name, w.Parts())
}
