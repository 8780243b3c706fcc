package physics

import (
	"math"
	"sort"
	"sync"

	"github.com/udisondev/armory/internal/model"
)

// World is a minimal in-memory scene of sphere bodies.
// It integrates accumulated forces and impulses and answers raycasts;
// there is no collision response between bodies.
//
// Thread-safe: the body registry is protected by sync.RWMutex. Body state
// itself is only touched from the tick goroutine.
type World struct {
	mu      sync.RWMutex
	bodies  map[BodyID]*Sphere
	nextID  BodyID
	gravity model.Vec3
}

// NewWorld creates an empty world with the given gravity acceleration.
func NewWorld(gravity model.Vec3) *World {
	return &World{
		bodies:  make(map[BodyID]*Sphere),
		gravity: gravity,
	}
}

// SphereOptions configures a spawned body.
type SphereOptions struct {
	Position model.Vec3
	Radius   float64
	Mass     float64
	Receiver DamageReceiver // optional
}

// Spawn adds a sphere body to the world.
// Non-positive radius and mass default to 0.5 and 1.
func (w *World) Spawn(opts SphereOptions) *Sphere {
	if opts.Radius <= 0 {
		opts.Radius = 0.5
	}
	if opts.Mass <= 0 {
		opts.Mass = 1
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.nextID++
	s := &Sphere{
		id:       w.nextID,
		position: opts.Position,
		radius:   opts.Radius,
		mass:     opts.Mass,
		receiver: opts.Receiver,
	}
	w.bodies[s.id] = s
	return s
}

// Destroy removes a body. Outstanding references observe Destroyed() == true.
func (w *World) Destroy(id BodyID) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	s, ok := w.bodies[id]
	if !ok {
		return false
	}
	s.destroyed = true
	delete(w.bodies, id)
	return true
}

// Body returns a live body by ID.
func (w *World) Body(id BodyID) (*Sphere, bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	s, ok := w.bodies[id]
	return s, ok
}

// Count returns number of live bodies.
func (w *World) Count() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.bodies)
}

// snapshot returns live bodies ordered by ID so stepping is deterministic.
func (w *World) snapshot() []*Sphere {
	w.mu.RLock()
	out := make([]*Sphere, 0, len(w.bodies))
	for _, s := range w.bodies {
		out = append(out, s)
	}
	w.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// Step integrates every free body by dt seconds.
// Parented bodies follow their parent and are skipped.
func (w *World) Step(dt float64) {
	for _, s := range w.snapshot() {
		s.integrate(dt, w.gravity)
	}
}

// Raycast returns the nearest body hit within maxDistance.
func (w *World) Raycast(ray model.Ray, maxDistance float64) (Hit, bool) {
	var (
		best  Hit
		found bool
	)
	for _, s := range w.snapshot() {
		d, ok := s.intersect(ray)
		if !ok || d > maxDistance {
			continue
		}
		if found && d >= best.Distance {
			continue
		}
		point := ray.At(d)
		best = Hit{
			Body:     s,
			Point:    point,
			Normal:   point.Sub(s.position).Normalize(),
			Distance: d,
		}
		if s.receiver != nil {
			best.Receiver = s.receiver
		}
		found = true
	}
	return best, found
}

// Sphere is a rigid body with a spherical collider.
type Sphere struct {
	id          BodyID
	position    model.Vec3
	velocity    model.Vec3
	force       model.Vec3
	radius      float64
	mass        float64
	constraints Constraints
	parent      ParentID
	receiver    DamageReceiver
	destroyed   bool
}

func (s *Sphere) ID() BodyID                   { return s.id }
func (s *Sphere) Position() model.Vec3         { return s.position }
func (s *Sphere) SetPosition(p model.Vec3)     { s.position = p }
func (s *Sphere) Mass() float64                { return s.mass }
func (s *Sphere) Radius() float64              { return s.radius }
func (s *Sphere) Velocity() model.Vec3         { return s.velocity }
func (s *Sphere) Constraints() Constraints     { return s.constraints }
func (s *Sphere) Parent() ParentID             { return s.parent }
func (s *Sphere) SetParent(p ParentID)         { s.parent = p }
func (s *Sphere) AddForce(f model.Vec3)        { s.force = s.force.Add(f) }
func (s *Sphere) Destroyed() bool              { return s.destroyed }
func (s *Sphere) Receiver() DamageReceiver     { return s.receiver }
func (s *Sphere) SetReceiver(r DamageReceiver) { s.receiver = r }
func (s *Sphere) SetVelocity(v model.Vec3)     { s.velocity = v }

// SetConstraints replaces frozen axes. Velocity along newly frozen
// position axes is dropped.
func (s *Sphere) SetConstraints(c Constraints) {
	s.constraints = c
	s.velocity = s.constrain(s.velocity)
}

// AddImpulse changes velocity by impulse/mass, respecting frozen axes.
func (s *Sphere) AddImpulse(impulse model.Vec3) {
	s.velocity = s.constrain(s.velocity.Add(impulse.Scale(1 / s.mass)))
}

func (s *Sphere) integrate(dt float64, gravity model.Vec3) {
	defer func() { s.force = model.Vec3{} }()

	if s.destroyed || s.parent != 0 {
		return
	}
	accel := s.force.Scale(1 / s.mass).Add(gravity)
	s.velocity = s.constrain(s.velocity.Add(accel.Scale(dt)))
	s.position = s.position.Add(s.velocity.Scale(dt))
}

func (s *Sphere) constrain(v model.Vec3) model.Vec3 {
	if s.constraints&FreezePositionX != 0 {
		v.X = 0
	}
	if s.constraints&FreezePositionY != 0 {
		v.Y = 0
	}
	if s.constraints&FreezePositionZ != 0 {
		v.Z = 0
	}
	return v
}

// intersect returns the distance along ray to the sphere surface.
// A ray starting inside the sphere hits its far side.
func (s *Sphere) intersect(ray model.Ray) (float64, bool) {
	oc := ray.Origin.Sub(s.position)
	b := oc.Dot(ray.Dir)
	c := oc.LenSquared() - s.radius*s.radius
	disc := b*b - c
	if disc < 0 {
		return 0, false
	}
	sq := math.Sqrt(disc)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}
