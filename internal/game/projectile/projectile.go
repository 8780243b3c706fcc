package projectile

import (
	"github.com/google/uuid"

	"github.com/udisondev/armory/internal/model"
	"github.com/udisondev/armory/internal/physics"
)

// Projectile is a pooled round in flight.
type Projectile struct {
	id   uuid.UUID
	pool *Pool

	active    bool
	weapon    string
	origin    model.Vec3
	position  model.Vec3
	dir       model.Vec3
	damage    float64
	age       float64
	travelled float64
}

// ID returns the instance identity. Stable across reuse.
func (pr *Projectile) ID() uuid.UUID { return pr.id }

// Active reports whether the projectile is in flight.
func (pr *Projectile) Active() bool { return pr.active }

// Position returns current position.
func (pr *Projectile) Position() model.Vec3 { return pr.position }

// Origin returns the launch point.
func (pr *Projectile) Origin() model.Vec3 { return pr.origin }

// Direction returns the unit flight direction.
func (pr *Projectile) Direction() model.Vec3 { return pr.dir }

// Damage returns damage dealt on hit.
func (pr *Projectile) Damage() float64 { return pr.damage }

// Travelled returns distance covered since launch.
func (pr *Projectile) Travelled() float64 { return pr.travelled }

// Weapon returns the name of the weapon that fired the projectile.
func (pr *Projectile) Weapon() string { return pr.weapon }

// Launch initializes an acquired projectile with its aim ray and the
// firing weapon's current stats.
func (pr *Projectile) Launch(weapon string, ray model.Ray, stats model.WeaponData) {
	pr.weapon = weapon
	pr.origin = ray.Origin
	pr.position = ray.Origin
	pr.dir = ray.Dir.Normalize()
	pr.damage = stats.Damage
	pr.age = 0
	pr.travelled = 0
}

func (pr *Projectile) reset() {
	*pr = Projectile{id: pr.id, pool: pr.pool}
}

// step advances the projectile by dt. Returns false once it left flight.
func (pr *Projectile) step(dt float64, rc physics.Raycaster) bool {
	if !pr.active {
		return false
	}
	spec := pr.pool.spec

	dist := spec.Speed * dt
	if rc != nil && dist > 0 {
		if hit, ok := rc.Raycast(model.Ray{Origin: pr.position, Dir: pr.dir}, dist+spec.Radius); ok {
			pr.position = hit.Point
			if hit.Receiver != nil {
				hit.Receiver.ApplyDamage(pr.damage, hit.Point, hit.Normal, physics.Cause{
					Weapon:     pr.weapon,
					Projectile: pr.id,
				})
			}
			pr.pool.hits++
			pr.pool.Release(pr)
			return false
		}
	}
	pr.position = pr.position.Add(pr.dir.Scale(dist))
	pr.travelled += dist
	pr.age += dt

	if pr.age >= spec.Lifetime {
		pr.pool.expired++
		pr.pool.Release(pr)
		return false
	}
	return true
}

// Update advances every in-flight projectile by dt, resolving hits through rc.
// A nil rc lets projectiles fly until their lifetime expires.
func (p *Pool) Update(dt float64, rc physics.Raycaster) {
	for _, pr := range p.all {
		if pr.active {
			pr.step(dt, rc)
		}
	}
}
