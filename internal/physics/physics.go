// Package physics describes the rigid-body and raycast contract the weapon
// core consumes, plus a small in-memory World that satisfies it for the
// headless server and tests.
package physics

import (
	"github.com/google/uuid"

	"github.com/udisondev/armory/internal/model"
)

// Constraints is a bitmask of frozen rigid-body axes.
type Constraints uint8

const (
	FreezePositionX Constraints = 1 << iota
	FreezePositionY
	FreezePositionZ
	FreezeRotationX
	FreezeRotationY
	FreezeRotationZ

	ConstraintsNone Constraints = 0
	FreezePosition  Constraints = FreezePositionX | FreezePositionY | FreezePositionZ
	FreezeRotation  Constraints = FreezeRotationX | FreezeRotationY | FreezeRotationZ
	FreezeAll       Constraints = FreezePosition | FreezeRotation
)

// BodyID identifies a rigid body inside its world.
type BodyID uint32

// ParentID identifies the transform a body is attached to. Zero is the world root.
type ParentID uint32

// Body is a rigid body owned by the physics collaborator.
type Body interface {
	ID() BodyID
	Position() model.Vec3
	SetPosition(model.Vec3)
	Mass() float64

	Constraints() Constraints
	SetConstraints(Constraints)

	Parent() ParentID
	SetParent(ParentID)

	// AddForce accumulates a continuous force for the next step.
	AddForce(model.Vec3)
	// AddImpulse changes velocity immediately.
	AddImpulse(model.Vec3)

	// Destroyed reports whether the body was removed from its world.
	// Holders must drop their reference once it returns true.
	Destroyed() bool
}

// Cause describes what dealt a hit.
type Cause struct {
	Weapon     string
	Projectile uuid.UUID
}

// DamageReceiver is anything that can take damage from a projectile.
type DamageReceiver interface {
	ApplyDamage(amount float64, point, normal model.Vec3, cause Cause)
}

// Hit is the nearest result of a raycast.
// Body and Receiver are nil when the hit object exposes neither.
type Hit struct {
	Body     Body
	Receiver DamageReceiver
	Point    model.Vec3
	Normal   model.Vec3
	Distance float64
}

// Raycaster answers ray queries. A miss is a normal negative result.
type Raycaster interface {
	Raycast(ray model.Ray, maxDistance float64) (Hit, bool)
}
