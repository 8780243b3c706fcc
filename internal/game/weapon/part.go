package weapon

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/udisondev/armory/internal/data"
	"github.com/udisondev/armory/internal/game/projectile"
	"github.com/udisondev/armory/internal/model"
)

// Mechanism is the payload of the slot that owns the projectile template.
type Mechanism struct {
	Projectile projectile.Spec
}

// Barrel is the payload of a barrel part.
type Barrel struct {
	// Muzzle is the tip offset in bearer eye space. Used as the aim root
	// when HasMuzzle is set.
	Muzzle    model.Vec3
	HasMuzzle bool
}

// Scope is the payload of a scope part.
type Scope struct {
	Zoom float64
}

// Grip is the payload of a grip part. Grips only carry modifiers.
type Grip struct{}

// Part is one attachable weapon part: a slot tag, a shared modifier bundle
// and exactly one slot-specific payload.
type Part struct {
	id    uuid.UUID
	point model.AttachPoint
	data  *model.WeaponPartData

	mechanism Mechanism
	barrel    Barrel
	scope     Scope
}

func newPart(point model.AttachPoint, d *model.WeaponPartData) *Part {
	if d == nil {
		d = &model.WeaponPartData{}
	}
	return &Part{id: uuid.New(), point: point, data: d}
}

// NewMechanism creates a mechanism part firing projectiles built from spec.
func NewMechanism(d *model.WeaponPartData, spec projectile.Spec) *Part {
	p := newPart(model.AttachMechanism, d)
	p.mechanism = Mechanism{Projectile: spec}
	return p
}

// NewBarrel creates a barrel part. A nil muzzle makes the bearer's eye the aim root.
func NewBarrel(d *model.WeaponPartData, muzzle *model.Vec3) *Part {
	p := newPart(model.AttachBarrel, d)
	if muzzle != nil {
		p.barrel = Barrel{Muzzle: *muzzle, HasMuzzle: true}
	}
	return p
}

// NewScope creates a scope part.
func NewScope(d *model.WeaponPartData, zoom float64) *Part {
	p := newPart(model.AttachScope, d)
	p.scope = Scope{Zoom: zoom}
	return p
}

// NewGrip creates a grip part.
func NewGrip(d *model.WeaponPartData) *Part {
	return newPart(model.AttachGrip, d)
}

// FromTemplate builds a new part instance from a catalog template.
// Instances built from one template share its modifier bundle.
func FromTemplate(t *data.PartTemplate) (*Part, error) {
	if t == nil {
		return nil, fmt.Errorf("nil part template")
	}
	switch t.Slot {
	case model.AttachMechanism:
		if t.Projectile == nil {
			return nil, fmt.Errorf("mechanism %q has no projectile", t.Name)
		}
		return NewMechanism(&t.Modifiers, *t.Projectile), nil
	case model.AttachBarrel:
		return NewBarrel(&t.Modifiers, t.Muzzle), nil
	case model.AttachScope:
		return NewScope(&t.Modifiers, t.Zoom), nil
	case model.AttachGrip:
		return NewGrip(&t.Modifiers), nil
	default:
		return nil, fmt.Errorf("part %q: invalid slot %d", t.Name, t.Slot)
	}
}

// ID returns the instance identity.
func (p *Part) ID() uuid.UUID { return p.id }

// Point returns the slot the part attaches to.
func (p *Part) Point() model.AttachPoint { return p.point }

// Data returns the shared modifier bundle.
func (p *Part) Data() *model.WeaponPartData { return p.data }

// Name returns the modifier bundle name.
func (p *Part) Name() string { return p.data.Name }

// Mechanism returns the mechanism payload.
func (p *Part) Mechanism() (Mechanism, bool) {
	return p.mechanism, p.point == model.AttachMechanism
}

// Barrel returns the barrel payload.
func (p *Part) Barrel() (Barrel, bool) {
	return p.barrel, p.point == model.AttachBarrel
}

// Scope returns the scope payload.
func (p *Part) Scope() (Scope, bool) {
	return p.scope, p.point == model.AttachScope
}

// Grip returns the grip payload.
func (p *Part) Grip() (Grip, bool) {
	return Grip{}, p.point == model.AttachGrip
}

// String returns "slot:name".
func (p *Part) String() string {
	return fmt.Sprintf("%s:%s", p.point, p.data.Name)
}
