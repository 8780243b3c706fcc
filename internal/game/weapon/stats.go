package weapon

import "github.com/udisondev/armory/internal/model"

// Recompute folds the modifiers of parts over base, in the given order.
// Each application yields a new WeaponData; Set modifiers applied later win.
// Nil parts are skipped.
func Recompute(base model.WeaponData, parts []*Part) model.WeaponData {
	d := base
	for _, p := range parts {
		if p == nil || p.data == nil {
			continue
		}
		d = d.With(*p.data)
	}
	return d
}

// FireStats counts fire attempts by outcome.
type FireStats struct {
	Fired       uint64
	CoolingDown uint64
	NoMechanism uint64
	Exhausted   uint64
	Disabled    uint64
}

// Skipped returns number of attempts that did not spawn a projectile.
func (s FireStats) Skipped() uint64 {
	return s.CoolingDown + s.NoMechanism + s.Exhausted + s.Disabled
}
