package model

import (
	"math"

	"github.com/udisondev/armory/internal/game/modifier"
)

// WeaponData is an immutable snapshot of weapon stats.
// Every modification returns a new value; history is reconstructed by
// replaying parts against the base data.
type WeaponData struct {
	Spread     float64 `yaml:"spread"`
	Damage     float64 `yaml:"damage"`
	FireRate   float64 `yaml:"fire_rate"` // shots per second
	Recoil     float64 `yaml:"recoil"`
	ReloadTime float64 `yaml:"reload_time"` // seconds
	ClipSize   int32   `yaml:"clip_size"`
}

// ShotInterval returns seconds between shots.
// A non-positive fire rate yields +Inf: the weapon never comes off cooldown.
func (d WeaponData) ShotInterval() float64 {
	if d.FireRate <= 0 {
		return math.Inf(1)
	}
	return 1 / d.FireRate
}

// With returns d with every modifier of p applied to its field.
func (d WeaponData) With(p WeaponPartData) WeaponData {
	return WeaponData{
		Spread:     p.Spread.ApplyFloat(d.Spread),
		Damage:     p.Damage.ApplyFloat(d.Damage),
		FireRate:   p.FireRate.ApplyFloat(d.FireRate),
		Recoil:     p.Recoil.ApplyFloat(d.Recoil),
		ReloadTime: p.ReloadTime.ApplyFloat(d.ReloadTime),
		ClipSize:   p.ClipSize.ApplyInt(d.ClipSize),
	}
}

// WeaponPartData is a named bundle of modifiers, one per stat.
// Shared read-only by every part built from the same template.
type WeaponPartData struct {
	Name       string            `yaml:"name"`
	Spread     modifier.Modifier `yaml:"spread"`
	Damage     modifier.Modifier `yaml:"damage"`
	FireRate   modifier.Modifier `yaml:"fire_rate"`
	Recoil     modifier.Modifier `yaml:"recoil"`
	ReloadTime modifier.Modifier `yaml:"reload_time"`
	ClipSize   modifier.Modifier `yaml:"clip_size"`
}
