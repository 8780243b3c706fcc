package weapon

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/armory/internal/game/modifier"
	"github.com/udisondev/armory/internal/game/projectile"
	"github.com/udisondev/armory/internal/model"
	"github.com/udisondev/armory/internal/testutil"
)

func newBearer() *testutil.Bearer {
	return testutil.NewBearer(model.V3(0, 1.7, 0), model.Forward)
}

func testSpec(size int) projectile.Spec {
	return projectile.Spec{Speed: 100, Lifetime: 1, PoolSize: size}
}

func newTestWeapon(base model.WeaponData) *Weapon {
	return New("test", base, newBearer(), Options{Rand: rand.New(rand.NewPCG(1, 2))})
}

func TestRecompute_AdditivePercentFireRate(t *testing.T) {
	base := model.WeaponData{FireRate: 2.0}
	part := NewMechanism(&model.WeaponPartData{Name: "auto", FireRate: modifier.AddPercent(0.5)}, testSpec(1))

	got := Recompute(base, []*Part{part})

	assert.InDelta(t, 3.0, got.FireRate, 1e-9)
	assert.InDelta(t, 1.0/3.0, got.ShotInterval(), 1e-9)
}

func TestRecompute_LastSetWins(t *testing.T) {
	base := model.WeaponData{Spread: 0}
	first := NewBarrel(&model.WeaponPartData{Spread: modifier.Set(10)}, nil)
	second := NewScope(&model.WeaponPartData{Spread: modifier.Set(5)}, 2)

	assert.Equal(t, 5.0, Recompute(base, []*Part{first, second}).Spread)
	assert.Equal(t, 10.0, Recompute(base, []*Part{second, first}).Spread)
	assert.Equal(t, base, Recompute(base, nil))
	assert.Equal(t, base, Recompute(base, []*Part{nil}))
}

func TestWeapon_AttachFoldsInSlotOrder(t *testing.T) {
	w := newTestWeapon(model.WeaponData{Spread: 0, FireRate: 1})

	// Attach scope before barrel; fold order is still barrel then scope.
	w.AttachPart(NewScope(&model.WeaponPartData{Spread: modifier.Set(5)}, 2))
	w.AttachPart(NewBarrel(&model.WeaponPartData{Spread: modifier.Set(10)}, nil))

	assert.Equal(t, 5.0, w.CurrentData().Spread)
	parts := w.Parts()
	require.Len(t, parts, 2)
	assert.Equal(t, model.AttachBarrel, parts[0].Point())
	assert.Equal(t, model.AttachScope, parts[1].Point())
}

// foldInDeclarationOrder recomputes expected stats independently of Weapon.
func foldInDeclarationOrder(base model.WeaponData, attached map[model.AttachPoint]*Part) model.WeaponData {
	d := base
	for _, point := range model.AttachPoints() {
		if p, ok := attached[point]; ok {
			d = d.With(*p.Data())
		}
	}
	return d
}

func TestWeapon_CurrentDataMatchesFoldAfterEveryAttach(t *testing.T) {
	base := model.WeaponData{Spread: 1, Damage: 10, FireRate: 2, Recoil: 1, ReloadTime: 2, ClipSize: 20}
	mods := []modifier.Modifier{
		modifier.Add(1), modifier.Set(3), modifier.AddPercent(0.25), modifier.SetPercent(1.5),
		modifier.Add(-0.5), modifier.Set(0.2),
	}
	rng := rand.New(rand.NewPCG(42, 7))
	pick := func() modifier.Modifier { return mods[rng.IntN(len(mods))] }

	w := newTestWeapon(base)
	attached := make(map[model.AttachPoint]*Part)

	for range 200 {
		d := &model.WeaponPartData{
			Spread: pick(), Damage: pick(), FireRate: pick(),
			Recoil: pick(), ReloadTime: pick(), ClipSize: modifier.AddPercent(float64(rng.IntN(50))),
		}
		var p *Part
		switch model.AttachPoint(rng.IntN(int(model.AttachPointCount))) {
		case model.AttachMechanism:
			p = NewMechanism(d, testSpec(1))
		case model.AttachBarrel:
			p = NewBarrel(d, nil)
		case model.AttachScope:
			p = NewScope(d, 1)
		case model.AttachGrip:
			p = NewGrip(d)
		}

		w.AttachPart(p)
		attached[p.Point()] = p

		require.Equal(t, foldInDeclarationOrder(base, attached), w.CurrentData())
	}
	assert.Equal(t, base, w.BaseData(), "base never mutated")
}

func TestWeapon_AttachSameInstanceTwice(t *testing.T) {
	w := newTestWeapon(model.WeaponData{FireRate: 2, Damage: 10})
	mech := NewMechanism(&model.WeaponPartData{Damage: modifier.AddPercent(0.5)}, testSpec(2))

	w.AttachPart(mech)
	once := w.CurrentData()
	pool := w.Pool()

	w.AttachPart(mech)
	assert.Equal(t, once, w.CurrentData())
	assert.Same(t, pool, w.Pool(), "same instance keeps its pool")
	assert.Equal(t, 0, w.Retiring())
}

func TestWeapon_AttachIdenticalPartTwice(t *testing.T) {
	d := &model.WeaponPartData{Recoil: modifier.Set(0.3)}
	w := newTestWeapon(model.WeaponData{FireRate: 1, Recoil: 2})

	w.AttachPart(NewGrip(d))
	once := w.CurrentData()
	second := NewGrip(d)
	w.AttachPart(second)

	assert.Equal(t, once, w.CurrentData())
	assert.Same(t, second, w.Part(model.AttachGrip))
	assert.Len(t, w.Parts(), 1)
}

func TestWeapon_DetachPart(t *testing.T) {
	base := model.WeaponData{FireRate: 2, Recoil: 1}
	w := newTestWeapon(base)
	grip := NewGrip(&model.WeaponPartData{Recoil: modifier.Set(0.1)})
	w.AttachPart(grip)

	assert.Same(t, grip, w.DetachPart(model.AttachGrip))
	assert.Equal(t, base, w.CurrentData())
	assert.Nil(t, w.DetachPart(model.AttachGrip))
	assert.Nil(t, w.Part(model.AttachPoint(9)))
}

func TestWeapon_FireRateGate(t *testing.T) {
	w := newTestWeapon(model.WeaponData{FireRate: 2})
	w.AttachPart(NewMechanism(&model.WeaponPartData{FireRate: modifier.AddPercent(0.5)}, testSpec(8)))
	require.InDelta(t, 3.0, w.CurrentData().FireRate, 1e-9)

	pr, res := w.Fire()
	require.Equal(t, Fired, res)
	require.NotNil(t, pr)

	_, res = w.Fire()
	assert.Equal(t, CoolingDown, res)
	assert.Equal(t, 1, w.Pool().InUse(), "two calls within 1/fireRate spawn one projectile")
	assert.InDelta(t, 1.0/3.0, w.ShotTime(), 1e-9)

	w.Update(0.2)
	_, res = w.Fire()
	assert.Equal(t, CoolingDown, res)

	w.Update(0.14)
	_, res = w.Fire()
	assert.Equal(t, Fired, res)

	st := w.Stats()
	assert.Equal(t, uint64(2), st.Fired)
	assert.Equal(t, uint64(2), st.CoolingDown)
	assert.Equal(t, uint64(2), st.Skipped())
}

func TestWeapon_FireWithoutMechanism(t *testing.T) {
	w := newTestWeapon(model.WeaponData{FireRate: 1})
	pr, res := w.Fire()
	assert.Nil(t, pr)
	assert.Equal(t, NoMechanism, res)
	assert.Equal(t, uint64(1), w.Stats().NoMechanism)
}

func TestWeapon_ZeroFireRateNeverFires(t *testing.T) {
	w := newTestWeapon(model.WeaponData{FireRate: 1})
	w.AttachPart(NewMechanism(&model.WeaponPartData{FireRate: modifier.Set(0)}, testSpec(1)))

	_, res := w.Fire()
	assert.Equal(t, CoolingDown, res)
	assert.Equal(t, 0.0, w.ShotTime())
}

func TestWeapon_PoolExhaustedSkipsShot(t *testing.T) {
	w := newTestWeapon(model.WeaponData{FireRate: 100})
	w.AttachPart(NewMechanism(nil, projectile.Spec{Speed: 1, Lifetime: 10, PoolSize: 1}))

	_, res := w.Fire()
	require.Equal(t, Fired, res)
	w.Update(0.02)

	pr, res := w.Fire()
	assert.Nil(t, pr)
	assert.Equal(t, PoolExhausted, res)
	assert.Equal(t, 0.0, w.ShotTime(), "skipped shot does not reset the cooldown")
	assert.Equal(t, uint64(1), w.Stats().Exhausted)
}

func TestWeapon_PoolGrows(t *testing.T) {
	w := New("grow", model.WeaponData{FireRate: 100}, newBearer(), Options{
		Pool: projectile.Options{Grow: true},
		Rand: rand.New(rand.NewPCG(1, 1)),
	})
	w.AttachPart(NewMechanism(nil, projectile.Spec{Speed: 1, Lifetime: 10, PoolSize: 1}))

	for range 3 {
		_, res := w.Fire()
		require.Equal(t, Fired, res)
		w.Update(0.01)
	}
	assert.Equal(t, 3, w.Pool().Count())
}

func TestWeapon_MechanismSwapDrainsOldPool(t *testing.T) {
	w := newTestWeapon(model.WeaponData{FireRate: 10})
	w.AttachPart(NewMechanism(nil, projectile.Spec{Speed: 1, Lifetime: 0.5, PoolSize: 2}))
	oldPool := w.Pool()

	_, res := w.Fire()
	require.Equal(t, Fired, res)

	w.AttachPart(NewMechanism(nil, projectile.Spec{Speed: 1, Lifetime: 0.5, PoolSize: 4}))
	require.NotSame(t, oldPool, w.Pool())
	assert.Equal(t, 4, w.Pool().Count())
	assert.Equal(t, 1, w.Retiring())

	// in-flight projectile keeps the old pool alive
	w.Update(0.25)
	assert.Equal(t, 1, oldPool.InUse())
	assert.False(t, oldPool.Closed())
	assert.Equal(t, 1, w.Retiring())

	// projectile expires during this update; the drain check closes the pool
	w.Update(0.3)
	assert.Equal(t, 0, oldPool.InUse())
	assert.True(t, oldPool.Closed())
	assert.Equal(t, 0, w.Retiring())
}

func TestWeapon_DetachMechanismWithIdlePool(t *testing.T) {
	w := newTestWeapon(model.WeaponData{FireRate: 1})
	w.AttachPart(NewMechanism(nil, testSpec(2)))
	pool := w.Pool()

	w.DetachPart(model.AttachMechanism)
	assert.Nil(t, w.Pool())
	assert.Equal(t, 1, w.Retiring())

	w.Update(0.01)
	assert.True(t, pool.Closed())
	assert.Equal(t, 0, w.Retiring())
}

func TestWeapon_AimFromEyeWithoutSpread(t *testing.T) {
	b := newBearer()
	w := New("test", model.WeaponData{FireRate: 1, Spread: 0}, b, Options{})
	w.AttachPart(NewMechanism(nil, testSpec(1)))

	pr, res := w.Fire()
	require.Equal(t, Fired, res)
	assert.Equal(t, b.Pose.Position, pr.Origin())
	assert.Equal(t, model.Forward, pr.Direction())
}

func TestWeapon_AimFromMuzzle(t *testing.T) {
	b := newBearer()
	w := New("test", model.WeaponData{FireRate: 1}, b, Options{})
	w.AttachPart(NewMechanism(nil, testSpec(1)))
	muzzle := model.V3(0.2, -0.1, 0.8)
	w.AttachPart(NewBarrel(nil, &muzzle))

	pr, res := w.Fire()
	require.Equal(t, Fired, res)
	assert.InDelta(t, 0.2, pr.Origin().X, 1e-9)
	assert.InDelta(t, 1.6, pr.Origin().Y, 1e-9)
	assert.InDelta(t, 0.8, pr.Origin().Z, 1e-9)
}

func TestWeapon_SpreadJitterBounded(t *testing.T) {
	b := newBearer()
	w := New("test", model.WeaponData{FireRate: 1000, Spread: 10}, b, Options{
		SpreadFactor: 0.01,
		Rand:         rand.New(rand.NewPCG(3, 4)),
		Pool:         projectile.Options{Grow: true},
	})
	w.AttachPart(NewMechanism(nil, testSpec(1)))

	// jitter per axis is at most 10*0.01 = 0.1 before normalization
	maxAngle := math.Atan(math.Sqrt(2) * 0.1 / 0.9)
	deviated := false
	for range 50 {
		pr, res := w.Fire()
		require.Equal(t, Fired, res)
		angle := math.Acos(math.Min(1, pr.Direction().Dot(model.Forward)))
		assert.LessOrEqual(t, angle, maxAngle)
		if angle > 0 {
			deviated = true
		}
		w.Update(0.001)
	}
	assert.True(t, deviated)
}

func TestWeapon_Disable(t *testing.T) {
	w := newTestWeapon(model.WeaponData{FireRate: 1})
	w.AttachPart(NewMechanism(nil, testSpec(1)))

	w.Disable(nil)
	assert.ErrorIs(t, w.Disabled(), ErrDisabled)
	_, res := w.Fire()
	assert.Equal(t, Disabled, res)

	w.Enable()
	assert.NoError(t, w.Disabled())
	_, res = w.Fire()
	assert.Equal(t, Fired, res)
}

func TestFireResult_String(t *testing.T) {
	assert.Equal(t, "POOL_EXHAUSTED", PoolExhausted.String())
	assert.Equal(t, "UNKNOWN", FireResult(99).String())
}
