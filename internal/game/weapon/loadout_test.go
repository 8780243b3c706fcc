package weapon

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/armory/internal/data"
	"github.com/udisondev/armory/internal/model"
)

func defaultCatalog(t *testing.T) *data.Catalog {
	t.Helper()
	cat, err := data.DefaultCatalog()
	require.NoError(t, err)
	return cat
}

func TestBuild(t *testing.T) {
	cat := defaultCatalog(t)

	w, err := Build(cat, "carbine", newBearer(), Options{})
	require.NoError(t, err)

	assert.Equal(t, "carbine", w.Name())
	assert.Equal(t, Loadout{
		model.AttachMechanism: "auto_mechanism",
		model.AttachBarrel:    "short_barrel",
	}, w.Loadout())
	require.NotNil(t, w.Pool())
	assert.Equal(t, 24, w.Pool().Count())

	// 2.0 fire rate + 50%
	assert.InDelta(t, 3.0, w.CurrentData().FireRate, 1e-9)
	// 18 damage - 2
	assert.InDelta(t, 16.0, w.CurrentData().Damage, 1e-9)
	// 2.0 spread + 0.5
	assert.InDelta(t, 2.5, w.CurrentData().Spread, 1e-9)

	_, err = Build(cat, "railgun", newBearer(), Options{})
	assert.ErrorIs(t, err, data.ErrUnknownWeapon)
}

func TestBuild_MarksmanScopeAfterBarrel(t *testing.T) {
	w, err := Build(defaultCatalog(t), "marksman", newBearer(), Options{})
	require.NoError(t, err)

	// long_barrel sets spread to 0.1, then scope_4x halves it
	assert.InDelta(t, 0.05, w.CurrentData().Spread, 1e-9)
	assert.InDelta(t, 0.6, w.CurrentData().FireRate, 1e-9)

	sc, ok := w.Part(model.AttachScope).Scope()
	require.True(t, ok)
	assert.Equal(t, 4.0, sc.Zoom)
}

func TestWeapon_ApplyLoadout(t *testing.T) {
	cat := defaultCatalog(t)
	w, err := Build(cat, "carbine", newBearer(), Options{})
	require.NoError(t, err)
	mech := w.Part(model.AttachMechanism)

	err = w.ApplyLoadout(cat, Loadout{
		model.AttachMechanism: "auto_mechanism",
		model.AttachGrip:      "drum_grip",
	})
	require.NoError(t, err)

	assert.Same(t, mech, w.Part(model.AttachMechanism), "unchanged slot keeps its instance")
	assert.Nil(t, w.Part(model.AttachBarrel))
	assert.Equal(t, int32(60), w.CurrentData().ClipSize)
	assert.Equal(t, 0, w.Retiring())

	frame, err := Build(cat, "frame", newBearer(), Options{})
	require.NoError(t, err)
	require.NoError(t, frame.ApplyLoadout(cat, w.Loadout()))
	assert.Equal(t, w.Loadout(), frame.Loadout())
}

func TestWeapon_ApplyLoadoutRejectsBadInput(t *testing.T) {
	cat := defaultCatalog(t)
	w, err := Build(cat, "carbine", newBearer(), Options{})
	require.NoError(t, err)
	before := w.Loadout()

	err = w.ApplyLoadout(cat, Loadout{model.AttachGrip: "scope_4x"})
	assert.ErrorContains(t, err, "belongs to slot scope")

	err = w.ApplyLoadout(cat, Loadout{model.AttachGrip: "nope"})
	assert.ErrorIs(t, err, data.ErrUnknownPart)

	assert.Equal(t, before, w.Loadout(), "weapon untouched on error")
}

func TestFromTemplate(t *testing.T) {
	cat := defaultCatalog(t)

	tmpl, err := cat.Part("short_barrel")
	require.NoError(t, err)
	a, err := FromTemplate(tmpl)
	require.NoError(t, err)
	b, err := FromTemplate(tmpl)
	require.NoError(t, err)

	assert.NotEqual(t, a.ID(), b.ID())
	assert.Same(t, a.Data(), b.Data(), "instances share the template bundle")

	barrel, ok := a.Barrel()
	require.True(t, ok)
	assert.True(t, barrel.HasMuzzle)
	_, ok = a.Mechanism()
	assert.False(t, ok)
	assert.Equal(t, "barrel:short_barrel", a.String())

	_, err = FromTemplate(nil)
	assert.Error(t, err)
	_, err = FromTemplate(&data.PartTemplate{Name: "m", Slot: model.AttachMechanism})
	assert.Error(t, err)
}
