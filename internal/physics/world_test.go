package physics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/armory/internal/model"
)

type recordingReceiver struct{ hits int }

func (r *recordingReceiver) ApplyDamage(float64, model.Vec3, model.Vec3, Cause) { r.hits++ }

func TestWorld_RaycastNearest(t *testing.T) {
	w := NewWorld(model.Vec3{})
	far := w.Spawn(SphereOptions{Position: model.V3(0, 0, 20), Radius: 1})
	near := w.Spawn(SphereOptions{Position: model.V3(0, 0, 10), Radius: 1})
	w.Spawn(SphereOptions{Position: model.V3(5, 0, 5), Radius: 1}) // off-axis

	hit, ok := w.Raycast(model.NewRay(model.Vec3{}, model.Forward), 100)
	require.True(t, ok)
	assert.Equal(t, near.ID(), hit.Body.ID())
	assert.InDelta(t, 9.0, hit.Distance, 1e-9)
	assert.InDelta(t, -1.0, hit.Normal.Z, 1e-9)
	assert.Nil(t, hit.Receiver)

	require.True(t, w.Destroy(near.ID()))
	hit, ok = w.Raycast(model.NewRay(model.Vec3{}, model.Forward), 100)
	require.True(t, ok)
	assert.Equal(t, far.ID(), hit.Body.ID())
	assert.True(t, near.Destroyed())
}

func TestWorld_RaycastMiss(t *testing.T) {
	w := NewWorld(model.Vec3{})
	w.Spawn(SphereOptions{Position: model.V3(0, 0, 10), Radius: 1})

	_, ok := w.Raycast(model.NewRay(model.Vec3{}, model.Forward), 5)
	assert.False(t, ok, "target beyond max distance")

	_, ok = w.Raycast(model.NewRay(model.Vec3{}, model.V3(0, 0, -1)), 100)
	assert.False(t, ok, "target behind origin")
}

func TestWorld_RaycastReceiver(t *testing.T) {
	w := NewWorld(model.Vec3{})
	recv := &recordingReceiver{}
	w.Spawn(SphereOptions{Position: model.V3(0, 0, 3), Receiver: recv})

	hit, ok := w.Raycast(model.NewRay(model.Vec3{}, model.Forward), 10)
	require.True(t, ok)
	require.NotNil(t, hit.Receiver)
	hit.Receiver.ApplyDamage(1, hit.Point, hit.Normal, Cause{})
	assert.Equal(t, 1, recv.hits)
}

func TestWorld_StepIntegratesForces(t *testing.T) {
	w := NewWorld(model.Vec3{})
	s := w.Spawn(SphereOptions{Mass: 2})

	s.AddForce(model.V3(0, 0, 4)) // a = 2
	w.Step(1)
	assert.InDelta(t, 2.0, s.Velocity().Z, 1e-9)
	assert.InDelta(t, 2.0, s.Position().Z, 1e-9)

	// force is consumed by the step
	w.Step(1)
	assert.InDelta(t, 2.0, s.Velocity().Z, 1e-9)
	assert.InDelta(t, 4.0, s.Position().Z, 1e-9)
}

func TestWorld_ConstraintsAndParent(t *testing.T) {
	w := NewWorld(model.V3(0, -10, 0))
	frozen := w.Spawn(SphereOptions{})
	frozen.SetConstraints(FreezeAll)
	held := w.Spawn(SphereOptions{})
	held.SetParent(7)

	frozen.AddImpulse(model.V3(5, 5, 5))
	w.Step(0.5)

	assert.Equal(t, model.Vec3{}, frozen.Position())
	assert.Equal(t, model.Vec3{}, held.Position())
}

func TestWorld_SpawnDefaults(t *testing.T) {
	w := NewWorld(model.Vec3{})
	s := w.Spawn(SphereOptions{})
	assert.Equal(t, 0.5, s.Radius())
	assert.Equal(t, 1.0, s.Mass())
	assert.Equal(t, 1, w.Count())

	got, ok := w.Body(s.ID())
	require.True(t, ok)
	assert.Same(t, s, got)
	assert.False(t, w.Destroy(999))
}
