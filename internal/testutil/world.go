package testutil

import (
	"github.com/udisondev/armory/internal/model"
	"github.com/udisondev/armory/internal/physics"
)

// Bearer is a movable test character for weapons and grav guns.
type Bearer struct {
	Pose   model.Pose
	Parent physics.ParentID
}

// NewBearer creates a bearer at position looking along forward.
func NewBearer(position, forward model.Vec3) *Bearer {
	return &Bearer{Pose: model.NewPose(position, forward), Parent: 1}
}

func (b *Bearer) Eye() model.Pose          { return b.Pose }
func (b *Bearer) Anchor() physics.ParentID { return b.Parent }

// Look turns the bearer towards forward.
func (b *Bearer) Look(forward model.Vec3) {
	b.Pose = model.NewPose(b.Pose.Position, forward)
}

// NewEmptyWorld creates a world without gravity.
func NewEmptyWorld() *physics.World {
	return physics.NewWorld(model.Vec3{})
}
