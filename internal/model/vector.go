package model

import "math"

// Vec3 is a point or direction in world space.
// Value type, passed by value (immutable).
type Vec3 struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

var (
	// Up is the world up axis.
	Up = Vec3{Y: 1}
	// Forward is the default facing of a pose with no rotation.
	Forward = Vec3{Z: 1}
)

// V3 builds a Vec3.
func V3(x, y, z float64) Vec3 { return Vec3{X: x, Y: y, Z: z} }

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }
func (v Vec3) LenSquared() float64  { return v.Dot(v) }
func (v Vec3) Len() float64         { return math.Sqrt(v.LenSquared()) }
func (v Vec3) IsZero() bool         { return v.X == 0 && v.Y == 0 && v.Z == 0 }

// DistanceTo returns the euclidean distance between two points.
func (v Vec3) DistanceTo(o Vec3) float64 { return o.Sub(v).Len() }

// Cross returns the cross product v × o.
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		X: v.Y*o.Z - v.Z*o.Y,
		Y: v.Z*o.X - v.X*o.Z,
		Z: v.X*o.Y - v.Y*o.X,
	}
}

// Normalize returns the unit vector in v's direction, or zero for a zero vector.
func (v Vec3) Normalize() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return v.Scale(1 / l)
}

// Lerp interpolates between v and o; t is clamped to [0, 1].
func (v Vec3) Lerp(o Vec3, t float64) Vec3 {
	switch {
	case t <= 0:
		return v
	case t >= 1:
		return o
	}
	return v.Add(o.Sub(v).Scale(t))
}

// Ray is a half-line with a unit direction.
type Ray struct {
	Origin Vec3
	Dir    Vec3
}

// NewRay normalizes dir.
func NewRay(origin, dir Vec3) Ray {
	return Ray{Origin: origin, Dir: dir.Normalize()}
}

// At returns the point at distance d along the ray.
func (r Ray) At(d float64) Vec3 {
	return r.Origin.Add(r.Dir.Scale(d))
}

// Pose is a position with a facing direction, e.g. a bearer's eye.
type Pose struct {
	Position Vec3
	Forward  Vec3
}

// NewPose normalizes forward; a zero forward falls back to the Forward axis.
func NewPose(position, forward Vec3) Pose {
	f := forward.Normalize()
	if f.IsZero() {
		f = Forward
	}
	return Pose{Position: position, Forward: f}
}

// Axes returns the pose's right, up and forward unit vectors.
func (p Pose) Axes() (right, up, forward Vec3) {
	forward = p.Forward.Normalize()
	if forward.IsZero() {
		forward = Forward
	}
	right = Up.Cross(forward).Normalize()
	if right.IsZero() {
		// Looking straight up or down.
		right = Vec3{X: 1}
	}
	up = forward.Cross(right)
	return right, up, forward
}

// Local maps an offset in pose space (X right, Y up, Z forward) to world space.
func (p Pose) Local(offset Vec3) Vec3 {
	right, up, forward := p.Axes()
	return p.Position.
		Add(right.Scale(offset.X)).
		Add(up.Scale(offset.Y)).
		Add(forward.Scale(offset.Z))
}
