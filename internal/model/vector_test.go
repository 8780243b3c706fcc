package model

import (
	"math"
	"testing"
)

const eps = 1e-9

func vecNear(a, b Vec3) bool {
	return math.Abs(a.X-b.X) < eps && math.Abs(a.Y-b.Y) < eps && math.Abs(a.Z-b.Z) < eps
}

func TestVec3_Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{name: "zero stays zero", in: Vec3{}, want: Vec3{}},
		{name: "axis", in: V3(0, 0, 5), want: V3(0, 0, 1)},
		{name: "diagonal", in: V3(3, 4, 0), want: V3(0.6, 0.8, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.in.Normalize(); !vecNear(got, tt.want) {
				t.Errorf("Normalize(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestVec3_Lerp(t *testing.T) {
	a, b := V3(0, 0, 0), V3(10, 0, -10)

	tests := []struct {
		t    float64
		want Vec3
	}{
		{t: -1, want: a},
		{t: 0, want: a},
		{t: 0.5, want: V3(5, 0, -5)},
		{t: 1, want: b},
		{t: 3, want: b},
	}

	for _, tt := range tests {
		if got := a.Lerp(b, tt.t); !vecNear(got, tt.want) {
			t.Errorf("Lerp(t=%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}

func TestVec3_DistanceTo(t *testing.T) {
	if got := V3(1, 2, 3).DistanceTo(V3(4, 6, 3)); math.Abs(got-5) > eps {
		t.Errorf("DistanceTo() = %v, want 5", got)
	}
}

func TestPose_Local(t *testing.T) {
	// Facing +Z: right is +X, up is +Y.
	p := NewPose(V3(1, 1, 1), V3(0, 0, 2))

	if got := p.Local(V3(0, 0, 2)); !vecNear(got, V3(1, 1, 3)) {
		t.Errorf("Local(forward 2) = %v, want (1,1,3)", got)
	}
	if got := p.Local(V3(1, 0, 0)); !vecNear(got, V3(2, 1, 1)) {
		t.Errorf("Local(right 1) = %v, want (2,1,1)", got)
	}
	if got := p.Local(V3(0, 1, 0)); !vecNear(got, V3(1, 2, 1)) {
		t.Errorf("Local(up 1) = %v, want (1,2,1)", got)
	}
}

func TestPose_AxesLookingStraightUp(t *testing.T) {
	p := NewPose(Vec3{}, Up)
	right, up, forward := p.Axes()

	if right.IsZero() || up.IsZero() || forward.IsZero() {
		t.Fatalf("degenerate axes: right=%v up=%v forward=%v", right, up, forward)
	}
	if math.Abs(right.Dot(forward)) > eps {
		t.Errorf("right not orthogonal to forward: %v", right.Dot(forward))
	}
}

func TestNewPose_ZeroForward(t *testing.T) {
	p := NewPose(V3(1, 2, 3), Vec3{})
	if p.Forward != Forward {
		t.Errorf("Forward = %v, want %v", p.Forward, Forward)
	}
}

func TestRay_At(t *testing.T) {
	r := NewRay(V3(0, 1, 0), V3(0, 0, 10))
	if got := r.At(3); !vecNear(got, V3(0, 1, 3)) {
		t.Errorf("At(3) = %v, want (0,1,3)", got)
	}
}
