package gravgun

// State is a grav-gun capture state.
type State int8

const (
	// Idle - nothing targeted, waiting for a press
	Idle State = iota
	// TryDrawObject - searching for a body under the crosshair and pulling it in
	TryDrawObject
	// GrabAndHold - body captured and held in front of the bearer
	GrabAndHold
)

// String returns human-readable state name.
func (s State) String() string {
	switch s {
	case Idle:
		return "IDLE"
	case TryDrawObject:
		return "TRY_DRAW_OBJECT"
	case GrabAndHold:
		return "GRAB_AND_HOLD"
	default:
		return "UNKNOWN"
	}
}

// Tuning holds grav-gun constants. Distances are world units, times seconds.
type Tuning struct {
	// SnapDistance is the eye-to-target distance at which a pulled body is grabbed.
	SnapDistance float64 `yaml:"snap_distance"`
	// MaxRange limits the acquisition raycast.
	MaxRange float64 `yaml:"max_range"`
	// PullStrength is the pull force applied towards the bearer.
	PullStrength float64 `yaml:"pull_strength"`
	// LookSensitivity is the minimum dot(eye forward, direction to target)
	// for keeping a target while drawing it in.
	LookSensitivity float64 `yaml:"look_sensitivity"`
	// HoldLerpDuration is how long the grabbed body takes to reach the hold point.
	HoldLerpDuration float64 `yaml:"hold_lerp_duration"`
	// ThrowThreshold is the minimum time held after the first release for a throw.
	ThrowThreshold float64 `yaml:"throw_threshold"`
	// ThrowForce scales the throw impulse (per unit of mass).
	ThrowForce float64 `yaml:"throw_force"`
	// HoldOffset is the hold point distance in front of the eye.
	HoldOffset float64 `yaml:"hold_offset"`
}

// DefaultTuning returns Tuning with sensible defaults.
func DefaultTuning() Tuning {
	return Tuning{
		SnapDistance:     4.0,
		MaxRange:         50,
		PullStrength:     30,
		LookSensitivity:  0.9,
		HoldLerpDuration: 0.2,
		ThrowThreshold:   0.25,
		ThrowForce:       20,
		HoldOffset:       1.5,
	}
}
