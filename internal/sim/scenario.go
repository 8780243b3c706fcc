package sim

import (
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/armory/internal/model"
)

// Op is a scenario step operation.
type Op string

const (
	OpAttach      Op = "attach"       // attach catalog part Step.Part
	OpDetach      Op = "detach"       // empty Step.Slot
	OpFire        Op = "fire"         // pull the trigger, hold it for Step.Duration
	OpGravPress   Op = "grav_press"   // press the grav-gun button
	OpGravRelease Op = "grav_release" // release the grav-gun button
	OpSpawnCrate  Op = "spawn_crate"  // spawn a body at Step.Position
	OpLook        Op = "look"         // turn the bearer to Step.Forward
)

// ErrIncompleteStep is returned by Session.Apply when a step lacks the
// field its op needs.
var ErrIncompleteStep = errors.New("incomplete step")

var knownOps = []Op{OpAttach, OpDetach, OpFire, OpGravPress, OpGravRelease, OpSpawnCrate, OpLook}

// Step is one timed action of a scenario.
type Step struct {
	At float64 `yaml:"at"` // seconds from start
	Op Op      `yaml:"op"`

	Part     string             `yaml:"part,omitempty"`
	Slot     *model.AttachPoint `yaml:"slot,omitempty"`
	Duration float64            `yaml:"duration,omitempty"`
	Position *model.Vec3        `yaml:"position,omitempty"`
	Forward  *model.Vec3        `yaml:"forward,omitempty"`
	Mass     float64            `yaml:"mass,omitempty"`
	Radius   float64            `yaml:"radius,omitempty"`
}

// Scenario is a deterministic timeline replayed by a Runner.
type Scenario struct {
	Name   string `yaml:"name"`
	Weapon string `yaml:"weapon"`
	// BearerID keys the persisted loadout. Zero disables persistence.
	BearerID uuid.UUID `yaml:"bearer_id"`
	Seed     uint64    `yaml:"seed"`
	// Dt is the fixed step in seconds. Zero uses the runner default.
	Dt float64 `yaml:"dt"`
	// Duration is the simulated time. Zero runs one second past the last step.
	Duration float64    `yaml:"duration"`
	Gravity  model.Vec3 `yaml:"gravity"`

	Eye     model.Vec3 `yaml:"eye"`
	Forward model.Vec3 `yaml:"forward"`

	Steps []Step `yaml:"steps"`
}

// LoadScenarioFile loads a scenario from a YAML file.
func LoadScenarioFile(path string) (*Scenario, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening scenario %s: %w", path, err)
	}
	defer f.Close()

	sc, err := LoadScenario(f)
	if err != nil {
		return nil, fmt.Errorf("loading scenario %s: %w", path, err)
	}
	return sc, nil
}

// LoadScenario decodes and validates a scenario. Steps are stably sorted by At.
func LoadScenario(r io.Reader) (*Scenario, error) {
	var sc Scenario
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&sc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty scenario")
		}
		return nil, fmt.Errorf("parsing scenario: %w", err)
	}
	if err := sc.Validate(); err != nil {
		return nil, err
	}
	return &sc, nil
}

// Validate checks the scenario and sorts its steps by time.
func (sc *Scenario) Validate() error {
	if sc.Weapon == "" {
		return errors.New("scenario weapon is required")
	}
	if sc.Dt < 0 || sc.Duration < 0 {
		return errors.New("scenario dt and duration must not be negative")
	}
	for i, s := range sc.Steps {
		if err := s.validate(); err != nil {
			return fmt.Errorf("step %d (%s at %v): %w", i, s.Op, s.At, err)
		}
	}
	slices.SortStableFunc(sc.Steps, func(a, b Step) int {
		switch {
		case a.At < b.At:
			return -1
		case a.At > b.At:
			return 1
		default:
			return 0
		}
	})
	return nil
}

func (s Step) validate() error {
	if s.At < 0 {
		return errors.New("negative time")
	}
	if !slices.Contains(knownOps, s.Op) {
		return fmt.Errorf("unknown op %q", s.Op)
	}
	switch s.Op {
	case OpAttach:
		if s.Part == "" {
			return errors.New("attach needs part")
		}
	case OpDetach:
		if s.Slot == nil {
			return errors.New("detach needs slot")
		}
	case OpFire:
		if s.Duration < 0 {
			return errors.New("negative fire duration")
		}
	case OpSpawnCrate:
		if s.Position == nil {
			return errors.New("spawn_crate needs position")
		}
	case OpLook:
		if s.Forward == nil || s.Forward.IsZero() {
			return errors.New("look needs non-zero forward")
		}
	}
	return nil
}

// end returns the simulated time the scenario runs for.
func (sc *Scenario) end() float64 {
	if sc.Duration > 0 {
		return sc.Duration
	}
	last := 0.0
	for _, s := range sc.Steps {
		last = max(last, s.At+s.Duration)
	}
	return last + 1
}
