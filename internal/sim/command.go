package sim

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/udisondev/armory/internal/model"
)

// ErrEmptyCommand is returned by ParseCommand for blank lines.
var ErrEmptyCommand = errors.New("empty command")

// ParseCommand parses a console line into a step:
//
//	fire [seconds]
//	press | release            grav-gun button
//	attach <part>
//	detach <slot>
//	look <x> <y> <z>
//	spawn <x> <y> <z> [mass]
func ParseCommand(line string) (Step, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Step{}, ErrEmptyCommand
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	switch name {
	case "fire":
		st := Step{Op: OpFire}
		if len(args) > 0 {
			d, err := strconv.ParseFloat(args[0], 64)
			if err != nil || d < 0 {
				return Step{}, fmt.Errorf("fire: bad duration %q", args[0])
			}
			st.Duration = d
		}
		return st, nil

	case "press":
		return Step{Op: OpGravPress}, nil

	case "release":
		return Step{Op: OpGravRelease}, nil

	case "attach":
		if len(args) != 1 {
			return Step{}, errors.New("usage: attach <part>")
		}
		return Step{Op: OpAttach, Part: args[0]}, nil

	case "detach":
		if len(args) != 1 {
			return Step{}, errors.New("usage: detach <slot>")
		}
		slot, err := model.ParseAttachPoint(args[0])
		if err != nil {
			return Step{}, err
		}
		return Step{Op: OpDetach, Slot: &slot}, nil

	case "look":
		v, _, err := parseVec(args, 0)
		if err != nil {
			return Step{}, fmt.Errorf("look: %w", err)
		}
		if v.IsZero() {
			return Step{}, errors.New("look: zero direction")
		}
		return Step{Op: OpLook, Forward: &v}, nil

	case "spawn":
		v, rest, err := parseVec(args, 1)
		if err != nil {
			return Step{}, fmt.Errorf("spawn: %w", err)
		}
		st := Step{Op: OpSpawnCrate, Position: &v}
		if len(rest) == 1 {
			m, err := strconv.ParseFloat(rest[0], 64)
			if err != nil {
				return Step{}, fmt.Errorf("spawn: bad mass %q", rest[0])
			}
			st.Mass = m
		}
		return st, nil

	default:
		return Step{}, fmt.Errorf("unknown command %q", name)
	}
}

// parseVec reads three floats and returns up to extra trailing args.
func parseVec(args []string, extra int) (model.Vec3, []string, error) {
	if len(args) < 3 || len(args) > 3+extra {
		return model.Vec3{}, nil, errors.New("need <x> <y> <z>")
	}
	var xyz [3]float64
	for i := range xyz {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return model.Vec3{}, nil, fmt.Errorf("bad coordinate %q", args[i])
		}
		xyz[i] = f
	}
	return model.V3(xyz[0], xyz[1], xyz[2]), args[3:], nil
}
