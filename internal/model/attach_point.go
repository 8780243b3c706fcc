package model

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// AttachPoint identifies a weapon mounting slot.
// Declaration order is the order parts are folded into weapon stats.
type AttachPoint int8

const (
	AttachMechanism AttachPoint = iota // owns the projectile template
	AttachBarrel
	AttachScope
	AttachGrip

	AttachPointCount
)

// AttachPoints returns all slots in declaration order.
func AttachPoints() []AttachPoint {
	return []AttachPoint{AttachMechanism, AttachBarrel, AttachScope, AttachGrip}
}

// Valid reports whether p is a declared slot.
func (p AttachPoint) Valid() bool {
	return p >= 0 && p < AttachPointCount
}

// String returns human-readable slot name.
func (p AttachPoint) String() string {
	switch p {
	case AttachMechanism:
		return "mechanism"
	case AttachBarrel:
		return "barrel"
	case AttachScope:
		return "scope"
	case AttachGrip:
		return "grip"
	default:
		return "unknown"
	}
}

// ParseAttachPoint parses a slot name (case-insensitive).
func ParseAttachPoint(s string) (AttachPoint, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for _, p := range AttachPoints() {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown attach point %q", s)
}

// UnmarshalYAML decodes a slot from its name.
func (p *AttachPoint) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("decoding attach point: %w", err)
	}
	parsed, err := ParseAttachPoint(s)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// MarshalYAML encodes a slot as its name.
func (p AttachPoint) MarshalYAML() (any, error) {
	return p.String(), nil
}
