package modifier

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind defines how a modifier transforms a stat value.
type Kind int8

const (
	AdditiveAbsolute Kind = iota // x + amount
	SetAbsolute                  // amount
	AdditivePercent              // x + x*amount (float), x + x*amount/100 (int)
	SetPercentage                // x*amount (float), x*amount/100 (int)
)

// String returns the catalog name of the kind.
func (k Kind) String() string {
	switch k {
	case AdditiveAbsolute:
		return "add"
	case SetAbsolute:
		return "set"
	case AdditivePercent:
		return "add_percent"
	case SetPercentage:
		return "set_percent"
	default:
		return fmt.Sprintf("kind(%d)", int8(k))
	}
}

// ParseKind parses a catalog kind name.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "add", "additive_absolute":
		return AdditiveAbsolute, nil
	case "set", "set_absolute":
		return SetAbsolute, nil
	case "add_percent", "additive_percent":
		return AdditivePercent, nil
	case "set_percent", "set_percentage":
		return SetPercentage, nil
	}
	return 0, fmt.Errorf("unknown modifier kind %q", s)
}

// UnmarshalYAML decodes a kind from its catalog name.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("decoding modifier kind: %w", err)
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML encodes a kind as its catalog name.
func (k Kind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// Modifier is a stateless rule that transforms one scalar stat.
// The zero value is the identity.
type Modifier struct {
	Kind   Kind    `yaml:"type"`
	Amount float64 `yaml:"amount"`
}

// Add returns an AdditiveAbsolute modifier.
func Add(amount float64) Modifier { return Modifier{Kind: AdditiveAbsolute, Amount: amount} }

// Set returns a SetAbsolute modifier.
func Set(amount float64) Modifier { return Modifier{Kind: SetAbsolute, Amount: amount} }

// AddPercent returns an AdditivePercent modifier.
func AddPercent(amount float64) Modifier { return Modifier{Kind: AdditivePercent, Amount: amount} }

// SetPercent returns a SetPercentage modifier.
func SetPercent(amount float64) Modifier { return Modifier{Kind: SetPercentage, Amount: amount} }

// IsIdentity reports whether the modifier leaves every input unchanged.
func (m Modifier) IsIdentity() bool {
	return m.Kind == AdditiveAbsolute && m.Amount == 0
}

// ApplyFloat applies the modifier to a float stat.
// Percentages are fractions here: AddPercent(0.5) adds half of x.
func (m Modifier) ApplyFloat(x float64) float64 {
	switch m.Kind {
	case SetAbsolute:
		return m.Amount
	case SetPercentage:
		return x * m.Amount
	case AdditiveAbsolute:
		return x + m.Amount
	case AdditivePercent:
		return x + x*m.Amount
	default:
		return x
	}
}

// ApplyInt applies the modifier to an integer stat.
// Unlike ApplyFloat, percentages are whole numbers here: AddPercent(50)
// adds half of x. Results are truncated toward zero.
func (m Modifier) ApplyInt(x int32) int32 {
	switch m.Kind {
	case SetAbsolute:
		return int32(m.Amount)
	case SetPercentage:
		return int32(float64(x) * (m.Amount / 100))
	case AdditiveAbsolute:
		return x + int32(m.Amount)
	case AdditivePercent:
		return x + int32(float64(x)*(m.Amount/100))
	default:
		return x
	}
}

// String returns a compact description, e.g. "add_percent(0.5)".
func (m Modifier) String() string {
	return fmt.Sprintf("%s(%g)", m.Kind, m.Amount)
}
