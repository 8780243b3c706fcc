package data

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/udisondev/armory/internal/game/projectile"
	"github.com/udisondev/armory/internal/model"
)

//go:embed catalog.yaml
var defaultCatalogYAML []byte

var (
	// ErrUnknownPart is returned when a part name is not in the catalog.
	ErrUnknownPart = errors.New("unknown part")
	// ErrUnknownWeapon is returned when a weapon name is not in the catalog.
	ErrUnknownWeapon = errors.New("unknown weapon")
)

// PartTemplate describes one part type. Modifiers is shared read-only by
// every part instance built from the template.
type PartTemplate struct {
	Name      string               `yaml:"name"`
	Slot      model.AttachPoint    `yaml:"slot"`
	Modifiers model.WeaponPartData `yaml:"modifiers"`

	// Mechanism only.
	Projectile *projectile.Spec `yaml:"projectile,omitempty"`
	// Barrel only: muzzle offset in bearer eye space (X right, Y up, Z forward).
	Muzzle *model.Vec3 `yaml:"muzzle,omitempty"`
	// Scope only.
	Zoom float64 `yaml:"zoom,omitempty"`
}

// WeaponTemplate describes a weapon frame and the parts it ships with.
type WeaponTemplate struct {
	Name  string           `yaml:"name"`
	Base  model.WeaponData `yaml:"base"`
	Parts []string         `yaml:"parts"`
}

type catalogFile struct {
	Weapons []WeaponTemplate `yaml:"weapons"`
	Parts   []PartTemplate   `yaml:"parts"`
}

// Catalog is a validated, read-only set of weapon and part templates.
type Catalog struct {
	weapons map[string]*WeaponTemplate
	parts   map[string]*PartTemplate
}

// DefaultCatalog returns the catalog embedded in the binary.
func DefaultCatalog() (*Catalog, error) {
	return LoadCatalog(bytes.NewReader(defaultCatalogYAML))
}

// LoadCatalogFile loads a catalog from a YAML file.
// An empty path loads the embedded default catalog.
func LoadCatalogFile(path string) (*Catalog, error) {
	if path == "" {
		return DefaultCatalog()
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %s: %w", path, err)
	}
	defer f.Close()

	c, err := LoadCatalog(f)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// LoadCatalog decodes and validates a catalog document.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	var file catalogFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	c := &Catalog{
		weapons: make(map[string]*WeaponTemplate, len(file.Weapons)),
		parts:   make(map[string]*PartTemplate, len(file.Parts)),
	}

	for i := range file.Parts {
		p := &file.Parts[i]
		if err := validatePart(p); err != nil {
			return nil, err
		}
		if _, dup := c.parts[p.Name]; dup {
			return nil, fmt.Errorf("duplicate part %q", p.Name)
		}
		p.Modifiers.Name = p.Name
		c.parts[p.Name] = p
	}

	for i := range file.Weapons {
		w := &file.Weapons[i]
		if err := c.validateWeapon(w); err != nil {
			return nil, err
		}
		c.weapons[w.Name] = w
	}

	slog.Info("loaded weapon catalog", "weapons", len(c.weapons), "parts", len(c.parts))
	return c, nil
}

func validatePart(p *PartTemplate) error {
	if p.Name == "" {
		return errors.New("part without name")
	}
	if !p.Slot.Valid() {
		return fmt.Errorf("part %q: invalid slot %d", p.Name, p.Slot)
	}
	if p.Slot == model.AttachMechanism {
		if p.Projectile == nil {
			return fmt.Errorf("part %q: mechanism without projectile", p.Name)
		}
		if p.Projectile.Speed <= 0 || p.Projectile.Lifetime <= 0 {
			return fmt.Errorf("part %q: projectile speed and lifetime must be positive", p.Name)
		}
	} else if p.Projectile != nil {
		return fmt.Errorf("part %q: only mechanism parts carry a projectile", p.Name)
	}
	if p.Muzzle != nil && p.Slot != model.AttachBarrel {
		return fmt.Errorf("part %q: only barrel parts carry a muzzle", p.Name)
	}
	return nil
}

func (c *Catalog) validateWeapon(w *WeaponTemplate) error {
	if w.Name == "" {
		return errors.New("weapon without name")
	}
	if _, dup := c.weapons[w.Name]; dup {
		return fmt.Errorf("duplicate weapon %q", w.Name)
	}
	if w.Base.FireRate <= 0 {
		return fmt.Errorf("weapon %q: fire_rate must be positive", w.Name)
	}

	var used [model.AttachPointCount]string
	for _, name := range w.Parts {
		p, ok := c.parts[name]
		if !ok {
			return fmt.Errorf("weapon %q: %w %q", w.Name, ErrUnknownPart, name)
		}
		if prev := used[p.Slot]; prev != "" {
			return fmt.Errorf("weapon %q: parts %q and %q share slot %s", w.Name, prev, name, p.Slot)
		}
		used[p.Slot] = name
	}
	return nil
}

// Part returns a part template by name.
func (c *Catalog) Part(name string) (*PartTemplate, error) {
	p, ok := c.parts[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownPart, name)
	}
	return p, nil
}

// Weapon returns a weapon template by name.
func (c *Catalog) Weapon(name string) (*WeaponTemplate, error) {
	w, ok := c.weapons[name]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrUnknownWeapon, name)
	}
	return w, nil
}

// PartNames returns sorted part names, optionally filtered by slot.
func (c *Catalog) PartNames(slot *model.AttachPoint) []string {
	names := make([]string, 0, len(c.parts))
	for name, p := range c.parts {
		if slot != nil && p.Slot != *slot {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// WeaponNames returns sorted weapon names.
func (c *Catalog) WeaponNames() []string {
	names := make([]string, 0, len(c.weapons))
	for name := range c.weapons {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
