package weapon

import (
	"fmt"

	"github.com/udisondev/armory/internal/data"
	"github.com/udisondev/armory/internal/model"
)

// Loadout maps each occupied slot to the catalog name of its part.
type Loadout map[model.AttachPoint]string

// Build creates a weapon from a catalog template with its default parts attached.
func Build(cat *data.Catalog, name string, bearer Bearer, opts Options) (*Weapon, error) {
	tmpl, err := cat.Weapon(name)
	if err != nil {
		return nil, err
	}

	w := New(tmpl.Name, tmpl.Base, bearer, opts)
	for _, partName := range tmpl.Parts {
		if err := w.AttachByName(cat, partName); err != nil {
			return nil, fmt.Errorf("building weapon %q: %w", name, err)
		}
	}
	return w, nil
}

// AttachByName builds a fresh instance of a catalog part and attaches it.
func (w *Weapon) AttachByName(cat *data.Catalog, partName string) error {
	tmpl, err := cat.Part(partName)
	if err != nil {
		return err
	}
	p, err := FromTemplate(tmpl)
	if err != nil {
		return err
	}
	w.AttachPart(p)
	return nil
}

// Loadout returns the catalog names of attached parts.
func (w *Weapon) Loadout() Loadout {
	l := make(Loadout, len(w.slots))
	for _, p := range w.Parts() {
		l[p.Point()] = p.Name()
	}
	return l
}

// ApplyLoadout attaches every part of l in slot order and detaches parts
// from slots l leaves empty. Parts are validated against the catalog
// before the weapon is touched.
func (w *Weapon) ApplyLoadout(cat *data.Catalog, l Loadout) error {
	var parts [model.AttachPointCount]*Part
	for point, name := range l {
		tmpl, err := cat.Part(name)
		if err != nil {
			return err
		}
		if tmpl.Slot != point {
			return fmt.Errorf("part %q belongs to slot %s, not %s", name, tmpl.Slot, point)
		}
		p, err := FromTemplate(tmpl)
		if err != nil {
			return err
		}
		parts[point] = p
	}

	for _, point := range model.AttachPoints() {
		if parts[point] == nil {
			w.DetachPart(point)
			continue
		}
		if cur := w.slots[point]; cur != nil && cur.Name() == parts[point].Name() {
			continue
		}
		w.AttachPart(parts[point])
	}
	return nil
}
