// partcalc prints the stats of a catalog weapon with a set of parts attached.
//
// Usage:
//
//	go run ./cmd/partcalc carbine
//	go run ./cmd/partcalc -catalog parts.yaml marksman red_dot drum_grip
//	go run ./cmd/partcalc -list
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/gookit/color"

	"github.com/udisondev/armory/internal/data"
	"github.com/udisondev/armory/internal/game/weapon"
	"github.com/udisondev/armory/internal/model"
)

type noBearer struct{}

func (noBearer) Eye() model.Pose { return model.NewPose(model.Vec3{}, model.Forward) }

func main() {
	catalogPath := flag.String("catalog", "", "catalog YAML (default: embedded)")
	list := flag.Bool("list", false, "list weapons and parts")
	flag.Parse()

	cat, err := data.LoadCatalogFile(*catalogPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	if *list || flag.NArg() == 0 {
		printCatalog(os.Stdout, cat)
		return
	}

	if err := calc(os.Stdout, cat, flag.Arg(0), flag.Args()[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// calc builds the weapon with its default parts, attaches extra parts in
// order and prints base vs resulting stats.
func calc(w io.Writer, cat *data.Catalog, weaponName string, parts []string) error {
	wpn, err := weapon.Build(cat, weaponName, noBearer{}, weapon.Options{})
	if err != nil {
		return err
	}
	for _, name := range parts {
		if err := wpn.AttachByName(cat, name); err != nil {
			return err
		}
	}

	color.Fprintf(w, "<bold>%s</> %v\n", wpn.Name(), wpn.Parts())
	for _, r := range statRows(wpn.BaseData(), wpn.CurrentData()) {
		color.Fprintf(w, "  %-12s %10.3f -> %s\n", r.name, r.base, r.colored())
	}
	interval := wpn.CurrentData().ShotInterval()
	color.Fprintf(w, "  %-12s %10s    %.3fs\n", "interval", "", interval)
	return nil
}

type statRow struct {
	name        string
	base, value float64
	// lowerBetter flips the colour of a change.
	lowerBetter bool
}

func statRows(base, cur model.WeaponData) []statRow {
	return []statRow{
		{"spread", base.Spread, cur.Spread, true},
		{"damage", base.Damage, cur.Damage, false},
		{"fire_rate", base.FireRate, cur.FireRate, false},
		{"recoil", base.Recoil, cur.Recoil, true},
		{"reload_time", base.ReloadTime, cur.ReloadTime, true},
		{"clip_size", float64(base.ClipSize), float64(cur.ClipSize), false},
	}
}

// colored renders the value green when it improved, red when it got worse.
func (r statRow) colored() string {
	s := fmt.Sprintf("%.3f", r.value)
	switch {
	case r.value == r.base:
		return s
	case (r.value < r.base) == r.lowerBetter:
		return color.Green.Sprint(s)
	default:
		return color.Red.Sprint(s)
	}
}

func printCatalog(w io.Writer, cat *data.Catalog) {
	color.Fprintf(w, "<bold>weapons:</> %s\n", strings.Join(cat.WeaponNames(), ", "))
	for _, point := range model.AttachPoints() {
		color.Fprintf(w, "<bold>%s:</> %s\n", point, strings.Join(cat.PartNames(&point), ", "))
	}
}
