package sim

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/udisondev/armory/internal/data"
	"github.com/udisondev/armory/internal/db"
	"github.com/udisondev/armory/internal/game/gravgun"
	"github.com/udisondev/armory/internal/game/weapon"
	"github.com/udisondev/armory/internal/model"
)

// DefaultDt is the scenario step used when neither the scenario nor the
// runner sets one.
const DefaultDt = 0.05

// LoadoutStore persists weapon loadouts between runs (db.LoadoutRepository).
type LoadoutStore interface {
	Load(ctx context.Context, bearerID uuid.UUID, weapon string) (db.Loadout, error)
	Save(ctx context.Context, l db.Loadout) error
}

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Weapon  weapon.Options
	GravGun gravgun.Tuning
	// Dt is used when the scenario has none. Zero means DefaultDt.
	Dt float64
	// Store restores the loadout before a run and saves it after. Optional.
	Store LoadoutStore
}

// Runner builds sessions and replays scenarios against them.
type Runner struct {
	cat  *data.Catalog
	opts RunnerOptions
}

// NewRunner creates a runner over the given catalog.
func NewRunner(cat *data.Catalog, opts RunnerOptions) *Runner {
	if opts.Dt <= 0 {
		opts.Dt = DefaultDt
	}
	return &Runner{cat: cat, opts: opts}
}

// Report summarizes a scenario run.
type Report struct {
	Scenario string
	Weapon   string
	Ticks    int
	Elapsed  float64 // simulated seconds

	Shots   weapon.FireStats
	Hits    uint64 // of the current Mechanism's pool
	Expired uint64
	Damage  float64 // dealt to spawned crates

	Throws    uint64
	LastThrow model.Vec3
	GravState gravgun.State

	Stats   model.WeaponData // weapon stats at the end of the run
	Loadout weapon.Loadout
	Crates  int // bodies still alive
	// Disabled is the reason the weapon was switched off, if it was.
	Disabled error
}

// LogAttrs returns report fields as slog key-value pairs.
func (r Report) LogAttrs() []any {
	attrs := []any{
		"scenario", r.Scenario,
		"weapon", r.Weapon,
		"ticks", r.Ticks,
		"elapsed", r.Elapsed,
		"fired", r.Shots.Fired,
		"skipped", r.Shots.Skipped(),
		"hits", r.Hits,
		"expired", r.Expired,
		"damage", r.Damage,
		"throws", r.Throws,
		"gravState", r.GravState,
		"crates", r.Crates,
	}
	if r.Disabled != nil {
		attrs = append(attrs, "disabled", r.Disabled)
	}
	return attrs
}

// Run replays sc in simulated time and returns its report.
//
// Workflow:
//  1. Build a session (restoring the persisted loadout if configured)
//  2. Each tick: apply due steps, then tick the session
//  3. Persist the final loadout and collect the report
func (r *Runner) Run(ctx context.Context, sc *Scenario) (Report, error) {
	s, err := r.NewSession(ctx, sc)
	if err != nil {
		return Report{}, err
	}

	start := time.Now()
	end := sc.end()
	next := 0
	for s.now < end {
		if err := ctx.Err(); err != nil {
			return Report{}, fmt.Errorf("scenario %q interrupted at %.3fs: %w", sc.Name, s.now, err)
		}
		// Steps due within this tick. Half a step absorbs float drift of now.
		for next < len(sc.Steps) && sc.Steps[next].At <= s.now+s.dt/2 {
			if err := s.Apply(sc.Steps[next]); err != nil {
				return Report{}, fmt.Errorf("scenario %q step %d: %w", sc.Name, next, err)
			}
			next++
		}
		s.Tick()
	}

	if err := s.Save(ctx); err != nil {
		return Report{}, err
	}

	rep := s.Report()
	slog.Info("scenario finished", append(rep.LogAttrs(), "wallTime", time.Since(start))...)
	return rep, nil
}
