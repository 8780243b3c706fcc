package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/udisondev/armory/internal/config"
	"github.com/udisondev/armory/internal/data"
	"github.com/udisondev/armory/internal/db"
	"github.com/udisondev/armory/internal/game/debuglog"
	"github.com/udisondev/armory/internal/sim"
)

const ConfigPath = "config/armory.yaml"

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutting down", "signal", sig)
		cancel()
	}()

	if err := run(ctx, cancel); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cancel context.CancelFunc) error {
	// Load config FIRST to determine log level
	cfgPath := ConfigPath
	if p := os.Getenv("ARMORY_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadArmory(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel, _ := config.ParseLogLevel(cfg.LogLevel) // validated by LoadArmory
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})))
	debuglog.Enable(logLevel == slog.LevelDebug)

	slog.Info("armory starting", "log_level", cfg.LogLevel, "tick_rate", cfg.TickRate)

	cat, err := data.LoadCatalogFile(cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}

	opts := sim.RunnerOptions{
		Weapon:  cfg.Weapon.Options(),
		GravGun: cfg.GravGun.Tuning(),
		Dt:      cfg.TickRate.Seconds(),
	}

	if cfg.Database.Enabled {
		dsn := cfg.Database.DSN()
		version, err := db.RunMigrations(ctx, dsn)
		if err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, dsn)
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		opts.Store = database.Loadouts()
		slog.Info("loadout persistence enabled",
			"host", cfg.Database.Host,
			"dbname", cfg.Database.DBName,
			"schemaVersion", version)
	}

	runner := sim.NewRunner(cat, opts)

	if cfg.ScenarioPath != "" {
		sc, err := sim.LoadScenarioFile(cfg.ScenarioPath)
		if err != nil {
			return err
		}
		if _, err := runner.Run(ctx, sc); err != nil {
			return fmt.Errorf("running scenario: %w", err)
		}
		return nil
	}

	return live(ctx, cancel, runner)
}

// live runs a session in real time, driven by console commands.
func live(ctx context.Context, cancel context.CancelFunc, runner *sim.Runner) error {
	weaponName := "carbine"
	if len(os.Args) > 1 {
		weaponName = os.Args[1]
	}

	sess, err := runner.NewSession(ctx, &sim.Scenario{Name: "live", Weapon: weaponName})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := sess.Manager().Start(gctx); err != nil && gctx.Err() == nil {
			return fmt.Errorf("tick manager: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		sess.Manager().Stop()
		return nil
	})

	// The console reader blocks on stdin, so it stays outside the group;
	// EOF or "quit" cancels the run.
	console := newConsole(os.Stdin, os.Stdout, sess)
	go func() {
		console.Run()
		cancel()
	}()

	if err := g.Wait(); err != nil {
		return err
	}

	// Queued commands are not drained after the loop stops; the report
	// reflects the last completed tick.
	slog.Info("session finished", sess.Report().LogAttrs()...)

	saveCtx := context.WithoutCancel(ctx)
	return sess.Save(saveCtx)
}
