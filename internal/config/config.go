package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/udisondev/armory/internal/game/gravgun"
	"github.com/udisondev/armory/internal/game/projectile"
	"github.com/udisondev/armory/internal/game/weapon"
)

// EnvPrefix prefixes every environment override, e.g. ARMORY_LOG_LEVEL.
const EnvPrefix = "ARMORY_"

// Armory holds all configuration for the simulation runtime.
type Armory struct {
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL"` // debug, info, warn, error
	TickRate time.Duration `yaml:"tick_rate" env:"TICK_RATE"` // fixed simulation step

	// Data files. Empty CatalogPath means the embedded catalog.
	CatalogPath  string `yaml:"catalog_path" env:"CATALOG_PATH"`
	ScenarioPath string `yaml:"scenario_path" env:"SCENARIO_PATH"`

	// Loadout persistence
	Database DatabaseConfig `yaml:"database" envPrefix:"DB_"`

	Weapon  Weapon  `yaml:"weapon" envPrefix:"WEAPON_"`
	GravGun GravGun `yaml:"grav_gun" envPrefix:"GRAVGUN_"`
}

// DatabaseConfig holds PostgreSQL connection parameters.
type DatabaseConfig struct {
	Enabled  bool   `yaml:"enabled" env:"ENABLED"`
	Host     string `yaml:"host" env:"HOST"`
	Port     int    `yaml:"port" env:"PORT"`
	User     string `yaml:"user" env:"USER"`
	Password string `yaml:"password" env:"PASSWORD"`
	DBName   string `yaml:"dbname" env:"NAME"`
	SSLMode  string `yaml:"sslmode" env:"SSLMODE"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// Weapon holds weapon-wide tuning.
type Weapon struct {
	SpreadFactor float64 `yaml:"spread_factor" env:"SPREAD_FACTOR"`
	PoolGrow     bool    `yaml:"pool_grow" env:"POOL_GROW"`
	PoolMax      int     `yaml:"pool_max" env:"POOL_MAX"` // 0 = unbounded
}

// Options converts tuning into weapon options. Rand and Raycaster are
// left for the caller.
func (w Weapon) Options() weapon.Options {
	return weapon.Options{
		SpreadFactor: w.SpreadFactor,
		Pool:         projectile.Options{Grow: w.PoolGrow, Max: w.PoolMax},
	}
}

// GravGun holds grav-gun tuning. See gravgun.Tuning for field meaning.
type GravGun struct {
	SnapDistance     float64 `yaml:"snap_distance" env:"SNAP_DISTANCE"`
	MaxRange         float64 `yaml:"max_range" env:"MAX_RANGE"`
	PullStrength     float64 `yaml:"pull_strength" env:"PULL_STRENGTH"`
	LookSensitivity  float64 `yaml:"look_sensitivity" env:"LOOK_SENSITIVITY"`
	HoldLerpDuration float64 `yaml:"hold_lerp_duration" env:"HOLD_LERP_DURATION"`
	ThrowThreshold   float64 `yaml:"throw_threshold" env:"THROW_THRESHOLD"`
	ThrowForce       float64 `yaml:"throw_force" env:"THROW_FORCE"`
	HoldOffset       float64 `yaml:"hold_offset" env:"HOLD_OFFSET"`
}

// Tuning converts config into grav-gun tuning.
func (g GravGun) Tuning() gravgun.Tuning {
	return gravgun.Tuning(g)
}

// DefaultArmory returns Armory config with sensible defaults.
func DefaultArmory() Armory {
	return Armory{
		LogLevel: "info",
		TickRate: 50 * time.Millisecond,
		Database: DatabaseConfig{
			Host:     "127.0.0.1",
			Port:     5432,
			User:     "armory",
			Password: "armory",
			DBName:   "armory",
			SSLMode:  "disable",
		},
		Weapon: Weapon{
			SpreadFactor: weapon.DefaultSpreadFactor,
		},
		GravGun: GravGun(gravgun.DefaultTuning()),
	}
}

// LoadArmory loads config from a YAML file and applies ARMORY_* environment
// overrides. If the file doesn't exist, defaults are used.
func LoadArmory(path string) (Armory, error) {
	cfg := DefaultArmory()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// defaults
	default:
		return cfg, fmt.Errorf("reading config %s: %w", path, err)
	}

	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return cfg, fmt.Errorf("parsing env overrides: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks values that would make the runtime misbehave.
func (c Armory) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick_rate must be positive, got %s", c.TickRate)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Weapon.SpreadFactor < 0 {
		return fmt.Errorf("weapon.spread_factor must not be negative, got %v", c.Weapon.SpreadFactor)
	}
	if c.Weapon.PoolMax < 0 {
		return fmt.Errorf("weapon.pool_max must not be negative, got %d", c.Weapon.PoolMax)
	}
	if c.GravGun.SnapDistance <= 0 || c.GravGun.MaxRange <= 0 {
		return fmt.Errorf("grav_gun.snap_distance and grav_gun.max_range must be positive")
	}
	return nil
}

// ParseLogLevel maps a config level name to slog.Level.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
