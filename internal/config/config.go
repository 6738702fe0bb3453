package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// DefaultPath is where the game looks for its config file.
const DefaultPath = "config/driftfield.toml"

type Config struct {
	Manifest string        `toml:"manifest"` // pool manifest path, empty = embedded default
	Logging  LoggingConfig `toml:"logging"`
	Server   ServerConfig  `toml:"server"`
	SSH      SSHConfig     `toml:"ssh"`
	Web      WebConfig     `toml:"web"`
	Tuning   Tuning        `toml:"tuning"`
}

type LoggingConfig struct {
	Level     string `toml:"level"`
	Format    string `toml:"format"`     // "json" or "console"
	Output    string `toml:"output"`     // "stderr", "stdout" or a file path
	ErrorFile string `toml:"error_file"` // warn+ entries are appended here, empty disables
}

type ServerConfig struct {
	TickRate time.Duration `toml:"tick_rate"`
	Seed     int64         `toml:"seed"` // 0 = seed from the clock
}

type SSHConfig struct {
	Host        string `toml:"host"`
	Port        string `toml:"port"`
	HostKeyPath string `toml:"host_key_path"`
}

type WebConfig struct {
	Host           string `toml:"host"`
	Port           string `toml:"port"`
	SSHDisplayHost string `toml:"ssh_display_host"`
}

// Tuning holds every gameplay constant that may be changed while running.
type Tuning struct {
	Spawn    SpawnTuning    `toml:"spawn"`
	Watchdog WatchdogTuning `toml:"watchdog"`
	Asteroid AsteroidTuning `toml:"asteroid"`
	Shot     ShotTuning     `toml:"shot"`
	Drop     DropTuning     `toml:"drop"`
	Ship     ShipTuning     `toml:"ship"`
}

// SpawnRange places an entity at player + Scale*U(-Spread, Spread) on each axis.
type SpawnRange struct {
	Scale  float64 `toml:"scale"`
	Spread float64 `toml:"spread"`
}

// Extent is the largest offset the range can produce on one axis.
func (r SpawnRange) Extent() float64 {
	return r.Scale * r.Spread
}

type SpawnTuning struct {
	Initial SpawnRange `toml:"initial"` // game start
	Respawn SpawnRange `toml:"respawn"` // replacements near the player
}

type WatchdogTuning struct {
	Period      time.Duration `toml:"period"`
	MaxDistance float64       `toml:"max_distance"`
}

type AsteroidTuning struct {
	Radius          float64 `toml:"radius"`
	Pieces          int     `toml:"pieces"`
	PieceMass       float64 `toml:"piece_mass"`
	FadeRate        float64 `toml:"fade_rate"` // alpha per second
	ExplosionRadius float64 `toml:"explosion_radius"`
	ExplosionPower  float64 `toml:"explosion_power"`
	Spin            float64 `toml:"spin"` // max angular speed, rad/s
}

type ShotTuning struct {
	Speed    float64       `toml:"speed"`
	Lifetime time.Duration `toml:"lifetime"`
	Radius   float64       `toml:"radius"`
}

type DropTuning struct {
	Lifetime time.Duration `toml:"lifetime"`
	Radius   float64       `toml:"radius"`
	Fuel     float64       `toml:"fuel"`
}

type ShipTuning struct {
	NormalSpeed   float64 `toml:"normal_speed"`
	BoostSpeed    float64 `toml:"boost_speed"`
	NormalRate    float64 `toml:"normal_rate"` // lerp rate towards NormalSpeed, 1/s
	BoostRate     float64 `toml:"boost_rate"`  // lerp rate towards BoostSpeed, 1/s
	RotationSpeed float64 `toml:"rotation_speed"`
	MaxFuel       float64 `toml:"max_fuel"`
	FuelBurn      float64 `toml:"fuel_burn"` // per second
	Radius        float64 `toml:"radius"`
	NoseOffset    float64 `toml:"nose_offset"`
}

// Load reads a TOML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := Defaults()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Tuning.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOrDefault is Load, except a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Defaults(), nil
	}
	return cfg, err
}

func Defaults() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:     "info",
			Format:    "console",
			Output:    "stderr",
			ErrorFile: "Logs/log.txt",
		},
		Server: ServerConfig{
			TickRate: time.Second / 60,
		},
		SSH: SSHConfig{
			Host:        "::",
			Port:        "2222",
			HostKeyPath: "/app/keys/host_key",
		},
		Web: WebConfig{
			Host:           "0.0.0.0",
			Port:           "8080",
			SSHDisplayHost: "your-server.com",
		},
		Tuning: DefaultTuning(),
	}
}

func DefaultTuning() Tuning {
	return Tuning{
		Spawn: SpawnTuning{
			Initial: SpawnRange{Scale: 30, Spread: 10},
			Respawn: SpawnRange{Scale: 100, Spread: 2},
		},
		Watchdog: WatchdogTuning{
			Period:      500 * time.Millisecond,
			MaxDistance: 500,
		},
		Asteroid: AsteroidTuning{
			Radius:          6,
			Pieces:          8,
			PieceMass:       1,
			FadeRate:        0.5,
			ExplosionRadius: 20,
			ExplosionPower:  1500,
			Spin:            0.2,
		},
		Shot: ShotTuning{
			Speed:    100,
			Lifetime: 5 * time.Second,
			Radius:   0.5,
		},
		Drop: DropTuning{
			Lifetime: 30 * time.Second,
			Radius:   3,
			Fuel:     10,
		},
		Ship: ShipTuning{
			NormalSpeed:   25,
			BoostSpeed:    45,
			NormalRate:    10,
			BoostRate:     3,
			RotationSpeed: 2,
			MaxFuel:       100,
			FuelBurn:      2,
			Radius:        2,
			NoseOffset:    3,
		},
	}
}

// Validate rejects tunings the simulation cannot run with. Sizes, speeds and
// durations must be positive; counts and strengths must not be negative.
func (t Tuning) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"watchdog.period", t.Watchdog.Period.Seconds()},
		{"watchdog.max_distance", t.Watchdog.MaxDistance},
		{"asteroid.radius", t.Asteroid.Radius},
		{"asteroid.piece_mass", t.Asteroid.PieceMass},
		{"asteroid.fade_rate", t.Asteroid.FadeRate},
		{"shot.speed", t.Shot.Speed},
		{"shot.lifetime", t.Shot.Lifetime.Seconds()},
		{"shot.radius", t.Shot.Radius},
		{"drop.lifetime", t.Drop.Lifetime.Seconds()},
		{"drop.radius", t.Drop.Radius},
		{"ship.normal_speed", t.Ship.NormalSpeed},
		{"ship.boost_speed", t.Ship.BoostSpeed},
		{"ship.max_fuel", t.Ship.MaxFuel},
		{"ship.radius", t.Ship.Radius},
	}
	for _, f := range positive {
		if !(f.value > 0) {
			return fmt.Errorf("tuning.%s: must be positive, got %v", f.name, f.value)
		}
	}

	nonNegative := []struct {
		name  string
		value float64
	}{
		{"spawn.initial.scale", t.Spawn.Initial.Scale},
		{"spawn.initial.spread", t.Spawn.Initial.Spread},
		{"spawn.respawn.scale", t.Spawn.Respawn.Scale},
		{"spawn.respawn.spread", t.Spawn.Respawn.Spread},
		{"asteroid.pieces", float64(t.Asteroid.Pieces)},
		{"asteroid.explosion_radius", t.Asteroid.ExplosionRadius},
		{"asteroid.explosion_power", t.Asteroid.ExplosionPower},
		{"asteroid.spin", t.Asteroid.Spin},
		{"drop.fuel", t.Drop.Fuel},
		{"ship.normal_rate", t.Ship.NormalRate},
		{"ship.boost_rate", t.Ship.BoostRate},
		{"ship.rotation_speed", t.Ship.RotationSpeed},
		{"ship.fuel_burn", t.Ship.FuelBurn},
	}
	for _, f := range nonNegative {
		if !(f.value >= 0) {
			return fmt.Errorf("tuning.%s: must not be negative, got %v", f.name, f.value)
		}
	}
	return nil
}
