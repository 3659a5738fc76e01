package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

const (
	envConfigPath = "KONFIGURATS_CONFIG"
	envJWTSecret  = "KONFIGURATS_JWT_SECRET"
)

type Config struct {
	Server     ServerConfig     `toml:"server"`
	Simulation SimulationConfig `toml:"simulation"`
	Rooms      RoomsConfig      `toml:"rooms"`
	Database   DatabaseConfig   `toml:"database"`
	Auth       AuthConfig       `toml:"auth"`
	Logging    LoggingConfig    `toml:"logging"`
}

type ServerConfig struct {
	Addr              string `toml:"addr"`
	MaxConns          int    `toml:"max_conns"`
	MaxConnsPerIP     int    `toml:"max_conns_per_ip"`
	MaxMessagesPerSec int    `toml:"max_messages_per_sec"`
	PublicURL         string `toml:"public_url"` // base of the join links rendered by /qr
}

// SimulationConfig tunes every room's tick loop
type SimulationConfig struct {
	TickPeriod       time.Duration `toml:"tick_period"`
	Substeps         int           `toml:"substeps"`
	RotationInterval time.Duration `toml:"rotation_interval"` // 0 disables map rotation
	MaxBodies        int           `toml:"max_bodies"`
	InboxSize        int           `toml:"inbox_size"`
}

type RoomsConfig struct {
	MaxRooms          int `toml:"max_rooms"`
	DefaultMaxPlayers int `toml:"default_max_players"`
}

type DatabaseConfig struct {
	Path          string        `toml:"path"` // empty keeps scores in memory only
	FlushInterval time.Duration `toml:"flush_interval"`
}

type AuthConfig struct {
	JWTSecret  string        `toml:"jwt_secret"`
	TokenTTL   time.Duration `toml:"token_ttl"`
	BcryptCost int           `toml:"bcrypt_cost"`
}

type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "json" or "console"
}

// LoadConfig reads .env, then the TOML file over the defaults, then the
// environment overrides. A missing file at the default path is not an error.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	explicit := path != ""
	if env := os.Getenv(envConfigPath); env != "" {
		path, explicit = env, true
	}
	if path == "" {
		path = "config.toml"
	}

	cfg := defaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if secret := os.Getenv(envJWTSecret); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Simulation.TickPeriod <= 0 {
		return fmt.Errorf("simulation.tick_period must be positive")
	}
	if c.Simulation.Substeps < 1 {
		return fmt.Errorf("simulation.substeps must be at least 1")
	}
	if c.Rooms.DefaultMaxPlayers < 1 {
		return fmt.Errorf("rooms.default_max_players must be at least 1")
	}
	return nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:              ":8080",
			MaxConns:          1000,
			MaxConnsPerIP:     5,
			MaxMessagesPerSec: 50,
			PublicURL:         "http://localhost:8080",
		},
		Simulation: SimulationConfig{
			TickPeriod:       50 * time.Millisecond, // 20 Hz
			Substeps:         3,
			RotationInterval: 10 * time.Minute,
			MaxBodies:        600,
			InboxSize:        256,
		},
		Rooms: RoomsConfig{
			MaxRooms:          100,
			DefaultMaxPlayers: 8,
		},
		Database: DatabaseConfig{
			Path:          "scores.db",
			FlushInterval: 5 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL:   7 * 24 * time.Hour,
			BcryptCost: 10,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}
