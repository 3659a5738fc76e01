package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv(envConfigPath, "")
	t.Setenv(envJWTSecret, "")
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Simulation.TickPeriod != 50*time.Millisecond {
		t.Errorf("expected 50ms tick, got %v", cfg.Simulation.TickPeriod)
	}
	if cfg.Server.Addr != ":8080" || cfg.Rooms.DefaultMaxPlayers != 8 {
		t.Errorf("unexpected defaults %+v %+v", cfg.Server, cfg.Rooms)
	}
}

func TestLoadConfigFile(t *testing.T) {
	t.Setenv(envConfigPath, "")
	t.Setenv(envJWTSecret, "")
	path := writeConfig(t, `
[simulation]
tick_period = "20ms"
substeps = 2
rotation_interval = "0s"

[rooms]
max_rooms = 3

[logging]
format = "json"
`)
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Simulation.TickPeriod != 20*time.Millisecond || cfg.Simulation.Substeps != 2 {
		t.Errorf("unexpected simulation %+v", cfg.Simulation)
	}
	if cfg.Simulation.RotationInterval != 0 {
		t.Errorf("expected rotation disabled, got %v", cfg.Simulation.RotationInterval)
	}
	if cfg.Rooms.MaxRooms != 3 || cfg.Rooms.DefaultMaxPlayers != 8 {
		t.Errorf("expected file over defaults, got %+v", cfg.Rooms)
	}
	if cfg.Logging.Format != "json" || cfg.Logging.Level != "info" {
		t.Errorf("unexpected logging %+v", cfg.Logging)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := writeConfig(t, "[auth]\njwt_secret = \"from-file\"\n")
	t.Setenv(envConfigPath, path)
	t.Setenv(envJWTSecret, "from-env")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Auth.JWTSecret != "from-env" {
		t.Errorf("expected env secret, got %q", cfg.Auth.JWTSecret)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	t.Setenv(envConfigPath, "")
	t.Setenv(envJWTSecret, "")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Error("expected an error for an explicit missing file")
	}
	path := writeConfig(t, "[simulation]\nsubsteps = 0\n")
	_, err := LoadConfig(path)
	if err == nil || !strings.Contains(err.Error(), "substeps") {
		t.Errorf("expected substeps validation error, got %v", err)
	}
	path = writeConfig(t, "[simulation\n")
	if _, err := LoadConfig(path); err == nil {
		t.Error("expected a parse error")
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"json", "console", ""} {
		log, err := newLogger(LoggingConfig{Level: "debug", Format: format})
		if err != nil {
			t.Errorf("format %q: %v", format, err)
			continue
		}
		if !log.Core().Enabled(-1) {
			t.Errorf("format %q: expected debug enabled", format)
		}
	}
	if _, err := newLogger(LoggingConfig{Level: "loud"}); err == nil {
		t.Error("expected an error for an unknown level")
	}
	if _, err := newLogger(LoggingConfig{Level: "info", Format: "xml"}); err == nil {
		t.Error("expected an error for an unknown format")
	}
}
