package config

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sweeney/press-switch/internal/clock"
	"github.com/sweeney/press-switch/internal/logic"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "press-switch.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	if cfg.Thresholds() != logic.DefaultThresholds {
		t.Errorf("expected default thresholds, got %+v", cfg.Thresholds())
	}
	if cfg.Clock().Modulus != clock.DefaultModulus {
		t.Errorf("expected default modulus, got %d", cfg.Clock().Modulus)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
chip: gpiochip4
pins:
  button: 0
  relay: 12
  indicator: 13
debounce: 30ms
long_press: 1s
mqtt:
  broker: tcp://broker.local:1883
verbose: true
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chip != "gpiochip4" {
		t.Errorf("Chip: got %q", cfg.Chip)
	}
	if cfg.Pins != (Pins{Button: 0, Relay: 12, Indicator: 13}) {
		t.Errorf("Pins: got %+v", cfg.Pins)
	}
	if cfg.Debounce != 30*time.Millisecond || cfg.LongPress != time.Second {
		t.Errorf("thresholds: got %v / %v", cfg.Debounce, cfg.LongPress)
	}
	if cfg.MQTT.Broker != "tcp://broker.local:1883" {
		t.Errorf("MQTT.Broker: got %q", cfg.MQTT.Broker)
	}
	if !cfg.Verbose {
		t.Error("expected Verbose=true")
	}

	// Keys missing from the file keep their defaults.
	if cfg.MQTT.ClientID != "press-switch" {
		t.Errorf("MQTT.ClientID: got %q, want default", cfg.MQTT.ClientID)
	}
	if !cfg.IndicatorActiveLow {
		t.Error("expected IndicatorActiveLow default to survive")
	}
	if cfg.Heartbeat != 15*time.Minute {
		t.Errorf("Heartbeat: got %v, want default", cfg.Heartbeat)
	}
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Chip != Default().Chip {
		t.Errorf("expected defaults from empty file, got %+v", cfg)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	_, err := Load(writeConfig(t, "debounse: 20ms\n"))
	if err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	if err == nil || !strings.Contains(err.Error(), "open config") {
		t.Errorf("expected open error, got %v", err)
	}
}

func TestParseFlagsOnly(t *testing.T) {
	cfg, err := Parse("press-switch", []string{"-debounce", "25ms", "-pin-button", "5", "-http", ""})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Debounce != 25*time.Millisecond {
		t.Errorf("Debounce: got %v", cfg.Debounce)
	}
	if cfg.Pins.Button != 5 {
		t.Errorf("Pins.Button: got %d", cfg.Pins.Button)
	}
	if cfg.HTTPAddr != "" {
		t.Errorf("HTTPAddr: got %q, want empty", cfg.HTTPAddr)
	}
}

func TestParseFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
debounce: 30ms
long_press: 800ms
http: ":8080"
`)

	cfg, err := Parse("press-switch", []string{"-config", path, "-long-press", "700ms", "-verbose"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Debounce != 30*time.Millisecond {
		t.Errorf("Debounce from file: got %v, want 30ms", cfg.Debounce)
	}
	if cfg.LongPress != 700*time.Millisecond {
		t.Errorf("LongPress flag should win over file: got %v, want 700ms", cfg.LongPress)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr from file: got %q", cfg.HTTPAddr)
	}
	if !cfg.Verbose {
		t.Error("expected Verbose from flag")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse("press-switch", []string{"-debounce", "700ms"})
	if err == nil || !strings.Contains(err.Error(), "must be longer than debounce") {
		t.Errorf("expected threshold ordering error, got %v", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative debounce", func(c *Config) { c.Debounce = -time.Millisecond }, "debounce must not be negative"},
		{"long not above debounce", func(c *Config) { c.LongPress = c.Debounce }, "must be longer than debounce"},
		{"zero modulus", func(c *Config) { c.ClockModulus = 0 }, "clock modulus"},
		{"modulus too large", func(c *Config) { c.ClockModulus = clock.MaxModulus + 1 }, "clock modulus"},
		{"long press exceeds clock", func(c *Config) { c.ClockModulus = 500 }, "shorter than the clock period"},
		{"negative pin", func(c *Config) { c.Pins.Relay = -1 }, "relay pin must not be negative"},
		{"shared pin", func(c *Config) { c.Pins.Indicator = c.Pins.Relay }, "relay and indicator share pin"},
		{"unknown driver", func(c *Config) { c.OutputDriver = "sysfs" }, `unknown output driver "sysfs"`},
		{"negative heartbeat", func(c *Config) { c.Heartbeat = -time.Second }, "heartbeat must not be negative"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestValidateReportsAllProblems(t *testing.T) {
	cfg := Default()
	cfg.Debounce = -time.Millisecond
	cfg.OutputDriver = "sysfs"

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "debounce") || !strings.Contains(err.Error(), "sysfs") {
		t.Errorf("expected both problems reported, got %v", err)
	}
}

func TestValidateAcceptsEveryDriver(t *testing.T) {
	for _, driver := range []string{DriverGPIOCDev, DriverRPIO, DriverGPIOMem} {
		cfg := Default()
		cfg.OutputDriver = driver
		if err := cfg.Validate(); err != nil {
			t.Errorf("%s: unexpected error: %v", driver, err)
		}
	}
}

func TestPrintStateUsage(t *testing.T) {
	fs := flag.NewFlagSet("press-switch", flag.ContinueOnError)
	cfg := Default()
	RegisterFlags(fs, &cfg)

	f := fs.Lookup("print-state")
	if f == nil {
		t.Fatal("print-state flag not registered")
	}
	if f.Usage != "Print current button state and exit" {
		t.Errorf("usage: got %q", f.Usage)
	}
}
