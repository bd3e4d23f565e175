// Package config loads daemon settings from defaults, an optional YAML file
// and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/sweeney/press-switch/internal/clock"
	"github.com/sweeney/press-switch/internal/gpio"
	"github.com/sweeney/press-switch/internal/logic"
)

// Output drivers.
const (
	DriverGPIOCDev = "gpiocdev"
	DriverRPIO     = "rpio"
	DriverGPIOMem  = "gpiomem"
)

// Config is the complete daemon configuration.
type Config struct {
	// GPIO settings
	Chip               string `yaml:"chip"`
	Pins               Pins   `yaml:"pins"`
	IndicatorActiveLow bool   `yaml:"indicator_active_low"`
	OutputDriver       string `yaml:"output_driver"`

	// Press classification
	Debounce     time.Duration `yaml:"debounce"`
	LongPress    time.Duration `yaml:"long_press"`
	ClockModulus uint64        `yaml:"clock_modulus"`

	// MQTT connection settings
	MQTT MQTTConfig `yaml:"mqtt"`

	// General settings
	Heartbeat time.Duration `yaml:"heartbeat"`
	HTTPAddr  string        `yaml:"http"`
	Verbose   bool          `yaml:"verbose"`

	// PrintState reads the inputs once and exits. Command line only.
	PrintState bool `yaml:"-"`
}

// Pins holds line offsets (BCM numbering on a Raspberry Pi).
type Pins struct {
	Button    int `yaml:"button"`
	Relay     int `yaml:"relay"`
	Indicator int `yaml:"indicator"`
}

// MQTTConfig holds MQTT broker connection settings.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Chip: gpio.DefaultChip,
		Pins: Pins{
			Button:    gpio.DefaultPinButton,
			Relay:     gpio.DefaultPinRelay,
			Indicator: gpio.DefaultPinIndicator,
		},
		IndicatorActiveLow: true,
		OutputDriver:       DriverGPIOCDev,
		Debounce:           logic.DefaultThresholds.Debounce,
		LongPress:          logic.DefaultThresholds.LongPress,
		ClockModulus:       clock.DefaultModulus,
		MQTT: MQTTConfig{
			Broker:   "tcp://192.168.1.200:1883",
			ClientID: "press-switch",
		},
		Heartbeat: 15 * time.Minute,
		HTTPAddr:  ":80",
	}
}

// Thresholds returns the press classification thresholds.
func (c Config) Thresholds() logic.Thresholds {
	return logic.Thresholds{Debounce: c.Debounce, LongPress: c.LongPress}
}

// Clock returns the wrapping counter used to time presses.
func (c Config) Clock() clock.Clock {
	return clock.New(c.ClockModulus)
}

// Decode reads YAML from r over cfg. Keys missing from the document keep
// their current values; unknown keys are an error.
func Decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.SetStrict(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode config: %w", err)
	}
	return nil
}

// Load reads the YAML file at path over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	if err := Decode(f, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// RegisterFlags binds one flag per setting to the fields of cfg, using the
// current field values as defaults.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) {
	fs.StringVar(&cfg.Chip, "chip", cfg.Chip, "GPIO chip name")
	fs.IntVar(&cfg.Pins.Button, "pin-button", cfg.Pins.Button, "Line offset of the button input")
	fs.IntVar(&cfg.Pins.Relay, "pin-relay", cfg.Pins.Relay, "Line offset of the relay output")
	fs.IntVar(&cfg.Pins.Indicator, "pin-indicator", cfg.Pins.Indicator, "Line offset of the indicator output")
	fs.BoolVar(&cfg.IndicatorActiveLow, "indicator-active-low", cfg.IndicatorActiveLow, "Indicator lights when its pin is driven low")
	fs.StringVar(&cfg.OutputDriver, "output-driver", cfg.OutputDriver, `Output driver ("gpiocdev", "rpio" or "gpiomem")`)
	fs.DurationVar(&cfg.Debounce, "debounce", cfg.Debounce, "Presses held this long or shorter are bounces")
	fs.DurationVar(&cfg.LongPress, "long-press", cfg.LongPress, "Presses held longer than this are long presses")
	fs.Uint64Var(&cfg.ClockModulus, "clock-modulus", cfg.ClockModulus, "Wrap period of the millisecond press clock")
	fs.StringVar(&cfg.MQTT.Broker, "broker", cfg.MQTT.Broker, "MQTT broker address")
	fs.StringVar(&cfg.MQTT.ClientID, "client-id", cfg.MQTT.ClientID, "MQTT client ID")
	fs.DurationVar(&cfg.Heartbeat, "heartbeat", cfg.Heartbeat, "Heartbeat interval (0 to disable)")
	fs.StringVar(&cfg.HTTPAddr, "http", cfg.HTTPAddr, "HTTP status address (empty to disable)")
	fs.BoolVar(&cfg.Verbose, "verbose", cfg.Verbose, "Log bounce presses")
	fs.BoolVar(&cfg.PrintState, "print-state", cfg.PrintState, "Print current button state and exit")
}

// Parse builds the configuration from command-line arguments.
// If -config names a file it is applied over the defaults, then every flag
// set explicitly on the command line is applied over the file.
func Parse(name string, args []string) (Config, error) {
	cfg := Default()
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	path := fs.String("config", "", "YAML config file (optional)")
	RegisterFlags(fs, &cfg)

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}

	if *path != "" {
		fileCfg, err := Load(*path)
		if err != nil {
			return cfg, err
		}

		overlay := flag.NewFlagSet(name, flag.ContinueOnError)
		RegisterFlags(overlay, &fileCfg)

		var setErr error
		fs.Visit(func(f *flag.Flag) {
			if f.Name == "config" || setErr != nil {
				return
			}
			setErr = overlay.Set(f.Name, f.Value.String())
		})
		if setErr != nil {
			return cfg, fmt.Errorf("apply flags over config: %w", setErr)
		}
		cfg = fileCfg
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the daemon cannot run with.
func (c Config) Validate() error {
	var errs []error

	if c.Debounce < 0 {
		errs = append(errs, fmt.Errorf("debounce must not be negative (got %v)", c.Debounce))
	}
	if c.LongPress <= c.Debounce {
		errs = append(errs, fmt.Errorf("long press (%v) must be longer than debounce (%v)", c.LongPress, c.Debounce))
	}
	if c.ClockModulus == 0 || c.ClockModulus > clock.MaxModulus {
		errs = append(errs, fmt.Errorf("clock modulus must be in 1..%d (got %d)", clock.MaxModulus, c.ClockModulus))
	} else if uint64(c.LongPress/time.Millisecond) >= c.ClockModulus {
		errs = append(errs, fmt.Errorf("long press (%v) must be shorter than the clock period (%dms)", c.LongPress, c.ClockModulus))
	}

	pins := map[string]int{"button": c.Pins.Button, "relay": c.Pins.Relay, "indicator": c.Pins.Indicator}
	seen := map[int]string{}
	for _, name := range []string{"button", "relay", "indicator"} {
		pin := pins[name]
		if pin < 0 {
			errs = append(errs, fmt.Errorf("%s pin must not be negative (got %d)", name, pin))
			continue
		}
		if other, ok := seen[pin]; ok {
			errs = append(errs, fmt.Errorf("%s and %s share pin %d", other, name, pin))
		}
		seen[pin] = name
	}

	switch c.OutputDriver {
	case DriverGPIOCDev, DriverRPIO, DriverGPIOMem:
	default:
		errs = append(errs, fmt.Errorf("unknown output driver %q", c.OutputDriver))
	}

	if c.Heartbeat < 0 {
		errs = append(errs, fmt.Errorf("heartbeat must not be negative (got %v)", c.Heartbeat))
	}

	switch len(errs) {
	case 0:
		return nil
	case 1:
		return fmt.Errorf("invalid config: %w", errs[0])
	default:
		return fmt.Errorf("invalid config: %v", errs)
	}
}
