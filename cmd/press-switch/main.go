// Command press-switch classifies presses of a normally-closed push button and
// toggles a relay and indicator on every short press.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sweeney/press-switch/internal/config"
	"github.com/sweeney/press-switch/internal/gpio"
	"github.com/sweeney/press-switch/internal/logic"
	"github.com/sweeney/press-switch/internal/mqtt"
	"github.com/sweeney/press-switch/internal/output"
	"github.com/sweeney/press-switch/internal/report"
	"github.com/sweeney/press-switch/internal/status"
	"github.com/sweeney/press-switch/internal/web"
)

func main() {
	cfg, err := config.Parse(os.Args[0], os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("config: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config) error {
	// Print state mode
	if cfg.PrintState {
		button, err := gpio.NewRealButton(cfg.Chip, cfg.Pins.Button, nil)
		if err != nil {
			return fmt.Errorf("init gpio: %w", err)
		}
		defer button.Close()

		pressed, err := button.Pressed()
		if err != nil {
			return fmt.Errorf("read gpio: %w", err)
		}
		fmt.Printf("button: %s\n", buttonString(pressed))
		return nil
	}

	// Initialize outputs; everything off at start.
	outputs, err := openOutputs(cfg)
	if err != nil {
		return fmt.Errorf("init outputs: %w", err)
	}
	defer outputs.Close()
	if err := outputs.Off(); err != nil {
		log.Printf("outputs: %v", err)
	}

	// Initialize MQTT
	publisher, err := mqtt.NewRealPublisher(cfg.MQTT.Broker, cfg.MQTT.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Initialize status tracker (before STARTUP so snapshot is available)
	startTime := time.Now()
	tracker := status.NewTracker(startTime, statusConfig(cfg))
	tracker.SetOutputs(outputs.State())
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	// Publish startup event with full status snapshot
	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	// Arm the button last, once everything it drives is ready.
	clk := cfg.Clock()
	classifier := logic.NewClassifier(cfg.Thresholds(), clk, outputs)
	reporter := report.New(report.DefaultQueueSize)
	button, err := gpio.NewRealButton(cfg.Chip, cfg.Pins.Button, report.EdgeHandler(classifier, clk, reporter, time.Now))
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer button.Close()

	// Start HTTP status server
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, outputs)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: debounce=%v long-press=%v broker=%s heartbeat=%v", cfg.Debounce, cfg.LongPress, cfg.MQTT.Broker, cfg.Heartbeat)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	d := &daemon{
		events:     reporter.Events(),
		dropped:    reporter.Dropped,
		publisher:  publisher,
		mqttStatus: publisher,
		tracker:    tracker,
		outputs:    outputs,
		stats:      logic.NewStats(startTime),
		heartbeat:  cfg.Heartbeat,
		verbose:    cfg.Verbose,
		now:        time.Now,
	}
	return d.runLoop(ticker.C, sigCh)
}

// openOutputs builds the relay/indicator pair on the configured driver.
func openOutputs(cfg config.Config) (*output.Pair, error) {
	switch cfg.OutputDriver {
	case config.DriverRPIO:
		bank, err := output.OpenRPIO()
		if err != nil {
			return nil, err
		}
		relay := bank.Output(cfg.Pins.Relay, false)
		indicator := bank.Output(cfg.Pins.Indicator, cfg.IndicatorActiveLow)
		return output.NewPair(relay, indicator), nil

	case config.DriverGPIOMem:
		bank, err := output.OpenGPIOMem()
		if err != nil {
			return nil, err
		}
		relay := bank.Output(cfg.Pins.Relay, false)
		indicator := bank.Output(cfg.Pins.Indicator, cfg.IndicatorActiveLow)
		return output.NewPair(relay, indicator), nil

	default:
		relay, err := output.NewLineOutput(cfg.Chip, cfg.Pins.Relay, false)
		if err != nil {
			return nil, err
		}
		indicator, err := output.NewLineOutput(cfg.Chip, cfg.Pins.Indicator, cfg.IndicatorActiveLow)
		if err != nil {
			relay.Close()
			return nil, err
		}
		return output.NewPair(relay, indicator), nil
	}
}

func statusConfig(cfg config.Config) status.Config {
	return status.Config{
		DebounceMs:   cfg.Debounce.Milliseconds(),
		LongPressMs:  cfg.LongPress.Milliseconds(),
		ClockModulus: cfg.ClockModulus,
		HeartbeatMs:  cfg.Heartbeat.Milliseconds(),
		Broker:       cfg.MQTT.Broker,
		HTTPAddr:     cfg.HTTPAddr,
		ButtonPin:    cfg.Pins.Button,
		RelayPin:     cfg.Pins.Relay,
		IndicatorPin: cfg.Pins.Indicator,
		OutputDriver: cfg.OutputDriver,
	}
}

// daemon owns everything the run loop touches. Only runLoop's goroutine uses
// stats; tracker and outputs are safe for concurrent use.
type daemon struct {
	events     <-chan logic.Event
	dropped    func() int
	publisher  mqtt.Publisher
	mqttStatus mqtt.ConnectionStatus
	tracker    *status.Tracker
	outputs    logic.OutputState
	stats      *logic.Stats
	heartbeat  time.Duration
	verbose    bool
	now        func() time.Time
}

func (d *daemon) runLoop(tick <-chan time.Time, sig <-chan os.Signal) error {
	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			d.drainEvents()

			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: d.now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if d.tracker != nil {
				d.refreshTracker()
				snap := d.tracker.Snapshot()
				event.RawPayload = status.FormatStatusEvent(snap, "SHUTDOWN", signalName)
			}
			if err := d.publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case e := <-d.events:
			d.handleEvent(e)

		case <-tick:
			t := d.now()

			// Check for heartbeat
			if hbData := d.stats.CheckHeartbeat(t, d.heartbeat); hbData != nil {
				log.Printf("heartbeat: uptime=%v short=%d long=%d bounce=%d dropped=%d",
					hbData.Uptime, hbData.Counts.ShortPress, hbData.Counts.LongPress, hbData.Counts.Bounce, hbData.Counts.Dropped)

				hbEvent := mqtt.SystemEvent{
					Timestamp: hbData.Timestamp,
					Event:     "HEARTBEAT",
				}
				if d.tracker != nil {
					// Refresh network info for heartbeat
					if net := readNetworkInfo(); net != nil {
						d.tracker.SetNetwork(net)
					}
					d.refreshTracker()
					snap := d.tracker.Snapshot()
					hbEvent.RawPayload = status.FormatStatusEvent(snap, "HEARTBEAT", "")
				}
				if err := d.publisher.PublishSystem(hbEvent); err != nil {
					log.Printf("heartbeat publish error: %v", err)
				}
			}

			if d.tracker != nil {
				d.refreshTracker()
			}
		}
	}
}

// handleEvent reports one classified press. This is where the logging and
// network I/O deferred out of the edge handler happens.
func (d *daemon) handleEvent(e logic.Event) {
	d.stats.Record(e)
	if d.dropped != nil {
		d.stats.SetDropped(d.dropped())
	}

	ms := e.Hold.Milliseconds()
	switch e.Type {
	case logic.EventLongPress:
		log.Printf("long press (%dms): no action", ms)
	case logic.EventShortPress:
		log.Printf("short press (%dms): relay=%s indicator=%s", ms, e.Relay, e.Indicator)
		if e.ToggleErr != nil {
			log.Printf("toggle error: %v", e.ToggleErr)
		}
	case logic.EventBounce:
		if d.verbose {
			log.Printf("bounce (%dms): ignored", ms)
		}
	}

	if err := d.publisher.Publish(e); err != nil {
		log.Printf("publish error: %v", err)
		// Don't crash on publish failure
	}

	if d.tracker != nil {
		d.refreshTracker()
	}
}

// drainEvents handles whatever is still queued without waiting for more.
func (d *daemon) drainEvents() {
	for {
		select {
		case e := <-d.events:
			d.handleEvent(e)
		default:
			return
		}
	}
}

func (d *daemon) refreshTracker() {
	if d.dropped != nil {
		d.stats.SetDropped(d.dropped())
	}
	d.tracker.Update(d.stats.Counts(), d.stats.Last())
	if d.outputs != nil {
		d.tracker.SetOutputs(d.outputs.State())
	}
	if d.mqttStatus != nil {
		d.tracker.SetMQTTConnected(d.mqttStatus.IsConnected())
	}
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}

func buttonString(pressed bool) string {
	if pressed {
		return "PRESSED"
	}
	return "RELEASED"
}
