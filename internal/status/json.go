package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Relay         string       `json:"relay"`
	Indicator     string       `json:"indicator"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"press_counts"`
	LastPress     *PressJSON   `json:"last_press,omitempty"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of press counts.
type CountsJSON struct {
	Bounce     int `json:"bounce"`
	ShortPress int `json:"short_press"`
	LongPress  int `json:"long_press"`
	Dropped    int `json:"dropped"`
}

// PressJSON is the JSON representation of the most recent press.
type PressJSON struct {
	Event     string `json:"event"`
	HoldMs    int64  `json:"hold_ms"`
	Timestamp string `json:"timestamp"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	DebounceMs   int64  `json:"debounce_ms"`
	LongPressMs  int64  `json:"long_press_ms"`
	ClockModulus uint64 `json:"clock_modulus"`
	HeartbeatMs  int64  `json:"heartbeat_ms"`
	Broker       string `json:"broker"`
	HTTPAddr     string `json:"http_addr"`
	ButtonPin    int    `json:"button_pin"`
	RelayPin     int    `json:"relay_pin"`
	IndicatorPin int    `json:"indicator_pin"`
	OutputDriver string `json:"output_driver"`
}

func stateOrUnknown(s string) string {
	if s == "" {
		return "UNKNOWN"
	}
	return s
}

func buildInner(snap Snapshot) StatusInner {
	inner := StatusInner{
		Relay:         stateOrUnknown(string(snap.Relay)),
		Indicator:     stateOrUnknown(string(snap.Indicator)),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			Bounce:     snap.Counts.Bounce,
			ShortPress: snap.Counts.ShortPress,
			LongPress:  snap.Counts.LongPress,
			Dropped:    snap.Counts.Dropped,
		},
		Config: ConfigJSON{
			DebounceMs:   snap.Config.DebounceMs,
			LongPressMs:  snap.Config.LongPressMs,
			ClockModulus: snap.Config.ClockModulus,
			HeartbeatMs:  snap.Config.HeartbeatMs,
			Broker:       snap.Config.Broker,
			HTTPAddr:     snap.Config.HTTPAddr,
			ButtonPin:    snap.Config.ButtonPin,
			RelayPin:     snap.Config.RelayPin,
			IndicatorPin: snap.Config.IndicatorPin,
			OutputDriver: snap.Config.OutputDriver,
		},
	}

	if snap.Last != nil {
		inner.LastPress = &PressJSON{
			Event:     string(snap.Last.Type),
			HoldMs:    snap.Last.Hold.Milliseconds(),
			Timestamp: snap.Last.Timestamp.UTC().Format(time.RFC3339),
		}
	}

	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}

	return inner
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
