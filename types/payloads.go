package types

// Bus payloads shared between services and the diagnostic renderer.

// ClockState is the retained state of the alarm node, published on
// alarm/state whenever the setup phase or run loop changes phase.
type ClockState struct {
	Level  string `json:"level"`            // "detecting", "ready", "halted", "stopped"
	Status string `json:"status,omitempty"` // errcode short code
	TS     int64  `json:"ts_ms"`
}

// AlarmEvent is published on alarm/event/<slot> for every handled firing.
// Either Line carries the formatted timestamp or Error carries an errcode
// short code; warnings set Error on an otherwise successful event.
type AlarmEvent struct {
	Slot    int    `json:"slot"`
	Line    string `json:"line,omitempty"`
	Error   string `json:"error,omitempty"`
	Warning string `json:"warning,omitempty"`
	TS      int64  `json:"ts_ms"`
}

// HeartbeatEvent is the periodic liveness report on heartbeat/event.
type HeartbeatEvent struct {
	UpSeconds uint32 `json:"up_s"`
	Edges     uint32 `json:"edges"`
	// TempMilliC is present when the clock exposes a die temperature.
	TempMilliC *int32 `json:"temp_mc,omitempty"`
	TS         int64  `json:"ts_ms"`
}
