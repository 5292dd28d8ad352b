package alarm

import "encoding/json"

// ---- GPIO abstractions ----

type Pull uint8

const (
	PullNone Pull = iota
	PullUp
	PullDown
)

// Edge selection for IRQ.
type Edge uint8

const (
	EdgeNone Edge = iota
	EdgeRising
	EdgeFalling
	EdgeBoth
)

type GPIOPin interface {
	ConfigureInput(pull Pull) error
	Get() bool
	Number() int
}

// IRQPin extends GPIOPin with interrupts. The handler runs in interrupt
// context and must not block, allocate, or touch the I2C bus.
type IRQPin interface {
	GPIOPin
	SetIRQ(edge Edge, handler func()) error
	ClearIRQ() error
}

// PinFactory supplies pins by the configured number scheme.
type PinFactory interface {
	ByNumber(n int) (IRQPin, bool)
}

// ---- Configuration ----

// Config is the alarm node's configuration, decoded from the retained
// config/alarm message.
type Config struct {
	IntPin         int `json:"int_pin"`             // GPIO wired to INT/SQW
	Alarm1Seconds  int `json:"alarm1_seconds"`      // seconds-match threshold, 0..59
	Alarm2Interval int `json:"alarm2_interval_min"` // minutes between alarm-2 firings
	DetectRetryMs  int `json:"detect_retry_ms"`     // delay between detect attempts
	PollMs         int `json:"poll_ms"`             // wake-flag poll interval
}

// normalise fills defaults and clamps fields to chip-valid ranges.
func (c *Config) normalise() {
	if c.Alarm1Seconds < 0 || c.Alarm1Seconds > 59 {
		c.Alarm1Seconds = 30
	}
	if c.Alarm2Interval < 1 || c.Alarm2Interval > 59 {
		c.Alarm2Interval = 2
	}
	if c.DetectRetryMs <= 0 {
		c.DetectRetryMs = 3000
	}
	if c.PollMs <= 0 {
		c.PollMs = 10
	}
}

// DecodeConfig converts a bus payload (raw JSON bytes, a JSON string, or an
// already-decoded map) into a Config.
func DecodeConfig(payload any) (Config, error) {
	var cfg Config
	switch v := payload.(type) {
	case []byte:
		if err := json.Unmarshal(v, &cfg); err != nil {
			return Config{}, err
		}
	case string:
		if err := json.Unmarshal([]byte(v), &cfg); err != nil {
			return Config{}, err
		}
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return Config{}, err
		}
		if err := json.Unmarshal(b, &cfg); err != nil {
			return Config{}, err
		}
	}
	return cfg, nil
}
