// Package scenario loads simulator run descriptions for the host binary.
// A scenario fixes the simulated start time, how long to run, and which
// faults to inject, so a run is reproducible from a single YAML file.
package scenario

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Scenario describes one simulator run.
type Scenario struct {
	// Start is the simulated RTC time at boot, RFC 3339.
	Start string `yaml:"start"`
	// DurationS is how many simulated seconds to run.
	DurationS int `yaml:"duration_s"`
	// DetectFailures makes the first N chip probes fail.
	DetectFailures int `yaml:"detect_failures"`
	// OscillatorStopped boots the chip with the oscillator fault latched.
	OscillatorStopped bool `yaml:"oscillator_stopped"`
	// ReadErrorAtS injects a time-read failure during the given simulated
	// second (0 disables).
	ReadErrorAtS int `yaml:"read_error_at_s"`

	Alarm AlarmConfig `yaml:"alarm"`

	start time.Time
}

// AlarmConfig mirrors the service's JSON config in YAML form.
type AlarmConfig struct {
	IntPin         int `yaml:"int_pin"`
	Alarm1Seconds  int `yaml:"alarm1_seconds"`
	Alarm2Interval int `yaml:"alarm2_interval_min"`
	DetectRetryMs  int `yaml:"detect_retry_ms"`
	PollMs         int `yaml:"poll_ms"`
}

// StartTime returns the parsed start time. Valid after Validate.
func (s *Scenario) StartTime() time.Time { return s.start }

// Default returns the scenario used when no file is given: a clean boot at a
// fixed instant, running long enough for both alarms to fire twice.
func Default() *Scenario {
	s := &Scenario{
		Start:     "2024-11-03T09:00:00Z",
		DurationS: 300,
		Alarm: AlarmConfig{
			Alarm1Seconds:  30,
			Alarm2Interval: 2,
		},
	}
	if err := s.Validate(); err != nil {
		panic(err)
	}
	return s
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(raw)
}

// Parse decodes and validates scenario YAML.
func Parse(raw []byte) (*Scenario, error) {
	var s Scenario
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks ranges and fills defaults.
func (s *Scenario) Validate() error {
	if s.Start == "" {
		s.Start = "2024-11-03T09:00:00Z"
	}
	t, err := time.Parse(time.RFC3339, s.Start)
	if err != nil {
		return fmt.Errorf("scenario: bad start time %q: %w", s.Start, err)
	}
	s.start = t

	if s.DurationS <= 0 {
		s.DurationS = 300
	}
	if s.DetectFailures < 0 {
		return errors.New("scenario: detect_failures must be >= 0")
	}
	if s.ReadErrorAtS < 0 || s.ReadErrorAtS > s.DurationS {
		return errors.New("scenario: read_error_at_s out of run range")
	}
	if s.Alarm.Alarm1Seconds < 0 || s.Alarm.Alarm1Seconds > 59 {
		return errors.New("scenario: alarm1_seconds must be 0..59")
	}
	if s.Alarm.Alarm2Interval < 0 || s.Alarm.Alarm2Interval > 59 {
		return errors.New("scenario: alarm2_interval_min must be 0..59")
	}
	return nil
}
