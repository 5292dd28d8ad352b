// Package clocksim is a simulated alarm-capable RTC for host builds and
// tests. It implements the same capability surface as the DS3231 adaptor,
// including latched fired flags and an interrupt hook that pulses once per
// new firing, so the whole dispatch pipeline can run off-target.
package clocksim

import (
	"errors"
	"sync"
	"time"

	"rtcalarm-go/types"
)

// Errors returned by the simulator.
var (
	ErrNotDetected = errors.New("clocksim: detect failure injected")
	ErrInvalidSlot = errors.New("clocksim: alarm slot must be 1 or 2")
	ErrInvalidMode = errors.New("clocksim: match mode not valid for slot")
)

type alarmState struct {
	spec    types.AlarmSpec
	enabled bool
	fired   bool
}

// Clock is a simulated RTC. The zero value is not usable; use New.
type Clock struct {
	mu          sync.Mutex
	now         time.Time
	oscStopped  bool
	failDetect  int
	readErr     error
	tempMilliC  int32
	alarms      [2]alarmState
	onInterrupt func()
}

// New creates a simulator whose time starts at start.
func New(start time.Time) *Clock {
	return &Clock{now: start, tempMilliC: 22500}
}

// OnInterrupt installs the falling-edge hook, invoked once per new firing
// while Advance steps the clock. The hook runs with the lock held; keep it
// as small as a real interrupt handler.
func (c *Clock) OnInterrupt(fn func()) {
	c.mu.Lock()
	c.onInterrupt = fn
	c.mu.Unlock()
}

// FailDetect makes the next n Detect calls fail.
func (c *Clock) FailDetect(n int) {
	c.mu.Lock()
	c.failDetect = n
	c.mu.Unlock()
}

// StopOscillator latches the oscillator fault flag.
func (c *Clock) StopOscillator() {
	c.mu.Lock()
	c.oscStopped = true
	c.mu.Unlock()
}

// SetReadError forces ReadTime to fail with err until called with nil.
func (c *Clock) SetReadError(err error) {
	c.mu.Lock()
	c.readErr = err
	c.mu.Unlock()
}

// SetTemperature sets the reported die temperature in milli-Celsius.
func (c *Clock) SetTemperature(mc int32) {
	c.mu.Lock()
	c.tempMilliC = mc
	c.mu.Unlock()
}

// Now returns the simulated time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance steps the simulated clock one second at a time, evaluating both
// alarm comparators at every step.
func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	steps := int(d / time.Second)
	for i := 0; i < steps; i++ {
		c.now = c.now.Add(time.Second)
		for a := range c.alarms {
			st := &c.alarms[a]
			if !st.enabled || st.fired || !matches(st.spec, c.now) {
				continue
			}
			st.fired = true
			if c.onInterrupt != nil {
				c.onInterrupt()
			}
		}
	}
}

func matches(spec types.AlarmSpec, t time.Time) bool {
	s, m, h := uint8(t.Second()), uint8(t.Minute()), uint8(t.Hour())
	switch spec.Mode {
	case types.ModeEverySecond:
		return true
	case types.ModeSeconds:
		return s == spec.Seconds
	case types.ModeMinutesSeconds:
		return s == spec.Seconds && m == spec.Minutes
	case types.ModeHoursMinutesSeconds:
		return s == spec.Seconds && m == spec.Minutes && h == spec.Hours
	case types.ModeEveryMinute:
		return s == 0
	case types.ModeMinutes:
		return s == 0 && m == spec.Minutes
	case types.ModeHoursMinutes:
		return s == 0 && m == spec.Minutes && h == spec.Hours
	case types.ModeDate:
		return timeFieldsMatch(spec, t) && uint8(t.Day()) == spec.Day
	case types.ModeDay:
		return timeFieldsMatch(spec, t) && uint8(t.Weekday())+1 == spec.Day
	default:
		return false
	}
}

// timeFieldsMatch covers the time-of-day part of date/day modes. Slot 1
// compares down to seconds, slot 2 down to minutes.
func timeFieldsMatch(spec types.AlarmSpec, t time.Time) bool {
	if uint8(t.Minute()) != spec.Minutes || uint8(t.Hour()) != spec.Hours {
		return false
	}
	if spec.Slot == types.Alarm1 {
		return uint8(t.Second()) == spec.Seconds
	}
	return t.Second() == 0
}

// ---- types.Clock ----

func (c *Clock) Detect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failDetect > 0 {
		c.failDetect--
		return ErrNotDetected
	}
	return nil
}

func (c *Clock) OscillatorStopped() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.oscStopped, nil
}

func (c *Clock) ReadTime() (types.Timestamp, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.readErr != nil {
		return types.Timestamp{}, c.readErr
	}
	t := c.now
	return types.Timestamp{
		Seconds: uint8(t.Second()),
		Minutes: uint8(t.Minute()),
		Hours:   uint8(t.Hour()),
		Day:     uint8(t.Day()),
		Weekday: uint8(t.Weekday()) + 1,
		Month:   uint8(t.Month()),
		Year:    uint8(t.Year() % 100),
	}, nil
}

func (c *Clock) ProgramAlarm(spec types.AlarmSpec) error {
	switch spec.Slot {
	case types.Alarm1:
		if spec.Mode == types.ModeEveryMinute || spec.Mode == types.ModeMinutes ||
			spec.Mode == types.ModeHoursMinutes {
			return ErrInvalidMode
		}
	case types.Alarm2:
		if spec.Mode == types.ModeEverySecond || spec.Mode == types.ModeSeconds ||
			spec.Mode == types.ModeMinutesSeconds || spec.Mode == types.ModeHoursMinutesSeconds {
			return ErrInvalidMode
		}
	default:
		return ErrInvalidSlot
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	st := &c.alarms[spec.Slot-1]
	st.spec = spec
	st.enabled = true
	st.fired = false
	return nil
}

func (c *Clock) Fired(slot types.Slot) (bool, error) {
	if slot != types.Alarm1 && slot != types.Alarm2 {
		return false, ErrInvalidSlot
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.alarms[slot-1].fired, nil
}

func (c *Clock) ClearFired(slot types.Slot) error {
	if slot != types.Alarm1 && slot != types.Alarm2 {
		return ErrInvalidSlot
	}
	c.mu.Lock()
	c.alarms[slot-1].fired = false
	c.mu.Unlock()
	return nil
}

// Temperature implements types.Thermometer.
func (c *Clock) Temperature() (int32, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tempMilliC, nil
}
