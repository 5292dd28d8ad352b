package alarm

import (
	"tinygo.org/x/drivers"

	"rtcalarm-go/drivers/ds3231"
	"rtcalarm-go/types"
)

// ds3231Clock adapts the register-level driver to the capability interface
// the service consumes.
type ds3231Clock struct {
	dev ds3231.Device
}

// NewDS3231Clock returns a types.Clock backed by a DS3231 on the given bus.
// The returned clock also implements types.Thermometer.
func NewDS3231Clock(i2c drivers.I2C) types.Clock {
	return &ds3231Clock{dev: ds3231.New(i2c)}
}

// Detect probes the chip and, on success, puts it into interrupt mode with
// both comparators disarmed.
func (c *ds3231Clock) Detect() error {
	if err := c.dev.Detect(); err != nil {
		return err
	}
	return c.dev.Configure()
}

func (c *ds3231Clock) OscillatorStopped() (bool, error) {
	return c.dev.OscillatorStopped()
}

func (c *ds3231Clock) ReadTime() (types.Timestamp, error) {
	var dt ds3231.DateTime
	if err := c.dev.ReadTime(&dt); err != nil {
		return types.Timestamp{}, err
	}
	return types.Timestamp{
		Seconds: dt.Seconds,
		Minutes: dt.Minutes,
		Hours:   dt.Hours,
		Day:     dt.Day,
		Weekday: dt.Weekday,
		Month:   dt.Month,
		Year:    dt.Year,
	}, nil
}

func (c *ds3231Clock) ProgramAlarm(spec types.AlarmSpec) error {
	mode, ok := alarmMode(spec.Mode)
	if !ok {
		return ds3231.ErrInvalidMode
	}
	dt := ds3231.DateTime{
		Seconds: spec.Seconds,
		Minutes: spec.Minutes,
		Hours:   spec.Hours,
		Day:     spec.Day,
	}
	return c.dev.SetAlarm(uint8(spec.Slot), mode, dt)
}

func (c *ds3231Clock) Fired(slot types.Slot) (bool, error) {
	return c.dev.AlarmFired(uint8(slot))
}

func (c *ds3231Clock) ClearFired(slot types.Slot) error {
	return c.dev.ClearAlarm(uint8(slot))
}

// Temperature implements types.Thermometer.
func (c *ds3231Clock) Temperature() (int32, error) {
	return c.dev.Temperature()
}

func alarmMode(m types.MatchMode) (ds3231.AlarmMode, bool) {
	switch m {
	case types.ModeEverySecond:
		return ds3231.MatchEverySecond, true
	case types.ModeSeconds:
		return ds3231.MatchSeconds, true
	case types.ModeMinutesSeconds:
		return ds3231.MatchMinutesSeconds, true
	case types.ModeHoursMinutesSeconds:
		return ds3231.MatchHoursMinutesSeconds, true
	case types.ModeEveryMinute:
		return ds3231.MatchEveryMinute, true
	case types.ModeMinutes:
		return ds3231.MatchMinutes, true
	case types.ModeHoursMinutes:
		return ds3231.MatchHoursMinutes, true
	case types.ModeDate:
		return ds3231.MatchDate, true
	case types.ModeDay:
		return ds3231.MatchDay, true
	default:
		return 0, false
	}
}
