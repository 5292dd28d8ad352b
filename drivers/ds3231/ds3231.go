// Package ds3231 provides a driver for the DS3231 real-time clock with
// support for both of the chip's alarm comparators.
//
// Alarm 1 can match on seconds, minutes+seconds, hours+minutes+seconds, or
// fire every second; alarm 2 matches on minutes, hours+minutes, or fires
// every minute. Both additionally support day-of-month or day-of-week
// matching. Programming an alarm replaces its previous configuration and
// routes the chip's INT/SQW pin to interrupt output.
//
// Datasheet: https://datasheets.maximintegrated.com/en/ds/DS3231.pdf
package ds3231

import (
	"errors"

	"tinygo.org/x/drivers"
)

// Errors returned by the driver.
var (
	ErrNotDetected = errors.New("ds3231: no response from device")
	ErrInvalidSlot = errors.New("ds3231: alarm slot must be 1 or 2")
	ErrInvalidMode = errors.New("ds3231: match mode not valid for slot")
)

// AlarmMode selects which calendar fields an alarm comparator matches.
type AlarmMode uint8

const (
	MatchEverySecond AlarmMode = iota + 1 // slot 1 only
	MatchSeconds                          // slot 1 only
	MatchMinutesSeconds                   // slot 1 only
	MatchHoursMinutesSeconds              // slot 1 only
	MatchEveryMinute                      // slot 2 only
	MatchMinutes
	MatchHoursMinutes
	MatchDate // day-of-month plus all supported time fields
	MatchDay  // day-of-week plus all supported time fields
)

// DateTime carries the chip's raw calendar fields. Year is two-digit (0..99),
// Weekday is 1..7 with a user-defined start of week.
type DateTime struct {
	Seconds uint8
	Minutes uint8
	Hours   uint8
	Day     uint8
	Weekday uint8
	Month   uint8
	Year    uint8
}

// Device wraps an I2C connection to a DS3231 device.
type Device struct {
	bus     drivers.I2C
	Address uint8
	buf     [7]byte // reuse buffer to avoid allocations
}

// New creates a new DS3231 connection. The I2C bus must already be
// configured. This function only creates the Device object, it does not
// touch the device.
func New(bus drivers.I2C) Device {
	return Device{
		bus:     bus,
		Address: Address,
	}
}

// Detect probes the chip by reading its status register.
// Any bus failure is reported as ErrNotDetected.
func (d *Device) Detect() error {
	buf := d.buf[:1]
	if err := d.bus.ReadRegister(d.Address, regStatus, buf); err != nil {
		return ErrNotDetected
	}
	return nil
}

// Configure prepares the chip for alarm use: INT/SQW in interrupt mode, both
// alarm interrupts disabled, both fired flags cleared. The oscillator stop
// flag is left alone so callers can still inspect it.
func (d *Device) Configure() error {
	if err := d.bus.WriteRegister(d.Address, regControl, []byte{ctrlINTCN}); err != nil {
		return err
	}
	buf := d.buf[:1]
	if err := d.bus.ReadRegister(d.Address, regStatus, buf); err != nil {
		return err
	}
	buf[0] &^= statA1F | statA2F
	return d.bus.WriteRegister(d.Address, regStatus, buf)
}

// OscillatorStopped reports whether the oscillator has stopped since the
// time was last set. The chip's time cannot be trusted while this is set.
func (d *Device) OscillatorStopped() (bool, error) {
	buf := d.buf[:1]
	if err := d.bus.ReadRegister(d.Address, regStatus, buf); err != nil {
		return false, err
	}
	return buf[0]&statOSF != 0, nil
}

// ReadTime fills dt from the chip's time registers.
func (d *Device) ReadTime(dt *DateTime) error {
	data := d.buf[:7]
	if err := d.bus.ReadRegister(d.Address, regTime, data); err != nil {
		return err
	}
	dt.Seconds = bcdToDec(data[0] & 0x7F)
	dt.Minutes = bcdToDec(data[1] & 0x7F)
	dt.Hours = hoursToDec(data[2])
	dt.Weekday = bcdToDec(data[3] & 0x07)
	dt.Day = bcdToDec(data[4] & 0x3F)
	dt.Month = bcdToDec(data[5] &^ centuryBit)
	dt.Year = bcdToDec(data[6])
	return nil
}

// SetTime writes dt to the chip in 24-hour mode and clears the oscillator
// stop flag, marking the time as trusted again.
func (d *Device) SetTime(dt DateTime) error {
	data := d.buf[:7]
	data[0] = decToBcd(dt.Seconds)
	data[1] = decToBcd(dt.Minutes)
	data[2] = decToBcd(dt.Hours)
	data[3] = decToBcd(dt.Weekday)
	data[4] = decToBcd(dt.Day)
	data[5] = decToBcd(dt.Month)
	data[6] = decToBcd(dt.Year)
	if err := d.bus.WriteRegister(d.Address, regTime, data); err != nil {
		return err
	}

	buf := d.buf[:1]
	if err := d.bus.ReadRegister(d.Address, regStatus, buf); err != nil {
		return err
	}
	buf[0] &^= statOSF
	return d.bus.WriteRegister(d.Address, regStatus, buf)
}

// SetAlarm programs one alarm comparator in a single call: it writes the
// threshold registers with the mode's match masks, clears the slot's fired
// flag, and enables the slot's interrupt output. Threshold fields the mode
// does not use are ignored.
func (d *Device) SetAlarm(slot uint8, mode AlarmMode, dt DateTime) error {
	switch slot {
	case 1:
		if mode == MatchEveryMinute || mode == MatchMinutes || mode == MatchHoursMinutes {
			return ErrInvalidMode
		}
		data := d.buf[:4]
		data[0] = decToBcd(dt.Seconds)
		data[1] = decToBcd(dt.Minutes)
		data[2] = decToBcd(dt.Hours)
		data[3] = decToBcd(dt.Day)
		applyMasks(data, mode)
		if err := d.bus.WriteRegister(d.Address, regAlarm1, data); err != nil {
			return err
		}
	case 2:
		if mode == MatchEverySecond || mode == MatchSeconds ||
			mode == MatchMinutesSeconds || mode == MatchHoursMinutesSeconds {
			return ErrInvalidMode
		}
		data := d.buf[:3]
		data[0] = decToBcd(dt.Minutes)
		data[1] = decToBcd(dt.Hours)
		data[2] = decToBcd(dt.Day)
		applyMasks(data, mode)
		if err := d.bus.WriteRegister(d.Address, regAlarm2, data); err != nil {
			return err
		}
	default:
		return ErrInvalidSlot
	}

	if err := d.ClearAlarm(slot); err != nil {
		return err
	}
	return d.EnableAlarmInterrupt(slot, true)
}

// applyMasks sets the AxMx skip bits for the registers the mode does not
// match, and the DY/DT bit for day-of-week matching. data is the alarm
// register block, seconds first for alarm 1, minutes first for alarm 2.
func applyMasks(data []byte, mode AlarmMode) {
	// Index of the minutes register within the block.
	min := 0
	if len(data) == 4 {
		min = 1
	}
	day := len(data) - 1

	for i := range data {
		data[i] |= alarmSkip
	}
	switch mode {
	case MatchEverySecond, MatchEveryMinute:
		return
	case MatchSeconds:
		data[0] &^= alarmSkip
	case MatchMinutesSeconds:
		data[0] &^= alarmSkip
		data[min] &^= alarmSkip
	case MatchMinutes:
		data[min] &^= alarmSkip
	case MatchHoursMinutesSeconds, MatchHoursMinutes:
		for i := 0; i < day; i++ {
			data[i] &^= alarmSkip
		}
	case MatchDate, MatchDay:
		for i := range data {
			data[i] &^= alarmSkip
		}
		if mode == MatchDay {
			data[day] |= alarmDay
		}
	}
}

// EnableAlarmInterrupt routes the slot's match to the INT pin (on=true) or
// detaches it (on=false). The alarm thresholds are left untouched.
func (d *Device) EnableAlarmInterrupt(slot uint8, on bool) error {
	var bit uint8
	switch slot {
	case 1:
		bit = ctrlA1IE
	case 2:
		bit = ctrlA2IE
	default:
		return ErrInvalidSlot
	}
	buf := d.buf[:1]
	if err := d.bus.ReadRegister(d.Address, regControl, buf); err != nil {
		return err
	}
	buf[0] |= ctrlINTCN
	if on {
		buf[0] |= bit
	} else {
		buf[0] &^= bit
	}
	return d.bus.WriteRegister(d.Address, regControl, buf)
}

// AlarmFired reports the slot's latched match flag.
func (d *Device) AlarmFired(slot uint8) (bool, error) {
	var bit uint8
	switch slot {
	case 1:
		bit = statA1F
	case 2:
		bit = statA2F
	default:
		return false, ErrInvalidSlot
	}
	buf := d.buf[:1]
	if err := d.bus.ReadRegister(d.Address, regStatus, buf); err != nil {
		return false, err
	}
	return buf[0]&bit != 0, nil
}

// ClearAlarm resets the slot's latched match flag so the alarm can fire
// again and the INT line can deassert.
func (d *Device) ClearAlarm(slot uint8) error {
	var bit uint8
	switch slot {
	case 1:
		bit = statA1F
	case 2:
		bit = statA2F
	default:
		return ErrInvalidSlot
	}
	buf := d.buf[:1]
	if err := d.bus.ReadRegister(d.Address, regStatus, buf); err != nil {
		return err
	}
	buf[0] &^= bit
	return d.bus.WriteRegister(d.Address, regStatus, buf)
}

// Temperature returns the die temperature in milli-degrees Celsius.
// Resolution is 250 mC.
func (d *Device) Temperature() (int32, error) {
	data := d.buf[:2]
	if err := d.bus.ReadRegister(d.Address, regTemp, data); err != nil {
		return 0, err
	}
	return int32(int8(data[0]))*1000 + int32(data[1]>>6)*250, nil
}

// decToBcd converts int to BCD for the DS3231.
func decToBcd(value uint8) uint8 {
	return value + 6*(value/10)
}

// bcdToDec converts BCD from the DS3231 to int.
func bcdToDec(value uint8) uint8 {
	return value - 6*(value>>4)
}

// hoursToDec decodes the hours register, which may be in 12-hour mode.
func hoursToDec(value uint8) uint8 {
	if value&hour12Bit != 0 {
		h := bcdToDec(value & 0x1F)
		if value&hourPMBit != 0 {
			h += 12
		}
		return h
	}
	return bcdToDec(value & 0x3F)
}
