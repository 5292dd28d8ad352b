package types

// ------------------------
// Calendar time as the chip stores it
// ------------------------

// Timestamp carries the raw calendar fields of an RTC read. Ranges are
// chip-defined: Year is the two-digit year (0..99), Weekday runs 1..7 with a
// user-chosen start of week. The struct is caller-owned and only valid for
// the read that filled it.
type Timestamp struct {
	Seconds uint8
	Minutes uint8
	Hours   uint8
	Day     uint8 // day of month, 1..31
	Weekday uint8 // 1..7
	Month   uint8 // 1..12
	Year    uint8 // 0..99
}

// ------------------------
// Alarm comparators
// ------------------------

// Slot identifies one of the chip's two independent alarm comparators.
type Slot uint8

const (
	Alarm1 Slot = 1
	Alarm2 Slot = 2
)

func (s Slot) String() string {
	switch s {
	case Alarm1:
		return "alarm1"
	case Alarm2:
		return "alarm2"
	default:
		return "alarm?"
	}
}

// MatchMode selects which timestamp fields must match the programmed
// thresholds for a slot to fire. Not every mode is valid for every slot;
// the driver rejects invalid combinations.
type MatchMode uint8

const (
	ModeEverySecond MatchMode = iota + 1 // slot 1 only
	ModeSeconds                          // slot 1 only
	ModeMinutesSeconds                   // slot 1 only
	ModeHoursMinutesSeconds              // slot 1 only
	ModeEveryMinute                      // slot 2 only
	ModeMinutes
	ModeHoursMinutes
	ModeDate // day-of-month plus the time fields the slot supports
	ModeDay  // day-of-week plus the time fields the slot supports
)

// AlarmSpec is a full replacement configuration for one slot: one match mode
// plus the threshold fields it needs. Fields unused by the mode are ignored.
type AlarmSpec struct {
	Slot    Slot
	Mode    MatchMode
	Seconds uint8
	Minutes uint8
	Hours   uint8
	Day     uint8 // day-of-month for ModeDate, day-of-week for ModeDay
}

// ------------------------
// Clock capability
// ------------------------

// Clock is the capability boundary to an alarm-capable RTC. Implementations
// must be safe to call from a single goroutine; none of the methods may be
// called from interrupt context.
type Clock interface {
	// Detect probes the chip and prepares it for alarm use.
	Detect() error
	// OscillatorStopped reports whether the chip has flagged an oscillator
	// fault since the time was last set. When true, the time cannot be trusted.
	OscillatorStopped() (bool, error)
	// ReadTime fills a Timestamp from the chip's current time.
	ReadTime() (Timestamp, error)
	// ProgramAlarm replaces the slot's configuration in one call and leaves
	// the slot's interrupt output enabled.
	ProgramAlarm(AlarmSpec) error
	// Fired reports the slot's latched alarm flag.
	Fired(Slot) (bool, error)
	// ClearFired resets the slot's latched alarm flag so it can fire again.
	ClearFired(Slot) error
}

// Thermometer is implemented by clocks that expose a die temperature,
// in milli-degrees Celsius.
type Thermometer interface {
	Temperature() (int32, error)
}
