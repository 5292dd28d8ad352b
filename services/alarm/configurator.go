package alarm

import "rtcalarm-go/types"

// NextAlarm2Minute computes the minute-of-hour for the next alarm-2 firing:
// interval minutes after current, wrapped modulo 60. The result may sit in
// the next hour; the minutes-match comparator handles that naturally.
func NextAlarm2Minute(current, interval uint8) uint8 {
	return (current + interval) % 60
}

// programAlarm1 arms the once-per-minute seconds-match alarm. This is set
// once during setup and never reprogrammed.
func (s *Service) programAlarm1() error {
	return s.clock.ProgramAlarm(types.AlarmSpec{
		Slot:    types.Alarm1,
		Mode:    types.ModeSeconds,
		Seconds: uint8(s.cfg.Alarm1Seconds),
	})
}

// programAlarm2From arms the minutes-match alarm relative to the current
// minute. Called during setup and again after every alarm-2 firing.
func (s *Service) programAlarm2From(minute uint8) error {
	return s.clock.ProgramAlarm(types.AlarmSpec{
		Slot:    types.Alarm2,
		Mode:    types.ModeMinutes,
		Minutes: NextAlarm2Minute(minute, uint8(s.cfg.Alarm2Interval)),
	})
}
