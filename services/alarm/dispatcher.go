package alarm

import (
	"rtcalarm-go/errcode"
	"rtcalarm-go/types"
)

// dispatch services one wake. The INT line is shared by both comparators, so
// both slots are checked on every wake regardless of which one pulled it low.
func (s *Service) dispatch() {
	s.handleSlot(types.Alarm1)
	s.handleSlot(types.Alarm2)
}

// handleSlot checks one comparator's fired flag and, if set, reads the time,
// emits the event, reprograms alarm 2, and clears the flag. The clear happens
// even when the time read fails, otherwise the flag would hold INT low
// forever and the loop would spin on the same firing.
func (s *Service) handleSlot(slot types.Slot) {
	fired, err := s.clock.Fired(slot)
	if err != nil {
		s.publishEvent(slot, types.AlarmEvent{Error: string(errcode.AlarmQueryFailed)})
		return
	}
	if !fired {
		return
	}

	ts, err := s.clock.ReadTime()
	if err != nil {
		s.publishEvent(slot, types.AlarmEvent{Error: string(errcode.TimeReadFailed)})
	} else {
		ev := types.AlarmEvent{Line: FormatTimestamp(ts)}
		if slot == types.Alarm2 {
			if perr := s.programAlarm2From(ts.Minutes); perr != nil {
				ev.Warning = string(errcode.AlarmProgramFailed)
			}
		}
		s.publishEvent(slot, ev)
	}

	if cerr := s.clock.ClearFired(slot); cerr != nil {
		s.publishEvent(slot, types.AlarmEvent{Warning: string(errcode.AlarmClearFailed)})
	}
}
