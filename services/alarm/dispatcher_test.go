package alarm

import (
	"errors"
	"testing"

	"rtcalarm-go/types"
)

func TestDispatchBothSlotsSameWake(t *testing.T) {
	clock := &fakeClock{
		ts:    types.Timestamp{Seconds: 30, Minutes: 14, Hours: 10, Day: 3, Weekday: 2, Month: 11, Year: 24},
		fired: map[types.Slot]bool{types.Alarm1: true, types.Alarm2: true},
	}
	s, sub := newTestService(t, clock, nil)

	s.dispatch()

	first := waitEvent(t, sub)
	second := waitEvent(t, sub)
	if first.Slot != 1 || second.Slot != 2 {
		t.Fatalf("slot order = %d, %d, want 1, 2", first.Slot, second.Slot)
	}
	for _, ev := range []types.AlarmEvent{first, second} {
		if ev.Line != "2 3-11-24  10:14:30" {
			t.Errorf("slot %d line = %q", ev.Slot, ev.Line)
		}
	}

	snap := clock.snapshot()
	if len(snap.cleared) != 2 {
		t.Fatalf("cleared %d flags, want 2", len(snap.cleared))
	}
	// Only alarm 2 reprograms, two minutes past the read minute.
	if len(snap.programmed) != 1 {
		t.Fatalf("programmed %d alarms, want 1", len(snap.programmed))
	}
	if p := snap.programmed[0]; p.Slot != types.Alarm2 || p.Minutes != 16 {
		t.Errorf("reprogram = %+v, want alarm2 minute 16", p)
	}
}

func TestDispatchTimeReadFailureStillClears(t *testing.T) {
	clock := &fakeClock{
		readErr: errors.New("nack"),
		fired:   map[types.Slot]bool{types.Alarm1: true},
	}
	s, sub := newTestService(t, clock, nil)

	s.dispatch()

	ev := waitEvent(t, sub)
	if ev.Error != "time_read_failed" || ev.Line != "" {
		t.Errorf("event = %+v", ev)
	}

	snap := clock.snapshot()
	if len(snap.cleared) != 1 || snap.cleared[0] != types.Alarm1 {
		t.Errorf("cleared = %v, want [1]; an uncleared flag wedges the INT line", snap.cleared)
	}
	if len(snap.programmed) != 0 {
		t.Errorf("reprogrammed with an unreadable time: %v", snap.programmed)
	}
}

func TestDispatchAlarm2ReadFailureSkipsReprogram(t *testing.T) {
	clock := &fakeClock{
		readErr: errors.New("nack"),
		fired:   map[types.Slot]bool{types.Alarm2: true},
	}
	s, sub := newTestService(t, clock, nil)

	s.dispatch()

	ev := waitEvent(t, sub)
	if ev.Slot != 2 || ev.Error != "time_read_failed" {
		t.Errorf("event = %+v", ev)
	}
	snap := clock.snapshot()
	if len(snap.programmed) != 0 {
		t.Errorf("reprogram should be skipped: %v", snap.programmed)
	}
	if len(snap.cleared) != 1 {
		t.Errorf("cleared = %v, want alarm 2 cleared", snap.cleared)
	}
}

func TestDispatchQueryFailure(t *testing.T) {
	clock := &fakeClock{
		firedErr: errors.New("nack"),
		fired:    map[types.Slot]bool{},
	}
	s, sub := newTestService(t, clock, nil)

	s.dispatch()

	for _, wantSlot := range []int{1, 2} {
		ev := waitEvent(t, sub)
		if ev.Slot != wantSlot || ev.Error != "alarm_query_failed" {
			t.Errorf("event = %+v, want slot %d query failure", ev, wantSlot)
		}
	}
	if n := len(clock.snapshot().cleared); n != 0 {
		t.Errorf("cleared %d flags with the query failing, want 0", n)
	}
}

func TestDispatchClearFailureWarns(t *testing.T) {
	clock := &fakeClock{
		ts:       types.Timestamp{Weekday: 1, Day: 1, Month: 1},
		fired:    map[types.Slot]bool{types.Alarm1: true},
		clearErr: errors.New("nack"),
	}
	s, sub := newTestService(t, clock, nil)

	s.dispatch()

	ev := waitEvent(t, sub)
	if ev.Line == "" {
		t.Fatalf("expected the formatted event first, got %+v", ev)
	}
	warn := waitEvent(t, sub)
	if warn.Warning != "alarm_clear_failed" {
		t.Errorf("warning = %+v", warn)
	}
}
