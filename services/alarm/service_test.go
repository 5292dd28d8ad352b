package alarm

import (
	"context"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"rtcalarm-go/bus"
	"rtcalarm-go/types"
)

// fakeClock scripts the capability surface for service tests.
type fakeClock struct {
	mu          sync.Mutex
	detectFails int
	detectCalls int
	oscStopped  bool
	oscErr      error
	ts          types.Timestamp
	readErr     error
	programmed  []types.AlarmSpec
	programErr  error
	fired       map[types.Slot]bool
	firedErr    error
	cleared     []types.Slot
	clearErr    error
}

func (f *fakeClock) Detect() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.detectCalls++
	if f.detectFails > 0 {
		f.detectFails--
		return errors.New("nack")
	}
	return nil
}

func (f *fakeClock) OscillatorStopped() (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.oscStopped, f.oscErr
}

func (f *fakeClock) ReadTime() (types.Timestamp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return types.Timestamp{}, f.readErr
	}
	return f.ts, nil
}

func (f *fakeClock) ProgramAlarm(spec types.AlarmSpec) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.programErr != nil {
		return f.programErr
	}
	f.programmed = append(f.programmed, spec)
	return nil
}

func (f *fakeClock) Fired(slot types.Slot) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.firedErr != nil {
		return false, f.firedErr
	}
	return f.fired[slot], nil
}

func (f *fakeClock) ClearFired(slot types.Slot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clearErr != nil {
		return f.clearErr
	}
	f.cleared = append(f.cleared, slot)
	f.fired[slot] = false
	return nil
}

// clockSnapshot is a lock-free copy of the recorded calls.
type clockSnapshot struct {
	detectCalls int
	programmed  []types.AlarmSpec
	cleared     []types.Slot
}

func (f *fakeClock) snapshot() clockSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return clockSnapshot{
		detectCalls: f.detectCalls,
		programmed:  append([]types.AlarmSpec(nil), f.programmed...),
		cleared:     append([]types.Slot(nil), f.cleared...),
	}
}

// fakePin records configuration and lets tests raise edges.
type fakePin struct {
	mu      sync.Mutex
	pull    Pull
	edge    Edge
	handler func()
	irqErr  error
}

func (p *fakePin) ConfigureInput(pull Pull) error {
	p.mu.Lock()
	p.pull = pull
	p.mu.Unlock()
	return nil
}
func (p *fakePin) Get() bool   { return true }
func (p *fakePin) Number() int { return 3 }

func (p *fakePin) SetIRQ(edge Edge, handler func()) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.irqErr != nil {
		return p.irqErr
	}
	p.edge = edge
	p.handler = handler
	return nil
}

func (p *fakePin) ClearIRQ() error {
	p.mu.Lock()
	p.handler = nil
	p.mu.Unlock()
	return nil
}

func (p *fakePin) Trigger() {
	p.mu.Lock()
	h := p.handler
	p.mu.Unlock()
	if h != nil {
		h()
	}
}

func newTestService(t *testing.T, clock types.Clock, pin IRQPin) (*Service, *bus.Subscription) {
	t.Helper()
	b := bus.NewBus(16)
	watch := b.NewConnection("test")
	sub := watch.Subscribe(bus.T("alarm", "#"))
	s := New(b.NewConnection("alarm"), clock, pin, Config{})
	s.sleep = func(time.Duration) { runtime.Gosched() }
	return s, sub
}

func recv(t *testing.T, sub *bus.Subscription) *bus.Message {
	t.Helper()
	select {
	case m := <-sub.Channel():
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for bus message")
		return nil
	}
}

// waitState consumes messages until a ClockState with the given level shows
// up, returning it. Alarm events seen on the way are ignored.
func waitState(t *testing.T, sub *bus.Subscription, level string) types.ClockState {
	t.Helper()
	for {
		m := recv(t, sub)
		st, ok := m.Payload.(types.ClockState)
		if ok && st.Level == level {
			return st
		}
	}
}

func waitEvent(t *testing.T, sub *bus.Subscription) types.AlarmEvent {
	t.Helper()
	for {
		m := recv(t, sub)
		if ev, ok := m.Payload.(types.AlarmEvent); ok {
			return ev
		}
	}
}

func TestRunRetriesDetectUntilChipResponds(t *testing.T) {
	clock := &fakeClock{
		detectFails: 3,
		ts:          types.Timestamp{Minutes: 7},
		fired:       map[types.Slot]bool{},
	}
	pin := &fakePin{}
	s, sub := newTestService(t, clock, pin)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	waitState(t, sub, "ready")
	cancel()
	<-done

	snap := clock.snapshot()
	if snap.detectCalls != 4 {
		t.Errorf("detect calls = %d, want 4 (3 failures + 1 success)", snap.detectCalls)
	}
	if len(snap.programmed) != 2 {
		t.Fatalf("programmed %d alarms, want 2", len(snap.programmed))
	}
	a1, a2 := snap.programmed[0], snap.programmed[1]
	if a1.Slot != types.Alarm1 || a1.Mode != types.ModeSeconds || a1.Seconds != 30 {
		t.Errorf("alarm1 spec = %+v", a1)
	}
	if a2.Slot != types.Alarm2 || a2.Mode != types.ModeMinutes || a2.Minutes != 9 {
		t.Errorf("alarm2 spec = %+v, want minutes-match at 9", a2)
	}
	if pin.pull != PullUp || pin.edge != EdgeFalling {
		t.Errorf("pin configured pull=%d edge=%d, want pull-up falling", pin.pull, pin.edge)
	}
}

func TestRunHaltsWhenOscillatorStopped(t *testing.T) {
	clock := &fakeClock{oscStopped: true, fired: map[types.Slot]bool{}}
	s, sub := newTestService(t, clock, &fakePin{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	st := waitState(t, sub, "halted")
	if st.Status != "oscillator_stopped" {
		t.Errorf("halted status = %q, want oscillator_stopped", st.Status)
	}
	cancel()
	<-done

	if n := len(clock.snapshot().programmed); n != 0 {
		t.Errorf("programmed %d alarms after halt, want 0", n)
	}
}

func TestRunDispatchesOnInterrupt(t *testing.T) {
	clock := &fakeClock{
		ts:    types.Timestamp{Seconds: 5, Minutes: 7, Hours: 9, Day: 3, Weekday: 2, Month: 11, Year: 24},
		fired: map[types.Slot]bool{types.Alarm1: true},
	}
	pin := &fakePin{}
	s, sub := newTestService(t, clock, pin)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { s.Run(ctx); close(done) }()

	waitState(t, sub, "ready")
	pin.Trigger()

	ev := waitEvent(t, sub)
	if ev.Slot != 1 || ev.Line != "2 3-11-24  9:07:05" {
		t.Errorf("event = %+v", ev)
	}
	cancel()
	<-done
}

func TestArmAlarmsWarnsOnProgramFailure(t *testing.T) {
	clock := &fakeClock{programErr: errors.New("nack"), fired: map[types.Slot]bool{}}
	s, sub := newTestService(t, clock, nil)

	s.armAlarms()

	first := waitEvent(t, sub)
	if first.Slot != 1 || first.Warning != "alarm_program_failed" {
		t.Errorf("alarm1 warning = %+v", first)
	}
	second := waitEvent(t, sub)
	if second.Slot != 2 || second.Warning != "alarm_program_failed" {
		t.Errorf("alarm2 warning = %+v", second)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.normalise()
	if cfg.Alarm1Seconds != 30 || cfg.Alarm2Interval != 2 || cfg.DetectRetryMs != 3000 || cfg.PollMs != 10 {
		t.Errorf("defaults = %+v", cfg)
	}

	cfg = Config{Alarm1Seconds: 75, Alarm2Interval: 60}
	cfg.normalise()
	if cfg.Alarm1Seconds != 30 || cfg.Alarm2Interval != 2 {
		t.Errorf("out-of-range fields not clamped: %+v", cfg)
	}
}

func TestDecodeConfig(t *testing.T) {
	raw := []byte(`{"int_pin": 3, "alarm1_seconds": 45, "alarm2_interval_min": 5}`)
	cfg, err := DecodeConfig(raw)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.IntPin != 3 || cfg.Alarm1Seconds != 45 || cfg.Alarm2Interval != 5 {
		t.Errorf("decoded = %+v", cfg)
	}

	// Maps arrive when an upstream service already unmarshalled the payload.
	m := map[string]any{"int_pin": 7.0}
	cfg, err = DecodeConfig(m)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.IntPin != 7 {
		t.Errorf("map decode IntPin = %d, want 7", cfg.IntPin)
	}

	if _, err := DecodeConfig([]byte("{")); err == nil {
		t.Error("truncated JSON did not error")
	}
}
