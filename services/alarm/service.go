// Package alarm runs the RTC alarm node: it brings up the clock chip, arms
// both alarm comparators, bridges the chip's interrupt line into a wake
// flag, and turns each firing into an event on the bus.
//
// The interrupt handler only signals the wake flag. All chip I/O happens in
// the run loop, which polls the flag and dispatches both slots per wake
// because the shared INT line cannot say which comparator matched.
package alarm

import (
	"context"
	"time"

	"rtcalarm-go/bus"
	"rtcalarm-go/errcode"
	"rtcalarm-go/types"
	"rtcalarm-go/x/timex"
)

var topicState = bus.T("alarm", "state")

func topicEvent(slot types.Slot) bus.Topic { return bus.T("alarm", "event", int(slot)) }

// Service owns the clock and the interrupt pin for one alarm node.
type Service struct {
	conn  *bus.Connection
	clock types.Clock
	pin   IRQPin
	cfg   Config
	wake  WakeFlag

	// sleep is swappable so tests can run the loop without real delays.
	sleep func(time.Duration)
}

// New wires a service. cfg is normalised; zero fields get defaults.
func New(conn *bus.Connection, clock types.Clock, pin IRQPin, cfg Config) *Service {
	cfg.normalise()
	return &Service{
		conn:  conn,
		clock: clock,
		pin:   pin,
		cfg:   cfg,
		sleep: time.Sleep,
	}
}

// Edges reports the number of interrupt edges seen since boot.
func (s *Service) Edges() uint32 { return s.wake.Edges() }

// Wake exposes the flag for host builds where the simulated clock drives the
// interrupt hook directly instead of a GPIO edge.
func (s *Service) Wake() *WakeFlag { return &s.wake }

// Run executes the setup phase and then the dispatch loop until ctx is
// cancelled. An oscillator fault is terminal: it is reported once and the
// service parks rather than emitting untrustworthy timestamps.
func (s *Service) Run(ctx context.Context) {
	s.publishState("detecting", errcode.OK)

	if !s.detect(ctx) {
		s.publishState("stopped", errcode.OK)
		return
	}

	stopped, err := s.clock.OscillatorStopped()
	if err != nil || stopped {
		// A status register we cannot read is as untrustworthy as a
		// stopped oscillator.
		s.publishState("halted", errcode.OscillatorStopped)
		<-ctx.Done()
		s.publishState("stopped", errcode.OK)
		return
	}

	s.armAlarms()

	if err := s.bindInterrupt(); err != nil {
		s.publishState("halted", errcode.UnknownPin)
		<-ctx.Done()
		s.publishState("stopped", errcode.OK)
		return
	}

	s.publishState("ready", errcode.OK)
	s.loop(ctx)
	s.publishState("stopped", errcode.OK)
}

// detect retries until the chip responds or ctx is cancelled. Every failed
// attempt refreshes the retained state so late subscribers see the fault.
func (s *Service) detect(ctx context.Context) bool {
	delay := time.Duration(s.cfg.DetectRetryMs) * time.Millisecond
	for {
		if err := s.clock.Detect(); err == nil {
			return true
		}
		s.publishState("detecting", errcode.ChipNotDetected)
		if ctx.Err() != nil {
			return false
		}
		s.sleep(delay)
		if ctx.Err() != nil {
			return false
		}
	}
}

// armAlarms programs both comparators for the first time. Programming
// failures are reported as warnings; the chip may still fire whatever was
// armed, and the dispatch loop reprograms alarm 2 on its next firing.
func (s *Service) armAlarms() {
	if err := s.programAlarm1(); err != nil {
		s.publishEvent(types.Alarm1, types.AlarmEvent{Warning: string(errcode.AlarmProgramFailed)})
	}
	ts, err := s.clock.ReadTime()
	if err != nil {
		s.publishEvent(types.Alarm2, types.AlarmEvent{Warning: string(errcode.TimeReadFailed)})
		return
	}
	if err := s.programAlarm2From(ts.Minutes); err != nil {
		s.publishEvent(types.Alarm2, types.AlarmEvent{Warning: string(errcode.AlarmProgramFailed)})
	}
}

// bindInterrupt configures the INT pin and attaches the wake-flag handler.
// The line is open-drain and active low, so pull up and watch falling edges.
func (s *Service) bindInterrupt() error {
	if s.pin == nil {
		return nil
	}
	if err := s.pin.ConfigureInput(PullUp); err != nil {
		return err
	}
	return s.pin.SetIRQ(EdgeFalling, s.wake.Signal)
}

func (s *Service) loop(ctx context.Context) {
	poll := time.Duration(s.cfg.PollMs) * time.Millisecond
	for ctx.Err() == nil {
		if s.wake.TakeAndClear() {
			s.dispatch()
			continue
		}
		s.sleep(poll)
	}
}

func (s *Service) publishState(level string, status errcode.Code) {
	st := types.ClockState{Level: level, TS: timex.NowMs()}
	if status != errcode.OK {
		st.Status = string(status)
	}
	s.conn.Publish(s.conn.NewMessage(topicState, st, true))
}

func (s *Service) publishEvent(slot types.Slot, ev types.AlarmEvent) {
	ev.Slot = int(slot)
	ev.TS = timex.NowMs()
	s.conn.Publish(s.conn.NewMessage(topicEvent(slot), ev, false))
}
