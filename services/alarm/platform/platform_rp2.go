//go:build rp2040 || rp2350

// Package platform supplies the board-specific I2C bus and GPIO factory
// behind the interfaces the alarm service consumes. The RP2 build talks to
// real hardware; the host build substitutes fakes so the services run in
// simulators and tests.
package platform

import (
	"machine"

	"tinygo.org/x/drivers"

	"rtcalarm-go/services/alarm"
)

// DefaultI2C configures i2c0 at 400 kHz on the board-default pins and
// returns it. The DS3231 sits on this bus.
func DefaultI2C() drivers.I2C {
	b := machine.I2C0
	_ = b.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})
	return b
}

// DefaultPinFactory maps logical numbers directly to machine.Pin(n),
// matching Pico/Pico 2 GP numbering.
func DefaultPinFactory() alarm.PinFactory { return rp2PinFactory{} }

type rp2PinFactory struct{}

func (rp2PinFactory) ByNumber(n int) (alarm.IRQPin, bool) {
	// User GPIOs are GP0..GP28 on the RP2 family.
	if n < 0 || n > 28 {
		return nil, false
	}
	return &rp2Pin{p: machine.Pin(n), n: n}, true
}

type rp2Pin struct {
	p machine.Pin
	n int
}

func (r *rp2Pin) ConfigureInput(pull alarm.Pull) error {
	var mode machine.PinMode
	switch pull {
	case alarm.PullUp:
		mode = machine.PinInputPullup
	case alarm.PullDown:
		mode = machine.PinInputPulldown
	default:
		mode = machine.PinInput
	}
	r.p.Configure(machine.PinConfig{Mode: mode})
	return nil
}

func (r *rp2Pin) Get() bool   { return r.p.Get() }
func (r *rp2Pin) Number() int { return r.n }

func (r *rp2Pin) SetIRQ(edge alarm.Edge, handler func()) error {
	return r.p.SetInterrupt(toPinChange(edge), func(machine.Pin) { handler() })
}

func (r *rp2Pin) ClearIRQ() error {
	var zero machine.PinChange
	return r.p.SetInterrupt(zero, nil)
}

func toPinChange(e alarm.Edge) machine.PinChange {
	switch e {
	case alarm.EdgeRising:
		return machine.PinRising
	case alarm.EdgeFalling:
		return machine.PinFalling
	case alarm.EdgeBoth:
		return machine.PinToggle
	default:
		var zero machine.PinChange
		return zero
	}
}
