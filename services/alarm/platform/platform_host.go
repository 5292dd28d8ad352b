//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"rtcalarm-go/services/alarm"
)

// DefaultPinFactory returns fake pins for host builds. Tests and the
// simulator raise edges with (*FakePin).Trigger.
func DefaultPinFactory() alarm.PinFactory { return &fakePinFactory{pins: map[int]*FakePin{}} }

type fakePinFactory struct {
	mu   sync.Mutex
	pins map[int]*FakePin
}

func (f *fakePinFactory) ByNumber(n int) (alarm.IRQPin, bool) {
	if n < 0 {
		return nil, false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.pins[n]
	if !ok {
		p = &FakePin{n: n, level: true}
		f.pins[n] = p
	}
	return p, true
}

// FakePin is an in-memory IRQ-capable pin. The line idles high, matching an
// open-drain interrupt line with a pull-up.
type FakePin struct {
	mu      sync.Mutex
	n       int
	level   bool
	pull    alarm.Pull
	edge    alarm.Edge
	handler func()
}

func (p *FakePin) ConfigureInput(pull alarm.Pull) error {
	p.mu.Lock()
	p.pull = pull
	p.mu.Unlock()
	return nil
}

func (p *FakePin) Get() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.level
}

func (p *FakePin) Number() int { return p.n }

func (p *FakePin) SetIRQ(edge alarm.Edge, handler func()) error {
	p.mu.Lock()
	p.edge = edge
	p.handler = handler
	p.mu.Unlock()
	return nil
}

func (p *FakePin) ClearIRQ() error {
	p.mu.Lock()
	p.handler = nil
	p.mu.Unlock()
	return nil
}

// Trigger simulates one falling edge followed by the line returning high.
func (p *FakePin) Trigger() {
	p.mu.Lock()
	h := p.handler
	fire := p.edge == alarm.EdgeFalling || p.edge == alarm.EdgeBoth
	p.level = false
	p.mu.Unlock()

	if fire && h != nil {
		h()
	}

	p.mu.Lock()
	p.level = true
	p.mu.Unlock()
}
