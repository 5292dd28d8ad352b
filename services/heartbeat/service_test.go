package heartbeat

import (
	"testing"
	"time"

	"rtcalarm-go/bus"
	"rtcalarm-go/types"
)

type fixedThermo int32

func (f fixedThermo) Temperature() (int32, error) { return int32(f), nil }

func TestPublishCarriesEdgesAndTemperature(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("hb")
	sub := conn.Subscribe(topicEvent)

	s := &Service{
		Edges:  func() uint32 { return 42 },
		Thermo: fixedThermo(22500),
	}
	s.publish(conn, time.Now().Add(-3*time.Second))

	select {
	case m := <-sub.Channel():
		ev, ok := m.Payload.(types.HeartbeatEvent)
		if !ok {
			t.Fatalf("payload type %T", m.Payload)
		}
		if ev.Edges != 42 {
			t.Errorf("Edges = %d, want 42", ev.Edges)
		}
		if ev.TempMilliC == nil || *ev.TempMilliC != 22500 {
			t.Errorf("TempMilliC = %v, want 22500", ev.TempMilliC)
		}
		if ev.UpSeconds != 3 {
			t.Errorf("UpSeconds = %d, want 3", ev.UpSeconds)
		}
	case <-time.After(time.Second):
		t.Fatal("no heartbeat published")
	}
}

func TestPublishOmitsTemperatureWithoutThermometer(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("hb")
	sub := conn.Subscribe(topicEvent)

	s := &Service{}
	s.publish(conn, time.Now())

	select {
	case m := <-sub.Channel():
		ev := m.Payload.(types.HeartbeatEvent)
		if ev.TempMilliC != nil {
			t.Errorf("TempMilliC = %v, want nil", ev.TempMilliC)
		}
	case <-time.After(time.Second):
		t.Fatal("no heartbeat published")
	}
}

func TestIntervalFromConfig(t *testing.T) {
	if d, ok := interval(map[string]any{"interval_s": 5.0}); !ok || d != 5*time.Second {
		t.Errorf("interval = %v ok=%v", d, ok)
	}
	if _, ok := interval(map[string]any{"interval_s": -1.0}); ok {
		t.Error("negative interval accepted")
	}
	if _, ok := interval("not a map"); ok {
		t.Error("non-map payload accepted")
	}
}
