// Package heartbeat publishes a periodic liveness event carrying uptime,
// the interrupt edge count, and the clock's die temperature when available.
package heartbeat

import (
	"context"
	"time"

	"rtcalarm-go/bus"
	"rtcalarm-go/types"
	"rtcalarm-go/x/timex"
)

var (
	topicConfig = bus.T("config", "heartbeat")
	topicEvent  = bus.T("heartbeat", "event")
)

const defaultInterval = 10 * time.Second

type Service struct {
	// Edges reports interrupt edges since boot; nil means zero.
	Edges func() uint32
	// Thermo is optional; nil omits the temperature field.
	Thermo types.Thermometer
}

func (s *Service) serviceLoop(ctx context.Context, conn *bus.Connection) {
	cfgSub := conn.Subscribe(topicConfig)
	defer conn.Unsubscribe(cfgSub)

	start := time.Now()
	tick := time.NewTicker(defaultInterval)
	defer tick.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			s.publish(conn, start)
		case msg := <-cfgSub.Channel():
			if d, ok := interval(msg.Payload); ok {
				tick.Reset(d)
			}
		}
	}
}

func (s *Service) publish(conn *bus.Connection, start time.Time) {
	ev := types.HeartbeatEvent{
		UpSeconds: uint32(time.Since(start) / time.Second),
		TS:        timex.NowMs(),
	}
	if s.Edges != nil {
		ev.Edges = s.Edges()
	}
	if s.Thermo != nil {
		if mc, err := s.Thermo.Temperature(); err == nil {
			ev.TempMilliC = &mc
		}
	}
	conn.Publish(conn.NewMessage(topicEvent, ev, false))
}

// interval extracts interval_s from a decoded config payload.
func interval(payload any) (time.Duration, bool) {
	m, ok := payload.(map[string]any)
	if !ok {
		return 0, false
	}
	v, ok := m["interval_s"].(float64)
	if !ok || v <= 0 {
		return 0, false
	}
	return time.Duration(v * float64(time.Second)), true
}

// Start launches the heartbeat publisher.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.serviceLoop(ctx, conn)
	return nil
}
