// Package diag renders bus traffic into human-readable lines on a serial
// sink. It is the only consumer of alarm and heartbeat events on firmware
// builds; everything else stays on the bus as structured payloads.
package diag

import (
	"context"

	"rtcalarm-go/bus"
	"rtcalarm-go/errcode"
	"rtcalarm-go/types"
	"rtcalarm-go/x/conv"
)

var (
	topicAlarm     = bus.T("alarm", "#")
	topicHeartbeat = bus.T("heartbeat", "event")
)

// Sink receives rendered lines. Implementations add their own line endings.
type Sink interface {
	WriteLine(s string)
}

type Service struct {
	sink Sink
}

func New(sink Sink) *Service {
	return &Service{sink: sink}
}

// Start launches the renderer loop.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) {
	go s.loop(ctx, conn)
}

func (s *Service) loop(ctx context.Context, conn *bus.Connection) {
	alarmSub := conn.Subscribe(topicAlarm)
	defer conn.Unsubscribe(alarmSub)
	hbSub := conn.Subscribe(topicHeartbeat)
	defer conn.Unsubscribe(hbSub)

	for {
		select {
		case <-ctx.Done():
			return
		case m := <-alarmSub.Channel():
			if line, ok := renderAlarmTopic(m.Payload); ok {
				s.sink.WriteLine(line)
			}
		case m := <-hbSub.Channel():
			if ev, ok := m.Payload.(types.HeartbeatEvent); ok {
				s.sink.WriteLine(renderHeartbeat(ev))
			}
		}
	}
}

func renderAlarmTopic(payload any) (string, bool) {
	switch v := payload.(type) {
	case types.ClockState:
		return renderState(v), true
	case types.AlarmEvent:
		return renderAlarm(v), true
	}
	return "", false
}

func renderState(st types.ClockState) string {
	line := "clock " + st.Level
	if st.Status != "" {
		line += " " + st.Status
	}
	return line
}

// renderAlarm produces one line per handled firing. A successful firing is
// the formatted timestamp behind the slot tag; a time-read failure keeps the
// tag but substitutes a fixed diagnostic.
func renderAlarm(ev types.AlarmEvent) string {
	buf := make([]byte, 0, 40)
	buf = append(buf, 'A')
	buf = conv.Itoa(buf, int64(ev.Slot))
	buf = append(buf, ' ')
	switch {
	case ev.Error == string(errcode.TimeReadFailed):
		buf = append(buf, "time unavailable"...)
	case ev.Error != "":
		buf = append(buf, ev.Error...)
	default:
		buf = append(buf, ev.Line...)
	}
	if ev.Warning != "" {
		buf = append(buf, " !"...)
		buf = append(buf, ev.Warning...)
	}
	return string(buf)
}

func renderHeartbeat(ev types.HeartbeatEvent) string {
	buf := make([]byte, 0, 48)
	buf = append(buf, "hb up="...)
	buf = conv.Utoa(buf, uint64(ev.UpSeconds))
	buf = append(buf, "s edges="...)
	buf = conv.Utoa(buf, uint64(ev.Edges))
	if ev.TempMilliC != nil {
		buf = append(buf, " temp="...)
		buf = conv.Itoa(buf, int64(*ev.TempMilliC))
		buf = append(buf, "mC"...)
	}
	return string(buf)
}
