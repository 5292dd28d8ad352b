//go:build rp2040 || rp2350

// Command pico-alarm: DS3231 alarm node firmware for RP2040/RP2350.
//
// Build/flash (TinyGo):
//
//	tinygo flash -target pico ./cmd/pico-alarm
//
// Wiring assumptions:
//   - DS3231 on I2C0 @ 400 kHz, Pico defaults: SDA=GP4, SCL=GP5.
//   - INT/SQW wired to the configured GPIO (GP3 by default). The line is
//     open-drain; the pin is pulled up in firmware.
//   - Diagnostics on UART0 at 115200.
package main

import (
	"context"
	"time"

	"rtcalarm-go/bus"
	"rtcalarm-go/services/alarm"
	"rtcalarm-go/services/alarm/platform"
	"rtcalarm-go/services/config"
	"rtcalarm-go/services/diag"
	"rtcalarm-go/services/heartbeat"
	"rtcalarm-go/types"
)

func main() {
	// Let USB serial settle before the first prints.
	time.Sleep(3 * time.Second)
	println("== rtcalarm: pico-alarm ==")

	b := bus.NewBus(64)
	ctx := context.WithValue(context.Background(), config.CtxDeviceKey, "pico-alarm")

	config.NewConfigService().Start(ctx, b.NewConnection("config"))

	conn := b.NewConnection("main")
	alarmCfg, ok := awaitAlarmConfig(conn)
	if !ok {
		println("warn: no alarm config, using defaults")
	}
	uartName, baud := awaitDiagConfig(conn)

	diag.New(diag.NewUARTSink(uartName, baud)).Start(ctx, b.NewConnection("diag"))

	clock := alarm.NewDS3231Clock(platform.DefaultI2C())

	pin, ok := platform.DefaultPinFactory().ByNumber(alarmCfg.IntPin)
	if !ok {
		println("warn: unknown INT pin", alarmCfg.IntPin, "- running without interrupts")
		pin = nil
	}

	svc := alarm.New(b.NewConnection("alarm"), clock, pin, alarmCfg)

	hb := &heartbeat.Service{Edges: svc.Edges}
	if th, ok := clock.(types.Thermometer); ok {
		hb.Thermo = th
	}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	svc.Run(ctx)
}

// awaitAlarmConfig picks up the retained config/alarm message.
func awaitAlarmConfig(conn *bus.Connection) (alarm.Config, bool) {
	payload, ok := awaitRetained(conn, bus.T("config", "alarm"))
	if !ok {
		return alarm.Config{}, false
	}
	cfg, err := alarm.DecodeConfig(payload)
	if err != nil {
		return alarm.Config{}, false
	}
	return cfg, true
}

func awaitDiagConfig(conn *bus.Connection) (string, uint32) {
	name, baud := "uart0", uint32(115200)
	payload, ok := awaitRetained(conn, bus.T("config", "diag"))
	if !ok {
		return name, baud
	}
	m, ok := payload.(map[string]any)
	if !ok {
		return name, baud
	}
	if s, ok := m["uart"].(string); ok && s != "" {
		name = s
	}
	if f, ok := m["baud"].(float64); ok && f > 0 {
		baud = uint32(f)
	}
	return name, baud
}

func awaitRetained(conn *bus.Connection, topic bus.Topic) (any, bool) {
	sub := conn.Subscribe(topic)
	defer conn.Unsubscribe(sub)
	select {
	case m := <-sub.Channel():
		return m.Payload, true
	case <-time.After(2 * time.Second):
		return nil, false
	}
}
