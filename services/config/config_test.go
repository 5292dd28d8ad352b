package config

import (
	"context"
	"testing"
	"time"

	"rtcalarm-go/bus"
)

func TestConfig_PublishEmbedded_RetainedPerKey(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) {
		if device != "pico-alarm" {
			return nil, false
		}
		return []byte(`{
			"alarm": {"int_pin": 3, "alarm1_seconds": 30},
			"heartbeat": {"interval_s": 10},
			"diag": {"uart": "uart0"}
		}`), true
	}
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(16)
	conn := b.NewConnection("test-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico-alarm")
	svc.Start(ctx, conn)

	// Retained messages arrive on subscribe regardless of ordering.
	sub := conn.Subscribe(bus.T(configPrefix, "#"))

	got := map[string]any{}
	deadline := time.Now().Add(600 * time.Millisecond)
	for len(got) < 3 && time.Now().Before(deadline) {
		select {
		case m := <-sub.Channel():
			if len(m.Topic) != 2 {
				t.Fatalf("unexpected topic: %#v", m.Topic)
			}
			key, ok := m.Topic[1].(string)
			if !ok {
				t.Fatalf("topic[1] type %T, want string", m.Topic[1])
			}
			got[key] = m.Payload
		case <-time.After(10 * time.Millisecond):
		}
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 retained messages, got %d (%v)", len(got), got)
	}

	alarmCfg, ok := got["alarm"].(map[string]any)
	if !ok {
		t.Fatalf("alarm payload type = %T, want map[string]any", got["alarm"])
	}
	if pin, ok := alarmCfg["int_pin"].(float64); !ok || pin != 3 {
		t.Errorf("alarm.int_pin = %#v, want 3", alarmCfg["int_pin"])
	}
	if _, ok := got["heartbeat"]; !ok {
		t.Error("missing heartbeat config")
	}
	if _, ok := got["diag"]; !ok {
		t.Error("missing diag config")
	}
}

func TestConfig_PublishConfig_MissingDevice(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection("test-missing-device")
	svc := NewConfigService()

	if err := svc.publishConfig(context.Background(), conn); err == nil {
		t.Fatal("expected error for missing device ID, got nil")
	}
}

func TestConfig_PublishConfig_NoConfigFound(t *testing.T) {
	oldLookup := EmbeddedConfigLookup
	EmbeddedConfigLookup = func(device string) ([]byte, bool) { return nil, false }
	t.Cleanup(func() { EmbeddedConfigLookup = oldLookup })

	b := bus.NewBus(4)
	conn := b.NewConnection("test-no-config")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "unknown-device")
	if err := svc.publishConfig(ctx, conn); err == nil {
		t.Fatal("expected error for missing embedded config, got nil")
	}
}

func TestConfig_EmbeddedDefaultsParse(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection("test-defaults")
	svc := NewConfigService()

	ctx := context.WithValue(context.Background(), CtxDeviceKey, "pico-alarm")
	if err := svc.publishConfig(ctx, conn); err != nil {
		t.Fatalf("built-in pico-alarm config failed to publish: %v", err)
	}
}
