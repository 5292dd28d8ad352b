// Package config publishes the device's embedded configuration onto the bus
// as one retained message per top-level key. Services subscribe to their own
// config/<name> topic and receive the retained copy immediately, so start
// order does not matter.
package config

import (
	"context"
	"errors"

	"rtcalarm-go/bus"

	"github.com/andreyvit/tinyjson"
)

const (
	serviceName  = "config"
	configPrefix = "config"
	CtxDeviceKey = "device" // context key carrying the device ID
)

// EmbeddedConfigLookup resolves a device ID to its raw JSON config. Tests
// and simulators override it; firmware builds use the embedded table.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// publishConfig parses the device's embedded JSON and publishes each
// top-level key as a retained config/<key> message.
func (s *ConfigService) publishConfig(ctx context.Context, conn *bus.Connection) error {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	if device == "" {
		return errors.New("missing device ID in context")
	}

	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return errors.New("no embedded config for device: " + device)
	}

	r := tinyjson.Raw(raw)
	val := r.Value()
	r.EnsureEOF()

	m, ok := val.(map[string]any)
	if !ok {
		return errors.New("embedded config is not a JSON object")
	}

	for k, v := range m {
		conn.Publish(&bus.Message{
			Topic:    bus.T(configPrefix, k),
			Payload:  v,
			Retained: true,
		})
	}
	return nil
}

// Start launches the config publisher in a goroutine.
func (s *ConfigService) Start(ctx context.Context, conn *bus.Connection) {
	go func() {
		_ = s.publishConfig(ctx, conn)
	}()
}
