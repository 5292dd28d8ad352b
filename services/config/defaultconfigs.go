package config

// Embedded per-device configuration. Key is the device ID placed in ctx
// under CtxDeviceKey, value is that device's raw JSON.

const cfgPicoAlarm = `{
  "alarm": {
    "int_pin": 3,
    "alarm1_seconds": 30,
    "alarm2_interval_min": 2,
    "detect_retry_ms": 3000,
    "poll_ms": 10
  },
  "heartbeat": {
    "interval_s": 10
  },
  "diag": {
    "uart": "uart0",
    "baud": 115200
  }
}`

var embeddedConfigs = map[string][]byte{
	"pico-alarm": []byte(cfgPicoAlarm),
}
