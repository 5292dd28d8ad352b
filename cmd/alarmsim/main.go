//go:build !rp2040 && !rp2350

// Command alarmsim runs the alarm node against the simulated clock on a
// host machine. Simulated time is compressed: one simulated second passes
// every couple of milliseconds of wall time, so a five-minute scenario
// finishes in about a second while exercising the full dispatch pipeline.
//
//	go run ./cmd/alarmsim -scenario scenarios/faulty-boot.yaml
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"rtcalarm-go/bus"
	"rtcalarm-go/drivers/clocksim"
	"rtcalarm-go/internal/scenario"
	"rtcalarm-go/services/alarm"
	"rtcalarm-go/services/alarm/platform"
	"rtcalarm-go/services/diag"
	"rtcalarm-go/services/heartbeat"
)

func main() {
	path := flag.String("scenario", "", "scenario YAML file; empty runs the built-in default")
	flag.Parse()

	sc := scenario.Default()
	if *path != "" {
		var err error
		sc, err = scenario.Load(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	cfg := alarm.Config{
		IntPin:         sc.Alarm.IntPin,
		Alarm1Seconds:  sc.Alarm.Alarm1Seconds,
		Alarm2Interval: sc.Alarm.Alarm2Interval,
		DetectRetryMs:  sc.Alarm.DetectRetryMs,
		PollMs:         sc.Alarm.PollMs,
	}
	if cfg.DetectRetryMs == 0 {
		// Keep retries snappy under compressed time.
		cfg.DetectRetryMs = 50
	}
	if cfg.PollMs == 0 {
		cfg.PollMs = 1
	}

	clock := clocksim.New(sc.StartTime())
	clock.FailDetect(sc.DetectFailures)
	if sc.OscillatorStopped {
		clock.StopOscillator()
	}

	b := bus.NewBus(64)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	diag.New(diag.NewStdoutSink()).Start(ctx, b.NewConnection("diag"))

	pin, _ := platform.DefaultPinFactory().ByNumber(cfg.IntPin)
	svc := alarm.New(b.NewConnection("alarm"), clock, pin, cfg)

	// The simulated INT line: a new firing pulls the fake pin low.
	if fp, ok := pin.(*platform.FakePin); ok {
		clock.OnInterrupt(fp.Trigger)
	}

	hb := &heartbeat.Service{Edges: svc.Edges, Thermo: clock}
	_ = hb.Start(ctx, b.NewConnection("heartbeat"))

	done := make(chan struct{})
	go func() {
		svc.Run(ctx)
		close(done)
	}()

	readErr := errors.New("simulated bus fault")
	for s := 1; s <= sc.DurationS; s++ {
		if sc.ReadErrorAtS != 0 {
			if s == sc.ReadErrorAtS {
				clock.SetReadError(readErr)
			} else if s == sc.ReadErrorAtS+1 {
				clock.SetReadError(nil)
			}
		}
		clock.Advance(time.Second)
		time.Sleep(2 * time.Millisecond)
	}

	// Let in-flight dispatches drain before shutting down.
	time.Sleep(100 * time.Millisecond)
	cancel()
	<-done
	time.Sleep(50 * time.Millisecond)
}
