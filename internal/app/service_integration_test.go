package service_test

import (
	"context"
	"net"
	"testing"
	"time"

	service "github.com/jrklab/basket-counting/internal/app"
	"github.com/jrklab/basket-counting/internal/domain/classify"
	"github.com/jrklab/basket-counting/internal/domain/model"
	"github.com/jrklab/basket-counting/internal/wire"
	"github.com/jrklab/basket-counting/pkg/logger"
)

// End-to-end: a frame sent over a real UDP socket flows through the
// queue, decoder, merge, and classifier, and lands in the session store.
func TestServicePipelineEndToEnd(t *testing.T) {
	if err := logger.Init(); err != nil {
		t.Fatalf("logger init: %v", err)
	}

	ctx := context.Background()
	svc := service.New(
		service.WithListenAddr("127.0.0.1:0"),
		service.WithQueueSize(64),
		service.WithWireFormat(wire.FormatBase),
		service.WithClassifierParams(classify.DefaultParams()),
	)
	if err := svc.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer svc.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for svc.UDPAddr() == nil {
		if time.Now().After(deadline) {
			t.Fatal("listener did not bind")
		}
		time.Sleep(5 * time.Millisecond)
	}

	conn, err := net.Dial("udp", svc.UDPAddr().String())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// Impact followed by a basket crossing within the window: a bank shot.
	frame := &wire.Frame{
		TimestampMS: 1150,
		Inertial: []model.InertialSample{
			{TimestampMS: 1000, Ax: int16(5.0 * model.AccelSensitivity)},
		},
		Ranging: []model.RangeSample{
			{TimestampMS: 1100, DistanceMM: 200, SignalRate: 1500},
		},
	}
	data, err := wire.Encode(frame, wire.FormatBase)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := conn.Write(data); err != nil {
		t.Fatalf("write: %v", err)
	}

	deadline = time.Now().Add(3 * time.Second)
	for svc.Count(ctx) < 1 {
		if time.Now().After(deadline) {
			t.Fatal("shot never reached the store")
		}
		time.Sleep(10 * time.Millisecond)
	}

	shots, err := svc.Shots(ctx)
	if err != nil {
		t.Fatalf("shots: %v", err)
	}
	if len(shots) != 1 {
		t.Fatalf("expected 1 shot, got %d", len(shots))
	}
	if shots[0].Classification != string(model.Make) || shots[0].BasketType != string(model.Bank) {
		t.Errorf("unexpected shot %+v", shots[0])
	}

	stats, err := svc.SessionStats(ctx)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Makes != 1 || stats.Total != 1 {
		t.Errorf("unexpected stats %+v", stats)
	}
}
