package sim

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/jrklab/basket-counting/internal/device"
	"github.com/jrklab/basket-counting/internal/domain/model"
	"github.com/jrklab/basket-counting/internal/domain/types"
	"github.com/jrklab/basket-counting/internal/wire"
	"github.com/jrklab/basket-counting/pkg/logger"
)

// How long the runner polls the host for the session totals to settle.
const settleTimeout = 10 * time.Second

// Run executes a complete simulation: generate a scenario, replay it
// over UDP through the device packetizer, and verify the session totals
// reported by the host.
func Run(ctx context.Context, config *Config) error {
	stats := &Stats{
		StartTime:    time.Now(),
		ShotsPlanned: config.Shots,
	}

	logger.Get().Info(ctx, "starting shot simulation",
		logger.String("hostAddr", config.HostAddr),
		logger.String("baseURL", config.BaseURL),
		logger.Int("shots", config.Shots),
		logger.Float64("makeRatio", config.MakeRatio),
		logger.Any("sequenced", config.Sequenced),
		logger.Any("seed", config.Seed),
	)

	client := newHTTPClient(config.Timeout)

	if err := checkHostHealth(ctx, client, config); err != nil {
		return fmt.Errorf("host health check failed: %w", err)
	}
	if err := resetSession(ctx, client, config); err != nil {
		return fmt.Errorf("session reset failed: %w", err)
	}

	scenario := Generate(config.Shots, config.MakeRatio, config.Seed)
	stats.ExpectedMakes = scenario.WantMakes
	stats.ExpectedMisses = scenario.WantMisses
	stats.SamplesSent = len(scenario.Samples)

	if err := replay(ctx, config, scenario, stats); err != nil {
		return fmt.Errorf("replay failed: %w", err)
	}

	if err := verify(ctx, client, config, scenario, stats); err != nil {
		return fmt.Errorf("verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)

	logger.Get().Info(ctx, "simulation completed successfully")
	return nil
}

// checkHostHealth verifies the host pipeline is up.
func checkHostHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to host: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("host health check failed with status: %d", resp.StatusCode)
	}

	logger.Get().Info(ctx, "host is healthy")
	return nil
}

// resetSession starts the host on a clean session so totals are
// attributable to this run.
func resetSession(ctx context.Context, client *HTTPClient, config *Config) error {
	resp, err := client.Delete(ctx, config.BaseURL+"/shots")
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("session reset failed with status: %d", resp.StatusCode)
	}
	return nil
}

// replay pushes the scenario through a real packetizer and sends the
// resulting frames over UDP. Simulated time advances frame by frame;
// wall-clock pacing is not reproduced.
func replay(ctx context.Context, config *Config, scenario *Scenario, stats *Stats) error {
	format := wire.FormatBase
	if config.Sequenced {
		format = wire.FormatSequenced
	}

	sender, err := device.NewUDPSender(config.HostAddr)
	if err != nil {
		return err
	}
	defer func() { _ = sender.Close() }()

	var simNow uint32
	p, err := device.NewPacketizer(len(scenario.Samples), format, sender,
		device.WithClock(func() uint32 { return simNow }))
	if err != nil {
		return err
	}

	period := uint32(config.FramePeriod.Milliseconds())
	if period == 0 {
		period = 100
	}

	next := 0
	end := scenario.Duration() + period
	for simNow = period; simNow <= end; simNow += period {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("replay cancelled: %w", err)
		}

		for next < len(scenario.Samples) && scenario.Samples[next].TimestampMS() < simNow {
			s := scenario.Samples[next]
			switch s.Class {
			case model.SensorInertial:
				p.PushInertial(s.Inertial)
			case model.SensorRanging:
				p.PushRange(s.Range)
			}
			next++
		}

		// Keep flushing until the backlog fits the frame budget, the
		// way the firmware catches up after a burst.
		for {
			if err := p.Flush(ctx); err != nil {
				return err
			}
			stats.FramesSent++
			in, rng := p.Backlog()
			if in == 0 && rng == 0 {
				break
			}
		}
	}

	logger.Get().Info(ctx, "replay finished",
		logger.Int("frames", stats.FramesSent),
		logger.Int("samples", stats.SamplesSent),
	)
	return nil
}

// verify polls the host until the reported totals match the scenario.
func verify(ctx context.Context, client *HTTPClient, config *Config, scenario *Scenario, stats *Stats) error {
	statsURL := config.BaseURL + "/stats"
	wantTotal := scenario.WantMakes + scenario.WantMisses

	deadline := time.Now().Add(settleTimeout)
	var reported types.Stats
	for {
		if err := client.getJSON(ctx, statsURL, &reported); err != nil {
			return err
		}
		if reported.Total >= wantTotal || time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("verification cancelled: %w", ctx.Err())
		case <-time.After(100 * time.Millisecond):
		}
	}

	stats.ReportedMakes = reported.Makes
	stats.ReportedMisses = reported.Misses

	if reported.Makes != scenario.WantMakes || reported.Misses != scenario.WantMisses {
		return fmt.Errorf("session totals mismatch: want %d makes / %d misses, host reports %d / %d",
			scenario.WantMakes, scenario.WantMisses, reported.Makes, reported.Misses)
	}

	var shots []types.Shot
	if err := client.getJSON(ctx, config.BaseURL+"/shots", &shots); err != nil {
		return err
	}
	if len(shots) != wantTotal {
		return fmt.Errorf("shot list mismatch: want %d shots, host reports %d", wantTotal, len(shots))
	}

	logger.Get().Info(ctx, "host totals match the scenario",
		logger.Int("makes", reported.Makes),
		logger.Int("misses", reported.Misses),
	)
	return nil
}

// displayFinalStats logs the run summary.
func displayFinalStats(ctx context.Context, stats *Stats) {
	logger.Get().Info(ctx, "simulation summary",
		logger.Int("shotsPlanned", stats.ShotsPlanned),
		logger.Int("framesSent", stats.FramesSent),
		logger.Int("samplesSent", stats.SamplesSent),
		logger.Int("expectedMakes", stats.ExpectedMakes),
		logger.Int("expectedMisses", stats.ExpectedMisses),
		logger.Int("reportedMakes", stats.ReportedMakes),
		logger.Int("reportedMisses", stats.ReportedMisses),
		logger.String("duration", stats.Duration.String()),
	)
}
