package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/jrklab/basket-counting/internal/sim"
)

// Default configuration constants.
const (
	defaultShots      = 20
	defaultMakeRatio  = 0.6
	defaultPeriod     = 100 * time.Millisecond
	defaultTimeout    = 30 * time.Second
	defaultSimTimeout = 10 * time.Minute
)

func main() {
	var (
		hostAddr  = flag.String("host", "127.0.0.1:5005", "UDP address frames are sent to")
		baseURL   = flag.String("url", "http://localhost:9080", "Base URL of the host HTTP API")
		shots     = flag.Int("shots", defaultShots, "Number of shots to simulate")
		makeRatio = flag.Float64("make-ratio", defaultMakeRatio, "Fraction of shots that score")
		period    = flag.Duration("period", defaultPeriod, "Device frame send interval")
		sequenced = flag.Bool("sequenced", false, "Use the sequenced wire format")
		seed      = flag.Int64("seed", 1, "Scenario RNG seed")
		timeout   = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile   = flag.String("log", "", "Log file for simulation output (default: sim_log_TIMESTAMP.log)")
		verbose   = flag.Bool("verbose", false, "Enable verbose logging")
		help      = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		sim.ShowHelp()
		return
	}

	// Setup logging
	if err := sim.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	// Create context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), defaultSimTimeout)
	defer cancel()

	// Create simulation configuration
	config := &sim.Config{
		HostAddr:    *hostAddr,
		BaseURL:     *baseURL,
		Shots:       *shots,
		MakeRatio:   *makeRatio,
		FramePeriod: *period,
		Timeout:     *timeout,
		Seed:        *seed,
		Sequenced:   *sequenced,
		LogFile:     *logFile,
		Verbose:     *verbose,
	}

	// Run the simulation
	if err := sim.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Simulation failed: " + err.Error() + "\n")
		return
	}
}
