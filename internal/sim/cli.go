package sim

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/jrklab/basket-counting/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "sim_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the device simulator.
func ShowHelp() {
	os.Stdout.WriteString(`Basket Device Simulator
=======================

Replays synthetic shot scenarios against a running host pipeline over
UDP and verifies the reported session totals.

Usage:
  go run cmd/devicesim/main.go [options]

Options:
  -host string
        UDP address frames are sent to (default "127.0.0.1:5005")
  -url string
        Base URL of the host HTTP API (default "http://localhost:9080")
  -shots int
        Number of shots to simulate (default 20)
  -make-ratio float
        Fraction of shots that score (default 0.6)
  -period duration
        Device frame send interval (default 100ms)
  -sequenced
        Use the sequenced wire format
  -seed int
        Scenario RNG seed (default 1)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for simulation output (default: sim_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Simulate with default settings
  go run cmd/devicesim/main.go

  # A longer session with mostly makes over the sequenced format
  go run cmd/devicesim/main.go -shots 100 -make-ratio 0.8 -sequenced

  # Reproduce a specific scenario
  go run cmd/devicesim/main.go -seed 42
`)
}
