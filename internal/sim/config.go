// Package sim generates synthetic shot scenarios and replays them
// against a running host through the real device packetizer and wire
// codec, then verifies the session totals over the HTTP API.
package sim

import "time"

// Config holds configuration for a simulation run.
type Config struct {
	HostAddr    string        // UDP address frames are sent to
	BaseURL     string        // Base URL of the host HTTP API
	Shots       int           // Number of shots to simulate
	MakeRatio   float64       // Fraction of shots that score
	FramePeriod time.Duration // Device frame send interval
	Timeout     time.Duration // HTTP request timeout
	Seed        int64         // Scenario RNG seed
	Sequenced   bool          // Use the sequenced wire format
	LogFile     string        // Log file for simulation output
	Verbose     bool          // Enable verbose logging
}

// Stats holds simulation statistics.
type Stats struct {
	ShotsPlanned   int
	FramesSent     int
	SamplesSent    int
	ExpectedMakes  int
	ExpectedMisses int
	ReportedMakes  int
	ReportedMisses int
	StartTime      time.Time
	EndTime        time.Time
	Duration       time.Duration
}
