package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/jrklab/basket-counting/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.ListenAddr, convey.ShouldEqual, ":5005")
				convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":9080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.WireFormat, convey.ShouldEqual, "base")
				convey.So(cfg.AccelThresholdG, convey.ShouldEqual, 4.0)
				convey.So(cfg.DistanceThresholdMM, convey.ShouldEqual, 350)
				convey.So(cfg.SignalRateThreshold, convey.ShouldEqual, 1000)
				convey.So(cfg.MaxTimeAfterImpactS, convey.ShouldEqual, 0.5)
				convey.So(cfg.BlackoutDurationS, convey.ShouldEqual, 1.0)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("BASKET_LISTEN_ADDR", ":6000")
			_ = os.Setenv("BASKET_QUEUE_SIZE", "4096")
			_ = os.Setenv("BASKET_WIRE_FORMAT", "sequenced")
			_ = os.Setenv("BASKET_ACCEL_THRESHOLD_G", "6.5")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.ListenAddr, convey.ShouldEqual, ":6000")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 4096)
				convey.So(cfg.WireFormat, convey.ShouldEqual, "sequenced")
				convey.So(cfg.AccelThresholdG, convey.ShouldEqual, 6.5)
				convey.So(cfg.BlackoutDurationS, convey.ShouldEqual, 1.0) // default kept
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
listen_addr: ":7000"
http_addr: ":7080"
queue_size: 2048
distance_threshold_mm: 400
ranging_mode: "medium"
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BASKET_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.ListenAddr, convey.ShouldEqual, ":7000")
				convey.So(cfg.HTTPAddr, convey.ShouldEqual, ":7080")
				convey.So(cfg.QueueSize, convey.ShouldEqual, 2048)
				convey.So(cfg.DistanceThresholdMM, convey.ShouldEqual, 400)
				convey.So(cfg.RangingMode, convey.ShouldEqual, "medium")
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			yamlContent := `
listen_addr: ":7000"
queue_size: 2048
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BASKET_CONFIG", tmpFile)
			_ = os.Setenv("BASKET_LISTEN_ADDR", ":6000")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.ListenAddr, convey.ShouldEqual, ":6000") // Overridden by env
				convey.So(cfg.QueueSize, convey.ShouldEqual, 2048)     // From file
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("BASKET_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("BASKET_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestConfigValidation(t *testing.T) {
	convey.Convey("Given config validation", t, func() {
		ctx := context.Background()

		cases := []struct {
			name  string
			key   string
			value string
		}{
			{"empty listen addr", "BASKET_LISTEN_ADDR", ""},
			{"empty http addr", "BASKET_HTTP_ADDR", ""},
			{"zero queue size", "BASKET_QUEUE_SIZE", "0"},
			{"negative queue size", "BASKET_QUEUE_SIZE", "-4"},
			{"unknown wire format", "BASKET_WIRE_FORMAT", "compressed"},
			{"zero accel threshold", "BASKET_ACCEL_THRESHOLD_G", "0"},
			{"negative distance threshold", "BASKET_DISTANCE_THRESHOLD_MM", "-1"},
			{"zero signal rate threshold", "BASKET_SIGNAL_RATE_THRESHOLD", "0"},
			{"zero impact window", "BASKET_MAX_TIME_AFTER_IMPACT_S", "0"},
			{"negative blackout", "BASKET_BLACKOUT_DURATION_S", "-0.5"},
			{"zero frame period", "BASKET_FRAME_PERIOD_MS", "0"},
			{"zero ring capacity", "BASKET_RING_CAPACITY", "0"},
			{"zero sensor timeout", "BASKET_SENSOR_TIMEOUT_MS", "0"},
			{"unknown ranging mode", "BASKET_RANGING_MODE", "ultra"},
		}

		for _, tc := range cases {
			tc := tc
			convey.Convey("When the config has "+tc.name, func() {
				clearConfigEnvVars()
				_ = os.Setenv(tc.key, tc.value)
				defer clearConfigEnvVars()

				cfg, err := config.Load(ctx)

				convey.Convey("Then loading fails with a validation error", func() {
					convey.So(err, convey.ShouldNotBeNil)
					convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
					convey.So(cfg, convey.ShouldBeNil)
				})
			})
		}

		convey.Convey("When every threshold is valid but unusual", func() {
			clearConfigEnvVars()
			_ = os.Setenv("BASKET_ACCEL_THRESHOLD_G", "0.001")
			_ = os.Setenv("BASKET_BLACKOUT_DURATION_S", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then loading succeeds", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.AccelThresholdG, convey.ShouldEqual, 0.001)
				convey.So(cfg.BlackoutDurationS, convey.ShouldEqual, 10)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"BASKET_CONFIG",
		"BASKET_LOG_LEVEL",
		"BASKET_LISTEN_ADDR",
		"BASKET_HTTP_ADDR",
		"BASKET_QUEUE_SIZE",
		"BASKET_WIRE_FORMAT",
		"BASKET_ACCEL_THRESHOLD_G",
		"BASKET_DISTANCE_THRESHOLD_MM",
		"BASKET_SIGNAL_RATE_THRESHOLD",
		"BASKET_MAX_TIME_AFTER_IMPACT_S",
		"BASKET_BLACKOUT_DURATION_S",
		"BASKET_FRAME_PERIOD_MS",
		"BASKET_RING_CAPACITY",
		"BASKET_SENSOR_TIMEOUT_MS",
		"BASKET_RANGING_MODE",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "basket-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
