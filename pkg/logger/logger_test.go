package logger

import (
	"context"
	"testing"
)

func TestInitAndGet(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	l := Get()
	if l == nil {
		t.Fatal("Get returned nil after Init")
	}

	// Named loggers should be distinct instances.
	named := l.Named("decoder")
	if named == nil {
		t.Fatal("Named returned nil")
	}

	// Logging must not panic with mixed field types.
	ctx := context.Background()
	named.Info(ctx, "frame decoded",
		String("variant", "base"),
		Int("inertial", 20),
		Uint32("frame_ts", 123456),
		Float64("magnitude", 4.5),
	)
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	cases := []struct {
		level   string
		wantErr bool
	}{
		{"debug", false},
		{"info", false},
		{"", false},
		{"WARN", false},
		{"warning", false},
		{"error", false},
		{"  info  ", false},
		{"verbose", true},
	}

	for _, tc := range cases {
		err := SetLevelString(tc.level)
		if tc.wantErr && err == nil {
			t.Errorf("SetLevelString(%q): expected error, got nil", tc.level)
		}
		if !tc.wantErr && err != nil {
			t.Errorf("SetLevelString(%q): unexpected error %v", tc.level, err)
		}
	}
}
