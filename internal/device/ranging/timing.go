package ranging

import (
	"fmt"
	"time"
)

// Mode selects a ranging preset trading rate against maximum distance.
type Mode int

// Ranging mode presets.
const (
	ModeShort Mode = iota
	ModeMedium
	ModeLong
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case ModeShort:
		return "short"
	case ModeMedium:
		return "medium"
	case ModeLong:
		return "long"
	default:
		return "unknown"
	}
}

// ParseMode parses a mode name from configuration.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "short":
		return ModeShort, nil
	case "medium":
		return ModeMedium, nil
	case "long":
		return ModeLong, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
}

// TimingBudgetMS returns the measurement timing budget for the mode.
func (m Mode) TimingBudgetMS() int {
	switch m {
	case ModeMedium:
		return 50
	case ModeLong:
		return 100
	default:
		return 20
	}
}

// SampleInterval returns the expected measurement period for the mode.
func (m Mode) SampleInterval() time.Duration {
	switch m {
	case ModeMedium:
		return 50 * time.Millisecond // 20 Hz
	case ModeLong:
		return 100 * time.Millisecond // 10 Hz
	default:
		return 20 * time.Millisecond // 50 Hz
	}
}

// timeoutMacroPeriods maps a timing budget in milliseconds to the
// sensor's range-timeout register value in macro periods.
var timeoutMacroPeriods = map[int]uint16{
	20:   0x0007,
	33:   0x000B,
	50:   0x000E,
	100:  0x001D,
	200:  0x003C,
	500:  0x009A,
	1000: 0x0134,
}

// TimeoutRegisterValue returns the range-timeout register value for a
// timing budget. The second return is false for unsupported budgets.
func TimeoutRegisterValue(budgetMS int) (uint16, bool) {
	v, ok := timeoutMacroPeriods[budgetMS]
	return v, ok
}

// XSHUT reboot timing: hold the shutdown line low, then allow the
// firmware to boot before re-initialization.
const (
	PowerOffHold = 50 * time.Millisecond
	BootDelay    = 100 * time.Millisecond
)
