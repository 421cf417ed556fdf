package device

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrSend        = errors.New("frame send failed")
	ErrSensorDead  = errors.New("ranging sensor unrecoverable")
	ErrBadCapacity = errors.New("invalid ring capacity")
)
