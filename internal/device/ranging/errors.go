package ranging

import (
	"errors"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrUnknownMode = errors.New("unknown ranging mode")
	ErrStale       = errors.New("ranging data stale")
	ErrRecovery    = errors.New("sensor recovery failed")
)
