package wire

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrBadLength      = errors.New("frame has wrong length")
	ErrBadCount       = errors.New("frame slot count exceeds capacity")
	ErrTooManySamples = errors.New("too many samples for one frame")
	ErrUnknownFormat  = errors.New("unknown wire format")
)
