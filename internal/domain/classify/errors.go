package classify

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrInvalidParams = errors.New("invalid classifier params")
)
