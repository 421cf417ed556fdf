// Package model contains domain models passed between layers.
package model

// Classification is the outcome of a resolved shot.
type Classification string

const (
	Make Classification = "MAKE"
	Miss Classification = "MISS"
)

// BasketType distinguishes how a made basket was detected.
type BasketType string

const (
	// Swish: the ball crossed the target plane with no preceding impact.
	Swish BasketType = "SWISH"
	// Bank: a rim/board impact preceded the basket crossing.
	Bank BasketType = "BANK"
)

// ShotEvent is one classified shot. ImpactTime and BasketTime are in
// seconds on the device clock; either may be absent depending on how
// the shot resolved.
type ShotEvent struct {
	ID             string
	ImpactTime     *float64
	BasketTime     *float64
	Classification Classification
	BasketType     BasketType // empty unless Classification is Make
	Confidence     float64
}
