// Package types contains common read shapes shared across the application.
package types

// Stats summarizes a session's classified shots.
type Stats struct {
	Session    string  `json:"session"`
	Makes      int     `json:"makes"`
	Misses     int     `json:"misses"`
	Total      int     `json:"total"`
	Percentage float64 `json:"percentage"`
}

// Shot mirrors the read shape returned by shot queries.
type Shot struct {
	ID             string   `json:"id"`
	ImpactTime     *float64 `json:"impact_time"`
	BasketTime     *float64 `json:"basket_time"`
	Classification string   `json:"classification"`
	BasketType     string   `json:"basket_type,omitempty"`
	Confidence     float64  `json:"confidence"`
}
