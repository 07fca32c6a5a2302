package domain

import "time"

// Refresh reasons.
const (
	RefreshMiss  = "miss"
	RefreshStale = "stale"
)

// RefreshEvent announces that a category was refetched for a location.
type RefreshEvent struct {
	Category   string    `json:"category"`
	LocationID int64     `json:"location_id"`
	Reason     string    `json:"reason"`
	Records    int       `json:"records"`
	FetchedAt  time.Time `json:"fetched_at"`
}
