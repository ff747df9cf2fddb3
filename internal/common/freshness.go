package common

import "time"

// Freshness TTLs for cached data
const (
	FreshnessQuote = 15 * time.Minute // price quotes within one digest batch
	FreshnessNews  = 6 * time.Hour
)

// IsFresh returns true if the given timestamp is within the TTL
func IsFresh(updated time.Time, ttl time.Duration) bool {
	if updated.IsZero() {
		return false
	}
	return time.Since(updated) < ttl
}
