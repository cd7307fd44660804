package usecase

import "time"

const (
	// DefaultQuoteMaxAge is the staleness threshold used when callers do
	// not supply one.
	DefaultQuoteMaxAge = 15 * time.Minute

	// SearchHistoryRetention is how long search history rows are kept
	// during cleanup.
	SearchHistoryRetention = 30 * 24 * time.Hour
)
