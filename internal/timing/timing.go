// Package timing holds the pacing constants for human-like interaction.
package timing

import "time"

const (
	// Navigation and settle waits.
	PageLoadTimeout    = 30 * time.Second
	NetworkIdleTimeout = 5 * time.Second
	NetworkIdleWindow  = 500 * time.Millisecond
	RenderGrace        = 300 * time.Millisecond

	// Human pacing between actions.
	MinActionDelay = 500 * time.Millisecond
	MaxActionDelay = 2 * time.Second

	// Delays around sensitive flows.
	PostLoginWait    = 3 * time.Second
	BetweenJobsDelay = 5 * time.Second
	ManualSolveWait  = 2 * time.Minute

	// Retry policy.
	MaxRetries       = 3
	RetryBaseBackoff = 2 * time.Second
)

// Backoff returns the delay before retry attempt n (0-based), doubling
// each time from RetryBaseBackoff.
func Backoff(attempt int) time.Duration {
	d := RetryBaseBackoff
	for i := 0; i < attempt; i++ {
		d *= 2
	}
	return d
}
