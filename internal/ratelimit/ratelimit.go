// Package ratelimit enforces per-organisation call budgets on the listing
// endpoints. Checking and recording are split on purpose: the pipeline only
// records usage after every gate has passed, so rejected requests never
// consume budget.
package ratelimit

import "context"

// Limiter is the call-budget contract consumed by the orchestrators.
//
// Implementations must count correctly under concurrent Record calls; the
// pipeline adds no locking of its own. Infrastructure errors fail open: a
// broken counter must not take the API down.
type Limiter interface {
	// IsWithinLimit reports whether identifier still has budget for endpoint.
	IsWithinLimit(ctx context.Context, identifier, endpoint string) bool

	// Record consumes one unit of budget. Called exactly once per request
	// that passed all gates.
	Record(ctx context.Context, identifier, endpoint string) error

	// Remaining returns the budget left in the current window.
	Remaining(ctx context.Context, identifier, endpoint string) int
}
