package ports

import (
	"context"

	"DisruptionMonitor/internal/domain"
)

// PageFetcher retrieves the raw HTML of the disruptions listing page.
type PageFetcher interface {
	FetchPage(ctx context.Context) (string, error)
}

// ParseExecutor runs a CPU-bound job off the caller's critical path and
// waits for it to finish.
type ParseExecutor interface {
	Do(ctx context.Context, job func()) error
}

// DisruptionSource produces a fresh per-location fetch result. Implemented
// by the fetch pipeline, consumed by refresh coordinators.
type DisruptionSource interface {
	Fetch(ctx context.Context, loc domain.Location, keepSolvedDays int) (domain.FetchResult, error)
}
