package rating

import "context"

// ReviewAggregator reads the full review set for a hotel. The
// recompute path always goes through this wholesale read; the summary
// is never adjusted by delta arithmetic.
type ReviewAggregator interface {
	AggregateForHotel(ctx context.Context, hotelID int64) (count int64, average float64, err error)
}

type SummaryWriter interface {
	UpdateRatingSummary(ctx context.Context, hotelID int64, average float64, count int64) error
}
