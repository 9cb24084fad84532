package rating

import (
	"context"
	"math"
	"sync"
	"time"

	"staybook/internal/events"
)

const recomputeAttempts = 3

// Service keeps each hotel's rating summary equal to the aggregate of
// its current review set. Every mutation triggers a full recompute;
// recomputes for the same hotel are serialized so concurrent review
// writes converge on the last writer's snapshot.
type Service struct {
	reviews   ReviewAggregator
	summaries SummaryWriter
	publisher events.Publisher
	loggerf   func(format string, args ...interface{})

	locks sync.Map // hotelID -> *sync.Mutex
}

func NewService(reviews ReviewAggregator, summaries SummaryWriter, publisher events.Publisher, loggerf func(format string, args ...interface{})) *Service {
	if publisher == nil {
		publisher = events.Nop{}
	}
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		reviews:   reviews,
		summaries: summaries,
		publisher: publisher,
		loggerf:   loggerf,
	}
}

func (s *Service) OnReviewCreated(ctx context.Context, hotelID int64) error {
	return s.Recompute(ctx, hotelID)
}

func (s *Service) OnReviewRemoved(ctx context.Context, hotelID int64) error {
	return s.Recompute(ctx, hotelID)
}

// Recompute reads the hotel's current review set and writes count and
// mean rating as the summary in one update. A failed pass is retried;
// a stale summary is tolerable only until the next successful pass.
func (s *Service) Recompute(ctx context.Context, hotelID int64) error {
	mu := s.lockHotel(hotelID)
	mu.Lock()
	defer mu.Unlock()

	var lastErr error
	for attempt := 1; attempt <= recomputeAttempts; attempt++ {
		count, average, err := s.reviews.AggregateForHotel(ctx, hotelID)
		if err == nil {
			average = math.Round(average*100) / 100
			err = s.summaries.UpdateRatingSummary(ctx, hotelID, average, count)
			if err == nil {
				s.publish(ctx, hotelID, average, count)
				return nil
			}
		}
		lastErr = err
		s.loggerf("level=warn msg=rating recompute failed hotel_id=%d attempt=%d err=%v", hotelID, attempt, err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt) * 50 * time.Millisecond):
		}
	}
	return lastErr
}

func (s *Service) publish(ctx context.Context, hotelID int64, average float64, count int64) {
	err := s.publisher.Publish(ctx, events.Event{
		Type:       events.TypeHotelRatingUpdated,
		OccurredAt: time.Now().UTC(),
		HotelID:    hotelID,
		Data: map[string]interface{}{
			"rating":       average,
			"rating_count": count,
		},
	})
	if err != nil {
		s.loggerf("level=warn msg=rating event publish failed hotel_id=%d err=%v", hotelID, err)
	}
}

func (s *Service) lockHotel(hotelID int64) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(hotelID, &sync.Mutex{})
	return v.(*sync.Mutex)
}
