package rating

import (
	"context"
	"errors"
	"sync"
	"testing"

	"staybook/internal/events"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReviewSet keeps ratings per hotel in memory and doubles as the
// summary store, mimicking the two repository surfaces.
type fakeReviewSet struct {
	mu        sync.Mutex
	ratings   map[int64][]int
	summaries map[int64]summary

	failures int // AggregateForHotel errors to inject before succeeding
}

type summary struct {
	average float64
	count   int64
}

func newFakeReviewSet() *fakeReviewSet {
	return &fakeReviewSet{
		ratings:   make(map[int64][]int),
		summaries: make(map[int64]summary),
	}
}

func (f *fakeReviewSet) add(hotelID int64, rating int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratings[hotelID] = append(f.ratings[hotelID], rating)
}

func (f *fakeReviewSet) remove(hotelID int64, rating int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rs := f.ratings[hotelID]
	for i, r := range rs {
		if r == rating {
			f.ratings[hotelID] = append(rs[:i], rs[i+1:]...)
			return
		}
	}
}

func (f *fakeReviewSet) AggregateForHotel(_ context.Context, hotelID int64) (int64, float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failures > 0 {
		f.failures--
		return 0, 0, errors.New("aggregate query failed")
	}
	rs := f.ratings[hotelID]
	if len(rs) == 0 {
		return 0, 0, nil
	}
	sum := 0
	for _, r := range rs {
		sum += r
	}
	return int64(len(rs)), float64(sum) / float64(len(rs)), nil
}

func (f *fakeReviewSet) UpdateRatingSummary(_ context.Context, hotelID int64, average float64, count int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries[hotelID] = summary{average: average, count: count}
	return nil
}

func (f *fakeReviewSet) summaryFor(hotelID int64) summary {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaries[hotelID]
}

func TestRecompute_MatchesReviewSet(t *testing.T) {
	set := newFakeReviewSet()
	recorder := &events.Recorder{}
	svc := NewService(set, set, recorder, nil)

	for _, r := range []int{5, 4, 3} {
		set.add(1, r)
		require.NoError(t, svc.OnReviewCreated(context.Background(), 1))
	}

	got := set.summaryFor(1)
	assert.Equal(t, 4.0, got.average)
	assert.Equal(t, int64(3), got.count)

	set.remove(1, 3)
	require.NoError(t, svc.OnReviewRemoved(context.Background(), 1))

	got = set.summaryFor(1)
	assert.Equal(t, 4.5, got.average)
	assert.Equal(t, int64(2), got.count)
}

func TestRecompute_EmptySetZeroesSummary(t *testing.T) {
	set := newFakeReviewSet()
	svc := NewService(set, set, nil, nil)

	set.add(1, 5)
	require.NoError(t, svc.Recompute(context.Background(), 1))
	set.remove(1, 5)
	require.NoError(t, svc.Recompute(context.Background(), 1))

	got := set.summaryFor(1)
	assert.Equal(t, 0.0, got.average)
	assert.Equal(t, int64(0), got.count)
}

func TestRecompute_RetriesTransientFailure(t *testing.T) {
	set := newFakeReviewSet()
	set.add(1, 4)
	set.failures = 2
	svc := NewService(set, set, nil, nil)

	err := svc.Recompute(context.Background(), 1)

	assert.NoError(t, err)
	assert.Equal(t, 4.0, set.summaryFor(1).average)
}

func TestRecompute_ExhaustedRetriesSurfaceError(t *testing.T) {
	set := newFakeReviewSet()
	set.add(1, 4)
	set.failures = recomputeAttempts
	svc := NewService(set, set, nil, nil)

	err := svc.Recompute(context.Background(), 1)

	assert.Error(t, err)
}

func TestRecompute_ConcurrentWritersConverge(t *testing.T) {
	set := newFakeReviewSet()
	svc := NewService(set, set, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			set.add(1, rating)
			_ = svc.Recompute(context.Background(), 1)
		}(1 + i%5)
	}
	wg.Wait()

	// One final pass reads the settled review set; whatever interleaving
	// happened before, the summary now equals the aggregate.
	require.NoError(t, svc.Recompute(context.Background(), 1))

	count, average, err := set.AggregateForHotel(context.Background(), 1)
	require.NoError(t, err)
	got := set.summaryFor(1)
	assert.Equal(t, count, got.count)
	assert.InDelta(t, average, got.average, 0.01)
}

func TestRecompute_PublishesRatingUpdatedEvent(t *testing.T) {
	set := newFakeReviewSet()
	recorder := &events.Recorder{}
	svc := NewService(set, set, recorder, nil)

	set.add(7, 5)
	require.NoError(t, svc.Recompute(context.Background(), 7))

	assert.Equal(t, 1, recorder.CountByType(events.TypeHotelRatingUpdated))
	evs := recorder.Events()
	require.Len(t, evs, 1)
	assert.Equal(t, int64(7), evs[0].HotelID)
	assert.Equal(t, 5.0, evs[0].Data["rating"])
}
