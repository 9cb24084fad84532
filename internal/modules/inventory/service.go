package inventory

import (
	"context"
	"errors"
	"sync"
	"time"

	"staybook/internal/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Service is the authoritative ledger of bookable room-nights. All
// admission decisions for a room type pass through its per-room-type
// critical section, so two concurrent requests for the last unit on
// the same night can never both succeed.
type Service struct {
	holds          HoldRepository
	roomTypes      RoomTypeReader
	invalidator    CacheInvalidator
	holdTTL        time.Duration
	relistOnRefund bool
	loggerf        func(format string, args ...interface{})

	locks sync.Map // roomTypeID -> *sync.Mutex
}

func NewService(
	holds HoldRepository,
	roomTypes RoomTypeReader,
	invalidator CacheInvalidator,
	holdTTL time.Duration,
	relistOnRefund bool,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		holds:          holds,
		roomTypes:      roomTypes,
		invalidator:    invalidator,
		holdTTL:        holdTTL,
		relistOnRefund: relistOnRefund,
		loggerf:        loggerf,
	}
}

func (s *Service) lockRoomType(roomTypeID int64) *sync.Mutex {
	v, _ := s.locks.LoadOrStore(roomTypeID, &sync.Mutex{})
	return v.(*sync.Mutex)
}

// TryReserve admits or rejects a reservation attempt. The availability
// check and the hold insert happen under the room type's lock, as one
// atomic unit with respect to overlapping attempts.
func (s *Service) TryReserve(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time, quantity int) (*domain.Hold, error) {
	if quantity < 1 || !checkOut.After(checkIn) {
		return nil, ErrValidation
	}

	mu := s.lockRoomType(roomTypeID)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	minAvail, err := s.minAvailability(ctx, roomTypeID, checkIn, checkOut, now)
	if err != nil {
		return nil, err
	}
	if quantity > minAvail {
		return nil, ErrInsufficientInventory
	}

	h := &domain.Hold{
		ID:         uuid.NewString(),
		RoomTypeID: roomTypeID,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Quantity:   quantity,
		ExpiresAt:  now.Add(s.holdTTL),
	}
	if err := s.holds.CreateHold(ctx, h); err != nil {
		return nil, err
	}

	s.bumpCache(ctx, roomTypeID)
	return h, nil
}

// Availability returns the minimum free count across every night of
// the range: a stay spanning a low-availability date is bounded by it.
func (s *Service) Availability(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time) (int, error) {
	if !checkOut.After(checkIn) {
		return 0, ErrValidation
	}
	return s.minAvailability(ctx, roomTypeID, checkIn, checkOut, time.Now().UTC())
}

func (s *Service) minAvailability(ctx context.Context, roomTypeID int64, checkIn, checkOut, now time.Time) (int, error) {
	rt, err := s.roomTypes.GetByID(ctx, roomTypeID)
	if err != nil {
		return 0, err
	}

	holds, err := s.holds.ActiveHolds(ctx, roomTypeID, checkIn, checkOut, now)
	if err != nil {
		return 0, err
	}
	debits, err := s.holds.DebitStays(ctx, roomTypeID, checkIn, checkOut, s.relistOnRefund)
	if err != nil {
		return 0, err
	}

	min := rt.TotalQuantity
	for day := checkIn; day.Before(checkOut); day = day.AddDate(0, 0, 1) {
		reserved := 0
		for _, h := range holds {
			if covers(h.CheckIn, h.CheckOut, day) {
				reserved += h.Quantity
			}
		}
		for _, d := range debits {
			if covers(d.CheckIn, d.CheckOut, day) {
				reserved += d.Quantity
			}
		}

		avail := rt.TotalQuantity - reserved
		if avail < 0 {
			s.loggerf("level=error msg=negative availability room_type_id=%d day=%s available=%d", roomTypeID, day.Format("2006-01-02"), avail)
			return 0, ErrInvariantViolation
		}
		if avail < min {
			min = avail
		}
	}
	return min, nil
}

// covers reports whether a [checkIn, checkOut) stay occupies the night
// starting on day.
func covers(checkIn, checkOut, day time.Time) bool {
	return !day.Before(checkIn) && day.Before(checkOut)
}

// Release frees a hold. Releasing a hold the sweep already reclaimed
// is not an error; every failure path after reservation calls this and
// must be able to do so safely.
func (s *Service) Release(ctx context.Context, holdID string) error {
	h, err := s.holds.GetHold(ctx, holdID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	if _, err := s.holds.DeleteHold(ctx, holdID); err != nil {
		return err
	}
	s.bumpCache(ctx, h.RoomTypeID)
	return nil
}

// AttachBooking links a freshly persisted booking to its hold so the
// sweep-independent commit path can find it.
func (s *Service) AttachBooking(ctx context.Context, holdID string, bookingID int64) error {
	if err := s.holds.AttachBooking(ctx, holdID, bookingID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrHoldNotFound
		}
		return err
	}
	return nil
}

// Commit converts the hold into a permanent debit: the owning booking
// becomes confirmed and the hold row is consumed, in one transaction.
// A missing or expired hold here means the pairing discipline broke.
func (s *Service) Commit(ctx context.Context, holdID string) (*domain.Hold, error) {
	now := time.Now().UTC()
	h, err := s.holds.CommitHold(ctx, holdID, now)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.loggerf("level=error msg=commit without live hold hold_id=%s", holdID)
			return nil, ErrInvariantViolation
		}
		return nil, err
	}

	s.bumpCache(ctx, h.RoomTypeID)
	return h, nil
}

// SweepExpired reclaims abandoned holds. Runs on a schedule regardless
// of whether the request handlers that created them are still alive.
func (s *Service) SweepExpired(ctx context.Context) (int64, error) {
	reclaimed, err := s.holds.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	if reclaimed > 0 {
		s.loggerf("level=info msg=expired holds reclaimed count=%d", reclaimed)
	}
	return reclaimed, nil
}

func (s *Service) bumpCache(ctx context.Context, roomTypeID int64) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.BumpVersion(ctx, roomTypeID); err != nil {
		s.loggerf("level=error msg=availability cache bump failed room_type_id=%d err=%v", roomTypeID, err)
	}
}
