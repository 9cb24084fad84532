package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"staybook/internal/domain"
	"staybook/internal/pkg/cache"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// RoomTypeAvailability is a room type joined with the live minimum
// available count for the requested range.
type RoomTypeAvailability struct {
	domain.RoomType
	Available int `json:"available"`
}

// Service serves the read-side views the booking UI needs. Availability
// answers can be cached in Redis for a short TTL; the cache is advisory
// only, admission always goes through the ledger.
type Service struct {
	hotels    HotelStore
	roomTypes RoomTypeStore
	ledger    AvailabilityReader

	rdb      *redis.Client
	cacheTTL time.Duration
	loggerf  func(format string, args ...interface{})
}

func NewService(hotels HotelStore, roomTypes RoomTypeStore, ledger AvailabilityReader, rdb *redis.Client, cacheTTL time.Duration, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		hotels:    hotels,
		roomTypes: roomTypes,
		ledger:    ledger,
		rdb:       rdb,
		cacheTTL:  cacheTTL,
		loggerf:   loggerf,
	}
}

func (s *Service) ListHotels(ctx context.Context, city string, limit, offset int) ([]domain.Hotel, error) {
	return s.hotels.List(ctx, city, limit, offset)
}

func (s *Service) GetHotel(ctx context.Context, id int64) (*domain.Hotel, error) {
	if id <= 0 {
		return nil, ErrInvalidRequest
	}
	h, err := s.hotels.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return h, nil
}

// RoomTypesWithAvailability lists a hotel's active room types with the
// minimum available count across [checkIn, checkOut).
func (s *Service) RoomTypesWithAvailability(ctx context.Context, hotelID int64, checkIn, checkOut time.Time) ([]RoomTypeAvailability, error) {
	if hotelID <= 0 || !checkOut.After(checkIn) {
		return nil, ErrInvalidRequest
	}
	if _, err := s.GetHotel(ctx, hotelID); err != nil {
		return nil, err
	}

	rts, err := s.roomTypes.GetByHotel(ctx, hotelID)
	if err != nil {
		return nil, err
	}

	out := make([]RoomTypeAvailability, 0, len(rts))
	for _, rt := range rts {
		available, err := s.availability(ctx, rt.ID, checkIn, checkOut)
		if err != nil {
			return nil, err
		}
		out = append(out, RoomTypeAvailability{RoomType: rt, Available: available})
	}
	return out, nil
}

func (s *Service) availability(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time) (int, error) {
	if s.rdb == nil {
		return s.ledger.Availability(ctx, roomTypeID, checkIn, checkOut)
	}

	key, err := s.availabilityKey(ctx, roomTypeID, checkIn, checkOut)
	if err == nil {
		var cached int
		found, getErr := cache.GetJSON(ctx, s.rdb, key, &cached)
		if getErr != nil {
			s.loggerf("level=warn msg=availability cache read failed key=%s err=%v", key, getErr)
		} else if found {
			return cached, nil
		}
	}

	available, err := s.ledger.Availability(ctx, roomTypeID, checkIn, checkOut)
	if err != nil {
		return 0, err
	}

	if key, keyErr := s.availabilityKey(ctx, roomTypeID, checkIn, checkOut); keyErr == nil {
		if setErr := cache.SetJSON(ctx, s.rdb, key, available, s.cacheTTL); setErr != nil {
			s.loggerf("level=warn msg=availability cache write failed key=%s err=%v", key, setErr)
		}
	}
	return available, nil
}

// availabilityKey embeds the room type's cache generation; reserve,
// release and commit bump the generation, orphaning stale entries.
func (s *Service) availabilityKey(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time) (string, error) {
	ver, err := cache.Version(ctx, s.rdb, roomTypeID)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("avail:%d:%d:%s:%s", ver, roomTypeID, checkIn.Format("2006-01-02"), checkOut.Format("2006-01-02")), nil
}
