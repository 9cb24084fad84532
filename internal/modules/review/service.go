package review

import (
	"context"
	"errors"
	"strings"

	"staybook/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type Service struct {
	reviews    ReviewStore
	hotels     HotelGate
	stays      StayGate
	aggregator Aggregator
	loggerf    func(format string, args ...interface{})
}

func NewService(reviews ReviewStore, hotels HotelGate, stays StayGate, aggregator Aggregator, loggerf func(format string, args ...interface{})) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		reviews:    reviews,
		hotels:     hotels,
		stays:      stays,
		aggregator: aggregator,
		loggerf:    loggerf,
	}
}

func (s *Service) Create(ctx context.Context, userID int64, req CreateReviewRequest) (*domain.Review, error) {
	if userID <= 0 || req.HotelID <= 0 || req.Rating < 1 || req.Rating > 5 {
		return nil, ErrInvalidRequest
	}

	if _, err := s.hotels.GetByID(ctx, req.HotelID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	ok, err := s.stays.HasConfirmedBookingForHotel(ctx, userID, req.HotelID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrForbidden
	}

	rv := &domain.Review{
		HotelID: req.HotelID,
		UserID:  userID,
		Rating:  req.Rating,
		Title:   req.Title,
		Comment: req.Comment,
	}
	if err := s.reviews.Create(ctx, rv); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := s.aggregator.OnReviewCreated(ctx, rv.HotelID); err != nil {
		// The review is in; a stale summary heals on the next recompute.
		s.loggerf("level=warn msg=rating recompute after create failed hotel_id=%d err=%v", rv.HotelID, err)
	}
	return rv, nil
}

func (s *Service) GetByHotel(ctx context.Context, hotelID int64, limit, offset int) ([]domain.Review, error) {
	if hotelID <= 0 {
		return nil, ErrInvalidRequest
	}
	return s.reviews.GetByHotel(ctx, hotelID, limit, offset)
}

// Delete removes the caller's own review. Ops can remove any review.
func (s *Service) Delete(ctx context.Context, reviewID, userID int64, role string) error {
	if reviewID <= 0 {
		return ErrInvalidRequest
	}

	rv, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return err
	}
	if rv.UserID != userID && domain.Role(role) != domain.RoleOps {
		return ErrForbidden
	}

	rows, err := s.reviews.Delete(ctx, reviewID)
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	if err := s.aggregator.OnReviewRemoved(ctx, rv.HotelID); err != nil {
		s.loggerf("level=warn msg=rating recompute after delete failed hotel_id=%d err=%v", rv.HotelID, err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value violates unique constraint") ||
		strings.Contains(msg, "SQLSTATE 23505") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
