package booking

import (
	"context"
	"errors"
	"time"

	"staybook/internal/domain"
	"staybook/internal/events"

	"gorm.io/gorm"
)

// CanTransition encodes the booking lifecycle graph:
//
//	pending_payment -> confirmed -> {cancelled, refunded}
//	pending_payment -> cancelled
//
// cancelled and refunded are terminal.
func CanTransition(from, to domain.BookingStatus) bool {
	if from.Terminal() {
		return false
	}
	switch from {
	case domain.BookingPendingPayment:
		return to == domain.BookingConfirmed || to == domain.BookingCancelled
	case domain.BookingConfirmed:
		return to == domain.BookingCancelled || to == domain.BookingRefunded
	default:
		return false
	}
}

// Service owns a booking's lifecycle. Every transition is guarded both
// here and by a conditional update in the repository, so a lost race
// surfaces as a refused transition rather than a silent overwrite.
type Service struct {
	bookings BookingRepository
	ledger   InventoryLedger
	intents  IntentReader
	events   EventPublisher
	loggerf  func(format string, args ...interface{})
}

func NewService(
	bookings BookingRepository,
	ledger InventoryLedger,
	intents IntentReader,
	publisher EventPublisher,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		bookings: bookings,
		ledger:   ledger,
		intents:  intents,
		events:   publisher,
		loggerf:  loggerf,
	}
}

// Confirm moves a pending booking to confirmed. Requires the shadow
// intent to report succeeded; the hold commit and the status flip are
// one transaction inside the ledger, so a confirmed booking without a
// consumed hold cannot exist.
func (s *Service) Confirm(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, domain.BookingConfirmed) {
		return nil, ErrInvalidTransition
	}

	intent, err := s.intents.GetByBookingID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if intent.Status != domain.IntentSucceeded {
		return nil, ErrPaymentNotSettled
	}

	if _, err := s.ledger.Commit(ctx, b.HoldID); err != nil {
		return nil, err
	}

	confirmed, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.TypeBookingConfirmed,
		OccurredAt: time.Now().UTC(),
		BookingID:  confirmed.ID,
		HotelID:    confirmed.HotelID,
		Data: map[string]interface{}{
			"room_type_id": confirmed.RoomTypeID,
			"check_in":     confirmed.CheckIn,
			"check_out":    confirmed.CheckOut,
			"total_price":  confirmed.TotalPrice,
		},
	})
	return confirmed, nil
}

// Cancel transitions into cancelled. From pending the hold is
// released; from confirmed the debit stays on the books (re-listing
// after the fact is a refund-policy concern, not a cancellation one).
func (s *Service) Cancel(ctx context.Context, bookingID int64, reason string) (*domain.Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if !CanTransition(b.Status, domain.BookingCancelled) {
		return nil, ErrInvalidTransition
	}

	switch b.Status {
	case domain.BookingPendingPayment:
		rows, err := s.bookings.CancelFromPending(ctx, bookingID, reason)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			// Lost the race against a concurrent confirm or cancel.
			return nil, ErrInvalidTransition
		}
		if err := s.ledger.Release(ctx, b.HoldID); err != nil {
			s.loggerf("level=error msg=hold release on cancel failed booking_id=%d hold_id=%s err=%v", bookingID, b.HoldID, err)
		}

	case domain.BookingConfirmed:
		rows, err := s.bookings.CancelFromConfirmed(ctx, bookingID, reason)
		if err != nil {
			return nil, err
		}
		if rows == 0 {
			return nil, ErrInvalidTransition
		}
	}

	cancelled, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.TypeBookingCancelled,
		OccurredAt: time.Now().UTC(),
		BookingID:  cancelled.ID,
		HotelID:    cancelled.HotelID,
		Data:       map[string]interface{}{"reason": reason},
	})
	return cancelled, nil
}

// Refund flips confirmed to refunded. The conditional update makes the
// transition, and with it the refunded event, happen exactly once no
// matter how many times a retried refund lands here.
func (s *Service) Refund(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.getBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if b.Status == domain.BookingRefunded {
		// Retried refund; already settled.
		return b, nil
	}
	if !CanTransition(b.Status, domain.BookingRefunded) {
		return nil, ErrInvalidTransition
	}

	rows, err := s.bookings.MarkRefunded(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if rows == 0 {
		refreshed, err := s.bookings.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if refreshed.Status == domain.BookingRefunded {
			return refreshed, nil
		}
		return nil, ErrInvalidTransition
	}

	refunded, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	s.publish(ctx, events.Event{
		Type:       events.TypeBookingRefunded,
		OccurredAt: time.Now().UTC(),
		BookingID:  refunded.ID,
		HotelID:    refunded.HotelID,
		Data:       map[string]interface{}{"amount": refunded.TotalPrice},
	})
	return refunded, nil
}

func (s *Service) GetByID(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	return s.getBooking(ctx, bookingID)
}

func (s *Service) getBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.loggerf("level=error msg=event publish failed type=%s booking_id=%d err=%v", e.Type, e.BookingID, err)
	}
}
