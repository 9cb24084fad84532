package reservation

import (
	"context"
	"errors"
	"math"
	"strconv"
	"time"

	"staybook/internal/domain"
	"staybook/internal/modules/booking"
	"staybook/internal/modules/payment"

	"gorm.io/gorm"
)

// Service sequences a booking attempt across the ledger, the payment
// provider and the state machine. The provider cannot join a local
// transaction, so every step carries an explicit compensation and a
// failure unwinds the prior steps in reverse order.
type Service struct {
	ledger    Ledger
	gateway   Gateway
	bookings  BookingStore
	intents   IntentStore
	machine   StateMachine
	roomTypes RoomTypeReader

	currency       string
	confirmTimeout time.Duration
	confirmPoll    time.Duration
	loggerf        func(format string, args ...interface{})
}

func NewService(
	ledger Ledger,
	gateway Gateway,
	bookings BookingStore,
	intents IntentStore,
	machine StateMachine,
	roomTypes RoomTypeReader,
	currency string,
	confirmTimeout, confirmPoll time.Duration,
	loggerf func(format string, args ...interface{}),
) *Service {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Service{
		ledger:         ledger,
		gateway:        gateway,
		bookings:       bookings,
		intents:        intents,
		machine:        machine,
		roomTypes:      roomTypes,
		currency:       currency,
		confirmTimeout: confirmTimeout,
		confirmPoll:    confirmPoll,
		loggerf:        loggerf,
	}
}

// PlaceBooking runs the reservation saga up to its suspension point:
// inventory held, intent created, booking persisted pending payment.
// Rejected requests never touch the ledger.
func (s *Service) PlaceBooking(ctx context.Context, req PlaceBookingRequest) (*PlaceBookingResult, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	rt, err := s.roomTypes.GetByID(ctx, req.RoomTypeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if !rt.IsActive {
		return nil, ErrNotFound
	}
	if req.Guests > rt.Capacity*req.Rooms {
		return nil, ErrValidation
	}

	nights := int(req.CheckOut.Sub(req.CheckIn).Hours() / 24)
	total := math.Round(rt.NightlyPrice*float64(nights)*float64(req.Rooms)*100) / 100

	// Step 1: provisional hold.
	hold, err := s.ledger.TryReserve(ctx, req.RoomTypeID, req.CheckIn, req.CheckOut, req.Rooms)
	if err != nil {
		return nil, err
	}

	// Step 2: payment intent sized to the computed total.
	intent, err := s.gateway.CreateIntent(ctx, total, s.currency, map[string]string{
		"room_type_id": itoa(req.RoomTypeID),
		"user_id":      itoa(req.UserID),
	})
	if err != nil {
		s.releaseHold(ctx, hold.ID)
		return nil, err
	}

	// Step 3: persist the booking in pending_payment.
	b := &domain.Booking{
		UserID:          req.UserID,
		HotelID:         rt.HotelID,
		RoomTypeID:      req.RoomTypeID,
		CheckIn:         req.CheckIn,
		CheckOut:        req.CheckOut,
		Rooms:           req.Rooms,
		Guests:          req.Guests,
		TotalPrice:      total,
		Currency:        s.currency,
		Status:          domain.BookingPendingPayment,
		HoldID:          hold.ID,
		PaymentIntentID: intent.ID,
	}
	if err := s.bookings.Create(ctx, b); err != nil {
		s.cancelIntent(ctx, intent.ID)
		s.releaseHold(ctx, hold.ID)
		return nil, err
	}

	// Step 4: shadow the intent and tie the hold to its booking so the
	// commit path and the sweep both know who owns what.
	shadow := &domain.PaymentIntent{
		ID:        intent.ID,
		BookingID: b.ID,
		Amount:    total,
		Currency:  s.currency,
		Status:    intent.Status,
	}
	if err := s.intents.Create(ctx, shadow); err != nil {
		s.unwindPending(ctx, b.ID, hold.ID, intent.ID, "bootstrap failed")
		return nil, err
	}
	if err := s.ledger.AttachBooking(ctx, hold.ID, b.ID); err != nil {
		s.unwindPending(ctx, b.ID, hold.ID, intent.ID, "bootstrap failed")
		return nil, err
	}

	return &PlaceBookingResult{Booking: b, ClientSecret: intent.ClientSecret}, nil
}

// ConfirmPayment polls the provider until the intent settles or the
// configured ceiling passes. This is the saga's only suspension point;
// on timeout the booking is cancelled and the hold freed rather than
// kept hostage to a stalled provider.
func (s *Service) ConfirmPayment(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.Status == domain.BookingConfirmed {
		return b, nil
	}
	if b.Status.Terminal() {
		return nil, booking.ErrInvalidTransition
	}

	deadline := time.Now().Add(s.confirmTimeout)
	for {
		intent, err := s.gateway.RetrieveIntent(ctx, b.PaymentIntentID)
		if err == nil {
			switch intent.Status {
			case domain.IntentSucceeded:
				return s.settleSucceeded(ctx, b)
			case domain.IntentFailed, domain.IntentCanceled:
				return nil, s.settleFailed(ctx, b, intent.Status)
			}
		} else {
			s.loggerf("level=warn msg=intent poll failed booking_id=%d err=%v", b.ID, err)
		}

		if time.Now().After(deadline) {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(s.confirmPoll):
		}
	}

	s.cancelIntent(ctx, b.PaymentIntentID)
	if _, err := s.machine.Cancel(ctx, b.ID, "payment confirmation timed out"); err != nil && !errors.Is(err, booking.ErrInvalidTransition) {
		s.loggerf("level=error msg=cancel after timeout failed booking_id=%d err=%v", b.ID, err)
	}
	return nil, ErrConfirmationTimeout
}

// HandleIntentStatus is the webhook entry point. The provider delivers
// at least once, so every branch tolerates replays.
func (s *Service) HandleIntentStatus(ctx context.Context, intentID string, status domain.PaymentIntentStatus) error {
	b, err := s.bookings.GetByIntentID(ctx, intentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			s.loggerf("level=warn msg=webhook for unknown intent intent_id=%s", intentID)
			return nil
		}
		return err
	}

	if err := s.intents.UpdateStatus(ctx, intentID, status); err != nil {
		s.loggerf("level=error msg=intent shadow update failed intent_id=%s err=%v", intentID, err)
	}

	switch status {
	case domain.IntentSucceeded:
		if b.Status == domain.BookingConfirmed || b.Status.Terminal() {
			return nil
		}
		_, err := s.machine.Confirm(ctx, b.ID)
		if errors.Is(err, booking.ErrInvalidTransition) {
			return nil
		}
		return err

	case domain.IntentFailed, domain.IntentCanceled:
		if b.Status != domain.BookingPendingPayment {
			return nil
		}
		_, err := s.machine.Cancel(ctx, b.ID, "payment "+string(status))
		if errors.Is(err, booking.ErrInvalidTransition) {
			return nil
		}
		return err

	default:
		return nil
	}
}

// CancelBooking is the explicit user cancellation before payment
// settles.
func (s *Service) CancelBooking(ctx context.Context, bookingID, userID int64, reason string) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}

	if b.Status == domain.BookingPendingPayment {
		s.cancelIntent(ctx, b.PaymentIntentID)
	}
	return s.machine.Cancel(ctx, bookingID, reason)
}

// RefundBooking issues a provider refund and, once acknowledged, moves
// the booking to refunded. The gateway retries transient failures; the
// state machine guarantees the transition lands once.
func (s *Service) RefundBooking(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.Status == domain.BookingRefunded {
		return b, nil
	}
	if b.Status != domain.BookingConfirmed {
		return nil, booking.ErrInvalidTransition
	}

	if _, err := s.gateway.Refund(ctx, b.PaymentIntentID, b.TotalPrice); err != nil {
		return nil, err
	}
	return s.machine.Refund(ctx, bookingID)
}

func (s *Service) GetBooking(ctx context.Context, bookingID, userID int64) (*domain.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

func (s *Service) MyBookings(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	return s.bookings.GetByUser(ctx, userID, limit, offset)
}

func (s *Service) settleSucceeded(ctx context.Context, b *domain.Booking) (*domain.Booking, error) {
	if err := s.intents.UpdateStatus(ctx, b.PaymentIntentID, domain.IntentSucceeded); err != nil {
		return nil, err
	}
	return s.machine.Confirm(ctx, b.ID)
}

func (s *Service) settleFailed(ctx context.Context, b *domain.Booking, status domain.PaymentIntentStatus) error {
	if err := s.intents.UpdateStatus(ctx, b.PaymentIntentID, status); err != nil {
		s.loggerf("level=error msg=intent shadow update failed intent_id=%s err=%v", b.PaymentIntentID, err)
	}
	if status == domain.IntentFailed {
		s.cancelIntent(ctx, b.PaymentIntentID)
	}
	if _, err := s.machine.Cancel(ctx, b.ID, "payment "+string(status)); err != nil && !errors.Is(err, booking.ErrInvalidTransition) {
		return err
	}
	if status == domain.IntentCanceled {
		return ErrPaymentCancelled
	}
	return payment.ErrPaymentDeclined
}

// unwindPending compensates a partially-built saga: booking cancelled,
// intent cancelled, hold released. Reverse of creation order.
func (s *Service) unwindPending(ctx context.Context, bookingID int64, holdID, intentID, reason string) {
	if _, err := s.machine.Cancel(ctx, bookingID, reason); err != nil && !errors.Is(err, booking.ErrInvalidTransition) {
		s.loggerf("level=error msg=unwind cancel failed booking_id=%d err=%v", bookingID, err)
	}
	s.cancelIntent(ctx, intentID)
	s.releaseHold(ctx, holdID)
}

func (s *Service) releaseHold(ctx context.Context, holdID string) {
	if err := s.ledger.Release(ctx, holdID); err != nil {
		s.loggerf("level=error msg=hold release failed hold_id=%s err=%v", holdID, err)
	}
}

// cancelIntent is best effort: the provider may already have voided
// the intent, and an orphaned intent cannot hold our inventory.
func (s *Service) cancelIntent(ctx context.Context, intentID string) {
	if err := s.gateway.CancelIntent(ctx, intentID); err != nil {
		s.loggerf("level=warn msg=intent cancel failed intent_id=%s err=%v", intentID, err)
	}
}

func validateRequest(req PlaceBookingRequest) error {
	if req.UserID <= 0 || req.RoomTypeID <= 0 {
		return ErrValidation
	}
	if req.Rooms < 1 || req.Guests < 1 {
		return ErrValidation
	}
	if !req.CheckOut.After(req.CheckIn) {
		return ErrValidation
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	if req.CheckIn.Before(today) {
		return ErrValidation
	}
	return nil
}

func itoa(v int64) string {
	return strconv.FormatInt(v, 10)
}
