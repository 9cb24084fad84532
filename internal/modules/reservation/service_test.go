package reservation

import (
	"context"
	"testing"
	"time"

	"staybook/internal/domain"
	"staybook/internal/modules/booking"
	"staybook/internal/modules/inventory"
	"staybook/internal/modules/payment"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) TryReserve(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time, quantity int) (*domain.Hold, error) {
	args := m.Called(ctx, roomTypeID, checkIn, checkOut, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hold), args.Error(1)
}

func (m *MockLedger) Release(ctx context.Context, holdID string) error {
	args := m.Called(ctx, holdID)
	return args.Error(0)
}

func (m *MockLedger) AttachBooking(ctx context.Context, holdID string, bookingID int64) error {
	args := m.Called(ctx, holdID, bookingID)
	return args.Error(0)
}

type MockBookingStore struct {
	mock.Mock
}

func (m *MockBookingStore) Create(ctx context.Context, b *domain.Booking) error {
	args := m.Called(ctx, b)
	if args.Error(0) == nil && b.ID == 0 {
		b.ID = 101
	}
	return args.Error(0)
}

func (m *MockBookingStore) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingStore) GetByIntentID(ctx context.Context, intentID string) (*domain.Booking, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingStore) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockIntentStore struct {
	mock.Mock
}

func (m *MockIntentStore) Create(ctx context.Context, p *domain.PaymentIntent) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockIntentStore) UpdateStatus(ctx context.Context, id string, status domain.PaymentIntentStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

type MockStateMachine struct {
	mock.Mock
}

func (m *MockStateMachine) Confirm(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockStateMachine) Cancel(ctx context.Context, bookingID int64, reason string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockStateMachine) Refund(ctx context.Context, bookingID int64) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

type MockRoomTypes struct {
	mock.Mock
}

func (m *MockRoomTypes) GetByID(ctx context.Context, id int64) (*domain.RoomType, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RoomType), args.Error(1)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*payment.Intent, error) {
	args := m.Called(ctx, amount, currency, metadata)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) RetrieveIntent(ctx context.Context, intentID string) (*payment.Intent, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Intent), args.Error(1)
}

func (m *MockGateway) CancelIntent(ctx context.Context, intentID string) error {
	args := m.Called(ctx, intentID)
	return args.Error(0)
}

func (m *MockGateway) Refund(ctx context.Context, intentID string, amount float64) (*payment.Refund, error) {
	args := m.Called(ctx, intentID, amount)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.Refund), args.Error(1)
}

type sagaFixture struct {
	ledger    *MockLedger
	gateway   *MockGateway
	bookings  *MockBookingStore
	intents   *MockIntentStore
	machine   *MockStateMachine
	roomTypes *MockRoomTypes
	service   *Service
}

func newSagaFixture(confirmTimeout, confirmPoll time.Duration) *sagaFixture {
	f := &sagaFixture{
		ledger:    new(MockLedger),
		gateway:   new(MockGateway),
		bookings:  new(MockBookingStore),
		intents:   new(MockIntentStore),
		machine:   new(MockStateMachine),
		roomTypes: new(MockRoomTypes),
	}
	f.service = NewService(
		f.ledger, f.gateway, f.bookings, f.intents, f.machine, f.roomTypes,
		"USD", confirmTimeout, confirmPoll, nil,
	)
	return f
}

func stay(nights int) (time.Time, time.Time) {
	checkIn := time.Now().UTC().Truncate(24 * time.Hour).AddDate(0, 0, 7)
	return checkIn, checkIn.AddDate(0, 0, nights)
}

func standardRoom() *domain.RoomType {
	return &domain.RoomType{
		ID:           5,
		HotelID:      2,
		Name:         "Standard Double",
		NightlyPrice: 120,
		Capacity:     2,
		IsActive:     true,
	}
}

func TestPlaceBooking_HappyPath(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	checkIn, checkOut := stay(3)

	f.roomTypes.On("GetByID", mock.Anything, int64(5)).Return(standardRoom(), nil)
	f.ledger.On("TryReserve", mock.Anything, int64(5), checkIn, checkOut, 2).
		Return(&domain.Hold{ID: "hold-1", RoomTypeID: 5, Quantity: 2}, nil)
	f.gateway.On("CreateIntent", mock.Anything, 720.0, "USD", mock.Anything).
		Return(&payment.Intent{ID: "pi_1", ClientSecret: "cs_1", Status: domain.IntentRequiresPayment}, nil)
	f.bookings.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.intents.On("Create", mock.Anything, mock.Anything).Return(nil)
	f.ledger.On("AttachBooking", mock.Anything, "hold-1", int64(101)).Return(nil)

	result, err := f.service.PlaceBooking(context.Background(), PlaceBookingRequest{
		UserID: 7, RoomTypeID: 5, CheckIn: checkIn, CheckOut: checkOut, Rooms: 2, Guests: 4,
	})

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingPendingPayment, result.Booking.Status)
	assert.Equal(t, 720.0, result.Booking.TotalPrice)
	assert.Equal(t, "pi_1", result.Booking.PaymentIntentID)
	assert.Equal(t, "hold-1", result.Booking.HoldID)
	assert.Equal(t, "cs_1", result.ClientSecret)
	f.ledger.AssertExpectations(t)
	f.gateway.AssertExpectations(t)
}

func TestPlaceBooking_SoldOut_NeverCallsGateway(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	checkIn, checkOut := stay(2)

	f.roomTypes.On("GetByID", mock.Anything, int64(5)).Return(standardRoom(), nil)
	f.ledger.On("TryReserve", mock.Anything, int64(5), checkIn, checkOut, 1).
		Return(nil, inventory.ErrInsufficientInventory)

	_, err := f.service.PlaceBooking(context.Background(), PlaceBookingRequest{
		UserID: 7, RoomTypeID: 5, CheckIn: checkIn, CheckOut: checkOut, Rooms: 1, Guests: 2,
	})

	assert.ErrorIs(t, err, inventory.ErrInsufficientInventory)
	f.gateway.AssertNotCalled(t, "CreateIntent", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceBooking_GatewayDown_ReleasesHold(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	checkIn, checkOut := stay(2)

	f.roomTypes.On("GetByID", mock.Anything, int64(5)).Return(standardRoom(), nil)
	f.ledger.On("TryReserve", mock.Anything, int64(5), checkIn, checkOut, 1).
		Return(&domain.Hold{ID: "hold-1"}, nil)
	f.gateway.On("CreateIntent", mock.Anything, mock.Anything, "USD", mock.Anything).
		Return(nil, payment.ErrGatewayUnavailable)
	f.ledger.On("Release", mock.Anything, "hold-1").Return(nil)

	_, err := f.service.PlaceBooking(context.Background(), PlaceBookingRequest{
		UserID: 7, RoomTypeID: 5, CheckIn: checkIn, CheckOut: checkOut, Rooms: 1, Guests: 2,
	})

	assert.ErrorIs(t, err, payment.ErrGatewayUnavailable)
	f.ledger.AssertCalled(t, "Release", mock.Anything, "hold-1")
	f.bookings.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestPlaceBooking_GuestsOverCapacity(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	checkIn, checkOut := stay(2)

	f.roomTypes.On("GetByID", mock.Anything, int64(5)).Return(standardRoom(), nil)

	_, err := f.service.PlaceBooking(context.Background(), PlaceBookingRequest{
		UserID: 7, RoomTypeID: 5, CheckIn: checkIn, CheckOut: checkOut, Rooms: 1, Guests: 3,
	})

	assert.ErrorIs(t, err, ErrValidation)
	f.ledger.AssertNotCalled(t, "TryReserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPlaceBooking_RejectsPastAndInvertedDates(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	checkIn, checkOut := stay(2)

	cases := []PlaceBookingRequest{
		{UserID: 7, RoomTypeID: 5, CheckIn: checkOut, CheckOut: checkIn, Rooms: 1, Guests: 1},
		{UserID: 7, RoomTypeID: 5, CheckIn: checkIn.AddDate(0, 0, -30), CheckOut: checkOut, Rooms: 1, Guests: 1},
		{UserID: 7, RoomTypeID: 5, CheckIn: checkIn, CheckOut: checkIn, Rooms: 1, Guests: 1},
		{UserID: 7, RoomTypeID: 5, CheckIn: checkIn, CheckOut: checkOut, Rooms: 0, Guests: 1},
	}
	for _, req := range cases {
		_, err := f.service.PlaceBooking(context.Background(), req)
		assert.ErrorIs(t, err, ErrValidation)
	}
}

func TestConfirmPayment_SettlesOnSuccess(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	pending := &domain.Booking{ID: 101, Status: domain.BookingPendingPayment, PaymentIntentID: "pi_1"}
	confirmed := &domain.Booking{ID: 101, Status: domain.BookingConfirmed, PaymentIntentID: "pi_1"}

	f.bookings.On("GetByID", mock.Anything, int64(101)).Return(pending, nil)
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Status: domain.IntentSucceeded}, nil)
	f.intents.On("UpdateStatus", mock.Anything, "pi_1", domain.IntentSucceeded).Return(nil)
	f.machine.On("Confirm", mock.Anything, int64(101)).Return(confirmed, nil)

	b, err := f.service.ConfirmPayment(context.Background(), 101)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	f.machine.AssertExpectations(t)
}

func TestConfirmPayment_FailedIntent_CancelsBooking(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	pending := &domain.Booking{ID: 101, Status: domain.BookingPendingPayment, PaymentIntentID: "pi_1"}

	f.bookings.On("GetByID", mock.Anything, int64(101)).Return(pending, nil)
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Status: domain.IntentFailed}, nil)
	f.intents.On("UpdateStatus", mock.Anything, "pi_1", domain.IntentFailed).Return(nil)
	f.gateway.On("CancelIntent", mock.Anything, "pi_1").Return(nil)
	f.machine.On("Cancel", mock.Anything, int64(101), mock.Anything).
		Return(&domain.Booking{ID: 101, Status: domain.BookingCancelled}, nil)

	_, err := f.service.ConfirmPayment(context.Background(), 101)

	assert.ErrorIs(t, err, payment.ErrPaymentDeclined)
	f.machine.AssertCalled(t, "Cancel", mock.Anything, int64(101), mock.Anything)
}

func TestConfirmPayment_TimesOut(t *testing.T) {
	f := newSagaFixture(0, time.Millisecond)
	pending := &domain.Booking{ID: 101, Status: domain.BookingPendingPayment, PaymentIntentID: "pi_1"}

	f.bookings.On("GetByID", mock.Anything, int64(101)).Return(pending, nil)
	f.gateway.On("RetrieveIntent", mock.Anything, "pi_1").
		Return(&payment.Intent{ID: "pi_1", Status: domain.IntentRequiresPayment}, nil)
	f.gateway.On("CancelIntent", mock.Anything, "pi_1").Return(nil)
	f.machine.On("Cancel", mock.Anything, int64(101), mock.Anything).
		Return(&domain.Booking{ID: 101, Status: domain.BookingCancelled}, nil)

	_, err := f.service.ConfirmPayment(context.Background(), 101)

	assert.ErrorIs(t, err, ErrConfirmationTimeout)
	f.machine.AssertCalled(t, "Cancel", mock.Anything, int64(101), mock.Anything)
	f.gateway.AssertCalled(t, "CancelIntent", mock.Anything, "pi_1")
}

func TestConfirmPayment_AlreadyConfirmedIsNoop(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	confirmed := &domain.Booking{ID: 101, Status: domain.BookingConfirmed, PaymentIntentID: "pi_1"}

	f.bookings.On("GetByID", mock.Anything, int64(101)).Return(confirmed, nil)

	b, err := f.service.ConfirmPayment(context.Background(), 101)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingConfirmed, b.Status)
	f.gateway.AssertNotCalled(t, "RetrieveIntent", mock.Anything, mock.Anything)
}

func TestHandleIntentStatus_SucceededConfirms(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	pending := &domain.Booking{ID: 101, Status: domain.BookingPendingPayment, PaymentIntentID: "pi_1"}

	f.bookings.On("GetByIntentID", mock.Anything, "pi_1").Return(pending, nil)
	f.intents.On("UpdateStatus", mock.Anything, "pi_1", domain.IntentSucceeded).Return(nil)
	f.machine.On("Confirm", mock.Anything, int64(101)).
		Return(&domain.Booking{ID: 101, Status: domain.BookingConfirmed}, nil)

	err := f.service.HandleIntentStatus(context.Background(), "pi_1", domain.IntentSucceeded)

	assert.NoError(t, err)
	f.machine.AssertExpectations(t)
}

func TestHandleIntentStatus_ReplayIsIdempotent(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	confirmed := &domain.Booking{ID: 101, Status: domain.BookingConfirmed, PaymentIntentID: "pi_1"}

	f.bookings.On("GetByIntentID", mock.Anything, "pi_1").Return(confirmed, nil)
	f.intents.On("UpdateStatus", mock.Anything, "pi_1", domain.IntentSucceeded).Return(nil)

	err := f.service.HandleIntentStatus(context.Background(), "pi_1", domain.IntentSucceeded)

	assert.NoError(t, err)
	f.machine.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestHandleIntentStatus_UnknownIntentIsIgnored(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)

	f.bookings.On("GetByIntentID", mock.Anything, "pi_ghost").Return(nil, gorm.ErrRecordNotFound)

	err := f.service.HandleIntentStatus(context.Background(), "pi_ghost", domain.IntentSucceeded)

	assert.NoError(t, err)
	f.machine.AssertNotCalled(t, "Confirm", mock.Anything, mock.Anything)
}

func TestCancelBooking_ForbiddenForOtherUser(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	pending := &domain.Booking{ID: 101, UserID: 7, Status: domain.BookingPendingPayment, PaymentIntentID: "pi_1"}

	f.bookings.On("GetByID", mock.Anything, int64(101)).Return(pending, nil)

	_, err := f.service.CancelBooking(context.Background(), 101, 99, "changed plans")

	assert.ErrorIs(t, err, ErrForbidden)
	f.machine.AssertNotCalled(t, "Cancel", mock.Anything, mock.Anything, mock.Anything)
}

func TestCancelBooking_PendingVoidsIntent(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	pending := &domain.Booking{ID: 101, UserID: 7, Status: domain.BookingPendingPayment, PaymentIntentID: "pi_1"}

	f.bookings.On("GetByID", mock.Anything, int64(101)).Return(pending, nil)
	f.gateway.On("CancelIntent", mock.Anything, "pi_1").Return(nil)
	f.machine.On("Cancel", mock.Anything, int64(101), "changed plans").
		Return(&domain.Booking{ID: 101, Status: domain.BookingCancelled}, nil)

	b, err := f.service.CancelBooking(context.Background(), 101, 7, "changed plans")

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingCancelled, b.Status)
	f.gateway.AssertCalled(t, "CancelIntent", mock.Anything, "pi_1")
}

func TestRefundBooking_AlreadyRefundedSkipsGateway(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	refunded := &domain.Booking{ID: 101, Status: domain.BookingRefunded, PaymentIntentID: "pi_1"}

	f.bookings.On("GetByID", mock.Anything, int64(101)).Return(refunded, nil)

	b, err := f.service.RefundBooking(context.Background(), 101)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingRefunded, b.Status)
	f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
}

func TestRefundBooking_ConfirmedGoesThroughGateway(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	confirmed := &domain.Booking{ID: 101, Status: domain.BookingConfirmed, PaymentIntentID: "pi_1", TotalPrice: 720}

	f.bookings.On("GetByID", mock.Anything, int64(101)).Return(confirmed, nil)
	f.gateway.On("Refund", mock.Anything, "pi_1", 720.0).Return(&payment.Refund{ID: "re_1", Status: "succeeded"}, nil)
	f.machine.On("Refund", mock.Anything, int64(101)).
		Return(&domain.Booking{ID: 101, Status: domain.BookingRefunded}, nil)

	b, err := f.service.RefundBooking(context.Background(), 101)

	assert.NoError(t, err)
	assert.Equal(t, domain.BookingRefunded, b.Status)
	f.gateway.AssertExpectations(t)
	f.machine.AssertExpectations(t)
}

func TestRefundBooking_PendingIsInvalidTransition(t *testing.T) {
	f := newSagaFixture(time.Second, time.Millisecond)
	pending := &domain.Booking{ID: 101, Status: domain.BookingPendingPayment, PaymentIntentID: "pi_1"}

	f.bookings.On("GetByID", mock.Anything, int64(101)).Return(pending, nil)

	_, err := f.service.RefundBooking(context.Background(), 101)

	assert.ErrorIs(t, err, booking.ErrInvalidTransition)
	f.gateway.AssertNotCalled(t, "Refund", mock.Anything, mock.Anything, mock.Anything)
}
