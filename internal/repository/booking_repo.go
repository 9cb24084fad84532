package repository

import (
	"context"
	"time"

	"staybook/internal/domain"

	"gorm.io/gorm"
)

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID                 int64      `gorm:"column:id;primaryKey"`
	UserID             int64      `gorm:"column:user_id;index"`
	HotelID            int64      `gorm:"column:hotel_id;index"`
	RoomTypeID         int64      `gorm:"column:room_type_id;index"`
	CheckIn            time.Time  `gorm:"column:check_in"`
	CheckOut           time.Time  `gorm:"column:check_out"`
	Rooms              int        `gorm:"column:rooms"`
	Guests             int        `gorm:"column:guests"`
	TotalPrice         float64    `gorm:"column:total_price"`
	Currency           string     `gorm:"column:currency"`
	Status             string     `gorm:"column:status;index"`
	HoldID             string     `gorm:"column:hold_id"`
	PaymentIntentID    string     `gorm:"column:payment_intent_id;index"`
	CancellationReason *string    `gorm:"column:cancellation_reason"`
	CreatedAt          time.Time  `gorm:"column:created_at"`
	UpdatedAt          time.Time  `gorm:"column:updated_at"`
	ConfirmedAt        *time.Time `gorm:"column:confirmed_at"`
	CancelledAt        *time.Time `gorm:"column:cancelled_at"`
	RefundedAt         *time.Time `gorm:"column:refunded_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) *domain.Booking {
	var reason string
	if m.CancellationReason != nil {
		reason = *m.CancellationReason
	}
	return &domain.Booking{
		ID:                 m.ID,
		UserID:             m.UserID,
		HotelID:            m.HotelID,
		RoomTypeID:         m.RoomTypeID,
		CheckIn:            m.CheckIn,
		CheckOut:           m.CheckOut,
		Rooms:              m.Rooms,
		Guests:             m.Guests,
		TotalPrice:         m.TotalPrice,
		Currency:           m.Currency,
		Status:             domain.BookingStatus(m.Status),
		HoldID:             m.HoldID,
		PaymentIntentID:    m.PaymentIntentID,
		CancellationReason: reason,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
		ConfirmedAt:        m.ConfirmedAt,
		CancelledAt:        m.CancelledAt,
		RefundedAt:         m.RefundedAt,
	}
}

func toBookingModel(b *domain.Booking) bookingModel {
	var reason *string
	if b.CancellationReason != "" {
		v := b.CancellationReason
		reason = &v
	}
	return bookingModel{
		ID:                 b.ID,
		UserID:             b.UserID,
		HotelID:            b.HotelID,
		RoomTypeID:         b.RoomTypeID,
		CheckIn:            b.CheckIn,
		CheckOut:           b.CheckOut,
		Rooms:              b.Rooms,
		Guests:             b.Guests,
		TotalPrice:         b.TotalPrice,
		Currency:           b.Currency,
		Status:             string(b.Status),
		HoldID:             b.HoldID,
		PaymentIntentID:    b.PaymentIntentID,
		CancellationReason: reason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
		ConfirmedAt:        b.ConfirmedAt,
		CancelledAt:        b.CancelledAt,
		RefundedAt:         b.RefundedAt,
	}
}

func (r *BookingRepository) Create(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*b = *toDomainBooking(m)
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByIntentID(ctx context.Context, intentID string) (*domain.Booking, error) {
	var m bookingModel
	tx := r.db.WithContext(ctx).Where("payment_intent_id = ?", intentID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainBooking(m), nil
}

func (r *BookingRepository) GetByUser(ctx context.Context, userID int64, limit, offset int) ([]domain.Booking, error) {
	var rows []bookingModel
	tx := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainBooking(m))
	}
	return out, nil
}

// HasConfirmedBookingForHotel reports whether the user ever had a
// confirmed stay at the hotel. Cancelled-after-confirm still counts.
func (r *BookingRepository) HasConfirmedBookingForHotel(ctx context.Context, userID, hotelID int64) (bool, error) {
	var n int64
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("user_id = ? AND hotel_id = ? AND confirmed_at IS NOT NULL", userID, hotelID).
		Count(&n)
	if tx.Error != nil {
		return false, tx.Error
	}
	return n > 0, nil
}

// CancelFromPending moves a pending booking to cancelled. The guard is
// in the WHERE clause: zero rows affected means the booking was not in
// pending_payment and the caller must treat it as a refused transition.
func (r *BookingRepository) CancelFromPending(ctx context.Context, bookingID int64, reason string) (int64, error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       string(domain.BookingCancelled),
		"cancelled_at": now,
		"updated_at":   now,
	}
	if reason != "" {
		updates["cancellation_reason"] = reason
	}

	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", bookingID, string(domain.BookingPendingPayment)).
		Updates(updates)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// CancelFromConfirmed marks a confirmed booking cancelled. confirmed_at
// stays set, so the stay keeps counting as a debit unless refund
// re-listing applies.
func (r *BookingRepository) CancelFromConfirmed(ctx context.Context, bookingID int64, reason string) (int64, error) {
	now := time.Now().UTC()
	updates := map[string]interface{}{
		"status":       string(domain.BookingCancelled),
		"cancelled_at": now,
		"updated_at":   now,
	}
	if reason != "" {
		updates["cancellation_reason"] = reason
	}

	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", bookingID, string(domain.BookingConfirmed)).
		Updates(updates)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// MarkRefunded is conditional on the booking still being confirmed, so
// a retried refund flips the row exactly once.
func (r *BookingRepository) MarkRefunded(ctx context.Context, bookingID int64) (int64, error) {
	now := time.Now().UTC()
	tx := r.db.WithContext(ctx).Model(&bookingModel{}).
		Where("id = ? AND status = ?", bookingID, string(domain.BookingConfirmed)).
		Updates(map[string]interface{}{
			"status":      string(domain.BookingRefunded),
			"refunded_at": now,
			"updated_at":  now,
		})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
