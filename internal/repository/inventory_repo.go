package repository

import (
	"context"
	"fmt"
	"time"

	"staybook/internal/domain"

	"gorm.io/gorm"
)

type InventoryRepository struct {
	db *gorm.DB
}

func NewInventoryRepository(db *gorm.DB) *InventoryRepository {
	return &InventoryRepository{db: db}
}

type holdModel struct {
	ID         string    `gorm:"column:id;primaryKey"`
	RoomTypeID int64     `gorm:"column:room_type_id;index"`
	CheckIn    time.Time `gorm:"column:check_in"`
	CheckOut   time.Time `gorm:"column:check_out"`
	Quantity   int       `gorm:"column:quantity"`
	BookingID  *int64    `gorm:"column:booking_id"`
	ExpiresAt  time.Time `gorm:"column:expires_at;index"`
	CreatedAt  time.Time `gorm:"column:created_at"`
}

func (holdModel) TableName() string { return "holds" }

func toDomainHold(m holdModel) *domain.Hold {
	var bookingID int64
	if m.BookingID != nil {
		bookingID = *m.BookingID
	}
	return &domain.Hold{
		ID:         m.ID,
		RoomTypeID: m.RoomTypeID,
		CheckIn:    m.CheckIn,
		CheckOut:   m.CheckOut,
		Quantity:   m.Quantity,
		BookingID:  bookingID,
		ExpiresAt:  m.ExpiresAt,
		CreatedAt:  m.CreatedAt,
	}
}

func toHoldModel(h *domain.Hold) holdModel {
	var bookingID *int64
	if h.BookingID != 0 {
		v := h.BookingID
		bookingID = &v
	}
	return holdModel{
		ID:         h.ID,
		RoomTypeID: h.RoomTypeID,
		CheckIn:    h.CheckIn,
		CheckOut:   h.CheckOut,
		Quantity:   h.Quantity,
		BookingID:  bookingID,
		ExpiresAt:  h.ExpiresAt,
		CreatedAt:  h.CreatedAt,
	}
}

func (r *InventoryRepository) CreateHold(ctx context.Context, h *domain.Hold) error {
	m := toHoldModel(h)
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*h = *toDomainHold(m)
	return nil
}

func (r *InventoryRepository) GetHold(ctx context.Context, id string) (*domain.Hold, error) {
	var m holdModel
	tx := r.db.WithContext(ctx).Where("id = ?", id).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainHold(m), nil
}

// DeleteHold removes a hold and reports how many rows went away, so
// callers can distinguish a real release from an already-swept hold.
func (r *InventoryRepository) DeleteHold(ctx context.Context, id string) (int64, error) {
	tx := r.db.WithContext(ctx).Where("id = ?", id).Delete(&holdModel{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

func (r *InventoryRepository) AttachBooking(ctx context.Context, holdID string, bookingID int64) error {
	tx := r.db.WithContext(ctx).Model(&holdModel{}).
		Where("id = ?", holdID).
		Update("booking_id", bookingID)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ActiveHolds returns unexpired holds overlapping [from, to) for the
// room type. Expired rows are filtered here, at read time, so a dead
// hold stops reserving inventory the moment it expires even if the
// sweep has not run yet.
func (r *InventoryRepository) ActiveHolds(ctx context.Context, roomTypeID int64, from, to, now time.Time) ([]domain.Hold, error) {
	var rows []holdModel
	tx := r.db.WithContext(ctx).
		Where("room_type_id = ? AND check_in < ? AND check_out > ? AND expires_at > ?",
			roomTypeID, to, from, now).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Hold, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainHold(m))
	}
	return out, nil
}

// DebitStay is a permanent inventory consumption: a stay belonging to a
// booking whose hold has been committed.
type DebitStay struct {
	CheckIn  time.Time
	CheckOut time.Time
	Quantity int
}

// DebitStays returns the stays that permanently consume inventory in
// [from, to). With relistOnRefund=false a refunded or later-cancelled
// booking keeps its debit (the room stays off the market); with true
// only currently-confirmed bookings count.
func (r *InventoryRepository) DebitStays(ctx context.Context, roomTypeID int64, from, to time.Time, relistOnRefund bool) ([]DebitStay, error) {
	q := r.db.WithContext(ctx).
		Table("bookings").
		Select("check_in, check_out, rooms AS quantity").
		Where("room_type_id = ? AND check_in < ? AND check_out > ?", roomTypeID, to, from)

	if relistOnRefund {
		q = q.Where("status = ?", string(domain.BookingConfirmed))
	} else {
		q = q.Where("status = ? OR confirmed_at IS NOT NULL", string(domain.BookingConfirmed))
	}

	var rows []DebitStay
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// CommitHold converts a live hold into a permanent debit: the owning
// booking flips to confirmed and the hold row disappears, atomically.
// Confirming a booking without consuming its hold (or vice versa) must
// be impossible, hence the single transaction.
func (r *InventoryRepository) CommitHold(ctx context.Context, holdID string, now time.Time) (*domain.Hold, error) {
	var committed *domain.Hold

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m holdModel
		if err := tx.Where("id = ? AND expires_at > ?", holdID, now).First(&m).Error; err != nil {
			return fmt.Errorf("load hold %s: %w", holdID, err)
		}
		if m.BookingID == nil {
			return fmt.Errorf("hold %s has no booking attached", holdID)
		}

		res := tx.Model(&bookingModel{}).
			Where("id = ? AND status = ?", *m.BookingID, string(domain.BookingPendingPayment)).
			Updates(map[string]interface{}{
				"status":       string(domain.BookingConfirmed),
				"confirmed_at": now,
				"updated_at":   now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("booking %d not pending: %w", *m.BookingID, gorm.ErrRecordNotFound)
		}

		del := tx.Where("id = ?", holdID).Delete(&holdModel{})
		if del.Error != nil {
			return del.Error
		}
		if del.RowsAffected == 0 {
			return fmt.Errorf("hold %s vanished mid-commit: %w", holdID, gorm.ErrRecordNotFound)
		}

		committed = toDomainHold(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return committed, nil
}

// DeleteExpired reclaims every hold past its expiry. The sweep is the
// single authority for removing abandoned holds; reads already ignore
// them via the expires_at filter.
func (r *InventoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	tx := r.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&holdModel{})
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}
