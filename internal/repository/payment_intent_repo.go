package repository

import (
	"context"
	"time"

	"staybook/internal/domain"

	"gorm.io/gorm"
)

// PaymentIntentRepository stores the local shadow of provider-owned
// payment intents. We only ever record what the provider reported.
type PaymentIntentRepository struct {
	db *gorm.DB
}

func NewPaymentIntentRepository(db *gorm.DB) *PaymentIntentRepository {
	return &PaymentIntentRepository{db: db}
}

type paymentIntentModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	BookingID int64     `gorm:"column:booking_id;index"`
	Amount    float64   `gorm:"column:amount"`
	Currency  string    `gorm:"column:currency"`
	Status    string    `gorm:"column:status"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (paymentIntentModel) TableName() string { return "payment_intents" }

func toDomainIntent(m paymentIntentModel) *domain.PaymentIntent {
	return &domain.PaymentIntent{
		ID:        m.ID,
		BookingID: m.BookingID,
		Amount:    m.Amount,
		Currency:  m.Currency,
		Status:    domain.PaymentIntentStatus(m.Status),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *PaymentIntentRepository) Create(ctx context.Context, p *domain.PaymentIntent) error {
	m := paymentIntentModel{
		ID:        p.ID,
		BookingID: p.BookingID,
		Amount:    p.Amount,
		Currency:  p.Currency,
		Status:    string(p.Status),
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*p = *toDomainIntent(m)
	return nil
}

func (r *PaymentIntentRepository) GetByBookingID(ctx context.Context, bookingID int64) (*domain.PaymentIntent, error) {
	var m paymentIntentModel
	tx := r.db.WithContext(ctx).Where("booking_id = ?", bookingID).First(&m)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainIntent(m), nil
}

// UpdateStatus records a provider-reported status change. Re-applying
// the same status is a no-op, which keeps webhook retries harmless.
func (r *PaymentIntentRepository) UpdateStatus(ctx context.Context, id string, status domain.PaymentIntentStatus) error {
	tx := r.db.WithContext(ctx).Model(&paymentIntentModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     string(status),
			"updated_at": time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
