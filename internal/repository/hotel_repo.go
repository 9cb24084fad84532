package repository

import (
	"context"
	"time"

	"staybook/internal/domain"

	"gorm.io/gorm"
)

type HotelRepository struct {
	db *gorm.DB
}

func NewHotelRepository(db *gorm.DB) *HotelRepository {
	return &HotelRepository{db: db}
}

type hotelModel struct {
	ID          int64     `gorm:"column:id;primaryKey"`
	Name        string    `gorm:"column:name"`
	City        string    `gorm:"column:city;index"`
	Address     string    `gorm:"column:address"`
	Description string    `gorm:"column:description;type:text"`
	Stars       int       `gorm:"column:stars"`
	Rating      float64   `gorm:"column:rating"`
	RatingCount int       `gorm:"column:rating_count"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (hotelModel) TableName() string { return "hotels" }

func toDomainHotel(m hotelModel) *domain.Hotel {
	return &domain.Hotel{
		ID:          m.ID,
		Name:        m.Name,
		City:        m.City,
		Address:     m.Address,
		Description: m.Description,
		Stars:       m.Stars,
		Rating:      m.Rating,
		RatingCount: m.RatingCount,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func (r *HotelRepository) Create(ctx context.Context, h *domain.Hotel) error {
	m := hotelModel{
		Name:        h.Name,
		City:        h.City,
		Address:     h.Address,
		Description: h.Description,
		Stars:       h.Stars,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*h = *toDomainHotel(m)
	return nil
}

func (r *HotelRepository) GetByID(ctx context.Context, id int64) (*domain.Hotel, error) {
	var m hotelModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainHotel(m), nil
}

func (r *HotelRepository) List(ctx context.Context, city string, limit, offset int) ([]domain.Hotel, error) {
	q := r.db.WithContext(ctx).Model(&hotelModel{}).Order("rating DESC, id ASC")
	if city != "" {
		q = q.Where("city = ?", city)
	}

	var rows []hotelModel
	tx := q.Limit(limit).Offset(offset).Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Hotel, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainHotel(m))
	}
	return out, nil
}

// UpdateRatingSummary writes the recomputed summary in a single
// atomic update.
func (r *HotelRepository) UpdateRatingSummary(ctx context.Context, hotelID int64, average float64, count int64) error {
	tx := r.db.WithContext(ctx).Model(&hotelModel{}).
		Where("id = ?", hotelID).
		Updates(map[string]interface{}{
			"rating":       average,
			"rating_count": count,
			"updated_at":   time.Now().UTC(),
		})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
