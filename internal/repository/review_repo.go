package repository

import (
	"context"
	"time"

	"staybook/internal/domain"

	"gorm.io/gorm"
)

type ReviewRepository struct {
	db *gorm.DB
}

func NewReviewRepository(db *gorm.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

type reviewModel struct {
	ID        int64     `gorm:"column:id;primaryKey"`
	HotelID   int64     `gorm:"column:hotel_id;uniqueIndex:idx_one_review_per_user_hotel"`
	UserID    int64     `gorm:"column:user_id;uniqueIndex:idx_one_review_per_user_hotel"`
	Rating    int       `gorm:"column:rating"`
	Title     string    `gorm:"column:title"`
	Comment   string    `gorm:"column:comment;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (reviewModel) TableName() string { return "reviews" }

func toDomainReview(m reviewModel) *domain.Review {
	return &domain.Review{
		ID:        m.ID,
		HotelID:   m.HotelID,
		UserID:    m.UserID,
		Rating:    m.Rating,
		Title:     m.Title,
		Comment:   m.Comment,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func (r *ReviewRepository) Create(ctx context.Context, rv *domain.Review) error {
	m := reviewModel{
		HotelID: rv.HotelID,
		UserID:  rv.UserID,
		Rating:  rv.Rating,
		Title:   rv.Title,
		Comment: rv.Comment,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*rv = *toDomainReview(m)
	return nil
}

func (r *ReviewRepository) GetByID(ctx context.Context, id int64) (*domain.Review, error) {
	var m reviewModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainReview(m), nil
}

func (r *ReviewRepository) GetByHotel(ctx context.Context, hotelID int64, limit, offset int) ([]domain.Review, error) {
	var rows []reviewModel
	tx := r.db.WithContext(ctx).
		Where("hotel_id = ?", hotelID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.Review, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainReview(m))
	}
	return out, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id int64) (int64, error) {
	tx := r.db.WithContext(ctx).Delete(&reviewModel{}, id)
	if tx.Error != nil {
		return 0, tx.Error
	}
	return tx.RowsAffected, nil
}

// AggregateForHotel reads the then-current review set in one query.
// The aggregator recomputes from this, never from deltas.
func (r *ReviewRepository) AggregateForHotel(ctx context.Context, hotelID int64) (count int64, average float64, err error) {
	var row struct {
		Cnt int64
		Avg *float64
	}
	tx := r.db.WithContext(ctx).
		Table("reviews").
		Select("COUNT(1) AS cnt, AVG(rating) AS avg").
		Where("hotel_id = ?", hotelID).
		Scan(&row)
	if tx.Error != nil {
		return 0, 0, tx.Error
	}
	if row.Avg != nil {
		average = *row.Avg
	}
	return row.Cnt, average, nil
}
