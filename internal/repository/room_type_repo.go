package repository

import (
	"context"
	"time"

	"staybook/internal/domain"

	"gorm.io/gorm"
)

type RoomTypeRepository struct {
	db *gorm.DB
}

func NewRoomTypeRepository(db *gorm.DB) *RoomTypeRepository {
	return &RoomTypeRepository{db: db}
}

type roomTypeModel struct {
	ID            int64     `gorm:"column:id;primaryKey"`
	HotelID       int64     `gorm:"column:hotel_id;index"`
	Name          string    `gorm:"column:name"`
	Description   string    `gorm:"column:description"`
	NightlyPrice  float64   `gorm:"column:nightly_price"`
	TotalQuantity int       `gorm:"column:total_quantity"`
	Capacity      int       `gorm:"column:capacity"`
	IsActive      bool      `gorm:"column:is_active"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (roomTypeModel) TableName() string { return "room_types" }

func toDomainRoomType(m roomTypeModel) *domain.RoomType {
	return &domain.RoomType{
		ID:            m.ID,
		HotelID:       m.HotelID,
		Name:          m.Name,
		Description:   m.Description,
		NightlyPrice:  m.NightlyPrice,
		TotalQuantity: m.TotalQuantity,
		Capacity:      m.Capacity,
		IsActive:      m.IsActive,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func (r *RoomTypeRepository) Create(ctx context.Context, rt *domain.RoomType) error {
	m := roomTypeModel{
		HotelID:       rt.HotelID,
		Name:          rt.Name,
		Description:   rt.Description,
		NightlyPrice:  rt.NightlyPrice,
		TotalQuantity: rt.TotalQuantity,
		Capacity:      rt.Capacity,
		IsActive:      rt.IsActive,
	}
	tx := r.db.WithContext(ctx).Create(&m)
	if tx.Error != nil {
		return tx.Error
	}
	*rt = *toDomainRoomType(m)
	return nil
}

func (r *RoomTypeRepository) GetByID(ctx context.Context, id int64) (*domain.RoomType, error) {
	var m roomTypeModel
	tx := r.db.WithContext(ctx).First(&m, id)
	if tx.Error != nil {
		return nil, tx.Error
	}
	return toDomainRoomType(m), nil
}

func (r *RoomTypeRepository) GetByHotel(ctx context.Context, hotelID int64) ([]domain.RoomType, error) {
	var rows []roomTypeModel
	tx := r.db.WithContext(ctx).
		Where("hotel_id = ? AND is_active = ?", hotelID, true).
		Order("nightly_price ASC").
		Find(&rows)
	if tx.Error != nil {
		return nil, tx.Error
	}

	out := make([]domain.RoomType, 0, len(rows))
	for _, m := range rows {
		out = append(out, *toDomainRoomType(m))
	}
	return out, nil
}
