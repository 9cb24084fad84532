package catalog

import (
	"context"
	"testing"
	"time"

	"staybook/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"
)

type MockHotelStore struct {
	mock.Mock
}

func (m *MockHotelStore) GetByID(ctx context.Context, id int64) (*domain.Hotel, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Hotel), args.Error(1)
}

func (m *MockHotelStore) List(ctx context.Context, city string, limit, offset int) ([]domain.Hotel, error) {
	args := m.Called(ctx, city, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Hotel), args.Error(1)
}

type MockRoomTypeStore struct {
	mock.Mock
}

func (m *MockRoomTypeStore) GetByHotel(ctx context.Context, hotelID int64) ([]domain.RoomType, error) {
	args := m.Called(ctx, hotelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.RoomType), args.Error(1)
}

type MockAvailability struct {
	mock.Mock
}

func (m *MockAvailability) Availability(ctx context.Context, roomTypeID int64, checkIn, checkOut time.Time) (int, error) {
	args := m.Called(ctx, roomTypeID, checkIn, checkOut)
	return args.Int(0), args.Error(1)
}

func catalogRange() (time.Time, time.Time) {
	checkIn := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	return checkIn, checkIn.AddDate(0, 0, 3)
}

func TestGetHotel_NotFound(t *testing.T) {
	hotels := new(MockHotelStore)
	svc := NewService(hotels, new(MockRoomTypeStore), new(MockAvailability), nil, 0, nil)

	hotels.On("GetByID", mock.Anything, int64(404)).Return(nil, gorm.ErrRecordNotFound)

	_, err := svc.GetHotel(context.Background(), 404)

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRoomTypesWithAvailability_JoinsLedgerCounts(t *testing.T) {
	hotels := new(MockHotelStore)
	roomTypes := new(MockRoomTypeStore)
	ledger := new(MockAvailability)
	svc := NewService(hotels, roomTypes, ledger, nil, 0, nil)
	checkIn, checkOut := catalogRange()

	hotels.On("GetByID", mock.Anything, int64(2)).Return(&domain.Hotel{ID: 2, Name: "Marina Bay"}, nil)
	roomTypes.On("GetByHotel", mock.Anything, int64(2)).Return([]domain.RoomType{
		{ID: 5, HotelID: 2, Name: "Standard", TotalQuantity: 10},
		{ID: 6, HotelID: 2, Name: "Suite", TotalQuantity: 2},
	}, nil)
	ledger.On("Availability", mock.Anything, int64(5), checkIn, checkOut).Return(7, nil)
	ledger.On("Availability", mock.Anything, int64(6), checkIn, checkOut).Return(0, nil)

	items, err := svc.RoomTypesWithAvailability(context.Background(), 2, checkIn, checkOut)

	assert.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 7, items[0].Available)
	assert.Equal(t, 0, items[1].Available)
}

func TestRoomTypesWithAvailability_RejectsEmptyRange(t *testing.T) {
	svc := NewService(new(MockHotelStore), new(MockRoomTypeStore), new(MockAvailability), nil, 0, nil)
	checkIn, _ := catalogRange()

	_, err := svc.RoomTypesWithAvailability(context.Background(), 2, checkIn, checkIn)

	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestListHotels_PassesFilters(t *testing.T) {
	hotels := new(MockHotelStore)
	svc := NewService(hotels, new(MockRoomTypeStore), new(MockAvailability), nil, 0, nil)

	hotels.On("List", mock.Anything, "Astana", 20, 0).Return([]domain.Hotel{{ID: 1}, {ID: 2}}, nil)

	out, err := svc.ListHotels(context.Background(), "Astana", 20, 0)

	assert.NoError(t, err)
	assert.Len(t, out, 2)
}
