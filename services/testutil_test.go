package services

import (
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"hotel-pms/config"
)

// newTestDB opens an in-memory sqlite database with the full schema. One
// connection only, so sequential transactions share the same memory store.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, config.Migrate(db))
	return db
}

func idStr(id uint) string { return strconv.FormatUint(uint64(id), 10) }

type testStack struct {
	db           *gorm.DB
	availability *AvailabilityService
	sequences    *SequenceService
	hotels       *HotelService
	bookings     *BookingService
	orders       *OrderService
}

func newTestStack(t *testing.T) *testStack {
	t.Helper()
	db := newTestDB(t)

	availability := NewAvailabilityService(db)
	sequences := NewSequenceService(db)
	hotels := NewHotelService(db, nil)
	bookings := NewBookingService(db, availability, sequences, hotels, nil)
	orders := NewOrderService(db, sequences, nil)

	return &testStack{
		db:           db,
		availability: availability,
		sequences:    sequences,
		hotels:       hotels,
		bookings:     bookings,
		orders:       orders,
	}
}

// seedGrandHotel builds hotel "Grand" with category "Deluxe" holding room
// "101" at price 100, and returns the ids the booking tests need.
func seedGrandHotel(t *testing.T, s *testStack) (hotelID uint, categoryID, roomID string) {
	t.Helper()

	hotel, err := s.hotels.CreateHotel(HotelInput{Name: "Grand"})
	require.NoError(t, err)

	hotel, err = s.hotels.AddCategory(idStr(hotel.ID), CategoryInput{
		Name:         "Deluxe",
		BasePrice:    100,
		MaxOccupancy: 2,
	})
	require.NoError(t, err)
	categoryID = hotel.Categories[0].ID

	hotel, err = s.hotels.AddRoom(idStr(hotel.ID), categoryID, RoomInput{
		Name:  "101",
		Price: 100,
	})
	require.NoError(t, err)
	roomID = hotel.Categories[0].Rooms[0].ID

	return hotel.HotelID, categoryID, roomID
}
