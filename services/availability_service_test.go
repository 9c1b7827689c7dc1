package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
)

func d(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func dp(s string) *time.Time {
	t := d(s)
	return &t
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name           string
		a1, a2, b1, b2 string
		want           bool
	}{
		{"identical", "2024-06-01", "2024-06-05", "2024-06-01", "2024-06-05", true},
		{"partial overlap", "2024-06-01", "2024-06-05", "2024-06-04", "2024-06-06", true},
		{"contained", "2024-06-01", "2024-06-10", "2024-06-03", "2024-06-05", true},
		{"contains", "2024-06-03", "2024-06-05", "2024-06-01", "2024-06-10", true},
		{"back-to-back after", "2024-06-01", "2024-06-05", "2024-06-05", "2024-06-07", false},
		{"back-to-back before", "2024-06-05", "2024-06-07", "2024-06-01", "2024-06-05", false},
		{"disjoint", "2024-06-01", "2024-06-03", "2024-06-10", "2024-06-12", false},
		{"one night each, same", "2024-06-01", "2024-06-02", "2024-06-01", "2024-06-02", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Overlaps(d(tc.a1), d(tc.a2), d(tc.b1), d(tc.b2)))
		})
	}
}

func seedBooking(t *testing.T, s *testStack, hotelID uint, roomID, categoryID, in, out string, statusID uint8) *models.Booking {
	t.Helper()
	b := &models.Booking{
		GuestName:      "Alice",
		HotelID:        hotelID,
		RoomNumberID:   roomID,
		RoomCategoryID: categoryID,
		CheckInDate:    dp(in),
		CheckOutDate:   dp(out),
		StatusID:       statusID,
	}
	require.NoError(t, s.db.Create(b).Error)
	return b
}

func TestFindConflict(t *testing.T) {
	s := newTestStack(t)
	existing := seedBooking(t, s, 1, "room-a", "cat-a", "2024-06-01", "2024-06-05", models.BookingStatusConfirmed)

	t.Run("overlap detected", func(t *testing.T) {
		conflict, err := s.availability.FindConflict(nil, 1, "room-a", "cat-a", d("2024-06-04"), d("2024-06-06"), 0)
		require.NoError(t, err)
		require.NotNil(t, conflict)
		assert.Equal(t, existing.ID, conflict.ID)
	})

	t.Run("back-to-back is free", func(t *testing.T) {
		conflict, err := s.availability.FindConflict(nil, 1, "room-a", "cat-a", d("2024-06-05"), d("2024-06-07"), 0)
		require.NoError(t, err)
		assert.Nil(t, conflict)
	})

	t.Run("different room is free", func(t *testing.T) {
		conflict, err := s.availability.FindConflict(nil, 1, "room-b", "cat-a", d("2024-06-01"), d("2024-06-05"), 0)
		require.NoError(t, err)
		assert.Nil(t, conflict)
	})

	t.Run("different hotel is free", func(t *testing.T) {
		conflict, err := s.availability.FindConflict(nil, 2, "room-a", "cat-a", d("2024-06-01"), d("2024-06-05"), 0)
		require.NoError(t, err)
		assert.Nil(t, conflict)
	})

	t.Run("own id excluded on update path", func(t *testing.T) {
		conflict, err := s.availability.FindConflict(nil, 1, "room-a", "cat-a", d("2024-06-02"), d("2024-06-06"), existing.ID)
		require.NoError(t, err)
		assert.Nil(t, conflict)
	})

	t.Run("cancelled bookings ignored", func(t *testing.T) {
		seedBooking(t, s, 1, "room-c", "cat-a", "2024-07-01", "2024-07-05", models.BookingStatusCancelled)
		conflict, err := s.availability.FindConflict(nil, 1, "room-c", "cat-a", d("2024-07-01"), d("2024-07-05"), 0)
		require.NoError(t, err)
		assert.Nil(t, conflict)
	})
}

func TestBookedDates(t *testing.T) {
	s := newTestStack(t)
	seedBooking(t, s, 1, "room-a", "cat-a", "2024-06-01", "2024-06-03", models.BookingStatusConfirmed)
	seedBooking(t, s, 1, "room-a", "cat-a", "2024-06-03", "2024-06-05", models.BookingStatusCheckedIn)
	seedBooking(t, s, 1, "room-a", "cat-a", "2024-06-10", "2024-06-11", models.BookingStatusCancelled)

	dates, err := s.availability.BookedDates(1, "room-a", "cat-a")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04"}, dates)
}

func TestAvailableRooms(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	hotel, err := s.hotels.AddRoom(idStr(1), categoryID, RoomInput{Name: "102", Price: 120})
	require.NoError(t, err)

	seedBooking(t, s, hotelID, roomID, categoryID, "2024-06-01", "2024-06-05", models.BookingStatusConfirmed)

	free, err := s.availability.AvailableRooms(hotel, categoryID, d("2024-06-02"), d("2024-06-04"))
	require.NoError(t, err)
	require.Len(t, free["Deluxe"], 1)
	assert.Equal(t, "102", free["Deluxe"][0].Name)

	// outside the booked window both rooms come back
	free, err = s.availability.AvailableRooms(hotel, categoryID, d("2024-06-05"), d("2024-06-07"))
	require.NoError(t, err)
	assert.Len(t, free["Deluxe"], 2)
}
