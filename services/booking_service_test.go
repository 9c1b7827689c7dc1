package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-pms/models"
	"hotel-pms/utils"
)

func grandBooking(hotelID uint, categoryID, roomID string) BookingInput {
	return BookingInput{
		GuestName:      "Alice",
		HotelID:        hotelID,
		RoomCategoryID: categoryID,
		RoomNumberID:   roomID,
		CheckInDate:    "2024-06-01",
		CheckOutDate:   "2024-06-05",
		TotalBill:      400,
		AdvancePayment: 100,
	}
}

func TestCreateBookingScenario(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	// Booking X: 2024-06-01 → 2024-06-05, 400 total, 100 advance
	x, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)
	assert.Equal(t, float64(300), x.DuePayment)
	assert.Equal(t, 4, x.Nights)
	assert.Equal(t, models.BookingStatusConfirmed, x.StatusID)
	assert.Equal(t, uint(1), x.SerialNo)
	assert.Equal(t, "Deluxe", x.RoomCategoryName)
	assert.Equal(t, "101", x.RoomNumberName)
	assert.NotEmpty(t, x.BookingNo)

	// Booking Y overlaps X → conflict referencing X
	y := grandBooking(hotelID, categoryID, roomID)
	y.GuestName = "Bob"
	y.CheckInDate = "2024-06-04"
	y.CheckOutDate = "2024-06-06"
	_, err = s.bookings.CreateBooking(y)
	require.Error(t, err)
	f := utils.AsFailure(err)
	assert.Equal(t, http.StatusConflict, f.Code)
	require.NotNil(t, f.Conflict)
	detail := f.Conflict.(map[string]interface{})
	assert.Equal(t, x.BookingNo, detail["bookingNo"])
	assert.Equal(t, "Alice", detail["guestName"])

	// Booking Z is back-to-back with X → accepted
	z := grandBooking(hotelID, categoryID, roomID)
	z.GuestName = "Carol"
	z.CheckInDate = "2024-06-05"
	z.CheckOutDate = "2024-06-07"
	created, err := s.bookings.CreateBooking(z)
	require.NoError(t, err)
	assert.Equal(t, uint(2), created.SerialNo)
	assert.NotEqual(t, x.BookingNo, created.BookingNo)
}

func TestRejectedCreateConsumesNoIdentifiers(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	x, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)

	y := grandBooking(hotelID, categoryID, roomID)
	y.CheckInDate = "2024-06-02"
	y.CheckOutDate = "2024-06-04"
	_, err = s.bookings.CreateBooking(y)
	require.Error(t, err)

	z := grandBooking(hotelID, categoryID, roomID)
	z.CheckInDate = "2024-06-05"
	z.CheckOutDate = "2024-06-07"
	zb, err := s.bookings.CreateBooking(z)
	require.NoError(t, err)

	// the rejected create left no gap in either counter
	assert.Equal(t, x.SerialNo+1, zb.SerialNo)
	var serials int64
	require.NoError(t, s.db.Model(&models.Sequence{}).Where("name = ?", "booking_serial").
		Where("value = ?", zb.SerialNo).Count(&serials).Error)
	assert.Equal(t, int64(1), serials)
}

func TestCreateBookingValidation(t *testing.T) {
	s := newTestStack(t)

	_, err := s.bookings.CreateBooking(BookingInput{})
	require.Error(t, err)
	f := utils.AsFailure(err)
	assert.Equal(t, http.StatusBadRequest, f.Code)
	for _, field := range []string{"guestName", "hotelId", "roomCategoryId", "roomNumberId", "checkInDate", "checkOutDate"} {
		assert.Contains(t, f.Fields, field)
	}

	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	in := grandBooking(hotelID, categoryID, roomID)
	in.CheckOutDate = "2024-06-01" // equal to check-in: not strictly after
	_, err = s.bookings.CreateBooking(in)
	f = utils.AsFailure(err)
	assert.Equal(t, http.StatusBadRequest, f.Code)
	assert.Contains(t, f.Fields, "checkOutDate")

	in = grandBooking(hotelID, categoryID, roomID)
	in.AdvancePayment = 500 // exceeds totalBill
	_, err = s.bookings.CreateBooking(in)
	f = utils.AsFailure(err)
	assert.Equal(t, http.StatusBadRequest, f.Code)
	assert.Contains(t, f.Fields, "advancePayment")
}

func TestCreateBookingUnknownRoom(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, _ := seedGrandHotel(t, s)

	in := grandBooking(hotelID, categoryID, "missing-room")
	_, err := s.bookings.CreateBooking(in)
	assert.Equal(t, http.StatusNotFound, failureCode(t, err))

	in = grandBooking(99, categoryID, "whatever")
	_, err = s.bookings.CreateBooking(in)
	assert.Equal(t, http.StatusNotFound, failureCode(t, err))
}

func TestCancelThenRebook(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	x, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)

	cancelled, err := s.bookings.CancelBooking(x.ID, "reception", "guest no-show")
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.StatusID)
	assert.Equal(t, "reception", cancelled.CanceledBy)
	require.NotNil(t, cancelled.CanceledAt)

	// identical dates are free again
	_, err = s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)

	// cancelling twice is a conflict
	_, err = s.bookings.CancelBooking(x.ID, "reception", "again")
	assert.Equal(t, http.StatusConflict, failureCode(t, err))
}

func TestReferenceSharesBookingNo(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	h, err := s.hotels.AddRoom("1", categoryID, RoomInput{Name: "102", Price: 100})
	require.NoError(t, err)
	room102 := h.CategoryByID(categoryID).RoomByName("102").ID

	first, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)

	second := grandBooking(hotelID, categoryID, room102)
	second.Reference = first.BookingNo
	b2, err := s.bookings.CreateBooking(second)
	require.NoError(t, err)
	assert.Equal(t, first.BookingNo, b2.BookingNo)
	assert.NotEqual(t, first.SerialNo, b2.SerialNo)

	// unknown reference is a 404, nothing persisted
	third := grandBooking(hotelID, categoryID, room102)
	third.Reference = "000000xx"
	_, err = s.bookings.CreateBooking(third)
	assert.Equal(t, http.StatusNotFound, failureCode(t, err))
}

func TestUpdateBookingDetectorRuns(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	x, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)

	z := grandBooking(hotelID, categoryID, roomID)
	z.GuestName = "Carol"
	z.CheckInDate = "2024-06-05"
	z.CheckOutDate = "2024-06-07"
	zb, err := s.bookings.CreateBooking(z)
	require.NoError(t, err)

	// shifting Z back onto X collides
	_, err = s.bookings.UpdateBooking(zb.ID, UpdateBookingInput{CheckInDate: strPtr("2024-06-04")})
	assert.Equal(t, http.StatusConflict, failureCode(t, err))

	// a non-date, non-room change on Z sails through even though X exists
	updated, err := s.bookings.UpdateBooking(zb.ID, UpdateBookingInput{GuestName: strPtr("Caroline")})
	require.NoError(t, err)
	assert.Equal(t, "Caroline", updated.GuestName)

	// extending X's own stay doesn't conflict with itself
	updated, err = s.bookings.UpdateBooking(x.ID, UpdateBookingInput{CheckOutDate: strPtr("2024-06-04")})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Nights)
}

func TestUpdateBookingRecomputesDue(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	x, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)
	assert.Equal(t, float64(300), x.DuePayment)

	updated, err := s.bookings.UpdateBooking(x.ID, UpdateBookingInput{TotalBill: f64Ptr(450)})
	require.NoError(t, err)
	assert.Equal(t, float64(350), updated.DuePayment)

	updated, err = s.bookings.UpdateBooking(x.ID, UpdateBookingInput{AdvancePayment: f64Ptr(450)})
	require.NoError(t, err)
	assert.Equal(t, float64(0), updated.DuePayment)

	_, err = s.bookings.UpdateBooking(x.ID, UpdateBookingInput{AdvancePayment: f64Ptr(999)})
	assert.Equal(t, http.StatusBadRequest, failureCode(t, err))
}

func TestUpdateBookingRoomMove(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	h, err := s.hotels.AddRoom("1", categoryID, RoomInput{Name: "102", Price: 100})
	require.NoError(t, err)
	room102 := h.CategoryByID(categoryID).RoomByName("102").ID

	x, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)

	moved, err := s.bookings.UpdateBooking(x.ID, UpdateBookingInput{RoomNumberID: strPtr(room102)})
	require.NoError(t, err)
	assert.Equal(t, room102, moved.RoomNumberID)
	assert.Equal(t, "102", moved.RoomNumberName)

	// the vacated room is free for the same window again
	_, err = s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)
}

func TestCheckInCheckOutTransitions(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	x, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)

	_, err = s.bookings.CheckOut(x.ID)
	assert.Equal(t, http.StatusConflict, failureCode(t, err))

	checkedIn, err := s.bookings.CheckIn(x.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCheckedIn, checkedIn.StatusID)

	h, err := s.hotels.ResolveHotel("1")
	require.NoError(t, err)
	assert.Equal(t, models.RoomStatusOccupied, h.CategoryByID(categoryID).RoomByID(roomID).Status)

	_, err = s.bookings.CheckIn(x.ID)
	assert.Equal(t, http.StatusConflict, failureCode(t, err))

	checkedOut, err := s.bookings.CheckOut(x.ID)
	require.NoError(t, err)
	assert.Equal(t, models.BookingStatusCheckedOut, checkedOut.StatusID)
}

func TestHardDelete(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	x, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)

	require.NoError(t, s.bookings.HardDelete(x.ID))

	_, err = s.bookings.GetBooking(x.ID)
	assert.Equal(t, http.StatusNotFound, failureCode(t, err))

	var count int64
	require.NoError(t, s.db.Unscoped().Model(&models.Booking{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestRoomOccupancyViewFollowsLedger(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	x, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)

	h, err := s.hotels.ResolveHotel("1")
	require.NoError(t, err)
	room := h.CategoryByID(categoryID).RoomByID(roomID)
	assert.Equal(t, []string{"2024-06-01", "2024-06-02", "2024-06-03", "2024-06-04"}, room.BookedDates)

	_, err = s.bookings.CancelBooking(x.ID, "reception", "plans changed")
	require.NoError(t, err)

	h, err = s.hotels.ResolveHotel("1")
	require.NoError(t, err)
	room = h.CategoryByID(categoryID).RoomByID(roomID)
	assert.Empty(t, room.BookedDates)
	assert.Equal(t, models.RoomStatusAvailable, room.Status)
}

func TestBookingStats(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	h, err := s.hotels.AddRoom("1", categoryID, RoomInput{Name: "102", Price: 100})
	require.NoError(t, err)
	room102 := h.CategoryByID(categoryID).RoomByName("102").ID

	x, err := s.bookings.CreateBooking(grandBooking(hotelID, categoryID, roomID))
	require.NoError(t, err)

	second := grandBooking(hotelID, categoryID, room102)
	second.TotalBill = 250.55
	second.AdvancePayment = 0
	_, err = s.bookings.CreateBooking(second)
	require.NoError(t, err)

	_, err = s.bookings.CancelBooking(x.ID, "reception", "")
	require.NoError(t, err)

	stats, err := s.bookings.Stats()
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.Total)
	assert.Equal(t, int64(1), stats.Confirmed)
	assert.Equal(t, int64(1), stats.Cancelled)
	// cancelled revenue is excluded from the sums
	assert.InDelta(t, 250.55, stats.TotalRevenue, 1e-9)
	assert.InDelta(t, 250.55, stats.TotalDue, 1e-9)
	assert.Equal(t, float64(0), stats.TotalAdvance)
}

func TestSequentialBookingNosDistinct(t *testing.T) {
	s := newTestStack(t)
	hotelID, categoryID, roomID := seedGrandHotel(t, s)

	seen := map[string]bool{}
	checkIns := []string{"2024-06-01", "2024-06-05", "2024-06-09"}
	for _, in := range checkIns {
		b := grandBooking(hotelID, categoryID, roomID)
		b.CheckInDate = in
		b.CheckOutDate = d(in).AddDate(0, 0, 3).Format("2006-01-02")
		created, err := s.bookings.CreateBooking(b)
		require.NoError(t, err)
		assert.False(t, seen[created.BookingNo], "booking no %s repeated", created.BookingNo)
		seen[created.BookingNo] = true
	}
}

func f64Ptr(v float64) *float64 { return &v }
