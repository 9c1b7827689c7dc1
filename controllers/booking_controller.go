package controllers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type BookingController struct {
	Bookings     *services.BookingService
	Availability *services.AvailabilityService
}

func NewBookingController(bookings *services.BookingService, availability *services.AvailabilityService) *BookingController {
	return &BookingController{Bookings: bookings, Availability: availability}
}

func bookingID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid booking id")
		return 0, false
	}
	return uint(id), true
}

// actor pulls the authenticated identity forwarded by the gateway; used only
// for audit fields.
func actor(c *gin.Context) string {
	return c.GetHeader("X-Actor")
}

// POST /api/bookings
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var in services.BookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Printf("❌ JSON BINDING ERROR (400): %v", err)
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if in.BookedBy == "" {
		in.BookedBy = actor(c)
	}

	booking, err := bc.Bookings.CreateBooking(in)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, booking)
}

// GET /api/bookings?hotelId=&statusId=&includeCancelled=
func (bc *BookingController) GetBookings(c *gin.Context) {
	var filter services.BookingFilter
	if v, err := strconv.ParseUint(c.Query("hotelId"), 10, 64); err == nil {
		filter.HotelID = uint(v)
	}
	if v, err := strconv.ParseUint(c.Query("statusId"), 10, 8); err == nil {
		filter.StatusID = uint8(v)
	}
	filter.IncludeCancelled = c.Query("includeCancelled") == "true"

	bookings, err := bc.Bookings.ListBookings(filter)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, bookings)
}

// GET /api/bookings/:id
func (bc *BookingController) GetBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	booking, err := bc.Bookings.GetBooking(id)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// PUT /api/bookings/:id
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var in services.UpdateBookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	booking, err := bc.Bookings.UpdateBooking(id, in)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// POST /api/bookings/:id/cancel
func (bc *BookingController) CancelBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	booking, err := bc.Bookings.CancelBooking(id, actor(c), body.Reason)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// POST /api/bookings/:id/checkin
func (bc *BookingController) CheckIn(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	booking, err := bc.Bookings.CheckIn(id)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// POST /api/bookings/:id/checkout
func (bc *BookingController) CheckOut(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	booking, err := bc.Bookings.CheckOut(id)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, booking)
}

// DELETE /api/bookings/:id removes the row physically, unlike cancel.
func (bc *BookingController) DeleteBooking(c *gin.Context) {
	id, ok := bookingID(c)
	if !ok {
		return
	}
	if err := bc.Bookings.HardDelete(id); err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "booking deleted"})
}

// GET /api/bookings/stats
func (bc *BookingController) GetStats(c *gin.Context) {
	stats, err := bc.Bookings.Stats()
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, stats)
}

// GET /api/bookings/availability probes a room and date range for conflicts
// without writing anything.
func (bc *BookingController) CheckAvailability(c *gin.Context) {
	hotelID, err := strconv.ParseUint(c.Query("hotelId"), 10, 64)
	roomID := c.Query("roomId")
	categoryID := c.Query("categoryId")
	checkIn, err1 := time.Parse("2006-01-02", c.Query("checkIn"))
	checkOut, err2 := time.Parse("2006-01-02", c.Query("checkOut"))

	if err != nil || roomID == "" || categoryID == "" || err1 != nil || err2 != nil || !checkOut.After(checkIn) {
		utils.JSONError(c, http.StatusBadRequest, "hotelId, roomId, categoryId, checkIn and checkOut (YYYY-MM-DD) are required")
		return
	}

	conflict, err := bc.Availability.FindConflict(nil, uint(hotelID), roomID, categoryID, checkIn, checkOut, 0)
	if err != nil {
		utils.RespondFailure(c, utils.Internal(err))
		return
	}

	if conflict == nil {
		utils.JSONSuccess(c, http.StatusOK, gin.H{"available": true})
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"available": false,
		"conflict": gin.H{
			"bookingNo":    conflict.BookingNo,
			"guestName":    conflict.GuestName,
			"checkInDate":  conflict.CheckInDate.Format("2006-01-02"),
			"checkOutDate": conflict.CheckOutDate.Format("2006-01-02"),
		},
	})
}
