package controllers

import (
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"hotel-pms/services"
	"hotel-pms/utils"
)

type HotelController struct {
	Hotels       *services.HotelService
	Availability *services.AvailabilityService
}

func NewHotelController(hotels *services.HotelService, availability *services.AvailabilityService) *HotelController {
	return &HotelController{Hotels: hotels, Availability: availability}
}

// POST /api/hotels
func (hc *HotelController) CreateHotel(c *gin.Context) {
	var in services.HotelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		log.Printf("❌ JSON BINDING ERROR (400): %v", err)
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	hotel, err := hc.Hotels.CreateHotel(in)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, hotel)
}

// GET /api/hotels
func (hc *HotelController) GetHotels(c *gin.Context) {
	hotels, err := hc.Hotels.ListHotels()
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hotels)
}

// GET /api/hotels/:id accepts the storage id or the numeric hotelId.
func (hc *HotelController) GetHotel(c *gin.Context) {
	hotel, err := hc.Hotels.ResolveHotel(c.Param("id"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hotel)
}

// PUT /api/hotels/:id
func (hc *HotelController) UpdateHotel(c *gin.Context) {
	var in services.UpdateHotelInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	hotel, err := hc.Hotels.UpdateHotel(c.Param("id"), in)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hotel)
}

// DELETE /api/hotels/:id
func (hc *HotelController) DeleteHotel(c *gin.Context) {
	if err := hc.Hotels.DeleteHotel(c.Param("id")); err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{"message": "hotel deleted"})
}

// POST /api/hotels/:id/categories
func (hc *HotelController) AddCategory(c *gin.Context) {
	var in services.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	hotel, err := hc.Hotels.AddCategory(c.Param("id"), in)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, hotel)
}

// PUT /api/hotels/:id/categories/:categoryId
func (hc *HotelController) UpdateCategory(c *gin.Context) {
	var in services.UpdateCategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	hotel, err := hc.Hotels.UpdateCategory(c.Param("id"), c.Param("categoryId"), in)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hotel)
}

// DELETE /api/hotels/:id/categories/:categoryId
func (hc *HotelController) DeleteCategory(c *gin.Context) {
	hotel, err := hc.Hotels.RemoveCategory(c.Param("id"), c.Param("categoryId"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hotel)
}

// POST /api/hotels/:id/categories/:categoryId/rooms
func (hc *HotelController) AddRoom(c *gin.Context) {
	var in services.RoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	hotel, err := hc.Hotels.AddRoom(c.Param("id"), c.Param("categoryId"), in)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusCreated, hotel)
}

// PUT /api/hotels/:id/categories/:categoryId/rooms/:roomId
func (hc *HotelController) UpdateRoom(c *gin.Context) {
	var in services.UpdateRoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload")
		return
	}

	hotel, err := hc.Hotels.UpdateRoom(c.Param("id"), c.Param("categoryId"), c.Param("roomId"), in)
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hotel)
}

// DELETE /api/hotels/:id/categories/:categoryId/rooms/:roomId
func (hc *HotelController) DeleteRoom(c *gin.Context) {
	hotel, err := hc.Hotels.RemoveRoom(c.Param("id"), c.Param("categoryId"), c.Param("roomId"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}
	utils.JSONSuccess(c, http.StatusOK, hotel)
}

// GET /api/hotels/:id/availability?checkIn=...&checkOut=...&categoryId=...
func (hc *HotelController) GetAvailability(c *gin.Context) {
	hotel, err := hc.Hotels.ResolveHotel(c.Param("id"))
	if err != nil {
		utils.RespondFailure(c, err)
		return
	}

	checkIn, err1 := time.Parse("2006-01-02", c.Query("checkIn"))
	checkOut, err2 := time.Parse("2006-01-02", c.Query("checkOut"))
	if err1 != nil || err2 != nil || !checkOut.After(checkIn) {
		utils.JSONError(c, http.StatusBadRequest, "checkIn and checkOut are required as YYYY-MM-DD, checkOut after checkIn")
		return
	}

	rooms, err := hc.Availability.AvailableRooms(hotel, c.Query("categoryId"), checkIn, checkOut)
	if err != nil {
		utils.RespondFailure(c, utils.Internal(err))
		return
	}
	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"hotelId":  hotel.HotelID,
		"checkIn":  checkIn.Format("2006-01-02"),
		"checkOut": checkOut.Format("2006-01-02"),
		"rooms":    rooms,
	})
}
