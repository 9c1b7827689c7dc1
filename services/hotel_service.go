package services

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"hotel-pms/models"
	"hotel-pms/utils"
)

// aggregateSaveRetries bounds the reload-and-reapply loop when a concurrent
// writer bumped the hotel's version between our read and our save.
const aggregateSaveRetries = 3

var errVersionConflict = errors.New("aggregate version conflict")

var hotelStatuses = map[string]bool{
	models.HotelStatusActive:      true,
	models.HotelStatusInactive:    true,
	models.HotelStatusMaintenance: true,
}

var roomStatuses = map[string]bool{
	models.RoomStatusAvailable:   true,
	models.RoomStatusOccupied:    true,
	models.RoomStatusMaintenance: true,
	models.RoomStatusReserved:    true,
}

// HotelService owns the Hotel → Category → Room aggregate. Every mutation
// loads the whole document, changes it in memory and saves it back in one
// write guarded by a version compare-and-swap.
type HotelService struct {
	DB       *gorm.DB
	Notifier Notifier
}

func NewHotelService(db *gorm.DB, notifier Notifier) *HotelService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &HotelService{DB: db, Notifier: notifier}
}

type HotelInput struct {
	Name    string   `json:"name"`
	Address string   `json:"address"`
	City    string   `json:"city"`
	Phone   string   `json:"phone"`
	Email   string   `json:"email"`
	Status  string   `json:"status"`
	Images  []string `json:"images"`
}

type UpdateHotelInput struct {
	Name    *string  `json:"name"`
	Address *string  `json:"address"`
	City    *string  `json:"city"`
	Phone   *string  `json:"phone"`
	Email   *string  `json:"email"`
	Status  *string  `json:"status"`
	Images  []string `json:"images"`
}

type CategoryInput struct {
	Name         string   `json:"name"`
	BasePrice    float64  `json:"basePrice"`
	MaxOccupancy int      `json:"maxOccupancy"`
	IsActive     *bool    `json:"isActive"`
	Images       []string `json:"images"`
}

type UpdateCategoryInput struct {
	Name         *string  `json:"name"`
	BasePrice    *float64 `json:"basePrice"`
	MaxOccupancy *int     `json:"maxOccupancy"`
	IsActive     *bool    `json:"isActive"`
	Images       []string `json:"images"`
}

type RoomInput struct {
	Name     string   `json:"name"`
	Status   string   `json:"status"`
	Price    float64  `json:"price"`
	Capacity int      `json:"capacity"`
	Images   []string `json:"images"`
}

type UpdateRoomInput struct {
	Name     *string  `json:"name"`
	Status   *string  `json:"status"`
	Price    *float64 `json:"price"`
	Capacity *int     `json:"capacity"`
	Images   []string `json:"images"`
}

// CreateHotel inserts a new aggregate with the next sequential hotel_id.
func (s *HotelService) CreateHotel(in HotelInput) (*models.Hotel, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.Name) == "" {
		fields["name"] = "name is required"
	}
	if in.Status != "" && !hotelStatuses[in.Status] {
		fields["status"] = "status must be one of active, inactive, maintenance"
	}
	if len(fields) > 0 {
		return nil, utils.Validation(fields)
	}

	urls, saved, err := ResolveImages(in.Images, "hotels")
	if err != nil {
		return nil, utils.BadRequest("invalid image payload: " + err.Error())
	}

	status := in.Status
	if status == "" {
		status = models.HotelStatusActive
	}

	hotel := &models.Hotel{
		Name:       strings.TrimSpace(in.Name),
		Address:    strings.TrimSpace(in.Address),
		City:       strings.TrimSpace(in.City),
		Phone:      strings.TrimSpace(in.Phone),
		Email:      strings.TrimSpace(in.Email),
		Status:     status,
		Images:     MergeImages(nil, urls),
		Categories: []models.Category{},
	}
	hotel.RecomputeRoomCounts()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var current int64
		if err := tx.Model(&models.Hotel{}).Unscoped().
			Select("COALESCE(MAX(hotel_id), 0)").Scan(&current).Error; err != nil {
			return err
		}
		hotel.HotelID = uint(current) + 1
		return tx.Create(hotel).Error
	})
	if txErr != nil {
		CleanupImages(saved)
		return nil, utils.Internal(txErr)
	}
	CleanupUnreferenced(saved, hotel.Images)

	s.Notifier.Publish("hotel:created", hotel.ID)
	return hotel, nil
}

// ResolveHotel accepts either the storage primary key or the numeric
// hotel_id business key, trying the primary key first. One function so the
// polymorphic lookup does not leak into callers.
func (s *HotelService) ResolveHotel(identifier string) (*models.Hotel, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(identifier), 10, 64)
	if err != nil {
		return nil, utils.BadRequest("invalid hotel identifier")
	}

	var hotel models.Hotel
	err = s.DB.First(&hotel, uint(n)).Error
	if err == nil {
		return &hotel, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.Internal(err)
	}

	err = s.DB.Where("hotel_id = ?", uint(n)).First(&hotel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("hotel", identifier)
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	return &hotel, nil
}

// HotelByHotelID looks up strictly by the business key. The booking ledger
// stores hotel_id, never the storage id.
func (s *HotelService) HotelByHotelID(hotelID uint) (*models.Hotel, error) {
	var hotel models.Hotel
	err := s.DB.Where("hotel_id = ?", hotelID).First(&hotel).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("hotel", hotelID)
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	return &hotel, nil
}

func (s *HotelService) ListHotels() ([]models.Hotel, error) {
	var hotels []models.Hotel
	if err := s.DB.Order("hotel_id ASC").Find(&hotels).Error; err != nil {
		return nil, utils.Internal(err)
	}
	return hotels, nil
}

// saveAggregate recomputes the derived counts and writes the whole document
// back, compare-and-swapping on version.
func (s *HotelService) saveAggregate(h *models.Hotel) error {
	h.RecomputeRoomCounts()
	res := s.DB.Model(&models.Hotel{}).
		Where("id = ? AND version = ?", h.ID, h.Version).
		Updates(map[string]interface{}{
			"name":            h.Name,
			"address":         h.Address,
			"city":            h.City,
			"phone":           h.Phone,
			"email":           h.Email,
			"status":          h.Status,
			"images":          h.Images,
			"categories":      h.Categories,
			"total_rooms":     h.TotalRooms,
			"available_rooms": h.AvailableRooms,
			"version":         h.Version + 1,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errVersionConflict
	}
	h.Version++
	return nil
}

// mutate runs fn against a freshly loaded aggregate and saves it, retrying
// the whole read-apply-save on version conflicts.
func (s *HotelService) mutate(load func() (*models.Hotel, error), fn func(h *models.Hotel) error) (*models.Hotel, error) {
	for attempt := 0; attempt < aggregateSaveRetries; attempt++ {
		hotel, err := load()
		if err != nil {
			return nil, err
		}
		if err := fn(hotel); err != nil {
			return nil, err
		}
		err = s.saveAggregate(hotel)
		if err == nil {
			return hotel, nil
		}
		if !errors.Is(err, errVersionConflict) {
			return nil, utils.Internal(err)
		}
	}
	return nil, utils.Conflict("hotel was modified concurrently, please retry", nil)
}

func (s *HotelService) mutateByIdentifier(identifier string, fn func(h *models.Hotel) error) (*models.Hotel, error) {
	return s.mutate(func() (*models.Hotel, error) { return s.ResolveHotel(identifier) }, fn)
}

// UpdateHotel patches top-level fields; incoming images are merged onto the
// existing list and capped.
func (s *HotelService) UpdateHotel(identifier string, in UpdateHotelInput) (*models.Hotel, error) {
	if in.Status != nil && !hotelStatuses[*in.Status] {
		return nil, utils.Validation(map[string]string{
			"status": "status must be one of active, inactive, maintenance",
		})
	}
	urls, saved, err := ResolveImages(in.Images, "hotels")
	if err != nil {
		return nil, utils.BadRequest("invalid image payload: " + err.Error())
	}

	var kept []string
	hotel, err := s.mutateByIdentifier(identifier, func(h *models.Hotel) error {
		if in.Name != nil && strings.TrimSpace(*in.Name) != "" {
			h.Name = strings.TrimSpace(*in.Name)
		}
		if in.Address != nil {
			h.Address = strings.TrimSpace(*in.Address)
		}
		if in.City != nil {
			h.City = strings.TrimSpace(*in.City)
		}
		if in.Phone != nil {
			h.Phone = strings.TrimSpace(*in.Phone)
		}
		if in.Email != nil {
			h.Email = strings.TrimSpace(*in.Email)
		}
		if in.Status != nil {
			h.Status = *in.Status
		}
		if len(urls) > 0 {
			h.Images = MergeImages(h.Images, urls)
			kept = h.Images
		}
		return nil
	})
	if err != nil {
		CleanupImages(saved)
		return nil, err
	}
	CleanupUnreferenced(saved, kept)

	s.Notifier.Publish("hotel:updated", hotel.ID)
	return hotel, nil
}

// DeleteHotel removes the whole aggregate. Children are embedded, so no
// cascade is needed.
func (s *HotelService) DeleteHotel(identifier string) error {
	hotel, err := s.ResolveHotel(identifier)
	if err != nil {
		return err
	}
	if err := s.DB.Delete(hotel).Error; err != nil {
		return utils.Internal(err)
	}
	s.Notifier.Publish("hotel:deleted", hotel.ID)
	return nil
}

// AddCategory appends a category; its name must be unique within the hotel.
func (s *HotelService) AddCategory(identifier string, in CategoryInput) (*models.Hotel, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fields["name"] = "name is required"
	}
	if in.BasePrice < 0 {
		fields["basePrice"] = "basePrice cannot be negative"
	}
	if in.MaxOccupancy < 0 {
		fields["maxOccupancy"] = "maxOccupancy cannot be negative"
	}
	if len(fields) > 0 {
		return nil, utils.Validation(fields)
	}

	urls, saved, err := ResolveImages(in.Images, "categories")
	if err != nil {
		return nil, utils.BadRequest("invalid image payload: " + err.Error())
	}

	var categoryID string
	var kept []string
	hotel, err := s.mutateByIdentifier(identifier, func(h *models.Hotel) error {
		if existing := h.CategoryByName(name); existing != nil {
			return utils.Conflict("category name already exists in this hotel", map[string]interface{}{
				"categoryId": existing.ID,
				"name":       existing.Name,
			})
		}
		active := true
		if in.IsActive != nil {
			active = *in.IsActive
		}
		cat := models.Category{
			ID:           uuid.NewString(),
			Name:         name,
			BasePrice:    in.BasePrice,
			MaxOccupancy: in.MaxOccupancy,
			IsActive:     active,
			Images:       MergeImages(nil, urls),
			Rooms:        []models.Room{},
		}
		categoryID = cat.ID
		kept = cat.Images
		h.Categories = append(h.Categories, cat)
		return nil
	})
	if err != nil {
		CleanupImages(saved)
		return nil, err
	}
	CleanupUnreferenced(saved, kept)

	s.Notifier.Publish("hotel:category:created", categoryID)
	return hotel, nil
}

// locateCategory finds a category by id first, then by name.
func locateCategory(h *models.Hotel, idOrName string) *models.Category {
	if cat := h.CategoryByID(idOrName); cat != nil {
		return cat
	}
	return h.CategoryByName(idOrName)
}

func (s *HotelService) UpdateCategory(identifier, categoryID string, in UpdateCategoryInput) (*models.Hotel, error) {
	urls, saved, err := ResolveImages(in.Images, "categories")
	if err != nil {
		return nil, utils.BadRequest("invalid image payload: " + err.Error())
	}

	var kept []string
	hotel, err := s.mutateByIdentifier(identifier, func(h *models.Hotel) error {
		cat := locateCategory(h, categoryID)
		if cat == nil {
			return utils.NotFound("category", categoryID)
		}
		if in.Name != nil {
			newName := strings.TrimSpace(*in.Name)
			if newName == "" {
				return utils.Validation(map[string]string{"name": "name cannot be empty"})
			}
			if other := h.CategoryByName(newName); other != nil && other.ID != cat.ID {
				return utils.Conflict("category name already exists in this hotel", map[string]interface{}{
					"categoryId": other.ID,
					"name":       other.Name,
				})
			}
			cat.Name = newName
		}
		if in.BasePrice != nil {
			if *in.BasePrice < 0 {
				return utils.Validation(map[string]string{"basePrice": "basePrice cannot be negative"})
			}
			cat.BasePrice = *in.BasePrice
		}
		if in.MaxOccupancy != nil {
			cat.MaxOccupancy = *in.MaxOccupancy
		}
		if in.IsActive != nil {
			cat.IsActive = *in.IsActive
		}
		if len(urls) > 0 {
			cat.Images = MergeImages(cat.Images, urls)
			kept = cat.Images
		}
		return nil
	})
	if err != nil {
		CleanupImages(saved)
		return nil, err
	}
	CleanupUnreferenced(saved, kept)

	s.Notifier.Publish("hotel:category:updated", categoryID)
	return hotel, nil
}

func (s *HotelService) RemoveCategory(identifier, categoryID string) (*models.Hotel, error) {
	hotel, err := s.mutateByIdentifier(identifier, func(h *models.Hotel) error {
		for i := range h.Categories {
			if h.Categories[i].ID == categoryID || h.Categories[i].Name == categoryID {
				h.Categories = append(h.Categories[:i], h.Categories[i+1:]...)
				return nil
			}
		}
		return utils.NotFound("category", categoryID)
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish("hotel:category:deleted", categoryID)
	return hotel, nil
}

// AddRoom appends a room to a category; its name must be unique within that
// category.
func (s *HotelService) AddRoom(identifier, categoryID string, in RoomInput) (*models.Hotel, error) {
	fields := map[string]string{}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		fields["name"] = "name is required"
	}
	if in.Status != "" && !roomStatuses[in.Status] {
		fields["status"] = "status must be one of available, occupied, maintenance, reserved"
	}
	if in.Price < 0 {
		fields["price"] = "price cannot be negative"
	}
	if in.Capacity < 0 {
		fields["capacity"] = "capacity cannot be negative"
	}
	if len(fields) > 0 {
		return nil, utils.Validation(fields)
	}

	urls, saved, err := ResolveImages(in.Images, "rooms")
	if err != nil {
		return nil, utils.BadRequest("invalid image payload: " + err.Error())
	}

	var roomID string
	var kept []string
	hotel, err := s.mutateByIdentifier(identifier, func(h *models.Hotel) error {
		cat := locateCategory(h, categoryID)
		if cat == nil {
			return utils.NotFound("category", categoryID)
		}
		if existing := cat.RoomByName(name); existing != nil {
			return utils.Conflict("room name already exists in this category", map[string]interface{}{
				"roomId": existing.ID,
				"name":   existing.Name,
			})
		}
		status := in.Status
		if status == "" {
			status = models.RoomStatusAvailable
		}
		capacity := in.Capacity
		if capacity == 0 {
			capacity = 1
		}
		room := models.Room{
			ID:       uuid.NewString(),
			Name:     name,
			Status:   status,
			Price:    in.Price,
			Capacity: capacity,
			Images:   MergeImages(nil, urls),
		}
		roomID = room.ID
		kept = room.Images
		cat.Rooms = append(cat.Rooms, room)
		return nil
	})
	if err != nil {
		CleanupImages(saved)
		return nil, err
	}
	CleanupUnreferenced(saved, kept)

	s.Notifier.Publish("hotel:room:created", roomID)
	return hotel, nil
}

func (s *HotelService) UpdateRoom(identifier, categoryID, roomID string, in UpdateRoomInput) (*models.Hotel, error) {
	if in.Status != nil && !roomStatuses[*in.Status] {
		return nil, utils.Validation(map[string]string{
			"status": "status must be one of available, occupied, maintenance, reserved",
		})
	}
	urls, saved, err := ResolveImages(in.Images, "rooms")
	if err != nil {
		return nil, utils.BadRequest("invalid image payload: " + err.Error())
	}

	var kept []string
	hotel, err := s.mutateByIdentifier(identifier, func(h *models.Hotel) error {
		cat := locateCategory(h, categoryID)
		if cat == nil {
			return utils.NotFound("category", categoryID)
		}
		room := cat.RoomByID(roomID)
		if room == nil {
			room = cat.RoomByName(roomID)
		}
		if room == nil {
			return utils.NotFound("room", roomID)
		}
		if in.Name != nil {
			newName := strings.TrimSpace(*in.Name)
			if newName == "" {
				return utils.Validation(map[string]string{"name": "name cannot be empty"})
			}
			if other := cat.RoomByName(newName); other != nil && other.ID != room.ID {
				return utils.Conflict("room name already exists in this category", map[string]interface{}{
					"roomId": other.ID,
					"name":   other.Name,
				})
			}
			room.Name = newName
		}
		if in.Status != nil {
			room.Status = *in.Status
		}
		if in.Price != nil {
			if *in.Price < 0 {
				return utils.Validation(map[string]string{"price": "price cannot be negative"})
			}
			room.Price = *in.Price
		}
		if in.Capacity != nil {
			room.Capacity = *in.Capacity
		}
		if len(urls) > 0 {
			room.Images = MergeImages(room.Images, urls)
			kept = room.Images
		}
		return nil
	})
	if err != nil {
		CleanupImages(saved)
		return nil, err
	}
	CleanupUnreferenced(saved, kept)

	s.Notifier.Publish("hotel:room:updated", roomID)
	return hotel, nil
}

func (s *HotelService) RemoveRoom(identifier, categoryID, roomID string) (*models.Hotel, error) {
	hotel, err := s.mutateByIdentifier(identifier, func(h *models.Hotel) error {
		cat := locateCategory(h, categoryID)
		if cat == nil {
			return utils.NotFound("category", categoryID)
		}
		for i := range cat.Rooms {
			if cat.Rooms[i].ID == roomID || cat.Rooms[i].Name == roomID {
				cat.Rooms = append(cat.Rooms[:i], cat.Rooms[i+1:]...)
				return nil
			}
		}
		return utils.NotFound("room", roomID)
	})
	if err != nil {
		return nil, err
	}

	s.Notifier.Publish("hotel:room:deleted", roomID)
	return hotel, nil
}

// SyncRoomOccupancy writes the ledger-derived occupancy view (status +
// booked dates) back onto the embedded room. Rooms parked in maintenance
// keep that status.
func (s *HotelService) SyncRoomOccupancy(hotelID uint, categoryID, roomID, status string, bookedDates []string) error {
	_, err := s.mutate(
		func() (*models.Hotel, error) { return s.HotelByHotelID(hotelID) },
		func(h *models.Hotel) error {
			cat := h.CategoryByID(categoryID)
			if cat == nil {
				return utils.NotFound("category", categoryID)
			}
			room := cat.RoomByID(roomID)
			if room == nil {
				return utils.NotFound("room", roomID)
			}
			room.BookedDates = bookedDates
			if status != "" && room.Status != models.RoomStatusMaintenance {
				room.Status = status
			}
			return nil
		})
	if err != nil {
		return err
	}
	s.Notifier.Publish("hotel:room:updated", roomID)
	return nil
}
