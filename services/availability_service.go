package services

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"hotel-pms/models"
)

const dayLayout = "2006-01-02"

// AvailabilityService answers "is this room free for these dates" from the
// bookings table, the sole source of truth for occupancy.
type AvailabilityService struct {
	DB *gorm.DB
}

func NewAvailabilityService(db *gorm.DB) *AvailabilityService {
	return &AvailabilityService{DB: db}
}

// Overlaps reports whether the half-open intervals [a1,a2) and [b1,b2)
// intersect. Equal boundary dates do not overlap, so back-to-back stays are
// legal.
func Overlaps(a1, a2, b1, b2 time.Time) bool {
	return a1.Before(b2) && b1.Before(a2)
}

// FindConflict returns the first non-cancelled booking of the exact
// (hotel, room, category) triple whose dates overlap [checkIn, checkOut).
// excludeID skips the booking being updated; pass 0 on the create path.
// A nil booking with nil error means the range is free.
//
// Must run strictly before the write that depends on it.
func (s *AvailabilityService) FindConflict(db *gorm.DB, hotelID uint, roomID, categoryID string, checkIn, checkOut time.Time, excludeID uint) (*models.Booking, error) {
	if db == nil {
		db = s.DB
	}

	q := db.Model(&models.Booking{}).
		Where("hotel_id = ? AND room_number_id = ? AND room_category_id = ?", hotelID, roomID, categoryID).
		Where("status_id <> ?", models.BookingStatusCancelled).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn).
		Order("check_in_date ASC")
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}

	var conflict models.Booking
	err := q.First(&conflict).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &conflict, nil
}

// BookedDates expands every active booking of the room into day strings
// (check-out day excluded). This is the ledger-derived view stored back onto
// the room as a convenience for calendars.
func (s *AvailabilityService) BookedDates(hotelID uint, roomID, categoryID string) ([]string, error) {
	var bookings []models.Booking
	err := s.DB.
		Where("hotel_id = ? AND room_number_id = ? AND room_category_id = ?", hotelID, roomID, categoryID).
		Where("status_id <> ?", models.BookingStatusCancelled).
		Order("check_in_date ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{}
	days := []string{}
	for _, b := range bookings {
		if b.CheckInDate == nil || b.CheckOutDate == nil {
			continue
		}
		for d := *b.CheckInDate; d.Before(*b.CheckOutDate); d = d.AddDate(0, 0, 1) {
			key := d.Format(dayLayout)
			if !seen[key] {
				seen[key] = true
				days = append(days, key)
			}
		}
	}
	return days, nil
}

// AvailableRooms filters the hotel's in-memory tree down to rooms that have
// no overlapping active booking for [checkIn, checkOut). Rooms flagged
// maintenance are never offered. categoryID narrows the search when set.
func (s *AvailabilityService) AvailableRooms(hotel *models.Hotel, categoryID string, checkIn, checkOut time.Time) (map[string][]models.Room, error) {
	var busy []string
	err := s.DB.Model(&models.Booking{}).
		Where("hotel_id = ?", hotel.HotelID).
		Where("status_id <> ?", models.BookingStatusCancelled).
		Where("check_in_date < ? AND check_out_date > ?", checkOut, checkIn).
		Distinct().
		Pluck("room_number_id", &busy).Error
	if err != nil {
		return nil, err
	}
	busySet := map[string]bool{}
	for _, id := range busy {
		busySet[id] = true
	}

	out := map[string][]models.Room{}
	for _, cat := range hotel.Categories {
		if categoryID != "" && cat.ID != categoryID {
			continue
		}
		if !cat.IsActive {
			continue
		}
		for _, room := range cat.Rooms {
			if room.Status == models.RoomStatusMaintenance || busySet[room.ID] {
				continue
			}
			out[cat.Name] = append(out[cat.Name], room)
		}
	}
	return out, nil
}
