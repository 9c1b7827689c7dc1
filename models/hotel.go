package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Hotel statuses
const (
	HotelStatusActive      = "active"
	HotelStatusInactive    = "inactive"
	HotelStatusMaintenance = "maintenance"
)

// Room statuses
const (
	RoomStatusAvailable   = "available"
	RoomStatusOccupied    = "occupied"
	RoomStatusMaintenance = "maintenance"
	RoomStatusReserved    = "reserved"
)

// MaxImagesPerEntity caps every image list (hotel, category, room).
const MaxImagesPerEntity = 3

// Room is embedded inside a Category; it never lives in its own table.
// BookedDates is a derived view refreshed from the bookings table.
type Room struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Status      string   `json:"status"`
	Price       float64  `json:"price"`
	Capacity    int      `json:"capacity"`
	Images      []string `json:"images,omitempty"`
	BookedDates []string `json:"bookedDates,omitempty"`
}

// Category is embedded inside a Hotel. Its ID is an opaque uuid scoped
// to the parent hotel.
type Category struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	BasePrice    float64  `json:"basePrice"`
	MaxOccupancy int      `json:"maxOccupancy"`
	IsActive     bool     `json:"isActive"`
	Images       []string `json:"images,omitempty"`
	Rooms        []Room   `json:"rooms"`
}

// Hotel is the aggregate root. The whole Category/Room tree is stored as a
// JSON document column and mutated via load → change in memory → save.
// Version backs the compare-and-swap on every save.
type Hotel struct {
	gorm.Model

	HotelID uint   `gorm:"column:hotel_id;uniqueIndex" json:"hotelId"`
	Name    string `gorm:"size:191" json:"name"`
	Address string `gorm:"size:255" json:"address,omitempty"`
	City    string `gorm:"size:128" json:"city,omitempty"`
	Phone   string `gorm:"size:32" json:"phone,omitempty"`
	Email   string `gorm:"size:191" json:"email,omitempty"`
	Status  string `gorm:"size:32;default:active" json:"status"`

	Images     datatypes.JSONSlice[string]   `gorm:"column:images" json:"images"`
	Categories datatypes.JSONSlice[Category] `gorm:"column:categories" json:"categories"`

	// Derived from the tree on every save, never authoritative on their own.
	TotalRooms     int `gorm:"column:total_rooms" json:"totalRooms"`
	AvailableRooms int `gorm:"column:available_rooms" json:"availableRooms"`

	Version uint `gorm:"column:version;default:0" json:"-"`
}

// CategoryByID returns a pointer into h.Categories, or nil.
func (h *Hotel) CategoryByID(id string) *Category {
	for i := range h.Categories {
		if h.Categories[i].ID == id {
			return &h.Categories[i]
		}
	}
	return nil
}

// CategoryByName matches case-sensitively, the same rule the uniqueness
// check applies.
func (h *Hotel) CategoryByName(name string) *Category {
	for i := range h.Categories {
		if h.Categories[i].Name == name {
			return &h.Categories[i]
		}
	}
	return nil
}

// RoomByID returns a pointer into c.Rooms, or nil.
func (c *Category) RoomByID(id string) *Room {
	for i := range c.Rooms {
		if c.Rooms[i].ID == id {
			return &c.Rooms[i]
		}
	}
	return nil
}

func (c *Category) RoomByName(name string) *Room {
	for i := range c.Rooms {
		if c.Rooms[i].Name == name {
			return &c.Rooms[i]
		}
	}
	return nil
}

// RecomputeRoomCounts refreshes TotalRooms/AvailableRooms from the in-memory
// tree. Every mutation entry point calls this right before saving, whether or
// not it touched rooms.
func (h *Hotel) RecomputeRoomCounts() {
	total := 0
	available := 0
	for i := range h.Categories {
		for j := range h.Categories[i].Rooms {
			total++
			if h.Categories[i].Rooms[j].Status == RoomStatusAvailable {
				available++
			}
		}
	}
	h.TotalRooms = total
	h.AvailableRooms = available
}
