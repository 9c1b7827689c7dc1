package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RestaurantOrder exists for the order-number scheme; menu and table
// management live elsewhere.
type RestaurantOrder struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OrderNo   string         `gorm:"column:order_no;size:32;uniqueIndex" json:"orderNo"`
	HotelID   uint           `gorm:"column:hotel_id;index" json:"hotelId,omitempty"`
	TableName string         `gorm:"column:table_name;size:64" json:"tableName,omitempty"`
	Items     datatypes.JSON `gorm:"column:items" json:"items,omitempty"`
	Total     float64        `gorm:"column:total" json:"total"`
	Status    string         `gorm:"column:status;size:32;default:open" json:"status"`
	OrderedBy string         `gorm:"column:ordered_by;size:191" json:"orderedBy,omitempty"`
}
