package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking status ids (kept numeric for wire compatibility with the frontend).
const (
	BookingStatusConfirmed  uint8 = 1
	BookingStatusCheckedIn  uint8 = 2
	BookingStatusCheckedOut uint8 = 3
	BookingStatusCancelled  uint8 = 255
)

// Booking is the reservation ledger row and the sole source of truth for
// room occupancy. Category/room names are snapshotted at booking time, not
// live-joined.
type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	GuestName  string `gorm:"column:guest_name;size:191" json:"guestName"`
	GuestPhone string `gorm:"column:guest_phone;size:32" json:"guestPhone,omitempty"`
	GuestEmail string `gorm:"column:guest_email;size:191" json:"guestEmail,omitempty"`

	// Linkage to the inventory tree. The compound index is what the overlap
	// detector scans.
	HotelID          uint   `gorm:"column:hotel_id;index:idx_booking_scope,priority:1" json:"hotelId"`
	RoomNumberID     string `gorm:"column:room_number_id;size:64;index:idx_booking_scope,priority:2" json:"roomNumberId"`
	RoomCategoryID   string `gorm:"column:room_category_id;size:64;index:idx_booking_scope,priority:3" json:"roomCategoryId"`
	RoomCategoryName string `gorm:"column:room_category_name;size:191" json:"roomCategoryName,omitempty"`
	RoomNumberName   string `gorm:"column:room_number_name;size:191" json:"roomNumberName,omitempty"`

	Price        float64    `gorm:"column:price" json:"price"`
	CheckInDate  *time.Time `gorm:"column:check_in_date;index" json:"checkInDate"`
	CheckOutDate *time.Time `gorm:"column:check_out_date" json:"checkOutDate"`
	Nights       int        `gorm:"column:nights" json:"nights"`

	Adults   int `gorm:"column:adults;default:1" json:"adults"`
	Children int `gorm:"column:children;default:0" json:"children"`

	TotalBill      float64 `gorm:"column:total_bill" json:"totalBill"`
	AdvancePayment float64 `gorm:"column:advance_payment" json:"advancePayment"`
	DuePayment     float64 `gorm:"column:due_payment" json:"duePayment"`
	PaymentMethod  string  `gorm:"column:payment_method;size:64" json:"paymentMethod,omitempty"`

	BookingNo string `gorm:"column:booking_no;size:16;index" json:"bookingNo"`
	SerialNo  uint   `gorm:"column:serial_no;index" json:"serialNo"`
	// Reference holds another booking's bookingNo when this row is part of a
	// multi-room stay sharing one number.
	Reference string `gorm:"column:reference;size:16" json:"reference,omitempty"`

	StatusID uint8 `gorm:"column:status_id;default:1;index:idx_booking_scope,priority:4" json:"statusId"`

	BookedBy     string     `gorm:"column:booked_by;size:191" json:"bookedBy,omitempty"`
	CanceledBy   string     `gorm:"column:canceled_by;size:191" json:"canceledBy,omitempty"`
	CancelReason string     `gorm:"column:cancel_reason;size:255" json:"cancelReason,omitempty"`
	CanceledAt   *time.Time `gorm:"column:canceled_at" json:"canceledAt,omitempty"`
}

// RecalcDerived refreshes Nights and DuePayment from their operands. Called
// whenever dates or payment fields change.
func (b *Booking) RecalcDerived() {
	if b.CheckInDate != nil && b.CheckOutDate != nil && b.CheckOutDate.After(*b.CheckInDate) {
		b.Nights = int(b.CheckOutDate.Sub(*b.CheckInDate).Hours() / 24)
		if b.Nights <= 0 {
			b.Nights = 1
		}
	}
	due := b.TotalBill - b.AdvancePayment
	if due < 0 {
		due = 0
	}
	b.DuePayment = due
}

// Active reports whether the booking participates in conflict checks and
// statistics.
func (b *Booking) Active() bool {
	return b.StatusID != BookingStatusCancelled
}
