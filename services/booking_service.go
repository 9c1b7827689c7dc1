package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"gorm.io/gorm"

	"hotel-pms/models"
	"hotel-pms/utils"
)

// BookingService is the reservation ledger: the bookings table it writes is
// the single source of truth for who holds which room on which nights.
type BookingService struct {
	DB           *gorm.DB
	Availability *AvailabilityService
	Sequences    *SequenceService
	Hotels       *HotelService
	Notifier     Notifier
}

func NewBookingService(db *gorm.DB, availability *AvailabilityService, sequences *SequenceService, hotels *HotelService, notifier Notifier) *BookingService {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &BookingService{
		DB:           db,
		Availability: availability,
		Sequences:    sequences,
		Hotels:       hotels,
		Notifier:     notifier,
	}
}

type BookingInput struct {
	GuestName  string `json:"guestName"`
	GuestPhone string `json:"guestPhone"`
	GuestEmail string `json:"guestEmail"`

	HotelID        uint   `json:"hotelId"`
	RoomCategoryID string `json:"roomCategoryId"`
	RoomNumberID   string `json:"roomNumberId"`

	CheckInDate  string `json:"checkInDate"`
	CheckOutDate string `json:"checkOutDate"`

	Adults   int `json:"adults"`
	Children int `json:"children"`

	Price          float64 `json:"price"`
	TotalBill      float64 `json:"totalBill"`
	AdvancePayment float64 `json:"advancePayment"`
	PaymentMethod  string  `json:"paymentMethod"`

	// Reference names an existing bookingNo this booking should share
	// (multi-room stay under one number).
	Reference string `json:"reference"`
	BookedBy  string `json:"bookedBy"`
}

type UpdateBookingInput struct {
	GuestName  *string `json:"guestName"`
	GuestPhone *string `json:"guestPhone"`
	GuestEmail *string `json:"guestEmail"`

	HotelID        *uint   `json:"hotelId"`
	RoomCategoryID *string `json:"roomCategoryId"`
	RoomNumberID   *string `json:"roomNumberId"`

	CheckInDate  *string `json:"checkInDate"`
	CheckOutDate *string `json:"checkOutDate"`

	Adults   *int `json:"adults"`
	Children *int `json:"children"`

	Price          *float64 `json:"price"`
	TotalBill      *float64 `json:"totalBill"`
	AdvancePayment *float64 `json:"advancePayment"`
	PaymentMethod  *string  `json:"paymentMethod"`
}

type BookingFilter struct {
	HotelID          uint
	StatusID         uint8
	IncludeCancelled bool
}

type BookingStats struct {
	Total      int64 `json:"total"`
	Confirmed  int64 `json:"confirmed"`
	CheckedIn  int64 `json:"checkedIn"`
	CheckedOut int64 `json:"checkedOut"`
	Cancelled  int64 `json:"cancelled"`

	TotalRevenue float64 `json:"totalRevenue"`
	TotalAdvance float64 `json:"totalAdvance"`
	TotalDue     float64 `json:"totalDue"`

	TodayCheckIns  int64 `json:"todayCheckIns"`
	TodayCheckOuts int64 `json:"todayCheckOuts"`
}

// parseDay accepts 2006-01-02 or RFC3339 and normalizes to midnight.
func parseDay(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	var t time.Time
	var err error
	if t, err = time.Parse(dayLayout, s); err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
		}
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day, nil
}

func conflictSummary(b *models.Booking) map[string]interface{} {
	out := map[string]interface{}{
		"bookingId": b.ID,
		"bookingNo": b.BookingNo,
		"guestName": b.GuestName,
	}
	if b.CheckInDate != nil {
		out["checkInDate"] = b.CheckInDate.Format(dayLayout)
	}
	if b.CheckOutDate != nil {
		out["checkOutDate"] = b.CheckOutDate.Format(dayLayout)
	}
	return out
}

func conflictFailure(b *models.Booking) error {
	return utils.Conflict(
		fmt.Sprintf("room %s is already booked from %s to %s",
			b.RoomNumberName,
			b.CheckInDate.Format(dayLayout),
			b.CheckOutDate.Format(dayLayout)),
		conflictSummary(b))
}

func failureOrInternal(err error) error {
	var f *utils.Failure
	if errors.As(err, &f) {
		return f
	}
	return utils.Internal(err)
}

// CreateBooking validates, checks for overlaps, assigns identifiers and
// persists. The conflict check and the insert share one transaction.
func (s *BookingService) CreateBooking(in BookingInput) (*models.Booking, error) {
	fields := map[string]string{}
	if strings.TrimSpace(in.GuestName) == "" {
		fields["guestName"] = "guestName is required"
	}
	if in.HotelID == 0 {
		fields["hotelId"] = "hotelId is required"
	}
	if strings.TrimSpace(in.RoomCategoryID) == "" {
		fields["roomCategoryId"] = "roomCategoryId is required"
	}
	if strings.TrimSpace(in.RoomNumberID) == "" {
		fields["roomNumberId"] = "roomNumberId is required"
	}

	var checkIn, checkOut *time.Time
	if strings.TrimSpace(in.CheckInDate) == "" {
		fields["checkInDate"] = "checkInDate is required"
	} else if t, err := parseDay(in.CheckInDate); err != nil {
		fields["checkInDate"] = err.Error()
	} else {
		checkIn = t
	}
	if strings.TrimSpace(in.CheckOutDate) == "" {
		fields["checkOutDate"] = "checkOutDate is required"
	} else if t, err := parseDay(in.CheckOutDate); err != nil {
		fields["checkOutDate"] = err.Error()
	} else {
		checkOut = t
	}
	if checkIn != nil && checkOut != nil && !checkOut.After(*checkIn) {
		fields["checkOutDate"] = "checkOutDate must be after checkInDate"
	}
	if in.TotalBill < 0 {
		fields["totalBill"] = "totalBill cannot be negative"
	}
	if in.AdvancePayment < 0 {
		fields["advancePayment"] = "advancePayment cannot be negative"
	} else if in.AdvancePayment > in.TotalBill {
		fields["advancePayment"] = "advancePayment cannot exceed totalBill"
	}
	if len(fields) > 0 {
		return nil, utils.Validation(fields)
	}

	hotel, err := s.Hotels.HotelByHotelID(in.HotelID)
	if err != nil {
		return nil, err
	}
	cat := hotel.CategoryByID(in.RoomCategoryID)
	if cat == nil {
		return nil, utils.NotFound("category", in.RoomCategoryID)
	}
	room := cat.RoomByID(in.RoomNumberID)
	if room == nil {
		return nil, utils.NotFound("room", in.RoomNumberID)
	}

	adults := in.Adults
	if adults <= 0 {
		adults = 1
	}
	children := in.Children
	if children < 0 {
		children = 0
	}
	price := in.Price
	if price == 0 {
		price = room.Price
	}

	// The detector runs before any identifier is consumed, so a rejected
	// create leaves no gap in the serial or daily counters. The
	// in-transaction recheck below covers the race window.
	conflict, err := s.Availability.FindConflict(nil, in.HotelID, room.ID, cat.ID, *checkIn, *checkOut, 0)
	if err != nil {
		return nil, utils.Internal(err)
	}
	if conflict != nil {
		return nil, conflictFailure(conflict)
	}

	serial, err := s.Sequences.NextSerialNo()
	if err != nil {
		return nil, utils.Internal(err)
	}

	var bookingNo string
	reference := strings.TrimSpace(in.Reference)
	if reference != "" {
		var ref models.Booking
		err := s.DB.Where("booking_no = ?", reference).First(&ref).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFound("booking", reference)
		}
		if err != nil {
			return nil, utils.Internal(err)
		}
		bookingNo = ref.BookingNo
	} else {
		bookingNo, err = s.Sequences.NextBookingNo(time.Now())
		if err != nil {
			return nil, utils.Internal(err)
		}
	}

	booking := &models.Booking{
		GuestName:  strings.TrimSpace(in.GuestName),
		GuestPhone: strings.TrimSpace(in.GuestPhone),
		GuestEmail: strings.TrimSpace(in.GuestEmail),

		HotelID:          in.HotelID,
		RoomCategoryID:   cat.ID,
		RoomCategoryName: cat.Name,
		RoomNumberID:     room.ID,
		RoomNumberName:   room.Name,

		Price:        price,
		CheckInDate:  checkIn,
		CheckOutDate: checkOut,
		Adults:       adults,
		Children:     children,

		TotalBill:      in.TotalBill,
		AdvancePayment: in.AdvancePayment,
		PaymentMethod:  strings.TrimSpace(in.PaymentMethod),

		BookingNo: bookingNo,
		SerialNo:  serial,
		Reference: reference,
		StatusID:  models.BookingStatusConfirmed,
		BookedBy:  strings.TrimSpace(in.BookedBy),
	}
	booking.RecalcDerived()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		conflict, err := s.Availability.FindConflict(tx, booking.HotelID, booking.RoomNumberID, booking.RoomCategoryID, *checkIn, *checkOut, 0)
		if err != nil {
			return err
		}
		if conflict != nil {
			return conflictFailure(conflict)
		}
		return tx.Create(booking).Error
	})
	if txErr != nil {
		return nil, failureOrInternal(txErr)
	}

	s.syncRoom(booking.HotelID, booking.RoomCategoryID, booking.RoomNumberID, "")
	s.Notifier.Publish("hotel:booking:created", booking.ID)
	return booking, nil
}

// UpdateBooking patches a booking. The overlap detector runs again only when
// dates or room identity change, excluding the booking's own row.
func (s *BookingService) UpdateBooking(id uint, in UpdateBookingInput) (*models.Booking, error) {
	booking, err := s.GetBooking(id)
	if err != nil {
		return nil, err
	}
	if !booking.Active() {
		return nil, utils.Conflict("cancelled bookings cannot be updated", nil)
	}

	oldHotelID := booking.HotelID
	oldCategoryID := booking.RoomCategoryID
	oldRoomID := booking.RoomNumberID

	if in.GuestName != nil {
		booking.GuestName = strings.TrimSpace(*in.GuestName)
	}
	if in.GuestPhone != nil {
		booking.GuestPhone = strings.TrimSpace(*in.GuestPhone)
	}
	if in.GuestEmail != nil {
		booking.GuestEmail = strings.TrimSpace(*in.GuestEmail)
	}
	if in.Adults != nil && *in.Adults > 0 {
		booking.Adults = *in.Adults
	}
	if in.Children != nil && *in.Children >= 0 {
		booking.Children = *in.Children
	}
	if in.Price != nil {
		booking.Price = *in.Price
	}
	if in.PaymentMethod != nil {
		booking.PaymentMethod = strings.TrimSpace(*in.PaymentMethod)
	}

	fields := map[string]string{}
	if in.TotalBill != nil {
		if *in.TotalBill < 0 {
			fields["totalBill"] = "totalBill cannot be negative"
		} else {
			booking.TotalBill = *in.TotalBill
		}
	}
	if in.AdvancePayment != nil {
		if *in.AdvancePayment < 0 {
			fields["advancePayment"] = "advancePayment cannot be negative"
		} else {
			booking.AdvancePayment = *in.AdvancePayment
		}
	}
	if booking.AdvancePayment > booking.TotalBill {
		fields["advancePayment"] = "advancePayment cannot exceed totalBill"
	}

	datesChanged := false
	if in.CheckInDate != nil {
		if t, err := parseDay(*in.CheckInDate); err != nil {
			fields["checkInDate"] = err.Error()
		} else {
			booking.CheckInDate = t
			datesChanged = true
		}
	}
	if in.CheckOutDate != nil {
		if t, err := parseDay(*in.CheckOutDate); err != nil {
			fields["checkOutDate"] = err.Error()
		} else {
			booking.CheckOutDate = t
			datesChanged = true
		}
	}
	if booking.CheckInDate != nil && booking.CheckOutDate != nil && !booking.CheckOutDate.After(*booking.CheckInDate) {
		fields["checkOutDate"] = "checkOutDate must be after checkInDate"
	}

	roomChanged := false
	if in.HotelID != nil && *in.HotelID != booking.HotelID {
		booking.HotelID = *in.HotelID
		roomChanged = true
	}
	if in.RoomCategoryID != nil && *in.RoomCategoryID != booking.RoomCategoryID {
		booking.RoomCategoryID = *in.RoomCategoryID
		roomChanged = true
	}
	if in.RoomNumberID != nil && *in.RoomNumberID != booking.RoomNumberID {
		booking.RoomNumberID = *in.RoomNumberID
		roomChanged = true
	}
	if len(fields) > 0 {
		return nil, utils.Validation(fields)
	}

	if roomChanged {
		hotel, err := s.Hotels.HotelByHotelID(booking.HotelID)
		if err != nil {
			return nil, err
		}
		cat := hotel.CategoryByID(booking.RoomCategoryID)
		if cat == nil {
			return nil, utils.NotFound("category", booking.RoomCategoryID)
		}
		room := cat.RoomByID(booking.RoomNumberID)
		if room == nil {
			return nil, utils.NotFound("room", booking.RoomNumberID)
		}
		// re-snapshot names for the new room
		booking.RoomCategoryName = cat.Name
		booking.RoomNumberName = room.Name
	}

	booking.RecalcDerived()

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if roomChanged || datesChanged {
			conflict, err := s.Availability.FindConflict(tx, booking.HotelID, booking.RoomNumberID, booking.RoomCategoryID, *booking.CheckInDate, *booking.CheckOutDate, booking.ID)
			if err != nil {
				return err
			}
			if conflict != nil {
				return conflictFailure(conflict)
			}
		}
		return tx.Save(booking).Error
	})
	if txErr != nil {
		return nil, failureOrInternal(txErr)
	}

	if roomChanged {
		s.syncRoom(oldHotelID, oldCategoryID, oldRoomID, "")
	}
	s.syncRoom(booking.HotelID, booking.RoomCategoryID, booking.RoomNumberID, "")
	s.Notifier.Publish("hotel:booking:updated", booking.ID)
	return booking, nil
}

// CancelBooking soft-deletes: the row stays for history and reporting but
// stops counting for conflicts and stats.
func (s *BookingService) CancelBooking(id uint, actor, reason string) (*models.Booking, error) {
	booking, err := s.GetBooking(id)
	if err != nil {
		return nil, err
	}
	if !booking.Active() {
		return nil, utils.Conflict("booking is already cancelled", conflictSummary(booking))
	}

	now := time.Now().UTC()
	booking.StatusID = models.BookingStatusCancelled
	booking.CanceledBy = strings.TrimSpace(actor)
	booking.CancelReason = strings.TrimSpace(reason)
	booking.CanceledAt = &now

	if err := s.DB.Save(booking).Error; err != nil {
		return nil, utils.Internal(err)
	}

	s.syncRoom(booking.HotelID, booking.RoomCategoryID, booking.RoomNumberID, "")
	s.Notifier.Publish("hotel:booking:canceled", booking.ID)
	return booking, nil
}

// CheckIn moves a confirmed booking to checked-in and marks the room
// occupied.
func (s *BookingService) CheckIn(id uint) (*models.Booking, error) {
	booking, err := s.GetBooking(id)
	if err != nil {
		return nil, err
	}
	if booking.StatusID != models.BookingStatusConfirmed {
		return nil, utils.Conflict("only confirmed bookings can check in", conflictSummary(booking))
	}

	booking.StatusID = models.BookingStatusCheckedIn
	if err := s.DB.Save(booking).Error; err != nil {
		return nil, utils.Internal(err)
	}

	s.syncRoom(booking.HotelID, booking.RoomCategoryID, booking.RoomNumberID, models.RoomStatusOccupied)
	s.Notifier.Publish("hotel:booking:updated", booking.ID)
	return booking, nil
}

// CheckOut moves a checked-in booking to checked-out and releases the room.
func (s *BookingService) CheckOut(id uint) (*models.Booking, error) {
	booking, err := s.GetBooking(id)
	if err != nil {
		return nil, err
	}
	if booking.StatusID != models.BookingStatusCheckedIn {
		return nil, utils.Conflict("only checked-in bookings can check out", conflictSummary(booking))
	}

	booking.StatusID = models.BookingStatusCheckedOut
	if err := s.DB.Save(booking).Error; err != nil {
		return nil, utils.Internal(err)
	}

	s.syncRoom(booking.HotelID, booking.RoomCategoryID, booking.RoomNumberID, "")
	s.Notifier.Publish("hotel:booking:updated", booking.ID)
	return booking, nil
}

// HardDelete physically removes the row. Irreversible; prefer CancelBooking.
func (s *BookingService) HardDelete(id uint) error {
	booking, err := s.GetBooking(id)
	if err != nil {
		return err
	}
	if err := s.DB.Unscoped().Delete(booking).Error; err != nil {
		return utils.Internal(err)
	}

	s.syncRoom(booking.HotelID, booking.RoomCategoryID, booking.RoomNumberID, "")
	s.Notifier.Publish("hotel:booking:deleted", booking.ID)
	return nil
}

func (s *BookingService) GetBooking(id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.DB.First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.NotFound("booking", id)
	}
	if err != nil {
		return nil, utils.Internal(err)
	}
	return &booking, nil
}

func (s *BookingService) ListBookings(filter BookingFilter) ([]models.Booking, error) {
	q := s.DB.Model(&models.Booking{}).Order("created_at DESC")
	if filter.HotelID != 0 {
		q = q.Where("hotel_id = ?", filter.HotelID)
	}
	if filter.StatusID != 0 {
		q = q.Where("status_id = ?", filter.StatusID)
	} else if !filter.IncludeCancelled {
		q = q.Where("status_id <> ?", models.BookingStatusCancelled)
	}

	var bookings []models.Booking
	if err := q.Find(&bookings).Error; err != nil {
		return nil, utils.Internal(err)
	}
	return bookings, nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Stats is a read-only projection over the ledger; cancelled bookings only
// show up in their own counter.
func (s *BookingService) Stats() (*BookingStats, error) {
	stats := &BookingStats{}

	counts := []struct {
		status uint8
		dest   *int64
	}{
		{models.BookingStatusConfirmed, &stats.Confirmed},
		{models.BookingStatusCheckedIn, &stats.CheckedIn},
		{models.BookingStatusCheckedOut, &stats.CheckedOut},
		{models.BookingStatusCancelled, &stats.Cancelled},
	}
	for _, c := range counts {
		if err := s.DB.Model(&models.Booking{}).
			Where("status_id = ?", c.status).
			Count(c.dest).Error; err != nil {
			return nil, utils.Internal(err)
		}
	}
	stats.Total = stats.Confirmed + stats.CheckedIn + stats.CheckedOut + stats.Cancelled

	var sums struct {
		Revenue float64
		Advance float64
		Due     float64
	}
	if err := s.DB.Model(&models.Booking{}).
		Where("status_id <> ?", models.BookingStatusCancelled).
		Select("COALESCE(SUM(total_bill), 0) AS revenue, COALESCE(SUM(advance_payment), 0) AS advance, COALESCE(SUM(due_payment), 0) AS due").
		Scan(&sums).Error; err != nil {
		return nil, utils.Internal(err)
	}
	stats.TotalRevenue = round2(sums.Revenue)
	stats.TotalAdvance = round2(sums.Advance)
	stats.TotalDue = round2(sums.Due)

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	tomorrow := today.AddDate(0, 0, 1)

	if err := s.DB.Model(&models.Booking{}).
		Where("status_id <> ?", models.BookingStatusCancelled).
		Where("check_in_date >= ? AND check_in_date < ?", today, tomorrow).
		Count(&stats.TodayCheckIns).Error; err != nil {
		return nil, utils.Internal(err)
	}
	if err := s.DB.Model(&models.Booking{}).
		Where("status_id <> ?", models.BookingStatusCancelled).
		Where("check_out_date >= ? AND check_out_date < ?", today, tomorrow).
		Count(&stats.TodayCheckOuts).Error; err != nil {
		return nil, utils.Internal(err)
	}

	return stats, nil
}

// syncRoom refreshes the room's derived occupancy view after a ledger
// change. Best-effort: a failed sync is logged, never surfaced, because the
// ledger already committed.
func (s *BookingService) syncRoom(hotelID uint, categoryID, roomID, forceStatus string) {
	dates, err := s.Availability.BookedDates(hotelID, roomID, categoryID)
	if err != nil {
		log.Printf("warning: failed to derive booked dates for room %s: %v", roomID, err)
		return
	}

	status := forceStatus
	if status == "" {
		status = models.RoomStatusAvailable
		today := time.Now().UTC().Format(dayLayout)
		for _, d := range dates {
			if d >= today {
				status = models.RoomStatusReserved
				break
			}
		}
	}

	if err := s.Hotels.SyncRoomOccupancy(hotelID, categoryID, roomID, status, dates); err != nil {
		log.Printf("warning: failed to sync occupancy for room %s: %v", roomID, err)
	}
}
