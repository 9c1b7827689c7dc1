package services

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"hotel-pms/models"
)

// SequenceService hands out booking numbers, global serial numbers and
// restaurant order numbers. Booking and serial numbers ride on single-row
// counters incremented atomically inside a transaction; the legacy
// scan-the-existing-rows derivation only seeds a counter that does not exist
// yet (migration path).
type SequenceService struct {
	DB *gorm.DB
}

func NewSequenceService(db *gorm.DB) *SequenceService {
	return &SequenceService{DB: db}
}

// next bumps the named counter and returns the new value. When the counter
// row is missing it is seeded via seed() from whatever rows already exist.
func (s *SequenceService) next(name string, seed func(tx *gorm.DB) (int64, error)) (int64, error) {
	var value int64
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Sequence{}).
			Where("name = ?", name).
			Update("value", gorm.Expr("value + 1"))
		if res.Error != nil {
			return res.Error
		}

		if res.RowsAffected == 0 {
			start := int64(0)
			if seed != nil {
				v, err := seed(tx)
				if err != nil {
					return err
				}
				start = v
			}
			seq := models.Sequence{Name: name, Value: start + 1}
			if err := tx.Create(&seq).Error; err != nil {
				return err
			}
			value = seq.Value
			return nil
		}

		var seq models.Sequence
		if err := tx.First(&seq, "name = ?", name).Error; err != nil {
			return err
		}
		value = seq.Value
		return nil
	})
	return value, err
}

// NextBookingNo returns YYMMDD plus a 2-digit daily serial. The serial wraps
// silently past 99 bookings per day.
func (s *SequenceService) NextBookingNo(day time.Time) (string, error) {
	prefix := day.Format("060102")
	serial, err := s.next("booking_no:"+prefix, func(tx *gorm.DB) (int64, error) {
		return maxDailyBookingSerial(tx, prefix)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%02d", prefix, serial%100), nil
}

// maxDailyBookingSerial recovers today's highest serial from existing booking
// numbers when no counter row exists yet.
func maxDailyBookingSerial(tx *gorm.DB, prefix string) (int64, error) {
	var nos []string
	if err := tx.Model(&models.Booking{}).
		Where("booking_no LIKE ?", prefix+"%").
		Pluck("booking_no", &nos).Error; err != nil {
		return 0, err
	}

	var max int64
	for _, no := range nos {
		if len(no) != len(prefix)+2 {
			continue
		}
		n, err := strconv.ParseInt(no[len(prefix):], 10, 64)
		if err == nil && n > max {
			max = n
		}
	}
	return max, nil
}

// NextSerialNo returns the next global booking serial, starting at 1.
func (s *SequenceService) NextSerialNo() (uint, error) {
	v, err := s.next("booking_serial", func(tx *gorm.DB) (int64, error) {
		var last models.Booking
		err := tx.Unscoped().Order("id DESC").First(&last).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		if err != nil {
			return 0, err
		}
		return int64(last.SerialNo), nil
	})
	if err != nil {
		return 0, err
	}
	return uint(v), nil
}

// NextOrderNo returns ORD-YYYYMMDD-NNNN from the count of today's orders.
// If the count query fails it falls back to a timestamp suffix so order
// creation keeps moving.
func (s *SequenceService) NextOrderNo(now time.Time) string {
	day := now.Format("20060102")
	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var count int64
	err := s.DB.Model(&models.RestaurantOrder{}).
		Where("created_at >= ? AND created_at < ?", start, start.AddDate(0, 0, 1)).
		Count(&count).Error
	if err != nil {
		return fmt.Sprintf("ORD-%s-%d", day, now.UnixNano()%1e6)
	}
	return fmt.Sprintf("ORD-%s-%04d", day, count+1)
}
