package models

// Sequence is a single-row atomic counter. Booking numbers use one row per
// day (booking_no:<YYMMDD>), serial numbers one global row.
type Sequence struct {
	Name  string `gorm:"primaryKey;size:64" json:"name"`
	Value int64  `gorm:"column:value" json:"value"`
}
