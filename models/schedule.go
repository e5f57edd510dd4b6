package models

import "time"

const (
	ScheduleStatusAvailable   = "available"
	ScheduleStatusFull        = "full"
	ScheduleStatusUnavailable = "unavailable"
)

// Schedule adalah slot jadwal dengan kapasitas booking.
// Date disimpan sebagai string "YYYY-MM-DD" di kolom varchar; kolom
// bertipe date akan melewati konversi datetime driver saat dibaca dan
// merusak nilai bila baris disimpan ulang.
// Invariant: RemainingCapacity <= Capacity, dan status "full"
// berlaku tepat ketika RemainingCapacity == 0.
type Schedule struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Date              string    `gorm:"type:varchar(10);not null;index" json:"date"`
	StartTime         string    `gorm:"type:varchar(8);not null" json:"start_time"`
	EndTime           string    `gorm:"type:varchar(8);not null" json:"end_time"`
	Capacity          int       `gorm:"not null;default:1" json:"capacity"`
	RemainingCapacity int       `gorm:"not null;default:1" json:"remaining_capacity"`
	Status            string    `gorm:"type:varchar(20);not null;default:'available'" json:"status"`
	CreatedAt         time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt         time.Time `gorm:"not null" json:"updated_at"`
}
