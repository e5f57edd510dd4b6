package models

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Status constants
const (
	BookingStatusPending    = "pending"
	BookingStatusApproved   = "approved"
	BookingStatusOnProgress = "on_progress"
	BookingStatusCompleted  = "completed"
	BookingStatusCanceled   = "canceled"
	// BookingStatusComplaint adalah nilai status yang valid tetapi
	// tidak ada transisi yang mengarah ke sana. Keluhan customer
	// disimpan di kolom customer_complaint, bukan lewat status ini.
	BookingStatusComplaint = "complaint"
)

type Booking struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	BookingCode           string    `gorm:"type:varchar(30);uniqueIndex;not null" json:"booking_code"`
	UserID                uint      `gorm:"not null;index" json:"user_id"`
	User                  User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user"`
	ServiceID             uint      `gorm:"not null" json:"service_id"`
	Service               Service   `gorm:"foreignKey:ServiceID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"service"`
	ScheduleID            uint      `gorm:"not null;index" json:"schedule_id"`
	Schedule              Schedule  `gorm:"foreignKey:ScheduleID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"schedule"`
	CleanerID             *uint     `gorm:"index" json:"cleaner_id,omitempty"`
	Cleaner               *Cleaner  `gorm:"foreignKey:CleanerID;references:ID" json:"cleaner,omitempty"`
	Address               string    `gorm:"type:text;not null" json:"address"`
	Status                string    `gorm:"type:varchar(30);not null;default:'pending'" json:"status"`
	EvidenceCleaner       *string   `gorm:"type:text" json:"evidence_cleaner,omitempty"`
	CustomerComplaint     *string   `gorm:"type:text" json:"customer_complaint,omitempty"`
	CustomerComplaintDesc *string   `gorm:"type:text" json:"customer_complaint_desc,omitempty"`
	TotalPrice            float64   `gorm:"type:decimal(12,2);not null" json:"total_price"`
	CreatedAt             time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt             time.Time `gorm:"not null" json:"updated_at"`
}

func BookingStatuses() []string {
	return []string{
		BookingStatusPending,
		BookingStatusApproved,
		BookingStatusOnProgress,
		BookingStatusCompleted,
		BookingStatusCanceled,
		BookingStatusComplaint,
	}
}

func ValidBookingStatus(status string) bool {
	for _, s := range BookingStatuses() {
		if s == status {
			return true
		}
	}
	return false
}

func (b *Booking) IsCompleted() bool {
	return b.Status == BookingStatusCompleted
}

func (b *Booking) HasComplaint() bool {
	return b.CustomerComplaint != nil && *b.CustomerComplaint != ""
}

const bookingCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateBookingCode menghasilkan kode booking format CLN-YYYYMMDD-XXXX.
// Suffix hanya 4 karakter, jadi pemanggil tetap harus mengecek unik
// di database (uniqueIndex pada booking_code) dan mengulang bila tabrakan.
func GenerateBookingCode() string {
	buf := make([]byte, 4)
	if _, err := rand.Read(buf); err != nil {
		// Sumber entropi OS tidak tersedia, tidak ada fallback yang aman
		panic(err)
	}
	for i := range buf {
		buf[i] = bookingCodeAlphabet[int(buf[i])%len(bookingCodeAlphabet)]
	}
	return fmt.Sprintf("CLN-%s-%s", time.Now().Format("20060102"), string(buf))
}
