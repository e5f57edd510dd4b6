package models

import "time"

const (
	CleanerStatusActive   = "active"
	CleanerStatusInactive = "inactive"
)

// Cleaner adalah profil 1:1 dari user dengan role "cleaner".
// Profil dan akun user dibuat/dihapus bersama dalam satu transaksi.
type Cleaner struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT" json:"user"`
	Phone     string    `gorm:"type:varchar(20)" json:"phone"`
	Status    string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (cl *Cleaner) IsActive() bool {
	return cl.Status == CleanerStatusActive
}
