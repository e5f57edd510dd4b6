package models

import "time"

const (
	ServiceStatusActive   = "active"
	ServiceStatusInactive = "inactive"
)

type Service struct {
	ID              uint      `gorm:"primaryKey" json:"id"`
	Name            string    `gorm:"type:varchar(120);not null" json:"name"`
	Description     string    `gorm:"type:text" json:"description"`
	Price           float64   `gorm:"type:decimal(12,2);not null" json:"price"`
	DurationMinutes int       `gorm:"not null" json:"duration_minutes"`
	Status          string    `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt       time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt       time.Time `gorm:"not null" json:"updated_at"`
}

func (s *Service) IsActive() bool {
	return s.Status == ServiceStatusActive
}
