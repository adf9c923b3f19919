package models

import (
	"time"

	"github.com/google/uuid"
)

type Apprenticeship struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	EmployerID   uuid.UUID `gorm:"not null;index" json:"employer_id"`
	Title        string    `gorm:"size:255;not null" json:"title"`
	Trade        string    `gorm:"size:100;not null;index" json:"trade"`
	Description  string    `gorm:"type:text;not null" json:"description"`
	Location     string    `gorm:"size:100;not null;index" json:"location"`
	WeeklyWage   float64   `gorm:"type:numeric(10,2);not null" json:"weekly_wage"`
	HoursPerWeek int       `gorm:"not null;default:40" json:"hours_per_week"`
	ClosingDate  time.Time `gorm:"not null" json:"closing_date"`
	IsActive     bool      `gorm:"default:true" json:"is_active"`
	PaidListing  bool      `gorm:"default:false" json:"-"`

	Employer User `gorm:"foreignkey:EmployerID" json:"employer"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
