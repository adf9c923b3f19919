package models

import (
	"time"

	"github.com/google/uuid"
)

type EmployerProfile struct {
	UserID      uuid.UUID `gorm:"primary_key" json:"user_id"`
	CompanyName string    `gorm:"size:255;not null" json:"company_name"`
	Industry    *string   `gorm:"size:100" json:"industry"`
	Website     *string   `gorm:"size:255" json:"website"`
	Location    *string   `gorm:"size:100" json:"location"`
	LogoURL     *string   `gorm:"size:255" json:"logo_url"`
	Verified    bool      `gorm:"default:false" json:"verified"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
