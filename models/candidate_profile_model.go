package models

import (
	"time"

	"github.com/google/uuid"
)

type CandidateProfile struct {
	UserID      uuid.UUID `gorm:"primary_key" json:"user_id"`
	Headline    *string   `gorm:"size:255" json:"headline"`
	Bio         *string   `gorm:"type:text" json:"bio"`
	Skills      *string   `gorm:"type:text" json:"skills"`
	Location    *string   `gorm:"size:100" json:"location"`
	Postcode    *string   `gorm:"size:10" json:"postcode"`
	DateOfBirth *time.Time `json:"date_of_birth"`
	CVURL       *string   `gorm:"size:255" json:"cv_url"`

	User User `gorm:"foreignkey:UserID" json:"user"`

	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
