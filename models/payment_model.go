package models

import (
	"time"

	"github.com/google/uuid"
)

type Payment struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	EmployerID       uuid.UUID  `gorm:"not null;index" json:"employer_id"`
	ApprenticeshipID *uuid.UUID `gorm:"unique" json:"apprenticeship_id"`
	ProviderOrderID  *string    `gorm:"size:255;unique" json:"-"`
	ProviderTxnID    *string    `gorm:"size:255;unique" json:"-"`
	Amount           float64    `gorm:"type:numeric(10,2);not null" json:"amount"`
	Currency         string     `gorm:"size:3" json:"currency"`
	Provider         string     `gorm:"size:50;not null" json:"provider"`
	Status           string     `gorm:"size:20;not null" json:"status"` // created | succeeded | failed

	Employer       User           `gorm:"foreignkey:EmployerID" json:"-"`
	Apprenticeship Apprenticeship `gorm:"foreignkey:ApprenticeshipID" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
