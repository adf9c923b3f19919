package models

import (
	"time"

	"github.com/google/uuid"
)

type Application struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ApprenticeshipID uuid.UUID `gorm:"not null;uniqueIndex:idx_listing_candidate" json:"apprenticeship_id"`
	CandidateID      uuid.UUID `gorm:"not null;uniqueIndex:idx_listing_candidate" json:"candidate_id"`
	Reference        string    `gorm:"size:12;not null;unique" json:"reference"`
	Status           string    `gorm:"size:20;not null;default:'submitted'" json:"status"` // submitted | shortlisted | interview | offer | rejected | withdrawn
	CoverNote        *string   `gorm:"type:text" json:"cover_note"`
	InterviewAt      *time.Time `json:"interview_at"`
	OfferLetterURL   *string   `gorm:"size:255" json:"offer_letter_url"`

	Apprenticeship Apprenticeship `gorm:"foreignkey:ApprenticeshipID" json:"apprenticeship"`
	Candidate      User           `gorm:"foreignkey:CandidateID" json:"candidate"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
