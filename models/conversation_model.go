package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation is a two-party message thread. Participants are fixed at
// creation; the two-column layout (rather than a join table) makes the
// two-party invariant a schema property.
type Conversation struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ParticipantOneID uuid.UUID  `gorm:"not null;index" json:"participant_one_id"`
	ParticipantTwoID uuid.UUID  `gorm:"not null;index" json:"participant_two_id"`
	ApplicationID    *uuid.UUID `json:"application_id,omitempty"`
	JobTitle         *string    `gorm:"size:255" json:"job_title,omitempty"`

	// Denormalized preview of the newest message, kept by the chat service.
	LastMessage   *string    `gorm:"size:255" json:"last_message"`
	LastMessageAt *time.Time `json:"last_message_at"`

	IsActive bool `gorm:"default:true" json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Conversation) HasParticipant(userID uuid.UUID) bool {
	return c.ParticipantOneID == userID || c.ParticipantTwoID == userID
}

// OtherParticipant returns the participant that isn't userID. The caller is
// expected to have checked HasParticipant first.
func (c *Conversation) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.ParticipantOneID == userID {
		return c.ParticipantTwoID
	}
	return c.ParticipantOneID
}
