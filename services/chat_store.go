package services

import (
	"errors"
	"time"

	"github.com/apprenticeapex/backend/models"
	"github.com/google/uuid"
)

var (
	ErrConversationNotFound = errors.New("conversation not found")
	ErrMessageNotFound      = errors.New("message not found")
)

// ChatStore is the persistence boundary of the messaging layer. The chat
// service talks only to this interface, so the websocket layer can run
// against Postgres in production and the in-memory store in tests.
type ChatStore interface {
	ConversationByID(id uuid.UUID) (*models.Conversation, error)
	// ConversationByParticipants finds the conversation between the two
	// users regardless of column order, or ErrConversationNotFound.
	ConversationByParticipants(a, b uuid.UUID) (*models.Conversation, error)
	CreateConversation(conversation *models.Conversation) error
	// ConversationsByUser returns the user's conversations newest-activity
	// first; conversations with no messages yet sort last.
	ConversationsByUser(userID uuid.UUID) ([]models.Conversation, error)

	AppendMessage(message *models.Message) error
	MessageByID(id uuid.UUID) (*models.Message, error)
	// MessagesByConversation returns one page of messages newest first,
	// plus the total number of messages in the conversation.
	MessagesByConversation(conversationID uuid.UUID, offset, limit int) ([]models.Message, int64, error)
	MarkMessageRead(id uuid.UUID, readAt time.Time) error

	// TouchConversation refreshes the denormalized last-message preview.
	TouchConversation(conversationID uuid.UUID, preview string, at time.Time) error
}
