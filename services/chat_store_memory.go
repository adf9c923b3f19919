package services

import (
	"sort"
	"sync"
	"time"

	"github.com/apprenticeapex/backend/models"
	"github.com/google/uuid"
)

// MemoryChatStore keeps conversations and messages in process memory with
// linear scans. Used by the test suite and for running the API without a
// database (CHAT_STORE=memory). State does not survive a restart and is not
// shared across processes.
type MemoryChatStore struct {
	mu            sync.RWMutex
	conversations []*models.Conversation
	messages      []*models.Message
}

func NewMemoryChatStore() *MemoryChatStore {
	return &MemoryChatStore{}
}

func (s *MemoryChatStore) ConversationByID(id uuid.UUID) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conversation := range s.conversations {
		if conversation.ID == id {
			clone := *conversation
			return &clone, nil
		}
	}
	return nil, ErrConversationNotFound
}

func (s *MemoryChatStore) ConversationByParticipants(a, b uuid.UUID) (*models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, conversation := range s.conversations {
		if (conversation.ParticipantOneID == a && conversation.ParticipantTwoID == b) ||
			(conversation.ParticipantOneID == b && conversation.ParticipantTwoID == a) {
			clone := *conversation
			return &clone, nil
		}
	}
	return nil, ErrConversationNotFound
}

func (s *MemoryChatStore) CreateConversation(conversation *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conversation.ID == uuid.Nil {
		conversation.ID = uuid.New()
	}
	if conversation.CreatedAt.IsZero() {
		conversation.CreatedAt = time.Now()
	}
	clone := *conversation
	s.conversations = append(s.conversations, &clone)
	return nil
}

func (s *MemoryChatStore) ConversationsByUser(userID uuid.UUID) ([]models.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []models.Conversation
	for _, conversation := range s.conversations {
		if conversation.HasParticipant(userID) {
			result = append(result, *conversation)
		}
	}
	sort.SliceStable(result, func(i, j int) bool {
		a, b := result[i].LastMessageAt, result[j].LastMessageAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return result, nil
}

func (s *MemoryChatStore) AppendMessage(message *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if message.ID == uuid.Nil {
		message.ID = uuid.New()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	clone := *message
	s.messages = append(s.messages, &clone)
	return nil
}

func (s *MemoryChatStore) MessageByID(id uuid.UUID) (*models.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, message := range s.messages {
		if message.ID == id {
			clone := *message
			return &clone, nil
		}
	}
	return nil, ErrMessageNotFound
}

func (s *MemoryChatStore) MessagesByConversation(conversationID uuid.UUID, offset, limit int) ([]models.Message, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Append order is chronological, so newest-first is the reverse walk.
	var matching []models.Message
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].ConversationID == conversationID {
			matching = append(matching, *s.messages[i])
		}
	}

	total := int64(len(matching))
	if offset >= len(matching) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matching) {
		end = len(matching)
	}
	return matching[offset:end], total, nil
}

func (s *MemoryChatStore) MarkMessageRead(id uuid.UUID, readAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, message := range s.messages {
		if message.ID == id {
			if message.ReadAt == nil {
				at := readAt
				message.ReadAt = &at
			}
			return nil
		}
	}
	return ErrMessageNotFound
}

func (s *MemoryChatStore) TouchConversation(conversationID uuid.UUID, preview string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, conversation := range s.conversations {
		if conversation.ID == conversationID {
			conversation.LastMessage = &preview
			touchedAt := at
			conversation.LastMessageAt = &touchedAt
			return nil
		}
	}
	return ErrConversationNotFound
}
