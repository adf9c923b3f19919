package services

import (
	"errors"
	"time"

	"github.com/apprenticeapex/backend/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormChatStore backs the chat service with Postgres.
type GormChatStore struct {
	db *gorm.DB
}

func NewGormChatStore(db *gorm.DB) *GormChatStore {
	return &GormChatStore{db: db}
}

func (s *GormChatStore) ConversationByID(id uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	if err := s.db.First(&conversation, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (s *GormChatStore) ConversationByParticipants(a, b uuid.UUID) (*models.Conversation, error) {
	var conversation models.Conversation
	err := s.db.
		Where("(participant_one_id = ? AND participant_two_id = ?) OR (participant_one_id = ? AND participant_two_id = ?)", a, b, b, a).
		First(&conversation).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrConversationNotFound
		}
		return nil, err
	}
	return &conversation, nil
}

func (s *GormChatStore) CreateConversation(conversation *models.Conversation) error {
	return s.db.Create(conversation).Error
}

func (s *GormChatStore) ConversationsByUser(userID uuid.UUID) ([]models.Conversation, error) {
	var conversations []models.Conversation
	err := s.db.
		Where("participant_one_id = ? OR participant_two_id = ?", userID, userID).
		Order("last_message_at DESC NULLS LAST").
		Find(&conversations).Error
	if err != nil {
		return nil, err
	}
	return conversations, nil
}

func (s *GormChatStore) AppendMessage(message *models.Message) error {
	return s.db.Create(message).Error
}

func (s *GormChatStore) MessageByID(id uuid.UUID) (*models.Message, error) {
	var message models.Message
	if err := s.db.First(&message, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMessageNotFound
		}
		return nil, err
	}
	return &message, nil
}

func (s *GormChatStore) MessagesByConversation(conversationID uuid.UUID, offset, limit int) ([]models.Message, int64, error) {
	var total int64
	if err := s.db.Model(&models.Message{}).
		Where("conversation_id = ?", conversationID).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var messages []models.Message
	err := s.db.
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&messages).Error
	if err != nil {
		return nil, 0, err
	}
	return messages, total, nil
}

func (s *GormChatStore) MarkMessageRead(id uuid.UUID, readAt time.Time) error {
	return s.db.Model(&models.Message{}).
		Where("id = ? AND read_at IS NULL", id).
		Update("read_at", readAt).Error
}

func (s *GormChatStore) TouchConversation(conversationID uuid.UUID, preview string, at time.Time) error {
	return s.db.Model(&models.Conversation{}).
		Where("id = ?", conversationID).
		Updates(map[string]interface{}{
			"last_message":    preview,
			"last_message_at": at,
		}).Error
}
