package services

import (
	"errors"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/apprenticeapex/backend/models"
	"github.com/google/uuid"
)

var ErrNotParticipant = errors.New("not a participant in this conversation")

const (
	DefaultMessagePageSize = 50
	maxMessagePageSize     = 100
	previewLength          = 255
)

// ChatService implements the messaging operations behind the websocket and
// REST messaging endpoints. It owns its store and serializes writes per
// conversation, so append-then-broadcast stays atomic relative to other
// sends on the same conversation even with real database I/O underneath.
type ChatService struct {
	store ChatStore
	locks conversationLocks
}

func NewChatService(store ChatStore) *ChatService {
	return &ChatService{
		store: store,
		locks: conversationLocks{locks: make(map[uuid.UUID]*sync.Mutex)},
	}
}

// conversationLocks hands out one mutex per conversation id. Locks are never
// reclaimed; the map grows with the number of distinct conversations touched
// by this process, which is bounded by the conversation table itself.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[uuid.UUID]*sync.Mutex
}

func (l *conversationLocks) get(id uuid.UUID) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock, ok := l.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		l.locks[id] = lock
	}
	return lock
}

func (s *ChatService) Conversation(id uuid.UUID) (*models.Conversation, error) {
	return s.store.ConversationByID(id)
}

// SendMessage validates the sender, derives the receiver as the other
// participant, appends the message and refreshes the conversation preview.
func (s *ChatService) SendMessage(senderID, conversationID uuid.UUID, content, messageType string) (*models.Message, *models.Conversation, error) {
	if messageType == "" {
		messageType = models.MessageTypeText
	}

	lock := s.locks.get(conversationID)
	lock.Lock()
	defer lock.Unlock()

	conversation, err := s.store.ConversationByID(conversationID)
	if err != nil {
		return nil, nil, err
	}
	if !conversation.HasParticipant(senderID) {
		return nil, nil, ErrNotParticipant
	}

	now := time.Now()
	message := &models.Message{
		ID:             uuid.New(),
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     conversation.OtherParticipant(senderID),
		Content:        content,
		MessageType:    messageType,
		CreatedAt:      now,
	}
	if err := s.store.AppendMessage(message); err != nil {
		return nil, nil, err
	}

	preview := content
	if len(preview) > previewLength {
		// Back off to a rune boundary so the preview stays valid UTF-8.
		cut := previewLength
		for cut > 0 && !utf8.RuneStart(preview[cut]) {
			cut--
		}
		preview = preview[:cut]
	}
	if err := s.store.TouchConversation(conversationID, preview, now); err != nil {
		return nil, nil, err
	}

	return message, conversation, nil
}

// ReadReceipt reports one message transitioning unread -> read, addressed to
// the original sender.
type ReadReceipt struct {
	MessageID uuid.UUID `json:"message_id"`
	SenderID  uuid.UUID `json:"-"`
	ReadAt    time.Time `json:"read_at"`
}

// MarkMessagesRead sets the read timestamp on each message that belongs to
// the conversation, is addressed to the caller and is still unread. Messages
// failing any of those checks are skipped without error, and already-read
// messages produce no receipt, so repeated calls notify senders only once.
func (s *ChatService) MarkMessagesRead(callerID, conversationID uuid.UUID, messageIDs []uuid.UUID) []ReadReceipt {
	lock := s.locks.get(conversationID)
	lock.Lock()
	defer lock.Unlock()

	now := time.Now()
	var receipts []ReadReceipt
	for _, messageID := range messageIDs {
		message, err := s.store.MessageByID(messageID)
		if err != nil {
			continue
		}
		if message.ConversationID != conversationID || message.ReceiverID != callerID || message.ReadAt != nil {
			continue
		}
		if err := s.store.MarkMessageRead(messageID, now); err != nil {
			continue
		}
		receipts = append(receipts, ReadReceipt{
			MessageID: messageID,
			SenderID:  message.SenderID,
			ReadAt:    now,
		})
	}
	return receipts
}

// CreateConversation returns the existing conversation for the pair when one
// exists, otherwise creates it. The boolean reports whether a new record was
// created.
func (s *ChatService) CreateConversation(callerID, participantID uuid.UUID, applicationID *uuid.UUID, jobTitle *string) (*models.Conversation, bool, error) {
	existing, err := s.store.ConversationByParticipants(callerID, participantID)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, ErrConversationNotFound) {
		return nil, false, err
	}

	conversation := &models.Conversation{
		ID:               uuid.New(),
		ParticipantOneID: callerID,
		ParticipantTwoID: participantID,
		ApplicationID:    applicationID,
		JobTitle:         jobTitle,
		IsActive:         true,
	}
	if err := s.store.CreateConversation(conversation); err != nil {
		return nil, false, err
	}
	return conversation, true, nil
}

func (s *ChatService) Conversations(userID uuid.UUID) ([]models.Conversation, error) {
	return s.store.ConversationsByUser(userID)
}

// Messages returns one page of conversation history in oldest-first order
// within the page, plus whether older messages remain beyond it.
func (s *ChatService) Messages(conversationID uuid.UUID, page, limit int) ([]models.Message, bool, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultMessagePageSize
	}
	if limit > maxMessagePageSize {
		limit = maxMessagePageSize
	}

	offset := (page - 1) * limit
	newestFirst, total, err := s.store.MessagesByConversation(conversationID, offset, limit)
	if err != nil {
		return nil, false, err
	}

	for i, j := 0, len(newestFirst)-1; i < j; i, j = i+1, j-1 {
		newestFirst[i], newestFirst[j] = newestFirst[j], newestFirst[i]
	}
	hasMore := total > int64(page*limit)
	return newestFirst, hasMore, nil
}
