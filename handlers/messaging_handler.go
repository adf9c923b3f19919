package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	config "github.com/apprenticeapex/backend/configs"
	"github.com/apprenticeapex/backend/models"
	"github.com/apprenticeapex/backend/services"
	"github.com/apprenticeapex/backend/websocket"
	websocketcontrib "github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// Messenger owns the chat service and hub and carries every messaging event
// handler. Constructed once in main; tests build their own against the
// in-memory store.
type Messenger struct {
	service *services.ChatService
	hub     *websocket.Hub
}

func NewMessenger(service *services.ChatService, hub *websocket.Hub) *Messenger {
	return &Messenger{service: service, hub: hub}
}

var messenger *Messenger

// InitMessaging wires the constructed chat service and hub into the handler
// package. Called once from main before any route is served.
func InitMessaging(service *services.ChatService, hub *websocket.Hub) {
	messenger = NewMessenger(service, hub)
}

func GetUserConversations(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	userID, _ := uuid.Parse(claims["user_id"].(string))

	conversations, err := messenger.service.Conversations(userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch conversations"})
	}
	return c.JSON(conversations)
}

func GetConversationMessages(c *fiber.Ctx) error {
	conversationID, err := uuid.Parse(c.Params("conversationId"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid conversation ID"})
	}
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	messages, hasMore, err := messenger.service.Messages(conversationID, page, limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch messages"})
	}
	return c.JSON(fiber.Map{
		"messages": messages,
		"page":     page,
		"limit":    limit,
		"has_more": hasMore,
	})
}

func CreateOrGetConversation(c *fiber.Ctx) error {
	token := c.Locals("user").(*jwt.Token)
	claims := token.Claims.(jwt.MapClaims)
	callerID, _ := uuid.Parse(claims["user_id"].(string))

	type Request struct {
		ParticipantID string  `json:"participant_id" validate:"required,uuid"`
		ApplicationID *string `json:"application_id,omitempty" validate:"omitempty,uuid"`
		JobTitle      *string `json:"job_title,omitempty"`
	}
	var req Request
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	}
	participantID, _ := uuid.Parse(req.ParticipantID)

	var applicationID *uuid.UUID
	if req.ApplicationID != nil {
		parsed, err := uuid.Parse(*req.ApplicationID)
		if err == nil {
			applicationID = &parsed
		}
	}

	conversation, created, err := messenger.service.CreateConversation(callerID, participantID, applicationID, req.JobTitle)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to create conversation"})
	}
	if !created {
		return c.JSON(conversation)
	}

	messenger.hub.EmitToUser(participantID, websocket.EventNewConversation, conversation)
	return c.Status(fiber.StatusCreated).JSON(conversation)
}

// authenticateSocket validates the handshake token and extracts the caller's
// identity. Any failure refuses the connection before an event handler runs.
func authenticateSocket(tokenString string) (uuid.UUID, string, error) {
	if tokenString == "" {
		return uuid.Nil, "", errors.New("missing authentication token")
	}
	claims, err := parseToken(tokenString)
	if err != nil {
		return uuid.Nil, "", err
	}
	rawID, ok := claims["user_id"].(string)
	if !ok {
		return uuid.Nil, "", errors.New("token carries no user_id claim")
	}
	userID, err := uuid.Parse(rawID)
	if err != nil {
		return uuid.Nil, "", err
	}
	role, _ := claims["role"].(string)
	return userID, role, nil
}

// ServeWs is the websocket entry point. The bearer token arrives in the
// handshake query string; an unauthenticated connection is refused before
// any event handler runs.
func ServeWs(c *websocketcontrib.Conn) {
	userID, role, err := authenticateSocket(c.Query("token"))
	if err != nil {
		log.Printf("WebSocket auth failed: %v", err)
		_ = c.WriteJSON(fiber.Map{"error": "Unauthorized"})
		c.Close()
		return
	}

	log.Printf("WebSocket client authenticated: %s", userID)
	client := websocket.NewClient(userID, role, c)
	messenger.hub.RegisterClient(client)
	go client.WritePump()

	// Auto-subscribe to every conversation the user participates in.
	if conversations, err := messenger.service.Conversations(userID); err == nil {
		for _, conversation := range conversations {
			messenger.hub.JoinRoom(conversation.ID, client)
		}
	}

	defer func() {
		messenger.hub.UnregisterClient(client)
		c.Close()
	}()

	for {
		_, frame, err := c.ReadMessage()
		if err != nil {
			if websocketcontrib.IsCloseError(err, websocketcontrib.CloseGoingAway, websocketcontrib.CloseAbnormalClosure) {
				log.Printf("WebSocket closed for client %s: %v", userID, err)
			} else {
				log.Printf("WebSocket read error for client %s: %v", userID, err)
			}
			break
		}

		var envelope websocket.Envelope
		if err := json.Unmarshal(frame, &envelope); err != nil {
			client.Emit(websocket.EventError, websocket.ErrorPayload{Message: "Invalid event format"})
			continue
		}
		messenger.Dispatch(client, envelope)
	}
}

// Dispatch routes one decoded envelope to its event handler and converts any
// failure into a client-visible error event.
func (m *Messenger) Dispatch(client *websocket.Client, envelope websocket.Envelope) {
	var err error
	switch envelope.Event {
	case websocket.EventJoinConversation:
		err = m.handleJoinConversation(client, envelope.Data)
	case websocket.EventLeaveConversation:
		err = m.handleLeaveConversation(client, envelope.Data)
	case websocket.EventSendMessage:
		err = m.handleSendMessage(client, envelope.Data)
	case websocket.EventMarkMessagesRead:
		err = m.handleMarkMessagesRead(client, envelope.Data)
	case websocket.EventTypingStart:
		err = m.handleTyping(client, envelope.Data, websocket.EventUserTyping)
	case websocket.EventTypingStop:
		err = m.handleTyping(client, envelope.Data, websocket.EventUserStoppedTyping)
	case websocket.EventGetMessages:
		err = m.handleGetMessages(client, envelope.Data)
	case websocket.EventCreateConversation:
		err = m.handleCreateConversation(client, envelope.Data)
	case websocket.EventGetConversations:
		err = m.handleGetConversations(client)
	case websocket.EventUpdateStatus:
		err = m.handleUpdateStatus(client, envelope.Data)
	default:
		err = fmt.Errorf("unknown event: %s", envelope.Event)
	}

	if err != nil {
		client.Emit(websocket.EventError, websocket.ErrorPayload{Message: clientErrorMessage(envelope.Event, err)})
	}
}

// clientErrorMessage maps service errors onto the human-readable strings the
// client sees. Anything unexpected collapses to a generic per-event failure.
func clientErrorMessage(event string, err error) string {
	switch {
	case errors.Is(err, services.ErrConversationNotFound):
		return "Conversation not found"
	case errors.Is(err, services.ErrNotParticipant):
		return "Access denied: not a participant in this conversation"
	case errors.Is(err, errInvalidPayload):
		return "Invalid payload"
	}
	switch event {
	case websocket.EventSendMessage:
		return "Failed to send message"
	case websocket.EventCreateConversation:
		return "Failed to create conversation"
	case websocket.EventGetMessages:
		return "Failed to load messages"
	case websocket.EventGetConversations:
		return "Failed to load conversations"
	default:
		return err.Error()
	}
}

var errInvalidPayload = errors.New("invalid payload")

func parseConversationID(data json.RawMessage) (uuid.UUID, error) {
	var payload websocket.ConversationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return uuid.Nil, errInvalidPayload
	}
	conversationID, err := uuid.Parse(payload.ConversationID)
	if err != nil {
		return uuid.Nil, errInvalidPayload
	}
	return conversationID, nil
}

func (m *Messenger) handleJoinConversation(client *websocket.Client, data json.RawMessage) error {
	conversationID, err := parseConversationID(data)
	if err != nil {
		return err
	}

	conversation, err := m.service.Conversation(conversationID)
	if err != nil {
		return err
	}
	if !conversation.HasParticipant(client.UserID) {
		return services.ErrNotParticipant
	}

	m.hub.JoinRoom(conversationID, client)
	client.Emit(websocket.EventJoinedConversation, fiber.Map{"conversation_id": conversationID})
	return nil
}

// Leaving is unconditional; no participant check.
func (m *Messenger) handleLeaveConversation(client *websocket.Client, data json.RawMessage) error {
	conversationID, err := parseConversationID(data)
	if err != nil {
		return err
	}
	m.hub.LeaveRoom(conversationID, client)
	client.Emit(websocket.EventLeftConversation, fiber.Map{"conversation_id": conversationID})
	return nil
}

func (m *Messenger) handleSendMessage(client *websocket.Client, data json.RawMessage) error {
	var payload websocket.SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}
	conversationID, err := uuid.Parse(payload.ConversationID)
	if err != nil {
		return errInvalidPayload
	}

	message, _, err := m.service.SendMessage(client.UserID, conversationID, payload.Content, payload.Type)
	if err != nil {
		return err
	}

	m.hub.EmitToRoom(conversationID, websocket.EventNewMessage, message, nil)

	// A receiver who is online but not viewing this conversation still gets
	// notified on their personal room.
	if !m.hub.UserInRoom(conversationID, message.ReceiverID) {
		m.hub.EmitToUser(message.ReceiverID, websocket.EventMessageNotification, fiber.Map{
			"conversation_id": conversationID,
			"message_id":      message.ID,
			"sender_id":       message.SenderID,
			"content":         message.Content,
			"created_at":      message.CreatedAt,
		})
	}

	client.Emit(websocket.EventMessageSent, fiber.Map{"message_id": message.ID})
	return nil
}

func (m *Messenger) handleMarkMessagesRead(client *websocket.Client, data json.RawMessage) error {
	var payload websocket.MarkMessagesReadPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}
	conversationID, err := uuid.Parse(payload.ConversationID)
	if err != nil {
		return errInvalidPayload
	}

	messageIDs := make([]uuid.UUID, 0, len(payload.MessageIDs))
	for _, raw := range payload.MessageIDs {
		if id, err := uuid.Parse(raw); err == nil {
			messageIDs = append(messageIDs, id)
		}
	}

	receipts := m.service.MarkMessagesRead(client.UserID, conversationID, messageIDs)
	for _, receipt := range receipts {
		m.hub.EmitToUser(receipt.SenderID, websocket.EventMessageRead, fiber.Map{
			"message_id": receipt.MessageID,
			"read_at":    receipt.ReadAt,
		})
	}

	// The ack echoes the requested ids, not just the ones updated.
	client.Emit(websocket.EventMessagesMarkedRead, fiber.Map{
		"conversation_id": conversationID,
		"message_ids":     payload.MessageIDs,
	})
	return nil
}

func (m *Messenger) handleTyping(client *websocket.Client, data json.RawMessage, outEvent string) error {
	conversationID, err := parseConversationID(data)
	if err != nil {
		return err
	}
	m.hub.EmitToRoom(conversationID, outEvent, fiber.Map{
		"conversation_id": conversationID,
		"user_id":         client.UserID,
	}, client)
	return nil
}

func (m *Messenger) handleGetMessages(client *websocket.Client, data json.RawMessage) error {
	var payload websocket.GetMessagesPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}
	conversationID, err := uuid.Parse(payload.ConversationID)
	if err != nil {
		return errInvalidPayload
	}

	page := payload.Page
	if page < 1 {
		page = 1
	}
	limit := payload.Limit
	if limit < 1 {
		limit = services.DefaultMessagePageSize
	}

	messages, hasMore, err := m.service.Messages(conversationID, page, limit)
	if err != nil {
		return err
	}
	client.Emit(websocket.EventMessagesLoaded, fiber.Map{
		"conversation_id": conversationID,
		"messages":        messages,
		"page":            page,
		"limit":           limit,
		"has_more":        hasMore,
	})
	return nil
}

func (m *Messenger) handleCreateConversation(client *websocket.Client, data json.RawMessage) error {
	var payload websocket.CreateConversationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}
	participantID, err := uuid.Parse(payload.ParticipantID)
	if err != nil {
		return errInvalidPayload
	}

	var applicationID *uuid.UUID
	if payload.ApplicationID != nil {
		if parsed, err := uuid.Parse(*payload.ApplicationID); err == nil {
			applicationID = &parsed
		}
	}

	conversation, created, err := m.service.CreateConversation(client.UserID, participantID, applicationID, payload.JobTitle)
	if err != nil {
		return err
	}

	m.hub.JoinRoom(conversation.ID, client)
	if !created {
		client.Emit(websocket.EventConversationExists, conversation)
		return nil
	}

	m.hub.EmitToUser(participantID, websocket.EventNewConversation, conversation)
	client.Emit(websocket.EventConversationCreated, conversation)
	return nil
}

func (m *Messenger) handleGetConversations(client *websocket.Client) error {
	conversations, err := m.service.Conversations(client.UserID)
	if err != nil {
		return err
	}
	client.Emit(websocket.EventConversationsLoaded, fiber.Map{"conversations": conversations})
	return nil
}

// handleUpdateStatus broadcasts presence to every conversation room the
// client currently belongs to.
func (m *Messenger) handleUpdateStatus(client *websocket.Client, data json.RawMessage) error {
	var payload websocket.UpdateStatusPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return errInvalidPayload
	}
	for _, roomID := range m.hub.RoomsOf(client) {
		m.hub.EmitToRoom(roomID, websocket.EventUserStatusChanged, fiber.Map{
			"user_id": client.UserID,
			"status":  payload.Status,
		}, client)
	}
	return nil
}

func parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(config.Config("JWT_SECRET")), nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, errors.New("invalid token")
}

// NotifyApplicationUpdate pushes a generic notification to a user's personal
// room; REST handlers use it for application status changes.
func NotifyApplicationUpdate(userID uuid.UUID, title, body string, application *models.Application) {
	if messenger == nil {
		return
	}
	messenger.hub.EmitToUser(userID, websocket.EventNotification, fiber.Map{
		"title":      title,
		"body":       body,
		"reference":  application.Reference,
		"created_at": time.Now(),
	})
}
