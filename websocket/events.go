package websocket

import "encoding/json"

// Client -> server events.
const (
	EventJoinConversation   = "join_conversation"
	EventLeaveConversation  = "leave_conversation"
	EventSendMessage        = "send_message"
	EventMarkMessagesRead   = "mark_messages_read"
	EventTypingStart        = "typing_start"
	EventTypingStop         = "typing_stop"
	EventGetMessages        = "get_messages"
	EventCreateConversation = "create_conversation"
	EventGetConversations   = "get_conversations"
	EventUpdateStatus       = "update_status"
)

// Server -> client events.
const (
	EventJoinedConversation  = "joined_conversation"
	EventLeftConversation    = "left_conversation"
	EventNewMessage          = "new_message"
	EventMessageSent         = "message_sent"
	EventMessageNotification = "message_notification"
	EventMessageRead         = "message_read"
	EventMessagesMarkedRead  = "messages_marked_read"
	EventUserTyping          = "user_typing"
	EventUserStoppedTyping   = "user_stopped_typing"
	EventMessagesLoaded      = "messages_loaded"
	EventConversationExists  = "conversation_exists"
	EventConversationCreated = "conversation_created"
	EventNewConversation     = "new_conversation"
	EventConversationsLoaded = "conversations_loaded"
	EventUserStatusChanged   = "user_status_changed"
	EventNotification        = "notification"
	EventError               = "error"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type ConversationPayload struct {
	ConversationID string `json:"conversation_id"`
}

type SendMessagePayload struct {
	ConversationID string `json:"conversation_id"`
	Content        string `json:"content"`
	Type           string `json:"type,omitempty"`
}

type MarkMessagesReadPayload struct {
	ConversationID string   `json:"conversation_id"`
	MessageIDs     []string `json:"message_ids"`
}

type GetMessagesPayload struct {
	ConversationID string `json:"conversation_id"`
	Page           int    `json:"page,omitempty"`
	Limit          int    `json:"limit,omitempty"`
}

type CreateConversationPayload struct {
	ParticipantID string  `json:"participant_id"`
	ApplicationID *string `json:"application_id,omitempty"`
	JobTitle      *string `json:"job_title,omitempty"`
}

type UpdateStatusPayload struct {
	Status string `json:"status"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}
