package models

import "time"

// Webhook event types emitted by the chat service.
const (
	EventTurnCompleted       = "chat.turn.completed"
	EventConversationCreated = "chat.conversation.created"
)

// WebhookEvent is the envelope accepted by POST /webhook and delivered to
// outbound targets.
type WebhookEvent struct {
	EventType string                 `json:"event_type"`
	Payload   map[string]interface{} `json:"payload"`
	Timestamp time.Time              `json:"timestamp,omitempty"`
}

// WebhookAck acknowledges receipt of an inbound event.
type WebhookAck struct {
	Status     string `json:"status"`
	DeliveryID string `json:"delivery_id"`
}
