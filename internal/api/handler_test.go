package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platform-chatbot/internal/chat"
	"platform-chatbot/internal/chat/classifier"
	"platform-chatbot/internal/chat/generator"
	"platform-chatbot/internal/common/config"
	"platform-chatbot/internal/common/logger"
	"platform-chatbot/internal/models"
	"platform-chatbot/internal/store"
	"platform-chatbot/internal/webhook"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	st := store.NewMemoryStore(store.Options{}, logger.NewTestLogger(t))
	t.Cleanup(func() { st.Close() })

	svc := chat.NewService(
		config.ChatConfig{
			MaxMessageLength:         2000,
			UserTypeSwitchConfidence: 0.75,
			HistoryWindow:            10,
		},
		2*time.Second,
		st,
		classifier.New(),
		generator.New(),
		nil,
		nil,
		logger.NewTestLogger(t),
	)

	dispatcher, err := webhook.NewDispatcher(config.WebhookConfig{
		Timeout:    1000,
		MaxRetries: 1,
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(dispatcher.Close)

	return NewHandler(svc, dispatcher, logger.NewTestLogger(t)).Routes()
}

func postJSON(t *testing.T, handler http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func get(handler http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeChatResponse(t *testing.T, rec *httptest.ResponseRecorder) chat.Result {
	t.Helper()
	var result chat.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	return result
}

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Error.Code
}

// ==========================
// Chat Endpoint Tests
// ==========================

func TestChatEndpoint_NewConversation(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/chat", ChatRequest{Message: "I need funding for my startup"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	result := decodeChatResponse(t, rec)
	assert.NotEmpty(t, result.ConversationID)
	assert.Equal(t, models.IntentSeekingFunding, result.Intent)
	assert.Equal(t, models.UserTypeEntrepreneur, result.UserType)
	assert.NotEmpty(t, result.Response)
	assert.NotEmpty(t, result.Suggestions)
}

func TestChatEndpoint_ContinuesConversation(t *testing.T) {
	handler := newTestHandler(t)

	first := decodeChatResponse(t, postJSON(t, handler, "/api/chat", ChatRequest{Message: "hello"}))
	second := decodeChatResponse(t, postJSON(t, handler, "/api/chat", ChatRequest{
		Message:        "tell me more",
		ConversationID: first.ConversationID,
	}))

	assert.Equal(t, first.ConversationID, second.ConversationID)
}

func TestChatEndpoint_EmptyMessage(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/chat", ChatRequest{Message: "   "})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeErrorCode(t, rec))
}

func TestChatEndpoint_MessageTooLong(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/api/chat", ChatRequest{Message: strings.Repeat("a", 2001)})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "MESSAGE_TOO_LONG", decodeErrorCode(t, rec))
}

func TestChatEndpoint_MalformedJSON(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader("{not json"))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_INPUT", decodeErrorCode(t, rec))
}

// ==========================
// Conversation Endpoint Tests
// ==========================

func TestConversationEndpoint_ReturnsHistory(t *testing.T) {
	handler := newTestHandler(t)

	first := decodeChatResponse(t, postJSON(t, handler, "/api/chat", ChatRequest{Message: "hello"}))
	postJSON(t, handler, "/api/chat", ChatRequest{Message: "tell me more", ConversationID: first.ConversationID})

	rec := get(handler, "/api/conversation/"+first.ConversationID)
	require.Equal(t, http.StatusOK, rec.Code)

	var keys map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &keys))
	assert.Contains(t, keys, "conversation_id")
	assert.Contains(t, keys, "user_type")
	assert.Contains(t, keys, "intent")
	assert.Contains(t, keys, "history")

	var conv ConversationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &conv))
	assert.Equal(t, first.ConversationID, conv.ConversationID)
	require.Len(t, conv.History, 2)
	assert.Equal(t, "hello", conv.History[0].Message)
	assert.Equal(t, "tell me more", conv.History[1].Message)
}

func TestConversationEndpoint_NotFound(t *testing.T) {
	handler := newTestHandler(t)

	rec := get(handler, "/api/conversation/does-not-exist")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "CONVERSATION_NOT_FOUND", decodeErrorCode(t, rec))
}

// ==========================
// Health, Assets & Webhook Tests
// ==========================

func TestHealthEndpoint(t *testing.T) {
	handler := newTestHandler(t)

	rec := get(handler, "/api/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
}

func TestWidgetAssets(t *testing.T) {
	handler := newTestHandler(t)

	rec := get(handler, "/widget.js")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "javascript")
	assert.Contains(t, rec.Body.String(), "platform-chat-widget")

	rec = get(handler, "/chat-iframe")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "/api/chat")
}

func TestWebhookEndpoint_Accepted(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/webhook", map[string]interface{}{
		"event_type": "chat.turn.completed",
		"payload":    map[string]interface{}{"conversationId": "abc"},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var ack models.WebhookAck
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ack))
	assert.Equal(t, "accepted", ack.Status)
	assert.NotEmpty(t, ack.DeliveryID)
}

func TestWebhookEndpoint_Invalid(t *testing.T) {
	handler := newTestHandler(t)

	rec := postJSON(t, handler, "/webhook", map[string]interface{}{"payload": map[string]interface{}{}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "WEBHOOK_VALIDATION_FAILED", decodeErrorCode(t, rec))
}

// ==========================
// CORS Tests
// ==========================

func TestCORS_Preflight(t *testing.T) {
	handler := newTestHandler(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_HeadersOnResponses(t *testing.T) {
	handler := newTestHandler(t)

	rec := get(handler, "/api/health")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
