// Package api exposes the chat service over HTTP.
package api

import (
	"embed"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"platform-chatbot/internal/chat"
	stderrors "platform-chatbot/internal/common/errors"
	"platform-chatbot/internal/common/logger"
	"platform-chatbot/internal/models"
	"platform-chatbot/internal/webhook"
)

//go:embed web
var webAssets embed.FS

const maxRequestBody = 1 << 20 // 1 MiB

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// ConversationResponse is the body of GET /api/conversation/{id}.
type ConversationResponse struct {
	ConversationID string        `json:"conversation_id"`
	UserType       string        `json:"user_type"`
	Intent         string        `json:"intent"`
	History        []models.Turn `json:"history"`
}

type errorBody struct {
	Error *stderrors.StandardError `json:"error"`
}

type Handler struct {
	service    *chat.Service
	dispatcher *webhook.Dispatcher
	logger     logger.Logger
}

func NewHandler(service *chat.Service, dispatcher *webhook.Dispatcher, log logger.Logger) *Handler {
	return &Handler{
		service:    service,
		dispatcher: dispatcher,
		logger:     log.WithFields(map[string]interface{}{"component": "api"}),
	}
}

// Routes builds the public mux with all endpoints registered.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", h.handleChat)
	mux.HandleFunc("GET /api/conversation/{id}", h.handleConversation)
	mux.HandleFunc("GET /api/health", h.handleHealth)
	mux.HandleFunc("POST /webhook", h.handleWebhook)
	mux.HandleFunc("GET /widget.js", h.handleWidget)
	mux.HandleFunc("GET /chat-iframe", h.handleIframe)
	return withCORS(withRequestLogging(h.logger, mux))
}

func (h *Handler) handleChat(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.writeError(w, stderrors.NewInvalidInputError("failed to read request body"))
		return
	}

	var req ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, stderrors.NewInvalidInputError("request body is not valid JSON"))
		return
	}

	result, err := h.service.Handle(r.Context(), req.ConversationID, req.Message)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleConversation(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		h.writeError(w, stderrors.NewInvalidInputError("conversation id is required"))
		return
	}

	conv, err := h.service.Conversation(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	history := conv.Turns
	if history == nil {
		history = []models.Turn{}
	}
	h.writeJSON(w, http.StatusOK, ConversationResponse{
		ConversationID: conv.ID,
		UserType:       string(conv.UserType),
		Intent:         string(conv.LastIntent),
		History:        history,
	})
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	if h.dispatcher == nil {
		h.writeError(w, stderrors.NewWebhookValidationFailedError("webhook handling is disabled"))
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBody))
	if err != nil {
		h.writeError(w, stderrors.NewWebhookValidationFailedError("failed to read request body"))
		return
	}

	event, ack, err := h.dispatcher.ValidateInbound(body)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.logger.Info("webhook event accepted", map[string]interface{}{
		"eventType":  event.EventType,
		"deliveryId": ack.DeliveryID,
	})
	h.writeJSON(w, http.StatusOK, ack)
}

func (h *Handler) handleWidget(w http.ResponseWriter, r *http.Request) {
	h.serveAsset(w, "web/widget.js", "application/javascript; charset=utf-8")
}

func (h *Handler) handleIframe(w http.ResponseWriter, r *http.Request) {
	h.serveAsset(w, "web/chat-iframe.html", "text/html; charset=utf-8")
}

func (h *Handler) serveAsset(w http.ResponseWriter, name, contentType string) {
	data, err := webAssets.ReadFile(name)
	if err != nil {
		http.Error(w, "asset not found", http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		h.logger.WithError(err).Error("failed to write response", nil)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := stderrors.StatusForError(err)
	stdErr, ok := stderrors.AsStandardError(err)
	if !ok {
		stdErr = stderrors.NewStoreUnavailableError(err)
	}
	h.writeJSON(w, status, errorBody{Error: stdErr})
}
