// Package chat orchestrates a single conversational turn: validate the
// message, resolve the conversation, classify, generate, persist, and emit.
package chat

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"platform-chatbot/internal/chat/classifier"
	"platform-chatbot/internal/chat/generator"
	"platform-chatbot/internal/common/config"
	stderrors "platform-chatbot/internal/common/errors"
	"platform-chatbot/internal/common/logger"
	"platform-chatbot/internal/common/metrics"
	"platform-chatbot/internal/common/observability"
	"platform-chatbot/internal/models"
	"platform-chatbot/internal/store"
)

// Result is the outcome of one handled chat turn.
type Result struct {
	ConversationID string          `json:"conversation_id"`
	Response       string          `json:"response"`
	UserType       models.UserType `json:"user_type"`
	Intent         models.Intent   `json:"intent"`
	Suggestions    []string        `json:"suggestions"`
}

// EventEmitter receives conversation lifecycle events. Implementations must
// not block the caller; delivery happens out of band.
type EventEmitter interface {
	Emit(event models.WebhookEvent)
}

type Service struct {
	store        store.ConversationStore
	classifier   *classifier.Classifier
	generator    *generator.Generator
	emitter      EventEmitter
	obs          *observability.Observability
	logger       logger.Logger
	maxLength    int
	switchConf   float64
	historyWin   int
	storeTimeout time.Duration
}

func NewService(
	cfg config.ChatConfig,
	storeTimeout time.Duration,
	st store.ConversationStore,
	cls *classifier.Classifier,
	gen *generator.Generator,
	emitter EventEmitter,
	obs *observability.Observability,
	log logger.Logger,
) *Service {
	return &Service{
		store:        st,
		classifier:   cls,
		generator:    gen,
		emitter:      emitter,
		obs:          obs,
		logger:       log.WithFields(map[string]interface{}{"component": "chat-service"}),
		maxLength:    cfg.MaxMessageLength,
		switchConf:   cfg.UserTypeSwitchConfidence,
		historyWin:   cfg.HistoryWindow,
		storeTimeout: storeTimeout,
	}
}

// Handle processes one user message against the identified conversation.
// Validation failures reject the message before any conversation is created
// or mutated.
func (s *Service) Handle(ctx context.Context, conversationID, message string) (*Result, error) {
	start := time.Now()

	if strings.TrimSpace(message) == "" {
		return nil, s.reject(ctx, stderrors.NewInvalidInputError("message is empty or whitespace"))
	}
	if length := utf8.RuneCountInString(message); length > s.maxLength {
		return nil, s.reject(ctx, stderrors.NewMessageTooLongError(length, s.maxLength))
	}

	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	conv, err := s.store.GetOrCreate(storeCtx, conversationID)
	if err != nil {
		return nil, s.reject(ctx, err)
	}
	if len(conv.Turns) == 0 {
		s.emit(models.WebhookEvent{
			EventType: models.EventConversationCreated,
			Payload: map[string]interface{}{
				"conversationId": conv.ID,
				"createdAt":      conv.CreatedAt.Format(time.RFC3339Nano),
			},
			Timestamp: time.Now().UTC(),
		})
	}

	history := s.window(conv.Turns)
	cls := s.classifier.Classify(message, history)
	userType := s.resolveUserType(conv.UserType, cls)

	response, suggestions := s.generator.Generate(cls.Intent, userType, history)

	turn := models.Turn{
		Message:     message,
		Intent:      cls.Intent,
		UserType:    userType,
		Response:    response,
		Suggestions: suggestions,
		Timestamp:   time.Now().UTC(),
	}
	if err := s.store.AppendTurn(storeCtx, conv.ID, turn); err != nil {
		return nil, s.reject(ctx, err)
	}

	metrics.ChatRequestsTotal.WithLabelValues(string(cls.Intent), string(userType)).Inc()
	metrics.ChatRequestDuration.WithLabelValues(string(cls.Intent)).Observe(time.Since(start).Seconds())
	if s.obs != nil {
		s.obs.RecordChatProcessed(ctx, "success")
		s.obs.RecordChatDuration(ctx, time.Since(start), "success")
	}

	s.logger.Info("handled chat turn", map[string]interface{}{
		"conversationId": conv.ID,
		"intent":         string(cls.Intent),
		"userType":       string(userType),
		"confidence":     cls.Confidence,
		"durationMs":     time.Since(start).Milliseconds(),
	})

	s.emit(models.WebhookEvent{
		EventType: models.EventTurnCompleted,
		Payload: map[string]interface{}{
			"conversationId": conv.ID,
			"intent":         string(cls.Intent),
			"userType":       string(userType),
			"message":        message,
			"response":       response,
		},
		Timestamp: turn.Timestamp,
	})

	return &Result{
		ConversationID: conv.ID,
		Response:       response,
		UserType:       userType,
		Intent:         cls.Intent,
		Suggestions:    suggestions,
	}, nil
}

// Conversation returns the stored conversation for read access.
func (s *Service) Conversation(ctx context.Context, id string) (*models.Conversation, error) {
	storeCtx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()
	return s.store.Get(storeCtx, id)
}

// resolveUserType applies the stickiness rule: a known type is kept until a
// different known type is detected with enough confidence, and is never reset
// by an unknown classification.
func (s *Service) resolveUserType(current models.UserType, cls classifier.Classification) models.UserType {
	if !cls.UserType.Known() {
		return current
	}
	if !current.Known() {
		return cls.UserType
	}
	if cls.UserType != current && cls.Confidence >= s.switchConf {
		return cls.UserType
	}
	return current
}

func (s *Service) window(turns []models.Turn) []models.Turn {
	if s.historyWin > 0 && len(turns) > s.historyWin {
		return turns[len(turns)-s.historyWin:]
	}
	return turns
}

func (s *Service) emit(event models.WebhookEvent) {
	if s.emitter != nil {
		s.emitter.Emit(event)
	}
}

func (s *Service) reject(ctx context.Context, err error) error {
	code := "UNKNOWN"
	if stdErr, ok := stderrors.AsStandardError(err); ok {
		code = string(stdErr.Code)
	}
	metrics.ChatRequestErrors.WithLabelValues(code).Inc()
	if s.obs != nil {
		s.obs.RecordChatProcessed(ctx, "error")
	}
	s.logger.WithError(err).Warn("chat turn rejected", map[string]interface{}{"code": code})
	return err
}
