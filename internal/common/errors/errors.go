// Package errors provides the standardized error taxonomy of the chat service.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeInvalidInput            ErrorCode = "INVALID_INPUT"
	ErrCodeMessageTooLong          ErrorCode = "MESSAGE_TOO_LONG"
	ErrCodeConversationNotFound    ErrorCode = "CONVERSATION_NOT_FOUND"
	ErrCodeStoreUnavailable        ErrorCode = "STORE_UNAVAILABLE"
	ErrCodeStoreTimeout            ErrorCode = "STORE_TIMEOUT"
	ErrCodeWebhookValidationFailed ErrorCode = "WEBHOOK_VALIDATION_FAILED"
	ErrCodeWebhookDeliveryFailed   ErrorCode = "WEBHOOK_DELIVERY_FAILED"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Retryable bool      `json:"retryable"`
	Timestamp time.Time `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// AsStandardError unwraps err into a *StandardError if it is one.
func AsStandardError(err error) (*StandardError, bool) {
	var stdErr *StandardError
	if errors.As(err, &stdErr) {
		return stdErr, true
	}
	return nil, false
}

// NewInvalidInputError creates a non-retryable input validation error.
func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Message is empty or malformed",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewMessageTooLongError creates a non-retryable oversized message error.
func NewMessageTooLongError(length, limit int) *StandardError {
	return &StandardError{
		Code:      ErrCodeMessageTooLong,
		Message:   "Message exceeds the configured maximum length",
		Details:   fmt.Sprintf("length: %d, limit: %d", length, limit),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewConversationNotFoundError creates a non-retryable lookup error.
func NewConversationNotFoundError(conversationID string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConversationNotFound,
		Message:   "Conversation not found",
		Details:   fmt.Sprintf("conversationId: %s", conversationID),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreUnavailableError creates a retryable store backend error.
func NewStoreUnavailableError(err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreUnavailable,
		Message:   "Conversation store is unavailable",
		Details:   err.Error(),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewStoreTimeoutError creates a retryable store timeout error.
func NewStoreTimeoutError(op string) *StandardError {
	return &StandardError{
		Code:      ErrCodeStoreTimeout,
		Message:   "Conversation store operation timed out",
		Details:   fmt.Sprintf("operation: %s", op),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookValidationFailedError creates a non-retryable webhook payload error.
func NewWebhookValidationFailedError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookValidationFailed,
		Message:   "Webhook event failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewWebhookDeliveryFailedError creates a retryable outbound delivery error.
func NewWebhookDeliveryFailedError(target string, err error) *StandardError {
	return &StandardError{
		Code:      ErrCodeWebhookDeliveryFailed,
		Message:   "Webhook delivery failed",
		Details:   fmt.Sprintf("target: %s, error: %s", target, err.Error()),
		Retryable: true,
		Timestamp: time.Now().UTC(),
	}
}

// HTTPStatus maps an error code to the HTTP status the endpoint layer returns.
func HTTPStatus(code ErrorCode) int {
	switch code {
	case ErrCodeInvalidInput, ErrCodeMessageTooLong, ErrCodeWebhookValidationFailed:
		return http.StatusBadRequest
	case ErrCodeConversationNotFound:
		return http.StatusNotFound
	case ErrCodeStoreUnavailable, ErrCodeStoreTimeout:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// StatusForError resolves the HTTP status for any error, defaulting unknown
// errors to 503 so store failures are never reported as client mistakes.
func StatusForError(err error) int {
	if stdErr, ok := AsStandardError(err); ok {
		return HTTPStatus(stdErr.Code)
	}
	return http.StatusServiceUnavailable
}

// IsRetryable reports whether the error is worth retrying by the caller.
func IsRetryable(err error) bool {
	if stdErr, ok := AsStandardError(err); ok {
		return stdErr.Retryable
	}
	return false
}
