package webhook

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"platform-chatbot/internal/common/config"
	stderrors "platform-chatbot/internal/common/errors"
	"platform-chatbot/internal/common/logger"
	"platform-chatbot/internal/models"
)

// ==========================
// Test Helper Functions
// ==========================

func newTestDispatcher(t *testing.T, targets []string, maxRetries int) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(config.WebhookConfig{
		Enabled:    true,
		Targets:    targets,
		Timeout:    1000,
		MaxRetries: maxRetries,
	}, logger.NewTestLogger(t))
	require.NoError(t, err)
	t.Cleanup(d.Close)
	return d
}

// ==========================
// Inbound Validation Tests
// ==========================

func TestValidateInbound_ValidEvent(t *testing.T) {
	d := newTestDispatcher(t, nil, 1)

	body := []byte(`{"event_type": "chat.turn.completed", "payload": {"conversationId": "abc"}}`)
	event, ack, err := d.ValidateInbound(body)
	require.NoError(t, err)

	assert.Equal(t, models.EventTurnCompleted, event.EventType)
	assert.Equal(t, "abc", event.Payload["conversationId"])
	assert.Equal(t, "accepted", ack.Status)
	assert.NotEmpty(t, ack.DeliveryID)
}

func TestValidateInbound_UniqueDeliveryIDs(t *testing.T) {
	d := newTestDispatcher(t, nil, 1)

	body := []byte(`{"event_type": "chat.turn.completed", "payload": {}}`)
	_, first, err := d.ValidateInbound(body)
	require.NoError(t, err)
	_, second, err := d.ValidateInbound(body)
	require.NoError(t, err)

	assert.NotEqual(t, first.DeliveryID, second.DeliveryID)
}

func TestValidateInbound_Invalid(t *testing.T) {
	d := newTestDispatcher(t, nil, 1)

	tests := []struct {
		name string
		body string
	}{
		{"missing event_type", `{"payload": {}}`},
		{"missing payload", `{"event_type": "chat.turn.completed"}`},
		{"empty event_type", `{"event_type": "", "payload": {}}`},
		{"payload not an object", `{"event_type": "x", "payload": "nope"}`},
		{"not json", `not json at all`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := d.ValidateInbound([]byte(tt.body))
			require.Error(t, err)
			stdErr, ok := stderrors.AsStandardError(err)
			require.True(t, ok)
			assert.Equal(t, stderrors.ErrCodeWebhookValidationFailed, stdErr.Code)
		})
	}
}

// ==========================
// Outbound Delivery Tests
// ==========================

func TestEmit_DeliversToTarget(t *testing.T) {
	received := make(chan models.WebhookEvent, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var event models.WebhookEvent
		require.NoError(t, json.NewDecoder(r.Body).Decode(&event))
		received <- event
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := newTestDispatcher(t, []string{server.URL}, 1)

	d.Emit(models.WebhookEvent{
		EventType: models.EventTurnCompleted,
		Payload:   map[string]interface{}{"conversationId": "abc"},
		Timestamp: time.Now().UTC(),
	})

	select {
	case event := <-received:
		assert.Equal(t, models.EventTurnCompleted, event.EventType)
		assert.Equal(t, "abc", event.Payload["conversationId"])
	case <-time.After(5 * time.Second):
		t.Fatal("event was not delivered")
	}
}

func TestEmit_RetriesOnFailure(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := newTestDispatcher(t, []string{server.URL}, 3)

	d.Emit(models.WebhookEvent{
		EventType: models.EventTurnCompleted,
		Payload:   map[string]interface{}{},
	})

	require.Eventually(t, func() bool {
		return attempts.Load() == 3
	}, 5*time.Second, 20*time.Millisecond)
}

func TestEmit_GivesUpAfterMaxRetries(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	d := newTestDispatcher(t, []string{server.URL}, 2)

	d.Emit(models.WebhookEvent{
		EventType: models.EventTurnCompleted,
		Payload:   map[string]interface{}{},
	})
	d.Close()

	assert.Equal(t, int32(2), attempts.Load())
}

func TestClose_DrainsQueue(t *testing.T) {
	var delivered atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		delivered.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	d := newTestDispatcher(t, []string{server.URL}, 1)

	for i := 0; i < 5; i++ {
		d.Emit(models.WebhookEvent{
			EventType: models.EventTurnCompleted,
			Payload:   map[string]interface{}{},
		})
	}
	d.Close()

	assert.Equal(t, int32(5), delivered.Load())
}
