// Package webhook validates inbound events and fans chat lifecycle events
// out to configured targets.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"platform-chatbot/internal/common/config"
	stderrors "platform-chatbot/internal/common/errors"
	"platform-chatbot/internal/common/logger"
	"platform-chatbot/internal/common/metrics"
	"platform-chatbot/internal/models"
)

const eventSchema = `{
	"type": "object",
	"required": ["event_type", "payload"],
	"properties": {
		"event_type": {"type": "string", "minLength": 1},
		"payload": {"type": "object"},
		"timestamp": {"type": "string"}
	}
}`

const queueCapacity = 256

// Dispatcher validates inbound webhook events and delivers outbound events
// asynchronously with bounded retries. Emit never blocks the caller; events
// are dropped with a warning when the queue is full.
type Dispatcher struct {
	targets    []string
	client     *http.Client
	maxRetries int
	schema     *gojsonschema.Schema
	logger     logger.Logger
	queue      chan models.WebhookEvent
	done       chan struct{}
	wg         sync.WaitGroup
	closeOnce  sync.Once
}

func NewDispatcher(cfg config.WebhookConfig, log logger.Logger) (*Dispatcher, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(eventSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile webhook event schema: %w", err)
	}

	d := &Dispatcher{
		targets:    cfg.Targets,
		client:     &http.Client{Timeout: time.Duration(cfg.Timeout) * time.Millisecond},
		maxRetries: cfg.MaxRetries,
		schema:     schema,
		logger:     log.WithFields(map[string]interface{}{"component": "webhook-dispatcher"}),
		queue:      make(chan models.WebhookEvent, queueCapacity),
		done:       make(chan struct{}),
	}
	d.wg.Add(1)
	go d.deliveryLoop()
	return d, nil
}

// ValidateInbound checks the raw event body against the envelope schema and
// returns the decoded event with an acknowledgement.
func (d *Dispatcher) ValidateInbound(body []byte) (*models.WebhookEvent, *models.WebhookAck, error) {
	result, err := d.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return nil, nil, stderrors.NewWebhookValidationFailedError(err.Error())
	}
	if !result.Valid() {
		details := ""
		for i, verr := range result.Errors() {
			if i > 0 {
				details += "; "
			}
			details += verr.String()
		}
		metrics.WebhookEventsTotal.WithLabelValues("invalid", "rejected").Inc()
		return nil, nil, stderrors.NewWebhookValidationFailedError(details)
	}

	var event models.WebhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, nil, stderrors.NewWebhookValidationFailedError(err.Error())
	}

	metrics.WebhookEventsTotal.WithLabelValues(event.EventType, "received").Inc()
	ack := &models.WebhookAck{
		Status:     "accepted",
		DeliveryID: uuid.NewString(),
	}
	return &event, ack, nil
}

// Emit enqueues an event for asynchronous delivery to all targets.
func (d *Dispatcher) Emit(event models.WebhookEvent) {
	select {
	case <-d.done:
	case d.queue <- event:
	default:
		metrics.WebhookEventsTotal.WithLabelValues(event.EventType, "dropped").Inc()
		d.logger.Warn("webhook queue full, dropping event", map[string]interface{}{
			"eventType": event.EventType,
		})
	}
}

// Close stops the delivery loop after draining already queued events.
func (d *Dispatcher) Close() {
	d.closeOnce.Do(func() {
		close(d.done)
	})
	d.wg.Wait()
}

func (d *Dispatcher) deliveryLoop() {
	defer d.wg.Done()
	for {
		select {
		case <-d.done:
			for {
				select {
				case event := <-d.queue:
					d.dispatch(event)
				default:
					return
				}
			}
		case event := <-d.queue:
			d.dispatch(event)
		}
	}
}

func (d *Dispatcher) dispatch(event models.WebhookEvent) {
	for _, target := range d.targets {
		d.deliver(event, target)
	}
}

func (d *Dispatcher) deliver(event models.WebhookEvent, target string) {
	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.WithError(err).Error("failed to encode webhook event", map[string]interface{}{
			"eventType": event.EventType,
		})
		return
	}

	var lastErr error
	for attempt := 1; attempt <= d.maxRetries; attempt++ {
		lastErr = d.post(target, payload)
		if lastErr == nil {
			metrics.WebhookEventsTotal.WithLabelValues(event.EventType, "delivered").Inc()
			return
		}
		if attempt < d.maxRetries {
			// Exponential backoff: 100ms, 200ms, 400ms, ...
			time.Sleep(time.Duration(100*(1<<(attempt-1))) * time.Millisecond)
		}
	}

	metrics.WebhookEventsTotal.WithLabelValues(event.EventType, "failed").Inc()
	d.logger.WithError(stderrors.NewWebhookDeliveryFailedError(target, lastErr)).
		Error("webhook delivery exhausted retries", map[string]interface{}{
			"eventType": event.EventType,
			"target":    target,
			"attempts":  d.maxRetries,
		})
}

func (d *Dispatcher) post(target string, payload []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), d.client.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("target returned status %d", resp.StatusCode)
	}
	return nil
}
