// Package store holds per-conversation message history and derived state.
// All backends serialize appends per conversation id and bound retention:
// max turns per conversation and an idle TTL, both from configuration.
package store

import (
	"context"
	"hash/fnv"
	"sync"
	"time"

	"platform-chatbot/internal/models"
)

// ConversationStore is the data layer behind the chat orchestrator.
type ConversationStore interface {
	// GetOrCreate returns the conversation for id, allocating a new
	// conversation (and id, when the given one is empty) if none exists.
	// The returned conversation is a snapshot owned by the caller.
	GetOrCreate(ctx context.Context, id string) (*models.Conversation, error)

	// Get returns the conversation for id, or CONVERSATION_NOT_FOUND.
	Get(ctx context.Context, id string) (*models.Conversation, error)

	// AppendTurn atomically appends a turn and updates the conversation's
	// derived state and last-activity timestamp. Returns
	// CONVERSATION_NOT_FOUND for ids never created via GetOrCreate.
	AppendTurn(ctx context.Context, id string, turn models.Turn) error

	Close() error
}

// Options bounds a store's retention. Zero values are replaced by the
// package defaults.
type Options struct {
	MaxTurns      int
	MaxConvs      int
	IdleTTL       time.Duration
	SweepInterval time.Duration
}

func (o Options) withDefaults() Options {
	if o.MaxTurns <= 0 {
		o.MaxTurns = 50
	}
	if o.MaxConvs <= 0 {
		o.MaxConvs = 10000
	}
	if o.IdleTTL <= 0 {
		o.IdleTTL = 24 * time.Hour
	}
	if o.SweepInterval <= 0 {
		o.SweepInterval = time.Minute
	}
	return o
}

const lockStripes = 64

// stripedLocks serializes operations per conversation id without holding a
// map of per-id mutexes.
type stripedLocks [lockStripes]sync.Mutex

func (s *stripedLocks) forID(id string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(id))
	return &s[h.Sum32()%lockStripes]
}
