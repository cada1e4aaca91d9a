package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	stderrors "platform-chatbot/internal/common/errors"
	"platform-chatbot/internal/common/logger"
	"platform-chatbot/internal/common/metrics"
	"platform-chatbot/internal/models"
)

type memoryEntry struct {
	mu   sync.Mutex
	conv models.Conversation
}

// MemoryStore is the default in-process backend. A background sweeper
// evicts idle conversations; when the conversation count exceeds the
// configured bound the least recently active ones are evicted first.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	opts    Options
	logger  logger.Logger
	done    chan struct{}
	wg      sync.WaitGroup
}

func NewMemoryStore(opts Options, log logger.Logger) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]*memoryEntry),
		opts:    opts.withDefaults(),
		logger:  log.WithFields(map[string]interface{}{"store": "memory"}),
		done:    make(chan struct{}),
	}

	s.wg.Add(1)
	go s.sweepLoop()

	return s
}

func (s *MemoryStore) GetOrCreate(ctx context.Context, id string) (*models.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, stderrors.NewStoreTimeoutError("get_or_create")
	}

	if id != "" {
		s.mu.RLock()
		entry, ok := s.entries[id]
		s.mu.RUnlock()
		if ok {
			return snapshot(entry), nil
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	now := time.Now().UTC()
	fresh := &memoryEntry{
		conv: models.Conversation{
			ID:           id,
			Turns:        []models.Turn{},
			UserType:     models.UserTypeUnknown,
			LastIntent:   models.IntentUnknown,
			CreatedAt:    now,
			LastActivity: now,
		},
	}

	s.mu.Lock()
	// A concurrent caller may have created the same id between the RLock
	// and here; the existing entry wins.
	if existing, ok := s.entries[id]; ok {
		s.mu.Unlock()
		return snapshot(existing), nil
	}
	s.entries[id] = fresh
	count := len(s.entries)
	s.mu.Unlock()

	metrics.ConversationsActive.Set(float64(count))

	if count > s.opts.MaxConvs {
		s.evictOldest()
	}

	return snapshot(fresh), nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Conversation, error) {
	if err := ctx.Err(); err != nil {
		return nil, stderrors.NewStoreTimeoutError("get")
	}

	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return nil, stderrors.NewConversationNotFoundError(id)
	}
	return snapshot(entry), nil
}

func (s *MemoryStore) AppendTurn(ctx context.Context, id string, turn models.Turn) error {
	s.mu.RLock()
	entry, ok := s.entries[id]
	s.mu.RUnlock()
	if !ok {
		return stderrors.NewConversationNotFoundError(id)
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	// The append is all-or-nothing: a cancelled caller leaves no trace.
	if err := ctx.Err(); err != nil {
		return stderrors.NewStoreTimeoutError("append_turn")
	}

	entry.conv.Turns = append(entry.conv.Turns, turn)
	if len(entry.conv.Turns) > s.opts.MaxTurns {
		entry.conv.Turns = entry.conv.Turns[len(entry.conv.Turns)-s.opts.MaxTurns:]
	}
	if turn.UserType.Known() {
		entry.conv.UserType = turn.UserType
	}
	entry.conv.LastIntent = turn.Intent
	entry.conv.LastActivity = turn.Timestamp

	return nil
}

func (s *MemoryStore) Close() error {
	close(s.done)
	s.wg.Wait()
	return nil
}

// Len reports the number of live conversations.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

func (s *MemoryStore) sweepLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep(time.Now().UTC())
		}
	}
}

// sweep evicts idle conversations. Each candidate is checked under its own
// lock only long enough for the idle test, per the eviction contract.
func (s *MemoryStore) sweep(now time.Time) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	evicted := 0
	for _, id := range ids {
		s.mu.RLock()
		entry, ok := s.entries[id]
		s.mu.RUnlock()
		if !ok {
			continue
		}

		entry.mu.Lock()
		idle := entry.conv.IsIdle(s.opts.IdleTTL, now)
		entry.mu.Unlock()

		if idle {
			s.mu.Lock()
			delete(s.entries, id)
			s.mu.Unlock()
			evicted++
		}
	}

	if evicted > 0 {
		s.logger.Info("evicted idle conversations", map[string]interface{}{
			"evicted": evicted,
		})
	}
	metrics.ConversationsActive.Set(float64(s.Len()))
}

// evictOldest removes least recently active conversations until the count
// is back under the bound.
func (s *MemoryStore) evictOldest() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for len(s.entries) > s.opts.MaxConvs {
		var oldestID string
		var oldestAt time.Time
		for id, entry := range s.entries {
			entry.mu.Lock()
			lastActivity := entry.conv.LastActivity
			entry.mu.Unlock()
			if oldestID == "" || lastActivity.Before(oldestAt) {
				oldestID = id
				oldestAt = lastActivity
			}
		}
		delete(s.entries, oldestID)
	}
	metrics.ConversationsActive.Set(float64(len(s.entries)))
}

func snapshot(entry *memoryEntry) *models.Conversation {
	entry.mu.Lock()
	defer entry.mu.Unlock()

	copied := entry.conv
	copied.Turns = make([]models.Turn, len(entry.conv.Turns))
	copy(copied.Turns, entry.conv.Turns)
	return &copied
}
