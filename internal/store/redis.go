package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	stderrors "platform-chatbot/internal/common/errors"
	"platform-chatbot/internal/common/logger"
	"platform-chatbot/internal/models"
)

const (
	redisMetaKeyFmt  = "chat:conv:%s:meta"
	redisTurnsKeyFmt = "chat:conv:%s:turns"
)

// RedisStore keeps conversation meta in a hash and turns in a list, both
// expiring after the idle TTL. Appends run in a MULTI/EXEC pipeline so the
// turn, the derived state, and the TTL refresh land atomically; a striped
// local mutex serializes read-modify-write per conversation id.
type RedisStore struct {
	client *redis.Client
	opts   Options
	logger logger.Logger
	locks  stripedLocks
}

func NewRedisStore(client *redis.Client, opts Options, log logger.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		opts:   opts.withDefaults(),
		logger: log.WithFields(map[string]interface{}{"store": "redis"}),
	}
}

func (s *RedisStore) GetOrCreate(ctx context.Context, id string) (*models.Conversation, error) {
	if id != "" {
		conv, err := s.load(ctx, id)
		if err == nil {
			return conv, nil
		}
		var stdErr *stderrors.StandardError
		if !errors.As(err, &stdErr) || stdErr.Code != stderrors.ErrCodeConversationNotFound {
			return nil, err
		}
	}

	if id == "" {
		id = uuid.NewString()
	}

	mu := s.locks.forID(id)
	mu.Lock()
	defer mu.Unlock()

	now := time.Now().UTC()
	conv := &models.Conversation{
		ID:           id,
		Turns:        []models.Turn{},
		UserType:     models.UserTypeUnknown,
		LastIntent:   models.IntentUnknown,
		CreatedAt:    now,
		LastActivity: now,
	}

	metaKey := fmt.Sprintf(redisMetaKeyFmt, id)

	// HSETNX on the created_at field keeps a concurrent creation from
	// resetting an existing conversation.
	created, err := s.client.HSetNX(ctx, metaKey, "created_at", now.Format(time.RFC3339Nano)).Result()
	if err != nil {
		return nil, wrapRedisErr(ctx, err, "create conversation")
	}
	if !created {
		return s.load(ctx, id)
	}

	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, metaKey,
		"id", id,
		"user_type", string(conv.UserType),
		"last_intent", string(conv.LastIntent),
		"last_activity", now.Format(time.RFC3339Nano),
	)
	pipe.Expire(ctx, metaKey, s.opts.IdleTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, wrapRedisErr(ctx, err, "init conversation")
	}

	return conv, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Conversation, error) {
	return s.load(ctx, id)
}

func (s *RedisStore) AppendTurn(ctx context.Context, id string, turn models.Turn) error {
	mu := s.locks.forID(id)
	mu.Lock()
	defer mu.Unlock()

	metaKey := fmt.Sprintf(redisMetaKeyFmt, id)
	turnsKey := fmt.Sprintf(redisTurnsKeyFmt, id)

	exists, err := s.client.Exists(ctx, metaKey).Result()
	if err != nil {
		return wrapRedisErr(ctx, err, "check conversation")
	}
	if exists == 0 {
		return stderrors.NewConversationNotFoundError(id)
	}

	payload, err := json.Marshal(turn)
	if err != nil {
		return stderrors.NewStoreUnavailableError(err)
	}

	metaFields := []interface{}{
		"last_intent", string(turn.Intent),
		"last_activity", turn.Timestamp.Format(time.RFC3339Nano),
	}
	if turn.UserType.Known() {
		metaFields = append(metaFields, "user_type", string(turn.UserType))
	}

	pipe := s.client.TxPipeline()
	pipe.RPush(ctx, turnsKey, payload)
	pipe.LTrim(ctx, turnsKey, int64(-s.opts.MaxTurns), -1)
	pipe.HSet(ctx, metaKey, metaFields...)
	pipe.Expire(ctx, metaKey, s.opts.IdleTTL)
	pipe.Expire(ctx, turnsKey, s.opts.IdleTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return wrapRedisErr(ctx, err, "append turn")
	}

	return nil
}

func (s *RedisStore) Close() error {
	// The client is shared infrastructure owned by the process wiring.
	return nil
}

func (s *RedisStore) load(ctx context.Context, id string) (*models.Conversation, error) {
	metaKey := fmt.Sprintf(redisMetaKeyFmt, id)
	turnsKey := fmt.Sprintf(redisTurnsKeyFmt, id)

	meta, err := s.client.HGetAll(ctx, metaKey).Result()
	if err != nil {
		return nil, wrapRedisErr(ctx, err, "load conversation")
	}
	if len(meta) == 0 {
		return nil, stderrors.NewConversationNotFoundError(id)
	}

	conv := &models.Conversation{
		ID:         id,
		Turns:      []models.Turn{},
		UserType:   models.UserTypeUnknown,
		LastIntent: models.IntentUnknown,
	}
	if v, ok := meta["user_type"]; ok && v != "" {
		conv.UserType = models.UserType(v)
	}
	if v, ok := meta["last_intent"]; ok && v != "" {
		conv.LastIntent = models.Intent(v)
	}
	if v, ok := meta["created_at"]; ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			conv.CreatedAt = t
		}
	}
	if v, ok := meta["last_activity"]; ok {
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			conv.LastActivity = t
		}
	}

	raw, err := s.client.LRange(ctx, turnsKey, 0, -1).Result()
	if err != nil {
		return nil, wrapRedisErr(ctx, err, "load turns")
	}
	for _, item := range raw {
		var turn models.Turn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			s.logger.Warn("skipping undecodable turn", map[string]interface{}{
				"conversationId": id,
				"error":          err.Error(),
			})
			continue
		}
		conv.Turns = append(conv.Turns, turn)
	}

	return conv, nil
}

func wrapRedisErr(ctx context.Context, err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return stderrors.NewStoreTimeoutError(op)
	}
	return stderrors.NewStoreUnavailableError(err)
}
