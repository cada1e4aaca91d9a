package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	stderrors "platform-chatbot/internal/common/errors"
	"platform-chatbot/internal/common/logger"
	"platform-chatbot/internal/models"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS conversations (
    id            TEXT PRIMARY KEY,
    user_type     TEXT NOT NULL DEFAULT 'unknown',
    last_intent   TEXT NOT NULL DEFAULT 'unknown',
    created_at    TIMESTAMPTZ NOT NULL,
    last_activity TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS turns (
    id              BIGSERIAL PRIMARY KEY,
    conversation_id TEXT NOT NULL REFERENCES conversations(id) ON DELETE CASCADE,
    message         TEXT NOT NULL,
    intent          TEXT NOT NULL,
    user_type       TEXT NOT NULL,
    response        TEXT NOT NULL,
    suggestions     TEXT NOT NULL DEFAULT '[]',
    created_at      TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_turns_conversation ON turns(conversation_id, id);
CREATE INDEX IF NOT EXISTS idx_conversations_activity ON conversations(last_activity);
`

// PostgresStore persists conversations in two tables, one row per turn.
// Each append runs in a single transaction so the turn insert, the
// conversation update, and the history prune commit together.
type PostgresStore struct {
	db     *sql.DB
	opts   Options
	logger logger.Logger
	locks  stripedLocks
	done   chan struct{}
}

func NewPostgresStore(db *sql.DB, opts Options, log logger.Logger) (*PostgresStore, error) {
	s := &PostgresStore{
		db:     db,
		opts:   opts.withDefaults(),
		logger: log.WithFields(map[string]interface{}{"store": "postgres"}),
		done:   make(chan struct{}),
	}
	if _, err := db.Exec(postgresSchema); err != nil {
		return nil, stderrors.NewStoreUnavailableError(err)
	}
	go s.sweepLoop()
	return s, nil
}

func (s *PostgresStore) GetOrCreate(ctx context.Context, id string) (*models.Conversation, error) {
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

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO conversations (id, user_type, last_intent, created_at, last_activity)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (id) DO NOTHING`,
		id, string(models.UserTypeUnknown), string(models.IntentUnknown), now)
	if err != nil {
		return nil, wrapPostgresErr(ctx, err, "create conversation")
	}

	return s.load(ctx, id)
}

func (s *PostgresStore) Get(ctx context.Context, id string) (*models.Conversation, error) {
	return s.load(ctx, id)
}

func (s *PostgresStore) AppendTurn(ctx context.Context, id string, turn models.Turn) error {
	mu := s.locks.forID(id)
	mu.Lock()
	defer mu.Unlock()

	suggestions, err := json.Marshal(turn.Suggestions)
	if err != nil {
		return stderrors.NewStoreUnavailableError(err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return wrapPostgresErr(ctx, err, "begin append")
	}
	defer tx.Rollback()

	var exists bool
	if err := tx.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM conversations WHERE id = $1)`, id).Scan(&exists); err != nil {
		return wrapPostgresErr(ctx, err, "check conversation")
	}
	if !exists {
		return stderrors.NewConversationNotFoundError(id)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO turns (conversation_id, message, intent, user_type, response, suggestions, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		id, turn.Message, string(turn.Intent), string(turn.UserType),
		turn.Response, string(suggestions), turn.Timestamp); err != nil {
		return wrapPostgresErr(ctx, err, "insert turn")
	}

	if turn.UserType.Known() {
		_, err = tx.ExecContext(ctx, `
			UPDATE conversations SET user_type = $2, last_intent = $3, last_activity = $4 WHERE id = $1`,
			id, string(turn.UserType), string(turn.Intent), turn.Timestamp)
	} else {
		_, err = tx.ExecContext(ctx, `
			UPDATE conversations SET last_intent = $2, last_activity = $3 WHERE id = $1`,
			id, string(turn.Intent), turn.Timestamp)
	}
	if err != nil {
		return wrapPostgresErr(ctx, err, "update conversation")
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM turns WHERE conversation_id = $1 AND id NOT IN (
			SELECT id FROM turns WHERE conversation_id = $1 ORDER BY id DESC LIMIT $2
		)`, id, s.opts.MaxTurns); err != nil {
		return wrapPostgresErr(ctx, err, "prune turns")
	}

	if err := tx.Commit(); err != nil {
		return wrapPostgresErr(ctx, err, "commit append")
	}
	return nil
}

func (s *PostgresStore) Close() error {
	close(s.done)
	// The *sql.DB is shared infrastructure owned by the process wiring.
	return nil
}

func (s *PostgresStore) sweepLoop() {
	ticker := time.NewTicker(s.opts.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *PostgresStore) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cutoff := time.Now().UTC().Add(-s.opts.IdleTTL)
	res, err := s.db.ExecContext(ctx, `DELETE FROM conversations WHERE last_activity < $1`, cutoff)
	if err != nil {
		s.logger.Warn("sweep failed", map[string]interface{}{"error": err.Error()})
		return
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		s.logger.Info("evicted idle conversations", map[string]interface{}{"count": n})
	}
}

func (s *PostgresStore) load(ctx context.Context, id string) (*models.Conversation, error) {
	conv := &models.Conversation{ID: id, Turns: []models.Turn{}}
	var userType, lastIntent string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_type, last_intent, created_at, last_activity
		FROM conversations WHERE id = $1`, id).
		Scan(&userType, &lastIntent, &conv.CreatedAt, &conv.LastActivity)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, stderrors.NewConversationNotFoundError(id)
	}
	if err != nil {
		return nil, wrapPostgresErr(ctx, err, "load conversation")
	}
	conv.UserType = models.UserType(userType)
	conv.LastIntent = models.Intent(lastIntent)

	rows, err := s.db.QueryContext(ctx, `
		SELECT message, intent, user_type, response, suggestions, created_at
		FROM turns WHERE conversation_id = $1 ORDER BY id ASC`, id)
	if err != nil {
		return nil, wrapPostgresErr(ctx, err, "load turns")
	}
	defer rows.Close()

	for rows.Next() {
		var turn models.Turn
		var intent, turnUserType, suggestions string
		if err := rows.Scan(&turn.Message, &intent, &turnUserType, &turn.Response, &suggestions, &turn.Timestamp); err != nil {
			return nil, wrapPostgresErr(ctx, err, "scan turn")
		}
		turn.Intent = models.Intent(intent)
		turn.UserType = models.UserType(turnUserType)
		if err := json.Unmarshal([]byte(suggestions), &turn.Suggestions); err != nil {
			turn.Suggestions = nil
		}
		conv.Turns = append(conv.Turns, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapPostgresErr(ctx, err, "iterate turns")
	}

	return conv, nil
}

func wrapPostgresErr(ctx context.Context, err error, op string) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return stderrors.NewStoreTimeoutError(op)
	}
	return stderrors.NewStoreUnavailableError(err)
}
