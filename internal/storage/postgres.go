package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// PostgresStore persists each collection as a single JSONB blob keyed by
// collection name.
type PostgresStore struct {
	db     *sql.DB
	logger *zap.Logger
	tracer trace.Tracer
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB, logger *zap.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: logger,
		tracer: otel.Tracer("clubpulse/storage"),
	}
}

// Migrate creates the collections table if it does not exist.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS collections (
			key TEXT PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create collections table: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string, v any) error {
	ctx, span := s.tracer.Start(ctx, "storage.get",
		trace.WithAttributes(attribute.String("collection.key", key)),
	)
	defer span.End()

	var raw []byte
	err := s.db.QueryRowContext(ctx, `SELECT data FROM collections WHERE key = $1`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query collection %s: %w", key, err)
	}
	s.decode(key, raw, v)
	return nil
}

// decode degrades a corrupt blob to an empty collection so reads stay
// available. The warning is the operator's cue to quarantine the dump.
func (s *PostgresStore) decode(key string, raw []byte, v any) {
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("discarding unreadable collection",
			zap.String("key", key),
			zap.Error(err))
	}
}

func (s *PostgresStore) Put(ctx context.Context, key string, v any) error {
	ctx, span := s.tracer.Start(ctx, "storage.put",
		trace.WithAttributes(attribute.String("collection.key", key)),
	)
	defer span.End()

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collections (key, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, key, raw)
	if err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	return nil
}

type postgresTx struct {
	tx     *sql.Tx
	parent *PostgresStore
}

func (t *postgresTx) Get(ctx context.Context, key string, v any) error {
	var raw []byte
	err := t.tx.QueryRowContext(ctx, `SELECT data FROM collections WHERE key = $1 FOR UPDATE`, key).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil
	}
	if err != nil {
		return fmt.Errorf("query collection %s: %w", key, err)
	}
	t.parent.decode(key, raw, v)
	return nil
}

func (t *postgresTx) Put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", key, err)
	}
	_, err = t.tx.ExecContext(ctx, `
		INSERT INTO collections (key, data, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET data = EXCLUDED.data, updated_at = NOW()
	`, key, raw)
	if err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	return nil
}

// Atomic runs fn inside a serializable transaction so multi-collection
// updates commit or roll back together.
func (s *PostgresStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	ctx, span := s.tracer.Start(ctx, "storage.atomic")
	defer span.End()

	sqlTx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(ctx, &postgresTx{tx: sqlTx, parent: s}); err != nil {
		return err
	}
	if err := sqlTx.Commit(); err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "40001" {
			return fmt.Errorf("commit transaction: serialization conflict: %w", err)
		}
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
