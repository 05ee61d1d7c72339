package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RedisStore keeps each collection under its key as a JSON string. The club
// runs a single writer at a time, so Atomic serializes read-modify-write
// cycles through a process-local mutex and flushes staged writes with one
// MULTI/EXEC pipeline.
type RedisStore struct {
	client *redis.Client
	logger *zap.Logger
	tracer trace.Tracer
	mu     sync.Mutex
}

// NewRedisStore wraps a connected client.
func NewRedisStore(client *redis.Client, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		logger: logger,
		tracer: otel.Tracer("clubpulse/storage"),
	}
}

func (s *RedisStore) Get(ctx context.Context, key string, v any) error {
	ctx, span := s.tracer.Start(ctx, "storage.get",
		trace.WithAttributes(attribute.String("collection.key", key)),
	)
	defer span.End()

	raw, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read collection %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("discarding unreadable collection",
			zap.String("key", key),
			zap.Error(err))
	}
	return nil
}

func (s *RedisStore) Put(ctx context.Context, key string, v any) error {
	ctx, span := s.tracer.Start(ctx, "storage.put",
		trace.WithAttributes(attribute.String("collection.key", key)),
	)
	defer span.End()

	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", key, err)
	}
	if err := s.client.Set(ctx, key, raw, 0).Err(); err != nil {
		return fmt.Errorf("write collection %s: %w", key, err)
	}
	return nil
}

type redisTx struct {
	store  *RedisStore
	staged map[string][]byte
}

func (tx *redisTx) Get(ctx context.Context, key string, v any) error {
	if raw, ok := tx.staged[key]; ok {
		_ = json.Unmarshal(raw, v)
		return nil
	}
	return tx.store.Get(ctx, key, v)
}

func (tx *redisTx) Put(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode collection %s: %w", key, err)
	}
	tx.staged[key] = raw
	return nil
}

// Atomic stages writes and commits them in one pipeline when fn succeeds.
func (s *RedisStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	ctx, span := s.tracer.Start(ctx, "storage.atomic")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &redisTx{store: s, staged: make(map[string][]byte)}
	if err := fn(ctx, tx); err != nil {
		return err
	}
	if len(tx.staged) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for key, raw := range tx.staged {
		pipe.Set(ctx, key, raw, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("commit pipeline: %w", err)
	}
	return nil
}
