// Package redisstate shares provider suspensions between service instances through Redis.
package redisstate

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/lueurxax/tolgee-ai/internal/core/domain"
	"github.com/lueurxax/tolgee-ai/internal/core/llm"
)

const (
	suspensionsKey   = "suspensions:"
	defaultRetention = time.Hour
)

// SuspensionStore keeps one hash per logical provider name. Fields are signed
// provider ids, values are Unix milliseconds of the end of the suspension.
type SuspensionStore struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
	logger    *zerolog.Logger
}

var _ llm.SuspensionStore = (*SuspensionStore)(nil)

// NewSuspensionStore creates a store. Hashes expire retention after their last
// write unless a suspension lasts longer.
func NewSuspensionStore(client redis.UniversalClient, prefix string, retention time.Duration, logger *zerolog.Logger) *SuspensionStore {
	if retention <= 0 {
		retention = defaultRetention
	}

	return &SuspensionStore{client: client, prefix: prefix, retention: retention, logger: logger}
}

// Connect parses a redis:// URL and verifies the connection.
func Connect(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()

		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

func (s *SuspensionStore) key(name string) string {
	return s.prefix + suspensionsKey + name
}

// Suspensions returns the name's suspension map. Unparsable fields are skipped.
func (s *SuspensionStore) Suspensions(ctx context.Context, name string) (map[domain.ProviderID]time.Time, error) {
	fields, err := s.client.HGetAll(ctx, s.key(name)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis suspensions: %w", err)
	}

	out := make(map[domain.ProviderID]time.Time, len(fields))

	for field, value := range fields {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			s.logger.Warn().Str("field", field).Msg("skipping malformed suspension field")
			continue
		}

		millis, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			s.logger.Warn().Str("field", field).Str("value", value).Msg("skipping malformed suspension value")
			continue
		}

		out[domain.ParseProviderID(id)] = time.UnixMilli(millis)
	}

	return out, nil
}

// Suspend records until for id and extends the hash lifetime to cover it.
func (s *SuspensionStore) Suspend(ctx context.Context, name string, id domain.ProviderID, until time.Time) error {
	key := s.key(name)
	ttl := max(s.retention, time.Until(until))

	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, strconv.FormatInt(id.Int64(), 10), until.UnixMilli())
		pipe.Expire(ctx, key, ttl)

		return nil
	})
	if err != nil {
		return fmt.Errorf("redis suspend: %w", err)
	}

	return nil
}
