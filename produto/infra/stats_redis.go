package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"produtos-gateway/produto/domain"
)

// RedisStatsStore registra estatísticas de consulta em Redis.
//
// Chaves geradas (prefixo padrão "produtos:stats"):
//   - {prefix}:total       hash desfecho -> contador (cumulativo, não expira)
//   - {prefix}:minute:<ts> hash desfecho -> contador (série temporal, com TTL)
//   - {prefix}:credential  hash id -> consultas atendidas (cardinalidade
//     limitada pelo tamanho do pool, então não expira)
type RedisStatsStore struct {
	rdb *redis.Client

	prefix string
	// ttl aplica apenas nas chaves de série temporal.
	ttl time.Duration

	bucket string // "minute" (padrão) ou "none"
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.prefix = strings.Trim(prefix, ":") }
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func NewRedisStatsStore(rdb *redis.Client, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "produtos:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.LookupEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	field := string(ev.Outcome)

	pipe := s.rdb.Pipeline()
	pipe.HIncrBy(ctx, s.prefix+":total", field, 1)

	if s.bucket == "minute" {
		bucketKey := fmt.Sprintf("%s:minute:%s", s.prefix, at.UTC().Format("200601021504"))
		pipe.HIncrBy(ctx, bucketKey, field, 1)
		if s.ttl > 0 {
			pipe.Expire(ctx, bucketKey, s.ttl)
		}
	}

	// só conta na credencial quando a chamada de fato consumiu cota
	if ev.Credential != "" && (ev.Outcome == domain.OutcomeFound || ev.Outcome == domain.OutcomeNotFound) {
		pipe.HIncrBy(ctx, s.prefix+":credential", ev.Credential, 1)
	}

	_, err := pipe.Exec(ctx)
	return err
}
