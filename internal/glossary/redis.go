package glossary

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// DefaultRedisKey is the hash holding glossary terms.
const DefaultRedisKey = "sizetable:glossary"

// RedisSource reads glossary terms from a Redis hash (field = source label,
// value = target label). Publish replaces the hash so other instances can
// pick up a glossary imported elsewhere.
type RedisSource struct {
	client redis.UniversalClient
	key    string
}

// NewRedisSource creates a source over client. An empty key uses DefaultRedisKey.
func NewRedisSource(client redis.UniversalClient, key string) *RedisSource {
	if key == "" {
		key = DefaultRedisKey
	}
	return &RedisSource{client: client, key: key}
}

func (s *RedisSource) Name() string { return "redis:" + s.key }

// Load reads the whole hash.
func (s *RedisSource) Load(ctx context.Context) (*Glossary, error) {
	terms, err := s.client.HGetAll(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("glossary: read %s: %w", s.key, err)
	}
	return New(terms, s.Name()), nil
}

// Publish replaces the hash with g's terms atomically.
func (s *RedisSource) Publish(ctx context.Context, g *Glossary) error {
	terms := g.Terms()
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, s.key)
		if len(terms) == 0 {
			return nil
		}
		values := make([]any, 0, len(terms)*2)
		for _, t := range terms {
			values = append(values, t.Source, t.Target)
		}
		pipe.HSet(ctx, s.key, values...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("glossary: publish %s: %w", s.key, err)
	}
	return nil
}
