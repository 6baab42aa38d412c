package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/phenrril/sheetstore/internal/domain"
)

const DefaultKey = "sheetstore:catalog"

// Redis comparte el catálogo entre varias instancias del server.
type Redis struct {
	rdb *redis.Client
	key string
}

func NewRedis(rdb *redis.Client, key string) *Redis {
	if key == "" {
		key = DefaultKey
	}
	return &Redis{rdb: rdb, key: key}
}

func (c *Redis) Get(ctx context.Context) ([]domain.Product, bool) {
	b, err := c.rdb.Get(ctx, c.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", c.key).Msg("redis get catálogo")
		}
		return nil, false
	}
	var products []domain.Product
	if err := json.Unmarshal(b, &products); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("catálogo en redis corrupto")
		return nil, false
	}
	return products, true
}

func (c *Redis) Set(ctx context.Context, products []domain.Product, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	data, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.key, data, ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", c.key).Msg("redis set catálogo")
	}
}
