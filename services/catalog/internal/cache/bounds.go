// Package cache keeps the catalog-wide price bounds in redis so listing pages
// do not run MIN/MAX over every unit on each request.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/marketplace/services/catalog/internal/transport"
)

const (
	DefaultKey = "catalog:price_bounds"
	DefaultTTL = 5 * time.Minute
)

type RedisBounds struct {
	Client *redis.Client
	Key    string
	TTL    time.Duration
}

func NewRedisBounds(client *redis.Client) *RedisBounds {
	return &RedisBounds{Client: client, Key: DefaultKey, TTL: DefaultTTL}
}

func (c *RedisBounds) Get(ctx context.Context) (transport.PriceBounds, bool, error) {
	var b transport.PriceBounds
	raw, err := c.Client.Get(ctx, c.Key).Bytes()
	if errors.Is(err, redis.Nil) {
		return b, false, nil
	}
	if err != nil {
		return b, false, err
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return b, false, err
	}
	return b, true, nil
}

func (c *RedisBounds) Set(ctx context.Context, b transport.PriceBounds) error {
	raw, err := json.Marshal(b)
	if err != nil {
		return err
	}
	return c.Client.Set(ctx, c.Key, raw, c.TTL).Err()
}

func (c *RedisBounds) Invalidate(ctx context.Context) error {
	return c.Client.Del(ctx, c.Key).Err()
}
