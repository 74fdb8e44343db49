// Package cache holds recently confirmed machine details so that status
// polls within the TTL skip the orchestrator.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/edvin/machines/internal/model"
)

const keyPrefix = "machine:"

func key(id string) string {
	return keyPrefix + id
}

// Redis is a status cache shared by every API replica.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

// DialRedis connects to the server at url and verifies it answers.
func DialRedis(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (c *Redis) Get(ctx context.Context, id string) (model.Detail, bool, error) {
	data, err := c.client.Get(ctx, key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Detail{}, false, nil
	}
	if err != nil {
		return model.Detail{}, false, fmt.Errorf("get cached status %s: %w", id, err)
	}
	var d model.Detail
	if err := json.Unmarshal(data, &d); err != nil {
		return model.Detail{}, false, fmt.Errorf("decode cached status %s: %w", id, err)
	}
	return d, true, nil
}

func (c *Redis) Set(ctx context.Context, id string, d model.Detail, ttl time.Duration) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("encode cached status %s: %w", id, err)
	}
	if err := c.client.Set(ctx, key(id), data, ttl).Err(); err != nil {
		return fmt.Errorf("set cached status %s: %w", id, err)
	}
	return nil
}
