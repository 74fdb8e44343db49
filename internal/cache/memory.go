package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"

	"github.com/edvin/machines/internal/model"
)

// DefaultMemoryEntries bounds the in-process cache. Every entry costs 1.
const DefaultMemoryEntries = 10000

// Memory is an in-process status cache for single-replica deployments.
type Memory struct {
	cache *ristretto.Cache[string, model.Detail]
}

func NewMemory(maxEntries int64) (*Memory, error) {
	if maxEntries <= 0 {
		maxEntries = DefaultMemoryEntries
	}
	c, err := ristretto.NewCache(&ristretto.Config[string, model.Detail]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create memory cache: %w", err)
	}
	return &Memory{cache: c}, nil
}

func (m *Memory) Get(_ context.Context, id string) (model.Detail, bool, error) {
	d, ok := m.cache.Get(key(id))
	return d, ok, nil
}

// Set stores d and waits until it is visible to Get.
func (m *Memory) Set(_ context.Context, id string, d model.Detail, ttl time.Duration) error {
	if !m.cache.SetWithTTL(key(id), d, 1, ttl) {
		return fmt.Errorf("set cached status %s: dropped", id)
	}
	m.cache.Wait()
	return nil
}

func (m *Memory) Close() {
	m.cache.Close()
}
