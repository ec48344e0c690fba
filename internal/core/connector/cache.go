package connector

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/frostdev-ops/pbi-monitor-go/internal/core/types"
)

// WorkspaceCache holds the most recent workspace listing for a bounded time
type WorkspaceCache interface {
	Get(ctx context.Context) ([]types.Workspace, bool)
	Set(ctx context.Context, workspaces []types.Workspace)
	Invalidate(ctx context.Context)
}

// MemoryWorkspaceCache keeps the listing in process memory
type MemoryWorkspaceCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	value   []types.Workspace
	expires time.Time
}

// NewMemoryWorkspaceCache creates an in-process cache; a non-positive ttl disables caching
func NewMemoryWorkspaceCache(ttl time.Duration) *MemoryWorkspaceCache {
	return &MemoryWorkspaceCache{ttl: ttl, now: time.Now}
}

func (m *MemoryWorkspaceCache) Get(_ context.Context) ([]types.Workspace, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.value == nil || !m.now().Before(m.expires) {
		return nil, false
	}
	return m.value, true
}

func (m *MemoryWorkspaceCache) Set(_ context.Context, workspaces []types.Workspace) {
	if m.ttl <= 0 {
		return
	}
	if workspaces == nil {
		workspaces = []types.Workspace{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = workspaces
	m.expires = m.now().Add(m.ttl)
}

func (m *MemoryWorkspaceCache) Invalidate(_ context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = nil
	m.expires = time.Time{}
}

// RedisWorkspaceCache shares the listing between instances through Redis
type RedisWorkspaceCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
	logger *logrus.Logger
}

// NewRedisWorkspaceCache creates a Redis-backed cache storing under keyPrefix+"workspaces"
func NewRedisWorkspaceCache(client *redis.Client, keyPrefix string, ttl time.Duration, logger *logrus.Logger) *RedisWorkspaceCache {
	return &RedisWorkspaceCache{
		client: client,
		key:    keyPrefix + "workspaces",
		ttl:    ttl,
		logger: logger,
	}
}

// Get treats Redis failures as a miss
func (r *RedisWorkspaceCache) Get(ctx context.Context) ([]types.Workspace, bool) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			r.logger.WithError(err).WithField("key", r.key).Warn("Failed to read workspace cache from Redis")
		}
		return nil, false
	}

	var workspaces []types.Workspace
	if err := json.Unmarshal(data, &workspaces); err != nil {
		r.logger.WithError(err).WithField("key", r.key).Warn("Discarding undecodable workspace cache entry")
		return nil, false
	}
	return workspaces, true
}

func (r *RedisWorkspaceCache) Set(ctx context.Context, workspaces []types.Workspace) {
	if r.ttl <= 0 {
		return
	}
	if workspaces == nil {
		workspaces = []types.Workspace{}
	}
	data, err := json.Marshal(workspaces)
	if err != nil {
		r.logger.WithError(err).Error("Failed to serialize workspaces for Redis")
		return
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		r.logger.WithError(err).WithField("key", r.key).Warn("Failed to store workspace cache in Redis")
		return
	}
	r.logger.WithFields(logrus.Fields{
		"key":   r.key,
		"count": len(workspaces),
		"ttl":   r.ttl,
	}).Debug("Workspace list stored in Redis cache")
}

func (r *RedisWorkspaceCache) Invalidate(ctx context.Context) {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		r.logger.WithError(err).WithField("key", r.key).Warn("Failed to invalidate workspace cache")
	}
}

// CachedConnector serves ListWorkspaces from a WorkspaceCache and delegates everything else
type CachedConnector struct {
	Connector
	cache WorkspaceCache
}

// NewCachedConnector wraps inner with cache
func NewCachedConnector(inner Connector, cache WorkspaceCache) *CachedConnector {
	return &CachedConnector{Connector: inner, cache: cache}
}

// ListWorkspaces returns the cached listing while it is fresh
func (c *CachedConnector) ListWorkspaces(ctx context.Context) ([]types.Workspace, error) {
	if workspaces, ok := c.cache.Get(ctx); ok {
		return workspaces, nil
	}
	workspaces, err := c.Connector.ListWorkspaces(ctx)
	if err != nil {
		return nil, err
	}
	c.cache.Set(ctx, workspaces)
	return workspaces, nil
}

// InvalidateWorkspaces drops the cached listing
func (c *CachedConnector) InvalidateWorkspaces(ctx context.Context) {
	c.cache.Invalidate(ctx)
}
