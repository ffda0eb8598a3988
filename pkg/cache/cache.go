package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	operationTimeout = 5 * time.Second
	scanBatchSize    = 200

	renderKeyPrefix = "sections:render:"
)

var (
	ErrCacheMiss = errors.New("key not found")
	ErrDisabled  = errors.New("cache disabled")
)

// Cache stores rendered pages in Redis. A disabled or nil Cache accepts every
// write and reports ErrDisabled on reads.
type Cache struct {
	client  *redis.Client
	enabled bool
}

// NewCache connects to addr, which is either host:port or a redis:// URL.
func NewCache(addr string, enable bool) (*Cache, error) {
	if !enable {
		return &Cache{}, nil
	}

	opts, err := clientOptions(addr)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Cache{client: client, enabled: true}, nil
}

func clientOptions(addr string) (*redis.Options, error) {
	addr = strings.TrimSpace(addr)
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		opts, err := redis.ParseURL(addr)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{
		Addr:         addr,
		PoolSize:     10,
		MinIdleConns: 2,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	}, nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *redis.Client) *Cache {
	return &Cache{client: client, enabled: client != nil}
}

func (c *Cache) Enabled() bool {
	return c != nil && c.enabled
}

func (c *Cache) Set(key string, value interface{}, expiration time.Duration) error {
	if !c.Enabled() {
		return nil
	}

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	return c.client.Set(ctx, key, payload, expiration).Err()
}

func (c *Cache) Get(key string, dest interface{}) error {
	if !c.Enabled() {
		return ErrDisabled
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(payload, dest)
}

func (c *Cache) Delete(key string) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()
	return c.client.Del(ctx, key).Err()
}

// DeletePattern removes every key matching pattern, deleting in scan-sized batches.
func (c *Cache) DeletePattern(pattern string) error {
	if !c.Enabled() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), operationTimeout)
	defer cancel()

	batch := make([]string, 0, scanBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		err := c.client.Del(ctx, batch...).Err()
		batch = batch[:0]
		return err
	}

	iter := c.client.Scan(ctx, 0, pattern, scanBatchSize).Iterator()
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == scanBatchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	return flush()
}

func (c *Cache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

// RenderKey is the key of a rendered page in a given mode.
func RenderKey(pageID uint, mode string) string {
	return fmt.Sprintf("%spage:%d:%s", renderKeyPrefix, pageID, mode)
}

func (c *Cache) CachePageRender(pageID uint, mode string, page interface{}, ttl time.Duration) error {
	return c.Set(RenderKey(pageID, mode), page, ttl)
}

func (c *Cache) GetCachedPageRender(pageID uint, mode string, dest interface{}) error {
	return c.Get(RenderKey(pageID, mode), dest)
}

// InvalidatePageRender drops every cached mode of one page.
func (c *Cache) InvalidatePageRender(pageID uint) error {
	return c.DeletePattern(fmt.Sprintf("%spage:%d:*", renderKeyPrefix, pageID))
}

// InvalidateAllRenders drops every cached page, used when a section type changes.
func (c *Cache) InvalidateAllRenders() error {
	return c.DeletePattern(renderKeyPrefix + "*")
}
