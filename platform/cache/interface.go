package cache

import "time"

// CacheService is the layered (L1 memory + L2 redis) read cache.
type CacheService interface {
	GetCache(key string) (interface{}, bool)
	SetCache(key string, value interface{}, expiration time.Duration) error
	DelCache(key string) error
	// GetOrLoad returns the cached value or runs loader once, collapsing
	// concurrent loads of the same key.
	GetOrLoad(key string, expiration time.Duration, loader func() (interface{}, error)) (interface{}, error)
}

// MessageQueue is the redis-backed job queue.
type MessageQueue interface {
	PushToQueue(queueName string, value interface{}) error
	PopFromQueue(queueName string) (string, error)
	BPopFromQueue(queueName string, timeout time.Duration) (string, error)
}
