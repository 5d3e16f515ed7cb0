package middleware

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateStore decides whether a client identified by key may make another
// request right now. The limiter state lives behind this interface so a
// multi-instance deployment can swap the process-local map for redis
type RateStore interface {
	Allow(key string) bool
}

// MemoryStore keeps one token bucket per client in process memory. State is
// lost on restart, which is fine for a single instance
type MemoryStore struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      int
	burst    int
}

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewMemoryStore(rps, burst int, ttl, cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval == 0 {
		cleanupInterval = time.Minute
	}
	if ttl == 0 {
		ttl = 3 * time.Minute
	}

	s := &MemoryStore{
		visitors: make(map[string]*visitor),
		rps:      rps,
		burst:    burst,
	}

	go s.cleanup(ttl, cleanupInterval)

	return s
}

func (s *MemoryStore) Allow(key string) bool {
	s.mu.Lock()

	v, exists := s.visitors[key]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(rate.Limit(s.rps), s.burst)}
		s.visitors[key] = v
	}
	v.lastSeen = time.Now()

	s.mu.Unlock()

	return v.limiter.Allow()
}

func (s *MemoryStore) cleanup(ttl, interval time.Duration) {
	for {
		time.Sleep(interval)

		s.mu.Lock()
		for key, v := range s.visitors {
			if time.Since(v.lastSeen) > ttl {
				delete(s.visitors, key)
			}
		}
		s.mu.Unlock()
	}
}

// RedisStore counts requests in fixed one-second windows shared across all
// instances. Redis being down fails open, availability beats throttling here
type RedisStore struct {
	client *redis.Client
	limit  int
}

func NewRedisStore(client *redis.Client, limit int) *RedisStore {
	return &RedisStore{client: client, limit: limit}
}

func (s *RedisStore) Allow(key string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	window := fmt.Sprintf("ratelimit:%s:%d", key, time.Now().Unix())

	pipe := s.client.TxPipeline()
	count := pipe.Incr(ctx, window)
	pipe.Expire(ctx, window, 2*time.Second)

	if _, err := pipe.Exec(ctx); err != nil {
		zap.L().Warn("Rate limit check failed, allowing request", zap.Error(err))
		return true
	}

	return count.Val() <= int64(s.limit)
}

// RateLimiter rejects clients that exceed their budget with a 429
func RateLimiter(store RateStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !store.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Too many requests",
			})
			return
		}

		c.Next()
	}
}
