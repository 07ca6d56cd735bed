package cache

import (
	"context"
	"encoding/json"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/kbukum/voicebridge/logger"
	"github.com/kbukum/voicebridge/translation"
)

// RedisConfig configures the Redis-backed store.
type RedisConfig struct {
	// Addr is the Redis host:port.
	Addr string `json:"addr" mapstructure:"addr"`
	// Password authenticates the connection, if set.
	Password string `json:"password" mapstructure:"password"`
	// DB selects the Redis logical database.
	DB int `json:"db" mapstructure:"db"`
	// KeyPrefix namespaces all cache keys.
	KeyPrefix string `json:"key_prefix" mapstructure:"key_prefix"`
	// TTL is how long entries stay valid; Redis enforces it natively.
	TTL time.Duration `json:"ttl" mapstructure:"ttl"`
}

// ApplyDefaults applies default values to the Redis store configuration.
func (c *RedisConfig) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = "localhost:6379"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "voicebridge:translations"
	}
	if c.TTL <= 0 {
		c.TTL = time.Hour
	}
}

// RedisStore is a translation cache backed by Redis, for embedders that
// want cached translations shared across processes. Size bounding is left
// to Redis (maxmemory policy); TTL is enforced server-side.
type RedisStore struct {
	client *goredis.Client
	cfg    RedisConfig
	log    *logger.Logger

	counters
}

// NewRedisStore creates a Redis-backed store over its own client.
func NewRedisStore(cfg RedisConfig) *RedisStore {
	cfg.ApplyDefaults()
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	return NewRedisStoreWithClient(client, cfg)
}

// NewRedisStoreWithClient creates a Redis-backed store over an existing client.
func NewRedisStoreWithClient(client *goredis.Client, cfg RedisConfig) *RedisStore {
	cfg.ApplyDefaults()
	return &RedisStore{
		client: client,
		cfg:    cfg,
		log:    logger.Get("cache"),
	}
}

// Get returns the cached result for the request's exact key. Connection
// errors degrade to a miss.
func (s *RedisStore) Get(ctx context.Context, req translation.Request) (*translation.Result, bool) {
	if res := s.load(ctx, Key(req)); res != nil {
		s.hit()
		return res, true
	}
	s.miss()
	return nil, false
}

// GetWithFallback tries the exact key first, then the "any" mirror.
func (s *RedisStore) GetWithFallback(ctx context.Context, req translation.Request) (*translation.Result, bool) {
	if res := s.load(ctx, Key(req)); res != nil {
		s.hit()
		return res, true
	}
	if req.Service != translation.ServiceAny && req.Service != "" {
		if res := s.load(ctx, KeyForService(req, translation.ServiceAny)); res != nil {
			s.hit()
			return res, true
		}
	}
	s.miss()
	return nil, false
}

// Set stores the result under the request's key and the "any" mirror.
// Write failures are logged and dropped.
func (s *RedisStore) Set(ctx context.Context, req translation.Request, result *translation.Result) {
	if result == nil {
		return
	}
	data, err := json.Marshal(result)
	if err != nil {
		s.log.Warn("cache entry marshal failed", logger.ErrorFields("set", err))
		return
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, s.fullKey(Key(req)), data, s.cfg.TTL)
	if req.Service != translation.ServiceAny && req.Service != "" {
		pipe.Set(ctx, s.fullKey(KeyForService(req, translation.ServiceAny)), data, s.cfg.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		s.log.Warn("cache write failed", logger.ErrorFields("set", err))
	}
}

// Stats returns the running hit/miss counters for this process.
func (s *RedisStore) Stats() Stats {
	return s.snapshot()
}

// Close releases the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) fullKey(key string) string {
	return s.cfg.KeyPrefix + ":" + key
}

func (s *RedisStore) load(ctx context.Context, key string) *translation.Result {
	raw, err := s.client.Get(ctx, s.fullKey(key)).Bytes()
	if err != nil {
		if err != goredis.Nil {
			s.log.Warn("cache read failed", logger.ErrorFields("get", err))
		}
		return nil
	}
	var res translation.Result
	if err := json.Unmarshal(raw, &res); err != nil {
		s.log.Warn("cache entry unmarshal failed", logger.ErrorFields("get", err))
		return nil
	}
	return &res
}

// compile-time interface check
var _ Store = (*RedisStore)(nil)
