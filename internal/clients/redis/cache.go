package redis

import (
  "context"
  "errors"
  "fmt"
  "os"
  "strings"
  "time"

  goredis "github.com/redis/go-redis/v9"

  "github.com/saffron-speech/saffron-backend/internal/logger"
)

// ErrCacheMiss is returned by Get when the key has no value.
var ErrCacheMiss = errors.New("cache miss")

// Cache is the short-TTL transient store behind the screening timer. Callers
// must tolerate every method failing: the timer degrades to its full budget
// when the cache is unreachable.
type Cache interface {
  Get(ctx context.Context, key string) (string, error)
  Set(ctx context.Context, key, value string, ttl time.Duration) error
  SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)
  Close() error
}

type cache struct {
  log    *logger.Logger
  rdb    *goredis.Client
  prefix string
}

func NewCache(log *logger.Logger) (Cache, error) {
  if log == nil {
    return nil, fmt.Errorf("logger required")
  }

  addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
  if addr == "" {
    return nil, fmt.Errorf("missing REDIS_ADDR")
  }
  prefix := strings.TrimSpace(os.Getenv("REDIS_KEY_PREFIX"))
  if prefix == "" {
    prefix = "tts_saffron_"
  }

  rdb := goredis.NewClient(&goredis.Options{
    Addr:        addr,
    DialTimeout: 5 * time.Second,
  })

  ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
  defer cancel()
  if err := rdb.Ping(ctx).Err(); err != nil {
    _ = rdb.Close()
    return nil, fmt.Errorf("redis ping: %w", err)
  }

  return &cache{
    log:    log.With("client", "RedisCache"),
    rdb:    rdb,
    prefix: prefix,
  }, nil
}

func (c *cache) Get(ctx context.Context, key string) (string, error) {
  val, err := c.rdb.Get(ctx, c.prefix+key).Result()
  if errors.Is(err, goredis.Nil) {
    return "", ErrCacheMiss
  }
  if err != nil {
    return "", err
  }
  return val, nil
}

func (c *cache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
  return c.rdb.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *cache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
  return c.rdb.SetNX(ctx, c.prefix+key, value, ttl).Result()
}

func (c *cache) Close() error {
  return c.rdb.Close()
}
