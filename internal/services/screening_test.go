package services

import (
  "context"
  "errors"
  "strconv"
  "testing"
  "time"

  "github.com/stretchr/testify/assert"

  redisclient "github.com/saffron-speech/saffron-backend/internal/clients/redis"
)

// fakeCache is an in-memory stand-in for the redis client. failing=true makes
// every call error, which the screening service must absorb.
type fakeCache struct {
  values  map[string]string
  failing bool
  sets    int
}

func newFakeCache() *fakeCache {
  return &fakeCache{values: map[string]string{}}
}

func (f *fakeCache) Get(ctx context.Context, key string) (string, error) {
  if f.failing {
    return "", errors.New("connection refused")
  }
  val, ok := f.values[key]
  if !ok {
    return "", redisclient.ErrCacheMiss
  }
  return val, nil
}

func (f *fakeCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
  if f.failing {
    return errors.New("connection refused")
  }
  f.values[key] = value
  f.sets++
  return nil
}

func (f *fakeCache) SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
  if f.failing {
    return false, errors.New("connection refused")
  }
  if _, exists := f.values[key]; exists {
    return false, nil
  }
  f.values[key] = value
  f.sets++
  return true, nil
}

func (f *fakeCache) Close() error { return nil }

func TestRemainingTimeFullBudgetWhenNoTimer(t *testing.T) {
  svc := NewScreeningService(newTestLogger(), newFakeCache(), 480, 6000)
  assert.Equal(t, 480, svc.RemainingTime(context.Background(), 1, 1))
}

func TestRemainingTimeCountsDown(t *testing.T) {
  cache := newFakeCache()
  svc := NewScreeningService(newTestLogger(), cache, 480, 6000)
  ctx := context.Background()

  start := time.Now().Add(-100 * time.Second).Unix()
  cache.values["screening_timer_1_2"] = strconv.FormatInt(start, 10)

  got := svc.RemainingTime(ctx, 1, 2)
  assert.InDelta(t, 380, got, 1)
}

func TestRemainingTimeExhausted(t *testing.T) {
  cache := newFakeCache()
  svc := NewScreeningService(newTestLogger(), cache, 480, 6000)
  ctx := context.Background()

  start := time.Now().Add(-500 * time.Second).Unix()
  cache.values["screening_timer_3_4"] = strconv.FormatInt(start, 10)
  setsBefore := cache.sets

  assert.Equal(t, 0, svc.RemainingTime(ctx, 3, 4))
  // exhausted timers are not refreshed; the entry ages out on its own
  assert.Equal(t, setsBefore, cache.sets)
}

func TestRemainingTimeFailsOpenOnCacheError(t *testing.T) {
  cache := newFakeCache()
  cache.failing = true
  svc := NewScreeningService(newTestLogger(), cache, 480, 6000)

  assert.Equal(t, 480, svc.RemainingTime(context.Background(), 1, 1))
}

func TestRemainingTimeFailsOpenWithoutCache(t *testing.T) {
  svc := NewScreeningService(newTestLogger(), nil, 480, 6000)
  assert.Equal(t, 480, svc.RemainingTime(context.Background(), 1, 1))
}

func TestStartDoesNotResetRunningTimer(t *testing.T) {
  cache := newFakeCache()
  svc := NewScreeningService(newTestLogger(), cache, 480, 6000)
  ctx := context.Background()

  start := time.Now().Add(-200 * time.Second).Unix()
  cache.values["screening_timer_5_6"] = strconv.FormatInt(start, 10)

  svc.Start(ctx, 5, 6)

  got := svc.RemainingTime(ctx, 5, 6)
  assert.InDelta(t, 280, got, 1)
}

func TestStartThenReadReturnsFullBudget(t *testing.T) {
  cache := newFakeCache()
  svc := NewScreeningService(newTestLogger(), cache, 480, 6000)
  ctx := context.Background()

  svc.Start(ctx, 7, 8)
  got := svc.RemainingTime(ctx, 7, 8)
  assert.InDelta(t, 480, got, 1)
}
