package services

import (
  "context"
  "errors"
  "fmt"
  "strconv"
  "time"

  redisclient "github.com/saffron-speech/saffron-backend/internal/clients/redis"
  "github.com/saffron-speech/saffron-backend/internal/logger"
)

// ScreeningService is the per (rater, study) countdown used to time-box the
// screening window. The cache is best-effort: any failure, including the cache
// never having been wired up, degrades to the full budget and never errors the
// request path.
type ScreeningService interface {
  Start(ctx context.Context, raterID, studyID uint)
  RemainingTime(ctx context.Context, raterID, studyID uint) int
}

type screeningService struct {
  log    *logger.Logger
  cache  redisclient.Cache
  budget int
  ttl    time.Duration
}

func NewScreeningService(log *logger.Logger, cache redisclient.Cache, budgetSeconds, cacheTTLSeconds int) ScreeningService {
  return &screeningService{
    log:    log.With("service", "ScreeningService"),
    cache:  cache,
    budget: budgetSeconds,
    ttl:    time.Duration(cacheTTLSeconds) * time.Second,
  }
}

func screeningTimerKey(raterID, studyID uint) string {
  return fmt.Sprintf("screening_timer_%d_%d", raterID, studyID)
}

// Start records the clock start on first contact only; an existing timer is
// left untouched. The read path never starts the clock, so a remaining-time
// probe on its own cannot shrink a participant's window.
func (ss *screeningService) Start(ctx context.Context, raterID, studyID uint) {
  if ss.cache == nil {
    return
  }
  key := screeningTimerKey(raterID, studyID)
  now := strconv.FormatInt(time.Now().Unix(), 10)
  if _, err := ss.cache.SetNX(ctx, key, now, ss.ttl); err != nil {
    ss.log.Warn("Cache error starting screening timer", "key", key, "error", err)
  }
}

func (ss *screeningService) RemainingTime(ctx context.Context, raterID, studyID uint) int {
  if ss.cache == nil {
    return ss.budget
  }
  key := screeningTimerKey(raterID, studyID)

  raw, err := ss.cache.Get(ctx, key)
  if errors.Is(err, redisclient.ErrCacheMiss) {
    return ss.budget
  }
  if err != nil {
    ss.log.Warn("Cache error reading screening timer, failing open", "key", key, "error", err)
    return ss.budget
  }

  startUnix, convErr := strconv.ParseInt(raw, 10, 64)
  if convErr != nil {
    ss.log.Warn("Malformed screening timer entry, failing open", "key", key, "value", raw)
    return ss.budget
  }

  elapsed := int(time.Now().Unix() - startUnix)
  remaining := ss.budget - elapsed
  if remaining < 0 {
    remaining = 0
  }

  // Sliding TTL while the window is live; an exhausted entry ages out on its own.
  if remaining > 0 {
    if setErr := ss.cache.Set(ctx, key, raw, ss.ttl); setErr != nil {
      ss.log.Warn("Cache error refreshing screening timer", "key", key, "error", setErr)
    }
  }
  return remaining
}
