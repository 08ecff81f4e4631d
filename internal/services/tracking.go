package services

import (
  "context"
  "fmt"
  "sort"
  "strings"
  "sync"

  "golang.org/x/sync/errgroup"
  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/repos"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

// TrackingRow is one (rater, test) aggregate for the admin dashboard.
type TrackingRow struct {
  Email          string `json:"email"`
  TestID         uint   `json:"test_id"`
  TestType       string `json:"test_type"`
  TestDesc       string `json:"test_desc"`
  CompletedPages int    `json:"completed_pages"`
  TotalPages     int    `json:"total_pages"`
}

type TrackingService interface {
  Report(ctx context.Context) ([]TrackingRow, error)
  AllRatings(ctx context.Context) ([]*types.Rating, error)
  RatingsByTest(ctx context.Context, testID uint) ([]*types.Rating, error)
}

type trackingService struct {
  db         *gorm.DB
  log        *logger.Logger
  raterRepo  repos.RaterRepo
  testRepo   repos.TestRepo
  ratingRepo repos.RatingRepo
}

func NewTrackingService(db *gorm.DB, log *logger.Logger, raterRepo repos.RaterRepo, testRepo repos.TestRepo, ratingRepo repos.RatingRepo) TrackingService {
  return &trackingService{
    db:         db,
    log:        log.With("service", "TrackingService"),
    raterRepo:  raterRepo,
    testRepo:   testRepo,
    ratingRepo: ratingRepo,
  }
}

// Report aggregates submission counts against catalog totals per (rater, test)
// pair. Auto-created panel raters are excluded via the explicit kind column;
// the legacy "gender is Unknown" filter is kept alongside it for raters that
// predate the kind column. Raters are fanned out with bounded concurrency and
// results come back sorted by test id descending.
func (ts *trackingService) Report(ctx context.Context) ([]TrackingRow, error) {
  raters, err := ts.raterRepo.GetAll(ctx, nil)
  if err != nil {
    return nil, fmt.Errorf("Failed to list raters: %w", err)
  }

  var (
    mu         sync.Mutex
    rows       []TrackingRow
    totalCache = map[uint]*types.Test{}
  )

  group, groupCtx := errgroup.WithContext(ctx)
  group.SetLimit(8)

  for _, rater := range raters {
    if rater.Kind == types.RaterKindPanel || strings.EqualFold(rater.Gender, "unknown") {
      continue
    }
    rater := rater
    group.Go(func() error {
      counts, cErr := ts.ratingRepo.CountPerTest(groupCtx, nil, rater.ID)
      if cErr != nil {
        return fmt.Errorf("Failed to count ratings for rater %d: %w", rater.ID, cErr)
      }
      for testID, completed := range counts {
        test, tErr := ts.testForID(groupCtx, testID, totalCache, &mu)
        if tErr != nil {
          return tErr
        }
        if test == nil {
          continue
        }
        total := 0
        if entries, eErr := test.Entries(); eErr == nil {
          total = len(entries)
        }
        mu.Lock()
        rows = append(rows, TrackingRow{
          Email:          rater.Email,
          TestID:         test.ID,
          TestType:       test.TestType,
          TestDesc:       test.Description,
          CompletedPages: completed,
          TotalPages:     total,
        })
        mu.Unlock()
      }
      return nil
    })
  }
  if err := group.Wait(); err != nil {
    return nil, err
  }

  sort.Slice(rows, func(i, j int) bool {
    if rows[i].TestID != rows[j].TestID {
      return rows[i].TestID > rows[j].TestID
    }
    return rows[i].Email < rows[j].Email
  })
  return rows, nil
}

func (ts *trackingService) AllRatings(ctx context.Context) ([]*types.Rating, error) {
  return ts.ratingRepo.GetAll(ctx, nil)
}

func (ts *trackingService) RatingsByTest(ctx context.Context, testID uint) ([]*types.Rating, error) {
  return ts.ratingRepo.GetByTest(ctx, nil, testID)
}

func (ts *trackingService) testForID(ctx context.Context, testID uint, cache map[uint]*types.Test, mu *sync.Mutex) (*types.Test, error) {
  mu.Lock()
  cached, ok := cache[testID]
  mu.Unlock()
  if ok {
    return cached, nil
  }
  test, err := ts.testRepo.GetByID(ctx, nil, testID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load test %d: %w", testID, err)
  }
  mu.Lock()
  cache[testID] = test
  mu.Unlock()
  return test, nil
}
