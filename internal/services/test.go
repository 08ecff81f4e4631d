package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"

  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/repos"
  "github.com/saffron-speech/saffron-backend/internal/sequencer"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

// TestDelivery is the payload served to a rater resuming a test: the full item
// list reordered (completed prefix, shuffled remainder) plus the resume hint.
type TestDelivery struct {
  Test    *types.Test
  Ordered []map[string]any
  PageNo  int
}

type TestService interface {
  Load(ctx context.Context, testType, description string, items []map[string]any) (*types.Test, error)
  FetchForRater(ctx context.Context, raterID, testID uint) (*TestDelivery, error)
  VerifyCompleted(ctx context.Context, raterID, testID uint) (bool, error)
}

type testService struct {
  db       *gorm.DB
  log      *logger.Logger
  testRepo repos.TestRepo
  progress ProgressService
  shuffler *sequencer.Shuffler
}

func NewTestService(db *gorm.DB, log *logger.Logger, testRepo repos.TestRepo, progress ProgressService, shuffler *sequencer.Shuffler) TestService {
  return &testService{
    db:       db,
    log:      log.With("service", "TestService"),
    testRepo: testRepo,
    progress: progress,
    shuffler: shuffler,
  }
}

// Load puts a test into the catalog. Item ids are assumed unique within the
// test; the loader is the place that invariant is upheld, so duplicates are
// rejected here rather than tolerated downstream.
func (ts *testService) Load(ctx context.Context, testType, description string, items []map[string]any) (*types.Test, error) {
  if testType == "" {
    return nil, apierr.Validation(errors.New("missing required field: test_type"))
  }
  if items == nil {
    return nil, apierr.Validation(errors.New("invalid json_entry format, expected a list of objects"))
  }

  seen := make(map[int]struct{}, len(items))
  for _, item := range items {
    id, ok := sequencer.EntryID(item)
    if !ok {
      return nil, apierr.Validation(errors.New("every item needs an integer id"))
    }
    if _, dup := seen[id]; dup {
      return nil, apierr.Validation(fmt.Errorf("duplicate item id %d", id))
    }
    seen[id] = struct{}{}
  }

  raw, err := json.Marshal(items)
  if err != nil {
    return nil, apierr.Validation(fmt.Errorf("json_entry is not serializable: %w", err))
  }

  test := &types.Test{
    TestType:    testType,
    Description: description,
    Items:       raw,
  }
  if err := ts.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    return ts.testRepo.Create(ctx, tx, test)
  }); err != nil {
    ts.log.Error("Failed to create test", "error", err)
    return nil, apierr.Persistence(errors.New("error creating test"))
  }
  return test, nil
}

func (ts *testService) FetchForRater(ctx context.Context, raterID, testID uint) (*TestDelivery, error) {
  test, err := ts.testRepo.GetByID(ctx, nil, testID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load test: %w", err)
  }
  if test == nil {
    return nil, apierr.NotFound(errors.New("test not found"))
  }

  entries, err := test.Entries()
  if err != nil {
    return nil, fmt.Errorf("Failed to decode test items: %w", err)
  }

  completed, err := ts.progress.CompletedItems(ctx, raterID, testID)
  if err != nil {
    return nil, err
  }

  res := sequencer.Sequence(entries, completed, ts.shuffler)
  return &TestDelivery{Test: test, Ordered: res.Ordered, PageNo: res.PageNo}, nil
}

func (ts *testService) VerifyCompleted(ctx context.Context, raterID, testID uint) (bool, error) {
  test, err := ts.testRepo.GetByID(ctx, nil, testID)
  if err != nil {
    return false, fmt.Errorf("Failed to load test: %w", err)
  }
  if test == nil {
    return false, apierr.NotFound(errors.New("test not found"))
  }
  entries, err := test.Entries()
  if err != nil {
    return false, fmt.Errorf("Failed to decode test items: %w", err)
  }
  completed, err := ts.progress.CompletedItems(ctx, raterID, testID)
  if err != nil {
    return false, err
  }
  for _, entry := range entries {
    id, ok := sequencer.EntryID(entry)
    if !ok {
      continue
    }
    if _, done := completed[id]; !done {
      return false, nil
    }
  }
  return true, nil
}
