package services

import (
  "context"
  "encoding/json"
  "errors"
  "fmt"
  "strconv"
  "time"

  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/repos"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

// RatingUpdate carries the optional fields of a partial rating update.
type RatingUpdate struct {
  ResultsJSON       map[string]any
  TimeTakenToSubmit *float64
  PageNoProgress    *string
}

type ProgressService interface {
  Record(ctx context.Context, rater *types.Rater, testID uint, marker string, payload map[string]any, elapsedMS float64) (*types.Rating, error)
  CompletedItems(ctx context.Context, raterID, testID uint) (map[int]struct{}, error)
  Update(ctx context.Context, ratingID uint, update RatingUpdate) error
}

type progressService struct {
  db         *gorm.DB
  log        *logger.Logger
  ratingRepo repos.RatingRepo
}

func NewProgressService(db *gorm.DB, log *logger.Logger, ratingRepo repos.RatingRepo) ProgressService {
  return &progressService{
    db:         db,
    log:        log.With("service", "ProgressService"),
    ratingRepo: ratingRepo,
  }
}

// Record appends one submission row. The stored payload is the client payload
// enriched with submission context (test, rater contact, wall-clock time,
// elapsed seconds, item marker), matching what downstream analysis expects.
func (ps *progressService) Record(ctx context.Context, rater *types.Rater, testID uint, marker string, payload map[string]any, elapsedMS float64) (*types.Rating, error) {
  if payload == nil {
    return nil, apierr.Validation(errors.New("invalid results_json format"))
  }

  now := time.Now()
  payload["test_id"] = testID
  payload["rater_email"] = rater.Email
  payload["time"] = now.Format(time.RFC3339)
  payload["time_taken"] = elapsedMS / 1000
  payload["data_id"] = marker

  raw, err := json.Marshal(payload)
  if err != nil {
    return nil, apierr.Validation(fmt.Errorf("results_json is not serializable: %w", err))
  }

  rating := &types.Rating{
    RaterID:           rater.ID,
    TestID:            testID,
    ResultsJSON:       raw,
    TimeOfSubmission:  now,
    TimeTakenToSubmit: elapsedMS,
    PageNoProgress:    marker,
  }

  if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    return ps.ratingRepo.Create(ctx, tx, rating)
  }); err != nil {
    ps.log.Error("Failed to create rating", "error", err)
    return nil, apierr.Persistence(errors.New("error saving rating"))
  }
  return rating, nil
}

// CompletedItems is the distinct set of item ids the rater has at least one
// submission for. Markers that are empty or not integers are excluded.
func (ps *progressService) CompletedItems(ctx context.Context, raterID, testID uint) (map[int]struct{}, error) {
  markers, err := ps.ratingRepo.DistinctMarkers(ctx, nil, raterID, testID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load completed markers: %w", err)
  }
  completed := make(map[int]struct{}, len(markers))
  for _, marker := range markers {
    if marker == "" {
      continue
    }
    id, convErr := strconv.Atoi(marker)
    if convErr != nil {
      continue
    }
    completed[id] = struct{}{}
  }
  return completed, nil
}

func (ps *progressService) Update(ctx context.Context, ratingID uint, update RatingUpdate) error {
  fields := map[string]any{}
  if update.ResultsJSON != nil {
    raw, err := json.Marshal(update.ResultsJSON)
    if err != nil {
      return apierr.Validation(fmt.Errorf("results_json is not serializable: %w", err))
    }
    fields["results_json"] = raw
  }
  if update.TimeTakenToSubmit != nil {
    fields["time_taken_to_submit"] = *update.TimeTakenToSubmit
  }
  if update.PageNoProgress != nil {
    fields["page_no_progress"] = *update.PageNoProgress
  }
  if len(fields) == 0 {
    return apierr.Validation(errors.New("no updatable fields provided"))
  }

  return ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    affected, err := ps.ratingRepo.Update(ctx, tx, ratingID, fields)
    if err != nil {
      ps.log.Error("Failed to update rating", "rating_id", ratingID, "error", err)
      return apierr.Persistence(errors.New("error updating rating"))
    }
    if affected == 0 {
      return apierr.NotFound(errors.New("rating not found"))
    }
    return nil
  })
}
