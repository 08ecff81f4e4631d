package services

import (
  "context"
  "testing"

  "github.com/stretchr/testify/assert"
  "github.com/stretchr/testify/require"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/repos"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

func TestCompletedItemsCollapsesDuplicates(t *testing.T) {
  db := newTestDB(t)
  log := newTestLogger()
  ratingRepo := repos.NewRatingRepo(db, log)
  progress := NewProgressService(db, log, ratingRepo)
  ctx := context.Background()

  rater := &types.Rater{Name: "alice", Email: "alice@example.com", Gender: "Female", Password: "x"}
  require.NoError(t, db.Create(rater).Error)

  for _, marker := range []string{"3", "7", "3"} {
    _, err := progress.Record(ctx, rater, 1, marker, map[string]any{"score": 4}, 1500)
    require.NoError(t, err)
  }

  completed, err := progress.CompletedItems(ctx, rater.ID, 1)
  require.NoError(t, err)
  assert.Len(t, completed, 2)
  assert.Contains(t, completed, 3)
  assert.Contains(t, completed, 7)
}

func TestCompletedItemsSkipsNonNumericMarkers(t *testing.T) {
  db := newTestDB(t)
  log := newTestLogger()
  ratingRepo := repos.NewRatingRepo(db, log)
  progress := NewProgressService(db, log, ratingRepo)
  ctx := context.Background()

  rater := &types.Rater{Name: "bob", Email: "bob@example.com", Gender: "Male", Password: "x"}
  require.NoError(t, db.Create(rater).Error)

  for _, marker := range []string{"2", "intro", "3.7", ""} {
    _, err := progress.Record(ctx, rater, 1, marker, map[string]any{"score": 1}, 900)
    require.NoError(t, err)
  }

  completed, err := progress.CompletedItems(ctx, rater.ID, 1)
  require.NoError(t, err)
  assert.Equal(t, map[int]struct{}{2: {}}, completed)
}

func TestRecordRejectsNilPayload(t *testing.T) {
  db := newTestDB(t)
  log := newTestLogger()
  ratingRepo := repos.NewRatingRepo(db, log)
  progress := NewProgressService(db, log, ratingRepo)

  rater := &types.Rater{Name: "carol", Email: "carol@example.com", Gender: "Female", Password: "x"}
  require.NoError(t, db.Create(rater).Error)

  _, err := progress.Record(context.Background(), rater, 1, "1", nil, 100)
  require.Error(t, err)
  assert.True(t, apierr.IsCode(err, apierr.CodeValidation))

  var count int64
  require.NoError(t, db.Model(&types.Rating{}).Count(&count).Error)
  assert.Zero(t, count)
}

func TestUpdateRatingNotFound(t *testing.T) {
  db := newTestDB(t)
  log := newTestLogger()
  ratingRepo := repos.NewRatingRepo(db, log)
  progress := NewProgressService(db, log, ratingRepo)

  elapsed := 250.0
  err := progress.Update(context.Background(), 9999, RatingUpdate{TimeTakenToSubmit: &elapsed})
  require.Error(t, err)
  assert.True(t, apierr.IsCode(err, apierr.CodeNotFound))
}

func TestUpdateRatingPartialFields(t *testing.T) {
  db := newTestDB(t)
  log := newTestLogger()
  ratingRepo := repos.NewRatingRepo(db, log)
  progress := NewProgressService(db, log, ratingRepo)
  ctx := context.Background()

  rater := &types.Rater{Name: "dave", Email: "dave@example.com", Gender: "Male", Password: "x"}
  require.NoError(t, db.Create(rater).Error)

  created, err := progress.Record(ctx, rater, 1, "4", map[string]any{"score": 2}, 1000)
  require.NoError(t, err)

  marker := "5"
  require.NoError(t, progress.Update(ctx, created.ID, RatingUpdate{PageNoProgress: &marker}))

  var reloaded types.Rating
  require.NoError(t, db.First(&reloaded, created.ID).Error)
  assert.Equal(t, "5", reloaded.PageNoProgress)
  assert.Equal(t, 1000.0, reloaded.TimeTakenToSubmit)
}
