package services

import (
  "context"
  "fmt"
  "testing"

  "github.com/stretchr/testify/require"
  "gorm.io/datatypes"
  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/repos"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

func seedRater(t *testing.T, db *gorm.DB, name, email, gender, kind string) *types.Rater {
  t.Helper()
  rater := &types.Rater{
    Name:     name,
    Age:      30,
    Gender:   gender,
    Email:    email,
    Password: "x",
    Kind:     kind,
  }
  require.NoError(t, db.Create(rater).Error)
  return rater
}

func seedTest(t *testing.T, db *gorm.DB, testType string, itemCount int) *types.Test {
  t.Helper()
  items := "["
  for i := 0; i < itemCount; i++ {
    if i > 0 {
      items += ","
    }
    items += fmt.Sprintf(`{"id": %d, "audio": "clip_%d.wav"}`, i+1, i+1)
  }
  items += "]"
  test := &types.Test{
    TestType:    testType,
    Description: testType + " battery",
    Items:       datatypes.JSON(items),
  }
  require.NoError(t, db.Create(test).Error)
  return test
}

func seedRating(t *testing.T, db *gorm.DB, raterID, testID uint, marker string) {
  t.Helper()
  rating := &types.Rating{
    RaterID:        raterID,
    TestID:         testID,
    ResultsJSON:    datatypes.JSON(`{"score": 4}`),
    PageNoProgress: marker,
  }
  require.NoError(t, db.Create(rating).Error)
}

func newTrackingService(db *gorm.DB) TrackingService {
  log := newTestLogger()
  return NewTrackingService(
    db,
    log,
    repos.NewRaterRepo(db, log),
    repos.NewTestRepo(db, log),
    repos.NewRatingRepo(db, log),
  )
}

func TestTrackingReportCountsAndTotals(t *testing.T) {
  db := newTestDB(t)
  svc := newTrackingService(db)

  alice := seedRater(t, db, "alice", "alice@example.com", "female", types.RaterKindDirect)
  mos := seedTest(t, db, "mos", 3)
  similarity := seedTest(t, db, "similarity", 2)

  seedRating(t, db, alice.ID, mos.ID, "1")
  seedRating(t, db, alice.ID, mos.ID, "2")
  seedRating(t, db, alice.ID, similarity.ID, "1")

  rows, err := svc.Report(context.Background())
  require.NoError(t, err)
  require.Len(t, rows, 2)

  // Test ids come back descending, so the later test is first.
  require.Equal(t, similarity.ID, rows[0].TestID)
  require.Equal(t, "alice@example.com", rows[0].Email)
  require.Equal(t, 1, rows[0].CompletedPages)
  require.Equal(t, 2, rows[0].TotalPages)

  require.Equal(t, mos.ID, rows[1].TestID)
  require.Equal(t, 2, rows[1].CompletedPages)
  require.Equal(t, 3, rows[1].TotalPages)
  require.Equal(t, "mos", rows[1].TestType)
}

func TestTrackingReportExcludesPanelAndUnknownRaters(t *testing.T) {
  db := newTestDB(t)
  svc := newTrackingService(db)

  alice := seedRater(t, db, "alice", "alice@example.com", "female", types.RaterKindDirect)
  panel := seedRater(t, db, "Panel_abc123", "abc123", "Unknown", types.RaterKindPanel)
  legacy := seedRater(t, db, "legacy", "legacy@example.com", "unknown", types.RaterKindDirect)
  mos := seedTest(t, db, "mos", 3)

  seedRating(t, db, alice.ID, mos.ID, "1")
  seedRating(t, db, panel.ID, mos.ID, "1")
  seedRating(t, db, panel.ID, mos.ID, "2")
  seedRating(t, db, legacy.ID, mos.ID, "3")

  rows, err := svc.Report(context.Background())
  require.NoError(t, err)
  require.Len(t, rows, 1)
  require.Equal(t, "alice@example.com", rows[0].Email)
}

func TestTrackingReportEmptyWithoutRatings(t *testing.T) {
  db := newTestDB(t)
  svc := newTrackingService(db)

  seedRater(t, db, "alice", "alice@example.com", "female", types.RaterKindDirect)
  seedTest(t, db, "mos", 3)

  rows, err := svc.Report(context.Background())
  require.NoError(t, err)
  require.Empty(t, rows)
}

func TestTrackingRatingsByTest(t *testing.T) {
  db := newTestDB(t)
  svc := newTrackingService(db)

  alice := seedRater(t, db, "alice", "alice@example.com", "female", types.RaterKindDirect)
  mos := seedTest(t, db, "mos", 3)
  similarity := seedTest(t, db, "similarity", 2)

  seedRating(t, db, alice.ID, mos.ID, "1")
  seedRating(t, db, alice.ID, similarity.ID, "1")

  all, err := svc.AllRatings(context.Background())
  require.NoError(t, err)
  require.Len(t, all, 2)

  byTest, err := svc.RatingsByTest(context.Background(), mos.ID)
  require.NoError(t, err)
  require.Len(t, byTest, 1)
  require.Equal(t, mos.ID, byTest[0].TestID)
}
