package handlers

import (
  "errors"

  "github.com/gin-gonic/gin"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/services"
)

type TrackingHandler struct {
  log         *logger.Logger
  trackingSvc services.TrackingService
}

func NewTrackingHandler(log *logger.Logger, trackingSvc services.TrackingService) *TrackingHandler {
  return &TrackingHandler{
    log:         log.With("handler", "TrackingHandler"),
    trackingSvc: trackingSvc,
  }
}

// GET /api/tracking
// Per (rater, test) completion counts for the admin dashboard.
func (th *TrackingHandler) GetTracking(c *gin.Context) {
  rows, err := th.trackingSvc.Report(c.Request.Context())
  if err != nil {
    th.log.Error("Failed to build tracking report", "error", err)
    RespondError(c, err)
    return
  }
  RespondOK(c, rows)
}

// GET /api/results
func (th *TrackingHandler) GetResults(c *gin.Context) {
  ratings, err := th.trackingSvc.AllRatings(c.Request.Context())
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, ratings)
}

// GET /api/results/:test_id
func (th *TrackingHandler) GetResultsByTest(c *gin.Context) {
  testID, ok := uintParam(c, "test_id")
  if !ok {
    RespondError(c, apierr.Validation(errors.New("invalid test id")))
    return
  }
  ratings, err := th.trackingSvc.RatingsByTest(c.Request.Context(), testID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, ratings)
}
