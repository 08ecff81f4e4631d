package handlers

import (
  "errors"

  "github.com/gin-gonic/gin"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/requestdata"
  "github.com/saffron-speech/saffron-backend/internal/services"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

type RatingHandler struct {
  log      *logger.Logger
  progress services.ProgressService
}

func NewRatingHandler(log *logger.Logger, progress services.ProgressService) *RatingHandler {
  return &RatingHandler{
    log:      log.With("handler", "RatingHandler"),
    progress: progress,
  }
}

// POST /api/ratings
// Submit one rating for the authenticated rater. results_json must be a JSON
// object; anything else is rejected before a row is written.
func (rh *RatingHandler) CreateRating(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, apierr.Authentication(errors.New("missing identity")))
    return
  }
  var req struct {
    TestID            uint           `json:"test_id"`
    ResultsJSON       map[string]any `json:"results_json"`
    TimeTakenToSubmit float64        `json:"time_taken_to_submit"`
    PageNoProgress    any            `json:"pageNo_progress"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(errors.New("invalid results_json format")))
    return
  }
  if req.ResultsJSON == nil {
    RespondError(c, apierr.Validation(errors.New("invalid results_json format")))
    return
  }

  rater := &types.Rater{ID: rd.RaterID, Email: rd.Email, Name: rd.Username}
  _, err := rh.progress.Record(c.Request.Context(), rater, req.TestID, markerString(req.PageNoProgress), req.ResultsJSON, req.TimeTakenToSubmit)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"message": "rating created successfully"})
}

// PUT /api/ratings/:id
// Partial update of an existing rating.
func (rh *RatingHandler) UpdateRating(c *gin.Context) {
  ratingID, ok := uintParam(c, "id")
  if !ok {
    RespondError(c, apierr.Validation(errors.New("invalid rating id")))
    return
  }
  var req struct {
    ResultsJSON       map[string]any `json:"results_json"`
    TimeTakenToSubmit *float64       `json:"time_taken_to_submit"`
    PageNoProgress    any            `json:"page_no_progress"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(errors.New("invalid request body")))
    return
  }

  update := services.RatingUpdate{
    ResultsJSON:       req.ResultsJSON,
    TimeTakenToSubmit: req.TimeTakenToSubmit,
  }
  if req.PageNoProgress != nil {
    marker := markerString(req.PageNoProgress)
    update.PageNoProgress = &marker
  }

  if err := rh.progress.Update(c.Request.Context(), ratingID, update); err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{"message": "rating updated successfully"})
}
