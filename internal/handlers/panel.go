package handlers

import (
  "errors"

  "github.com/gin-gonic/gin"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/requestdata"
  "github.com/saffron-speech/saffron-backend/internal/services"
)

// PanelHandler serves the panel-service flow. Participants arrive with
// PROLIFIC_PID / STUDY_ID / SESSION_ID query parameters and never log in.
type PanelHandler struct {
  log          *logger.Logger
  panelSvc     services.PanelService
  consentSvc   services.ConsentService
  rejectionURL string
}

func NewPanelHandler(log *logger.Logger, panelSvc services.PanelService, consentSvc services.ConsentService, rejectionURL string) *PanelHandler {
  return &PanelHandler{
    log:          log.With("handler", "PanelHandler"),
    panelSvc:     panelSvc,
    consentSvc:   consentSvc,
    rejectionURL: rejectionURL,
  }
}

// POST /api/prolific/study
func (ph *PanelHandler) CreateStudy(c *gin.Context) {
  var req struct {
    StudyID       string `json:"study_id"`
    TestID        uint   `json:"test_id"`
    CompletionURL string `json:"completion_url"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(errors.New("invalid request body")))
    return
  }
  study, err := ph.panelSvc.CreateStudy(c.Request.Context(), req.StudyID, req.TestID, req.CompletionURL)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"message": "study created successfully", "study_id": study.StudyID})
}

// POST /api/prolific/session
func (ph *PanelHandler) CreateSession(c *gin.Context) {
  session, err := ph.panelSvc.CreateSession(
    c.Request.Context(),
    c.Query("SESSION_ID"),
    c.Query("STUDY_ID"),
    c.Query("PROLIFIC_PID"),
  )
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"message": "session created successfully", "session_id": session.SessionID})
}

// GET /api/prolific/study
// Panel entry point: resolves the rater, binds the session and serves the
// sequenced test together with a token and the remaining screening budget.
func (ph *PanelHandler) Entry(c *gin.Context) {
  delivery, err := ph.panelSvc.Entry(
    c.Request.Context(),
    c.Query("PROLIFIC_PID"),
    c.Query("STUDY_ID"),
    c.Query("SESSION_ID"),
  )
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{
    "test_id":        delivery.Test.ID,
    "test_type":      delivery.Test.TestType,
    "description":    delivery.Test.Description,
    "json_entry":     delivery.Ordered,
    "page_no":        delivery.PageNo,
    "completion_url": delivery.CompletionURL,
    "token":          delivery.Token,
    "consent":        delivery.Consent,
    "rejection_url":  ph.rejectionURL,
    "remaining_time": delivery.RemainingTime,
  })
}

// POST /api/prolific/rating
func (ph *PanelHandler) SubmitRating(c *gin.Context) {
  var req struct {
    SessionID         string         `json:"session_id"`
    TestID            uint           `json:"test_id"`
    ResultsJSON       map[string]any `json:"results_json"`
    TimeTakenToSubmit float64        `json:"time_taken_to_submit"`
    PageNoProgress    any            `json:"pageNo_progress"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(errors.New("invalid results_json format")))
    return
  }
  _, err := ph.panelSvc.SubmitSessionRating(
    c.Request.Context(),
    req.SessionID,
    req.TestID,
    markerString(req.PageNoProgress),
    req.ResultsJSON,
    req.TimeTakenToSubmit,
  )
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"message": "rating created successfully"})
}

// GET /api/prolific/consent/:test_id
func (ph *PanelHandler) GiveConsent(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, apierr.Authentication(errors.New("missing identity")))
    return
  }
  testID, ok := uintParam(c, "test_id")
  if !ok {
    RespondError(c, apierr.Validation(errors.New("invalid test id")))
    return
  }
  if err := ph.consentSvc.RecordConsent(c.Request.Context(), rd.RaterID, testID); err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"message": "consent given successfully"})
}
