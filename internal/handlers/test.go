package handlers

import (
  "errors"
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/requestdata"
  "github.com/saffron-speech/saffron-backend/internal/services"
)

type TestHandler struct {
  log     *logger.Logger
  testSvc services.TestService
}

func NewTestHandler(log *logger.Logger, testSvc services.TestService) *TestHandler {
  return &TestHandler{
    log:     log.With("handler", "TestHandler"),
    testSvc: testSvc,
  }
}

// GET /api/test/:id
// Serve a test to the authenticated rater, completed items first.
func (th *TestHandler) GetTest(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, apierr.Authentication(errors.New("missing identity")))
    return
  }
  testID, ok := uintParam(c, "id")
  if !ok {
    RespondError(c, apierr.Validation(errors.New("invalid test id")))
    return
  }

  delivery, err := th.testSvc.FetchForRater(c.Request.Context(), rd.RaterID, testID)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondOK(c, gin.H{
    "test_id":     delivery.Test.ID,
    "test_type":   delivery.Test.TestType,
    "description": delivery.Test.Description,
    "json_entry":  delivery.Ordered,
    "page_no":     delivery.PageNo,
  })
}

// POST /api/test
// Load a test into the catalog.
func (th *TestHandler) CreateTest(c *gin.Context) {
  var req struct {
    TestType    string           `json:"test_type"`
    Description string           `json:"description"`
    Items       []map[string]any `json:"json_entry"`
  }
  if err := c.ShouldBindJSON(&req); err != nil {
    RespondError(c, apierr.Validation(errors.New("invalid json_entry format, expected a list of objects")))
    return
  }
  test, err := th.testSvc.Load(c.Request.Context(), req.TestType, req.Description, req.Items)
  if err != nil {
    RespondError(c, err)
    return
  }
  RespondCreated(c, gin.H{"message": "test created successfully", "test_id": test.ID})
}

// GET /api/verify_test/:id
// Report whether the authenticated rater has completed every item.
func (th *TestHandler) VerifyTest(c *gin.Context) {
  rd := requestdata.GetRequestData(c.Request.Context())
  if rd == nil {
    RespondError(c, apierr.Authentication(errors.New("missing identity")))
    return
  }
  testID, ok := uintParam(c, "id")
  if !ok {
    RespondError(c, apierr.Validation(errors.New("invalid test id")))
    return
  }

  completed, err := th.testSvc.VerifyCompleted(c.Request.Context(), rd.RaterID, testID)
  if err != nil {
    RespondError(c, err)
    return
  }
  if completed {
    RespondOK(c, gin.H{"message": "test completed"})
    return
  }
  c.JSON(http.StatusNotFound, gin.H{"message": "test not completed"})
}
