package services

import (
  "context"
  "errors"
  "fmt"

  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/repos"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

// PanelDelivery is everything a panel-service participant needs to take a
// test without logging in: the sequenced items, a credential for follow-up
// submissions, the consent flag and the remaining screening budget.
type PanelDelivery struct {
  Test          *types.Test
  Ordered       []map[string]any
  PageNo        int
  CompletionURL string
  Token         string
  Consent       bool
  RemainingTime int
}

type PanelService interface {
  CreateStudy(ctx context.Context, studyExternalID string, testID uint, completionURL string) (*types.Study, error)
  CreateSession(ctx context.Context, sessionExternalID, studyExternalID, participantID string) (*types.Session, error)
  Entry(ctx context.Context, participantID, studyExternalID, sessionExternalID string) (*PanelDelivery, error)
  SubmitSessionRating(ctx context.Context, sessionExternalID string, testID uint, marker string, payload map[string]any, elapsedMS float64) (*types.Rating, error)
}

type panelService struct {
  db          *gorm.DB
  log         *logger.Logger
  raterRepo   repos.RaterRepo
  testRepo    repos.TestRepo
  studyRepo   repos.StudyRepo
  sessionRepo repos.SessionRepo
  auth        AuthService
  testSvc     TestService
  progress    ProgressService
  consent     ConsentService
  screening   ScreeningService
}

func NewPanelService(
  db *gorm.DB,
  log *logger.Logger,
  raterRepo repos.RaterRepo,
  testRepo repos.TestRepo,
  studyRepo repos.StudyRepo,
  sessionRepo repos.SessionRepo,
  auth AuthService,
  testSvc TestService,
  progress ProgressService,
  consent ConsentService,
  screening ScreeningService,
) PanelService {
  return &panelService{
    db:          db,
    log:         log.With("service", "PanelService"),
    raterRepo:   raterRepo,
    testRepo:    testRepo,
    studyRepo:   studyRepo,
    sessionRepo: sessionRepo,
    auth:        auth,
    testSvc:     testSvc,
    progress:    progress,
    consent:     consent,
    screening:   screening,
  }
}

func (ps *panelService) CreateStudy(ctx context.Context, studyExternalID string, testID uint, completionURL string) (*types.Study, error) {
  if studyExternalID == "" || testID == 0 || completionURL == "" {
    return nil, apierr.Validation(errors.New("missing required fields"))
  }
  test, err := ps.testRepo.GetByID(ctx, nil, testID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load test for study: %w", err)
  }
  if test == nil {
    return nil, apierr.NotFound(errors.New("test not found"))
  }

  study := &types.Study{
    StudyID:       studyExternalID,
    TestID:        testID,
    CompletionURL: completionURL,
  }
  var created *types.Study
  if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var txErr error
    created, txErr = ps.studyRepo.CreateIfAbsent(ctx, tx, study)
    return txErr
  }); err != nil {
    ps.log.Error("Failed to create study", "error", err)
    return nil, apierr.Persistence(errors.New("error creating study"))
  }
  return created, nil
}

func (ps *panelService) CreateSession(ctx context.Context, sessionExternalID, studyExternalID, participantID string) (*types.Session, error) {
  if sessionExternalID == "" || studyExternalID == "" || participantID == "" {
    return nil, apierr.Validation(errors.New("missing required query parameters"))
  }
  study, err := ps.studyRepo.GetByExternalID(ctx, nil, studyExternalID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load study for session: %w", err)
  }
  if study == nil {
    return nil, apierr.NotFound(errors.New("study not found"))
  }
  return ps.ensureSession(ctx, sessionExternalID, study.ID, participantID)
}

// Entry is the whole panel-service flow: resolve (or create) the rater, bind
// the session, sequence the test against recorded progress, start the
// screening clock on first contact and hand back a credential for the rest of
// the visit. Calling it twice with the same session id is idempotent.
func (ps *panelService) Entry(ctx context.Context, participantID, studyExternalID, sessionExternalID string) (*PanelDelivery, error) {
  if participantID == "" || studyExternalID == "" || sessionExternalID == "" {
    return nil, apierr.Validation(errors.New("missing required query parameters"))
  }

  rater, err := ps.auth.ResolvePanelRater(ctx, participantID, studyExternalID)
  if err != nil {
    return nil, err
  }

  study, err := ps.studyRepo.GetByExternalID(ctx, nil, studyExternalID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load study: %w", err)
  }
  if study == nil {
    return nil, apierr.NotFound(errors.New("study not found"))
  }

  if _, err := ps.ensureSession(ctx, sessionExternalID, study.ID, participantID); err != nil {
    return nil, err
  }

  delivery, err := ps.testSvc.FetchForRater(ctx, rater.ID, study.TestID)
  if err != nil {
    return nil, err
  }

  token, err := ps.auth.GenerateToken(rater.Name)
  if err != nil {
    return nil, fmt.Errorf("Failed to issue panel token: %w", err)
  }

  consented, err := ps.consent.HasConsented(ctx, rater.ID, study.TestID)
  if err != nil {
    return nil, err
  }

  ps.screening.Start(ctx, rater.ID, study.ID)
  remaining := ps.screening.RemainingTime(ctx, rater.ID, study.ID)

  return &PanelDelivery{
    Test:          delivery.Test,
    Ordered:       delivery.Ordered,
    PageNo:        delivery.PageNo,
    CompletionURL: study.CompletionURL,
    Token:         token,
    Consent:       consented,
    RemainingTime: remaining,
  }, nil
}

func (ps *panelService) SubmitSessionRating(ctx context.Context, sessionExternalID string, testID uint, marker string, payload map[string]any, elapsedMS float64) (*types.Rating, error) {
  if sessionExternalID == "" || testID == 0 {
    return nil, apierr.Validation(errors.New("missing required fields"))
  }
  if payload == nil {
    return nil, apierr.Validation(errors.New("invalid results_json format"))
  }

  session, err := ps.sessionRepo.GetByExternalID(ctx, nil, sessionExternalID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load session: %w", err)
  }
  if session == nil {
    return nil, apierr.NotFound(errors.New("session not found"))
  }

  rater, err := ps.raterRepo.GetByEmail(ctx, nil, session.ParticipantID)
  if err != nil {
    return nil, fmt.Errorf("Failed to load rater for session: %w", err)
  }
  if rater == nil {
    return nil, apierr.NotFound(errors.New("rater not found for session"))
  }

  payload["session_id"] = sessionExternalID
  payload["participant_id"] = session.ParticipantID
  payload["study_id"] = session.StudyID

  return ps.progress.Record(ctx, rater, testID, marker, payload, elapsedMS)
}

func (ps *panelService) ensureSession(ctx context.Context, sessionExternalID string, studyID uint, participantID string) (*types.Session, error) {
  session := &types.Session{
    SessionID:     sessionExternalID,
    StudyID:       studyID,
    ParticipantID: participantID,
  }
  var ensured *types.Session
  if err := ps.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var txErr error
    ensured, txErr = ps.sessionRepo.CreateIfAbsent(ctx, tx, session)
    return txErr
  }); err != nil {
    ps.log.Error("Failed to create session", "error", err)
    return nil, apierr.Persistence(errors.New("error creating session"))
  }
  return ensured, nil
}
