package repos

import (
  "context"
  "errors"

  "gorm.io/gorm"
  "gorm.io/gorm/clause"

  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

type SessionRepo interface {
  CreateIfAbsent(ctx context.Context, tx *gorm.DB, session *types.Session) (*types.Session, error)
  GetByExternalID(ctx context.Context, tx *gorm.DB, sessionID string) (*types.Session, error)
}

type sessionRepo struct {
  db  *gorm.DB
  log *logger.Logger
}

func NewSessionRepo(db *gorm.DB, baseLog *logger.Logger) SessionRepo {
  return &sessionRepo{db: db, log: baseLog.With("repo", "SessionRepo")}
}

// CreateIfAbsent is idempotent per external session id: a colliding insert is
// a no-op and the existing row is returned.
func (sr *sessionRepo) CreateIfAbsent(ctx context.Context, tx *gorm.DB, session *types.Session) (*types.Session, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  if err := transaction.WithContext(ctx).
    Clauses(clause.OnConflict{
      Columns:   []clause.Column{{Name: "session_id"}},
      DoNothing: true,
    }).
    Create(session).Error; err != nil {
    return nil, err
  }
  return sr.GetByExternalID(ctx, tx, session.SessionID)
}

func (sr *sessionRepo) GetByExternalID(ctx context.Context, tx *gorm.DB, sessionID string) (*types.Session, error) {
  transaction := tx
  if transaction == nil {
    transaction = sr.db
  }
  var result types.Session
  err := transaction.WithContext(ctx).Where("session_id = ?", sessionID).First(&result).Error
  if errors.Is(err, gorm.ErrRecordNotFound) {
    return nil, nil
  }
  if err != nil {
    return nil, err
  }
  return &result, nil
}
