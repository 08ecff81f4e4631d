package services

import (
  "context"
  "errors"
  "fmt"
  "time"

  "github.com/golang-jwt/jwt/v5"
  "github.com/google/uuid"
  "golang.org/x/crypto/bcrypt"
  "gorm.io/gorm"

  "github.com/saffron-speech/saffron-backend/internal/apierr"
  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/repos"
  "github.com/saffron-speech/saffron-backend/internal/requestdata"
  "github.com/saffron-speech/saffron-backend/internal/types"
)

type JWTClaims struct {
  Username string `json:"username"`
  jwt.RegisteredClaims
}

type AuthService interface {
  Login(ctx context.Context, username, password string) (string, error)
  Signup(ctx context.Context, rater *types.Rater) (string, error)
  ResolvePanelRater(ctx context.Context, participantID, studyExternalID string) (*types.Rater, error)
  GenerateToken(username string) (string, error)
  VerifyToken(tokenString string) (*JWTClaims, error)
  SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
  TokenTTL() time.Duration
}

type authService struct {
  db           *gorm.DB
  log          *logger.Logger
  raterRepo    repos.RaterRepo
  jwtSecretKey string
  tokenTTL     time.Duration
}

func NewAuthService(db *gorm.DB, log *logger.Logger, raterRepo repos.RaterRepo, jwtSecretKey string, tokenTTL time.Duration) AuthService {
  return &authService{
    db:           db,
    log:          log.With("service", "AuthService"),
    raterRepo:    raterRepo,
    jwtSecretKey: jwtSecretKey,
    tokenTTL:     tokenTTL,
  }
}

func (as *authService) Login(ctx context.Context, username, password string) (string, error) {
  if username == "" || password == "" {
    return "", apierr.Validation(errors.New("username and password are required"))
  }
  rater, err := as.raterRepo.GetByName(ctx, nil, username)
  if err != nil {
    return "", fmt.Errorf("Failed to look up rater by name: %w", err)
  }
  if rater == nil {
    return "", apierr.Authentication(errors.New("invalid username or password"))
  }
  if bcrypt.CompareHashAndPassword([]byte(rater.Password), []byte(password)) != nil {
    return "", apierr.Authentication(errors.New("invalid username or password"))
  }
  return as.GenerateToken(rater.Name)
}

func (as *authService) Signup(ctx context.Context, rater *types.Rater) (string, error) {
  if rater.Name == "" || rater.Email == "" || rater.Password == "" {
    return "", apierr.Validation(errors.New("name, email and password are required"))
  }

  existing, err := as.raterRepo.GetByEmail(ctx, nil, rater.Email)
  if err != nil {
    return "", fmt.Errorf("Failed to check existing email: %w", err)
  }
  if existing != nil {
    return "", apierr.Validation(errors.New("email already exists"))
  }
  existing, err = as.raterRepo.GetByName(ctx, nil, rater.Name)
  if err != nil {
    return "", fmt.Errorf("Failed to check existing name: %w", err)
  }
  if existing != nil {
    return "", apierr.Validation(errors.New("username already exists"))
  }

  hashed, err := bcrypt.GenerateFromPassword([]byte(rater.Password), bcrypt.DefaultCost)
  if err != nil {
    return "", fmt.Errorf("Failed to hash password: %w", err)
  }
  rater.Password = string(hashed)
  rater.Kind = types.RaterKindDirect

  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    return as.raterRepo.Create(ctx, tx, rater)
  }); err != nil {
    as.log.Error("Failed to create rater", "error", err)
    return "", apierr.Persistence(errors.New("error occurred while signing up"))
  }

  return as.GenerateToken(rater.Name)
}

// ResolvePanelRater maps a panel-service participant id onto a rater, creating
// one on first contact. The generated credential is stored but never usable
// for direct login; its only job is to fill the non-null password column.
// Creation goes through an upsert so concurrent first contacts cannot produce
// two raters for one participant.
func (as *authService) ResolvePanelRater(ctx context.Context, participantID, studyExternalID string) (*types.Rater, error) {
  rater, err := as.raterRepo.GetByEmail(ctx, nil, participantID)
  if err != nil {
    return nil, fmt.Errorf("Failed to look up panel rater: %w", err)
  }
  if rater != nil {
    return rater, nil
  }

  seed := fmt.Sprintf("%s_%s_%s", participantID, studyExternalID, uuid.NewString())
  hashed, err := bcrypt.GenerateFromPassword([]byte(seed), bcrypt.DefaultCost)
  if err != nil {
    return nil, fmt.Errorf("Failed to generate panel credential: %w", err)
  }

  candidate := &types.Rater{
    Name:     "Panel_" + participantID,
    Age:      0,
    Gender:   "Unknown",
    Email:    participantID,
    Password: string(hashed),
    Kind:     types.RaterKindPanel,
  }

  var created *types.Rater
  if err := as.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
    var txErr error
    created, txErr = as.raterRepo.CreateIfAbsentByEmail(ctx, tx, candidate)
    return txErr
  }); err != nil {
    as.log.Error("Failed to create panel rater", "error", err)
    return nil, apierr.Persistence(errors.New("error creating rater"))
  }
  return created, nil
}

func (as *authService) GenerateToken(username string) (string, error) {
  claims := JWTClaims{
    Username: username,
    RegisteredClaims: jwt.RegisteredClaims{
      ExpiresAt: jwt.NewNumericDate(time.Now().Add(as.tokenTTL)),
      IssuedAt:  jwt.NewNumericDate(time.Now()),
    },
  }
  token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
  return token.SignedString([]byte(as.jwtSecretKey))
}

func (as *authService) VerifyToken(tokenString string) (*JWTClaims, error) {
  parsed, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
    return []byte(as.jwtSecretKey), nil
  })
  if err != nil {
    if errors.Is(err, jwt.ErrTokenExpired) {
      return nil, apierr.Authentication(errors.New("token has expired"))
    }
    return nil, apierr.Authentication(errors.New("invalid token"))
  }
  claims, ok := parsed.Claims.(*JWTClaims)
  if !ok || !parsed.Valid {
    return nil, apierr.Authentication(errors.New("invalid token"))
  }
  if claims.Username == "" {
    return nil, apierr.Authentication(errors.New("token carries no username"))
  }
  return claims, nil
}

func (as *authService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
  claims, err := as.VerifyToken(tokenString)
  if err != nil {
    return ctx, err
  }
  rater, err := as.raterRepo.GetByName(ctx, nil, claims.Username)
  if err != nil {
    return ctx, fmt.Errorf("Failed to load rater for token: %w", err)
  }
  if rater == nil {
    return ctx, apierr.Authentication(errors.New("rater not found for token"))
  }
  rd := &requestdata.RequestData{
    TokenString: tokenString,
    Username:    rater.Name,
    Email:       rater.Email,
    RaterID:     rater.ID,
  }
  return requestdata.WithRequestData(ctx, rd), nil
}

func (as *authService) TokenTTL() time.Duration {
  return as.tokenTTL
}
