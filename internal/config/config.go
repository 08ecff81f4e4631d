package config

import (
  "fmt"
  "os"
  "time"

  "gopkg.in/yaml.v3"

  "github.com/saffron-speech/saffron-backend/internal/logger"
  "github.com/saffron-speech/saffron-backend/internal/utils"
)

// Config carries the tunables of the rating backend. Values come from an
// optional YAML file and can be overridden per-key with environment variables.
type Config struct {
  JWTSecretKey     string        `yaml:"jwt_secret_key"`
  TokenTTL         time.Duration `yaml:"-"`
  TokenTTLHours    int           `yaml:"token_ttl_hours"`
  ScreeningBudget  int           `yaml:"screening_budget_seconds"`
  ScreeningTTL     int           `yaml:"screening_cache_ttl_seconds"`
  ShuffleSeed      int64         `yaml:"shuffle_seed"`
  Port             string        `yaml:"port"`
}

func defaults() *Config {
  return &Config{
    JWTSecretKey:    "defaultsecret",
    TokenTTLHours:   24,
    ScreeningBudget: 480,
    ScreeningTTL:    6000,
    ShuffleSeed:     42,
    Port:            "4020",
  }
}

// Load reads the YAML file at path when it exists, then applies environment
// overrides. A missing file is not an error; a malformed one is.
func Load(path string, log *logger.Logger) (*Config, error) {
  cfg := defaults()
  if path != "" {
    raw, err := os.ReadFile(path)
    if err == nil {
      if uErr := yaml.Unmarshal(raw, cfg); uErr != nil {
        return nil, fmt.Errorf("Failed to parse config file %s: %w", path, uErr)
      }
    } else if !os.IsNotExist(err) {
      return nil, fmt.Errorf("Failed to read config file %s: %w", path, err)
    }
  }

  cfg.JWTSecretKey = utils.GetEnv("JWT_SECRET_KEY", cfg.JWTSecretKey, log)
  cfg.TokenTTLHours = utils.GetEnvAsInt("TOKEN_TTL_HOURS", cfg.TokenTTLHours, log)
  cfg.ScreeningBudget = utils.GetEnvAsInt("SCREENING_BUDGET_SECONDS", cfg.ScreeningBudget, log)
  cfg.ScreeningTTL = utils.GetEnvAsInt("SCREENING_CACHE_TTL_SECONDS", cfg.ScreeningTTL, log)
  cfg.ShuffleSeed = int64(utils.GetEnvAsInt("SHUFFLE_SEED", int(cfg.ShuffleSeed), log))
  cfg.Port = utils.GetEnv("PORT", cfg.Port, log)

  cfg.TokenTTL = time.Duration(cfg.TokenTTLHours) * time.Hour
  return cfg, nil
}
