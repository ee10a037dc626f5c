package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/campusplan/timetable-core/internal/models"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig carries the §4.A time-grid defaults plus the §6 Generate
// option defaults and the proposal-cache TTL the service layer uses between
// Generate and Save (SPEC_FULL §4 "Idempotent re-generation").
type SchedulerConfig struct {
	SlotDurationMinutes   int
	DayStart              string
	DayEnd                string
	LunchStart            string
	LunchEnd              string
	CapacityMarginEnabled bool
	CapacityMarginPercent int

	DefaultPreset        string
	DefaultMaxIterations int
	DefaultTimeoutMs     int
	ProposalTTL          time.Duration
}

// Settings converts the loaded string clock values into models.SystemSettings,
// the shape every solver component consumes.
func (s SchedulerConfig) Settings() (models.SystemSettings, error) {
	dayStart, err := models.ParseClock(s.DayStart)
	if err != nil {
		return models.SystemSettings{}, err
	}
	dayEnd, err := models.ParseClock(s.DayEnd)
	if err != nil {
		return models.SystemSettings{}, err
	}
	lunchStart, err := models.ParseClock(s.LunchStart)
	if err != nil {
		return models.SystemSettings{}, err
	}
	lunchEnd, err := models.ParseClock(s.LunchEnd)
	if err != nil {
		return models.SystemSettings{}, err
	}
	return models.SystemSettings{
		SlotDurationMinutes:   s.SlotDurationMinutes,
		DayStart:              dayStart,
		DayEnd:                dayEnd,
		LunchStart:            lunchStart,
		LunchEnd:              lunchEnd,
		CapacityMarginEnabled: s.CapacityMarginEnabled,
		CapacityMarginPercent: s.CapacityMarginPercent,
	}, nil
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		SlotDurationMinutes:   v.GetInt("SCHEDULER_SLOT_DURATION_MINUTES"),
		DayStart:              v.GetString("SCHEDULER_DAY_START"),
		DayEnd:                v.GetString("SCHEDULER_DAY_END"),
		LunchStart:            v.GetString("SCHEDULER_LUNCH_START"),
		LunchEnd:              v.GetString("SCHEDULER_LUNCH_END"),
		CapacityMarginEnabled: v.GetBool("SCHEDULER_CAPACITY_MARGIN_ENABLED"),
		CapacityMarginPercent: v.GetInt("SCHEDULER_CAPACITY_MARGIN_PERCENT"),
		DefaultPreset:         v.GetString("SCHEDULER_DEFAULT_PRESET"),
		DefaultMaxIterations:  v.GetInt("SCHEDULER_DEFAULT_MAX_ITERATIONS"),
		DefaultTimeoutMs:      v.GetInt("SCHEDULER_DEFAULT_TIMEOUT_MS"),
		ProposalTTL:           parseDuration(v.GetString("SCHEDULER_PROPOSAL_TTL"), 30*time.Minute),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable_core")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	// §4.A / §6 documented defaults.
	v.SetDefault("SCHEDULER_SLOT_DURATION_MINUTES", 60)
	v.SetDefault("SCHEDULER_DAY_START", "08:00")
	v.SetDefault("SCHEDULER_DAY_END", "18:00")
	v.SetDefault("SCHEDULER_LUNCH_START", "12:00")
	v.SetDefault("SCHEDULER_LUNCH_END", "13:00")
	v.SetDefault("SCHEDULER_CAPACITY_MARGIN_ENABLED", false)
	v.SetDefault("SCHEDULER_CAPACITY_MARGIN_PERCENT", 0)
	v.SetDefault("SCHEDULER_DEFAULT_PRESET", "default")
	v.SetDefault("SCHEDULER_DEFAULT_MAX_ITERATIONS", 200)
	v.SetDefault("SCHEDULER_DEFAULT_TIMEOUT_MS", 30000)
	v.SetDefault("SCHEDULER_PROPOSAL_TTL", "30m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
