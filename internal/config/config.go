package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Application
	AppName string
	AppEnv  string
	AppURL  string
	Port    string

	// Database (optional driver switch via ENV, default: sqlite)
	DBDriver     string
	DBConnection string

	// Security
	AuthJWTSecret string // HS256 secret of the hosted auth provider
	WebhookSecret string // Standard Webhooks secret for cron-triggered jobs

	// Business calendar
	BusinessTimezone string
	DayCutoffHour    int

	// Jobs
	RecentQuestionWindow int
	ReminderBatchSize    int
	ActivityWindowDays   int
	FeedPageSize         int
	DefaultLocale        string

	// Scheduler (in-process alternative to external cron)
	SchedulerEnabled bool
	AssignCron       string
	ReminderInterval time.Duration
	AnniversaryCron  string

	// Push (VAPID)
	PushProvider    string
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	VAPIDSubject    string
	PushTTL         time.Duration

	// Email
	EmailFrom    string
	ResendAPIKey string

	// Realtime
	RealtimeChannel string

	// Observability (optional)
	SentryDSN string

	// Storage (S3-compatible, optional: memory photos)
	S3Region        string
	S3Bucket        string
	S3AccessKey     string
	S3SecretKey     string
	S3Endpoint      string        // Optional: for S3-compatible services (MinIO, R2, etc.)
	S3PresignExpiry time.Duration // Expiry for memory photo links - default: 1 hour
}

// ErrMissingConfig is wrapped by Parse when required variables are absent.
var ErrMissingConfig = errors.New("missing required configuration")

// Load reads configuration for long-running processes and exits when it is incomplete.
func Load() *Config {
	cfg, err := Parse()
	if err != nil {
		slog.Error("config invalid", "error", err)
		os.Exit(1)
	}
	return cfg
}

// Parse reads configuration from .env and the environment. It never exits; jobs
// use it so that an incomplete environment produces an error response instead
// of a partial run.
func Parse() (*Config, error) {
	// Load .env file if it exists
	err := godotenv.Load()
	if err != nil {
		slog.Debug("no .env file found, using environment variables")
	}

	r := &reader{}
	cfg := &Config{
		// Application
		AppName: r.envString("APP_NAME", "The Two of Us"),
		AppEnv:  r.envRequired("APP_ENV"), // Required: 'development' or 'production'
		AppURL:  r.envRequired("APP_URL"), // Required: base URL for deep links in notifications
		Port:    r.envString("PORT", "8090"),

		// Database
		DBDriver:     r.envString("DB_DRIVER", "sqlite"),
		DBConnection: r.envString("DB_CONNECTION", "./data/twoofus.db?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_time_format=sqlite"),

		// Security
		AuthJWTSecret: r.envRequired("AUTH_JWT_SECRET"),
		WebhookSecret: r.envRequired("WEBHOOK_SECRET"),

		// Business calendar: a new day starts at 06:00 in one fixed timezone
		BusinessTimezone: r.envString("BUSINESS_TIMEZONE", "America/New_York"),
		DayCutoffHour:    r.envInt("DAY_CUTOFF_HOUR", 6),

		// Jobs
		RecentQuestionWindow: r.envInt("RECENT_QUESTION_WINDOW", 60),
		ReminderBatchSize:    r.envInt("REMINDER_BATCH_SIZE", 50),
		ActivityWindowDays:   r.envInt("ACTIVITY_WINDOW_DAYS", 90),
		FeedPageSize:         r.envInt("FEED_PAGE_SIZE", 7),
		DefaultLocale:        r.envString("DEFAULT_LOCALE", "en"),

		// Scheduler
		SchedulerEnabled: r.envBool("SCHEDULER_ENABLED", false),
		AssignCron:       r.envString("ASSIGN_CRON", "0 6 * * *"),
		ReminderInterval: r.envDuration("REMINDER_INTERVAL", time.Minute),
		AnniversaryCron:  r.envString("ANNIVERSARY_CRON", "0 9 * * *"),

		// Push
		PushProvider:    r.envString("PUSH_PROVIDER", "webpush"), // 'webpush' or 'log'
		VAPIDPublicKey:  r.envRequired("VAPID_PUBLIC_KEY"),
		VAPIDPrivateKey: r.envRequired("VAPID_PRIVATE_KEY"),
		VAPIDSubject:    r.envString("VAPID_SUBJECT", "mailto:hello@example.com"),
		PushTTL:         r.envDuration("PUSH_TTL", 24*time.Hour),

		// Email (RESEND_API_KEY optional in development)
		EmailFrom:    r.envString("EMAIL_FROM", "noreply@example.com"),
		ResendAPIKey: r.envString("RESEND_API_KEY", ""),

		// Realtime
		RealtimeChannel: r.envString("REALTIME_CHANNEL", "twoofus_realtime"),

		// Observability
		SentryDSN: r.envString("SENTRY_DSN", ""),

		// Storage
		S3Region:        r.envString("S3_REGION", ""),
		S3Bucket:        r.envString("S3_BUCKET", ""),
		S3AccessKey:     r.envString("S3_ACCESS_KEY", ""),
		S3SecretKey:     r.envString("S3_SECRET_KEY", ""),
		S3Endpoint:      r.envString("S3_ENDPOINT", ""),
		S3PresignExpiry: r.envDuration("S3_PRESIGN_EXPIRY", 1*time.Hour),
	}

	if len(r.missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(r.missing, ", "))
	}

	if _, err := time.LoadLocation(cfg.BusinessTimezone); err != nil {
		return nil, fmt.Errorf("invalid BUSINESS_TIMEZONE %q: %w", cfg.BusinessTimezone, err)
	}
	if cfg.DayCutoffHour < 0 || cfg.DayCutoffHour > 23 {
		return nil, fmt.Errorf("invalid DAY_CUTOFF_HOUR %d: must be between 0 and 23", cfg.DayCutoffHour)
	}

	// Production: validate required services
	if cfg.IsProduction() {
		err = validateProduction(cfg)
		if err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// validateProduction ensures all required services are configured for production deployments.
// Development allows some services (like email) to use fallback modes for easier local testing.
func validateProduction(cfg *Config) error {
	if cfg.ResendAPIKey == "" {
		return fmt.Errorf("%w: production deployment requires RESEND_API_KEY", ErrMissingConfig)
	}
	if cfg.DBDriver == "sqlite" {
		slog.Warn("production deployment is using sqlite", "hint", "set DB_DRIVER=pgx for Postgres")
	}
	return nil
}

// reader collects every missing required key instead of failing on the first one.
type reader struct {
	missing []string
}

func (r *reader) envString(key, def string) string {
	value := os.Getenv(key)
	if value == "" {
		value = def
	}
	return value
}

func (r *reader) envInt(key string, def int) int {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("config invalid int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return i
}

func (r *reader) envBool(key string, def bool) bool {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		slog.Warn("config invalid bool, using default", "key", key, "value", v, "default", def)
		return def
	}
	return b
}

func (r *reader) envDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("config invalid duration, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}

func (r *reader) envRequired(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	r.missing = append(r.missing, key)
	return ""
}

func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func (c *Config) IsPostgres() bool {
	return c.DBDriver == "pgx" || c.DBDriver == "postgres"
}

func (c *Config) HasObjectStore() bool {
	return c.S3Bucket != "" && c.S3Region != ""
}

// Location returns the business timezone. Parse has already validated it.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.BusinessTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Public returns the values a client needs to subscribe to push, and nothing secret.
func (c *Config) Public() map[string]string {
	return map[string]string{
		"app_name":         c.AppName,
		"app_url":          c.AppURL,
		"vapid_public_key": c.VAPIDPublicKey,
		"timezone":         c.BusinessTimezone,
	}
}
