package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultResumeMaxBytes = 8 << 20
	DefaultEmailAPIURL    = "https://api.resend.com/emails"
)

type Config struct {
	Port      string
	GinMode   string
	LogLevel  string
	LogFormat string

	DatabaseURL string
	TenantID    string

	Storage StorageConfig

	ResumeMaxBytes int64

	QuoteWebhookURL   string
	CareersWebhookURL string

	Email EmailConfig

	AdminUsername string
	AdminPassword string

	MongoURI             string
	MongoDB              string
	DeliveryLogRetention time.Duration
	RedisURL             string
	RateLimitPerMinute   int
	RateLimitBurst       int
	CORSAllowedOrigins   []string
	TrustedProxies       []string
	PublicBaseURL        string
}

type StorageConfig struct {
	Provider           string // s3|gcs
	Bucket             string
	Region             string
	Endpoint           string
	AccessKeyID        string
	SecretAccessKey    string
	GCSCredentialsFile string
}

// Configured reports whether enough is set to sign URLs.
func (s StorageConfig) Configured() bool {
	if s.Bucket == "" {
		return false
	}
	if s.Provider == "gcs" {
		return true
	}
	return s.AccessKeyID != "" && s.SecretAccessKey != ""
}

type EmailConfig struct {
	APIURL          string
	APIKey          string
	From            string
	To              string
	SubjectPrefix   string
	ReplyToFallback string
}

func (e EmailConfig) Configured() bool {
	return e.APIKey != "" && e.From != "" && e.To != ""
}

func (c Config) AdminConfigured() bool {
	return c.AdminUsername != "" && c.AdminPassword != ""
}

// Load reads the process environment. Missing optional backends are left
// empty; callers decide which ones are strictly required.
func Load() Config {
	cfg := Config{
		Port:      env("PORT", "8080"),
		GinMode:   env("GIN_MODE", ""),
		LogLevel:  env("LOG_LEVEL", "info"),
		LogFormat: env("LOG_FORMAT", "json"),

		DatabaseURL: firstEnv("DATABASE_URL", "POSTGRES_URI"),
		TenantID:    env("TENANT_ID", "default"),

		Storage: StorageConfig{
			Provider:           strings.ToLower(env("STORAGE_PROVIDER", "s3")),
			Bucket:             env("RESUME_BUCKET", ""),
			Region:             env("S3_REGION", ""),
			Endpoint:           env("S3_ENDPOINT", ""),
			AccessKeyID:        env("S3_ACCESS_KEY_ID", ""),
			SecretAccessKey:    env("S3_SECRET_ACCESS_KEY", ""),
			GCSCredentialsFile: env("GCS_CREDENTIALS_FILE", ""),
		},

		ResumeMaxBytes: envInt64("RESUME_MAX_BYTES", DefaultResumeMaxBytes),

		QuoteWebhookURL:   env("QUOTE_WEBHOOK_URL", ""),
		CareersWebhookURL: env("CAREERS_WEBHOOK_URL", ""),

		Email: EmailConfig{
			APIURL:          env("EMAIL_API_URL", DefaultEmailAPIURL),
			APIKey:          env("EMAIL_API_KEY", ""),
			From:            env("EMAIL_FROM", ""),
			To:              env("EMAIL_TO", ""),
			SubjectPrefix:   env("EMAIL_SUBJECT_PREFIX", "[Website]"),
			ReplyToFallback: env("EMAIL_REPLY_TO_FALLBACK", ""),
		},

		AdminUsername: env("ADMIN_USERNAME", ""),
		AdminPassword: env("ADMIN_PASSWORD", ""),

		MongoURI:             env("MONGO_URI", ""),
		MongoDB:              env("MONGO_DB", "leadintake"),
		DeliveryLogRetention: time.Duration(envInt64("DELIVERY_LOG_RETENTION_DAYS", 30)) * 24 * time.Hour,
		RedisURL:             firstEnv("REDIS_URL", "REDIS_ADDR"),
		RateLimitPerMinute:   int(envInt64("RATE_LIMIT_PER_MINUTE", 30)),
		RateLimitBurst:       int(envInt64("RATE_LIMIT_BURST", 10)),
		CORSAllowedOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		TrustedProxies:       splitList(os.Getenv("TRUSTED_PROXIES")),
		PublicBaseURL:        strings.TrimRight(env("PUBLIC_BASE_URL", ""), "/"),
	}
	if cfg.ResumeMaxBytes <= 0 {
		cfg.ResumeMaxBytes = DefaultResumeMaxBytes
	}
	return cfg
}

func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(os.Getenv(k)); v != "" {
			return v
		}
	}
	return ""
}

func envInt64(key string, def int64) int64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return def
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
