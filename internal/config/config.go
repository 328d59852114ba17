package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config aggregates application settings that may be sourced from files or environment variables.
type Config struct {
	API       APIConfig       `mapstructure:"api"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	MinIO     MinIOConfig     `mapstructure:"minio"`
	Intake    IntakeConfig    `mapstructure:"intake"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Reconcile ReconcileConfig `mapstructure:"reconcile"`
}

// APIConfig contains HTTP server settings.
type APIConfig struct {
	Port           int    `mapstructure:"port"`
	InternalSecret string `mapstructure:"internal_secret"`
}

// DatabaseConfig contains connection options for PostgreSQL.
type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
}

// RedisConfig 包含 Redis 连接配置。
type RedisConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// Addr returns host:port.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// MinIOConfig contains connection options for MinIO/S3-compatible storage.
// The two credentials double as the live/degraded mode switch.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	PublicEndpoint  string `mapstructure:"public_endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	Region          string `mapstructure:"region"`
	Bucket          string `mapstructure:"bucket"`
}

// IntakeConfig holds form and submission behaviour.
type IntakeConfig struct {
	MaxResumeBytes     int64         `mapstructure:"max_resume_bytes"`
	AllowedExtensions  []string      `mapstructure:"allowed_extensions"`
	StrictContentCheck bool          `mapstructure:"strict_content_check"`
	ClamdAddr          string        `mapstructure:"clamd_addr"`
	MockDelay          time.Duration `mapstructure:"mock_delay"`
	DraftTTL           time.Duration `mapstructure:"draft_ttl"`
}

// GeminiConfig configures the optional cover letter drafter.
type GeminiConfig struct {
	ProjectID string `mapstructure:"project_id"`
	Location  string `mapstructure:"location"`
	Model     string `mapstructure:"model"`
}

// Enabled reports whether cover letter drafting is configured.
func (g GeminiConfig) Enabled() bool {
	return strings.TrimSpace(g.ProjectID) != ""
}

// ReconcileConfig controls the orphaned upload sweep.
type ReconcileConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Cron          string        `mapstructure:"cron"`
	GracePeriod   time.Duration `mapstructure:"grace_period"`
	DeleteOrphans bool          `mapstructure:"delete_orphans"`
	MetricsPort   int           `mapstructure:"metrics_port"`
}

// DSN builds a lib/pq compatible connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host,
		d.Port,
		d.User,
		d.Password,
		d.Name,
		d.SSLMode,
	)
}

// Live reports whether backend credentials are present. Decided once at startup;
// credentials that are present but wrong still count as live.
func (c *Config) Live() bool {
	return strings.TrimSpace(c.MinIO.AccessKeyID) != "" &&
		strings.TrimSpace(c.MinIO.SecretAccessKey) != ""
}

// Load reads configuration solely from environment variables (with optional defaults).
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if err := bindEnv(v); err != nil {
		return nil, fmt.Errorf("bind env: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.Intake.AllowedExtensions = normalizeExtensions(cfg.Intake.AllowedExtensions)

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad wraps Load and panics on failure.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("api.port", 8080)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "intake")
	v.SetDefault("database.user", "intake")
	v.SetDefault("database.password", "intake")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("minio.endpoint", "localhost:9000")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("minio.bucket", "resumes")
	v.SetDefault("intake.max_resume_bytes", 5*1024*1024)
	v.SetDefault("intake.allowed_extensions", []string{".pdf", ".doc", ".docx"})
	v.SetDefault("intake.strict_content_check", true)
	v.SetDefault("intake.mock_delay", 1500*time.Millisecond)
	v.SetDefault("intake.draft_ttl", 2*time.Hour)
	v.SetDefault("gemini.location", "us-central1")
	v.SetDefault("gemini.model", "gemini-2.5-flash")
	v.SetDefault("reconcile.enabled", true)
	v.SetDefault("reconcile.cron", "@every 1h")
	v.SetDefault("reconcile.grace_period", 24*time.Hour)
	v.SetDefault("reconcile.delete_orphans", false)
	v.SetDefault("reconcile.metrics_port", 9091)
}

func bindEnv(v *viper.Viper) error {
	mappings := map[string]string{
		"api.port":                    "API_PORT",
		"api.internal_secret":         "INTERNAL_API_SECRET",
		"database.host":               "DATABASE_HOST",
		"database.port":               "DATABASE_PORT",
		"database.name":               "POSTGRES_DB",
		"database.user":               "POSTGRES_USER",
		"database.password":           "POSTGRES_PASSWORD",
		"database.sslmode":            "DATABASE_SSLMODE",
		"redis.host":                  "REDIS_HOST",
		"redis.port":                  "REDIS_PORT",
		"minio.endpoint":              "MINIO_ENDPOINT",
		"minio.public_endpoint":       "MINIO_PUBLIC_ENDPOINT",
		"minio.access_key_id":         "MINIO_ACCESS_KEY_ID",
		"minio.secret_access_key":     "MINIO_SECRET_ACCESS_KEY",
		"minio.use_ssl":               "MINIO_USE_SSL",
		"minio.region":                "MINIO_REGION",
		"minio.bucket":                "MINIO_BUCKET",
		"intake.max_resume_bytes":     "INTAKE_MAX_RESUME_BYTES",
		"intake.allowed_extensions":   "INTAKE_ALLOWED_EXTENSIONS",
		"intake.strict_content_check": "INTAKE_STRICT_CONTENT_CHECK",
		"intake.clamd_addr":           "CLAMD_ADDR",
		"intake.mock_delay":           "INTAKE_MOCK_DELAY",
		"intake.draft_ttl":            "INTAKE_DRAFT_TTL",
		"gemini.project_id":           "GEMINI_PROJECT_ID",
		"gemini.location":             "GEMINI_LOCATION",
		"gemini.model":                "GEMINI_MODEL",
		"reconcile.enabled":           "RECONCILE_ENABLED",
		"reconcile.cron":              "RECONCILE_CRON",
		"reconcile.grace_period":      "RECONCILE_GRACE_PERIOD",
		"reconcile.delete_orphans":    "RECONCILE_DELETE_ORPHANS",
		"reconcile.metrics_port":      "WORKER_METRICS_PORT",
	}

	for key, env := range mappings {
		if err := v.BindEnv(key, env); err != nil {
			return fmt.Errorf("bind %s to %s: %w", key, env, err)
		}
	}

	return nil
}

// normalizeExtensions accepts "pdf", ".PDF" or a single comma separated env value.
func normalizeExtensions(in []string) []string {
	out := make([]string, 0, len(in))
	for _, raw := range in {
		for _, part := range strings.Split(raw, ",") {
			ext := strings.ToLower(strings.TrimSpace(part))
			if ext == "" {
				continue
			}
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			out = append(out, ext)
		}
	}
	return out
}

func validate(cfg Config) error {
	if cfg.API.Port <= 0 {
		return errors.New("api port must be positive")
	}
	if cfg.Intake.MaxResumeBytes <= 0 {
		return errors.New("intake max resume bytes must be positive")
	}
	if len(cfg.Intake.AllowedExtensions) == 0 {
		return errors.New("intake allowed extensions must not be empty")
	}
	if cfg.Intake.MockDelay < 0 {
		return errors.New("intake mock delay must not be negative")
	}
	if cfg.Intake.DraftTTL <= 0 {
		return errors.New("intake draft ttl must be positive")
	}
	if !cfg.Live() {
		// degraded mode touches neither storage nor the database
		return nil
	}
	if cfg.Database.Host == "" {
		return errors.New("database host is required")
	}
	if cfg.Database.Port <= 0 {
		return errors.New("database port must be positive")
	}
	if cfg.Database.Name == "" {
		return errors.New("database name is required")
	}
	if cfg.Database.User == "" {
		return errors.New("database user is required")
	}
	if cfg.Database.Password == "" {
		return errors.New("database password is required")
	}
	if cfg.Database.SSLMode == "" {
		return errors.New("database sslmode is required")
	}
	if cfg.MinIO.Endpoint == "" {
		return errors.New("minio endpoint is required")
	}
	if cfg.MinIO.Bucket == "" {
		return errors.New("minio bucket is required")
	}
	if cfg.Reconcile.Enabled {
		if cfg.Redis.Host == "" {
			return errors.New("redis host is required")
		}
		if cfg.Redis.Port <= 0 {
			return errors.New("redis port must be positive")
		}
		if cfg.Reconcile.GracePeriod <= 0 {
			return errors.New("reconcile grace period must be positive")
		}
	}
	return nil
}
