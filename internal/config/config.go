package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"docqa/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Log        LogConfig
	CORS       CORSConfig
	Session    SessionConfig
	LLM        LLMConfig
	Extraction ExtractionConfig
	Upload     UploadConfig
	S3         S3Config
	Audit      AuditConfig
	Events     EventsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SessionConfig holds settings for the per-user application state.
type SessionConfig struct {
	Secret       string        `mapstructure:"secret"`
	TTL          time.Duration `mapstructure:"ttl"`
	Issuer       string        `mapstructure:"issuer"`
	ReapInterval time.Duration `mapstructure:"reap_interval"`
}

// ProviderConfig holds settings for a single model-invocation provider.
type ProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// LLMConfig holds model provider settings with optional fallbacks.
type LLMConfig struct {
	// Legacy flat fields
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	BaseURL      string `mapstructure:"base_url"`
	DefaultModel string `mapstructure:"default_model"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`

	Primary   ProviderConfig `mapstructure:"primary"`
	Secondary ProviderConfig `mapstructure:"secondary"`
	Tertiary  ProviderConfig `mapstructure:"tertiary"`
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (l *LLMConfig) PrimaryConfig() *ProviderConfig {
	if l.Primary.Provider != "" {
		return &l.Primary
	}
	return &ProviderConfig{
		Provider:     l.Provider,
		APIKey:       l.APIKey,
		BaseURL:      l.BaseURL,
		DefaultModel: l.DefaultModel,
		TimeoutSecs:  l.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (l *LLMConfig) SecondaryConfig() *ProviderConfig {
	if l.Secondary.Provider != "" {
		return &l.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (l *LLMConfig) TertiaryConfig() *ProviderConfig {
	if l.Tertiary.Provider != "" {
		return &l.Tertiary
	}
	return nil
}

// ExtractionConfig holds batch extraction settings.
type ExtractionConfig struct {
	Models           []string `mapstructure:"models"`
	DefaultModel     string   `mapstructure:"default_model"`
	DefaultBatchSize int      `mapstructure:"default_batch_size"`
	MaxBatchSize     int      `mapstructure:"max_batch_size"`
	MaxReplyTokens   int      `mapstructure:"max_reply_tokens"`

	TypeField        string `mapstructure:"type_field"`
	DisplayTypeField string `mapstructure:"display_type_field"`
	TextField        string `mapstructure:"text_field"`
	IdentifierField  string `mapstructure:"identifier_field"`
}

// SupportsModel reports whether model is in the configured list.
func (e *ExtractionConfig) SupportsModel(model string) bool {
	for _, m := range e.Models {
		if m == model {
			return true
		}
	}
	return false
}

// Validate checks the extraction defaults against their bounds.
func (e *ExtractionConfig) Validate() error {
	if len(e.Models) == 0 {
		return fmt.Errorf("extraction.models must list at least one model")
	}
	if !e.SupportsModel(e.DefaultModel) {
		return fmt.Errorf("extraction.default_model %q is not in extraction.models", e.DefaultModel)
	}
	if e.MaxBatchSize < 1 {
		return fmt.Errorf("extraction.max_batch_size must be positive, got %d", e.MaxBatchSize)
	}
	if e.DefaultBatchSize < 1 || e.DefaultBatchSize > e.MaxBatchSize {
		return fmt.Errorf("extraction.default_batch_size must be in [1, %d], got %d", e.MaxBatchSize, e.DefaultBatchSize)
	}
	if e.MaxReplyTokens < 1 {
		return fmt.Errorf("extraction.max_reply_tokens must be positive, got %d", e.MaxReplyTokens)
	}
	return nil
}

// UploadConfig holds corpus upload limits.
type UploadConfig struct {
	MaxSizeMB int64 `mapstructure:"max_size_mb"`
}

// S3Config holds settings for the bucket exports are published to.
type S3Config struct {
	Enabled       bool   `mapstructure:"enabled"`
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// AuditConfig holds PostgreSQL settings for the extraction event audit trail.
type AuditConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (a *AuditConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		a.User, a.Password, a.Host, a.Port, a.Name, a.SSLMode,
	)
}

// EventsConfig holds settings for publishing extraction events to NATS.
type EventsConfig struct {
	NATSURL       string `mapstructure:"nats_url"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// Load reads configuration from environment variables with the DOCQA_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("DOCQA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30m")
	v.SetDefault("server.environment", "development")

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:8501")

	// Session defaults
	v.SetDefault("session.secret", "change-me-in-production")
	v.SetDefault("session.ttl", "8h")
	v.SetDefault("session.issuer", "docqa")
	v.SetDefault("session.reap_interval", "5m")

	// LLM defaults (legacy flat)
	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.default_model", "databricks-meta-llama-3-1-405b-instruct")
	v.SetDefault("llm.timeout_secs", 120)

	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("llm."+tier+".provider", "")
		v.SetDefault("llm."+tier+".api_key", "")
		v.SetDefault("llm."+tier+".base_url", "")
		v.SetDefault("llm."+tier+".default_model", "")
		v.SetDefault("llm."+tier+".timeout_secs", 120)
	}

	// Extraction defaults
	v.SetDefault("extraction.models", "databricks-meta-llama-3-3-70b-instruct,databricks-meta-llama-3-1-405b-instruct,databricks-mixtral-8x7b-instruct")
	v.SetDefault("extraction.default_model", "databricks-meta-llama-3-1-405b-instruct")
	v.SetDefault("extraction.default_batch_size", 3)
	v.SetDefault("extraction.max_batch_size", 50)
	v.SetDefault("extraction.max_reply_tokens", 4096)
	v.SetDefault("extraction.type_field", "tipo_doc_rec")
	v.SetDefault("extraction.display_type_field", "tipo_doc")
	v.SetDefault("extraction.text_field", "texto_total")
	v.SetDefault("extraction.identifier_field", "numero_tj")

	// Upload defaults
	v.SetDefault("upload.max_size_mb", 200)

	// S3 defaults
	v.SetDefault("s3.enabled", false)
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "docqa-exports")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Audit defaults
	v.SetDefault("audit.enabled", false)
	v.SetDefault("audit.host", "localhost")
	v.SetDefault("audit.port", 5432)
	v.SetDefault("audit.user", "docqa")
	v.SetDefault("audit.password", "docqa_secret")
	v.SetDefault("audit.name", "docqa_audit")
	v.SetDefault("audit.sslmode", "disable")
	v.SetDefault("audit.max_open", 5)
	v.SetDefault("audit.max_idle", 2)

	// Events defaults
	v.SetDefault("events.nats_url", "")
	v.SetDefault("events.subject_prefix", "docqa.extraction")

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":                   "DOCQA_SERVER_PORT",
		"server.read_timeout":           "DOCQA_SERVER_READ_TIMEOUT",
		"server.write_timeout":          "DOCQA_SERVER_WRITE_TIMEOUT",
		"server.environment":            "DOCQA_SERVER_ENVIRONMENT",
		"log.level":                     "DOCQA_LOG_LEVEL",
		"log.format":                    "DOCQA_LOG_FORMAT",
		"cors.allowed_origins":          "DOCQA_CORS_ALLOWED_ORIGINS",
		"session.secret":                "DOCQA_SESSION_SECRET",
		"session.ttl":                   "DOCQA_SESSION_TTL",
		"session.issuer":                "DOCQA_SESSION_ISSUER",
		"session.reap_interval":         "DOCQA_SESSION_REAP_INTERVAL",
		"llm.provider":                  "DOCQA_LLM_PROVIDER",
		"llm.api_key":                   "DOCQA_LLM_API_KEY",
		"llm.base_url":                  "DOCQA_LLM_BASE_URL",
		"llm.default_model":             "DOCQA_LLM_DEFAULT_MODEL",
		"llm.timeout_secs":              "DOCQA_LLM_TIMEOUT_SECS",
		"extraction.models":             "DOCQA_EXTRACTION_MODELS",
		"extraction.default_model":      "DOCQA_EXTRACTION_DEFAULT_MODEL",
		"extraction.default_batch_size": "DOCQA_EXTRACTION_DEFAULT_BATCH_SIZE",
		"extraction.max_batch_size":     "DOCQA_EXTRACTION_MAX_BATCH_SIZE",
		"extraction.max_reply_tokens":   "DOCQA_EXTRACTION_MAX_REPLY_TOKENS",
		"extraction.type_field":         "DOCQA_EXTRACTION_TYPE_FIELD",
		"extraction.display_type_field": "DOCQA_EXTRACTION_DISPLAY_TYPE_FIELD",
		"extraction.text_field":         "DOCQA_EXTRACTION_TEXT_FIELD",
		"extraction.identifier_field":   "DOCQA_EXTRACTION_IDENTIFIER_FIELD",
		"upload.max_size_mb":            "DOCQA_UPLOAD_MAX_SIZE_MB",
		"s3.enabled":                    "DOCQA_S3_ENABLED",
		"s3.region":                     "DOCQA_S3_REGION",
		"s3.bucket":                     "DOCQA_S3_BUCKET",
		"s3.endpoint":                   "DOCQA_S3_ENDPOINT",
		"s3.access_key":                 "DOCQA_S3_ACCESS_KEY",
		"s3.secret_key":                 "DOCQA_S3_SECRET_KEY",
		"s3.presign_expiry":             "DOCQA_S3_PRESIGN_EXPIRY",
		"audit.enabled":                 "DOCQA_AUDIT_ENABLED",
		"audit.host":                    "DOCQA_AUDIT_HOST",
		"audit.port":                    "DOCQA_AUDIT_PORT",
		"audit.user":                    "DOCQA_AUDIT_USER",
		"audit.password":                "DOCQA_AUDIT_PASSWORD",
		"audit.name":                    "DOCQA_AUDIT_NAME",
		"audit.sslmode":                 "DOCQA_AUDIT_SSLMODE",
		"audit.max_open":                "DOCQA_AUDIT_MAX_OPEN",
		"audit.max_idle":                "DOCQA_AUDIT_MAX_IDLE",
		"events.nats_url":               "DOCQA_EVENTS_NATS_URL",
		"events.subject_prefix":         "DOCQA_EVENTS_SUBJECT_PREFIX",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		upper := strings.ToUpper(tier)
		for _, field := range []string{"provider", "api_key", "base_url", "default_model", "timeout_secs"} {
			envBindings["llm."+tier+"."+field] = "DOCQA_LLM_" + upper + "_" + strings.ToUpper(field)
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if DOCQA_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("DOCQA_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: splitList(v.GetString("cors.allowed_origins")),
	}
	cfg.Session = SessionConfig{
		Secret:       v.GetString("session.secret"),
		TTL:          v.GetDuration("session.ttl"),
		Issuer:       v.GetString("session.issuer"),
		ReapInterval: v.GetDuration("session.reap_interval"),
	}

	cfg.LLM = LLMConfig{
		Provider:     v.GetString("llm.provider"),
		APIKey:       v.GetString("llm.api_key"),
		BaseURL:      v.GetString("llm.base_url"),
		DefaultModel: v.GetString("llm.default_model"),
		TimeoutSecs:  v.GetInt("llm.timeout_secs"),
		Primary:      providerConfig(v, "primary"),
		Secondary:    providerConfig(v, "secondary"),
		Tertiary:     providerConfig(v, "tertiary"),
	}

	cfg.Extraction = ExtractionConfig{
		Models:           splitList(v.GetString("extraction.models")),
		DefaultModel:     v.GetString("extraction.default_model"),
		DefaultBatchSize: v.GetInt("extraction.default_batch_size"),
		MaxBatchSize:     v.GetInt("extraction.max_batch_size"),
		MaxReplyTokens:   v.GetInt("extraction.max_reply_tokens"),
		TypeField:        v.GetString("extraction.type_field"),
		DisplayTypeField: v.GetString("extraction.display_type_field"),
		TextField:        v.GetString("extraction.text_field"),
		IdentifierField:  v.GetString("extraction.identifier_field"),
	}
	if err := cfg.Extraction.Validate(); err != nil {
		return nil, fmt.Errorf("invalid extraction config: %w", err)
	}

	cfg.Upload = UploadConfig{
		MaxSizeMB: v.GetInt64("upload.max_size_mb"),
	}
	cfg.S3 = S3Config{
		Enabled:       v.GetBool("s3.enabled"),
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Audit = AuditConfig{
		Enabled:  v.GetBool("audit.enabled"),
		Host:     v.GetString("audit.host"),
		Port:     v.GetInt("audit.port"),
		User:     v.GetString("audit.user"),
		Password: v.GetString("audit.password"),
		Name:     v.GetString("audit.name"),
		SSLMode:  v.GetString("audit.sslmode"),
		MaxOpen:  v.GetInt("audit.max_open"),
		MaxIdle:  v.GetInt("audit.max_idle"),
	}
	cfg.Events = EventsConfig{
		NATSURL:       v.GetString("events.nats_url"),
		SubjectPrefix: v.GetString("events.subject_prefix"),
	}

	return cfg, nil
}

func providerConfig(v *viper.Viper, tier string) ProviderConfig {
	prefix := "llm." + tier + "."
	return ProviderConfig{
		Provider:     v.GetString(prefix + "provider"),
		APIKey:       v.GetString(prefix + "api_key"),
		BaseURL:      v.GetString(prefix + "base_url"),
		DefaultModel: v.GetString(prefix + "default_model"),
		TimeoutSecs:  v.GetInt(prefix + "timeout_secs"),
	}
}

// splitList parses a comma-separated string, dropping blanks.
func splitList(raw string) []string {
	var out []string
	for _, s := range strings.Split(raw, ",") {
		s = strings.TrimSpace(s)
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// CorpusFields returns the configured column names.
func (e *ExtractionConfig) CorpusFields() domain.CorpusFields {
	return domain.CorpusFields{
		Type:        e.TypeField,
		DisplayType: e.DisplayTypeField,
		Text:        e.TextField,
		Identifier:  e.IdentifierField,
	}
}
