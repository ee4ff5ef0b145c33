package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/config"
)

func TestLLMConfig_PrimaryConfig_LegacyFallback(t *testing.T) {
	cfg := config.LLMConfig{
		Provider:     "openai",
		APIKey:       "sk-legacy",
		BaseURL:      "https://serving.example.test/v1",
		DefaultModel: "databricks-meta-llama-3-1-405b-instruct",
		TimeoutSecs:  30,
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "openai", primary.Provider)
	assert.Equal(t, "sk-legacy", primary.APIKey)
	assert.Equal(t, "https://serving.example.test/v1", primary.BaseURL)
	assert.Equal(t, "databricks-meta-llama-3-1-405b-instruct", primary.DefaultModel)
	assert.Equal(t, 30, primary.TimeoutSecs)
}

func TestLLMConfig_PrimaryConfig_ExplicitPrimary(t *testing.T) {
	cfg := config.LLMConfig{
		Provider: "legacy-should-be-ignored",
		Primary: config.ProviderConfig{
			Provider:     "ollama",
			DefaultModel: "llama3",
		},
	}

	primary := cfg.PrimaryConfig()

	assert.Equal(t, "ollama", primary.Provider)
	assert.Equal(t, "llama3", primary.DefaultModel)
}

func TestLLMConfig_FallbackTiers(t *testing.T) {
	cfg := config.LLMConfig{Provider: "openai"}
	assert.Nil(t, cfg.SecondaryConfig())
	assert.Nil(t, cfg.TertiaryConfig())

	cfg.Secondary = config.ProviderConfig{Provider: "claude"}
	cfg.Tertiary = config.ProviderConfig{Provider: "gemini"}
	require.NotNil(t, cfg.SecondaryConfig())
	require.NotNil(t, cfg.TertiaryConfig())
	assert.Equal(t, "claude", cfg.SecondaryConfig().Provider)
	assert.Equal(t, "gemini", cfg.TertiaryConfig().Provider)
}

func validExtractionConfig() config.ExtractionConfig {
	return config.ExtractionConfig{
		Models:           []string{"model-a", "model-b"},
		DefaultModel:     "model-a",
		DefaultBatchSize: 3,
		MaxBatchSize:     50,
		MaxReplyTokens:   4096,
	}
}

func TestExtractionConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *config.ExtractionConfig)
		wantErr string
	}{
		{"valid", func(c *config.ExtractionConfig) {}, ""},
		{"no models", func(c *config.ExtractionConfig) { c.Models = nil }, "at least one model"},
		{"default model not listed", func(c *config.ExtractionConfig) { c.DefaultModel = "model-z" }, "not in extraction.models"},
		{"max batch zero", func(c *config.ExtractionConfig) { c.MaxBatchSize = 0 }, "max_batch_size"},
		{"default batch zero", func(c *config.ExtractionConfig) { c.DefaultBatchSize = 0 }, "default_batch_size"},
		{"default batch above max", func(c *config.ExtractionConfig) { c.DefaultBatchSize = 51 }, "default_batch_size"},
		{"reply tokens zero", func(c *config.ExtractionConfig) { c.MaxReplyTokens = 0 }, "max_reply_tokens"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validExtractionConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExtractionConfig_SupportsModel(t *testing.T) {
	cfg := validExtractionConfig()
	assert.True(t, cfg.SupportsModel("model-b"))
	assert.False(t, cfg.SupportsModel("MODEL-B"))
	assert.False(t, cfg.SupportsModel(""))
}

func TestExtractionConfig_CorpusFields(t *testing.T) {
	cfg := config.ExtractionConfig{
		TypeField:        "tipo_doc_rec",
		DisplayTypeField: "tipo_doc",
		TextField:        "texto_total",
		IdentifierField:  "numero_tj",
	}

	fields := cfg.CorpusFields()

	assert.Equal(t, []string{"numero_tj", "tipo_doc_rec", "tipo_doc", "texto_total"}, fields.Required())
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Port)
	assert.Equal(t, 8*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "databricks-meta-llama-3-1-405b-instruct", cfg.Extraction.DefaultModel)
	assert.Len(t, cfg.Extraction.Models, 3)
	assert.Equal(t, 3, cfg.Extraction.DefaultBatchSize)
	assert.Equal(t, 50, cfg.Extraction.MaxBatchSize)
	assert.Equal(t, "tipo_doc_rec", cfg.Extraction.TypeField)
	assert.Equal(t, int64(200), cfg.Upload.MaxSizeMB)
	assert.False(t, cfg.S3.Enabled)
	assert.False(t, cfg.Audit.Enabled)
	assert.Equal(t, "docqa.extraction", cfg.Events.SubjectPrefix)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DOCQA_EXTRACTION_MODELS", "alpha, beta")
	t.Setenv("DOCQA_EXTRACTION_DEFAULT_MODEL", "beta")
	t.Setenv("DOCQA_EXTRACTION_DEFAULT_BATCH_SIZE", "7")
	t.Setenv("DOCQA_SESSION_TTL", "30m")
	t.Setenv("DOCQA_LLM_SECONDARY_PROVIDER", "claude")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"alpha", "beta"}, cfg.Extraction.Models)
	assert.Equal(t, "beta", cfg.Extraction.DefaultModel)
	assert.Equal(t, 7, cfg.Extraction.DefaultBatchSize)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	require.NotNil(t, cfg.LLM.SecondaryConfig())
	assert.Equal(t, "claude", cfg.LLM.SecondaryConfig().Provider)
}

func TestLoad_PlatformPort(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("DOCQA_SERVER_PORT", "")

	cfg, err := config.Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Port)
}

func TestLoad_InvalidExtraction(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("DOCQA_EXTRACTION_DEFAULT_MODEL", "not-listed")

	_, err := config.Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid extraction config")
}
