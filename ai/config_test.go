package ai

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigDefaults(t *testing.T) {
	cfg := NewConfig()
	assert.Equal(t, "https://api.openai.com/v1", cfg.Host)
	assert.Equal(t, "text-embedding-3-small", cfg.EmbeddingModel)
	assert.Equal(t, "gpt-4o-mini", cfg.AnalysisModel)
	assert.NoError(t, cfg.Validate())
}

func TestNewConfigOptions(t *testing.T) {
	cfg := NewConfig(
		WithHost("http://localhost:11434"),
		WithToken("secret"),
		WithEmbeddingModel("embeddinggemma"),
		WithAnalysisModel("qwen2.5:3b"),
		WithChatModel("qwen2.5:7b"),
		WithChatTemperature(0.2),
	)

	assert.Equal(t, "http://localhost:11434", cfg.Host)
	assert.Equal(t, "secret", cfg.Token)
	assert.Equal(t, "embeddinggemma", cfg.EmbeddingModel)
	assert.Equal(t, "qwen2.5:3b", cfg.AnalysisModel)
	assert.Equal(t, "qwen2.5:7b", cfg.ChatModel)
	assert.Equal(t, 0.2, cfg.ChatTemperature)
}

func TestNormalizeAddsV1Suffix(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"http://localhost:11434", "http://localhost:11434/v1"},
		{"http://localhost:11434/", "http://localhost:11434/v1"},
		{"http://localhost:11434/v1", "http://localhost:11434/v1"},
		{"", ""},
	}

	for _, tt := range tests {
		cfg := &Config{Host: tt.host}
		cfg.Normalize()
		assert.Equal(t, tt.want, cfg.Host)
	}
}

func TestNormalizeFallbacks(t *testing.T) {
	cfg := &Config{
		Host:          "http://localhost:11434",
		AnalysisModel: "qwen2.5:3b",
	}
	cfg.Normalize()

	assert.Equal(t, "qwen2.5:3b", cfg.ChatModel)
	assert.Equal(t, "none", cfg.Token)
}

func TestValidateMissingFields(t *testing.T) {
	cfg := NewConfig()
	cfg.Host = ""
	require.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.EmbeddingModel = ""
	require.Error(t, cfg.Validate())

	cfg = NewConfig()
	cfg.AnalysisModel = ""
	cfg.ChatModel = ""
	require.Error(t, cfg.Validate())

	cfg = NewConfig(WithChatTemperature(3))
	require.Error(t, cfg.Validate())
}
