package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, ProviderGemini, cfg.Provider)
	assert.NotEmpty(t, cfg.GetModel(TierLite))
	assert.NotEmpty(t, cfg.GetModel(TierStandard))
	assert.NotEmpty(t, cfg.GetModel(TierAdvanced))
	assert.Equal(t, DefaultEmbeddingModel, cfg.GetEmbeddingModel())
}

func TestConfig_GetModel_FallbackChain(t *testing.T) {
	cfg := &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite: "lite-model",
		},
	}

	// Missing tier falls back to standard, then lite
	assert.Equal(t, "lite-model", cfg.GetModel(TierAdvanced))

	empty := &Config{Provider: ProviderGemini, Models: map[ModelTier]string{}}
	assert.Equal(t, "", empty.GetModel(TierAdvanced))
}

func TestConfig_WithModel_DoesNotMutateOriginal(t *testing.T) {
	cfg := DefaultGeminiConfig()
	original := cfg.GetModel(TierAdvanced)

	modified := cfg.WithModel(TierAdvanced, "custom-model")

	assert.Equal(t, "custom-model", modified.GetModel(TierAdvanced))
	assert.Equal(t, original, cfg.GetModel(TierAdvanced))
}

func TestGeminiClient_WithSettings(t *testing.T) {
	base := &GeminiClient{config: DefaultGeminiConfig()}

	derived, ok := base.WithSettings("gemini-exp", 0.9).(*GeminiClient)
	assert.True(t, ok)
	assert.Equal(t, "gemini-exp", derived.GetModel(TierAdvanced))
	assert.InDelta(t, 0.9, float64(derived.config.GetTemperature()), 1e-6)

	// The base client keeps its own configuration.
	assert.NotEqual(t, "gemini-exp", base.GetModel(TierAdvanced))
	assert.Equal(t, DefaultTemperature, base.config.GetTemperature())

	// No overrides returns the client itself.
	assert.Same(t, base, base.WithSettings("", 0).(*GeminiClient))
}

func TestConfig_Temperature(t *testing.T) {
	cfg := DefaultGeminiConfig()
	assert.Equal(t, DefaultTemperature, cfg.GetTemperature())

	warm := cfg.WithTemperature(0.7)
	assert.InDelta(t, 0.7, float64(warm.GetTemperature()), 1e-6)
	// Original unchanged
	assert.Equal(t, DefaultTemperature, cfg.GetTemperature())
}
