package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// TestAIProvider_IsValid tests provider recognition
func TestAIProvider_IsValid(t *testing.T) {
	for _, p := range AllLLMProviders() {
		assert.True(t, p.IsValid(), p.String())
		assert.NotEqual(t, unknownDescription, p.Description())
	}
	assert.False(t, AIProvider("cohere").IsValid())
	assert.Equal(t, unknownDescription, AIProvider("cohere").Description())
}

// TestAIProvider_RequiresAPIKey tests key requirements per provider
func TestAIProvider_RequiresAPIKey(t *testing.T) {
	assert.False(t, AIProviderOllama.RequiresAPIKey())
	assert.True(t, AIProviderOllama.IsLocal())
	assert.True(t, AIProviderOpenAI.RequiresAPIKey())
	assert.True(t, AIProviderAnthropic.RequiresAPIKey())
	assert.True(t, AIProviderGemini.RequiresAPIKey())
}

// TestLLMSettings_IsConfigured tests configuration detection
func TestLLMSettings_IsConfigured(t *testing.T) {
	tests := []struct {
		name     string
		settings LLMSettings
		expected bool
	}{
		{"empty", LLMSettings{}, false},
		{"ollama without key", LLMSettings{Provider: AIProviderOllama}, true},
		{"openai without key", LLMSettings{Provider: AIProviderOpenAI}, false},
		{"openai with key", LLMSettings{Provider: AIProviderOpenAI, APIKey: "sk"}, true},
		{"unknown provider", LLMSettings{Provider: "x", APIKey: "k"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.settings.IsConfigured())
		})
	}
}

// TestDefaultAppSettings tests the documented defaults
func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.False(t, s.LLM.IsConfigured())
	assert.Equal(t, 30*time.Second, s.LLM.Timeout)
	assert.Equal(t, 500, s.LLM.MaxTokens)
	assert.InDelta(t, 0.3, s.LLM.Temperature, 1e-9)

	r := s.Retrieval
	assert.Equal(t, 3, r.MaxDocsPerGroup)
	assert.Equal(t, 5, r.TopDocs)
	assert.Equal(t, 3000, r.ExcerptThreshold)
	assert.Equal(t, 2000, r.ExcerptWindow)
	assert.Equal(t, 500, r.ExcerptStep)
	assert.Equal(t, 10, r.RemoteBatchSize)
	assert.Equal(t, 20*time.Second, r.RemoteTimeout)
	assert.Equal(t, 8, r.MaxDepth)
	assert.Equal(t, 20*time.Minute, r.ScopeCacheTTL)

	assert.Contains(t, s.Local.Exclude, DefaultAgentPromptFile)
	assert.False(t, s.Drive.IsConfigured())
	assert.Contains(t, s.Normalizer.Intents["document"], "report")
}

// TestDriveSettings_IsConfigured tests credential detection
func TestDriveSettings_IsConfigured(t *testing.T) {
	assert.True(t, DriveSettings{ClientID: "id", ClientSecret: "s", RefreshToken: "r"}.IsConfigured())
	assert.False(t, DriveSettings{ClientID: "id", ClientSecret: "s"}.IsConfigured())
}
