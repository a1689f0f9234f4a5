package driving

import "github.com/custodia-labs/docask/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves current application settings.
	Get() (*domain.AppSettings, error)

	// Save persists application settings.
	Save(settings *domain.AppSettings) error

	// SetLLMProvider configures the LLM provider.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLocalDir configures the local document directory.
	SetLocalDir(dir string) error

	// SetDriveCredentials stores the Drive OAuth client and refresh token.
	SetDriveCredentials(clientID, clientSecret, refreshToken string) error

	// Validate checks the current settings are internally consistent.
	Validate() error

	// GetDefaults returns default settings.
	GetDefaults() domain.AppSettings

	// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
	ValidateLLMConfig() error
}
