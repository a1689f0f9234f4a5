package services

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyLLMProvider    = "llm.provider"
	keyLLMModel       = "llm.model"
	keyLLMBaseURL     = "llm.base_url"
	keyLLMAPIKey      = "llm.api_key"
	keyLLMTimeout     = "llm.timeout"
	keyLLMMaxTokens   = "llm.max_tokens"
	keyLLMTemperature = "llm.temperature"

	keyMaxDocsPerGroup  = "retrieval.max_docs_per_group"
	keyTopDocs          = "retrieval.top_docs"
	keyExcerptThreshold = "retrieval.excerpt_threshold"
	keyExcerptWindow    = "retrieval.excerpt_window"
	keyExcerptStep      = "retrieval.excerpt_step"
	keyRemoteBatchSize  = "retrieval.remote_batch_size"
	keyRemoteTimeout    = "retrieval.remote_timeout"
	keyMaxDepth         = "retrieval.max_depth"
	keyScopeCacheTTL    = "retrieval.scope_cache_ttl"
	keyWorkers          = "retrieval.workers"

	keyLocalDir        = "local.dir"
	keyLocalExclude    = "local.exclude"
	keyAgentPromptFile = "local.agent_prompt_file"
	keyDriveClientID   = "drive.client_id"
	keyDriveSecret     = "drive.client_secret"
	keyDriveRefresh    = "drive.refresh_token"
	keyDrivePageSize   = "drive.page_size"
	keyDriveRate       = "drive.requests_per_second"
	keyNormIntents     = "normalizer.intents"
	keyNormSynonyms    = "normalizer.synonyms"
	keyNormStopWords   = "normalizer.stop_words"
	keyNormLeadIns     = "normalizer.lead_ins"
	keyServerAddr      = "server.addr"
)

// Environment variables that override stored secrets and paths.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvOpenAIKey          = "OPENAI_API_KEY"
	EnvAnthropicKey       = "ANTHROPIC_API_KEY"
	EnvGeminiKey          = "GEMINI_API_KEY"
	EnvGoogleClientID     = "GOOGLE_CLIENT_ID"
	EnvGoogleClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvGoogleRefreshToken = "GOOGLE_REFRESH_TOKEN"
	EnvLocalDir           = "DOCASK_LOCAL_DIR"
)

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
		getenv:      os.Getenv,
	}
}

// SetEnvLookup replaces the environment lookup. Useful for testing.
func (s *SettingsService) SetEnvLookup(fn func(string) string) {
	s.getenv = fn
}

// Get retrieves current application settings.
// Environment variables take precedence over stored secrets.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		LLM: domain.LLMSettings{
			Provider:    s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			Model:       s.getString(keyLLMModel, defaults.LLM.Model),
			BaseURL:     s.configStore.GetString(keyLLMBaseURL), // No default - empty is valid for cloud providers
			APIKey:      s.configStore.GetString(keyLLMAPIKey),
			Timeout:     s.getDuration(keyLLMTimeout, defaults.LLM.Timeout),
			MaxTokens:   s.getInt(keyLLMMaxTokens, defaults.LLM.MaxTokens),
			Temperature: s.getFloat(keyLLMTemperature, defaults.LLM.Temperature),
		},
		Retrieval: domain.RetrievalSettings{
			MaxDocsPerGroup:  s.getInt(keyMaxDocsPerGroup, defaults.Retrieval.MaxDocsPerGroup),
			TopDocs:          s.getInt(keyTopDocs, defaults.Retrieval.TopDocs),
			ExcerptThreshold: s.getInt(keyExcerptThreshold, defaults.Retrieval.ExcerptThreshold),
			ExcerptWindow:    s.getInt(keyExcerptWindow, defaults.Retrieval.ExcerptWindow),
			ExcerptStep:      s.getInt(keyExcerptStep, defaults.Retrieval.ExcerptStep),
			RemoteBatchSize:  s.getInt(keyRemoteBatchSize, defaults.Retrieval.RemoteBatchSize),
			RemoteTimeout:    s.getDuration(keyRemoteTimeout, defaults.Retrieval.RemoteTimeout),
			MaxDepth:         s.getInt(keyMaxDepth, defaults.Retrieval.MaxDepth),
			ScopeCacheTTL:    s.getDuration(keyScopeCacheTTL, defaults.Retrieval.ScopeCacheTTL),
			Workers:          s.getInt(keyWorkers, defaults.Retrieval.Workers),
		},
		Local: domain.LocalSettings{
			Dir:             s.getString(keyLocalDir, defaults.Local.Dir),
			Exclude:         s.getStringSlice(keyLocalExclude, defaults.Local.Exclude),
			AgentPromptFile: s.getString(keyAgentPromptFile, defaults.Local.AgentPromptFile),
		},
		Drive: domain.DriveSettings{
			ClientID:          s.configStore.GetString(keyDriveClientID),
			ClientSecret:      s.configStore.GetString(keyDriveSecret),
			RefreshToken:      s.configStore.GetString(keyDriveRefresh),
			PageSize:          s.getInt(keyDrivePageSize, defaults.Drive.PageSize),
			RequestsPerSecond: s.getFloat(keyDriveRate, defaults.Drive.RequestsPerSecond),
		},
		Normalizer: s.getNormalizerRules(defaults.Normalizer),
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
	}

	s.applyEnv(settings)

	if settings.LLM.Model == "" {
		settings.LLM.Model = domain.DefaultLLMModels()[settings.LLM.Provider]
	}

	return settings, nil
}

func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	overlay := func(dst *string, env string) {
		if v := strings.TrimSpace(s.getenv(env)); v != "" {
			*dst = v
		}
	}

	switch settings.LLM.Provider {
	case domain.AIProviderOpenAI:
		overlay(&settings.LLM.APIKey, EnvOpenAIKey)
	case domain.AIProviderAnthropic:
		overlay(&settings.LLM.APIKey, EnvAnthropicKey)
	case domain.AIProviderGemini:
		overlay(&settings.LLM.APIKey, EnvGeminiKey)
	case "":
		// No provider configured: pick the first with a key in the environment.
		for _, c := range []struct {
			provider domain.AIProvider
			env      string
		}{
			{domain.AIProviderOpenAI, EnvOpenAIKey},
			{domain.AIProviderAnthropic, EnvAnthropicKey},
			{domain.AIProviderGemini, EnvGeminiKey},
		} {
			if key := strings.TrimSpace(s.getenv(c.env)); key != "" {
				settings.LLM.Provider = c.provider
				settings.LLM.APIKey = key
				break
			}
		}
	}

	overlay(&settings.Drive.ClientID, EnvGoogleClientID)
	overlay(&settings.Drive.ClientSecret, EnvGoogleClientSecret)
	overlay(&settings.Drive.RefreshToken, EnvGoogleRefreshToken)
	overlay(&settings.Local.Dir, EnvLocalDir)
}

// Save persists application settings.
// Secrets are written only when set, so environment-provided keys stay out of the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyLLMTimeout, settings.LLM.Timeout.String()},
		{keyLLMMaxTokens, settings.LLM.MaxTokens},
		{keyLLMTemperature, settings.LLM.Temperature},
		{keyLocalDir, settings.Local.Dir},
		{keyLocalExclude, settings.Local.Exclude},
		{keyAgentPromptFile, settings.Local.AgentPromptFile},
		{keyServerAddr, settings.Server.Addr},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.LLM.APIKey != "" {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider: %s", provider)
	}

	// Validate API key if required
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s", provider)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider

	// Set model - use provided or default
	if model != "" {
		settings.LLM.Model = model
	} else {
		settings.LLM.Model = domain.DefaultLLMModels()[provider]
	}

	// Set base URL based on provider type
	if provider.IsLocal() {
		if settings.LLM.BaseURL == "" {
			settings.LLM.BaseURL = "http://localhost:11434"
		}
	} else {
		settings.LLM.BaseURL = ""
	}

	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

// SetLocalDir configures the local document directory.
func (s *SettingsService) SetLocalDir(dir string) error {
	dir = strings.TrimSpace(dir)
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("local dir: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("%w: %s is not a directory", domain.ErrInvalidInput, dir)
		}
	}
	return s.configStore.Set(keyLocalDir, dir)
}

// SetDriveCredentials stores the Drive OAuth client and refresh token.
// Empty values leave the stored value unchanged.
func (s *SettingsService) SetDriveCredentials(clientID, clientSecret, refreshToken string) error {
	for _, v := range []struct{ key, value string }{
		{keyDriveClientID, clientID},
		{keyDriveSecret, clientSecret},
		{keyDriveRefresh, refreshToken},
	} {
		if v.value = strings.TrimSpace(v.value); v.value == "" {
			continue
		}
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}
	return nil
}

// Validate checks the current settings are internally consistent.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	if settings.LLM.Provider != "" && !settings.LLM.IsConfigured() {
		return fmt.Errorf("LLM provider %q is set but not configured (missing API key?)", settings.LLM.Provider)
	}

	r := settings.Retrieval
	if r.ExcerptStep > r.ExcerptWindow {
		return fmt.Errorf("%w: excerpt step %d exceeds window %d", domain.ErrInvalidInput, r.ExcerptStep, r.ExcerptWindow)
	}
	if r.ExcerptWindow >= r.ExcerptThreshold {
		return fmt.Errorf("%w: excerpt window %d must be below threshold %d", domain.ErrInvalidInput, r.ExcerptWindow, r.ExcerptThreshold)
	}
	if r.RemoteBatchSize < 1 {
		return fmt.Errorf("%w: remote batch size must be positive", domain.ErrInvalidInput)
	}

	return nil
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	val := s.configStore.GetDuration(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getStringSlice(key string, defaultVal []string) []string {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetStringSlice(key)
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}

// getNormalizerRules overlays configured rules on the defaults.
// Configured intents and synonyms add to or replace defaults by name.
func (s *SettingsService) getNormalizerRules(defaults domain.NormalizerRules) domain.NormalizerRules {
	rules := domain.NormalizerRules{
		Intents:   make(map[string][]string, len(defaults.Intents)),
		Synonyms:  make(map[string][]string, len(defaults.Synonyms)),
		StopWords: s.getStringSlice(keyNormStopWords, defaults.StopWords),
		LeadIns:   s.getStringSlice(keyNormLeadIns, defaults.LeadIns),
	}
	for name, triggers := range defaults.Intents {
		rules.Intents[name] = triggers
	}
	for canonical, phrases := range defaults.Synonyms {
		rules.Synonyms[canonical] = phrases
	}

	for _, name := range s.configStore.Keys(keyNormIntents) {
		rules.Intents[name] = s.configStore.GetStringSlice(keyNormIntents + "." + name)
	}
	for _, canonical := range s.configStore.Keys(keyNormSynonyms) {
		rules.Synonyms[canonical] = s.configStore.GetStringSlice(keyNormSynonyms + "." + canonical)
	}
	return rules
}
