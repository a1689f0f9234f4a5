package domain

import "time"

const unknownDescription = "Unknown"

// AIProvider identifies a language model provider.
type AIProvider string

// Available AI providers.
const (
	// AIProviderOllama is local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderOpenAI is OpenAI cloud API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderAnthropic is Anthropic cloud API.
	AIProviderAnthropic AIProvider = "anthropic"

	// AIProviderGemini is Google Gemini cloud API.
	AIProviderGemini AIProvider = "gemini"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderOllama, AIProviderOpenAI, AIProviderAnthropic, AIProviderGemini:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderOpenAI || p == AIProviderAnthropic || p == AIProviderGemini
}

// IsLocal returns true if this provider runs locally.
func (p AIProvider) IsLocal() bool {
	return p == AIProviderOllama
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderAnthropic:
		return "Anthropic (cloud)"
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	default:
		return unknownDescription
	}
}

// LLMSettings holds LLM provider configuration.
type LLMSettings struct {
	// Provider is the LLM service provider.
	Provider AIProvider

	// Model is the LLM model name.
	Model string

	// BaseURL is the API endpoint (for Ollama or compatible gateways).
	BaseURL string

	// APIKey is the API key.
	APIKey string

	// Timeout bounds a single completion call.
	Timeout time.Duration

	// MaxTokens caps the reply length.
	MaxTokens int

	// Temperature controls sampling.
	Temperature float64
}

// IsConfigured returns true if the LLM provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// RetrievalSettings holds the retrieval and ranking tunables.
type RetrievalSettings struct {
	// MaxDocsPerGroup caps documents accepted per scope group and per connector.
	MaxDocsPerGroup int

	// TopDocs is the number of ranked documents handed to the synthesizer.
	TopDocs int

	// ExcerptThreshold is the full-text length above which excerpting applies.
	ExcerptThreshold int

	// ExcerptWindow is the excerpt window size in characters.
	ExcerptWindow int

	// ExcerptStep is the distance between candidate windows.
	ExcerptStep int

	// RemoteBatchSize caps location ids per remote search call.
	RemoteBatchSize int

	// RemoteTimeout bounds a single remote store call.
	RemoteTimeout time.Duration

	// MaxDepth bounds the folder tree walk.
	MaxDepth int

	// ScopeCacheTTL is how long a folder tree walk stays cached.
	ScopeCacheTTL time.Duration

	// Workers is the per-connector worker pool size.
	Workers int
}

// LocalSettings configures the local document directory.
type LocalSettings struct {
	// Dir is the directory searched by the local connector. Empty disables it.
	Dir string

	// Exclude are filenames never returned, matched case-insensitively.
	Exclude []string

	// AgentPromptFile is a file in Dir whose leading text is appended to
	// the LLM system instruction. It is always excluded from search.
	AgentPromptFile string
}

// DriveSettings configures the remote document store.
type DriveSettings struct {
	// ClientID and ClientSecret identify the OAuth client.
	ClientID     string
	ClientSecret string

	// RefreshToken is the long-lived token used to mint access tokens.
	RefreshToken string

	// PageSize is the maximum entries per search call.
	PageSize int

	// RequestsPerSecond caps the call rate to the remote API.
	RequestsPerSecond float64
}

// IsConfigured returns true if remote credentials are present.
func (d DriveSettings) IsConfigured() bool {
	return d.ClientID != "" && d.ClientSecret != "" && d.RefreshToken != ""
}

// NormalizerRules configures query normalisation.
type NormalizerRules struct {
	// Intents maps an intent name to its trigger phrases.
	Intents map[string][]string

	// Synonyms maps a canonical phrase to the phrases that mean the same.
	Synonyms map[string][]string

	// StopWords are dropped from intent remainders.
	StopWords []string

	// LeadIns are generic question prefixes stripped from queries.
	LeadIns []string
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address, e.g. ":8080".
	Addr string
}

// AppSettings holds all application settings.
type AppSettings struct {
	// LLM holds LLM provider settings.
	LLM LLMSettings

	// Retrieval holds retrieval tunables.
	Retrieval RetrievalSettings

	// Local holds local directory settings.
	Local LocalSettings

	// Drive holds remote store settings.
	Drive DriveSettings

	// Normalizer holds query normalisation rules.
	Normalizer NormalizerRules

	// Server holds HTTP settings.
	Server ServerSettings
}

// DefaultAgentPromptFile is the agent prompt filename looked up in the
// local directory.
const DefaultAgentPromptFile = "WMA_AI_Agent_System_Prompt.txt"

// DefaultAppSettings returns settings with sensible defaults.
// The LLM is left unconfigured; answers are extractive until it is set.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		LLM: LLMSettings{
			Timeout:     30 * time.Second,
			MaxTokens:   500,
			Temperature: 0.3,
		},
		Retrieval: DefaultRetrievalSettings(),
		Local: LocalSettings{
			Exclude:         []string{DefaultAgentPromptFile, "WMA_AI_Agent_System_Prompt.docx"},
			AgentPromptFile: DefaultAgentPromptFile,
		},
		Drive: DriveSettings{
			PageSize:          10,
			RequestsPerSecond: 10,
		},
		Normalizer: DefaultNormalizerRules(),
		Server:     ServerSettings{Addr: ":8080"},
	}
}

// DefaultRetrievalSettings returns the default retrieval tunables.
func DefaultRetrievalSettings() RetrievalSettings {
	return RetrievalSettings{
		MaxDocsPerGroup:  3,
		TopDocs:          5,
		ExcerptThreshold: 3000,
		ExcerptWindow:    2000,
		ExcerptStep:      500,
		RemoteBatchSize:  10,
		RemoteTimeout:    20 * time.Second,
		MaxDepth:         8,
		ScopeCacheTTL:    20 * time.Minute,
		Workers:          4,
	}
}

// DefaultNormalizerRules returns the built-in normalisation rules.
func DefaultNormalizerRules() NormalizerRules {
	return NormalizerRules{
		Intents: map[string][]string{
			"document": {"report", "document", "file", "presentation", "deck", "memo", "notes", "spreadsheet"},
			"summary":  {"summary of", "summarize", "summarise", "overview of"},
		},
		Synonyms: map[string][]string{},
		StopWords: []string{
			"a", "an", "the", "my", "our", "your", "his", "her", "their",
			"in", "on", "of", "for", "about", "from", "with", "to", "me", "please",
		},
		LeadIns: []string{
			"what is", "what are", "what's", "who is", "tell me about",
			"show me", "find", "search for", "look up", "can you find",
			"do we have", "give me", "where is",
		},
	}
}

// AllLLMProviders returns providers that support LLM operations.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderOllama,
		AIProviderOpenAI,
		AIProviderAnthropic,
		AIProviderGemini,
	}
}

// DefaultLLMModels returns default models for each LLM provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderOllama:    "llama3.2",
		AIProviderOpenAI:    "gpt-4o-mini",
		AIProviderAnthropic: "claude-3-5-sonnet-latest",
		AIProviderGemini:    "gemini-1.5-flash",
	}
}
