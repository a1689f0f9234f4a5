// Package app assembles docask from its settings: stores, connectors,
// the language model and the answer pipeline.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"google.golang.org/api/option"

	"github.com/custodia-labs/docask/internal/adapters/driven/ai"
	"github.com/custodia-labs/docask/internal/adapters/driven/config/file"
	"github.com/custodia-labs/docask/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/docask/internal/connectors"
	"github.com/custodia-labs/docask/internal/connectors/google/drive"
	"github.com/custodia-labs/docask/internal/connectors/local"
	"github.com/custodia-labs/docask/internal/connectors/remote"
	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/services"
	"github.com/custodia-labs/docask/internal/logger"
	"github.com/custodia-labs/docask/internal/normalisers"
)

// agentPromptLimit is how much of the agent prompt file reaches the
// system instruction.
const agentPromptLimit = 500

// keyLogLevel sets the log level when --verbose is not given.
const keyLogLevel = "log.level"

// Options locate docask's files.
type Options struct {
	// ConfigDir holds config.toml, registry.toml and prompts/.
	// Empty means ~/.docask.
	ConfigDir string

	// DataDir holds the SQLite database. Empty means <ConfigDir>/data.
	DataDir string

	// Getenv overrides os.Getenv for settings lookups.
	Getenv func(string) string

	// DriveOptions are passed to the Drive client.
	DriveOptions []option.ClientOption
}

// App is a wired docask instance. Close releases everything it opened.
type App struct {
	Config    *file.ConfigStore
	Settings  *services.SettingsService
	Registry  *file.RegistryStore
	Database  *sqlite.Store
	Knowledge driven.KnowledgeStore
	Profiles  driven.ProfileStore
	Answers   *services.AnswerService

	// LLMWarnings explain why answers are extractive, if they are.
	LLMWarnings []string

	scopes *services.ScopeResolver
	llm    *ai.InitResult
	pool   *connectors.Pool
}

// New builds an App. Optional parts that fail to come up (Drive, the
// language model) are logged and left out; only broken local state such
// as an unreadable config or registry is an error.
func New(ctx context.Context, opts Options) (_ *App, err error) {
	configDir := opts.ConfigDir
	if configDir == "" {
		if configDir, err = file.DefaultDir(); err != nil {
			return nil, err
		}
	}
	dataDir := opts.DataDir
	if dataDir == "" {
		dataDir = filepath.Join(configDir, "data")
	}

	a := &App{}
	defer func() {
		if err != nil {
			a.Close()
		}
	}()

	if a.Config, err = file.NewConfigStore(configDir); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	applyLogLevel(a.Config.GetString(keyLogLevel))

	a.Settings = services.NewSettingsService(a.Config, ai.NewConfigValidator())
	if opts.Getenv != nil {
		a.Settings.SetEnvLookup(opts.Getenv)
	}
	settings, err := a.Settings.Get()
	if err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if err := a.Settings.Validate(); err != nil {
		logger.Warn("Settings: %v", err)
	}

	if a.Registry, err = file.NewRegistryStore(filepath.Join(configDir, file.RegistryFileName)); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}

	if a.Database, err = sqlite.NewStore(dataDir); err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	a.Knowledge = a.Database.KnowledgeStore()
	a.Profiles = a.Database.ProfileStore()

	table, err := a.Knowledge.Table(ctx)
	if err != nil {
		return nil, fmt.Errorf("knowledge: %w", err)
	}
	logger.Debug("Knowledge table: %d entries", table.Len())

	if a.pool, err = connectors.NewPool(settings.Retrieval.Workers); err != nil {
		return nil, err
	}
	extractor := normalisers.NewDefaultRegistry()

	var remoteStore driven.RemoteStore
	if store := connectDrive(ctx, settings, opts.DriveOptions); store != nil {
		remoteStore = store
	}

	a.llm = ai.Init(ctx, &settings.LLM)
	a.LLMWarnings = a.llm.Warnings

	synthOpts := services.SynthesizerOptionsFrom(*settings)

	var localConn *local.Connector
	if settings.Local.Dir != "" {
		localConn = local.New(local.Config{
			Dir:        settings.Local.Dir,
			Exclude:    append(slices.Clone(settings.Local.Exclude), settings.Local.AgentPromptFile),
			MaxResults: settings.Retrieval.MaxDocsPerGroup,
		}, extractor, a.pool)
		if prompt, ok := localConn.AgentPrompt(ctx, settings.Local.AgentPromptFile); ok {
			synthOpts.AgentPrompt = domain.Truncate(prompt, agentPromptLimit)
			logger.Debug("Agent prompt loaded from %s", settings.Local.AgentPromptFile)
		}
	}

	synthesizer := services.NewSynthesizer(a.llm.LLMService, table, synthOpts)
	if prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts")); err == nil {
		synthesizer.SetPromptStore(prompts)
	} else {
		logger.Warn("Prompt store unavailable, using built-in prompts: %v", err)
	}

	a.scopes = services.NewScopeResolver(a.Registry, remoteStore,
		settings.Retrieval.MaxDepth, settings.Retrieval.ScopeCacheTTL)
	a.Registry.OnReload(func(*domain.Registry) { a.scopes.Invalidate() })

	a.Answers = services.NewAnswerService(
		services.NewQueryNormalizer(settings.Normalizer, table),
		a.scopes,
		synthesizer,
		a.Registry,
	)
	a.Answers.SetProfileStore(a.Profiles)
	if localConn != nil {
		a.Answers.SetLocalConnector(localConn, settings.Local.Dir)
	}
	if remoteStore != nil {
		a.Answers.SetRemoteConnector(remote.New(remoteStore, extractor, a.pool, remote.Config{
			BatchSize:  settings.Retrieval.RemoteBatchSize,
			MaxResults: settings.Retrieval.MaxDocsPerGroup,
			PageSize:   settings.Drive.PageSize,
		}), remoteStore)
	}

	return a, nil
}

// connectDrive returns nil when Drive is not configured or unreachable.
func connectDrive(ctx context.Context, settings *domain.AppSettings, opts []option.ClientOption) *drive.Store {
	cfg := drive.ConfigFromSettings(settings.Drive, settings.Retrieval)
	store, err := drive.Connect(ctx, settings.Drive, cfg, opts...)
	switch {
	case errors.Is(err, domain.ErrAuthRequired):
		logger.Info("Google Drive not configured; searching local documents only")
		return nil
	case err != nil:
		logger.Warn("Google Drive unavailable: %v", err)
		return nil
	}
	return store
}

// WatchRegistry reloads the registry whenever its file changes, until
// ctx is done.
func (a *App) WatchRegistry(ctx context.Context) {
	if err := a.Registry.Watch(ctx); err != nil {
		logger.Warn("Registry watch stopped: %v", err)
	}
}

// AIEnabled reports whether answers can use a language model.
func (a *App) AIEnabled() bool {
	return a.llm != nil && a.llm.LLMService != nil
}

// Close releases the language model, worker pool and database.
func (a *App) Close() {
	if a == nil {
		return
	}
	if a.llm != nil {
		a.llm.Close()
	}
	if a.pool != nil {
		a.pool.Release()
	}
	if a.Database != nil {
		if err := a.Database.Close(); err != nil {
			logger.Warn("Closing database: %v", err)
		}
	}
}

func applyLogLevel(name string) {
	if logger.IsVerbose() || strings.TrimSpace(name) == "" {
		return
	}
	level, err := logger.ParseLevel(name)
	if err != nil {
		logger.Warn("Config %s: %v", keyLogLevel, err)
		return
	}
	logger.SetLevel(level)
}
