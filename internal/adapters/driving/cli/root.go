// Package cli implements the docask command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/ports/driving"
	"github.com/custodia-labs/docask/internal/logger"
)

// version is set at build time via SetVersion.
var version = "dev"

// Services are the ports the commands run against.
type Services struct {
	Answers   driving.AnswerService
	Settings  driving.SettingsService
	Knowledge driven.KnowledgeStore
	Profiles  driven.ProfileStore

	// WatchRegistry blocks, reloading the user registry on change,
	// until its context is done. May be nil.
	WatchRegistry func(ctx context.Context)

	// Close releases whatever the loader opened. May be nil.
	Close func()
}

// Loader builds Services. It runs at most once, on the first command
// that needs them, so "version" and "help" never touch config or network.
type Loader func(ctx context.Context) (*Services, error)

var (
	answerService   driving.AnswerService
	settingsService driving.SettingsService
	knowledgeStore  driven.KnowledgeStore
	profileStore    driven.ProfileStore
	watchRegistry   func(ctx context.Context)
	closeServices   func()

	loader Loader
)

// Global flags.
var (
	verbose bool
	envFile string
)

var rootCmd = &cobra.Command{
	Use:   "docask",
	Short: "Ask questions of your team's documents",
	Long: `docask answers natural-language questions from the documents a user may
see: their own Google Drive folder, the shared team folder and a local
document directory. Answers are written by a language model when one is
configured, and quoted directly from the documents otherwise.

Configuration lives in ~/.docask/config.toml and users in
~/.docask/registry.toml. Secrets may also come from the environment or a
.env file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if verbose {
			logger.SetVerbose(true)
		}
		return loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show pipeline debug output on stderr")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "load environment variables from this file (default .env when present)")
}

// SetVersion sets the version reported by "docask version".
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// SetLoader sets how Services are built.
func SetLoader(l Loader) {
	loader = l
}

// Execute runs the root command and releases loaded services.
func Execute(ctx context.Context) error {
	defer func() {
		if closeServices != nil {
			closeServices()
			closeServices = nil
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

// setServices installs s as the ports used by commands.
func setServices(s *Services) {
	answerService = s.Answers
	settingsService = s.Settings
	knowledgeStore = s.Knowledge
	profileStore = s.Profiles
	watchRegistry = s.WatchRegistry
	closeServices = s.Close
}

// requireServices loads Services on first use.
func requireServices(cmd *cobra.Command) error {
	if answerService != nil {
		return nil
	}
	if loader == nil {
		return errors.New("services not configured")
	}
	s, err := loader(cmd.Context())
	if err != nil {
		return fmt.Errorf("starting docask: %w", err)
	}
	setServices(s)
	return nil
}

// loadEnvFile loads path, or .env when path is empty and the file exists.
// Variables already set in the environment win.
func loadEnvFile(path string) error {
	if path != "" {
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("loading %s: %w", path, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Ignoring .env: %v", err)
	}
	return nil
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminalFd(f.Fd())
}
