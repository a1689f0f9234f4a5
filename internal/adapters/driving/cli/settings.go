package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/docask/internal/core/domain"
)

var (
	llmProvider string
	llmModel    string
	llmAPIKey   string
	llmNoVerify bool
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the language model, the local document directory and
other options stored in ~/.docask/config.toml.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsLLMCmd = &cobra.Command{
	Use:   "llm",
	Short: "Configure the language model provider",
	Long: `Configure the language model used to write answers.

Without flags the provider, model and API key are asked for interactively.
Without a working model, answers are quoted directly from documents.`,
	Example: `  docask settings llm --provider gemini --model gemini-1.5-flash --api-key $GEMINI_API_KEY`,
	RunE:    runSettingsLLM,
}

var settingsLocalDirCmd = &cobra.Command{
	Use:   "local-dir [dir]",
	Short: "Set the local document directory",
	Long:  `Set the directory searched for local documents. Pass "" to disable local search.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsLocalDir,
}

func init() {
	settingsLLMCmd.Flags().StringVar(&llmProvider, "provider", "", "ollama, openai, anthropic or gemini")
	settingsLLMCmd.Flags().StringVar(&llmModel, "model", "", "model name (provider default when empty)")
	settingsLLMCmd.Flags().StringVar(&llmAPIKey, "api-key", "", "API key for cloud providers")
	settingsLLMCmd.Flags().BoolVar(&llmNoVerify, "no-verify", false, "save without contacting the provider")

	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsLLMCmd)
	settingsCmd.AddCommand(settingsLocalDirCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[LLM]")
	if settings.LLM.Provider == "" {
		cmd.Println("  Provider: (not set)")
	} else {
		cmd.Printf("  Provider: %s\n", settings.LLM.Provider.Description())
		cmd.Printf("  Model: %s\n", settings.LLM.Model)
	}
	if settings.LLM.Provider.IsLocal() {
		cmd.Printf("  Base URL: %s\n", settings.LLM.BaseURL)
	}
	if settings.LLM.Provider.RequiresAPIKey() {
		cmd.Printf("  API Key: %s\n", secretStatus(settings.LLM.APIKey))
	}
	cmd.Printf("  Timeout: %s\n", settings.LLM.Timeout)
	status := "configured"
	if !settings.LLM.IsConfigured() {
		status = "not configured (extractive answers)"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	cmd.Println("[Local]")
	if settings.Local.Dir == "" {
		cmd.Println("  Directory: (not set)")
	} else {
		cmd.Printf("  Directory: %s\n", settings.Local.Dir)
	}
	if settings.Local.AgentPromptFile != "" {
		cmd.Printf("  Agent prompt: %s\n", settings.Local.AgentPromptFile)
	}
	if len(settings.Local.Exclude) > 0 {
		cmd.Printf("  Excluded: %s\n", strings.Join(settings.Local.Exclude, ", "))
	}
	cmd.Println()

	cmd.Println("[Drive]")
	cmd.Printf("  Client ID: %s\n", secretStatus(settings.Drive.ClientID))
	cmd.Printf("  Client Secret: %s\n", secretStatus(settings.Drive.ClientSecret))
	cmd.Printf("  Refresh Token: %s\n", secretStatus(settings.Drive.RefreshToken))
	cmd.Println()

	r := settings.Retrieval
	cmd.Println("[Retrieval]")
	cmd.Printf("  Docs per group: %d\n", r.MaxDocsPerGroup)
	cmd.Printf("  Top docs: %d\n", r.TopDocs)
	cmd.Printf("  Excerpt: %d chars above %d (step %d)\n", r.ExcerptWindow, r.ExcerptThreshold, r.ExcerptStep)
	cmd.Printf("  Folder depth: %d, cached %s\n", r.MaxDepth, r.ScopeCacheTTL)
	cmd.Println()

	cmd.Println("[Server]")
	cmd.Printf("  Address: %s\n", settings.Server.Addr)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'docask settings llm' to fix language model issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func secretStatus(v string) string {
	if v == "" {
		return "(not set)"
	}
	return maskAPIKey(v)
}

func runSettingsLLM(cmd *cobra.Command, _ []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	reader := bufio.NewReader(cmd.InOrStdin())

	provider := domain.AIProvider(strings.ToLower(strings.TrimSpace(llmProvider)))
	if llmProvider == "" {
		cmd.Println("Select LLM Provider")
		providers := domain.AllLLMProviders()
		for i, p := range providers {
			cmd.Printf("  %d. %s\n", i+1, p.Description())
		}
		cmd.Print("\nEnter choice [1]: ")
		provider = providers[parseChoice(readLine(reader), len(providers), 1)-1]
	}
	if !provider.IsValid() {
		return fmt.Errorf("unknown provider %q", llmProvider)
	}

	model := strings.TrimSpace(llmModel)
	if model == "" {
		defaultModel := domain.DefaultLLMModels()[provider]
		if llmProvider == "" {
			cmd.Printf("Enter model name [%s]: ", defaultModel)
			model = readLine(reader)
		}
		if model == "" {
			model = defaultModel
		}
	}

	apiKey := llmAPIKey
	if apiKey == "" && provider.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey = readSecret(cmd, reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
	}

	if err := settingsService.SetLLMProvider(provider, model, apiKey); err != nil {
		return fmt.Errorf("failed to configure LLM provider: %w", err)
	}

	if !llmNoVerify {
		cmd.Print("Validating configuration... ")
		if err := settingsService.ValidateLLMConfig(); err != nil {
			cmd.Printf("FAILED: %v\n", err)
			return fmt.Errorf("LLM configuration validation failed: %w", err)
		}
		cmd.Println("OK")
	}

	cmd.Printf("LLM provider configured: %s (%s)\n", provider.Description(), model)
	return nil
}

func runSettingsLocalDir(cmd *cobra.Command, args []string) error {
	if err := requireServices(cmd); err != nil {
		return err
	}

	dir := strings.TrimSpace(args[0])
	if dir != "" {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("local directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("local directory: %s is not a directory", dir)
		}
	}

	if err := settingsService.SetLocalDir(dir); err != nil {
		return fmt.Errorf("failed to set local directory: %w", err)
	}

	if dir == "" {
		cmd.Println("Local document search disabled.")
	} else {
		cmd.Printf("Local directory set to: %s\n", dir)
	}
	return nil
}

// readSecret reads without echo from an interactive stdin, otherwise a line.
func readSecret(cmd *cobra.Command, reader *bufio.Reader) string {
	if f, ok := cmd.InOrStdin().(*os.File); ok && f == os.Stdin && isTerminalFd(f.Fd()) {
		return readPassword()
	}
	return readLine(reader)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	n, err := strconv.Atoi(input)
	if err != nil || n < 1 || n > maxVal {
		return defaultVal
	}
	return n
}
