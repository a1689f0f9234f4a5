package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
)

func TestUsers(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "users")

	require.NoError(t, err)
	assert.Equal(t, "Jeff\nMaria\n", out)
}

func TestUsers_Empty(t *testing.T) {
	ts := setupTestServices(t)
	ts.answers.users = nil

	out, err := execute(t, "users")

	require.NoError(t, err)
	assert.Contains(t, out, "No users registered.")
}

func TestStatus(t *testing.T) {
	ts := setupTestServices(t)
	ts.answers.status = domain.Status{
		Remote:    domain.RemoteConnected,
		LocalDir:  "/srv/docs",
		AIEnabled: true,
		Model:     "gemini-1.5-flash",
		Users:     2,
	}

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "Google Drive:   connected")
	assert.Contains(t, out, "Local folder:   /srv/docs")
	assert.Contains(t, out, "Language model: gemini-1.5-flash")
	assert.Contains(t, out, "Users:          2")
	assert.NotContains(t, out, "docask auth drive")
}

func TestStatus_AuthFailed(t *testing.T) {
	ts := setupTestServices(t)
	ts.answers.status = domain.Status{Remote: domain.RemoteAuthFailed}

	out, err := execute(t, "status")

	require.NoError(t, err)
	assert.Contains(t, out, "(not configured)")
	assert.Contains(t, out, "answers quote documents")
	assert.Contains(t, out, "docask auth drive")
}

func TestKnowledge_ImportAndList(t *testing.T) {
	ts := setupTestServices(t)
	path := filepath.Join(t.TempDir(), "knowledge.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[[entries]]
name = "Dealertrack"
category = "vendor"
description = "Dealer management software."
aliases = ["dealer track", "DT"]

[[entries]]
name = "CDK"
`), 0600))

	out, err := execute(t, "knowledge", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 2 knowledge entries.")

	table, err := ts.knowledge.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())

	out, err = execute(t, "knowledge", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Dealertrack [vendor]")
	assert.Contains(t, out, "aliases: dealer track, DT")
	assert.Contains(t, out, "Dealer management software.")
	assert.Contains(t, out, "CDK\n")
}

func TestKnowledge_ImportInvalidFileKeepsTable(t *testing.T) {
	ts := setupTestServices(t)
	require.NoError(t, ts.knowledge.Replace(context.Background(), []domain.KnowledgeEntry{{Name: "CDK"}}))
	path := filepath.Join(t.TempDir(), "knowledge.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"name": ""}]`), 0600))

	_, err := execute(t, "knowledge", "import", path)

	require.Error(t, err)
	table, err := ts.knowledge.Table(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, table.Len())
}

func TestKnowledge_ListEmpty(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "knowledge", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Knowledge table is empty.")
}

func TestProfile_SetAndShow(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "profile", "set", "jeff", "--role", "Regional sales manager", "--focus", "pipeline, targets")
	require.NoError(t, err)
	assert.Contains(t, out, "Saved profile for Jeff.")

	profile, err := ts.profiles.GetProfile(context.Background(), "Jeff")
	require.NoError(t, err)
	assert.Equal(t, "Regional sales manager", profile.Role)
	assert.Equal(t, []string{"pipeline", "targets"}, profile.FocusAreas)

	out, err = execute(t, "profile", "show", "JEFF")
	require.NoError(t, err)
	assert.Contains(t, out, "Role:  Regional sales manager")
	assert.Contains(t, out, "Focus: pipeline, targets")
}

func TestProfile_UnknownUser(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "profile", "set", "bob", "--role", "x")

	var unknown *domain.UnknownUserError
	assert.True(t, errors.As(err, &unknown))
}

func TestProfile_SetNothing(t *testing.T) {
	setupTestServices(t)

	_, err := execute(t, "profile", "set", "Jeff")

	assert.ErrorContains(t, err, "nothing to save")
}

func TestProfile_ShowMissing(t *testing.T) {
	setupTestServices(t)

	out, err := execute(t, "profile", "show", "Maria")

	require.NoError(t, err)
	assert.Contains(t, out, "No stored profile for Maria.")
}

func TestSettingsShow(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.settings.LLM.Provider = domain.AIProviderGemini
	ts.settings.settings.LLM.Model = "gemini-1.5-flash"
	ts.settings.settings.LLM.APIKey = "AIzaSyExampleKey1234"
	ts.settings.settings.Local.Dir = "/srv/docs"

	out, err := execute(t, "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Provider: Google Gemini (cloud)")
	assert.Contains(t, out, "API Key: AIza...1234")
	assert.NotContains(t, out, "AIzaSyExampleKey1234")
	assert.Contains(t, out, "Directory: /srv/docs")
	assert.Contains(t, out, "Client ID: (not set)")
	assert.Contains(t, out, "Address: :8080")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_ValidationWarning(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.validateErr = errors.New("gemini requires an API key")

	out, err := execute(t, "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: gemini requires an API key")
	assert.Contains(t, out, "not configured (extractive answers)")
}

func TestSettingsLLM_Flags(t *testing.T) {
	ts := setupTestServices(t)

	out, err := execute(t, "settings", "llm", "--provider", "OpenAI", "--api-key", "sk-test")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOpenAI, ts.settings.settings.LLM.Provider)
	assert.Equal(t, "gpt-4o-mini", ts.settings.settings.LLM.Model)
	assert.Equal(t, "sk-test", ts.settings.settings.LLM.APIKey)
	assert.Contains(t, out, "Validating configuration... OK")
}

func TestSettingsLLM_Interactive(t *testing.T) {
	ts := setupTestServices(t)

	// Ollama, default model, no key.
	buf := "1\n\n"
	settingsLLMCmd.SetIn(stringReader(buf))
	t.Cleanup(func() { settingsLLMCmd.SetIn(nil) })

	_, err := execute(t, "settings", "llm", "--no-verify")

	require.NoError(t, err)
	assert.Equal(t, domain.AIProviderOllama, ts.settings.settings.LLM.Provider)
	assert.Equal(t, "llama3.2", ts.settings.settings.LLM.Model)
}

func TestSettingsLLM_Errors(t *testing.T) {
	t.Run("unknown provider", func(t *testing.T) {
		ts := setupTestServices(t)

		_, err := execute(t, "settings", "llm", "--provider", "mistral")

		assert.ErrorContains(t, err, "unknown provider")
		assert.Zero(t, ts.settings.llmCalls)
	})

	t.Run("missing key", func(t *testing.T) {
		ts := setupTestServices(t)

		_, err := execute(t, "settings", "llm", "--provider", "anthropic")

		assert.ErrorContains(t, err, "API key is required")
		assert.Zero(t, ts.settings.llmCalls)
	})

	t.Run("validation fails", func(t *testing.T) {
		ts := setupTestServices(t)
		ts.settings.llmErr = errors.New("401 unauthorized")

		_, err := execute(t, "settings", "llm", "--provider", "gemini", "--api-key", "bad")

		assert.ErrorContains(t, err, "401 unauthorized")
	})
}

func TestSettingsLocalDir(t *testing.T) {
	ts := setupTestServices(t)
	dir := t.TempDir()

	out, err := execute(t, "settings", "local-dir", dir)
	require.NoError(t, err)
	assert.Equal(t, dir, ts.settings.settings.Local.Dir)
	assert.Contains(t, out, "Local directory set to")

	_, err = execute(t, "settings", "local-dir", filepath.Join(dir, "missing"))
	assert.Error(t, err)

	out, err = execute(t, "settings", "local-dir", "")
	require.NoError(t, err)
	assert.Empty(t, ts.settings.settings.Local.Dir)
	assert.Contains(t, out, "disabled")
}

func TestAuthDrive_RequiresClient(t *testing.T) {
	ts := setupTestServices(t)

	_, err := execute(t, "auth", "drive", "--no-browser")

	assert.ErrorContains(t, err, "client id and secret are required")
	assert.Zero(t, ts.settings.driveCalls)
}

func TestResolveServeAddr(t *testing.T) {
	ts := setupTestServices(t)
	ts.settings.settings.Server.Addr = ":9000"

	t.Setenv("PORT", "")
	addr, err := resolveServeAddr("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", addr)

	t.Setenv("PORT", "5000")
	addr, err = resolveServeAddr("")
	require.NoError(t, err)
	assert.Equal(t, ":5000", addr)

	addr, err = resolveServeAddr("127.0.0.1:7000")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:7000", addr)

	settingsService = nil
	t.Setenv("PORT", "")
	addr, err = resolveServeAddr("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", addr)
}

func TestRequireServices_Loader(t *testing.T) {
	resetServices(t)
	answers := &mockAnswerService{users: []string{"Jeff"}}
	calls := 0
	SetLoader(func(_ context.Context) (*Services, error) {
		calls++
		return &Services{Answers: answers}, nil
	})

	_, err := execute(t, "users")
	require.NoError(t, err)
	_, err = execute(t, "users")
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
}

func TestRequireServices_LoaderError(t *testing.T) {
	resetServices(t)
	SetLoader(func(_ context.Context) (*Services, error) {
		return nil, errors.New("bad registry")
	})

	_, err := execute(t, "users")

	assert.ErrorContains(t, err, "starting docask: bad registry")
}

func TestRequireServices_NoLoader(t *testing.T) {
	resetServices(t)

	_, err := execute(t, "users")

	assert.ErrorContains(t, err, "services not configured")
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DOCASK_TEST_VALUE=from-file\n"), 0600))
	t.Setenv("DOCASK_TEST_VALUE", "")
	os.Unsetenv("DOCASK_TEST_VALUE")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-file", os.Getenv("DOCASK_TEST_VALUE"))

	assert.Error(t, loadEnvFile(filepath.Join(t.TempDir(), "missing.env")))
}

func TestLoadEnvFile_ExistingWins(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("DOCASK_TEST_VALUE=from-file\n"), 0600))
	t.Setenv("DOCASK_TEST_VALUE", "from-env")

	require.NoError(t, loadEnvFile(path))
	assert.Equal(t, "from-env", os.Getenv("DOCASK_TEST_VALUE"))
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", maskAPIKey("short"))
	assert.Equal(t, "sk-t...cdef", maskAPIKey("sk-test-abcdef"))
}

func TestParseChoice(t *testing.T) {
	assert.Equal(t, 1, parseChoice("", 4, 1))
	assert.Equal(t, 3, parseChoice("3", 4, 1))
	assert.Equal(t, 1, parseChoice("9", 4, 1))
	assert.Equal(t, 1, parseChoice("x", 4, 1))
}
