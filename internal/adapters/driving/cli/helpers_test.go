package cli

import (
	"bytes"
	"context"
	"testing"

	"github.com/custodia-labs/docask/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docask/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
	users  []string
	status domain.Status

	gotQuery string
	gotUser  string
}

func (m *mockAnswerService) Ask(_ context.Context, query, user string) (*domain.Answer, error) {
	m.gotQuery, m.gotUser = query, user
	return m.answer, m.err
}

func (m *mockAnswerService) SearchAllSources(ctx context.Context, query, user string) (string, error) {
	a, err := m.Ask(ctx, query, user)
	if err != nil {
		return "", err
	}
	return a.Text, nil
}

func (m *mockAnswerService) Users() []string { return m.users }

func (m *mockAnswerService) Status(_ context.Context) domain.Status { return m.status }

// mockSettingsService is a mock implementation of driving.SettingsService.
type mockSettingsService struct {
	settings    domain.AppSettings
	validateErr error
	llmErr      error

	llmCalls   int
	driveCalls int
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultAppSettings()}
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(settings *domain.AppSettings) error {
	m.settings = *settings
	return nil
}

func (m *mockSettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	m.llmCalls++
	m.settings.LLM.Provider = provider
	m.settings.LLM.Model = model
	m.settings.LLM.APIKey = apiKey
	return nil
}

func (m *mockSettingsService) SetLocalDir(dir string) error {
	m.settings.Local.Dir = dir
	return nil
}

func (m *mockSettingsService) SetDriveCredentials(clientID, clientSecret, refreshToken string) error {
	m.driveCalls++
	m.settings.Drive.ClientID = clientID
	m.settings.Drive.ClientSecret = clientSecret
	m.settings.Drive.RefreshToken = refreshToken
	return nil
}

func (m *mockSettingsService) Validate() error { return m.validateErr }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

func (m *mockSettingsService) ValidateLLMConfig() error { return m.llmErr }

type testServices struct {
	answers   *mockAnswerService
	settings  *mockSettingsService
	knowledge *memory.KnowledgeStore
	profiles  *memory.ProfileStore
}

// resetServices clears installed services and flag values, restoring
// them when the test ends.
func resetServices(t *testing.T) {
	t.Helper()
	reset := func() {
		setServices(&Services{})
		loader = nil
		askUser, askSources, askJSON = "", false, false
		serveAddr, serveUserHeader = "", ""
		profileRole, profileFocus = "", nil
		llmProvider, llmModel, llmAPIKey, llmNoVerify = "", "", "", false
		mcpPort = 0
		authClientID, authClientSecret, authPort, authNoBrowser = "", "", 0, false
		verbose, envFile = false, ""
	}
	reset()
	t.Cleanup(reset)
}

// setupTestServices installs mocks and returns them.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()
	resetServices(t)

	ts := &testServices{
		answers:   &mockAnswerService{users: []string{"Jeff", "Maria"}},
		settings:  newMockSettingsService(),
		knowledge: memory.NewKnowledgeStore(),
		profiles:  memory.NewProfileStore(),
	}
	setServices(&Services{
		Answers:   ts.answers,
		Settings:  ts.settings,
		Knowledge: ts.knowledge,
		Profiles:  ts.profiles,
	})
	return ts
}

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	})

	err := rootCmd.ExecuteContext(context.Background())
	return buf.String(), err
}

func stringReader(s string) *bytes.Buffer {
	return bytes.NewBufferString(s)
}
