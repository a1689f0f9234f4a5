package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// --- Mock implementations ---

// mockRemoteStore implements driven.RemoteStore with an in-memory folder tree.
type mockRemoteStore struct {
	mu        sync.Mutex
	children  map[string][]driven.RemoteEntry
	listErr   error
	pingErr   error
	listDelay time.Duration
	listCalls atomic.Int32
}

func (m *mockRemoteStore) ListChildren(ctx context.Context, parentID string) ([]driven.RemoteEntry, error) {
	m.listCalls.Add(1)
	if m.listDelay > 0 {
		select {
		case <-time.After(m.listDelay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if m.listErr != nil {
		return nil, m.listErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.children[parentID], nil
}

func (m *mockRemoteStore) Search(_ context.Context, _ driven.RemoteQuery) ([]driven.RemoteEntry, error) {
	return nil, nil
}

func (m *mockRemoteStore) Download(_ context.Context, _ string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRemoteStore) ExportText(_ context.Context, _, _ string) ([]byte, error) {
	return nil, errors.New("not implemented")
}

func (m *mockRemoteStore) Ping(_ context.Context) error {
	return m.pingErr
}

// mockConnector implements driven.Connector with canned documents per root id.
type mockConnector struct {
	name    string
	docs    map[string][]domain.Document // keyed by group root
	errs    map[string]error             // keyed by group root
	calls   atomic.Int32
	mu      sync.Mutex
	queries []string
}

func (m *mockConnector) Name() string { return m.name }

func (m *mockConnector) Search(_ context.Context, group domain.ScopeGroup, terms string) ([]domain.Document, error) {
	m.calls.Add(1)
	m.mu.Lock()
	m.queries = append(m.queries, terms)
	m.mu.Unlock()

	root := group.Root()
	if err := m.errs[root]; err != nil {
		return nil, err
	}
	var out []domain.Document
	for _, d := range m.docs[root] {
		if !strings.Contains(strings.ToLower(d.Text()), strings.ToLower(terms)) {
			continue
		}
		d.SourceLabel = group.Label
		d.Weight = group.Weight
		d.Scope = group.Kind
		d.Origin = m.name
		out = append(out, d)
	}
	return out, nil
}

// mockLLM implements driven.LLMService for testing.
type mockLLM struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
	lastOpts   driven.CompleteOptions
	calls      int
}

func (m *mockLLM) Complete(_ context.Context, system, user string, opts driven.CompleteOptions) (string, error) {
	m.calls++
	m.lastSystem = system
	m.lastUser = user
	m.lastOpts = opts
	return m.reply, m.err
}

func (m *mockLLM) ModelName() string            { return "mock-model" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

// mockPromptStore implements driven.PromptStore for testing.
type mockPromptStore struct {
	prompts map[string]string
}

func (m *mockPromptStore) Load(name string) (string, error) {
	if p, ok := m.prompts[name]; ok {
		return p, nil
	}
	return "", domain.ErrNotFound
}

func (m *mockPromptStore) Reload() {}

// --- Fixtures ---

func testRegistryStore(t *testing.T) *memory.RegistryStore {
	t.Helper()
	reg, err := domain.NewRegistry(domain.RegistryConfig{
		Users: []domain.RegistryUser{
			{Name: "Jeff", Folder: "jeff-root", Profile: domain.UserProfile{Role: "Dealer principal"}},
			{Name: "Anna", Folder: "anna-root"},
			{Name: "Guest"},
		},
		SharedFolder: "team-root",
		SharedLabel:  "Team folder",
	})
	require.NoError(t, err)
	return memory.NewRegistryStore(reg)
}

func testKnowledge() *domain.KnowledgeTable {
	return domain.NewKnowledgeTable([]domain.KnowledgeEntry{
		{
			Name:        "FordDirect",
			Category:    "vendor",
			Description: "FordDirect is Ford's digital retailing and marketing partner for dealers.",
			Aliases:     []string{"Ford Direct"},
		},
		{
			Name:        "Dealertrack",
			Category:    "product",
			Description: "Dealertrack is a dealer management and F&I platform.",
			Aliases:     []string{"DT", "dealer track"},
		},
	})
}

func doc(id, filename, text string) domain.Document {
	return domain.NewDocument(id, filename, domain.FormatFromFilename(filename), text, domain.ScopeGroup{}, "")
}
