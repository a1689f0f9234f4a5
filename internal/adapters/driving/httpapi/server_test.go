package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
	users  []string
	status domain.Status

	gotQuery   string
	gotUser    string
	gotSession string
}

func (m *mockAnswerService) Ask(ctx context.Context, query, user string) (*domain.Answer, error) {
	m.gotQuery, m.gotUser = query, user
	m.gotSession, _ = domain.SessionUser(ctx)
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

func newTestServer(t *testing.T, svc *mockAnswerService) *Server {
	t.Helper()
	s, err := NewServer(svc)
	require.NoError(t, err)
	return s
}

func get(s *Server, target, userAgent string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, http.NoBody)
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestNewServer_RequiresAnswerService(t *testing.T) {
	s, err := NewServer(nil)

	assert.Nil(t, s)
	assert.ErrorIs(t, err, ErrMissingAnswerService)
}

func TestHealth(t *testing.T) {
	rec := get(newTestServer(t, &mockAnswerService{}), "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OK", rec.Body.String())
}

func TestSearch_JSON(t *testing.T) {
	svc := &mockAnswerService{answer: &domain.Answer{
		User:      "Jeff",
		Text:      "Q2 revenue was up 12%.",
		Mode:      domain.SynthesisExtractive,
		AIEnabled: true,
	}}
	s := newTestServer(t, svc)

	rec := get(s, "/api/search?q=Q2+report&user=jeff", "curl/8.0")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	var body SearchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, SearchResponse{
		Query:     "Q2 report",
		User:      "Jeff",
		Answer:    "Q2 revenue was up 12%.",
		AIEnabled: true,
	}, body)
	assert.Equal(t, "Q2 report", svc.gotQuery)
	assert.Equal(t, "jeff", svc.gotUser)
}

func TestSearch_ShortcutsGetsPlainText(t *testing.T) {
	svc := &mockAnswerService{answer: &domain.Answer{User: "Jeff", Text: "spoken answer"}}

	rec := get(newTestServer(t, svc), "/api/search?q=x&user=Jeff", "Shortcuts/1.0")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "spoken answer", rec.Body.String())
}

func TestSearch_MissingQuery(t *testing.T) {
	svc := &mockAnswerService{}
	s := newTestServer(t, svc)

	rec := get(s, "/api/search?user=Jeff", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), missingQueryMessage)

	rec = get(s, "/api/search/text?q=%20&user=Jeff", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, missingQueryMessage, rec.Body.String())

	assert.Empty(t, svc.gotQuery)
}

func TestSearch_MissingUser(t *testing.T) {
	svc := &mockAnswerService{err: domain.ErrMissingUser}

	rec := get(newTestServer(t, svc), "/api/search?q=report", "")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, domain.ErrMissingUser.Error(), body.Error)
}

func TestSearch_UnknownUserListsValidUsers(t *testing.T) {
	svc := &mockAnswerService{err: &domain.UnknownUserError{User: "Bob", Valid: []string{"Jeff", "Maria"}}}

	rec := get(newTestServer(t, svc), "/api/search?q=report&user=Bob", "")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"Jeff", "Maria"}, body.ValidUsers)
	assert.Contains(t, body.Error, "Bob")
}

func TestSearch_InternalErrorHidesDetail(t *testing.T) {
	svc := &mockAnswerService{err: errors.New("database on fire")}

	rec := get(newTestServer(t, svc), "/api/search?q=report&user=Jeff", "")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database on fire")
}

func TestPlainTextInternalErrorHidesDetail(t *testing.T) {
	tests := []struct {
		name      string
		target    string
		userAgent string
	}{
		{name: "shortcuts search", target: "/api/search?q=report&user=Jeff", userAgent: "Shortcuts/1.0"},
		{name: "text search", target: "/api/search/text?q=report&user=Jeff"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &mockAnswerService{err: errors.New("database on fire")}

			rec := get(newTestServer(t, svc), tt.target, tt.userAgent)

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Equal(t, internalErrorMessage, rec.Body.String())
		})
	}
}

func TestSearchText(t *testing.T) {
	t.Run("returns the answer as text", func(t *testing.T) {
		svc := &mockAnswerService{answer: &domain.Answer{Text: "plain answer"}}

		rec := get(newTestServer(t, svc), "/api/search/text?q=test&user=Jeff", "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
		assert.Equal(t, "plain answer", rec.Body.String())
	})

	t.Run("unknown user is 404", func(t *testing.T) {
		svc := &mockAnswerService{err: &domain.UnknownUserError{User: "Bob", Valid: []string{"Jeff"}}}

		rec := get(newTestServer(t, svc), "/api/search/text?q=test&user=Bob", "")

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Jeff")
	})
}

func TestUsers(t *testing.T) {
	tests := []struct {
		name  string
		users []string
		want  UsersResponse
	}{
		{"with users", []string{"Jeff", "Maria"}, UsersResponse{Users: []string{"Jeff", "Maria"}, Total: 2}},
		{"empty registry", nil, UsersResponse{Users: []string{}, Total: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(newTestServer(t, &mockAnswerService{users: tt.users}), "/api/users", "")

			require.Equal(t, http.StatusOK, rec.Code)
			var body UsersResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.want, body)
		})
	}
}

func TestStatus(t *testing.T) {
	t.Run("ai enabled reports model", func(t *testing.T) {
		svc := &mockAnswerService{status: domain.Status{
			Remote:    domain.RemoteConnected,
			LocalDir:  "/docs",
			AIEnabled: true,
			Model:     "gpt-4o-mini",
			Users:     3,
		}}

		rec := get(newTestServer(t, svc), "/api/status", "")

		require.Equal(t, http.StatusOK, rec.Code)
		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "connected", body["google_drive"])
		assert.Equal(t, true, body["ai_enabled"])
		assert.Equal(t, "gpt-4o-mini", body["ai_model"])
		assert.Equal(t, "/docs", body["local_dir"])
		assert.Equal(t, float64(3), body["users"])
	})

	t.Run("ai disabled reports null model", func(t *testing.T) {
		svc := &mockAnswerService{status: domain.Status{Remote: domain.RemoteNotConfigured}}

		rec := get(newTestServer(t, svc), "/api/status", "")

		var body map[string]any
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "not configured", body["google_drive"])
		assert.Nil(t, body["ai_model"])
		assert.NotContains(t, body, "local_dir")
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"missing user", domain.ErrMissingUser, http.StatusBadRequest},
		{"invalid input", domain.ErrInvalidInput, http.StatusBadRequest},
		{"unknown user", &domain.UnknownUserError{User: "x"}, http.StatusNotFound},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFor(tt.err))
		})
	}
}

func TestListenAndServe_StopsOnCancel(t *testing.T) {
	s := newTestServer(t, &mockAnswerService{})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()

	assert.NoError(t, <-done)
}

func TestSearch_SessionUserHeader(t *testing.T) {
	svc := &mockAnswerService{answer: &domain.Answer{User: "Jeff", Text: "ok"}}
	s, err := NewServer(svc, WithUserHeader("X-Remote-User"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=q2", http.NoBody)
	req.Header.Set("X-Remote-User", "Jeff")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Jeff", svc.gotSession)
	assert.Empty(t, svc.gotUser)
}

func TestSearch_UserHeaderIgnoredWhenNotConfigured(t *testing.T) {
	svc := &mockAnswerService{answer: &domain.Answer{User: "Jeff", Text: "ok"}}
	s := newTestServer(t, svc)

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=q2&user=Maria", http.NoBody)
	req.Header.Set("X-Remote-User", "Jeff")
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	assert.Empty(t, svc.gotSession)
	assert.Equal(t, "Maria", svc.gotUser)
}
