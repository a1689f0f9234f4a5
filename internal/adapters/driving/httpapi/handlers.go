package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/logger"
)

// shortcutsAgentPrefix identifies iOS Shortcuts clients, which read the
// response body aloud and so get plain text from /api/search.
const shortcutsAgentPrefix = "Shortcuts"

const missingQueryMessage = "Please provide a search query"

const internalErrorMessage = "internal error"

// SearchResponse is the JSON body of /api/search.
type SearchResponse struct {
	Query     string `json:"query"`
	User      string `json:"user"`
	Answer    string `json:"answer"`
	AIEnabled bool   `json:"ai_enabled"`
}

// UsersResponse is the JSON body of /api/users.
type UsersResponse struct {
	Users []string `json:"users"`
	Total int      `json:"total"`
}

// StatusResponse is the JSON body of /api/status.
type StatusResponse struct {
	GoogleDrive string  `json:"google_drive"`
	LocalDir    string  `json:"local_dir,omitempty"`
	AIEnabled   bool    `json:"ai_enabled"`
	AIModel     *string `json:"ai_model"`
	Users       int     `json:"users"`
}

// ErrorResponse is the JSON body of a rejected request.
type ErrorResponse struct {
	Error      string   `json:"error"`
	ValidUsers []string `json:"valid_users,omitempty"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query, user := searchParams(r)
	plain := strings.HasPrefix(r.UserAgent(), shortcutsAgentPrefix)

	if query == "" {
		if plain {
			textResponse(w, missingQueryMessage, http.StatusBadRequest)
			return
		}
		jsonResponse(w, ErrorResponse{Error: missingQueryMessage}, http.StatusBadRequest)
		return
	}

	answer, err := s.answers.Ask(r.Context(), query, user)
	if err != nil {
		if plain {
			textError(w, err)
			return
		}
		jsonError(w, err)
		return
	}

	if plain {
		textResponse(w, answer.Text, http.StatusOK)
		return
	}

	jsonResponse(w, SearchResponse{
		Query:     query,
		User:      answer.User,
		Answer:    answer.Text,
		AIEnabled: answer.AIEnabled,
	}, http.StatusOK)
}

func (s *Server) handleSearchText(w http.ResponseWriter, r *http.Request) {
	query, user := searchParams(r)
	if query == "" {
		textResponse(w, missingQueryMessage, http.StatusBadRequest)
		return
	}

	text, err := s.answers.SearchAllSources(r.Context(), query, user)
	if err != nil {
		textError(w, err)
		return
	}
	textResponse(w, text, http.StatusOK)
}

func (s *Server) handleUsers(w http.ResponseWriter, _ *http.Request) {
	users := s.answers.Users()
	if users == nil {
		users = []string{}
	}
	jsonResponse(w, UsersResponse{Users: users, Total: len(users)}, http.StatusOK)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	status := s.answers.Status(r.Context())

	resp := StatusResponse{
		GoogleDrive: string(status.Remote),
		LocalDir:    status.LocalDir,
		AIEnabled:   status.AIEnabled,
		Users:       status.Users,
	}
	if status.AIEnabled && status.Model != "" {
		model := status.Model
		resp.AIModel = &model
	}
	jsonResponse(w, resp, http.StatusOK)
}

func searchParams(r *http.Request) (query, user string) {
	q := r.URL.Query()
	return strings.TrimSpace(q.Get("q")), strings.TrimSpace(q.Get("user"))
}

// statusFor maps a pipeline error to an HTTP status.
func statusFor(err error) int {
	var unknown *domain.UnknownUserError
	switch {
	case errors.Is(err, domain.ErrMissingUser), errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.As(err, &unknown):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func jsonError(w http.ResponseWriter, err error) {
	code, msg := errorMessage(err)
	resp := ErrorResponse{Error: msg}

	var unknown *domain.UnknownUserError
	if errors.As(err, &unknown) {
		resp.ValidUsers = unknown.Valid
	}
	jsonResponse(w, resp, code)
}

func textError(w http.ResponseWriter, err error) {
	code, msg := errorMessage(err)
	textResponse(w, msg, code)
}

// errorMessage returns the status and client-facing message for err.
// Details of internal errors are logged, never sent.
func errorMessage(err error) (int, string) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		logger.Error("Search failed: %v", err)
		return code, internalErrorMessage
	}
	return code, err.Error()
}

func jsonResponse(w http.ResponseWriter, v any, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func textResponse(w http.ResponseWriter, text string, code int) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(text))
}
