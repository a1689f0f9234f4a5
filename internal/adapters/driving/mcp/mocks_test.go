package mcp

import (
	"context"

	"github.com/custodia-labs/docask/internal/core/domain"
)

// mockAnswerService is a mock implementation of driving.AnswerService.
type mockAnswerService struct {
	answer *domain.Answer
	err    error
	users  []string
	status domain.Status

	gotUser string
}

func (m *mockAnswerService) Ask(_ context.Context, _, user string) (*domain.Answer, error) {
	m.gotUser = user
	return m.answer, m.err
}

func (m *mockAnswerService) SearchAllSources(_ context.Context, _, _ string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	return m.answer.Text, nil
}

func (m *mockAnswerService) Users() []string {
	return m.users
}

func (m *mockAnswerService) Status(_ context.Context) domain.Status {
	return m.status
}
