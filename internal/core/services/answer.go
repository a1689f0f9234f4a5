package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/core/ports/driving"
	"github.com/custodia-labs/docask/internal/logger"
)

// Ensure AnswerService implements the interface.
var _ driving.AnswerService = (*AnswerService)(nil)

// statusPingTimeout bounds the remote store check in Status.
const statusPingTimeout = 5 * time.Second

// AnswerService runs the answer pipeline:
// normalise, resolve scope, search, aggregate, synthesise.
// It holds no per-query state; the scope resolver owns the only cache.
type AnswerService struct {
	normalizer  *QueryNormalizer
	scopes      *ScopeResolver
	synthesizer *Synthesizer
	registry    driven.RegistryStore

	local       driven.Connector
	remote      driven.Connector
	remoteStore driven.RemoteStore
	profiles    driven.ProfileStore
	localDir    string
}

// NewAnswerService creates the orchestrator. Connectors are attached with
// SetLocalConnector and SetRemoteConnector; either may be absent.
func NewAnswerService(
	normalizer *QueryNormalizer,
	scopes *ScopeResolver,
	synthesizer *Synthesizer,
	registry driven.RegistryStore,
) *AnswerService {
	return &AnswerService{
		normalizer:  normalizer,
		scopes:      scopes,
		synthesizer: synthesizer,
		registry:    registry,
	}
}

// SetLocalConnector sets the connector for the local directory.
// The directory is reported by Status.
func (s *AnswerService) SetLocalConnector(c driven.Connector, dir string) {
	s.local = c
	s.localDir = dir
}

// SetRemoteConnector sets the remote connector and the store behind it,
// which Status pings.
func (s *AnswerService) SetRemoteConnector(c driven.Connector, store driven.RemoteStore) {
	s.remote = c
	s.remoteStore = store
}

// SetProfileStore sets the store consulted for user profiles before the registry.
func (s *AnswerService) SetProfileStore(store driven.ProfileStore) {
	s.profiles = store
}

// SearchAllSources answers query for user and returns the answer text.
func (s *AnswerService) SearchAllSources(ctx context.Context, query, user string) (string, error) {
	answer, err := s.Ask(ctx, query, user)
	if err != nil {
		return "", err
	}
	return answer.Text, nil
}

// Ask answers query for user.
func (s *AnswerService) Ask(ctx context.Context, query, user string) (*domain.Answer, error) {
	requestID := uuid.NewString()
	start := time.Now()

	logger.Section("Answer Pipeline")
	logger.Debug("Request %s: query=%q user=%q", requestID, query, user)

	query = strings.TrimSpace(query)
	nq := s.normalizer.Normalize(query)

	canonical, groups, err := s.scopes.ResolveUser(ctx, strings.TrimSpace(user))
	if err != nil {
		logger.Debug("Request %s rejected: %v", requestID, err)
		return nil, err
	}
	if query == "" {
		return nil, fmt.Errorf("%w: query is empty", domain.ErrInvalidInput)
	}

	logger.Debug("Terms: %q (strategy %s, entity %q)", nq.Terms, nq.Strategy, nq.Entity)
	logger.Debug("Scope groups: %d", len(groups))

	docs := s.collect(ctx, groups, nq.Terms)
	ranked := Aggregate(docs, nq.Entity)
	logger.Debug("Ranked documents: %d", len(ranked))

	result := s.synthesizer.Synthesize(ctx, SynthesisRequest{
		Query:     query,
		Terms:     nq.Terms,
		Documents: ranked,
		Profile:   s.profileFor(ctx, canonical),
	})

	logger.Info("Request %s answered for %s in %s (%s, %d documents)",
		requestID, canonical, time.Since(start).Round(time.Millisecond), result.Mode, len(ranked))

	return &domain.Answer{
		RequestID: requestID,
		Query:     query,
		Terms:     nq.Terms,
		User:      canonical,
		Text:      result.Text,
		Mode:      result.Mode,
		AIEnabled: s.synthesizer.AIEnabled(),
		Documents: ranked,
	}, nil
}

// searchTask is one connector call whose results land in a fixed slot.
type searchTask struct {
	connector driven.Connector
	group     domain.ScopeGroup
}

// collect queries the local connector once with the shared group and the
// remote connector once per group, concurrently. Results are concatenated
// in task order so completion order never affects ranking.
func (s *AnswerService) collect(ctx context.Context, groups []domain.ScopeGroup, terms string) []domain.Document {
	var tasks []searchTask
	if s.local != nil {
		for _, g := range groups {
			if g.Kind == domain.ScopeShared {
				tasks = append(tasks, searchTask{connector: s.local, group: g})
				break
			}
		}
	}
	if s.remote != nil {
		for _, g := range groups {
			if len(g.LocationIDs) == 0 {
				continue
			}
			tasks = append(tasks, searchTask{connector: s.remote, group: g})
		}
	}

	// Owned remote results first so discovery order follows scope priority.
	sortTasksByScope(tasks)

	results := make([][]domain.Document, len(tasks))
	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, task searchTask) {
			defer wg.Done()
			docs, err := task.connector.Search(ctx, task.group, terms)
			if err != nil {
				logger.Warn("%s search in %s failed: %v", task.connector.Name(), task.group.Label, err)
				return
			}
			logger.Debug("%s found %d documents in %s", task.connector.Name(), len(docs), task.group.Label)
			results[i] = docs
		}(i, task)
	}
	wg.Wait()

	var all []domain.Document
	for _, docs := range results {
		all = append(all, docs...)
	}
	return all
}

func sortTasksByScope(tasks []searchTask) {
	owned := tasks[:0:0]
	var shared []searchTask
	for _, t := range tasks {
		if t.group.Kind == domain.ScopeOwned {
			owned = append(owned, t)
		} else {
			shared = append(shared, t)
		}
	}
	copy(tasks, append(owned, shared...))
}

func (s *AnswerService) profileFor(ctx context.Context, user string) *domain.UserProfile {
	if s.profiles != nil {
		profile, err := s.profiles.GetProfile(ctx, user)
		switch {
		case err == nil:
			return &profile
		case !errors.Is(err, domain.ErrNotFound):
			logger.Warn("Loading profile for %s: %v", user, err)
		}
	}
	if reg := s.registry.Snapshot(); reg != nil {
		if profile, ok := reg.ProfileFor(user); ok {
			return &profile
		}
	}
	return nil
}

// Users returns the known user names, sorted.
func (s *AnswerService) Users() []string {
	reg := s.registry.Snapshot()
	if reg == nil {
		return nil
	}
	return reg.Users()
}

// Status reports the readiness of the remote store and the LLM.
func (s *AnswerService) Status(ctx context.Context) domain.Status {
	status := domain.Status{
		Remote:    domain.RemoteNotConfigured,
		LocalDir:  s.localDir,
		AIEnabled: s.synthesizer.AIEnabled(),
		Model:     s.synthesizer.ModelName(),
		Users:     len(s.Users()),
	}

	if s.remoteStore != nil {
		ctx, cancel := context.WithTimeout(ctx, statusPingTimeout)
		defer cancel()
		status.Remote = classifyRemote(s.remoteStore.Ping(ctx))
	}
	return status
}

func classifyRemote(err error) domain.RemoteState {
	switch {
	case err == nil:
		return domain.RemoteConnected
	case errors.Is(err, domain.ErrAuthInvalid),
		errors.Is(err, domain.ErrAuthRequired),
		errors.Is(err, domain.ErrTokenRefreshFailed):
		logger.Warn("Remote store authentication failed: %v", err)
		return domain.RemoteAuthFailed
	default:
		logger.Warn("Remote store unreachable: %v", err)
		return domain.RemoteUnreachable
	}
}
