package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/logger"
)

// Scope cache defaults.
const (
	DefaultScopeCacheTTL = 20 * time.Minute
	DefaultMaxDepth      = 8
)

type scopeCacheEntry struct {
	ids     []string
	expires time.Time
}

// ScopeResolver maps a user to the weighted scope groups they may search.
// Folder trees are walked through the remote store and cached per root.
type ScopeResolver struct {
	registry driven.RegistryStore
	remote   driven.RemoteStore
	maxDepth int
	ttl      time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	cache map[string]scopeCacheEntry
	walks singleflight.Group
}

// NewScopeResolver creates a resolver. remote may be nil, in which case
// groups contain only their root ids.
func NewScopeResolver(registry driven.RegistryStore, remote driven.RemoteStore, maxDepth int, ttl time.Duration) *ScopeResolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if ttl <= 0 {
		ttl = DefaultScopeCacheTTL
	}
	return &ScopeResolver{
		registry: registry,
		remote:   remote,
		maxDepth: maxDepth,
		ttl:      ttl,
		now:      time.Now,
		cache:    make(map[string]scopeCacheEntry),
	}
}

// Resolve returns the user's owned group (when they have a folder)
// followed by the shared group.
func (r *ScopeResolver) Resolve(ctx context.Context, user string) ([]domain.ScopeGroup, error) {
	_, groups, err := r.ResolveUser(ctx, user)
	return groups, err
}

// ResolveUser is Resolve that also returns the canonical user name.
func (r *ScopeResolver) ResolveUser(ctx context.Context, user string) (string, []domain.ScopeGroup, error) {
	if user == "" {
		session, ok := domain.SessionUser(ctx)
		if !ok {
			return "", nil, domain.ErrMissingUser
		}
		user = session
	}

	reg := r.registry.Snapshot()
	if reg == nil {
		return "", nil, &domain.UnknownUserError{User: user}
	}

	canonical, ok := reg.Lookup(user)
	if !ok {
		return "", nil, &domain.UnknownUserError{User: user, Valid: reg.Users()}
	}

	weights := reg.Weights()
	groups := make([]domain.ScopeGroup, 0, 2)

	if folder := reg.FolderFor(canonical); folder != "" {
		groups = append(groups, domain.ScopeGroup{
			Kind:        domain.ScopeOwned,
			LocationIDs: r.expand(ctx, folder),
			Weight:      weights.User,
			Label:       domain.UserLabel(canonical),
		})
	} else {
		logger.Debug("User %s has no private folder, searching shared scope only", canonical)
	}

	shared := domain.ScopeGroup{
		Kind:   domain.ScopeShared,
		Weight: weights.Shared,
		Label:  reg.SharedLabel(),
	}
	if root := reg.SharedFolder(); root != "" {
		shared.LocationIDs = r.expand(ctx, root)
	}
	groups = append(groups, shared)

	return canonical, groups, nil
}

// Invalidate drops every cached folder tree.
func (r *ScopeResolver) Invalidate() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[string]scopeCacheEntry)
	logger.Debug("Scope cache invalidated")
}

// expand returns root followed by its descendant containers.
// A failed walk degrades to the root alone and is not cached.
func (r *ScopeResolver) expand(ctx context.Context, root string) []string {
	if r.remote == nil {
		return []string{root}
	}

	if ids, ok := r.cached(root); ok {
		return ids
	}

	// The walk outlives any single caller so a cancelled request does not
	// fail the others waiting on it. The store bounds each call.
	walkCtx := context.WithoutCancel(ctx)
	ch := r.walks.DoChan(root, func() (any, error) {
		if ids, ok := r.cached(root); ok {
			return ids, nil
		}
		ids, err := r.walk(walkCtx, root)
		if err != nil {
			return nil, err
		}
		r.mu.Lock()
		r.cache[root] = scopeCacheEntry{ids: ids, expires: r.now().Add(r.ttl)}
		r.mu.Unlock()
		return ids, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		logger.Debug("Folder walk for %s abandoned by caller: %v", root, ctx.Err())
		return []string{root}
	}
	if res.Err != nil {
		logger.Warn("Folder walk for %s failed, searching root only: %v", root, res.Err)
		return []string{root}
	}
	if res.Shared {
		logger.Debug("Folder walk for %s shared with a concurrent request", root)
	}

	v := res.Val
	ids, _ := v.([]string)
	return append([]string(nil), ids...)
}

func (r *ScopeResolver) cached(root string) ([]string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[root]
	if !ok || r.now().After(entry.expires) {
		return nil, false
	}
	return append([]string(nil), entry.ids...), true
}

// walk lists the tree breadth-first, bounded by maxDepth.
func (r *ScopeResolver) walk(ctx context.Context, root string) ([]string, error) {
	start := r.now()
	ids := []string{root}
	seen := map[string]struct{}{root: {}}
	frontier := []string{root}

	for depth := 0; depth < r.maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, parent := range frontier {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			children, err := r.remote.ListChildren(ctx, parent)
			if err != nil {
				return nil, fmt.Errorf("list children of %s: %w", parent, err)
			}
			for _, child := range children {
				if !child.IsFolder {
					continue
				}
				if _, dup := seen[child.ID]; dup {
					continue
				}
				seen[child.ID] = struct{}{}
				ids = append(ids, child.ID)
				next = append(next, child.ID)
			}
		}
		frontier = next
	}

	if len(frontier) > 0 {
		logger.Warn("Folder tree under %s deeper than %d levels, truncated", root, r.maxDepth)
	}
	logger.Debug("Walked folder tree %s: %d containers in %s", root, len(ids), time.Since(start))
	return ids, nil
}
