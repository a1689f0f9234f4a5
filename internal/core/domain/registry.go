package domain

import (
	"fmt"
	"sort"
	"strings"
)

// Default scope weights and labels.
const (
	DefaultUserWeight   = 2.0
	DefaultSharedWeight = 1.0
	DefaultSharedLabel  = "Team folder"
)

// Weights holds the relative priority of owned and shared scope groups.
type Weights struct {
	User   float64
	Shared float64
}

// UserProfile personalises synthesised answers.
type UserProfile struct {
	// Role describes the user's job, e.g. "Regional sales manager".
	Role string

	// FocusAreas are topics the user cares about most.
	FocusAreas []string
}

// IsEmpty returns true if the profile carries no personalisation.
func (p UserProfile) IsEmpty() bool {
	return p.Role == "" && len(p.FocusAreas) == 0
}

// Registry is an immutable snapshot of users, their folders and the
// shared folder. A new snapshot replaces the old one on reload; a
// snapshot is never mutated after construction.
type Registry struct {
	users        map[string]string // lower-cased name -> canonical name
	folders      map[string]string // canonical name -> container id ("" if none)
	profiles     map[string]UserProfile
	sharedFolder string
	sharedLabel  string
	weights      Weights
}

// RegistryUser describes one user when building a Registry.
type RegistryUser struct {
	Name    string
	Folder  string
	Profile UserProfile
}

// RegistryConfig is the input to NewRegistry.
type RegistryConfig struct {
	Users        []RegistryUser
	SharedFolder string
	SharedLabel  string
	Weights      Weights
}

// NewRegistry builds a Registry snapshot.
// User names must be unique case-insensitively.
func NewRegistry(cfg RegistryConfig) (*Registry, error) {
	r := &Registry{
		users:        make(map[string]string, len(cfg.Users)),
		folders:      make(map[string]string, len(cfg.Users)),
		profiles:     make(map[string]UserProfile),
		sharedFolder: strings.TrimSpace(cfg.SharedFolder),
		sharedLabel:  cfg.SharedLabel,
		weights:      cfg.Weights,
	}

	if r.sharedLabel == "" {
		r.sharedLabel = DefaultSharedLabel
	}
	if r.weights.User == 0 && r.weights.Shared == 0 {
		r.weights = Weights{User: DefaultUserWeight, Shared: DefaultSharedWeight}
	}
	if r.weights.User < 0 || r.weights.Shared < 0 {
		return nil, fmt.Errorf("%w: weights must not be negative", ErrInvalidInput)
	}

	for _, u := range cfg.Users {
		name := strings.TrimSpace(u.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: user with empty name", ErrInvalidInput)
		}
		key := strings.ToLower(name)
		if _, dup := r.users[key]; dup {
			return nil, fmt.Errorf("%w: duplicate user %q", ErrInvalidInput, name)
		}
		r.users[key] = name
		r.folders[name] = strings.TrimSpace(u.Folder)
		if !u.Profile.IsEmpty() {
			r.profiles[name] = u.Profile
		}
	}

	return r, nil
}

// Users returns the canonical user names, sorted.
func (r *Registry) Users() []string {
	names := make([]string, 0, len(r.users))
	for _, name := range r.users {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lookup resolves a user name case-insensitively to its canonical form.
func (r *Registry) Lookup(user string) (string, bool) {
	name, ok := r.users[strings.ToLower(strings.TrimSpace(user))]
	return name, ok
}

// FolderFor returns the container id for a canonical user name,
// or "" if the user has no private folder.
func (r *Registry) FolderFor(canonical string) string {
	return r.folders[canonical]
}

// ProfileFor returns the user's profile, if one is configured.
func (r *Registry) ProfileFor(canonical string) (UserProfile, bool) {
	p, ok := r.profiles[canonical]
	return p, ok
}

// SharedFolder returns the shared container id.
func (r *Registry) SharedFolder() string {
	return r.sharedFolder
}

// SharedLabel returns the label attached to shared documents.
func (r *Registry) SharedLabel() string {
	return r.sharedLabel
}

// Weights returns the scope weights.
func (r *Registry) Weights() Weights {
	return r.weights
}

// UserLabel returns the label for a user's own folder.
func UserLabel(canonical string) string {
	return canonical + "'s folder"
}
