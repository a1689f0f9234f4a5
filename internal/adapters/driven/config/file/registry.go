package file

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/docask/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
	"github.com/custodia-labs/docask/internal/logger"
)

// RegistryFileName is the registry file inside the config directory.
const RegistryFileName = "registry.toml"

// reloadDelay coalesces the burst of events an editor produces on save.
const reloadDelay = 100 * time.Millisecond

// Ensure RegistryStore implements the interface.
var _ driven.RegistryStore = (*RegistryStore)(nil)

// registryFile is the on-disk shape of registry.toml.
//
//	shared_folder = "0AbCdEf"
//	shared_label  = "Team folder"
//
//	[weights]
//	user   = 2.0
//	shared = 1.0
//
//	[[users]]
//	name        = "Jeff"
//	folder      = "1XyZ"
//	role        = "Regional sales manager"
//	focus_areas = ["pipeline", "quarterly targets"]
type registryFile struct {
	SharedFolder string `toml:"shared_folder"`
	SharedLabel  string `toml:"shared_label"`
	Weights      struct {
		User   float64 `toml:"user"`
		Shared float64 `toml:"shared"`
	} `toml:"weights"`
	Users []struct {
		Name       string   `toml:"name"`
		Folder     string   `toml:"folder"`
		Role       string   `toml:"role"`
		FocusAreas []string `toml:"focus_areas"`
	} `toml:"users"`
}

// ParseRegistry decodes registry TOML into a snapshot. Unknown keys are
// rejected so typos do not silently drop users.
func ParseRegistry(data []byte) (*domain.Registry, error) {
	var f registryFile
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidInput, err)
	}

	cfg := domain.RegistryConfig{
		SharedFolder: f.SharedFolder,
		SharedLabel:  f.SharedLabel,
		Weights:      domain.Weights{User: f.Weights.User, Shared: f.Weights.Shared},
	}
	for _, u := range f.Users {
		cfg.Users = append(cfg.Users, domain.RegistryUser{
			Name:    u.Name,
			Folder:  u.Folder,
			Profile: domain.UserProfile{Role: u.Role, FocusAreas: u.FocusAreas},
		})
	}
	return domain.NewRegistry(cfg)
}

// LoadRegistry reads and parses a registry file.
func LoadRegistry(path string) (*domain.Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry: %w", err)
	}
	reg, err := ParseRegistry(data)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return reg, nil
}

// RegistryStore serves the registry parsed from registry.toml and swaps in
// a new snapshot whenever the file changes. A file that fails to parse
// leaves the previous snapshot in place.
type RegistryStore struct {
	path     string
	current  *memory.RegistryStore
	onReload func(*domain.Registry)
}

// NewRegistryStore loads the registry at path. A missing file yields an
// empty registry so docask can start before any user is configured.
func NewRegistryStore(path string) (*RegistryStore, error) {
	reg, err := LoadRegistry(path)
	if errors.Is(err, os.ErrNotExist) {
		logger.Warn("No registry at %s; every user will be unknown", path)
		reg, err = domain.NewRegistry(domain.RegistryConfig{})
	}
	if err != nil {
		return nil, err
	}
	return &RegistryStore{path: path, current: memory.NewRegistryStore(reg)}, nil
}

// Snapshot returns the current registry.
func (s *RegistryStore) Snapshot() *domain.Registry {
	return s.current.Snapshot()
}

// Path returns the registry file path.
func (s *RegistryStore) Path() string {
	return s.path
}

// OnReload registers fn to run after each successful reload.
// Call it before Watch.
func (s *RegistryStore) OnReload(fn func(*domain.Registry)) {
	s.onReload = fn
}

// Reload re-reads the file and swaps the snapshot on success.
func (s *RegistryStore) Reload() error {
	reg, err := LoadRegistry(s.path)
	if err != nil {
		return err
	}
	s.current.Swap(reg)
	logger.Info("Registry reloaded: %d user(s)", len(reg.Users()))
	if s.onReload != nil {
		s.onReload(reg)
	}
	return nil
}

// Watch reloads the registry on every change to the file until ctx is
// done. The directory is watched rather than the file so editors that
// save by rename are followed.
func (s *RegistryStore) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(s.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(s.path), err)
	}

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if shouldReload(event, s.path) {
				pending = time.After(reloadDelay)
			}
		case <-pending:
			pending = nil
			if err := s.Reload(); err != nil {
				logger.Warn("Registry reload failed, keeping previous snapshot: %v", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Registry watcher: %v", err)
		}
	}
}

// shouldReload reports whether event changed the registry file contents.
func shouldReload(event fsnotify.Event, path string) bool {
	if filepath.Clean(event.Name) != filepath.Clean(path) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}
