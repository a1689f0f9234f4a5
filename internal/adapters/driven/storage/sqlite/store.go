package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/docask/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/docask/internal/core/domain"
	"github.com/custodia-labs/docask/internal/core/ports/driven"
)

// DatabaseFile is the database file name inside the data directory.
const DatabaseFile = "docask.db"

// Store is a SQLite database that provides the knowledge and profile
// stores through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.docask/data.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".docask", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, DatabaseFile)

	// Open database with WAL mode for better concurrency
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// KnowledgeStore returns a KnowledgeStore interface backed by this store.
func (s *Store) KnowledgeStore() driven.KnowledgeStore {
	return &knowledgeStore{store: s}
}

// ProfileStore returns a ProfileStore interface backed by this store.
func (s *Store) ProfileStore() driven.ProfileStore {
	return &profileStore{store: s}
}

// migrate runs all pending up migrations, each in its own transaction,
// and records the applied version.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// Extract version number (e.g., "001_initial.up.sql" -> 1)
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if err := s.applyMigration(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) applyMigration(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Knowledge Store ====================

// knowledgeStore implements driven.KnowledgeStore.
type knowledgeStore struct {
	store *Store
}

var _ driven.KnowledgeStore = (*knowledgeStore)(nil)

// Table returns the knowledge table in stored position order.
func (s *knowledgeStore) Table(ctx context.Context) (*domain.KnowledgeTable, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT name, category, description, aliases
		FROM knowledge_entries
		ORDER BY position
	`)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge: %w", err)
	}
	defer rows.Close()

	var entries []domain.KnowledgeEntry
	for rows.Next() {
		var (
			e       domain.KnowledgeEntry
			aliases string
		)
		if err := rows.Scan(&e.Name, &e.Category, &e.Description, &aliases); err != nil {
			return nil, fmt.Errorf("scanning knowledge entry: %w", err)
		}
		if err := json.Unmarshal([]byte(aliases), &e.Aliases); err != nil {
			return nil, fmt.Errorf("decoding aliases of %s: %w", e.Name, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating knowledge: %w", err)
	}

	return domain.NewKnowledgeTable(entries), nil
}

// Replace swaps the whole table for entries in one transaction.
func (s *knowledgeStore) Replace(ctx context.Context, entries []domain.KnowledgeEntry) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, "DELETE FROM knowledge_entries"); err != nil {
		return fmt.Errorf("clearing knowledge: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO knowledge_entries (position, name, category, description, aliases)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for i, e := range entries {
		if strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("%w: knowledge entry %d has no name", domain.ErrInvalidInput, i+1)
		}
		aliases, err := json.Marshal(nonNil(e.Aliases))
		if err != nil {
			return fmt.Errorf("encoding aliases of %s: %w", e.Name, err)
		}
		if _, err := stmt.ExecContext(ctx, i, e.Name, e.Category, e.Description, string(aliases)); err != nil {
			return fmt.Errorf("inserting %s: %w", e.Name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing knowledge: %w", err)
	}
	return nil
}

// ==================== Profile Store ====================

// profileStore implements driven.ProfileStore.
type profileStore struct {
	store *Store
}

var _ driven.ProfileStore = (*profileStore)(nil)

// GetProfile returns the profile for a user, matched case-insensitively.
func (s *profileStore) GetProfile(ctx context.Context, user string) (domain.UserProfile, error) {
	var (
		p     domain.UserProfile
		focus string
	)
	err := s.store.db.QueryRowContext(ctx, `
		SELECT role, focus_areas FROM user_profiles WHERE user = ?
	`, user).Scan(&p.Role, &focus)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.UserProfile{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("getting profile: %w", err)
	}
	if err := json.Unmarshal([]byte(focus), &p.FocusAreas); err != nil {
		return domain.UserProfile{}, fmt.Errorf("decoding focus areas: %w", err)
	}
	return p, nil
}

// SaveProfile creates or replaces a user's profile.
func (s *profileStore) SaveProfile(ctx context.Context, user string, profile domain.UserProfile) error {
	if strings.TrimSpace(user) == "" {
		return fmt.Errorf("%w: profile user is empty", domain.ErrInvalidInput)
	}
	focus, err := json.Marshal(nonNil(profile.FocusAreas))
	if err != nil {
		return fmt.Errorf("encoding focus areas: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO user_profiles (user, role, focus_areas, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user) DO UPDATE SET
			role = excluded.role,
			focus_areas = excluded.focus_areas,
			updated_at = excluded.updated_at
	`, user, profile.Role, string(focus), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
