package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/docask/internal/core/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewStore(t *testing.T) {
	dir := t.TempDir()

	store, err := NewStore(dir)
	require.NoError(t, err)
	defer store.Close()

	assert.Equal(t, filepath.Join(dir, DatabaseFile), store.Path())

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestNewStore_ReopenSkipsAppliedMigrations(t *testing.T) {
	dir := t.TempDir()
	first, err := NewStore(dir)
	require.NoError(t, err)
	require.NoError(t, first.ProfileStore().SaveProfile(context.Background(), "Jeff", domain.UserProfile{Role: "Sales"}))
	require.NoError(t, first.Close())

	second, err := NewStore(dir)
	require.NoError(t, err)
	defer second.Close()

	p, err := second.ProfileStore().GetProfile(context.Background(), "Jeff")
	require.NoError(t, err)
	assert.Equal(t, "Sales", p.Role)
}

func TestMigrate_FailedMigrationIsNotRecorded(t *testing.T) {
	store := newTestStore(t)

	err := store.migrate(fstest.MapFS{
		"002_broken.up.sql": {Data: []byte("CREATE TABLE ok (id INTEGER); THIS IS NOT SQL;")},
	})
	require.Error(t, err)

	var version int
	require.NoError(t, store.db.QueryRow("SELECT MAX(version) FROM schema_migrations").Scan(&version))
	assert.Equal(t, 1, version)
}

func TestKnowledgeStore_ReplaceAndTable(t *testing.T) {
	ks := newTestStore(t).KnowledgeStore()
	ctx := context.Background()

	table, err := ks.Table(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())

	entries := []domain.KnowledgeEntry{
		{Name: "Dealertrack", Category: "vendor", Description: "Dealer management software.", Aliases: []string{"dealer track", "DT"}},
		{Name: "CDK", Category: "vendor", Description: "Dealer systems provider."},
		{Name: "Apex", Category: "product", Description: "Internal CRM."},
	}
	require.NoError(t, ks.Replace(ctx, entries))

	table, err = ks.Table(ctx)
	require.NoError(t, err)
	got := table.Entries()
	require.Len(t, got, 3)
	assert.Equal(t, "Dealertrack", got[0].Name)
	assert.Equal(t, []string{"dealer track", "DT"}, got[0].Aliases)
	assert.Equal(t, "CDK", got[1].Name)
	assert.Empty(t, got[1].Aliases)
	assert.Equal(t, "Apex", got[2].Name)

	match, ok := table.Match("what does dealer track do")
	require.True(t, ok)
	assert.Equal(t, "Dealertrack", match.Name)
}

func TestKnowledgeStore_ReplaceOverwrites(t *testing.T) {
	ks := newTestStore(t).KnowledgeStore()
	ctx := context.Background()

	require.NoError(t, ks.Replace(ctx, []domain.KnowledgeEntry{{Name: "Old"}}))
	require.NoError(t, ks.Replace(ctx, []domain.KnowledgeEntry{{Name: "New"}}))

	table, err := ks.Table(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "New", table.Entries()[0].Name)
}

func TestKnowledgeStore_ReplaceRejectsUnnamedAtomically(t *testing.T) {
	ks := newTestStore(t).KnowledgeStore()
	ctx := context.Background()
	require.NoError(t, ks.Replace(ctx, []domain.KnowledgeEntry{{Name: "Keep"}}))

	err := ks.Replace(ctx, []domain.KnowledgeEntry{{Name: "Fine"}, {Name: "  "}})

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
	table, err := ks.Table(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, table.Len())
	assert.Equal(t, "Keep", table.Entries()[0].Name)
}

func TestProfileStore(t *testing.T) {
	ps := newTestStore(t).ProfileStore()
	ctx := context.Background()

	_, err := ps.GetProfile(ctx, "Jeff")
	assert.True(t, errors.Is(err, domain.ErrNotFound))

	require.NoError(t, ps.SaveProfile(ctx, "Jeff", domain.UserProfile{
		Role:       "Regional sales manager",
		FocusAreas: []string{"pipeline", "targets"},
	}))

	p, err := ps.GetProfile(ctx, "jeff")
	require.NoError(t, err)
	assert.Equal(t, "Regional sales manager", p.Role)
	assert.Equal(t, []string{"pipeline", "targets"}, p.FocusAreas)

	require.NoError(t, ps.SaveProfile(ctx, "JEFF", domain.UserProfile{Role: "Director"}))
	p, err = ps.GetProfile(ctx, "Jeff")
	require.NoError(t, err)
	assert.Equal(t, "Director", p.Role)
	assert.Empty(t, p.FocusAreas)
}

func TestProfileStore_SaveRequiresUser(t *testing.T) {
	ps := newTestStore(t).ProfileStore()

	err := ps.SaveProfile(context.Background(), " ", domain.UserProfile{Role: "x"})

	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestProfileStore_ContextCancelled(t *testing.T) {
	ps := newTestStore(t).ProfileStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ps.GetProfile(ctx, "Jeff")

	assert.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrNotFound))
}
