package seed

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "nexora.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewStore_CreatesSchema(t *testing.T) {
	store := newTestStore(t)

	var count int
	err := store.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 21, count)
}

func TestSeeder_Run(t *testing.T) {
	store := newTestStore(t)
	seeder := NewSeeder(store, false)

	results, err := seeder.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, results, 21)

	byEntity := make(map[string]StepResult, len(results))
	for _, r := range results {
		byEntity[r.Entity] = r
	}

	assert.Equal(t, 6, byEntity["users"].Inserted)
	assert.Equal(t, 2, byEntity["tenants"].Inserted)
	assert.Equal(t, 3, byEntity["projects"].Inserted)
	assert.Equal(t, 6, byEntity["pipeline stages"].Inserted)
	for _, r := range results {
		assert.Zerof(t, r.Updated, "first run should not update %s", r.Entity)
	}

	// references resolved to real rows
	var orphanTasks int
	err = store.QueryRowContext(context.Background(),
		"SELECT COUNT(*) FROM tasks t LEFT JOIN projects p ON p.id = t.project_id WHERE p.id IS NULL").Scan(&orphanTasks)
	require.NoError(t, err)
	assert.Zero(t, orphanTasks)
}

func TestSeeder_RunIsIdempotent(t *testing.T) {
	store := newTestStore(t)

	first, err := NewSeeder(store, false).Run(context.Background())
	require.NoError(t, err)

	second, err := NewSeeder(store, false).Run(context.Background())
	require.NoError(t, err)
	require.Len(t, second, len(first))

	for i, r := range second {
		assert.Zerof(t, r.Inserted, "second run should not insert %s", r.Entity)
		assert.Equalf(t, first[i].Inserted, r.Updated,
			"second run should update every %s row the first run inserted", r.Entity)
	}

	var users int
	err = store.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM users").Scan(&users)
	require.NoError(t, err)
	assert.Equal(t, len(DefaultFixtures().Users), users)
}

func TestSeeder_UpdatesInPlace(t *testing.T) {
	store := newTestStore(t)
	_, err := NewSeeder(store, false).Run(context.Background())
	require.NoError(t, err)

	fixtures := DefaultFixtures()
	fixtures.Users[0].Name = "Maya Singh-Okoye"
	_, err = NewSeederWithFixtures(store, fixtures, false).Run(context.Background())
	require.NoError(t, err)

	var name string
	err = store.QueryRowContext(context.Background(),
		"SELECT name FROM users WHERE email = ?", fixtures.Users[0].Email).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "Maya Singh-Okoye", name)
}

func TestSeeder_UnresolvedReferenceAborts(t *testing.T) {
	store := newTestStore(t)

	fixtures := Fixtures{
		Users:   []UserFixture{{Email: "a@example.com", Name: "A", Role: "member"}},
		Tenants: []TenantFixture{{Name: "t1", Plan: "trial"}},
		Clients: []ClientFixture{{Tenant: "t1", Name: "c1", Status: "active"}},
		Projects: []ProjectFixture{
			{Client: "c1", Name: "p1", Status: "active"},
		},
		Tasks: []TaskFixture{
			{Project: "no-such-project", Title: "orphan task", Status: "todo", Priority: "low"},
		},
	}

	_, err := NewSeederWithFixtures(store, fixtures, false).Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no-such-project")
	assert.Contains(t, err.Error(), "unresolved project reference")

	// fail-fast: nothing from the failed group landed
	var tasks int
	err = store.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM tasks").Scan(&tasks)
	require.NoError(t, err)
	assert.Zero(t, tasks)
}

func TestRegistry_Resolve(t *testing.T) {
	reg := newRegistry()
	reg.register("user", "a@example.com", 7)

	id, err := reg.resolve("user", "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	_, err = reg.resolve("user", "missing@example.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"missing@example.com"`)

	opt, err := reg.resolveOptional("user", "")
	require.NoError(t, err)
	assert.Nil(t, opt)
}
