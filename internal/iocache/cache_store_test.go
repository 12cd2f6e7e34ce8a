package iocache

import (
	"database/sql"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/safepath/safepath/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetManager() {
	initOnce = sync.Once{}
	closeOnce = sync.Once{}
	Manager = &StoreManager{}
}

func TestInitStores(t *testing.T) {
	t.Run("sqlite cache and history", func(t *testing.T) {
		resetManager()
		dir := t.TempDir()
		cachePath := filepath.Join(dir, "cache.db")
		historyPath := filepath.Join(dir, "history.db")

		err := InitStores(schema.SQLiteBackend, cachePath, schema.SQLiteBackend, historyPath)
		require.NoError(t, err)
		assert.NotNil(t, Manager.GetCacheStore())
		assert.NotNil(t, Manager.GetHistoryStore())
		CloseStores()

		for _, p := range []string{cachePath, historyPath} {
			_, err := os.Stat(p)
			assert.NoError(t, err, "%s should exist", p)
		}
	})

	t.Run("idempotent", func(t *testing.T) {
		resetManager()
		cachePath := filepath.Join(t.TempDir(), "cache.db")
		for range 3 {
			assert.NoError(t, InitStores(schema.SQLiteBackend, cachePath, "", ""))
		}
		assert.Nil(t, Manager.GetHistoryStore(), "empty backend leaves history disabled")
		CloseStores()
		CloseStores()
	})

	t.Run("invalid backend", func(t *testing.T) {
		resetManager()
		err := InitStores("oracle", "", "", "")
		assert.ErrorContains(t, err, "unsupported backend")
	})

	t.Run("history failure closes cache", func(t *testing.T) {
		resetManager()
		cachePath := filepath.Join(t.TempDir(), "cache.db")
		err := InitStores(schema.SQLiteBackend, cachePath, schema.MySQLBackend, "not a dsn")
		assert.ErrorContains(t, err, "history store")
		assert.Nil(t, Manager.GetCacheStore())
	})
}

func TestCacheStoreSQLite(t *testing.T) {
	store, err := NewCacheStore("test_cache", schema.SQLiteBackend, ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	_, _, _, err = store.Get("missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	require.NoError(t, store.Set("k", []byte("v1"), 1, 100))
	require.NoError(t, store.Set("k", []byte("v2"), 2, 200), "set replaces")
	require.NoError(t, store.Set("other", []byte("x"), 1, 50))

	value, version, ts, err := store.Get("k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), value)
	assert.Equal(t, 2, version)
	assert.Equal(t, int64(200), ts)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.Equal(t, "sqlite", status.Backend)
	assert.True(t, status.Connected)
	assert.Equal(t, 2, status.TotalEntries)
	assert.Equal(t, int64(200), status.LastEntryTime.Unix())
	assert.Equal(t, int64(50), status.OldestEntryTime.Unix())
	assert.Positive(t, status.TableSizeBytes)
}

func TestCacheStoreNoneBackend(t *testing.T) {
	store, err := NewCacheStore("test_cache", schema.NoneBackend, "")
	require.NoError(t, err)

	assert.NoError(t, store.Set("k", []byte("v"), 1, 1))
	_, _, _, err = store.Get("k")
	assert.ErrorIs(t, err, sql.ErrNoRows)

	status, err := store.GetStatus()
	require.NoError(t, err)
	assert.False(t, status.Connected)
	assert.NoError(t, store.Close())
}

func TestNewCacheStoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		backend schema.DatabaseBackend
		connStr string
	}{
		{"empty table", "", schema.SQLiteBackend, ":memory:"},
		{"injected table", "cache; DROP TABLE x", schema.SQLiteBackend, ":memory:"},
		{"unknown backend", "cache", "oracle", ""},
		{"bad mysql dsn", "cache", schema.MySQLBackend, "not a dsn"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCacheStore(tt.table, tt.backend, tt.connStr)
			assert.Error(t, err)
		})
	}
}

func TestValidateTableName(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		wantErr bool
	}{
		{"simple", "route_cache", false},
		{"leading underscore", "_cache2", false},
		{"leading digit", "1cache", true},
		{"hyphen", "route-cache", true},
		{"space", "route cache", true},
		{"empty", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateTableName(tt.table)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestQuoteTableName(t *testing.T) {
	assert.Equal(t, "`t`", quoteTableName("t", schema.MySQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.PostgreSQLBackend))
	assert.Equal(t, `"t"`, quoteTableName("t", schema.SQLiteBackend))
}

func TestRebind(t *testing.T) {
	query := "SELECT a FROM t WHERE b = ? AND c = ?"
	assert.Equal(t, "SELECT a FROM t WHERE b = $1 AND c = $2", rebind(schema.PostgreSQLBackend, query))
	assert.Equal(t, query, rebind(schema.MySQLBackend, query))
	assert.Equal(t, query, rebind(schema.SQLiteBackend, query))
}

func TestGetCreateTableQuery(t *testing.T) {
	assert.Contains(t, getCreateTableQuery("c", schema.MySQLBackend), "VARCHAR(255)")
	assert.Contains(t, getCreateTableQuery("c", schema.PostgreSQLBackend), "BYTEA")
	assert.Contains(t, getCreateTableQuery("c", schema.SQLiteBackend), "BLOB")
}

func TestClearCache(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))

	require.NoError(t, ClearCache(schema.SQLiteBackend, path, ""))
	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, ClearCache(schema.SQLiteBackend, path, ""), "missing file is fine")
	assert.Error(t, ClearCache(schema.SQLiteBackend, "", ""))
	assert.NoError(t, ClearCache(schema.NoneBackend, "", ""))
	assert.Error(t, ClearCache("oracle", "", ""))
}

func TestStoreManagerConcurrency(t *testing.T) {
	mgr := &StoreManager{cache: &MockCacheStore{}, history: &MockHistoryStore{}}
	var wg sync.WaitGroup
	for range 16 {
		wg.Go(func() {
			assert.NotNil(t, mgr.GetCacheStore())
			assert.NotNil(t, mgr.GetHistoryStore())
		})
	}
	wg.Wait()
}
