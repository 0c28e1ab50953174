package out

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	sessionout "trackboard/internal/modules/session/port/out"
)

type closingStore interface {
	sessionout.KVStore
	Close() error
}

func TestKVStoresRoundTrip(t *testing.T) {
	t.Parallel()
	stores := map[string]func(t *testing.T) closingStore{
		"sqlite": func(t *testing.T) closingStore {
			s, err := OpenSQLiteKVStore(filepath.Join(t.TempDir(), ".trackboard", "trackboard.db"))
			require.NoError(t, err)
			return s
		},
		"file": func(t *testing.T) closingStore {
			return NewFileKVStore(filepath.Join(t.TempDir(), "kv"))
		},
	}
	for name, open := range stores {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			store := open(t)
			defer func() { _ = store.Close() }()

			_, ok, err := store.Get(ctx, "tempSession")
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, store.Put(ctx, "tempSession", `{"placements":{}}`))
			require.NoError(t, store.Put(ctx, "tempSession", `{"placements":{"Rainbow Road":1}}`))
			got, ok, err := store.Get(ctx, "tempSession")
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, `{"placements":{"Rainbow Road":1}}`, got)

			require.NoError(t, store.Delete(ctx, "tempSession"))
			require.NoError(t, store.Delete(ctx, "tempSession"))
			_, ok, err = store.Get(ctx, "tempSession")
			require.NoError(t, err)
			require.False(t, ok)
		})
	}
}

func TestSQLiteKVStorePersistsAcrossReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "trackboard.db")
	first, err := OpenSQLiteKVStore(path)
	require.NoError(t, err)
	require.NoError(t, first.Put(ctx, "sessionCounter", "4"))
	require.NoError(t, first.Close())

	second, err := OpenSQLiteKVStore(path)
	require.NoError(t, err)
	defer func() { _ = second.Close() }()
	got, ok, err := second.Get(ctx, "sessionCounter")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "4", got)
}

func TestSQLiteKVStoreWrapsDriverErrors(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	boom := errors.New("disk I/O error")
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO kv").
		WithArgs("savedSessions", "{}", sqlmock.AnyArg()).
		WillReturnError(boom)
	mock.ExpectQuery("SELECT value FROM kv WHERE key = ?").
		WithArgs("savedSessions").
		WillReturnError(boom)

	store, err := NewSQLiteKVStore(context.Background(), db)
	require.NoError(t, err)

	err = store.Put(context.Background(), "savedSessions", "{}")
	require.ErrorIs(t, err, boom)
	require.Contains(t, err.Error(), "upsert savedSessions")

	_, ok, err := store.Get(context.Background(), "savedSessions")
	require.ErrorIs(t, err, boom)
	require.False(t, ok)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteKVStoreSchemaFailure(t *testing.T) {
	t.Parallel()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()
	mock.ExpectExec("CREATE TABLE IF NOT EXISTS kv").WillReturnError(errors.New("read-only database"))

	_, err = NewSQLiteKVStore(context.Background(), db)
	require.ErrorContains(t, err, "create kv table")
}

func TestFileKVStoreRejectsPathKeys(t *testing.T) {
	t.Parallel()
	store := NewFileKVStore(t.TempDir())
	require.Error(t, store.Put(context.Background(), "../escape", "{}"))
	_, _, err := store.Get(context.Background(), "a/b")
	require.Error(t, err)
}
