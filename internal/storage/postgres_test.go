package storage

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newMockStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(db, zap.NewNop()), mock
}

func TestPostgresGet(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM collections WHERE key = $1`)).
		WithArgs("widgets").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`[{"name":"a","count":1}]`))

	var out []widget
	require.NoError(t, store.Get(context.Background(), "widgets", &out))
	require.Len(t, out, 1)
	assert.Equal(t, "a", out[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetMissingKeyIsEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM collections WHERE key = $1`)).
		WithArgs("widgets").
		WillReturnRows(sqlmock.NewRows([]string{"data"}))

	var out []widget
	require.NoError(t, store.Get(context.Background(), "widgets", &out))
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresGetCorruptBlobDegradesToEmpty(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM collections WHERE key = $1`)).
		WithArgs("widgets").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`{"not":"a list"}`))

	var out []widget
	require.NoError(t, store.Get(context.Background(), "widgets", &out))
	assert.Empty(t, out)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresPutUpserts(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO collections`)).
		WithArgs("widgets", []byte(`[{"name":"a","count":1}]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.Put(context.Background(), "widgets", []widget{{Name: "a", Count: 1}})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAtomicCommits(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM collections WHERE key = $1 FOR UPDATE`)).
		WithArgs("widgets").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`[]`))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO collections`)).
		WithArgs("widgets", []byte(`[{"name":"a","count":1}]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := store.Atomic(context.Background(), func(ctx context.Context, tx Tx) error {
		var widgets []widget
		if err := tx.Get(ctx, "widgets", &widgets); err != nil {
			return err
		}
		widgets = append(widgets, widget{Name: "a", Count: 1})
		return tx.Put(ctx, "widgets", widgets)
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresAtomicRollsBackOnError(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT data FROM collections WHERE key = $1 FOR UPDATE`)).
		WithArgs("widgets").
		WillReturnRows(sqlmock.NewRows([]string{"data"}).AddRow(`[]`))
	mock.ExpectRollback()

	err := store.Atomic(context.Background(), func(ctx context.Context, tx Tx) error {
		var widgets []widget
		if err := tx.Get(ctx, "widgets", &widgets); err != nil {
			return err
		}
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresMigrate(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS collections").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, store.Migrate(context.Background()))
	assert.NoError(t, mock.ExpectationsWereMet())
}
