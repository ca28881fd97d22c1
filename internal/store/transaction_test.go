package store

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunInTransaction(t *testing.T) {
	t.Parallel()

	t.Run("commits when the function succeeds", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectCommit()

		called := false
		err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			called = true
			return nil
		})

		assert.NoError(t, err)
		assert.True(t, called)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back when the function fails", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		wantErr := errors.New("boom")
		err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			return wantErr
		})

		assert.ErrorIs(t, err, wantErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("wraps begin failures", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin().WillReturnError(errors.New("no connection"))

		err = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
			t.Fatal("function must not run when begin fails")
			return nil
		})

		assert.ErrorIs(t, err, ErrTransactionFailed)
	})

	t.Run("rolls back and repanics on panic", func(t *testing.T) {
		t.Parallel()
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer func() { _ = db.Close() }()

		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.Panics(t, func() {
			_ = RunInTransaction(context.Background(), db, func(ctx context.Context, tx *sql.Tx) error {
				panic("kaboom")
			})
		})
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
