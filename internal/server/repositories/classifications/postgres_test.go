package classifications

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/dealership/internal/common"
	"github.com/dmitrijs2005/dealership/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestList(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT classification_id, classification_name FROM classification ORDER BY classification_name$`).
		WillReturnRows(sqlmock.NewRows([]string{"classification_id", "classification_name"}).
			AddRow(int64(2), "SUV").
			AddRow(int64(1), "Sedan"))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []models.Classification{{ID: 2, Name: "SUV"}, {ID: 1, Name: "Sedan"}}, got)
}

func TestList_Empty(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT .* FROM classification`).
		WillReturnRows(sqlmock.NewRows([]string{"classification_id", "classification_name"}))

	got, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestList_QueryError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`^SELECT .* FROM classification`).WillReturnError(errors.New("down"))

	_, err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "db error")
}

func TestGet(t *testing.T) {
	q := `^SELECT classification_id, classification_name FROM classification WHERE classification_id = \$1$`

	t.Run("found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(int64(3)).
			WillReturnRows(sqlmock.NewRows([]string{"classification_id", "classification_name"}).AddRow(int64(3), "Truck"))

		got, err := repo.Get(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, &models.Classification{ID: 3, Name: "Truck"}, got)
	})

	t.Run("missing", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs(int64(4)).WillReturnError(sql.ErrNoRows)

		_, err := repo.Get(context.Background(), 4)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}

func TestCreate(t *testing.T) {
	q := `(?s)^INSERT\s+INTO\s+classification\s*\(classification_name\)\s*VALUES\s*\(\$1\)\s*RETURNING\s+classification_id$`

	t.Run("created", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("Custom").
			WillReturnRows(sqlmock.NewRows([]string{"classification_id"}).AddRow(int64(6)))

		got, err := repo.Create(context.Background(), "Custom")
		require.NoError(t, err)
		assert.Equal(t, &models.Classification{ID: 6, Name: "Custom"}, got)
	})

	t.Run("duplicate", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)
		mock.ExpectQuery(q).WithArgs("SUV").WillReturnError(&pgconn.PgError{Code: "23505"})

		_, err := repo.Create(context.Background(), "SUV")
		assert.ErrorIs(t, err, common.ErrorAlreadyExists)
	})
}
