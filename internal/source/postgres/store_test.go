package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/JakeFAU/mission-site/internal/source"
)

func ptr[T any](v T) *T {
	return &v
}

func allColumnNames() []string {
	names := make([]string, len(columns))
	for i, c := range columns {
		names[i] = c.name
	}
	return names
}

func TestFetchAllColumns(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock, "jobs")
	require.NoError(t, err)

	created := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows(allColumnNames()).
		AddRow(
			ptr("17"), ptr("go-dev-paris"), ptr("Go Dev"), ptr("Acme"), ptr("Paris"),
			ptr("Mission"), ptr("Build things"), ptr("650"), ptr("TJM"),
			[]string{"Go", "SQL"}, []string(nil),
			(*time.Time)(nil), &created, (*time.Time)(nil),
			ptr(int32(4)), ptr(true),
		)
	mock.ExpectQuery(`SELECT id::text, slug, (.+) FROM jobs ORDER BY created_at DESC`).WillReturnRows(rows)

	jobs, err := store.Fetch(context.Background(), source.AllColumns())
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	job := jobs[0]
	require.Equal(t, "17", job.ID)
	require.Equal(t, "go-dev-paris", job.Slug)
	require.Equal(t, "650", job.Salary)
	require.Equal(t, []string{"Go", "SQL"}, job.Requirements)
	require.Nil(t, job.Benefits)
	require.NotNil(t, job.CreatedAt)
	require.True(t, created.Equal(*job.CreatedAt))
	require.Nil(t, job.UpdatedAt)
	require.Equal(t, 4, job.Applicants)
	require.True(t, job.Featured)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchSitemapProjection(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock, "missions")
	require.NoError(t, err)

	updated := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	rows := pgxmock.NewRows([]string{"slug", "title", "location", "updated_at"}).
		AddRow(ptr("a-b"), ptr("A"), ptr("B"), &updated).
		AddRow((*string)(nil), ptr("Chef"), ptr("Nice"), (*time.Time)(nil))
	mock.ExpectQuery(`SELECT slug, title, location, updated_at FROM missions ORDER BY created_at DESC`).
		WillReturnRows(rows)

	jobs, err := store.Fetch(context.Background(), source.SitemapColumns())
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	require.Equal(t, "a-b", jobs[0].SlugOrDerived())
	require.Equal(t, "chef-nice", jobs[1].SlugOrDerived())
	require.Nil(t, jobs[1].UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchQueryError(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock, "")
	require.NoError(t, err)

	mock.ExpectQuery(`SELECT (.+) FROM jobs`).WillReturnError(errors.New("connection reset"))

	_, err = store.Fetch(context.Background(), source.AllColumns())
	require.Error(t, err)
	require.Contains(t, err.Error(), "query jobs")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFetchRejectsUnknownColumn(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock, "jobs")
	require.NoError(t, err)

	_, err = store.Fetch(context.Background(), source.Query{Columns: []string{"password"}})
	require.Error(t, err)

	_, err = store.Fetch(context.Background(), source.Query{OrderBy: "created_at; DROP TABLE jobs"})
	require.Error(t, err)
}

func TestNewStoreValidation(t *testing.T) {
	t.Parallel()

	_, err := NewStoreWithPool(nil, "jobs")
	require.Error(t, err)

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()
	_, err = NewStoreWithPool(mock, "jobs;--")
	require.Error(t, err)

	_, err = NewStore(context.Background(), Config{})
	require.Error(t, err)

	var nilStore *Store
	_, err = nilStore.Fetch(context.Background(), source.AllColumns())
	require.ErrorIs(t, err, source.ErrNotConfigured)
	nilStore.Close()
}

func TestPing(t *testing.T) {
	t.Parallel()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	store, err := NewStoreWithPool(mock, "jobs")
	require.NoError(t, err)

	mock.ExpectPing()
	require.NoError(t, store.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	err = store.Ping(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "ping postgres")
	require.NoError(t, mock.ExpectationsWereMet())

	var nilStore *Store
	require.ErrorIs(t, nilStore.Ping(context.Background()), source.ErrNotConfigured)
}
