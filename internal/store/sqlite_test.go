package store

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/Prakashmoharana1985/O-RAN/internal/registry"
	"github.com/Prakashmoharana1985/O-RAN/internal/testutil/testlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTemp(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "infocoord.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteStoreJobRoundTripKeepsTimestamps(t *testing.T) {
	testlog.Start(t)

	s := openTemp(t)
	ctx := context.Background()
	updated := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)
	job := registry.Job{
		ID: "job-1",
		JobInfo: registry.JobInfo{
			TypeID:            "type-1",
			Owner:             "owner",
			TargetURI:         "http://consumer/data",
			StatusCallbackURL: "http://consumer/status",
			JobData:           json.RawMessage(`{"filter":"x"}`),
		},
		CreatedAt:   updated.Add(-time.Hour),
		LastUpdated: updated,
	}
	require.NoError(t, s.SaveJob(ctx, job))

	job.Owner = "owner-2"
	require.NoError(t, s.SaveJob(ctx, job))

	jobs, err := s.LoadJobs(ctx)
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "owner-2", jobs[0].Owner)
	assert.True(t, updated.Equal(jobs[0].LastUpdated))
	assert.JSONEq(t, `{"filter":"x"}`, string(jobs[0].JobData))

	require.NoError(t, s.DeleteJob(ctx, "job-1"))
	jobs, err = s.LoadJobs(ctx)
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestSQLiteStoreSkipsCorruptRows(t *testing.T) {
	testlog.Start(t)

	s := openTemp(t)
	ctx := context.Background()
	require.NoError(t, s.SaveType(ctx, registry.CapabilityType{ID: "good", Schema: json.RawMessage(`{}`), Pinned: true}))
	_, err := s.db.ExecContext(ctx, `INSERT INTO types (id, payload, updated_at) VALUES ('bad', '{not json', '')`)
	require.NoError(t, err)

	types, err := s.LoadTypes(ctx)
	require.NoError(t, err)
	require.Len(t, types, 1)
	assert.Equal(t, "good", types[0].ID)
	assert.True(t, types[0].Pinned)

	require.NoError(t, s.DeleteType(ctx, "good"))
	types, err = s.LoadTypes(ctx)
	require.NoError(t, err)
	assert.Empty(t, types)
}

func TestOpenFallsBackToNopStore(t *testing.T) {
	testlog.Start(t)

	ctx := context.Background()
	_, ok := Open(ctx, "").(NopStore)
	assert.True(t, ok)

	missingDir := filepath.Join(t.TempDir(), "missing", "nested", "infocoord.db")
	_, ok = Open(ctx, missingDir).(NopStore)
	assert.True(t, ok)
}

func TestSQLiteStoreSaveErrorIsWrapped(t *testing.T) {
	testlog.Start(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS jobs")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS types")).WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)

	diskFull := errors.New("disk full")
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO jobs")).
		WithArgs("job-1", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(diskFull)

	err = s.SaveJob(context.Background(), registry.Job{ID: "job-1"})
	require.ErrorIs(t, err, diskFull)
	assert.Contains(t, err.Error(), `save jobs record "job-1"`)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLiteStoreMigrationFailure(t *testing.T) {
	testlog.Start(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS jobs")).WillReturnError(errors.New("read-only"))
	_, err = NewSQLiteStore(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "migrate jobs")
}

func TestSQLiteStoreLoadQueryError(t *testing.T) {
	testlog.Start(t)

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE").WillReturnResult(sqlmock.NewResult(0, 0))
	s, err := NewSQLiteStore(context.Background(), db)
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, payload FROM jobs")).WillReturnError(errors.New("locked"))
	_, err = s.LoadJobs(context.Background())
	require.Error(t, err)

	rows := sqlmock.NewRows([]string{"id", "payload"}).
		AddRow("a", `{"id":"a","type_id":"t"}`).
		AddRow("b", `garbage`)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, payload FROM jobs")).WillReturnRows(rows)
	jobs, err := s.LoadJobs(context.Background())
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "t", jobs[0].TypeID)
}
