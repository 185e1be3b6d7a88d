package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/acadplan-api/internal/models"
)

func newResultRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestResultRepositoryListByModule(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	rows := sqlmock.NewRows([]string{"id", "module_id", "student_id", "cc_score", "exam_score", "final_score", "status", "mention", "presences", "absences", "attendance_rate", "created_at", "updated_at", "module_code", "module_name", "student_name"}).
		AddRow("r1", "m1", "s1", 12.5, 14.0, 13.4, "VALIDATED", "Bien", 7, 3, 70.0, time.Now(), time.Now(), "INF101", "Algorithmique", "Student One")
	mock.ExpectQuery("SELECT r.id, r.module_id, .+ FROM results r").
		WithArgs("m1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM results r")).
		WithArgs("m1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	list, total, err := repo.List(context.Background(), models.ResultFilter{ModuleID: "m1"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, 70.0, list[0].AttendanceRate)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("INSERT INTO results").
		WillReturnResult(sqlmock.NewResult(1, 1))

	result := &models.Result{ModuleID: "m1", StudentID: "s1", Status: models.ResultStatusPending, Presences: 7, Absences: 3, AttendanceRate: 70}
	require.NoError(t, repo.Create(context.Background(), result))
	assert.NotEmpty(t, result.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryUpdateWritesAttendanceRate(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("UPDATE results SET cc_score = .+, attendance_rate = ").
		WillReturnResult(sqlmock.NewResult(0, 1))

	result := &models.Result{ID: "r1", ModuleID: "m1", StudentID: "s1", Status: models.ResultStatusPending, Presences: 9, Absences: 1, AttendanceRate: 90}
	require.NoError(t, repo.Update(context.Background(), result))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResultRepositoryDeleteUnknownID(t *testing.T) {
	db, mock, cleanup := newResultRepoMock(t)
	defer cleanup()
	repo := NewResultRepository(db)

	mock.ExpectExec("DELETE FROM results WHERE id = ").
		WithArgs("missing").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), "missing"), sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
