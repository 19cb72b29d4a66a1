package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTeacherMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestTeacherRepositoryListActiveAttachesSubjects(t *testing.T) {
	db, mock, cleanup := newTeacherMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	teacherRows := sqlmock.NewRows([]string{"id", "email", "full_name", "phone", "active", "created_at", "updated_at"}).
		AddRow("t1", "asha@school.test", "Asha Rao", nil, true, now, now).
		AddRow("t2", "ben@school.test", "Ben Osei", nil, true, now, now)
	mock.ExpectQuery("SELECT id, email, full_name").
		WillReturnRows(teacherRows)

	subjectRows := sqlmock.NewRows([]string{"teacher_id", "subject_id"}).
		AddRow("t1", "math").
		AddRow("t1", "physics").
		AddRow("t2", "science")
	mock.ExpectQuery("SELECT teacher_id, subject_id FROM teacher_subjects").
		WillReturnRows(subjectRows)

	teachers, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	require.Len(t, teachers, 2)

	assert.Equal(t, []string{"math", "physics"}, teachers[0].SubjectIDs, "position order preserved")
	assert.Equal(t, []string{"science"}, teachers[1].SubjectIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryListActiveEmptyRosterSkipsSubjectQuery(t *testing.T) {
	db, mock, cleanup := newTeacherMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery("SELECT id, email, full_name").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "phone", "active", "created_at", "updated_at"}))

	teachers, err := repo.ListActive(context.Background())
	require.NoError(t, err)
	assert.Empty(t, teachers)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newTeacherMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	now := time.Now()
	mock.ExpectQuery("SELECT id, email, full_name").
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "full_name", "phone", "active", "created_at", "updated_at"}).
			AddRow("t1", "asha@school.test", "Asha Rao", nil, true, now, now))
	mock.ExpectQuery("SELECT subject_id FROM teacher_subjects").
		WithArgs("t1").
		WillReturnRows(sqlmock.NewRows([]string{"subject_id"}).AddRow("math"))

	teacher, err := repo.FindByID(context.Background(), "t1")
	require.NoError(t, err)
	assert.Equal(t, "Asha Rao", teacher.FullName)
	assert.Equal(t, []string{"math"}, teacher.SubjectIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTeacherRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newTeacherMock(t)
	defer cleanup()
	repo := NewTeacherRepository(db)

	mock.ExpectQuery("SELECT id, email, full_name").
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
