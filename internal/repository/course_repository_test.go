package repository

import (
	"context"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCourseRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestLoadActiveCoursesAssemblesNestedData(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	courseRows := sqlmock.NewRows([]string{"id", "code", "name", "faculty_id", "level", "category", "semester", "active", "teacher_id", "capacity_margin_percent", "declared_hours"}).
		AddRow(1, "CS101", "Intro", 10, 1, "compulsory", "fall", true, int64(7), 0, 2)
	mock.ExpectQuery("SELECT id, code, name, faculty_id, level, category, semester, active, teacher_id, capacity_margin_percent, declared_hours FROM courses").
		WillReturnRows(courseRows)

	sessionRows := sqlmock.NewRows([]string{"course_id", "session_type", "hours"}).
		AddRow(1, "theoretical", 2)
	mock.ExpectQuery("SELECT course_id, session_type, hours FROM course_sessions").
		WithArgs(int64(1)).
		WillReturnRows(sessionRows)

	offeringRows := sqlmock.NewRows([]string{"course_id", "department_id", "student_count"}).
		AddRow(1, 100, 30)
	mock.ExpectQuery("SELECT course_id, department_id, student_count FROM course_offerings").
		WithArgs(int64(1)).
		WillReturnRows(offeringRows)

	hardcodedRows := sqlmock.NewRows([]string{"course_id", "session_type", "day", "start_minute", "end_minute", "classroom_id"})
	mock.ExpectQuery("SELECT course_id, session_type, day, start_minute, end_minute, classroom_id FROM course_hardcoded_placements").
		WithArgs(int64(1)).
		WillReturnRows(hardcodedRows)

	courses, err := repo.LoadActiveCourses(context.Background())
	require.NoError(t, err)
	require.Len(t, courses, 1)

	course := courses[0]
	assert.Equal(t, "CS101", course.Code)
	require.Len(t, course.Sessions, 1)
	assert.Equal(t, 2, course.Sessions[0].Hours)
	require.Len(t, course.Offerings, 1)
	assert.Equal(t, 30, course.Offerings[0].StudentCount)
	assert.Empty(t, course.Hardcoded)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoadActiveCoursesReturnsNilWhenEmpty(t *testing.T) {
	db, mock, cleanup := newCourseRepoMock(t)
	defer cleanup()
	repo := NewCourseRepository(db)

	mock.ExpectQuery("SELECT id, code, name, faculty_id, level, category, semester, active, teacher_id, capacity_margin_percent, declared_hours FROM courses").
		WillReturnRows(sqlmock.NewRows([]string{"id", "code", "name", "faculty_id", "level", "category", "semester", "active", "teacher_id", "capacity_margin_percent", "declared_hours"}))

	courses, err := repo.LoadActiveCourses(context.Background())
	require.NoError(t, err)
	assert.Nil(t, courses)
	assert.NoError(t, mock.ExpectationsWereMet())
}
