package snapshot_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/timetable-core/internal/models"
	"github.com/campusplan/timetable-core/internal/snapshot"
)

type fakeCourses struct{ courses []models.Course }

func (f fakeCourses) LoadActiveCourses(ctx context.Context) ([]models.Course, error) {
	return f.courses, nil
}

type fakeClassrooms struct{ classrooms []models.Classroom }

func (f fakeClassrooms) LoadActiveClassrooms(ctx context.Context) ([]models.Classroom, error) {
	return f.classrooms, nil
}

type fakeTeachers struct{ availability map[int64]models.TeacherAvailability }

func (f fakeTeachers) LoadAvailability(ctx context.Context, ids []int64) (map[int64]models.TeacherAvailability, error) {
	out := map[int64]models.TeacherAvailability{}
	for _, id := range ids {
		if a, ok := f.availability[id]; ok {
			out[id] = a
		}
	}
	return out, nil
}

type fakeDepartments struct{ ids map[int64]bool }

func (f fakeDepartments) LoadDepartmentIDs(ctx context.Context) (map[int64]bool, error) {
	return f.ids, nil
}

func teacherPtr(id int64) *int64 { return &id }

func baseCourse() models.Course {
	return models.Course{
		ID: 1, Code: "CS101", Category: models.CategoryCompulsory, Semester: models.SemesterFall, Level: 1,
		TeacherID:     teacherPtr(10),
		Sessions:      []models.Session{{Type: models.SessionTheoretical, Hours: 2}},
		DeclaredHours: 2,
		Offerings:     []models.DepartmentOffering{{DepartmentID: 100, StudentCount: 20}},
	}
}

func baseClassroom() models.Classroom {
	return models.Classroom{ID: 5, Capacity: 30, Type: models.ClassroomTheoretical, Active: true}
}

func TestLoadSucceedsForConsistentInput(t *testing.T) {
	loader := snapshot.New(
		fakeCourses{courses: []models.Course{baseCourse()}},
		fakeClassrooms{classrooms: []models.Classroom{baseClassroom()}},
		fakeTeachers{availability: map[int64]models.TeacherAvailability{10: {TeacherID: 10}}},
		fakeDepartments{ids: map[int64]bool{100: true}},
	)

	snap, err := loader.Load(context.Background(), models.DefaultSettings())
	require.NoError(t, err)
	assert.Len(t, snap.Courses, 1)
	assert.Len(t, snap.Classrooms, 1)
	assert.NotEmpty(t, snap.PlaceableSet)
}

func TestLoadRejectsSessionHoursMismatch(t *testing.T) {
	course := baseCourse()
	course.DeclaredHours = 3 // sessions only sum to 2
	loader := snapshot.New(
		fakeCourses{courses: []models.Course{course}},
		fakeClassrooms{classrooms: []models.Classroom{baseClassroom()}},
		fakeTeachers{availability: map[int64]models.TeacherAvailability{10: {TeacherID: 10}}},
		nil,
	)

	_, err := loader.Load(context.Background(), models.DefaultSettings())
	require.Error(t, err)
	var ie *snapshot.InconsistentError
	require.ErrorAs(t, err, &ie)
	require.Len(t, ie.Issues, 1)
	assert.Contains(t, ie.Issues[0], "declared hours")
}

func TestLoadRejectsMissingTeacher(t *testing.T) {
	loader := snapshot.New(
		fakeCourses{courses: []models.Course{baseCourse()}},
		fakeClassrooms{classrooms: []models.Classroom{baseClassroom()}},
		fakeTeachers{availability: map[int64]models.TeacherAvailability{}},
		nil,
	)

	_, err := loader.Load(context.Background(), models.DefaultSettings())
	require.Error(t, err)
	var ie *snapshot.InconsistentError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Issues[0], "referenced teacher")
}

func TestLoadRejectsUnknownDepartment(t *testing.T) {
	loader := snapshot.New(
		fakeCourses{courses: []models.Course{baseCourse()}},
		fakeClassrooms{classrooms: []models.Classroom{baseClassroom()}},
		fakeTeachers{availability: map[int64]models.TeacherAvailability{10: {TeacherID: 10}}},
		fakeDepartments{ids: map[int64]bool{999: true}},
	)

	_, err := loader.Load(context.Background(), models.DefaultSettings())
	require.Error(t, err)
	var ie *snapshot.InconsistentError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Issues[0], "referenced department")
}

func TestLoadRejectsHardcodedPlacementOutsideGrid(t *testing.T) {
	course := baseCourse()
	course.Hardcoded = []models.HardcodedPlacement{{
		CourseID: 1, SessionType: models.SessionTheoretical, Day: models.Pazartesi,
		Range: models.TimeRange{Start: 5 * 60, End: 6 * 60}, // before DayStart of 08:00
	}}
	loader := snapshot.New(
		fakeCourses{courses: []models.Course{course}},
		fakeClassrooms{classrooms: []models.Classroom{baseClassroom()}},
		fakeTeachers{availability: map[int64]models.TeacherAvailability{10: {TeacherID: 10}}},
		nil,
	)

	_, err := loader.Load(context.Background(), models.DefaultSettings())
	require.Error(t, err)
	var ie *snapshot.InconsistentError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Issues[0], "not inside the day's block grid")
}

func TestLoadRejectsNoCompatibleClassroomForSessionType(t *testing.T) {
	course := baseCourse()
	course.Sessions = []models.Session{{Type: models.SessionLab, Hours: 2}}
	loader := snapshot.New(
		fakeCourses{courses: []models.Course{course}},
		fakeClassrooms{classrooms: []models.Classroom{baseClassroom()}}, // theoretical only
		fakeTeachers{availability: map[int64]models.TeacherAvailability{10: {TeacherID: 10}}},
		nil,
	)

	_, err := loader.Load(context.Background(), models.DefaultSettings())
	require.Error(t, err)
	var ie *snapshot.InconsistentError
	require.ErrorAs(t, err, &ie)
	assert.Contains(t, ie.Issues[0], "no active classroom of a compatible type")
}

func TestLoadPropagatesGridErrors(t *testing.T) {
	loader := snapshot.New(
		fakeCourses{courses: nil},
		fakeClassrooms{classrooms: nil},
		fakeTeachers{availability: nil},
		nil,
	)
	bad := models.DefaultSettings()
	bad.SlotDurationMinutes = 0

	_, err := loader.Load(context.Background(), bad)
	require.Error(t, err)
	var ie *snapshot.InconsistentError
	assert.False(t, errors.As(err, &ie))
}
