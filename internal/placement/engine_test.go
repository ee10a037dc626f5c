package placement_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/timetable-core/internal/conflictindex"
	"github.com/campusplan/timetable-core/internal/grid"
	"github.com/campusplan/timetable-core/internal/models"
	"github.com/campusplan/timetable-core/internal/placement"
	"github.com/campusplan/timetable-core/internal/snapshot"
)

func teacherPtr(id int64) *int64 { return &id }

func buildSnapshot(t *testing.T, settings models.SystemSettings, courses []models.Course, classrooms []models.Classroom, availability map[int64]models.TeacherAvailability) *snapshot.Snapshot {
	t.Helper()
	blocks, err := grid.Generate(settings)
	require.NoError(t, err)

	placeableSet := make(map[models.Day]map[models.TimeRange]bool)
	for _, b := range grid.Placeable(blocks) {
		if placeableSet[b.Day] == nil {
			placeableSet[b.Day] = map[models.TimeRange]bool{}
		}
		placeableSet[b.Day][b.Range] = true
	}

	courseByID := map[int64]models.Course{}
	for _, c := range courses {
		courseByID[c.ID] = c
	}
	classroomByID := map[int64]models.Classroom{}
	for _, c := range classrooms {
		classroomByID[c.ID] = c
	}

	return &snapshot.Snapshot{
		Courses:             courseByID,
		Classrooms:          classroomByID,
		TeacherAvailability: availability,
		Grid:                blocks,
		PlaceableSet:        placeableSet,
	}
}

func TestRunPlacesSimpleSession(t *testing.T) {
	settings := models.DefaultSettings()
	course := models.Course{
		ID: 1, Category: models.CategoryCompulsory, Semester: models.SemesterFall, Level: 1,
		TeacherID:     teacherPtr(10),
		Sessions:      []models.Session{{Type: models.SessionTheoretical, Hours: 1}},
		DeclaredHours: 1,
		Offerings:     []models.DepartmentOffering{{DepartmentID: 100, StudentCount: 20}},
	}
	classroom := models.Classroom{ID: 5, Capacity: 30, Type: models.ClassroomTheoretical, Active: true}
	snap := buildSnapshot(t, settings, []models.Course{course}, []models.Classroom{classroom}, nil)

	engine := placement.New(settings)
	idx := conflictindex.New(settings.SlotDurationMinutes)

	result, err := engine.Run(context.Background(), snap, idx)
	require.NoError(t, err)
	require.Len(t, result.Items, 1)
	assert.Empty(t, result.Unplaceable)
	assert.Equal(t, int64(5), result.Items[0].ClassroomID)
}

func TestRunReportsUnplaceableWhenNoClassroomFits(t *testing.T) {
	settings := models.DefaultSettings()
	course := models.Course{
		ID: 1, Category: models.CategoryElective, Semester: models.SemesterFall, Level: 1,
		Sessions:      []models.Session{{Type: models.SessionLab, Hours: 1}},
		DeclaredHours: 1,
		Offerings:     []models.DepartmentOffering{{DepartmentID: 100, StudentCount: 20}},
	}
	classroom := models.Classroom{ID: 5, Capacity: 30, Type: models.ClassroomTheoretical, Active: true}
	snap := buildSnapshot(t, settings, []models.Course{course}, []models.Classroom{classroom}, nil)

	engine := placement.New(settings)
	idx := conflictindex.New(settings.SlotDurationMinutes)

	result, err := engine.Run(context.Background(), snap, idx)
	require.NoError(t, err)
	assert.Empty(t, result.Items)
	require.Len(t, result.Unplaceable, 1)
	assert.Equal(t, int64(1), result.Unplaceable[0].CourseID)
}

func TestRunAbortsOnHardcodedTeacherConflict(t *testing.T) {
	settings := models.DefaultSettings()
	classroomA := int64(5)
	classroomB := int64(6)
	rng := models.TimeRange{Start: 9 * 60, End: 10 * 60}
	courseA := models.Course{
		ID: 1, Category: models.CategoryCompulsory, Semester: models.SemesterFall, Level: 1,
		TeacherID: teacherPtr(10),
		Hardcoded: []models.HardcodedPlacement{{CourseID: 1, SessionType: models.SessionTheoretical, Day: models.Pazartesi, Range: rng, ClassroomID: &classroomA}},
	}
	courseB := models.Course{
		ID: 2, Category: models.CategoryCompulsory, Semester: models.SemesterFall, Level: 1,
		TeacherID: teacherPtr(10),
		Hardcoded: []models.HardcodedPlacement{{CourseID: 2, SessionType: models.SessionTheoretical, Day: models.Pazartesi, Range: rng, ClassroomID: &classroomB}},
	}
	classrooms := []models.Classroom{
		{ID: 5, Capacity: 30, Type: models.ClassroomTheoretical, Active: true},
		{ID: 6, Capacity: 30, Type: models.ClassroomTheoretical, Active: true},
	}
	snap := buildSnapshot(t, settings, []models.Course{courseA, courseB}, classrooms, nil)

	engine := placement.New(settings)
	idx := conflictindex.New(settings.SlotDurationMinutes)

	_, err := engine.Run(context.Background(), snap, idx)
	require.Error(t, err)
	var hcErr *placement.HardcodedConflictError
	require.ErrorAs(t, err, &hcErr)
	assert.Equal(t, string(conflictindex.TeacherConflict), hcErr.Kind)
}

func TestRunSplitsMultiHourSessionWhenNoSingleWindowFits(t *testing.T) {
	settings := models.DefaultSettings()
	// Only classroom 5 exists, and on every weekday it's occupied 09:00-17:00,
	// leaving a single free hour at 08:00 and one at 17:00, forcing a 2-hour
	// session to split.
	busy := models.TimeRange{Start: 9 * 60, End: 17 * 60}
	blockerTeacher := teacherPtr(99)
	blocker := models.Course{ID: 2, Category: models.CategoryElective, TeacherID: blockerTeacher}
	for _, day := range models.Weekdays {
		blocker.Hardcoded = append(blocker.Hardcoded, models.HardcodedPlacement{CourseID: 2, SessionType: models.SessionTheoretical, Day: day, Range: busy, ClassroomID: int64Ptr(5)})
	}

	course := models.Course{
		ID: 1, Category: models.CategoryElective, Semester: models.SemesterFall, Level: 1,
		Sessions:      []models.Session{{Type: models.SessionTheoretical, Hours: 2}},
		DeclaredHours: 2,
		Offerings:     []models.DepartmentOffering{{DepartmentID: 100, StudentCount: 10}},
	}
	classroom := models.Classroom{ID: 5, Capacity: 30, Type: models.ClassroomTheoretical, Active: true}
	snap := buildSnapshot(t, settings, []models.Course{blocker, course}, []models.Classroom{classroom}, nil)

	engine := placement.New(settings)
	idx := conflictindex.New(settings.SlotDurationMinutes)

	result, err := engine.Run(context.Background(), snap, idx)
	require.NoError(t, err)
	// one hardcoded blocker item + two 1-hour split items for course 1
	var courseItems int
	for _, item := range result.Items {
		if item.CourseID == 1 {
			courseItems++
			assert.Equal(t, 1, item.SessionHours)
		}
	}
	assert.Equal(t, 2, courseItems)
	assert.Empty(t, result.Unplaceable)
}

func TestRunStopsOnCancelledContext(t *testing.T) {
	settings := models.DefaultSettings()
	course := models.Course{
		ID: 1, Category: models.CategoryElective,
		Sessions:      []models.Session{{Type: models.SessionTheoretical, Hours: 1}},
		DeclaredHours: 1,
		Offerings:     []models.DepartmentOffering{{DepartmentID: 100, StudentCount: 10}},
	}
	classroom := models.Classroom{ID: 5, Capacity: 30, Type: models.ClassroomTheoretical, Active: true}
	snap := buildSnapshot(t, settings, []models.Course{course}, []models.Classroom{classroom}, nil)

	engine := placement.New(settings)
	idx := conflictindex.New(settings.SlotDurationMinutes)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	time.Sleep(time.Millisecond)

	result, err := engine.Run(ctx, snap, idx)
	require.NoError(t, err)
	require.Len(t, result.Warnings, 1)
	assert.Equal(t, "Cancelled", result.Warnings[0].Kind)
	assert.Empty(t, result.Items)
}

func int64Ptr(v int64) *int64 { return &v }
