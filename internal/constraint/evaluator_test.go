package constraint_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/campusplan/timetable-core/internal/conflictindex"
	"github.com/campusplan/timetable-core/internal/constraint"
	"github.com/campusplan/timetable-core/internal/models"
)

func teacherPtr(id int64) *int64 { return &id }

func placeableSet(day models.Day, ranges ...models.TimeRange) map[models.Day]map[models.TimeRange]bool {
	set := map[models.Day]map[models.TimeRange]bool{day: {}}
	for _, r := range ranges {
		set[day][r] = true
	}
	return set
}

func baseCourse() models.Course {
	return models.Course{
		ID: 1, Category: models.CategoryCompulsory, Semester: models.SemesterFall, Level: 1,
		TeacherID: teacherPtr(10),
		Offerings: []models.DepartmentOffering{{DepartmentID: 100, StudentCount: 20}},
	}
}

func baseClassroom() models.Classroom {
	return models.Classroom{ID: 5, Capacity: 30, Type: models.ClassroomTheoretical, Active: true}
}

func TestEvaluateAcceptsCandidateSatisfyingAllPredicates(t *testing.T) {
	settings := models.DefaultSettings()
	idx := conflictindex.New(settings.SlotDurationMinutes)
	evaluator := constraint.New(settings, idx)

	r := models.TimeRange{Start: 480, End: 540}
	candidate := constraint.Candidate{
		Course: baseCourse(), Classroom: baseClassroom(),
		Day: models.Day(0), Range: r, SessionType: models.SessionTheoretical,
		PlaceableSet: placeableSet(models.Day(0), r),
	}

	result := evaluator.Evaluate(candidate)
	assert.True(t, result.Accepted)
	assert.Equal(t, constraint.RejectNone, result.Rejection)
}

func TestEvaluateRejectsOutsideGrid(t *testing.T) {
	settings := models.DefaultSettings()
	idx := conflictindex.New(settings.SlotDurationMinutes)
	evaluator := constraint.New(settings, idx)

	r := models.TimeRange{Start: 480, End: 540}
	candidate := constraint.Candidate{
		Course: baseCourse(), Classroom: baseClassroom(),
		Day: models.Day(0), Range: r, SessionType: models.SessionTheoretical,
		PlaceableSet: placeableSet(models.Day(0)), // r not marked placeable
	}

	result := evaluator.Evaluate(candidate)
	assert.False(t, result.Accepted)
	assert.Equal(t, constraint.RejectGridMembership, result.Rejection)
}

func TestEvaluateRejectsTeacherUnavailable(t *testing.T) {
	settings := models.DefaultSettings()
	idx := conflictindex.New(settings.SlotDurationMinutes)
	evaluator := constraint.New(settings, idx)

	r := models.TimeRange{Start: 480, End: 540}
	teacher := &models.TeacherAvailability{TeacherID: 10, Hours: map[models.Day][]models.TimeRange{
		models.Day(0): {{Start: 600, End: 660}},
	}}
	candidate := constraint.Candidate{
		Course: baseCourse(), Classroom: baseClassroom(), Teacher: teacher,
		Day: models.Day(0), Range: r, SessionType: models.SessionTheoretical,
		PlaceableSet: placeableSet(models.Day(0), r),
	}

	result := evaluator.Evaluate(candidate)
	assert.False(t, result.Accepted)
	assert.Equal(t, constraint.RejectTeacherUnavailable, result.Rejection)
}

func TestEvaluateRejectsTypeMismatch(t *testing.T) {
	settings := models.DefaultSettings()
	idx := conflictindex.New(settings.SlotDurationMinutes)
	evaluator := constraint.New(settings, idx)

	r := models.TimeRange{Start: 480, End: 540}
	classroom := baseClassroom()
	classroom.Type = models.ClassroomLab
	candidate := constraint.Candidate{
		Course: baseCourse(), Classroom: classroom,
		Day: models.Day(0), Range: r, SessionType: models.SessionTheoretical,
		PlaceableSet: placeableSet(models.Day(0), r),
	}

	result := evaluator.Evaluate(candidate)
	assert.False(t, result.Accepted)
	assert.Equal(t, constraint.RejectTypeMismatch, result.Rejection)
}

func TestEvaluateRejectsCapacityShortageRespectingLargerMargin(t *testing.T) {
	settings := models.DefaultSettings()
	settings.CapacityMarginEnabled = true
	settings.CapacityMarginPercent = 10
	idx := conflictindex.New(settings.SlotDurationMinutes)
	evaluator := constraint.New(settings, idx)

	course := baseCourse()
	course.Offerings = []models.DepartmentOffering{{DepartmentID: 100, StudentCount: 35}}
	classroom := baseClassroom()
	classroom.Capacity = 30 // 30*1.1 = 33 < 35, still insufficient

	r := models.TimeRange{Start: 480, End: 540}
	candidate := constraint.Candidate{
		Course: course, Classroom: classroom,
		Day: models.Day(0), Range: r, SessionType: models.SessionTheoretical,
		PlaceableSet: placeableSet(models.Day(0), r),
	}

	result := evaluator.Evaluate(candidate)
	assert.False(t, result.Accepted)
	assert.Equal(t, constraint.RejectCapacity, result.Rejection)
}

func TestEvaluateAppliesLargerOfGlobalOrCourseMargin(t *testing.T) {
	settings := models.DefaultSettings()
	settings.CapacityMarginEnabled = true
	settings.CapacityMarginPercent = 5
	idx := conflictindex.New(settings.SlotDurationMinutes)
	evaluator := constraint.New(settings, idx)

	course := baseCourse()
	course.Offerings = []models.DepartmentOffering{{DepartmentID: 100, StudentCount: 33}}
	course.CapacityMarginPercent = 20 // larger than global 5%: 30*1.2 = 36 >= 33
	classroom := baseClassroom()
	classroom.Capacity = 30

	r := models.TimeRange{Start: 480, End: 540}
	candidate := constraint.Candidate{
		Course: course, Classroom: classroom,
		Day: models.Day(0), Range: r, SessionType: models.SessionTheoretical,
		PlaceableSet: placeableSet(models.Day(0), r),
	}

	result := evaluator.Evaluate(candidate)
	assert.True(t, result.Accepted)
}

func TestEvaluateReportsPriorityMissWithoutRejecting(t *testing.T) {
	settings := models.DefaultSettings()
	idx := conflictindex.New(settings.SlotDurationMinutes)
	evaluator := constraint.New(settings, idx)

	classroom := baseClassroom()
	priorityDept := int64(999)
	classroom.PriorityDepartmentID = &priorityDept

	r := models.TimeRange{Start: 480, End: 540}
	candidate := constraint.Candidate{
		Course: baseCourse(), Classroom: classroom,
		Day: models.Day(0), Range: r, SessionType: models.SessionTheoretical,
		PlaceableSet: placeableSet(models.Day(0), r),
	}

	result := evaluator.Evaluate(candidate)
	assert.True(t, result.Accepted)
	assert.True(t, result.PriorityMiss)
}

func TestEvaluateRejectsConflictFromIndex(t *testing.T) {
	settings := models.DefaultSettings()
	idx := conflictindex.New(settings.SlotDurationMinutes)
	evaluator := constraint.New(settings, idx)

	r := models.TimeRange{Start: 480, End: 540}
	course := baseCourse()
	idx.Add(models.ScheduleItem{
		CourseID: course.ID, ClassroomID: 5, Day: models.Day(0), Range: r,
		SessionType: models.SessionTheoretical, SessionHours: 1,
	}, course)

	otherCourse := baseCourse()
	otherCourse.ID = 2
	otherCourse.TeacherID = teacherPtr(20)
	otherCourse.Offerings = []models.DepartmentOffering{{DepartmentID: 200, StudentCount: 20}}
	candidate := constraint.Candidate{
		Course: otherCourse, Classroom: baseClassroom(),
		Day: models.Day(0), Range: r, SessionType: models.SessionTheoretical,
		PlaceableSet: placeableSet(models.Day(0), r),
	}

	result := evaluator.Evaluate(candidate)
	assert.False(t, result.Accepted)
	assert.Equal(t, constraint.RejectClassroomConflict, result.Rejection)
}
