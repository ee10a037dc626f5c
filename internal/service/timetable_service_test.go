package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campusplan/timetable-core/internal/dto"
	"github.com/campusplan/timetable-core/internal/models"
	"github.com/campusplan/timetable-core/internal/service"
	"github.com/campusplan/timetable-core/internal/snapshot"
	apperrors "github.com/campusplan/timetable-core/pkg/errors"
	"github.com/campusplan/timetable-core/pkg/metrics"
)

type fakeCourseSource struct{ courses []models.Course }

func (f fakeCourseSource) LoadActiveCourses(ctx context.Context) ([]models.Course, error) {
	return f.courses, nil
}

type fakeClassroomSource struct{ classrooms []models.Classroom }

func (f fakeClassroomSource) LoadActiveClassrooms(ctx context.Context) ([]models.Classroom, error) {
	return f.classrooms, nil
}

type fakeTeacherSource struct{}

func (fakeTeacherSource) LoadAvailability(ctx context.Context, ids []int64) (map[int64]models.TeacherAvailability, error) {
	out := map[int64]models.TeacherAvailability{}
	for _, id := range ids {
		out[id] = models.TeacherAvailability{TeacherID: id}
	}
	return out, nil
}

type fakeDepartmentSource struct{ ids map[int64]bool }

func (f fakeDepartmentSource) LoadDepartmentIDs(ctx context.Context) (map[int64]bool, error) {
	return f.ids, nil
}

type fakePersistence struct {
	committed []models.ScheduleItem
	err       error
}

func (f *fakePersistence) CommitSchedule(ctx context.Context, items []models.ScheduleItem) error {
	if f.err != nil {
		return f.err
	}
	f.committed = items
	return nil
}

func teacherPtr(id int64) *int64 { return &id }

func newTestLoader() *snapshot.Loader {
	course := models.Course{
		ID: 1, Category: models.CategoryCompulsory, Semester: models.SemesterFall, Level: 1,
		TeacherID:     teacherPtr(10),
		Sessions:      []models.Session{{Type: models.SessionTheoretical, Hours: 1}},
		DeclaredHours: 1,
		Offerings:     []models.DepartmentOffering{{DepartmentID: 100, StudentCount: 20}},
	}
	classroom := models.Classroom{ID: 5, Capacity: 30, Type: models.ClassroomTheoretical, Active: true}
	return snapshot.New(
		fakeCourseSource{courses: []models.Course{course}},
		fakeClassroomSource{classrooms: []models.Classroom{classroom}},
		fakeTeacherSource{},
		fakeDepartmentSource{ids: map[int64]bool{100: true}},
	)
}

func newTestService(persistence service.PersistenceRepository) *service.TimetableService {
	defaults := service.Defaults{
		Preset:              "default",
		MaxIterations:       50,
		TimeoutMs:           30000,
		OptimizationEnabled: true,
		ProposalTTL:         time.Minute,
	}
	return service.NewTimetableService(newTestLoader(), models.DefaultSettings(), persistence, defaults, nil, metrics.New())
}

func TestGenerateProducesScheduleAndCachesProposal(t *testing.T) {
	svc := newTestService(&fakePersistence{})

	result, err := svc.Generate(context.Background(), dto.GenerateOptionsRequest{})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Len(t, result.Schedules, 1)
	assert.NotEmpty(t, result.RunID)
	assert.Empty(t, result.UnscheduledCourses)
}

func TestGenerateRejectsInvalidOptions(t *testing.T) {
	svc := newTestService(&fakePersistence{})

	_, err := svc.Generate(context.Background(), dto.GenerateOptionsRequest{Preset: "bogus"})
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrInvalidOptions.Code, appErr.Code)
}

func TestSaveCommitsCachedProposal(t *testing.T) {
	persistence := &fakePersistence{}
	svc := newTestService(persistence)

	result, err := svc.Generate(context.Background(), dto.GenerateOptionsRequest{})
	require.NoError(t, err)

	err = svc.Save(context.Background(), dto.SaveRequest{RunID: result.RunID})
	require.NoError(t, err)
	assert.Len(t, persistence.committed, 1)
}

func TestSaveRejectsUnknownRunID(t *testing.T) {
	svc := newTestService(&fakePersistence{})

	err := svc.Save(context.Background(), dto.SaveRequest{RunID: "does-not-exist"})
	require.Error(t, err)
	var appErr *apperrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperrors.ErrNotFound.Code, appErr.Code)
}
