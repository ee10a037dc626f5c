// Package snapshot builds the Input Snapshot (spec §4.B): a frozen,
// validated view of active courses and classrooms the solver consumes.
// Nothing here mutates its sources; the snapshot is taken once, at
// generation start, and never re-read mid-generation (§5).
package snapshot

import (
	"context"
	"fmt"
	"sort"

	"github.com/campusplan/timetable-core/internal/grid"
	"github.com/campusplan/timetable-core/internal/models"
	apperrors "github.com/campusplan/timetable-core/pkg/errors"
)

// CourseSource loads the active courses a generation run considers, each
// already carrying its sessions, department offerings, and hardcoded
// placements.
type CourseSource interface {
	LoadActiveCourses(ctx context.Context) ([]models.Course, error)
}

// ClassroomSource loads the active classrooms a generation run considers.
type ClassroomSource interface {
	LoadActiveClassrooms(ctx context.Context) ([]models.Classroom, error)
}

// TeacherAvailabilitySource resolves per-teacher availability windows for
// the given teacher ids.
type TeacherAvailabilitySource interface {
	LoadAvailability(ctx context.Context, teacherIDs []int64) (map[int64]models.TeacherAvailability, error)
}

// DepartmentSource reports the universe of valid department ids, used to
// validate department offering references.
type DepartmentSource interface {
	LoadDepartmentIDs(ctx context.Context) (map[int64]bool, error)
}

// Snapshot is the frozen, indexed view the solver consumes.
type Snapshot struct {
	Courses             map[int64]models.Course
	Classrooms          map[int64]models.Classroom
	TeacherAvailability map[int64]models.TeacherAvailability
	Grid                []models.Block
	PlaceableSet        map[models.Day]map[models.TimeRange]bool
}

// InconsistentError carries every offending entity id discovered while
// validating the snapshot (§4.B: "a list of offending entity ids").
type InconsistentError struct {
	Issues []string
}

func (e *InconsistentError) Error() string {
	if len(e.Issues) == 0 {
		return "input snapshot is inconsistent"
	}
	return fmt.Sprintf("input snapshot is inconsistent: %v", e.Issues)
}

// Loader assembles and validates a Snapshot.
type Loader struct {
	courses     CourseSource
	classrooms  ClassroomSource
	teachers    TeacherAvailabilitySource
	departments DepartmentSource
}

// New constructs a Loader from its collaborators.
func New(courses CourseSource, classrooms ClassroomSource, teachers TeacherAvailabilitySource, departments DepartmentSource) *Loader {
	return &Loader{courses: courses, classrooms: classrooms, teachers: teachers, departments: departments}
}

// Load reads active courses and classrooms, resolves teacher availability,
// derives the time grid from settings, and validates every invariant of
// §4.B. On any violation it returns apperrors.ErrInputInconsistent wrapping
// an *InconsistentError and the solver does not run.
func (l *Loader) Load(ctx context.Context, settings models.SystemSettings) (*Snapshot, error) {
	blocks, err := grid.Generate(settings)
	if err != nil {
		return nil, err
	}

	courses, err := l.courses.LoadActiveCourses(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load active courses")
	}
	classrooms, err := l.classrooms.LoadActiveClassrooms(ctx)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load active classrooms")
	}

	teacherIDs := collectTeacherIDs(courses)
	availability := map[int64]models.TeacherAvailability{}
	if l.teachers != nil && len(teacherIDs) > 0 {
		availability, err = l.teachers.LoadAvailability(ctx, teacherIDs)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load teacher availability")
		}
	}

	var departmentIDs map[int64]bool
	if l.departments != nil {
		departmentIDs, err = l.departments.LoadDepartmentIDs(ctx)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrInternal.Code, apperrors.ErrInternal.Status, "failed to load department ids")
		}
	}

	classroomByID := make(map[int64]models.Classroom, len(classrooms))
	for _, c := range classrooms {
		classroomByID[c.ID] = c
	}

	placeable := grid.Placeable(blocks)
	placeableSet := make(map[models.Day]map[models.TimeRange]bool, len(models.Weekdays))
	for _, b := range placeable {
		if placeableSet[b.Day] == nil {
			placeableSet[b.Day] = make(map[models.TimeRange]bool)
		}
		placeableSet[b.Day][b.Range] = true
	}

	issues := make([]string, 0)
	courseByID := make(map[int64]models.Course, len(courses))
	requiredTypes := map[models.SessionType]bool{}

	for _, course := range courses {
		courseByID[course.ID] = course

		sum := 0
		for i, s := range course.Sessions {
			if s.Hours < 1 {
				issues = append(issues, fmt.Sprintf("course %d session %d: hours must be >= 1", course.ID, i))
			}
			sum += s.Hours
			requiredTypes[s.Type] = true
		}
		if sum != course.DeclaredHours {
			issues = append(issues, fmt.Sprintf("course %d: declared hours %d does not match sum of session hours %d", course.ID, course.DeclaredHours, sum))
		}

		if course.TeacherID != nil {
			if _, ok := availability[*course.TeacherID]; !ok {
				issues = append(issues, fmt.Sprintf("course %d: referenced teacher %d does not exist", course.ID, *course.TeacherID))
			}
		}

		if departmentIDs != nil {
			for _, o := range course.Offerings {
				if !departmentIDs[o.DepartmentID] {
					issues = append(issues, fmt.Sprintf("course %d: referenced department %d does not exist", course.ID, o.DepartmentID))
				}
			}
		}

		for i, hp := range course.Hardcoded {
			if hp.ClassroomID != nil {
				if _, ok := classroomByID[*hp.ClassroomID]; !ok {
					issues = append(issues, fmt.Sprintf("course %d hardcoded placement %d: referenced classroom %d does not exist", course.ID, i, *hp.ClassroomID))
				}
			}
			subBlocks := hp.Range.SubBlocks(settings.SlotDurationMinutes)
			if len(subBlocks) == 0 {
				issues = append(issues, fmt.Sprintf("course %d hardcoded placement %d: range %s is not an integer multiple of the slot duration", course.ID, i, hp.Range))
				continue
			}
			for _, block := range subBlocks {
				if !placeableSet[hp.Day][block] {
					issues = append(issues, fmt.Sprintf("course %d hardcoded placement %d: range %s is not inside the day's block grid", course.ID, i, hp.Range))
					break
				}
			}
		}
	}

	for sessionType := range requiredTypes {
		if !hasCompatibleClassroom(classrooms, sessionType) {
			issues = append(issues, fmt.Sprintf("no active classroom of a compatible type exists for session type %q", sessionType))
		}
	}

	if len(issues) > 0 {
		sort.Strings(issues)
		return nil, apperrors.Wrap(&InconsistentError{Issues: issues}, apperrors.ErrInputInconsistent.Code, apperrors.ErrInputInconsistent.Status, "input snapshot failed validation")
	}

	return &Snapshot{
		Courses:             courseByID,
		Classrooms:          classroomByID,
		TeacherAvailability: availability,
		Grid:                blocks,
		PlaceableSet:        placeableSet,
	}, nil
}

func collectTeacherIDs(courses []models.Course) []int64 {
	seen := map[int64]bool{}
	ids := make([]int64, 0, len(courses))
	for _, c := range courses {
		if c.TeacherID == nil || seen[*c.TeacherID] {
			continue
		}
		seen[*c.TeacherID] = true
		ids = append(ids, *c.TeacherID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func hasCompatibleClassroom(classrooms []models.Classroom, sessionType models.SessionType) bool {
	for _, c := range classrooms {
		if c.Type.Accepts(sessionType) {
			return true
		}
	}
	return false
}
