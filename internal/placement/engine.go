// Package placement implements the Placement Engine of spec §4.E:
// hardcoded seeding, difficulty ranking, block decomposition, the greedy
// placement loop, and per-session diagnostics.
package placement

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/campusplan/timetable-core/internal/conflictindex"
	"github.com/campusplan/timetable-core/internal/constraint"
	"github.com/campusplan/timetable-core/internal/models"
	"github.com/campusplan/timetable-core/internal/snapshot"
	apperrors "github.com/campusplan/timetable-core/pkg/errors"
)

// Unplaceable is a per-session diagnostic, not a top-level error (§4.E step
// 5, §7).
type Unplaceable struct {
	CourseID     int64
	SessionIndex int
	Cause        constraint.RejectionKind
	Message      string
}

// Warning is a non-fatal run-level notice (§7: Timeout / Cancelled).
type Warning struct {
	Kind    string
	Message string
}

// Conflict names a teacher, classroom, or cohort collision encountered while
// searching for a session's placement, surfaced for operator review even
// when the session was eventually placed elsewhere (§6).
type Conflict struct {
	Kind        constraint.RejectionKind
	Explanation string
}

// Result is everything one placement run produced.
type Result struct {
	Items        []models.ScheduleItem
	Unplaceable  []Unplaceable
	Conflicts    []Conflict
	Warnings     []Warning
	SessionsSeen int
}

// Engine runs the greedy placement loop against a frozen snapshot.
type Engine struct {
	settings models.SystemSettings
}

// New constructs an Engine bound to the grid-deriving settings.
func New(settings models.SystemSettings) *Engine {
	return &Engine{settings: settings}
}

// Run seeds hardcoded placements, ranks sessions by difficulty, and greedily
// places each in descending order, respecting ctx's deadline/cancellation
// between sessions (§5).
func (e *Engine) Run(ctx context.Context, snap *snapshot.Snapshot, idx *conflictindex.Index) (*Result, error) {
	result := &Result{}

	if err := e.seedHardcoded(snap, idx, result); err != nil {
		return nil, err
	}

	sessions := rankSessions(snap)
	result.SessionsSeen = len(sessions)

	evaluator := constraint.New(e.settings, idx)

	for _, ref := range sessions {
		if err := ctx.Err(); err != nil {
			result.Warnings = append(result.Warnings, warningFromContext(err))
			return result, nil
		}

		course := snap.Courses[ref.CourseID]
		items, ok, cause, msg, conflicts := e.placeSession(snap, idx, evaluator, course, ref)
		result.Conflicts = append(result.Conflicts, conflicts...)
		if ok {
			result.Items = append(result.Items, items...)
			continue
		}
		result.Unplaceable = append(result.Unplaceable, Unplaceable{
			CourseID:     ref.CourseID,
			SessionIndex: ref.SessionIndex,
			Cause:        cause,
			Message:      msg,
		})
	}

	return result, nil
}

func warningFromContext(err error) Warning {
	if errors.Is(err, context.DeadlineExceeded) {
		return Warning{Kind: "Timeout", Message: "wall-clock budget exceeded; returning partial results"}
	}
	return Warning{Kind: "Cancelled", Message: "generation cancelled; returning partial results"}
}

// seedHardcoded materializes every hardcoded placement as an immovable
// Schedule Item. If two collide on teacher, classroom, or cohort,
// generation aborts with HardcodedConflict (§4.E step 1).
func (e *Engine) seedHardcoded(snap *snapshot.Snapshot, idx *conflictindex.Index, result *Result) error {
	var placed []seeded

	courseIDs := sortedCourseIDs(snap.Courses)
	for _, courseID := range courseIDs {
		course := snap.Courses[courseID]
		for i, hp := range course.Hardcoded {
			classroomID := resolveHardcodedClassroom(snap, hp)
			item := models.ScheduleItem{
				CourseID:     course.ID,
				ClassroomID:  classroomID,
				Day:          hp.Day,
				Range:        hp.Range,
				SessionType:  hp.SessionType,
				SessionHours: hp.Range.Minutes() / e.settings.SlotDurationMinutes,
				IsHardcoded:  true,
			}
			if conflict := idx.CheckPlacement(course, classroomID, hp.Day, hp.Range); conflict != nil {
				other := findColliding(placed, course, item, conflict.Kind)
				return apperrors.Wrap(&HardcodedConflictError{
					A: item, B: other, Kind: string(conflict.Kind),
				}, apperrors.ErrHardcodedConflict.Code, apperrors.ErrHardcodedConflict.Status,
					"two hardcoded placements conflict")
			}
			idx.Add(item, course)
			result.Items = append(result.Items, item)
			placed = append(placed, seeded{item: item, course: course})
			_ = i
		}
	}
	return nil
}

// HardcodedConflictError names both colliding placements for the caller.
type HardcodedConflictError struct {
	A, B models.ScheduleItem
	Kind string
}

func (e *HardcodedConflictError) Error() string {
	return "hardcoded placements for courses " + strconv.FormatInt(e.A.CourseID, 10) + " and " + strconv.FormatInt(e.B.CourseID, 10) + " collide on " + e.Kind
}

// seeded pairs a hardcoded Schedule Item with its course while seeding.
type seeded struct {
	item   models.ScheduleItem
	course models.Course
}

func findColliding(placed []seeded, course models.Course, candidate models.ScheduleItem, kind conflictindex.ConflictKind) models.ScheduleItem {
	for _, p := range placed {
		if p.item.Day != candidate.Day || !p.item.Range.Overlaps(candidate.Range) {
			continue
		}
		switch kind {
		case conflictindex.TeacherConflict:
			if course.TeacherID != nil && p.course.TeacherID != nil && *course.TeacherID == *p.course.TeacherID {
				return p.item
			}
		case conflictindex.ClassroomConflict:
			if p.item.ClassroomID == candidate.ClassroomID {
				return p.item
			}
		case conflictindex.CohortConflict:
			if sharesCohort(course, p.course) {
				return p.item
			}
		}
	}
	return models.ScheduleItem{}
}

func sharesCohort(a, b models.Course) bool {
	for _, ak := range a.CohortKeys() {
		for _, bk := range b.CohortKeys() {
			if ak == bk {
				return true
			}
		}
	}
	return false
}

func resolveHardcodedClassroom(snap *snapshot.Snapshot, hp models.HardcodedPlacement) int64 {
	if hp.ClassroomID != nil {
		return *hp.ClassroomID
	}
	ids := sortedClassroomIDs(snap.Classrooms)
	for _, id := range ids {
		room := snap.Classrooms[id]
		if room.Type.Accepts(hp.SessionType) {
			return id
		}
	}
	if len(ids) > 0 {
		return ids[0]
	}
	return 0
}

func sortedCourseIDs(courses map[int64]models.Course) []int64 {
	ids := make([]int64, 0, len(courses))
	for id := range courses {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func sortedClassroomIDs(classrooms map[int64]models.Classroom) []int64 {
	ids := make([]int64, 0, len(classrooms))
	for id := range classrooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
