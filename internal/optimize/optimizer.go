package optimize

import (
	"context"
	"errors"
	"sort"

	"github.com/campusplan/timetable-core/internal/conflictindex"
	"github.com/campusplan/timetable-core/internal/constraint"
	"github.com/campusplan/timetable-core/internal/models"
	"github.com/campusplan/timetable-core/internal/placement"
	"github.com/campusplan/timetable-core/internal/snapshot"
)

// Stats reports what one optimization run did, elaborating on §6's bare
// "metrics" field (grounded on the teacher's ScheduleImprovementStats).
type Stats struct {
	Iterations   int
	MovesApplied int
	SwapsApplied int
}

// Optimizer runs the bounded move/swap improvement loop of §4.F.
type Optimizer struct {
	settings models.SystemSettings
}

// New constructs an Optimizer bound to the grid-deriving settings.
func New(settings models.SystemSettings) *Optimizer {
	return &Optimizer{settings: settings}
}

// Run repeats move then swap sweeps over items until a full sweep finds no
// improvement, maxIterations is exhausted, or ctx is done. Only non-hardcoded
// items are eligible; items is mutated in place and also returned.
func (o *Optimizer) Run(ctx context.Context, snap *snapshot.Snapshot, idx *conflictindex.Index, items []models.ScheduleItem, maxIterations int) ([]models.ScheduleItem, Stats, []placement.Warning) {
	evaluator := constraint.New(o.settings, idx)
	stats := Stats{}
	var warnings []placement.Warning

	for iter := 0; iter < maxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			warnings = append(warnings, warningFromContext(err))
			break
		}

		improved := false
		for i := range items {
			if items[i].IsHardcoded {
				continue
			}
			if err := ctx.Err(); err != nil {
				warnings = append(warnings, warningFromContext(err))
				stats.Iterations++
				return items, stats, warnings
			}
			if o.tryMove(snap, idx, evaluator, items, i) {
				improved = true
				stats.MovesApplied++
			}
		}

		for i := range items {
			if items[i].IsHardcoded {
				continue
			}
			for j := i + 1; j < len(items); j++ {
				if items[j].IsHardcoded {
					continue
				}
				if err := ctx.Err(); err != nil {
					warnings = append(warnings, warningFromContext(err))
					stats.Iterations++
					return items, stats, warnings
				}
				if o.trySwap(snap, idx, evaluator, items, i, j) {
					improved = true
					stats.SwapsApplied++
				}
			}
		}

		stats.Iterations++
		if !improved {
			break
		}
	}

	return items, stats, warnings
}

func warningFromContext(err error) placement.Warning {
	if errors.Is(err, context.DeadlineExceeded) {
		return placement.Warning{Kind: "Timeout", Message: "optimizer wall-clock budget exceeded; keeping best schedule found so far"}
	}
	return placement.Warning{Kind: "Cancelled", Message: "optimization cancelled; keeping best schedule found so far"}
}

// tryMove looks for a strictly better (day, window, classroom) for one
// placed item and commits it via remove-then-add if found (§4.F "Move").
func (o *Optimizer) tryMove(snap *snapshot.Snapshot, idx *conflictindex.Index, evaluator *constraint.Evaluator, items []models.ScheduleItem, i int) bool {
	item := items[i]
	course := snap.Courses[item.CourseID]
	currentClassroom := snap.Classrooms[item.ClassroomID]
	currentScore := score(course, currentClassroom)
	hours := item.Range.Minutes() / o.settings.SlotDurationMinutes

	idx.Remove(item, course)

	teacher := resolveTeacher(snap, course)
	classroomIDs := sortedClassroomIDs(snap.Classrooms)

	best := item
	bestScore := currentScore
	found := false

	for _, day := range models.Weekdays {
		windows := placement.ContiguousWindows(snap.PlaceableSet[day], hours)
		for _, window := range windows {
			for _, classroomID := range classroomIDs {
				if day == item.Day && window == item.Range && classroomID == item.ClassroomID {
					continue
				}
				room := snap.Classrooms[classroomID]
				if !room.Type.Accepts(item.SessionType) {
					continue
				}
				result := evaluator.Evaluate(constraint.Candidate{
					Course: course, Classroom: room, Teacher: teacher,
					Day: day, Range: window, SessionType: item.SessionType, PlaceableSet: snap.PlaceableSet,
				})
				if !result.Accepted {
					continue
				}
				candidate := score(course, room)
				if candidate < bestScore {
					bestScore = candidate
					best = models.ScheduleItem{
						CourseID: item.CourseID, ClassroomID: classroomID, Day: day, Range: window,
						SessionType: item.SessionType, SessionHours: item.SessionHours,
					}
					found = true
				}
			}
		}
	}

	if found {
		idx.Add(best, course)
		items[i] = best
		return true
	}
	idx.Add(item, course)
	return false
}

// trySwap exchanges the (day, range, classroom) tuples of two placed items
// of the same session type and width (§4.F "Swap"). Commits as two removes
// followed by two adds; if the second add would be rejected, it rolls back
// via the opposite pair of operations, restoring the pre-swap state exactly
// (index ordering only — see SPEC_FULL's optimizer rollback-ordering note).
func (o *Optimizer) trySwap(snap *snapshot.Snapshot, idx *conflictindex.Index, evaluator *constraint.Evaluator, items []models.ScheduleItem, i, j int) bool {
	a, b := items[i], items[j]
	if a.SessionType != b.SessionType || a.Range.Minutes() != b.Range.Minutes() {
		return false
	}

	courseA, courseB := snap.Courses[a.CourseID], snap.Courses[b.CourseID]
	classroomA, classroomB := snap.Classrooms[a.ClassroomID], snap.Classrooms[b.ClassroomID]

	currentScore := score(courseA, classroomA) + score(courseB, classroomB)
	newScore := score(courseA, classroomB) + score(courseB, classroomA)
	if newScore >= currentScore {
		return false
	}

	newA := models.ScheduleItem{CourseID: a.CourseID, ClassroomID: b.ClassroomID, Day: b.Day, Range: b.Range, SessionType: a.SessionType, SessionHours: a.SessionHours}
	newB := models.ScheduleItem{CourseID: b.CourseID, ClassroomID: a.ClassroomID, Day: a.Day, Range: a.Range, SessionType: b.SessionType, SessionHours: b.SessionHours}

	idx.Remove(a, courseA)
	idx.Remove(b, courseB)

	teacherA := resolveTeacher(snap, courseA)
	resultA := evaluator.Evaluate(constraint.Candidate{
		Course: courseA, Classroom: classroomB, Teacher: teacherA,
		Day: newA.Day, Range: newA.Range, SessionType: newA.SessionType, PlaceableSet: snap.PlaceableSet,
	})
	if !resultA.Accepted {
		idx.Add(a, courseA)
		idx.Add(b, courseB)
		return false
	}
	idx.Add(newA, courseA)

	teacherB := resolveTeacher(snap, courseB)
	resultB := evaluator.Evaluate(constraint.Candidate{
		Course: courseB, Classroom: classroomA, Teacher: teacherB,
		Day: newB.Day, Range: newB.Range, SessionType: newB.SessionType, PlaceableSet: snap.PlaceableSet,
	})
	if !resultB.Accepted {
		idx.Remove(newA, courseA)
		idx.Add(a, courseA)
		idx.Add(b, courseB)
		return false
	}
	idx.Add(newB, courseB)

	items[i] = newA
	items[j] = newB
	return true
}

func resolveTeacher(snap *snapshot.Snapshot, course models.Course) *models.TeacherAvailability {
	if course.TeacherID == nil {
		return nil
	}
	if avail, ok := snap.TeacherAvailability[*course.TeacherID]; ok {
		return &avail
	}
	return nil
}

func sortedClassroomIDs(classrooms map[int64]models.Classroom) []int64 {
	ids := make([]int64, 0, len(classrooms))
	for id := range classrooms {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
