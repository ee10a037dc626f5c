package placement

import (
	"fmt"
	"sort"

	"github.com/campusplan/timetable-core/internal/conflictindex"
	"github.com/campusplan/timetable-core/internal/constraint"
	"github.com/campusplan/timetable-core/internal/models"
	"github.com/campusplan/timetable-core/internal/snapshot"
)

// conflictRejectionKinds are the RejectionKinds that represent an actual
// collision with another placed item, as opposed to unavailability or a
// capacity/type mismatch.
var conflictRejectionKinds = []constraint.RejectionKind{
	constraint.RejectTeacherConflict,
	constraint.RejectClassroomConflict,
	constraint.RejectCohortConflict,
}

// conflictsFromCounts turns the rejection tallies gathered while searching
// for ref's placement into the collisions worth surfacing to an operator.
func conflictsFromCounts(ref sessionRef, counts map[constraint.RejectionKind]int) []Conflict {
	var out []Conflict
	for _, kind := range conflictRejectionKinds {
		if n := counts[kind]; n > 0 {
			out = append(out, Conflict{
				Kind: kind,
				Explanation: fmt.Sprintf("course %d session %d (%s): %d candidate(s) rejected for %s",
					ref.CourseID, ref.SessionIndex, ref.Session.Type, n, kind),
			})
		}
	}
	return out
}

// rejectionPriority orders rejection causes for tie-broken diagnostics
// reporting (§4.E step 5): when a session fails for more than one reason
// across its attempted candidates, the most informative cause wins ties.
var rejectionPriority = []constraint.RejectionKind{
	constraint.RejectTeacherUnavailable,
	constraint.RejectClassroomUnavail,
	constraint.RejectCapacity,
	constraint.RejectTeacherConflict,
	constraint.RejectClassroomConflict,
	constraint.RejectCohortConflict,
	constraint.RejectTypeMismatch,
	constraint.RejectGridMembership,
}

// placeSession attempts to place one session whole; if that fails and the
// session spans more than one hour, it falls back to splitting it into two
// contiguous runs, each placed independently (§4.E step 3).
func (e *Engine) placeSession(snap *snapshot.Snapshot, idx *conflictindex.Index, evaluator *constraint.Evaluator, course models.Course, ref sessionRef) ([]models.ScheduleItem, bool, constraint.RejectionKind, string, []Conflict) {
	counts := map[constraint.RejectionKind]int{}

	if item, ok := e.tryPlaceWidth(snap, idx, evaluator, course, ref.Session.Type, ref.Session.Hours, counts); ok {
		idx.Add(item, course)
		return []models.ScheduleItem{item}, true, constraint.RejectNone, "", conflictsFromCounts(ref, counts)
	}

	if ref.Session.Hours > 1 {
		h1 := (ref.Session.Hours + 1) / 2
		h2 := ref.Session.Hours - h1

		first, ok := e.tryPlaceWidth(snap, idx, evaluator, course, ref.Session.Type, h1, counts)
		if ok {
			idx.Add(first, course)
			second, ok2 := e.tryPlaceWidth(snap, idx, evaluator, course, ref.Session.Type, h2, counts)
			if ok2 {
				idx.Add(second, course)
				return []models.ScheduleItem{first, second}, true, constraint.RejectNone, "", conflictsFromCounts(ref, counts)
			}
			idx.Remove(first, course)
		}
	}

	cause := dominantRejection(counts)
	msg := fmt.Sprintf("course %d session %d (%s, %dh): no acceptable placement found (%s)",
		ref.CourseID, ref.SessionIndex, ref.Session.Type, ref.Session.Hours, cause)
	return nil, false, cause, msg, conflictsFromCounts(ref, counts)
}

// candidateScore ranks accepted placements for the same session: priority
// respect first, then tightness of fit, then our dedicated-over-hybrid
// classroom preference, then earliest day/time, then classroom id for full
// determinism (§4.E step 4, SPEC_FULL Open Question decisions).
type candidateScore struct {
	priorityMiss bool
	excess       int
	hybrid       bool
	day          models.Day
	start        models.MinutesOfDay
	classroomID  int64
}

func isBetter(a, b candidateScore) bool {
	if a.priorityMiss != b.priorityMiss {
		return !a.priorityMiss
	}
	if a.excess != b.excess {
		return a.excess < b.excess
	}
	if a.hybrid != b.hybrid {
		return !a.hybrid
	}
	if a.day != b.day {
		return a.day < b.day
	}
	if a.start != b.start {
		return a.start < b.start
	}
	return a.classroomID < b.classroomID
}

// tryPlaceWidth searches every day, every contiguous window of the required
// width, and every type-compatible classroom, keeping the best-scoring
// accepted candidate. Rejection causes from every attempt accumulate into
// counts for eventual diagnostics.
func (e *Engine) tryPlaceWidth(snap *snapshot.Snapshot, idx *conflictindex.Index, evaluator *constraint.Evaluator, course models.Course, sessionType models.SessionType, hours int, counts map[constraint.RejectionKind]int) (models.ScheduleItem, bool) {
	var teacher *models.TeacherAvailability
	if course.TeacherID != nil {
		if avail, ok := snap.TeacherAvailability[*course.TeacherID]; ok {
			teacher = &avail
		}
	}

	classroomIDs := sortedClassroomIDs(snap.Classrooms)

	var best *models.ScheduleItem
	var bestScore candidateScore
	found := false

	for _, day := range models.Weekdays {
		windows := ContiguousWindows(snap.PlaceableSet[day], hours)
		for _, window := range windows {
			for _, classroomID := range classroomIDs {
				classroom := snap.Classrooms[classroomID]
				if !classroom.Type.Accepts(sessionType) {
					continue
				}
				result := evaluator.Evaluate(constraint.Candidate{
					Course:       course,
					Classroom:    classroom,
					Teacher:      teacher,
					Day:          day,
					Range:        window,
					SessionType:  sessionType,
					PlaceableSet: snap.PlaceableSet,
				})
				if !result.Accepted {
					counts[result.Rejection]++
					continue
				}
				score := candidateScore{
					priorityMiss: result.PriorityMiss,
					excess:       classroom.Capacity - course.Demand(),
					hybrid:       classroom.Type == models.ClassroomHybrid,
					day:          day,
					start:        window.Start,
					classroomID:  classroomID,
				}
				if !found || isBetter(score, bestScore) {
					item := models.ScheduleItem{
						CourseID:     course.ID,
						ClassroomID:  classroomID,
						Day:          day,
						Range:        window,
						SessionType:  sessionType,
						SessionHours: hours,
					}
					best = &item
					bestScore = score
					found = true
				}
			}
		}
	}

	if !found {
		return models.ScheduleItem{}, false
	}
	return *best, true
}

// ContiguousWindows returns every run of `hours` consecutive, time-adjacent
// placeable blocks for a day, as a single merged TimeRange each. Lunch
// blocks are already excluded from the placeable set, so a run can never
// span the lunch gap: adjacency requires the previous block's End to equal
// the next block's Start. Shared with the optimizer (§4.F runs "under the
// same constraints" as placement).
func ContiguousWindows(placeable map[models.TimeRange]bool, hours int) []models.TimeRange {
	if len(placeable) == 0 || hours < 1 {
		return nil
	}
	ranges := make([]models.TimeRange, 0, len(placeable))
	for r := range placeable {
		ranges = append(ranges, r)
	}
	sort.Slice(ranges, func(i, j int) bool { return ranges[i].Start < ranges[j].Start })

	var windows []models.TimeRange
	for i := 0; i+hours <= len(ranges); i++ {
		contiguous := true
		for k := i; k < i+hours-1; k++ {
			if ranges[k].End != ranges[k+1].Start {
				contiguous = false
				break
			}
		}
		if contiguous {
			windows = append(windows, models.TimeRange{Start: ranges[i].Start, End: ranges[i+hours-1].End})
		}
	}
	return windows
}

func dominantRejection(counts map[constraint.RejectionKind]int) constraint.RejectionKind {
	best := constraint.RejectionKind("no-window-available")
	bestCount := 0
	for _, kind := range rejectionPriority {
		if counts[kind] > bestCount {
			bestCount = counts[kind]
			best = kind
		}
	}
	return best
}
