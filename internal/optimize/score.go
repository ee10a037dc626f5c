// Package optimize implements the Local Optimizer of spec §4.F: bounded
// move/swap improvement passes over the non-hardcoded subset of a placed
// schedule, under the same acceptability constraints as placement.
package optimize

import "github.com/campusplan/timetable-core/internal/models"

// score combines the three factors §4.E step 4 used to rank candidates —
// priority-department respect, capacity tightness, and our dedicated-over-
// hybrid preference — into a single scalar. Lower is better; the optimizer
// only commits a move or swap that strictly lowers the sum of scores across
// the affected items. Grounded on the teacher's
// ScheduleImprovementStats{GapPenalty, LoadPenalty}, which reduced several
// quality signals into additive penalty terms the same way.
func score(course models.Course, classroom models.Classroom) float64 {
	s := 0.0
	if classroom.PriorityDepartmentID != nil {
		if _, ok := course.Departments()[*classroom.PriorityDepartmentID]; !ok {
			s += 1000
		}
	}
	s += float64(classroom.Capacity - course.Demand())
	if classroom.Type == models.ClassroomHybrid {
		s += 1
	}
	return s
}
