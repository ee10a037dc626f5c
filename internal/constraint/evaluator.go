// Package constraint implements the ordered acceptability predicates of
// spec §4.D. The first failing predicate determines the rejection reason;
// callers use RejectionKind to drive diagnostics (§4.E step 5).
package constraint

import (
	"github.com/campusplan/timetable-core/internal/conflictindex"
	"github.com/campusplan/timetable-core/internal/models"
)

// RejectionKind names which predicate rejected a candidate.
type RejectionKind string

const (
	RejectNone               RejectionKind = ""
	RejectGridMembership     RejectionKind = "not-in-grid"
	RejectTeacherUnavailable RejectionKind = "teacher-unavailable"
	RejectClassroomUnavail   RejectionKind = "classroom-unavailable"
	RejectTypeMismatch       RejectionKind = "classroom-type-mismatch"
	RejectCapacity           RejectionKind = "capacity-shortage"
	RejectTeacherConflict    RejectionKind = "teacher-conflict"
	RejectClassroomConflict  RejectionKind = "classroom-conflict"
	RejectCohortConflict     RejectionKind = "cohort-conflict"
)

// Result is the outcome of evaluating one candidate placement.
type Result struct {
	Accepted     bool
	Rejection    RejectionKind
	Explanation  string
	PriorityMiss bool // soft penalty: classroom has a priority dept the course doesn't hold (§4.D predicate 7)
}

// Candidate is everything the evaluator needs to judge a placement.
type Candidate struct {
	Course       models.Course
	Classroom    models.Classroom
	Teacher      *models.TeacherAvailability
	Day          models.Day
	Range        models.TimeRange
	SessionType  models.SessionType
	PlaceableSet map[models.Day]map[models.TimeRange]bool // non-lunch grid blocks, keyed for O(1) membership
}

// Evaluator evaluates candidates against a shared conflict index and
// settings. It holds no per-candidate state.
type Evaluator struct {
	settings models.SystemSettings
	index    *conflictindex.Index
}

// New constructs an Evaluator bound to settings and the generation's
// conflict index.
func New(settings models.SystemSettings, index *conflictindex.Index) *Evaluator {
	return &Evaluator{settings: settings, index: index}
}

// Evaluate runs the seven ordered predicates of §4.D, short-circuiting at
// the first failure.
func (e *Evaluator) Evaluate(c Candidate) Result {
	subBlocks := c.Range.SubBlocks(e.settings.SlotDurationMinutes)
	if len(subBlocks) == 0 {
		return Result{Rejection: RejectGridMembership, Explanation: "candidate range is not an integer multiple of the slot duration"}
	}

	// 1. Time-grid membership: every sub-block must be a non-lunch grid block.
	for _, block := range subBlocks {
		if c.PlaceableSet == nil || !c.PlaceableSet[c.Day][block] {
			return Result{Rejection: RejectGridMembership, Explanation: "candidate sub-block is not a placeable grid block"}
		}
	}

	// 2. Teacher availability.
	if c.Teacher != nil {
		for _, block := range subBlocks {
			if !c.Teacher.Available(c.Day, block) {
				return Result{Rejection: RejectTeacherUnavailable, Explanation: "teacher is not available for this sub-block"}
			}
		}
	}

	// 3. Classroom availability.
	for _, block := range subBlocks {
		if !c.Classroom.Available(c.Day, block) {
			return Result{Rejection: RejectClassroomUnavail, Explanation: "classroom is not available for this sub-block"}
		}
	}

	// 4. Classroom type compatibility.
	if !c.Classroom.Type.Accepts(c.SessionType) {
		return Result{Rejection: RejectTypeMismatch, Explanation: "classroom type does not accept this session type"}
	}

	// 5. Capacity, inflated by whichever margin (global or per-course) is larger.
	if !e.capacitySufficient(c.Course, c.Classroom) {
		return Result{Rejection: RejectCapacity, Explanation: "classroom capacity, even with margin, is below course demand"}
	}

	// 6. Teacher / classroom / cohort non-conflict, queried via the index.
	if conflict := e.index.CheckPlacement(c.Course, c.Classroom.ID, c.Day, c.Range); conflict != nil {
		switch conflict.Kind {
		case conflictindex.TeacherConflict:
			return Result{Rejection: RejectTeacherConflict, Explanation: conflict.Explanation}
		case conflictindex.ClassroomConflict:
			return Result{Rejection: RejectClassroomConflict, Explanation: conflict.Explanation}
		case conflictindex.CohortConflict:
			return Result{Rejection: RejectCohortConflict, Explanation: conflict.Explanation}
		}
	}

	// 7. Priority respect (soft): penalized, not rejected.
	result := Result{Accepted: true}
	if c.Classroom.PriorityDepartmentID != nil {
		if _, ok := c.Course.Departments()[*c.Classroom.PriorityDepartmentID]; !ok {
			result.PriorityMiss = true
		}
	}
	return result
}

// capacitySufficient applies whichever margin — global or per-course — is
// larger, per the spec's design note ("apply the larger"), not a sum or
// product of both percentages.
func (e *Evaluator) capacitySufficient(course models.Course, classroom models.Classroom) bool {
	margin := 0
	if e.settings.CapacityMarginEnabled && e.settings.CapacityMarginPercent > margin {
		margin = e.settings.CapacityMarginPercent
	}
	if course.CapacityMarginPercent > margin {
		margin = course.CapacityMarginPercent
	}
	effective := classroom.Capacity * (100 + margin) / 100
	return effective >= course.Demand()
}
