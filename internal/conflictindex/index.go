// Package conflictindex implements the composite collision index of spec
// §4.C: O(1) amortized teacher/classroom/cohort occupancy queries, kept
// consistent across placements and removals for the lifetime of one
// generation.
//
// Occupancy is tracked per slot-width sub-block rather than per whole
// session range: a multi-hour item occupies every sub-block it spans, so
// two items whose ranges merely overlap (not only identical ranges) are
// correctly detected as conflicting, matching the boundary scenario of two
// hardcoded placements with overlapping but non-identical ranges.
package conflictindex

import "github.com/campusplan/timetable-core/internal/models"

// ConflictKind names which dimension rejected a candidate placement.
type ConflictKind string

const (
	TeacherConflict   ConflictKind = "teacher-conflict"
	ClassroomConflict ConflictKind = "classroom-conflict"
	CohortConflict    ConflictKind = "cohort-conflict"
)

// Conflict describes why CheckPlacement rejected a candidate.
type Conflict struct {
	Kind        ConflictKind
	Explanation string
}

type teacherKey struct {
	teacherID int64
	day       models.Day
	block     models.TimeRange
}

type classroomKey struct {
	classroomID int64
	day         models.Day
	block       models.TimeRange
}

type cohortKey struct {
	cohort models.CohortKey
	day    models.Day
	block  models.TimeRange
}

type checkKey struct {
	courseID    int64
	classroomID int64
	day         models.Day
	r           models.TimeRange
}

// Index is the composite conflict index described in §4.C. It is owned
// exclusively by a single generation (§5): no concurrent access is
// supported or needed.
type Index struct {
	slotMinutes int
	teacher     map[teacherKey]bool
	classroom   map[classroomKey]bool
	cohort      map[cohortKey]bool
	memo        map[checkKey]*Conflict
}

// New constructs an empty index. slotMinutes must match the grid's slot
// duration so ranges decompose into aligned sub-blocks.
func New(slotMinutes int) *Index {
	return &Index{
		slotMinutes: slotMinutes,
		teacher:     make(map[teacherKey]bool),
		classroom:   make(map[classroomKey]bool),
		cohort:      make(map[cohortKey]bool),
		memo:        make(map[checkKey]*Conflict),
	}
}

// Add marks teacher, classroom, and all compulsory-cohort tuples of the
// item's course as occupied across every sub-block of item.Range.
// Invalidates the memo cache conservatively (§4.C Design Notes:
// "Invalidate conservatively... correctness is paramount").
func (idx *Index) Add(item models.ScheduleItem, course models.Course) {
	cohorts := course.CohortKeys()
	for _, block := range item.Range.SubBlocks(idx.slotMinutes) {
		if course.TeacherID != nil {
			idx.teacher[teacherKey{*course.TeacherID, item.Day, block}] = true
		}
		idx.classroom[classroomKey{item.ClassroomID, item.Day, block}] = true
		for _, ck := range cohorts {
			idx.cohort[cohortKey{ck, item.Day, block}] = true
		}
	}
	idx.invalidateMemo()
}

// Remove clears the same marks Add set. Remove-then-add of the same item is
// a no-op on the index (§8).
func (idx *Index) Remove(item models.ScheduleItem, course models.Course) {
	cohorts := course.CohortKeys()
	for _, block := range item.Range.SubBlocks(idx.slotMinutes) {
		if course.TeacherID != nil {
			delete(idx.teacher, teacherKey{*course.TeacherID, item.Day, block})
		}
		delete(idx.classroom, classroomKey{item.ClassroomID, item.Day, block})
		for _, ck := range cohorts {
			delete(idx.cohort, cohortKey{ck, item.Day, block})
		}
	}
	idx.invalidateMemo()
}

// HasTeacherConflict reports whether teacherID is occupied in any sub-block
// of (day, r). A nil teacherID never conflicts (§4.C).
func (idx *Index) HasTeacherConflict(teacherID *int64, day models.Day, r models.TimeRange) bool {
	if teacherID == nil {
		return false
	}
	for _, block := range r.SubBlocks(idx.slotMinutes) {
		if idx.teacher[teacherKey{*teacherID, day, block}] {
			return true
		}
	}
	return false
}

// HasClassroomConflict reports whether classroomID is occupied in any
// sub-block of (day, r).
func (idx *Index) HasClassroomConflict(classroomID int64, day models.Day, r models.TimeRange) bool {
	for _, block := range r.SubBlocks(idx.slotMinutes) {
		if idx.classroom[classroomKey{classroomID, day, block}] {
			return true
		}
	}
	return false
}

// HasCohortConflict reports whether any of course's compulsory cohort
// tuples are occupied in any sub-block of (day, r). Electives never trigger
// this (§4.C).
func (idx *Index) HasCohortConflict(course models.Course, day models.Day, r models.TimeRange) bool {
	cohorts := course.CohortKeys()
	if len(cohorts) == 0 {
		return false
	}
	for _, block := range r.SubBlocks(idx.slotMinutes) {
		for _, ck := range cohorts {
			if idx.cohort[cohortKey{ck, day, block}] {
				return true
			}
		}
	}
	return false
}

// CheckPlacement answers the three-dimension conflict question for a whole
// candidate window, which may span multiple single-hour sub-blocks. It
// returns the first conflict found, or nil if none. Results are memoized by
// (courseID, classroomID, day, range); the cache is flushed on any Add/Remove.
func (idx *Index) CheckPlacement(course models.Course, classroomID int64, day models.Day, r models.TimeRange) *Conflict {
	key := checkKey{course.ID, classroomID, day, r}
	if cached, ok := idx.memo[key]; ok {
		return cached
	}

	var result *Conflict
	switch {
	case idx.HasTeacherConflict(course.TeacherID, day, r):
		result = &Conflict{Kind: TeacherConflict, Explanation: "teacher already occupied in this range"}
	case idx.HasClassroomConflict(classroomID, day, r):
		result = &Conflict{Kind: ClassroomConflict, Explanation: "classroom already occupied in this range"}
	case idx.HasCohortConflict(course, day, r):
		result = &Conflict{Kind: CohortConflict, Explanation: "cohort already has a compulsory class in this range"}
	}
	idx.memo[key] = result
	return result
}

func (idx *Index) invalidateMemo() {
	if len(idx.memo) > 0 {
		idx.memo = make(map[checkKey]*Conflict)
	}
}

// TeacherEntries reports the number of occupied (teacher, day, block)
// entries, used by property tests to check for duplicates (§8).
func (idx *Index) TeacherEntries() int { return len(idx.teacher) }

// ClassroomEntries reports the number of occupied (classroom, day, block) entries.
func (idx *Index) ClassroomEntries() int { return len(idx.classroom) }

// CohortEntries reports the number of occupied (cohort, day, block) entries.
func (idx *Index) CohortEntries() int { return len(idx.cohort) }
