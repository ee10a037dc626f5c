package models

// SessionType is the kind of meeting a Session requires.
type SessionType string

const (
	SessionTheoretical SessionType = "theoretical"
	SessionLab         SessionType = "lab"
)

// CourseCategory distinguishes compulsory courses, whose cohort may not
// double-book, from electives, which never contribute to cohort occupancy.
type CourseCategory string

const (
	CategoryCompulsory CourseCategory = "compulsory"
	CategoryElective   CourseCategory = "elective"
)

// Semester is the academic term a course runs in.
type Semester string

const (
	SemesterFall   Semester = "fall"
	SemesterSpring Semester = "spring"
	SemesterSummer Semester = "summer"
)

// Session is the unit the placement engine tries to place. If no whole
// window fits, a session of more than one hour is split into two contiguous
// runs of ceil(h/2) and floor(h/2) hours (§4.E step 3); the two runs are
// placed independently and are not required to share a day.
type Session struct {
	Type  SessionType
	Hours int
}

// DepartmentOffering records how many students of a department take the
// course; the sum across offerings is the course's effective demand.
type DepartmentOffering struct {
	DepartmentID int64
	StudentCount int
}

// HardcodedPlacement is a pre-committed, immovable assignment seeded before
// greedy placement begins (§4.E step 1).
type HardcodedPlacement struct {
	CourseID    int64
	SessionType SessionType
	Day         Day
	Range       TimeRange
	ClassroomID *int64
}

// Course is a solver input: a set of sessions that must be placed subject to
// teacher, classroom, and cohort constraints.
type Course struct {
	ID                    int64
	Code                  string
	Name                  string
	FacultyID             int64
	Level                 int
	Category              CourseCategory
	Semester              Semester
	Active                bool
	TeacherID             *int64
	Sessions              []Session
	Offerings             []DepartmentOffering
	CapacityMarginPercent int
	Hardcoded             []HardcodedPlacement
	// DeclaredHours is the course's declared total hours, independent of
	// the Sessions slice; the Input Snapshot checks it against the sum of
	// session hours (§3 invariant).
	DeclaredHours int
}

// TotalHours sums the declared hours across every session.
func (c Course) TotalHours() int {
	total := 0
	for _, s := range c.Sessions {
		total += s.Hours
	}
	return total
}

// Demand sums student counts across department offerings.
func (c Course) Demand() int {
	total := 0
	for _, o := range c.Offerings {
		total += o.StudentCount
	}
	return total
}

// Departments returns the set of department ids the course is offered to.
func (c Course) Departments() map[int64]struct{} {
	set := make(map[int64]struct{}, len(c.Offerings))
	for _, o := range c.Offerings {
		set[o.DepartmentID] = struct{}{}
	}
	return set
}

// IsCompulsory reports whether the course contributes to cohort occupancy.
func (c Course) IsCompulsory() bool {
	return c.Category == CategoryCompulsory
}

// CohortKeys returns the (semester, level, department) tuples this course
// occupies for the purposes of the Conflict Index. Elective courses never
// contribute (§4.C).
func (c Course) CohortKeys() []CohortKey {
	if !c.IsCompulsory() {
		return nil
	}
	keys := make([]CohortKey, 0, len(c.Offerings))
	for _, o := range c.Offerings {
		keys = append(keys, CohortKey{Semester: c.Semester, Level: c.Level, DepartmentID: o.DepartmentID})
	}
	return keys
}

// CohortKey identifies the group of students who must not have two
// compulsory classes at the same time (§4.C, Design Notes).
type CohortKey struct {
	Semester     Semester
	Level        int
	DepartmentID int64
}
