package models

// ClassroomType controls which session types a classroom accepts.
type ClassroomType string

const (
	ClassroomTheoretical ClassroomType = "theoretical"
	ClassroomLab         ClassroomType = "lab"
	ClassroomHybrid       ClassroomType = "hybrid"
)

// Accepts reports whether the classroom type is compatible with sessionType
// (§4.D predicate 4: hybrid accepts any type, otherwise type must match).
func (t ClassroomType) Accepts(sessionType SessionType) bool {
	switch t {
	case ClassroomHybrid:
		return true
	case ClassroomTheoretical:
		return sessionType == SessionTheoretical
	case ClassroomLab:
		return sessionType == SessionLab
	default:
		return false
	}
}

// Classroom is a physical room candidates are matched against.
type Classroom struct {
	ID                   int64
	Name                 string
	Capacity             int
	Type                 ClassroomType
	PriorityDepartmentID *int64
	Active               bool
	AvailableHours       map[Day][]TimeRange
}

// Available reports whether sub is inside one of the classroom's declared
// available windows for day. An empty map, or an empty list for the day,
// means "no restriction" (§3).
func (c Classroom) Available(day Day, sub TimeRange) bool {
	if len(c.AvailableHours) == 0 {
		return true
	}
	windows, ok := c.AvailableHours[day]
	if !ok || len(windows) == 0 {
		return true
	}
	for _, w := range windows {
		if w.Contains(sub) {
			return true
		}
	}
	return false
}

// TeacherAvailability resolves a teacher's per-day available windows. An
// empty map, or all-empty lists, mean "no restriction" (§3).
type TeacherAvailability struct {
	TeacherID int64
	Hours     map[Day][]TimeRange
}

// Available reports whether sub is inside one of the teacher's declared
// available windows for day.
func (a TeacherAvailability) Available(day Day, sub TimeRange) bool {
	if len(a.Hours) == 0 {
		return true
	}
	windows, ok := a.Hours[day]
	if !ok || len(windows) == 0 {
		return true
	}
	for _, w := range windows {
		if w.Contains(sub) {
			return true
		}
	}
	return false
}
