package placement

import (
	"sort"

	"github.com/campusplan/timetable-core/internal/models"
	"github.com/campusplan/timetable-core/internal/snapshot"
)

// sessionRef is one (course, session) pair awaiting placement, carrying the
// difficulty score it was ranked by (§4.E step 2).
type sessionRef struct {
	CourseID     int64
	SessionIndex int
	Session      models.Session
	Difficulty   float64
}

// rankSessions scores every non-hardcoded session and returns them in
// descending difficulty order, tie-broken by (courseID, sessionIndex) for
// determinism.
func rankSessions(snap *snapshot.Snapshot) []sessionRef {
	avgCapacity := averageCapacityByType(snap.Classrooms)

	courseIDs := sortedCourseIDs(snap.Courses)
	var refs []sessionRef
	for _, courseID := range courseIDs {
		course := snap.Courses[courseID]
		sufficientCount := sufficientClassroomCountByType(snap.Classrooms, course.Demand())
		for i, s := range course.Sessions {
			refs = append(refs, sessionRef{
				CourseID:     course.ID,
				SessionIndex: i,
				Session:      s,
				Difficulty:   difficulty(course, s, avgCapacity, sufficientCount),
			})
		}
	}

	sort.Slice(refs, func(i, j int) bool {
		if refs[i].Difficulty != refs[j].Difficulty {
			return refs[i].Difficulty > refs[j].Difficulty
		}
		if refs[i].CourseID != refs[j].CourseID {
			return refs[i].CourseID < refs[j].CourseID
		}
		return refs[i].SessionIndex < refs[j].SessionIndex
	})
	return refs
}

// difficulty combines demand pressure, scarcity of classrooms that can fit
// the course, and a flat bonus for compulsory courses and longer sessions —
// all factors the spec names without mandating a formula (§4.E step 2).
func difficulty(course models.Course, session models.Session, avgCapacity map[models.SessionType]float64, sufficient map[models.SessionType]int) float64 {
	demand := float64(course.Demand())
	avg := avgCapacity[session.Type]
	if avg <= 0 {
		avg = 1
	}
	demandPressure := demand / avg

	n := sufficient[session.Type]
	if n < 1 {
		n = 1
	}
	scarcity := 2.0 / float64(n)

	compulsoryBonus := 0.0
	if course.IsCompulsory() {
		compulsoryBonus = 0.5
	}
	hoursBonus := 0.1 * float64(session.Hours)

	return demandPressure + scarcity + compulsoryBonus + hoursBonus
}

func averageCapacityByType(classrooms map[int64]models.Classroom) map[models.SessionType]float64 {
	sums := map[models.SessionType]int{}
	counts := map[models.SessionType]int{}
	for _, room := range classrooms {
		for _, t := range []models.SessionType{models.SessionTheoretical, models.SessionLab} {
			if room.Type.Accepts(t) {
				sums[t] += room.Capacity
				counts[t]++
			}
		}
	}
	avgs := make(map[models.SessionType]float64, len(sums))
	for t, sum := range sums {
		if counts[t] > 0 {
			avgs[t] = float64(sum) / float64(counts[t])
		}
	}
	return avgs
}

func sufficientClassroomCountByType(classrooms map[int64]models.Classroom, demand int) map[models.SessionType]int {
	counts := map[models.SessionType]int{}
	for _, room := range classrooms {
		for _, t := range []models.SessionType{models.SessionTheoretical, models.SessionLab} {
			if room.Type.Accepts(t) && room.Capacity >= demand {
				counts[t]++
			}
		}
	}
	return counts
}
