package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusplan/timetable-core/internal/models"
)

// CourseRepository loads active courses and their nested sessions,
// department offerings, and hardcoded placements, implementing
// snapshot.CourseSource. Grounded on the teacher's ScheduleRepository: flat
// SELECTs assembled into nested domain structs in Go rather than a single
// wide join.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository constructs a CourseRepository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

type courseRow struct {
	ID                    int64  `db:"id"`
	Code                  string `db:"code"`
	Name                  string `db:"name"`
	FacultyID             int64  `db:"faculty_id"`
	Level                 int    `db:"level"`
	Category              string `db:"category"`
	Semester              string `db:"semester"`
	Active                bool   `db:"active"`
	TeacherID             *int64 `db:"teacher_id"`
	CapacityMarginPercent int    `db:"capacity_margin_percent"`
	DeclaredHours         int    `db:"declared_hours"`
}

type sessionRow struct {
	CourseID int64  `db:"course_id"`
	Type     string `db:"session_type"`
	Hours    int    `db:"hours"`
}

type offeringRow struct {
	CourseID     int64 `db:"course_id"`
	DepartmentID int64 `db:"department_id"`
	StudentCount int   `db:"student_count"`
}

type hardcodedRow struct {
	CourseID    int64  `db:"course_id"`
	SessionType string `db:"session_type"`
	Day         int    `db:"day"`
	StartMin    int    `db:"start_minute"`
	EndMin      int    `db:"end_minute"`
	ClassroomID *int64 `db:"classroom_id"`
}

// LoadActiveCourses implements snapshot.CourseSource.
func (r *CourseRepository) LoadActiveCourses(ctx context.Context) ([]models.Course, error) {
	var rows []courseRow
	const courseQuery = `SELECT id, code, name, faculty_id, level, category, semester, active, teacher_id, capacity_margin_percent, declared_hours FROM courses WHERE active = true ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, courseQuery); err != nil {
		return nil, fmt.Errorf("load active courses: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	sessionsByCourse, err := r.loadSessions(ctx, ids)
	if err != nil {
		return nil, err
	}
	offeringsByCourse, err := r.loadOfferings(ctx, ids)
	if err != nil {
		return nil, err
	}
	hardcodedByCourse, err := r.loadHardcoded(ctx, ids)
	if err != nil {
		return nil, err
	}

	courses := make([]models.Course, 0, len(rows))
	for _, row := range rows {
		courses = append(courses, models.Course{
			ID:                    row.ID,
			Code:                  row.Code,
			Name:                  row.Name,
			FacultyID:             row.FacultyID,
			Level:                 row.Level,
			Category:              models.CourseCategory(row.Category),
			Semester:              models.Semester(row.Semester),
			Active:                row.Active,
			TeacherID:             row.TeacherID,
			Sessions:              sessionsByCourse[row.ID],
			Offerings:             offeringsByCourse[row.ID],
			CapacityMarginPercent: row.CapacityMarginPercent,
			Hardcoded:             hardcodedByCourse[row.ID],
			DeclaredHours:         row.DeclaredHours,
		})
	}
	return courses, nil
}

func (r *CourseRepository) loadSessions(ctx context.Context, courseIDs []int64) (map[int64][]models.Session, error) {
	query, args, err := sqlx.In(`SELECT course_id, session_type, hours FROM course_sessions WHERE course_id IN (?) ORDER BY course_id`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("build sessions query: %w", err)
	}
	var rows []sessionRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load course sessions: %w", err)
	}
	out := make(map[int64][]models.Session, len(courseIDs))
	for _, row := range rows {
		out[row.CourseID] = append(out[row.CourseID], models.Session{Type: models.SessionType(row.Type), Hours: row.Hours})
	}
	return out, nil
}

func (r *CourseRepository) loadOfferings(ctx context.Context, courseIDs []int64) (map[int64][]models.DepartmentOffering, error) {
	query, args, err := sqlx.In(`SELECT course_id, department_id, student_count FROM course_offerings WHERE course_id IN (?) ORDER BY course_id`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("build offerings query: %w", err)
	}
	var rows []offeringRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load course offerings: %w", err)
	}
	out := make(map[int64][]models.DepartmentOffering, len(courseIDs))
	for _, row := range rows {
		out[row.CourseID] = append(out[row.CourseID], models.DepartmentOffering{DepartmentID: row.DepartmentID, StudentCount: row.StudentCount})
	}
	return out, nil
}

func (r *CourseRepository) loadHardcoded(ctx context.Context, courseIDs []int64) (map[int64][]models.HardcodedPlacement, error) {
	query, args, err := sqlx.In(`SELECT course_id, session_type, day, start_minute, end_minute, classroom_id FROM course_hardcoded_placements WHERE course_id IN (?) ORDER BY course_id`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("build hardcoded placements query: %w", err)
	}
	var rows []hardcodedRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load hardcoded placements: %w", err)
	}
	out := make(map[int64][]models.HardcodedPlacement, len(courseIDs))
	for _, row := range rows {
		out[row.CourseID] = append(out[row.CourseID], models.HardcodedPlacement{
			CourseID:    row.CourseID,
			SessionType: models.SessionType(row.SessionType),
			Day:         models.Day(row.Day),
			Range:       models.TimeRange{Start: models.MinutesOfDay(row.StartMin), End: models.MinutesOfDay(row.EndMin)},
			ClassroomID: row.ClassroomID,
		})
	}
	return out, nil
}
