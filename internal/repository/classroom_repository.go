package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusplan/timetable-core/internal/models"
)

// ClassroomRepository loads active classrooms and their declared available
// windows, implementing snapshot.ClassroomSource.
type ClassroomRepository struct {
	db *sqlx.DB
}

// NewClassroomRepository constructs a ClassroomRepository.
func NewClassroomRepository(db *sqlx.DB) *ClassroomRepository {
	return &ClassroomRepository{db: db}
}

type classroomRow struct {
	ID                   int64  `db:"id"`
	Name                 string `db:"name"`
	Capacity             int    `db:"capacity"`
	Type                 string `db:"type"`
	PriorityDepartmentID *int64 `db:"priority_department_id"`
	Active               bool   `db:"active"`
}

type classroomWindowRow struct {
	ClassroomID int64 `db:"classroom_id"`
	Day         int   `db:"day"`
	StartMin    int   `db:"start_minute"`
	EndMin      int   `db:"end_minute"`
}

// LoadActiveClassrooms implements snapshot.ClassroomSource.
func (r *ClassroomRepository) LoadActiveClassrooms(ctx context.Context) ([]models.Classroom, error) {
	var rows []classroomRow
	const query = `SELECT id, name, capacity, type, priority_department_id, active FROM classrooms WHERE active = true ORDER BY id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("load active classrooms: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	windows, err := r.loadWindows(ctx, ids)
	if err != nil {
		return nil, err
	}

	classrooms := make([]models.Classroom, 0, len(rows))
	for _, row := range rows {
		classrooms = append(classrooms, models.Classroom{
			ID:                   row.ID,
			Name:                 row.Name,
			Capacity:             row.Capacity,
			Type:                 models.ClassroomType(row.Type),
			PriorityDepartmentID: row.PriorityDepartmentID,
			Active:               row.Active,
			AvailableHours:       windows[row.ID],
		})
	}
	return classrooms, nil
}

func (r *ClassroomRepository) loadWindows(ctx context.Context, classroomIDs []int64) (map[int64]map[models.Day][]models.TimeRange, error) {
	query, args, err := sqlx.In(`SELECT classroom_id, day, start_minute, end_minute FROM classroom_available_hours WHERE classroom_id IN (?) ORDER BY classroom_id, day`, classroomIDs)
	if err != nil {
		return nil, fmt.Errorf("build classroom windows query: %w", err)
	}
	var rows []classroomWindowRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load classroom available hours: %w", err)
	}
	out := make(map[int64]map[models.Day][]models.TimeRange, len(classroomIDs))
	for _, row := range rows {
		if out[row.ClassroomID] == nil {
			out[row.ClassroomID] = make(map[models.Day][]models.TimeRange)
		}
		day := models.Day(row.Day)
		out[row.ClassroomID][day] = append(out[row.ClassroomID][day], models.TimeRange{
			Start: models.MinutesOfDay(row.StartMin),
			End:   models.MinutesOfDay(row.EndMin),
		})
	}
	return out, nil
}
