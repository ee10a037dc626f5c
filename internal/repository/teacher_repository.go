package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusplan/timetable-core/internal/models"
)

// TeacherRepository resolves per-teacher availability windows, implementing
// snapshot.TeacherAvailabilitySource.
type TeacherRepository struct {
	db *sqlx.DB
}

// NewTeacherRepository constructs a TeacherRepository.
func NewTeacherRepository(db *sqlx.DB) *TeacherRepository {
	return &TeacherRepository{db: db}
}

type teacherAvailabilityRow struct {
	TeacherID int64 `db:"teacher_id"`
	Day       int   `db:"day"`
	StartMin  int   `db:"start_minute"`
	EndMin    int   `db:"end_minute"`
}

// LoadAvailability implements snapshot.TeacherAvailabilitySource. Every
// requested teacher that exists gets an entry; a teacher with no
// availability rows gets an empty Hours map, meaning "no restriction" (§3).
// Ids missing from the result are reported by the snapshot as unknown
// teachers.
func (r *TeacherRepository) LoadAvailability(ctx context.Context, teacherIDs []int64) (map[int64]models.TeacherAvailability, error) {
	if len(teacherIDs) == 0 {
		return map[int64]models.TeacherAvailability{}, nil
	}
	idQuery, idArgs, err := sqlx.In(`SELECT id FROM teachers WHERE id IN (?)`, teacherIDs)
	if err != nil {
		return nil, fmt.Errorf("build teacher ids query: %w", err)
	}
	var existing []int64
	if err := r.db.SelectContext(ctx, &existing, r.db.Rebind(idQuery), idArgs...); err != nil {
		return nil, fmt.Errorf("load teacher ids: %w", err)
	}
	query, args, err := sqlx.In(`SELECT teacher_id, day, start_minute, end_minute FROM teacher_availability WHERE teacher_id IN (?) ORDER BY teacher_id, day`, teacherIDs)
	if err != nil {
		return nil, fmt.Errorf("build teacher availability query: %w", err)
	}
	var rows []teacherAvailabilityRow
	if err := r.db.SelectContext(ctx, &rows, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load teacher availability: %w", err)
	}

	out := make(map[int64]models.TeacherAvailability, len(teacherIDs))
	for _, id := range existing {
		out[id] = models.TeacherAvailability{TeacherID: id}
	}
	for _, row := range rows {
		avail := out[row.TeacherID]
		if avail.Hours == nil {
			avail = models.TeacherAvailability{TeacherID: row.TeacherID, Hours: make(map[models.Day][]models.TimeRange)}
		}
		day := models.Day(row.Day)
		avail.Hours[day] = append(avail.Hours[day], models.TimeRange{
			Start: models.MinutesOfDay(row.StartMin),
			End:   models.MinutesOfDay(row.EndMin),
		})
		out[row.TeacherID] = avail
	}
	return out, nil
}
