package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/campusplan/timetable-core/internal/models"
)

// ScheduleRepository persists generated schedules, implementing
// service.PersistenceRepository. Grounded on the teacher's
// ScheduleRepository.BulkCreate: a single transaction, rolled back on any
// failure.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs a ScheduleRepository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

type scheduleItemRow struct {
	CourseID     int64  `db:"course_id"`
	ClassroomID  int64  `db:"classroom_id"`
	Day          int    `db:"day"`
	StartMin     int    `db:"start_minute"`
	EndMin       int    `db:"end_minute"`
	SessionType  string `db:"session_type"`
	SessionHours int    `db:"session_hours"`
	IsHardcoded  bool   `db:"is_hardcoded"`
}

// CommitSchedule atomically replaces every non-hardcoded schedule item with
// the items produced by a generation run (§5: "atomically replaces all
// non-hardcoded schedule items"). Hardcoded items are left untouched since
// they are re-derived from course definitions on every run, not stored as
// schedule rows.
func (r *ScheduleRepository) CommitSchedule(ctx context.Context, items []models.ScheduleItem) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin commit schedule: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM schedule_items WHERE is_hardcoded = false`); err != nil {
		return fmt.Errorf("clear existing schedule items: %w", err)
	}

	rows := make([]scheduleItemRow, 0, len(items))
	for _, item := range items {
		if item.IsHardcoded {
			continue
		}
		rows = append(rows, scheduleItemRow{
			CourseID:     item.CourseID,
			ClassroomID:  item.ClassroomID,
			Day:          int(item.Day),
			StartMin:     int(item.Range.Start),
			EndMin:       int(item.Range.End),
			SessionType:  string(item.SessionType),
			SessionHours: item.SessionHours,
			IsHardcoded:  item.IsHardcoded,
		})
	}

	const insert = `INSERT INTO schedule_items (course_id, classroom_id, day, start_minute, end_minute, session_type, session_hours, is_hardcoded) VALUES (:course_id, :classroom_id, :day, :start_minute, :end_minute, :session_type, :session_hours, :is_hardcoded)`
	for i := range rows {
		if _, err = sqlx.NamedExecContext(ctx, tx, insert, &rows[i]); err != nil {
			return fmt.Errorf("insert schedule item: %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit schedule: %w", err)
	}
	return nil
}

// ListCurrent returns the currently persisted schedule, hardcoded and
// generated items alike, ordered for display.
func (r *ScheduleRepository) ListCurrent(ctx context.Context) ([]models.ScheduleItem, error) {
	var rows []scheduleItemRow
	const query = `SELECT course_id, classroom_id, day, start_minute, end_minute, session_type, session_hours, is_hardcoded FROM schedule_items ORDER BY day, start_minute, course_id`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list current schedule: %w", err)
	}
	items := make([]models.ScheduleItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, models.ScheduleItem{
			CourseID:    row.CourseID,
			ClassroomID: row.ClassroomID,
			Day:         models.Day(row.Day),
			Range:       models.TimeRange{Start: models.MinutesOfDay(row.StartMin), End: models.MinutesOfDay(row.EndMin)},
			SessionType: models.SessionType(row.SessionType),
			SessionHours: row.SessionHours,
			IsHardcoded: row.IsHardcoded,
		})
	}
	return items, nil
}
