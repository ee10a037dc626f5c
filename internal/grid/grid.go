// Package grid derives the canonical weekly block list from system
// settings (spec §4.A). The grid is deterministic given settings: the same
// settings always produce the same ordered block slice.
package grid

import (
	"github.com/campusplan/timetable-core/internal/models"
	apperrors "github.com/campusplan/timetable-core/pkg/errors"
)

// Generate produces the ordered block list for a week. Blocks whose
// half-open interval overlaps the lunch interval are marked Lunch and
// excluded from placement candidates, but remain in the rendered grid.
func Generate(settings models.SystemSettings) ([]models.Block, error) {
	if settings.DayEnd <= settings.DayStart {
		return nil, apperrors.Clone(apperrors.ErrInvalidTimeWindow, "dayEnd must be after dayStart")
	}
	if settings.SlotDurationMinutes <= 0 {
		return nil, apperrors.Clone(apperrors.ErrInvalidSlotDuration, "slot duration must be positive")
	}
	span := int(settings.DayEnd - settings.DayStart)
	if span%settings.SlotDurationMinutes != 0 {
		return nil, apperrors.Clone(apperrors.ErrInvalidSlotDuration, "slot duration does not evenly divide the day span")
	}
	lunch := models.TimeRange{Start: settings.LunchStart, End: settings.LunchEnd}
	hasLunch := settings.LunchEnd > settings.LunchStart
	if hasLunch {
		dayWindow := models.TimeRange{Start: settings.DayStart, End: settings.DayEnd}
		if !dayWindow.Contains(lunch) {
			return nil, apperrors.Clone(apperrors.ErrInvalidLunchWindow, "lunch window must lie inside the day window")
		}
	}

	slots := span / settings.SlotDurationMinutes
	blocks := make([]models.Block, 0, len(models.Weekdays)*slots)
	for _, day := range models.Weekdays {
		cursor := settings.DayStart
		for i := 0; i < slots; i++ {
			r := models.TimeRange{Start: cursor, End: cursor + models.MinutesOfDay(settings.SlotDurationMinutes)}
			block := models.Block{Day: day, Range: r}
			if hasLunch && r.Overlaps(lunch) {
				block.Lunch = true
			}
			blocks = append(blocks, block)
			cursor = r.End
		}
	}
	return blocks, nil
}

// Placeable filters out lunch blocks, returning only candidates the
// placement engine may use.
func Placeable(blocks []models.Block) []models.Block {
	out := make([]models.Block, 0, len(blocks))
	for _, b := range blocks {
		if !b.Lunch {
			out = append(out, b)
		}
	}
	return out
}

// ByDay groups blocks by day, preserving time order within each day.
func ByDay(blocks []models.Block) map[models.Day][]models.Block {
	grouped := make(map[models.Day][]models.Block, len(models.Weekdays))
	for _, b := range blocks {
		grouped[b.Day] = append(grouped[b.Day], b)
	}
	return grouped
}
