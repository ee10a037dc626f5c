package models

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesOfDay is a clock offset from midnight, 0..1439.
type MinutesOfDay int

// ParseClock parses "HH:MM" with 00<=HH<=23, MM in 0..59.
func ParseClock(raw string) (MinutesOfDay, error) {
	parts := strings.SplitN(raw, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid clock value %q", raw)
	}
	hh, err := strconv.Atoi(parts[0])
	if err != nil || hh < 0 || hh > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	mm, err := strconv.Atoi(parts[1])
	if err != nil || mm < 0 || mm > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	return MinutesOfDay(hh*60 + mm), nil
}

// String formats a MinutesOfDay as "HH:MM".
func (m MinutesOfDay) String() string {
	hh := int(m) / 60
	mm := int(m) % 60
	return fmt.Sprintf("%02d:%02d", hh, mm)
}

// TimeRange is a half-open [Start, End) interval measured in minutes of day.
type TimeRange struct {
	Start MinutesOfDay
	End   MinutesOfDay
}

// String renders "HH:MM-HH:MM".
func (t TimeRange) String() string {
	return t.Start.String() + "-" + t.End.String()
}

// ParseTimeRange parses the wire format "HH:MM-HH:MM", requiring End > Start.
func ParseTimeRange(raw string) (TimeRange, error) {
	parts := strings.SplitN(strings.TrimSpace(raw), "-", 2)
	if len(parts) != 2 {
		return TimeRange{}, fmt.Errorf("invalid time range %q", raw)
	}
	start, err := ParseClock(strings.TrimSpace(parts[0]))
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid time range %q: %w", raw, err)
	}
	end, err := ParseClock(strings.TrimSpace(parts[1]))
	if err != nil {
		return TimeRange{}, fmt.Errorf("invalid time range %q: %w", raw, err)
	}
	if end <= start {
		return TimeRange{}, fmt.Errorf("invalid time range %q: end must be after start", raw)
	}
	return TimeRange{Start: start, End: end}, nil
}

// Minutes returns the width of the interval in minutes.
func (t TimeRange) Minutes() int {
	return int(t.End - t.Start)
}

// Contains reports whether t fully contains other.
func (t TimeRange) Contains(other TimeRange) bool {
	return t.Start <= other.Start && other.End <= t.End
}

// Overlaps reports whether the half-open intervals share any minute.
func (t TimeRange) Overlaps(other TimeRange) bool {
	return t.Start < other.End && other.Start < t.End
}

// SubBlocks decomposes t into consecutive slotMinutes-wide sub-ranges. It
// returns nil if t's width is not an integer multiple of slotMinutes —
// callers are expected to have validated block-grid alignment first
// (spec §4.B: "integer-slot width").
func (t TimeRange) SubBlocks(slotMinutes int) []TimeRange {
	if slotMinutes <= 0 || t.Minutes()%slotMinutes != 0 {
		return nil
	}
	count := t.Minutes() / slotMinutes
	blocks := make([]TimeRange, 0, count)
	cursor := t.Start
	for i := 0; i < count; i++ {
		next := cursor + MinutesOfDay(slotMinutes)
		blocks = append(blocks, TimeRange{Start: cursor, End: next})
		cursor = next
	}
	return blocks
}
