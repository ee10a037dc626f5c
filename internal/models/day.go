package models

import (
	"fmt"
	"strings"
)

// Day is the canonical weekday enum the solver schedules against. The grid
// is a repeating Monday-Friday week; Saturday/Sunday are not representable.
type Day uint8

const (
	Pazartesi Day = iota + 1
	Sali
	Carsamba
	Persembe
	Cuma
)

// Weekdays is the canonical ordered day set used throughout the solver.
var Weekdays = []Day{Pazartesi, Sali, Carsamba, Persembe, Cuma}

var dayNames = map[Day]string{
	Pazartesi: "Pazartesi",
	Sali:      "Salı",
	Carsamba:  "Çarşamba",
	Persembe:  "Perşembe",
	Cuma:      "Cuma",
}

// daySynonyms maps every accepted lowercase spelling (localized or English) to
// its canonical Day. Any spelling not present here is rejected.
var daySynonyms = map[string]Day{
	"pazartesi": Pazartesi,
	"monday":    Pazartesi,
	"salı":      Sali,
	"sali":      Sali,
	"tuesday":   Sali,
	"çarşamba":  Carsamba,
	"carsamba":  Carsamba,
	"wednesday": Carsamba,
	"perşembe":  Persembe,
	"persembe":  Persembe,
	"thursday":  Persembe,
	"cuma":      Cuma,
	"friday":    Cuma,
}

// String renders the canonical Turkish day name.
func (d Day) String() string {
	if name, ok := dayNames[d]; ok {
		return name
	}
	return fmt.Sprintf("Day(%d)", uint8(d))
}

// Valid reports whether d is one of the five canonical weekdays.
func (d Day) Valid() bool {
	_, ok := dayNames[d]
	return ok
}

// ParseDay normalizes any accepted spelling (localized or English,
// case-insensitive) to the canonical Day enum. Any other value is rejected,
// per spec §4.A / §6.
func ParseDay(raw string) (Day, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	if day, ok := daySynonyms[key]; ok {
		return day, nil
	}
	return 0, fmt.Errorf("unrecognized day name %q", raw)
}
