package utils

import (
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

// LoadLocation falls back to UTC when the zone database does not know name.
func LoadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func TimeNowIn(loc *time.Location) time.Time {
	return time.Now().In(loc)
}

func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}

// WeekLabel returns the ISO-8601 week label of t, e.g. "2026-W42".
func WeekLabel(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// WeekRange returns the Monday and Sunday of the ISO week containing t.
func WeekRange(t time.Time) (time.Time, time.Time) {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) + 6) % 7
	monday := day.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// ParseWeekLabel returns the Monday of the ISO week named by label.
func ParseWeekLabel(label string) (time.Time, error) {
	var year, week int
	if _, err := fmt.Sscanf(label, "%04d-W%02d", &year, &week); err != nil {
		return time.Time{}, fmt.Errorf("invalid week label %q: %w", label, err)
	}
	if week < 1 || week > 53 {
		return time.Time{}, fmt.Errorf("invalid week label %q: week out of range", label)
	}
	// January 4th is always in ISO week 1.
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	monday, _ := WeekRange(jan4)
	monday = monday.AddDate(0, 0, (week-1)*7)
	if WeekLabel(monday) != label {
		return time.Time{}, fmt.Errorf("invalid week label %q: year has no such week", label)
	}
	return monday, nil
}
