package service

import (
	"fmt"
	"time"
)

const dateLayout = "2006-01-02"

// parseDateRange converts inclusive date strings into half-open time bounds:
// date_from becomes the start of that day, date_to the start of the following
// day so the full final day is covered by a created_at < bound comparison.
func parseDateRange(fromStr, toStr string) (*time.Time, *time.Time, error) {
	var from, to *time.Time

	if fromStr != "" {
		parsed, err := time.ParseInLocation(dateLayout, fromStr, time.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date_from: %w", err)
		}
		from = &parsed
	}

	if toStr != "" {
		parsed, err := time.ParseInLocation(dateLayout, toStr, time.Local)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid date_to: %w", err)
		}
		exclusive := parsed.AddDate(0, 0, 1)
		to = &exclusive
	}

	return from, to, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the most recent Monday at midnight.
func startOfWeek(t time.Time) time.Time {
	weekday := int(t.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	start := t.AddDate(0, 0, -(weekday - 1))
	return startOfDay(start)
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

func startOfYear(t time.Time) time.Time {
	return time.Date(t.Year(), 1, 1, 0, 0, 0, 0, t.Location())
}
