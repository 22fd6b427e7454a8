package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

// WeekID returns the ISO-8601 week identifier (YYYY-Www) of t in UTC.
// The year is the ISO week-numbering year, which differs from the calendar
// year for a few days around January 1st.
func WeekID(t time.Time) string {
	year, week := t.UTC().ISOWeek()
	return fmt.Sprintf("%04d-W%02d", year, week)
}

// DateString formats t as a UTC calendar date (YYYY-MM-DD).
func DateString(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

// ParseWeekID validates a YYYY-Www identifier and returns its parts.
func ParseWeekID(weekID string) (year, week int, err error) {
	yearPart, weekPart, ok := strings.Cut(weekID, "-W")
	if !ok || len(yearPart) != 4 || len(weekPart) != 2 {
		return 0, 0, fmt.Errorf("invalid week id %q: expected YYYY-Www", weekID)
	}
	year, err = strconv.Atoi(yearPart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid week id %q: %w", weekID, err)
	}
	week, err = strconv.Atoi(weekPart)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid week id %q: %w", weekID, err)
	}
	if week < 1 || week > WeeksInYear(year) {
		return 0, 0, fmt.Errorf("invalid week id %q: year %d has %d weeks", weekID, year, WeeksInYear(year))
	}
	return year, week, nil
}

// WeeksInYear returns 52 or 53. December 28th always falls in the last ISO week.
func WeeksInYear(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// WeekRange returns the Monday and Sunday (UTC midnight) bounding an ISO week.
// Week 1 is the week holding January 4th, i.e. the year's first Thursday.
func WeekRange(weekID string) (start, end time.Time, err error) {
	year, week, err := ParseWeekID(weekID)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := int(jan4.Weekday()+6) % 7 // days since Monday
	start = jan4.AddDate(0, 0, -offset+(week-1)*7)
	end = start.AddDate(0, 0, 6)
	return start, end, nil
}

// WeekDates returns the YYYY-MM-DD bounds of an ISO week.
func WeekDates(weekID string) (from, to string, err error) {
	start, end, err := WeekRange(weekID)
	if err != nil {
		return "", "", err
	}
	return DateString(start), DateString(end), nil
}

// WeekIDForDate maps a YYYY-MM-DD date onto its ISO week.
func WeekIDForDate(date string) (string, error) {
	t, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date %q: %w", date, err)
	}
	return WeekID(t), nil
}
