package utils

import (
	"fmt"
	"strings"
	"time"
)

const DateLayout = "2006-01-02"

var acceptedDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	DateLayout,
}

// ParseDate accepts a calendar date (YYYY-MM-DD) or an RFC 3339 timestamp,
// which covers both the HTML date inputs and JSON-encoded times.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range acceptedDateLayouts {
		if t, err := time.ParseInLocation(layout, value, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
}

// ParseDatePtr is ParseDate for optional fields; blank input yields nil.
func ParseDatePtr(value string) (*time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	t, err := ParseDate(value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// FormatDate returns the date formatted as YYYY-MM-DD in local time.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format(DateLayout)
}

// FormatDatePtr returns the formatted date for pointer values.
func FormatDatePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return FormatDate(*t)
}

// FormatDateTime renders a timestamp for CSV exports.
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.In(time.Local).Format("2006-01-02 15:04:05")
}
