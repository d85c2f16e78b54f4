package dto

import (
	"fmt"
	"strings"
	"time"

	"github.com/yukikurage/xp-task-api/internal/calendar"
)

// ParseDate reads a required YYYY-MM-DD field.
func ParseDate(field, value string) (time.Time, error) {
	d, err := calendar.Parse(strings.TrimSpace(value))
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be a date in YYYY-MM-DD format", field)
	}
	return d, nil
}

// ParseOptionalDate reads an optional YYYY-MM-DD field. Nil and empty mean no date.
func ParseOptionalDate(field string, value *string) (*time.Time, error) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, nil
	}
	d, err := ParseDate(field, *value)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
