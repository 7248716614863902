package utils

import (
	"strings"
	"time"

	"github.com/shelfwise/catalog/internal/errs"
)

// dateLayouts are the date shapes accepted in import files and external
// metadata, tried in order. "2006" alone resolves to January 1st of the year.
var dateLayouts = []string{
	"2 January 2006",
	"2 Jan 2006",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006",
	"02/01/2006",
	"2006-01-02",
}

// ParseFlexibleDate converts a date string in one of the mapped layouts to a
// time.Time. An unmapped format is a validation failure naming the value.
func ParseFlexibleDate(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errs.Validationf("date format not mapped: %s", value)
}
