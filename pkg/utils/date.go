package utils

import (
	"fmt"
	"strings"
	"time"
)

// feedDateLayouts are the date formats seen in rate feeds, most specific first.
var feedDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006.01.02",
	"02.01.2006",
	"2006-01-02",
}

// ParseFeedDate parses a feed as-of date in any of the known layouts.
// Dates without a zone are taken as UTC.
func ParseFeedDate(dateStr string) (time.Time, error) {
	dateStr = strings.TrimSpace(dateStr)
	for _, layout := range feedDateLayouts {
		if t, err := time.Parse(layout, dateStr); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", dateStr)
}

func FormatDate(date time.Time) string {
	return date.Format("2006-01-02")
}
