package domain

import (
	"fmt"
	"time"
)

// DayLayout renders dates like "Fri Apr 26 2024".
const DayLayout = "Mon Jan 02 2006"

// eventLocalLayout is the provider's zone-less local timestamp form.
const eventLocalLayout = "2006-01-02T15:04:05"

// TMDBImageBase prefixes poster paths to form full image URLs.
const TMDBImageBase = "https://image.tmdb.org/t/p/original"

// FormatDay renders t's calendar date in UTC.
func FormatDay(t time.Time) string {
	return t.UTC().Format(DayLayout)
}

// FormatUnixDay renders a Unix-seconds timestamp as a calendar date.
func FormatUnixDay(sec int64) string {
	return FormatDay(time.Unix(sec, 0))
}

// FormatLocalDay renders an event's local start timestamp as a calendar date.
// The wall-clock date is kept as is; no zone conversion applies.
func FormatLocalDay(local string) (string, error) {
	t, err := time.Parse(eventLocalLayout, local)
	if err != nil {
		return "", fmt.Errorf("parse local time %q: %w", local, err)
	}
	return t.Format(DayLayout), nil
}

// PosterURL expands a TMDB poster path. An empty path yields an empty URL.
func PosterURL(path string) string {
	if path == "" {
		return ""
	}
	return TMDBImageBase + path
}
