package render

import (
	"fmt"
	"strings"
	"time"
)

// FormatLatency renders milliseconds the way time.ParseDuration reads them back.
func FormatLatency(ms float64) string {
	if ms < 1000 {
		return fmt.Sprintf("%.0fms", ms)
	}
	return fmt.Sprintf("%.2fs", ms/1000)
}

// FormatTime renders a timestamp in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// OneLine collapses whitespace runs so a value fits a single table row.
func OneLine(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate truncates a string to max runes
func Truncate(s string, max int) string {
	rr := []rune(s)
	if len(rr) <= max {
		return s
	}
	if max <= 3 {
		return string(rr[:max])
	}
	return string(rr[:max-3]) + "..."
}

// parseTime reads an RFC3339 timestamp, returning nil when absent or invalid.
func parseTime(s *string) *time.Time {
	if s == nil || *s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, *s)
	if err != nil {
		return nil
	}
	return &t
}

func nonEmpty(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}
