// Package timefmt renders timestamps for people: compact "time since" labels,
// the cadence at which such a label needs refreshing, and date-time stamps.
package timefmt

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Since returns a compact label for the time elapsed between t and now:
// "Just now", "5m", "3h", "12d", "4mo" or "2y". Months are 30 days and years
// 365 days; the days between twelve 30-day months and a full year read as
// "12mo". Timestamps in the future read as "Just now".
func Since(now, t time.Time) string {
	diff := now.Sub(t)
	seconds := int64(diff / time.Second)
	minutes := seconds / 60
	hours := minutes / 60
	days := hours / 24
	months := days / 30
	years := days / 365

	switch {
	case seconds < 60:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh", hours)
	case days < 30:
		return fmt.Sprintf("%dd", days)
	case months < 12 || years == 0:
		return fmt.Sprintf("%dmo", months)
	default:
		return fmt.Sprintf("%dy", years)
	}
}

// RefreshInterval is how often a Since label for t must be recomputed to stay
// accurate: every second for the first minute, every minute for the first
// hour, every five minutes for the first day, hourly afterwards.
func RefreshInterval(now, t time.Time) time.Duration {
	diff := now.Sub(t)
	switch {
	case diff < time.Minute:
		return time.Second
	case diff < time.Hour:
		return time.Minute
	case diff < 24*time.Hour:
		return 5 * time.Minute
	default:
		return time.Hour
	}
}

// DateTime formats t in local time, e.g. "Mar 4, 2026, 09:30 AM".
func DateTime(t time.Time) string {
	return t.Local().Format("Jan 2, 2006, 03:04 PM")
}

// Ago is the long form of Since, e.g. "3 days ago".
func Ago(now, t time.Time) string {
	if t.After(now) {
		t = now
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

var inputLayouts = []string{
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// ParseLocal reads a user-entered timestamp: RFC 3339, or a date with an
// optional "15:04" time interpreted in local time.
func ParseLocal(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	for _, layout := range inputLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q (use 2006-01-02 15:04 or RFC 3339)", raw)
}
