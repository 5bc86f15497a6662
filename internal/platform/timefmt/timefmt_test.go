package timefmt_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"didathing/internal/platform/timefmt"
)

func TestSince(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		ago  time.Duration
		want string
	}{
		{name: "future", ago: -time.Hour, want: "Just now"},
		{name: "seconds", ago: 59 * time.Second, want: "Just now"},
		{name: "one minute", ago: time.Minute, want: "1m"},
		{name: "minutes", ago: 59*time.Minute + 59*time.Second, want: "59m"},
		{name: "hours", ago: 5 * time.Hour, want: "5h"},
		{name: "days", ago: 29 * 24 * time.Hour, want: "29d"},
		{name: "one month", ago: 30 * 24 * time.Hour, want: "1mo"},
		{name: "months", ago: 364 * 24 * time.Hour, want: "12mo"},
		{name: "year", ago: 365 * 24 * time.Hour, want: "1y"},
		{name: "years", ago: 3 * 365 * 24 * time.Hour, want: "3y"},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, timefmt.Since(now, now.Add(-tc.ago)))
		})
	}
}

func TestRefreshInterval(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Second, timefmt.RefreshInterval(now, now.Add(-10*time.Second)))
	assert.Equal(t, time.Minute, timefmt.RefreshInterval(now, now.Add(-10*time.Minute)))
	assert.Equal(t, 5*time.Minute, timefmt.RefreshInterval(now, now.Add(-10*time.Hour)))
	assert.Equal(t, time.Hour, timefmt.RefreshInterval(now, now.Add(-48*time.Hour)))
}

func TestAgo(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, "3 days ago", timefmt.Ago(now, now.Add(-72*time.Hour)))
	assert.Equal(t, "now", timefmt.Ago(now, now.Add(time.Hour)))
}

func TestDateTimeIncludesYearAndMinutes(t *testing.T) {
	t.Parallel()
	ts := time.Date(2026, 3, 10, 12, 34, 0, 0, time.Local)
	assert.Equal(t, "Mar 10, 2026, 12:34 PM", timefmt.DateTime(ts))
}

func TestParseLocal(t *testing.T) {
	t.Parallel()
	got, err := timefmt.ParseLocal("2026-03-10T08:15:00Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2026, 3, 10, 8, 15, 0, 0, time.UTC)))

	got, err = timefmt.ParseLocal(" 2026-03-10 08:15 ")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 10, 8, 15, 0, 0, time.Local), got)

	got, err = timefmt.ParseLocal("2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Day())

	_, err = timefmt.ParseLocal("yesterday")
	assert.Error(t, err)
}
