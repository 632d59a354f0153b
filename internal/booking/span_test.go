package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTimeOfDay(s)
	require.NoError(t, err)
	return v
}

func TestParseTimeOfDay(t *testing.T) {
	cases := []struct {
		in   string
		want TimeOfDay
		ok   bool
	}{
		{"00:00", 0, true},
		{"09:30", 9*60 + 30, true},
		{"23:59", 23*60 + 59, true},
		{"24:00", 0, false},
		{"9:30am", 0, false},
		{"", 0, false},
	}
	for _, tc := range cases {
		got, err := ParseTimeOfDay(tc.in)
		if !tc.ok {
			assert.Error(t, err, tc.in)
			continue
		}
		require.NoError(t, err, tc.in)
		assert.Equal(t, tc.want, got, tc.in)
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "00:00", TimeOfDay(0).String())
	assert.Equal(t, "09:05", TimeOfDay(9*60+5).String())
	assert.Equal(t, "23:59", TimeOfDay(23*60+59).String())
}

func TestSpanEndDate(t *testing.T) {
	single := Span{DateStart: day(2026, 3, 10)}
	assert.Equal(t, day(2026, 3, 10), single.EndDate(), "nil end date means single day")

	multi := Span{DateStart: day(2026, 3, 10), DateEnd: dayPtr(2026, 3, 12)}
	assert.Equal(t, day(2026, 3, 12), multi.EndDate())
}

func TestSpanDays(t *testing.T) {
	assert.Equal(t, 1, Span{DateStart: day(2026, 3, 10)}.Days())
	assert.Equal(t, 1, Span{DateStart: day(2026, 3, 10), DateEnd: dayPtr(2026, 3, 10)}.Days())
	assert.Equal(t, 3, Span{DateStart: day(2026, 3, 10), DateEnd: dayPtr(2026, 3, 12)}.Days())
	// month boundary
	assert.Equal(t, 2, Span{DateStart: day(2026, 2, 28), DateEnd: dayPtr(2026, 3, 1)}.Days())
}

func TestSpanOverlaps(t *testing.T) {
	base := Span{
		DateStart: day(2026, 3, 10),
		TimeStart: mustTime(t, "10:00"),
		TimeEnd:   mustTime(t, "12:00"),
	}

	cases := []struct {
		name  string
		other Span
		want  bool
	}{
		{
			name: "same day overlapping window",
			other: Span{
				DateStart: day(2026, 3, 10),
				TimeStart: mustTime(t, "11:00"),
				TimeEnd:   mustTime(t, "13:00"),
			},
			want: true,
		},
		{
			name: "adjacent window does not conflict",
			other: Span{
				DateStart: day(2026, 3, 10),
				TimeStart: mustTime(t, "12:00"),
				TimeEnd:   mustTime(t, "13:00"),
			},
			want: false,
		},
		{
			name: "window ending at base start does not conflict",
			other: Span{
				DateStart: day(2026, 3, 10),
				TimeStart: mustTime(t, "08:00"),
				TimeEnd:   mustTime(t, "10:00"),
			},
			want: false,
		},
		{
			name: "different day same window",
			other: Span{
				DateStart: day(2026, 3, 11),
				TimeStart: mustTime(t, "10:00"),
				TimeEnd:   mustTime(t, "12:00"),
			},
			want: false,
		},
		{
			name: "multi-day range touching the base day",
			other: Span{
				DateStart: day(2026, 3, 8),
				DateEnd:   dayPtr(2026, 3, 10),
				TimeStart: mustTime(t, "11:00"),
				TimeEnd:   mustTime(t, "14:00"),
			},
			want: true,
		},
		{
			name: "multi-day range ending the day before",
			other: Span{
				DateStart: day(2026, 3, 8),
				DateEnd:   dayPtr(2026, 3, 9),
				TimeStart: mustTime(t, "11:00"),
				TimeEnd:   mustTime(t, "14:00"),
			},
			want: false,
		},
		{
			name: "containing range with disjoint daily window",
			other: Span{
				DateStart: day(2026, 3, 9),
				DateEnd:   dayPtr(2026, 3, 11),
				TimeStart: mustTime(t, "13:00"),
				TimeEnd:   mustTime(t, "15:00"),
			},
			want: false,
		},
		{
			name: "identical span",
			other: Span{
				DateStart: day(2026, 3, 10),
				TimeStart: mustTime(t, "10:00"),
				TimeEnd:   mustTime(t, "12:00"),
			},
			want: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, base.Overlaps(tc.other))
			// the predicate is symmetric
			assert.Equal(t, tc.want, tc.other.Overlaps(base))
		})
	}
}

func TestSpanOverlapsIgnoresTimeComponentOfDates(t *testing.T) {
	a := Span{
		DateStart: time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC),
		TimeStart: mustTime(t, "10:00"),
		TimeEnd:   mustTime(t, "12:00"),
	}
	b := Span{
		DateStart: time.Date(2026, 3, 10, 2, 0, 0, 0, time.UTC),
		TimeStart: mustTime(t, "11:00"),
		TimeEnd:   mustTime(t, "13:00"),
	}
	assert.True(t, a.Overlaps(b), "stray time components on dates must not matter")
}
