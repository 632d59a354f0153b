package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testVenue() Venue {
	return Venue{ID: 1, Capacity: 50, DayRateCents: 50_000, Available: true}
}

func validRequest(t *testing.T) Request {
	t.Helper()
	return Request{
		Span: Span{
			DateStart: day(2026, 3, 10),
			TimeStart: mustTime(t, "10:00"),
			TimeEnd:   mustTime(t, "12:00"),
		},
		Headcount: 20,
		EventType: "conference",
	}
}

func TestValidateAccepts(t *testing.T) {
	require.NoError(t, validRequest(t).Validate(testVenue()))
}

func TestValidateRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Request, *Venue)
		kind   error
	}{
		{
			name:   "unavailable venue",
			mutate: func(r *Request, v *Venue) { v.Available = false },
			kind:   ErrInvalidState,
		},
		{
			name:   "missing event type",
			mutate: func(r *Request, v *Venue) { r.EventType = "" },
			kind:   ErrInvalidInput,
		},
		{
			name:   "zero start date",
			mutate: func(r *Request, v *Venue) { r.Span.DateStart = time.Time{} },
			kind:   ErrInvalidInput,
		},
		{
			name:   "end time equals start time",
			mutate: func(r *Request, v *Venue) { r.Span.TimeEnd = r.Span.TimeStart },
			kind:   ErrInvalidInput,
		},
		{
			name:   "end time before start time",
			mutate: func(r *Request, v *Venue) { r.Span.TimeEnd = mustTime(t, "09:00") },
			kind:   ErrInvalidInput,
		},
		{
			name:   "end date before start date",
			mutate: func(r *Request, v *Venue) { r.Span.DateEnd = dayPtr(2026, 3, 9) },
			kind:   ErrInvalidInput,
		},
		{
			name:   "zero headcount",
			mutate: func(r *Request, v *Venue) { r.Headcount = 0 },
			kind:   ErrInvalidInput,
		},
		{
			name:   "headcount above capacity",
			mutate: func(r *Request, v *Venue) { r.Headcount = 60 },
			kind:   ErrInvalidInput,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validRequest(t)
			venue := testVenue()
			tc.mutate(&req, &venue)
			assert.ErrorIs(t, req.Validate(venue), tc.kind)
		})
	}
}

func TestTotalPriceCents(t *testing.T) {
	venue := testVenue()

	single := validRequest(t)
	assert.Equal(t, int64(50_000), single.TotalPriceCents(venue))

	multi := validRequest(t)
	multi.Span.DateEnd = dayPtr(2026, 3, 11)
	assert.Equal(t, int64(100_000), multi.TotalPriceCents(venue), "two days at the day rate")

	explicitSame := validRequest(t)
	explicitSame.Span.DateEnd = dayPtr(2026, 3, 10)
	assert.Equal(t, single.TotalPriceCents(venue), explicitSame.TotalPriceCents(venue),
		"explicit same-day end date prices like a nil end date")
}
