package calendar_test

import (
	"testing"
	"time"

	"capacity-planner/calendar"
	customerrors "capacity-planner/errors"
	"capacity-planner/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestGenerate_WeeklyLabels(t *testing.T) {
	// Wednesday 2025-04-02 sits in ISO week 14 (Mon 03/31 - Sun 04/06).
	h := calendar.Horizon{Anchor: day(2025, time.April, 2), Back: 2, Ahead: 2}

	periods := calendar.Generate(models.Week, h)
	assert.Equal(t, []models.Period{
		"FWk12: 03/17-03/23 (2025)",
		"FWk13: 03/24-03/30 (2025)",
		"FWk14: 03/31-04/06 (2025)",
		"FWk15: 04/07-04/13 (2025)",
		"FWk16: 04/14-04/20 (2025)",
	}, periods)
}

func TestGenerate_MonthlyLabels(t *testing.T) {
	h := calendar.Horizon{Anchor: day(2025, time.April, 15), Back: 1, Ahead: 1}

	periods := calendar.Generate(models.Month, h)
	assert.Equal(t, []models.Period{
		"FMo3: 03/01-03/31 (2025)",
		"FMo4: 04/01-04/30 (2025)",
		"FMo5: 05/01-05/31 (2025)",
	}, periods)
}

func TestGenerate_ContiguousNonOverlapping(t *testing.T) {
	tests := map[string]struct {
		g models.Granularity
		h calendar.Horizon
	}{
		"WeeklyAcrossYearBoundary": {
			g: models.Week,
			h: calendar.Horizon{Anchor: day(2024, time.December, 31), Back: 6, Ahead: 6},
		},
		"MonthlyAcrossYearBoundary": {
			g: models.Month,
			h: calendar.Horizon{Anchor: day(2024, time.November, 10), Back: 4, Ahead: 4},
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			periods := calendar.Generate(tt.g, tt.h)
			require.Len(t, periods, tt.h.Back+tt.h.Ahead+1)

			var prevEnd time.Time
			for i, period := range periods {
				start, end, err := calendar.DateRangeOf(period)
				require.NoError(t, err, "period %s", period)
				assert.False(t, end.Before(start))
				if i > 0 {
					assert.Equal(t, prevEnd.AddDate(0, 0, 1), start,
						"period %s must start the day after its predecessor ends", period)
				}
				prevEnd = end
			}
		})
	}
}

func TestDateRangeOf_YearRollover(t *testing.T) {
	tests := map[string]struct {
		period models.Period
		start  time.Time
		end    time.Time
	}{
		"Week1StartsInPriorYear": {
			period: "FWk1: 12/30-01/05 (2025)",
			start:  day(2024, time.December, 30),
			end:    day(2025, time.January, 5),
		},
		"Week52EndsInNextYear": {
			period: "FWk52: 12/26-01/01 (2022)",
			start:  day(2022, time.December, 26),
			end:    day(2023, time.January, 1),
		},
		"PlainMidYearWeek": {
			period: "FWk14: 03/31-04/06 (2025)",
			start:  day(2025, time.March, 31),
			end:    day(2025, time.April, 6),
		},
		"December": {
			period: "FMo12: 12/01-12/31 (2025)",
			start:  day(2025, time.December, 1),
			end:    day(2025, time.December, 31),
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			start, end, err := calendar.DateRangeOf(tt.period)
			require.NoError(t, err)
			assert.Equal(t, tt.start, start)
			assert.Equal(t, tt.end, end)
		})
	}
}

func TestDateRangeOf_Malformed(t *testing.T) {
	tests := map[string]models.Period{
		"Garbage":          "week of april 6th",
		"SingleDigitMonth": "FWk14: 3/31-04/06 (2025)",
		"MonthOutOfRange":  "FWk14: 13/01-13/07 (2025)",
		"NonexistentDay":   "FMo2: 02/30-03/01 (2025)",
		"EndBeforeStart":   "FWk14: 04/06-03/31 (2025)",
		"MissingYear":      "FWk14: 03/31-04/06",
		"WrongPrefix":      "Week14: 03/31-04/06 (2025)",
	}
	for name, period := range tests {
		t.Run(name, func(t *testing.T) {
			_, _, err := calendar.DateRangeOf(period)
			assert.ErrorIs(t, err, customerrors.ErrMalformedPeriodLabel)

			var labelErr *customerrors.PeriodLabelError
			require.ErrorAs(t, err, &labelErr)
			assert.Equal(t, string(period), labelErr.Label)
		})
	}
}

func TestDateRangeOf_RoundTripsGeneratedLabels(t *testing.T) {
	h := calendar.Horizon{Anchor: day(2025, time.June, 1), Back: 60, Ahead: 60}
	for _, g := range []models.Granularity{models.Week, models.Month} {
		for _, period := range calendar.Generate(g, h) {
			start, _, err := calendar.DateRangeOf(period)
			require.NoError(t, err, "period %s", period)

			got, ok := calendar.PeriodContaining(start, g, h)
			require.True(t, ok, "period %s", period)
			assert.Equal(t, period, got)
		}
	}
}

func TestPeriodContaining(t *testing.T) {
	h := calendar.Horizon{Anchor: day(2025, time.April, 2), Back: 2, Ahead: 2}

	t.Run("MidWeekDate", func(t *testing.T) {
		period, ok := calendar.PeriodContaining(day(2025, time.April, 9), models.Week, h)
		require.True(t, ok)
		assert.Equal(t, models.Period("FWk15: 04/07-04/13 (2025)"), period)
	})

	t.Run("OutsideHorizon", func(t *testing.T) {
		_, ok := calendar.PeriodContaining(day(2025, time.August, 1), models.Week, h)
		assert.False(t, ok)
	})
}

func TestOverlaps(t *testing.T) {
	const period = models.Period("FWk14: 03/31-04/06 (2025)")

	tests := map[string]struct {
		from, to time.Time
		expected bool
	}{
		"RangeStartsOnPeriodEnd": {day(2025, time.April, 6), day(2025, time.April, 20), true},
		"RangeEndsOnPeriodStart": {day(2025, time.March, 20), day(2025, time.March, 31), true},
		"RangeInsidePeriod":      {day(2025, time.April, 2), day(2025, time.April, 3), true},
		"RangeAfterPeriod":       {day(2025, time.April, 7), day(2025, time.April, 10), false},
		"RangeBeforePeriod":      {day(2025, time.March, 1), day(2025, time.March, 30), false},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			ok, err := calendar.Overlaps(period, models.DateRange{From: tt.from, To: tt.to})
			require.NoError(t, err)
			assert.Equal(t, tt.expected, ok)
		})
	}

	t.Run("MalformedPeriod", func(t *testing.T) {
		_, err := calendar.Overlaps("garbage", models.DateRange{From: day(2025, time.April, 1), To: day(2025, time.April, 2)})
		assert.ErrorIs(t, err, customerrors.ErrMalformedPeriodLabel)
	})
}
