// Package calendar generates the canonical ordered fiscal period labels and
// maps calendar dates to and from them. It is pure and stateless: the same
// horizon always yields the same periods.
//
// Weekly periods follow ISO-8601: weeks start on Monday and week 1 is the
// week containing the year's first Thursday. The label year is the ISO
// week-year. Monthly periods are calendar months.
package calendar

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	customerrors "capacity-planner/errors"
	"capacity-planner/models"
)

// Horizon bounds the generated period universe: Back periods before and
// Ahead periods after the one containing Anchor. A zero Anchor means "now".
type Horizon struct {
	Anchor time.Time
	Back   int
	Ahead  int
}

func (h Horizon) anchorDay() time.Time {
	if h.Anchor.IsZero() {
		return midnightUTC(time.Now())
	}
	return midnightUTC(h.Anchor)
}

// Generate returns the ordered, contiguous, non-overlapping periods of the
// horizon: Back+1+Ahead labels with the anchor's period in the middle.
func Generate(g models.Granularity, h Horizon) []models.Period {
	anchor := h.anchorDay()
	periods := make([]models.Period, 0, h.Back+h.Ahead+1)
	for i := -h.Back; i <= h.Ahead; i++ {
		start, end := rangeAt(g, anchor, i)
		periods = append(periods, label(g, start, end))
	}
	return periods
}

// PeriodContaining returns the generated period (from the same horizon)
// whose date range contains date, or false if the date falls outside the
// horizon.
func PeriodContaining(date time.Time, g models.Granularity, h Horizon) (models.Period, bool) {
	d := midnightUTC(date)
	anchor := h.anchorDay()
	for i := -h.Back; i <= h.Ahead; i++ {
		start, end := rangeAt(g, anchor, i)
		if !d.Before(start) && !d.After(end) {
			return label(g, start, end), true
		}
	}
	return "", false
}

var labelPattern = regexp.MustCompile(`^F(Wk|Mo)(\d{1,2}): (\d{2})/(\d{2})-(\d{2})/(\d{2}) \((\d{4})\)$`)

// DateRangeOf parses a period label back into its inclusive calendar range.
// Both bounds are midnight UTC of the first and last day. Labels that do not
// match the generated pattern fail with ErrMalformedPeriodLabel; this never
// happens for periods produced by Generate.
func DateRangeOf(p models.Period) (time.Time, time.Time, error) {
	m := labelPattern.FindStringSubmatch(string(p))
	if m == nil {
		return time.Time{}, time.Time{}, malformed(p)
	}

	num, _ := strconv.Atoi(m[2])
	sm, _ := strconv.Atoi(m[3])
	sd, _ := strconv.Atoi(m[4])
	em, _ := strconv.Atoi(m[5])
	ed, _ := strconv.Atoi(m[6])
	year, _ := strconv.Atoi(m[7])

	if sm < 1 || sm > 12 || em < 1 || em > 12 || sd < 1 || sd > 31 || ed < 1 || ed > 31 {
		return time.Time{}, time.Time{}, malformed(p)
	}

	// The label year is the ISO week-year (or the month's year). A week
	// spanning the December/January boundary sits partly outside it: week 1
	// starts in the previous calendar year, week >= 52 ends in the next.
	startYear, endYear := year, year
	if m[1] == "Wk" && sm == 12 && em == 1 {
		if num == 1 {
			startYear = year - 1
		} else {
			endYear = year + 1
		}
	}

	start := time.Date(startYear, time.Month(sm), sd, 0, 0, 0, 0, time.UTC)
	end := time.Date(endYear, time.Month(em), ed, 0, 0, 0, 0, time.UTC)
	if start.Day() != sd || end.Day() != ed || end.Before(start) {
		return time.Time{}, time.Time{}, malformed(p)
	}
	return start, end, nil
}

func malformed(p models.Period) error {
	return &customerrors.PeriodLabelError{Label: string(p), Err: customerrors.ErrMalformedPeriodLabel}
}

// Overlaps reports whether the period's date range intersects the inclusive
// filter range (periodEnd >= rangeStart AND periodStart <= rangeEnd).
func Overlaps(p models.Period, r models.DateRange) (bool, error) {
	start, end, err := DateRangeOf(p)
	if err != nil {
		return false, err
	}
	from := midnightUTC(r.From)
	to := midnightUTC(r.To)
	return !end.Before(from) && !start.After(to), nil
}

func rangeAt(g models.Granularity, anchor time.Time, offset int) (time.Time, time.Time) {
	if g == models.Month {
		first := time.Date(anchor.Year(), anchor.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, offset, 0)
		return first, first.AddDate(0, 1, -1)
	}
	ws := weekStart(anchor).AddDate(0, 0, offset*7)
	return ws, ws.AddDate(0, 0, 6)
}

// weekStart returns the Monday of the ISO week containing t.
func weekStart(t time.Time) time.Time {
	t = midnightUTC(t)
	back := (int(t.Weekday()) + 6) % 7
	return t.AddDate(0, 0, -back)
}

func label(g models.Granularity, start, end time.Time) models.Period {
	if g == models.Month {
		return models.Period(fmt.Sprintf("FMo%d: %02d/%02d-%02d/%02d (%d)",
			int(start.Month()), start.Month(), start.Day(), end.Month(), end.Day(), start.Year()))
	}
	year, week := start.ISOWeek()
	return models.Period(fmt.Sprintf("FWk%d: %02d/%02d-%02d/%02d (%d)",
		week, start.Month(), start.Day(), end.Month(), end.Day(), year))
}

func midnightUTC(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
