package features

import (
	"fmt"
	"time"
)

// maxGapMinutes bounds the spring-forward scan; DST gaps are at most two
// hours in any real timezone.
const maxGapMinutes = 180

// CivilToUTC interprets a civil date ("2006-01-02") and clock time
// ("15:04" or "15:04:05") in loc and converts the instant to UTC.
//
// Wall times that are ambiguous (fall-back transition) resolve to the
// post-transition standard-offset instant, the later of the two. Wall
// times that do not exist (spring-forward gap) shift forward to the next
// valid wall time.
func CivilToUTC(dateStr, clockStr string, loc *time.Location) (time.Time, error) {
	d, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", dateStr, err)
	}

	c, err := time.Parse("15:04:05", clockStr)
	if err != nil {
		c, err = time.Parse("15:04", clockStr)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid time %q: %w", clockStr, err)
		}
	}

	want := c.Hour()*3600 + c.Minute()*60 + c.Second()

	var t time.Time
	found := false
	for i := 0; i <= maxGapMinutes; i++ {
		sec := want + i*60
		t = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, sec, 0, loc)
		h, m, s := t.Clock()
		// A wall time inside a DST gap comes back normalized to a
		// different clock reading; keep advancing until the round trip
		// holds.
		if h*3600+m*60+s == sec && t.Year() == d.Year() && t.YearDay() == d.YearDay() {
			found = true
			break
		}
	}
	if !found {
		return time.Time{}, fmt.Errorf("no valid instant for %s %s in %s", dateStr, clockStr, loc)
	}

	// Ambiguous wall time: the same clock reading recurs an hour later on
	// the post-transition standard offset. Pick that later instant, the
	// non-DST interpretation.
	if next := t.Add(time.Hour); sameWallClock(next, t) {
		t = next
	}

	return t.UTC(), nil
}

func sameWallClock(a, b time.Time) bool {
	ah, am, as := a.Clock()
	bh, bm, bs := b.Clock()
	ay, amo, ad := a.Date()
	by, bmo, bd := b.Date()
	return ah == bh && am == bm && as == bs && ay == by && amo == bmo && ad == bd
}
