package metrics

import "time"

// SplitWindows splits a daily series into a previous and a recent window
// anchored at the maximum date present in the series, not at "today", so
// historical fixtures evaluate the same way every run.
//
// A row with date d belongs to recent iff prevEnd < d <= maxDate and to
// previous iff prevStart < d <= prevEnd, where
// prevEnd = maxDate - recentDays and prevStart = prevEnd - previousDays.
// Rows outside both ranges are discarded. Either window may come back
// empty when the series span is shorter than the combined window length;
// callers must treat empty windows as "cannot evaluate".
func SplitWindows(series Series, recentDays, previousDays int) (prev, recent Series) {
	if len(series) == 0 {
		return nil, nil
	}

	maxDate := series[0].Date
	for _, r := range series[1:] {
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
	}

	prevEnd := maxDate.AddDate(0, 0, -recentDays)
	prevStart := prevEnd.AddDate(0, 0, -previousDays)

	for _, r := range series {
		d := r.Date
		switch {
		case inWindow(d, prevStart, prevEnd):
			prev = append(prev, r)
		case inWindow(d, prevEnd, maxDate):
			recent = append(recent, r)
		}
	}
	return prev, recent
}

// inWindow reports start < d <= end.
func inWindow(d, start, end time.Time) bool {
	return d.After(start) && !d.After(end)
}
