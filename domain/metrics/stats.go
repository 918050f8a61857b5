package metrics

// Optional float helpers. The pipeline distinguishes "no value" from zero
// throughout (a campaign with no spend has undefined ROAS change, not a
// -100% one), so averages and percent changes return a pointer that is nil
// when the quantity is undefined.

// Float returns a pointer to v. Convenience for literals in tests and
// snapshots.
func Float(v float64) *float64 { return &v }

// AvgROAS returns the arithmetic mean of the ROAS values in rows, or nil
// for an empty window.
func AvgROAS(rows Series) *float64 {
	return avg(rows, func(r Row) float64 { return r.ROAS })
}

// AvgCTR returns the arithmetic mean of the CTR values in rows, or nil
// for an empty window.
func AvgCTR(rows Series) *float64 {
	return avg(rows, func(r Row) float64 { return r.CTR })
}

func avg(rows Series, pick func(Row) float64) *float64 {
	if len(rows) == 0 {
		return nil
	}
	sum := 0.0
	for _, r := range rows {
		sum += pick(r)
	}
	v := sum / float64(len(rows))
	return &v
}

// PctChange computes (recent-prev)/prev*100, or nil when the change is
// undefined (prev missing or zero, or recent missing).
func PctChange(prev, recent *float64) *float64 {
	if prev == nil || *prev == 0 || recent == nil {
		return nil
	}
	v := (*recent - *prev) / *prev * 100.0
	return &v
}

// SumImpressions totals impressions over a window.
func SumImpressions(rows Series) int64 {
	var total int64
	for _, r := range rows {
		total += r.Impressions
	}
	return total
}

// SumClicks totals clicks over a window.
func SumClicks(rows Series) int64 {
	var total int64
	for _, r := range rows {
		total += r.Clicks
	}
	return total
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
