package evaluator

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ProportionZTest computes the two-sided p-value of a two-proportion
// z-test for (k1 successes of n1) vs (k2 successes of n2). It returns
// nil when the test is undefined: either sample empty, or the pooled
// proportion degenerate at 0 or 1. The test is symmetric in swapping the
// two samples.
func ProportionZTest(k1, n1, k2, n2 int64) *float64 {
	if n1 <= 0 || n2 <= 0 {
		return nil
	}

	p1 := float64(k1) / float64(n1)
	p2 := float64(k2) / float64(n2)
	pPool := float64(k1+k2) / float64(n1+n2)
	if pPool == 0 || pPool == 1 {
		return nil
	}

	denom := math.Sqrt(pPool * (1 - pPool) * (1/float64(n1) + 1/float64(n2)))
	if denom == 0 {
		return nil
	}

	z := (p1 - p2) / denom
	p := 2 * (1 - distuv.UnitNormal.CDF(math.Abs(z)))
	return &p
}
