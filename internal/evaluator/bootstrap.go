package evaluator

import (
	"math"
	"math/rand"
)

// BootstrapMeanDiff computes a two-sided bootstrap p-value for the
// difference in means under the null hypothesis that both samples come
// from the same distribution. Both samples are pooled; each iteration
// redraws two samples of the original sizes with replacement from the
// pool and the p-value is the fraction of resampled mean differences at
// least as extreme as the observed one.
//
// The caller provides the RNG stream, so the same inputs, iteration
// count, and seed always reproduce the same p-value.
func BootstrapMeanDiff(prevVals, recentVals []float64, iters int, rng *rand.Rand) float64 {
	combined := make([]float64, 0, len(prevVals)+len(recentVals))
	combined = append(combined, prevVals...)
	combined = append(combined, recentVals...)

	n1 := len(prevVals)
	n2 := len(recentVals)
	observed := math.Abs(mean(recentVals) - mean(prevVals))

	countExtreme := 0
	for i := 0; i < iters; i++ {
		sum1 := 0.0
		for j := 0; j < n1; j++ {
			sum1 += combined[rng.Intn(len(combined))]
		}
		sum2 := 0.0
		for j := 0; j < n2; j++ {
			sum2 += combined[rng.Intn(len(combined))]
		}
		diff := sum2/float64(n2) - sum1/float64(n1)
		if math.Abs(diff) >= observed {
			countExtreme++
		}
	}

	return float64(countExtreme) / float64(iters)
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
