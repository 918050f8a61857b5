package report

import (
	"sort"

	"adpulse/domain/hypothesis"
	"adpulse/domain/metrics"
)

// creativeEvidenceFallback stands in for a creative confidence when the
// creative driver was claimed but the scorer produced no evidence.
const creativeEvidenceFallback = 0.4

// FuseConfidence computes the final confidence for every hypothesis and
// returns a new slice. Creative-driven hypotheses blend metric and
// creative evidence with a bias toward metric; everything else rides on
// metric evidence alone, falling back to the generator's prior.
func FuseConfidence(hyps []hypothesis.Hypothesis) []hypothesis.Hypothesis {
	out := make([]hypothesis.Hypothesis, len(hyps))
	for i, h := range hyps {
		switch {
		case h.Metric == nil && h.Creative == nil:
			h.FinalConfidence = h.InitialConfidence
		case h.DriverType == hypothesis.DriverCreative:
			m := h.InitialConfidence
			if h.Metric != nil {
				m = h.Metric.Confidence
			}
			c := creativeEvidenceFallback
			if h.Creative != nil {
				c = h.Creative.Confidence
			}
			h.FinalConfidence = 0.6*m + 0.4*c
		case h.Metric != nil:
			h.FinalConfidence = h.Metric.Confidence
		default:
			h.FinalConfidence = h.InitialConfidence
		}
		h.FinalConfidence = metrics.Clamp01(h.FinalConfidence)
		out[i] = h
	}
	return out
}

// RankByConfidence returns the hypotheses ordered by final confidence,
// highest first. Ties keep generation order, which puts the overall
// hypothesis and earlier campaigns first.
func RankByConfidence(hyps []hypothesis.Hypothesis) []hypothesis.Hypothesis {
	out := append([]hypothesis.Hypothesis(nil), hyps...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].FinalConfidence > out[j].FinalConfidence
	})
	return out
}
