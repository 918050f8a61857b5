package evaluator

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"adpulse/domain/core"
	"adpulse/domain/dataset"
	"adpulse/domain/hypothesis"
	"adpulse/domain/metrics"
	"adpulse/internal/config"
	"adpulse/ports"
)

// rngStage names the evaluator's RNG streams.
const rngStage = "bootstrap"

// minBootstrapSamples is the minimum daily values per window for the
// bootstrap test to run.
const minBootstrapSamples = 2

// Evaluator attaches statistical evidence to hypotheses that request
// metric significance; all other hypotheses pass through untouched.
// Hypotheses are independent of each other, so they are tested
// concurrently; per-hypothesis RNG streams keep the bootstrap p-values
// reproducible regardless of scheduling.
type Evaluator struct {
	analysis config.AnalysisConfig
	cfg      config.EvaluatorConfig
	rng      ports.RNG
	logger   zerolog.Logger
}

// NewEvaluator creates an evaluator with the given settings.
func NewEvaluator(analysis config.AnalysisConfig, cfg config.EvaluatorConfig, rng ports.RNG, logger zerolog.Logger) *Evaluator {
	return &Evaluator{analysis: analysis, cfg: cfg, rng: rng, logger: logger}
}

// Evaluate returns a new slice with metric evidence attached. Input
// hypotheses are not mutated. A hypothesis whose series cannot be
// resolved, or whose windows are empty, gets zero confidence and an
// unvalidated flag rather than an error.
func (e *Evaluator) Evaluate(ctx context.Context, hyps []hypothesis.Hypothesis, summary *dataset.Summary) []hypothesis.Hypothesis {
	out := make([]hypothesis.Hypothesis, len(hyps))
	dailyByCampaign := summary.DailyByCampaign()

	g, _ := errgroup.WithContext(ctx)
	for i := range hyps {
		i := i
		g.Go(func() error {
			out[i] = e.evaluateOne(hyps[i], summary.GlobalDaily, dailyByCampaign)
			return nil
		})
	}
	g.Wait()

	validated := 0
	for _, h := range out {
		if h.Metric != nil && h.Metric.Validated {
			validated++
		}
	}
	e.logger.Info().Int("hypotheses", len(out)).Int("validated", validated).Msg("metric evaluation complete")
	return out
}

func (e *Evaluator) evaluateOne(
	h hypothesis.Hypothesis,
	globalDaily metrics.Series,
	dailyByCampaign map[string]metrics.Series,
) hypothesis.Hypothesis {
	if !h.Requires(hypothesis.EvidenceMetricSignificance) {
		return h
	}

	if err := h.Validate(); err != nil {
		return e.withoutEvidence(h, err)
	}

	series, err := e.resolveSeries(h, globalDaily, dailyByCampaign)
	if err != nil {
		return e.withoutEvidence(h, err)
	}

	prev, recent := metrics.SplitWindows(series, e.analysis.RecentWindowDays, e.analysis.PreviousWindowDays)
	if len(prev) == 0 || len(recent) == 0 {
		return e.withoutEvidence(h, core.ErrInsufficientData)
	}

	prevROASVals := roasValues(prev)
	recentROASVals := roasValues(recent)

	prevImpr := metrics.SumImpressions(prev)
	recentImpr := metrics.SumImpressions(recent)
	prevClicks := metrics.SumClicks(prev)
	recentClicks := metrics.SumClicks(recent)

	effectROAS := metrics.PctChange(metrics.AvgROAS(prev), metrics.AvgROAS(recent))
	effectCTR := metrics.PctChange(metrics.AvgCTR(prev), metrics.AvgCTR(recent))
	effectSize := effectROAS
	if effectSize == nil {
		effectSize = effectCTR
	}

	var pROAS *float64
	if len(prevROASVals) >= minBootstrapSamples && len(recentROASVals) >= minBootstrapSamples {
		stream := e.rng.Stream(rngStage, h.ID.String(), e.cfg.Seed)
		p := BootstrapMeanDiff(prevROASVals, recentROASVals, e.cfg.BootstrapIters, stream)
		pROAS = &p
	}

	var pCTR *float64
	if prevImpr > 0 && recentImpr > 0 {
		pCTR = ProportionZTest(prevClicks, prevImpr, recentClicks, recentImpr)
	}

	totalImpr := prevImpr + recentImpr
	pForConf := pROAS
	if pForConf == nil {
		pForConf = pCTR
	}

	confidence := 0.5 *
		evidenceVolumeFactor(totalImpr) *
		significanceFactor(pForConf, e.cfg.PValueThreshold) *
		stabilityFactor(len(prev)+len(recent))
	confidence = metrics.Clamp01(confidence)

	validated := effectSize != nil && math.Abs(*effectSize) >= 5 && confidence >= 0.5

	h.Metric = &hypothesis.MetricEvidence{
		Confidence:    confidence,
		Validated:     validated,
		EffectSizePct: effectSize,
		PValueROAS:    pROAS,
		PValueCTR:     pCTR,
		Sample: hypothesis.SampleStats{
			PrevDays:          len(prev),
			RecentDays:        len(recent),
			PrevImpressions:   prevImpr,
			RecentImpressions: recentImpr,
			PrevClicks:        prevClicks,
			RecentClicks:      recentClicks,
		},
	}
	return h
}

// withoutEvidence attaches zero-confidence evidence and records why the
// hypothesis could not be tested. Insufficient data is a normal outcome
// and only logged at debug.
func (e *Evaluator) withoutEvidence(h hypothesis.Hypothesis, err error) hypothesis.Hypothesis {
	evt := e.logger.Warn()
	if core.IsInsufficientData(err) {
		evt = e.logger.Debug()
	}
	evt.Err(err).Str("id", h.ID.String()).Msg("no metric evidence")
	h.Metric = &hypothesis.MetricEvidence{Confidence: 0, Validated: false}
	return h
}

func (e *Evaluator) resolveSeries(
	h hypothesis.Hypothesis,
	globalDaily metrics.Series,
	dailyByCampaign map[string]metrics.Series,
) (metrics.Series, error) {
	switch h.Scope {
	case hypothesis.ScopeOverall:
		return globalDaily, nil
	case hypothesis.ScopeCampaign:
		series, ok := dailyByCampaign[h.CampaignName]
		if !ok {
			return nil, fmt.Errorf("%w: campaign %q", core.ErrSeriesNotFound, h.CampaignName)
		}
		sorted := append(metrics.Series(nil), series...)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })
		return sorted, nil
	default:
		return nil, fmt.Errorf("%w: scope %q", core.ErrSeriesNotFound, h.Scope)
	}
}

func roasValues(rows metrics.Series) []float64 {
	vals := make([]float64, len(rows))
	for i, r := range rows {
		vals[i] = r.ROAS
	}
	return vals
}

// evidenceVolumeFactor scales impression volume into [0,1]. Around 10^5
// impressions saturates it; no volume at all falls back to 0.3.
func evidenceVolumeFactor(totalImpressions int64) float64 {
	if totalImpressions <= 0 {
		return 0.3
	}
	return math.Min(1.0, math.Log10(float64(totalImpressions))/5.0)
}

// significanceFactor maps a p-value to a multiplier: no test 0.5,
// significant 1.0, otherwise degrading with p but floored at 0.3.
func significanceFactor(pValue *float64, threshold float64) float64 {
	if pValue == nil {
		return 0.5
	}
	if *pValue <= threshold {
		return 1.0
	}
	return math.Max(0.3, 1-*pValue)
}

// stabilityFactor rewards time coverage; 7+ combined window days
// saturates it.
func stabilityFactor(nDays int) float64 {
	return math.Min(1.0, float64(nDays)/7.0)
}
