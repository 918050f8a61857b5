package creative

import (
	"math"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"adpulse/domain/chs"
	"adpulse/domain/dataset"
	"adpulse/domain/hypothesis"
	"adpulse/domain/metrics"
	"adpulse/internal/config"
)

// Fixed vocabularies behind the text-quality component. Benefit terms
// are apparel-centric because that is the vertical the score was tuned
// on.
var (
	benefitTerms = termSet("comfort", "comfortable", "soft", "seamless", "breathable",
		"support", "fit", "stretch", "lightweight", "invisible", "smooth")
	urgencyTerms = termSet("today", "now", "limited", "last", "sale", "deal", "offer", "hurry")
	socialTerms  = termSet("rated", "reviews", "bestseller", "favorite", "loved", "customers")
)

func termSet(terms ...string) map[string]bool {
	s := make(map[string]bool, len(terms))
	for _, t := range terms {
		s[t] = true
	}
	return s
}

// Scorer computes per-campaign Creative Health Scores and derives
// creative confidence for hypotheses that point at a creative driver.
type Scorer struct {
	analysis config.AnalysisConfig
	weights  config.CHSConfig
	logger   zerolog.Logger
}

// NewScorer creates a scorer with the given window and weight settings.
func NewScorer(analysis config.AnalysisConfig, weights config.CHSConfig, logger zerolog.Logger) *Scorer {
	return &Scorer{analysis: analysis, weights: weights, logger: logger}
}

// windowStats holds the per-campaign window averages the behavior
// percentiles are ranked against.
type windowStats struct {
	campaignName string
	prevROAS     float64
	prevCTR      float64
	recentROAS   float64
	recentCTR    float64
}

// Score builds the CHS summary for every campaign with enough volume.
// Campaigns with an empty window, or fewer combined impressions than the
// stats minimum, get no record: downstream stages treat a missing record
// as weak creative evidence rather than an error.
func (s *Scorer) Score(summary *dataset.Summary) chs.Summary {
	dailyByCampaign := summary.DailyByCampaign()
	repetition := summary.RepetitionByCampaign()

	names := make([]string, 0, len(dailyByCampaign))
	for name := range dailyByCampaign {
		names = append(names, name)
	}
	sort.Strings(names)

	// First pass: window averages for every eligible campaign. The
	// behavior component is a rank against peers, so the pools must be
	// complete before any score is assembled.
	stats := make([]windowStats, 0, len(names))
	skipped := 0
	for _, name := range names {
		daily := append(metrics.Series(nil), dailyByCampaign[name]...)
		sort.Slice(daily, func(i, j int) bool { return daily[i].Date.Before(daily[j].Date) })

		prev, recent := metrics.SplitWindows(daily, s.analysis.RecentWindowDays, s.analysis.PreviousWindowDays)
		if len(prev) == 0 || len(recent) == 0 {
			skipped++
			continue
		}
		if metrics.SumImpressions(prev)+metrics.SumImpressions(recent) < s.analysis.MinImpressionsForStats {
			skipped++
			continue
		}

		stats = append(stats, windowStats{
			campaignName: name,
			prevROAS:     *metrics.AvgROAS(prev),
			prevCTR:      *metrics.AvgCTR(prev),
			recentROAS:   *metrics.AvgROAS(recent),
			recentCTR:    *metrics.AvgCTR(recent),
		})
	}

	prevROASPool := make([]float64, len(stats))
	prevCTRPool := make([]float64, len(stats))
	recentROASPool := make([]float64, len(stats))
	recentCTRPool := make([]float64, len(stats))
	for i, st := range stats {
		prevROASPool[i] = st.prevROAS
		prevCTRPool[i] = st.prevCTR
		recentROASPool[i] = st.recentROAS
		recentCTRPool[i] = st.recentCTR
	}

	wb, wt, wf := normalizeWeights(s.weights)

	out := make(chs.Summary, len(stats))
	for _, st := range stats {
		behaviorPrev := (percentile(st.prevROAS, prevROASPool) + percentile(st.prevCTR, prevCTRPool)) / 2
		behaviorRecent := (percentile(st.recentROAS, recentROASPool) + percentile(st.recentCTR, recentCTRPool)) / 2
		text := textQuality(summary.TextTerms[st.campaignName])
		fatigue := fatigueScore(repetition, st.campaignName)

		out[st.campaignName] = chs.Record{
			CampaignName:   st.campaignName,
			CHSPrev:        100 * (wb*behaviorPrev + wt*text + wf*fatigue),
			CHSRecent:      100 * (wb*behaviorRecent + wt*text + wf*fatigue),
			BehaviorPrev:   behaviorPrev,
			BehaviorRecent: behaviorRecent,
			TextQuality:    text,
			FatigueScore:   fatigue,
		}
	}

	s.logger.Info().Int("scored", len(out)).Int("skipped", skipped).Msg("creative health scoring complete")
	return out
}

// Enrich attaches creative evidence to hypotheses that named the
// creative driver and asked for a CHS trend. Everything else passes
// through unchanged.
func (s *Scorer) Enrich(hyps []hypothesis.Hypothesis, chsSummary chs.Summary) []hypothesis.Hypothesis {
	out := make([]hypothesis.Hypothesis, len(hyps))
	for i, h := range hyps {
		if h.DriverType == hypothesis.DriverCreative && h.Requires(hypothesis.EvidenceCHSTrend) && h.CampaignName != "" {
			h.Creative = deriveEvidence(chsSummary, h.CampaignName)
		}
		out[i] = h
	}
	return out
}

func deriveEvidence(chsSummary chs.Summary, campaignName string) *hypothesis.CreativeEvidence {
	record, ok := chsSummary[campaignName]
	if !ok {
		return &hypothesis.CreativeEvidence{
			Confidence:  0.3,
			Explanation: "no creative health record for campaign; volume below the stats minimum or windows empty",
		}
	}

	delta := record.Delta()
	ev := &hypothesis.CreativeEvidence{
		CHSPrev:   metrics.Float(record.CHSPrev),
		CHSRecent: metrics.Float(record.CHSRecent),
		CHSDelta:  metrics.Float(delta),
		Components: &hypothesis.CreativeComponents{
			BehaviorPrev:   record.BehaviorPrev,
			BehaviorRecent: record.BehaviorRecent,
			TextQuality:    record.TextQuality,
			Fatigue:        record.FatigueScore,
		},
	}
	if delta < 0 {
		ev.Confidence = 0.4 + 0.4*math.Min(1.0, math.Abs(delta)/30.0)
		ev.Explanation = "creative health declined between windows, consistent with a creative-driven drop"
	} else {
		ev.Confidence = 0.2
		ev.Explanation = "creative health did not decline between windows; creative driver unlikely"
	}
	return ev
}

// percentile ranks v within pool as the share of values at or below it.
func percentile(v float64, pool []float64) float64 {
	if len(pool) == 0 {
		return 0.5
	}
	count := 0
	for _, p := range pool {
		if p <= v {
			count++
		}
	}
	return float64(count) / float64(len(pool))
}

// textQuality scores a campaign's creative vocabulary by how much of it
// lands in the benefit, urgency and social-proof term lists.
func textQuality(terms []dataset.TermCount) float64 {
	total := 0
	benefit := 0
	urgency := 0
	social := 0
	for _, tc := range terms {
		total += tc.Count
		t := strings.ToLower(tc.Term)
		if benefitTerms[t] {
			benefit += tc.Count
		}
		if urgencyTerms[t] {
			urgency += tc.Count
		}
		if socialTerms[t] {
			social += tc.Count
		}
	}
	if total == 0 {
		return 0.5
	}
	n := float64(total)
	score := 0.3 + 0.4*(float64(benefit)/n) + 0.2*(float64(urgency)/n) + 0.1*(float64(social)/n)
	return metrics.Clamp01(score)
}

// fatigueScore penalizes impression concentration in one creative.
func fatigueScore(repetition map[string]dataset.RepetitionStats, campaignName string) float64 {
	rep, ok := repetition[campaignName]
	if !ok {
		return 0.5
	}
	return metrics.Clamp01(1 - rep.TopCreativeShare)
}

// normalizeWeights scales the component weights to sum to one, falling
// back to the defaults when the configured weights are degenerate.
func normalizeWeights(w config.CHSConfig) (behavior, text, fatigue float64) {
	sum := w.BehaviorWeight + w.TextWeight + w.FatigueWeight
	if sum <= 0 {
		return 0.5, 0.3, 0.2
	}
	return w.BehaviorWeight / sum, w.TextWeight / sum, w.FatigueWeight / sum
}
