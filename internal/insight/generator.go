package insight

import (
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog"

	"adpulse/domain/core"
	"adpulse/domain/dataset"
	"adpulse/domain/hypothesis"
	"adpulse/domain/metrics"
	"adpulse/internal/config"
)

// overallChangeThresholdPct is the minimum absolute account-level ROAS
// change worth a hypothesis.
const overallChangeThresholdPct = 5.0

// ctrStableBandPct is the CTR change band treated as "stable" when
// classifying campaign drivers.
const ctrStableBandPct = 5.0

// Generator detects meaningful ROAS/CTR movements between the previous
// and recent windows and emits candidate hypotheses with a heuristic
// initial confidence. Identical inputs always produce the identical list
// in the same order: the overall hypothesis first if present, then
// campaigns in input order, ROAS drop before low CTR per campaign.
type Generator struct {
	cfg    config.AnalysisConfig
	logger zerolog.Logger
}

// NewGenerator creates a generator with the given analysis settings.
func NewGenerator(cfg config.AnalysisConfig, logger zerolog.Logger) *Generator {
	return &Generator{cfg: cfg, logger: logger}
}

// Generate builds the hypothesis list from the data summary. An empty
// campaignFilter means all campaigns.
func (g *Generator) Generate(summary *dataset.Summary, campaignFilter string) []hypothesis.Hypothesis {
	if summary == nil {
		return nil
	}

	dailyByCampaign := summary.DailyByCampaign()

	hyps := g.buildOverall(summary.GlobalDaily)
	hyps = append(hyps, g.buildCampaigns(summary.CampaignSummaries, dailyByCampaign, campaignFilter)...)

	g.logger.Info().Int("hypotheses", len(hyps)).Msg("insight generation complete")
	return hyps
}

func (g *Generator) buildOverall(globalDaily metrics.Series) []hypothesis.Hypothesis {
	if len(globalDaily) == 0 {
		return nil
	}

	prev, recent := metrics.SplitWindows(globalDaily, g.cfg.RecentWindowDays, g.cfg.PreviousWindowDays)
	if len(prev) == 0 || len(recent) == 0 {
		return nil
	}

	prevROAS := metrics.AvgROAS(prev)
	recentROAS := metrics.AvgROAS(recent)
	prevCTR := metrics.AvgCTR(prev)
	recentCTR := metrics.AvgCTR(recent)

	roasChange := metrics.PctChange(prevROAS, recentROAS)
	ctrChange := metrics.PctChange(prevCTR, recentCTR)

	if roasChange == nil || math.Abs(*roasChange) <= overallChangeThresholdPct {
		return nil
	}

	statement := "Overall ROAS has increased in the recent period."
	if *roasChange < 0 {
		statement = "Overall ROAS has decreased in the recent period."
	}

	rationale := fmt.Sprintf("ROAS changed by %.1f%% (prev=%.2f, recent=%.2f).", *roasChange, *prevROAS, *recentROAS)
	if ctrChange != nil {
		rationale += fmt.Sprintf(" CTR changed by %.1f%% (prev=%.4f, recent=%.4f).", *ctrChange, *prevCTR, *recentCTR)
	}

	magnitude := math.Min(1.0, math.Abs(*roasChange)/50.0)
	initial := 0.4 + 0.4*magnitude

	return []hypothesis.Hypothesis{{
		ID:         core.OverallHypothesisID,
		Scope:      hypothesis.ScopeOverall,
		DriverType: hypothesis.DriverOverall,
		Statement:  statement,
		Rationale:  rationale,
		Snapshot: hypothesis.MetricsSnapshot{
			Prev:      hypothesis.WindowSnapshot{ROAS: prevROAS, CTR: prevCTR},
			Recent:    hypothesis.WindowSnapshot{ROAS: recentROAS, CTR: recentCTR},
			PctChange: hypothesis.ChangeSnapshot{ROAS: roasChange, CTR: ctrChange},
		},
		RequiredEvidence:  []hypothesis.EvidenceTag{hypothesis.EvidenceMetricSignificance},
		InitialConfidence: initial,
	}}
}

func (g *Generator) buildCampaigns(
	summaries []dataset.CampaignSummary,
	dailyByCampaign map[string]metrics.Series,
	campaignFilter string,
) []hypothesis.Hypothesis {
	var hyps []hypothesis.Hypothesis
	counter := 1

	for _, cs := range summaries {
		cname := cs.CampaignName
		if campaignFilter != "" && cname != campaignFilter {
			continue
		}

		daily := append(metrics.Series(nil), dailyByCampaign[cname]...)
		if len(daily) == 0 {
			continue
		}
		sort.Slice(daily, func(i, j int) bool { return daily[i].Date.Before(daily[j].Date) })

		prev, recent := metrics.SplitWindows(daily, g.cfg.RecentWindowDays, g.cfg.PreviousWindowDays)
		if len(prev) == 0 || len(recent) == 0 {
			continue
		}

		prevROAS := metrics.AvgROAS(prev)
		recentROAS := metrics.AvgROAS(recent)
		prevCTR := metrics.AvgCTR(prev)
		recentCTR := metrics.AvgCTR(recent)

		prevImpr := metrics.SumImpressions(prev)
		recentImpr := metrics.SumImpressions(recent)

		roasChange := metrics.PctChange(prevROAS, recentROAS)
		ctrChange := metrics.PctChange(prevCTR, recentCTR)

		if prevImpr+recentImpr < g.cfg.MinImpressionsForStats {
			g.logger.Debug().Str("campaign", cname).Int64("impressions", prevImpr+recentImpr).Msg("campaign below volume floor, skipped")
			continue
		}

		if roasChange == nil && ctrChange == nil {
			continue
		}

		snapshot := hypothesis.MetricsSnapshot{
			Prev:      hypothesis.WindowSnapshot{ROAS: prevROAS, CTR: prevCTR, Impressions: &prevImpr},
			Recent:    hypothesis.WindowSnapshot{ROAS: recentROAS, CTR: recentCTR, Impressions: &recentImpr},
			PctChange: hypothesis.ChangeSnapshot{ROAS: roasChange, CTR: ctrChange},
		}

		volumeFactor := volumeFactor(prevImpr + recentImpr)

		if roasChange != nil && *roasChange <= g.cfg.ROASDropThresholdPct {
			driver, statement := classifyDriver(roasChange, ctrChange)

			rationale := fmt.Sprintf("Campaign '%s' ROAS changed by %.1f%% (prev=%.2f, recent=%.2f). ",
				cname, *roasChange, *prevROAS, *recentROAS)
			if ctrChange != nil {
				rationale += fmt.Sprintf("CTR changed by %.1f%% (prev=%.4f, recent=%.4f). ",
					*ctrChange, *prevCTR, *recentCTR)
			}
			rationale += fmt.Sprintf("Impressions prev=%d, recent=%d.", prevImpr, recentImpr)

			magnitude := math.Min(1.0, math.Abs(*roasChange)/50.0)
			initial := 0.4 + 0.3*magnitude + 0.2*volumeFactor

			required := []hypothesis.EvidenceTag{hypothesis.EvidenceMetricSignificance}
			switch driver {
			case hypothesis.DriverCreative:
				required = append(required, hypothesis.EvidenceCHSTrend)
			case hypothesis.DriverFunnel, hypothesis.DriverAudience, hypothesis.DriverMixed:
				required = append(required, hypothesis.EvidenceSegmentBreakdown)
			}

			hyps = append(hyps, hypothesis.Hypothesis{
				ID:                core.SequentialHypothesisID(counter),
				Scope:             hypothesis.ScopeCampaign,
				CampaignName:      cname,
				DriverType:        driver,
				Statement:         statement,
				Rationale:         rationale,
				Snapshot:          snapshot,
				RequiredEvidence:  required,
				InitialConfidence: initial,
			})
			counter++
		}

		// A structurally low recent CTR earns its own creative hypothesis
		// even when ROAS held up, as long as no drop hypothesis fired.
		if prevCTR != nil && recentCTR != nil &&
			*recentCTR < g.cfg.LowCTRThreshold &&
			(roasChange == nil || *roasChange > g.cfg.ROASDropThresholdPct) {

			statement := fmt.Sprintf(
				"CTR is structurally low for campaign '%s', likely indicating weak ad creative or mismatch with audience.",
				cname)
			rationale := fmt.Sprintf(
				"Recent CTR=%.4f below threshold %.4f (prev CTR=%.4f). Impressions prev=%d, recent=%d.",
				*recentCTR, g.cfg.LowCTRThreshold, *prevCTR, prevImpr, recentImpr)

			magnitude := 0.5
			if g.cfg.LowCTRThreshold > 0 {
				magnitude = math.Min(1.0, math.Abs((*recentCTR-g.cfg.LowCTRThreshold)/g.cfg.LowCTRThreshold))
			}
			initial := 0.4 + 0.3*magnitude + 0.2*volumeFactor

			hyps = append(hyps, hypothesis.Hypothesis{
				ID:           core.SequentialHypothesisID(counter),
				Scope:        hypothesis.ScopeCampaign,
				CampaignName: cname,
				DriverType:   hypothesis.DriverCreative,
				Statement:    statement,
				Rationale:    rationale,
				Snapshot:     snapshot,
				RequiredEvidence: []hypothesis.EvidenceTag{
					hypothesis.EvidenceMetricSignificance,
					hypothesis.EvidenceCHSTrend,
				},
				InitialConfidence: initial,
			})
			counter++
		}
	}
	return hyps
}

// classifyDriver maps the ROAS/CTR change pattern to a driver type.
// ROAS down with CTR down points at creative fatigue; with CTR stable at
// a post-click problem; with CTR up at low-intent clicks.
func classifyDriver(roasChange, ctrChange *float64) (hypothesis.DriverType, string) {
	if roasChange == nil {
		return hypothesis.DriverMixed, "ROAS change is unclear but campaign performance looks unstable."
	}
	if ctrChange == nil {
		return hypothesis.DriverMixed, "ROAS dropped; unclear if driven by click-through or conversion."
	}

	if *roasChange < 0 {
		switch {
		case *ctrChange < -ctrStableBandPct:
			return hypothesis.DriverCreative,
				"ROAS and CTR both dropped; likely creative fatigue or weaker ad messaging."
		case math.Abs(*ctrChange) <= ctrStableBandPct:
			return hypothesis.DriverFunnel,
				"ROAS dropped while CTR is stable; likely a post-click or pricing/funnel issue."
		default:
			return hypothesis.DriverAudience,
				"ROAS dropped while CTR increased; likely attracting low-intent clicks or a mismatch between audience and product value."
		}
	}
	return hypothesis.DriverMixed,
		"ROAS improved; campaign is performing better overall, but deeper drivers need evaluation."
}

// volumeFactor scales log10 impressions into [0,1]; ~10^5 impressions
// saturates it.
func volumeFactor(totalImpressions int64) float64 {
	v := totalImpressions
	if v < 10 {
		v = 10
	}
	return math.Min(1.0, math.Log10(float64(v))/5.0)
}
