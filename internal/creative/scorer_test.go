package creative

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"adpulse/domain/chs"
	"adpulse/domain/core"
	"adpulse/domain/dataset"
	"adpulse/domain/hypothesis"
	"adpulse/domain/metrics"
	"adpulse/internal/config"
)

func testAnalysisConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		RecentWindowDays:       2,
		PreviousWindowDays:     2,
		LowCTRThreshold:        0.02,
		MinImpressionsForStats: 1000,
	}
}

func defaultWeights() config.CHSConfig {
	return config.CHSConfig{BehaviorWeight: 0.5, TextWeight: 0.3, FatigueWeight: 0.2}
}

func scorerRow(t *testing.T, campaign, date string, roas, ctr float64, impressions int64) metrics.Row {
	t.Helper()
	d, err := time.Parse(metrics.DateFormat, date)
	if err != nil {
		t.Fatalf("bad date %q: %v", date, err)
	}
	return metrics.Row{CampaignName: campaign, Date: d, ROAS: roas, CTR: ctr, Impressions: impressions}
}

func TestScoreBounds(t *testing.T) {
	summary := &dataset.Summary{
		CampaignDaily: []metrics.Row{
			scorerRow(t, "A", "2025-01-01", 4.0, 0.03, 5000),
			scorerRow(t, "A", "2025-01-02", 4.0, 0.03, 5000),
			scorerRow(t, "A", "2025-01-03", 2.0, 0.02, 5000),
			scorerRow(t, "A", "2025-01-04", 2.0, 0.02, 5000),
			scorerRow(t, "B", "2025-01-01", 1.0, 0.01, 5000),
			scorerRow(t, "B", "2025-01-02", 1.0, 0.01, 5000),
			scorerRow(t, "B", "2025-01-03", 3.0, 0.04, 5000),
			scorerRow(t, "B", "2025-01-04", 3.0, 0.04, 5000),
		},
		CreativeRepetition: []dataset.RepetitionStats{
			{CampaignName: "A", TotalImpressions: 20000, UniqueCreatives: 2, TopCreativeShare: 0.9},
		},
		TextTerms: map[string][]dataset.TermCount{
			"A": {{Term: "comfort", Count: 10}, {Term: "widget", Count: 10}},
		},
	}

	got := NewScorer(testAnalysisConfig(), defaultWeights(), zerolog.Nop()).Score(summary)

	if len(got) != 2 {
		t.Fatalf("scored %d campaigns, want 2", len(got))
	}
	for name, rec := range got {
		for label, v := range map[string]float64{
			"behavior_prev":   rec.BehaviorPrev,
			"behavior_recent": rec.BehaviorRecent,
			"text_quality":    rec.TextQuality,
			"fatigue":         rec.FatigueScore,
		} {
			if v < 0 || v > 1 {
				t.Errorf("%s %s = %f out of [0,1]", name, label, v)
			}
		}
		if rec.CHSPrev < 0 || rec.CHSPrev > 100 || rec.CHSRecent < 0 || rec.CHSRecent > 100 {
			t.Errorf("%s CHS out of [0,100]: prev=%f recent=%f", name, rec.CHSPrev, rec.CHSRecent)
		}
	}

	// Campaign A led on both metrics in the previous window and trailed
	// in the recent one; its behavior score must fall.
	a := got["A"]
	if a.BehaviorRecent >= a.BehaviorPrev {
		t.Errorf("campaign A behavior should decline: prev=%f recent=%f", a.BehaviorPrev, a.BehaviorRecent)
	}
}

func TestScoreSkipsLowVolume(t *testing.T) {
	summary := &dataset.Summary{
		CampaignDaily: []metrics.Row{
			scorerRow(t, "Tiny", "2025-01-01", 4.0, 0.03, 100),
			scorerRow(t, "Tiny", "2025-01-02", 4.0, 0.03, 100),
			scorerRow(t, "Tiny", "2025-01-03", 2.0, 0.02, 100),
			scorerRow(t, "Tiny", "2025-01-04", 2.0, 0.02, 100),
		},
	}

	got := NewScorer(testAnalysisConfig(), defaultWeights(), zerolog.Nop()).Score(summary)
	if len(got) != 0 {
		t.Fatalf("low-volume campaign scored: %v", got)
	}
}

func TestDeriveEvidenceDecline(t *testing.T) {
	// behavior 0.75->0.55, text 0.55, fatigue 0.40, weights 0.5/0.3/0.2:
	// chs_prev=62.0, chs_recent=52.0, delta=-10.
	record := chs.Record{
		CampaignName:   "C",
		CHSPrev:        62.0,
		CHSRecent:      52.0,
		BehaviorPrev:   0.75,
		BehaviorRecent: 0.55,
		TextQuality:    0.55,
		FatigueScore:   0.40,
	}

	ev := deriveEvidence(chs.Summary{"C": record}, "C")

	if ev.CHSDelta == nil || math.Abs(*ev.CHSDelta - -10.0) > 1e-9 {
		t.Fatalf("delta = %v, want -10", ev.CHSDelta)
	}
	want := 0.4 + 0.4*(10.0/30.0)
	if math.Abs(ev.Confidence-want) > 1e-9 {
		t.Errorf("confidence = %f, want %f", ev.Confidence, want)
	}
	if ev.Components == nil || ev.Components.TextQuality != 0.55 {
		t.Error("component scores not carried into evidence")
	}
}

func TestDeriveEvidenceCases(t *testing.T) {
	improving := chs.Record{CampaignName: "C", CHSPrev: 50, CHSRecent: 60}

	tests := []struct {
		name     string
		summary  chs.Summary
		campaign string
		want     float64
	}{
		{"no record", chs.Summary{}, "missing", 0.3},
		{"improving chs", chs.Summary{"C": improving}, "C", 0.2},
		{"large decline saturates", chs.Summary{"C": {CampaignName: "C", CHSPrev: 90, CHSRecent: 20}}, "C", 0.8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := deriveEvidence(tt.summary, tt.campaign)
			if math.Abs(ev.Confidence-tt.want) > 1e-9 {
				t.Errorf("confidence = %f, want %f", ev.Confidence, tt.want)
			}
		})
	}
}

func TestEnrichOnlyCreativeDriver(t *testing.T) {
	summary := chs.Summary{"C": {CampaignName: "C", CHSPrev: 60, CHSRecent: 50}}
	hyps := []hypothesis.Hypothesis{
		{
			ID:               core.HypothesisID("HYP-001"),
			Scope:            hypothesis.ScopeCampaign,
			CampaignName:     "C",
			DriverType:       hypothesis.DriverCreative,
			RequiredEvidence: []hypothesis.EvidenceTag{hypothesis.EvidenceCHSTrend},
		},
		{
			ID:               core.HypothesisID("HYP-002"),
			Scope:            hypothesis.ScopeCampaign,
			CampaignName:     "C",
			DriverType:       hypothesis.DriverFunnel,
			RequiredEvidence: []hypothesis.EvidenceTag{hypothesis.EvidenceSegmentBreakdown},
		},
	}

	out := NewScorer(testAnalysisConfig(), defaultWeights(), zerolog.Nop()).Enrich(hyps, summary)

	if out[0].Creative == nil {
		t.Error("creative hypothesis should gain creative evidence")
	}
	if out[1].Creative != nil {
		t.Error("funnel hypothesis must pass through without creative evidence")
	}
}

func TestTextQuality(t *testing.T) {
	tests := []struct {
		name  string
		terms []dataset.TermCount
		want  float64
	}{
		{"no terms", nil, 0.5},
		{
			"all benefit terms",
			[]dataset.TermCount{{Term: "comfort", Count: 5}, {Term: "soft", Count: 5}},
			0.3 + 0.4*1.0,
		},
		{
			"mixed vocabulary",
			[]dataset.TermCount{
				{Term: "comfort", Count: 5},
				{Term: "sale", Count: 3},
				{Term: "widget", Count: 2},
			},
			0.3 + 0.4*0.5 + 0.2*0.3,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := textQuality(tt.terms)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("textQuality = %f, want %f", got, tt.want)
			}
		})
	}
}

func TestFatigueScore(t *testing.T) {
	repetition := map[string]dataset.RepetitionStats{
		"heavy": {CampaignName: "heavy", TotalImpressions: 1000, TopCreativeShare: 0.9},
		"even":  {CampaignName: "even", TotalImpressions: 1000, TopCreativeShare: 0.25},
		"idle":  {CampaignName: "idle", TotalImpressions: 0, TopCreativeShare: 0},
	}

	if got := fatigueScore(repetition, "heavy"); math.Abs(got-0.1) > 1e-9 {
		t.Errorf("heavy rotation fatigue = %f, want 0.1", got)
	}
	if got := fatigueScore(repetition, "even"); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("even rotation fatigue = %f, want 0.75", got)
	}
	if got := fatigueScore(repetition, "idle"); got != 1.0 {
		t.Errorf("present record without impressions fatigue = %f, want 1.0", got)
	}
	if got := fatigueScore(repetition, "unknown"); got != 0.5 {
		t.Errorf("missing repetition data fatigue = %f, want 0.5", got)
	}
}

func TestNormalizeWeights(t *testing.T) {
	b, tx, f := normalizeWeights(config.CHSConfig{BehaviorWeight: 1, TextWeight: 1, FatigueWeight: 2})
	if math.Abs(b-0.25) > 1e-9 || math.Abs(tx-0.25) > 1e-9 || math.Abs(f-0.5) > 1e-9 {
		t.Errorf("normalized weights = %f/%f/%f", b, tx, f)
	}

	b, tx, f = normalizeWeights(config.CHSConfig{})
	if b != 0.5 || tx != 0.3 || f != 0.2 {
		t.Errorf("degenerate weights should fall back to defaults, got %f/%f/%f", b, tx, f)
	}
}
