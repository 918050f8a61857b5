package insight

import (
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"adpulse/domain/core"
	"adpulse/domain/dataset"
	"adpulse/domain/hypothesis"
	"adpulse/domain/metrics"
	"adpulse/internal/config"
)

func testConfig() config.AnalysisConfig {
	return config.AnalysisConfig{
		RecentWindowDays:       2,
		PreviousWindowDays:     2,
		ROASDropThresholdPct:   -20.0,
		LowCTRThreshold:        0.02,
		MinImpressionsForStats: 1000,
	}
}

func row(t *testing.T, campaign, date string, roas, ctr float64, impressions int64) metrics.Row {
	t.Helper()
	d, err := time.Parse(metrics.DateFormat, date)
	if err != nil {
		t.Fatalf("bad date %q: %v", date, err)
	}
	return metrics.Row{CampaignName: campaign, Date: d, ROAS: roas, CTR: ctr, Impressions: impressions}
}

func TestGenerateOverallROASDrop(t *testing.T) {
	// Account ROAS drops from avg 4.0 to avg 2.5 over 4 days split 2/2.
	summary := &dataset.Summary{
		GlobalDaily: metrics.Series{
			row(t, "", "2025-01-01", 3.9, 0.03, 1000),
			row(t, "", "2025-01-02", 4.1, 0.03, 1000),
			row(t, "", "2025-01-03", 2.4, 0.02, 1000),
			row(t, "", "2025-01-04", 2.6, 0.02, 1000),
		},
	}

	hyps := NewGenerator(testConfig(), zerolog.Nop()).Generate(summary, "")

	if len(hyps) != 1 {
		t.Fatalf("got %d hypotheses, want 1", len(hyps))
	}
	h := hyps[0]
	if h.ID != core.OverallHypothesisID {
		t.Errorf("ID = %s, want %s", h.ID, core.OverallHypothesisID)
	}
	if h.Scope != hypothesis.ScopeOverall || h.DriverType != hypothesis.DriverOverall {
		t.Errorf("scope/driver = %s/%s", h.Scope, h.DriverType)
	}
	if got := h.Snapshot.PctChange.ROAS; got == nil || math.Abs(*got - -37.5) > 1e-9 {
		t.Fatalf("roas change = %v, want -37.5", got)
	}
	// 0.4 + 0.4 * min(1, 37.5/50)
	if math.Abs(h.InitialConfidence-0.7) > 1e-9 {
		t.Errorf("initial confidence = %f, want 0.7", h.InitialConfidence)
	}
	if !h.Requires(hypothesis.EvidenceMetricSignificance) {
		t.Error("overall hypothesis must require metric significance")
	}
}

func TestGenerateStableAccountEmitsNothing(t *testing.T) {
	summary := &dataset.Summary{
		GlobalDaily: metrics.Series{
			row(t, "", "2025-01-01", 3.0, 0.03, 1000),
			row(t, "", "2025-01-02", 3.0, 0.03, 1000),
			row(t, "", "2025-01-03", 3.1, 0.03, 1000),
			row(t, "", "2025-01-04", 2.95, 0.03, 1000),
		},
	}

	hyps := NewGenerator(testConfig(), zerolog.Nop()).Generate(summary, "")
	if len(hyps) != 0 {
		t.Fatalf("stable account produced %d hypotheses", len(hyps))
	}
}

func TestGenerateSkipsLowVolumeCampaign(t *testing.T) {
	// Combined window impressions 500, below the 1000 minimum.
	summary := &dataset.Summary{
		CampaignSummaries: []dataset.CampaignSummary{{CampaignName: "Tiny"}},
		CampaignDaily: []metrics.Row{
			row(t, "Tiny", "2025-01-01", 4.0, 0.03, 0),
			row(t, "Tiny", "2025-01-02", 4.0, 0.03, 0),
			row(t, "Tiny", "2025-01-03", 1.0, 0.01, 250),
			row(t, "Tiny", "2025-01-04", 1.0, 0.01, 250),
		},
	}

	hyps := NewGenerator(testConfig(), zerolog.Nop()).Generate(summary, "")
	if len(hyps) != 0 {
		t.Fatalf("low-volume campaign produced %d hypotheses", len(hyps))
	}
}

func TestGenerateCampaignDrivers(t *testing.T) {
	tests := []struct {
		name       string
		prevCTR    float64
		recentCTR  float64
		wantDriver hypothesis.DriverType
		wantTags   []hypothesis.EvidenceTag
	}{
		{
			name:       "ctr drop points at creative",
			prevCTR:    0.040,
			recentCTR:  0.030,
			wantDriver: hypothesis.DriverCreative,
			wantTags:   []hypothesis.EvidenceTag{hypothesis.EvidenceMetricSignificance, hypothesis.EvidenceCHSTrend},
		},
		{
			name:       "stable ctr points at funnel",
			prevCTR:    0.040,
			recentCTR:  0.040,
			wantDriver: hypothesis.DriverFunnel,
			wantTags:   []hypothesis.EvidenceTag{hypothesis.EvidenceMetricSignificance, hypothesis.EvidenceSegmentBreakdown},
		},
		{
			name:       "rising ctr points at audience",
			prevCTR:    0.040,
			recentCTR:  0.050,
			wantDriver: hypothesis.DriverAudience,
			wantTags:   []hypothesis.EvidenceTag{hypothesis.EvidenceMetricSignificance, hypothesis.EvidenceSegmentBreakdown},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summary := &dataset.Summary{
				CampaignSummaries: []dataset.CampaignSummary{{CampaignName: "C"}},
				CampaignDaily: []metrics.Row{
					row(t, "C", "2025-01-01", 4.0, tt.prevCTR, 5000),
					row(t, "C", "2025-01-02", 4.0, tt.prevCTR, 5000),
					row(t, "C", "2025-01-03", 2.0, tt.recentCTR, 5000),
					row(t, "C", "2025-01-04", 2.0, tt.recentCTR, 5000),
				},
			}

			hyps := NewGenerator(testConfig(), zerolog.Nop()).Generate(summary, "")
			if len(hyps) != 1 {
				t.Fatalf("got %d hypotheses, want 1", len(hyps))
			}
			h := hyps[0]
			if h.ID != core.HypothesisID("HYP-001") {
				t.Errorf("ID = %s, want HYP-001", h.ID)
			}
			if h.DriverType != tt.wantDriver {
				t.Errorf("driver = %s, want %s", h.DriverType, tt.wantDriver)
			}
			if len(h.RequiredEvidence) != len(tt.wantTags) {
				t.Fatalf("evidence tags = %v, want %v", h.RequiredEvidence, tt.wantTags)
			}
			for i, tag := range tt.wantTags {
				if h.RequiredEvidence[i] != tag {
					t.Errorf("evidence[%d] = %s, want %s", i, h.RequiredEvidence[i], tag)
				}
			}
		})
	}
}

func TestGenerateLowCTRHypothesis(t *testing.T) {
	// ROAS is stable, but recent CTR sits under the threshold.
	summary := &dataset.Summary{
		CampaignSummaries: []dataset.CampaignSummary{{CampaignName: "Weak Creative"}},
		CampaignDaily: []metrics.Row{
			row(t, "Weak Creative", "2025-01-01", 3.0, 0.018, 5000),
			row(t, "Weak Creative", "2025-01-02", 3.0, 0.018, 5000),
			row(t, "Weak Creative", "2025-01-03", 3.0, 0.010, 5000),
			row(t, "Weak Creative", "2025-01-04", 3.0, 0.010, 5000),
		},
	}

	hyps := NewGenerator(testConfig(), zerolog.Nop()).Generate(summary, "")
	if len(hyps) != 1 {
		t.Fatalf("got %d hypotheses, want 1", len(hyps))
	}
	h := hyps[0]
	if h.DriverType != hypothesis.DriverCreative {
		t.Errorf("driver = %s, want creative", h.DriverType)
	}
	if !h.Requires(hypothesis.EvidenceCHSTrend) {
		t.Error("low-CTR hypothesis must require a CHS trend")
	}
	if h.InitialConfidence < 0 || h.InitialConfidence > 1 {
		t.Errorf("initial confidence %f out of [0,1]", h.InitialConfidence)
	}
}

func TestGenerateCampaignFilter(t *testing.T) {
	mk := func(name string) []metrics.Row {
		return []metrics.Row{
			row(t, name, "2025-01-01", 4.0, 0.03, 5000),
			row(t, name, "2025-01-02", 4.0, 0.03, 5000),
			row(t, name, "2025-01-03", 1.0, 0.01, 5000),
			row(t, name, "2025-01-04", 1.0, 0.01, 5000),
		}
	}
	summary := &dataset.Summary{
		CampaignSummaries: []dataset.CampaignSummary{{CampaignName: "A"}, {CampaignName: "B"}},
		CampaignDaily:     append(mk("A"), mk("B")...),
	}

	hyps := NewGenerator(testConfig(), zerolog.Nop()).Generate(summary, "B")
	for _, h := range hyps {
		if h.CampaignName != "B" {
			t.Errorf("filter leaked campaign %q", h.CampaignName)
		}
	}
	if len(hyps) == 0 {
		t.Fatal("filtered campaign should still produce hypotheses")
	}
}
