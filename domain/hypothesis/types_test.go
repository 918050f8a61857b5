package hypothesis

import (
	"errors"
	"testing"

	"adpulse/domain/core"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		h       Hypothesis
		wantOK  bool
		wantErr error
	}{
		{
			name:   "overall ok",
			h:      Hypothesis{ID: core.OverallHypothesisID, Scope: ScopeOverall},
			wantOK: true,
		},
		{
			name:   "campaign ok",
			h:      Hypothesis{ID: core.HypothesisID("HYP-001"), Scope: ScopeCampaign, CampaignName: "Summer Sale"},
			wantOK: true,
		},
		{
			name:    "missing id",
			h:       Hypothesis{Scope: ScopeOverall},
			wantErr: core.ErrEmptyHypothesis,
		},
		{
			name: "unknown scope",
			h:    Hypothesis{ID: core.HypothesisID("HYP-002"), Scope: Scope("adset")},
		},
		{
			name: "campaign scope without name",
			h:    Hypothesis{ID: core.HypothesisID("HYP-003"), Scope: ScopeCampaign},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.h.Validate()
			if tt.wantOK {
				if err != nil {
					t.Errorf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestRequires(t *testing.T) {
	h := Hypothesis{RequiredEvidence: []EvidenceTag{EvidenceMetricSignificance, EvidenceCHSTrend}}
	if !h.Requires(EvidenceMetricSignificance) || !h.Requires(EvidenceCHSTrend) {
		t.Error("listed evidence should be required")
	}
	if h.Requires(EvidenceSegmentBreakdown) {
		t.Error("unlisted evidence should not be required")
	}
}
