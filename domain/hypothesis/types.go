package hypothesis

import (
	"adpulse/domain/core"
)

// Scope is the granularity a hypothesis speaks about.
type Scope string

const (
	ScopeOverall  Scope = "overall"
	ScopeCampaign Scope = "campaign"
)

// DriverType classifies the likely root cause of a metric movement.
type DriverType string

const (
	DriverOverall  DriverType = "overall"
	DriverCreative DriverType = "creative"
	DriverFunnel   DriverType = "funnel"
	DriverAudience DriverType = "audience"
	DriverMixed    DriverType = "mixed"
)

// EvidenceTag names a kind of evidence a downstream stage can attach.
type EvidenceTag string

const (
	// EvidenceMetricSignificance asks the significance tester for
	// bootstrap/z-test evidence on the hypothesis' daily series.
	EvidenceMetricSignificance EvidenceTag = "metric_significance"
	// EvidenceCHSTrend asks the creative scorer for a CHS trend.
	EvidenceCHSTrend EvidenceTag = "chs_trend"
	// EvidenceSegmentBreakdown is consumed outside this pipeline.
	EvidenceSegmentBreakdown EvidenceTag = "segment_breakdown"
)

// WindowSnapshot captures the window-average metrics a hypothesis was
// generated from.
type WindowSnapshot struct {
	ROAS        *float64 `json:"roas"`
	CTR         *float64 `json:"ctr"`
	Impressions *int64   `json:"impressions,omitempty"`
}

// ChangeSnapshot captures the percent changes between windows. Nil means
// the change was undefined (zero or missing baseline).
type ChangeSnapshot struct {
	ROAS *float64 `json:"roas"`
	CTR  *float64 `json:"ctr"`
}

// MetricsSnapshot is the prev/recent picture attached at generation time.
type MetricsSnapshot struct {
	Prev      WindowSnapshot `json:"prev"`
	Recent    WindowSnapshot `json:"recent"`
	PctChange ChangeSnapshot `json:"pct_change"`
}

// SampleStats records the sample volumes the significance tester saw.
type SampleStats struct {
	PrevDays          int   `json:"prev_days"`
	RecentDays        int   `json:"recent_days"`
	PrevImpressions   int64 `json:"prev_impressions"`
	RecentImpressions int64 `json:"recent_impressions"`
	PrevClicks        int64 `json:"prev_clicks"`
	RecentClicks      int64 `json:"recent_clicks"`
}

// MetricEvidence is attached by the significance tester. A nil pointer on
// the hypothesis means the stage has not evaluated it.
type MetricEvidence struct {
	Confidence    float64     `json:"metric_confidence"`
	Validated     bool        `json:"validated"`
	EffectSizePct *float64    `json:"metric_effect_size_pct"`
	PValueROAS    *float64    `json:"metric_p_value_roas"`
	PValueCTR     *float64    `json:"metric_p_value_ctr"`
	Sample        SampleStats `json:"metric_sample"`
}

// CreativeComponents are the CHS component scores behind a creative trend.
type CreativeComponents struct {
	BehaviorPrev   float64 `json:"behavior_prev"`
	BehaviorRecent float64 `json:"behavior_recent"`
	TextQuality    float64 `json:"text_quality"`
	Fatigue        float64 `json:"fatigue"`
}

// CreativeEvidence is attached by the creative health scorer. A nil
// pointer means the stage has not evaluated the hypothesis. When no CHS
// record exists for the campaign only Confidence is meaningful.
type CreativeEvidence struct {
	Confidence  float64             `json:"creative_confidence"`
	CHSPrev     *float64            `json:"chs_prev,omitempty"`
	CHSRecent   *float64            `json:"chs_recent,omitempty"`
	CHSDelta    *float64            `json:"chs_delta,omitempty"`
	Components  *CreativeComponents `json:"chs_components,omitempty"`
	Explanation string              `json:"creative_confidence_explanation,omitempty"`
}

// Hypothesis is the record threaded through all enrichment stages. The
// generator owns the top fields; the significance tester owns Metric; the
// creative scorer owns Creative; fusion owns FinalConfidence. A stage
// never touches a field it does not own.
type Hypothesis struct {
	ID                core.HypothesisID `json:"id"`
	Scope             Scope             `json:"scope"`
	CampaignName      string            `json:"campaign_name,omitempty"`
	DriverType        DriverType        `json:"driver_type"`
	Statement         string            `json:"hypothesis"`
	Rationale         string            `json:"rationale"`
	Snapshot          MetricsSnapshot   `json:"metrics_snapshot"`
	RequiredEvidence  []EvidenceTag     `json:"required_evidence"`
	InitialConfidence float64           `json:"initial_confidence"`

	Metric   *MetricEvidence   `json:"metric_evidence,omitempty"`
	Creative *CreativeEvidence `json:"creative_evidence,omitempty"`

	FinalConfidence float64 `json:"final_confidence"`
}

// Requires reports whether the hypothesis asks for the given evidence.
func (h *Hypothesis) Requires(tag EvidenceTag) bool {
	for _, t := range h.RequiredEvidence {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks structural integrity. Insufficient data is never a
// validation error; a hypothesis without an ID or scope is.
func (h *Hypothesis) Validate() error {
	if h.ID == "" {
		return core.ErrEmptyHypothesis
	}
	if h.Scope != ScopeOverall && h.Scope != ScopeCampaign {
		return core.NewValidationError("scope", string(h.Scope))
	}
	if h.Scope == ScopeCampaign && h.CampaignName == "" {
		return core.NewValidationError("campaign_name", "empty for campaign scope")
	}
	return nil
}
