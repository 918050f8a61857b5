package chs

// Record is the per-campaign Creative Health Score for one evaluation
// run. Behavior varies between the previous and recent windows; the text
// and fatigue components describe current state and are shared by both
// window scores. Records are computed once per run and not persisted
// across runs.
type Record struct {
	CampaignName   string  `json:"campaign_name"`
	CHSPrev        float64 `json:"chs_prev"`
	CHSRecent      float64 `json:"chs_recent"`
	BehaviorPrev   float64 `json:"behavior_prev"`
	BehaviorRecent float64 `json:"behavior_recent"`
	TextQuality    float64 `json:"text_quality"`
	FatigueScore   float64 `json:"fatigue_score"`
}

// Delta returns the CHS trend between windows.
func (r Record) Delta() float64 { return r.CHSRecent - r.CHSPrev }

// Summary maps campaign name to its CHS record.
type Summary map[string]Record
