package dataset

import "adpulse/domain/metrics"

// Meta describes the ingested dataset.
type Meta struct {
	NRows      int    `json:"n_rows"`
	DateMin    string `json:"date_min,omitempty"`
	DateMax    string `json:"date_max,omitempty"`
	NCampaigns int    `json:"n_campaigns"`
	NAdsets    int    `json:"n_adsets"`
	NCreatives int    `json:"n_creatives"`

	// Spend distribution across campaigns, for the dataset overview.
	SpendMean   float64 `json:"spend_mean"`
	SpendMedian float64 `json:"spend_median"`
	SpendP90    float64 `json:"spend_p90"`
}

// CampaignSummary is a whole-period aggregate for one campaign.
type CampaignSummary struct {
	CampaignName string  `json:"campaign_name"`
	Spend        float64 `json:"spend"`
	Impressions  int64   `json:"impressions"`
	Clicks       int64   `json:"clicks"`
	Purchases    int64   `json:"purchases"`
	Revenue      float64 `json:"revenue"`
	CTR          float64 `json:"ctr"`
	CVR          float64 `json:"cvr"`
	CPC          float64 `json:"cpc"`
	CPM          float64 `json:"cpm"`
	ROAS         float64 `json:"roas"`
}

// CreativeSummary is a whole-period aggregate for one (campaign, creative
// message) pair.
type CreativeSummary struct {
	CampaignName    string  `json:"campaign_name"`
	CreativeMessage string  `json:"creative_message"`
	Spend           float64 `json:"spend"`
	Impressions     int64   `json:"impressions"`
	Clicks          int64   `json:"clicks"`
	Purchases       int64   `json:"purchases"`
	Revenue         float64 `json:"revenue"`
	CTR             float64 `json:"ctr"`
	ROAS            float64 `json:"roas"`
}

// RepetitionStats measures how concentrated a campaign's impressions are
// in its top creative. Feeds the CHS fatigue component.
type RepetitionStats struct {
	CampaignName     string  `json:"campaign_name"`
	TotalImpressions int64   `json:"total_impressions"`
	UniqueCreatives  int     `json:"unique_creatives"`
	TopCreativeShare float64 `json:"impression_share_of_top_creative"`
}

// TermCount is one token and its frequency across a campaign's creative
// messages.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Summary is the materialized view of the dataset every downstream stage
// reads. It is built once per run and never mutated afterwards.
type Summary struct {
	Meta               Meta                   `json:"meta"`
	GlobalDaily        metrics.Series         `json:"global_daily"`
	CampaignDaily      []metrics.Row          `json:"campaign_daily"`
	CampaignSummaries  []CampaignSummary      `json:"campaign_summary"`
	CreativeSummaries  []CreativeSummary      `json:"creative_summary"`
	CreativeRepetition []RepetitionStats      `json:"creative_repetition"`
	TextTerms          map[string][]TermCount `json:"text_terms"`
}

// DailyByCampaign groups the campaign daily rows by campaign.
func (s *Summary) DailyByCampaign() map[string]metrics.Series {
	return metrics.ByCampaign(s.CampaignDaily)
}

// RepetitionByCampaign indexes repetition stats by campaign.
func (s *Summary) RepetitionByCampaign() map[string]RepetitionStats {
	out := make(map[string]RepetitionStats, len(s.CreativeRepetition))
	for _, r := range s.CreativeRepetition {
		out[r.CampaignName] = r
	}
	return out
}
