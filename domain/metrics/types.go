package metrics

import (
	"encoding/json"
	"time"
)

// DateFormat is the wire format for dates throughout the pipeline.
const DateFormat = "2006-01-02"

// Row is one (entity, date) observation of advertising performance.
// CTR and ROAS are pre-derived by the summarizer with zero denominators
// mapped to 0. Rows are immutable once built.
type Row struct {
	CampaignName string    `json:"campaign_name,omitempty"`
	Date         time.Time `json:"-"`
	Spend        float64   `json:"spend"`
	Impressions  int64     `json:"impressions"`
	Clicks       int64     `json:"clicks"`
	Purchases    int64     `json:"purchases"`
	Revenue      float64   `json:"revenue"`
	CTR          float64   `json:"ctr"`
	ROAS         float64   `json:"roas"`
}

// DateString returns the row date in wire format.
func (r Row) DateString() string { return r.Date.Format(DateFormat) }

// MarshalJSON emits the date as a plain YYYY-MM-DD string instead of the
// RFC 3339 timestamp time.Time would produce.
func (r Row) MarshalJSON() ([]byte, error) {
	type alias Row
	return json.Marshal(struct {
		Date string `json:"date"`
		alias
	}{Date: r.DateString(), alias: alias(r)})
}

// UnmarshalJSON parses the wire-format date back into the row.
func (r *Row) UnmarshalJSON(data []byte) error {
	type alias Row
	aux := struct {
		Date string `json:"date"`
		*alias
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if aux.Date == "" {
		return nil
	}
	d, err := time.Parse(DateFormat, aux.Date)
	if err != nil {
		return err
	}
	r.Date = d
	return nil
}

// Series is a date-sorted daily series for one entity (the whole account
// or a single campaign).
type Series []Row

// ByCampaign indexes campaign daily rows by campaign name, preserving
// input order within each campaign.
func ByCampaign(rows []Row) map[string]Series {
	out := make(map[string]Series)
	for _, r := range rows {
		if r.CampaignName == "" {
			continue
		}
		out[r.CampaignName] = append(out[r.CampaignName], r)
	}
	return out
}
