package summary

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/rs/zerolog"

	"adpulse/domain/core"
	"adpulse/domain/dataset"
	"adpulse/domain/metrics"
	"adpulse/internal/config"
	"adpulse/ports"
)

// RequiredColumns are the columns every performance export must carry.
var RequiredColumns = []string{
	"campaign_name",
	"adset_name",
	"date",
	"spend",
	"impressions",
	"clicks",
	"purchases",
	"revenue",
	"creative_type",
	"creative_message",
	"audience_type",
	"platform",
	"country",
}

// record is one coerced input row.
type record struct {
	campaign string
	adset    string
	date     time.Time
	creative string
	spend    float64
	impr     int64
	clicks   int64
	purch    int64
	revenue  float64
}

// Summarizer turns a raw table into the materialized summary every
// downstream stage reads: meta, daily series, whole-period aggregates,
// creative repetition stats, and per-campaign term frequencies.
type Summarizer struct {
	cfg    config.DataConfig
	logger zerolog.Logger
}

// NewSummarizer creates a summarizer with the given data settings.
func NewSummarizer(cfg config.DataConfig, logger zerolog.Logger) *Summarizer {
	if cfg.DateCol == "" {
		cfg.DateCol = "date"
	}
	return &Summarizer{cfg: cfg, logger: logger}
}

// Build validates the table, coerces rows, and assembles the summary.
// Rows with unparseable dates are dropped; unparseable numerics count as
// zero. Missing required columns abort the run.
func (s *Summarizer) Build(table *ports.Table) (*dataset.Summary, error) {
	if table == nil || len(table.Rows) == 0 {
		return nil, core.ErrDatasetEmpty
	}
	if err := s.validateColumns(table); err != nil {
		return nil, err
	}

	records := s.coerceRows(table)
	if len(records) == 0 {
		return nil, core.ErrDatasetEmpty
	}

	out := &dataset.Summary{
		Meta:          s.buildMeta(records),
		GlobalDaily:   s.buildGlobalDaily(records),
		CampaignDaily: s.buildCampaignDaily(records),
		TextTerms:     buildTextTerms(records),
	}
	out.CampaignSummaries = s.buildCampaignSummaries(records)
	out.CreativeSummaries, out.CreativeRepetition = s.buildCreativeSummaries(records)

	s.logger.Info().
		Int("rows", out.Meta.NRows).
		Int("campaigns", out.Meta.NCampaigns).
		Str("date_min", out.Meta.DateMin).
		Str("date_max", out.Meta.DateMax).
		Msg("dataset summary built")

	return out, nil
}

func (s *Summarizer) validateColumns(table *ports.Table) error {
	var missing []string
	for _, col := range RequiredColumns {
		name := col
		if col == "date" {
			name = s.cfg.DateCol
		}
		if table.ColumnIndex(name) < 0 {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return core.NewMissingColumnsError(missing)
	}
	return nil
}

func (s *Summarizer) coerceRows(table *ports.Table) []record {
	idx := func(name string) int { return table.ColumnIndex(name) }
	dateIdx := idx(s.cfg.DateCol)
	campaignIdx := idx("campaign_name")
	adsetIdx := idx("adset_name")
	creativeIdx := idx("creative_message")
	spendIdx := idx("spend")
	imprIdx := idx("impressions")
	clicksIdx := idx("clicks")
	purchIdx := idx("purchases")
	revenueIdx := idx("revenue")

	dropped := 0
	var firstBad error
	records := make([]record, 0, len(table.Rows))
	for i, row := range table.Rows {
		d, err := parseDate(cell(row, dateIdx))
		if err != nil {
			if firstBad == nil {
				firstBad = core.NewMalformedDateError(cell(row, dateIdx), i)
			}
			dropped++
			continue
		}
		records = append(records, record{
			campaign: cell(row, campaignIdx),
			adset:    cell(row, adsetIdx),
			date:     d,
			creative: cell(row, creativeIdx),
			spend:    parseFloat(cell(row, spendIdx)),
			impr:     parseInt(cell(row, imprIdx)),
			clicks:   parseInt(cell(row, clicksIdx)),
			purch:    parseInt(cell(row, purchIdx)),
			revenue:  parseFloat(cell(row, revenueIdx)),
		})
	}
	if dropped > 0 {
		s.logger.Warn().Err(firstBad).Int("dropped", dropped).Msg("rows dropped for unparseable dates")
	}
	return records
}

func (s *Summarizer) buildMeta(records []record) dataset.Meta {
	campaigns := map[string]bool{}
	adsets := map[string]bool{}
	creatives := map[string]bool{}
	spendByCampaign := map[string]float64{}
	var dateMin, dateMax time.Time

	for i, r := range records {
		campaigns[r.campaign] = true
		adsets[r.adset] = true
		creatives[r.creative] = true
		spendByCampaign[r.campaign] += r.spend
		if i == 0 || r.date.Before(dateMin) {
			dateMin = r.date
		}
		if i == 0 || r.date.After(dateMax) {
			dateMax = r.date
		}
	}

	spendVals := make([]float64, 0, len(spendByCampaign))
	for _, v := range spendByCampaign {
		spendVals = append(spendVals, v)
	}
	mean, _ := stats.Mean(spendVals)
	median, _ := stats.Median(spendVals)
	p90, _ := stats.Percentile(spendVals, 90)

	return dataset.Meta{
		NRows:       len(records),
		DateMin:     dateMin.Format(metrics.DateFormat),
		DateMax:     dateMax.Format(metrics.DateFormat),
		NCampaigns:  len(campaigns),
		NAdsets:     len(adsets),
		NCreatives:  len(creatives),
		SpendMean:   mean,
		SpendMedian: median,
		SpendP90:    p90,
	}
}

// accum is a running aggregate for one group key.
type accum struct {
	spend   float64
	impr    int64
	clicks  int64
	purch   int64
	revenue float64
}

func (a *accum) add(r record) {
	a.spend += r.spend
	a.impr += r.impr
	a.clicks += r.clicks
	a.purch += r.purch
	a.revenue += r.revenue
}

func (s *Summarizer) buildGlobalDaily(records []record) metrics.Series {
	byDate := map[time.Time]*accum{}
	for _, r := range records {
		a := byDate[r.date]
		if a == nil {
			a = &accum{}
			byDate[r.date] = a
		}
		a.add(r)
	}

	dates := make([]time.Time, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	out := make(metrics.Series, 0, len(dates))
	for _, d := range dates {
		out = append(out, dailyRow("", d, byDate[d]))
	}
	return out
}

func (s *Summarizer) buildCampaignDaily(records []record) []metrics.Row {
	type key struct {
		campaign string
		date     time.Time
	}
	byKey := map[key]*accum{}
	for _, r := range records {
		k := key{r.campaign, r.date}
		a := byKey[k]
		if a == nil {
			a = &accum{}
			byKey[k] = a
		}
		a.add(r)
	}

	keys := make([]key, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if !keys[i].date.Equal(keys[j].date) {
			return keys[i].date.Before(keys[j].date)
		}
		return keys[i].campaign < keys[j].campaign
	})

	out := make([]metrics.Row, 0, len(keys))
	for _, k := range keys {
		out = append(out, dailyRow(k.campaign, k.date, byKey[k]))
	}
	return out
}

func (s *Summarizer) buildCampaignSummaries(records []record) []dataset.CampaignSummary {
	byCampaign := map[string]*accum{}
	for _, r := range records {
		a := byCampaign[r.campaign]
		if a == nil {
			a = &accum{}
			byCampaign[r.campaign] = a
		}
		a.add(r)
	}

	names := make([]string, 0, len(byCampaign))
	for n := range byCampaign {
		names = append(names, n)
	}
	sort.Strings(names)

	out := make([]dataset.CampaignSummary, 0, len(names))
	for _, n := range names {
		a := byCampaign[n]
		out = append(out, dataset.CampaignSummary{
			CampaignName: n,
			Spend:        a.spend,
			Impressions:  a.impr,
			Clicks:       a.clicks,
			Purchases:    a.purch,
			Revenue:      a.revenue,
			CTR:          safeRatio(float64(a.clicks), float64(a.impr)),
			CVR:          safeRatio(float64(a.purch), float64(a.clicks)),
			CPC:          safeRatio(a.spend, float64(a.clicks)),
			CPM:          safeRatio(a.spend, float64(a.impr)) * 1000.0,
			ROAS:         safeRatio(a.revenue, a.spend),
		})
	}
	return out
}

func (s *Summarizer) buildCreativeSummaries(records []record) ([]dataset.CreativeSummary, []dataset.RepetitionStats) {
	type key struct {
		campaign string
		creative string
	}
	byKey := map[key]*accum{}
	for _, r := range records {
		k := key{r.campaign, r.creative}
		a := byKey[k]
		if a == nil {
			a = &accum{}
			byKey[k] = a
		}
		a.add(r)
	}

	keys := make([]key, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].campaign != keys[j].campaign {
			return keys[i].campaign < keys[j].campaign
		}
		return keys[i].creative < keys[j].creative
	})

	summaries := make([]dataset.CreativeSummary, 0, len(keys))
	type repAccum struct {
		total   int64
		top     int64
		uniques int
	}
	repByCampaign := map[string]*repAccum{}
	var campaignOrder []string

	for _, k := range keys {
		a := byKey[k]
		summaries = append(summaries, dataset.CreativeSummary{
			CampaignName:    k.campaign,
			CreativeMessage: k.creative,
			Spend:           a.spend,
			Impressions:     a.impr,
			Clicks:          a.clicks,
			Purchases:       a.purch,
			Revenue:         a.revenue,
			CTR:             safeRatio(float64(a.clicks), float64(a.impr)),
			ROAS:            safeRatio(a.revenue, a.spend),
		})

		rep := repByCampaign[k.campaign]
		if rep == nil {
			rep = &repAccum{}
			repByCampaign[k.campaign] = rep
			campaignOrder = append(campaignOrder, k.campaign)
		}
		rep.total += a.impr
		rep.uniques++
		if a.impr > rep.top {
			rep.top = a.impr
		}
	}

	repetition := make([]dataset.RepetitionStats, 0, len(campaignOrder))
	for _, c := range campaignOrder {
		rep := repByCampaign[c]
		share := 0.0
		if rep.total > 0 {
			share = float64(rep.top) / float64(rep.total)
		}
		repetition = append(repetition, dataset.RepetitionStats{
			CampaignName:     c,
			TotalImpressions: rep.total,
			UniqueCreatives:  rep.uniques,
			TopCreativeShare: share,
		})
	}
	return summaries, repetition
}

func dailyRow(campaign string, d time.Time, a *accum) metrics.Row {
	return metrics.Row{
		CampaignName: campaign,
		Date:         d,
		Spend:        a.spend,
		Impressions:  a.impr,
		Clicks:       a.clicks,
		Purchases:    a.purch,
		Revenue:      a.revenue,
		CTR:          safeRatio(float64(a.clicks), float64(a.impr)),
		ROAS:         safeRatio(a.revenue, a.spend),
	}
}

// safeRatio maps a zero or missing denominator to 0 instead of Inf/NaN.
func safeRatio(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(metrics.DateFormat, s)
}

func parseFloat(s string) float64 {
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt(s string) int64 {
	if s == "" {
		return 0
	}
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	// Excel exports sometimes carry integer columns as floats ("1200.0").
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}
