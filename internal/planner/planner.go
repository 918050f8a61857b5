package planner

import (
	"strings"
	"time"

	"github.com/rs/zerolog"

	"adpulse/domain/dataset"
	"adpulse/domain/hypothesis"
	"adpulse/internal/config"
)

// Intent classifies what the user asked the pipeline to look at.
type Intent string

const (
	IntentAnalyzeROAS      Intent = "analyze_roas"
	IntentAnalyzeCTR       Intent = "analyze_ctr"
	IntentCreativeOptimize Intent = "creative_optimize"
	IntentGeneralDiagnosis Intent = "general_diagnosis"
)

// QueryInfo captures the interpreted user query.
type QueryInfo struct {
	RawQuery  string    `json:"raw_query"`
	Intent    Intent    `json:"intent"`
	CreatedAt time.Time `json:"created_at"`
}

// Task is one step of an execution plan.
type Task struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Stage       string         `json:"stage"`
	Params      map[string]any `json:"params"`
	DependsOn   []string       `json:"depends_on"`
	Description string         `json:"description"`
}

// Plan is the ordered task list the pipeline executes, kept in the run
// output so a report reader can see what was attempted.
type Plan struct {
	QueryInfo      QueryInfo    `json:"query_info"`
	DatasetMeta    dataset.Meta `json:"dataset_meta"`
	CampaignFilter string       `json:"campaign_filter,omitempty"`
	Tasks          []Task       `json:"tasks"`
	CreatedAt      time.Time    `json:"plan_created_at"`
}

// Reflection is the planner's verdict on a finished run: retry with a
// wider window, or accept the results.
type Reflection struct {
	Retry    bool   `json:"retry"`
	Reason   string `json:"reason,omitempty"`
	NewTasks []Task `json:"new_tasks,omitempty"`
}

// Planner interprets queries, builds plans, and decides whether a
// low-confidence run deserves a wider-window retry.
type Planner struct {
	analysis config.AnalysisConfig
	cfg      config.PlannerConfig
	logger   zerolog.Logger
}

// New creates a planner.
func New(analysis config.AnalysisConfig, cfg config.PlannerConfig, logger zerolog.Logger) *Planner {
	return &Planner{analysis: analysis, cfg: cfg, logger: logger}
}

// InterpretQuery classifies the query by keyword. Classification is
// deterministic; the first matching intent wins.
func (p *Planner) InterpretQuery(query string) QueryInfo {
	q := strings.ToLower(strings.TrimSpace(query))
	var intent Intent
	switch {
	case strings.Contains(q, "roas") || strings.Contains(q, "revenue"):
		intent = IntentAnalyzeROAS
	case strings.Contains(q, "ctr") || strings.Contains(q, "click-through"):
		intent = IntentAnalyzeCTR
	case strings.Contains(q, "creative") || strings.Contains(q, "ads copy"):
		intent = IntentCreativeOptimize
	default:
		intent = IntentGeneralDiagnosis
	}
	return QueryInfo{RawQuery: query, Intent: intent, CreatedAt: time.Now().UTC()}
}

// GeneratePlan builds the six-step plan for a query. The task graph is
// fixed; the params record the thresholds the run will use.
func (p *Planner) GeneratePlan(query string, meta dataset.Meta, campaignFilter string) Plan {
	info := p.InterpretQuery(query)
	tasks := []Task{
		{
			ID:          "T1",
			Type:        "data_load_summary",
			Stage:       "summary",
			Params:      map[string]any{"sample": "auto"},
			DependsOn:   []string{},
			Description: "Load the dataset, validate columns, compute daily, campaign and creative aggregates.",
		},
		{
			ID:    "T2",
			Type:  "insight_generation",
			Stage: "insight",
			Params: map[string]any{
				"intent":                    string(info.Intent),
				"initial_scope":             "account_and_campaign",
				"roas_drop_threshold_pct":   p.analysis.ROASDropThresholdPct,
				"low_ctr_threshold":         p.analysis.LowCTRThreshold,
				"min_impressions_for_stats": p.analysis.MinImpressionsForStats,
				"recent_window_days":        p.analysis.RecentWindowDays,
				"previous_window_days":      p.analysis.PreviousWindowDays,
			},
			DependsOn:   []string{"T1"},
			Description: "Generate hypotheses from the summarized data.",
		},
		{
			ID:    "T3",
			Type:  "metric_evaluation",
			Stage: "evaluator",
			Params: map[string]any{
				"recent_window_days":   p.analysis.RecentWindowDays,
				"previous_window_days": p.analysis.PreviousWindowDays,
			},
			DependsOn:   []string{"T2"},
			Description: "Validate numeric hypotheses with bootstrap and proportion tests, compute metric confidence.",
		},
		{
			ID:          "T4",
			Type:        "creative_evaluation",
			Stage:       "chs",
			Params:      map[string]any{},
			DependsOn:   []string{"T1"},
			Description: "Compute the Creative Health Score per campaign and its component deltas.",
		},
		{
			ID:          "T5",
			Type:        "creative_generation",
			Stage:       "copy",
			Params:      map[string]any{"target": "low_ctr_or_low_chs"},
			DependsOn:   []string{"T3", "T4"},
			Description: "Produce candidate creatives for low-CTR or low-CHS campaigns.",
		},
		{
			ID:          "T6",
			Type:        "final_aggregation",
			Stage:       "report",
			Params:      map[string]any{"outputs": []string{"insights.json", "creatives.json", "report.md", "report.html"}},
			DependsOn:   []string{"T3", "T4", "T5"},
			Description: "Fuse evidence into final confidences and write the run artifacts.",
		},
	}
	p.logger.Info().Str("intent", string(info.Intent)).Int("tasks", len(tasks)).Msg("plan generated")
	return Plan{
		QueryInfo:      info,
		DatasetMeta:    meta,
		CampaignFilter: campaignFilter,
		Tasks:          tasks,
		CreatedAt:      time.Now().UTC(),
	}
}

// Reflect inspects the fused hypotheses. When none reaches the
// reflection threshold the planner proposes a retry with the recent
// window doubled; an empty result set is accepted as-is.
func (p *Planner) Reflect(hyps []hypothesis.Hypothesis) Reflection {
	if len(hyps) == 0 {
		return Reflection{}
	}
	for _, h := range hyps {
		if h.FinalConfidence >= p.cfg.ReflectionConfidenceThresh {
			return Reflection{}
		}
	}
	p.logger.Warn().
		Float64("threshold", p.cfg.ReflectionConfidenceThresh).
		Msg("no hypothesis reached the reflection threshold, proposing wider-window retry")
	return Reflection{
		Retry:  true,
		Reason: "no high-confidence hypotheses; widening the recent window and re-running insight generation",
		NewTasks: []Task{
			{
				ID:    "T2b",
				Type:  "insight_generation",
				Stage: "insight",
				Params: map[string]any{
					"intent":             "wider_analysis",
					"recent_window_days": p.analysis.RecentWindowDays * 2,
				},
				DependsOn:   []string{"T1"},
				Description: "Retry insight generation with a wider recent window.",
			},
		},
	}
}
