package planner

import (
	"testing"

	"github.com/rs/zerolog"

	"adpulse/domain/dataset"
	"adpulse/domain/hypothesis"
	"adpulse/internal/config"
)

func testPlanner() *Planner {
	analysis := config.AnalysisConfig{
		RecentWindowDays:       14,
		PreviousWindowDays:     14,
		ROASDropThresholdPct:   -20,
		LowCTRThreshold:        0.02,
		MinImpressionsForStats: 1000,
	}
	cfg := config.PlannerConfig{MaxRetries: 2, ReflectionConfidenceThresh: 0.4}
	return New(analysis, cfg, zerolog.Nop())
}

func TestInterpretQuery(t *testing.T) {
	tests := []struct {
		query string
		want  Intent
	}{
		{"Analyze ROAS drop", IntentAnalyzeROAS},
		{"why did revenue fall", IntentAnalyzeROAS},
		{"Diagnose low CTR", IntentAnalyzeCTR},
		{"click-through rates look weak", IntentAnalyzeCTR},
		{"suggest new creative ideas", IntentCreativeOptimize},
		{"improve our ads copy", IntentCreativeOptimize},
		{"what is going on", IntentGeneralDiagnosis},
		{"", IntentGeneralDiagnosis},
	}
	p := testPlanner()
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			info := p.InterpretQuery(tt.query)
			if info.Intent != tt.want {
				t.Errorf("intent = %s, want %s", info.Intent, tt.want)
			}
			if info.RawQuery != tt.query {
				t.Errorf("raw query not preserved: %q", info.RawQuery)
			}
		})
	}
}

func TestGeneratePlanTaskGraph(t *testing.T) {
	plan := testPlanner().GeneratePlan("Analyze ROAS drop", dataset.Meta{NRows: 100}, "")

	if len(plan.Tasks) != 6 {
		t.Fatalf("got %d tasks, want 6", len(plan.Tasks))
	}

	wantDeps := map[string][]string{
		"T1": {},
		"T2": {"T1"},
		"T3": {"T2"},
		"T4": {"T1"},
		"T5": {"T3", "T4"},
		"T6": {"T3", "T4", "T5"},
	}
	seen := make(map[string]bool)
	for _, task := range plan.Tasks {
		deps, ok := wantDeps[task.ID]
		if !ok {
			t.Errorf("unexpected task %s", task.ID)
			continue
		}
		if len(task.DependsOn) != len(deps) {
			t.Errorf("%s depends_on = %v, want %v", task.ID, task.DependsOn, deps)
		}
		for _, dep := range task.DependsOn {
			if !seen[dep] {
				t.Errorf("%s depends on %s which has not appeared yet", task.ID, dep)
			}
		}
		seen[task.ID] = true
	}

	if plan.DatasetMeta.NRows != 100 {
		t.Error("dataset meta not carried into plan")
	}
}

func TestReflect(t *testing.T) {
	p := testPlanner()

	t.Run("no hypotheses accepts the run", func(t *testing.T) {
		if r := p.Reflect(nil); r.Retry {
			t.Error("empty result set must not trigger a retry")
		}
	})

	t.Run("one confident hypothesis accepts the run", func(t *testing.T) {
		hyps := []hypothesis.Hypothesis{
			{FinalConfidence: 0.2},
			{FinalConfidence: 0.45},
		}
		if r := p.Reflect(hyps); r.Retry {
			t.Error("run with a confident hypothesis must not retry")
		}
	})

	t.Run("all low confidence proposes wider window", func(t *testing.T) {
		hyps := []hypothesis.Hypothesis{
			{FinalConfidence: 0.1},
			{FinalConfidence: 0.35},
		}
		r := p.Reflect(hyps)
		if !r.Retry {
			t.Fatal("expected a retry proposal")
		}
		if len(r.NewTasks) != 1 || r.NewTasks[0].ID != "T2b" {
			t.Fatalf("unexpected retry tasks: %+v", r.NewTasks)
		}
		if days, _ := r.NewTasks[0].Params["recent_window_days"].(int); days != 28 {
			t.Errorf("retry window = %v, want 28", r.NewTasks[0].Params["recent_window_days"])
		}
	})
}
