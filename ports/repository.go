package ports

import (
	"context"

	"adpulse/domain/chs"
	"adpulse/domain/core"
	"adpulse/domain/hypothesis"
)

// RunRepository persists the outcome of a pipeline run. Persistence is
// optional; the pipeline runs to completion without a repository and the
// file artifacts remain the primary output.
type RunRepository interface {
	// SaveRun stores the enriched hypothesis list and CHS summary for a
	// run, replacing any previous record with the same run ID.
	SaveRun(ctx context.Context, runID core.RunID, query string, hyps []hypothesis.Hypothesis, chsSummary chs.Summary) error

	// GetRun loads the hypotheses stored for a run.
	GetRun(ctx context.Context, runID core.RunID) ([]hypothesis.Hypothesis, error)
}
