package app

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"

	"adpulse/domain/core"
	"adpulse/domain/hypothesis"
	"adpulse/internal/config"
	"adpulse/internal/creative"
	apperrors "adpulse/internal/errors"
	"adpulse/internal/evaluator"
	"adpulse/internal/insight"
	"adpulse/internal/logging"
	"adpulse/internal/planner"
	"adpulse/internal/report"
	"adpulse/internal/summary"
	"adpulse/ports"
)

// RunRequest describes one analysis run. RunID may be left empty; the
// pipeline then generates one.
type RunRequest struct {
	RunID          core.RunID
	Query          string
	CampaignFilter string
	OutDir         string
}

// RunResult is what a completed run hands back to the caller.
type RunResult struct {
	RunID      core.RunID              `json:"run_id"`
	Plan       planner.Plan            `json:"plan"`
	Hypotheses []hypothesis.Hypothesis `json:"hypotheses"`
	Reflection planner.Reflection      `json:"reflection"`
	Artifacts  report.Artifacts        `json:"outputs"`
}

// Pipeline wires the analysis stages together: summarize, plan, generate
// hypotheses, test them, score creatives, generate copy, aggregate.
type Pipeline struct {
	cfg    config.Config
	reader ports.TableReader
	rng    ports.RNG
	repo   ports.RunRepository
	logger zerolog.Logger
}

// NewPipeline creates a pipeline. repo may be nil; persistence is then
// skipped.
func NewPipeline(cfg config.Config, reader ports.TableReader, rng ports.RNG, repo ports.RunRepository, logger zerolog.Logger) *Pipeline {
	return &Pipeline{cfg: cfg, reader: reader, rng: rng, repo: repo, logger: logger}
}

// Run executes the full pipeline for one query. Individual campaigns or
// hypotheses failing inside a stage never abort the run; only missing or
// unreadable input data does.
func (p *Pipeline) Run(ctx context.Context, req RunRequest) (*RunResult, error) {
	runID := req.RunID
	if runID.IsEmpty() {
		runID = core.NewRunID()
	}
	logger := p.logger
	started := time.Now()
	logger.Info().Str("query", req.Query).Str("data_path", p.cfg.Data.Path).Msg("run started")

	table, err := p.reader.ReadTable()
	if err != nil {
		return nil, apperrors.StageFailed("data_load", err)
	}

	summarizer := summary.NewSummarizer(p.cfg.Data, logging.Stage(logger, "summary"))
	dataSummary, err := summarizer.Build(table)
	if err != nil {
		return nil, apperrors.StageFailed("summary", err)
	}

	pln := planner.New(p.cfg.Analysis, p.cfg.Planner, logging.Stage(logger, "planner"))
	plan := pln.GeneratePlan(req.Query, dataSummary.Meta, req.CampaignFilter)

	generator := insight.NewGenerator(p.cfg.Analysis, logging.Stage(logger, "insight"))
	hyps := generator.Generate(dataSummary, req.CampaignFilter)

	eval := evaluator.NewEvaluator(p.cfg.Analysis, p.cfg.Evaluator, p.rng, logging.Stage(logger, "evaluator"))
	hyps = eval.Evaluate(ctx, hyps, dataSummary)

	scorer := creative.NewScorer(p.cfg.Analysis, p.cfg.CHS, logging.Stage(logger, "chs"))
	chsSummary := scorer.Score(dataSummary)
	hyps = scorer.Enrich(hyps, chsSummary)

	copyGen := creative.NewGenerator(p.cfg.Analysis, p.cfg.Generator, p.rng, logging.Stage(logger, "copy"))
	creatives := copyGen.Generate(dataSummary, chsSummary, hyps)

	aggregator := report.NewAggregator(logging.Stage(logger, "report"))
	fused, artifacts, err := aggregator.Write(runID, plan, dataSummary, hyps, creatives, req.OutDir)
	if err != nil {
		return nil, apperrors.StageFailed("report", err)
	}

	reflection := pln.Reflect(fused)

	if p.repo != nil {
		if err := p.repo.SaveRun(ctx, runID, req.Query, fused, chsSummary); err != nil {
			// Persistence is best effort; the file artifacts already exist.
			logger.Error().Err(err).Msg("failed to persist run")
		} else {
			logger.Info().Msg("run persisted")
		}
	}

	result := &RunResult{
		RunID:      runID,
		Plan:       plan,
		Hypotheses: fused,
		Reflection: reflection,
		Artifacts:  artifacts,
	}
	if err := p.writeRunLog(result, req.Query); err != nil {
		logger.Warn().Err(err).Msg("failed to write run log")
	}

	logger.Info().
		Dur("elapsed", time.Since(started)).
		Int("hypotheses", len(fused)).
		Bool("retry_suggested", reflection.Retry).
		Msg("run complete")
	return result, nil
}

// writeRunLog drops a JSON record of the whole run next to the stage
// logs.
func (p *Pipeline) writeRunLog(result *RunResult, query string) error {
	dir := p.cfg.Logging.Dir
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	payload := struct {
		RunID     core.RunID         `json:"run_id"`
		Timestamp time.Time          `json:"timestamp"`
		Query     string             `json:"query"`
		Plan      planner.Plan       `json:"plan"`
		Reflect   planner.Reflection `json:"reflection"`
		Outputs   report.Artifacts   `json:"outputs"`
	}{
		RunID:     result.RunID,
		Timestamp: time.Now().UTC(),
		Query:     query,
		Plan:      result.Plan,
		Reflect:   result.Reflection,
		Outputs:   result.Artifacts,
	}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "run_"+result.RunID.String()+".json")
	return os.WriteFile(path, data, 0o644)
}
