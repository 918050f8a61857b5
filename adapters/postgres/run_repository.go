package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"adpulse/domain/chs"
	"adpulse/domain/core"
	"adpulse/domain/hypothesis"
	apperrors "adpulse/internal/errors"
	"adpulse/ports"
)

// RunRepositoryImpl implements RunRepository for PostgreSQL.
type RunRepositoryImpl struct {
	db *sqlx.DB
}

// NewRunRepository creates a PostgreSQL run repository.
func NewRunRepository(db *sqlx.DB) ports.RunRepository {
	return &RunRepositoryImpl{db: db}
}

// Connect opens and pings a PostgreSQL connection.
func Connect(databaseURL string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, apperrors.Wrap(err, "connect to postgres")
	}
	return db, nil
}

// EnsureSchema creates the runs table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS analysis_runs (
			run_id      TEXT PRIMARY KEY,
			query       TEXT NOT NULL,
			hypotheses  JSONB NOT NULL,
			chs_summary JSONB NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return apperrors.Wrap(err, "ensure analysis_runs schema")
	}
	return nil
}

// SaveRun upserts the run record keyed by run ID.
func (r *RunRepositoryImpl) SaveRun(ctx context.Context, runID core.RunID, query string, hyps []hypothesis.Hypothesis, chsSummary chs.Summary) error {
	hypsJSON, err := json.Marshal(hyps)
	if err != nil {
		return apperrors.Wrap(err, "marshal hypotheses")
	}
	chsJSON, err := json.Marshal(chsSummary)
	if err != nil {
		return apperrors.Wrap(err, "marshal chs summary")
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO analysis_runs (run_id, query, hypotheses, chs_summary, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW())
		ON CONFLICT (run_id) DO UPDATE SET
			query       = EXCLUDED.query,
			hypotheses  = EXCLUDED.hypotheses,
			chs_summary = EXCLUDED.chs_summary,
			updated_at  = NOW()`,
		runID.String(), query, hypsJSON, chsJSON)
	if err != nil {
		return apperrors.Wrap(err, "save run")
	}
	return nil
}

// GetRun loads the hypotheses stored for a run.
func (r *RunRepositoryImpl) GetRun(ctx context.Context, runID core.RunID) ([]hypothesis.Hypothesis, error) {
	var hypsJSON []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT hypotheses FROM analysis_runs WHERE run_id = $1`,
		runID.String()).Scan(&hypsJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.DatabaseError("run not found: " + runID.String())
	}
	if err != nil {
		return nil, apperrors.Wrap(err, "load run")
	}

	var hyps []hypothesis.Hypothesis
	if err := json.Unmarshal(hypsJSON, &hyps); err != nil {
		return nil, apperrors.Wrap(err, "unmarshal hypotheses")
	}
	return hyps, nil
}
