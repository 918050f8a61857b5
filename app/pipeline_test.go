package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"adpulse/adapters/rng"
	"adpulse/internal/config"
	"adpulse/ports"
)

// stubReader serves a table from memory.
type stubReader struct {
	table *ports.Table
	err   error
}

func (r *stubReader) ReadTable() (*ports.Table, error) { return r.table, r.err }

func testPipelineConfig(t *testing.T) config.Config {
	t.Helper()
	cfg := *config.Default()
	cfg.Analysis.RecentWindowDays = 3
	cfg.Analysis.PreviousWindowDays = 3
	cfg.Evaluator.BootstrapIters = 200
	cfg.Logging.Dir = t.TempDir()
	return cfg
}

// droppingTable is six days of one campaign with ROAS falling from ~4 to ~2.
func droppingTable() *ports.Table {
	headers := []string{
		"campaign_name", "adset_name", "date", "spend", "impressions",
		"clicks", "purchases", "revenue", "creative_type",
		"creative_message", "audience_type", "platform", "country",
	}
	revenues := []string{"400", "410", "390", "200", "210", "190"}
	rows := make([][]string, 0, len(revenues))
	for i, rev := range revenues {
		rows = append(rows, []string{
			"Falling Campaign", "Adset 1", fmt.Sprintf("2025-01-0%d", i+1),
			"100", "10000", "250", "20", rev, "image",
			"Soft seamless comfort all day", "broad", "facebook", "US",
		})
	}
	return &ports.Table{Headers: headers, Rows: rows}
}

func TestRunEndToEnd(t *testing.T) {
	cfg := testPipelineConfig(t)
	outDir := t.TempDir()
	reader := &stubReader{table: droppingTable()}

	p := NewPipeline(cfg, reader, rng.New(), nil, zerolog.Nop())
	result, err := p.Run(context.Background(), RunRequest{
		Query:  "Why did ROAS drop?",
		OutDir: outDir,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if result.RunID.IsEmpty() {
		t.Error("expected a generated run id")
	}
	if len(result.Hypotheses) == 0 {
		t.Fatal("expected hypotheses for a falling account")
	}
	for _, h := range result.Hypotheses {
		if h.FinalConfidence < 0 || h.FinalConfidence > 1 {
			t.Errorf("hypothesis %s: final confidence %f out of [0,1]", h.ID, h.FinalConfidence)
		}
	}

	for _, path := range []string{
		result.Artifacts.InsightsPath,
		result.Artifacts.CreativesPath,
		result.Artifacts.ReportMDPath,
	} {
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", path, err)
		}
	}
	logPath := filepath.Join(cfg.Logging.Dir, "run_"+result.RunID.String()+".json")
	if _, err := os.Stat(logPath); err != nil {
		t.Errorf("missing run log: %v", err)
	}
}

func TestRunReaderFailure(t *testing.T) {
	cfg := testPipelineConfig(t)
	reader := &stubReader{err: errors.New("device unavailable")}

	p := NewPipeline(cfg, reader, rng.New(), nil, zerolog.Nop())
	if _, err := p.Run(context.Background(), RunRequest{Query: "anything", OutDir: t.TempDir()}); err == nil {
		t.Fatal("expected an error when the table cannot be read")
	}
}

func TestRunKeepsRequestedRunID(t *testing.T) {
	cfg := testPipelineConfig(t)
	reader := &stubReader{table: droppingTable()}

	p := NewPipeline(cfg, reader, rng.New(), nil, zerolog.Nop())
	result, err := p.Run(context.Background(), RunRequest{
		RunID:  "run-fixed-id",
		Query:  "Diagnose low CTR",
		OutDir: t.TempDir(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.RunID != "run-fixed-id" {
		t.Errorf("run id = %s, want run-fixed-id", result.RunID)
	}
}
