package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"adpulse/adapters/postgres"
	"adpulse/adapters/rng"
	"adpulse/adapters/tabular"
	"adpulse/app"
	"adpulse/domain/core"
	"adpulse/internal/logging"
	"adpulse/ports"
)

var (
	runQuery    string
	runOutDir   string
	runCampaign string
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full analysis pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		conf := getConfig()
		runID := core.NewRunID()

		logger, closeLogs, err := logging.NewRunLogger(conf.Logging, runID)
		if err != nil {
			return err
		}
		defer closeLogs()

		var repo ports.RunRepository
		if conf.Database.URL != "" {
			db, err := postgres.Connect(conf.Database.URL)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := postgres.EnsureSchema(cmd.Context(), db); err != nil {
				return err
			}
			repo = postgres.NewRunRepository(db)
		}

		reader := tabular.NewDataReader(conf.Data.Path)
		pipeline := app.NewPipeline(*conf, reader, rng.New(), repo, logger)
		result, err := pipeline.Run(cmd.Context(), app.RunRequest{
			RunID:          runID,
			Query:          runQuery,
			CampaignFilter: runCampaign,
			OutDir:         runOutDir,
		})
		if err != nil {
			return err
		}

		fmt.Printf("Run complete. run_id=%s\n", result.RunID)
		fmt.Printf("  Insights:  %s\n", result.Artifacts.InsightsPath)
		fmt.Printf("  Creatives: %s\n", result.Artifacts.CreativesPath)
		fmt.Printf("  Report:    %s\n", result.Artifacts.ReportMDPath)
		if result.Reflection.Retry {
			fmt.Printf("  Note: %s\n", result.Reflection.Reason)
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runQuery, "query", "Analyze ROAS drop", "Question to answer, e.g. 'Diagnose low CTR'")
	runCmd.Flags().StringVar(&runOutDir, "outdir", "reports", "Directory for insights.json, creatives.json and reports")
	runCmd.Flags().StringVar(&runCampaign, "campaign", "", "Restrict analysis to one campaign")
}
