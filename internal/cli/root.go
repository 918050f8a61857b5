package cli

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"adpulse/internal/config"
)

var (
	cfgFile  string
	logLevel string
	dataPath string
	cfg      *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "adpulse",
	Short: "Analyze ad performance data and generate validated insights",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cfg != nil {
			return nil
		}

		// .env is optional; real env vars win either way.
		_ = godotenv.Load()

		loaded, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			loaded.Logging.Level = logLevel
		}
		if dataPath != "" {
			loaded.Data.Path = dataPath
		}
		cfg = loaded
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Override log level defined in config")
	rootCmd.PersistentFlags().StringVar(&dataPath, "data-path", "", "Override dataset path from config")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(versionCmd)
}

func getConfig() *config.Config {
	if cfg == nil {
		panic("configuration not loaded; PersistentPreRunE not executed")
	}
	return cfg
}
