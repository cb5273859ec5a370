package main

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"projectsearch/internal/config"
	"projectsearch/internal/logger"
)

var (
	dataDir string
	verbose bool
	noColor bool
)

var rootCmd = &cobra.Command{
	Use:   "searchctl",
	Short: "Query the project search pipeline from the terminal",
	Long: `searchctl loads the project dataset and runs natural-language queries through
the same parse, filter, relax and rank pipeline the HTTP server uses.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data", "d", "", "CSV dataset directory (overrides DATASET_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.AddCommand(queryCmd, statsCmd)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func loadConfig() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if dataDir != "" {
		cfg.Dataset.Source = "csv"
		cfg.Dataset.Dir = dataDir
	}
	level := "error"
	if verbose {
		level = "debug"
	}
	return cfg, logger.NewStructured(level, "console"), nil
}
