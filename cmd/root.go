package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/config"
	"github.com/pable/go-match-metrics/internal/logger"
)

var (
	dbPath   string
	dataDir  string
	teamName string
	logLevel string

	cfg = config.Default()
)

var rootCmd = &cobra.Command{
	Use:   "matchmetrics",
	Short: "Football match event analytics",
	Long: `Ingest tagged match event logs (.xlsx or .csv), keep them in a local catalog
and compute passing networks, shot, foul and recovery maps, player cards and
team summaries.`,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite catalog (default "+cfg.DBPath+")")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", "", "directory for uploaded originals (default "+cfg.DataDir+")")
	rootCmd.PersistentFlags().StringVar(&teamName, "team", "", "analysed team (default "+cfg.Team+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error")

	rootCmd.AddCommand(ingestCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(periodsCmd)
	rootCmd.AddCommand(matrixCmd)
	rootCmd.AddCommand(playerCmd)
	rootCmd.AddCommand(trendCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(rosterCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(shellCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(mcpCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
}

// setup loads .env and the config file, then lets explicit flags win.
func setup(cmd *cobra.Command, args []string) error {
	// .env is optional; a missing file is not an error.
	_ = godotenv.Load()

	loaded, err := config.Load()
	if err != nil {
		return err
	}
	cfg = loaded

	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if dataDir == "" {
		dataDir = cfg.DataDir
	}
	if teamName == "" {
		teamName = cfg.Team
	}
	if logLevel == "" {
		logLevel = cfg.LogLevel
	}

	if err := logger.Init(); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	if err := logger.SetLevelString(logLevel); err != nil {
		return err
	}
	logger.Named("cli").Debug(context.Background(), "config loaded",
		logger.String("db", dbPath),
		logger.String("data", dataDir),
		logger.String("team", teamName))
	return nil
}
