package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/report"
	"github.com/pable/go-match-metrics/internal/storage"
)

var trendPeriod string

var trendCmd = &cobra.Command{
	Use:   "trend <player>",
	Short: "Chronological per-match card rows for a player",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrend,
}

func init() {
	trendCmd.Flags().StringVarP(&trendPeriod, "period", "p", "all", "period selection: all, N or 2h")
}

func runTrend(cmd *cobra.Command, args []string) error {
	q, err := aggregator.NewQuery(teamName, trendPeriod, cfg.Team)
	if err != nil {
		return err
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	opts, err := cardOptions(args[0], false)
	if err != nil {
		return err
	}
	rows, err := playerRows(db, args[0], q, opts)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("no matches found")
		return nil
	}
	report.PrintPlayerTrend(os.Stdout, args[0], rows)
	return nil
}
