package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/report"
	"github.com/pable/go-match-metrics/internal/storage"
)

var showPeriod string

var showCmd = &cobra.Command{
	Use:   "show <hash-prefix>",
	Short: "Show every view of a stored match",
	Long: `Print time ranges, passing network, shots, fouls, recoveries, specific
passes and team stats for one match.

--period takes all, a period number, or 2h for every period after the first.`,
	Args: cobra.ExactArgs(1),
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVarP(&showPeriod, "period", "p", "all", "period selection: all, N or 2h")
}

func runShow(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	m, err := db.LoadMatch(args[0])
	if err != nil {
		return fmt.Errorf("load match %q: %w", args[0], err)
	}
	return printMatchReport(m, teamName, showPeriod)
}

// printMatchReport analyses m for team and period and prints every view.
func printMatchReport(m *model.Match, team, period string) error {
	q, err := aggregator.NewQuery(team, period, cfg.Team)
	if err != nil {
		return err
	}
	rep, err := aggregator.Analyze(m, q)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	report.PrintReport(os.Stdout, rep)
	return nil
}
