package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/report"
	"github.com/pable/go-match-metrics/internal/storage"
)

var matrixPeriod string

var matrixCmd = &cobra.Command{
	Use:   "matrix <hash-prefix>",
	Short: "Passer by receiver pass counts for one match",
	Args:  cobra.ExactArgs(1),
	RunE:  runMatrix,
}

func init() {
	matrixCmd.Flags().StringVarP(&matrixPeriod, "period", "p", "all", "period selection: all, N or 2h")
}

func runMatrix(cmd *cobra.Command, args []string) error {
	q, err := aggregator.NewQuery(teamName, matrixPeriod, cfg.Team)
	if err != nil {
		return err
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	m, err := db.LoadMatch(args[0])
	if err != nil {
		return fmt.Errorf("load match %q: %w", args[0], err)
	}
	mx, err := aggregator.PassMatrix(m, q)
	if err != nil {
		return err
	}
	if len(mx.Players) == 0 {
		fmt.Fprintf(os.Stderr, "No completed passes for %s in period %s\n", q.Team, q.Period)
		return nil
	}
	report.PrintMatrix(os.Stdout, mx)
	return nil
}
