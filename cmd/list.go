package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/report"
	"github.com/pable/go-match-metrics/internal/storage"
)

var listAll bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored matches",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listAll, "all", "a", false, "include matches of every team, not just --team")
}

func runList(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	if !listAll {
		matches = matchesForTeam(matches, teamName)
	}
	if len(matches) == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'matchmetrics ingest <file.xlsx>' to add one.")
		return nil
	}
	report.PrintMatchList(os.Stdout, matches)
	return nil
}

func matchesForTeam(matches []model.MatchSummary, team string) []model.MatchSummary {
	team = strings.TrimSpace(team)
	out := matches[:0:0]
	for _, m := range matches {
		if strings.EqualFold(m.Team, team) {
			out = append(out, m)
		}
	}
	return out
}
