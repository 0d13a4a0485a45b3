package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/report"
	"github.com/pable/go-match-metrics/internal/storage"
)

// summaryCmd is the cobra command for displaying a high-level catalog overview.
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show a high-level overview of the catalog",
	Long: `Display catalog-wide counts, the opponents faced, any unrecognised code
labels and the --team stats accumulated over every stored match.`,
	Args: cobra.NoArgs,
	RunE: runSummary,
}

func runSummary(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ov, err := db.Overview()
	if err != nil {
		return fmt.Errorf("get overview: %w", err)
	}
	if ov.Matches == 0 {
		fmt.Fprintln(os.Stdout, "No matches stored yet. Run 'matchmetrics ingest <file.xlsx>' to add one.")
		return nil
	}

	matches, err := db.ListMatches()
	if err != nil {
		return fmt.Errorf("list matches: %w", err)
	}
	matches = matchesForTeam(matches, teamName)

	fmt.Fprintf(os.Stdout, "\n=== Catalog Summary ===\n\n")
	fmt.Fprintf(os.Stdout, "  Matches stored : %d\n", ov.Matches)
	if len(matches) > 0 {
		// ListMatches is newest first.
		fmt.Fprintf(os.Stdout, "  Date range     : %s → %s\n", matches[len(matches)-1].MatchDate, matches[0].MatchDate)
	}
	fmt.Fprintf(os.Stdout, "  Events         : %d\n", ov.Events)
	fmt.Fprintf(os.Stdout, "  Players seen   : %d\n", ov.Players)
	fmt.Fprintf(os.Stdout, "  Teams          : %s\n", strings.Join(ov.Teams, ", "))

	if len(ov.UnknownLabels) > 0 {
		fmt.Fprintf(os.Stdout, "\n--- Unrecognised codes ---\n\n")
		ut := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
			Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
			Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
		}))
		ut.Header("LABEL", "ROWS")
		labels := make([]string, 0, len(ov.UnknownLabels))
		for l := range ov.UnknownLabels {
			labels = append(labels, l)
		}
		sort.Strings(labels)
		for _, l := range labels {
			ut.Append(l, fmt.Sprintf("%d", ov.UnknownLabels[l]))
		}
		ut.Render()
	}

	if len(matches) == 0 {
		fmt.Fprintf(os.Stdout, "\nNo matches stored for %s.\n", teamName)
		return nil
	}

	// Opponents faced, most frequent first.
	opponents := make(map[string]int)
	stats := make([]model.TeamStats, 0, len(matches))
	for _, s := range matches {
		opponents[s.Opponent]++
		m, err := db.LoadMatch(s.Hash)
		if err != nil {
			return fmt.Errorf("load match %s: %w", s.Hash[:12], err)
		}
		stats = append(stats, aggregator.TeamStats(m, teamName))
	}
	names := make([]string, 0, len(opponents))
	for o := range opponents {
		names = append(names, o)
	}
	sort.Slice(names, func(i, j int) bool {
		if opponents[names[i]] != opponents[names[j]] {
			return opponents[names[i]] > opponents[names[j]]
		}
		return names[i] < names[j]
	})
	fmt.Fprintf(os.Stdout, "\n--- Opponents ---\n\n")
	ot := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	ot.Header("OPPONENT", "MATCHES")
	for _, o := range names {
		ot.Append(o, fmt.Sprintf("%d", opponents[o]))
	}
	ot.Render()

	fmt.Fprintln(os.Stdout)
	report.PrintTeamStats(os.Stdout, aggregator.SumTeamStats(teamName, stats))
	return nil
}
