package cmd

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/report"
	"github.com/pable/go-match-metrics/internal/storage"
)

// periodsCmd is the per-period drill-down for one match.
var periodsCmd = &cobra.Command{
	Use:   "periods <hash-prefix>",
	Short: "Time range and event count of each period in one match",
	Args:  cobra.ExactArgs(1),
	RunE:  runPeriods,
}

func runPeriods(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	m, err := db.LoadMatch(args[0])
	if err != nil {
		return fmt.Errorf("load match %q: %w", args[0], err)
	}

	ranges := aggregator.TimeRanges(m.Events)
	if len(ranges.Periods) == 0 {
		fmt.Fprintf(os.Stderr, "No timed events in match %s\n", m.Hash[:12])
		return nil
	}

	team := strings.TrimSpace(teamName)
	counts := make(map[int]int, len(ranges.Periods))
	for _, e := range m.Events {
		if strings.EqualFold(strings.TrimSpace(e.Team), team) {
			counts[e.Period]++
		}
	}

	report.PrintMatchSummary(os.Stdout, m.MatchSummary)
	fmt.Fprintf(os.Stdout, "Events counted for %s\n", team)
	report.PrintTimeRanges(os.Stdout, ranges, counts)

	subs := aggregator.Substitutes(m.Events, team, ranges)
	if len(subs) == 0 {
		return nil
	}
	names := make([]string, 0, len(subs))
	for p := range subs {
		names = append(names, string(p))
	}
	sort.Strings(names)
	fmt.Fprintf(os.Stdout, "Substitutes: %s\n", strings.Join(names, ", "))
	return nil
}
