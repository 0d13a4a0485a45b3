package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/report"
	"github.com/pable/go-match-metrics/internal/storage"
)

var (
	cPrompt   = color.New(color.FgCyan, color.Bold)
	cMuted    = color.New(color.Faint)
	cError    = color.New(color.FgRed, color.Bold)
	cWarn     = color.New(color.FgYellow)
	cHeader   = color.New(color.FgCyan, color.Bold)
	cCmd      = color.New(color.FgYellow, color.Bold)
	cGreeting = color.New(color.Bold)
)

var shellCmd = &cobra.Command{
	Use:   "shell",
	Short: "Start an interactive REPL session",
	Long:  "Open a persistent session against the catalog. Type 'help' for available commands.",
	Args:  cobra.NoArgs,
	RunE:  runShell,
}

// shellState is what the session remembers between commands.
type shellState struct {
	db     *storage.DB
	team   string
	period model.PeriodFilter
}

func runShell(_ *cobra.Command, _ []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	q, err := aggregator.NewQuery(teamName, "", cfg.Team)
	if err != nil {
		return err
	}
	st := &shellState{db: db, team: q.Team, period: q.Period}

	cGreeting.Println("matchmetrics shell")
	cMuted.Println("type 'help' or 'exit'")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		cPrompt.Print(st.team)
		cMuted.Printf(" [%s]> ", st.period)
		if !scanner.Scan() {
			fmt.Println()
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		cmd, rest, _ := strings.Cut(line, " ")
		rest = strings.TrimSpace(rest)

		switch cmd {
		case "exit", "quit":
			return nil
		case "help":
			shellHelp()
		case "list":
			st.list()
		case "team":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: team <name>")
				continue
			}
			st.team = rest
		case "period":
			f, err := model.ParsePeriodFilter(rest)
			if err != nil {
				cError.Fprintf(os.Stderr, "error: %v\n", err)
				continue
			}
			st.period = f
		case "show":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: show <hash-prefix>")
				continue
			}
			st.show(rest)
		case "periods":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: periods <hash-prefix>")
				continue
			}
			st.periods(rest)
		case "player":
			if rest == "" {
				cError.Fprintln(os.Stderr, "usage: player <player> [@<hash-prefix>]")
				continue
			}
			st.player(rest)
		default:
			cWarn.Fprintf(os.Stderr, "unknown command %q, type 'help'\n", cmd)
		}
	}
	return scanner.Err()
}

func shellHelp() {
	fmt.Println()
	type entry struct{ cmd, desc string }
	rows := []entry{
		{"list", "list stored matches of the current team"},
		{"team <name>", "switch the analysed team"},
		{"period <all|N|2h>", "switch the period selection"},
		{"show <hash-prefix>", "every view of a match"},
		{"periods <hash-prefix>", "time range of each period"},
		{"player <player>", "card accumulated over every match"},
		{"player <player> @<hash-prefix>", "card for one match"},
		{"help", "show this message"},
		{"exit / quit", "close the session"},
	}
	for _, r := range rows {
		fmt.Print("  ")
		cCmd.Printf("%-34s", r.cmd)
		fmt.Println(r.desc)
	}
	fmt.Println()
}

func (st *shellState) query() model.Query {
	return model.Query{Team: st.team, Period: st.period}
}

func (st *shellState) list() {
	matches, err := st.db.ListMatches()
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	matches = matchesForTeam(matches, st.team)
	if len(matches) == 0 {
		cMuted.Println("No matches stored yet.")
		return
	}
	report.PrintMatchList(os.Stdout, matches)
}

func (st *shellState) show(prefix string) {
	m, err := st.db.LoadMatch(prefix)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	rep, err := aggregator.Analyze(m, st.query())
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintReport(os.Stdout, rep)
}

func (st *shellState) periods(prefix string) {
	m, err := st.db.LoadMatch(prefix)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	report.PrintTimeRanges(os.Stdout, aggregator.TimeRanges(m.Events), nil)
}

// player accepts "<player>" or "<player> @<hash-prefix>"; names may contain spaces.
func (st *shellState) player(arg string) {
	player, prefix := arg, ""
	if i := strings.LastIndex(arg, " @"); i >= 0 {
		player, prefix = strings.TrimSpace(arg[:i]), strings.TrimSpace(arg[i+2:])
	}
	opts, err := cardOptions(player, false)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}

	if prefix != "" {
		m, err := st.db.LoadMatch(prefix)
		if err != nil {
			cError.Fprintf(os.Stderr, "error: %v\n", err)
			return
		}
		card := aggregator.PlayerCard(m, st.query(), player, opts)
		if card.Team == "" {
			cWarn.Fprintf(os.Stderr, "no events for %s in %s\n", player, m.Hash[:12])
			return
		}
		report.PrintPlayerCard(os.Stdout, card)
		return
	}

	rows, err := playerRows(st.db, player, st.query(), opts)
	if err != nil {
		cError.Fprintf(os.Stderr, "error: %v\n", err)
		return
	}
	if len(rows) == 0 {
		cWarn.Fprintf(os.Stderr, "no data for %s\n", player)
		return
	}
	cards := make([]model.PlayerCard, len(rows))
	for i, r := range rows {
		cards[i] = r.Card
	}
	cHeader.Fprintf(os.Stdout, "\n--- %s: %d matches ---\n", player, len(rows))
	report.PrintPlayerCard(os.Stdout, aggregator.SumCards(cards))
	report.PrintPlayerTrend(os.Stdout, player, rows)
}
