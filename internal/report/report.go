package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"

	"github.com/pable/go-match-metrics/internal/model"
)

const none = "-"

func newTable(w io.Writer) *tablewriter.Table {
	return tablewriter.NewTable(w, tablewriter.WithConfig(tablewriter.Config{
		Row: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignRight},
		},
		Header: tw.CellConfig{
			Alignment: tw.CellAlignment{Global: tw.AlignCenter},
		},
	}))
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}

func pct(v float64) string { return fmt.Sprintf("%.0f%%", v) }

// PrintMatchSummary prints a one-line header for the match.
func PrintMatchSummary(w io.Writer, s model.MatchSummary) {
	opp := s.Opponent
	if opp == "" {
		opp = none
	}
	date := s.MatchDate
	if date == "" {
		date = none
	}
	fmt.Fprintf(w, "\nTeam: %s  |  Opponent: %s  |  Date: %s  |  Events: %d  |  File: %s  |  Hash: %s\n\n",
		s.Team, opp, date, s.EventCount, s.FileName, shortHash(s.Hash))
}

// PrintMatchList prints the catalog listing.
func PrintMatchList(w io.Writer, matches []model.MatchSummary) {
	table := newTable(w)
	table.Header("HASH", "DATE", "TEAM", "OPPONENT", "EVENTS", "FILE")
	for _, m := range matches {
		table.Append(shortHash(m.Hash), m.MatchDate, m.Team, m.Opponent, strconv.Itoa(m.EventCount), m.FileName)
	}
	table.Render()
}

// PrintTimeRanges prints the display window of every period, the second-half
// aggregate and, when counts is non-nil, the events per period.
func PrintTimeRanges(w io.Writer, ranges model.TimeRanges, counts map[int]int) {
	table := newTable(w)
	if counts != nil {
		table.Header("PERIOD", "RANGE", "SYNTHETIC", "EVENTS")
	} else {
		table.Header("PERIOD", "RANGE", "SYNTHETIC")
	}
	for _, pr := range ranges.Periods {
		row := []string{strconv.Itoa(pr.Period), pr.TimeRange.String(), yesNo(pr.Synthetic)}
		if counts != nil {
			row = append(row, strconv.Itoa(counts[pr.Period]))
		}
		table.Append(anys(row)...)
	}
	if ranges.SecondHalf != nil {
		row := []string{"2h", ranges.SecondHalf.String(), yesNo(ranges.SecondHalf.Synthetic)}
		if counts != nil {
			n := 0
			for p, c := range counts {
				if p > 1 {
					n += c
				}
			}
			row = append(row, strconv.Itoa(n))
		}
		table.Append(anys(row)...)
	}
	table.Render()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return ""
}

// PrintNetwork prints the node table followed by the edges of a passing network.
func PrintNetwork(w io.Writer, n *model.PassNetwork) {
	rng := n.Range
	if rng == "" {
		rng = none
	}
	fmt.Fprintf(w, "--- Passing network: %s, period %s (%s), %d passes ---\n", n.Team, n.Period, rng, n.PassCount)
	if len(n.Nodes) == 0 {
		fmt.Fprintln(w, "(no completed passes)")
		return
	}

	nodes := newTable(w)
	nodes.Header("PLAYER", "X", "Y", "PASSES", "SIZE", "SUB")
	for _, nd := range n.Nodes {
		sub := ""
		if nd.Substitute {
			sub = "*"
		}
		nodes.Append(string(nd.Player), fmt.Sprintf("%.1f", nd.X), fmt.Sprintf("%.1f", nd.Y),
			strconv.Itoa(nd.Participation), fmt.Sprintf("%.0f", nd.MarkerSize), sub)
	}
	nodes.Render()

	edges := newTable(w)
	edges.Header("PASSER", "RECEIVER", "COUNT", "WIDTH")
	for _, e := range n.Edges {
		edges.Append(string(e.Passer), string(e.Receiver), strconv.Itoa(e.Count), fmt.Sprintf("%.1f", e.Width))
	}
	edges.Render()
}

// PrintMatrix prints the passer x receiver grid with row and column totals.
func PrintMatrix(w io.Writer, m *model.PassMatrix) {
	fmt.Fprintf(w, "--- Pass matrix: %s, period %s ---\n", m.Team, m.Period)
	if len(m.Players) == 0 {
		fmt.Fprintln(w, "(no completed passes)")
		return
	}
	header := []string{"FROM \\ TO"}
	for _, p := range m.Players {
		header = append(header, p.Number())
	}
	header = append(header, "MADE")

	table := newTable(w)
	table.Header(anys(header)...)
	for i, p := range m.Players {
		row := []string{string(p)}
		for _, c := range m.Counts[i] {
			if c == 0 {
				row = append(row, "")
				continue
			}
			row = append(row, strconv.Itoa(c))
		}
		row = append(row, strconv.Itoa(m.Made[i]))
		table.Append(anys(row)...)
	}
	footer := []string{"RECEIVED"}
	for _, r := range m.Received {
		footer = append(footer, strconv.Itoa(r))
	}
	footer = append(footer, "")
	table.Append(anys(footer)...)
	table.Render()
}

// PrintShots prints the shot summary and the per-player ranking.
func PrintShots(w io.Writer, s *model.ShotMap) {
	sum := s.Summary
	fmt.Fprintf(w, "--- Shots: %s, period %s ---\n", s.Team, s.Period)
	table := newTable(w)
	table.Header("TOTAL", "GOALS", "ON_TARGET", "OFF_TARGET", "OTHER", "ACCURACY", "CONVERSION")
	table.Append(strconv.Itoa(sum.Total), strconv.Itoa(sum.Goals), strconv.Itoa(sum.OnTarget),
		strconv.Itoa(sum.OffTarget), strconv.Itoa(sum.Unclassified), pct(sum.Accuracy()), pct(sum.Conversion()))
	table.Render()
	printRanking(w, s.ByPlayer, "SHOTS")
}

// PrintFouls prints foul totals by period and player.
func PrintFouls(w io.Writer, f *model.FoulMap) {
	fmt.Fprintf(w, "--- Fouls: %s, period %s, total %d ---\n", f.Team, f.Period, f.Total)
	if len(f.ByPeriod) > 0 {
		periods := make([]int, 0, len(f.ByPeriod))
		for p := range f.ByPeriod {
			periods = append(periods, p)
		}
		sort.Ints(periods)
		table := newTable(w)
		table.Header("PERIOD", "FOULS")
		for _, p := range periods {
			table.Append(strconv.Itoa(p), strconv.Itoa(f.ByPeriod[p]))
		}
		table.Render()
	}
	printRanking(w, f.ByPlayer, "FOULS")
}

// PrintRecoveries prints recovery totals by half and player.
func PrintRecoveries(w io.Writer, r *model.RecoveryMap) {
	fmt.Fprintf(w, "--- Recoveries: %s, period %s, total %d ---\n", r.Team, r.Period, r.Total)
	table := newTable(w)
	table.Header("ZONE", "RECOVERIES")
	for _, z := range []model.Zone{model.ZoneOwnHalf, model.ZoneOpponentHalf} {
		table.Append(string(z), strconv.Itoa(r.ByZone[z]))
	}
	table.Render()
	printRanking(w, r.ByPlayer, "RECOVERIES")
}

func printRanking(w io.Writer, counts []model.PlayerCount, label string) {
	if len(counts) == 0 {
		return
	}
	table := newTable(w)
	table.Header("PLAYER", label)
	for _, c := range counts {
		table.Append(string(c.Player), strconv.Itoa(c.Count))
	}
	table.Render()
}

// PrintSpecificPasses prints one row per tagged attacking action.
func PrintSpecificPasses(w io.Writer, groups []model.SpecificPasses) {
	fmt.Fprintln(w, "--- Specific passes ---")
	table := newTable(w)
	table.Header("ACTION", "COUNT", "TOP PLAYER")
	for _, g := range groups {
		top := none
		if p, n := topPasser(g.Arrows); n > 0 {
			top = fmt.Sprintf("%s (%d)", p, n)
		}
		table.Append(g.Action.String(), strconv.Itoa(len(g.Arrows)), top)
	}
	table.Render()
}

func topPasser(arrows []model.Arrow) (model.PlayerID, int) {
	counts := make(map[model.PlayerID]int)
	for _, a := range arrows {
		counts[a.Player]++
	}
	var best model.PlayerID
	n := 0
	for p, c := range counts {
		if c > n || (c == n && p < best) {
			best, n = p, c
		}
	}
	return best, n
}

// PrintTeamStats prints the team-versus-rival table. With more than one match
// a per-match column is added.
func PrintTeamStats(w io.Writer, t model.TeamStats) {
	fmt.Fprintf(w, "--- Team stats: %s (%d matches) ---\n", t.Team, t.Matches)
	perMatch := t.Matches > 1
	table := newTable(w)
	if perMatch {
		table.Header("STAT", "TOTAL", "PER MATCH")
	} else {
		table.Header("STAT", "VALUE")
	}
	passes := model.PassSummary{Completed: t.PassesCompleted, Failed: t.PassesFailed}
	rows := []struct {
		name string
		v    int
	}{
		{"Goals for", t.GoalsFor},
		{"Goals against", t.GoalsAgainst},
		{"Fouls committed", t.FoulsCommitted},
		{"Fouls received", t.FoulsReceived},
		{"Shots on target", t.ShotsOnTarget},
		{"Shots off target", t.ShotsOffTarget},
		{"Corners for", t.CornersFor},
		{"Corners against", t.CornersAgainst},
		{"Passes completed", t.PassesCompleted},
		{"Passes failed", t.PassesFailed},
	}
	for _, r := range rows {
		if perMatch {
			table.Append(r.name, strconv.Itoa(r.v), fmt.Sprintf("%.1f", t.PerMatch(r.v)))
			continue
		}
		table.Append(r.name, strconv.Itoa(r.v))
	}
	if perMatch {
		table.Append("Pass precision", pct(passes.Precision()), "")
	} else {
		table.Append("Pass precision", pct(passes.Precision()))
	}
	table.Render()
}

// PrintReport prints every view of a match report, then its warnings and
// per-view errors.
func PrintReport(w io.Writer, r *model.MatchReport) {
	PrintMatchSummary(w, r.Match)
	fmt.Fprintf(w, "Analysed: %s  |  Period: %s", r.Query.Team, r.Query.Period)
	if label := r.TimeRanges.Label(r.Query.Period); label != "" {
		fmt.Fprintf(w, " (%s)", label)
	}
	fmt.Fprintln(w)
	PrintTimeRanges(w, r.TimeRanges, nil)
	if len(r.Substitutes) > 0 {
		subs := make([]string, len(r.Substitutes))
		for i, s := range r.Substitutes {
			subs[i] = string(s)
		}
		fmt.Fprintf(w, "Substitutes: %s\n", strings.Join(subs, ", "))
	}

	fmt.Fprintf(w, "Passes: %d completed, %d failed, precision %s  |  Corners: %d for, %d against\n\n",
		r.Passes.Completed, r.Passes.Failed, pct(r.Passes.Precision()), r.Corners.For, r.Corners.Against)

	if r.Network != nil {
		PrintNetwork(w, r.Network)
	}
	if r.Shots != nil {
		PrintShots(w, r.Shots)
	}
	if r.Fouls != nil {
		PrintFouls(w, r.Fouls)
	}
	if r.Recoveries != nil {
		PrintRecoveries(w, r.Recoveries)
	}
	if r.SpecificPasses != nil {
		PrintSpecificPasses(w, r.SpecificPasses)
	}
	if r.Team != nil {
		PrintTeamStats(w, *r.Team)
	}
	PrintIssues(w, r)
}

// PrintIssues lists a report's warnings and the views that failed.
func PrintIssues(w io.Writer, r *model.MatchReport) {
	for _, msg := range r.Warnings {
		fmt.Fprintf(w, "warning: %s\n", msg)
	}
	views := make([]string, 0, len(r.Errors))
	for v := range r.Errors {
		views = append(views, v)
	}
	sort.Strings(views)
	for _, v := range views {
		fmt.Fprintf(w, "error: %s\n", r.Errors[v])
	}
}

// PrintPlayerCard prints a player's card, with the goalkeeper block when set.
func PrintPlayerCard(w io.Writer, c model.PlayerCard) {
	minutes := fmt.Sprintf("%.0f", c.Minutes)
	if !c.OfficialMinutes {
		minutes += " (est.)"
	}
	fmt.Fprintf(w, "\nPlayer: %s  |  Team: %s  |  Matches: %d  |  Minutes: %s\n\n", c.Player, c.Team, c.Matches, minutes)

	table := newTable(w)
	table.Header("ACTIONS", "PASSES", "PASS%", "SHOTS", "GOALS", "ON_TGT", "FOULS", "RECOV", "DEPTH", "FACING", "BOX", "INDEX")
	table.Append(
		strconv.Itoa(c.Actions),
		fmt.Sprintf("%d/%d", c.Passes.Completed, c.Passes.Total()),
		pct(c.Passes.Precision()),
		strconv.Itoa(c.Shots.Total),
		strconv.Itoa(c.Shots.Goals),
		strconv.Itoa(c.Shots.OnTarget),
		strconv.Itoa(c.Fouls),
		strconv.Itoa(c.Recoveries),
		strconv.Itoa(c.FindDepth),
		strconv.Itoa(c.FindFacing),
		strconv.Itoa(c.AttackBox),
		fmt.Sprintf("%.2f", c.Index),
	)
	table.Render()

	if gk := c.Goalkeeper; gk != nil {
		fmt.Fprintln(w, "--- Goalkeeper ---")
		t := newTable(w)
		t.Header("SHOTS_FACED", "SAVES", "CONCEDED", "SAVE%")
		t.Append(strconv.Itoa(gk.ShotsFaced), strconv.Itoa(gk.Saves), strconv.Itoa(gk.GoalsConceded), pct(gk.SavePct))
		t.Render()
	}
}

// PrintPlayerTrend prints one row per match, oldest first.
func PrintPlayerTrend(w io.Writer, player string, rows []model.PlayerMatchRow) {
	fmt.Fprintf(w, "\nTrend for %s (%d matches)\n\n", player, len(rows))
	table := newTable(w)
	table.Header("DATE", "OPPONENT", "MIN", "ACTIONS", "PASS%", "SHOTS", "GOALS", "RECOV", "FOULS", "INDEX")
	for _, r := range rows {
		c := r.Card
		mins := fmt.Sprintf("%.0f", c.Minutes)
		if !c.OfficialMinutes {
			mins += "*"
		}
		table.Append(
			r.Match.MatchDate,
			r.Match.Opponent,
			mins,
			strconv.Itoa(c.Actions),
			pct(c.Passes.Precision()),
			strconv.Itoa(c.Shots.Total),
			strconv.Itoa(c.Shots.Goals),
			strconv.Itoa(c.Recoveries),
			strconv.Itoa(c.Fouls),
			fmt.Sprintf("%.2f", c.Index),
		)
	}
	table.Render()
}

func anys(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
