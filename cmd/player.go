package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/report"
	"github.com/pable/go-match-metrics/internal/storage"
)

var (
	playerMatch      string
	playerPeriod     string
	playerGoalkeeper bool
)

// playerCmd prints a player's card for one match, or accumulated over every
// stored match the player appears in.
var playerCmd = &cobra.Command{
	Use:   "player [<player>]",
	Short: "Player card for one match or accumulated across matches",
	Long: `Print a player's card. The player is the full "<number>. <name>" id or
just the name.

With --match and no player, list the players of --team in that match.
Goalkeepers are detected from the squad roster (see 'roster'), or forced with
--goalkeeper.`,
	Args: cobra.RangeArgs(0, 1),
	RunE: runPlayer,
}

func init() {
	playerCmd.Flags().StringVarP(&playerMatch, "match", "m", "", "hash prefix of a single match")
	playerCmd.Flags().StringVarP(&playerPeriod, "period", "p", "all", "period selection: all, N or 2h")
	playerCmd.Flags().BoolVar(&playerGoalkeeper, "goalkeeper", false, "include goalkeeper figures")
}

func runPlayer(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && playerMatch == "" {
		return fmt.Errorf("give a player, or --match to list the players of a match")
	}
	q, err := aggregator.NewQuery(teamName, playerPeriod, cfg.Team)
	if err != nil {
		return err
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	if len(args) == 0 {
		m, err := db.LoadMatch(playerMatch)
		if err != nil {
			return fmt.Errorf("load match %q: %w", playerMatch, err)
		}
		for _, p := range aggregator.Players(m.Events, q.Team) {
			fmt.Fprintln(os.Stdout, p)
		}
		return nil
	}

	player := args[0]
	opts, err := cardOptions(player, playerGoalkeeper)
	if err != nil {
		return err
	}

	if playerMatch != "" {
		m, err := db.LoadMatch(playerMatch)
		if err != nil {
			return fmt.Errorf("load match %q: %w", playerMatch, err)
		}
		card := aggregator.PlayerCard(m, q, player, opts)
		if card.Team == "" {
			fmt.Fprintf(os.Stderr, "No events for %s in match %s\n", player, m.Hash[:12])
			return nil
		}
		report.PrintPlayerCard(os.Stdout, card)
		return nil
	}

	rows, err := playerRows(db, player, q, opts)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintf(os.Stderr, "No data found for %s\n", player)
		return nil
	}
	cards := make([]model.PlayerCard, len(rows))
	for i, r := range rows {
		cards[i] = r.Card
	}
	report.PrintPlayerCard(os.Stdout, aggregator.SumCards(cards))
	return nil
}

// cardOptions asks the roster whether player keeps goal unless force is set.
func cardOptions(player string, force bool) (aggregator.CardOptions, error) {
	if force {
		return aggregator.CardOptions{Goalkeeper: true}, nil
	}
	gk, err := filestore.New(dataDir).IsGoalkeeper(player)
	if err != nil {
		return aggregator.CardOptions{}, fmt.Errorf("read roster: %w", err)
	}
	return aggregator.CardOptions{Goalkeeper: gk}, nil
}

// playerRows builds one card per stored match the player acted in, oldest
// first. Matches where the filter leaves the player without events are skipped.
func playerRows(db *storage.DB, player string, q model.Query, opts aggregator.CardOptions) ([]model.PlayerMatchRow, error) {
	matches, err := db.MatchesWithPlayer(player)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	rows := make([]model.PlayerMatchRow, 0, len(matches))
	for _, s := range matches {
		m, err := db.LoadMatch(s.Hash)
		if err != nil {
			return nil, fmt.Errorf("load match %s: %w", s.Hash[:12], err)
		}
		card := aggregator.PlayerCard(m, q, player, opts)
		if card.Team == "" {
			continue
		}
		rows = append(rows, model.PlayerMatchRow{Match: m.MatchSummary, Card: card})
	}
	return rows, nil
}
