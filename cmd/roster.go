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
	"github.com/pable/go-match-metrics/internal/filestore"
)

var (
	rosterNumber   string
	rosterPosition string
)

// rosterCmd manages the squad list used to spot goalkeepers.
var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "List the squad roster",
	Args:  cobra.NoArgs,
	RunE:  runRoster,
}

var rosterSetCmd = &cobra.Command{
	Use:   "set <name>",
	Short: "Add a squad member or update the one with the same name",
	Example: `  matchmetrics roster set "Pérez" --number 1 --position Portero
  matchmetrics roster set "Gómez" --number 4 --position Defensa`,
	Args: cobra.ExactArgs(1),
	RunE: runRosterSet,
}

func init() {
	rosterSetCmd.Flags().StringVar(&rosterNumber, "number", "", "shirt number")
	rosterSetCmd.Flags().StringVar(&rosterPosition, "position", "", "position, e.g. Portero, Defensa, Delantero")
	rosterCmd.AddCommand(rosterSetCmd)
}

func runRoster(cmd *cobra.Command, args []string) error {
	players, err := filestore.New(dataDir).Roster()
	if err != nil {
		return fmt.Errorf("read roster: %w", err)
	}
	if len(players) == 0 {
		fmt.Fprintln(os.Stdout, "Roster is empty. Run 'matchmetrics roster set <name> --position ...' to add players.")
		return nil
	}
	sort.SliceStable(players, func(i, j int) bool { return players[i].Number < players[j].Number })

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header("NUMBER", "NAME", "POSITION", "GK")
	for _, p := range players {
		gk := ""
		if aggregator.IsGoalkeeperPosition(p.Position) {
			gk = "yes"
		}
		table.Append(p.Number, p.Name, p.Position, gk)
	}
	table.Render()
	return nil
}

func runRosterSet(cmd *cobra.Command, args []string) error {
	name := strings.TrimSpace(args[0])
	if name == "" {
		return fmt.Errorf("player name is empty")
	}
	p, err := filestore.New(dataDir).UpsertPlayer(filestore.RosterPlayer{
		Name:     name,
		Number:   strings.TrimSpace(rosterNumber),
		Position: strings.TrimSpace(rosterPosition),
	})
	if err != nil {
		return fmt.Errorf("save roster: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Saved %s (%s)\n", p.Name, p.ID)
	return nil
}
