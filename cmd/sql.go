package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/storage"
)

var sqlCmd = &cobra.Command{
	Use:   "sql <query>",
	Short: "Run a raw SQL query against the catalog",
	Long: `Run an arbitrary SQL query against the catalog and print results as a table.

Schema overview:
  matches(hash, file_name, team, opponent, match_date, uploaded_at, stored_path,
    event_count, columns, malformed_rows)
  events(match_hash, row_num, team, period, minute, code, grp, text,
    player, secondary, start_x, start_y, end_x, end_y)
  player_minutes(match_hash, player, minutes)
  unknown_codes(match_hash, label, count)

Missing coordinates are NULL. Example:
  matchmetrics sql "SELECT player, COUNT(1) FROM events WHERE code = 'Recuperaciones' GROUP BY player"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSQL,
}

func runSQL(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()

	cols, rows, err := db.QueryRaw(query)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Println("(no rows)")
		return nil
	}

	table := tablewriter.NewTable(os.Stdout, tablewriter.WithConfig(tablewriter.Config{
		Row:    tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignRight}},
		Header: tw.CellConfig{Alignment: tw.CellAlignment{Global: tw.AlignCenter}},
	}))
	table.Header(toAny(cols)...)
	for _, row := range rows {
		table.Append(toAny(row)...)
	}
	table.Render()
	fmt.Fprintf(os.Stdout, "\n(%d rows)\n", len(rows))
	return nil
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
