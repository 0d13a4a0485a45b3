package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/ingest"
	"github.com/pable/go-match-metrics/internal/storage"
)

var (
	ingestOpponent string
	ingestDate     string
	ingestQuiet    bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <file.xlsx|file.csv>",
	Short: "Parse a match event log and store it in the catalog",
	Long: `Parse a tagged event log, keep the original under the data directory,
record it in the catalog and print the full match report.

Re-ingesting a file with the same content shows the stored match instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().StringVar(&ingestOpponent, "opponent", "", "rival team (default: the other team in the events)")
	ingestCmd.Flags().StringVar(&ingestDate, "date", "", "match date YYYY-MM-DD (default: today)")
	ingestCmd.Flags().BoolVarP(&ingestQuiet, "quiet", "q", false, "only print the catalog line, not the report")
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return ingestBytes(cmd, filepath.Base(path), data)
}

// ingestBytes stores one event log and prints what happened. fetch shares it.
func ingestBytes(cmd *cobra.Command, name string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	fmt.Fprintf(os.Stdout, "Parsing %s...\n", name)
	svc := ingest.NewService(db, filestore.New(dataDir), nil)
	res, err := svc.Ingest(cmd.Context(), name, data, ingest.Meta{
		Team:     teamName,
		Opponent: ingestOpponent,
		Date:     ingestDate,
	})
	if err != nil {
		return err
	}

	m := res.Match
	if res.Existing {
		fmt.Fprintf(os.Stdout, "Match %s already stored, showing cached results.\n\n", m.Hash[:12])
	} else {
		fmt.Fprintf(os.Stdout, "Stored %s: %s vs %s on %s (%d events)\n",
			m.Hash[:12], m.Team, m.Opponent, m.MatchDate, m.EventCount)
		if res.Entry != nil {
			fmt.Fprintf(os.Stdout, "Original kept at %s\n", res.Entry.Path)
		}
		printIngestIssues(m.UnknownCodes, m.MalformedRows)
		fmt.Fprintln(os.Stdout)
	}
	if ingestQuiet {
		return nil
	}
	return printMatchReport(m, m.Team, "")
}

func printIngestIssues(unknown map[string]int, malformed int) {
	labels := make([]string, 0, len(unknown))
	for l := range unknown {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	for _, l := range labels {
		fmt.Fprintf(os.Stderr, "warning: unrecognised code %q on %d rows\n", l, unknown[l])
	}
	if malformed > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d malformed rows skipped\n", malformed)
	}
}
