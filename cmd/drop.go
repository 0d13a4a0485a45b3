package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/storage"
)

var dropForce bool

// dropCmd deletes one match, or the whole catalog when no prefix is given.
var dropCmd = &cobra.Command{
	Use:   "drop [<hash-prefix>]",
	Short: "Delete one match or the whole catalog",
	Long: `With a hash prefix, delete that match from the catalog together with its
stored original. Without one, permanently delete the SQLite catalog. Uploaded
originals under the data directory are kept, so the catalog can be rebuilt by
ingesting them again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDrop,
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "skip confirmation prompt")
}

func runDrop(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		return dropMatch(args[0])
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will permanently delete: %s\n", dbPath)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := os.Remove(dbPath); err != nil {
		if os.IsNotExist(err) {
			fmt.Fprintln(os.Stdout, "Catalog does not exist, nothing to drop.")
			return nil
		}
		return fmt.Errorf("remove catalog: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted: %s\n", dbPath)
	return nil
}

func dropMatch(prefix string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	s, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return fmt.Errorf("find match %q: %w", prefix, err)
	}
	if !dropForce {
		fmt.Fprintf(os.Stderr, "This will delete %s (%s vs %s, %s).\n", s.Hash[:12], s.Team, s.Opponent, s.MatchDate)
		fmt.Fprintf(os.Stderr, "Re-run with --force to confirm.\n")
		return nil
	}
	if err := db.DeleteMatch(s.Hash); err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if err := filestore.New(dataDir).Delete(s.Team, s.Hash); err != nil && !errors.Is(err, filestore.ErrEntryNotFound) {
		return fmt.Errorf("delete original: %w", err)
	}
	fmt.Fprintf(os.Stdout, "Deleted match %s\n", s.Hash[:12])
	return nil
}
