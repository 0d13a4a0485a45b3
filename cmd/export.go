package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/storage"
)

var (
	exportOut    string
	exportPeriod string
)

// exportDocument is the JSON handed to the PDF report renderer.
type exportDocument struct {
	GeneratedAt string             `json:"generated_at"`
	Report      *model.MatchReport `json:"report"`
	Players     []model.PlayerCard `json:"players"`
}

var exportCmd = &cobra.Command{
	Use:   "export <hash-prefix>",
	Short: "Export a match report and player cards as JSON",
	Long: `Write every view of one match plus a card for each --team player as JSON,
the input of the PDF report renderer.

When --out ends in .zst the file is zstd-compressed.`,
	Example: `  matchmetrics export 3fa2 --out jornada12.json
  matchmetrics export 3fa2 --period 2h --out jornada12-2h.json.zst`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "output file path (default: stdout)")
	exportCmd.Flags().StringVarP(&exportPeriod, "period", "p", "all", "period selection: all, N or 2h")
}

func runExport(cmd *cobra.Command, args []string) error {
	q, err := aggregator.NewQuery(teamName, exportPeriod, cfg.Team)
	if err != nil {
		return err
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	m, err := db.LoadMatch(args[0])
	if err != nil {
		return fmt.Errorf("load match %q: %w", args[0], err)
	}
	doc, err := buildExport(m, q, filestore.New(dataDir))
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}
	data = append(data, '\n')

	if exportOut == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := writeExport(exportOut, data); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %s\n", exportOut)
	return nil
}

func buildExport(m *model.Match, q model.Query, files *filestore.Store) (*exportDocument, error) {
	rep, err := aggregator.Analyze(m, q)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	doc := &exportDocument{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Report:      rep,
	}
	for _, p := range aggregator.Players(m.Events, q.Team) {
		gk, err := files.IsGoalkeeper(string(p))
		if err != nil {
			return nil, fmt.Errorf("read roster: %w", err)
		}
		card := aggregator.PlayerCard(m, q, string(p), aggregator.CardOptions{Goalkeeper: gk})
		if card.Team == "" {
			continue
		}
		doc.Players = append(doc.Players, card)
	}
	return doc, nil
}

// writeExport writes data to path, zstd-compressed when path ends in .zst.
func writeExport(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	var w io.Writer = f
	var enc *zstd.Encoder
	if strings.HasSuffix(path, ".zst") {
		enc, err = zstd.NewWriter(f)
		if err != nil {
			return fmt.Errorf("zstd: %w", err)
		}
		w = enc
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	if enc != nil {
		if err := enc.Close(); err != nil {
			return fmt.Errorf("zstd close: %w", err)
		}
	}
	return f.Close()
}
