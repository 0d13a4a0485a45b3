package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/metrics"
	"github.com/pable/go-match-metrics/internal/storage"
	"github.com/pable/go-match-metrics/internal/web"
)

var serveAddr string

// serveCmd runs the dashboard: upload form, match pages, JSON API, live
// websocket notifications and Prometheus metrics.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web dashboard and JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default: addr from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if serveAddr == "" {
		serveAddr = cfg.Addr
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return fmt.Errorf("create db dir: %w", err)
	}
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(db, filestore.New(dataDir), metrics.NewManager(), web.Options{
		DefaultTeam:    teamName,
		MaxUploadBytes: cfg.MaxUploadBytes(),
	})
	fmt.Fprintf(os.Stdout, "Dashboard on http://%s\n", displayAddr(serveAddr))
	return srv.Run(ctx, serveAddr)
}

// displayAddr turns ":8080" into "localhost:8080".
func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
