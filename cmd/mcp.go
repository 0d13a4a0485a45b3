package cmd

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/logger"
	"github.com/pable/go-match-metrics/internal/mcpserver"
	"github.com/pable/go-match-metrics/internal/metrics"
	"github.com/pable/go-match-metrics/internal/storage"
)

// mcpAPIKeyEnv optionally protects the HTTP transport.
const mcpAPIKeyEnv = "MATCHMETRICS_MCP_API_KEY"

var (
	mcpAddr  string
	mcpPath  string
	mcpStdio bool
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the catalog as MCP tools",
	Long: `Expose list_matches, match_report, passing_network and player_card to MCP
clients, over streamable HTTP by default or over stdin/stdout with --stdio.

Set ` + mcpAPIKeyEnv + ` to require a bearer token on the HTTP transport.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	mcpCmd.Flags().StringVar(&mcpAddr, "addr", "", "listen address (default: addr from config)")
	mcpCmd.Flags().StringVar(&mcpPath, "path", "/mcp", "HTTP path of the MCP endpoint")
	mcpCmd.Flags().BoolVar(&mcpStdio, "stdio", false, "serve over stdin/stdout instead of HTTP")
}

func runMCP(cmd *cobra.Command, args []string) error {
	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.NewManager()
	tools := mcpserver.New(db, filestore.New(dataDir), m, teamName)
	if mcpStdio {
		return tools.MCP().Run(ctx, &mcp.StdioTransport{})
	}

	if mcpAddr == "" {
		mcpAddr = cfg.Addr
	}
	mux := http.NewServeMux()
	mux.Handle(mcpPath, withAPIKey(strings.TrimSpace(os.Getenv(mcpAPIKeyEnv)), tools.Handler()))
	mux.Handle("GET /metrics", m.Handler())

	srv := &http.Server{Addr: mcpAddr, Handler: mux, ReadHeaderTimeout: 10 * time.Second}
	log := logger.Named("mcp")
	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "mcp listening", logger.String("addr", mcpAddr), logger.String("path", mcpPath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", mcpAddr, err)
	case <-ctx.Done():
	}
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

// withAPIKey rejects requests without the key, as X-API-Key or a bearer
// token. An empty key disables the check.
func withAPIKey(key string, next http.Handler) http.Handler {
	if key == "" {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got := strings.TrimSpace(r.Header.Get("X-API-Key"))
		if got == "" {
			if authz := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
				got = strings.TrimSpace(authz[7:])
			}
		}
		if subtle.ConstantTimeCompare([]byte(got), []byte(key)) != 1 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"code":"unauthorized","message":"missing or wrong API key"}`))
			return
		}
		next.ServeHTTP(w, r)
	})
}
