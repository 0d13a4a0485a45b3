package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/spf13/cobra"
)

var (
	fetchTimeout time.Duration
	fetchMaxMB   int
)

// fetchCmd downloads a shared event log and ingests it.
var fetchCmd = &cobra.Command{
	Use:   "fetch <url>",
	Short: "Download a match event log and ingest it",
	Long: `Download an .xlsx or .csv event log shared by the analysis staff and ingest
it as 'ingest' would. Files ending in .gz or .zst, or served with gzip
Content-Encoding, are decompressed first.`,
	Args: cobra.ExactArgs(1),
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&ingestOpponent, "opponent", "", "rival team (default: the other team in the events)")
	fetchCmd.Flags().StringVar(&ingestDate, "date", "", "match date YYYY-MM-DD (default: today)")
	fetchCmd.Flags().DurationVar(&fetchTimeout, "timeout", 60*time.Second, "download timeout")
	fetchCmd.Flags().IntVar(&fetchMaxMB, "max-mb", 0, "size cap in MB (default: max_upload_mb from config)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	name, data, err := download(cmd, args[0])
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	return ingestBytes(cmd, name, data)
}

// download fetches rawURL, decompressing gzip or zstd, and returns the file
// name the payload should be parsed as.
func download(cmd *cobra.Command, rawURL string) (string, []byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", nil, err
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "", nil, fmt.Errorf("no file name in %s", rawURL)
	}

	ctx := cmd.Context()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", nil, err
	}
	client := &http.Client{Timeout: fetchTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return "", nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", nil, fmt.Errorf("HTTP %d", resp.StatusCode)
	}

	var src io.Reader = resp.Body
	switch {
	case strings.HasSuffix(name, ".zst"):
		dec, err := zstd.NewReader(resp.Body)
		if err != nil {
			return "", nil, fmt.Errorf("zstd: %w", err)
		}
		defer dec.Close()
		src = dec
		name = strings.TrimSuffix(name, ".zst")
	case strings.HasSuffix(name, ".gz") || resp.Header.Get("Content-Encoding") == "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return "", nil, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		src = gz
		name = strings.TrimSuffix(name, ".gz")
	}

	limit := int64(fetchMaxMB) << 20
	if limit <= 0 {
		limit = cfg.MaxUploadBytes()
	}
	data, err := io.ReadAll(io.LimitReader(src, limit+1))
	if err != nil {
		return "", nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(data)) > limit {
		return "", nil, fmt.Errorf("file larger than %d MB", limit>>20)
	}
	return name, data, nil
}
