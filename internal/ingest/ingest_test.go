package ingest

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/metrics"
	"github.com/pable/go-match-metrics/internal/parser"
	"github.com/pable/go-match-metrics/internal/storage"
)

const matchCSV = `Team,Periodo,Mins,code,group,text,Player,Secundary,startX,startY,endX,endY
Valencia,1,3,Pases,,,7. A,9. B,120,80,150,70
Valencia,1,4,Pases,,,9. B,7. A,150,70,120,80
Levante,1,10,Finalizaciones,A puerta,Gol,11. R,,200,75,,
Levante,2,50,Faltas,,,4. D,,100,40,,
`

func newService(t *testing.T) (*Service, *metrics.Manager) {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	m := metrics.NewManager()
	s := NewService(db, filestore.New(t.TempDir()), m)
	s.now = func() time.Time { return time.Date(2025, 5, 4, 12, 0, 0, 0, time.UTC) }
	return s, m
}

func TestIngestStoresMatchAndOriginal(t *testing.T) {
	s, m := newService(t)
	ctx := context.Background()

	res, err := s.Ingest(ctx, "jornada 5.csv", []byte(matchCSV), Meta{Team: "Valencia"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if res.Existing {
		t.Error("first ingest must not be existing")
	}
	got := res.Match
	if got.Opponent != "Levante" {
		t.Errorf("opponent should be inferred, got %q", got.Opponent)
	}
	if got.MatchDate != "2025-05-04" {
		t.Errorf("date should default to upload day, got %q", got.MatchDate)
	}
	if res.Entry == nil || got.StoredPath != res.Entry.Path {
		t.Fatalf("original not recorded: %+v", res.Entry)
	}
	if b, err := os.ReadFile(got.StoredPath); err != nil || string(b) != matchCSV {
		t.Errorf("stored original differs: %v", err)
	}

	stored, err := s.DB.GetMatchByPrefix(got.Hash[:8])
	if err != nil {
		t.Fatalf("GetMatchByPrefix: %v", err)
	}
	if stored.EventCount != 4 || stored.StoredPath != got.StoredPath {
		t.Errorf("catalog row: %+v", stored)
	}

	const want = `
# HELP matchmetrics_ingest_matches_total Match files parsed and stored in the catalog.
# TYPE matchmetrics_ingest_matches_total counter
matchmetrics_ingest_matches_total 1
`
	if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(want), "matchmetrics_ingest_matches_total"); err != nil {
		t.Error(err)
	}
}

func TestIngestIsIdempotent(t *testing.T) {
	s, _ := newService(t)
	ctx := context.Background()
	first, err := s.Ingest(ctx, "a.csv", []byte(matchCSV), Meta{Opponent: "Levante UD", Date: "2025-03-01"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	again, err := s.Ingest(ctx, "renamed.csv", []byte(matchCSV), Meta{})
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if !again.Existing || again.Match.Hash != first.Match.Hash {
		t.Errorf("expected cached match, got %+v", again)
	}
	if again.Match.Opponent != "Levante UD" || again.Match.MatchDate != "2025-03-01" {
		t.Errorf("cached metadata must be kept: %+v", again.Match.MatchSummary)
	}
	entries, _ := s.Files.List("Valencia")
	if len(entries) != 1 {
		t.Errorf("original stored twice: %d entries", len(entries))
	}
}

func TestIngestRejectsNonEventLog(t *testing.T) {
	s, _ := newService(t)
	_, err := s.Ingest(context.Background(), "notes.csv", []byte("a,b\n1,2\n"), Meta{})
	if !errors.Is(err, parser.ErrNotEventLog) {
		t.Errorf("expected ErrNotEventLog, got %v", err)
	}
}
