package storage

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/pable/go-match-metrics/internal/model"
)

func openMemDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func makeMatch(hash, date string) *model.Match {
	nan := math.NaN()
	return &model.Match{
		MatchSummary: model.MatchSummary{
			Hash:       hash,
			FileName:   "jornada.xlsx",
			Team:       model.DefaultTeam,
			Opponent:   "Levante",
			MatchDate:  date,
			UploadedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			Columns:    model.EventColumns,
		},
		Events: []model.Event{
			{Row: 1, Team: model.DefaultTeam, Period: 1, Minute: 3, Code: model.CodePass, RawCode: "Pases",
				Player: "7. A", Secondary: "9. B", StartX: 120, StartY: 80, EndX: 150, EndY: 70},
			{Row: 2, Team: model.DefaultTeam, Period: 1, Minute: nan, Code: model.CodePass, RawCode: "Pases",
				Player: "9. B", StartX: 150, StartY: 70, EndX: nan, EndY: nan},
			{Row: 3, Team: "Levante", Period: 2, Minute: 60, Code: model.CodeUnknown, RawCode: "Pase",
				Player: "11. R", StartX: nan, StartY: nan, EndX: nan, EndY: nan},
		},
		MinutesPlayed: map[string]float64{"7. A": 70},
		UnknownCodes:  map[string]int{"Pase": 1},
		MalformedRows: 1,
	}
}

func TestMatchInsertAndExists(t *testing.T) {
	db := openMemDB(t)
	if err := db.InsertMatch(makeMatch("abc123", "2025-01-01")); err != nil {
		t.Fatalf("InsertMatch: %v", err)
	}

	exists, err := db.MatchExists("abc123")
	if err != nil {
		t.Fatalf("MatchExists: %v", err)
	}
	if !exists {
		t.Error("expected match to exist after insert")
	}

	exists2, _ := db.MatchExists("nonexistent")
	if exists2 {
		t.Error("expected non-existent match to not exist")
	}
}

func TestListMatches(t *testing.T) {
	db := openMemDB(t)
	db.InsertMatch(makeMatch("h1", "2025-01-01"))
	db.InsertMatch(makeMatch("h2", "2025-02-01"))

	list, err := db.ListMatches()
	if err != nil {
		t.Fatalf("ListMatches: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(list))
	}
	// Ordered by match_date DESC: h2 should be first.
	if list[0].Hash != "h2" {
		t.Errorf("expected h2 first (newest), got %s", list[0].Hash)
	}
	if list[0].EventCount != 3 || len(list[0].Columns) != len(model.EventColumns) {
		t.Errorf("unexpected summary %+v", list[0])
	}
}

func TestGetMatchByPrefix(t *testing.T) {
	db := openMemDB(t)
	db.InsertMatch(makeMatch("deadbeef1234", "2025-01-01"))

	s, err := db.GetMatchByPrefix("deadb")
	if err != nil {
		t.Fatalf("GetMatchByPrefix: %v", err)
	}
	if s.Hash != "deadbeef1234" || s.Opponent != "Levante" {
		t.Errorf("unexpected match %+v", s)
	}

	if _, err := db.GetMatchByPrefix("ffffffff"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for unknown prefix, got %v", err)
	}
}

func TestLoadMatchRoundTrip(t *testing.T) {
	db := openMemDB(t)
	db.InsertMatch(makeMatch("h1", "2025-01-01"))

	m, err := db.LoadMatch("h1")
	if err != nil {
		t.Fatalf("LoadMatch: %v", err)
	}
	if len(m.Events) != 3 {
		t.Fatalf("expected 3 events, got %d", len(m.Events))
	}
	first := m.Events[0]
	if first.Code != model.CodePass || first.Secondary != "9. B" || first.StartX != 120 {
		t.Errorf("first event: %+v", first)
	}
	second := m.Events[1]
	if !math.IsNaN(second.Minute) || !math.IsNaN(second.EndX) {
		t.Errorf("NULL columns must load as NaN: %+v", second)
	}
	if _, ok := second.Receiver(); ok {
		t.Error("second pass has no receiver")
	}
	if m.Events[2].Code != model.CodeUnknown || m.Events[2].RawCode != "Pase" {
		t.Errorf("unknown label must survive: %+v", m.Events[2])
	}
	if m.MinutesPlayed["7. A"] != 70 || m.UnknownCodes["Pase"] != 1 || m.MalformedRows != 1 {
		t.Errorf("side tables: minutes=%v unknown=%v malformed=%d", m.MinutesPlayed, m.UnknownCodes, m.MalformedRows)
	}
	if !m.UploadedAt.Equal(time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("uploaded_at: %v", m.UploadedAt)
	}
}

func TestInsertIdempotency(t *testing.T) {
	db := openMemDB(t)
	m := makeMatch("idem1", "2025-01-01")
	db.InsertMatch(m)
	// Second insert should not error and must not duplicate events.
	if err := db.InsertMatch(m); err != nil {
		t.Fatalf("second InsertMatch should succeed (idempotent): %v", err)
	}
	events, err := db.GetEvents("idem1")
	if err != nil {
		t.Fatalf("GetEvents: %v", err)
	}
	if len(events) != 3 {
		t.Errorf("expected 3 events after re-insert, got %d", len(events))
	}
}

func TestMatchesWithPlayerAndDelete(t *testing.T) {
	db := openMemDB(t)
	db.InsertMatch(makeMatch("h1", "2025-01-01"))
	db.InsertMatch(makeMatch("h2", "2025-02-01"))

	byName, err := db.MatchesWithPlayer("A")
	if err != nil {
		t.Fatalf("MatchesWithPlayer: %v", err)
	}
	if len(byName) != 2 || byName[0].Hash != "h1" {
		t.Errorf("expected h1, h2 oldest first, got %+v", byName)
	}
	byID, _ := db.MatchesWithPlayer("7. A")
	if len(byID) != 2 {
		t.Errorf("expected 2 matches by full id, got %d", len(byID))
	}

	if err := db.DeleteMatch("h1"); err != nil {
		t.Fatalf("DeleteMatch: %v", err)
	}
	if err := db.DeleteMatch("h1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
	ov, err := db.Overview()
	if err != nil {
		t.Fatalf("Overview: %v", err)
	}
	if ov.Matches != 1 || ov.Events != 3 || ov.Players != 3 {
		t.Errorf("unexpected overview %+v", ov)
	}
	if len(ov.Teams) != 2 || ov.UnknownLabels["Pase"] != 1 {
		t.Errorf("unexpected teams/labels %+v", ov)
	}
}

func TestQueryRaw(t *testing.T) {
	db := openMemDB(t)
	db.InsertMatch(makeMatch("h1", "2025-01-01"))

	cols, rows, err := db.QueryRaw("SELECT code, COUNT(*) AS n, MAX(minute) FROM events GROUP BY code ORDER BY code")
	if err != nil {
		t.Fatalf("QueryRaw: %v", err)
	}
	if len(cols) != 3 || cols[1] != "n" {
		t.Errorf("unexpected columns %v", cols)
	}
	if len(rows) != 2 || rows[1][0] != "Pases" || rows[1][1] != "2" {
		t.Errorf("unexpected rows %v", rows)
	}
}
