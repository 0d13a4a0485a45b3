package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/ingest"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/storage"
)

const matchCSV = `Team,Periodo,Mins,code,group,text,Player,Secundary,startX,startY,endX,endY
Valencia,1,3,Pases,,,7. A,9. B,120,80,150,70
Valencia,1,4,Pases,,,9. B,7. A,150,70,120,80
Valencia,2,60,Finalizaciones,A puerta,,9. B,,200,75,,
Levante,2,70,Finalizaciones,A puerta,Gol,11. R,,200,75,,
Levante,2,75,Finalizaciones,A puerta,,11. R,,190,70,,
`

func newTestServer(t *testing.T) (*Server, string) {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	files := filestore.New(t.TempDir())
	res, err := ingest.NewService(db, files, nil).Ingest(context.Background(), "j1.csv", []byte(matchCSV), ingest.Meta{Date: "2025-04-12"})
	if err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return New(db, files, nil, model.DefaultTeam), res.Match.Hash
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("expected one content block, got %d", len(res.Content))
	}
	tc, ok := res.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("expected text content, got %T", res.Content[0])
	}
	return tc.Text
}

func TestListMatches(t *testing.T) {
	s, hash := newTestServer(t)
	res, _, err := s.listMatches(context.Background(), nil, ListMatchesArgs{})
	if err != nil || res.IsError {
		t.Fatalf("list_matches: %v %s", err, resultText(t, res))
	}
	var out []model.MatchSummary
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 1 || out[0].Hash != hash || out[0].Opponent != "Levante" {
		t.Errorf("unexpected matches %+v", out)
	}

	res, _, _ = s.listMatches(context.Background(), nil, ListMatchesArgs{Team: "Alboraya"})
	if strings.TrimSpace(resultText(t, res)) != "[]" {
		t.Errorf("team filter should exclude everything: %s", resultText(t, res))
	}
}

func TestMatchReportAndNetwork(t *testing.T) {
	s, hash := newTestServer(t)
	res, _, _ := s.matchReport(context.Background(), nil, MatchArgs{Match: hash[:8], Period: "2h"})
	if res.IsError {
		t.Fatalf("match_report: %s", resultText(t, res))
	}
	var rep model.MatchReport
	if err := json.Unmarshal([]byte(resultText(t, res)), &rep); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if rep.Shots == nil || rep.Shots.Summary.Total != 1 {
		t.Errorf("second-half shots for Valencia: %+v", rep.Shots)
	}
	if rep.Team == nil || rep.Team.GoalsAgainst != 1 {
		t.Errorf("team stats: %+v", rep.Team)
	}

	res, _, _ = s.passingNetwork(context.Background(), nil, MatchArgs{Match: hash, Period: "1"})
	var net model.PassNetwork
	if err := json.Unmarshal([]byte(resultText(t, res)), &net); err != nil {
		t.Fatalf("decode network: %v", err)
	}
	if net.PassCount != 2 || len(net.Edges) != 2 {
		t.Errorf("network: %+v", net)
	}
}

func TestToolErrors(t *testing.T) {
	s, hash := newTestServer(t)
	ctx := context.Background()

	res, _, err := s.matchReport(ctx, nil, MatchArgs{Match: "ffff"})
	if err != nil || !res.IsError || !strings.Contains(resultText(t, res), "not found") {
		t.Errorf("unknown match should be a tool error: %v %+v", err, res)
	}
	res, _, _ = s.matchReport(ctx, nil, MatchArgs{})
	if !res.IsError {
		t.Error("missing match must be a tool error")
	}
	res, _, _ = s.passingNetwork(ctx, nil, MatchArgs{Match: hash, Period: "first"})
	if !res.IsError {
		t.Error("bad period must be a tool error")
	}
	res, _, _ = s.playerCard(ctx, nil, PlayerArgs{Match: hash, Player: "99. Nadie"})
	if !res.IsError {
		t.Error("unknown player must be a tool error")
	}
}

func TestPlayerCardUsesRoster(t *testing.T) {
	s, hash := newTestServer(t)
	if _, err := s.files.UpsertPlayer(filestore.RosterPlayer{Name: "A", Number: "7", Position: "Portero"}); err != nil {
		t.Fatalf("UpsertPlayer: %v", err)
	}
	res, _, _ := s.playerCard(context.Background(), nil, PlayerArgs{Match: hash, Player: "7. A"})
	if res.IsError {
		t.Fatalf("player_card: %s", resultText(t, res))
	}
	var card model.PlayerCard
	if err := json.Unmarshal([]byte(resultText(t, res)), &card); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if card.Goalkeeper == nil {
		t.Fatal("roster goalkeeper must get the goalkeeper block")
	}
	if card.Goalkeeper.ShotsFaced != 2 || card.Goalkeeper.GoalsConceded != 1 || card.Goalkeeper.Saves != 1 {
		t.Errorf("goalkeeper figures: %+v", card.Goalkeeper)
	}
}

func TestMCPRegistersTools(t *testing.T) {
	s, _ := newTestServer(t)
	if s.MCP() == nil || s.Handler() == nil {
		t.Fatal("server and handler must be built")
	}
}
