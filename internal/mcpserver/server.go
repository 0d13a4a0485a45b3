// Package mcpserver exposes the match catalog as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/metrics"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/storage"
)

const (
	serverName    = "match-metrics"
	serverVersion = "0.1.0"
)

type ListMatchesArgs struct {
	Team  string `json:"team" jsonschema:"Only matches analysed for this team (optional)"`
	Limit int    `json:"limit" jsonschema:"Maximum matches to return (0 = all)"`
}

type MatchArgs struct {
	Match  string `json:"match" jsonschema:"Match hash or hash prefix (required)"`
	Team   string `json:"team" jsonschema:"Team to analyse (default: configured team)"`
	Period string `json:"period" jsonschema:"all, a period number, or 2h for the second half"`
}

type PlayerArgs struct {
	Match      string `json:"match" jsonschema:"Match hash or hash prefix (required)"`
	Player     string `json:"player" jsonschema:"Player id such as '7. Pérez' or just the name (required)"`
	Period     string `json:"period" jsonschema:"all, a period number, or 2h for the second half"`
	Goalkeeper bool   `json:"goalkeeper" jsonschema:"Force the goalkeeper block even if the roster does not say so"`
}

// Server holds the dependencies the tools read from.
type Server struct {
	db          *storage.DB
	files       *filestore.Store
	metrics     *metrics.Manager
	defaultTeam string
}

// New returns a tool server. files and m may be nil.
func New(db *storage.DB, files *filestore.Store, m *metrics.Manager, defaultTeam string) *Server {
	return &Server{db: db, files: files, metrics: m, defaultTeam: defaultTeam}
}

// MCP builds the MCP server with every tool registered.
func (s *Server) MCP() *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_matches",
		Description: "List stored matches, newest first",
	}, s.listMatches)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "match_report",
		Description: "Every view of one match: time ranges, passing network, shots, fouls, recoveries, specific passes, team stats",
	}, s.matchReport)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "passing_network",
		Description: "Passing network nodes and edges for one team and period selection",
	}, s.passingNetwork)
	mcp.AddTool(server, &mcp.Tool{
		Name:        "player_card",
		Description: "Per-player card for one match, with goalkeeper figures for keepers",
	}, s.playerCard)
	return server
}

// Handler serves the tools over streamable HTTP.
func (s *Server) Handler() http.Handler {
	server := s.MCP()
	return mcp.NewStreamableHTTPHandler(func(r *http.Request) *mcp.Server {
		return server
	}, &mcp.StreamableHTTPOptions{JSONResponse: true})
}

func (s *Server) listMatches(ctx context.Context, req *mcp.CallToolRequest, args ListMatchesArgs) (*mcp.CallToolResult, any, error) {
	matches, err := s.db.ListMatches()
	if err != nil {
		return toolError(err), nil, nil
	}
	out := make([]model.MatchSummary, 0, len(matches))
	for _, m := range matches {
		if args.Team != "" && !strings.EqualFold(m.Team, strings.TrimSpace(args.Team)) {
			continue
		}
		out = append(out, m)
		if args.Limit > 0 && len(out) == args.Limit {
			break
		}
	}
	return toolJSON(out)
}

func (s *Server) matchReport(ctx context.Context, req *mcp.CallToolRequest, args MatchArgs) (*mcp.CallToolResult, any, error) {
	m, q, err := s.load(args.Match, args.Team, args.Period)
	if err != nil {
		return toolError(err), nil, nil
	}
	start := time.Now()
	rep, err := aggregator.Analyze(m, q)
	if err != nil {
		return toolError(err), nil, nil
	}
	if s.metrics != nil {
		s.metrics.RecordReport("mcp", aggregator.Views, rep.Errors, time.Since(start))
	}
	return toolJSON(rep)
}

func (s *Server) passingNetwork(ctx context.Context, req *mcp.CallToolRequest, args MatchArgs) (*mcp.CallToolResult, any, error) {
	m, q, err := s.load(args.Match, args.Team, args.Period)
	if err != nil {
		return toolError(err), nil, nil
	}
	net, err := aggregator.PassingNetwork(m, q)
	if err != nil {
		return toolError(err), nil, nil
	}
	return toolJSON(net)
}

func (s *Server) playerCard(ctx context.Context, req *mcp.CallToolRequest, args PlayerArgs) (*mcp.CallToolResult, any, error) {
	if strings.TrimSpace(args.Player) == "" {
		return toolError(fmt.Errorf("player is required")), nil, nil
	}
	m, q, err := s.load(args.Match, "", args.Period)
	if err != nil {
		return toolError(err), nil, nil
	}
	gk := args.Goalkeeper
	if !gk && s.files != nil {
		if gk, err = s.files.IsGoalkeeper(args.Player); err != nil {
			return toolError(err), nil, nil
		}
	}
	card := aggregator.PlayerCard(m, q, args.Player, aggregator.CardOptions{Goalkeeper: gk})
	if card.Team == "" {
		return toolError(fmt.Errorf("player %q has no events in match %s", args.Player, m.Hash[:12])), nil, nil
	}
	return toolJSON(card)
}

func (s *Server) load(match, team, period string) (*model.Match, model.Query, error) {
	if strings.TrimSpace(match) == "" {
		return nil, model.Query{}, fmt.Errorf("match is required")
	}
	q, err := aggregator.NewQuery(team, period, s.defaultTeam)
	if err != nil {
		return nil, q, err
	}
	m, err := s.db.LoadMatch(strings.TrimSpace(match))
	if err != nil {
		return nil, q, fmt.Errorf("match %s: %w", match, err)
	}
	return m, q, nil
}

func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError(err), nil, nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(b)},
		},
	}, nil, nil
}

func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf("error: %v", err)},
		},
	}
}
