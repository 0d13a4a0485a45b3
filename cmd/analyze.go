package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/spf13/cobra"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/storage"
)

const analyzeSystemPrompt = `You are a football performance analyst working with a youth academy. You are
given structured data computed from tagged match event logs and a question from
a coach.

Rules:
- Answer ONLY from the data provided. Never invent or estimate statistics.
- Always cite specific numbers when making a claim.
- If the data is insufficient to answer confidently, say so explicitly.
- Be concise and actionable. Focus on what the team or player can work on in training.
- Avoid generic football advice unless it directly explains a pattern in the data.
- Answer in the language of the question.

Metrics glossary:
- Period: the tagged match period. "2h" means every period after the first.
- Pass precision: completed / (completed + failed). A pass is completed when a receiver was tagged.
- Passing network edges: passer to receiver counts. Node position is the mean of the player's pass start and receive points.
- Shots: goal, on target (saved or blocked on goal), off target, unclassified.
- Shot accuracy: (goals + on target) / shots. Conversion: goals / shots.
- Recovery zones: "Campo Propio" is the own half, "Campo Contrario" the opponent half.
- Find facing / find depth: passes that found a teammate facing play / in behind the line.
- Attack box (+3): actions attacking the penalty area, "+3" when three or more players arrived.
- Minutes: official minutes when the match sheet had them, otherwise estimated from tagged events.
- Performance index: weighted sum of completed passes, goals, shots on target, recoveries and
  progressive passes minus fouls and failed passes. Goalkeepers are scored on saves.
- Goalkeeper save %: saves / (saves + goals conceded).`

var (
	analyzeModel     string
	analyzeAPIKey    string
	analyzePeriod    string
	analyzeMaxTokens int

	analyzePlayerSince string
	analyzePlayerLast  int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "AI-powered grounded analysis (requires ANTHROPIC_API_KEY)",
}

var analyzePlayerCmd = &cobra.Command{
	Use:   "player <player> <question>",
	Short: "Analyze a player's cards across matches with AI",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzePlayer,
}

var analyzeMatchCmd = &cobra.Command{
	Use:   "match <hash-prefix> <question>",
	Short: "Analyze a single match with AI",
	Args:  cobra.ExactArgs(2),
	RunE:  runAnalyzeMatch,
}

func init() {
	analyzeCmd.PersistentFlags().StringVar(&analyzeModel, "model", "", "Anthropic model to use (default: anthropic_model from config)")
	analyzeCmd.PersistentFlags().StringVar(&analyzeAPIKey, "api-key", "", "Anthropic API key (falls back to $ANTHROPIC_API_KEY)")
	analyzeCmd.PersistentFlags().IntVar(&analyzeMaxTokens, "max-tokens", 1024, "answer length cap in tokens")
	analyzeCmd.PersistentFlags().StringVarP(&analyzePeriod, "period", "p", "all", "period selection: all, N or 2h")

	analyzePlayerCmd.Flags().StringVar(&analyzePlayerSince, "since", "", "only matches on or after this date (YYYY-MM-DD)")
	analyzePlayerCmd.Flags().IntVar(&analyzePlayerLast, "last", 0, "only the N most recent matches")

	analyzeCmd.AddCommand(analyzePlayerCmd)
	analyzeCmd.AddCommand(analyzeMatchCmd)
}

func runAnalyzePlayer(cmd *cobra.Command, args []string) error {
	player, question := args[0], args[1]
	q, err := aggregator.NewQuery(teamName, analyzePeriod, cfg.Team)
	if err != nil {
		return err
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer db.Close()

	opts, err := cardOptions(player, false)
	if err != nil {
		return err
	}
	rows, err := playerRows(db, player, q, opts)
	if err != nil {
		return err
	}
	rows = filterRows(rows, analyzePlayerSince, analyzePlayerLast)
	if len(rows) == 0 {
		return fmt.Errorf("no data found for %s (after filters)", player)
	}

	filters := map[string]any{
		"period": q.Period.String(),
		"since":  analyzePlayerSince,
		"last":   analyzePlayerLast,
	}
	contextJSON, err := buildPlayerContext(rows, filters)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), cmd.OutOrStdout(), analyzeAPIKey, analyzeModelID(), contextJSON, question)
}

func runAnalyzeMatch(cmd *cobra.Command, args []string) error {
	q, err := aggregator.NewQuery(teamName, analyzePeriod, cfg.Team)
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
		return fmt.Errorf("find match: %w", err)
	}
	rep, err := aggregator.Analyze(m, q)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	contextJSON, err := buildMatchContext(rep)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}
	return callAnthropic(cmd.Context(), cmd.OutOrStdout(), analyzeAPIKey, analyzeModelID(), contextJSON, args[1])
}

func analyzeModelID() string {
	if analyzeModel != "" {
		return analyzeModel
	}
	return cfg.AnthropicModel
}

// filterRows keeps rows dated on or after since, then the last n of them.
// Rows are oldest first.
func filterRows(rows []model.PlayerMatchRow, since string, last int) []model.PlayerMatchRow {
	out := rows[:0:0]
	for _, r := range rows {
		if since != "" && r.Match.MatchDate < since {
			continue
		}
		out = append(out, r)
	}
	if last > 0 && len(out) > last {
		out = out[len(out)-last:]
	}
	return out
}

// buildPlayerContext summarises accumulated and per-match cards.
func buildPlayerContext(rows []model.PlayerMatchRow, filters map[string]any) (string, error) {
	type matchEntry struct {
		Date       string  `json:"date"`
		Opponent   string  `json:"opponent"`
		Minutes    float64 `json:"minutes"`
		Estimated  bool    `json:"minutes_estimated"`
		Passes     string  `json:"passes"`
		PassPct    float64 `json:"pass_pct"`
		Shots      int     `json:"shots"`
		Goals      int     `json:"goals"`
		Recoveries int     `json:"recoveries"`
		Fouls      int     `json:"fouls"`
		Index      float64 `json:"index"`
	}

	cards := make([]model.PlayerCard, len(rows))
	matches := make([]matchEntry, len(rows))
	for i, r := range rows {
		c := r.Card
		cards[i] = c
		matches[i] = matchEntry{
			Date:       r.Match.MatchDate,
			Opponent:   r.Match.Opponent,
			Minutes:    round2(c.Minutes),
			Estimated:  !c.OfficialMinutes,
			Passes:     fmt.Sprintf("%d/%d", c.Passes.Completed, c.Passes.Total()),
			PassPct:    round2(c.Passes.Precision()),
			Shots:      c.Shots.Total,
			Goals:      c.Shots.Goals,
			Recoveries: c.Recoveries,
			Fouls:      c.Fouls,
			Index:      round2(c.Index),
		}
	}
	total := aggregator.SumCards(cards)

	doc := map[string]any{
		"subject":          "player",
		"player":           total.Player,
		"team":             total.Team,
		"matches_analyzed": total.Matches,
		"filters":          filters,
		"overview": map[string]any{
			"minutes":           round2(total.Minutes),
			"actions":           total.Actions,
			"passes_completed":  total.Passes.Completed,
			"passes_failed":     total.Passes.Failed,
			"pass_pct":          round2(total.Passes.Precision()),
			"shots":             total.Shots,
			"shot_accuracy_pct": round2(total.Shots.Accuracy()),
			"fouls":             total.Fouls,
			"recoveries":        total.Recoveries,
			"find_depth":        total.FindDepth,
			"find_facing":       total.FindFacing,
			"attack_box":        total.AttackBox,
			"performance_index": round2(total.Index),
		},
		"per_match": matches,
	}
	if total.Goalkeeper != nil {
		gk := *total.Goalkeeper
		gk.SavePct = round2(gk.SavePct)
		doc["goalkeeper"] = gk
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

// buildMatchContext keeps the counts of a report and drops the raw points.
func buildMatchContext(rep *model.MatchReport) (string, error) {
	type edgeEntry struct {
		Passer   model.PlayerID `json:"passer"`
		Receiver model.PlayerID `json:"receiver"`
		Count    int            `json:"count"`
	}

	doc := map[string]any{
		"subject":  "match",
		"team":     rep.Query.Team,
		"opponent": rep.Match.Opponent,
		"date":     rep.Match.MatchDate,
		"period":   rep.Query.Period.String(),
		"range":    rep.TimeRanges.Label(rep.Query.Period),
		"passes": map[string]any{
			"completed": rep.Passes.Completed,
			"failed":    rep.Passes.Failed,
			"pct":       round2(rep.Passes.Precision()),
		},
		"corners":     rep.Corners,
		"substitutes": rep.Substitutes,
	}
	if rep.Team != nil {
		doc["score"] = fmt.Sprintf("%d-%d", rep.Team.GoalsFor, rep.Team.GoalsAgainst)
		doc["team_stats"] = rep.Team
	}
	if n := rep.Network; n != nil {
		edges := make([]edgeEntry, 0, len(n.Edges))
		for _, e := range n.Edges {
			edges = append(edges, edgeEntry{Passer: e.Passer, Receiver: e.Receiver, Count: e.Count})
		}
		doc["passing_network"] = map[string]any{"passes": n.PassCount, "edges": edges}
	}
	if s := rep.Shots; s != nil {
		doc["shots"] = map[string]any{
			"summary":        s.Summary,
			"accuracy_pct":   round2(s.Summary.Accuracy()),
			"conversion_pct": round2(s.Summary.Conversion()),
			"by_player":      s.ByPlayer,
		}
	}
	if f := rep.Fouls; f != nil {
		doc["fouls"] = map[string]any{"total": f.Total, "by_player": f.ByPlayer, "by_period": f.ByPeriod}
	}
	if r := rep.Recoveries; r != nil {
		doc["recoveries"] = map[string]any{"total": r.Total, "by_player": r.ByPlayer, "by_zone": r.ByZone}
	}
	if len(rep.SpecificPasses) > 0 {
		specific := make(map[string]int, len(rep.SpecificPasses))
		for _, g := range rep.SpecificPasses {
			specific[g.Action.String()] = len(g.Arrows)
		}
		doc["specific_passes"] = specific
	}
	if len(rep.Warnings) > 0 {
		doc["warnings"] = rep.Warnings
	}
	if len(rep.Errors) > 0 {
		doc["unavailable_views"] = rep.Errors
	}

	b, err := json.Marshal(doc)
	return string(b), err
}

func round2(v float64) float64 {
	return float64(int(v*100+0.5)) / 100
}

// callAnthropic streams the model's answer about dataJSON to w.
func callAnthropic(ctx context.Context, w io.Writer, apiKey, modelID, dataJSON, question string) error {
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("no API key: set ANTHROPIC_API_KEY or use --api-key")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	stream := client.Messages.NewStreaming(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(modelID),
		MaxTokens: int64(analyzeMaxTokens),
		System: []anthropic.TextBlockParam{
			{Text: analyzeSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(
				fmt.Sprintf("DATA:\n%s\n\nQUESTION: %s", dataJSON, question))),
		},
	})

	fmt.Fprintln(w, "\n─── AI Analysis ─────────────────────────────────────")
	for stream.Next() {
		evt := stream.Current()
		if evt.Type != "content_block_delta" {
			continue
		}
		if delta := evt.AsContentBlockDelta(); delta.Delta.Type == "text_delta" {
			fmt.Fprint(w, delta.Delta.AsTextDelta().Text)
		}
	}
	fmt.Fprintln(w, "\n─────────────────────────────────────────────────────")

	if err := stream.Err(); err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusUnauthorized {
			return fmt.Errorf("API authentication failed, check your API key")
		}
		return fmt.Errorf("streaming error: %w", err)
	}
	return nil
}
