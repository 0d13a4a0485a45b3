package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pable/go-match-metrics/internal/model"
)

func TestPrintReportIncludesViewsAndIssues(t *testing.T) {
	r := &model.MatchReport{
		Match: model.MatchSummary{Hash: "0123456789abcdef", Team: "Valencia", Opponent: "Levante", FileName: "j1.xlsx"},
		Query: model.Query{Team: "Valencia", Period: model.SinglePeriod(1)},
		TimeRanges: model.TimeRanges{Periods: []model.PeriodRange{
			{Period: 1, TimeRange: model.TimeRange{Start: 1, End: 45}},
		}},
		Network: &model.PassNetwork{
			Team: "Valencia", Period: "1", PassCount: 10,
			Nodes: []model.PassNode{{Player: "7. A", Participation: 10}, {Player: "9. B", Participation: 10}},
			Edges: []model.PassEdge{{Passer: "7. A", Receiver: "9. B", Count: 10, Width: 18}},
		},
		Shots:    &model.ShotMap{Team: "Valencia", Period: "1", Summary: model.ShotSummary{Total: 2, Goals: 1, OnTarget: 1}},
		Warnings: []string{"no fouls for Valencia, period 1"},
		Errors:   map[string]string{"recoveries": "recoveries: missing columns X"},
	}

	var buf bytes.Buffer
	PrintReport(&buf, r)
	out := buf.String()
	for _, want := range []string{
		"Hash: 0123456789ab",
		"1' - 45'",
		"Passing network: Valencia",
		"18.0",
		"100%",
		"warning: no fouls",
		"error: recoveries: missing columns X",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q\n%s", want, out)
		}
	}
}

func TestPrintMatrixTotals(t *testing.T) {
	m := &model.PassMatrix{
		Team: "Valencia", Period: "all",
		Players:  []model.PlayerID{"7. A", "9. B"},
		Counts:   [][]int{{0, 3}, {1, 0}},
		Made:     []int{3, 1},
		Received: []int{1, 3},
	}
	var buf bytes.Buffer
	PrintMatrix(&buf, m)
	out := buf.String()
	if !strings.Contains(out, "RECEIVED") || !strings.Contains(out, "MADE") {
		t.Errorf("matrix totals missing:\n%s", out)
	}
}

func TestPrintPlayerCardGoalkeeper(t *testing.T) {
	c := model.PlayerCard{
		Player: "1. Pérez", Team: "Valencia", Matches: 1, Minutes: 30,
		Goalkeeper: &model.GoalkeeperCard{ShotsFaced: 4, GoalsConceded: 1, Saves: 2, SavePct: 66.7},
	}
	var buf bytes.Buffer
	PrintPlayerCard(&buf, c)
	out := buf.String()
	if !strings.Contains(out, "30 (est.)") {
		t.Errorf("estimated minutes not flagged:\n%s", out)
	}
	if !strings.Contains(out, "Goalkeeper") || !strings.Contains(out, "67%") {
		t.Errorf("goalkeeper block missing:\n%s", out)
	}
}
