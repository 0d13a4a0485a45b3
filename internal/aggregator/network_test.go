package aggregator

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/pable/go-match-metrics/internal/model"
)

func TestNormalize(t *testing.T) {
	x, y := Normalize(5, 5.333)
	if x != 0 || math.Abs(y-80) > 1e-9 {
		t.Errorf("origin: got (%f, %f), want (0, 80)", x, y)
	}
	x, y = Normalize(245, 155.333)
	if math.Abs(x-120) > 1e-9 || math.Abs(y) > 1e-9 {
		t.Errorf("far corner: got (%f, %f), want (120, 0)", x, y)
	}
	// every point in the native field maps inside the canonical pitch
	for nx := 5.0; nx <= 245; nx += 12 {
		for ny := 5.333; ny <= 155.333; ny += 7.5 {
			px, py := Normalize(nx, ny)
			if px < 0 || px > 120 || py < -1e-9 || py > 80+1e-9 {
				t.Fatalf("(%f, %f) -> (%f, %f) outside pitch", nx, ny, px, py)
			}
		}
	}
	if x, _ := Normalize(nan, 10); !math.IsNaN(x) {
		t.Error("NaN must propagate")
	}
}

func TestPassingNetwork_Example(t *testing.T) {
	var events []model.Event
	for i := 0; i < 10; i++ {
		events = append(events, makePass(playerA, playerB, float64(i+1)))
	}
	for i := 0; i < 5; i++ {
		events = append(events, makePass(playerB, playerA, float64(i+20)))
	}
	net, err := PassingNetwork(makeMatch(events), valenciaQuery())
	if err != nil {
		t.Fatalf("PassingNetwork: %v", err)
	}
	if len(net.Edges) != 2 {
		t.Fatalf("expected 2 edges, got %d", len(net.Edges))
	}
	ab, ba := net.Edges[0], net.Edges[1]
	if ab.Passer != playerA || ab.Receiver != playerB || ab.Count != 10 || ab.Width != 18 {
		t.Errorf("A->B edge: got %+v", ab)
	}
	if ba.Passer != playerB || ba.Receiver != playerA || ba.Count != 5 || ba.Width != 9 {
		t.Errorf("B->A edge: got %+v", ba)
	}
	if len(net.Nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(net.Nodes))
	}
	total := 0
	for _, n := range net.Nodes {
		if n.Participation != 15 {
			t.Errorf("%s participation: want 15, got %d", n.Player, n.Participation)
		}
		if n.MarkerSize != 3000 {
			t.Errorf("%s marker: want 3000, got %f", n.Player, n.MarkerSize)
		}
		total += n.Participation
	}
	if total != 2*net.PassCount {
		t.Errorf("participation sum %d != 2 * %d passes", total, net.PassCount)
	}
}

func TestPassingNetwork_MeanPosition(t *testing.T) {
	// A passes from (125,80) to B at (165,60); B only receives.
	events := []model.Event{makePass(playerA, playerB, 1), makePass(playerA, playerB, 2)}
	net, err := PassingNetwork(makeMatch(events), valenciaQuery())
	if err != nil {
		t.Fatalf("PassingNetwork: %v", err)
	}
	ax, ay := Normalize(125, 80)
	bx, by := Normalize(165, 60)
	for _, n := range net.Nodes {
		switch n.Player {
		case playerA:
			if math.Abs(n.X-ax) > 1e-9 || math.Abs(n.Y-ay) > 1e-9 {
				t.Errorf("A at (%f,%f), want (%f,%f)", n.X, n.Y, ax, ay)
			}
		case playerB:
			if math.Abs(n.X-bx) > 1e-9 || math.Abs(n.Y-by) > 1e-9 {
				t.Errorf("B at (%f,%f), want (%f,%f)", n.X, n.Y, bx, by)
			}
		}
	}
}

func TestPassingNetwork_DropsIncompleteRows(t *testing.T) {
	noCoords := makePass(playerA, playerC, 4)
	noCoords.EndX = nan
	failed := makePass(playerA, "", 5)
	noPasser := makePass("", playerC, 6)
	rival := makePass(playerA, playerC, 7)
	rival.Team = "Levante"

	events := []model.Event{makePass(playerA, playerB, 1), noCoords, failed, noPasser, rival}
	net, err := PassingNetwork(makeMatch(events), valenciaQuery())
	if err != nil {
		t.Fatalf("PassingNetwork: %v", err)
	}
	if net.PassCount != 1 || len(net.Edges) != 1 {
		t.Fatalf("expected 1 pass and 1 edge, got %d and %d", net.PassCount, len(net.Edges))
	}
	for _, n := range net.Nodes {
		if n.Player == playerC {
			t.Error("player C only appears on dropped rows and must not be a node")
		}
	}
}

func TestPassingNetwork_SkipsInfiniteCoordinates(t *testing.T) {
	bad := makePass(playerA, playerB, 2)
	bad.StartX = math.Inf(1)
	events := []model.Event{bad, makePass(playerA, playerB, 3)}

	net, err := PassingNetwork(makeMatch(events), valenciaQuery())
	if err != nil {
		t.Fatalf("PassingNetwork: %v", err)
	}
	if net.PassCount != 1 {
		t.Errorf("expected the infinite row to be dropped, got %d passes", net.PassCount)
	}
	for _, n := range net.Nodes {
		if !(model.Point{X: n.X, Y: n.Y}).Valid() {
			t.Errorf("node %s at (%f, %f)", n.Player, n.X, n.Y)
		}
	}
	if _, err := json.Marshal(net); err != nil {
		t.Errorf("network not encodable: %v", err)
	}
}

func TestPassingNetwork_PeriodAndSubstitutes(t *testing.T) {
	late := makePass(playerA, playerC, 60)
	late.Period = 2
	sub := model.Event{Team: model.DefaultTeam, Period: 2, Minute: 50, Code: model.CodeSubstitution,
		Player: playerB, Secondary: playerC}
	events := []model.Event{makePass(playerA, playerB, 10), makePass(playerA, playerB, 40), late, sub}

	first, err := PassingNetwork(makeMatch(events), model.Query{Team: model.DefaultTeam, Period: model.SinglePeriod(1)})
	if err != nil {
		t.Fatalf("PassingNetwork: %v", err)
	}
	if first.PassCount != 2 || first.Range != "10' - 40'" {
		t.Errorf("period 1: got %d passes, range %q", first.PassCount, first.Range)
	}

	second, _ := PassingNetwork(makeMatch(events), model.Query{Team: model.DefaultTeam, Period: model.SecondHalfPeriods()})
	if second.PassCount != 1 {
		t.Fatalf("second half: expected 1 pass, got %d", second.PassCount)
	}
	var found bool
	for _, n := range second.Nodes {
		if n.Player == playerC {
			found = true
			if !n.Substitute {
				t.Error("C came on at 50' and should be flagged as substitute")
			}
		}
	}
	if !found {
		t.Error("C missing from second-half nodes")
	}
}

func TestPassMatrix(t *testing.T) {
	events := []model.Event{
		makePass(playerA, playerB, 1),
		makePass(playerA, playerB, 2),
		makePass(playerB, playerC, 3),
		makePass(playerC, "", 4),
	}
	mx, err := PassMatrix(makeMatch(events), valenciaQuery())
	if err != nil {
		t.Fatalf("PassMatrix: %v", err)
	}
	// sorted ids: "10. C", "7. A", "9. B"
	if len(mx.Players) != 3 || mx.Players[1] != playerA {
		t.Fatalf("unexpected players %v", mx.Players)
	}
	if mx.Counts[1][2] != 2 || mx.Counts[2][0] != 1 {
		t.Errorf("unexpected counts %v", mx.Counts)
	}
	if mx.Made[1] != 2 || mx.Received[2] != 2 || mx.Made[0] != 0 {
		t.Errorf("unexpected totals made=%v received=%v", mx.Made, mx.Received)
	}
}
