package aggregator

import (
	"sort"

	"github.com/pable/go-match-metrics/internal/model"
)

const (
	maxEdgeWidth     = 18.0
	defaultEdgeWidth = 1.0
	maxMarkerSize    = 3000.0
	defaultMarker    = 100.0
)

// PassingNetwork builds the node and edge tables for the team's completed
// passes in the selected periods. Rows without passer, receiver or all four
// coordinates are dropped.
func PassingNetwork(m *model.Match, q model.Query) (*model.PassNetwork, error) {
	if err := checkColumns(m, ViewNetwork); err != nil {
		return nil, err
	}
	ranges := TimeRanges(m.Events)
	subs := Substitutes(m.Events, q.Team, ranges)

	type pair struct{ passer, receiver model.PlayerID }
	type sample struct {
		sumX, sumY float64
		n          int
	}
	pairCounts := make(map[pair]int)
	participation := make(map[model.PlayerID]int)
	positions := make(map[model.PlayerID]*sample)

	addSample := func(p model.PlayerID, pt model.Point) {
		if !pt.Valid() {
			return
		}
		s, ok := positions[p]
		if !ok {
			s = &sample{}
			positions[p] = s
		}
		s.sumX += pt.X
		s.sumY += pt.Y
		s.n++
	}

	passes := 0
	for _, e := range m.Events {
		if e.Code != model.CodePass || !sameTeam(e.Team, q.Team) || !q.Period.Match(e.Period) {
			continue
		}
		receiver, ok := e.Receiver()
		if !ok || e.Player == "" || !e.HasStart() || !e.HasEnd() {
			continue
		}
		passes++
		pairCounts[pair{e.Player, receiver}]++
		participation[e.Player]++
		participation[receiver]++
		addSample(e.Player, NormalizePoint(e.StartX, e.StartY))
		addSample(receiver, NormalizePoint(e.EndX, e.EndY))
	}

	net := &model.PassNetwork{
		Team:      q.Team,
		Period:    q.Period.String(),
		Range:     ranges.Label(q.Period),
		PassCount: passes,
		Nodes:     []model.PassNode{},
		Edges:     []model.PassEdge{},
	}

	maxPart := 0
	for _, c := range participation {
		if c > maxPart {
			maxPart = c
		}
	}
	for p, c := range participation {
		s, ok := positions[p]
		if !ok || s.n == 0 {
			continue
		}
		x, y := s.sumX/float64(s.n), s.sumY/float64(s.n)
		if !(model.Point{X: x, Y: y}).Valid() {
			continue
		}
		marker := defaultMarker
		if maxPart > 0 {
			marker = float64(c) / float64(maxPart) * maxMarkerSize
		}
		net.Nodes = append(net.Nodes, model.PassNode{
			Player:        p,
			X:             x,
			Y:             y,
			Participation: c,
			MarkerSize:    marker,
			Substitute:    subs[p],
		})
	}
	sort.Slice(net.Nodes, func(i, j int) bool { return net.Nodes[i].Player < net.Nodes[j].Player })

	maxCount := 0
	for _, c := range pairCounts {
		if c > maxCount {
			maxCount = c
		}
	}
	for k, c := range pairCounts {
		width := defaultEdgeWidth
		if maxCount > 0 {
			width = float64(c) / float64(maxCount) * maxEdgeWidth
		}
		net.Edges = append(net.Edges, model.PassEdge{Passer: k.passer, Receiver: k.receiver, Count: c, Width: width})
	}
	sort.Slice(net.Edges, func(i, j int) bool {
		a, b := net.Edges[i], net.Edges[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Passer != b.Passer {
			return a.Passer < b.Passer
		}
		return a.Receiver < b.Receiver
	})
	return net, nil
}

// PassMatrix counts completed passes between every passer and receiver of the
// team. Coordinates are not required.
func PassMatrix(m *model.Match, q model.Query) (*model.PassMatrix, error) {
	if err := checkColumns(m, ViewMatrix); err != nil {
		return nil, err
	}
	type pair struct{ passer, receiver model.PlayerID }
	counts := make(map[pair]int)
	players := make(map[model.PlayerID]bool)
	for _, e := range m.Events {
		if e.Code != model.CodePass || !sameTeam(e.Team, q.Team) || !q.Period.Match(e.Period) {
			continue
		}
		receiver, ok := e.Receiver()
		if !ok || e.Player == "" {
			continue
		}
		counts[pair{e.Player, receiver}]++
		players[e.Player] = true
		players[receiver] = true
	}

	ids := sortedPlayers(players)
	index := make(map[model.PlayerID]int, len(ids))
	for i, p := range ids {
		index[p] = i
	}
	mx := &model.PassMatrix{
		Team:     q.Team,
		Period:   q.Period.String(),
		Players:  ids,
		Counts:   make([][]int, len(ids)),
		Made:     make([]int, len(ids)),
		Received: make([]int, len(ids)),
	}
	for i := range mx.Counts {
		mx.Counts[i] = make([]int, len(ids))
	}
	for k, c := range counts {
		i, j := index[k.passer], index[k.receiver]
		mx.Counts[i][j] = c
		mx.Made[i] += c
		mx.Received[j] += c
	}
	return mx, nil
}
