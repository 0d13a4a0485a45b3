package filestore

import (
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/pable/go-match-metrics/internal/aggregator"
)

// RosterPlayer is one squad member.
type RosterPlayer struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Number   string `json:"number,omitempty"`
	Position string `json:"position,omitempty"`
}

// Roster returns the squad list, empty when none was saved.
func (s *Store) Roster() ([]RosterPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var players []RosterPlayer
	if err := s.readJSON(filepath.Join(s.Root, RosterFile), &players); err != nil {
		return nil, err
	}
	return players, nil
}

// UpsertPlayer adds a squad member or updates the one with the same name.
func (s *Store) UpsertPlayer(p RosterPlayer) (RosterPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	path := filepath.Join(s.Root, RosterFile)
	var players []RosterPlayer
	if err := s.readJSON(path, &players); err != nil {
		return RosterPlayer{}, err
	}
	replaced := false
	for i := range players {
		if strings.EqualFold(players[i].Name, p.Name) {
			p.ID = players[i].ID
			players[i] = p
			replaced = true
			break
		}
	}
	if !replaced {
		if p.ID == "" {
			p.ID = uuid.NewString()
		}
		players = append(players, p)
	}
	return p, s.writeJSON(path, players)
}

// FindPlayer looks a match-sheet player up in the roster. The id may carry a
// "<number>. " prefix; the name is matched exactly first, then partially.
func FindPlayer(roster []RosterPlayer, id string) (RosterPlayer, bool) {
	name := id
	if _, n, ok := strings.Cut(id, ". "); ok {
		name = n
	}
	name = strings.TrimSpace(name)
	for _, p := range roster {
		if strings.EqualFold(p.Name, name) || strings.EqualFold(p.Name, id) {
			return p, true
		}
	}
	lname := strings.ToLower(name)
	for _, p := range roster {
		pn := strings.ToLower(p.Name)
		if pn != "" && (strings.Contains(pn, lname) || strings.Contains(lname, pn)) {
			return p, true
		}
	}
	return RosterPlayer{}, false
}

// IsGoalkeeper reports whether the roster lists the player as a goalkeeper.
func (s *Store) IsGoalkeeper(id string) (bool, error) {
	roster, err := s.Roster()
	if err != nil {
		return false, err
	}
	p, ok := FindPlayer(roster, id)
	return ok && aggregator.IsGoalkeeperPosition(p.Position), nil
}
