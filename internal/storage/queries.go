package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/pable/go-match-metrics/internal/model"
)

// MatchExists returns true if a match file with the given hash is already stored.
func (db *DB) MatchExists(hash string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(1) FROM matches WHERE hash = ?", hash).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertMatch stores a match with its events, official minutes and unknown
// labels in one transaction. Re-inserting a hash replaces the previous copy.
func (db *DB) InsertMatch(m *model.Match) error {
	cols, err := json.Marshal(m.Columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}

	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO matches(hash, file_name, team, opponent, match_date, uploaded_at,
			stored_path, event_count, columns, malformed_rows)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Hash, m.FileName, m.Team, m.Opponent, m.MatchDate, m.UploadedAt.UTC().Format(time.RFC3339),
		m.StoredPath, len(m.Events), string(cols), m.MalformedRows,
	)
	if err != nil {
		return fmt.Errorf("insert match: %w", err)
	}
	for _, table := range []string{"events", "player_minutes", "unknown_codes"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE match_hash = ?", m.Hash); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	stmt, err := tx.Prepare(`
		INSERT INTO events(
			match_hash, row_num, team, period, minute, code, grp, text,
			player, secondary, start_x, start_y, end_x, end_y
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range m.Events {
		row := e.Row
		if row == 0 {
			row = i + 1
		}
		_, err = stmt.Exec(
			m.Hash, row, e.Team, e.Period, nullFloat(e.Minute), e.RawCode, e.Group, e.Text,
			string(e.Player), string(e.Secondary),
			nullFloat(e.StartX), nullFloat(e.StartY), nullFloat(e.EndX), nullFloat(e.EndY),
		)
		if err != nil {
			return fmt.Errorf("insert event row %d: %w", row, err)
		}
	}

	for player, mins := range m.MinutesPlayed {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO player_minutes(match_hash, player, minutes) VALUES (?, ?, ?)`,
			m.Hash, player, mins); err != nil {
			return fmt.Errorf("insert player_minutes for %s: %w", player, err)
		}
	}
	for label, n := range m.UnknownCodes {
		if _, err := tx.Exec(`INSERT OR REPLACE INTO unknown_codes(match_hash, label, count) VALUES (?, ?, ?)`,
			m.Hash, label, n); err != nil {
			return fmt.Errorf("insert unknown_codes for %q: %w", label, err)
		}
	}
	return tx.Commit()
}

const summaryColumns = `hash, file_name, team, opponent, match_date, uploaded_at, stored_path, event_count, columns`

func scanSummary(scan func(dest ...any) error) (model.MatchSummary, error) {
	var s model.MatchSummary
	var uploaded, cols string
	if err := scan(&s.Hash, &s.FileName, &s.Team, &s.Opponent, &s.MatchDate, &uploaded,
		&s.StoredPath, &s.EventCount, &cols); err != nil {
		return s, err
	}
	s.UploadedAt, _ = time.Parse(time.RFC3339, uploaded)
	if err := json.Unmarshal([]byte(cols), &s.Columns); err != nil {
		return s, fmt.Errorf("decode columns for %s: %w", s.Hash, err)
	}
	return s, nil
}

// ListMatches returns all stored match summaries ordered by match_date desc.
func (db *DB) ListMatches() ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`SELECT ` + summaryColumns + `
		FROM matches ORDER BY match_date DESC, uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		s, err := scanSummary(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetMatchByPrefix finds the first match whose hash starts with the given prefix.
func (db *DB) GetMatchByPrefix(prefix string) (*model.MatchSummary, error) {
	if prefix == "" {
		return nil, ErrNotFound
	}
	row := db.conn.QueryRow(`SELECT `+summaryColumns+`
		FROM matches WHERE hash LIKE ? ORDER BY hash LIMIT 1`, prefix+"%")
	s, err := scanSummary(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// LoadMatch rebuilds a full Match, events included, from a hash prefix.
func (db *DB) LoadMatch(prefix string) (*model.Match, error) {
	s, err := db.GetMatchByPrefix(prefix)
	if err != nil {
		return nil, err
	}
	m := &model.Match{
		MatchSummary:  *s,
		MinutesPlayed: make(map[string]float64),
		UnknownCodes:  make(map[string]int),
	}
	if err := db.conn.QueryRow("SELECT malformed_rows FROM matches WHERE hash = ?", s.Hash).Scan(&m.MalformedRows); err != nil {
		return nil, fmt.Errorf("load malformed count: %w", err)
	}
	if m.Events, err = db.GetEvents(s.Hash); err != nil {
		return nil, err
	}

	rows, err := db.conn.Query("SELECT player, minutes FROM player_minutes WHERE match_hash = ?", s.Hash)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p string
		var v float64
		if err := rows.Scan(&p, &v); err != nil {
			rows.Close()
			return nil, err
		}
		m.MinutesPlayed[p] = v
	}
	rows.Close()

	rows, err = db.conn.Query("SELECT label, count FROM unknown_codes WHERE match_hash = ?", s.Hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		m.UnknownCodes[label] = n
	}
	return m, rows.Err()
}

// GetEvents returns every event of a match in sheet order.
func (db *DB) GetEvents(hash string) ([]model.Event, error) {
	rows, err := db.conn.Query(`
		SELECT row_num, team, period, minute, code, grp, text, player, secondary,
		       start_x, start_y, end_x, end_y
		FROM events WHERE match_hash = ? ORDER BY row_num`, hash)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Event
	for rows.Next() {
		var e model.Event
		var minute, sx, sy, ex, ey sql.NullFloat64
		var player, secondary string
		if err := rows.Scan(&e.Row, &e.Team, &e.Period, &minute, &e.RawCode, &e.Group, &e.Text,
			&player, &secondary, &sx, &sy, &ex, &ey); err != nil {
			return nil, err
		}
		e.Code, _ = model.ParseCode(e.RawCode)
		e.Player = model.PlayerID(player)
		e.Secondary = model.PlayerID(secondary)
		e.Minute = floatOrNaN(minute)
		e.StartX, e.StartY = floatOrNaN(sx), floatOrNaN(sy)
		e.EndX, e.EndY = floatOrNaN(ex), floatOrNaN(ey)
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteMatch removes a match and everything stored with it.
func (db *DB) DeleteMatch(hash string) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()
	for _, table := range []string{"events", "player_minutes", "unknown_codes"} {
		if _, err := tx.Exec("DELETE FROM "+table+" WHERE match_hash = ?", hash); err != nil {
			return fmt.Errorf("delete %s: %w", table, err)
		}
	}
	res, err := tx.Exec("DELETE FROM matches WHERE hash = ?", hash)
	if err != nil {
		return fmt.Errorf("delete match: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// MatchesWithPlayer returns the matches in which a player acted, oldest first.
// The player may be given as the full "<number>. <name>" id or as the name.
func (db *DB) MatchesWithPlayer(player string) ([]model.MatchSummary, error) {
	rows, err := db.conn.Query(`
		SELECT `+prefixed("m", summaryColumns)+`
		FROM matches m
		WHERE EXISTS (
			SELECT 1 FROM events e
			WHERE e.match_hash = m.hash
			  AND (e.player = ? OR e.player LIKE ? ESCAPE '\')
		)
		ORDER BY m.match_date ASC, m.uploaded_at ASC`, player, "%. "+escapeLike(player))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.MatchSummary
	for rows.Next() {
		s, err := scanSummary(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Overview holds catalog-wide counts.
type Overview struct {
	Matches       int
	Events        int
	Players       int
	Teams         []string
	UnknownLabels map[string]int
}

// Overview summarises the whole catalog.
func (db *DB) Overview() (Overview, error) {
	var ov Overview
	if err := db.conn.QueryRow("SELECT COUNT(1) FROM matches").Scan(&ov.Matches); err != nil {
		return ov, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(1), COUNT(DISTINCT NULLIF(player, '')) FROM events").
		Scan(&ov.Events, &ov.Players); err != nil {
		return ov, err
	}

	rows, err := db.conn.Query("SELECT DISTINCT team FROM events WHERE team <> '' ORDER BY team")
	if err != nil {
		return ov, err
	}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			rows.Close()
			return ov, err
		}
		ov.Teams = append(ov.Teams, t)
	}
	rows.Close()

	rows, err = db.conn.Query("SELECT label, SUM(count) FROM unknown_codes GROUP BY label ORDER BY label")
	if err != nil {
		return ov, err
	}
	defer rows.Close()
	ov.UnknownLabels = make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return ov, err
		}
		ov.UnknownLabels[label] = n
	}
	return ov, rows.Err()
}

// QueryRaw runs an arbitrary query and returns column names and stringified rows.
func (db *DB) QueryRaw(query string) ([]string, [][]string, error) {
	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out [][]string
	for rows.Next() {
		vals := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			switch x := v.(type) {
			case nil:
				row[i] = "NULL"
			case []byte:
				row[i] = string(x)
			default:
				row[i] = fmt.Sprint(x)
			}
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func nullFloat(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func floatOrNaN(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}

// prefixed qualifies each column in a comma-separated list with a table alias.
func prefixed(alias, columns string) string {
	parts := strings.Split(columns, ",")
	for i, p := range parts {
		parts[i] = alias + "." + strings.TrimSpace(p)
	}
	return strings.Join(parts, ", ")
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)
	return r.Replace(s)
}
