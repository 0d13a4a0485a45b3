package parser

import (
	"bytes"
	"crypto/sha256"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/pable/go-match-metrics/internal/model"
)

// ErrNotEventLog is returned when a sheet has no recognisable event header.
var ErrNotEventLog = errors.New("not a match event log")

// ParseFile reads the spreadsheet at path and returns a validated Match.
func ParseFile(path string) (*model.Match, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()
	return Parse(filepath.Base(path), f)
}

// Parse reads an event log from r. The file name selects the format: .csv is
// read as delimited text, anything else as an xlsx workbook (first sheet).
func Parse(name string, r io.Reader) (*model.Match, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var rows [][]string
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".txt":
		rows, err = readCSV(data)
	default:
		rows, err = readXLSX(data)
	}
	if err != nil {
		return nil, err
	}

	m, err := FromRows(rows)
	if err != nil {
		return nil, err
	}
	m.Hash = Hash(data)
	m.FileName = name
	return m, nil
}

// Hash is the content key of an uploaded file.
func Hash(data []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(data))
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrNotEventLog)
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	firstLine, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(firstLine, []byte(";")) > bytes.Count(firstLine, []byte(",")) {
		cr.Comma = ';'
	}
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}

// FromRows builds a Match from a header row followed by event rows. Rows are
// validated once here: labels are mapped to codes, numbers are coerced, and
// cells that cannot be read become NaN or absent and are counted as malformed.
func FromRows(rows [][]string) (*model.Match, error) {
	headerAt := -1
	for i, r := range rows {
		if !blank(r) {
			headerAt = i
			break
		}
	}
	if headerAt < 0 {
		return nil, fmt.Errorf("%w: empty sheet", ErrNotEventLog)
	}

	idx := make(map[string]int)
	for i, h := range rows[headerAt] {
		h = strings.TrimSpace(h)
		if _, dup := idx[h]; h != "" && !dup {
			idx[h] = i
		}
	}
	if _, ok := idx[model.ColCode]; !ok {
		return nil, fmt.Errorf("%w: no %q column", ErrNotEventLog, model.ColCode)
	}

	m := &model.Match{
		MinutesPlayed: make(map[string]float64),
		UnknownCodes:  make(map[string]int),
	}
	for _, c := range append(append([]string(nil), model.EventColumns...), model.ColRosterName, model.ColRosterMinutes) {
		if _, ok := idx[c]; ok {
			m.Columns = append(m.Columns, c)
		}
	}

	for n, r := range rows[headerAt+1:] {
		if blank(r) {
			continue
		}
		cell := func(col string) string {
			i, ok := idx[col]
			if !ok || i >= len(r) {
				return ""
			}
			v := strings.TrimSpace(r[i])
			if strings.EqualFold(v, "nan") {
				return ""
			}
			return v
		}
		malformed := false
		number := func(col string) float64 {
			raw := cell(col)
			v, ok := parseNumber(raw)
			if !ok && raw != "" {
				malformed = true
			}
			return v
		}

		if name, mins := cell(model.ColRosterName), cell(model.ColRosterMinutes); name != "" && mins != "" {
			if v, ok := parseNumber(mins); ok {
				m.MinutesPlayed[name] = v
			}
		}

		rawCode := cell(model.ColCode)
		if rawCode == "" && cell(model.ColTeam) == "" {
			continue
		}
		code, known := model.ParseCode(rawCode)
		if !known && rawCode != "" {
			m.UnknownCodes[rawCode]++
		}

		e := model.Event{
			Row:       n + 1,
			Team:      cell(model.ColTeam),
			Minute:    number(model.ColMinute),
			Code:      code,
			RawCode:   rawCode,
			Group:     cell(model.ColGroup),
			Text:      cell(model.ColText),
			Player:    model.PlayerID(cell(model.ColPlayer)),
			Secondary: model.PlayerID(cell(model.ColSecondary)),
			StartX:    number(model.ColStartX),
			StartY:    number(model.ColStartY),
			EndX:      number(model.ColEndX),
			EndY:      number(model.ColEndY),
		}
		if p := number(model.ColPeriod); !math.IsNaN(p) {
			switch {
			case p != math.Trunc(p) || p > maxPeriod:
				malformed = true
			case p >= 1:
				e.Period = int(p)
			}
		}
		if malformed {
			m.MalformedRows++
		}
		m.Events = append(m.Events, e)
	}
	m.EventCount = len(m.Events)
	return m, nil
}

// maxPeriod bounds the period column so the int conversion cannot overflow.
const maxPeriod = 99

// parseNumber accepts dot or comma decimals. Empty, invalid or infinite cells are NaN.
func parseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "nan") {
		return math.NaN(), false
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.IsInf(v, 0) {
		return math.NaN(), false
	}
	return v, true
}

func blank(r []string) bool {
	for _, c := range r {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
