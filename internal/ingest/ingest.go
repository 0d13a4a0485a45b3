// Package ingest turns an uploaded event log into a stored, catalogued match.
package ingest

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/logger"
	"github.com/pable/go-match-metrics/internal/metrics"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/parser"
	"github.com/pable/go-match-metrics/internal/storage"
)

// Meta is what the uploader tells us about the match.
type Meta struct {
	Team     string
	Opponent string
	Date     string // YYYY-MM-DD; upload day when empty
}

// Result describes one ingestion. Existing is set when the same file content
// was already in the catalog; nothing is rewritten then.
type Result struct {
	Match    *model.Match
	Entry    *filestore.Entry
	Existing bool
}

// Service wires the parser to the catalog and the file store. Files and
// Metrics are optional.
type Service struct {
	DB      *storage.DB
	Files   *filestore.Store
	Metrics *metrics.Manager
	Log     logger.Logger

	now func() time.Time
}

func NewService(db *storage.DB, files *filestore.Store, m *metrics.Manager) *Service {
	return &Service{DB: db, Files: files, Metrics: m, Log: logger.Named("ingest"), now: time.Now}
}

// Ingest parses data, keeps the original under the team directory and
// stores the match in the catalog.
func (s *Service) Ingest(ctx context.Context, name string, data []byte, meta Meta) (*Result, error) {
	hash := parser.Hash(data)
	exists, err := s.DB.MatchExists(hash)
	if err != nil {
		return nil, fmt.Errorf("check match: %w", err)
	}
	if exists {
		m, err := s.DB.LoadMatch(hash)
		if err != nil {
			return nil, fmt.Errorf("load match: %w", err)
		}
		s.Log.Info(ctx, "match already stored", logger.String("hash", hash[:12]))
		return &Result{Match: m, Existing: true}, nil
	}

	m, err := parser.Parse(name, bytes.NewReader(data))
	if err != nil {
		s.recordError()
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}
	s.describe(m, meta)

	res := &Result{Match: m}
	if s.Files != nil {
		e, err := s.Files.Save(m.Team, name, hash, data)
		if err != nil {
			s.recordError()
			return nil, fmt.Errorf("save original: %w", err)
		}
		m.StoredPath = e.Path
		res.Entry = &e
	}

	if err := s.DB.InsertMatch(m); err != nil {
		s.recordError()
		return nil, fmt.Errorf("insert match: %w", err)
	}
	if s.Metrics != nil {
		s.Metrics.RecordIngest(m.UnknownCodes, m.MalformedRows)
	}

	s.Log.Info(ctx, "match stored",
		logger.String("hash", hash[:12]),
		logger.String("team", m.Team),
		logger.String("opponent", m.Opponent),
		logger.Int("events", m.EventCount))
	for label, n := range m.UnknownCodes {
		s.Log.Warn(ctx, "unrecognised code label", logger.String("label", label), logger.Int("rows", n))
	}
	if m.MalformedRows > 0 {
		s.Log.Warn(ctx, "malformed rows skipped", logger.Int("rows", m.MalformedRows))
	}
	return res, nil
}

// describe fills the catalog metadata. The opponent falls back to the first
// other team in the events.
func (s *Service) describe(m *model.Match, meta Meta) {
	now := s.now().UTC()
	m.UploadedAt = now
	m.Team = strings.TrimSpace(meta.Team)
	if m.Team == "" {
		m.Team = model.DefaultTeam
	}
	m.Opponent = strings.TrimSpace(meta.Opponent)
	if m.Opponent == "" {
		for _, t := range m.Teams() {
			if !strings.EqualFold(strings.TrimSpace(t), m.Team) {
				m.Opponent = t
				break
			}
		}
	}
	m.MatchDate = strings.TrimSpace(meta.Date)
	if m.MatchDate == "" {
		m.MatchDate = now.Format("2006-01-02")
	}
}

func (s *Service) recordError() {
	if s.Metrics != nil {
		s.Metrics.RecordIngestError()
	}
}
