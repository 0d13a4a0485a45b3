// Package web serves the match dashboard, its JSON API and live upload
// notifications.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/a-h/templ"

	"github.com/pable/go-match-metrics/internal/aggregator"
	"github.com/pable/go-match-metrics/internal/filestore"
	"github.com/pable/go-match-metrics/internal/ingest"
	"github.com/pable/go-match-metrics/internal/logger"
	"github.com/pable/go-match-metrics/internal/metrics"
	"github.com/pable/go-match-metrics/internal/model"
	"github.com/pable/go-match-metrics/internal/parser"
	"github.com/pable/go-match-metrics/internal/storage"
)

const shutdownTimeout = 10 * time.Second

// Options tunes the server. Zero values fall back to sensible defaults.
type Options struct {
	DefaultTeam    string
	MaxUploadBytes int64
}

// Server is the dashboard HTTP server.
type Server struct {
	db      *storage.DB
	files   *filestore.Store
	ingest  *ingest.Service
	metrics *metrics.Manager
	hub     *Hub
	opts    Options
	log     logger.Logger
}

// NewServer wires the catalog and file store to the HTTP surface. A nil
// metrics manager gets a private one.
func NewServer(db *storage.DB, files *filestore.Store, m *metrics.Manager, opts Options) *Server {
	if m == nil {
		m = metrics.NewManager()
	}
	if opts.DefaultTeam == "" {
		opts.DefaultTeam = model.DefaultTeam
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 32 << 20
	}
	return &Server{
		db:      db,
		files:   files,
		ingest:  ingest.NewService(db, files, m),
		metrics: m,
		hub:     NewHub(m.SetWebsocketClients),
		opts:    opts,
		log:     logger.Named("web"),
	}
}

// Hub exposes the notification hub.
func (s *Server) Hub() *Hub { return s.hub }

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.instrument("healthz", s.handleHealth))
	mux.HandleFunc("GET /{$}", s.instrument("dashboard", s.handleDashboard))
	mux.HandleFunc("GET /matches/{hash}", s.instrument("match_page", s.handleMatchPage))
	mux.HandleFunc("GET /api/matches", s.instrument("list_matches", s.handleListMatches))
	mux.HandleFunc("POST /api/matches", s.instrument("upload_match", s.handleUpload))
	mux.HandleFunc("GET /api/matches/{hash}/report", s.instrument("match_report", s.handleReport))
	mux.HandleFunc("GET /api/matches/{hash}/network", s.instrument("passing_network", s.handleNetwork))
	mux.HandleFunc("GET /api/matches/{hash}/players/{player}", s.instrument("player_card", s.handlePlayer))
	mux.Handle("GET /ws", s.hub)
	mux.Handle("GET /metrics", s.metrics.Handler())
	return mux
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "dashboard listening", logger.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	s.log.Info(context.Background(), "shutting down")
	s.hub.Close()
	sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

type errorResponse struct {
	Code     string   `json:"code"`
	Message  string   `json:"message"`
	Required []string `json:"required,omitempty"`
	Missing  []string `json:"missing,omitempty"`
}

type uploadResponse struct {
	Match    model.MatchSummary `json:"match"`
	Existing bool               `json:"existing"`
	Unknown  map[string]int     `json:"unknown_labels,omitempty"`
	Warnings []string           `json:"warnings,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Named("web").Error(context.Background(), "encode response", logger.Int("status", status), logger.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeFailure maps domain errors to status codes.
func writeFailure(w http.ResponseWriter, err error) {
	var mce *aggregator.MissingColumnsError
	switch {
	case errors.As(err, &mce):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:     "missing_columns",
			Message:  err.Error(),
			Required: mce.Required,
			Missing:  mce.Missing,
		})
	case errors.Is(err, storage.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", err)
	case errors.Is(err, parser.ErrNotEventLog):
		writeError(w, http.StatusUnprocessableEntity, "not_event_log", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	matches, err := s.db.ListMatches()
	if err != nil {
		writeFailure(w, err)
		return
	}
	if matches == nil {
		matches = []model.MatchSummary{}
	}
	writeJSON(w, http.StatusOK, matches)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeError(w, http.StatusRequestEntityTooLarge, "too_large", err)
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	f, hdr, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("missing file field: %w", err))
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	team := r.FormValue("team")
	if team == "" {
		team = s.opts.DefaultTeam
	}
	res, err := s.ingest.Ingest(r.Context(), filepath.Base(hdr.Filename), data, ingest.Meta{
		Team:     team,
		Opponent: r.FormValue("opponent"),
		Date:     r.FormValue("date"),
	})
	if err != nil {
		writeFailure(w, err)
		return
	}

	m := res.Match
	resp := uploadResponse{Match: m.MatchSummary, Existing: res.Existing, Unknown: m.UnknownCodes}
	for _, view := range aggregator.Views {
		if missing := m.MissingColumns(aggregator.RequiredColumns(view)); len(missing) > 0 {
			resp.Warnings = append(resp.Warnings, fmt.Sprintf("%s unavailable: missing %v", view, missing))
		}
	}
	status := http.StatusCreated
	if res.Existing {
		status = http.StatusOK
	} else {
		s.hub.Broadcast(r.Context(), Notification{
			Type:     "match_ingested",
			Hash:     m.Hash,
			Team:     m.Team,
			Opponent: m.Opponent,
			Date:     m.MatchDate,
		})
	}
	writeJSON(w, status, resp)
}

// loadQuery resolves the {hash} path value and the team/period parameters.
func (s *Server) loadQuery(w http.ResponseWriter, r *http.Request) (*model.Match, model.Query, bool) {
	q, err := aggregator.NewQuery(r.URL.Query().Get("team"), r.URL.Query().Get("period"), s.opts.DefaultTeam)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_period", err)
		return nil, q, false
	}
	m, err := s.db.LoadMatch(r.PathValue("hash"))
	if err != nil {
		writeFailure(w, err)
		return nil, q, false
	}
	return m, q, true
}

func (s *Server) analyze(m *model.Match, q model.Query) (*model.MatchReport, error) {
	start := time.Now()
	rep, err := aggregator.Analyze(m, q)
	if err != nil {
		return nil, err
	}
	s.metrics.RecordReport("http", aggregator.Views, rep.Errors, time.Since(start))
	return rep, nil
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	m, q, ok := s.loadQuery(w, r)
	if !ok {
		return
	}
	rep, err := s.analyze(m, q)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	m, q, ok := s.loadQuery(w, r)
	if !ok {
		return
	}
	net, err := aggregator.PassingNetwork(m, q)
	if err != nil {
		writeFailure(w, err)
		return
	}
	writeJSON(w, http.StatusOK, net)
}

func (s *Server) handlePlayer(w http.ResponseWriter, r *http.Request) {
	m, q, ok := s.loadQuery(w, r)
	if !ok {
		return
	}
	player := r.PathValue("player")
	opts := aggregator.CardOptions{}
	if v := r.URL.Query().Get("goalkeeper"); v != "" {
		gk, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("goalkeeper: %w", err))
			return
		}
		opts.Goalkeeper = gk
	} else if s.files != nil {
		gk, err := s.files.IsGoalkeeper(player)
		if err != nil {
			s.log.Warn(r.Context(), "read roster", logger.Error(err))
		}
		opts.Goalkeeper = gk
	}

	card := aggregator.PlayerCard(m, q, player, opts)
	if card.Team == "" {
		writeError(w, http.StatusNotFound, "not_found", fmt.Errorf("player %q has no events in match", player))
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	matches, err := s.db.ListMatches()
	if err != nil {
		writeFailure(w, err)
		return
	}
	templ.Handler(DashboardPage(matches, s.opts.DefaultTeam)).ServeHTTP(w, r)
}

func (s *Server) handleMatchPage(w http.ResponseWriter, r *http.Request) {
	m, q, ok := s.loadQuery(w, r)
	if !ok {
		return
	}
	rep, err := s.analyze(m, q)
	if err != nil {
		writeFailure(w, err)
		return
	}
	templ.Handler(MatchPage(rep)).ServeHTTP(w, r)
}
