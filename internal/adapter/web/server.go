package web

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"DisruptionMonitor/internal/calendar"
	"DisruptionMonitor/internal/domain"
	"DisruptionMonitor/internal/usecase"
)

// Server exposes the cached disruption state, the calendar projection, and
// the health/metrics endpoints.
type Server struct {
	httpServer *http.Server
	registry   *usecase.Registry
	projector  *calendar.Projector
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewServer builds the HTTP surface on top of the coordinator registry and
// the calendar projector.
func NewServer(addr string, registry *usecase.Registry, projector *calendar.Projector, clock clockwork.Clock, logger *slog.Logger) *Server {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}

	mux := http.NewServeMux()
	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 10 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		registry:  registry,
		projector: projector,
		clock:     clock,
		logger:    logger,
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	mux.HandleFunc("GET /locations", s.handleLocations)
	mux.HandleFunc("GET /locations/{postalCode}", s.handleLocationState)
	mux.HandleFunc("GET /calendar/events", s.handleCalendarEvents)
	mux.HandleFunc("GET /calendar.ics", s.handleCalendarICS)

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	if !s.registry.Ready() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

type locationSummary struct {
	Town       string `json:"town"`
	PostalCode string `json:"postalCode"`
	Ready      bool   `json:"ready"`
}

func (s *Server) handleLocations(w http.ResponseWriter, _ *http.Request) {
	coordinators := s.registry.All()
	summaries := make([]locationSummary, 0, len(coordinators))
	for _, c := range coordinators {
		loc := c.Location()
		summaries = append(summaries, locationSummary{
			Town:       loc.Town,
			PostalCode: loc.PostalCode,
			Ready:      c.Ready(),
		})
	}
	writeJSON(w, http.StatusOK, summaries)
}

type bucketState struct {
	Active  bool                      `json:"active"`
	Entries []domain.DisruptionRecord `json:"entries"`
	Flags   domain.DayFlags           `json:"flags"`
}

type locationState struct {
	Town        string                    `json:"town"`
	PostalCode  string                    `json:"postalCode"`
	Current     bucketState               `json:"current"`
	Planned     bucketState               `json:"planned"`
	Solved      bucketState               `json:"solved"`
	Disruptions []domain.DisruptionRecord `json:"disruptions"`
	Details     string                    `json:"details"`
	LastUpdate  string                    `json:"lastUpdate,omitempty"`
}

func (s *Server) handleLocationState(w http.ResponseWriter, r *http.Request) {
	coordinator, err := s.registry.Resolve(r.PathValue("postalCode"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
		return
	}

	result := coordinator.CurrentResult()
	today := s.clock.Now()

	disruptions := result.Flatten()
	if disruptions == nil {
		disruptions = []domain.DisruptionRecord{}
	}
	state := locationState{
		Town:        result.Location.Town,
		PostalCode:  result.Location.PostalCode,
		Current:     newBucketState(result.Current, today),
		Planned:     newBucketState(result.Planned, today),
		Solved:      newBucketState(result.Solved, today),
		Disruptions: disruptions,
		Details:     result.Summary(),
	}
	if !result.FetchedAt.IsZero() {
		state.LastUpdate = result.FetchedAt.Format("2006-01-02 15:04")
	}
	writeJSON(w, http.StatusOK, state)
}

func newBucketState(agg domain.SectionAggregate, today time.Time) bucketState {
	entries := agg.Entries
	if entries == nil {
		entries = []domain.DisruptionRecord{}
	}
	return bucketState{
		Active:  agg.Active,
		Entries: entries,
		Flags:   domain.Flags(agg, today),
	}
}

func (s *Server) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.parseRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	events := s.projector.Events(start, end)
	if events == nil {
		events = []calendar.Event{}
	}
	writeJSON(w, http.StatusOK, events)
}

func (s *Server) handleCalendarICS(w http.ResponseWriter, r *http.Request) {
	start, end, err := s.parseRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="disruptions.ics"`)
	if err := s.projector.WriteICS(w, start, end); err != nil {
		s.logger.Error("write calendar feed", "error", err)
	}
}

// parseRange reads the optional start/end query parameters (YYYY-MM-DD);
// the default window runs from today one year forward.
func (s *Server) parseRange(r *http.Request) (time.Time, time.Time, error) {
	now := s.clock.Now()
	start := now
	end := now.AddDate(1, 0, 0)

	var err error
	if v := r.URL.Query().Get("start"); v != "" {
		if start, err = time.Parse("2006-01-02", v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if v := r.URL.Query().Get("end"); v != "" {
		if end, err = time.Parse("2006-01-02", v); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return start, end, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // best-effort response
}
