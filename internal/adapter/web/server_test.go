package web

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DisruptionMonitor/internal/calendar"
	"DisruptionMonitor/internal/domain"
	"DisruptionMonitor/internal/observability"
	"DisruptionMonitor/internal/usecase"
)

type fixedSource struct {
	result domain.FetchResult
}

func (s *fixedSource) Fetch(_ context.Context, loc domain.Location, _ int) (domain.FetchResult, error) {
	result := s.result
	result.Location = loc
	return result, nil
}

func testServer(t *testing.T) (*Server, *usecase.RefreshCoordinator) {
	t.Helper()

	clock := clockwork.NewFakeClockAt(time.Date(2025, time.June, 25, 12, 0, 0, 0, time.UTC))
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	link := "https://ennatuurlijk.nl/storingen/4521"
	source := &fixedSource{result: domain.FetchResult{
		Current: domain.SectionAggregate{
			Active: true,
			Entries: []domain.DisruptionRecord{
				{Section: domain.SectionCurrent, Title: "Storing Tilburg centrum", Date: "24-06-2025", Link: link},
			},
		},
		FetchedAt: clock.Now(),
	}}

	coordinator := usecase.NewRefreshCoordinator(
		source,
		domain.Location{Town: "Tilburg", PostalCode: "5045AB"},
		usecase.CoordinatorConfig{Interval: 2 * time.Hour, KeepSolvedDays: 7},
		clock,
		observability.NewMetricsForTesting(),
		logger,
	)

	registry := usecase.NewRegistry()
	registry.Register(coordinator)
	projector := calendar.NewProjector(registry, clock, logger)
	return NewServer(":0", registry, projector, clock, logger), coordinator
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthAndReadiness(t *testing.T) {
	t.Parallel()

	s, coordinator := testServer(t)

	assert.Equal(t, http.StatusOK, get(t, s, "/healthz").Code)
	assert.Equal(t, http.StatusServiceUnavailable, get(t, s, "/readyz").Code)

	require.NoError(t, coordinator.RequestRefresh(context.Background()))
	assert.Equal(t, http.StatusOK, get(t, s, "/readyz").Code)
}

func TestLocationState(t *testing.T) {
	t.Parallel()

	s, coordinator := testServer(t)
	require.NoError(t, coordinator.RequestRefresh(context.Background()))

	rec := get(t, s, "/locations/5045AB")
	require.Equal(t, http.StatusOK, rec.Code)

	var state locationState
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &state))

	assert.Equal(t, "Tilburg", state.Town)
	assert.True(t, state.Current.Active)
	require.Len(t, state.Current.Entries, 1)
	assert.True(t, state.Current.Flags.HasDate)
	assert.Equal(t, 1, state.Current.Flags.DaysSince)
	assert.False(t, state.Planned.Active)
	assert.Len(t, state.Disruptions, 1)
	assert.Contains(t, state.Details, "Current disruption: Storing Tilburg centrum (24-06-2025)")
	assert.Equal(t, "2025-06-25 12:00", state.LastUpdate)
}

func TestLocationStateNotFound(t *testing.T) {
	t.Parallel()

	s, _ := testServer(t)
	assert.Equal(t, http.StatusNotFound, get(t, s, "/locations/9999ZZ").Code)
}

func TestLocationsList(t *testing.T) {
	t.Parallel()

	s, _ := testServer(t)
	rec := get(t, s, "/locations")
	require.Equal(t, http.StatusOK, rec.Code)

	var list []locationSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list, 1)
	assert.Equal(t, "5045AB", list[0].PostalCode)
	assert.False(t, list[0].Ready)
}

func TestCalendarEvents(t *testing.T) {
	t.Parallel()

	s, coordinator := testServer(t)
	require.NoError(t, coordinator.RequestRefresh(context.Background()))

	rec := get(t, s, "/calendar/events?start=2025-06-01&end=2025-06-30")
	require.Equal(t, http.StatusOK, rec.Code)

	var events []calendar.Event
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	require.Len(t, events, 1)
	assert.Equal(t, "4521", events[0].ID)

	assert.Equal(t, http.StatusBadRequest, get(t, s, "/calendar/events?start=junk").Code)
}

func TestCalendarFeed(t *testing.T) {
	t.Parallel()

	s, coordinator := testServer(t)
	require.NoError(t, coordinator.RequestRefresh(context.Background()))

	rec := get(t, s, "/calendar.ics?start=2025-06-01&end=2025-06-30")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/calendar")
	assert.Contains(t, rec.Body.String(), "BEGIN:VEVENT")
}
