package calendar

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"DisruptionMonitor/internal/domain"
)

// SnapshotSource supplies the cached fetch results to project. Implemented
// by the coordinator registry.
type SnapshotSource interface {
	Snapshots() []domain.FetchResult
}

// Event is one calendar entry derived from merged disruption records. Start
// and End are date-valued (midnight, day granularity).
type Event struct {
	ID          string         `json:"id"`
	Summary     string         `json:"summary"`
	Description string         `json:"description"`
	Status      domain.Section `json:"status"`
	Link        string         `json:"link,omitempty"`
	Start       time.Time      `json:"start"`
	End         time.Time      `json:"end"`
}

// idPattern captures the trailing numeric path segment of a disruption link.
var idPattern = regexp.MustCompile(`/(\d+)$`)

// ExtractID returns the correlation id of a link, or empty when the link is
// missing or carries no trailing numeric segment.
func ExtractID(link string) string {
	if link == "" {
		return ""
	}
	m := idPattern.FindStringSubmatch(link)
	if m == nil {
		return ""
	}
	return m[1]
}

// Projector merges disruption records across lifecycle sections and
// locations into deduplicated calendar events. It owns no state beyond a
// diagnostic per-event change log; every query recomputes the projection
// from the coordinators' immutable snapshots.
type Projector struct {
	source SnapshotSource
	clock  clockwork.Clock
	logger *slog.Logger

	mu   sync.Mutex
	logs map[string][]string
}

// NewProjector wires the projector to its snapshot source.
func NewProjector(source SnapshotSource, clock clockwork.Clock, logger *slog.Logger) *Projector {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Projector{
		source: source,
		clock:  clock,
		logger: logger,
		logs:   map[string][]string{},
	}
}

// merged is one correlation id's records grouped across sections.
type merged struct {
	id       string
	title    string
	link     string
	statuses map[domain.Section]domain.DisruptionRecord
}

// Events projects all disruptions whose start falls inside [start, end]
// (day granularity, both bounds inclusive), ascending by start date.
func (p *Projector) Events(start, end time.Time) []Event {
	startDay := dateOnly(start)
	endDay := dateOnly(end)

	var events []Event
	for _, m := range p.group() {
		event, logEntry, ok := p.project(m)
		if !ok {
			continue
		}
		if event.Start.Before(startDay) || event.Start.After(endDay) {
			continue
		}
		p.appendLog(event.ID, logEntry)
		events = append(events, event)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Start.Before(events[j].Start)
	})
	return events
}

// ChangeLog returns a copy of the diagnostic transition notes for one id.
func (p *Projector) ChangeLog(id string) []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.logs[id]...)
}

// group collects records by correlation id, in first-seen order. Records
// without a link-derived id cannot be correlated and are skipped.
func (p *Projector) group() []*merged {
	byID := map[string]*merged{}
	var order []*merged

	for _, snapshot := range p.source.Snapshots() {
		for _, section := range domain.Sections {
			for _, rec := range snapshot.Bucket(section).Entries {
				id := ExtractID(rec.Link)
				if id == "" {
					continue
				}
				m, ok := byID[id]
				if !ok {
					m = &merged{
						id:       id,
						title:    rec.Title,
						link:     rec.Link,
						statuses: map[domain.Section]domain.DisruptionRecord{},
					}
					byID[id] = m
					order = append(order, m)
				}
				m.statuses[section] = rec
			}
		}
	}
	return order
}

// project applies the section merge rule to one grouped disruption. The
// returned transition note is logged by the caller, and only for events
// that survive the range filter.
func (p *Projector) project(m *merged) (Event, string, bool) {
	var (
		start, end time.Time
		status     domain.Section
		logEntry   string
	)
	nowStr := p.clock.Now().Format("2006-01-02 15:04")

	switch {
	case hasSection(m, domain.SectionCurrent):
		start = p.parseDate(m.statuses[domain.SectionCurrent].Date)
		if solved, ok := m.statuses[domain.SectionSolved]; ok {
			end = p.parseDate(solved.Date)
			status = domain.SectionSolved
			logEntry = fmt.Sprintf("Solved: %s (end: %s)", nowStr, end.Format("2006-01-02"))
		} else {
			end = start.AddDate(0, 0, 1)
			status = domain.SectionCurrent
			logEntry = fmt.Sprintf("Current: %s (start: %s)", nowStr, start.Format("2006-01-02"))
		}
	case hasSection(m, domain.SectionPlanned):
		start = p.parseDate(m.statuses[domain.SectionPlanned].Date)
		end = start.AddDate(0, 0, 1)
		status = domain.SectionPlanned
		logEntry = fmt.Sprintf("Planned: %s (date: %s)", nowStr, start.Format("2006-01-02"))
	case hasSection(m, domain.SectionSolved):
		// Solved with no observed current phase: monitoring began after the event.
		start = p.parseDate(m.statuses[domain.SectionSolved].Date)
		end = start.AddDate(0, 0, 1)
		status = domain.SectionSolved
		logEntry = fmt.Sprintf("Solved: %s (date: %s)", nowStr, start.Format("2006-01-02"))
	default:
		return Event{}, "", false
	}

	link := m.link
	if link == "" {
		link = "N/A"
	}
	return Event{
		ID:          m.id,
		Summary:     fmt.Sprintf("#%s - %s", m.id, m.title),
		Description: fmt.Sprintf("Status: #%s\nLink: %s", status, link),
		Status:      status,
		Link:        m.link,
		Start:       start,
		End:         end,
	}, logEntry, true
}

// appendLog records a transition note when it differs from the last one.
func (p *Projector) appendLog(id, entry string) {
	if entry == "" {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	log := p.logs[id]
	if len(log) == 0 || log[len(log)-1] != entry {
		p.logs[id] = append(log, entry)
	}
}

// parseDate falls back to today so the projection stays total on malformed
// upstream data.
func (p *Projector) parseDate(value string) time.Time {
	date, err := domain.ParseCanonicalDate(value)
	if err != nil {
		p.logger.Debug("unparseable event date, falling back to today", "date", value)
		return dateOnly(p.clock.Now())
	}
	return dateOnly(date)
}

func hasSection(m *merged, s domain.Section) bool {
	_, ok := m.statuses[s]
	return ok
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
