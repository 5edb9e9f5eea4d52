package calendar

import (
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"DisruptionMonitor/internal/domain"
)

type staticSource struct {
	snapshots []domain.FetchResult
}

func (s *staticSource) Snapshots() []domain.FetchResult { return s.snapshots }

func record(section domain.Section, title, date, link string) domain.DisruptionRecord {
	return domain.DisruptionRecord{Section: section, Title: title, Date: date, Link: link}
}

func snapshot(records ...domain.DisruptionRecord) domain.FetchResult {
	bySection := map[domain.Section][]domain.DisruptionRecord{}
	for _, rec := range records {
		bySection[rec.Section] = append(bySection[rec.Section], rec)
	}
	return domain.Assemble(bySection, domain.Location{Town: "Tilburg", PostalCode: "5045AB"})
}

func day(value string) time.Time {
	d, err := time.Parse("02-01-2006", value)
	if err != nil {
		panic(err)
	}
	return d
}

func newTestProjector(snapshots ...domain.FetchResult) (*Projector, *clockwork.FakeClock) {
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.June, 25, 10, 30, 0, 0, time.UTC))
	return NewProjector(&staticSource{snapshots: snapshots}, clock, nil), clock
}

func TestExtractID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "4521", ExtractID("https://ennatuurlijk.nl/storingen/4521"))
	assert.Equal(t, "7", ExtractID("/storingen/7"))
	assert.Empty(t, ExtractID("https://ennatuurlijk.nl/storingen/overzicht"))
	assert.Empty(t, ExtractID(""))
}

func TestProjectorMergesCurrentAndSolved(t *testing.T) {
	t.Parallel()

	link := "https://ennatuurlijk.nl/storingen/4521"
	p, _ := newTestProjector(snapshot(
		record(domain.SectionCurrent, "Storing Tilburg centrum", "24-06-2025", link),
		record(domain.SectionSolved, "Storing Tilburg centrum", "27-06-2025", link),
	))

	events := p.Events(day("01-06-2025"), day("30-06-2025"))
	require.Len(t, events, 1, "both sections merge into one logical event")

	event := events[0]
	assert.Equal(t, "4521", event.ID)
	assert.Equal(t, "#4521 - Storing Tilburg centrum", event.Summary)
	assert.Equal(t, domain.SectionSolved, event.Status)
	assert.Equal(t, day("24-06-2025").UTC(), event.Start)
	assert.Equal(t, day("27-06-2025").UTC(), event.End)
	assert.Contains(t, event.Description, "Status: #solved")
	assert.Contains(t, event.Description, "Link: "+link)
}

func TestProjectorSingleSectionSpansOneDay(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		section domain.Section
		status  domain.Section
	}{
		{"planned only", domain.SectionPlanned, domain.SectionPlanned},
		{"current only", domain.SectionCurrent, domain.SectionCurrent},
		{"solved only", domain.SectionSolved, domain.SectionSolved},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, _ := newTestProjector(snapshot(
				record(tc.section, "Onderhoud Tilburg", "14-11-2025", "/storingen/99"),
			))

			events := p.Events(day("01-11-2025"), day("30-11-2025"))
			require.Len(t, events, 1)
			assert.Equal(t, tc.status, events[0].Status)
			assert.Equal(t, day("14-11-2025").UTC(), events[0].Start)
			assert.Equal(t, day("15-11-2025").UTC(), events[0].End)
		})
	}
}

func TestProjectorRangeFilter(t *testing.T) {
	t.Parallel()

	p, _ := newTestProjector(snapshot(
		record(domain.SectionSolved, "Opgeloste storing Tilburg", "29-10-2025", "/storingen/31"),
	))

	events := p.Events(day("20-10-2025"), day("31-10-2025"))
	require.Len(t, events, 1)
	assert.Contains(t, events[0].Description, "Status: #solved")

	assert.Empty(t, p.Events(day("01-11-2025"), day("30-11-2025")), "start outside the window excludes the event")
	assert.Len(t, p.Events(day("29-10-2025"), day("29-10-2025")), 1, "window bounds are inclusive")
}

func TestProjectorSkipsRecordsWithoutUsableLink(t *testing.T) {
	t.Parallel()

	p, _ := newTestProjector(snapshot(
		record(domain.SectionCurrent, "Zonder link Tilburg", "24-06-2025", ""),
		record(domain.SectionCurrent, "Zonder nummer Tilburg", "24-06-2025", "/storingen/actueel"),
	))

	assert.Empty(t, p.Events(day("01-06-2025"), day("30-06-2025")))
}

func TestProjectorOrdersByStart(t *testing.T) {
	t.Parallel()

	p, _ := newTestProjector(snapshot(
		record(domain.SectionPlanned, "Later Tilburg", "20-07-2025", "/storingen/2"),
		record(domain.SectionPlanned, "Eerder Tilburg", "05-07-2025", "/storingen/1"),
	))

	events := p.Events(day("01-07-2025"), day("31-07-2025"))
	require.Len(t, events, 2)
	assert.True(t, events[0].Start.Before(events[1].Start))
}

func TestProjectorDateFallbackToToday(t *testing.T) {
	t.Parallel()

	p, clock := newTestProjector(snapshot(
		record(domain.SectionCurrent, "Kapotte datum Tilburg", "binnenkort", "/storingen/55"),
	))

	today := clock.Now()
	events := p.Events(today.AddDate(0, 0, -1), today.AddDate(0, 0, 1))
	require.Len(t, events, 1, "malformed dates never make the projection throw or drop silently")
	assert.Equal(t, time.Date(2025, time.June, 25, 0, 0, 0, 0, time.UTC), events[0].Start)
}

func TestProjectorChangeLog(t *testing.T) {
	t.Parallel()

	link := "/storingen/4521"
	source := &staticSource{snapshots: []domain.FetchResult{snapshot(
		record(domain.SectionCurrent, "Storing Tilburg", "24-06-2025", link),
	)}}
	clock := clockwork.NewFakeClockAt(time.Date(2025, time.June, 25, 10, 30, 0, 0, time.UTC))
	p := NewProjector(source, clock, nil)

	window := func() { p.Events(day("01-06-2025"), day("30-06-2025")) }

	window()
	window()
	log := p.ChangeLog("4521")
	require.Len(t, log, 1, "identical notes are not appended twice")
	assert.Equal(t, "Current: 2025-06-25 10:30 (start: 2025-06-24)", log[0])

	// The disruption resolves; the next projection logs the transition.
	source.snapshots = []domain.FetchResult{snapshot(
		record(domain.SectionCurrent, "Storing Tilburg", "24-06-2025", link),
		record(domain.SectionSolved, "Storing Tilburg", "27-06-2025", link),
	)}
	clock.Advance(26 * time.Hour)
	window()

	log = p.ChangeLog("4521")
	require.Len(t, log, 2)
	assert.Equal(t, "Solved: 2025-06-26 12:30 (end: 2025-06-27)", log[1])
}

func TestProjectorChangeLogSkipsOutOfRangeEvents(t *testing.T) {
	t.Parallel()

	p, _ := newTestProjector(snapshot(
		record(domain.SectionCurrent, "Storing Tilburg", "24-06-2025", "/storingen/8"),
	))

	// A query for a window that excludes the event leaves no trace.
	p.Events(day("01-01-2025"), day("31-01-2025"))
	assert.Empty(t, p.ChangeLog("8"))

	p.Events(day("01-06-2025"), day("30-06-2025"))
	assert.Len(t, p.ChangeLog("8"), 1)
}

func TestProjectorMergesAcrossSnapshots(t *testing.T) {
	t.Parallel()

	link := "/storingen/77"
	p, _ := newTestProjector(
		snapshot(record(domain.SectionCurrent, "Storing regio", "24-06-2025", link)),
		snapshot(record(domain.SectionSolved, "Storing regio", "26-06-2025", link)),
	)

	events := p.Events(day("01-06-2025"), day("30-06-2025"))
	require.Len(t, events, 1, "the same id across locations is one logical event")
	assert.Equal(t, domain.SectionSolved, events[0].Status)
}
