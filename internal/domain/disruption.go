package domain

import (
	"fmt"
	"strings"
	"time"
)

// Section is the lifecycle bucket a disruption is reported under.
type Section string

const (
	SectionCurrent Section = "current"
	SectionPlanned Section = "planned"
	SectionSolved  Section = "solved"
)

// Sections lists the buckets in the order the source page presents them.
var Sections = []Section{SectionCurrent, SectionPlanned, SectionSolved}

// Location identifies one monitored town / postal code pair.
type Location struct {
	Town       string
	PostalCode string
}

// DisruptionRecord is one parsed entry from the disruptions page.
// Date is canonical DD-MM-YYYY; Link is empty when the source provides none.
type DisruptionRecord struct {
	Section Section `json:"status"`
	Title   string  `json:"title"`
	Date    string  `json:"date"`
	Link    string  `json:"link,omitempty"`
}

// SectionAggregate is one lifecycle bucket of a fetch result.
type SectionAggregate struct {
	Active  bool               `json:"active"`
	Entries []DisruptionRecord `json:"entries"`
}

// FetchResult is the immutable unit cached by a coordinator. It is
// constructed fresh on every successful pipeline run and never mutated
// afterwards, so concurrent readers need no locking.
type FetchResult struct {
	Planned   SectionAggregate
	Current   SectionAggregate
	Solved    SectionAggregate
	FetchedAt time.Time
	Location  Location
}

// Assemble builds a FetchResult from per-section parser output. The caller
// stamps FetchedAt after retention has been applied.
func Assemble(bySection map[Section][]DisruptionRecord, loc Location) FetchResult {
	result := FetchResult{Location: loc}
	result.Current = newAggregate(bySection[SectionCurrent])
	result.Planned = newAggregate(bySection[SectionPlanned])
	result.Solved = newAggregate(bySection[SectionSolved])
	return result
}

func newAggregate(entries []DisruptionRecord) SectionAggregate {
	return SectionAggregate{Active: len(entries) > 0, Entries: entries}
}

// Bucket returns the aggregate for the given section.
func (r FetchResult) Bucket(s Section) SectionAggregate {
	switch s {
	case SectionCurrent:
		return r.Current
	case SectionPlanned:
		return r.Planned
	default:
		return r.Solved
	}
}

// Flatten lists every record across all buckets in section-then-document order.
func (r FetchResult) Flatten() []DisruptionRecord {
	var flat []DisruptionRecord
	for _, s := range Sections {
		flat = append(flat, r.Bucket(s).Entries...)
	}
	return flat
}

// Summary renders the human-readable one-line-per-record details text.
func (r FetchResult) Summary() string {
	var b strings.Builder
	for _, s := range Sections {
		label := sectionLabel(s)
		for _, rec := range r.Bucket(s).Entries {
			fmt.Fprintf(&b, "%s disruption: %s (%s)\n", label, rec.Title, rec.Date)
		}
	}
	if b.Len() == 0 {
		return "No disruptions found."
	}
	return b.String()
}

func sectionLabel(s Section) string {
	switch s {
	case SectionCurrent:
		return "Current"
	case SectionPlanned:
		return "Planned"
	default:
		return "Solved"
	}
}
