package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble(t *testing.T) {
	t.Parallel()

	loc := Location{Town: "Tilburg", PostalCode: "5045AB"}
	bySection := map[Section][]DisruptionRecord{
		SectionCurrent: {
			{Section: SectionCurrent, Title: "Leiding kapot", Date: "24-06-2025", Link: "https://ennatuurlijk.nl/storingen/123"},
		},
		SectionSolved: {
			{Section: SectionSolved, Title: "Leiding kapot", Date: "27-06-2025", Link: "https://ennatuurlijk.nl/storingen/123"},
			{Section: SectionSolved, Title: "Onderhoud afgerond", Date: "20-06-2025"},
		},
	}

	result := Assemble(bySection, loc)

	assert.True(t, result.Current.Active)
	assert.False(t, result.Planned.Active)
	assert.True(t, result.Solved.Active)
	assert.Equal(t, loc, result.Location)

	flat := result.Flatten()
	require.Len(t, flat, 3)
	assert.Equal(t, SectionCurrent, flat[0].Section)
	assert.Equal(t, SectionSolved, flat[1].Section)

	summary := result.Summary()
	assert.Contains(t, summary, "Current disruption: Leiding kapot (24-06-2025)\n")
	assert.Contains(t, summary, "Solved disruption: Onderhoud afgerond (20-06-2025)\n")
}

func TestSummaryEmpty(t *testing.T) {
	t.Parallel()

	result := Assemble(nil, Location{Town: "Tilburg", PostalCode: "5045AB"})
	assert.Equal(t, "No disruptions found.", result.Summary())
	assert.Empty(t, result.Flatten())
	assert.False(t, result.Current.Active)
	assert.False(t, result.Planned.Active)
	assert.False(t, result.Solved.Active)
}
