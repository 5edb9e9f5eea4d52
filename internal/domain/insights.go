package domain

import "time"

// DayFlags derives display attributes for one bucket relative to today:
// whether any entry is dated today, and how far away the nearest dated
// entry is.
type DayFlags struct {
	HasDate   bool `json:"hasDate"`
	IsToday   bool `json:"isToday"`
	DaysUntil int  `json:"daysUntil"`
	DaysSince int  `json:"daysSince"`
}

// Flags computes DayFlags across all of the bucket's entries. DaysUntil /
// DaysSince track the entry with the smallest absolute distance to today;
// entries whose date does not parse are ignored, and a bucket with no
// parseable date yields the zero value.
func Flags(agg SectionAggregate, today time.Time) DayFlags {
	base := truncateToDay(today)

	var flags DayFlags
	nearest := 0
	for _, entry := range agg.Entries {
		date, err := ParseCanonicalDate(entry.Date)
		if err != nil {
			continue
		}

		delta := int(truncateToDay(date).Sub(base).Hours() / 24)
		if delta == 0 {
			flags.IsToday = true
		}
		if !flags.HasDate || absDays(delta) < absDays(nearest) {
			nearest = delta
			flags.HasDate = true
		}
	}

	if !flags.HasDate {
		return DayFlags{}
	}
	if nearest > 0 {
		flags.DaysUntil = nearest
	} else {
		flags.DaysSince = -nearest
	}
	return flags
}

func absDays(d int) int {
	if d < 0 {
		return -d
	}
	return d
}
