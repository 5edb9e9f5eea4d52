package domain

import "time"

// PruneSolved drops solved entries dated more than keepDays before today.
// The comparison is date-only; entries whose date fails to parse are kept,
// matching the fail-open behavior consumers rely on.
func PruneSolved(entries []DisruptionRecord, keepDays int, today time.Time) []DisruptionRecord {
	if len(entries) == 0 {
		return entries
	}

	todayDate := truncateToDay(today)
	kept := make([]DisruptionRecord, 0, len(entries))
	for _, rec := range entries {
		date, err := ParseCanonicalDate(rec.Date)
		if err != nil {
			kept = append(kept, rec)
			continue
		}
		age := int(todayDate.Sub(truncateToDay(date)).Hours() / 24)
		if age <= keepDays {
			kept = append(kept, rec)
		}
	}
	return kept
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
