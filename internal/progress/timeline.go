package progress

import (
	"sort"
	"time"

	"github.com/shelfhand/shelfhand/internal/shelfd"
)

// Entry is one progress log prepared for display: the log itself plus the
// session delta against the previous chronological log in the same cycle.
// The first log of a cycle measures against an implicit zero start.
type Entry struct {
	Log   shelfd.ProgressLog
	Delta float64
}

// Day groups a calendar day's entries. Date is midnight in the timeline's
// zone.
type Day struct {
	Date    time.Time
	Entries []Entry
}

// BuildTimeline flattens cycles into display order: days most-recent-first,
// and within a day entries by canonical percent descending. The calendar day
// is resolved in tz; an unresolvable zone falls back to UTC.
func BuildTimeline(cycles []shelfd.ReadCycle, tz string) []Day {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc = time.UTC
	}

	byDay := make(map[time.Time][]Entry)
	for _, cycle := range cycles {
		for _, entry := range cycleEntries(cycle) {
			day := midnight(entry.Log.LoggedAt, loc)
			byDay[day] = append(byDay[day], entry)
		}
	}

	days := make([]Day, 0, len(byDay))
	for date, entries := range byDay {
		sort.SliceStable(entries, func(i, j int) bool {
			return percentOf(entries[i].Log) > percentOf(entries[j].Log)
		})
		days = append(days, Day{Date: date, Entries: entries})
	}
	sort.Slice(days, func(i, j int) bool {
		return days[i].Date.After(days[j].Date)
	})
	return days
}

// cycleEntries orders one cycle's logs chronologically and computes each
// session delta from the previous log's raw value.
func cycleEntries(cycle shelfd.ReadCycle) []Entry {
	logs := append([]shelfd.ProgressLog(nil), cycle.Logs...)
	sort.SliceStable(logs, func(i, j int) bool {
		return logs[i].LoggedAt.Before(logs[j].LoggedAt)
	})
	entries := make([]Entry, 0, len(logs))
	prev := 0.0
	for _, log := range logs {
		entries = append(entries, Entry{Log: log, Delta: log.Value - prev})
		prev = log.Value
	}
	return entries
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// percentOf sorts entries missing a canonical percent below any measured
// entry for the same day.
func percentOf(log shelfd.ProgressLog) float64 {
	if log.Percent == nil {
		return -1
	}
	return *log.Percent
}
