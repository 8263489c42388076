package progress

import (
	"testing"
	"time"

	"github.com/shelfhand/shelfhand/internal/shelfd"
)

func pct(v float64) *float64 { return &v }

func logAt(t *testing.T, stamp string, percent float64, value float64) shelfd.ProgressLog {
	t.Helper()
	at, err := time.Parse(time.RFC3339, stamp)
	if err != nil {
		t.Fatalf("parse %q: %v", stamp, err)
	}
	return shelfd.ProgressLog{CycleID: "rc_1", LoggedAt: at, Unit: shelfd.UnitPercentComplete, Value: value, Percent: pct(percent)}
}

func TestBuildTimeline_DayDescendingThenPercentDescending(t *testing.T) {
	cycle := shelfd.ReadCycle{
		ID:        "rc_1",
		ItemID:    "li_1",
		StartedAt: time.Date(2026, 2, 7, 10, 0, 0, 0, time.UTC),
		Logs: []shelfd.ProgressLog{
			logAt(t, "2026-02-08T08:00:00Z", 45, 45),
			logAt(t, "2026-02-08T09:00:00Z", 55, 55),
			logAt(t, "2026-02-07T12:00:00Z", 20, 20),
		},
	}

	days := BuildTimeline([]shelfd.ReadCycle{cycle}, "UTC")

	if len(days) != 2 {
		t.Fatalf("days = %d, want 2", len(days))
	}
	var order []float64
	for _, day := range days {
		for _, entry := range day.Entries {
			order = append(order, *entry.Log.Percent)
		}
	}
	want := []float64{55, 45, 20}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("render order = %v, want %v", order, want)
		}
	}
}

func TestBuildTimeline_SessionDeltaFromImplicitZeroStart(t *testing.T) {
	cycle := shelfd.ReadCycle{
		ID:     "rc_1",
		ItemID: "li_1",
		Logs: []shelfd.ProgressLog{
			// Deliberately out of order; deltas follow chronology.
			logAt(t, "2026-02-08T09:00:00Z", 55, 55),
			logAt(t, "2026-02-07T12:00:00Z", 20, 20),
			logAt(t, "2026-02-08T08:00:00Z", 45, 45),
		},
	}

	days := BuildTimeline([]shelfd.ReadCycle{cycle}, "UTC")

	deltaByPercent := map[float64]float64{}
	for _, day := range days {
		for _, entry := range day.Entries {
			deltaByPercent[*entry.Log.Percent] = entry.Delta
		}
	}
	want := map[float64]float64{20: 20, 45: 25, 55: 10}
	for percent, delta := range want {
		if deltaByPercent[percent] != delta {
			t.Fatalf("delta at %v%% = %v, want %v", percent, deltaByPercent[percent], delta)
		}
	}
}

func TestBuildTimeline_DeltasScopedToCycle(t *testing.T) {
	first := shelfd.ReadCycle{
		ID:   "rc_1",
		Logs: []shelfd.ProgressLog{logAt(t, "2026-01-10T10:00:00Z", 90, 90)},
	}
	restart := shelfd.ReadCycle{
		ID: "rc_2",
		Logs: []shelfd.ProgressLog{{
			CycleID:  "rc_2",
			LoggedAt: time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC),
			Unit:     shelfd.UnitPercentComplete,
			Value:    30,
			Percent:  pct(30),
		}},
	}

	days := BuildTimeline([]shelfd.ReadCycle{first, restart}, "UTC")

	for _, day := range days {
		for _, entry := range day.Entries {
			if entry.Log.CycleID == "rc_2" && entry.Delta != 30 {
				t.Fatalf("restarted cycle delta = %v, want 30 (implicit zero start)", entry.Delta)
			}
		}
	}
}

func TestBuildTimeline_ZoneSplitsDaysAndBadZoneFallsBackToUTC(t *testing.T) {
	// 23:30 UTC on Feb 7 is already Feb 8 in Tokyo.
	cycle := shelfd.ReadCycle{
		ID: "rc_1",
		Logs: []shelfd.ProgressLog{
			logAt(t, "2026-02-07T23:30:00Z", 10, 10),
			logAt(t, "2026-02-07T12:00:00Z", 5, 5),
		},
	}

	tokyo := BuildTimeline([]shelfd.ReadCycle{cycle}, "Asia/Tokyo")
	if len(tokyo) != 2 {
		t.Fatalf("Tokyo days = %d, want 2", len(tokyo))
	}

	fallback := BuildTimeline([]shelfd.ReadCycle{cycle}, "Not/AZone")
	if len(fallback) != 1 {
		t.Fatalf("fallback days = %d, want 1 (UTC grouping)", len(fallback))
	}
}
