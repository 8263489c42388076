package progress

import (
	"errors"
	"math"
	"testing"

	"github.com/shelfhand/shelfhand/internal/shelfd"
)

func intPtr(v int) *int { return &v }

func TestToPercent_PagesOfKnownTotal(t *testing.T) {
	edition := shelfd.Edition{ID: "ed_1", TotalPages: intPtr(300)}

	got, err := ToPercent(shelfd.UnitPagesRead, 12, edition)
	if err != nil {
		t.Fatalf("ToPercent: %v", err)
	}
	if got != 4 {
		t.Fatalf("percent = %v, want 4", got)
	}
}

func TestRoundTrip_PagesThroughPercent(t *testing.T) {
	edition := shelfd.Edition{ID: "ed_1", TotalPages: intPtr(300), TotalAudioMinutes: intPtr(720)}

	cases := []struct {
		unit  shelfd.ProgressUnit
		value float64
	}{
		{shelfd.UnitPagesRead, 12},
		{shelfd.UnitPagesRead, 299},
		{shelfd.UnitMinutesListened, 95},
		{shelfd.UnitPercentComplete, 37.5},
	}
	for _, tc := range cases {
		percent, err := ToPercent(tc.unit, tc.value, edition)
		if err != nil {
			t.Fatalf("%s ToPercent: %v", tc.unit, err)
		}
		back, err := FromPercent(tc.unit, percent, edition)
		if err != nil {
			t.Fatalf("%s FromPercent: %v", tc.unit, err)
		}
		if math.Abs(back-tc.value) > 1e-9 {
			t.Errorf("%s round trip = %v, want %v", tc.unit, back, tc.value)
		}
	}
}

func TestSwitchUnit_PreservesFixedPoint(t *testing.T) {
	edition := shelfd.Edition{ID: "ed_1", TotalPages: intPtr(200), TotalAudioMinutes: intPtr(600)}

	// 50 pages of 200 is a quarter of the book: 150 minutes of 600.
	minutes, err := SwitchUnit(shelfd.UnitPagesRead, shelfd.UnitMinutesListened, 50, edition)
	if err != nil {
		t.Fatalf("SwitchUnit: %v", err)
	}
	if minutes != 150 {
		t.Fatalf("minutes = %v, want 150", minutes)
	}

	percent, err := SwitchUnit(shelfd.UnitMinutesListened, shelfd.UnitPercentComplete, minutes, edition)
	if err != nil {
		t.Fatalf("SwitchUnit to percent: %v", err)
	}
	if percent != 25 {
		t.Fatalf("percent = %v, want 25", percent)
	}
}

func TestConversion_MissingTotalIsTypedByUnit(t *testing.T) {
	edition := shelfd.Edition{ID: "ed_1", TotalAudioMinutes: intPtr(600)}

	_, err := ToPercent(shelfd.UnitPagesRead, 10, edition)
	var missing *ErrMissingTotal
	if !errors.As(err, &missing) {
		t.Fatalf("err = %v, want ErrMissingTotal", err)
	}
	if missing.Unit != shelfd.UnitPagesRead {
		t.Fatalf("missing unit = %s, want pages_read", missing.Unit)
	}

	// The unit that has a total keeps working.
	if _, err := ToPercent(shelfd.UnitMinutesListened, 60, edition); err != nil {
		t.Fatalf("minutes conversion failed: %v", err)
	}
	// Percent never needs a total.
	if _, err := ToPercent(shelfd.UnitPercentComplete, 40, shelfd.Edition{ID: "ed_2"}); err != nil {
		t.Fatalf("percent conversion failed: %v", err)
	}
}

func TestSuggestedTotal_MatchesBlockedUnit(t *testing.T) {
	edition := shelfd.Edition{ID: "ed_1", SuggestedPages: intPtr(320)}

	if got := SuggestedTotal(shelfd.UnitPagesRead, edition); got == nil || *got != 320 {
		t.Fatalf("SuggestedTotal(pages) = %v, want 320", got)
	}
	if got := SuggestedTotal(shelfd.UnitMinutesListened, edition); got != nil {
		t.Fatalf("SuggestedTotal(minutes) = %v, want nil", *got)
	}
}
