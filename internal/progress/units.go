package progress

import (
	"fmt"

	"github.com/shelfhand/shelfhand/internal/shelfd"
)

// ErrMissingTotal reports that a conversion needs an edition total that is
// not known yet. The absence of a total is a first-class state the caller
// recovers from by supplying one, not a terminal failure.
type ErrMissingTotal struct {
	Unit shelfd.ProgressUnit
}

func (e *ErrMissingTotal) Error() string {
	switch e.Unit {
	case shelfd.UnitPagesRead:
		return "total pages for this edition are unknown"
	case shelfd.UnitMinutesListened:
		return "total audio minutes for this edition are unknown"
	default:
		return fmt.Sprintf("missing total for unit %s", e.Unit)
	}
}

// ToPercent converts a raw value in the given unit to the canonical 0-100
// percent using the edition's totals.
func ToPercent(unit shelfd.ProgressUnit, value float64, edition shelfd.Edition) (float64, error) {
	switch unit {
	case shelfd.UnitPagesRead:
		if edition.TotalPages == nil || *edition.TotalPages == 0 {
			return 0, &ErrMissingTotal{Unit: unit}
		}
		return 100 * value / float64(*edition.TotalPages), nil
	case shelfd.UnitMinutesListened:
		if edition.TotalAudioMinutes == nil || *edition.TotalAudioMinutes == 0 {
			return 0, &ErrMissingTotal{Unit: unit}
		}
		return 100 * value / float64(*edition.TotalAudioMinutes), nil
	case shelfd.UnitPercentComplete:
		return value, nil
	default:
		return 0, fmt.Errorf("unknown progress unit %q", unit)
	}
}

// FromPercent converts a canonical percent back into a raw value in the
// given unit.
func FromPercent(unit shelfd.ProgressUnit, percent float64, edition shelfd.Edition) (float64, error) {
	switch unit {
	case shelfd.UnitPagesRead:
		if edition.TotalPages == nil || *edition.TotalPages == 0 {
			return 0, &ErrMissingTotal{Unit: unit}
		}
		return percent * float64(*edition.TotalPages) / 100, nil
	case shelfd.UnitMinutesListened:
		if edition.TotalAudioMinutes == nil || *edition.TotalAudioMinutes == 0 {
			return 0, &ErrMissingTotal{Unit: unit}
		}
		return percent * float64(*edition.TotalAudioMinutes) / 100, nil
	case shelfd.UnitPercentComplete:
		return percent, nil
	default:
		return 0, fmt.Errorf("unknown progress unit %q", unit)
	}
}

// SwitchUnit recomputes an entered value when the user changes the active
// unit. The entered value marks a fixed point of progress, so it is carried
// through percent rather than reset.
func SwitchUnit(from, to shelfd.ProgressUnit, value float64, edition shelfd.Edition) (float64, error) {
	if from == to {
		return value, nil
	}
	percent, err := ToPercent(from, value, edition)
	if err != nil {
		return 0, err
	}
	return FromPercent(to, percent, edition)
}

// SuggestedTotal returns the external bibliographic suggestion for the total
// the given unit needs, when one is available.
func SuggestedTotal(unit shelfd.ProgressUnit, edition shelfd.Edition) *int {
	switch unit {
	case shelfd.UnitPagesRead:
		return edition.SuggestedPages
	case shelfd.UnitMinutesListened:
		return edition.SuggestedAudioMinutes
	default:
		return nil
	}
}
