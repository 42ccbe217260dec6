package change

import (
	"cmp"
	"fmt"
	"slices"
)

// MaxDenominations caps the number of distinct denominations accepted.
const MaxDenominations = 32

// NormalizeSlots validates slots and returns a copy sorted descending by value.
// Duplicate values are rejected rather than merged.
func NormalizeSlots(slots []Slot) ([]Slot, error) {
	if len(slots) == 0 {
		return nil, ErrNoDenominations
	}
	if len(slots) > MaxDenominations {
		return nil, fmt.Errorf("%w: got %d, limit is %d", ErrTooManyDenominations, len(slots), MaxDenominations)
	}

	seen := make(map[int64]struct{}, len(slots))
	for _, slot := range slots {
		if slot.Value <= 0 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidDenomination, slot.Value)
		}
		if slot.Count < 0 {
			return nil, fmt.Errorf("%w: %d has count %d", ErrNegativeCount, slot.Value, slot.Count)
		}
		if _, dup := seen[slot.Value]; dup {
			return nil, fmt.Errorf("%w: %d", ErrDuplicateDenomination, slot.Value)
		}
		seen[slot.Value] = struct{}{}
	}

	out := slices.Clone(slots)
	slices.SortFunc(out, func(a, b Slot) int {
		return cmp.Compare(b.Value, a.Value)
	})
	return out, nil
}
