package drawer

import (
	"errors"
	"fmt"
	"math"
	"sync"

	"github.com/eugenenazirov/change-maker/internal/change"
)

var (
	// ErrInvalidDenominations indicates the provided slots violate validation rules.
	ErrInvalidDenominations = errors.New("invalid denominations")
	// ErrUnknownDenomination is returned when a deposit or withdrawal names a value the drawer does not hold.
	ErrUnknownDenomination = errors.New("denomination is not stocked in the drawer")
	// ErrInsufficientCount is returned when a withdrawal needs more pieces than are on hand.
	ErrInsufficientCount = errors.New("not enough pieces in the drawer")
)

const defaultCount = 10

var defaultValues = []int64{2000, 500, 200, 100, 50, 20, 10, 5, 1}

// Drawer provides access to the denominations available for change.
type Drawer interface {
	Slots() ([]change.Slot, error)
	SetSlots(slots []change.Slot) error
	Apply(deposit, withdraw map[int64]int64) error
}

// MemoryDrawer keeps denomination counts in-memory and guards access with a RWMutex.
type MemoryDrawer struct {
	mu    sync.RWMutex
	slots []change.Slot
}

// NewMemoryDrawer initialises a drawer with the default denominations.
func NewMemoryDrawer() *MemoryDrawer {
	return &MemoryDrawer{slots: DefaultSlots()}
}

// DefaultSlots returns a fresh copy of the default drawer contents.
func DefaultSlots() []change.Slot {
	out := make([]change.Slot, len(defaultValues))
	for i, v := range defaultValues {
		out[i] = change.Slot{Value: v, Count: defaultCount}
	}
	return out
}

// Slots returns a copy of the drawer contents sorted descending by value.
func (d *MemoryDrawer) Slots() ([]change.Slot, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return clone(d.slots), nil
}

// SetSlots validates, normalises, and replaces the drawer contents.
func (d *MemoryDrawer) SetSlots(slots []change.Slot) error {
	normalized, err := change.NormalizeSlots(slots)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidDenominations, err)
	}

	d.mu.Lock()
	d.slots = normalized
	d.mu.Unlock()

	return nil
}

// Apply adds deposit to the drawer and then removes withdraw from it.
// Either both happen or, on error, nothing changes.
func (d *MemoryDrawer) Apply(deposit, withdraw map[int64]int64) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	next := clone(d.slots)
	index := make(map[int64]int, len(next))
	for i, slot := range next {
		index[slot.Value] = i
	}

	for value, n := range deposit {
		i, ok := index[value]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownDenomination, value)
		}
		if n < 0 {
			return fmt.Errorf("%w: deposit of %d x %d", ErrInvalidDenominations, n, value)
		}
		if next[i].Count > math.MaxInt64-n {
			return fmt.Errorf("%w: deposit of %d x %d overflows the count", ErrInvalidDenominations, n, value)
		}
		next[i].Count += n
	}

	for value, n := range withdraw {
		i, ok := index[value]
		if !ok {
			return fmt.Errorf("%w: %d", ErrUnknownDenomination, value)
		}
		if n < 0 {
			return fmt.Errorf("%w: withdrawal of %d x %d", ErrInvalidDenominations, n, value)
		}
		if next[i].Count < n {
			return fmt.Errorf("%w: need %d x %d, have %d", ErrInsufficientCount, n, value, next[i].Count)
		}
		next[i].Count -= n
	}

	d.slots = next
	return nil
}

func clone(src []change.Slot) []change.Slot {
	out := make([]change.Slot, len(src))
	copy(out, src)
	return out
}
