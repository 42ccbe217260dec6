package change

import (
	"errors"
	"testing"
)

func TestCalculatorValidatesInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		slots   []Slot
		wantErr error
	}{
		{name: "Empty", slots: nil, wantErr: ErrNoDenominations},
		{name: "ZeroValue", slots: []Slot{{0, 1}}, wantErr: ErrInvalidDenomination},
		{name: "NegativeValue", slots: []Slot{{-5, 1}}, wantErr: ErrInvalidDenomination},
		{name: "NegativeCount", slots: []Slot{{5, -1}}, wantErr: ErrNegativeCount},
		{name: "Duplicate", slots: []Slot{{50, 1}, {20, 2}, {50, 3}}, wantErr: ErrDuplicateDenomination},
		{name: "TooMany", slots: manySlots(MaxDenominations + 1), wantErr: ErrTooManyDenominations},
	}

	calc := New(StrategyBounded)
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := calc.Calculate(tc.slots, 10); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestCalculatorSortsSlots(t *testing.T) {
	t.Parallel()

	got, err := New(StrategyBounded).Calculate([]Slot{{20, 5}, {100, 3}, {50, 1}}, 130)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Outcome != OutcomeSuccess || got.Change[50] != 1 || got.Change[20] != 4 || len(got.Change) != 2 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestCalculatorExhaustiveLimit(t *testing.T) {
	t.Parallel()

	calc := New(StrategyExhaustive, WithMaxAmount(100))
	if calc.Strategy() != StrategyExhaustive {
		t.Fatalf("expected exhaustive strategy, got %s", calc.Strategy())
	}
	if _, err := calc.Calculate([]Slot{{1, 500}}, 101); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}

	got, err := calc.Calculate([]Slot{{15, 2}, {13, 3}}, 39)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Outcome != OutcomeSuccess || got.Change[13] != 3 {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestNewFallsBackToBounded(t *testing.T) {
	t.Parallel()

	if got := New(Strategy("dp")).Strategy(); got != StrategyBounded {
		t.Fatalf("expected bounded strategy, got %s", got)
	}
}

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]Strategy{
		"":            StrategyBounded,
		"bounded":     StrategyBounded,
		" Exhaustive": StrategyExhaustive,
	} {
		got, err := ParseStrategy(raw)
		if err != nil {
			t.Fatalf("ParseStrategy(%q) returned error: %v", raw, err)
		}
		if got != want {
			t.Fatalf("ParseStrategy(%q) = %s, want %s", raw, got, want)
		}
	}

	if _, err := ParseStrategy("optimal"); err == nil {
		t.Fatalf("expected error for unknown strategy")
	}
}

func TestNormalizeSlotsSortsDescendingWithoutMutating(t *testing.T) {
	t.Parallel()

	input := []Slot{{5, 1}, {500, 2}, {50, 0}}
	got, err := NormalizeSlots(input)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []Slot{{500, 2}, {50, 0}, {5, 1}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
	if input[0].Value != 5 {
		t.Fatalf("input was reordered: %v", input)
	}
}

func manySlots(n int) []Slot {
	out := make([]Slot, n)
	for i := range out {
		out[i] = Slot{Value: int64(i + 1), Count: 1}
	}
	return out
}
