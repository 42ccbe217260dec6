package change

import (
	"fmt"
	"strings"
)

// Slot is one denomination of currency and how many pieces of it are on hand.
type Slot struct {
	Value int64 `json:"value" yaml:"value"`
	Count int64 `json:"count" yaml:"count"`
}

// Outcome tells apart the three ways a change request can end.
type Outcome int

const (
	// OutcomeSuccess means Result.Change sums exactly to the requested amount.
	OutcomeSuccess Outcome = iota
	// OutcomeNoChangeNeeded means the amount was zero or negative.
	OutcomeNoChangeNeeded
	// OutcomeInfeasible means no combination was found for a positive amount.
	OutcomeInfeasible
)

func (o Outcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeNoChangeNeeded:
		return "no_change_needed"
	case OutcomeInfeasible:
		return "infeasible"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// MarshalText encodes the outcome as its lower-case name.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// Result is the output of a change calculation.
// Change only holds denominations with a positive count and is never nil.
type Result struct {
	Outcome        Outcome
	Change         map[int64]int64
	BacktrackSteps int
}

// Total returns the amount represented by Change.
func (r Result) Total() int64 {
	var total int64
	for value, count := range r.Change {
		total += value * count
	}
	return total
}

// Pieces returns the number of notes and coins in Change.
func (r Result) Pieces() int64 {
	var pieces int64
	for _, count := range r.Change {
		pieces += count
	}
	return pieces
}

// Strategy selects the search used by a Calculator.
type Strategy string

const (
	// StrategyBounded is greedy descent followed by single-step backtracking.
	StrategyBounded Strategy = "bounded"
	// StrategyExhaustive is a complete bounded-coin search over every amount up to the target.
	StrategyExhaustive Strategy = "exhaustive"
)

// ParseStrategy converts a configuration value into a Strategy.
// An empty string selects StrategyBounded.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", StrategyBounded:
		return StrategyBounded, nil
	case StrategyExhaustive:
		return StrategyExhaustive, nil
	default:
		return "", fmt.Errorf("unknown change strategy %q", raw)
	}
}

// Calculator describes the behaviour required from a change calculator.
type Calculator interface {
	Calculate(slots []Slot, amount int64) (Result, error)
	Strategy() Strategy
}
