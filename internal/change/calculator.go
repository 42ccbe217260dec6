package change

import "fmt"

type calculator struct {
	strategy  Strategy
	maxAmount int64
}

// Option configures a Calculator.
type Option func(*calculator)

// WithMaxAmount caps the amount the exhaustive strategy will search.
// Values below one are ignored.
func WithMaxAmount(limit int64) Option {
	return func(c *calculator) {
		if limit > 0 {
			c.maxAmount = limit
		}
	}
}

// New creates a Calculator that validates its input before running strategy.
// Unknown strategies fall back to StrategyBounded.
func New(strategy Strategy, opts ...Option) Calculator {
	c := &calculator{
		strategy:  strategy,
		maxAmount: DefaultMaxAmount,
	}
	if c.strategy != StrategyExhaustive {
		c.strategy = StrategyBounded
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *calculator) Calculate(slots []Slot, amount int64) (Result, error) {
	normalized, err := NormalizeSlots(slots)
	if err != nil {
		return Result{}, err
	}

	if c.strategy == StrategyExhaustive {
		if amount > c.maxAmount {
			return Result{}, fmt.Errorf("%w: %d > %d", ErrAmountTooLarge, amount, c.maxAmount)
		}
		return Exhaustive(normalized, amount), nil
	}
	return Bounded(normalized, amount), nil
}

// Strategy reports which search the calculator runs.
func (c *calculator) Strategy() Strategy {
	return c.strategy
}
