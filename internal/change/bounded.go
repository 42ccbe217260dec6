package change

import "slices"

// decision records a greedy choice that used at least one piece.
type decision struct {
	index     int
	used      int64
	remaining int64 // amount still owed before this slot was visited
}

// Bounded computes change for amount from slots, which must already be
// unique by value and sorted descending; it neither checks nor fixes that.
//
// A greedy pass runs first. If it leaves a remainder, the most recent greedy
// decision is reduced by exactly one piece and every later slot is refilled
// greedily once. Older decisions are tried the same way until one refill
// lands on zero or the decisions run out. The search is narrow
// and can report OutcomeInfeasible for amounts some other combination pays.
func Bounded(slots []Slot, amount int64) Result {
	if amount <= 0 {
		return Result{Outcome: OutcomeNoChangeNeeded, Change: map[int64]int64{}}
	}

	used := make([]int64, len(slots))
	stack := make([]decision, 0, len(slots))
	remaining := amount

	for i, slot := range slots {
		if remaining == 0 {
			break
		}
		n := take(slot, remaining)
		if n == 0 {
			continue
		}
		used[i] = n
		stack = append(stack, decision{index: i, used: n, remaining: remaining})
		remaining -= slot.Value * n
	}

	if remaining == 0 {
		return success(slots, used, 0)
	}

	steps := 0
	for len(stack) > 0 {
		d := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		steps++

		used[d.index] = d.used - 1
		remaining = d.remaining - slots[d.index].Value*used[d.index]

		trial := slices.Clone(used)
		for j := d.index + 1; j < len(slots); j++ {
			n := take(slots[j], remaining)
			trial[j] = n
			remaining -= slots[j].Value * n
		}
		if remaining == 0 {
			return success(slots, trial, steps)
		}
	}

	return Result{Outcome: OutcomeInfeasible, Change: map[int64]int64{}, BacktrackSteps: steps}
}

// take returns how many pieces of slot fit into remaining without exceeding its count.
func take(slot Slot, remaining int64) int64 {
	if slot.Value <= 0 || slot.Count <= 0 || remaining <= 0 {
		return 0
	}
	return min(slot.Count, remaining/slot.Value)
}

func success(slots []Slot, used []int64, steps int) Result {
	out := make(map[int64]int64, len(slots))
	for i, n := range used {
		if n > 0 {
			out[slots[i].Value] += n
		}
	}
	return Result{Outcome: OutcomeSuccess, Change: out, BacktrackSteps: steps}
}
