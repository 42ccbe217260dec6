package change

// DefaultMaxAmount bounds the table size of the exhaustive strategy.
const DefaultMaxAmount = 1_000_000

// Exhaustive finds change for amount whenever any combination of slots pays
// it exactly. Slots must be unique and sorted descending, as for Bounded.
//
// It walks every amount from 0 to the target once per denomination, marking
// an amount reachable the first time it is hit and remembering how many
// consecutive pieces of the current denomination got there, so no slot is
// used beyond its count. Larger denominations are placed first, which keeps
// the piece count low but does not guarantee the minimum.
func Exhaustive(slots []Slot, amount int64) Result {
	if amount <= 0 {
		return Result{Outcome: OutcomeNoChangeNeeded, Change: map[int64]int64{}}
	}

	size := amount + 1
	choice := make([]int32, size)
	run := make([]int64, size)
	for i := int64(1); i < size; i++ {
		choice[i] = -1
	}
	choice[0] = -2

	for idx, slot := range slots {
		if slot.Value <= 0 || slot.Count <= 0 || slot.Value > amount {
			continue
		}
		for a := slot.Value; a <= amount; a++ {
			if choice[a] != -1 {
				continue
			}
			prev := a - slot.Value
			if choice[prev] == -1 {
				continue
			}
			var streak int64
			if choice[prev] == int32(idx) {
				streak = run[prev]
			}
			if streak >= slot.Count {
				continue
			}
			choice[a] = int32(idx)
			run[a] = streak + 1
		}
	}

	if choice[amount] == -1 {
		return Result{Outcome: OutcomeInfeasible, Change: map[int64]int64{}}
	}

	out := make(map[int64]int64, len(slots))
	for remaining := amount; remaining > 0; {
		slot := slots[choice[remaining]]
		out[slot.Value]++
		remaining -= slot.Value
	}
	return Result{Outcome: OutcomeSuccess, Change: out}
}
