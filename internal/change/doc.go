// Package change works out which notes and coins to hand back for an
// integer amount when every denomination is only available in a limited
// number of pieces.
//
// Bounded is the default search: greedy descent with a narrow, single-step
// backtracking repair. Exhaustive is an opt-in complete search. Both are pure
// functions and safe for concurrent use.
package change
