// Package alloc implements S4 Ancilla-Reuse Optimization: per-qubit live
// interval computation over a topologically scheduled program, greedy
// interval-graph colouring to pack uncorrelated live ranges into the
// smallest global register, and a pluggable Strategy registry (adapted
// from _examples/kegliz-qplay's qc/simulator.RunnerRegistry) so an
// optimize=false request can fall back to a width-suboptimal but trivially
// correct unique-slot-per-qubit baseline (spec.md §4.4).
package alloc

import "math"

// Infinite is the death rank a qubit feeding a `@leqo.output` is assigned:
// it lives to program end (spec.md §4.4).
const Infinite = math.MaxInt32

// Interval is a logical qubit's half-open live range over the topological
// rank timeline, ready for colouring.
type Interval struct {
	ID         string
	Birth      int
	Death      int // exclusive
	Pinned     bool
	PinnedSlot int
}

func (iv Interval) length() int {
	if iv.Death == Infinite {
		return Infinite
	}
	return iv.Death - iv.Birth
}

// Usage is the per-qubit timeline data the caller (leqo/pipeline, once it has
// resolved cross-node qubit identity from graph edges) assembles to
// request an allocation: when the qubit is first defined, the last rank
// at which it is read, and whether it is reusable or output-bound.
type Usage struct {
	ID          string
	BirthRank   int
	LastUseRank int
	Reusable    bool // death advances to LastUseRank+1 (the marking node's rank)
	Output      bool // death is +inf; takes precedence over Reusable
	PinnedSlot  *int
}

// BuildIntervals turns Usages into Intervals per spec.md §4.4's Timeline
// rule: death is +inf for an output-bound qubit, otherwise one past its
// last use (reusable or not — a reusable qubit's "last use" already is the
// point it is marked free).
func BuildIntervals(usages []Usage) []Interval {
	out := make([]Interval, 0, len(usages))
	for _, u := range usages {
		death := u.LastUseRank + 1
		if u.Output {
			death = Infinite
		}
		iv := Interval{ID: u.ID, Birth: u.BirthRank, Death: death}
		if u.PinnedSlot != nil {
			iv.Pinned = true
			iv.PinnedSlot = *u.PinnedSlot
		}
		out = append(out, iv)
	}
	return out
}

// Assignment is the S4 result: a map from every logical qubit to its slot
// in the global register, plus the register's total width.
type Assignment struct {
	SlotOf map[string]int
	Width  int
}
