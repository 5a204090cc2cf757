package alloc

import (
	"sort"

	"github.com/kegliz/leqo-compile/leqo/cerr"
)

// AllocateGreedy implements spec.md §4.4's greedy interval-graph colouring:
// process Birth/Death events in rank order (ends before starts at the same
// rank, so a qubit dying at rank r frees its slot in time for one starting
// at r); at each start, allocate the lowest free slot; ties among starts
// at the same rank are broken by longest-remaining-lifetime-first, then
// lexicographically by id, for byte-for-byte determinism. Any pinned qubit
// claims its fixed slot directly; an overlapping pin collision fails with
// AllocationInfeasible.
func AllocateGreedy(intervals []Interval) (Assignment, error) {
	type event struct {
		rank int
		end  bool
		iv   Interval
	}
	events := make([]event, 0, len(intervals)*2)
	for _, iv := range intervals {
		events = append(events, event{rank: iv.Birth, end: false, iv: iv})
		events = append(events, event{rank: iv.Death, end: true, iv: iv})
	}
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.rank != b.rank {
			return a.rank < b.rank
		}
		if a.end != b.end {
			return a.end // release before allocate at the same rank
		}
		if a.end {
			return a.iv.ID < b.iv.ID
		}
		if la, lb := a.iv.length(), b.iv.length(); la != lb {
			return la > lb
		}
		return a.iv.ID < b.iv.ID
	})

	slotOf := map[string]int{}
	occupied := map[int]string{}
	width := 0

	for _, e := range events {
		if e.end {
			if slot, ok := slotOf[e.iv.ID]; ok {
				delete(occupied, slot)
			}
			continue
		}
		if e.iv.Pinned {
			if owner, taken := occupied[e.iv.PinnedSlot]; taken && owner != e.iv.ID {
				return Assignment{}, cerr.NewAt(cerr.AllocationInfeasible, e.iv.ID,
					"pinned slot %d already held by %q", e.iv.PinnedSlot, owner)
			}
			occupied[e.iv.PinnedSlot] = e.iv.ID
			slotOf[e.iv.ID] = e.iv.PinnedSlot
			if e.iv.PinnedSlot+1 > width {
				width = e.iv.PinnedSlot + 1
			}
			continue
		}
		slot := lowestFreeSlot(occupied, width)
		occupied[slot] = e.iv.ID
		slotOf[e.iv.ID] = slot
		if slot+1 > width {
			width = slot + 1
		}
	}

	return Assignment{SlotOf: slotOf, Width: width}, nil
}

func lowestFreeSlot(occupied map[int]string, width int) int {
	for s := 0; s < width; s++ {
		if _, taken := occupied[s]; !taken {
			return s
		}
	}
	return width
}
