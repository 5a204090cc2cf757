package pipeline

import (
	"fmt"
	"sort"

	"github.com/kegliz/leqo-compile/leqo/alloc"
)

// unusedReusableWarnings flags a spec-supplemented diagnostic: a qubit
// marked `@leqo.reusable` whose freed slot nothing downstream ever actually
// reused. The hint was harmless but pointless, which is worth surfacing to
// whoever wrote the snippet.
func unusedReusableWarnings(usages []alloc.Usage, assignment alloc.Assignment, owner map[string]string) map[string][]string {
	out := map[string][]string{}
	for _, u := range usages {
		if !u.Reusable {
			continue
		}
		slot, ok := assignment.SlotOf[u.ID]
		if !ok {
			continue
		}
		death := u.LastUseRank + 1
		if reusedBy(usages, assignment, u.ID, slot, death) {
			continue
		}
		nodeID := owner[u.ID]
		out[nodeID] = append(out[nodeID], fmt.Sprintf("qubit %q is marked reusable but its slot is never reused", u.ID))
	}
	for nodeID := range out {
		sort.Strings(out[nodeID])
	}
	return out
}

func reusedBy(usages []alloc.Usage, assignment alloc.Assignment, selfID string, slot, freedAt int) bool {
	for _, v := range usages {
		if v.ID == selfID {
			continue
		}
		if assignment.SlotOf[v.ID] != slot {
			continue
		}
		if v.BirthRank >= freedAt {
			return true
		}
	}
	return false
}

func mergeWarnings(dst, src map[string][]string) {
	for k, v := range src {
		dst[k] = append(dst[k], v...)
	}
}
