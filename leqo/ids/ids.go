// Package ids derives the stable, collision-free identifiers the pipeline
// needs: per-node rename prefixes and repeat-unroll node identifiers. Both
// are pure functions of their inputs so that compiling the same request
// twice yields byte-identical merged programs (spec.md §8 "Determinism").
package ids

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
)

// NodePrefix returns a short, stable, collision-resistant prefix used to
// rename every identifier declared inside a node's snippet. It is derived
// solely from the node id, so unrolled copies of the same inner node (which
// get fresh node ids, see Unrolled below) automatically get distinct
// prefixes without any extra bookkeeping.
func NodePrefix(nodeID string) string {
	sum := sha1.Sum([]byte(nodeID))
	return "n" + hex.EncodeToString(sum[:])[:10]
}

// Unrolled derives the deterministic node id for the i-th copy of innerID
// nested inside repeatID's subgraph (spec.md §4.2, §9 "Nested-graph
// identity"). The same function seeds the renamer's prefix for the copy,
// since NodePrefix is applied to its result.
func Unrolled(repeatID string, iteration int, innerID string) string {
	return fmt.Sprintf("%s#%d::%s", repeatID, iteration, innerID)
}

// PassthroughEntry derives the id of the synthetic entry passthrough node
// materialized for iteration i of a repeat block.
func PassthroughEntry(repeatID string, iteration int) string {
	return fmt.Sprintf("%s#%d::entry", repeatID, iteration)
}

// PassthroughExit derives the id of the synthetic exit passthrough node
// materialized for iteration i of a repeat block.
func PassthroughExit(repeatID string, iteration int) string {
	return fmt.Sprintf("%s#%d::exit", repeatID, iteration)
}

// Branch derives the node id for a node inside an if-then-else branch
// ("then" or "else") so both branches can reuse the same inner ids without
// colliding with each other or with the outer graph.
func Branch(ifID string, branch string, innerID string) string {
	return fmt.Sprintf("%s::%s::%s", ifID, branch, innerID)
}

// RequestSeed derives a deterministic, content-addressed seed for a compile
// request. Nothing in this repository calls it: the pipeline has no
// pseudo-random tie-breaking, ties are always broken lexicographically per
// spec.md §4.4.
func RequestSeed(requestBody []byte) string {
	sum := sha1.Sum(requestBody)
	return hex.EncodeToString(sum[:])
}
