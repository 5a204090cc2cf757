// Package pipeline orchestrates the full S0-S7 compile stack over a
// Program Graph: Ingest, Nested Expansion, per-node Preparation with
// cross-node qubit identity resolved from edges, Ancilla-Reuse Allocation,
// Merging, and Postprocessing (spec.md §4). It is the one caller leqo/alloc
// and leqo/merge's package docs anticipate: the collaborator that resolves
// cross-node qubit identity from graph edges before handing either package
// the Usage/Node lists they were designed around.
package pipeline

import (
	"context"

	"github.com/kegliz/leqo-compile/leqo/alloc"
	"github.com/kegliz/leqo-compile/leqo/expand"
	"github.com/kegliz/leqo-compile/leqo/graph"
	"github.com/kegliz/leqo-compile/leqo/merge"
	"github.com/kegliz/leqo-compile/leqo/postprocess"
)

// Options configures one Compile call (spec.md §6's per-request options,
// plus the server-side MaxUnroll ceiling spec.md §4.2 leaves to the
// caller).
type Options struct {
	// Optimize selects the "greedy-interval" allocation strategy when true
	// (the default a caller should normally pass) or "unique-slot" when
	// false (spec.md §4.4's optimize=false fallback).
	Optimize bool
	// MaxUnroll bounds a single repeat node's iteration count.
	MaxUnroll int
}

// Result is a finished compile: the canonicalized OpenQASM-3.1 program plus
// any non-fatal per-node warnings collected along the way.
type Result struct {
	Program  string
	Warnings map[string][]string
}

// Compile runs the full pipeline over g. snippets resolves any node that
// did not arrive with its own Snippet already set. ctx is checked for
// cancellation/timeout after each external snippet fetch and between major
// stages (spec.md §5).
func Compile(ctx context.Context, g *graph.Graph, snippets SnippetSource, opts Options) (*Result, error) {
	if _, err := graph.Ingest(g); err != nil {
		return nil, err
	}

	expanded, err := expand.Expand(g, expand.Options{MaxUnroll: opts.MaxUnroll})
	if err != nil {
		return nil, err
	}

	ingested, err := graph.Ingest(expanded)
	if err != nil {
		return nil, err
	}

	r := newResolver(ctx, snippets)
	if err := r.checkCancel(); err != nil {
		return nil, err
	}

	items, err := r.resolveLevel(expanded, ingested.Order, boundary{})
	if err != nil {
		return nil, err
	}

	if err := r.checkCancel(); err != nil {
		return nil, err
	}

	strategy := alloc.AllocateGreedy
	if !opts.Optimize {
		strategy = alloc.UniqueSlot
	}
	usages := r.usages()
	assignment, err := strategy(alloc.BuildIntervals(usages))
	if err != nil {
		return nil, err
	}

	e := emitter{assignment: assignment, local: r.nodeLocal}
	body, err := e.emitAll(items)
	if err != nil {
		return nil, err
	}

	full := append(merge.Preamble(assignment.Width), body...)

	if err := r.checkCancel(); err != nil {
		return nil, err
	}

	program, err := postprocess.Postprocess(full)
	if err != nil {
		return nil, err
	}

	warnings := map[string][]string{}
	mergeWarnings(warnings, r.warnings)
	mergeWarnings(warnings, unusedReusableWarnings(usages, assignment, r.owner))

	return &Result{Program: program, Warnings: warnings}, nil
}
