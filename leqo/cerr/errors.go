// Package cerr defines the exhaustive compile-error taxonomy of spec.md §7.
// It is a separate, dependency-free package so every pipeline stage
// (graph, expand, prepare, alloc, merge, postprocess, pipeline) can
// construct and compare these errors without import cycles.
package cerr

import "fmt"

// Kind is the closed set of error kinds spec.md §7 enumerates.
type Kind string

const (
	CyclicGraph             Kind = "CyclicGraph"
	PortTypeMismatch         Kind = "PortTypeMismatch"
	PortFanInViolation       Kind = "PortFanInViolation"
	UnknownNodeKind          Kind = "UnknownNodeKind"
	MissingSnippet           Kind = "MissingSnippet"
	SnippetParseError        Kind = "SnippetParseError"
	AnnotationMissingIndex   Kind = "AnnotationError.MissingIndex"
	AnnotationDuplicateIndex Kind = "AnnotationError.DuplicateIndex"
	AnnotationNonContiguous  Kind = "AnnotationError.NonContiguousIndex"
	AnnotationWrongHost      Kind = "AnnotationError.WrongHost"
	AnnotationMultipleOnStmt Kind = "AnnotationError.MultipleOnStatement"
	AnnotationOutputOverlap  Kind = "AnnotationError.OutputOverlap"
	AnnotationReusableOverlapsOutput Kind = "AnnotationError.ReusableOverlapsOutput"
	SizeMismatch             Kind = "SizeMismatch"
	UnrollBoundExceeded      Kind = "UnrollBoundExceeded"
	AllocationInfeasible     Kind = "AllocationInfeasible"
	PostprocessError         Kind = "PostprocessError"
	Cancelled                Kind = "Cancelled"
	Timeout                  Kind = "Timeout"
)

// Error is the pipeline's single error type. Every stage fails fast: the
// first Error encountered is returned with the offending node id (when
// known) and a human-readable message (spec.md §7 "Propagation").
type Error struct {
	Kind    Kind
	NodeID  string // empty when not attributable to a single node
	Message string
}

func (e *Error) Error() string {
	if e.NodeID == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: node %q: %s", e.Kind, e.NodeID, e.Message)
}

// New constructs an Error with no node attribution.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// NewAt constructs an Error attributed to a specific node.
func NewAt(kind Kind, nodeID string, format string, args ...any) *Error {
	return &Error{Kind: kind, NodeID: nodeID, Message: fmt.Sprintf(format, args...)}
}

// Is supports errors.Is(err, cerr.Kind) style matching via a sentinel
// comparison helper, since Kind values aren't themselves errors.
func Is(err error, kind Kind) bool {
	ce, ok := err.(*Error)
	return ok && ce.Kind == kind
}
