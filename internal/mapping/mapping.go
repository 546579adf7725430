// Package mapping implements the identifier resolution engine: bounded
// traversal of the synonym and ortholog relations, deterministic collapse
// of multi-valued results, and batch orchestration with matrix aggregation.
package mapping

import (
	"errors"
	"fmt"

	"github.com/inodb/genemapper/internal/gene"
	"github.com/inodb/genemapper/internal/store"
)

// Store is the read-only equivalence store contract the engine resolves
// against. *store.Store satisfies it; tests substitute in-memory fakes.
// Implementations must return neighbor lists in a stable order, which the
// engine relies on for deterministic tie-breaking.
type Store interface {
	// LookupNode returns the node for an exact identifier match, or
	// store.ErrNotFound.
	LookupNode(species, authority, identifier string) (*gene.Node, error)
	// NodesForSymbol returns every node carrying a display symbol in the
	// (species, authority) namespace, in insertion order.
	NodesForSymbol(species, authority, symbol string) ([]*gene.Node, error)
	// Neighbors returns edges of one relation kind incident to a node,
	// oriented away from it.
	Neighbors(n *gene.Node, kind gene.RelationKind) ([]gene.Edge, error)
	// HasAuthority reports whether any genes exist for the namespace.
	HasAuthority(species, authority string) (bool, error)
}

var _ Store = (*store.Store)(nil)

// ErrUnknownTarget is returned when the requested target (species,
// authority) namespace is absent from the store entirely. No input can
// resolve, so the whole batch fails.
var ErrUnknownTarget = errors.New("target species/authority unknown to store")

// Target is the (species, authority) namespace identifiers are mapped into.
type Target struct {
	Species   string
	Authority string
}

func (t Target) String() string {
	return t.Species + ":" + t.Authority
}

// Input is one identifier to be mapped. Authority may be empty, in which
// case the identifier is characterized lexically (ENSEMBL, NCBI, or symbol),
// or the literal "symbol" to force symbol-table resolution.
type Input struct {
	Species    string
	Authority  string
	Identifier string
}

func (in Input) String() string {
	if in.Authority == "" {
		return in.Species + ":?:" + in.Identifier
	}
	return in.Species + ":" + in.Authority + ":" + in.Identifier
}

// Classification tags the outcome of resolving one input.
type Classification int

const (
	// ClassUnmapped means no target node was reached; Reason says why.
	ClassUnmapped Classification = iota
	// ClassUnique means exactly one target node was reached.
	ClassUnique
	// ClassOneToMany means multiple target nodes were reached; all are
	// retained, no silent best-pick.
	ClassOneToMany
	// ClassManyToOne means this input and at least one other input in the
	// same batch converged on the same single target node. Assigned at the
	// batch level only.
	ClassManyToOne
)

func (c Classification) String() string {
	switch c {
	case ClassUnmapped:
		return "unmapped"
	case ClassUnique:
		return "unique"
	case ClassOneToMany:
		return "one_to_many"
	case ClassManyToOne:
		return "many_to_one"
	default:
		return fmt.Sprintf("classification(%d)", int(c))
	}
}

// Reason explains an unmapped outcome.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonNotFound        Reason = "not_found"
	ReasonAmbiguousSymbol Reason = "ambiguous_source_symbol"
	ReasonNoPath          Reason = "no_path"
)

// Candidate is one target node reached by the walker, with the edge path
// that first reached it.
type Candidate struct {
	Node *gene.Node
	Path gene.Path
}

// MappingResult is the classified outcome of resolving one input.
// "Unmapped" is a first-class result, never an omission.
type MappingResult struct {
	Input      Input
	Source     *gene.Node // nil when the input could not be resolved to a node
	Candidates []Candidate
	Class      Classification
	Reason     Reason
}
