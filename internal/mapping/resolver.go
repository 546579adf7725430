package mapping

import (
	"errors"

	"github.com/inodb/genemapper/internal/gene"
	"github.com/inodb/genemapper/internal/store"
)

// Resolver turns one input into a classified MappingResult: it locates the
// source node, walks the relation graph, and classifies the candidate set.
type Resolver struct {
	store  Store
	walker *Walker
}

// NewResolver creates a resolver over the given store.
func NewResolver(s Store) *Resolver {
	return &Resolver{store: s, walker: NewWalker(s)}
}

// Resolve maps one input toward the target namespace. Per-input failures
// (unknown identifier, ambiguous symbol, no path) are encoded in the result,
// never returned as errors; a non-nil error means the store itself failed
// (corruption, query error) and the batch should stop.
func (r *Resolver) Resolve(in Input, target Target, policy TraversalPolicy) (*MappingResult, error) {
	src, reason, err := r.resolveSource(in, target)
	if err != nil {
		return nil, err
	}
	if src == nil {
		return &MappingResult{Input: in, Class: ClassUnmapped, Reason: reason}, nil
	}

	candidates, err := r.walker.Walk(src, target, policy)
	if err != nil {
		return nil, err
	}

	result := &MappingResult{Input: in, Source: src, Candidates: candidates}
	switch len(candidates) {
	case 0:
		result.Class = ClassUnmapped
		result.Reason = ReasonNoPath
	case 1:
		result.Class = ClassUnique
	default:
		result.Class = ClassOneToMany
	}
	return result, nil
}

// resolveSource finds the store node an input denotes. A nil node with a
// non-empty reason means the input itself could not be resolved.
func (r *Resolver) resolveSource(in Input, target Target) (*gene.Node, Reason, error) {
	authority := in.Authority
	if authority == "" {
		authority = gene.CharacterizeIdentifier(in.Identifier)
	}

	if authority == gene.AuthoritySymbol {
		return r.resolveSymbolAcrossAuthorities(in.Species, in.Identifier, target)
	}

	node, err := r.store.LookupNode(in.Species, authority, in.Identifier)
	if err == nil {
		return node, ReasonNone, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, ReasonNone, err
	}

	// A tagged input that is not a known identifier may still be a symbol
	// in that authority's name table. An untagged one that merely looked
	// like an identifier may be a symbol under any authority.
	if in.Authority != "" {
		return r.resolveSymbol(in.Species, in.Authority, in.Identifier)
	}
	return r.resolveSymbolAcrossAuthorities(in.Species, in.Identifier, target)
}

// symbolSearchOrder is the authority order for untagged symbol resolution.
// NCBI first: published ortholog calls are anchored to NCBI identifiers, so
// a symbol resolved there crosses species within the default hop bound.
var symbolSearchOrder = []string{gene.AuthorityNCBI, gene.AuthorityENSEMBL}

// resolveSymbolAcrossAuthorities searches the source species' name tables
// authority by authority, NCBI before ENSEMBL, then the target authority for
// stores carrying neither. The first authority with any hits decides: one
// hit resolves, more than one is ambiguous and never guessed at.
func (r *Resolver) resolveSymbolAcrossAuthorities(species, symbol string, target Target) (*gene.Node, Reason, error) {
	order := symbolSearchOrder
	if target.Authority != gene.AuthorityNCBI && target.Authority != gene.AuthorityENSEMBL {
		order = append(append([]string{}, symbolSearchOrder...), target.Authority)
	}

	for _, authority := range order {
		node, reason, err := r.resolveSymbol(species, authority, symbol)
		if err != nil {
			return nil, ReasonNone, err
		}
		if reason == ReasonNotFound {
			continue
		}
		return node, reason, nil
	}
	return nil, ReasonNotFound, nil
}

func (r *Resolver) resolveSymbol(species, authority, symbol string) (*gene.Node, Reason, error) {
	nodes, err := r.store.NodesForSymbol(species, authority, symbol)
	if err != nil {
		return nil, ReasonNone, err
	}
	switch len(nodes) {
	case 0:
		return nil, ReasonNotFound, nil
	case 1:
		return nodes[0], ReasonNone, nil
	default:
		return nil, ReasonAmbiguousSymbol, nil
	}
}
