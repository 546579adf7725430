package mapping

import (
	"github.com/inodb/genemapper/internal/gene"
)

// DefaultMaxHops bounds traversal when the caller does not say otherwise.
// Two hops cover every NCBI/ENSEMBL mapping the store can express:
// synonym-then-ortholog or ortholog-then-synonym.
const DefaultMaxHops = 2

// allKinds is the hop expansion used when a policy does not constrain kinds.
var allKinds = []gene.RelationKind{gene.RelationSynonym, gene.RelationOrtholog}

// TraversalPolicy bounds a walk. MaxHops must be >= 1. HopKinds, when
// non-nil, restricts which relation kinds may be crossed at each hop index;
// hops past the end of the sequence allow any kind. Dataset, when non-empty,
// restricts ortholog edges to those asserted by the named source dataset,
// letting callers pin one provenance when published datasets disagree.
type TraversalPolicy struct {
	MaxHops  int
	HopKinds [][]gene.RelationKind
	Dataset  string
}

// DefaultPolicy returns the policy used when the caller supplies none.
func DefaultPolicy() TraversalPolicy {
	return TraversalPolicy{MaxHops: DefaultMaxHops}
}

func (p TraversalPolicy) kindsForHop(hop int) []gene.RelationKind {
	if p.HopKinds == nil || hop >= len(p.HopKinds) {
		return allKinds
	}
	return p.HopKinds[hop]
}

// Walker enumerates the target-namespace nodes reachable from a source node.
type Walker struct {
	store Store
}

// NewWalker creates a walker over the given store.
func NewWalker(s Store) *Walker {
	return &Walker{store: s}
}

// Walk runs a bounded breadth-first traversal from src toward the target
// (species, authority) namespace. Candidates are returned in first-reached
// order; when multiple paths reach the same node, the first path in
// neighbor-iteration order wins. A branch stops expanding once it reaches a
// node in the target namespace, and no node is visited twice. An empty
// result is not an error; the resolver classifies it as unmapped.
func (w *Walker) Walk(src *gene.Node, target Target, policy TraversalPolicy) ([]Candidate, error) {
	if policy.MaxHops < 1 {
		policy.MaxHops = DefaultMaxHops
	}

	// A source already in the target namespace is its own answer.
	if src.Matches(target.Species, target.Authority) {
		return []Candidate{{Node: src, Path: gene.Path{}}}, nil
	}

	type frame struct {
		node *gene.Node
		path gene.Path
	}

	visited := map[string]bool{src.Key(): true}
	frontier := []frame{{node: src, path: gene.Path{}}}
	var candidates []Candidate

	for hop := 0; hop < policy.MaxHops && len(frontier) > 0; hop++ {
		var next []frame
		for _, f := range frontier {
			for _, kind := range policy.kindsForHop(hop) {
				edges, err := w.store.Neighbors(f.node, kind)
				if err != nil {
					return nil, err
				}
				for _, e := range edges {
					if policy.Dataset != "" &&
						e.Kind == gene.RelationOrtholog &&
						e.Source != policy.Dataset {
						continue
					}
					if visited[e.To.Key()] {
						continue
					}
					visited[e.To.Key()] = true

					path := make(gene.Path, len(f.path), len(f.path)+1)
					copy(path, f.path)
					path = append(path, e)

					if e.To.Matches(target.Species, target.Authority) {
						candidates = append(candidates, Candidate{Node: e.To, Path: path})
						continue
					}
					next = append(next, frame{node: e.To, path: path})
				}
			}
		}
		frontier = next
	}

	return candidates, nil
}
