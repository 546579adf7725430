// Package gene defines the identity types shared by the store and the
// mapping engine: nodes, relation edges, and traversal paths.
package gene

import "fmt"

// RelationKind identifies the kind of equivalence relation an edge asserts.
type RelationKind int

const (
	// RelationSynonym links two authorities' identifiers for the same gene
	// within one species.
	RelationSynonym RelationKind = iota
	// RelationOrtholog links orthologous genes across species within one
	// authority.
	RelationOrtholog
)

// String returns the relation kind name used in reports and logs.
func (k RelationKind) String() string {
	switch k {
	case RelationSynonym:
		return "synonym"
	case RelationOrtholog:
		return "ortholog"
	default:
		return fmt.Sprintf("relation(%d)", int(k))
	}
}

// Node is a gene identity: one identifier issued by one authority for one
// species. Nodes are immutable once loaded from the store.
type Node struct {
	Species        string // e.g. "mouse", "human"
	Authority      string // e.g. "NCBI", "ENSEMBL"
	Identifier     string // e.g. "ENSMUSG00000059552"
	Symbol         string // display symbol, may be empty
	ReleaseVersion string // authority release the node was loaded from
}

// Key returns a stable map key for the node identity.
// Symbol and release are not part of identity.
func (n *Node) Key() string {
	return n.Species + "|" + n.Authority + "|" + n.Identifier
}

// Matches reports whether the node lives in the given (species, authority)
// namespace.
func (n *Node) Matches(species, authority string) bool {
	return n.Species == species && n.Authority == authority
}

// String renders the node for reports and error messages.
func (n *Node) String() string {
	return fmt.Sprintf("%s:%s:%s", n.Species, n.Authority, n.Identifier)
}

// Edge is one asserted equivalence between two nodes, with provenance.
// Synonym and ortholog edges are symmetric in effect; the store returns them
// oriented From the queried node.
type Edge struct {
	Kind          RelationKind
	From          *Node
	To            *Node
	Source        string // originating dataset or release, e.g. "NCBI"
	SourceVersion string
}

// String renders the edge in the form used by report output.
func (e Edge) String() string {
	return fmt.Sprintf("%s -[%s/%s]-> %s", e.From, e.Kind, e.Source, e.To)
}

// Path is the ordered sequence of edges that reached a candidate node.
type Path []Edge

// Terminus returns the final node of the path, or nil for an empty path.
func (p Path) Terminus() *Node {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1].To
}
