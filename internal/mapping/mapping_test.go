package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/inodb/genemapper/internal/gene"
	"github.com/inodb/genemapper/internal/store"
)

// fakeStore is an in-memory Store for engine tests. Edges are kept in
// insertion order to honor the deterministic-iteration contract.
type fakeStore struct {
	nodes      map[string]*gene.Node
	symbols    map[string][]*gene.Node
	edges      map[string][]gene.Edge
	namespaces map[string]bool
	// neighborErr, when set, is returned from every Neighbors call.
	neighborErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nodes:      make(map[string]*gene.Node),
		symbols:    make(map[string][]*gene.Node),
		edges:      make(map[string][]gene.Edge),
		namespaces: make(map[string]bool),
	}
}

func (f *fakeStore) addNode(species, authority, identifier, symbol string) *gene.Node {
	n := &gene.Node{Species: species, Authority: authority, Identifier: identifier, Symbol: symbol}
	f.nodes[n.Key()] = n
	if symbol != "" {
		k := species + "|" + authority + "|" + symbol
		f.symbols[k] = append(f.symbols[k], n)
	}
	f.namespaces[species+"|"+authority] = true
	return n
}

func (f *fakeStore) addSynonym(a, b *gene.Node) {
	f.edges[a.Key()] = append(f.edges[a.Key()],
		gene.Edge{Kind: gene.RelationSynonym, From: a, To: b, Source: b.Authority})
	f.edges[b.Key()] = append(f.edges[b.Key()],
		gene.Edge{Kind: gene.RelationSynonym, From: b, To: a, Source: a.Authority})
}

func (f *fakeStore) addOrtholog(a, b *gene.Node, dataset string) {
	f.edges[a.Key()] = append(f.edges[a.Key()],
		gene.Edge{Kind: gene.RelationOrtholog, From: a, To: b, Source: dataset})
	f.edges[b.Key()] = append(f.edges[b.Key()],
		gene.Edge{Kind: gene.RelationOrtholog, From: b, To: a, Source: dataset})
}

func (f *fakeStore) LookupNode(species, authority, identifier string) (*gene.Node, error) {
	n := &gene.Node{Species: species, Authority: authority, Identifier: identifier}
	if found, ok := f.nodes[n.Key()]; ok {
		return found, nil
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) NodesForSymbol(species, authority, symbol string) ([]*gene.Node, error) {
	return f.symbols[species+"|"+authority+"|"+symbol], nil
}

func (f *fakeStore) Neighbors(n *gene.Node, kind gene.RelationKind) ([]gene.Edge, error) {
	if f.neighborErr != nil {
		return nil, f.neighborErr
	}
	var out []gene.Edge
	for _, e := range f.edges[n.Key()] {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) HasAuthority(species, authority string) (bool, error) {
	return f.namespaces[species+"|"+authority], nil
}

// krasGraph builds the canonical two-species fixture: mouse and human KRAS
// under both authorities, linked by synonyms within species and one NCBI
// ortholog call across species.
func krasGraph() *fakeStore {
	f := newFakeStore()
	mN := f.addNode("mouse", "NCBI", "16653", "Kras")
	mE := f.addNode("mouse", "ENSEMBL", "ENSMUSG00000030265", "Kras")
	hN := f.addNode("human", "NCBI", "3845", "KRAS")
	hE := f.addNode("human", "ENSEMBL", "ENSG00000133703", "KRAS")
	f.addSynonym(mN, mE)
	f.addSynonym(hN, hE)
	f.addOrtholog(mN, hN, "NCBI")
	return f
}

func TestClassificationString(t *testing.T) {
	assert.Equal(t, "unmapped", ClassUnmapped.String())
	assert.Equal(t, "unique", ClassUnique.String())
	assert.Equal(t, "one_to_many", ClassOneToMany.String())
	assert.Equal(t, "many_to_one", ClassManyToOne.String())
}

func TestInputString(t *testing.T) {
	assert.Equal(t, "mouse:NCBI:16653",
		Input{Species: "mouse", Authority: "NCBI", Identifier: "16653"}.String())
	assert.Equal(t, "mouse:?:Kras",
		Input{Species: "mouse", Identifier: "Kras"}.String())
}
