package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/genemapper/internal/gene"
)

func TestWalkSourceAlreadyInTarget(t *testing.T) {
	f := krasGraph()
	w := NewWalker(f)
	src := f.nodes["human|ENSEMBL|ENSG00000133703"]

	candidates, err := w.Walk(src, Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, src, candidates[0].Node)
	assert.Empty(t, candidates[0].Path)
}

func TestWalkSingleOrthologHop(t *testing.T) {
	f := krasGraph()
	w := NewWalker(f)
	src := f.nodes["mouse|NCBI|16653"]

	candidates, err := w.Walk(src, Target{"human", "NCBI"}, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "3845", candidates[0].Node.Identifier)
	require.Len(t, candidates[0].Path, 1)
	assert.Equal(t, gene.RelationOrtholog, candidates[0].Path[0].Kind)
}

func TestWalkTwoHopsOrthologThenSynonym(t *testing.T) {
	f := krasGraph()
	w := NewWalker(f)
	src := f.nodes["mouse|NCBI|16653"]

	candidates, err := w.Walk(src, Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "ENSG00000133703", candidates[0].Node.Identifier)
	require.Len(t, candidates[0].Path, 2)
	assert.Equal(t, gene.RelationOrtholog, candidates[0].Path[0].Kind)
	assert.Equal(t, gene.RelationSynonym, candidates[0].Path[1].Kind)
}

func TestWalkHopBoundEnforced(t *testing.T) {
	f := krasGraph()
	w := NewWalker(f)
	// ENSEMBL mouse node needs synonym then ortholog to reach human NCBI.
	src := f.nodes["mouse|ENSEMBL|ENSMUSG00000030265"]

	candidates, err := w.Walk(src, Target{"human", "NCBI"},
		TraversalPolicy{MaxHops: 1})
	require.NoError(t, err)
	assert.Empty(t, candidates, "a 2-hop node must not be found at max_hops=1")

	candidates, err = w.Walk(src, Target{"human", "NCBI"},
		TraversalPolicy{MaxHops: 2})
	require.NoError(t, err)
	assert.Len(t, candidates, 1)
}

func TestWalkHopKindSequence(t *testing.T) {
	f := krasGraph()
	w := NewWalker(f)
	src := f.nodes["mouse|ENSEMBL|ENSMUSG00000030265"]
	target := Target{"human", "NCBI"}

	// synonym then ortholog reaches the target.
	candidates, err := w.Walk(src, target, TraversalPolicy{
		MaxHops: 2,
		HopKinds: [][]gene.RelationKind{
			{gene.RelationSynonym},
			{gene.RelationOrtholog},
		},
	})
	require.NoError(t, err)
	assert.Len(t, candidates, 1)

	// ortholog first goes nowhere from an ENSEMBL mouse node.
	candidates, err = w.Walk(src, target, TraversalPolicy{
		MaxHops: 2,
		HopKinds: [][]gene.RelationKind{
			{gene.RelationOrtholog},
			{gene.RelationSynonym},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestWalkStopsAtMatchedNode(t *testing.T) {
	f := krasGraph()
	// Second human NCBI identifier reachable only through the target node:
	// 3845 -synonym- ENSG00000133703 -synonym- 9999.
	extra := f.addNode("human", "NCBI", "9999", "KRASL")
	f.addSynonym(f.nodes["human|ENSEMBL|ENSG00000133703"], extra)

	w := NewWalker(f)
	src := f.nodes["mouse|NCBI|16653"]

	candidates, err := w.Walk(src, Target{"human", "NCBI"},
		TraversalPolicy{MaxHops: 4})
	require.NoError(t, err)
	require.Len(t, candidates, 1, "matched nodes must not be expanded further")
	assert.Equal(t, "3845", candidates[0].Node.Identifier)
}

func TestWalkParalogExpansion(t *testing.T) {
	f := newFakeStore()
	src := f.addNode("mouse", "NCBI", "100", "Dup")
	h1 := f.addNode("human", "NCBI", "200", "DUP1")
	h2 := f.addNode("human", "NCBI", "201", "DUP2")
	f.addOrtholog(src, h1, "NCBI")
	f.addOrtholog(src, h2, "NCBI")

	w := NewWalker(f)
	candidates, err := w.Walk(src, Target{"human", "NCBI"}, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, candidates, 2)
	// First-reached order follows neighbor iteration order.
	assert.Equal(t, "200", candidates[0].Node.Identifier)
	assert.Equal(t, "201", candidates[1].Node.Identifier)
}

func TestWalkDatasetFilter(t *testing.T) {
	f := newFakeStore()
	src := f.addNode("mouse", "NCBI", "100", "Dup")
	h1 := f.addNode("human", "NCBI", "200", "DUP1")
	h2 := f.addNode("human", "NCBI", "201", "DUP2")
	// Disagreeing ortholog datasets: both survive unless one is pinned.
	f.addOrtholog(src, h1, "NCBI")
	f.addOrtholog(src, h2, "HMBA")

	w := NewWalker(f)
	candidates, err := w.Walk(src, Target{"human", "NCBI"}, DefaultPolicy())
	require.NoError(t, err)
	assert.Len(t, candidates, 2)

	candidates, err = w.Walk(src, Target{"human", "NCBI"},
		TraversalPolicy{MaxHops: 2, Dataset: "HMBA"})
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "201", candidates[0].Node.Identifier)
}

func TestWalkFirstReachedPathWins(t *testing.T) {
	f := newFakeStore()
	src := f.addNode("mouse", "NCBI", "1", "A")
	mid := f.addNode("mouse", "ENSEMBL", "ENSMUSG00000000001", "A")
	dst := f.addNode("human", "NCBI", "2", "A1")
	f.addOrtholog(src, dst, "NCBI")
	f.addSynonym(src, mid)
	// Alternate 2-hop route to the same target.
	f.addOrtholog(mid, dst, "ENSEMBL")

	w := NewWalker(f)
	candidates, err := w.Walk(src, Target{"human", "NCBI"}, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	require.Len(t, candidates[0].Path, 1, "the shorter first-reached path wins")
	assert.Equal(t, "NCBI", candidates[0].Path[0].Source)
}

func TestWalkSynonymCycleTerminates(t *testing.T) {
	f := newFakeStore()
	a := f.addNode("mouse", "NCBI", "1", "A")
	b := f.addNode("mouse", "ENSEMBL", "ENSMUSG00000000001", "A")
	f.addSynonym(a, b)
	f.addSynonym(b, a)

	w := NewWalker(f)
	candidates, err := w.Walk(a, Target{"human", "NCBI"},
		TraversalPolicy{MaxHops: 10})
	require.NoError(t, err)
	assert.Empty(t, candidates)
}

func TestWalkRoundTripSymmetry(t *testing.T) {
	f := krasGraph()
	w := NewWalker(f)
	src := f.nodes["mouse|NCBI|16653"]

	fwd, err := w.Walk(src, Target{"human", "NCBI"}, DefaultPolicy())
	require.NoError(t, err)
	require.Len(t, fwd, 1)

	back, err := w.Walk(fwd[0].Node, Target{"mouse", "NCBI"}, DefaultPolicy())
	require.NoError(t, err)
	require.NotEmpty(t, back)

	found := false
	for _, c := range back {
		if c.Node.Key() == src.Key() {
			found = true
		}
	}
	assert.True(t, found, "round trip must return the original node among candidates")
}

func TestWalkIdempotent(t *testing.T) {
	f := krasGraph()
	w := NewWalker(f)
	src := f.nodes["mouse|NCBI|16653"]

	first, err := w.Walk(src, Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)
	second, err := w.Walk(src, Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
