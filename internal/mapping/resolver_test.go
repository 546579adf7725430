package mapping

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveUnique(t *testing.T) {
	f := krasGraph()
	r := NewResolver(f)

	res, err := r.Resolve(
		Input{Species: "mouse", Authority: "NCBI", Identifier: "16653"},
		Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassUnique, res.Class)
	assert.Equal(t, ReasonNone, res.Reason)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "ENSG00000133703", res.Candidates[0].Node.Identifier)
	assert.Equal(t, "16653", res.Source.Identifier)
}

func TestResolveDirectIdentity(t *testing.T) {
	f := krasGraph()
	r := NewResolver(f)

	res, err := r.Resolve(
		Input{Species: "human", Authority: "ENSEMBL", Identifier: "ENSG00000133703"},
		Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassUnique, res.Class)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, res.Source, res.Candidates[0].Node)
	assert.Empty(t, res.Candidates[0].Path)
}

func TestResolveNotFound(t *testing.T) {
	f := krasGraph()
	r := NewResolver(f)

	res, err := r.Resolve(
		Input{Species: "mouse", Authority: "NCBI", Identifier: "GeneXYZ"},
		Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassUnmapped, res.Class)
	assert.Equal(t, ReasonNotFound, res.Reason)
	assert.Nil(t, res.Source)
	assert.Empty(t, res.Candidates)
}

func TestResolveNoPath(t *testing.T) {
	f := krasGraph()
	// Known gene with no relations at all.
	f.addNode("mouse", "NCBI", "55555", "Orphan")
	r := NewResolver(f)

	res, err := r.Resolve(
		Input{Species: "mouse", Authority: "NCBI", Identifier: "55555"},
		Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassUnmapped, res.Class)
	assert.Equal(t, ReasonNoPath, res.Reason)
	assert.NotNil(t, res.Source)
}

func TestResolveOneToMany(t *testing.T) {
	f := newFakeStore()
	src := f.addNode("mouse", "NCBI", "100", "Dup")
	h1 := f.addNode("human", "NCBI", "200", "DUP1")
	h2 := f.addNode("human", "NCBI", "201", "DUP2")
	f.addOrtholog(src, h1, "NCBI")
	f.addOrtholog(src, h2, "NCBI")

	r := NewResolver(f)
	res, err := r.Resolve(
		Input{Species: "mouse", Authority: "NCBI", Identifier: "100"},
		Target{"human", "NCBI"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassOneToMany, res.Class)
	assert.Len(t, res.Candidates, 2)
}

func TestResolveSymbolInput(t *testing.T) {
	f := krasGraph()
	r := NewResolver(f)

	// No authority tag: "Kras" characterizes as a symbol and anchors in the
	// NCBI name table, so the cross-species route is ortholog then synonym,
	// within the default hop bound. The symbol form must map exactly like
	// its identifier form.
	res, err := r.Resolve(
		Input{Species: "mouse", Identifier: "Kras"},
		Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassUnique, res.Class)
	require.NotNil(t, res.Source)
	assert.Equal(t, "NCBI", res.Source.Authority)
	assert.Equal(t, "16653", res.Source.Identifier)
	require.Len(t, res.Candidates, 1)
	assert.Equal(t, "ENSG00000133703", res.Candidates[0].Node.Identifier)
}

func TestResolveSymbolEnsemblOnly(t *testing.T) {
	f := krasGraph()
	// Symbol carried only by an ENSEMBL gene; the NCBI table has no hit, so
	// the search falls through to ENSEMBL.
	f.addNode("mouse", "ENSEMBL", "ENSMUSG00000099999", "Lonely")
	r := NewResolver(f)

	res, err := r.Resolve(
		Input{Species: "mouse", Identifier: "Lonely"},
		Target{"mouse", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassUnique, res.Class)
	require.NotNil(t, res.Source)
	assert.Equal(t, "ENSMUSG00000099999", res.Source.Identifier)
}

func TestResolveUntaggedIdentifierShapedSymbol(t *testing.T) {
	f := krasGraph()
	// "123456" is lexically an NCBI identifier but exists only as a symbol.
	f.addNode("mouse", "NCBI", "999", "123456")
	r := NewResolver(f)

	res, err := r.Resolve(
		Input{Species: "mouse", Identifier: "123456"},
		Target{"mouse", "NCBI"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassUnique, res.Class)
	require.NotNil(t, res.Source)
	assert.Equal(t, "999", res.Source.Identifier)
}

func TestResolveAmbiguousSymbol(t *testing.T) {
	f := krasGraph()
	f.addNode("mouse", "NCBI", "300", "Shared")
	f.addNode("mouse", "NCBI", "301", "Shared")
	r := NewResolver(f)

	res, err := r.Resolve(
		Input{Species: "mouse", Identifier: "Shared"},
		Target{"mouse", "NCBI"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassUnmapped, res.Class)
	assert.Equal(t, ReasonAmbiguousSymbol, res.Reason)
	assert.Nil(t, res.Source)
}

func TestResolveCharacterizesUntaggedIdentifier(t *testing.T) {
	f := krasGraph()
	r := NewResolver(f)

	// ENSEMBL-shaped identifier without an authority tag.
	res, err := r.Resolve(
		Input{Species: "mouse", Identifier: "ENSMUSG00000030265"},
		Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassUnique, res.Class)
	assert.Equal(t, "ENSEMBL", res.Source.Authority)
}

func TestResolveAuthorityTaggedSymbolFallback(t *testing.T) {
	f := krasGraph()
	r := NewResolver(f)

	// "KRAS" is not an identifier in human NCBI, but it is a symbol there.
	res, err := r.Resolve(
		Input{Species: "human", Authority: "NCBI", Identifier: "KRAS"},
		Target{"human", "ENSEMBL"}, DefaultPolicy())
	require.NoError(t, err)

	assert.Equal(t, ClassUnique, res.Class)
	require.NotNil(t, res.Source)
	assert.Equal(t, "3845", res.Source.Identifier)
}

func TestResolveIdempotent(t *testing.T) {
	f := krasGraph()
	r := NewResolver(f)
	in := Input{Species: "mouse", Authority: "NCBI", Identifier: "16653"}
	target := Target{"human", "ENSEMBL"}

	first, err := r.Resolve(in, target, DefaultPolicy())
	require.NoError(t, err)
	second, err := r.Resolve(in, target, DefaultPolicy())
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
