package gene

import "regexp"

// Authority names recognized by identifier characterization.
const (
	AuthorityNCBI    = "NCBI"
	AuthorityENSEMBL = "ENSEMBL"
	// AuthoritySymbol marks an input that is a display symbol rather than
	// an authority-issued identifier.
	AuthoritySymbol = "symbol"
)

var (
	// ENSEMBL stable IDs: species-qualified prefix followed by digits,
	// e.g. ENSG00000133703, ENSMUSG00000059552.
	ensemblPattern = regexp.MustCompile(`^ENS[A-Z]+[0-9]+$`)
	// NCBI gene IDs: bare integers or a CURIE-style prefix,
	// e.g. 3845, NCBIGene:3845, NCBI:3845.
	ncbiPattern = regexp.MustCompile(`^(NCBI[A-Za-z]*:?)?[0-9]+$`)
)

// CharacterizeIdentifier classifies a raw input string as an ENSEMBL
// identifier, an NCBI identifier, or a symbol. Anything that matches
// neither authority's lexical form is assumed to be a symbol.
func CharacterizeIdentifier(id string) string {
	switch {
	case ensemblPattern.MatchString(id):
		return AuthorityENSEMBL
	case ncbiPattern.MatchString(id):
		return AuthorityNCBI
	default:
		return AuthoritySymbol
	}
}

// CharacterizeIdentifiers classifies a list of raw inputs.
func CharacterizeIdentifiers(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = CharacterizeIdentifier(id)
	}
	return out
}
