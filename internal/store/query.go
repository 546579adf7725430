package store

import (
	"database/sql"
	"fmt"

	"github.com/inodb/genemapper/internal/gene"
)

// LookupNode returns the gene node for an exact (species, authority,
// identifier) match, or ErrNotFound.
func (s *Store) LookupNode(species, authority, identifier string) (*gene.Node, error) {
	row := s.db.QueryRow(
		`SELECT symbol, release_version FROM genes
		 WHERE species=? AND authority=? AND identifier=?`,
		species, authority, identifier)

	var symbol, release sql.NullString
	if err := row.Scan(&symbol, &release); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("lookup node: %w", err)
	}

	return &gene.Node{
		Species:        species,
		Authority:      authority,
		Identifier:     identifier,
		Symbol:         symbol.String,
		ReleaseVersion: release.String,
	}, nil
}

// NodesForSymbol returns every node in (species, authority) carrying the
// given display symbol, in insertion order. An empty slice means the symbol
// is unknown; more than one node means the symbol is ambiguous.
func (s *Store) NodesForSymbol(species, authority, symbol string) ([]*gene.Node, error) {
	rows, err := s.db.Query(
		`SELECT identifier, release_version FROM genes
		 WHERE species=? AND authority=? AND symbol=?
		 ORDER BY rowid`,
		species, authority, symbol)
	if err != nil {
		return nil, fmt.Errorf("query symbol: %w", err)
	}
	defer rows.Close()

	var nodes []*gene.Node
	for rows.Next() {
		var identifier string
		var release sql.NullString
		if err := rows.Scan(&identifier, &release); err != nil {
			return nil, fmt.Errorf("scan symbol match: %w", err)
		}
		nodes = append(nodes, &gene.Node{
			Species:        species,
			Authority:      authority,
			Identifier:     identifier,
			Symbol:         symbol,
			ReleaseVersion: release.String,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate symbol matches: %w", err)
	}
	return nodes, nil
}

// Neighbors returns the edges of the given kind incident to the node,
// oriented away from it. Both stored directions are queried since synonym
// and ortholog relations are symmetric. Edge order is deterministic:
// forward-stored rows first, then reverse-stored rows, each in insertion
// order. A relation row whose far endpoint is missing from the gene table
// yields an IntegrityError.
func (s *Store) Neighbors(n *gene.Node, kind gene.RelationKind) ([]gene.Edge, error) {
	switch kind {
	case gene.RelationSynonym:
		return s.synonymNeighbors(n)
	case gene.RelationOrtholog:
		return s.orthologNeighbors(n)
	default:
		return nil, fmt.Errorf("unknown relation kind %d", int(kind))
	}
}

// synonymEndpoint is one side of a synonym row as it comes off a scan.
type synonymEndpoint struct {
	authority string
	id        string
	release   string
}

func (s *Store) synonymNeighbors(n *gene.Node) ([]gene.Edge, error) {
	queries := []string{
		`SELECT authority_b, id_b, release_version_b FROM synonyms
		 WHERE species=? AND authority_a=? AND id_a=?
		 ORDER BY rowid`,
		`SELECT authority_a, id_a, release_version_a FROM synonyms
		 WHERE species=? AND authority_b=? AND id_b=?
		 ORDER BY rowid`,
	}

	var edges []gene.Edge
	for _, q := range queries {
		ends, err := s.scanSynonymRows(q, n)
		if err != nil {
			return nil, err
		}
		for _, end := range ends {
			to, err := s.LookupNode(n.Species, end.authority, end.id)
			if err == ErrNotFound {
				return nil, &IntegrityError{
					Table:      "synonyms",
					Species:    n.Species,
					Authority:  end.authority,
					Identifier: end.id,
				}
			}
			if err != nil {
				return nil, err
			}
			edges = append(edges, gene.Edge{
				Kind:          gene.RelationSynonym,
				From:          n,
				To:            to,
				Source:        end.authority,
				SourceVersion: end.release,
			})
		}
	}
	return edges, nil
}

func (s *Store) scanSynonymRows(query string, n *gene.Node) ([]synonymEndpoint, error) {
	rows, err := s.db.Query(query, n.Species, n.Authority, n.Identifier)
	if err != nil {
		return nil, fmt.Errorf("query synonyms: %w", err)
	}
	defer rows.Close()

	var ends []synonymEndpoint
	for rows.Next() {
		var end synonymEndpoint
		var release sql.NullString
		if err := rows.Scan(&end.authority, &end.id, &release); err != nil {
			return nil, fmt.Errorf("scan synonym: %w", err)
		}
		end.release = release.String
		ends = append(ends, end)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate synonyms: %w", err)
	}
	return ends, nil
}

// orthologEndpoint is the far side of an ortholog row plus its provenance.
type orthologEndpoint struct {
	species string
	id      string
	dataset string
	version string
}

func (s *Store) orthologNeighbors(n *gene.Node) ([]gene.Edge, error) {
	queries := []string{
		`SELECT species_b, id_b, source_dataset, source_version FROM orthologs
		 WHERE authority=? AND species_a=? AND id_a=?
		 ORDER BY rowid`,
		`SELECT species_a, id_a, source_dataset, source_version FROM orthologs
		 WHERE authority=? AND species_b=? AND id_b=?
		 ORDER BY rowid`,
	}

	var edges []gene.Edge
	for _, q := range queries {
		ends, err := s.scanOrthologRows(q, n)
		if err != nil {
			return nil, err
		}
		for _, end := range ends {
			to, err := s.LookupNode(end.species, n.Authority, end.id)
			if err == ErrNotFound {
				return nil, &IntegrityError{
					Table:      "orthologs",
					Species:    end.species,
					Authority:  n.Authority,
					Identifier: end.id,
				}
			}
			if err != nil {
				return nil, err
			}
			edges = append(edges, gene.Edge{
				Kind:          gene.RelationOrtholog,
				From:          n,
				To:            to,
				Source:        end.dataset,
				SourceVersion: end.version,
			})
		}
	}
	return edges, nil
}

func (s *Store) scanOrthologRows(query string, n *gene.Node) ([]orthologEndpoint, error) {
	rows, err := s.db.Query(query, n.Authority, n.Species, n.Identifier)
	if err != nil {
		return nil, fmt.Errorf("query orthologs: %w", err)
	}
	defer rows.Close()

	var ends []orthologEndpoint
	for rows.Next() {
		var end orthologEndpoint
		var dataset, version sql.NullString
		if err := rows.Scan(&end.species, &end.id, &dataset, &version); err != nil {
			return nil, fmt.Errorf("scan ortholog: %w", err)
		}
		end.dataset = dataset.String
		end.version = version.String
		ends = append(ends, end)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orthologs: %w", err)
	}
	return ends, nil
}

// HasAuthority reports whether the store holds any genes for the
// (species, authority) namespace. It consults the bibliography built by
// Finalize, falling back to the gene table for stores still being built.
func (s *Store) HasAuthority(species, authority string) (bool, error) {
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM bibliography WHERE species=? AND authority=?`,
		species, authority).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query bibliography: %w", err)
	}
	if count > 0 {
		return true, nil
	}

	err = s.db.QueryRow(
		`SELECT COUNT(*) FROM genes WHERE species=? AND authority=? LIMIT 1`,
		species, authority).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("query genes: %w", err)
	}
	return count > 0, nil
}

// SpeciesNames returns the sorted list of species present in the gene table.
func (s *Store) SpeciesNames() ([]string, error) {
	return s.stringColumn(`SELECT DISTINCT species FROM genes ORDER BY species`)
}

// Authorities returns the sorted list of authorities present in the gene table.
func (s *Store) Authorities() ([]string, error) {
	return s.stringColumn(`SELECT DISTINCT authority FROM genes ORDER BY authority`)
}

func (s *Store) stringColumn(query string) ([]string, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}

// Metadata returns the key/value pairs recorded at build time.
func (s *Store) Metadata() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM store_metadata ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("query metadata: %w", err)
	}
	defer rows.Close()

	meta := make(map[string]string)
	for rows.Next() {
		var k, v string
		if err := rows.Scan(&k, &v); err != nil {
			return nil, fmt.Errorf("scan metadata: %w", err)
		}
		meta[k] = v
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate metadata: %w", err)
	}
	return meta, nil
}
