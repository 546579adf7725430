// Package store provides the DuckDB-backed equivalence store: gene identity
// rows plus the synonym and ortholog relation tables the mapping engine
// walks. The store is written once by the build path and opened read-only
// at query time; *sql.DB serializes concurrent reads safely.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// ErrNotFound is returned when an identifier or symbol is absent from the
// gene table.
var ErrNotFound = errors.New("not found in store")

// IntegrityError reports a relation edge whose endpoint is missing from the
// gene table. It indicates a corrupt store, not a bad query.
type IntegrityError struct {
	Table      string
	Species    string
	Authority  string
	Identifier string
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("store integrity: %s references missing gene %s:%s:%s",
		e.Table, e.Species, e.Authority, e.Identifier)
}

// Store manages a DuckDB connection holding the gene equivalence tables.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the on-disk path of the store ("" for in-memory).
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS genes (
			species VARCHAR,
			authority VARCHAR,
			identifier VARCHAR,
			symbol VARCHAR,
			release_version VARCHAR,
			PRIMARY KEY (species, authority, identifier)
		)`,
		`CREATE TABLE IF NOT EXISTS synonyms (
			species VARCHAR,
			authority_a VARCHAR,
			id_a VARCHAR,
			authority_b VARCHAR,
			id_b VARCHAR,
			release_version_a VARCHAR,
			release_version_b VARCHAR
		)`,
		`CREATE TABLE IF NOT EXISTS orthologs (
			authority VARCHAR,
			species_a VARCHAR,
			id_a VARCHAR,
			species_b VARCHAR,
			id_b VARCHAR,
			source_dataset VARCHAR,
			source_version VARCHAR
		)`,
		// One row per (species, authority) namespace present in genes,
		// rebuilt by Finalize after ingest.
		`CREATE TABLE IF NOT EXISTS bibliography (
			species VARCHAR,
			authority VARCHAR,
			n_genes BIGINT,
			has_symbols BOOLEAN
		)`,
		`CREATE TABLE IF NOT EXISTS store_metadata (
			key VARCHAR PRIMARY KEY,
			value VARCHAR
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
