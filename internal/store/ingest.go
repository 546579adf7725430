package store

import (
	"context"
	"database/sql/driver"
	"fmt"
	"time"

	goduckdb "github.com/marcboeker/go-duckdb"
)

// GeneRecord is one row of the gene table as produced by an upstream
// release extraction.
type GeneRecord struct {
	Species        string
	Authority      string
	Identifier     string
	Symbol         string
	ReleaseVersion string
}

// SynonymRecord asserts that two authorities' identifiers denote the same
// gene within one species.
type SynonymRecord struct {
	Species         string
	AuthorityA      string
	IDA             string
	AuthorityB      string
	IDB             string
	ReleaseVersionA string
	ReleaseVersionB string
}

// OrthologRecord asserts that two genes in different species are orthologs
// according to one published dataset.
type OrthologRecord struct {
	Authority     string
	SpeciesA      string
	IDA           string
	SpeciesB      string
	IDB           string
	SourceDataset string
	SourceVersion string
}

// IngestGenes batch-inserts gene rows using the Appender API.
// Duplicate (species, authority, identifier) rows are deduplicated before
// writing.
func (s *Store) IngestGenes(records []GeneRecord) error {
	if len(records) == 0 {
		return nil
	}

	type key struct{ species, authority, identifier string }
	seen := make(map[key]bool, len(records))
	deduped := make([]GeneRecord, 0, len(records))
	for _, r := range records {
		k := key{r.Species, r.Authority, r.Identifier}
		if !seen[k] {
			seen[k] = true
			deduped = append(deduped, r)
		}
	}

	return s.withAppender("genes", func(a *goduckdb.Appender) error {
		for _, r := range deduped {
			if err := a.AppendRow(
				r.Species, r.Authority, r.Identifier, r.Symbol, r.ReleaseVersion,
			); err != nil {
				return fmt.Errorf("append gene: %w", err)
			}
		}
		return nil
	})
}

// IngestSynonyms batch-inserts synonym rows. Each pair is stored once;
// queries cover both directions.
func (s *Store) IngestSynonyms(records []SynonymRecord) error {
	if len(records) == 0 {
		return nil
	}

	return s.withAppender("synonyms", func(a *goduckdb.Appender) error {
		for _, r := range records {
			if err := a.AppendRow(
				r.Species, r.AuthorityA, r.IDA, r.AuthorityB, r.IDB,
				r.ReleaseVersionA, r.ReleaseVersionB,
			); err != nil {
				return fmt.Errorf("append synonym: %w", err)
			}
		}
		return nil
	})
}

// IngestOrthologs batch-inserts ortholog rows. Each pair is stored once;
// queries cover both directions.
func (s *Store) IngestOrthologs(records []OrthologRecord) error {
	if len(records) == 0 {
		return nil
	}

	return s.withAppender("orthologs", func(a *goduckdb.Appender) error {
		for _, r := range records {
			if err := a.AppendRow(
				r.Authority, r.SpeciesA, r.IDA, r.SpeciesB, r.IDB,
				r.SourceDataset, r.SourceVersion,
			); err != nil {
				return fmt.Errorf("append ortholog: %w", err)
			}
		}
		return nil
	})
}

// withAppender runs fn with a DuckDB appender for the named table and
// flushes on success.
func (s *Store) withAppender(table string, fn func(*goduckdb.Appender) error) error {
	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", table)
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	if err := fn(appender); err != nil {
		return err
	}
	return appender.Flush()
}

// WriteMetadata records build provenance, stamping created_at if absent.
// The caller's map is left untouched.
func (s *Store) WriteMetadata(meta map[string]string) error {
	stamped := make(map[string]string, len(meta)+1)
	for k, v := range meta {
		stamped[k] = v
	}
	if _, ok := stamped["created_at"]; !ok {
		stamped["created_at"] = time.Now().UTC().Format(time.RFC3339)
	}
	for k, v := range stamped {
		if _, err := s.db.Exec(
			`INSERT OR REPLACE INTO store_metadata (key, value) VALUES (?, ?)`,
			k, v); err != nil {
			return fmt.Errorf("write metadata %q: %w", k, err)
		}
	}
	return nil
}

// Finalize builds the lookup indexes and rebuilds the bibliography table.
// Call once after all ingestion is complete.
func (s *Store) Finalize() error {
	stmts := []string{
		`CREATE INDEX IF NOT EXISTS genes_symbol_idx
		 ON genes (species, authority, symbol)`,
		`CREATE INDEX IF NOT EXISTS synonyms_fwd_idx
		 ON synonyms (species, authority_a, id_a)`,
		`CREATE INDEX IF NOT EXISTS synonyms_rev_idx
		 ON synonyms (species, authority_b, id_b)`,
		`CREATE INDEX IF NOT EXISTS orthologs_fwd_idx
		 ON orthologs (authority, species_a, id_a)`,
		`CREATE INDEX IF NOT EXISTS orthologs_rev_idx
		 ON orthologs (authority, species_b, id_b)`,
		`DELETE FROM bibliography`,
		`INSERT INTO bibliography
		 SELECT species, authority, COUNT(*),
		        COUNT(CASE WHEN symbol IS NOT NULL AND symbol <> '' THEN 1 END) > 0
		 FROM genes
		 GROUP BY species, authority`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("finalize store: %w", err)
		}
	}
	return nil
}
