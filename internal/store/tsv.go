package store

import (
	"bufio"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"
)

// TSV inputs to the build path. These are pre-extracted release tables, one
// header line followed by tab-delimited rows; lines starting with '#' are
// skipped. Downloading and parsing the raw NCBI/ENSEMBL release files that
// produce them happens upstream.

var (
	genesHeader = []string{
		"species", "authority", "identifier", "symbol", "release_version",
	}
	synonymsHeader = []string{
		"species", "authority_a", "id_a", "authority_b", "id_b",
		"release_version_a", "release_version_b",
	}
	orthologsHeader = []string{
		"authority", "species_a", "id_a", "species_b", "id_b",
		"source_dataset", "source_version",
	}
)

// ReadGenesTSV reads a gene table file. Supports gzipped input.
func ReadGenesTSV(path string) ([]GeneRecord, error) {
	var records []GeneRecord
	err := readTSV(path, genesHeader, func(fields []string) {
		records = append(records, GeneRecord{
			Species:        fields[0],
			Authority:      fields[1],
			Identifier:     fields[2],
			Symbol:         fields[3],
			ReleaseVersion: fields[4],
		})
	})
	return records, err
}

// ReadSynonymsTSV reads a synonym pair file. Supports gzipped input.
func ReadSynonymsTSV(path string) ([]SynonymRecord, error) {
	var records []SynonymRecord
	err := readTSV(path, synonymsHeader, func(fields []string) {
		records = append(records, SynonymRecord{
			Species:         fields[0],
			AuthorityA:      fields[1],
			IDA:             fields[2],
			AuthorityB:      fields[3],
			IDB:             fields[4],
			ReleaseVersionA: fields[5],
			ReleaseVersionB: fields[6],
		})
	})
	return records, err
}

// ReadOrthologsTSV reads an ortholog pair file. Supports gzipped input.
func ReadOrthologsTSV(path string) ([]OrthologRecord, error) {
	var records []OrthologRecord
	err := readTSV(path, orthologsHeader, func(fields []string) {
		records = append(records, OrthologRecord{
			Authority:     fields[0],
			SpeciesA:      fields[1],
			IDA:           fields[2],
			SpeciesB:      fields[3],
			IDB:           fields[4],
			SourceDataset: fields[5],
			SourceVersion: fields[6],
		})
	})
	return records, err
}

// readTSV streams a tab-delimited file, validates its header against want,
// and calls emit for every data row.
func readTSV(path string, want []string, emit func(fields []string)) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open tsv: %w", err)
	}
	defer file.Close()

	var reader io.Reader = file

	// Check for gzip magic number (0x1f, 0x8b)
	buf := make([]byte, 2)
	if _, err := io.ReadFull(file, buf); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return fmt.Errorf("tsv %s: missing header", path)
		}
		return fmt.Errorf("read tsv header: %w", err)
	}
	if _, err := file.Seek(0, 0); err != nil {
		return fmt.Errorf("seek tsv: %w", err)
	}
	if buf[0] == 0x1f && buf[1] == 0x8b {
		gz, err := gzip.NewReader(file)
		if err != nil {
			return fmt.Errorf("create gzip reader: %w", err)
		}
		defer gz.Close()
		reader = gz
	}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNumber := 0
	sawHeader := false
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Split(line, "\t")
		if !sawHeader {
			if err := checkHeader(fields, want); err != nil {
				return fmt.Errorf("tsv %s: %w", path, err)
			}
			sawHeader = true
			continue
		}

		if len(fields) != len(want) {
			return fmt.Errorf("tsv %s line %d: expected %d columns, got %d",
				path, lineNumber, len(want), len(fields))
		}
		emit(fields)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read tsv: %w", err)
	}
	if !sawHeader {
		return fmt.Errorf("tsv %s: missing header", path)
	}
	return nil
}

func checkHeader(got, want []string) error {
	if len(got) != len(want) {
		return fmt.Errorf("header has %d columns, expected %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			return fmt.Errorf("header column %d is %q, expected %q", i, got[i], want[i])
		}
	}
	return nil
}
