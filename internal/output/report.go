// Package output provides tab-delimited formatters for batch mapping
// reports and aggregated matrices.
package output

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/inodb/genemapper/internal/mapping"
)

// ReportWriter writes one line per mapping result in tab-delimited format.
type ReportWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewReportWriter creates a new tab-delimited report writer.
func NewReportWriter(w io.Writer) *ReportWriter {
	return &ReportWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#Input_species",
			"Input_authority",
			"Input_identifier",
			"Source_node",
			"Class",
			"Reason",
			"N_candidates",
			"Candidates",
			"Paths",
		},
	}
}

// WriteHeader writes the header line.
func (rw *ReportWriter) WriteHeader() error {
	_, err := rw.w.WriteString(strings.Join(rw.columns, "\t") + "\n")
	return err
}

// Write writes a single mapping result.
func (rw *ReportWriter) Write(res *mapping.MappingResult) error {
	authority := res.Input.Authority
	if authority == "" {
		authority = "-"
	}

	source := "-"
	if res.Source != nil {
		source = res.Source.String()
	}

	reason := string(res.Reason)
	if reason == "" {
		reason = "-"
	}

	candidates := "-"
	paths := "-"
	if len(res.Candidates) > 0 {
		ids := make([]string, len(res.Candidates))
		rendered := make([]string, len(res.Candidates))
		for i, c := range res.Candidates {
			ids[i] = c.Node.Identifier
			if len(c.Path) == 0 {
				rendered[i] = "identity"
				continue
			}
			hops := make([]string, len(c.Path))
			for j, e := range c.Path {
				hops[j] = e.String()
			}
			rendered[i] = strings.Join(hops, " ; ")
		}
		candidates = strings.Join(ids, ",")
		paths = strings.Join(rendered, " | ")
	}

	fields := []string{
		res.Input.Species,
		authority,
		res.Input.Identifier,
		source,
		res.Class.String(),
		reason,
		fmt.Sprintf("%d", len(res.Candidates)),
		candidates,
		paths,
	}
	_, err := rw.w.WriteString(strings.Join(fields, "\t") + "\n")
	return err
}

// WriteReport writes the header and every result of a batch report.
func (rw *ReportWriter) WriteReport(report *mapping.BatchReport) error {
	if err := rw.WriteHeader(); err != nil {
		return err
	}
	for _, res := range report.Results {
		if err := rw.Write(res); err != nil {
			return err
		}
	}
	return rw.Flush()
}

// Flush flushes buffered output.
func (rw *ReportWriter) Flush() error {
	return rw.w.Flush()
}

// MatrixWriter writes an aggregated value matrix as a tab-delimited table.
type MatrixWriter struct {
	w *bufio.Writer
}

// NewMatrixWriter creates a new matrix writer.
func NewMatrixWriter(w io.Writer) *MatrixWriter {
	return &MatrixWriter{w: bufio.NewWriter(w)}
}

// WriteMatrix writes the header row and one row per target gene.
func (mw *MatrixWriter) WriteMatrix(m *mapping.Matrix) error {
	header := append([]string{"#Identifier"}, m.Columns...)
	if _, err := mw.w.WriteString(strings.Join(header, "\t") + "\n"); err != nil {
		return err
	}

	for i, id := range m.RowIDs {
		fields := make([]string, 0, len(m.Columns)+1)
		fields = append(fields, id)
		for _, v := range m.Values[i] {
			fields = append(fields, formatValue(v))
		}
		if _, err := mw.w.WriteString(strings.Join(fields, "\t") + "\n"); err != nil {
			return err
		}
	}
	return mw.w.Flush()
}

// formatValue renders whole numbers without a decimal point.
func formatValue(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}
