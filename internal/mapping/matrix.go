package mapping

import (
	"fmt"
)

// AggregationPolicy controls how a one_to_many source row fans out across
// its target rows.
type AggregationPolicy string

const (
	// AggregationDuplicate copies the source row to every target row.
	// Orthologs are not generally additive, so this is the default.
	AggregationDuplicate AggregationPolicy = "duplicate"
	// AggregationSplitByWeight divides the source row evenly across its
	// target rows.
	AggregationSplitByWeight AggregationPolicy = "split_by_weight"
)

// ReductionPolicy controls how rows are combined when several inputs
// collapse onto one target gene.
type ReductionPolicy string

const (
	// ReductionSum adds contributing rows; the usual choice when building
	// an expression matrix.
	ReductionSum ReductionPolicy = "sum"
	// ReductionMean averages contributing rows.
	ReductionMean ReductionPolicy = "mean"
	// ReductionFirst keeps the first contributing row in input order.
	ReductionFirst ReductionPolicy = "first"
)

// ParseAggregationPolicy validates a policy name from config or flags.
func ParseAggregationPolicy(s string) (AggregationPolicy, error) {
	switch AggregationPolicy(s) {
	case AggregationDuplicate, AggregationSplitByWeight:
		return AggregationPolicy(s), nil
	}
	return "", fmt.Errorf("unknown aggregation policy %q", s)
}

// ParseReductionPolicy validates a policy name from config or flags.
func ParseReductionPolicy(s string) (ReductionPolicy, error) {
	switch ReductionPolicy(s) {
	case ReductionSum, ReductionMean, ReductionFirst:
		return ReductionPolicy(s), nil
	}
	return "", fmt.Errorf("unknown reduction policy %q", s)
}

// Matrix is a dense per-gene value table: one row per gene identifier, one
// column per sample or cell.
type Matrix struct {
	RowIDs  []string
	Columns []string
	Values  [][]float64
}

// NewMatrix allocates a zeroed matrix with the given row and column labels.
func NewMatrix(rowIDs, columns []string) *Matrix {
	values := make([][]float64, len(rowIDs))
	for i := range values {
		values[i] = make([]float64, len(columns))
	}
	return &Matrix{RowIDs: rowIDs, Columns: columns, Values: values}
}

// aggregateMatrix derives the target-indexed output matrix from per-input
// results. Results and matrix rows are aligned by index. Unmapped inputs
// contribute nothing; the report enumerates them separately so the loss is
// never silent. Target rows appear in first-reached order, which is
// deterministic for a fixed store and input order.
func aggregateMatrix(results []*MappingResult, m *Matrix, agg AggregationPolicy, red ReductionPolicy) (*Matrix, error) {
	if len(m.Values) != len(results) {
		return nil, fmt.Errorf("matrix has %d rows for %d inputs", len(m.Values), len(results))
	}
	for i, row := range m.Values {
		if len(row) != len(m.Columns) {
			return nil, fmt.Errorf("matrix row %d has %d values for %d columns",
				i, len(row), len(m.Columns))
		}
	}

	type accum struct {
		values []float64
		n      int
	}
	byTarget := make(map[string]*accum)
	var order []string
	var labels []string

	for i, res := range results {
		if res.Class == ClassUnmapped {
			continue
		}
		row := m.Values[i]

		weight := 1.0
		if agg == AggregationSplitByWeight && len(res.Candidates) > 1 {
			weight = 1.0 / float64(len(res.Candidates))
		}

		for _, cand := range res.Candidates {
			key := cand.Node.Key()
			acc, ok := byTarget[key]
			if !ok {
				acc = &accum{values: make([]float64, len(m.Columns))}
				byTarget[key] = acc
				order = append(order, key)
				labels = append(labels, cand.Node.Identifier)
			}
			acc.n++
			if red == ReductionFirst && acc.n > 1 {
				continue
			}
			for j, v := range row {
				acc.values[j] += v * weight
			}
		}
	}

	out := &Matrix{
		RowIDs:  labels,
		Columns: m.Columns,
		Values:  make([][]float64, len(order)),
	}
	for i, key := range order {
		acc := byTarget[key]
		if red == ReductionMean && acc.n > 1 {
			for j := range acc.values {
				acc.values[j] /= float64(acc.n)
			}
		}
		out.Values[i] = acc.values
	}
	return out, nil
}
