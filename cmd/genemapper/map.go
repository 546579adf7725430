package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/genemapper/internal/mapping"
	"github.com/inodb/genemapper/internal/output"
	"github.com/inodb/genemapper/internal/store"
)

type mapOptions struct {
	storePath       string
	targetSpecies   string
	targetAuthority string
	species         string
	authority       string
	inputPath       string
	matrixPath      string
	maxHops         int
	aggregation     string
	reduction       string
	workers         int
	dataset         string
	outputPath      string
	matrixOutPath   string
}

func newMapCmd() *cobra.Command {
	var opts mapOptions

	cmd := &cobra.Command{
		Use:   "map [identifiers...]",
		Short: "Map gene identifiers to a target species and authority",
		Long: `Map gene identifiers to a target species and naming authority.

Identifiers come from positional arguments, from a file (--input, use -
for stdin), or from the row labels of an expression matrix (--matrix).
Each identifier is characterized as NCBI, ENSEMBL, or a gene symbol
unless --authority pins the interpretation.`,
		Example: `  # Map mouse NCBI identifiers to human ENSEMBL
  genemapper map --store genes.duckdb \
      --species mouse --target-species human --target-authority ENSEMBL \
      16653 16653 12345

  # Map from a file, one identifier per line
  genemapper map --store genes.duckdb --species mouse \
      --target-species human --target-authority NCBI --input genes.txt

  # Map an expression matrix onto human NCBI genes
  genemapper map --store genes.duckdb --species mouse \
      --target-species human --target-authority NCBI \
      --matrix counts.tsv --matrix-out counts.human.tsv`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMap(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.storePath, "store", "s", "",
		"Path to the gene mapping DuckDB store")
	cmd.Flags().StringVar(&opts.targetSpecies, "target-species", "",
		"Target species name (required)")
	cmd.Flags().StringVar(&opts.targetAuthority, "target-authority", "",
		"Target naming authority: NCBI or ENSEMBL (required)")
	cmd.Flags().StringVar(&opts.species, "species", "",
		"Species of the input identifiers (required)")
	cmd.Flags().StringVar(&opts.authority, "authority", "",
		"Authority of the input identifiers; 'symbol' forces symbol lookup (default: infer per identifier)")
	cmd.Flags().StringVarP(&opts.inputPath, "input", "i", "",
		"File with one identifier per line, - for stdin")
	cmd.Flags().StringVar(&opts.matrixPath, "matrix", "",
		"Tab-delimited matrix whose row labels are the identifiers to map")
	cmd.Flags().IntVar(&opts.maxHops, "max-hops", 0,
		"Maximum relation hops per walk (default from config: map.max_hops)")
	cmd.Flags().StringVar(&opts.aggregation, "aggregation", "",
		"Matrix fan-out policy: duplicate or split_by_weight")
	cmd.Flags().StringVar(&opts.reduction, "reduction", "",
		"Matrix collapse policy: sum, mean, or first")
	cmd.Flags().IntVar(&opts.workers, "workers", 0,
		"Resolution worker count, 0 for all CPUs")
	cmd.Flags().StringVar(&opts.dataset, "dataset", "",
		"Restrict ortholog hops to one source dataset")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "",
		"Report output file (default: stdout)")
	cmd.Flags().StringVar(&opts.matrixOutPath, "matrix-out", "",
		"Aggregated matrix output file (requires --matrix)")

	return cmd
}

func runMap(cmd *cobra.Command, args []string, opts *mapOptions) error {
	if opts.storePath == "" {
		opts.storePath = viper.GetString("store.path")
	}
	if opts.storePath == "" {
		return fmt.Errorf("no store given: use --store or set store.path in config")
	}
	if _, err := os.Stat(opts.storePath); err != nil {
		return fmt.Errorf("store %s: %w", opts.storePath, err)
	}
	if opts.targetSpecies == "" || opts.targetAuthority == "" {
		return fmt.Errorf("--target-species and --target-authority are required")
	}
	if opts.species == "" {
		return fmt.Errorf("--species is required")
	}

	mapOpts, err := buildMapOptions(opts)
	if err != nil {
		return err
	}

	identifiers := args
	var inMatrix *mapping.Matrix
	switch {
	case opts.matrixPath != "":
		if len(args) > 0 || opts.inputPath != "" {
			return fmt.Errorf("--matrix cannot be combined with positional identifiers or --input")
		}
		inMatrix, err = readMatrixTSV(opts.matrixPath)
		if err != nil {
			return err
		}
		identifiers = inMatrix.RowIDs
	case opts.inputPath != "":
		if len(args) > 0 {
			return fmt.Errorf("give identifiers as arguments or via --input, not both")
		}
		identifiers, err = readIdentifiers(opts.inputPath)
		if err != nil {
			return err
		}
	}
	if len(identifiers) == 0 {
		return fmt.Errorf("no identifiers to map")
	}

	inputs := make([]mapping.Input, len(identifiers))
	for i, id := range identifiers {
		inputs[i] = mapping.Input{
			Species:    opts.species,
			Authority:  opts.authority,
			Identifier: id,
		}
	}
	target := mapping.Target{
		Species:   opts.targetSpecies,
		Authority: opts.targetAuthority,
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	s, err := store.Open(opts.storePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	orchestrator := mapping.NewOrchestrator(s)
	orchestrator.SetLogger(logger)

	var report *mapping.BatchReport
	if inMatrix != nil {
		report, err = orchestrator.MapMatrix(cmd.Context(), inputs, inMatrix, target, mapOpts)
	} else {
		report, err = orchestrator.MapIdentifiers(cmd.Context(), inputs, target, mapOpts)
	}
	if err != nil {
		return err
	}

	out := os.Stdout
	if opts.outputPath != "" {
		f, err := os.Create(opts.outputPath)
		if err != nil {
			return fmt.Errorf("create output: %w", err)
		}
		defer f.Close()
		out = f
	}
	if err := output.NewReportWriter(out).WriteReport(report); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	if report.Matrix != nil && opts.matrixOutPath != "" {
		f, err := os.Create(opts.matrixOutPath)
		if err != nil {
			return fmt.Errorf("create matrix output: %w", err)
		}
		defer f.Close()
		if err := output.NewMatrixWriter(f).WriteMatrix(report.Matrix); err != nil {
			return fmt.Errorf("write matrix: %w", err)
		}
	}

	counts := report.Counts()
	fmt.Fprintf(os.Stderr, "Mapped %d identifiers: %d unique, %d one_to_many, %d many_to_one, %d unmapped\n",
		len(report.Results),
		counts[mapping.ClassUnique],
		counts[mapping.ClassOneToMany],
		counts[mapping.ClassManyToOne],
		counts[mapping.ClassUnmapped])

	return nil
}

// buildMapOptions merges flags with config defaults and validates policies.
func buildMapOptions(opts *mapOptions) (mapping.Options, error) {
	if opts.maxHops == 0 {
		opts.maxHops = viper.GetInt("map.max_hops")
	}
	if opts.aggregation == "" {
		opts.aggregation = viper.GetString("map.aggregation")
	}
	if opts.reduction == "" {
		opts.reduction = viper.GetString("map.reduction")
	}
	if opts.workers == 0 {
		opts.workers = viper.GetInt("map.workers")
	}

	agg, err := mapping.ParseAggregationPolicy(opts.aggregation)
	if err != nil {
		return mapping.Options{}, err
	}
	red, err := mapping.ParseReductionPolicy(opts.reduction)
	if err != nil {
		return mapping.Options{}, err
	}

	return mapping.Options{
		Policy: mapping.TraversalPolicy{
			MaxHops: opts.maxHops,
			Dataset: opts.dataset,
		},
		Aggregation: agg,
		Reduction:   red,
		Workers:     opts.workers,
	}, nil
}

// readIdentifiers reads one identifier per line, skipping blanks and '#'
// comments. Path - means stdin.
func readIdentifiers(path string) ([]string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	var ids []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ids = append(ids, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ids, nil
}

// readMatrixTSV reads a tab-delimited matrix: a header line whose first
// column names the identifier column, then one row per gene with the
// identifier first and float values after.
func readMatrixTSV(path string) (*mapping.Matrix, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open matrix: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	var m mapping.Matrix
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		if line == "" {
			continue
		}
		fields := strings.Split(line, "\t")

		if m.Columns == nil {
			if len(fields) < 2 {
				return nil, fmt.Errorf("matrix %s: header needs at least one value column", path)
			}
			m.Columns = fields[1:]
			continue
		}

		if len(fields) != len(m.Columns)+1 {
			return nil, fmt.Errorf("matrix %s line %d: expected %d columns, got %d",
				path, lineNumber, len(m.Columns)+1, len(fields))
		}
		row := make([]float64, len(m.Columns))
		for i, field := range fields[1:] {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("matrix %s line %d: bad value %q", path, lineNumber, field)
			}
			row[i] = v
		}
		m.RowIDs = append(m.RowIDs, fields[0])
		m.Values = append(m.Values, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read matrix: %w", err)
	}
	if m.Columns == nil {
		return nil, fmt.Errorf("matrix %s: missing header", path)
	}
	return &m, nil
}
