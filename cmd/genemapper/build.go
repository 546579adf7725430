package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/genemapper/internal/store"
)

type buildOptions struct {
	dbPath        string
	genesPath     string
	synonymsPath  string
	orthologPaths []string
	release       string
	clobber       bool
}

func newBuildCmd() *cobra.Command {
	var opts buildOptions

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build a gene mapping store from release tables",
		Long: `Build a DuckDB gene mapping store from pre-extracted release tables.

Inputs are tab-delimited files (optionally gzipped): a gene table, a
cross-authority synonym table, and a cross-species ortholog table. The
store is written once and queried read-only afterwards.`,
		Example: `  genemapper build --db genes.duckdb \
      --genes genes.tsv.gz --synonyms synonyms.tsv.gz \
      --orthologs orthologs.tsv.gz --release 2026-08`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(&opts)
		},
	}

	cmd.Flags().StringVar(&opts.dbPath, "db", "",
		"Output DuckDB store path (required)")
	cmd.Flags().StringVar(&opts.genesPath, "genes", "",
		"Gene table TSV (required)")
	cmd.Flags().StringVar(&opts.synonymsPath, "synonyms", "",
		"Cross-authority synonym pair TSV")
	cmd.Flags().StringArrayVar(&opts.orthologPaths, "orthologs", nil,
		"Cross-species ortholog pair TSV (repeatable, one per dataset)")
	cmd.Flags().StringVar(&opts.release, "release", "",
		"Release label recorded in store metadata")
	cmd.Flags().BoolVar(&opts.clobber, "clobber", false,
		"Overwrite an existing store file")

	return cmd
}

func runBuild(opts *buildOptions) error {
	if opts.dbPath == "" {
		return fmt.Errorf("--db is required")
	}
	if opts.genesPath == "" {
		return fmt.Errorf("--genes is required")
	}

	if _, err := os.Stat(opts.dbPath); err == nil {
		if !opts.clobber {
			return fmt.Errorf("store %s exists, pass --clobber to overwrite", opts.dbPath)
		}
		if err := os.Remove(opts.dbPath); err != nil {
			return fmt.Errorf("remove existing store: %w", err)
		}
	}

	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer logger.Sync()

	s, err := store.Open(opts.dbPath)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer s.Close()

	genes, err := store.ReadGenesTSV(opts.genesPath)
	if err != nil {
		return err
	}
	logger.Info("read gene table",
		zap.String("path", opts.genesPath), zap.Int("rows", len(genes)))
	if err := s.IngestGenes(genes); err != nil {
		return fmt.Errorf("ingest genes: %w", err)
	}

	var synonymCount, orthologCount int
	if opts.synonymsPath != "" {
		synonyms, err := store.ReadSynonymsTSV(opts.synonymsPath)
		if err != nil {
			return err
		}
		synonymCount = len(synonyms)
		logger.Info("read synonym table",
			zap.String("path", opts.synonymsPath), zap.Int("rows", synonymCount))
		if err := s.IngestSynonyms(synonyms); err != nil {
			return fmt.Errorf("ingest synonyms: %w", err)
		}
	}
	for _, path := range opts.orthologPaths {
		orthologs, err := store.ReadOrthologsTSV(path)
		if err != nil {
			return err
		}
		orthologCount += len(orthologs)
		logger.Info("read ortholog table",
			zap.String("path", path), zap.Int("rows", len(orthologs)))
		if err := s.IngestOrthologs(orthologs); err != nil {
			return fmt.Errorf("ingest orthologs: %w", err)
		}
	}

	meta := map[string]string{
		"tool_version": version,
	}
	if opts.release != "" {
		meta["release"] = opts.release
	}
	if err := s.WriteMetadata(meta); err != nil {
		return err
	}

	if err := s.Finalize(); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Built %s: %d genes, %d synonym pairs, %d ortholog pairs\n",
		opts.dbPath, len(genes), synonymCount, orthologCount)
	return nil
}
