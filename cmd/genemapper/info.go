package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/inodb/genemapper/internal/store"
)

func newInfoCmd() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "info",
		Short: "Describe a gene mapping store",
		Long: `Print the species, authorities, and build metadata of a store,
so callers can see which target namespaces a map call may name.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(storePath)
		},
	}

	cmd.Flags().StringVarP(&storePath, "store", "s", "",
		"Path to the gene mapping DuckDB store")

	return cmd
}

func runInfo(storePath string) error {
	if storePath == "" {
		storePath = viper.GetString("store.path")
	}
	if storePath == "" {
		return fmt.Errorf("no store given: use --store or set store.path in config")
	}
	if _, err := os.Stat(storePath); err != nil {
		return fmt.Errorf("store %s: %w", storePath, err)
	}

	s, err := store.Open(storePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer s.Close()

	species, err := s.SpeciesNames()
	if err != nil {
		return err
	}
	authorities, err := s.Authorities()
	if err != nil {
		return err
	}
	meta, err := s.Metadata()
	if err != nil {
		return err
	}

	fmt.Printf("Store: %s\n", storePath)

	fmt.Printf("Species (%d):\n", len(species))
	for _, name := range species {
		fmt.Printf("  %s\n", name)
	}

	fmt.Printf("Authorities (%d):\n", len(authorities))
	for _, name := range authorities {
		fmt.Printf("  %s\n", name)
	}

	if len(meta) > 0 {
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Println("Metadata:")
		for _, k := range keys {
			fmt.Printf("  %s: %s\n", k, meta[k])
		}
	}

	return nil
}
