// Package main provides the genemapper command-line tool.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var verbose bool

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "genemapper",
		Short: "Map gene identifiers between species and naming authorities",
		Long: `genemapper maps gene identifiers between species and between naming
authorities (NCBI, ENSEMBL) using a prebuilt equivalence store of
cross-authority synonyms and cross-species ortholog calls.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging")

	cobra.OnInitialize(initConfig)

	root.AddCommand(newMapCmd())
	root.AddCommand(newBuildCmd())
	root.AddCommand(newInfoCmd())
	root.AddCommand(newConfigCmd())

	return root
}

func initConfig() {
	viper.SetConfigName(".genemapper")
	viper.SetConfigType("yaml")
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
	}
	viper.SetEnvPrefix("GENEMAPPER")
	viper.AutomaticEnv()

	viper.SetDefault("map.max_hops", 2)
	viper.SetDefault("map.aggregation", "duplicate")
	viper.SetDefault("map.reduction", "sum")
	viper.SetDefault("map.workers", 0)

	// A missing config file is fine; defaults apply.
	_ = viper.ReadInConfig()
}

// newLogger builds the CLI logger. Debug output goes to stderr so report
// output on stdout stays clean.
func newLogger() (*zap.Logger, error) {
	if verbose {
		cfg := zap.NewDevelopmentConfig()
		return cfg.Build()
	}
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	return cfg.Build()
}
