// Package main is the entry point of sectionctl, an offline tool for inspecting the section
// catalog and migrating legacy hero property bags.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/Owhab/nexacms-sub003/internal/sections"
)

type options struct {
	output      string
	catalogFile string
}

func newRootCommand() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "sectionctl",
		Short:         "Inspect section types and migrate legacy hero sections",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "", "Output format: table (default), json or yaml")
	rootCmd.PersistentFlags().StringVar(&opts.catalogFile, "catalog", "", "YAML catalog applied on top of the built-in section types")

	rootCmd.AddCommand(
		newTypesCommand(opts),
		newRecommendCommand(opts),
		newMigrateCommand(opts),
		newBatchCommand(opts),
	)
	return rootCmd
}

// loadRegistry returns the built-in registry with the optional catalog applied.
func (o *options) loadRegistry() (*sections.Registry, error) {
	registry := sections.NewDefaultRegistry()
	if o.catalogFile == "" {
		return registry, nil
	}
	file, err := os.Open(o.catalogFile)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	if _, err := registry.ApplyCatalog(file); err != nil {
		return nil, err
	}
	return registry, nil
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
