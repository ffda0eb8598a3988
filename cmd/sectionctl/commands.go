package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/Owhab/nexacms-sub003/internal/migration"
	"github.com/Owhab/nexacms-sub003/internal/sections"
)

func newTypesCommand(opts *options) *cobra.Command {
	var (
		category string
		all      bool
	)
	cmd := &cobra.Command{
		Use:   "types",
		Short: "List registered section types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := opts.loadRegistry()
			if err != nil {
				return err
			}

			var list []sections.Descriptor
			switch {
			case category != "":
				list = registry.ListByCategory(category)
			case all:
				list = registry.ListAll()
			default:
				list = registry.ListActive()
			}

			if printed, err := printStructured(cmd, opts.output, list); printed || err != nil {
				return err
			}

			tw := newTable()
			tw.AppendHeader(table.Row{"ID", "NAME", "CATEGORY", "ACTIVE", "VERSION"})
			for _, desc := range list {
				tw.AppendRow(table.Row{desc.ID, desc.DisplayName, desc.Category, desc.IsActive, desc.Version})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", tw.Render())
			return nil
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Only list active types of this category")
	cmd.Flags().BoolVar(&all, "all", false, "Include inactive types")
	return cmd
}

func newRecommendCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend FILE",
		Short: "Rank hero variants for a legacy property bag (FILE may be - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := readProperties(cmd, args[0])
			if err != nil {
				return err
			}

			recommendations := migration.RecommendVariants(props)
			if printed, err := printStructured(cmd, opts.output, recommendations); printed || err != nil {
				return err
			}

			if len(recommendations) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No recommendations; the baseline variant is used by default.")
				return nil
			}
			tw := newTable()
			tw.AppendHeader(table.Row{"VARIANT", "TYPE", "CONFIDENCE", "REASON"})
			for _, rec := range recommendations {
				tw.AppendRow(table.Row{rec.Variant, rec.TypeID, fmt.Sprintf("%.2f", rec.Confidence), rec.Reason})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", tw.Render())
			return nil
		},
	}
}

func newMigrateCommand(opts *options) *cobra.Command {
	var (
		target     string
		noValidate bool
		preview    bool
	)
	cmd := &cobra.Command{
		Use:   "migrate FILE",
		Short: "Migrate a legacy hero property bag to a hero variant (FILE may be - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			props, err := readProperties(cmd, args[0])
			if err != nil {
				return err
			}
			engine, err := newEngine(opts)
			if err != nil {
				return err
			}

			variant := parseTarget(target)
			if preview {
				result := engine.PreviewMigration(props, variant)
				if printed, err := printStructured(cmd, opts.output, result); printed || err != nil {
					return err
				}
				if err := printResult(cmd, result.Result); err != nil {
					return err
				}
				for _, rec := range result.Recommendations {
					fmt.Fprintf(cmd.OutOrStdout(), "  suggested: %s (%.2f) %s\n", rec.TypeID, rec.Confidence, rec.Reason)
				}
				return nil
			}

			result := engine.Migrate(props, variant, migration.WithValidation(!noValidate))
			if printed, err := printStructured(cmd, opts.output, result); printed || err != nil {
				if err != nil {
					return err
				}
				return result.Err()
			}
			if err := printResult(cmd, result); err != nil {
				return err
			}
			return result.Err()
		},
	}
	cmd.Flags().StringVar(&target, "target", "", "Target variant, e.g. video or hero-video (defaults to centered)")
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip the required-field check")
	cmd.Flags().BoolVar(&preview, "preview", false, "Show the unvalidated result and ranked alternatives")
	return cmd
}

func newBatchCommand(opts *options) *cobra.Command {
	var noValidate bool
	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Migrate a JSON array of {id, properties, target_variant} entries (FILE may be - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var items []migration.BatchItem
			if err := readInput(cmd, args[0], &items); err != nil {
				return err
			}
			for i := range items {
				items[i].Target = parseTarget(string(items[i].Target))
			}
			engine, err := newEngine(opts)
			if err != nil {
				return err
			}

			results := engine.BatchMigrate(items, migration.WithValidation(!noValidate))
			failed := 0
			for _, res := range results {
				if !res.Result.Success {
					failed++
				}
			}

			printed, err := printStructured(cmd, opts.output, results)
			if err != nil {
				return err
			}
			if !printed {
				tw := newTable()
				tw.AppendHeader(table.Row{"ID", "TYPE", "SUCCESS", "WARNINGS", "ERRORS"})
				for _, res := range results {
					tw.AppendRow(table.Row{
						res.ID,
						res.Result.NewTypeID,
						res.Result.Success,
						len(res.Result.Warnings),
						strings.Join(res.Result.Errors, "; "),
					})
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", tw.Render())
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d migrations failed", failed, len(results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&noValidate, "no-validate", false, "Skip the required-field check")
	return cmd
}

func newEngine(opts *options) (*migration.Engine, error) {
	registry, err := opts.loadRegistry()
	if err != nil {
		return nil, err
	}
	return migration.NewEngine(registry)
}

func parseTarget(value string) sections.Variant {
	value = strings.TrimSpace(value)
	if variant, ok := sections.ParseVariant(value); ok {
		return variant
	}
	return sections.Variant(value)
}

func printResult(cmd *cobra.Command, result migration.Result) error {
	status := "succeeded"
	if !result.Success {
		status = "failed"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Migration to %s %s\n", result.NewTypeID, status)
	for _, warning := range result.Warnings {
		fmt.Fprintf(cmd.OutOrStdout(), "  warning: %s\n", warning)
	}
	for _, msg := range result.Errors {
		fmt.Fprintf(cmd.OutOrStdout(), "  error: %s\n", msg)
	}
	if result.NewProperties == nil {
		return nil
	}
	body, err := json.MarshalIndent(result.NewProperties, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal properties: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(body))
	return nil
}
