package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Owhab/nexacms-sub003/internal/models"
)

// readInput decodes a JSON document from path, or from stdin when path is "-".
func readInput(cmd *cobra.Command, path string, dest interface{}) error {
	var reader io.Reader
	if path == "-" {
		reader = cmd.InOrStdin()
	} else {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		reader = file
	}

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func readProperties(cmd *cobra.Command, path string) (models.Properties, error) {
	var props models.Properties
	if err := readInput(cmd, path, &props); err != nil {
		return nil, err
	}
	if props == nil {
		props = models.Properties{}
	}
	return props, nil
}

func newTable() table.Writer {
	tw := table.NewWriter()
	tw.Style().Options.DrawBorder = false
	tw.Style().Options.SeparateColumns = false
	tw.Style().Options.SeparateFooter = false
	tw.Style().Options.SeparateHeader = false
	tw.Style().Options.SeparateRows = false
	return tw
}

// printStructured writes value as JSON or YAML. It reports false for the table format.
func printStructured(cmd *cobra.Command, output string, value interface{}) (bool, error) {
	switch output {
	case "", "table":
		return false, nil
	case "json":
		jsonOutput, err := json.MarshalIndent(value, "", "  ")
		if err != nil {
			return true, fmt.Errorf("marshal JSON: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(jsonOutput))
		return true, nil
	case "yaml":
		yamlOutput, err := yaml.Marshal(value)
		if err != nil {
			return true, fmt.Errorf("marshal YAML: %w", err)
		}
		fmt.Fprint(cmd.OutOrStdout(), string(yamlOutput))
		return true, nil
	default:
		return true, fmt.Errorf("unknown output format: %s", output)
	}
}
