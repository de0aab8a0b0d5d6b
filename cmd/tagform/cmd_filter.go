package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlovans/tagform/pkg/filter"
	"github.com/dlovans/tagform/pkg/widget"
)

var (
	filterFile       string
	filterAllVisible bool
	filterProjectID  string
)

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Build entry filter inputs and query variables",
}

var filterInputsCmd = &cobra.Command{
	Use:   "inputs",
	Short: "Describe the filter input of every framework widget",
	Long: `Reads {"widgets": [...], "values": [{"filterKey": ..., ...}]} and prints
one input per filterable widget.`,
	RunE: runFilterInputs,
}

var filterQueryCmd = &cobra.Command{
	Use:   "query",
	Short: "Assemble the sources query variables",
	Long: `Reads {"widgets": [...], "query": {...}} and prints the query variables.
Framework filters are validated first.`,
	Example: `  tagform filter query --project 42 --file filters.yaml`,
	RunE:    runFilterQuery,
}

var filterDescribeCmd = &cobra.Command{
	Use:   "describe",
	Short: "List the applied framework filters",
	RunE:  runFilterDescribe,
}

func init() {
	filterCmd.PersistentFlags().StringVarP(&filterFile, "file", "f", "", "Filter document (JSON or YAML, stdin if empty)")
	filterInputsCmd.Flags().BoolVar(&filterAllVisible, "all", false, "Show inputs without data (default from config)")
	filterQueryCmd.Flags().StringVar(&filterProjectID, "project", "", "Project id (required)")

	filterCmd.AddCommand(filterInputsCmd)
	filterCmd.AddCommand(filterQueryCmd)
	filterCmd.AddCommand(filterDescribeCmd)
}

type filterDocument struct {
	widget.Framework
	Values []filter.Value `json:"values"`
	Query  filter.Query   `json:"query"`
}

func readFilterDocument(cmd *cobra.Command) (filterDocument, []filter.Filter, error) {
	var doc filterDocument
	if err := readInput(cmd.InOrStdin(), filterFile, &doc); err != nil {
		return doc, nil, err
	}
	widgets, err := doc.Resolve()
	if err != nil {
		return doc, nil, err
	}
	return doc, filter.FromWidgets(widgets), nil
}

func newBuilder() (*filter.Builder, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	return filter.NewBuilder(filter.WithLogger(logger), filter.WithLocation(loc)), nil
}

func runFilterInputs(cmd *cobra.Command, args []string) error {
	doc, filters, err := readFilterDocument(cmd)
	if err != nil {
		return err
	}
	b, err := newBuilder()
	if err != nil {
		return err
	}

	allVisible := cfg.Filters.AllVisible
	if cmd.Flags().Changed("all") {
		allVisible = filterAllVisible
	}
	return printJSON(cmd.OutOrStdout(), b.Inputs(filters, doc.Values, allVisible))
}

func runFilterQuery(cmd *cobra.Command, args []string) error {
	if filterProjectID == "" {
		return errors.New("--project is required")
	}
	doc, filters, err := readFilterDocument(cmd)
	if err != nil {
		return err
	}
	b, err := newBuilder()
	if err != nil {
		return err
	}

	if doc.Query.EntriesFilterData != nil {
		if res := filter.Validate(filters, doc.Query.EntriesFilterData.FilterableData); res.Errored {
			for _, msg := range res.Error.Messages() {
				logger.Warn("invalid filter", zap.String("error", msg))
			}
			return fmt.Errorf("invalid filters: %w", res.Error)
		}
	}
	return printJSON(cmd.OutOrStdout(), b.QueryVariables(filterProjectID, doc.Query, filters))
}

func runFilterDescribe(cmd *cobra.Command, args []string) error {
	doc, filters, err := readFilterDocument(cmd)
	if err != nil {
		return err
	}
	b, err := newBuilder()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, chip := range b.Describe(filters, doc.Values) {
		fmt.Fprintf(out, "%s: %s\n", chip.Label, chip.Value)
	}
	return nil
}
