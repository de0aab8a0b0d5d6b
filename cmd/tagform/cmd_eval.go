package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/dlovans/tagform/pkg/condition"
)

var (
	evalFile   string
	evalWidget string
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate widget visibility for a framework and its parent values",
	Long: `Reads a document {"widgets": [...], "values": {"<parent id>": value}}
and prints it back with "visibility" filled in, keyed by widget id.
Stored widgets may be given as "records" instead of "widgets".`,
	Example: `  tagform eval --file framework.yaml
  cat framework.json | tagform eval --widget 12`,
	RunE: runEval,
}

func init() {
	evalCmd.Flags().StringVarP(&evalFile, "file", "f", "", "Framework document (JSON or YAML, stdin if empty)")
	evalCmd.Flags().StringVar(&evalWidget, "widget", "", "Only report whether this widget (id, client id or key) is visible")
}

func runEval(cmd *cobra.Command, args []string) error {
	var doc condition.Document
	if err := readInput(cmd.InOrStdin(), evalFile, &doc); err != nil {
		return err
	}
	if err := doc.Resolve(); err != nil {
		return err
	}

	engine := condition.NewEngine(doc.Widgets, condition.WithLogger(logger))
	if evalWidget != "" {
		visible := engine.Visible(evalWidget, doc.Values)
		logger.Debug("widget evaluated", zap.String("widget", evalWidget), zap.Bool("visible", visible))
		fmt.Fprintf(cmd.OutOrStdout(), "%s: %t\n", evalWidget, visible)
		return nil
	}

	doc.Visibility = engine.Visibility(doc.Values)

	hidden := make([]string, 0)
	for id, visible := range doc.Visibility {
		if !visible {
			hidden = append(hidden, id)
		}
	}
	sort.Strings(hidden)
	logger.Info("framework evaluated",
		zap.Int("widgets", len(doc.Widgets)),
		zap.Strings("hidden", hidden))

	return printJSON(cmd.OutOrStdout(), doc)
}
