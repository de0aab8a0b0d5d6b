package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dlovans/tagform/pkg/lint"
	"github.com/dlovans/tagform/pkg/widget"
)

var lintFile string

var lintCmd = &cobra.Command{
	Use:     "lint",
	Short:   "Check a framework's conditional rules for problems",
	Example: `  tagform lint --file framework.yaml`,
	RunE:    runLint,
}

func init() {
	lintCmd.Flags().StringVarP(&lintFile, "file", "f", "", "Framework document (JSON or YAML, stdin if empty)")
}

// errLintFailed makes the command exit non-zero once issues are printed.
var errLintFailed = errors.New("lint failed")

func runLint(cmd *cobra.Command, args []string) error {
	var f widget.Framework
	if err := readInput(cmd.InOrStdin(), lintFile, &f); err != nil {
		return err
	}
	widgets, err := f.Resolve()
	if err != nil {
		return err
	}
	result := lint.Widgets(widgets)

	out := cmd.OutOrStdout()
	if len(result.Issues) == 0 {
		fmt.Fprintln(out, "✓ No issues found")
		return nil
	}

	for _, issue := range result.Issues {
		icon := "⚠"
		if issue.Severity == "error" {
			icon = "✗"
		}
		location := ""
		if issue.Widget != "" {
			location = fmt.Sprintf(" [widget: %s]", issue.Widget)
		}
		if issue.Condition != "" {
			location += fmt.Sprintf(" [condition: %s]", issue.Condition)
		}
		fmt.Fprintf(out, "%s %s%s: %s\n", icon, issue.Severity, location, issue.Message)
	}

	if !result.Valid {
		cmd.SilenceErrors = true
		return errLintFailed
	}
	return nil
}
