package commands

import (
	"context"
	"fmt"
	"io"
	"scrappey-go/lib/actionsim"
	"scrappey-go/lib/scrappey"
	"scrappey-go/lib/util/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var actionsCmd = &cobra.Command{
	Use:   "actions",
	Short: "Checks browser action files without sending them.",
}

var (
	truthyConditions []string
	maxIterations    int
)

func init() {
	actionsTraceCmd.Flags().StringArrayVar(&truthyConditions, "true", nil, "A condition that holds while tracing, every other condition is false.")
	actionsTraceCmd.Flags().IntVar(&maxIterations, "max-iterations", 0, "Stop holding a condition after a loop ran this many times.")

	actionsCmd.AddCommand(actionsLintCmd, actionsTraceCmd)
	rootCmd.AddCommand(actionsCmd)
}

func printIssues(w io.Writer, issues []actionsim.Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "no issues found")
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Path", "Severity", "Issue"})
	for _, issue := range issues {
		t.AppendRow(table.Row{issue.Path, issue.Severity, issue.Message})
	}
	t.SetStyle(table.StyleRounded)
	t.Render()
}

var actionsLintCmd = &cobra.Command{
	Use:         "lint <file.json5>",
	Short:       "Looks for mistakes in a browser action file.",
	Args:        cobra.ExactArgs(1),
	Annotations: offline,
	Run: func(cmd *cobra.Command, args []string) {
		actions, err := readActions(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read actions", err)
		}
		issues := actionsim.Lint(actions)
		printIssues(cmd.OutOrStdout(), issues)
		if actionsim.HasErrors(issues) {
			serviceutil.Fatal("the actions have errors", nil)
		}
	},
}

func traceActions(ctx context.Context, w io.Writer, actions []scrappey.Action, truthy []string, max int) error {
	evaluator := actionsim.Evaluator{
		Condition: actionsim.Conditions(truthy, max),
	}
	trace, err := evaluator.Run(ctx, actions)
	for i, step := range trace {
		fmt.Fprintf(w, "%3d %-24s %s\n", i+1, step.Path, describe(step.Action))
	}
	return err
}

func describe(action scrappey.Action) string {
	switch {
	case action.CssSelector != "":
		return fmt.Sprintf("%s %s", action.Type, action.CssSelector)
	case action.Url != "":
		return fmt.Sprintf("%s %s", action.Type, action.Url)
	case action.Code != "":
		return fmt.Sprintf("%s %s", action.Type, action.Code)
	case action.Wait != 0:
		return fmt.Sprintf("%s %dms", action.Type, action.Wait)
	}
	return string(action.Type)
}

var actionsTraceCmd = &cobra.Command{
	Use:         "trace <file.json5> [--true <condition>]...",
	Short:       "Prints the steps a browser action file runs for a given set of conditions.",
	Args:        cobra.ExactArgs(1),
	Annotations: offline,
	Run: func(cmd *cobra.Command, args []string) {
		actions, err := readActions(args[0])
		if err != nil {
			serviceutil.Fatal("failed to read actions", err)
		}
		err = traceActions(cmd.Context(), cmd.OutOrStdout(), actions, truthyConditions, maxIterations)
		if err != nil {
			serviceutil.Fatal("failed to trace actions", err)
		}
	},
}
