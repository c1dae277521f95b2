package cmd

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/models"
	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/parser"
)

var taskIDRegex = regexp.MustCompile(`\[TASK id="([^"]+)" depends="[^"]*"\]`)

// NewTaskValidateCommand creates and returns the task validate subcommand
func NewTaskValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <workflow-file>",
		Short: "Validate a workflow file without executing it",
		Long: `Parse and validate a workflow file, checking for:
  - Task marker syntax and required fields
  - Circular dependencies
  - Duplicate task ids
  - Dependencies on undeclared tasks

Exit code: 0 if valid, 1 if errors found`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return validateWorkflow(cmd, args[0])
		},
		SilenceUsage: true,
	}

	return cmd
}

// validateWorkflow implements the task validate command logic
func validateWorkflow(cmd *cobra.Command, workflowFile string) error {
	out := cmd.OutOrStdout()

	graph, err := parser.ParseFile(workflowFile)
	if err != nil {
		return fmt.Errorf("failed to parse workflow: %w", err)
	}
	if graph.Size() == 0 {
		return fmt.Errorf("workflow %s contains no tasks", workflowFile)
	}

	warn := color.New(color.FgYellow).SprintFunc()

	// The parser resolves duplicate ids by keeping the last declaration,
	// so duplicates have to be detected on the raw document.
	for _, id := range duplicateTaskIDs(workflowFile) {
		fmt.Fprintf(out, "%s duplicate task id %q: the last declaration wins\n", warn("warning:"), id)
	}

	// Edges map a dependency id to its dependents, so an undeclared
	// dependency shows up as a key with no matching task.
	for dep, dependents := range graph.Edges {
		if _, exists := graph.Tasks[dep]; exists {
			continue
		}
		for _, dependent := range dependents {
			fmt.Fprintf(out, "%s task %q depends on undeclared task %q\n", warn("warning:"), dependent, dep)
		}
	}

	order, err := graph.ExecutionOrder()
	if err != nil {
		if cycleErr, ok := err.(*models.CycleError); ok {
			return fmt.Errorf("workflow is invalid: %s", cycleErr)
		}
		return err
	}

	fmt.Fprintf(out, "%s is valid: %d task(s)\n", workflowFile, graph.Size())
	fmt.Fprintf(out, "Execution order: %s\n", strings.Join(order, " -> "))

	for k, v := range graph.Metadata {
		fmt.Fprintf(out, "  %s: %s\n", k, v)
	}

	return nil
}

// duplicateTaskIDs scans the raw workflow text for task ids declared more
// than once. Scan errors are ignored; the parser already read the file.
func duplicateTaskIDs(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	seen := make(map[string]int)
	var order []string
	for _, match := range taskIDRegex.FindAllStringSubmatch(string(data), -1) {
		id := match[1]
		if seen[id] == 1 {
			order = append(order, id)
		}
		seen[id]++
	}
	return order
}
