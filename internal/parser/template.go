package parser

import (
	"fmt"
	"strings"
	"time"
)

// GenerateTemplate produces a syntactically valid workflow document with
// numTasks sequential example tasks. When numTasks > 2 a "final" task
// depending on every prior task is appended, so the parsed graph contains
// numTasks+1 tasks. The output must round-trip through Parse.
func GenerateTemplate(numTasks int) string {
	today := time.Now().Format("2006-01-02")

	var sb strings.Builder
	sb.WriteString("# AtlasAI Task: My Project Workflow\n\n")
	sb.WriteString("## Metadata\n")
	sb.WriteString("- author: Your Name\n")
	fmt.Fprintf(&sb, "- date: %s\n", today)
	sb.WriteString("- priority: high\n")
	sb.WriteString("- allow_file_operations: true\n\n")
	sb.WriteString("## Description\n")
	sb.WriteString("This is a template task workflow. Edit this description to explain what this workflow will accomplish.\n")
	sb.WriteString("Replace the task definitions below with your actual tasks.\n\n")
	sb.WriteString("## Tasks\n")

	for i := 1; i <= numTasks; i++ {
		depends := ""
		if i > 1 {
			depends = fmt.Sprintf("task%d", i-1)
		}
		fmt.Fprintf(&sb, "\n%d. [TASK id=\"task%d\" depends=\"%s\"]\n", i, i, depends)
		fmt.Fprintf(&sb, "   ### Task %d Title\n", i)
		fmt.Fprintf(&sb, "   Description of task %d. Explain what this task does and why it's important.\n\n", i)
		sb.WriteString("   ```bash\n")
		fmt.Fprintf(&sb, "   echo \"Executing task %d\"\n", i)
		sb.WriteString("   ```\n")
	}

	if numTasks > 2 {
		deps := make([]string, 0, numTasks)
		for i := 1; i <= numTasks; i++ {
			deps = append(deps, fmt.Sprintf("task%d", i))
		}
		fmt.Fprintf(&sb, "\n%d. [TASK id=\"final\" depends=\"%s\"]\n", numTasks+1, strings.Join(deps, ", "))
		sb.WriteString("   ### Final Task\n")
		sb.WriteString("   This task depends on all previous tasks and runs only when they are complete.\n\n")
		sb.WriteString("   ```bash\n")
		sb.WriteString("   echo \"All tasks completed, running final task\"\n")
		sb.WriteString("   ```\n")
	}

	sb.WriteString("\n## Notes\n")
	sb.WriteString("- Each task must have a unique ID\n")
	sb.WriteString("- The \"depends\" attribute lists the IDs of tasks that must complete before this task\n")
	sb.WriteString("- Multiple dependencies should be comma-separated\n")
	sb.WriteString("- Commands are executed in the order they appear\n")
	sb.WriteString("- Use atlasai commands for AI-powered operations\n")

	return sb.String()
}
