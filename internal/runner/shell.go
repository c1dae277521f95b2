// Package runner executes shell commands on behalf of the workflow
// executor, applying a safety policy for destructive operations.
package runner

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/models"
)

// CommandRunner executes shell commands in the current working directory
// and reports a structured result. Implementations signal a disallowed
// command through OutcomeDenied rather than output text.
type CommandRunner interface {
	// Run executes the commands in order and returns their combined result.
	Run(ctx context.Context, commands []string) models.CommandResult

	// RunUnchecked executes the commands without consulting the safety
	// policy. Used only after an explicit operator override.
	RunUnchecked(ctx context.Context, commands []string) models.CommandResult
}

// restrictedPattern pairs a policy rule name with the expression that
// detects it in a command line.
type restrictedPattern struct {
	name    string
	pattern *regexp.Regexp
}

// restrictedPatterns is the safety denylist. Matching is on the raw command
// text before execution; a match denies the whole batch.
var restrictedPatterns = []restrictedPattern{
	{"recursive root removal", regexp.MustCompile(`rm\s+(-[a-zA-Z]*r[a-zA-Z]*f|-[a-zA-Z]*f[a-zA-Z]*r)\s+(/|~)(\s|$)`)},
	{"filesystem format", regexp.MustCompile(`\bmkfs(\.\w+)?\b`)},
	{"raw disk write", regexp.MustCompile(`\bdd\b.*\bof=/dev/`)},
	{"privilege escalation", regexp.MustCompile(`^\s*sudo\b`)},
	{"system shutdown", regexp.MustCompile(`\b(shutdown|reboot|halt|poweroff)\b`)},
	{"fork bomb", regexp.MustCompile(`:\(\)\s*\{\s*:\|:`)},
	{"permission reset", regexp.MustCompile(`chmod\s+(-[a-zA-Z]*R[a-zA-Z]*\s+)?777\s+/(\s|$)`)},
}

// ShellRunner runs commands through the system shell.
// Create once, use for every dispatch in a run.
type ShellRunner struct {
	// Shell is the shell binary used for execution. Defaults to "sh".
	Shell string
}

// NewShellRunner creates a ShellRunner with default settings.
func NewShellRunner() *ShellRunner {
	return &ShellRunner{Shell: "sh"}
}

// Run checks each command against the safety policy, then executes the
// batch. The first restricted command denies the whole batch without
// running anything.
func (r *ShellRunner) Run(ctx context.Context, commands []string) models.CommandResult {
	for _, command := range commands {
		if rule := matchRestricted(command); rule != "" {
			return models.CommandResult{
				Outcome: models.OutcomeDenied,
				Reason:  rule,
				Output:  fmt.Sprintf("command %q is not allowed by the security policy (%s)", command, rule),
			}
		}
	}
	return r.RunUnchecked(ctx, commands)
}

// RunUnchecked executes the commands without policy checks, collecting
// combined output. Execution stops at the first command that fails.
func (r *ShellRunner) RunUnchecked(ctx context.Context, commands []string) models.CommandResult {
	shell := r.Shell
	if shell == "" {
		shell = "sh"
	}

	var output strings.Builder
	for _, command := range commands {
		cmd := exec.CommandContext(ctx, shell, "-c", command)
		out, err := cmd.CombinedOutput()
		output.Write(out)
		if err != nil {
			if output.Len() > 0 && !strings.HasSuffix(output.String(), "\n") {
				output.WriteString("\n")
			}
			fmt.Fprintf(&output, "error: %v", err)
			return models.CommandResult{
				Outcome: models.OutcomeFailed,
				Output:  output.String(),
			}
		}
	}

	return models.CommandResult{
		Outcome: models.OutcomeOK,
		Output:  output.String(),
	}
}

// matchRestricted returns the name of the first policy rule a command
// violates, or "" when the command is allowed.
func matchRestricted(command string) string {
	for _, rp := range restrictedPatterns {
		if rp.pattern.MatchString(command) {
			return rp.name
		}
	}
	return ""
}
