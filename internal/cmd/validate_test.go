package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeWorkflow(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workflow.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write workflow: %v", err)
	}
	return path
}

func runValidate(t *testing.T, path string) (string, error) {
	t.Helper()
	cmd := NewTaskValidateCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs([]string{path})
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_ValidWorkflow(t *testing.T) {
	path := writeWorkflow(t, `[TASK id="a" depends=""]
### A

[TASK id="b" depends="a"]
### B
`)

	out, err := runValidate(t, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "is valid: 2 task(s)") {
		t.Errorf("missing validity line: %q", out)
	}
	if !strings.Contains(out, "Execution order: a -> b") {
		t.Errorf("missing execution order: %q", out)
	}
}

func TestValidate_CycleFails(t *testing.T) {
	path := writeWorkflow(t, `[TASK id="a" depends="b"]
### A

[TASK id="b" depends="a"]
### B
`)

	_, err := runValidate(t, path)
	if err == nil {
		t.Fatal("expected error for cyclic workflow")
	}
	if !strings.Contains(err.Error(), "dependency cycle") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestValidate_WarnsOnDuplicateIDs(t *testing.T) {
	path := writeWorkflow(t, `[TASK id="a" depends=""]
### First

[TASK id="a" depends=""]
### Second
`)

	out, err := runValidate(t, path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, `duplicate task id "a"`) {
		t.Errorf("missing duplicate warning: %q", out)
	}
}

func TestValidate_WarnsOnUndeclaredDependency(t *testing.T) {
	path := writeWorkflow(t, `[TASK id="a" depends="ghost"]
### A
`)

	out, err := runValidate(t, path)
	if err != nil {
		t.Fatalf("warnings must not fail validation: %v", err)
	}
	if !strings.Contains(out, `undeclared task "ghost"`) {
		t.Errorf("missing undeclared-dependency warning: %q", out)
	}
}

func TestValidate_EmptyWorkflowFails(t *testing.T) {
	path := writeWorkflow(t, "# No tasks here\n")

	_, err := runValidate(t, path)
	if err == nil {
		t.Fatal("expected error for workflow without tasks")
	}
}

func TestValidate_MissingFile(t *testing.T) {
	_, err := runValidate(t, "does-not-exist.md")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
