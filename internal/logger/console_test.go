package logger

import (
	"bytes"
	"strings"
	"testing"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/executor"
)

func TestEmit_RendersFramedSections(t *testing.T) {
	var buf bytes.Buffer
	cr := NewConsoleReporter(&buf, "info")

	cr.Emit(executor.Event{Kind: executor.KindPlan, Message: "Executing 2 tasks"})
	cr.Emit(executor.Event{Kind: executor.KindTaskStart, TaskID: "build", Message: "Build\n\nCompiles the project"})
	cr.Emit(executor.Event{Kind: executor.KindTaskDone, TaskID: "build", Message: "Task build completed"})
	cr.Emit(executor.Event{Kind: executor.KindSummary, Message: "All tasks have been completed successfully"})

	out := buf.String()
	for _, want := range []string{
		"=== Execution Plan ===",
		"Executing 2 tasks",
		"=== Task build ===",
		"Task build completed",
		"=== Process Completed ===",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestEmit_ChunksStreamInline(t *testing.T) {
	var buf bytes.Buffer
	cr := NewConsoleReporter(&buf, "info")

	cr.Emit(executor.Event{Kind: executor.KindChunk, Message: "Hello"})
	cr.Emit(executor.Event{Kind: executor.KindChunk, Message: ", world"})

	if got := buf.String(); got != "Hello, world" {
		t.Errorf("chunks should render without decoration, got %q", got)
	}

	// The next framed event terminates the inline stream first.
	cr.Emit(executor.Event{Kind: executor.KindTaskDone, Message: "done"})
	if !strings.HasPrefix(buf.String(), "Hello, world\n") {
		t.Errorf("stream not closed before framed output: %q", buf.String())
	}
}

func TestEmit_CommandEventsNeedDebugLevel(t *testing.T) {
	var info, debug bytes.Buffer

	NewConsoleReporter(&info, "info").Emit(executor.Event{
		Kind: executor.KindCommand, Command: "echo hi", Message: "Executing command",
	})
	NewConsoleReporter(&debug, "debug").Emit(executor.Event{
		Kind: executor.KindCommand, Command: "echo hi", Message: "Executing command",
	})

	if info.Len() != 0 {
		t.Errorf("command events should be hidden at info level: %q", info.String())
	}
	if !strings.Contains(debug.String(), "echo hi") {
		t.Errorf("command events should show at debug level: %q", debug.String())
	}
}

func TestEmit_EmptyOutputSuppressed(t *testing.T) {
	var buf bytes.Buffer
	cr := NewConsoleReporter(&buf, "info")

	cr.Emit(executor.Event{Kind: executor.KindOutput, Message: ""})

	if buf.Len() != 0 {
		t.Errorf("empty command output should render nothing: %q", buf.String())
	}
}

func TestLogLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	cr := NewConsoleReporter(&buf, "warn")

	cr.LogDebug("hidden")
	cr.LogInfo("also hidden")
	cr.LogWarn("shown")
	cr.LogError("also shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("messages below warn should be filtered: %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "also shown") {
		t.Errorf("warn and error messages should pass: %q", out)
	}
}

func TestNormalizeLogLevel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"DEBUG", "debug"},
		{" info ", "info"},
		{"", "info"},
		{"bogus", "info"},
		{"trace", "trace"},
	}
	for _, tt := range tests {
		if got := normalizeLogLevel(tt.in); got != tt.want {
			t.Errorf("normalizeLogLevel(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNilWriterIsSafe(t *testing.T) {
	cr := NewConsoleReporter(nil, "info")
	cr.Emit(executor.Event{Kind: executor.KindPlan, Message: "plan"})
	cr.LogInfo("message")
}
