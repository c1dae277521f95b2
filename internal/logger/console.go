// Package logger provides the operator-facing console reporter.
//
// Output is prefixed with [HH:MM:SS] timestamps and filtered by log level.
// Color is enabled automatically when writing to a TTY.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/AtlasServer-Core/AtlasAI-CLI/internal/executor"
)

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// ConsoleReporter renders executor events and leveled log messages to a
// writer. It is safe for concurrent use.
type ConsoleReporter struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
	streaming   bool // True while AI chunks are being written inline
}

// NewConsoleReporter creates a ConsoleReporter writing to the provided
// writer. If writer is nil, output is silently discarded. logLevel is one
// of trace, debug, info, warn, error (case-insensitive); empty or invalid
// values default to "info".
func NewConsoleReporter(writer io.Writer, logLevel string) *ConsoleReporter {
	return &ConsoleReporter{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a TTY that supports colors.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	if color.NoColor {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// normalizeLogLevel lowercases and validates a level, defaulting to "info".
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

func (cr *ConsoleReporter) shouldLog(messageLevel string) bool {
	return logLevelToInt(messageLevel) >= logLevelToInt(cr.logLevel)
}

// Emit implements executor.Reporter. Plan, task and summary events render
// as framed sections; AI chunks stream inline without decoration.
func (cr *ConsoleReporter) Emit(event executor.Event) {
	if cr.writer == nil {
		return
	}

	cr.mutex.Lock()
	defer cr.mutex.Unlock()

	if event.Kind != executor.KindChunk && cr.streaming {
		// Close the inline stream before the next framed line.
		fmt.Fprintln(cr.writer)
		cr.streaming = false
	}

	switch event.Kind {
	case executor.KindPlan:
		cr.section("Execution Plan", event.Message, color.FgBlue)
	case executor.KindTaskStart:
		cr.section(fmt.Sprintf("Task %s", event.TaskID), event.Message, color.FgBlue)
	case executor.KindTaskDone:
		cr.line(cr.paint(event.Message, color.FgGreen))
	case executor.KindCommand:
		if cr.shouldLog("debug") {
			cr.line(fmt.Sprintf("%s: %s", event.Message, cr.paint(event.Command, color.FgYellow)))
		}
	case executor.KindOutput:
		if event.Message != "" {
			cr.section("Command Output", event.Message, color.FgGreen)
		}
	case executor.KindChunk:
		fmt.Fprint(cr.writer, event.Message)
		cr.streaming = true
	case executor.KindRestricted:
		cr.section("Command Restricted", event.Message, color.FgYellow)
	case executor.KindError:
		cr.line(cr.paint("Error: ", color.FgRed) + event.Message)
	case executor.KindSummary:
		cr.section("Process Completed", event.Message, color.FgGreen)
	}
}

// LogDebug logs a debug-level message.
func (cr *ConsoleReporter) LogDebug(message string) { cr.logWithLevel("DEBUG", message) }

// LogInfo logs an info-level message.
func (cr *ConsoleReporter) LogInfo(message string) { cr.logWithLevel("INFO", message) }

// LogWarn logs a warning-level message.
func (cr *ConsoleReporter) LogWarn(message string) { cr.logWithLevel("WARN", message) }

// LogError logs an error-level message.
func (cr *ConsoleReporter) LogError(message string) { cr.logWithLevel("ERROR", message) }

func (cr *ConsoleReporter) logWithLevel(level, message string) {
	if cr.writer == nil || !cr.shouldLog(strings.ToLower(level)) {
		return
	}

	cr.mutex.Lock()
	defer cr.mutex.Unlock()

	coloredLevel := level
	if cr.colorOutput {
		switch level {
		case "DEBUG":
			coloredLevel = color.New(color.FgCyan).Sprint(level)
		case "INFO":
			coloredLevel = color.New(color.FgBlue).Sprint(level)
		case "WARN":
			coloredLevel = color.New(color.FgYellow).Sprint(level)
		case "ERROR":
			coloredLevel = color.New(color.FgRed).Sprint(level)
		}
	}

	fmt.Fprintf(cr.writer, "[%s] [%s] %s\n", timestamp(), coloredLevel, message)
}

// section writes a titled block: a painted title line, the body indented.
func (cr *ConsoleReporter) section(title, body string, attr color.Attribute) {
	fmt.Fprintf(cr.writer, "[%s] %s\n", timestamp(), cr.paint("=== "+title+" ===", attr, color.Bold))
	for _, line := range strings.Split(strings.TrimRight(body, "\n"), "\n") {
		fmt.Fprintf(cr.writer, "    %s\n", line)
	}
}

func (cr *ConsoleReporter) line(message string) {
	fmt.Fprintf(cr.writer, "[%s] %s\n", timestamp(), message)
}

// paint applies color attributes when color output is enabled.
func (cr *ConsoleReporter) paint(s string, attrs ...color.Attribute) string {
	if !cr.colorOutput {
		return s
	}
	return color.New(attrs...).Sprint(s)
}

// timestamp returns the current time formatted as "15:04:05".
func timestamp() string {
	return time.Now().Format("15:04:05")
}
