package executor

// EventKind classifies reporter events.
type EventKind int

const (
	// KindPlan announces the informational execution plan.
	KindPlan EventKind = iota
	// KindTaskStart announces a task entering execution.
	KindTaskStart
	// KindTaskDone announces a task marked completed.
	KindTaskDone
	// KindCommand announces a command about to be dispatched.
	KindCommand
	// KindOutput carries command or query output for the operator.
	KindOutput
	// KindChunk carries one streamed fragment of an AI response.
	KindChunk
	// KindRestricted announces a command denied by the safety policy.
	KindRestricted
	// KindError carries a recovered per-command or structural error.
	KindError
	// KindSummary carries the final run summary line.
	KindSummary
)

// Event is one unit of operator-facing progress information. The executor
// never renders output itself; everything flows through a Reporter.
type Event struct {
	Kind    EventKind
	TaskID  string // Owning task id, when applicable
	Command string // Command text, when applicable
	Message string // Human-readable content
}

// Reporter receives execution progress events. Implementations must be
// safe for use from a single workflow run; the executor emits sequentially.
type Reporter interface {
	Emit(event Event)
}

// NopReporter discards all events. Useful for tests.
type NopReporter struct{}

// Emit is a no-op implementation.
func (NopReporter) Emit(Event) {}
