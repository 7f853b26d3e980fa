package execution

// Event kinds reported to a Listener.
const (
	// EventNode - a node completed (or failed) inside a traversal.
	EventNode = "node"
	// EventEnd - a traversal ended because an outcome had no successor.
	EventEnd = "end"
	// EventWarn - a non-fatal misuse diagnostic.
	EventWarn = "warn"
)

// Event describes a single engine occurrence. Err is set on node failures;
// Message carries human-readable diagnostics for EventEnd and EventWarn.
type Event struct {
	Kind    string
	Node    string
	Outcome string
	Err     error
	Message string
}

// Listener observes engine diagnostics. It replaces any process-global
// warning channel: a nil listener keeps the engine silent.
//
// For convenience the listener is defined as a function type rather than an
// interface; users can therefore pass a plain function literal.
type Listener func(event Event)
