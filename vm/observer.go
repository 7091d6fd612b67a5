package vm

// Signal is the two-state response an Observer gives at each checkpoint.
type Signal uint8

const (
	// Continue lets the matcher proceed normally.
	Continue Signal = iota
	// Cancel aborts the current match attempt immediately.
	Cancel
)

// Event describes one capture checkpoint the matcher reached: a group
// either just closed (Backtrack false) or is being unwound because the
// rest of the pattern failed to match past it (Backtrack true).
type Event struct {
	GroupIndex int // positional group index, or opcode.None for a named group
	GroupName  string
	Span       Span
	Backtrack  bool
}

// Observer is consulted at every bracket close and rollback during
// match-extended, letting a caller inspect or cut short a match attempt
// mid-flight. A nil Observer is equivalent to one that always returns
// Continue.
type Observer interface {
	Observe(Event) Signal
}
