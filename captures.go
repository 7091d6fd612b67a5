package uniregex

import "github.com/farregex/uniregex/vm"

// Captures holds the outcome of one successful match: the whole-match span
// (group 0), every positional capturing group's span, and every named
// group's span in a separate namespace (spec §3: positional and named
// captures are parallel systems). Captures is reusable — allocate one with
// NewCaptures and pass the same instance to successive Match/Search calls;
// each successful call overwrites its contents in place rather than
// allocating a fresh result, and a call that does not match leaves them
// unchanged (spec §6's concurrency/resource model).
type Captures struct {
	c *vm.Captures
}

// NewCaptures returns an empty, reusable Captures.
func NewCaptures() *Captures {
	return &Captures{c: vm.NewCaptures()}
}

// Reset clears c so it can be reused for a new match attempt.
func (c *Captures) Reset() {
	c.c.Reset()
}

func (c *Captures) inner() *vm.Captures {
	return c.c
}

// NumGroups returns the number of positional groups, including group 0
// (the whole match).
func (c *Captures) NumGroups() int {
	return c.c.NumGroups()
}

// Group returns the (start, end) span of positional group i (0 is the
// whole match). ok is false if i is out of range or the group did not
// participate in the match.
func (c *Captures) Group(i int) (start, end int, ok bool) {
	span, exists := c.c.Group(i)
	if !exists || !span.Matched() {
		return -1, -1, false
	}
	return span.Start, span.End, true
}

// Named returns the (start, end) span of the named group with the given
// name. ok is false if no such named group exists in the pattern, or it
// did not participate in this match.
func (c *Captures) Named(name string) (start, end int, ok bool) {
	span, exists := c.c.Named(name)
	if !exists || !span.Matched() {
		return -1, -1, false
	}
	return span.Start, span.End, true
}
