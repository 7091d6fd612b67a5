package vm

// Span is a half-open (start, end) code-unit range within the matched
// text. A group that did not participate in the match is normalized to
// Span{-1, -1} (spec §4.7).
type Span struct {
	Start, End int
}

// Matched reports whether the span denotes a participating capture.
func (s Span) Matched() bool {
	return s.Start >= 0 && s.End >= 0
}

func normalize(s Span) Span {
	if s.Start < 0 || s.End < 0 || s.Start > s.End {
		return Span{-1, -1}
	}
	return s
}

// Captures holds the outcome of one successful match: the whole-match
// span, every positional capturing group's span (dense, 1-based, index 0
// is the whole match), and every named group's span in a separate
// namespace (spec §3: positional and named captures are parallel
// systems, not merged).
//
// Captures is reusable: callers may allocate one with NewCaptures and
// pass the same instance to successive Machine.MatchAt/Search calls,
// which overwrite its contents in place rather than allocating a fresh
// result each time (spec §6's concurrency/resource model).
type Captures struct {
	groups []Span
	named  map[string]Span
}

// NewCaptures returns an empty, reusable Captures.
func NewCaptures() *Captures {
	return &Captures{named: make(map[string]Span)}
}

// Reset clears c so it can be reused for a new match attempt.
func (c *Captures) Reset() {
	c.groups = c.groups[:0]
	for k := range c.named {
		delete(c.named, k)
	}
}

func (c *Captures) fill(groups []Span, named map[string]Span) {
	c.groups = append(c.groups[:0], groups...)
	if c.named == nil {
		c.named = make(map[string]Span, len(named))
	}
	for k := range c.named {
		delete(c.named, k)
	}
	for k, v := range named {
		c.named[k] = v
	}
}

// NumGroups returns the number of positional groups, including group 0
// (the whole match).
func (c *Captures) NumGroups() int {
	return len(c.groups)
}

// Group returns the span of positional group i (0 is the whole match).
// ok is false if i is out of range.
func (c *Captures) Group(i int) (span Span, ok bool) {
	if i < 0 || i >= len(c.groups) {
		return Span{-1, -1}, false
	}
	return c.groups[i], true
}

// Named returns the span of the named group with the given name. ok is
// false if no such named group exists in the pattern.
func (c *Captures) Named(name string) (span Span, ok bool) {
	s, ok := c.named[name]
	if !ok {
		return Span{-1, -1}, false
	}
	return s, true
}

// NamedGroups returns the set of named-group names this pattern declares,
// regardless of whether each one participated in this particular match.
func (c *Captures) NamedGroups() map[string]Span {
	out := make(map[string]Span, len(c.named))
	for k, v := range c.named {
		out[k] = v
	}
	return out
}
