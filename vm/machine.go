// Package vm implements the backtracking matcher that executes a
// compiler.Pattern's opcode program against a UTF-16 input buffer.
//
// The matcher is continuation-passing: every opcode handler is given the
// cursor it must resume from and a continuation k representing "the rest
// of the pattern", and calls k when it succeeds rather than looping to a
// fixed next index. Quantifiers and alternation build their own
// continuations to implement greedy/lazy repetition and multi-arm
// choice; every other opcode simply forwards the one it was given. This
// mirrors the source engine's recursive backtracking shape (grounded on
// nfa.BoundedBacktracker.backtrack) generalized from a graph of states to
// a linear opcode program with explicit cross-reference indices.
package vm

import (
	"github.com/farregex/uniregex/chartype"
	"github.com/farregex/uniregex/compiler"
	"github.com/farregex/uniregex/opcode"
)

// Machine executes one compiled Pattern. It holds no mutable state of
// its own, so one Machine can be shared across concurrent match
// attempts; each attempt allocates its own scratch state.
type Machine struct {
	pat *compiler.Pattern
}

// New returns a Machine for executing pat.
func New(pat *compiler.Pattern) *Machine {
	return &Machine{pat: pat}
}

// MatchAt attempts an anchored match of the pattern starting exactly at
// pos in text ("match" / "match-extended" entry points). obs may be nil.
// On success caps is overwritten with the match's captures; on failure
// caps is left unmodified.
func (m *Machine) MatchAt(text []uint16, pos int, caps *Captures, obs Observer) bool {
	a := newAttempt(m.pat, text, obs)
	ok := a.run(0, pos, func(end int) bool {
		a.caps[0] = Span{pos, end}
		return true
	})
	if !ok {
		return false
	}
	a.fillInto(caps)
	return true
}

// Search scans forward from from, trying an anchored match at each
// position in turn, and fills caps with the first that succeeds
// ("search" entry point).
func (m *Machine) Search(text []uint16, from int, caps *Captures, obs Observer) bool {
	for start := from; start <= len(text); start++ {
		if m.MatchAt(text, start, caps, obs) {
			return true
		}
	}
	return false
}

type attempt struct {
	code       []opcode.Opcode
	text       []uint16
	pattern    *compiler.Pattern
	caps       []Span
	namedStart map[string]int
	named      map[string]Span
	obs        Observer
	cut        bool
}

func newAttempt(pat *compiler.Pattern, text []uint16, obs Observer) *attempt {
	a := &attempt{
		code:       pat.Code,
		text:       text,
		pattern:    pat,
		caps:       make([]Span, pat.CaptureCount+1),
		namedStart: make(map[string]int),
		named:      make(map[string]Span),
		obs:        obs,
	}
	for i := range a.caps {
		a.caps[i] = Span{-1, -1}
	}
	return a
}

func (a *attempt) fillInto(caps *Captures) {
	groups := make([]Span, len(a.caps))
	for i, s := range a.caps {
		groups[i] = normalize(s)
	}
	named := make(map[string]Span, len(a.named))
	for k, s := range a.named {
		named[k] = normalize(s)
	}
	for _, name := range a.pattern.NamedGroups {
		if _, ok := named[name]; !ok {
			named[name] = Span{-1, -1}
		}
	}
	caps.fill(groups, named)
}

func (a *attempt) notify(ev Event) Signal {
	if a.obs == nil {
		return Continue
	}
	return a.obs.Observe(ev)
}

// run executes the opcode at pc starting from cursor, invoking k with
// the cursor reached once this opcode (and everything that logically
// follows within the same arm) has succeeded. It returns whether the
// whole continuation chain ultimately succeeded.
func (a *attempt) run(pc, cursor int, k func(int) bool) bool {
	op := &a.code[pc]

	switch op.Tag {
	case opcode.LineStart:
		if a.atLineStart(cursor) {
			return a.run(pc+1, cursor, k)
		}
		return false
	case opcode.LineEnd:
		if a.atLineEnd(cursor) {
			return a.run(pc+1, cursor, k)
		}
		return false
	case opcode.DataStart:
		if cursor == 0 {
			return a.run(pc+1, cursor, k)
		}
		return false
	case opcode.DataEnd:
		if cursor == len(a.text) {
			return a.run(pc+1, cursor, k)
		}
		return false
	case opcode.WordBound:
		if a.atWordBoundary(cursor) {
			return a.run(pc+1, cursor, k)
		}
		return false
	case opcode.NotWordBound:
		if !a.atWordBoundary(cursor) {
			return a.run(pc+1, cursor, k)
		}
		return false

	case opcode.Any, opcode.AnyAll, opcode.Symbol, opcode.SymbolCI, opcode.NotSymbol, opcode.NotSymbolCI,
		opcode.Type, opcode.NotType, opcode.Class:
		if cursor >= len(a.text) || !a.testAtom(op, a.text[cursor]) {
			return false
		}
		return a.run(pc+1, cursor+1, k)

	case opcode.SymbolRange, opcode.SymbolMinRange, opcode.NotSymbolRange, opcode.NotSymbolMinRange,
		opcode.AnyRange, opcode.AnyMinRange, opcode.TypeRange, opcode.TypeMinRange,
		opcode.NotTypeRange, opcode.NotTypeMinRange, opcode.ClassRange, opcode.ClassMinRange:
		return a.repeatAtom(pc, cursor, 0, k)

	case opcode.OpenBracket, opcode.NamedOpenBracket:
		return a.enterGroup(pc, cursor, k)

	case opcode.CloseBracket, opcode.NamedCloseBracket:
		return a.closeGroup(pc, cursor, k)

	case opcode.BracketRange, opcode.BracketMinRange:
		return a.repeatGroup(pc, cursor, 0, k)

	case opcode.Alternative:
		return a.run(op.GroupEnd, cursor, k)

	case opcode.BackRef:
		ref, ok := a.backrefText(op.RefIndex, "")
		if !ok || !a.hasPrefix(cursor, ref) {
			return false
		}
		return a.run(pc+1, cursor+len(ref), k)
	case opcode.NamedBackRef:
		ref, ok := a.backrefText(opcode.None, op.RefName)
		if !ok || !a.hasPrefix(cursor, ref) {
			return false
		}
		return a.run(pc+1, cursor+len(ref), k)
	case opcode.BackRefRange, opcode.BackRefMinRange:
		ref, ok := a.backrefText(op.RefIndex, "")
		if !ok {
			return op.Min == 0 && a.run(pc+1, cursor, k)
		}
		return a.repeatBackref(pc, cursor, 0, ref, k)
	case opcode.NamedBackRefRange, opcode.NamedBackRefMinRange:
		ref, ok := a.backrefText(opcode.None, op.RefName)
		if !ok {
			return op.Min == 0 && a.run(pc+1, cursor, k)
		}
		return a.repeatBackref(pc, cursor, 0, ref, k)

	case opcode.LookAhead, opcode.NotLookAhead:
		return a.lookahead(pc, cursor, k)
	case opcode.LookBehind, opcode.NotLookBehind:
		return a.lookbehind(pc, cursor, k)
	case opcode.LookAheadClose, opcode.NotLookAheadClose, opcode.LookBehindClose, opcode.NotLookBehindClose:
		return k(cursor)

	case opcode.NoReturn:
		a.cut = true
		return a.run(pc+1, cursor, k)

	case opcode.RegexpEnd:
		return k(cursor)
	}

	return false
}

// tryArms tries each alternative arm of the group/assertion opening at
// openIdx in turn, each with the same continuation k, stopping at the
// first that succeeds.
func (a *attempt) tryArms(openIdx, cursor int, k func(int) bool) bool {
	op := &a.code[openIdx]
	armPC := openIdx + 1
	next := op.NextAlt
	for {
		if a.run(armPC, cursor, k) {
			return true
		}
		if a.cut || next == opcode.None {
			return false
		}
		armPC = next + 1
		next = a.code[next].NextAlt
	}
}

func (a *attempt) enterGroup(openIdx, cursor int, k func(int) bool) bool {
	op := &a.code[openIdx]

	if op.Tag == opcode.NamedOpenBracket {
		prev, had := a.namedStart[op.GroupName]
		a.namedStart[op.GroupName] = cursor
		ok := a.tryArms(openIdx, cursor, k)
		if !ok {
			if had {
				a.namedStart[op.GroupName] = prev
			} else {
				delete(a.namedStart, op.GroupName)
			}
		}
		return ok
	}

	gi := op.GroupIndex
	if gi == opcode.None {
		return a.tryArms(openIdx, cursor, k)
	}
	saved := a.caps[gi]
	a.caps[gi] = Span{cursor, -1}
	ok := a.tryArms(openIdx, cursor, k)
	if !ok {
		a.caps[gi] = saved
	}
	return ok
}

func (a *attempt) closeGroup(closeIdx, cursor int, k func(int) bool) bool {
	op := &a.code[closeIdx]

	// A quantified group's k is repeatGroup's continuation, which itself
	// decides between another iteration and the opcodes after the group.
	cont := func(c int) bool { return a.run(closeIdx+1, c, k) }
	if opener := a.code[op.Mate].Tag; opener == opcode.BracketRange || opener == opcode.BracketMinRange {
		cont = k
	}

	if op.Tag == opcode.NamedCloseBracket {
		name := op.GroupName
		start := a.namedStart[name]
		prev, had := a.named[name]
		a.named[name] = Span{start, cursor}
		if a.notify(Event{GroupIndex: opcode.None, GroupName: name, Span: a.named[name]}) == Cancel {
			a.restoreNamed(name, prev, had)
			return false
		}
		ok := cont(cursor)
		if !ok {
			a.notify(Event{GroupIndex: opcode.None, GroupName: name, Span: a.named[name], Backtrack: true})
			a.restoreNamed(name, prev, had)
		}
		return ok
	}

	gi := op.GroupIndex
	if gi == opcode.None {
		return cont(cursor)
	}
	saved := a.caps[gi]
	a.caps[gi] = Span{a.caps[gi].Start, cursor}
	if a.notify(Event{GroupIndex: gi, Span: a.caps[gi]}) == Cancel {
		a.caps[gi] = saved
		return false
	}
	ok := cont(cursor)
	if !ok {
		a.notify(Event{GroupIndex: gi, Span: a.caps[gi], Backtrack: true})
		a.caps[gi] = saved
	}
	return ok
}

func (a *attempt) restoreNamed(name string, prev Span, had bool) {
	if had {
		a.named[name] = prev
	} else {
		delete(a.named, name)
	}
}

// repeatGroup implements BracketRange/BracketMinRange: repeatedly enters
// the group body (count times so far), then either tries one more
// iteration or proceeds past the group, in the order its greediness
// dictates. A zero-width iteration is accepted once and never retried,
// preventing infinite loops on bodies that can match empty.
func (a *attempt) repeatGroup(openIdx, cursor, count int, k func(int) bool) bool {
	op := &a.code[openIdx]
	lazy := op.Tag == opcode.BracketMinRange

	tryMore := func() bool {
		if count >= op.Max {
			return false
		}
		moreK := func(newCursor int) bool {
			if newCursor == cursor {
				return a.run(op.Mate+1, newCursor, k)
			}
			return a.repeatGroup(openIdx, newCursor, count+1, k)
		}
		return a.enterGroup(openIdx, cursor, moreK)
	}
	tryDone := func() bool {
		if count < op.Min {
			return false
		}
		return a.run(op.Mate+1, cursor, k)
	}

	if lazy {
		if tryDone() {
			return true
		}
		if a.cut {
			return false
		}
		return tryMore()
	}
	if tryMore() {
		return true
	}
	if a.cut {
		return false
	}
	return tryDone()
}

// repeatAtom implements the *Range/*MinRange quantifiers on simple
// single-code-unit atoms (Symbol, Any, Type, Class and their negations).
func (a *attempt) repeatAtom(pc, cursor, count int, k func(int) bool) bool {
	op := &a.code[pc]
	lazy := op.IsMinimizing()

	tryMore := func() bool {
		if count >= op.Max || cursor >= len(a.text) || !a.testAtom(op, a.text[cursor]) {
			return false
		}
		return a.repeatAtom(pc, cursor+1, count+1, k)
	}
	tryDone := func() bool {
		if count < op.Min {
			return false
		}
		return a.run(pc+1, cursor, k)
	}

	if lazy {
		if tryDone() {
			return true
		}
		return tryMore()
	}
	if tryMore() {
		return true
	}
	return tryDone()
}

// repeatBackref implements BackRefRange/BackRefMinRange and their named
// counterparts: the quantifier repeats a match of the same fixed
// reference text.
func (a *attempt) repeatBackref(pc, cursor, count int, ref []uint16, k func(int) bool) bool {
	op := &a.code[pc]
	lazy := op.Tag == opcode.BackRefMinRange || op.Tag == opcode.NamedBackRefMinRange

	tryMore := func() bool {
		if count >= op.Max || !a.hasPrefix(cursor, ref) {
			return false
		}
		return a.repeatBackref(pc, cursor+len(ref), count+1, ref, k)
	}
	tryDone := func() bool {
		if count < op.Min {
			return false
		}
		return a.run(pc+1, cursor, k)
	}

	if lazy {
		if tryDone() {
			return true
		}
		return tryMore()
	}
	if tryMore() {
		return true
	}
	return tryDone()
}

// lookahead and lookbehind probe their body without consuming input. A
// successful probe commits any capture side effects from groups nested
// inside the assertion (they remain visible after a positive match, per
// common Perl-family semantics); a probe outcome that is then discarded
// (the body matched but the assertion is negative) has its capture side
// effects rolled back so they cannot leak into a sibling alternative.
func (a *attempt) lookahead(pc, cursor int, k func(int) bool) bool {
	op := &a.code[pc]
	want := op.Tag == opcode.LookAhead

	var savedCaps []Span
	var savedNamed map[string]Span
	if !want {
		savedCaps, savedNamed = a.snapshot()
	}
	matched := a.tryArms(pc, cursor, func(int) bool { return true })
	if matched != want {
		if !want && matched {
			a.restore(savedCaps, savedNamed)
		}
		return false
	}
	return a.run(op.Mate+1, cursor, k)
}

func (a *attempt) lookbehind(pc, cursor int, k func(int) bool) bool {
	op := &a.code[pc]
	want := op.Tag == opcode.LookBehind
	start := cursor - op.FixedWidth

	var savedCaps []Span
	var savedNamed map[string]Span
	if !want {
		savedCaps, savedNamed = a.snapshot()
	}
	matched := false
	if start >= 0 {
		matched = a.tryArms(pc, start, func(end int) bool { return end == cursor })
	}
	if matched != want {
		if !want && matched {
			a.restore(savedCaps, savedNamed)
		}
		return false
	}
	return a.run(op.Mate+1, cursor, k)
}

func (a *attempt) snapshot() ([]Span, map[string]Span) {
	caps := make([]Span, len(a.caps))
	copy(caps, a.caps)
	named := make(map[string]Span, len(a.named))
	for k, v := range a.named {
		named[k] = v
	}
	return caps, named
}

func (a *attempt) restore(caps []Span, named map[string]Span) {
	copy(a.caps, caps)
	a.named = named
}

func (a *attempt) backrefText(groupIndex int, name string) ([]uint16, bool) {
	var s Span
	if name != "" {
		v, ok := a.named[name]
		if !ok {
			return nil, false
		}
		s = v
	} else {
		if groupIndex < 0 || groupIndex >= len(a.caps) {
			return nil, false
		}
		s = a.caps[groupIndex]
	}
	if !s.Matched() || s.Start > s.End {
		return nil, false
	}
	return a.text[s.Start:s.End], true
}

func (a *attempt) hasPrefix(cursor int, ref []uint16) bool {
	if cursor+len(ref) > len(a.text) {
		return false
	}
	for i, r := range ref {
		if !a.charEq(r, a.text[cursor+i]) {
			return false
		}
	}
	return true
}

func (a *attempt) testAtom(op *opcode.Opcode, c uint16) bool {
	switch op.Tag {
	case opcode.Symbol, opcode.SymbolCI, opcode.SymbolRange, opcode.SymbolMinRange:
		return a.charEq(op.Sym, c)
	case opcode.NotSymbol, opcode.NotSymbolCI, opcode.NotSymbolRange, opcode.NotSymbolMinRange:
		return !a.charEq(op.Sym, c)
	case opcode.Any:
		return c != '\r' && c != '\n'
	case opcode.AnyAll:
		return true
	case opcode.AnyRange, opcode.AnyMinRange:
		if a.pattern.SingleLine {
			return true
		}
		return c != '\r' && c != '\n'
	case opcode.Type, opcode.TypeRange, opcode.TypeMinRange:
		return chartype.Mask(op.CharType).Test(c)
	case opcode.NotType, opcode.NotTypeRange, opcode.NotTypeMinRange:
		return !chartype.Mask(op.CharType).Test(c)
	case opcode.Class, opcode.ClassRange, opcode.ClassMinRange:
		return op.Class.Test(c)
	}
	return false
}

func (a *attempt) charEq(x, y uint16) bool {
	if x == y {
		return true
	}
	if a.pattern.CaseInsensitive {
		return chartype.ToLower(x) == chartype.ToLower(y)
	}
	return false
}

func (a *attempt) atLineStart(pos int) bool {
	if pos == 0 {
		return true
	}
	if !a.pattern.Multiline {
		return false
	}
	return a.text[pos-1] == '\n' || a.text[pos-1] == '\r'
}

func (a *attempt) atLineEnd(pos int) bool {
	if pos == len(a.text) {
		return true
	}
	if !a.pattern.Multiline {
		return false
	}
	return a.text[pos] == '\n' || a.text[pos] == '\r'
}

func (a *attempt) atWordBoundary(pos int) bool {
	before := pos > 0 && chartype.IsWord(a.text[pos-1])
	after := pos < len(a.text) && chartype.IsWord(a.text[pos])
	return before != after
}
