package optimize

import (
	"github.com/farregex/uniregex/chartype"
	"github.com/farregex/uniregex/compiler"
	"github.com/farregex/uniregex/opcode"
	"github.com/farregex/uniregex/uniset"
)

// FirstSet proves the set of code units pat's match can possibly start
// with, or reports ok=false if no such set can be proven statically
// (spec §5.7: "aborting to no first set on ambiguous leading opcodes").
// A returned set is a positive statement — uniregex's search loop may
// skip any position whose code unit fails Test, but a failed proof must
// never be treated as "matches nothing starts here"; it only means the
// cheap pre-check isn't available for this pattern.
func FirstSet(pat *compiler.Pattern) (*uniset.Set, bool) {
	if len(pat.Code) == 0 {
		return nil, false
	}
	// Group 0 (the pattern's implicit wrapper) may itself carry a
	// top-level alternation directly (e.g. "cat|dog", no explicit
	// (?:...) wrapper) — bodyRange already skips past its open bracket,
	// so that alternation must be detected here rather than by the
	// generic scan below, which only recognizes a nested OpenBracket.
	if pat.Code[0].NextAlt != opcode.None {
		return firstSetOfAlternation(pat.Code, 0, pat.CaseInsensitive)
	}
	from, to := bodyRange(pat)
	return firstSetOfSequence(pat.Code, from, to, pat.CaseInsensitive)
}

// firstSetOfSequence finds the first opcode in code[from:to] that is
// certain to execute and certain to consume at least one code unit,
// and returns the set of code units it can match. It bails (ok=false)
// the moment it meets a construct whose leading character can't be
// pinned down: a nullable atom/group, a back-reference, or an opcode
// whose match predicate is too broad to be a useful restriction (Any,
// a negated symbol).
func firstSetOfSequence(code []opcode.Opcode, from, to int, caseInsensitive bool) (*uniset.Set, bool) {
	for i := from; i <= to; i++ {
		op := &code[i]

		switch {
		case op.Tag == opcode.LineStart || op.Tag == opcode.LineEnd ||
			op.Tag == opcode.DataStart || op.Tag == opcode.DataEnd ||
			op.Tag == opcode.WordBound || op.Tag == opcode.NotWordBound ||
			op.Tag == opcode.NoReturn:
			continue // zero-width, doesn't restrict the next code unit

		case op.IsAssertion():
			i = op.Mate // lookaround body is zero-width; skip it entirely
			continue

		case op.Tag == opcode.OpenBracket || op.Tag == opcode.NamedOpenBracket:
			if op.NextAlt != opcode.None {
				return firstSetOfAlternation(code, i, caseInsensitive)
			}
			return firstSetOfSequence(code, i+1, op.Mate-1, caseInsensitive)

		case op.Tag == opcode.BracketRange || op.Tag == opcode.BracketMinRange:
			if op.Min == 0 {
				return nil, false // the group may be skipped; the true first opcode is ambiguous
			}
			if op.NextAlt != opcode.None {
				return firstSetOfAlternation(code, i, caseInsensitive)
			}
			return firstSetOfSequence(code, i+1, op.Mate-1, caseInsensitive)

		case op.IsQuantified():
			if op.Min == 0 {
				return nil, false
			}
			return setFromPredicate(op, caseInsensitive)

		case op.Tag == opcode.BackRef || op.Tag == opcode.NamedBackRef ||
			op.Tag == opcode.BackRefRange || op.Tag == opcode.NamedBackRefRange ||
			op.Tag == opcode.BackRefMinRange || op.Tag == opcode.NamedBackRefMinRange:
			return nil, false // referenced text unknown at compile time

		default:
			return setFromPredicate(op, caseInsensitive)
		}
	}
	return nil, false // the whole span can match empty: ambiguous
}

// firstSetOfAlternation unions the first sets of every arm of the
// alternation opened at openIdx, walking the NextAlt chain the same way
// vm.attempt.tryArms does at match time. Any arm that can't prove its
// own first set aborts the whole union (spec: "no top-level alternation
// can match empty" — the same caution extends to any arm being
// otherwise unprovable).
func firstSetOfAlternation(code []opcode.Opcode, openIdx int, caseInsensitive bool) (*uniset.Set, bool) {
	op := &code[openIdx]
	acc := uniset.New()
	armPC := openIdx + 1
	next := op.NextAlt
	for {
		armEnd := op.Mate - 1
		if next != opcode.None {
			armEnd = next - 1
		}
		armSet, ok := firstSetOfSequence(code, armPC, armEnd, caseInsensitive)
		if !ok {
			return nil, false
		}
		mergeInto(acc, armSet)
		if next == opcode.None {
			break
		}
		armPC = next + 1
		next = code[next].NextAlt
	}
	return acc, true
}

// setFromPredicate builds a uniset.Set by full-range enumeration against
// op's single-code-unit match predicate, or reports ok=false if op's
// predicate is too broad to be worth proving (Any/AnyAll match almost
// everything; a negated symbol excludes exactly one code unit out of
// 65536, neither narrows the search meaningfully).
func setFromPredicate(op *opcode.Opcode, caseInsensitive bool) (*uniset.Set, bool) {
	var test func(c uint16) bool

	switch op.Tag {
	case opcode.Symbol, opcode.SymbolCI, opcode.SymbolRange, opcode.SymbolMinRange:
		sym := op.Sym
		folds := caseInsensitive || op.Tag == opcode.SymbolCI
		test = func(c uint16) bool {
			if c == sym {
				return true
			}
			if folds {
				return chartype.ToLower(c) == chartype.ToLower(sym)
			}
			return false
		}
	case opcode.Type, opcode.TypeRange, opcode.TypeMinRange:
		mask := chartype.Mask(op.CharType)
		test = mask.Test
	case opcode.NotType, opcode.NotTypeRange, opcode.NotTypeMinRange:
		mask := chartype.Mask(op.CharType)
		test = func(c uint16) bool { return !mask.Test(c) }
	case opcode.Class, opcode.ClassRange, opcode.ClassMinRange:
		test = op.Class.Test
	default:
		return nil, false
	}

	set := uniset.New()
	for c := 0; c <= 0xFFFF; c++ {
		if test(uint16(c)) {
			set.Add(uint16(c))
		}
	}
	return set, true
}

// mergeInto adds every code unit src matches to dst, by full-range
// enumeration against src.Test. This works regardless of src's internal
// representation (bitmap, type mask, negation) since Test is the only
// contract a uniset.Set promises.
func mergeInto(dst, src *uniset.Set) {
	for c := 0; c <= 0xFFFF; c++ {
		if src.Test(uint16(c)) {
			dst.Add(uint16(c))
		}
	}
}
