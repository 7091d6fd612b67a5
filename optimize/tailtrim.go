package optimize

import (
	"github.com/farregex/uniregex/chartype"
	"github.com/farregex/uniregex/compiler"
	"github.com/farregex/uniregex/opcode"
)

// TailBound reports the last position in window at which an anchored
// match attempt could possibly succeed, or len(window)+1 if no such
// bound can be proven (spec §5.7, grounded on
// original_source/unicode_far/RegExp.cpp:3860's TrimTail).
//
// HasLookahead or a top-level alternation disqualify the proof outright
// — a lookahead can inspect text beyond where the body itself ends, and
// an alternation's arms may disagree on which opcode is truly last, so
// both fall back to "no bound." Otherwise the pattern's final opcode
// (the one immediately preceding the run of implicit group closes at
// the very end of the program) is inspected directly: for a literal or
// single-unit-width opcode, window is scanned backward from its end to
// find the last code unit that opcode could still match, trimming the
// search window's effective end to just past it. The returned bound is
// that trimmed end minus the pattern's proven minimum length — tighter
// than plain min-length arithmetic whenever the window's tail can't
// satisfy the final opcode (e.g. pattern a.*z against a window that
// contains no 'z' trims away every start position, where min-length
// arithmetic alone would still try all of them).
func TailBound(pat *compiler.Pattern, window []uint16) int {
	if pat.HasLookahead || hasTopLevelAlternation(pat) {
		return len(window) + 1
	}

	minLen := pat.MinLength
	if minLen < 0 {
		minLen = 0
	}

	bound := trimTail(pat, window) - minLen
	if bound < 0 {
		return -1
	}
	return bound
}

// trimTail returns the last index (exclusive) of window the pattern's
// final opcode could still match through, mirroring TrimTail's backward
// scan. Returns len(window) unchanged when the final opcode isn't one
// of the single-code-unit kinds the scan understands, or when it's a
// starred (Min == 0) tail that may legitimately match zero times.
func trimTail(pat *compiler.Pattern, window []uint16) int {
	op := finalOpcode(pat)
	if op == nil {
		return len(window)
	}
	if op.IsQuantified() && op.Min == 0 {
		return len(window)
	}

	end := len(window) - 1 // index of the last code unit, scanning backward

	switch op.Tag {
	case opcode.Symbol, opcode.SymbolRange, opcode.SymbolMinRange:
		for end >= 0 && !symbolEq(pat, op.Sym, window[end]) {
			end--
		}
	case opcode.NotSymbol, opcode.NotSymbolRange, opcode.NotSymbolMinRange:
		for end >= 0 && symbolEq(pat, op.Sym, window[end]) {
			end--
		}
	case opcode.SymbolCI:
		for end >= 0 && chartype.ToLower(window[end]) != chartype.ToLower(op.Sym) {
			end--
		}
	case opcode.NotSymbolCI:
		for end >= 0 && chartype.ToLower(window[end]) == chartype.ToLower(op.Sym) {
			end--
		}
	case opcode.Type, opcode.TypeRange, opcode.TypeMinRange:
		for end >= 0 && !chartype.Mask(op.CharType).Test(window[end]) {
			end--
		}
	case opcode.NotType, opcode.NotTypeRange, opcode.NotTypeMinRange:
		for end >= 0 && chartype.Mask(op.CharType).Test(window[end]) {
			end--
		}
	case opcode.Class, opcode.ClassRange, opcode.ClassMinRange:
		for end >= 0 && !op.Class.Test(window[end]) {
			end--
		}
	default:
		// Any/AnyAll, groups, backrefs and the rest don't pin down a
		// single required code unit; no trim to apply.
		return len(window)
	}

	return end + 1
}

func symbolEq(pat *compiler.Pattern, a, b uint16) bool {
	if a == b {
		return true
	}
	return pat.CaseInsensitive && chartype.ToLower(a) == chartype.ToLower(b)
}

// finalOpcode returns the pattern body's last meaningful opcode: the
// instruction immediately preceding the implicit close of group 0,
// walking back through any nested group closes that themselves end
// exactly there and carry no alternation of their own (mirroring
// TrimTail's pairindex/nextalt walk). Returns nil when no single
// opcode can be pinned down as "last" (e.g. the very end of the body
// is itself an alternation arm, or a group quantified with a minimum
// of zero).
func finalOpcode(pat *compiler.Pattern) *opcode.Opcode {
	if hasTopLevelAlternation(pat) {
		return nil
	}

	from, to := bodyRange(pat)
	if to < from || to >= len(pat.Code) {
		return nil
	}

	i := to
	for i >= 0 && (pat.Code[i].Tag == opcode.CloseBracket || pat.Code[i].Tag == opcode.NamedCloseBracket) {
		open := pat.Code[i].Mate
		if open < 0 || open >= len(pat.Code) {
			return nil
		}
		if pat.Code[open].NextAlt != opcode.None {
			return nil
		}
		if (pat.Code[open].Tag == opcode.BracketRange || pat.Code[open].Tag == opcode.BracketMinRange) && pat.Code[open].Min == 0 {
			return nil // the group may match zero times, so its body need not come last
		}
		i--
	}
	if i < 0 {
		return nil
	}
	return &pat.Code[i]
}

func hasTopLevelAlternation(pat *compiler.Pattern) bool {
	from, _ := bodyRange(pat)
	if from >= len(pat.Code) || from <= 0 {
		return false
	}
	return pat.Code[from-1].NextAlt != opcode.None
}
