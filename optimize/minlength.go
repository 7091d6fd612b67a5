// Package optimize implements the compiled-pattern analysis passes that
// let uniregex's search loop skip hopeless positions without running the
// backtracker: a minimum-match-length pass, a first-character-set pass,
// a tail-trim bound, and the domain-stack prefilters (Aho-Corasick
// literal matching, CPU-feature-gated scan strides).
package optimize

import (
	"github.com/farregex/uniregex/compiler"
	"github.com/farregex/uniregex/opcode"
)

// Run applies every analysis pass to pat and stores their results back
// onto it (MinLength, FirstSet, Literals), so the root package's
// Search/SearchExtended can consult them without re-deriving
// anything. Safe to call on any compiled Pattern; passes that cannot
// prove anything leave their field at its zero/sentinel value.
func Run(pat *compiler.Pattern) {
	pat.MinLength = MinLength(pat)
	if fs, ok := FirstSet(pat); ok {
		pat.FirstSet = fs
	}
	pat.Literals = ExtractLiterals(pat)
}

// bodyRange returns the code-index span of the pattern's top-level body,
// excluding the implicit group-0 open/close and the trailing RegexpEnd
// (spec §5.5: the compiler wraps every pattern in group 0).
func bodyRange(pat *compiler.Pattern) (from, to int) {
	if len(pat.Code) < 2 {
		return 1, 0 // empty span
	}
	open := &pat.Code[0]
	return 1, open.Mate - 1
}

// MinLength computes a safe lower bound on the number of code units any
// match of pat can consume, summing per-opcode minimum consumption:
// groups open nested frames, alternation takes the smallest arm, and
// assertions contribute zero width (spec §5.7). Grounded on
// compiler.fixedWidth's walk shape (lookbehind.go), relaxed from "exact
// width or bail" to "minimum width, never bail" — unbounded quantifiers
// and back-references contribute their safe lower bound (Min, or 0)
// instead of aborting the whole pass.
func MinLength(pat *compiler.Pattern) int {
	from, to := bodyRange(pat)
	if to < from {
		return 0
	}
	return minLength(pat.Code, from, to)
}

func minLength(code []opcode.Opcode, from, to int) int {
	length := 0
	altLen := -1
	altCount := 0

	for i := from; i <= to; i++ {
		op := &code[i]
		switch {
		case op.IsAssertion():
			i = op.Mate
			continue

		case op.IsZeroWidth():
			continue

		case op.Tag == opcode.OpenBracket || op.Tag == opcode.NamedOpenBracket:
			inner := minLength(code, i+1, op.Mate-1)
			length += inner
			altCount += inner
			i = op.Mate
			continue

		case op.Tag == opcode.BracketRange || op.Tag == opcode.BracketMinRange:
			inner := minLength(code, i+1, op.Mate-1)
			length += op.Min * inner
			altCount += op.Min * inner
			i = op.Mate
			continue

		case op.Tag == opcode.CloseBracket || op.Tag == opcode.NamedCloseBracket:
			continue

		case op.Tag == opcode.Alternative:
			if altLen == -1 || altCount < altLen {
				altLen = altCount
			}
			altCount = 0
			continue

		case op.Tag == opcode.BackRef || op.Tag == opcode.NamedBackRef ||
			op.Tag == opcode.BackRefRange || op.Tag == opcode.NamedBackRefRange ||
			op.Tag == opcode.BackRefMinRange || op.Tag == opcode.NamedBackRefMinRange:
			// The referenced text's length isn't known statically; its
			// safe lower bound is 0 (the referenced group may have
			// captured an empty string).
			continue

		case op.IsQuantified():
			length += op.Min
			altCount += op.Min
			continue

		case op.Tag == opcode.NoReturn:
			continue

		default:
			if w, ok := op.UnitWidth(); ok {
				length += w
				altCount += w
			}
		}
	}

	if altLen != -1 {
		if altCount < altLen {
			altLen = altCount
		}
		return altLen
	}
	return length
}
