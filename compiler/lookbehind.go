package compiler

import "github.com/farregex/uniregex/opcode"

// fixedWidth walks the opcodes in code[from:to] (inclusive of `to`,
// i.e. [from, to]) and returns their combined fixed width, or ok=false
// if the span has no single statically-known width — because it
// contains a back-reference, an unbounded or variable-count range, or
// because its own top-level alternation has arms of unequal width.
// Grounded on original_source/unicode_far/RegExp.cpp's CalcPatternLength.
func fixedWidth(code []opcode.Opcode, from, to int) (width int, ok bool) {
	length := 0
	altLen := -1
	altCount := 0

	for i := from; i <= to; i++ {
		op := &code[i]
		switch {
		case op.IsAssertion():
			i = op.Mate // skip the whole lookaround body; it contributes 0
			continue

		case op.IsZeroWidth():
			continue

		case op.Tag == opcode.OpenBracket || op.Tag == opcode.NamedOpenBracket:
			inner, innerOK := fixedWidth(code, i+1, op.Mate-1)
			if !innerOK {
				return 0, false
			}
			length += inner
			altCount += inner
			i = op.Mate
			continue

		case op.Tag == opcode.BracketRange || op.Tag == opcode.BracketMinRange:
			if op.Min != op.Max || op.Max == opcode.Unbounded {
				return 0, false
			}
			inner, innerOK := fixedWidth(code, i+1, op.Mate-1)
			if !innerOK {
				return 0, false
			}
			length += op.Min * inner
			altCount += op.Min * inner
			i = op.Mate
			continue

		case op.Tag == opcode.CloseBracket || op.Tag == opcode.NamedCloseBracket:
			continue

		case op.Tag == opcode.Alternative:
			if altLen != -1 && altCount != altLen {
				return 0, false
			}
			altLen = altCount
			altCount = 0
			continue

		case op.Tag == opcode.BackRef || op.Tag == opcode.NamedBackRef ||
			op.Tag == opcode.BackRefRange || op.Tag == opcode.BackRefMinRange ||
			op.Tag == opcode.NamedBackRefRange || op.Tag == opcode.NamedBackRefMinRange:
			return 0, false

		case op.IsQuantified():
			if op.Min != op.Max || op.Max == opcode.Unbounded {
				return 0, false
			}
			length += op.Min
			altCount += op.Min
			continue

		case op.Tag == opcode.NoReturn:
			continue

		default:
			// Unit-width unquantified opcode: Any, AnyAll, Symbol,
			// NotSymbol, SymbolCI, NotSymbolCI, Type, NotType, Class.
			if w, wok := op.UnitWidth(); wok {
				length += w
				altCount += w
				continue
			}
			return 0, false
		}
	}

	if altLen != -1 && altLen != altCount {
		return 0, false
	}
	if altLen != -1 {
		return altLen, true
	}
	return length, true
}
