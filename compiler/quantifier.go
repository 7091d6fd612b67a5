package compiler

import "github.com/farregex/uniregex/opcode"

// rangeTagOf maps an unquantified opcode tag to its greedy and lazy
// quantified counterparts. ok is false for tags that cannot carry a
// quantifier (assertions, anchors, alternation, NoReturn, RegexpEnd).
// The case-insensitive literal tags borrow the plain Symbol family's
// range tags; the pattern-global CaseInsensitive flag keeps the folding.
func rangeTagOf(tag opcode.Tag) (rangeTag, minRangeTag opcode.Tag, ok bool) {
	switch tag {
	case opcode.Symbol, opcode.SymbolCI:
		return opcode.SymbolRange, opcode.SymbolMinRange, true
	case opcode.NotSymbol, opcode.NotSymbolCI:
		return opcode.NotSymbolRange, opcode.NotSymbolMinRange, true
	case opcode.Any:
		return opcode.AnyRange, opcode.AnyMinRange, true
	case opcode.AnyAll:
		return opcode.AnyRange, opcode.AnyMinRange, true
	case opcode.Type:
		return opcode.TypeRange, opcode.TypeMinRange, true
	case opcode.NotType:
		return opcode.NotTypeRange, opcode.NotTypeMinRange, true
	case opcode.Class:
		return opcode.ClassRange, opcode.ClassMinRange, true
	case opcode.OpenBracket:
		return opcode.BracketRange, opcode.BracketMinRange, true
	case opcode.BackRef:
		return opcode.BackRefRange, opcode.BackRefMinRange, true
	case opcode.NamedBackRef:
		return opcode.NamedBackRefRange, opcode.NamedBackRefMinRange, true
	}
	return 0, 0, false
}

// parseQuantifierSuffix attempts to consume a quantifier (* + ? or
// {m,n}) at p.pos. consumed is false (and p.pos unchanged) if no
// quantifier syntax is present, including a malformed '{' that does not
// parse as {m}, {m,} or {m,n} — such a '{' is left for the caller to
// treat as a literal character.
func (p *parser) parseQuantifierSuffix() (min, max int, lazy bool, consumed bool, err *CompileError) {
	if p.pos >= len(p.src) {
		return 0, 0, false, false, nil
	}
	switch p.src[p.pos] {
	case '*':
		p.pos++
		min, max, consumed = 0, opcode.Unbounded, true
	case '+':
		p.pos++
		min, max, consumed = 1, opcode.Unbounded, true
	case '?':
		p.pos++
		min, max, consumed = 0, 1, true
	case '{':
		savedPos := p.pos
		m, n, ok := p.tryParseBraceQuantifier()
		if !ok {
			p.pos = savedPos
			return 0, 0, false, false, nil
		}
		min, max, consumed = m, n, true
	default:
		return 0, 0, false, false, nil
	}

	if p.pos < len(p.src) && p.src[p.pos] == '?' {
		lazy = true
		p.pos++
	}
	return min, max, lazy, consumed, nil
}

// tryParseBraceQuantifier parses {m}, {m,} or {m,n} starting at '{'.
// Returns ok=false (p.pos untouched by the caller's restore) if the text
// does not match one of those forms.
func (p *parser) tryParseBraceQuantifier() (min, max int, ok bool) {
	i := p.pos + 1
	start := i
	for i < len(p.src) && p.src[i] >= '0' && p.src[i] <= '9' {
		i++
	}
	if i == start {
		return 0, 0, false
	}
	min = atoiUnits(p.src[start:i])

	if i < len(p.src) && p.src[i] == '}' {
		p.pos = i + 1
		return min, min, true
	}
	if i >= len(p.src) || p.src[i] != ',' {
		return 0, 0, false
	}
	i++
	maxStart := i
	for i < len(p.src) && p.src[i] >= '0' && p.src[i] <= '9' {
		i++
	}
	if i == maxStart {
		if i < len(p.src) && p.src[i] == '}' {
			p.pos = i + 1
			return min, opcode.Unbounded, true
		}
		return 0, 0, false
	}
	max = atoiUnits(p.src[maxStart:i])
	if i >= len(p.src) || p.src[i] != '}' {
		return 0, 0, false
	}
	p.pos = i + 1
	return min, max, true
}

func atoiUnits(units []uint16) int {
	n := 0
	for _, u := range units {
		n = n*10 + int(u-'0')
	}
	return n
}

// applyQuantifier attempts to apply a trailing quantifier to the opcode
// at index opIdx, mutating its tag and Min/Max fields in place. This
// mirrors the source compiler's behavior of promoting the previously
// emitted opcode rather than emitting a new one.
func (p *parser) applyQuantifier(opIdx int) *CompileError {
	min, max, lazy, consumed, err := p.parseQuantifierSuffix()
	if err != nil {
		return err
	}
	if !consumed {
		return nil
	}

	op := &p.code[opIdx]
	if op.IsZeroWidth() || op.Tag == opcode.Alternative || op.Tag == opcode.NamedOpenBracket {
		return newError(ErrInvalidQuantifiersCombination, p.pos)
	}
	rangeTag, minRangeTag, ok := rangeTagOf(op.Tag)
	if !ok {
		return newError(ErrInvalidQuantifiersCombination, p.pos)
	}
	if max != opcode.Unbounded && max < min {
		return newError(ErrInvalidQuantifiersCombination, p.pos)
	}

	if lazy {
		op.Tag = minRangeTag
	} else {
		op.Tag = rangeTag
	}
	op.Min, op.Max = min, max
	return nil
}
