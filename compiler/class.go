package compiler

import (
	"github.com/farregex/uniregex/internal/conv"
	"github.com/farregex/uniregex/uniset"
)

// parseClass parses a character class body starting just after the
// opening '[' (p.pos points at the first body character, or at '^') and
// leaves p.pos just past the closing ']'. Returns the constructed set.
func (p *parser) parseClass() (*uniset.Set, *CompileError) {
	set := uniset.New()

	if p.pos < len(p.src) && p.src[p.pos] == '^' {
		set.SetNegate(true)
		p.pos++
	}

	first := true
	for {
		if p.pos >= len(p.src) {
			return nil, newError(ErrBrackets, p.start)
		}
		c := p.src[p.pos]
		if c == ']' && !first {
			p.pos++
			return set, nil
		}
		first = false

		if c == '\\' {
			p.pos++
			if p.pos >= len(p.src) {
				return nil, newError(ErrSyntax, p.pos)
			}
			lo, isRange, err := p.classAtom(set)
			if err != nil {
				return nil, err
			}
			if isRange {
				if p.pos+1 < len(p.src) && p.src[p.pos] == '-' && p.src[p.pos+1] != ']' {
					p.pos++ // consume '-'
					if err := p.classRange(set, lo); err != nil {
						return nil, err
					}
				} else {
					set.Add(lo)
				}
			}
			continue
		}

		p.pos++
		lo := c
		if p.pos+1 < len(p.src) && p.src[p.pos] == '-' && p.src[p.pos+1] != ']' {
			p.pos++ // consume '-'
			if err := p.classRange(set, lo); err != nil {
				return nil, err
			}
			continue
		}
		set.Add(lo)
	}
}

// classAtom consumes one escape sequence inside a class (the backslash
// has already been consumed) and either adds it directly to set (for type
// escapes) or returns the literal code unit as a potential range
// endpoint.
func (p *parser) classAtom(set *uniset.Set) (lit uint16, isRangeable bool, err *CompileError) {
	letter := p.src[p.pos]

	if mask, negate, ok := typeEscape(rune(letter)); ok {
		p.pos++
		if negate {
			set.AddNotType(mask)
		} else {
			set.AddType(mask)
		}
		return 0, false, nil
	}

	if ctrl, ok := controlEscape(rune(letter)); ok {
		p.pos++
		return uint16(ctrl), true, nil
	}

	if letter == 'x' {
		p.pos++
		v, perr := p.parseHex(maxHexDigits)
		if perr != nil {
			return 0, false, perr
		}
		return conv.IntToUint16(v), true, nil
	}

	// Any other escaped character (including ] \ ^ -) is a literal.
	p.pos++
	return uint16(letter), true, nil
}

// classRange consumes a '-' already-skipped-by-caller and the range's
// high endpoint, adding [lo, hi] to set.
func (p *parser) classRange(set *uniset.Set, lo uint16) *CompileError {
	if p.pos >= len(p.src) {
		return newError(ErrInvalidRange, p.pos)
	}
	var hi uint16
	c := p.src[p.pos]
	if c == '\\' {
		p.pos++
		if p.pos >= len(p.src) {
			return newError(ErrInvalidRange, p.pos)
		}
		letter := p.src[p.pos]
		if ctrl, ok := controlEscape(rune(letter)); ok {
			p.pos++
			hi = uint16(ctrl)
		} else if letter == 'x' {
			p.pos++
			v, err := p.parseHex(maxHexDigits)
			if err != nil {
				return err
			}
			hi = conv.IntToUint16(v)
		} else {
			p.pos++
			hi = uint16(letter)
		}
	} else {
		p.pos++
		hi = c
	}
	if hi < lo {
		return newError(ErrInvalidRange, p.pos)
	}
	set.AddRange(lo, hi)
	return nil
}
