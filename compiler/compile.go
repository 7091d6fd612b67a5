// Package compiler implements the pattern sizer and compiler: validating
// pattern text and turning it into the opcode sequence the VM executes.
package compiler

import (
	"unicode/utf16"

	"github.com/farregex/uniregex/internal/conv"
	"github.com/farregex/uniregex/opcode"
)

// groupFrame tracks one currently-open group or assertion while
// compiling, mirroring the source compiler's bracket stack (spec §4.4).
type groupFrame struct {
	openIdx     int
	lastAlt     int // opcode.None if no '|' seen yet in this frame
	alts        []int
	isAssertion bool
	name        string
}

// parser holds the state of one compile pass over pattern text.
type parser struct {
	src   []uint16
	pos   int
	start int // position of the construct currently being parsed, for error reporting
	opts  Options

	code  []opcode.Opcode
	stack []groupFrame

	captureCount    int
	closedPositions []bool // closedPositions[i] true once group i has closed
	namedClosed     map[string]bool

	maxBackref     int
	hasNamedGroups bool
	hasLookahead   bool
	quoteMode      bool
	namedOrder     []string // named groups in declaration (open) order

	lastClosedFrame groupFrame
	lookbehindOK    bool
}

// Compile compiles pattern text into a Pattern using opts. It performs a
// single pass that validates structure, emits opcodes, resolves
// cross-references, and enforces the semantic constraints of spec §4.4
// (lookbehind width, back-reference validity, quantifier applicability).
func Compile(pattern string, opts Options) (*Pattern, *CompileError) {
	opts = opts.withDelimiters()
	p := &parser{
		src:             utf16.Encode([]rune(pattern)),
		opts:            opts,
		namedClosed:     make(map[string]bool),
		closedPositions: make([]bool, 1),
	}

	if len(p.stack) != 0 {
		panic("compiler: fresh parser must start with an empty group stack")
	}

	p.emitImplicitGroup()

	for p.pos < len(p.src) {
		if err := p.step(); err != nil {
			return nil, err
		}
	}

	if p.quoteMode {
		return nil, newError(ErrBrackets, p.pos)
	}
	if len(p.stack) != 1 {
		return nil, newError(ErrBrackets, p.pos)
	}
	p.closeGroup()
	p.code = append(p.code, opcode.Opcode{Tag: opcode.RegexpEnd})

	return &Pattern{
		Code:            p.code,
		CaptureCount:    p.captureCount,
		HasLookahead:    p.hasLookahead,
		HasNamedGroups:  p.hasNamedGroups,
		NamedGroups:     p.namedOrder,
		MaxBackref:      p.maxBackref,
		CaseInsensitive: opts.CaseInsensitive,
		Multiline:       opts.Multiline,
		SingleLine:      opts.SingleLine,
		Quote:           opts.Quote,
		Escape:          opts.Escape,
		MinLength:       -1,
	}, nil
}

// Size reports the number of opcode slots and capturing groups a
// compile of pattern would produce, without building or returning the
// full Pattern. It runs a full Compile, so it reports every error Compile
// reports: the structural kinds (syntax, brackets, max-depth, options)
// and the semantic ones (invalid-back-ref, variable-length-lookbehind,
// ...) alike.
func Size(pattern string, opts Options) (slots, groups int, err *CompileError) {
	pat, cerr := Compile(pattern, opts)
	if cerr != nil {
		switch cerr.Kind {
		case ErrSyntax, ErrBrackets, ErrMaxDepth, ErrOptions:
			return 0, 0, cerr
		default:
			// A semantic error (invalid-back-ref, variable-length
			// lookbehind, ...) still implies the structural pass
			// succeeded; the sizer only promises the slot count is
			// right when compilation as a whole succeeds, so surface it
			// as-is rather than inventing a structural-only figure.
			return 0, 0, cerr
		}
	}
	return len(pat.Code), pat.CaptureCount, nil
}

func (p *parser) emit(op opcode.Opcode) int {
	p.code = append(p.code, op)
	return len(p.code) - 1
}

func (p *parser) emitImplicitGroup() {
	idx := p.emit(opcode.Opcode{Tag: opcode.OpenBracket, GroupIndex: 0, Mate: opcode.None, NextAlt: opcode.None})
	p.stack = append(p.stack, groupFrame{openIdx: idx, lastAlt: opcode.None})
}

func (p *parser) step() *CompileError {
	c := p.src[p.pos]

	if p.quoteMode {
		if c == '\\' && p.pos+1 < len(p.src) && p.src[p.pos+1] == 'E' {
			p.quoteMode = false
			p.pos += 2
			return nil
		}
		p.pos++
		return p.applyQuantifier(p.emitLiteral(c))
	}

	if p.opts.Extended {
		if c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' {
			p.pos++
			return nil
		}
		if c == '#' {
			for p.pos < len(p.src) && p.src[p.pos] != '\n' {
				p.pos++
			}
			return nil
		}
	}

	switch c {
	case '^':
		p.pos++
		p.emit(opcode.Opcode{Tag: opcode.LineStart})
		return nil
	case '$':
		p.pos++
		p.emit(opcode.Opcode{Tag: opcode.LineEnd})
		return nil
	case '.':
		p.pos++
		tag := opcode.Any
		if p.opts.SingleLine {
			tag = opcode.AnyAll
		}
		return p.applyQuantifier(p.emit(opcode.Opcode{Tag: tag}))
	case '|':
		p.pos++
		return p.handleAlternative()
	case '(':
		p.pos++
		return p.handleGroupOpen()
	case ')':
		p.pos++
		return p.handleGroupClose()
	case '[':
		p.pos++
		return p.handleClass()
	case '\\':
		p.pos++
		return p.handleEscape()
	default:
		p.pos++
		return p.applyQuantifier(p.emitLiteral(c))
	}
}

// emitLiteral emits a Symbol or SymbolCI opcode for code unit c depending
// on the pattern's global case-insensitive option, and returns its index.
func (p *parser) emitLiteral(c uint16) int {
	tag := opcode.Symbol
	if p.opts.CaseInsensitive {
		tag = opcode.SymbolCI
	}
	return p.emit(opcode.Opcode{Tag: tag, Sym: c})
}

func (p *parser) handleAlternative() *CompileError {
	if len(p.stack) == 0 {
		return newError(ErrBrackets, p.pos)
	}
	frame := &p.stack[len(p.stack)-1]
	altIdx := p.emit(opcode.Opcode{Tag: opcode.Alternative, NextAlt: opcode.None, GroupEnd: opcode.None})
	if frame.lastAlt == opcode.None {
		p.code[frame.openIdx].NextAlt = altIdx
	} else {
		p.code[frame.lastAlt].NextAlt = altIdx
	}
	frame.lastAlt = altIdx
	frame.alts = append(frame.alts, altIdx)
	return nil
}

func (p *parser) handleGroupOpen() *CompileError {
	if len(p.stack) >= MaxBracketDepth {
		return newError(ErrMaxDepth, p.pos)
	}
	if p.pos < len(p.src) && p.src[p.pos] == '?' {
		p.pos++
		if p.pos >= len(p.src) {
			return newError(ErrSyntax, p.pos)
		}
		switch p.src[p.pos] {
		case ':':
			p.pos++
			p.pushFrame(opcode.Opcode{Tag: opcode.OpenBracket, GroupIndex: opcode.None, Mate: opcode.None, NextAlt: opcode.None}, false, "")
		case '=':
			p.pos++
			p.hasLookahead = true
			p.pushFrame(opcode.Opcode{Tag: opcode.LookAhead, Mate: opcode.None, NextAlt: opcode.None}, true, "")
		case '!':
			p.pos++
			p.hasLookahead = true
			p.pushFrame(opcode.Opcode{Tag: opcode.NotLookAhead, Mate: opcode.None, NextAlt: opcode.None}, true, "")
		case '<':
			p.pos++
			if p.pos >= len(p.src) {
				return newError(ErrSyntax, p.pos)
			}
			switch p.src[p.pos] {
			case '=':
				p.pos++
				p.pushFrame(opcode.Opcode{Tag: opcode.LookBehind, Mate: opcode.None, NextAlt: opcode.None, FixedWidth: opcode.None}, true, "")
			case '!':
				p.pos++
				p.pushFrame(opcode.Opcode{Tag: opcode.NotLookBehind, Mate: opcode.None, NextAlt: opcode.None, FixedWidth: opcode.None}, true, "")
			default:
				return newError(ErrSyntax, p.pos)
			}
		case '{':
			p.pos++
			name, err := p.readBracedName()
			if err != nil {
				return err
			}
			p.hasNamedGroups = true
			p.namedOrder = append(p.namedOrder, name)
			p.pushFrame(opcode.Opcode{Tag: opcode.NamedOpenBracket, GroupName: name, Mate: opcode.None, NextAlt: opcode.None}, false, name)
		default:
			return newError(ErrOptions, p.pos)
		}
		return nil
	}

	p.captureCount++
	idx := p.captureCount
	if idx >= len(p.closedPositions) {
		p.closedPositions = append(p.closedPositions, make([]bool, idx-len(p.closedPositions)+1)...)
	}
	p.pushFrame(opcode.Opcode{Tag: opcode.OpenBracket, GroupIndex: idx, Mate: opcode.None, NextAlt: opcode.None}, false, "")
	return nil
}

func (p *parser) pushFrame(open opcode.Opcode, isAssertion bool, name string) {
	idx := p.emit(open)
	p.stack = append(p.stack, groupFrame{openIdx: idx, lastAlt: opcode.None, isAssertion: isAssertion, name: name})
}

func closeTagFor(openTag opcode.Tag) opcode.Tag {
	switch openTag {
	case opcode.OpenBracket:
		return opcode.CloseBracket
	case opcode.NamedOpenBracket:
		return opcode.NamedCloseBracket
	case opcode.LookAhead:
		return opcode.LookAheadClose
	case opcode.NotLookAhead:
		return opcode.NotLookAheadClose
	case opcode.LookBehind:
		return opcode.LookBehindClose
	case opcode.NotLookBehind:
		return opcode.NotLookBehindClose
	}
	return opcode.CloseBracket
}

func (p *parser) handleGroupClose() *CompileError {
	if len(p.stack) <= 1 {
		return newError(ErrBrackets, p.pos)
	}
	p.closeGroup()
	if !p.lookbehindOK {
		return newError(ErrVariableLengthLookBehind, p.pos)
	}
	return p.applyQuantifier(p.lastClosedFrame.openIdx)
}

// closeGroup pops the innermost open frame, emits its matching close
// opcode, resolves Mate/GroupEnd cross-references, and — for lookbehind
// frames — computes and records the body's fixed width. It sets
// lastClosedFrame and lookbehindOK (true unless the popped frame was an
// unacceptable variable-length lookbehind) for the caller to inspect.
func (p *parser) closeGroup() {
	frame := p.stack[len(p.stack)-1]
	p.stack = p.stack[:len(p.stack)-1]
	p.lastClosedFrame = frame
	p.lookbehindOK = true

	closeTag := closeTagFor(p.code[frame.openIdx].Tag)
	closeIdx := p.emit(opcode.Opcode{Tag: closeTag, Mate: frame.openIdx, GroupName: frame.name})
	p.code[frame.openIdx].Mate = closeIdx
	p.code[closeIdx].GroupIndex = p.code[frame.openIdx].GroupIndex

	for _, alt := range frame.alts {
		p.code[alt].GroupEnd = closeIdx
	}

	switch p.code[frame.openIdx].Tag {
	case opcode.LookBehind, opcode.NotLookBehind:
		width, ok := fixedWidth(p.code, frame.openIdx+1, closeIdx-1)
		p.lookbehindOK = ok
		if ok {
			p.code[frame.openIdx].FixedWidth = width
			p.code[closeIdx].FixedWidth = width
		}
	}

	gi := p.code[frame.openIdx].GroupIndex
	if gi != opcode.None {
		if gi >= len(p.closedPositions) {
			p.closedPositions = append(p.closedPositions, make([]bool, gi-len(p.closedPositions)+1)...)
		}
		p.closedPositions[gi] = true
	}
	if frame.name != "" {
		p.namedClosed[frame.name] = true
	}
}

func (p *parser) handleClass() *CompileError {
	p.start = p.pos - 1 // position of the '['
	set, err := p.parseClass()
	if err != nil {
		return err
	}
	if set.IsSimple() {
		if c, ok := set.SingleCodeUnit(); ok {
			tag := opcode.Symbol
			if p.opts.CaseInsensitive {
				tag = opcode.SymbolCI
			}
			if set.Negate() {
				tag = opcode.NotSymbol
				if p.opts.CaseInsensitive {
					tag = opcode.NotSymbolCI
				}
			}
			return p.applyQuantifier(p.emit(opcode.Opcode{Tag: tag, Sym: c}))
		}
	}
	return p.applyQuantifier(p.emit(opcode.Opcode{Tag: opcode.Class, Class: set}))
}

func (p *parser) handleEscape() *CompileError {
	if p.pos >= len(p.src) {
		return newError(ErrSyntax, p.pos)
	}
	letter := p.src[p.pos]

	switch letter {
	case 'A':
		p.pos++
		p.emit(opcode.Opcode{Tag: opcode.DataStart})
		return nil
	case 'Z':
		p.pos++
		p.emit(opcode.Opcode{Tag: opcode.DataEnd})
		return nil
	case 'b':
		p.pos++
		p.emit(opcode.Opcode{Tag: opcode.WordBound})
		return nil
	case 'B':
		p.pos++
		p.emit(opcode.Opcode{Tag: opcode.NotWordBound})
		return nil
	case 'Q':
		p.pos++
		p.quoteMode = true
		return nil
	case 'O':
		p.pos++
		p.emit(opcode.Opcode{Tag: opcode.NoReturn})
		return nil
	case 'x':
		p.pos++
		v, herr := p.parseHex(maxHexDigits)
		if herr != nil {
			return herr
		}
		return p.applyQuantifier(p.emitLiteral(conv.IntToUint16(v)))
	case 'p':
		p.pos++
		if p.pos >= len(p.src) || p.src[p.pos] != '{' {
			return newError(ErrSyntax, p.pos)
		}
		p.pos++
		name, nerr := p.readBracedName()
		if nerr != nil {
			return nerr
		}
		if !p.namedClosed[name] {
			return newError(ErrReferenceToUndefinedNamedBracket, p.pos)
		}
		return p.applyQuantifier(p.emit(opcode.Opcode{Tag: opcode.NamedBackRef, RefName: name}))
	}

	if letter >= '1' && letter <= '9' {
		p.pos++
		target := int(letter - '0')
		if target >= len(p.closedPositions) || !p.closedPositions[target] {
			return newError(ErrInvalidBackRef, p.pos)
		}
		if target > p.maxBackref {
			p.maxBackref = target
		}
		return p.applyQuantifier(p.emit(opcode.Opcode{Tag: opcode.BackRef, RefIndex: target}))
	}

	if mask, negate, ok := typeEscape(rune(letter)); ok {
		p.pos++
		tag := opcode.Type
		if negate {
			tag = opcode.NotType
		}
		return p.applyQuantifier(p.emit(opcode.Opcode{Tag: tag, CharType: uint8(mask)}))
	}

	if ctrl, ok := controlEscape(rune(letter)); ok {
		p.pos++
		return p.applyQuantifier(p.emitLiteral(uint16(ctrl)))
	}

	if p.opts.StrictEscape && isASCIILetter(letter) {
		return newError(ErrInvalidEscape, p.pos)
	}

	p.pos++
	return p.applyQuantifier(p.emitLiteral(letter))
}

func (p *parser) parseHex(maxDigits int) (int, *CompileError) {
	start := p.pos
	if p.pos >= len(p.src) || !isHexDigit(rune(p.src[p.pos])) {
		return 0, newError(ErrSyntax, start)
	}
	v := 0
	n := 0
	for p.pos < len(p.src) && n < maxDigits && isHexDigit(rune(p.src[p.pos])) {
		v = v*16 + hexValue(rune(p.src[p.pos]))
		p.pos++
		n++
	}
	return v, nil
}

func (p *parser) readBracedName() (string, *CompileError) {
	start := p.pos
	for p.pos < len(p.src) && p.src[p.pos] != '}' {
		p.pos++
	}
	if p.pos >= len(p.src) {
		return "", newError(ErrSyntax, start)
	}
	if p.pos == start {
		return "", newError(ErrSyntax, start)
	}
	name := string(utf16.Decode(p.src[start:p.pos]))
	p.pos++ // consume '}'
	return name, nil
}

func isASCIILetter(r uint16) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}
