package optimize

import (
	"encoding/binary"
	"unicode/utf16"

	"github.com/coregx/ahocorasick"
	"github.com/farregex/uniregex/compiler"
	"github.com/farregex/uniregex/opcode"
)

// minLiteralRunLength is the shortest literal run worth handing to the
// Aho-Corasick prefilter; shorter runs gain little over a single-code-unit
// first-set scan and aren't worth an automaton build (spec §4: "each of
// length ≥ 2").
const minLiteralRunLength = 2

// ExtractLiterals proves pat's top-level form is a plain alternation of
// fixed literal runs (e.g. `(?:cat|dog|bird)`, no nested quantifiers or
// assertions within an arm) and returns each run as a string, or nil if
// the pattern doesn't have that shape. Grounded on meta.compile.go's
// UseAhoCorasick strategy selection, which performs the same proof for
// byte literal alternations before handing them to ahocorasick.Builder.
func ExtractLiterals(pat *compiler.Pattern) []string {
	if len(pat.Code) == 0 {
		return nil
	}
	from, to := bodyRange(pat)

	// Group 0 may itself carry the alternation directly ("cat|dog", no
	// explicit (?:...) wrapper); prefer that reading, and otherwise
	// require a single nested group spanning the entire top-level body.
	openIdx := 0
	open := &pat.Code[0]
	if open.NextAlt == opcode.None {
		if to < from {
			return nil
		}
		openIdx = from
		open = &pat.Code[from]
		if open.Tag != opcode.OpenBracket && open.Tag != opcode.NamedOpenBracket {
			return nil
		}
		if open.NextAlt == opcode.None {
			return nil // no top-level alternation
		}
		if open.Mate != to {
			return nil // the alternation isn't the pattern's entire top-level body
		}
	}

	var literals []string
	armPC := openIdx + 1
	next := open.NextAlt
	for {
		armEnd := open.Mate - 1
		if next != opcode.None {
			armEnd = next - 1
		}
		run, ok := literalRun(pat.Code, armPC, armEnd)
		if !ok || len(run) < minLiteralRunLength {
			return nil
		}
		literals = append(literals, string(utf16.Decode(run)))
		if next == opcode.None {
			break
		}
		armPC = next + 1
		next = pat.Code[next].NextAlt
	}
	return literals
}

// literalRun reports the exact sequence of code units code[from:to]
// matches, or ok=false the moment it meets anything but an unquantified
// Symbol (quantifiers, classes, groups, anchors all disqualify the arm).
func literalRun(code []opcode.Opcode, from, to int) (run []uint16, ok bool) {
	for i := from; i <= to; i++ {
		op := &code[i]
		if op.Tag != opcode.Symbol {
			return nil, false
		}
		run = append(run, op.Sym)
	}
	return run, true
}

// LiteralPrefilter wraps an Aho-Corasick automaton over a pattern's
// extracted literal alternation, letting uniregex's search loop jump
// directly to the next candidate start instead of testing the first-set
// one code unit at a time. Grounded on meta.Engine.ahoCorasick /
// meta/find.go's findAhoCorasick, adapted from byte haystacks to
// little-endian UTF-16-encoded ones.
type LiteralPrefilter struct {
	automaton *ahocorasick.Automaton
}

// BuildLiteralPrefilter builds a LiteralPrefilter from literals (as
// produced by ExtractLiterals), or reports ok=false if literals is empty
// or the automaton build failed — a failed build is never fatal to
// matching, only to this accelerator (spec §4: "best-effort, never
// fatal").
func BuildLiteralPrefilter(literals []string) (*LiteralPrefilter, bool) {
	if len(literals) == 0 {
		return nil, false
	}
	builder := ahocorasick.NewBuilder()
	for _, lit := range literals {
		builder.AddPattern(encodeUTF16LE(lit))
	}
	auto, err := builder.Build()
	if err != nil {
		return nil, false
	}
	return &LiteralPrefilter{automaton: auto}, true
}

// Find returns the code-unit span of the next literal match at or after
// from in text, or ok=false if none of the prefilter's literals occur.
func (p *LiteralPrefilter) Find(text []uint16, from int) (start, end int, ok bool) {
	haystack := encodeUTF16LEUnits(text)
	m := p.automaton.Find(haystack, from*2)
	if m == nil {
		return 0, 0, false
	}
	return m.Start / 2, m.End / 2, true
}

func encodeUTF16LE(s string) []byte {
	return encodeUTF16LEUnits(utf16.Encode([]rune(s)))
}

func encodeUTF16LEUnits(units []uint16) []byte {
	out := make([]byte, len(units)*2)
	for i, u := range units {
		binary.LittleEndian.PutUint16(out[i*2:], u)
	}
	return out
}
