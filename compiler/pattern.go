package compiler

import "github.com/farregex/uniregex/opcode"

// Pattern is the output of Compile: the opcode program plus the
// structural metadata the VM and optimizer need (spec §3's "Compiled
// Pattern" data model). Fields set by the optimize package are zero
// (MinLength -1, FirstSet nil) until optimize.Run has been applied.
type Pattern struct {
	Code []opcode.Opcode

	// CaptureCount is the number of positional capturing groups, not
	// counting the implicit whole-match group 0.
	CaptureCount int

	HasLookahead   bool
	HasNamedGroups bool
	// NamedGroups lists named groups in declaration order.
	NamedGroups []string

	// MaxBackref is the highest positional back-reference target used in
	// the pattern, or 0 if none.
	MaxBackref int

	CaseInsensitive bool
	Multiline       bool
	SingleLine      bool

	Quote  byte
	Escape byte

	// MinLength is the optimizer's proven minimum match length, or -1 if
	// not computed.
	MinLength int

	// FirstSet is the optimizer's proven set of code units the match can
	// possibly start with, or nil if no such set could be proven (the
	// matcher must then try every position unconditionally).
	FirstSet FirstSetTester

	// Literals is the optimizer's extracted set of required literal
	// substrings usable as an Aho-Corasick prefilter, or nil.
	Literals []string
}

// FirstSetTester is the minimal interface the optimizer's proven
// first-character set exposes to callers outside the compiler package.
type FirstSetTester interface {
	Test(c uint16) bool
}
