// Package uniset implements UniSet, the character-class set representation
// shared by every compiled class opcode ([...] bodies) in the regex engine.
package uniset

import (
	"math/bits"

	"github.com/farregex/uniregex/chartype"
)

const (
	codeUnitBits = 16
	size         = 1 << codeUnitBits // 65536 code units
	words        = size / 64         // 1024 uint64 words
)

// Set represents a set of UTF-16 code units plus implicit membership by
// character-type predicate. It is the canonical representation for
// anything between [ and ] and is owned by the opcode that embeds it.
type Set struct {
	bitmap   []uint64 // dense bitmap over the full 16-bit range
	types    chartype.Mask
	notTypes chartype.Mask
	negative bool
}

// New returns an empty Set.
func New() *Set {
	return &Set{bitmap: make([]uint64, words)}
}

// Add adds a single code unit to the set.
func (s *Set) Add(c uint16) {
	s.bitmap[c/64] |= 1 << (c % 64)
}

// Remove removes a single code unit from the set.
func (s *Set) Remove(c uint16) {
	s.bitmap[c/64] &^= 1 << (c % 64)
}

// AddRange adds every code unit in [lo, hi] (inclusive) to the set.
func (s *Set) AddRange(lo, hi uint16) {
	for c := uint32(lo); c <= uint32(hi); c++ {
		s.Add(uint16(c))
		if c == 0xFFFF {
			break
		}
	}
}

// Has reports whether the dense bitmap contains c, ignoring types and
// negation.
func (s *Set) Has(c uint16) bool {
	return s.bitmap[c/64]&(1<<(c%64)) != 0
}

// AddType adds a character-type inclusion (equivalent to writing \d, \s,
// etc. inside the class).
func (s *Set) AddType(t chartype.Mask) {
	s.types |= t
}

// AddNotType adds a character-type exclusion (equivalent to writing \D,
// \S, etc. inside the class).
func (s *Set) AddNotType(t chartype.Mask) {
	s.notTypes |= t
}

// Types returns the type-inclusion mask.
func (s *Set) Types() chartype.Mask { return s.types }

// NotTypes returns the type-exclusion mask.
func (s *Set) NotTypes() chartype.Mask { return s.notTypes }

// SetNegate sets the set's negation flag ([^...]).
func (s *Set) SetNegate(negate bool) {
	s.negative = negate
}

// Negate reports whether the set is negated.
func (s *Set) Negate() bool { return s.negative }

// IsSimple reports whether the set has no type inclusions/exclusions,
// used by the compiler to decide whether a class opcode can be demoted to
// a plain symbol/not-symbol opcode.
func (s *Set) IsSimple() bool {
	return s.types == 0 && s.notTypes == 0
}

// SingleCodeUnit returns the sole code unit in the bitmap and true, if the
// set (ignoring negation/types) contains exactly one member. Used by the
// compiler's symbol-demotion optimization.
func (s *Set) SingleCodeUnit() (uint16, bool) {
	found := uint16(0)
	count := 0
	for w, word := range s.bitmap {
		for word != 0 {
			bit := bits.TrailingZeros64(word)
			found = uint16(w*64 + bit)
			count++
			if count > 1 {
				return 0, false
			}
			word &^= 1 << uint(bit)
		}
	}
	if count == 1 {
		return found, true
	}
	return 0, false
}

// Test reports whether c is a member of the set: if the type-inclusion
// mask matches c, the result is !negative; else if the type-exclusion
// mask denies c (i.e. c does NOT satisfy any excluded type), the result
// is !negative; else the result is the dense-bitmap membership XOR
// negative. This implements the three-tier membership test of spec §4.1.
func (s *Set) Test(c uint16) bool {
	if s.types != 0 && s.types.Test(c) {
		return !s.negative
	}
	if s.notTypes != 0 && !s.notTypes.Test(c) {
		return !s.negative
	}
	return s.Has(c) != s.negative
}
