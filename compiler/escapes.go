package compiler

import "github.com/farregex/uniregex/chartype"

// typeEscape maps an escape letter to the character-type mask it denotes,
// and reports whether the letter denotes a type escape at all (as opposed
// to an anchor, a control character, or a literal).
func typeEscape(letter rune) (mask chartype.Mask, negate bool, ok bool) {
	switch letter {
	case 'd':
		return chartype.Digit, false, true
	case 'D':
		return chartype.Digit, true, true
	case 's':
		return chartype.Space, false, true
	case 'S':
		return chartype.Space, true, true
	case 'w':
		return chartype.Word, false, true
	case 'W':
		return chartype.Word, true, true
	case 'l':
		return chartype.Lower, false, true
	case 'L':
		return chartype.Lower, true, true
	case 'u':
		return chartype.Upper, false, true
	case 'U':
		return chartype.Upper, true, true
	case 'i':
		return chartype.Alpha, false, true
	case 'I':
		return chartype.Alpha, true, true
	}
	return 0, false, false
}

// controlEscape maps an escape letter to the literal control character it
// denotes (spec §6's wire-level escape table).
func controlEscape(letter rune) (rune, bool) {
	switch letter {
	case 'n':
		return '\n', true
	case 'r':
		return '\r', true
	case 't':
		return '\t', true
	case 'f':
		return '\f', true
	case 'e':
		return 0x1B, true
	}
	return 0, false
}

// isHexDigit reports whether r is an ASCII hex digit.
func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

func hexValue(r rune) int {
	switch {
	case r >= '0' && r <= '9':
		return int(r - '0')
	case r >= 'a' && r <= 'f':
		return int(r-'a') + 10
	case r >= 'A' && r <= 'F':
		return int(r-'A') + 10
	}
	return 0
}

// maxHexDigits is the greedy upper bound on digits consumed after \x,
// both as a stand-alone escape and as a class-range endpoint (spec §9
// Open Question: the ambiguous class-range case is decided to mirror the
// stand-alone rule).
const maxHexDigits = 4
