package optimize_test

import (
	"testing"

	"github.com/farregex/uniregex/compiler"
	"github.com/farregex/uniregex/optimize"
)

func mustCompile(t *testing.T, pattern string) *compiler.Pattern {
	t.Helper()
	pat, err := compiler.Compile(pattern, compiler.DefaultOptions())
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	return pat
}

func TestMinLength(t *testing.T) {
	tests := []struct {
		pattern string
		want    int
	}{
		{"abc", 3},
		{"a*", 0},
		{"a+", 1},
		{"a{2,5}", 2},
		{"a|bb", 1},
		{"(ab)+", 2},
		{"(?:cat|dog)", 3},
		{"^abc$", 3},
		{"a(?=b)c", 2},
		{"(a)(b)?", 1},
		{`(a)\1`, 1}, // back-reference contributes a safe lower bound of 0
	}
	for _, tt := range tests {
		pat := mustCompile(t, tt.pattern)
		got := optimize.MinLength(pat)
		if got != tt.want {
			t.Errorf("MinLength(%q) = %d, want %d", tt.pattern, got, tt.want)
		}
	}
}

func TestFirstSet_Proven(t *testing.T) {
	tests := []struct {
		pattern string
		accept  []rune
		reject  []rune
	}{
		{"abc", []rune{'a'}, []rune{'b', 'c'}},
		{"^abc", []rune{'a'}, []rune{'b'}},
		{"a+bc", []rune{'a'}, []rune{'b'}},
		{"(?:cat|dog)", []rune{'c', 'd'}, []rune{'b', 'x'}},
		{"cat|dog", []rune{'c', 'd'}, []rune{'b', 'x'}}, // bare alternation inside the implicit group 0
		{`\d+`, []rune{'0', '5', '9'}, []rune{'a'}},
	}
	for _, tt := range tests {
		pat := mustCompile(t, tt.pattern)
		set, ok := optimize.FirstSet(pat)
		if !ok {
			t.Errorf("FirstSet(%q): expected a provable first set", tt.pattern)
			continue
		}
		for _, r := range tt.accept {
			if !set.Test(uint16(r)) {
				t.Errorf("FirstSet(%q): expected %q to be accepted", tt.pattern, r)
			}
		}
		for _, r := range tt.reject {
			if set.Test(uint16(r)) {
				t.Errorf("FirstSet(%q): expected %q to be rejected", tt.pattern, r)
			}
		}
	}
}

func TestFirstSet_Ambiguous(t *testing.T) {
	tests := []string{
		"a*bc",    // nullable leading atom
		"a|",      // nullable alternation arm
		`(a)|\1`,  // back-reference leading the second arm
		".",       // Any is too broad to be useful
	}
	for _, pattern := range tests {
		pat := mustCompile(t, pattern)
		if _, ok := optimize.FirstSet(pat); ok {
			t.Errorf("FirstSet(%q): expected no provable first set", pattern)
		}
	}
}

func TestExtractLiterals(t *testing.T) {
	pat := mustCompile(t, "(?:cat|dog|bird)")
	got := optimize.ExtractLiterals(pat)
	want := []string{"cat", "dog", "bird"}
	if len(got) != len(want) {
		t.Fatalf("ExtractLiterals = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExtractLiterals[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractLiterals_BareAlternation(t *testing.T) {
	pat := mustCompile(t, "cat|dog|bird")
	got := optimize.ExtractLiterals(pat)
	want := []string{"cat", "dog", "bird"}
	if len(got) != len(want) {
		t.Fatalf("ExtractLiterals = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ExtractLiterals[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestExtractLiterals_Disqualified(t *testing.T) {
	tests := []string{
		"cat|d",       // arm shorter than minLiteralRunLength
		"(?:ca+t|dog)", // quantifier inside an arm
		"cat",         // no top-level alternation at all
	}
	for _, pattern := range tests {
		pat := mustCompile(t, pattern)
		if got := optimize.ExtractLiterals(pat); got != nil {
			t.Errorf("ExtractLiterals(%q) = %v, want nil", pattern, got)
		}
	}
}

func TestBuildLiteralPrefilter(t *testing.T) {
	pat := mustCompile(t, "(?:cat|dog|bird)")
	literals := optimize.ExtractLiterals(pat)
	pf, ok := optimize.BuildLiteralPrefilter(literals)
	if !ok {
		t.Fatal("expected prefilter build to succeed")
	}
	text := []uint16{}
	for _, r := range "xx dog yy" {
		text = append(text, uint16(r))
	}
	start, end, ok := pf.Find(text, 0)
	if !ok {
		t.Fatal("expected prefilter to find a match")
	}
	if string(runesOf(text[start:end])) != "dog" {
		t.Errorf("prefilter found %q, want %q", string(runesOf(text[start:end])), "dog")
	}
}

func runesOf(units []uint16) []rune {
	out := make([]rune, len(units))
	for i, u := range units {
		out[i] = rune(u)
	}
	return out
}

func encodeUnits(s string) []uint16 {
	out := make([]uint16, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = uint16(s[i])
	}
	return out
}

func TestTailBound(t *testing.T) {
	pat := mustCompile(t, "abc")
	optimize.Run(pat)

	// Window ends with the pattern's final opcode ('c'): the backward
	// scan finds it on the first try, so the bound reduces to plain
	// min-length arithmetic (last start = len-MinLength).
	if got := optimize.TailBound(pat, encodeUnits("xxxxxxxxxc")); got != 7 {
		t.Errorf("TailBound(len 10, ends in c) = %d, want 7", got)
	}
	// Window is shorter than MinLength: no start position can work.
	if got := optimize.TailBound(pat, encodeUnits("cc")); got != -1 {
		t.Errorf("TailBound(len 2) = %d, want -1 (pattern longer than text)", got)
	}

	lookaheadPat := mustCompile(t, "a(?=bc)")
	optimize.Run(lookaheadPat)
	if got := optimize.TailBound(lookaheadPat, encodeUnits("xxxxxxxxxx")); got != 11 {
		t.Errorf("TailBound with lookahead = %d, want unbounded (11)", got)
	}

	altPat := mustCompile(t, "cat|dog")
	optimize.Run(altPat)
	if got := optimize.TailBound(altPat, encodeUnits("xxxxxxxxxx")); got != 11 {
		t.Errorf("TailBound with top-level alternation = %d, want unbounded (11)", got)
	}
}

// TestTailBound_BackwardScanBeatsMinLength exercises the case the plain
// min-length bound can't handle: a required literal tail that appears
// in the window but not at its very end. MinLength alone only knows
// "a.*z" needs 2 code units, so it would let the scan try every start
// through len-2; the backward scan over the actual window narrows that
// to "no start after the last 'z' in the text."
func TestTailBound_BackwardScanBeatsMinLength(t *testing.T) {
	pat := mustCompile(t, "a.*z")
	optimize.Run(pat)
	if pat.MinLength != 2 {
		t.Fatalf("MinLength = %d, want 2", pat.MinLength)
	}

	window := encodeUnits("azxy") // last 'z' is at index 1, not the tail
	naiveBound := len(window) - pat.MinLength
	if got := optimize.TailBound(pat, window); got != 0 {
		t.Errorf("TailBound(%q) = %d, want 0", "azxy", got)
	} else if got >= naiveBound {
		t.Errorf("TailBound(%q) = %d, not tighter than min-length-only bound %d", "azxy", got, naiveBound)
	}

	// A window with no 'z' at all admits no start position whatsoever.
	if got := optimize.TailBound(pat, encodeUnits("axxy")); got != -1 {
		t.Errorf("TailBound with no 'z' in window = %d, want -1", got)
	}

	// A window ending in 'z' degrades to the plain min-length bound.
	if got := optimize.TailBound(pat, encodeUnits("axyz")); got != naiveBound {
		t.Errorf("TailBound(%q) = %d, want %d (matches min-length bound)", "axyz", got, naiveBound)
	}
}

func TestRun_PopulatesPattern(t *testing.T) {
	pat := mustCompile(t, "(?:cat|dog)")
	if pat.MinLength != -1 {
		t.Fatal("expected MinLength to start at the -1 sentinel")
	}
	optimize.Run(pat)
	if pat.MinLength != 3 {
		t.Errorf("MinLength = %d, want 3", pat.MinLength)
	}
	if pat.FirstSet == nil {
		t.Error("expected FirstSet to be populated")
	}
	if len(pat.Literals) != 2 {
		t.Errorf("Literals = %v, want 2 entries", pat.Literals)
	}
}
