package compiler

import "testing"

func mustCompile(t *testing.T, pattern string, opts Options) *Pattern {
	t.Helper()
	pat, err := Compile(pattern, opts)
	if err != nil {
		t.Fatalf("Compile(%q): %v", pattern, err)
	}
	return pat
}

func TestCompile_CaptureCount(t *testing.T) {
	tests := []struct {
		pattern string
		want    int
	}{
		{"abc", 0},
		{"(a)(b)", 2},
		{"(?:a)(b)", 1},
		{"(?{name}a)", 1},
		{"((a)(b))", 3},
	}
	for _, tt := range tests {
		pat := mustCompile(t, tt.pattern, DefaultOptions())
		if pat.CaptureCount != tt.want {
			t.Errorf("Compile(%q).CaptureCount = %d, want %d", tt.pattern, pat.CaptureCount, tt.want)
		}
	}
}

func TestCompile_NamedGroups(t *testing.T) {
	pat := mustCompile(t, `(?{year}\d{4})-(?{month}\d{2})`, DefaultOptions())
	if len(pat.NamedGroups) != 2 || pat.NamedGroups[0] != "year" || pat.NamedGroups[1] != "month" {
		t.Errorf("NamedGroups = %v, want [year month]", pat.NamedGroups)
	}
	if !pat.HasNamedGroups {
		t.Error("HasNamedGroups = false, want true")
	}
}

func TestCompile_HasLookahead(t *testing.T) {
	if pat := mustCompile(t, `a(?=b)`, DefaultOptions()); !pat.HasLookahead {
		t.Error("positive lookahead: HasLookahead = false, want true")
	}
	if pat := mustCompile(t, `a(?!b)`, DefaultOptions()); !pat.HasLookahead {
		t.Error("negative lookahead: HasLookahead = false, want true")
	}
	if pat := mustCompile(t, `(?<=a)b`, DefaultOptions()); pat.HasLookahead {
		t.Error("lookbehind should not set HasLookahead")
	}
}

func TestCompile_MaxBackref(t *testing.T) {
	pat := mustCompile(t, `(a)(b)\2`, DefaultOptions())
	if pat.MaxBackref != 2 {
		t.Errorf("MaxBackref = %d, want 2", pat.MaxBackref)
	}
}

func TestCompile_BackrefToUnclosedOrUndefinedGroup(t *testing.T) {
	tests := []string{
		`(a\1)`,  // group 1 not yet closed when referenced
		`\1(a)`,  // group 1 referenced before it even opens
		`\9`,     // no group 9 exists at all
	}
	for _, pattern := range tests {
		if _, err := Compile(pattern, DefaultOptions()); err == nil {
			t.Errorf("Compile(%q): expected ErrInvalidBackRef, got success", pattern)
		} else if err.Kind != ErrInvalidBackRef {
			t.Errorf("Compile(%q): Kind = %v, want invalid-back-ref", pattern, err.Kind)
		}
	}
}

func TestCompile_NamedBackrefToUndefinedName(t *testing.T) {
	_, err := Compile(`\p{tag}(?{tag}a)`, DefaultOptions())
	if err == nil {
		t.Fatal("expected a reference-to-undefined-named-bracket error")
	}
	if err.Kind != ErrReferenceToUndefinedNamedBracket {
		t.Errorf("Kind = %v, want reference-to-undefined-named-bracket", err.Kind)
	}
}

// TestCompile_LookbehindWidth is spec §8's "Lookbehind width" invariant:
// compile rejects any pattern whose lookbehind body has non-equal arms,
// and accepts any pattern whose body is fixed-width.
func TestCompile_LookbehindWidth(t *testing.T) {
	accept := []string{
		`(?<=abc)x`,
		`(?<=ab|cd)x`, // arms equal width (2 and 2)
		`(?<!abc)x`,
	}
	for _, pattern := range accept {
		if _, err := Compile(pattern, DefaultOptions()); err != nil {
			t.Errorf("Compile(%q): expected success, got %v", pattern, err)
		}
	}

	reject := []string{
		`(?<=a|bc)x`,  // arms differ in width (1 vs 2)
		`(?<=a*)x`,    // unbounded construct inside lookbehind
		`(?<=a\1)x`,   // back-reference inside lookbehind: width unknowable
	}
	for _, pattern := range reject {
		_, err := Compile(pattern, DefaultOptions())
		if err == nil {
			t.Errorf("Compile(%q): expected variable-length-lookbehind error, got success", pattern)
			continue
		}
		if err.Kind != ErrVariableLengthLookBehind && err.Kind != ErrInvalidBackRef {
			t.Errorf("Compile(%q): Kind = %v, want variable-length-lookbehind", pattern, err.Kind)
		}
	}
}

func TestCompile_UnbalancedBrackets(t *testing.T) {
	tests := []string{"(abc", "abc)", "[abc", `\Qunterminated`}
	for _, pattern := range tests {
		if _, err := Compile(pattern, DefaultOptions()); err == nil {
			t.Errorf("Compile(%q): expected an error, got success", pattern)
		}
	}
}

func TestCompile_MaxBracketDepth(t *testing.T) {
	pattern := ""
	for i := 0; i < MaxBracketDepth+1; i++ {
		pattern += "("
	}
	for i := 0; i < MaxBracketDepth+1; i++ {
		pattern += ")"
	}
	_, err := Compile(pattern, DefaultOptions())
	if err == nil {
		t.Fatal("expected a max-depth error for a pattern past MaxBracketDepth")
	}
	if err.Kind != ErrMaxDepth {
		t.Errorf("Kind = %v, want max-depth", err.Kind)
	}
}

func TestSize_MatchesCompile(t *testing.T) {
	pattern := `([A-Z]+)[- ]?(\d+)`
	slots, groups, err := Size(pattern, DefaultOptions())
	if err != nil {
		t.Fatalf("Size(%q): %v", pattern, err)
	}
	pat := mustCompile(t, pattern, DefaultOptions())
	if slots != len(pat.Code) {
		t.Errorf("Size slots = %d, want %d", slots, len(pat.Code))
	}
	if groups != pat.CaptureCount {
		t.Errorf("Size groups = %d, want %d", groups, pat.CaptureCount)
	}
}

func TestParseDelimited(t *testing.T) {
	body, opts, err := ParseDelimited(`/foo\/bar/ims`)
	if err != nil {
		t.Fatalf("ParseDelimited: %v", err)
	}
	if body != `foo\/bar` {
		t.Errorf("body = %q, want %q", body, `foo\/bar`)
	}
	if !opts.CaseInsensitive || !opts.Multiline || !opts.SingleLine {
		t.Errorf("opts = %+v, want i, m, s all set", opts)
	}
	if opts.Extended || opts.Optimize {
		t.Errorf("opts = %+v, want x and o unset", opts)
	}
}

func TestParseDelimited_UnknownFlag(t *testing.T) {
	_, _, err := ParseDelimited(`/foo/z`)
	if err == nil {
		t.Fatal("expected an options error for an unknown flag letter")
	}
	if err.Kind != ErrOptions {
		t.Errorf("Kind = %v, want options", err.Kind)
	}
}

func TestCompile_HexEscapeInClassRange(t *testing.T) {
	pat := mustCompile(t, `[\x41-\x5a]`, DefaultOptions())
	if len(pat.Code) == 0 {
		t.Fatal("expected a non-empty compiled program")
	}
}

func TestCompile_CaseInsensitiveFlagPropagates(t *testing.T) {
	opts := DefaultOptions()
	opts.CaseInsensitive = true
	pat := mustCompile(t, `abc`, opts)
	if !pat.CaseInsensitive {
		t.Error("CaseInsensitive flag did not propagate onto the compiled Pattern")
	}
}
