package chartype

import "testing"

func TestPredicates(t *testing.T) {
	tests := []struct {
		c       uint16
		digit   bool
		space   bool
		word    bool
		lower   bool
		upper   bool
		alpha   bool
	}{
		{'5', true, false, true, false, false, false},
		{' ', false, true, false, false, false, false},
		{'_', false, false, true, false, false, false},
		{'a', false, false, true, true, false, true},
		{'A', false, false, true, false, true, true},
		{'!', false, false, false, false, false, false},
	}
	for _, tt := range tests {
		if got := IsDigit(tt.c); got != tt.digit {
			t.Errorf("IsDigit(%q) = %v, want %v", tt.c, got, tt.digit)
		}
		if got := IsSpace(tt.c); got != tt.space {
			t.Errorf("IsSpace(%q) = %v, want %v", tt.c, got, tt.space)
		}
		if got := IsWord(tt.c); got != tt.word {
			t.Errorf("IsWord(%q) = %v, want %v", tt.c, got, tt.word)
		}
		if got := IsLower(tt.c); got != tt.lower {
			t.Errorf("IsLower(%q) = %v, want %v", tt.c, got, tt.lower)
		}
		if got := IsUpper(tt.c); got != tt.upper {
			t.Errorf("IsUpper(%q) = %v, want %v", tt.c, got, tt.upper)
		}
		if got := IsAlpha(tt.c); got != tt.alpha {
			t.Errorf("IsAlpha(%q) = %v, want %v", tt.c, got, tt.alpha)
		}
	}
}

func TestFoldInvariant(t *testing.T) {
	for c := rune(0); c < 0x2000; c++ {
		x := uint16(c)
		if got, want := ToLower(ToUpper(x)), ToLower(x); got != want {
			t.Fatalf("ToLower(ToUpper(%q)) = %q, want %q", x, got, want)
		}
	}
}

func TestMaskTest(t *testing.T) {
	m := Digit | Space
	if !m.Test('3') {
		t.Error("expected Digit|Space to match '3'")
	}
	if !m.Test(' ') {
		t.Error("expected Digit|Space to match ' '")
	}
	if m.Test('a') {
		t.Error("expected Digit|Space to not match 'a'")
	}
}

func TestMaskName(t *testing.T) {
	cases := map[Mask]byte{Digit: 'd', Space: 's', Word: 'w', Lower: 'l', Upper: 'u', Alpha: 'i'}
	for m, want := range cases {
		if got := MaskName(m); got != want {
			t.Errorf("MaskName(%v) = %q, want %q", m, got, want)
		}
	}
}
