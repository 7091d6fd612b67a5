package opcode

import "testing"

func TestIsQuantified(t *testing.T) {
	o := &Opcode{Tag: SymbolRange}
	if !o.IsQuantified() {
		t.Fatal("expected SymbolRange to be quantified")
	}
	o = &Opcode{Tag: Symbol}
	if o.IsQuantified() {
		t.Fatal("expected Symbol to not be quantified")
	}
}

func TestIsMinimizing(t *testing.T) {
	if !(&Opcode{Tag: SymbolMinRange}).IsMinimizing() {
		t.Fatal("expected SymbolMinRange to be minimizing")
	}
	if (&Opcode{Tag: SymbolRange}).IsMinimizing() {
		t.Fatal("expected SymbolRange to not be minimizing")
	}
}

func TestIsZeroWidth(t *testing.T) {
	if !(&Opcode{Tag: WordBound}).IsZeroWidth() {
		t.Fatal("expected WordBound to be zero-width")
	}
	if (&Opcode{Tag: Symbol}).IsZeroWidth() {
		t.Fatal("expected Symbol to not be zero-width")
	}
}

func TestUnitWidth(t *testing.T) {
	w, ok := (&Opcode{Tag: Symbol}).UnitWidth()
	if !ok || w != 1 {
		t.Fatalf("got (%d, %v), want (1, true)", w, ok)
	}
	_, ok = (&Opcode{Tag: BackRef}).UnitWidth()
	if ok {
		t.Fatal("expected BackRef to have no static unit width")
	}
}

func TestTagString(t *testing.T) {
	if Symbol.String() != "Symbol" {
		t.Fatalf("got %q, want Symbol", Symbol.String())
	}
	if Tag(255).String() != "Unknown" {
		t.Fatalf("got %q, want Unknown", Tag(255).String())
	}
}

func TestSentinels(t *testing.T) {
	if None != -1 {
		t.Fatalf("None = %d, want -1", None)
	}
	if Unbounded <= 0 {
		t.Fatal("Unbounded must be positive")
	}
}
