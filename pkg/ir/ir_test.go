package ir

import (
	"testing"

	"github.com/fabriclab/go-techmap/pkg/bitvec"
)

func TestIr_Widths(t *testing.T) {
	var (
		a = NewVar("a", 8)
		b = NewVar("b", 8)
	)
	//
	checks := []struct {
		expr  Expr
		width uint
	}{
		{ConstUint(5, 4), 4},
		{a, 8},
		{NewExtract(a, 7, 4), 4},
		{Bit(a, 0), 1},
		{NewConcat(a, b), 16},
		{NewEq(a, b), 1},
		{NewAnd(a, b), 8},
		{NewOr(a, b), 8},
		{NewMux(Bit(a, 0), a, b), 8},
		{NewZeroExtend(a, 12), 12},
		{NewDupExtend(a, 12), 12},
		{NewReg(bitvec.Zero(8), a), 8},
	}
	//
	for _, check := range checks {
		if check.expr.Width() != check.width {
			t.Errorf("%s has width %d, expected %d", check.expr, check.expr.Width(), check.width)
		}
	}
}

func TestIr_WidthMismatch(t *testing.T) {
	var (
		a = NewVar("a", 8)
		b = NewVar("b", 4)
	)
	//
	checkPanics(t, func() { NewEq(a, b) })
	checkPanics(t, func() { NewAnd(a, b) })
	checkPanics(t, func() { NewMux(a, a, a) })
	checkPanics(t, func() { NewMux(Bit(a, 0), a, b) })
	checkPanics(t, func() { NewExtract(b, 4, 0) })
	checkPanics(t, func() { NewExtract(a, 3, 5) })
	checkPanics(t, func() { NewZeroExtend(a, 4) })
	checkPanics(t, func() { NewReg(bitvec.Zero(4), a) })
}

func TestIr_Allocator(t *testing.T) {
	alloc := NewAllocator()
	//
	s1 := alloc.FreshBV("tt", 16)
	s2 := alloc.FreshBV("tt", 16)
	s3 := alloc.FreshBool("flip")
	//
	if s1.Id() == s2.Id() {
		t.Errorf("fresh symbols share an id")
	}
	//
	if s3.Width() != 1 || !s3.IsBool() {
		t.Errorf("boolean hole malformed")
	}
	//
	if alloc.Count() != 3 {
		t.Errorf("allocator count %d", alloc.Count())
	}
}

func TestIr_MapRef(t *testing.T) {
	var (
		a = NewVar("a", 8)
		m = NewMap([]string{"O"}, []Expr{a})
	)
	//
	if NewMapRef(m, "O").Width() != 8 {
		t.Errorf("map lookup width")
	}
	//
	checkPanics(t, func() { NewMapRef(m, "CO") })
}

func TestIr_Instance(t *testing.T) {
	inst := NewInstance("LUT2", "prims/LUT2.v", []Port{
		{"I0", Input, 1, ConstUint(0, 1)},
		{"I1", Input, 1, ConstUint(1, 1)},
		{"O", Output, 1, nil},
	}, nil)
	//
	if _, ok := inst.Output("O"); !ok {
		t.Errorf("missing output O")
	}
	//
	if NewMapRef(inst, "O").Width() != 1 {
		t.Errorf("instance output width")
	}
	// Driving a port with the wrong width fails eagerly.
	checkPanics(t, func() {
		NewInstance("LUT2", "", []Port{{"I0", Input, 1, ConstUint(0, 2)}}, nil)
	})
}

func TestIr_Wires(t *testing.T) {
	var (
		g = NewGraph()
		a = NewVar("a", 8)
		w = g.NewWire("loop", 8)
	)
	//
	if _, ok := g.Resolve(w); ok {
		t.Errorf("unresolved wire resolved")
	}
	//
	if err := g.Unify(w, a); err != nil {
		t.Errorf("unify failed: %v", err)
	}
	//
	if def, ok := g.Resolve(w); !ok || def != a {
		t.Errorf("wire resolved to %v", def)
	}
	// Second unification is rejected.
	if err := g.Unify(w, a); err == nil {
		t.Errorf("expected double-unify error")
	}
	// Width mismatch is rejected.
	if err := g.Unify(g.NewWire("w2", 4), a); err == nil {
		t.Errorf("expected width error")
	}
}

func TestIr_Substitute(t *testing.T) {
	var (
		alloc = NewAllocator()
		a     = NewVar("a", 4)
		hole  = alloc.FreshBV("tt", 4)
		e     = NewAnd(a, hole)
	)
	//
	bound := Substitute(e, func(s *Symbolic) (bitvec.Word, bool) {
		return bitvec.Must(0xF, 4), true
	})
	//
	if len(Symbols(bound)) != 0 {
		t.Errorf("substitution left holes in %s", bound)
	}
	// Unbound holes are retained.
	kept := Substitute(e, func(s *Symbolic) (bitvec.Word, bool) {
		return bitvec.Word{}, false
	})
	//
	if len(Symbols(kept)) != 1 {
		t.Errorf("substitution dropped holes in %s", kept)
	}
}

func TestIr_SharedHash(t *testing.T) {
	var (
		a      = NewVar("a", 4)
		shared = NewAnd(a, a)
		e1     = NewConcat(shared, shared)
		e2     = NewConcat(NewAnd(a, a), NewAnd(a, a))
	)
	// Sharing must not affect the structural hash.
	if Hash(e1) != Hash(e2) {
		t.Errorf("shared and unshared trees hash differently")
	}
	//
	if Hash(e1) == Hash(NewConcat(a, a)) {
		t.Errorf("distinct trees collide")
	}
}

func checkPanics(t *testing.T, fn func()) {
	defer func() {
		if recover() == nil {
			t.Errorf("expected a panic")
		}
	}()
	//
	fn()
}
