package spec

import (
	"testing"

	"github.com/fabriclab/go-techmap/pkg/bitvec"
	"github.com/fabriclab/go-techmap/pkg/interp"
)

func TestSpec_Parse(t *testing.T) {
	widths := map[string]uint{"a": 8, "b": 8}
	//
	for _, input := range []string{
		"(bvand a b)",
		"(bvadd a b)",
		"(bvlshr a b)",
		"(bveq a b)",
		"(bvnot a)",
		"(bvadd (bvmul a b) (bv 1 8))",
	} {
		e, err := Parse(input, widths)
		//
		if err != nil {
			t.Errorf("parsing %q failed: %v", input, err)
		} else if e.String() != input {
			t.Errorf("parsing %q round-tripped as %q", input, e)
		}
	}
}

func TestSpec_ParseErrors(t *testing.T) {
	widths := map[string]uint{"a": 8, "b": 4}
	//
	for _, input := range []string{
		"(bvand a)",        // arity
		"(bvand a b)",      // width mismatch
		"(bvfrob a a)",     // unknown operator
		"(bvand a c)",      // undeclared variable
		"(bv 256 8)",       // literal overflow
		"(bveq (bv 1 1) b)", // width mismatch
	} {
		if _, err := Parse(input, widths); err == nil {
			t.Errorf("parsing %q should have failed", input)
		}
	}
}

func TestSpec_Vars(t *testing.T) {
	e, err := Parse("(bvadd (bvmul a b) a)", map[string]uint{"a": 4, "b": 4})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	//
	vars := Vars(e)
	if len(vars) != 2 || vars[0].Name != "a" || vars[1].Name != "b" {
		t.Errorf("unexpected variables %v", vars)
	}
}

func TestSpec_Eval(t *testing.T) {
	var (
		widths = map[string]uint{"a": 8, "b": 8}
		env    = map[string]bitvec.Word{
			"a": bitvec.Must(200, 8),
			"b": bitvec.Must(100, 8),
		}
	)
	//
	checks := map[string]uint64{
		"(bvand a b)":  200 & 100,
		"(bvor a b)":   200 | 100,
		"(bvxor a b)":  200 ^ 100,
		"(bvadd a b)":  (200 + 100) & 0xFF,
		"(bvsub a b)":  (200 - 100) & 0xFF,
		"(bvmul a b)":  (200 * 100) & 0xFF,
		"(bvshl a b)":  0, // shift of 100 saturates
		"(bvlshr a b)": 0,
		"(bveq a a)":   1,
		"(bveq a b)":   0,
	}
	//
	for input, expected := range checks {
		e, err := Parse(input, widths)
		if err != nil {
			t.Fatalf("parsing %q: %v", input, err)
		}
		//
		v, err := Eval[bitvec.Word](interp.Concrete{}, env, e)
		if err != nil {
			t.Fatalf("evaluating %q: %v", input, err)
		}
		//
		if v.Uint64() != expected {
			t.Errorf("%q gave %d, expected %d", input, v.Uint64(), expected)
		}
	}
}
