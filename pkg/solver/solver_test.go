package solver

import (
	"testing"

	"github.com/fabriclab/go-techmap/pkg/arch"
	"github.com/fabriclab/go-techmap/pkg/bitvec"
	"github.com/fabriclab/go-techmap/pkg/interp"
	"github.com/fabriclab/go-techmap/pkg/ir"
	"github.com/fabriclab/go-techmap/pkg/sketch"
	"github.com/fabriclab/go-techmap/pkg/spec"
)

// 8-bit bitwise AND on Lattice ECP5 (LUT4 only).
func TestSolver_E1_AndEcp5(t *testing.T) {
	runScenario(t, scenario{
		arch:    "lattice_ecp5",
		family:  "bitwise",
		source:  "(bvand a b)",
		widthA:  8,
		widthB:  8,
		nInputs: 2,
		width:   8,
	})
}

// 3-bit addition on Lattice ECP5 (LUT4 + CCU2C, carry retiled to width 3).
func TestSolver_E2_AddEcp5(t *testing.T) {
	runScenario(t, scenario{
		arch:    "lattice_ecp5",
		family:  "bitwise-with-carry",
		source:  "(bvadd a b)",
		widthA:  3,
		widthB:  3,
		nInputs: 2,
		width:   3,
	})
}

// 8-bit equality on Xilinx UltraScale+ (LUT2/LUT6 + CARRY8 carry-out).
func TestSolver_E3_EqUltrascale(t *testing.T) {
	runScenario(t, scenario{
		arch:    "xilinx_ultrascale_plus",
		family:  "comparison",
		source:  "(bveq a b)",
		widthA:  8,
		widthB:  8,
		nInputs: 2,
		width:   8,
	})
}

// 2-bit multiplication on Xilinx UltraScale+.
func TestSolver_E4_MulUltrascale(t *testing.T) {
	runScenario(t, scenario{
		arch:    "xilinx_ultrascale_plus",
		family:  "multiplication",
		source:  "(bvmul a b)",
		widthA:  2,
		widthB:  2,
		nInputs: 2,
		width:   2,
	})
}

// 5-bit logical right shift on Lattice ECP5.
func TestSolver_E5_LshrEcp5(t *testing.T) {
	runScenario(t, scenario{
		arch:    "lattice_ecp5",
		family:  "shift",
		source:  "(bvlshr a b)",
		widthA:  5,
		widthB:  5,
		nInputs: 2,
		width:   5,
	})
}

// 8-bit addition on SOFA, whose fabric has no carry at all: the chain is
// synthesized from LUTs and MUXes.
func TestSolver_E6_AddSofa(t *testing.T) {
	runScenario(t, scenario{
		arch:    "sofa",
		family:  "bitwise-with-carry",
		source:  "(bvadd a b)",
		widthA:  8,
		widthB:  8,
		nInputs: 2,
		width:   8,
	})
}

// An unmatchable specification reports UNSAT rather than an answer: a
// bitwise slice cannot express addition (bits cannot cross lanes).
func TestSolver_Unsat(t *testing.T) {
	var (
		d     = loadArch(t, "lattice_ecp5")
		alloc = ir.NewAllocator()
	)
	//
	specification, err := spec.Parse("(bvadd a b)", map[string]uint{"a": 4, "b": 4})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	//
	generated, _, err := sketch.Bitwise(d, inputs(4, 4), 2, 4, nil, alloc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	//
	result, err := Synthesize(Query{Spec: specification, Sketch: generated}, Options{})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	//
	if result.Status != StatusUnsat {
		t.Errorf("expected unsat, got %s", result.Status)
	}
}

// A width mismatch between specification and sketch is rejected up front.
func TestSolver_WidthMismatch(t *testing.T) {
	var (
		d     = loadArch(t, "lattice_ecp5")
		alloc = ir.NewAllocator()
	)
	//
	specification, _ := spec.Parse("(bvand a b)", map[string]uint{"a": 8, "b": 8})
	//
	generated, _, err := sketch.Bitwise(d, inputs(4, 4), 2, 4, nil, alloc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	//
	if _, err := Synthesize(Query{Spec: specification, Sketch: generated}, Options{}); err == nil {
		t.Errorf("expected width error")
	}
}

// ============================================================================
// Harness
// ============================================================================

type scenario struct {
	arch    string
	family  string
	source  string
	widthA  uint
	widthB  uint
	nInputs uint
	width   uint
}

func runScenario(t *testing.T, s scenario) {
	var (
		d     = loadArch(t, s.arch)
		alloc = ir.NewAllocator()
	)
	//
	specification, err := spec.Parse(s.source, map[string]uint{"a": s.widthA, "b": s.widthB})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	//
	generate, ok := sketch.Lookup(s.family)
	if !ok {
		t.Fatalf("unknown family %s", s.family)
	}
	//
	generated, _, err := generate(d, inputs(s.widthA, s.widthB), s.nInputs, s.width, nil, alloc)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	//
	result, err := Synthesize(Query{Spec: specification, Sketch: generated}, Options{})
	if err != nil {
		t.Fatalf("synthesize: %v", err)
	}
	//
	if result.Status != StatusSat {
		t.Fatalf("status %s after %d iterations", result.Status, result.Iterations)
	}
	// Fill the holes and check equivalence exhaustively.
	completed := ir.Substitute(generated, result.Model.Bind)
	//
	if remaining := ir.Symbols(completed); len(remaining) != 0 {
		t.Fatalf("completed sketch still has %d holes", len(remaining))
	}
	//
	assertEquivalent(t, specification, completed, s.widthA, s.widthB)
}

// assertEquivalent checks the completed sketch against the specification for
// every assignment to the two free variables.
func assertEquivalent(t *testing.T, specification spec.Expr, completed ir.Expr, widthA uint, widthB uint) {
	t.Helper()
	//
	var (
		concrete interp.Concrete
		table    = interp.Builtins[bitvec.Word]()
	)
	//
	for a := uint64(0); a < 1<<widthA; a++ {
		for b := uint64(0); b < 1<<widthB; b++ {
			env := map[string]bitvec.Word{
				"a": bitvec.Must(a, widthA),
				"b": bitvec.Must(b, widthB),
			}
			//
			expected, err := spec.Eval[bitvec.Word](concrete, env, specification)
			if err != nil {
				t.Fatalf("spec eval: %v", err)
			}
			//
			actual, err := interp.Eval[bitvec.Word](concrete, table,
				&interp.Env[bitvec.Word]{Vars: env}, completed)
			//
			if err != nil {
				t.Fatalf("netlist eval: %v", err)
			}
			//
			if !actual.Equals(expected) {
				t.Fatalf("a=%d b=%d: netlist %s, specification %s", a, b, actual, expected)
			}
		}
	}
}

func loadArch(t *testing.T, name string) *arch.Description {
	t.Helper()
	//
	d, err := arch.Load("../../architecture_descriptions/" + name + ".yml")
	if err != nil {
		t.Fatalf("loading %s: %v", name, err)
	}
	//
	return d
}

func inputs(widthA uint, widthB uint) []ir.Expr {
	return []ir.Expr{ir.NewVar("a", widthA), ir.NewVar("b", widthB)}
}
