package sketch

import (
	"testing"

	"github.com/fabriclab/go-techmap/pkg/arch"
	"github.com/fabriclab/go-techmap/pkg/ir"
)

// Width preservation: every generator advertises the width its expression
// exposes.
func TestSketch_Widths(t *testing.T) {
	d := loadArch(t, "lattice_ecp5")
	//
	checks := []struct {
		family string
		width  uint
	}{
		{"bitwise", 8},
		{"bitwise-with-carry", 3},
		{"multiplication", 2},
		{"shift", 5},
	}
	//
	for _, check := range checks {
		generate, _ := Lookup(check.family)
		inputs := vars(check.width, check.width)
		//
		e, _, err := generate(d, inputs, 2, check.width, nil, ir.NewAllocator())
		if err != nil {
			t.Fatalf("%s: %v", check.family, err)
		}
		//
		if e.Width() != check.width {
			t.Errorf("%s: width %d, expected %d", check.family, e.Width(), check.width)
		}
	}
	// Comparison yields a single bit.
	e, _, err := Comparison(d, vars(8, 8), 2, 8, nil, ir.NewAllocator())
	if err != nil {
		t.Fatalf("comparison: %v", err)
	}
	//
	if e.Width() != 1 {
		t.Errorf("comparison: width %d, expected 1", e.Width())
	}
}

// Idempotence: the same generation against a fresh allocator produces
// structurally identical expressions, fresh-symbolic identity included
// (allocation order is total within a session).
func TestSketch_Idempotence(t *testing.T) {
	d := loadArch(t, "lattice_ecp5")
	//
	for _, family := range Families() {
		generate, _ := Lookup(family)
		//
		e1, _, err1 := generate(d, vars(3, 3), 2, 3, nil, ir.NewAllocator())
		e2, _, err2 := generate(d, vars(3, 3), 2, 3, nil, ir.NewAllocator())
		//
		if err1 != nil || err2 != nil {
			t.Fatalf("%s: %v %v", family, err1, err2)
		}
		//
		if ir.Hash(e1) != ir.Hash(e2) {
			t.Errorf("%s: independent generations differ structurally", family)
		}
	}
}

// Token reuse: regenerating with the returned token allocates nothing.
func TestSketch_TokenReuse(t *testing.T) {
	d := loadArch(t, "xilinx_ultrascale_plus")
	//
	for _, family := range Families() {
		var (
			generate, _ = Lookup(family)
			alloc       = ir.NewAllocator()
		)
		//
		_, token, err := generate(d, vars(4, 4), 2, 4, nil, alloc)
		if err != nil {
			t.Fatalf("%s: %v", family, err)
		}
		//
		count := alloc.Count()
		//
		_, _, err = generate(d, vars(4, 4), 2, 4, token, alloc)
		if err != nil {
			t.Fatalf("%s: reuse failed: %v", family, err)
		}
		//
		if alloc.Count() != count {
			t.Errorf("%s: reuse allocated %d fresh symbols", family, alloc.Count()-count)
		}
	}
}

// Narrower inputs are extended, adding one extension-choice hole per
// narrower input.
func TestSketch_Extension(t *testing.T) {
	var (
		d     = loadArch(t, "lattice_ecp5")
		alloc = ir.NewAllocator()
	)
	//
	e, _, err := Bitwise(d, []ir.Expr{ir.NewVar("a", 8), ir.NewVar("b", 3)}, 2, 8, nil, alloc)
	if err != nil {
		t.Fatalf("bitwise: %v", err)
	}
	//
	if e.Width() != 8 {
		t.Errorf("width %d", e.Width())
	}
	// One extension hole, two routing holes, one truth table.
	booleans := 0
	//
	for _, s := range ir.Symbols(e) {
		if s.IsBool() {
			booleans++
		}
	}
	//
	if booleans != 3 {
		t.Errorf("expected 3 boolean holes, found %d", booleans)
	}
	// An input wider than the sketch is rejected.
	_, _, err = Bitwise(d, []ir.Expr{ir.NewVar("a", 9)}, 1, 8, nil, ir.NewAllocator())
	if err == nil {
		t.Errorf("expected width error")
	}
}

// The bitwise slice shares one truth table across all bit positions.
func TestSketch_SharedTruthTable(t *testing.T) {
	var (
		d     = loadArch(t, "lattice_ecp5")
		alloc = ir.NewAllocator()
	)
	//
	e, _, err := Bitwise(d, vars(8, 8), 2, 8, nil, alloc)
	if err != nil {
		t.Fatalf("bitwise: %v", err)
	}
	// Symbols: 2 routing booleans + exactly one 16-bit truth table.
	tables := 0
	//
	for _, s := range ir.Symbols(e) {
		if s.Width() == 16 {
			tables++
		}
	}
	//
	if tables != 1 {
		t.Errorf("expected one shared truth table, found %d", tables)
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

func vars(widthA uint, widthB uint) []ir.Expr {
	return []ir.Expr{ir.NewVar("a", widthA), ir.NewVar("b", widthB)}
}
