package synth

import (
	"fmt"
	"testing"

	"github.com/fabriclab/go-techmap/pkg/arch"
	"github.com/fabriclab/go-techmap/pkg/iface"
	"github.com/fabriclab/go-techmap/pkg/ir"
)

// Realization succeeds directly when the architecture implements the
// requested interface.
func TestRealize_Direct(t *testing.T) {
	var (
		d     = loadArch(t, "lattice_ecp5")
		alloc = ir.NewAllocator()
	)
	//
	result, data, err := Realize(d, iface.Lut(4), lutPorts(4), nil, alloc)
	if err != nil {
		t.Fatalf("realize failed: %v", err)
	}
	// One 16-bit truth table allocated.
	if data.Shape() != "L1" {
		t.Errorf("unexpected token shape %s", data.Shape())
	}
	//
	if ir.NewMapRef(result, "O").Width() != 1 {
		t.Errorf("output width")
	}
	// Exactly one fresh symbol, 16 bits wide.
	symbols := ir.Symbols(result)
	if len(symbols) != 1 || symbols[0].Width() != 16 {
		t.Errorf("unexpected symbols %v", symbols)
	}
}

// A LUT2 on an architecture holding only LUT4s pads the unused inputs high.
func TestRealize_SmallerLut(t *testing.T) {
	var (
		d     = loadArch(t, "lattice_ecp5")
		alloc = ir.NewAllocator()
	)
	//
	result, data, err := Realize(d, iface.Lut(2), lutPorts(2), nil, alloc)
	if err != nil {
		t.Fatalf("realize failed: %v", err)
	}
	// Still a single LUT4 truth table.
	if data.Shape() != "L1" {
		t.Errorf("unexpected token shape %s", data.Shape())
	}
	// The realization instantiates the LUT4 primitive.
	if !usesModule(result, "LUT4") {
		t.Errorf("expected a LUT4 instance")
	}
}

// A LUT6 on an architecture holding only LUT4s Shannon-expands; the token is
// the (lut0, lut1, mux) triple, recursively.
func TestRealize_LargerLut(t *testing.T) {
	var (
		d     = loadArch(t, "sofa")
		alloc = ir.NewAllocator()
	)
	//
	_, data, err := Realize(d, iface.Lut(6), lutPorts(6), nil, alloc)
	if err != nil {
		t.Fatalf("realize failed: %v", err)
	}
	// LUT6 -> 2xLUT5 + mux; LUT5 -> 2xLUT4 + mux; muxes are LUT3s padded
	// into LUT4s.
	expected := "((L1 L1 L1) (L1 L1 L1) L1)"
	if data.Shape() != expected {
		t.Errorf("unexpected token shape %s, expected %s", data.Shape(), expected)
	}
}

// A carry of non-native width is tiled from the native carry, with all tiles
// sharing one token plus a pair of padding holes.
func TestRealize_CarryRetile(t *testing.T) {
	var (
		d     = loadArch(t, "lattice_ecp5")
		alloc = ir.NewAllocator()
	)
	//
	result, data, err := Realize(d, iface.Carry(3), carryPorts(3), nil, alloc)
	if err != nil {
		t.Fatalf("realize failed: %v", err)
	}
	// (tile leaf with INIT0/INIT1, padding pair)
	if data.Shape() != "(L2 L2)" {
		t.Errorf("unexpected token shape %s", data.Shape())
	}
	//
	if got := ir.NewMapRef(result, "O").Width(); got != 3 {
		t.Errorf("O width %d", got)
	}
	//
	if got := ir.NewMapRef(result, "CO").Width(); got != 1 {
		t.Errorf("CO width %d", got)
	}
	// Two tiles sharing two INITs, plus two padding bits.
	if symbols := ir.Symbols(result); len(symbols) != 4 {
		t.Errorf("expected 4 symbols, found %d", len(symbols))
	}
}

// With no carry at all, the chain is invented from LUTs and MUXes.
func TestRealize_CarryFromLuts(t *testing.T) {
	var (
		d     = loadArch(t, "sofa")
		alloc = ir.NewAllocator()
	)
	//
	result, data, err := Realize(d, iface.Carry(2), carryPorts(2), nil, alloc)
	if err != nil {
		t.Fatalf("realize failed: %v", err)
	}
	// carry2 -> (carry1, carry1); each carry1 -> (mux, lut).
	if data.Shape() != "((L1 L1) (L1 L1))" {
		t.Errorf("unexpected token shape %s", data.Shape())
	}
	//
	if got := ir.NewMapRef(result, "O").Width(); got != 2 {
		t.Errorf("O width %d", got)
	}
	//
	if !usesModule(result, "frac_lut4") {
		t.Errorf("expected frac_lut4 instances")
	}
}

// Missing ports and unrealizable interfaces fail with diagnostics.
func TestRealize_Failures(t *testing.T) {
	var (
		d     = loadArch(t, "sofa")
		alloc = ir.NewAllocator()
	)
	// Missing port
	if _, _, err := Realize(d, iface.Lut(2), nil, nil, alloc); err == nil {
		t.Errorf("expected missing-port error")
	}
	// Wrong port width
	ports := lutPorts(2)
	ports["I0"] = ir.NewVar("x", 2)
	//
	if _, _, err := Realize(d, iface.Lut(2), ports, nil, alloc); err == nil {
		t.Errorf("expected width error")
	}
	// Unknown interface parameters
	if _, _, err := Realize(d, iface.NewId(iface.MuxKind, map[string]uint{"num_inputs": 4}),
		nil, nil, alloc); err == nil {
		t.Errorf("expected unrealizable error")
	}
}

// ============================================================================
// Properties
// ============================================================================

// Determinism of shape: independent realizations produce tokens of identical
// tree shape.
func TestRealize_ShapeDeterminism(t *testing.T) {
	for _, name := range []string{"lattice_ecp5", "xilinx_ultrascale_plus", "sofa"} {
		d := loadArch(t, name)
		//
		for _, id := range []iface.Id{iface.Lut(2), iface.Lut(5), iface.Mux2(), iface.Carry(4)} {
			_, data1, err1 := Realize(d, id, portsFor(id), nil, ir.NewAllocator())
			_, data2, err2 := Realize(d, id, portsFor(id), nil, ir.NewAllocator())
			//
			if (err1 == nil) != (err2 == nil) {
				t.Fatalf("%s on %s: nondeterministic failure", id, name)
			} else if err1 != nil {
				continue
			}
			//
			if data1.Shape() != data2.Shape() {
				t.Errorf("%s on %s: shapes %s and %s", id, name, data1.Shape(), data2.Shape())
			}
		}
	}
}

// Internal-data reuse: threading a token back recreates the same symbols and
// allocates nothing fresh.
func TestRealize_DataReuse(t *testing.T) {
	for _, name := range []string{"lattice_ecp5", "xilinx_ultrascale_plus", "sofa"} {
		var (
			d     = loadArch(t, name)
			alloc = ir.NewAllocator()
		)
		//
		for _, id := range []iface.Id{iface.Lut(3), iface.Mux2(), iface.Carry(3)} {
			expr1, data, err := Realize(d, id, portsFor(id), nil, alloc)
			if err != nil {
				continue
			}
			//
			count := alloc.Count()
			//
			expr2, _, err := Realize(d, id, portsFor(id), data, alloc)
			if err != nil {
				t.Fatalf("%s on %s: reuse failed: %v", id, name, err)
			}
			//
			if alloc.Count() != count {
				t.Errorf("%s on %s: reuse allocated %d fresh symbols", id, name, alloc.Count()-count)
			}
			//
			if !subset(ir.Symbols(expr2), ir.Symbols(expr1)) {
				t.Errorf("%s on %s: reuse introduced foreign symbols", id, name)
			}
		}
	}
}

// Realization completeness: any fabric holding a LUT{k>=2} realizes every
// LUT{m}, MUX2 and carry{w}.
func TestRealize_Completeness(t *testing.T) {
	d := loadArch(t, "sofa")
	//
	for m := uint(1); m <= 8; m++ {
		if _, _, err := Realize(d, iface.Lut(m), lutPorts(m), nil, ir.NewAllocator()); err != nil {
			t.Errorf("LUT%d: %v", m, err)
		}
	}
	//
	if _, _, err := Realize(d, iface.Mux2(), muxPorts(), nil, ir.NewAllocator()); err != nil {
		t.Errorf("MUX2: %v", err)
	}
	//
	for _, w := range []uint{1, 2, 3, 8} {
		if _, _, err := Realize(d, iface.Carry(w), carryPorts(w), nil, ir.NewAllocator()); err != nil {
			t.Errorf("carry%d: %v", w, err)
		}
	}
}

// ============================================================================
// Helpers
// ============================================================================

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

func usesModule(e ir.Expr, name string) bool {
	found := false
	//
	ir.Walk(e, func(e ir.Expr) {
		if inst, ok := e.(*ir.Instance); ok && inst.Module == name {
			found = true
		}
	})
	//
	return found
}

func lutPorts(k uint) map[string]ir.Expr {
	ports := make(map[string]ir.Expr, k)
	//
	for i := uint(0); i < k; i++ {
		ports[fmt.Sprintf("I%d", i)] = ir.NewVar(fmt.Sprintf("x%d", i), 1)
	}
	//
	return ports
}

func muxPorts() map[string]ir.Expr {
	return map[string]ir.Expr{
		"I0": ir.NewVar("x0", 1), "I1": ir.NewVar("x1", 1), "S": ir.NewVar("s", 1),
	}
}

func carryPorts(w uint) map[string]ir.Expr {
	return map[string]ir.Expr{
		"CI": ir.NewVar("ci", 1), "DI": ir.NewVar("di", w), "S": ir.NewVar("s", w),
	}
}

func portsFor(id iface.Id) map[string]ir.Expr {
	switch id.Kind {
	case iface.LutKind:
		k, _ := id.Param("num_inputs")
		return lutPorts(k)
	case iface.MuxKind:
		return muxPorts()
	default:
		w, _ := id.Param("width")
		return carryPorts(w)
	}
}

func subset(xs []*ir.Symbolic, ys []*ir.Symbolic) bool {
	ids := make(map[uint]bool, len(ys))
	//
	for _, y := range ys {
		ids[y.Id()] = true
	}
	//
	for _, x := range xs {
		if !ids[x.Id()] {
			return false
		}
	}
	//
	return true
}
