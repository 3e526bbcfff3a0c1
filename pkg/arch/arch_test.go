package arch

import (
	"strings"
	"testing"

	"github.com/fabriclab/go-techmap/pkg/iface"
)

func TestArch_LoadEcp5(t *testing.T) {
	d := loadArch(t, "lattice_ecp5")
	//
	if len(d.Implementations()) != 2 {
		t.Fatalf("expected 2 implementations, found %d", len(d.Implementations()))
	}
	//
	lut, ok := d.Lookup(iface.Lut(4))
	if !ok || lut.Module.Name != "LUT4" {
		t.Errorf("LUT4 lookup failed")
	}
	//
	if len(lut.Internal) != 1 || lut.Internal[0].Name != "INIT" || lut.Internal[0].Width != 16 {
		t.Errorf("LUT4 internal state malformed")
	}
	//
	carry, ok := d.Lookup(iface.Carry(2))
	if !ok || carry.Module.Name != "CCU2C" {
		t.Errorf("carry2 lookup failed")
	}
	// Internal-data order must follow the file.
	if carry.Internal[0].Name != "INIT0" || carry.Internal[1].Name != "INIT1" {
		t.Errorf("CCU2C internal state out of order")
	}
	//
	if _, ok := d.Lookup(iface.Lut(6)); ok {
		t.Errorf("unexpected LUT6 on ecp5")
	}
}

func TestArch_LoadUltrascale(t *testing.T) {
	d := loadArch(t, "xilinx_ultrascale_plus")
	//
	for _, id := range []iface.Id{iface.Lut(2), iface.Lut(6), iface.Carry(8)} {
		if _, ok := d.Lookup(id); !ok {
			t.Errorf("missing %s", id)
		}
	}
	// CARRY8 has no programmable state.
	carry, _ := d.Lookup(iface.Carry(8))
	if len(carry.Internal) != 0 {
		t.Errorf("CARRY8 should have no internal state")
	}
}

func TestArch_LoadSofa(t *testing.T) {
	d := loadArch(t, "sofa")
	//
	if _, ok := d.Lookup(iface.Lut(4)); !ok {
		t.Errorf("missing LUT4")
	}
	//
	if _, _, ok := d.FindCarry(func(uint) bool { return true }); ok {
		t.Errorf("sofa should have no carry")
	}
	//
	if d.HasMux() {
		t.Errorf("sofa should have no mux")
	}
}

func TestArch_FindOrder(t *testing.T) {
	d := loadArch(t, "xilinx_ultrascale_plus")
	// First declared LUT wins.
	_, k, ok := d.FindLut(func(uint) bool { return true })
	if !ok || k != 2 {
		t.Errorf("expected LUT2 first, found LUT%d", k)
	}
	//
	_, k, ok = d.FindLut(func(x uint) bool { return x > 4 })
	if !ok || k != 6 {
		t.Errorf("expected LUT6, found LUT%d", k)
	}
}

func TestArch_Malformed(t *testing.T) {
	checks := map[string]string{
		"missing interface": `
implementations:
  - modules:
      - module_name: LUT2
    outputs: {O: O}
`,
		"missing modules": `
implementations:
  - interface: {name: LUT, parameters: {num_inputs: 2}}
    outputs: {O: O}
`,
		"missing outputs": `
implementations:
  - interface: {name: LUT, parameters: {num_inputs: 2}}
    modules:
      - module_name: LUT2
        ports:
          - {name: I0, value: I0, direction: input, bitwidth: 1}
          - {name: I1, value: I1, direction: input, bitwidth: 1}
          - {name: O, direction: output, bitwidth: 1}
`,
		"one module": `
implementations:
  - interface: {name: LUT, parameters: {num_inputs: 2}}
    modules:
      - module_name: LUT2
      - module_name: LUT2b
    outputs: {O: O}
`,
		"unknown port direction": `
implementations:
  - interface: {name: LUT, parameters: {num_inputs: 2}}
    modules:
      - module_name: LUT2
        ports:
          - {name: I0, value: I0, direction: sideways, bitwidth: 1}
    outputs: {O: O}
`,
		"unresolved symbol": `
implementations:
  - interface: {name: LUT, parameters: {num_inputs: 2}}
    modules:
      - module_name: LUT2
        ports:
          - {name: I0, value: I9, direction: input, bitwidth: 1}
          - {name: I1, value: I1, direction: input, bitwidth: 1}
          - {name: O, direction: output, bitwidth: 1}
    outputs: {O: O}
`,
		"port width": `
implementations:
  - interface: {name: LUT, parameters: {num_inputs: 2}}
    modules:
      - module_name: LUT2
        ports:
          - {name: I0, value: "(concat I0 I1)", direction: input, bitwidth: 1}
          - {name: I1, value: I1, direction: input, bitwidth: 1}
          - {name: O, direction: output, bitwidth: 1}
    outputs: {O: O}
`,
	}
	//
	for name, source := range checks {
		if _, err := Parse(name, []byte(source)); err == nil {
			t.Errorf("%s: expected a load error", name)
		}
	}
}

func TestArch_Terms(t *testing.T) {
	for _, input := range []string{"(bv 3 2)", "(bit 0 DI)", "(concat S1 S0)", "CI"} {
		term, err := ParseTerm(input)
		//
		if err != nil {
			t.Errorf("parsing %q failed: %v", input, err)
		} else if term.String() != input {
			t.Errorf("parsing %q round-tripped as %q", input, term.String())
		}
	}
	//
	for _, input := range []string{"(bv 4 2)", "(bv 1)", "(bit x DI)", "(concat)", "(frob a)", "()"} {
		if _, err := ParseTerm(input); err == nil {
			t.Errorf("parsing %q should have failed", input)
		}
	}
}

func loadArch(t *testing.T, name string) *Description {
	t.Helper()
	//
	d, err := Load("../../architecture_descriptions/" + name + ".yml")
	if err != nil {
		t.Fatalf("loading %s: %v", name, err)
	}
	//
	if !strings.Contains(d.Name(), name) {
		t.Errorf("architecture name %q", d.Name())
	}
	//
	return d
}
