package bitvec

import "testing"

func TestBitvec_1(t *testing.T) {
	w := Must(0xA5, 8)
	//
	if w.Uint64() != 0xA5 || w.Width() != 8 {
		t.Errorf("unexpected word %s", w)
	}
}

func TestBitvec_2(t *testing.T) {
	if _, err := New(0x100, 8); err == nil {
		t.Errorf("expected overflow error")
	}
}

func TestBitvec_3(t *testing.T) {
	if _, err := New(0, 0); err == nil {
		t.Errorf("expected width error")
	}
	//
	if _, err := New(0, 65); err == nil {
		t.Errorf("expected width error")
	}
}

func TestBitvec_4(t *testing.T) {
	w := Must(0b1010, 4)
	//
	for i, expected := range []bool{false, true, false, true} {
		if w.Bit(uint(i)) != expected {
			t.Errorf("bit %d of %s", i, w)
		}
	}
}

func TestBitvec_5(t *testing.T) {
	w := Must(0xA5, 8)
	//
	hi, err := w.Extract(7, 4)
	if err != nil || hi.Uint64() != 0xA || hi.Width() != 4 {
		t.Errorf("extract [7:4] of %s gave %s", w, hi)
	}
	//
	if _, err := w.Extract(8, 0); err == nil {
		t.Errorf("expected range error")
	}
}

func TestBitvec_6(t *testing.T) {
	w, err := Must(0xA, 4).Concat(Must(0x5, 4))
	if err != nil || !w.Equals(Must(0xA5, 8)) {
		t.Errorf("concat gave %s", w)
	}
}

func TestBitvec_7(t *testing.T) {
	a, b := Must(0b1100, 4), Must(0b1010, 4)
	//
	if !a.And(b).Equals(Must(0b1000, 4)) {
		t.Errorf("and gave %s", a.And(b))
	}
	//
	if !a.Or(b).Equals(Must(0b1110, 4)) {
		t.Errorf("or gave %s", a.Or(b))
	}
	//
	if !a.Xor(b).Equals(Must(0b0110, 4)) {
		t.Errorf("xor gave %s", a.Xor(b))
	}
	//
	if !a.Not().Equals(Must(0b0011, 4)) {
		t.Errorf("not gave %s", a.Not())
	}
}

func TestBitvec_8(t *testing.T) {
	a, b := Must(200, 8), Must(100, 8)
	//
	if !a.Add(b).Equals(Must(44, 8)) {
		t.Errorf("add gave %s", a.Add(b))
	}
	//
	if !b.Sub(a).Equals(Must(156, 8)) {
		t.Errorf("sub gave %s", b.Sub(a))
	}
	//
	if !a.Mul(b).Equals(Must(32, 8)) {
		t.Errorf("mul gave %s", a.Mul(b))
	}
}

func TestBitvec_9(t *testing.T) {
	a := Must(0b10110, 5)
	//
	if !a.Shl(Must(2, 5)).Equals(Must(0b11000, 5)) {
		t.Errorf("shl gave %s", a.Shl(Must(2, 5)))
	}
	//
	if !a.Lshr(Must(2, 5)).Equals(Must(0b00101, 5)) {
		t.Errorf("lshr gave %s", a.Lshr(Must(2, 5)))
	}
	//
	if !a.Ashr(Must(2, 5)).Equals(Must(0b11101, 5)) {
		t.Errorf("ashr gave %s", a.Ashr(Must(2, 5)))
	}
	// Overshift
	if !a.Lshr(Must(9, 5)).Equals(Zero(5)) {
		t.Errorf("overshift gave %s", a.Lshr(Must(9, 5)))
	}
	//
	if !a.Ashr(Must(9, 5)).Equals(Must(0b11111, 5)) {
		t.Errorf("arithmetic overshift gave %s", a.Ashr(Must(9, 5)))
	}
}

func TestBitvec_10(t *testing.T) {
	a := Must(0b101, 3)
	//
	z, err := a.ZeroExtend(6)
	if err != nil || !z.Equals(Must(0b000101, 6)) {
		t.Errorf("zero extend gave %s", z)
	}
	//
	d, err := a.DupExtend(6)
	if err != nil || !d.Equals(Must(0b111101, 6)) {
		t.Errorf("dup extend gave %s", d)
	}
	//
	if _, err := a.ZeroExtend(2); err == nil {
		t.Errorf("expected narrowing error")
	}
}
