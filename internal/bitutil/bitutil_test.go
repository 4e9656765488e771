package bitutil

import "testing"

func TestCombineHighLow(t *testing.T) {
	if got := Combine(0x12, 0x34); got != 0x1234 {
		t.Fatalf("Combine got %04X want 1234", got)
	}
	if High(0x1234) != 0x12 || Low(0x1234) != 0x34 {
		t.Fatalf("High/Low round trip failed")
	}
}

func TestBitOps(t *testing.T) {
	v := byte(0)
	v = Set(3, v)
	if !IsSet(3, v) || v != 0x08 {
		t.Fatalf("Set/IsSet got %02X", v)
	}
	v = Clear(3, v)
	if IsSet(3, v) || v != 0 {
		t.Fatalf("Clear got %02X", v)
	}
	if SetTo(7, 0, true) != 0x80 || SetTo(7, 0x80, false) != 0 {
		t.Fatalf("SetTo round trip failed")
	}
	if !IsSet16(9, 1<<9) || IsSet16(9, 1<<10) {
		t.Fatalf("IsSet16 failed")
	}
}

func TestHalfCarryPredicates(t *testing.T) {
	cases := []struct {
		a, b byte
		want bool
	}{
		{0x0F, 0x01, true},
		{0x0E, 0x01, false},
		{0x3A, 0xC6, true},
		{0x00, 0x00, false},
	}
	for _, c := range cases {
		if got := HalfCarryAdd8(c.a, c.b); got != c.want {
			t.Fatalf("HalfCarryAdd8(%02X,%02X) = %v want %v", c.a, c.b, got, c.want)
		}
	}
	if !HalfCarryAdd8C(0x0E, 0x01, 1) {
		t.Fatalf("HalfCarryAdd8C must include the carry-in")
	}
	if !HalfCarrySub8(0x10, 0x01) {
		t.Fatalf("HalfCarrySub8(0x10,0x01) must borrow from bit 4")
	}
	if HalfCarrySub8(0x11, 0x01) {
		t.Fatalf("HalfCarrySub8(0x11,0x01) must not borrow")
	}
	if !HalfCarrySub8C(0x10, 0x0F, 1) {
		t.Fatalf("HalfCarrySub8C must include the borrow-in")
	}
	if !HalfCarryAdd16(0x0FFF, 0x0001) || HalfCarryAdd16(0x0FFE, 0x0001) {
		t.Fatalf("HalfCarryAdd16 bit-11 carry detection failed")
	}
}
