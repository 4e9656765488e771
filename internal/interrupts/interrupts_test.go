package interrupts

import "testing"

func TestController_RequestAndPending(t *testing.T) {
	c := New()
	c.Write(EnableRegister, 0x1F)
	c.Request(Timer)
	if c.Pending() != 1<<uint(Timer) {
		t.Fatalf("pending got %02X want %02X", c.Pending(), 1<<uint(Timer))
	}
}

func TestController_ClearRemovesPending(t *testing.T) {
	c := New()
	c.Write(EnableRegister, 0x1F)
	c.Request(VBlank)
	c.Clear(VBlank)
	if c.Pending() != 0 {
		t.Fatalf("expected no pending interrupts, got %02X", c.Pending())
	}
}

func TestController_DisabledSourceNeverPends(t *testing.T) {
	c := New()
	c.Write(EnableRegister, 0x00)
	c.Request(VBlank)
	if c.Pending() != 0 {
		t.Fatalf("expected disabled source to not pend, got %02X", c.Pending())
	}
}

func TestLowest_PicksHighestPriority(t *testing.T) {
	pending := byte(1<<uint(Timer) | 1<<uint(LCDStat) | 1<<uint(Joypad))
	s, ok := Lowest(pending)
	if !ok || s != LCDStat {
		t.Fatalf("got %v, %v want LCDStat, true", s, ok)
	}
}

func TestLowest_NoneReturnsFalse(t *testing.T) {
	if _, ok := Lowest(0); ok {
		t.Fatalf("expected no pending source")
	}
}

func TestVector_MatchesFixedAddresses(t *testing.T) {
	cases := map[Source]uint16{VBlank: 0x40, LCDStat: 0x48, Timer: 0x50, Serial: 0x58, Joypad: 0x60}
	for s, want := range cases {
		if got := s.Vector(); got != want {
			t.Fatalf("%v vector got %04X want %04X", s, got, want)
		}
	}
}

func TestReadWrite_ReservedBitsOfIF(t *testing.T) {
	c := New()
	c.Write(FlagRegister, 0xFF)
	if got := c.Read(FlagRegister); got != 0xFF {
		t.Fatalf("IF got %02X want FF (reserved bits read as 1)", got)
	}
}
