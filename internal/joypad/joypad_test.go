package joypad

import "testing"

func TestJoypad_DefaultReadIsAllReleased(t *testing.T) {
	j := New(nil)
	if got := j.Read(); got&0x0F != 0x0F {
		t.Fatalf("default lower bits got %02X want 0F", got&0x0F)
	}
}

func TestJoypad_DPadSelectionReflectsPresses(t *testing.T) {
	j := New(nil)
	j.Write(0x20) // bit4=0 selects d-pad, bit5=1 deselects buttons
	j.Press(Right)
	j.Press(Up)
	got := j.Read() & 0x0F
	if got != 0x0A { // bits for Right(0) and Up(2) cleared: 1010
		t.Fatalf("got %02X want 0A", got)
	}
}

func TestJoypad_ButtonSelectionReflectsPresses(t *testing.T) {
	j := New(nil)
	j.Write(0x10) // bit5=0 selects buttons, bit4=1 deselects d-pad
	j.Press(A)
	j.Press(Start)
	got := j.Read() & 0x0F
	if got != 0x06 { // A(bit0) and Start(bit3) cleared: 0110
		t.Fatalf("got %02X want 06", got)
	}
}

func TestJoypad_PressFiresInterruptOnlyWhenRowSelected(t *testing.T) {
	fired := 0
	j := New(func() { fired++ })
	j.Write(0x10) // select buttons only
	j.Press(Right) // d-pad not selected: no interrupt
	if fired != 0 {
		t.Fatalf("unexpected interrupt for unselected row")
	}
	j.Press(A) // buttons selected: interrupt
	if fired != 1 {
		t.Fatalf("expected interrupt for selected row press, got %d", fired)
	}
	j.Press(A) // already pressed: no further edge
	if fired != 1 {
		t.Fatalf("expected no interrupt on repeated press, got %d", fired)
	}
}

func TestJoypad_ReleaseClearsBit(t *testing.T) {
	j := New(nil)
	j.Write(0x20)
	j.Press(Left)
	j.Release(Left)
	if got := j.Read() & 0x0F; got != 0x0F {
		t.Fatalf("got %02X want 0F after release", got)
	}
}
