package cart

import "testing"

func TestMBC3_ROMBanking(t *testing.T) {
	rom := make([]byte, 256*1024)
	for bank := 0; bank < 16; bank++ {
		rom[bank*0x4000] = byte(bank)
	}
	m := NewMBC3(rom, 0)

	if got := m.Read(0x0000); got != 0x00 {
		t.Fatalf("bank0 read got %02X want 00", got)
	}
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("default switchable bank got %02X want 01", got)
	}

	m.Write(0x2000, 0x05)
	if got := m.Read(0x4000); got != 0x05 {
		t.Fatalf("bank5 read got %02X want 05", got)
	}

	// Writing 0 maps to 1.
	m.Write(0x2000, 0x00)
	if got := m.Read(0x4000); got != 0x01 {
		t.Fatalf("bank0->1 remap failed: got %02X", got)
	}
}

func TestMBC3_RAMBanking(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC3(rom, 4*0x2000)

	m.Write(0x0000, 0x0A) // RAM enable
	m.Write(0x4000, 0x02) // RAM bank 2
	m.Write(0xA000, 0x77)
	if got := m.Read(0xA000); got != 0x77 {
		t.Fatalf("RAM bank2 RW failed: got %02X", got)
	}

	m.Write(0x4000, 0x00)
	if got := m.Read(0xA000); got == 0x77 {
		t.Fatalf("RAM bank0 unexpectedly aliases bank2")
	}
}

// RTC is a Non-goal: selecting an RTC register index (0x08-0x0C) must not
// panic or touch RAM, and must read back whatever byte was last written.
func TestMBC3_RTCRegistersAreInertLatches(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC3(rom, 0x2000)

	m.Write(0x0000, 0x0A) // RAM enable
	m.Write(0x4000, 0x08) // select RTC seconds register
	m.Write(0xA000, 42)
	if got := m.Read(0xA000); got != 42 {
		t.Fatalf("RTC register did not latch: got %d want 42", got)
	}

	// Switching back to a RAM bank must not see the RTC byte.
	m.Write(0x4000, 0x00)
	m.Write(0xA000, 9)
	if got := m.Read(0xA000); got != 9 {
		t.Fatalf("RAM bank 0 read got %d want 9", got)
	}

	m.Write(0x4000, 0x08)
	if got := m.Read(0xA000); got != 42 {
		t.Fatalf("RTC latch not preserved across bank switch: got %d", got)
	}
}

func TestMBC3_SaveLoadRAM(t *testing.T) {
	rom := make([]byte, 0x8000)
	m := NewMBC3(rom, 0x2000)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0xAB)

	data := m.SaveRAM()
	n := NewMBC3(rom, 0x2000)
	n.LoadRAM(data)
	n.Write(0x0000, 0x0A)
	if got := n.Read(0xA000); got != 0xAB {
		t.Fatalf("RAM did not persist: got %02X want AB", got)
	}
}
