package ppu

import "testing"

// Disabling the LCD resets LY to 0 and parks the PPU in mode 0; LY stays
// 0 no matter how far the clock advances while the display is off.
func TestPPU_DisableLCDResetsAndFreezesLY(t *testing.T) {
	p := New(nil)
	p.CPUWrite(0xFF40, 0x80)
	p.Tick(5 * 456)
	if ly := p.CPURead(0xFF44); ly != 5 {
		t.Fatalf("LY got %d want 5", ly)
	}

	p.CPUWrite(0xFF40, 0x00)
	if ly := p.CPURead(0xFF44); ly != 0 {
		t.Fatalf("LY after LCD off got %d want 0", ly)
	}
	if mode := p.CPURead(0xFF41) & 0x03; mode != 0 {
		t.Fatalf("mode after LCD off got %d want 0", mode)
	}

	p.Tick(3 * 70224)
	if ly := p.CPURead(0xFF44); ly != 0 {
		t.Fatalf("LY advanced while LCD off: %d", ly)
	}

	// Re-enabling restarts the frame from line 0, mode 2.
	p.CPUWrite(0xFF40, 0x80)
	if mode := p.CPURead(0xFF41) & 0x03; mode != 2 {
		t.Fatalf("mode after re-enable got %d want 2", mode)
	}
}
