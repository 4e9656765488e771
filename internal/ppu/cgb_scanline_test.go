package ppu

// Tests for CGB BG/window scanline helpers: attributes: palette, flips, bank, priority.
import "testing"

type fakeVRAM struct{ v0, v1 [0x2000]byte }

func (f *fakeVRAM) Read(addr uint16) byte { return 0 }
func (f *fakeVRAM) ReadBank(bank int, addr uint16) byte {
	if addr < 0x8000 || addr >= 0xA000 {
		return 0
	}
	off := addr - 0x8000
	if bank == 0 {
		return f.v0[off]
	}
	return f.v1[off]
}

func TestCGB_BG_Attrs_Flips_Bank_Palette(t *testing.T) {
	var v fakeVRAM
	// Tile index 1's pixel data lives in bank 1 (attr bit 3 selects it).
	// yflip is set, so row 7 (the last row, since flipY reverses it) supplies
	// the first scanline's pixels.
	v.v1[0x0010+14] = 0x0F // lo at row 7 (7*2)
	v.v1[0x0010+15] = 0x00 // hi
	// Map at 0x9800: tile index byte in bank0, attribute byte at the same
	// address in bank1.
	v.v0[0x1800+0] = 0x01
	// bank=1 (bit3), xflip (bit5), yflip (bit6), pal=5, priority (bit7)
	v.v1[0x1800+0] = 0x80 | 0x40 | 0x20 | 0x08 | 0x05

	ci, pal, pri := RenderBGScanlineCGB(&v, 0x9800, true, 0, 0, 0)
	if !pri[0] {
		t.Fatalf("priority not set")
	}
	if pal[0] != 5 {
		t.Fatalf("palette got %d want 5", pal[0])
	}
	if ci[0] == 0 {
		t.Fatalf("unexpected ci 0 at first pixel")
	}
}

func TestCGB_Window_Basic(t *testing.T) {
	var v fakeVRAM
	v.v0[0x0020+0] = 0xFF
	v.v0[0x0020+1] = 0x00
	v.v0[0x1800+0] = 0x02
	v.v1[0x1800+0] = 0x00 // bank0, pal0
	ci, pal, pri := RenderWindowScanlineCGB(&v, 0x9800, true, 0, 0)
	if pal[0] != 0 || pri[0] {
		t.Fatalf("unexpected pal/pri %d/%v", pal[0], pri[0])
	}
	if ci[0] == 0 {
		t.Fatalf("ci should be nonzero")
	}
}
