package ppu

import "testing"

// writeOAMEntry fills one 4-byte OAM slot with raw (unadjusted) values.
func writeOAMEntry(oam []byte, idx int, y, x, tile, attr byte) {
	oam[idx*4+0] = y
	oam[idx*4+1] = x
	oam[idx*4+2] = tile
	oam[idx*4+3] = attr
}

func TestSearchOAM_ExcludesOffscreenX(t *testing.T) {
	oam := make([]byte, 0xA0)
	writeOAMEntry(oam, 0, 16, 0, 0, 0)   // raw x=0: never visible
	writeOAMEntry(oam, 1, 16, 168, 0, 0) // raw x>=168: never visible
	writeOAMEntry(oam, 2, 16, 8, 0, 0)   // leftmost visible column

	got := SearchOAM(oam, 0, false)
	if len(got) != 1 {
		t.Fatalf("expected 1 sprite, got %d", len(got))
	}
	if got[0].OAMIndex != 2 || got[0].X != 0 {
		t.Fatalf("wrong sprite selected: %+v", got[0])
	}
}

func TestSearchOAM_TenSpriteLimitKeepsLowestIndices(t *testing.T) {
	oam := make([]byte, 0xA0)
	for i := 0; i < 12; i++ {
		writeOAMEntry(oam, i, 16, byte(20+i), 0, 0) // all overlap line 0
	}
	got := SearchOAM(oam, 0, false)
	if len(got) != 10 {
		t.Fatalf("expected the 10-sprite line limit, got %d", len(got))
	}
	for i, s := range got {
		if s.OAMIndex != i {
			t.Fatalf("limit must keep the lowest OAM indices; slot %d has index %d", i, s.OAMIndex)
		}
	}
}

func TestSearchOAM_TallSpritesDoubleRowRange(t *testing.T) {
	oam := make([]byte, 0xA0)
	writeOAMEntry(oam, 0, 16, 8, 0, 0) // rows 0-7 (or 0-15 when tall)

	if got := SearchOAM(oam, 12, false); len(got) != 0 {
		t.Fatalf("8-row sprite must not cover line 12")
	}
	if got := SearchOAM(oam, 12, true); len(got) != 1 {
		t.Fatalf("16-row sprite must cover line 12")
	}
}
