package ppu

import "sort"

// VRAMBankReader reads VRAM by explicit bank (0 or 1), used for CGB
// tile-data/tile-attribute lookups where the attribute byte lives in
// bank 1 at the same address as the tile index in bank 0.
type VRAMBankReader interface {
	ReadBank(bank int, addr uint16) byte
}

type tileAttr struct {
	palette  byte
	bank     int
	flipX    bool
	flipY    bool
	priority bool
}

func decodeTileAttr(b byte) tileAttr {
	return tileAttr{
		palette:  b & 0x07,
		bank:     int(b>>3) & 1,
		flipX:    b&0x20 != 0,
		flipY:    b&0x40 != 0,
		priority: b&0x80 != 0,
	}
}

func fetchCGBTileRow(mem VRAMBankReader, tileData8000 bool, tileNum byte, attr tileAttr, fineY byte) (lo, hi byte) {
	row := fineY & 7
	if attr.flipY {
		row = 7 - row
	}
	var base uint16
	if tileData8000 {
		base = 0x8000 + uint16(tileNum)*16 + uint16(row)*2
	} else {
		base = 0x9000 + uint16(int8(tileNum))*16 + uint16(row)*2
	}
	return mem.ReadBank(attr.bank, base), mem.ReadBank(attr.bank, base+1)
}

func cgbRowPixels(lo, hi byte, flipX bool) [8]byte {
	var out [8]byte
	for px := 0; px < 8; px++ {
		bit := 7 - byte(px)
		if flipX {
			bit = byte(px)
		}
		out[px] = ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
	}
	return out
}

// RenderBGScanlineCGB renders 160 BG pixels for LY along with the CGB
// palette index and BG-over-OBJ priority flag selected by each tile's
// attribute byte (bank-1 byte at the same address as the bank-0 tile
// index, per spec §4.5 "CGB tile attributes").
func RenderBGScanlineCGB(mem VRAMBankReader, mapBase uint16, tileData8000 bool, scx, scy, ly byte) (ci, pal [160]byte, prio [160]bool) {
	bgY := uint16(ly) + uint16(scy)
	fineY := byte(bgY & 7)
	mapY := (bgY >> 3) & 31
	startX := uint16(scx)
	fineX := int(startX & 7)
	tileX := (startX >> 3) & 31

	x := 0
	first := true
	for x < 160 {
		addr := mapBase + mapY*32 + tileX
		tileNum := mem.ReadBank(0, addr)
		attr := decodeTileAttr(mem.ReadBank(1, addr))
		lo, hi := fetchCGBTileRow(mem, tileData8000, tileNum, attr, fineY)
		px := cgbRowPixels(lo, hi, attr.flipX)

		start := 0
		if first {
			start = fineX
			first = false
		}
		for i := start; i < 8 && x < 160; i++ {
			ci[x] = px[i]
			pal[x] = attr.palette
			prio[x] = attr.priority
			x++
		}
		tileX = (tileX + 1) & 31
	}
	return
}

// RenderWindowScanlineCGB renders the window layer starting at screen
// column wxStart, analogous to RenderBGScanlineCGB.
func RenderWindowScanlineCGB(mem VRAMBankReader, mapBase uint16, tileData8000 bool, wxStart int, winLine byte) (ci, pal [160]byte, prio [160]bool) {
	if wxStart >= 160 {
		return
	}
	if wxStart < 0 {
		wxStart = 0
	}
	mapY := uint16(winLine) >> 3
	fineY := winLine & 7
	tileX := uint16(0)

	x := wxStart
	for x < 160 {
		addr := mapBase + (mapY&31)*32 + tileX
		tileNum := mem.ReadBank(0, addr)
		attr := decodeTileAttr(mem.ReadBank(1, addr))
		lo, hi := fetchCGBTileRow(mem, tileData8000, tileNum, attr, fineY)
		px := cgbRowPixels(lo, hi, attr.flipX)

		for i := 0; i < 8 && x < 160; i++ {
			ci[x] = px[i]
			pal[x] = attr.palette
			prio[x] = attr.priority
			x++
		}
		tileX = (tileX + 1) & 31
	}
	return
}

// ComposeSpriteLineCGB is ComposeSpriteLine's CGB counterpart: tile data
// is fetched from the bank named by attribute bit 3, and the palette
// index is the attribute's low 3 bits (selecting one of the 8 OBJ
// palettes) rather than OBP0/OBP1. It returns, per column: the resolved
// color index (0 = transparent), the palette number, and whether the
// BG-over-OBJ priority bit was set for the winning sprite.
func ComposeSpriteLineCGB(mem VRAMBankReader, sprites []Sprite, ly byte, bgci [160]byte, tall bool) (ci, pal [160]byte, behindBG [160]bool) {
	ordered := make([]Sprite, len(sprites))
	copy(ordered, sprites)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].X != ordered[j].X {
			return ordered[i].X < ordered[j].X
		}
		return ordered[i].OAMIndex < ordered[j].OAMIndex
	})

	height := 8
	if tall {
		height = 16
	}

	for i := len(ordered) - 1; i >= 0; i-- {
		s := ordered[i]
		row := int(ly) - s.Y
		if row < 0 || row >= height {
			continue
		}
		if s.Attr&0x40 != 0 {
			row = height - 1 - row
		}
		tile := s.Tile
		if tall {
			tile &^= 0x01
			if row >= 8 {
				tile |= 0x01
				row -= 8
			}
		}
		bank := int(s.Attr>>3) & 1
		base := uint16(0x8000) + uint16(tile)*16 + uint16(row)*2
		lo := mem.ReadBank(bank, base)
		hi := mem.ReadBank(bank, base+1)
		spal := s.Attr & 0x07

		for col := 0; col < 8; col++ {
			x := s.X + col
			if x < 0 || x >= 160 {
				continue
			}
			bit := 7 - col
			if s.Attr&0x20 != 0 {
				bit = col
			}
			px := ((hi>>uint(bit))&1)<<1 | (lo>>uint(bit))&1
			if px == 0 {
				continue
			}
			if s.Attr&0x80 != 0 && bgci[x] != 0 {
				continue
			}
			ci[x], pal[x], behindBG[x] = px, spal, s.Attr&0x80 != 0
		}
	}
	return
}
