package ppu

// emitTileRow streams color indices from consecutive tiles of one map row
// into out[startX:160], skipping skip pixels of the first tile. mapY and
// tileX address the 32x32 tilemap; tileX wraps within the row.
func emitTileRow(mem VRAMReader, mapBase uint16, tileData8000 bool, mapY, tileX uint16, fineY byte, startX, skip int, out *[160]byte) {
	var q fifo
	f := newBGFetcher(mem, &q)
	f.Configure(mapBase, tileData8000, mapBase+mapY*32+tileX, fineY)
	f.Fetch()
	for i := 0; i < skip; i++ {
		_, _ = q.Pop()
	}
	for x := startX; x < 160; x++ {
		if q.Len() == 0 {
			tileX = (tileX + 1) & 31
			f.Configure(mapBase, tileData8000, mapBase+mapY*32+tileX, fineY)
			f.Fetch()
		}
		px, _ := q.Pop()
		out[x] = px
	}
}

// RenderBGScanlineUsingFetcher renders 160 background pixels for scanline
// ly through the fetcher/FIFO. mapBase is 0x9800 or 0x9C00; tileData8000
// selects 0x8000 unsigned vs 0x9000 signed tile addressing. The SCX
// fractional offset clips the first tile, and the tile column wraps at 32.
func RenderBGScanlineUsingFetcher(mem VRAMReader, mapBase uint16, tileData8000 bool, scx, scy, ly byte) [160]byte {
	var out [160]byte
	bgY := uint16(ly) + uint16(scy)
	mapY := (bgY >> 3) & 31
	tileX := (uint16(scx) >> 3) & 31
	emitTileRow(mem, mapBase, tileData8000, mapY, tileX, byte(bgY&7), 0, int(scx&7), &out)
	return out
}

// RenderWindowScanlineUsingFetcher renders the window layer for a
// scanline, filling pixels from wxStart (WX-7) rightward; winLine is the
// window-internal line counter. Pixels left of wxStart stay 0 so callers
// can blend over the background.
func RenderWindowScanlineUsingFetcher(mem VRAMReader, mapBase uint16, tileData8000 bool, wxStart int, winLine byte) [160]byte {
	var out [160]byte
	if wxStart >= 160 {
		return out
	}
	if wxStart < 0 {
		wxStart = 0
	}
	mapY := (uint16(winLine) >> 3) & 31
	emitTileRow(mem, mapBase, tileData8000, mapY, 0, winLine&7, wxStart, 0, &out)
	return out
}
