// Package ppu implements the Game Boy / Game Boy Color picture
// processing unit: VRAM/OAM storage, the LCDC/STAT/LY timing state
// machine, DMG and CGB background/window/sprite composition, CGB
// palette memories, VRAM banking, and CGB general-purpose/HBlank VRAM
// DMA (HDMA).
package ppu

import "github.com/jterrac/gbcore/internal/ppu/palette"

// InterruptRequester is a callback signature to request IF bits (0:VBlank, 1:STAT, etc.).
type InterruptRequester func(bit int)

// LineRegs is a snapshot of the registers that affect scanline
// rendering, captured the instant mode 3 begins for that line. Mid-line
// register writes (a common effect trick) only affect the next
// scanline's capture, not the one already rendered.
type LineRegs struct {
	SCX, SCY, WX, WY, LCDC, STAT byte
	WinLine                      byte
}

// PPU models VRAM/OAM, LCDC/STAT regs, LY/LYC, CGB palettes/VRAM banks,
// HDMA, and per-scanline composition into a framebuffer.
type PPU struct {
	vram     [2][0x2000]byte // bank 0/1, 0x8000-0x9FFF
	oam      [0xA0]byte      // 0xFE00-0xFE9F
	vramBank int

	// regs
	lcdc byte // FF40
	stat byte // FF41 (mode bits 0-1, coincidence flag bit2, enables bits3-6)
	scy  byte // FF42
	scx  byte // FF43
	ly   byte // FF44
	lyc  byte // FF45
	bgp  byte // FF47
	obp0 byte // FF48
	obp1 byte // FF49
	wy   byte // FF4A
	wx   byte // FF4B

	dot int // dots within current line [0..455]

	req    InterruptRequester
	cgb    bool
	bgPal  *palette.CGB // FF68/FF69
	objPal *palette.CGB // FF6A/FF6B

	winLineCounter byte
	lineRegs       [144]LineRegs

	screen    [144][160]uint16 // RGB555, composed at mode-3 entry
	frameDone bool

	hdma hdmaState

	// StrictVRAMGating reproduces the hardware's CPU-lockout of VRAM during
	// mode 3 and of OAM during modes 2 and 3; some commercial games rely on looser real-hardware
	// timing and break under strict gating, so it can be disabled for
	// compatibility the way several emulators in the wild expose it.
	StrictVRAMGating bool
}

func New(req InterruptRequester) *PPU {
	return &PPU{req: req, bgPal: palette.NewCGB(), objPal: palette.NewCGB(), StrictVRAMGating: true}
}

// NewCGB returns a PPU running in Game Boy Color mode: double VRAM banks,
// indexed BG/OBJ palettes, and HDMA are all live.
func NewCGB(req InterruptRequester) *PPU {
	p := New(req)
	p.cgb = true
	return p
}

func (p *PPU) vramGated() bool {
	return p.StrictVRAMGating && (p.stat&0x03) == 3
}

func (p *PPU) oamGated() bool {
	if !p.StrictVRAMGating {
		return false
	}
	m := p.stat & 0x03
	return m == 2 || m == 3
}

// CPURead returns bytes for VRAM, OAM, and PPU IO registers. Returns 0xFF for others.
func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.vramGated() {
			return 0xFF
		}
		return p.vram[p.vramBank][addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if p.oamGated() {
			return 0xFF
		}
		return p.oam[addr-0xFE00]
	case addr == 0xFF40:
		return p.lcdc
	case addr == 0xFF41:
		return 0x80 | (p.stat & 0x7F)
	case addr == 0xFF42:
		return p.scy
	case addr == 0xFF43:
		return p.scx
	case addr == 0xFF44:
		return p.ly
	case addr == 0xFF45:
		return p.lyc
	case addr == 0xFF47:
		return p.bgp
	case addr == 0xFF48:
		return p.obp0
	case addr == 0xFF49:
		return p.obp1
	case addr == 0xFF4A:
		return p.wy
	case addr == 0xFF4B:
		return p.wx
	case addr == 0xFF4F:
		return byte(p.vramBank) | 0xFE
	case addr == 0xFF68:
		return p.bgPal.ReadIndex()
	case addr == 0xFF69:
		return p.bgPal.ReadData()
	case addr == 0xFF6A:
		return p.objPal.ReadIndex()
	case addr == 0xFF6B:
		return p.objPal.ReadData()
	case addr >= 0xFF51 && addr <= 0xFF55:
		return p.hdma.read(addr)
	default:
		return 0xFF
	}
}

// CPUWrite handles writes to VRAM, OAM, and PPU IO regs. Others are ignored here.
func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.vramGated() {
			return
		}
		p.vram[p.vramBank][addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if p.oamGated() {
			return
		}
		p.oam[addr-0xFE00] = value
	case addr == 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		if (p.lcdc&0x80) == 0 && (prev&0x80) != 0 {
			p.ly = 0
			p.dot = 0
			p.setMode(0)
			p.updateLYC()
		} else if (p.lcdc&0x80) != 0 && (prev&0x80) == 0 {
			p.ly = 0
			p.dot = 0
			p.winLineCounter = 0
			p.setMode(2)
			p.updateLYC()
		}
	case addr == 0xFF41:
		p.stat = (p.stat & 0x07) | (value & 0x78)
		// DMG quirk: writing STAT during HBlank or VBlank momentarily
		// enables every source and fires the interrupt. Absent on CGB.
		if !p.cgb && p.lcdc&0x80 != 0 && p.stat&0x03 <= 1 && p.req != nil {
			p.req(1)
		}
	case addr == 0xFF42:
		p.scy = value
	case addr == 0xFF43:
		p.scx = value
	case addr == 0xFF44:
		p.ly = 0
		p.dot = 0
		p.updateLYC()
		if (p.lcdc & 0x80) != 0 {
			p.setMode(2)
		}
	case addr == 0xFF45:
		p.lyc = value
		p.updateLYC()
	case addr == 0xFF47:
		p.bgp = value
	case addr == 0xFF48:
		p.obp0 = value
	case addr == 0xFF49:
		p.obp1 = value
	case addr == 0xFF4A:
		p.wy = value
	case addr == 0xFF4B:
		p.wx = value
	case addr == 0xFF4F:
		if p.cgb {
			p.vramBank = int(value & 1)
		}
	case addr == 0xFF68:
		p.bgPal.WriteIndex(value)
	case addr == 0xFF69:
		p.bgPal.WriteData(value)
	case addr == 0xFF6A:
		p.objPal.WriteIndex(value)
	case addr == 0xFF6B:
		p.objPal.WriteData(value)
	case addr >= 0xFF51 && addr <= 0xFF55:
		p.hdma.write(addr, value, p)
	}
}

// ReadBank reads VRAM from an explicit bank, used by CGB tile-attribute
// lookups (RenderBGScanlineCGB/RenderWindowScanlineCGB) regardless of
// the currently CPU-selected bank.
func (p *PPU) ReadBank(bank int, addr uint16) byte {
	if addr < 0x8000 || addr > 0x9FFF {
		return 0xFF
	}
	return p.vram[bank&1][addr-0x8000]
}

// Read implements VRAMReader using the CPU-selected VRAM bank, for the
// DMG fetcher/scanline helpers.
func (p *PPU) Read(addr uint16) byte { return p.ReadBank(p.vramBank, addr) }

// WriteOAMRaw writes OAM bypassing the mode-gating check, for use by the
// bus's OAM DMA controller.
func (p *PPU) WriteOAMRaw(i byte, value byte) { p.oam[i] = value }

// WriteVRAMRaw writes VRAM in the given bank bypassing mode gating, for
// use by HDMA transfers.
func (p *PPU) WriteVRAMRaw(bank int, addr uint16, value byte) {
	if addr < 0x8000 || addr > 0x9FFF {
		return
	}
	p.vram[bank&1][addr-0x8000] = value
}

// LineRegs returns the register snapshot captured for scanline ly.
func (p *PPU) LineRegs(ly int) LineRegs {
	if ly < 0 || ly >= 144 {
		return LineRegs{}
	}
	return p.lineRegs[ly]
}

// Framebuffer returns the composed RGB555 picture; all 144 lines of a
// frame are composed by the time VBlank begins.
func (p *PPU) Framebuffer() [144][160]uint16 { return p.screen }

// FrameDone reports and clears whether a new frame completed since the
// last call.
func (p *PPU) FrameDone() bool {
	done := p.frameDone
	p.frameDone = false
	return done
}

// Tick advances PPU state by the given number of dots (CPU cycles).
func (p *PPU) Tick(cycles int) {
	if cycles <= 0 {
		return
	}
	for i := 0; i < cycles; i++ {
		if (p.lcdc & 0x80) == 0 {
			continue
		}
		p.dot++

		var mode byte
		if p.ly >= 144 {
			mode = 1
		} else {
			switch {
			case p.dot < 80:
				mode = 2
			case p.dot < 80+172:
				mode = 3
			default:
				mode = 0
			}
		}
		p.setMode(mode)

		if p.dot >= 456 {
			p.dot = 0
			p.ly++
			if p.ly == 144 {
				p.frameDone = true
				if p.req != nil {
					p.req(0)
				}
				// VBlank entry also fires STAT if the mode-1 source or the
				// OAM-search source is enabled.
				if p.stat&(1<<4) != 0 || p.stat&(1<<5) != 0 {
					if p.req != nil {
						p.req(1)
					}
				}
			} else if p.ly > 153 {
				p.ly = 0
				p.winLineCounter = 0
			}
			p.updateLYC()
			if p.ly >= 144 {
				p.setMode(1)
			} else {
				p.setMode(2)
			}
		}
	}
}

func (p *PPU) setMode(mode byte) {
	prev := p.stat & 0x03
	if prev == mode {
		return
	}
	p.stat = (p.stat &^ 0x03) | (mode & 0x03)
	switch mode {
	case 0: // HBlank
		if p.cgb {
			p.hdma.onHBlank(p)
		}
		if (p.stat & (1 << 3)) != 0 {
			if p.req != nil {
				p.req(1)
			}
		}
	case 2: // OAM
		if (p.stat & (1 << 5)) != 0 {
			if p.req != nil {
				p.req(1)
			}
		}
	case 3:
		p.captureLineRegs()
		p.renderScanline()
	}
}

func (p *PPU) updateLYC() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
		if (p.stat & (1 << 6)) != 0 {
			if p.req != nil {
				p.req(1)
			}
		}
	} else {
		p.stat &^= 1 << 2
	}
}

func (p *PPU) windowVisibleThisLine() bool {
	return p.lcdc&0x20 != 0 && p.ly >= p.wy && int(p.wx)-7 < 160
}

func (p *PPU) captureLineRegs() {
	if p.ly >= 144 {
		return
	}
	visible := p.windowVisibleThisLine()
	p.lineRegs[p.ly] = LineRegs{
		SCX: p.scx, SCY: p.scy, WX: p.wx, WY: p.wy,
		LCDC: p.lcdc, STAT: p.stat, WinLine: p.winLineCounter,
	}
	if visible {
		p.winLineCounter++
	}
}

// renderScanline composes BG, window, and sprites for the current LY
// into the framebuffer. It runs once per line, at mode-3 entry, using
// the just-captured LineRegs so mid-mode-3 register pokes never affect
// the line already being drawn.
func (p *PPU) renderScanline() {
	ly := p.ly
	if ly >= 144 {
		return
	}
	lr := p.lineRegs[ly]

	bgWinEnabled := p.cgb || lr.LCDC&0x01 != 0
	tileData8000 := lr.LCDC&0x10 != 0
	bgMapBase := uint16(0x9800)
	if lr.LCDC&0x08 != 0 {
		bgMapBase = 0x9C00
	}
	winMapBase := uint16(0x9800)
	if lr.LCDC&0x40 != 0 {
		winMapBase = 0x9C00
	}

	var ci, palIdx [160]byte
	var bgPriority [160]bool

	if p.cgb {
		ci, palIdx, bgPriority = RenderBGScanlineCGB(p, bgMapBase, tileData8000, lr.SCX, lr.SCY, ly)
	} else if bgWinEnabled {
		ci = RenderBGScanlineUsingFetcher(p, bgMapBase, tileData8000, lr.SCX, lr.SCY, ly)
	}

	if lr.LCDC&0x20 != 0 && p.windowVisibleThisLineFor(lr) {
		wxStart := int(lr.WX) - 7
		if p.cgb {
			wci, wpal, wpri := RenderWindowScanlineCGB(p, winMapBase, tileData8000, wxStart, lr.WinLine)
			for x := wxStart; x < 160; x++ {
				if x < 0 {
					continue
				}
				ci[x], palIdx[x], bgPriority[x] = wci[x], wpal[x], wpri[x]
			}
		} else if bgWinEnabled {
			wci := RenderWindowScanlineUsingFetcher(p, winMapBase, tileData8000, wxStart, lr.WinLine)
			for x := wxStart; x < 160; x++ {
				if x < 0 {
					continue
				}
				ci[x] = wci[x]
			}
		}
	}

	var rgb [160]uint16
	for x := 0; x < 160; x++ {
		if p.cgb {
			rgb[x] = p.bgPal.Color(palIdx[x], ci[x])
		} else {
			rgb[x] = palette.RGB555FromShade(palette.DMGShade(p.bgp, ci[x]))
		}
	}

	if lr.LCDC&0x02 != 0 {
		tall := lr.LCDC&0x04 != 0
		sprites := SearchOAM(p.oam[:], ly, tall)
		if p.cgb {
			// On CGB a cleared LCDC bit 0 turns off BG-over-OBJ priority
			// (both the per-sprite flag and the tile-attribute flag); the
			// background itself still draws.
			spriteBG := ci
			if lr.LCDC&0x01 == 0 {
				spriteBG = [160]byte{}
			}
			sci, spal, _ := ComposeSpriteLineCGB(p, sprites, ly, spriteBG, tall)
			for x := 0; x < 160; x++ {
				if sci[x] == 0 {
					continue
				}
				// The per-sprite flag was already applied during compose;
				// the tile-attribute priority bit is checked here.
				if lr.LCDC&0x01 != 0 && ci[x] != 0 && bgPriority[x] {
					continue
				}
				rgb[x] = p.objPal.Color(spal[x], sci[x])
			}
		} else {
			sout := ComposeSpriteLineWithPalettes(p, sprites, ly, ci, tall, p.obp0, p.obp1)
			for x := 0; x < 160; x++ {
				if sout[x].opaque {
					rgb[x] = palette.RGB555FromShade(sout[x].shade)
				}
			}
		}
	}

	p.screen[ly] = rgb
}

func (p *PPU) windowVisibleThisLineFor(lr LineRegs) bool {
	return lr.LCDC&0x20 != 0 && p.ly >= lr.WY && int(lr.WX)-7 < 160
}

// Expose palettes and scroll for renderer convenience (optional helpers)
func (p *PPU) BGP() byte  { return p.bgp }
func (p *PPU) OBP0() byte { return p.obp0 }
func (p *PPU) OBP1() byte { return p.obp1 }
func (p *PPU) LCDC() byte { return p.lcdc }
func (p *PPU) SCY() byte  { return p.scy }
func (p *PPU) SCX() byte  { return p.scx }
func (p *PPU) WY() byte   { return p.wy }
func (p *PPU) WX() byte   { return p.wx }
func (p *PPU) IsCGB() bool { return p.cgb }
