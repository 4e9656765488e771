// Package emu assembles the bus, CPU, and APU into a frame-steppable
// machine for a host UI: ROM/boot-ROM loading, button injection, a
// CGB-colors toggle with DMG compatibility-palette recoloring, and
// battery-RAM and lightweight state persistence.
package emu

import (
	"bytes"
	"encoding/gob"
	"errors"
	"io"
	"os"

	"github.com/jterrac/gbcore/internal/bus"
	"github.com/jterrac/gbcore/internal/cart"
	"github.com/jterrac/gbcore/internal/cpu"
	"github.com/jterrac/gbcore/internal/ppu/palette"
)

// Buttons is the host's view of the eight physical inputs for one frame.
type Buttons struct {
	A, B, Start, Select   bool
	Up, Down, Left, Right bool
}

func (b Buttons) mask() byte {
	var m byte
	set := func(bit uint, pressed bool) {
		if pressed {
			m |= 1 << bit
		}
	}
	set(0, b.Right)
	set(1, b.Left)
	set(2, b.Up)
	set(3, b.Down)
	set(4, b.A)
	set(5, b.B)
	set(6, b.Select)
	set(7, b.Start)
	return m
}

// Machine owns one loaded cartridge's bus/CPU/APU and the host-facing
// controls (buttons, framebuffer, audio, save state) layered on top.
type Machine struct {
	cfg Config

	romBytes []byte
	bootROM  []byte
	romPath  string
	header   *cart.Header

	bus *bus.Bus
	cpu *cpu.CPU

	serialWriter io.Writer

	cgbCart         bool // header marks this cart CGB-capable/only
	useCGB          bool // current boot mode: CGB bus+PPU vs DMG
	compatPaletteID int

	fb []byte // RGBA8888, 160*144*4
}

// New returns a Machine with no cartridge loaded.
func New(cfg Config) *Machine {
	return &Machine{cfg: cfg, fb: make([]byte, 160*144*4)}
}

// LoadROMFromFile reads rom from path, loads it with the boot ROM image
// from the previous load (if any), and records path for ROMPath.
func (m *Machine) LoadROMFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := m.LoadCartridge(data, m.bootROM); err != nil {
		return err
	}
	m.romPath = path
	return nil
}

// LoadCartridge wires a fresh bus/CPU around rom (and boot, if non-nil),
// auto-selecting CGB mode for CGB-capable/only headers.
func (m *Machine) LoadCartridge(rom []byte, boot []byte) error {
	h, err := cart.ParseHeader(rom)
	if err != nil {
		return err
	}
	m.header = h
	m.cgbCart = h.IsCGB()
	m.romBytes = append([]byte(nil), rom...)
	m.bootROM = boot
	m.useCGB = m.cgbCart
	m.compatPaletteID = 0
	if id, ok := autoCompatPaletteFromHeader(h); ok {
		m.compatPaletteID = id % len(cgbCompatSets)
	}
	m.boot()
	return nil
}

// LoadBattery restores previously-saved external RAM into the current
// cartridge, if it is battery-backed.
func (m *Machine) LoadBattery(data []byte) error {
	if m.bus == nil {
		return errors.New("no cartridge loaded")
	}
	bb, ok := m.bus.Cart().(cart.BatteryBacked)
	if !ok {
		return errors.New("cartridge has no battery RAM")
	}
	bb.LoadRAM(data)
	return nil
}

// SaveBattery returns the current cartridge's external RAM, or nil if
// it is not battery-backed.
func (m *Machine) SaveBattery() []byte {
	if m.bus == nil {
		return nil
	}
	if bb, ok := m.bus.Cart().(cart.BatteryBacked); ok {
		return bb.SaveRAM()
	}
	return nil
}

func (m *Machine) boot() {
	c := cart.New(m.romBytes)
	m.bus = bus.NewWithCartridge(c, m.useCGB)
	if len(m.bootROM) > 0 {
		m.bus.SetBootROM(m.bootROM)
	}
	if m.serialWriter != nil {
		m.bus.SetSerialWriter(m.serialWriter)
	}
	m.cpu = cpu.New(m.bus)
	if len(m.bootROM) == 0 {
		if m.useCGB {
			m.cpu.ResetNoBootCGB()
		} else {
			m.cpu.ResetNoBoot()
		}
		m.cpu.SetPC(0x0100)
		m.writePostBootIO()
	}
}

// writePostBootIO sets the IO registers to the values the boot ROM leaves
// behind, so a game started at 0x0100 sees the LCD and palettes it expects.
func (m *Machine) writePostBootIO() {
	m.bus.Write(0xFF00, 0xCF)
	m.bus.Write(0xFF05, 0x00) // TIMA
	m.bus.Write(0xFF06, 0x00) // TMA
	m.bus.Write(0xFF07, 0x00) // TAC
	m.bus.Write(0xFF40, 0x91) // LCDC: LCD on, BG and sprites enabled
	m.bus.Write(0xFF42, 0x00) // SCY
	m.bus.Write(0xFF43, 0x00) // SCX
	m.bus.Write(0xFF45, 0x00) // LYC
	m.bus.Write(0xFF47, 0xFC) // BGP
	m.bus.Write(0xFF48, 0xFF) // OBP0
	m.bus.Write(0xFF49, 0xFF) // OBP1
	m.bus.Write(0xFF4A, 0x00) // WY
	m.bus.Write(0xFF4B, 0x00) // WX
	m.bus.Write(0xFFFF, 0x00) // IE
}

// ResetPostBoot reboots the current cartridge in DMG mode, skipping the
// boot ROM.
func (m *Machine) ResetPostBoot() {
	if m.romBytes == nil {
		return
	}
	m.useCGB = false
	m.bootROM = nil
	m.boot()
}

// ResetCGBPostBoot reboots the current cartridge in CGB mode, skipping
// the boot ROM. forceCompat keeps the DMG-style compatibility palette
// path active even for a CGB-capable cart (used by the "CGB Colors"
// toggle when the user wants compat coloring specifically).
func (m *Machine) ResetCGBPostBoot(forceCompat bool) {
	if m.romBytes == nil {
		return
	}
	m.useCGB = true
	m.bootROM = nil
	m.boot()
	if forceCompat {
		m.cgbCart = false
	}
}

// ResetWithBoot reboots through the previously-supplied boot ROM image.
func (m *Machine) ResetWithBoot() {
	if m.romBytes == nil {
		return
	}
	m.boot()
}

// frameClocks is one full PPU frame: 456 clocks across 154 lines.
const frameClocks = 456 * 154

// StepFrame advances the machine until one PPU frame completes, then
// composes the RGBA framebuffer.
func (m *Machine) StepFrame() {
	if m.cpu == nil {
		return
	}
	m.StepFrameNoRender()
	m.render()
}

// StepFrameNoRender advances one frame without touching the RGBA
// framebuffer, for headless test-ROM running. When the LCD is switched
// off, no frame ever completes, so the loop is also bounded by one
// frame's worth of clocks to keep time moving.
func (m *Machine) StepFrameNoRender() {
	if m.cpu == nil {
		return
	}
	clocks := 0
	for !m.bus.PPU().FrameDone() {
		clocks += m.cpu.Step()
		if clocks >= frameClocks {
			break
		}
	}
}

func (m *Machine) render() {
	screen := m.bus.PPU().Framebuffer()
	recolor := m.useCGB && !m.cgbCart && !m.UseCGBBG()
	pal := cgbCompatSets[m.compatPaletteID%len(cgbCompatSets)]
	for y := 0; y < 144; y++ {
		for x := 0; x < 160; x++ {
			c := screen[y][x]
			if recolor {
				c = pal[palette.ShadeFromRGB555(c)]
			}
			r, g, b, a := palette.RGBA8(c)
			i := (y*160 + x) * 4
			m.fb[i+0] = r
			m.fb[i+1] = g
			m.fb[i+2] = b
			m.fb[i+3] = a
		}
	}
}

// Framebuffer returns the RGBA8888 picture for the last completed frame.
func (m *Machine) Framebuffer() []byte { return m.fb }

// SetButtons applies the host's input snapshot for the next frame.
func (m *Machine) SetButtons(b Buttons) {
	if m.bus != nil {
		m.bus.SetJoypadState(b.mask())
	}
}

// SetSerialWriter attaches a sink for bytes written to the serial port.
// Applies immediately to the current bus, and is remembered across
// reboots since LoadCartridge/ResetXxx build a fresh Bus.
func (m *Machine) SetSerialWriter(w io.Writer) {
	m.serialWriter = w
	if m.bus != nil {
		m.bus.SetSerialWriter(w)
	}
}

// SetUseFetcherBG is accepted for host UI compatibility and is a no-op:
// the PPU always renders the DMG background and window through its
// fetcher/FIFO scanline path, whatever the argument.
func (m *Machine) SetUseFetcherBG(bool) {}

// ROMPath returns the path last loaded via LoadROMFromFile, or "".
func (m *Machine) ROMPath() string { return m.romPath }

// ROMTitle returns the parsed cartridge title, or "" if none is loaded.
func (m *Machine) ROMTitle() string {
	if m.header == nil {
		return ""
	}
	return m.header.Title
}

// WantCGBColors reports whether the machine is currently booted in CGB
// mode (real CGB colors, or DMG compat recoloring for a DMG-only cart).
func (m *Machine) WantCGBColors() bool { return m.useCGB }

// IsCGBCompat reports whether the loaded cartridge is a DMG-only title
// running under CGB compatibility recoloring (so a compat palette
// selection is meaningful).
func (m *Machine) IsCGBCompat() bool { return m.useCGB && !m.cgbCart }

// UseCGBBG reports whether full CGB coloring (rather than DMG compat
// recoloring) is in effect. For a genuinely CGB-enhanced cartridge this
// is always true once booted in CGB mode.
func (m *Machine) UseCGBBG() bool { return m.cgbCart && m.useCGB }

// SetUseCGBBG is retained for host UI parity and is a no-op: genuine CGB
// coloring is determined by the cartridge header once booted in CGB mode,
// and compat recoloring of DMG-only carts is driven by useCGB/cgbCart in
// render().
func (m *Machine) SetUseCGBBG(bool) {}

// SetCompatPalette selects one of the built-in DMG compatibility
// palettes by index.
func (m *Machine) SetCompatPalette(id int) {
	if id < 0 {
		id = 0
	}
	m.compatPaletteID = id % len(cgbCompatSets)
}

// CycleCompatPalette moves the selected compat palette by delta,
// wrapping around the available set.
func (m *Machine) CycleCompatPalette(delta int) {
	n := len(cgbCompatSets)
	id := (m.compatPaletteID + delta) % n
	if id < 0 {
		id += n
	}
	m.compatPaletteID = id
}

// CurrentCompatPalette returns the selected compat palette's index.
func (m *Machine) CurrentCompatPalette() int { return m.compatPaletteID }

// CompatPaletteName returns the display name for a compat palette index.
func (m *Machine) CompatPaletteName(id int) string {
	if id < 0 || id >= len(cgbCompatSetNames) {
		return "Unknown"
	}
	return cgbCompatSetNames[id]
}

// APUBufferedStereo reports how many stereo frames are ready to pull.
func (m *Machine) APUBufferedStereo() int {
	if m.bus == nil {
		return 0
	}
	return m.bus.APU().StereoAvailable()
}

// APUPullStereo pulls up to max interleaved [L,R,...] int16 stereo frames.
func (m *Machine) APUPullStereo(max int) []int16 {
	if m.bus == nil {
		return nil
	}
	return m.bus.APU().PullStereo(max)
}

// APUCapBufferedStereo drops buffered frames beyond n, bounding latency.
func (m *Machine) APUCapBufferedStereo(n int) {
	if m.bus != nil {
		m.bus.APU().CapStereoBuffered(n)
	}
}

// APUClearAudioLatency discards all buffered audio frames.
func (m *Machine) APUClearAudioLatency() {
	if m.bus != nil {
		m.bus.APU().ClearStereoBuffered()
	}
}

// machineState is the lightweight save-state payload: enough to resume
// play without re-running the cartridge from power-on. It does not
// capture a byte-exact snapshot of every internal component (the
// PPU/timer's mid-scanline phase in particular); a load restores CPU
// registers, cartridge external RAM, and APU state, then lets the
// PPU/timer free-run from their reset state for the remainder of the
// frame in progress when the snapshot was taken. Work RAM, VRAM/OAM,
// I/O registers and the MBC bank registers are not saved; they come
// back in their post-boot state.
type machineState struct {
	UseCGB   bool
	CompatID int
	A, F     byte
	B, C     byte
	D, E     byte
	H, L     byte
	SP, PC   uint16
	IME      bool
	RAM      []byte
	APU      []byte
}

// SaveStateToFile writes a lightweight resume snapshot to path.
func (m *Machine) SaveStateToFile(path string) error {
	if m.cpu == nil {
		return errors.New("no cartridge loaded")
	}
	st := machineState{
		UseCGB:   m.useCGB,
		CompatID: m.compatPaletteID,
		A:        m.cpu.A, F: m.cpu.F,
		B: m.cpu.B, C: m.cpu.C,
		D: m.cpu.D, E: m.cpu.E,
		H: m.cpu.H, L: m.cpu.L,
		SP: m.cpu.SP, PC: m.cpu.PC,
		IME: m.cpu.IME,
		RAM: m.SaveBattery(),
		APU: m.bus.APU().SaveState(),
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(st); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// LoadStateFromFile restores a snapshot written by SaveStateToFile. The
// cartridge must already be loaded (the state does not embed the ROM).
func (m *Machine) LoadStateFromFile(path string) error {
	if m.romBytes == nil {
		return errors.New("no cartridge loaded")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var st machineState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&st); err != nil {
		return err
	}
	m.useCGB = st.UseCGB
	m.compatPaletteID = st.CompatID
	m.boot()
	m.cpu.A, m.cpu.F = st.A, st.F
	m.cpu.B, m.cpu.C = st.B, st.C
	m.cpu.D, m.cpu.E = st.D, st.E
	m.cpu.H, m.cpu.L = st.H, st.L
	m.cpu.SP, m.cpu.PC = st.SP, st.PC
	m.cpu.IME = st.IME
	if len(st.RAM) > 0 {
		_ = m.LoadBattery(st.RAM)
	}
	if len(st.APU) > 0 {
		m.bus.APU().LoadState(st.APU)
	}
	return nil
}
