// Package bus wires the CPU-visible 64 KiB address space to the
// cartridge, work/high RAM, and the timer/joypad/serial/PPU/interrupt
// components, and drives OAM DMA and the boot-ROM overlay.
package bus

import (
	"io"

	"github.com/jterrac/gbcore/internal/apu"
	"github.com/jterrac/gbcore/internal/cart"
	"github.com/jterrac/gbcore/internal/interrupts"
	"github.com/jterrac/gbcore/internal/joypad"
	"github.com/jterrac/gbcore/internal/ppu"
	"github.com/jterrac/gbcore/internal/serial"
	"github.com/jterrac/gbcore/internal/timer"
)

// Bus owns the full address space and the components mapped into it.
type Bus struct {
	cart cart.Cartridge

	// Work RAM: bank 0 fixed at 0xC000-0xCFFF, switchable bank at
	// 0xD000-0xDFFF (SVBK selects 1-7 on CGB; always 1 on DMG).
	// 0xE000-0xFDFF echoes 0xC000-0xDDFF.
	wram     [8][0x1000]byte
	wramBank int
	hram     [0x7F]byte // 0xFF80-0xFFFE

	ppu    *ppu.PPU
	irq    *interrupts.Controller
	timer  *timer.Timer
	joyp   *joypad.Joypad
	serial *serial.Serial
	apu    *apu.APU

	dma       byte // FF46, last-written source page
	dmaActive bool
	dmaSrc    uint16
	dmaIndex  int

	// Boot ROM overlay. DMG boot ROMs cover 0x0000-0x00FF; CGB boot ROMs
	// additionally cover 0x0200-0x08FF; 0x0100-0x01FF always reads the
	// cartridge header.
	bootROM     []byte
	bootEnabled bool
	cgb         bool
}

// New constructs a DMG Bus, selecting a cartridge implementation from
// the ROM header.
func New(rom []byte) *Bus {
	return NewWithCartridge(cart.New(rom), false)
}

// NewCGB constructs a Bus running in Game Boy Color mode: a CGB PPU
// (VRAM banking, indexed palettes, HDMA) and the CGB boot-ROM overlay
// window. Double-speed mode is not emulated.
func NewCGB(rom []byte) *Bus {
	return NewWithCartridge(cart.New(rom), true)
}

// NewWithCartridge wires a provided cartridge implementation.
func NewWithCartridge(c cart.Cartridge, cgb bool) *Bus {
	b := &Bus{cart: c, cgb: cgb, wramBank: 1}
	b.irq = interrupts.New()
	b.timer = timer.New(func() { b.irq.Request(interrupts.Timer) })
	b.joyp = joypad.New(func() { b.irq.Request(interrupts.Joypad) })
	b.serial = serial.New()
	b.apu = apu.New(44100)
	if cgb {
		b.ppu = ppu.NewCGB(func(bit int) { b.irq.Request(interrupts.Source(bit)) })
	} else {
		b.ppu = ppu.New(func(bit int) { b.irq.Request(interrupts.Source(bit)) })
	}
	b.ppu.SetSourceReader(b.hdmaSourceRead)
	return b
}

// PPU returns the internal PPU for renderer-side access to the
// framebuffer and line registers.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Cart returns the underlying cartridge for battery-RAM persistence.
func (b *Bus) Cart() cart.Cartridge { return b.cart }

// Interrupts returns the shared interrupt controller, for the CPU's
// dispatch step.
func (b *Bus) Interrupts() *interrupts.Controller { return b.irq }

// APU returns the sound unit, for host-side sample pulling.
func (b *Bus) APU() *apu.APU { return b.apu }

func isAPUAddr(addr uint16) bool {
	return (addr >= 0xFF10 && addr <= 0xFF26) || (addr >= 0xFF30 && addr <= 0xFF3F)
}

// hdmaSourceRead is the byte source HDMA transfers read from; it must
// not touch VRAM/OAM (HDMA only ever targets those) and must not
// recurse into DMA gating.
func (b *Bus) hdmaSourceRead(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wramRead(addr)
	case addr >= 0xE000 && addr <= 0xFDFF:
		return b.wramRead(addr - 0x2000)
	default:
		return 0xFF
	}
}

func (b *Bus) wramRead(addr uint16) byte {
	if addr < 0xD000 {
		return b.wram[0][addr-0xC000]
	}
	return b.wram[b.wramBank][addr-0xD000]
}

func (b *Bus) wramWrite(addr uint16, value byte) {
	if addr < 0xD000 {
		b.wram[0][addr-0xC000] = value
		return
	}
	b.wram[b.wramBank][addr-0xD000] = value
}

func (b *Bus) Read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		if b.bootEnabled && b.inBootROMWindow(addr) {
			return b.bootROM[addr]
		}
		return b.cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.CPURead(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wramRead(addr)
	case addr >= 0xE000 && addr <= 0xFDFF:
		return b.wramRead(addr - 0x2000)
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if b.dmaActive {
			return 0xFF
		}
		return b.ppu.CPURead(addr)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		return 0x00
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFF00:
		return b.joyp.Read()
	case addr == timer.DIV, addr == timer.TIMA, addr == timer.TMA, addr == timer.TAC:
		return b.timer.Read(addr)
	case addr == serial.SB, addr == serial.SC:
		return b.serial.Read(addr)
	case isAPUAddr(addr):
		return b.apu.CPURead(addr)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B, addr == 0xFF4F,
		addr == 0xFF68, addr == 0xFF69, addr == 0xFF6A, addr == 0xFF6B:
		return b.ppu.CPURead(addr)
	case addr >= 0xFF51 && addr <= 0xFF55:
		return b.ppu.CPURead(addr)
	case addr == 0xFF46:
		return b.dma
	case addr == 0xFF50:
		return 0xFF
	case addr == 0xFF70:
		if !b.cgb {
			return 0xFF
		}
		return 0xF8 | byte(b.wramBank)
	case addr == interrupts.FlagRegister:
		return b.irq.Read(addr)
	case addr == interrupts.EnableRegister:
		return b.irq.Read(addr)
	default:
		return 0xFF
	}
}

func (b *Bus) Write(addr uint16, value byte) {
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xA000 && addr <= 0xBFFF:
		b.cart.Write(addr, value)
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wramWrite(addr, value)
	case addr >= 0xE000 && addr <= 0xFDFF:
		b.wramWrite(addr-0x2000, value)
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if b.dmaActive {
			return
		}
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		// unmapped, writes discarded
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	case addr == 0xFF00:
		b.joyp.Write(value)
	case addr == timer.DIV, addr == timer.TIMA, addr == timer.TMA, addr == timer.TAC:
		b.timer.Write(addr, value)
	case addr == serial.SB, addr == serial.SC:
		b.serial.Write(addr, value)
	case isAPUAddr(addr):
		b.apu.CPUWrite(addr, value)
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B, addr == 0xFF4F,
		addr == 0xFF68, addr == 0xFF69, addr == 0xFF6A, addr == 0xFF6B:
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xFF51 && addr <= 0xFF55:
		b.ppu.CPUWrite(addr, value)
	case addr == 0xFF46:
		b.dma = value
		b.dmaActive = true
		b.dmaSrc = uint16(value) << 8
		b.dmaIndex = 0
	case addr == 0xFF50:
		// Any write unmaps the boot ROM for the rest of the run.
		b.bootEnabled = false
	case addr == 0xFF70:
		if b.cgb {
			bank := int(value & 0x07)
			if bank == 0 {
				bank = 1
			}
			b.wramBank = bank
		}
	case addr == interrupts.FlagRegister:
		b.irq.Write(addr, value)
	case addr == interrupts.EnableRegister:
		b.irq.Write(addr, value)
	}
}

func (b *Bus) inBootROMWindow(addr uint16) bool {
	if addr < 0x0100 {
		return len(b.bootROM) > int(addr)
	}
	if b.cgb && addr >= 0x0200 && addr <= 0x08FF {
		return len(b.bootROM) > int(addr)
	}
	return false
}

// SetJoypadState presses/releases every button to match mask (bits set
// per the joypad.Button bit positions, Right=0 through Start=7,
// 1 = pressed).
func (b *Bus) SetJoypadState(mask byte) {
	for bit := joypad.Button(0); bit <= joypad.Start; bit++ {
		if mask&(1<<uint(bit)) != 0 {
			b.joyp.Press(bit)
		} else {
			b.joyp.Release(bit)
		}
	}
}

// SetSerialWriter sets a sink that receives bytes written via the serial port.
func (b *Bus) SetSerialWriter(w io.Writer) { b.serial.Sink = w }

// SetBootROM loads a boot ROM to be mapped at 0x0000-0x00FF (and, in CGB
// mode, additionally 0x0200-0x08FF) until disabled via an 0xFF50 write.
func (b *Bus) SetBootROM(data []byte) {
	b.bootROM = nil
	b.bootEnabled = false
	if len(data) == 0 {
		return
	}
	b.bootROM = make([]byte, len(data))
	copy(b.bootROM, data)
	b.bootEnabled = true
}

// Tick advances the timer, PPU, and OAM DMA by the given number of
// master clocks, one clock at a time so their interleaving matches
// hardware (a DMA byte lands between the clocks that tick the timer and
// PPU, not before or after the whole batch).
func (b *Bus) Tick(cycles int) {
	if cycles <= 0 {
		return
	}
	for i := 0; i < cycles; i++ {
		b.timer.Tick(1)
		b.ppu.Tick(1)
		b.stepOAMDMA()
	}
	b.apu.Tick(cycles)
}

func (b *Bus) stepOAMDMA() {
	if !b.dmaActive {
		return
	}
	src := b.dmaSrc + uint16(b.dmaIndex)
	var v byte
	switch {
	case src >= 0xFE00:
		v = 0xFF
	case src >= 0x8000 && src <= 0x9FFF:
		// VRAM sources bypass mode gating, reading the selected bank.
		v = b.ppu.Read(src)
	default:
		v = b.hdmaSourceRead(src)
	}
	b.ppu.WriteOAMRaw(byte(b.dmaIndex), v)
	b.dmaIndex++
	if b.dmaIndex >= 0xA0 {
		b.dmaActive = false
	}
}
