// Package cpu implements the Sharp SM83 CPU core: the full base and
// CB-prefixed instruction sets, dispatched through dense 256-entry
// jump tables built once at init time, plus interrupt dispatch with the
// one-instruction-deferred EI and HALT/STOP semantics.
package cpu

import (
	"github.com/jterrac/gbcore/internal/bus"
	"github.com/jterrac/gbcore/internal/interrupts"
)

// CPU holds SM83 register state and the bus it executes against.
type CPU struct {
	A, F byte
	B, C byte
	D, E byte
	H, L byte

	SP uint16
	PC uint16

	IME       bool
	halted    bool
	haltBug   bool // HALT with IME=0 and a pending interrupt re-reads the next byte twice
	eiPending bool
	stopped   bool

	// IllegalOp, when set, is called once per undefined opcode instead of
	// treating it silently as a NOP; hardware locks up here, so hosts that
	// care can log or stop.
	IllegalOp func(pc uint16, op byte)

	bus *bus.Bus
}

// New creates a CPU wired to b, with SP/PC at their power-on values; call
// ResetNoBoot for the typical post-boot-ROM register state instead when
// skipping the boot ROM.
func New(b *bus.Bus) *CPU {
	return &CPU{bus: b, SP: 0xFFFE, PC: 0x0000}
}

// SetPC allows tests or a boot stub to set the program counter.
func (c *CPU) SetPC(pc uint16) { c.PC = pc }

// Bus exposes the underlying bus for tests/tools.
func (c *CPU) Bus() *bus.Bus { return c.bus }

// Halted reports whether the CPU is in the low-power HALT state.
func (c *CPU) Halted() bool { return c.halted }

// ResetNoBoot sets registers to typical DMG post-boot state, for running
// without a boot ROM image.
func (c *CPU) ResetNoBoot() {
	c.A, c.F = 0x01, 0xB0
	c.B, c.C = 0x00, 0x13
	c.D, c.E = 0x00, 0xD8
	c.H, c.L = 0x01, 0x4D
	c.SP = 0xFFFE
	c.IME = false
	c.halted = false
	c.stopped = false
	c.haltBug = false
	c.eiPending = false
}

// ResetNoBootCGB sets registers to the CGB's distinct post-boot state
// (AF=0x1180, HL=0x007C).
func (c *CPU) ResetNoBootCGB() {
	c.ResetNoBoot()
	c.A, c.F = 0x11, 0x80
	c.D, c.E = 0xFF, 0x56
	c.H, c.L = 0x00, 0x7C
}

const (
	flagZ byte = 1 << 7
	flagN byte = 1 << 6
	flagH byte = 1 << 5
	flagC byte = 1 << 4
)

func (c *CPU) setFlag(mask byte, v bool) {
	if v {
		c.F |= mask
	} else {
		c.F &^= mask
	}
}

func (c *CPU) flag(mask byte) bool { return c.F&mask != 0 }

func (c *CPU) setZNHC(z, n, h, cy bool) {
	c.setFlag(flagZ, z)
	c.setFlag(flagN, n)
	c.setFlag(flagH, h)
	c.setFlag(flagC, cy)
}

func (c *CPU) read8(addr uint16) byte     { return c.bus.Read(addr) }
func (c *CPU) write8(addr uint16, v byte) { c.bus.Write(addr, v) }

func (c *CPU) fetch8() byte {
	b := c.read8(c.PC)
	c.PC++
	return b
}

func (c *CPU) fetch16() uint16 {
	lo := uint16(c.fetch8())
	hi := uint16(c.fetch8())
	return lo | (hi << 8)
}

func (c *CPU) read16(addr uint16) uint16 {
	lo := uint16(c.read8(addr))
	hi := uint16(c.read8(addr + 1))
	return lo | (hi << 8)
}

func (c *CPU) write16(addr uint16, v uint16) {
	c.write8(addr, byte(v))
	c.write8(addr+1, byte(v>>8))
}

func (c *CPU) getAF() uint16  { return uint16(c.A)<<8 | uint16(c.F&0xF0) }
func (c *CPU) setAF(v uint16) { c.A = byte(v >> 8); c.F = byte(v) & 0xF0 }
func (c *CPU) getBC() uint16  { return uint16(c.B)<<8 | uint16(c.C) }
func (c *CPU) setBC(v uint16) { c.B = byte(v >> 8); c.C = byte(v) }
func (c *CPU) getDE() uint16  { return uint16(c.D)<<8 | uint16(c.E) }
func (c *CPU) setDE(v uint16) { c.D = byte(v >> 8); c.E = byte(v) }
func (c *CPU) getHL() uint16  { return uint16(c.H)<<8 | uint16(c.L) }
func (c *CPU) setHL(v uint16) { c.H = byte(v >> 8); c.L = byte(v) }

// r8 returns the value of the instruction-encoded 3-bit register index:
// 0=B 1=C 2=D 3=E 4=H 5=L 6=(HL) 7=A.
func (c *CPU) r8(idx byte) byte {
	switch idx & 7 {
	case 0:
		return c.B
	case 1:
		return c.C
	case 2:
		return c.D
	case 3:
		return c.E
	case 4:
		return c.H
	case 5:
		return c.L
	case 6:
		return c.read8(c.getHL())
	default:
		return c.A
	}
}

func (c *CPU) setR8(idx byte, v byte) {
	switch idx & 7 {
	case 0:
		c.B = v
	case 1:
		c.C = v
	case 2:
		c.D = v
	case 3:
		c.E = v
	case 4:
		c.H = v
	case 5:
		c.L = v
	case 6:
		c.write8(c.getHL(), v)
	default:
		c.A = v
	}
}

// rp16 returns one of BC/DE/HL/SP selected by the instruction-encoded
// 2-bit group index used by 16-bit LD/INC/DEC/ADD HL, ops.
func (c *CPU) rp16(idx byte) uint16 {
	switch idx & 3 {
	case 0:
		return c.getBC()
	case 1:
		return c.getDE()
	case 2:
		return c.getHL()
	default:
		return c.SP
	}
}

func (c *CPU) setRP16(idx byte, v uint16) {
	switch idx & 3 {
	case 0:
		c.setBC(v)
	case 1:
		c.setDE(v)
	case 2:
		c.setHL(v)
	default:
		c.SP = v
	}
}

// rp16Stack is the PUSH/POP register group: BC/DE/HL/AF.
func (c *CPU) rp16Stack(idx byte) uint16 {
	if idx&3 == 3 {
		return c.getAF()
	}
	return c.rp16(idx)
}

func (c *CPU) setRP16Stack(idx byte, v uint16) {
	if idx&3 == 3 {
		c.setAF(v)
		return
	}
	c.setRP16(idx, v)
}

func (c *CPU) push16(v uint16) {
	c.SP -= 2
	c.write16(c.SP, v)
}

func (c *CPU) pop16() uint16 {
	v := c.read16(c.SP)
	c.SP += 2
	return v
}

func (c *CPU) condTaken(cc byte) bool {
	switch cc & 3 {
	case 0:
		return !c.flag(flagZ)
	case 1:
		return c.flag(flagZ)
	case 2:
		return !c.flag(flagC)
	default:
		return c.flag(flagC)
	}
}

// Step executes one instruction (or services one pending interrupt, or
// idles one HALT tick) and returns the number of clock cycles consumed;
// the bus's timer/PPU/OAM-DMA are advanced by that many cycles before
// Step returns.
func (c *CPU) Step() int {
	// EI arms the enable one instruction late: an eiPending set by the
	// previous step takes effect after this step's instruction, so the
	// instruction after EI always runs before any vectoring.
	armed := c.eiPending
	cycles := c.step()
	if c.bus != nil && cycles > 0 {
		c.bus.Tick(cycles)
	}
	if armed && c.eiPending {
		c.IME = true
		c.eiPending = false
	}
	return cycles
}

func (c *CPU) step() int {
	if c.halted {
		if c.bus.Interrupts().Pending() != 0 {
			// Pending work wakes the CPU even with IME=0; the wake itself
			// costs one machine cycle, and any dispatch happens next step.
			c.halted = false
			c.stopped = false
		}
		return 4
	}
	if c.IME {
		if cyc := c.dispatchInterrupt(); cyc != 0 {
			return cyc
		}
	}

	op := c.fetch8()
	if c.haltBug {
		c.PC--
		c.haltBug = false
	}
	return mainTable[op](c)
}

func (c *CPU) dispatchInterrupt() int {
	pending := c.bus.Interrupts().Pending()
	if pending == 0 {
		return 0
	}
	src, ok := interrupts.Lowest(pending)
	if !ok {
		return 0
	}
	c.bus.Interrupts().Clear(src)
	c.IME = false
	c.push16(c.PC)
	c.PC = src.Vector()
	return 20
}

func (c *CPU) execHALT() int {
	pending := c.bus.Interrupts().Pending()
	if !c.IME && pending != 0 {
		// HALT bug: IME clear with an interrupt already pending skips
		// HALT and replays the following byte.
		c.haltBug = true
		return 4
	}
	c.halted = true
	return 4
}
