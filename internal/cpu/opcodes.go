package cpu

import "github.com/jterrac/gbcore/internal/bitutil"

// opFunc executes one base-page or CB-page opcode and returns its cycle cost.
type opFunc func(c *CPU) int

var mainTable [256]opFunc

func init() {
	for i := range mainTable {
		mainTable[i] = opIllegal
	}

	// 8-bit LD r,r' (0x40-0x7F), with 0x76 = HALT instead of LD (HL),(HL).
	for dst := byte(0); dst < 8; dst++ {
		for src := byte(0); src < 8; src++ {
			op := 0x40 + dst*8 + src
			if op == 0x76 {
				mainTable[op] = func(c *CPU) int { return c.execHALT() }
				continue
			}
			d, s := dst, src
			cycles := 4
			if d == 6 || s == 6 {
				cycles = 8
			}
			mainTable[op] = func(c *CPU) int {
				c.setR8(d, c.r8(s))
				return cycles
			}
		}
	}

	// LD r,d8 (0x06,0x0E,0x16,0x1E,0x26,0x2E,0x36,0x3E).
	for dst := byte(0); dst < 8; dst++ {
		op := 0x06 + dst*8
		d := dst
		cycles := 8
		if d == 6 {
			cycles = 12
		}
		mainTable[op] = func(c *CPU) int {
			v := c.fetch8()
			c.setR8(d, v)
			return cycles
		}
	}

	// 8-bit ALU A,r (0x80-0xBF): ADD ADC SUB SBC AND XOR OR CP.
	aluOps := [8]func(c *CPU, v byte){
		(*CPU).aluAdd, (*CPU).aluAdc, (*CPU).aluSub, (*CPU).aluSbc,
		(*CPU).aluAnd, (*CPU).aluXor, (*CPU).aluOr, (*CPU).aluCp,
	}
	for op8 := byte(0); op8 < 8; op8++ {
		for src := byte(0); src < 8; src++ {
			op := 0x80 + op8*8 + src
			fn := aluOps[op8]
			s := src
			cycles := 4
			if s == 6 {
				cycles = 8
			}
			mainTable[op] = func(c *CPU) int {
				fn(c, c.r8(s))
				return cycles
			}
		}
	}

	// 8-bit ALU A,d8 (0xC6,0xCE,0xD6,0xDE,0xE6,0xEE,0xF6,0xFE).
	for op8 := byte(0); op8 < 8; op8++ {
		op := 0xC6 + op8*8
		fn := aluOps[op8]
		mainTable[op] = func(c *CPU) int {
			fn(c, c.fetch8())
			return 8
		}
	}

	// INC r8 / DEC r8.
	incOpcodes := [8]byte{0x04, 0x0C, 0x14, 0x1C, 0x24, 0x2C, 0x34, 0x3C}
	decOpcodes := [8]byte{0x05, 0x0D, 0x15, 0x1D, 0x25, 0x2D, 0x35, 0x3D}
	for idx := byte(0); idx < 8; idx++ {
		i := idx
		cycles := 4
		if i == 6 {
			cycles = 12
		}
		mainTable[incOpcodes[idx]] = func(c *CPU) int {
			v := c.r8(i)
			r := v + 1
			c.setFlag(flagZ, r == 0)
			c.setFlag(flagN, false)
			c.setFlag(flagH, bitutil.HalfCarryAdd8(v, 1))
			c.setR8(i, r)
			return cycles
		}
		mainTable[decOpcodes[idx]] = func(c *CPU) int {
			v := c.r8(i)
			r := v - 1
			c.setFlag(flagZ, r == 0)
			c.setFlag(flagN, true)
			c.setFlag(flagH, bitutil.HalfCarrySub8(v, 1))
			c.setR8(i, r)
			return cycles
		}
	}

	// 16-bit LD rr,d16 / INC rr / DEC rr / ADD HL,rr.
	for g := byte(0); g < 4; g++ {
		grp := g
		mainTable[0x01+g*0x10] = func(c *CPU) int {
			c.setRP16(grp, c.fetch16())
			return 12
		}
		mainTable[0x03+g*0x10] = func(c *CPU) int {
			c.setRP16(grp, c.rp16(grp)+1)
			return 8
		}
		mainTable[0x0B+g*0x10] = func(c *CPU) int {
			c.setRP16(grp, c.rp16(grp)-1)
			return 8
		}
		mainTable[0x09+g*0x10] = func(c *CPU) int {
			hl := c.getHL()
			v := c.rp16(grp)
			res := uint32(hl) + uint32(v)
			c.setFlag(flagN, false)
			c.setFlag(flagH, bitutil.HalfCarryAdd16(hl, v))
			c.setFlag(flagC, res > 0xFFFF)
			c.setHL(uint16(res))
			return 8
		}
	}

	// PUSH rr / POP rr (BC,DE,HL,AF).
	for g := byte(0); g < 4; g++ {
		grp := g
		mainTable[0xC5+g*0x10] = func(c *CPU) int {
			c.push16(c.rp16Stack(grp))
			return 16
		}
		mainTable[0xC1+g*0x10] = func(c *CPU) int {
			c.setRP16Stack(grp, c.pop16())
			return 12
		}
	}

	// JR cc,r8 (0x20,0x28,0x30,0x38) and unconditional JR (0x18).
	mainTable[0x18] = func(c *CPU) int {
		off := int8(c.fetch8())
		c.PC = uint16(int32(c.PC) + int32(off))
		return 12
	}
	for cc := byte(0); cc < 4; cc++ {
		condition := cc
		mainTable[0x20+cc*8] = func(c *CPU) int {
			off := int8(c.fetch8())
			if c.condTaken(condition) {
				c.PC = uint16(int32(c.PC) + int32(off))
				return 12
			}
			return 8
		}
	}

	// JP a16, JP cc,a16, JP (HL).
	mainTable[0xC3] = func(c *CPU) int {
		c.PC = c.fetch16()
		return 16
	}
	mainTable[0xE9] = func(c *CPU) int {
		c.PC = c.getHL()
		return 4
	}
	for cc := byte(0); cc < 4; cc++ {
		condition := cc
		mainTable[0xC2+cc*8] = func(c *CPU) int {
			addr := c.fetch16()
			if c.condTaken(condition) {
				c.PC = addr
				return 16
			}
			return 12
		}
	}

	// CALL a16, CALL cc,a16.
	mainTable[0xCD] = func(c *CPU) int {
		addr := c.fetch16()
		c.push16(c.PC)
		c.PC = addr
		return 24
	}
	for cc := byte(0); cc < 4; cc++ {
		condition := cc
		mainTable[0xC4+cc*8] = func(c *CPU) int {
			addr := c.fetch16()
			if c.condTaken(condition) {
				c.push16(c.PC)
				c.PC = addr
				return 24
			}
			return 12
		}
	}

	// RET, RET cc, RETI.
	mainTable[0xC9] = func(c *CPU) int {
		c.PC = c.pop16()
		return 16
	}
	mainTable[0xD9] = func(c *CPU) int {
		c.PC = c.pop16()
		c.IME = true
		return 16
	}
	for cc := byte(0); cc < 4; cc++ {
		condition := cc
		mainTable[0xC0+cc*8] = func(c *CPU) int {
			if c.condTaken(condition) {
				c.PC = c.pop16()
				return 20
			}
			return 8
		}
	}

	// RST n.
	for n := byte(0); n < 8; n++ {
		target := uint16(n) * 8
		mainTable[0xC7+n*8] = func(c *CPU) int {
			c.push16(c.PC)
			c.PC = target
			return 16
		}
	}

	mainTable[0x00] = func(c *CPU) int { return 4 }
	// STOP behaves as a deeper HALT here: the pad byte is consumed and the
	// CPU idles until an interrupt becomes pending.
	mainTable[0x10] = func(c *CPU) int { c.fetch8(); c.stopped = true; c.halted = true; return 4 }
	mainTable[0xF3] = func(c *CPU) int { c.IME = false; c.eiPending = false; return 4 }
	mainTable[0xFB] = func(c *CPU) int { c.eiPending = true; return 4 }
	mainTable[0xCB] = func(c *CPU) int {
		op := c.fetch8()
		return cbTable[op](c)
	}

	mainTable[0x07] = func(c *CPU) int {
		cy := c.A&0x80 != 0
		c.A = c.A<<1 | boolBit(cy)
		c.setZNHC(false, false, false, cy)
		return 4
	}
	mainTable[0x0F] = func(c *CPU) int {
		cy := c.A&0x01 != 0
		c.A = c.A>>1 | boolBit(cy)<<7
		c.setZNHC(false, false, false, cy)
		return 4
	}
	mainTable[0x17] = func(c *CPU) int {
		cy := c.A&0x80 != 0
		c.A = c.A<<1 | boolBit(c.flag(flagC))
		c.setZNHC(false, false, false, cy)
		return 4
	}
	mainTable[0x1F] = func(c *CPU) int {
		cy := c.A&0x01 != 0
		c.A = c.A>>1 | boolBit(c.flag(flagC))<<7
		c.setZNHC(false, false, false, cy)
		return 4
	}

	mainTable[0x27] = func(c *CPU) int { c.execDAA(); return 4 }
	mainTable[0x2F] = func(c *CPU) int {
		c.A = ^c.A
		c.setFlag(flagN, true)
		c.setFlag(flagH, true)
		return 4
	}
	mainTable[0x37] = func(c *CPU) int {
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, true)
		return 4
	}
	mainTable[0x3F] = func(c *CPU) int {
		c.setFlag(flagN, false)
		c.setFlag(flagH, false)
		c.setFlag(flagC, !c.flag(flagC))
		return 4
	}

	// LD (BC),A / LD (DE),A / LD A,(BC) / LD A,(DE).
	mainTable[0x02] = func(c *CPU) int { c.write8(c.getBC(), c.A); return 8 }
	mainTable[0x12] = func(c *CPU) int { c.write8(c.getDE(), c.A); return 8 }
	mainTable[0x0A] = func(c *CPU) int { c.A = c.read8(c.getBC()); return 8 }
	mainTable[0x1A] = func(c *CPU) int { c.A = c.read8(c.getDE()); return 8 }

	// LDI/LDD (HL),A and A,(HL).
	mainTable[0x22] = func(c *CPU) int { hl := c.getHL(); c.write8(hl, c.A); c.setHL(hl + 1); return 8 }
	mainTable[0x32] = func(c *CPU) int { hl := c.getHL(); c.write8(hl, c.A); c.setHL(hl - 1); return 8 }
	mainTable[0x2A] = func(c *CPU) int { hl := c.getHL(); c.A = c.read8(hl); c.setHL(hl + 1); return 8 }
	mainTable[0x3A] = func(c *CPU) int { hl := c.getHL(); c.A = c.read8(hl); c.setHL(hl - 1); return 8 }

	// LD (a16),SP.
	mainTable[0x08] = func(c *CPU) int {
		addr := c.fetch16()
		c.write16(addr, c.SP)
		return 20
	}

	// LDH (a8),A / LDH A,(a8) / LD (C),A / LD A,(C).
	mainTable[0xE0] = func(c *CPU) int {
		addr := 0xFF00 + uint16(c.fetch8())
		c.write8(addr, c.A)
		return 12
	}
	mainTable[0xF0] = func(c *CPU) int {
		addr := 0xFF00 + uint16(c.fetch8())
		c.A = c.read8(addr)
		return 12
	}
	mainTable[0xE2] = func(c *CPU) int { c.write8(0xFF00+uint16(c.C), c.A); return 8 }
	mainTable[0xF2] = func(c *CPU) int { c.A = c.read8(0xFF00 + uint16(c.C)); return 8 }

	// LD (a16),A / LD A,(a16).
	mainTable[0xEA] = func(c *CPU) int { c.write8(c.fetch16(), c.A); return 16 }
	mainTable[0xFA] = func(c *CPU) int { c.A = c.read8(c.fetch16()); return 16 }

	// LD SP,HL / LD HL,SP+r8 / ADD SP,r8.
	mainTable[0xF9] = func(c *CPU) int { c.SP = c.getHL(); return 8 }
	mainTable[0xF8] = func(c *CPU) int {
		off := int8(c.fetch8())
		res := uint32(int32(c.SP) + int32(off))
		c.setFlag(flagZ, false)
		c.setFlag(flagN, false)
		c.setFlag(flagH, (c.SP&0x0F)+uint16(byte(off)&0x0F) > 0x0F)
		c.setFlag(flagC, (c.SP&0xFF)+uint16(byte(off)) > 0xFF)
		c.setHL(uint16(res))
		return 12
	}
	mainTable[0xE8] = func(c *CPU) int {
		off := int8(c.fetch8())
		res := uint32(int32(c.SP) + int32(off))
		c.setFlag(flagZ, false)
		c.setFlag(flagN, false)
		c.setFlag(flagH, (c.SP&0x0F)+uint16(byte(off)&0x0F) > 0x0F)
		c.setFlag(flagC, (c.SP&0xFF)+uint16(byte(off)) > 0xFF)
		c.SP = uint16(res)
		return 16
	}

	// DI handled above at 0xF3; EI at 0xFB.
	mainTable[0xD3] = opIllegal
	mainTable[0xDB] = opIllegal
	mainTable[0xDD] = opIllegal
	mainTable[0xE3] = opIllegal
	mainTable[0xE4] = opIllegal
	mainTable[0xEB] = opIllegal
	mainTable[0xEC] = opIllegal
	mainTable[0xED] = opIllegal
	mainTable[0xF4] = opIllegal
	mainTable[0xFC] = opIllegal
	mainTable[0xFD] = opIllegal
}

func opIllegal(c *CPU) int {
	if c.IllegalOp != nil {
		c.IllegalOp(c.PC-1, c.read8(c.PC-1))
	}
	return 4
}

func boolBit(b bool) byte {
	if b {
		return 1
	}
	return 0
}

func (c *CPU) aluAdd(v byte) {
	res := uint16(c.A) + uint16(v)
	c.setFlag(flagH, bitutil.HalfCarryAdd8(c.A, v))
	c.setFlag(flagC, res > 0xFF)
	c.A = byte(res)
	c.setFlag(flagZ, c.A == 0)
	c.setFlag(flagN, false)
}

func (c *CPU) aluAdc(v byte) {
	carry := boolBit(c.flag(flagC))
	res := uint16(c.A) + uint16(v) + uint16(carry)
	c.setFlag(flagH, bitutil.HalfCarryAdd8C(c.A, v, carry))
	c.setFlag(flagC, res > 0xFF)
	c.A = byte(res)
	c.setFlag(flagZ, c.A == 0)
	c.setFlag(flagN, false)
}

func (c *CPU) aluSub(v byte) {
	res := int16(c.A) - int16(v)
	c.setFlag(flagH, bitutil.HalfCarrySub8(c.A, v))
	c.setFlag(flagC, res < 0)
	c.A = byte(res)
	c.setFlag(flagZ, c.A == 0)
	c.setFlag(flagN, true)
}

func (c *CPU) aluSbc(v byte) {
	carry := boolBit(c.flag(flagC))
	res := int16(c.A) - int16(v) - int16(carry)
	c.setFlag(flagH, bitutil.HalfCarrySub8C(c.A, v, carry))
	c.setFlag(flagC, res < 0)
	c.A = byte(res)
	c.setFlag(flagZ, c.A == 0)
	c.setFlag(flagN, true)
}

func (c *CPU) aluAnd(v byte) {
	c.A &= v
	c.setZNHC(c.A == 0, false, true, false)
}

func (c *CPU) aluXor(v byte) {
	c.A ^= v
	c.setZNHC(c.A == 0, false, false, false)
}

func (c *CPU) aluOr(v byte) {
	c.A |= v
	c.setZNHC(c.A == 0, false, false, false)
}

func (c *CPU) aluCp(v byte) {
	res := int16(c.A) - int16(v)
	c.setFlag(flagZ, byte(res) == 0)
	c.setFlag(flagN, true)
	c.setFlag(flagH, bitutil.HalfCarrySub8(c.A, v))
	c.setFlag(flagC, res < 0)
}

func (c *CPU) execDAA() {
	a := c.A
	adjust := byte(0)
	carry := c.flag(flagC)
	if c.flag(flagN) {
		if c.flag(flagH) {
			adjust += 0x06
		}
		if c.flag(flagC) {
			adjust += 0x60
		}
		a -= adjust
	} else {
		if c.flag(flagH) || a&0x0F > 0x09 {
			adjust += 0x06
		}
		if c.flag(flagC) || a > 0x99 {
			adjust += 0x60
			carry = true
		}
		a += adjust
	}
	c.A = a
	c.setFlag(flagZ, c.A == 0)
	c.setFlag(flagH, false)
	c.setFlag(flagC, carry)
}
