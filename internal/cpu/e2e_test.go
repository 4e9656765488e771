package cpu

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// These tests exercise the literal end-to-end scenarios from the
// specification's testable-properties table.

func TestE2E_E1_ChainedLoadsAndAdds(t *testing.T) {
	// LD A,0x42; LD B,0x13; ADD A,B; ADD A,0x01
	c := newCPUWithROM([]byte{0x3E, 0x42, 0x06, 0x13, 0x80, 0xC6, 0x01})
	for i := 0; i < 4; i++ {
		c.Step()
	}
	require.Equal(t, byte(0x56), c.A)
	require.False(t, c.flag(flagZ))
	require.False(t, c.flag(flagN))
	require.False(t, c.flag(flagH))
	require.False(t, c.flag(flagC))
}

func TestE2E_E2_HalfCarryOnAdd(t *testing.T) {
	// LD A,0x0F; LD B,0x01; ADD A,B
	c := newCPUWithROM([]byte{0x3E, 0x0F, 0x06, 0x01, 0x80})
	for i := 0; i < 3; i++ {
		c.Step()
	}
	require.Equal(t, byte(0x10), c.A)
	require.True(t, c.flag(flagH))
}

func TestE2E_E3_PushPopRoundTripsAndPreservesSP(t *testing.T) {
	// LD BC,0x1234; PUSH BC; POP DE
	c := newCPUWithROM([]byte{0x01, 0x34, 0x12, 0xC5, 0xD1})
	c.SP = 0xFFFE
	for i := 0; i < 3; i++ {
		c.Step()
	}
	require.Equal(t, uint16(0x1234), uint16(c.D)<<8|uint16(c.E))
	require.Equal(t, uint16(0xFFFE), c.SP)
}

func TestE2E_E4_DAAOnAlreadyValidBCD(t *testing.T) {
	c := newCPUWithROM([]byte{0x27}) // DAA
	c.A = 0x45
	c.setFlag(flagN, false)
	c.setFlag(flagC, false)
	c.setFlag(flagH, false)
	c.Step()
	require.Equal(t, byte(0x45), c.A)
	require.False(t, c.flag(flagZ))
}

func TestE2E_E1_LowNibbleOfFAlwaysZero(t *testing.T) {
	c := newCPUWithROM([]byte{0x3E, 0x42, 0x06, 0x13, 0x80, 0xC6, 0x01})
	for i := 0; i < 4; i++ {
		c.Step()
	}
	require.Equal(t, byte(0), c.F&0x0F)
}

// SRL on a value with bit 0 set halves it and leaves carry set.
func TestSRL_ShiftsOutBitZeroIntoCarry(t *testing.T) {
	c := newCPUWithROM([]byte{0xCB, 0x3F}) // SRL A
	c.A = 0x05
	c.Step()
	require.Equal(t, byte(0x02), c.A)
	require.True(t, c.flag(flagC))
	require.False(t, c.flag(flagZ))
}

// DAA after adding two BCD-valid bytes yields the BCD sum.
func TestDAA_AfterBCDAddition(t *testing.T) {
	// LD A,0x19; ADD A,0x28; DAA -> BCD 19+28 = 47
	c := newCPUWithROM([]byte{0x3E, 0x19, 0xC6, 0x28, 0x27})
	for i := 0; i < 3; i++ {
		c.Step()
	}
	require.Equal(t, byte(0x47), c.A)
	require.False(t, c.flag(flagH))
}
