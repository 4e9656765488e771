package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// makeMBC5ROM stores each bank's own number as a little-endian uint16 at
// the start of the bank, so banks 0 and 256 (which alias under a plain
// byte(b) marker) remain distinguishable.
func makeMBC5ROM(banks int) []byte {
	rom := make([]byte, banks*0x4000)
	for b := 0; b < banks; b++ {
		rom[b*0x4000] = byte(b)
		rom[b*0x4000+1] = byte(b >> 8)
	}
	return rom
}

func readBank(m *MBC5) int {
	lo := m.Read(0x4000)
	hi := m.Read(0x4001)
	return int(hi)<<8 | int(lo)
}

func TestMBC5_SwitchableBankSelectsByLowAndHighByte(t *testing.T) {
	rom := makeMBC5ROM(512) // exercise bank > 255, needs the 9th bit
	m := NewMBC5(rom, 0)

	m.Write(0x2000, 0x00) // low byte of bank number
	m.Write(0x3000, 0x01) // high bit (bit 8) set -> bank 256
	require.Equal(t, 256, readBank(m))

	m.Write(0x2000, 0x01)
	m.Write(0x3000, 0x00)
	require.Equal(t, 1, readBank(m))
}

func TestMBC5_BankZeroIsNotForcedToOne(t *testing.T) {
	// Unlike MBC1, MBC5 has no minimum-1 rule: bank 0 is addressable
	// through the switchable window.
	rom := makeMBC5ROM(4)
	m := NewMBC5(rom, 0)
	m.Write(0x2000, 0x00)
	m.Write(0x3000, 0x00)
	require.Equal(t, 0, readBank(m))
}

func TestMBC5_RAMGatedByEnableRegister(t *testing.T) {
	rom := makeMBC5ROM(2)
	m := NewMBC5(rom, 0x2000)

	m.Write(0xA000, 0x99) // RAM disabled: write discarded
	require.Equal(t, byte(0xFF), m.Read(0xA000))

	m.Write(0x0000, 0x0A) // enable RAM
	m.Write(0xA000, 0x99)
	require.Equal(t, byte(0x99), m.Read(0xA000))

	m.Write(0x0000, 0x00) // disable RAM again
	require.Equal(t, byte(0xFF), m.Read(0xA000))
}

func TestMBC5_RAMBankIs4Bit(t *testing.T) {
	rom := makeMBC5ROM(2)
	m := NewMBC5(rom, 4*0x2000)
	m.Write(0x0000, 0x0A)
	m.Write(0x4000, 0x02) // select RAM bank 2
	m.Write(0xA000, 0x7A)
	m.Write(0x4000, 0x00)
	require.NotEqual(t, byte(0x7A), m.Read(0xA000), "bank 0 must be distinct storage from bank 2")

	m.Write(0x4000, 0x02)
	require.Equal(t, byte(0x7A), m.Read(0xA000))
}

func TestMBC5_SaveRAMRoundTrip(t *testing.T) {
	rom := makeMBC5ROM(2)
	m := NewMBC5(rom, 0x2000)
	m.Write(0x0000, 0x0A)
	m.Write(0xA000, 0x55)

	saved := m.SaveRAM()
	require.Len(t, saved, 0x2000)

	m2 := NewMBC5(rom, 0x2000)
	m2.LoadRAM(saved)
	m2.Write(0x0000, 0x0A)
	require.Equal(t, byte(0x55), m2.Read(0xA000))
}
