package cart

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMBC0_DirectMapping(t *testing.T) {
	rom := make([]byte, 0x8000)
	rom[0x0000] = 0x11
	rom[0x3FFF] = 0x22
	rom[0x7FFF] = 0x33
	m := NewMBC0(rom)

	require.Equal(t, byte(0x11), m.Read(0x0000))
	require.Equal(t, byte(0x22), m.Read(0x3FFF))
	require.Equal(t, byte(0x33), m.Read(0x7FFF))
}

func TestMBC0_ReadsPastROMReturnOpenBus(t *testing.T) {
	rom := make([]byte, 0x100)
	m := NewMBC0(rom)
	require.Equal(t, byte(0xFF), m.Read(0x7FFF))
}

func TestMBC0_WritesAreIgnored(t *testing.T) {
	rom := []byte{0xAB}
	m := NewMBC0(rom)
	m.Write(0x2000, 0x42) // bank-select writes are a no-op on MBC0
	require.Equal(t, byte(0xAB), m.Read(0x0000))
}
