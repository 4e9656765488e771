// Package cart implements cartridge ROM/RAM banking for MBC0 (ROM-only),
// MBC1, MBC3, and MBC5, selected from the ROM header's cartridge-type byte.
package cart

// Cartridge is the minimal interface the bus needs for ROM/RAM banking.
// Addresses are CPU addresses; Read/Write cover both the 0x0000-0x7FFF
// ROM/control window and the 0xA000-0xBFFF external RAM window.
type Cartridge interface {
	Read(addr uint16) byte
	Write(addr uint16, value byte)
}

// BatteryBacked is implemented by cartridges with persistable external
// RAM. SaveRAM returns a copy suitable for writing to a save file;
// LoadRAM restores previously-saved bytes before the first access.
type BatteryBacked interface {
	SaveRAM() []byte
	LoadRAM(data []byte)
}

// New picks an implementation based on the ROM header's cartridge-type
// byte (0x0147), falling back to ROM-only for headers it can't parse or
// types it doesn't recognize (homebrew/test ROMs commonly fall here).
func New(rom []byte) Cartridge {
	h, err := ParseHeader(rom)
	if err != nil {
		return NewMBC0(rom)
	}
	switch h.CartType {
	case 0x00:
		return NewMBC0(rom)
	case 0x01, 0x02, 0x03:
		return NewMBC1(rom, h.RAMSizeBytes)
	case 0x0F, 0x10, 0x11, 0x12, 0x13:
		return NewMBC3(rom, h.RAMSizeBytes)
	case 0x19, 0x1A, 0x1B, 0x1C, 0x1D, 0x1E:
		return NewMBC5(rom, h.RAMSizeBytes)
	default:
		return NewMBC0(rom)
	}
}
