package cart

// MBC1 implements the classic 5-bit+2-bit ROM/RAM banking scheme.
//
// Registers: ramEnable (0x0A in the low nibble written to 0x0000-0x1FFF
// enables external RAM), bank1 (5 bits, 0x2000-0x3FFF, 0 forced to 1),
// bank2 (2 bits, 0x4000-0x5FFF), mode (1 bit, 0x6000-0x7FFF). In mode 0
// bank2 only feeds the high bits of the switchable ROM bank; in mode 1
// it also selects the ROM bank mapped at 0x0000-0x3FFF and the RAM bank.
type MBC1 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	bank1      byte // 5 bits
	bank2      byte // 2 bits
	mode       byte // 0 or 1

	romBanks int // total 16 KiB ROM banks available
	ramBanks int // total 8 KiB RAM banks available
}

// NewMBC1 returns an MBC1 cartridge with the given ROM image and RAM size.
func NewMBC1(rom []byte, ramSize int) *MBC1 {
	m := &MBC1{rom: rom, bank1: 1}
	if ramSize > 0 {
		m.ram = make([]byte, ramSize)
	}
	m.romBanks = len(rom) / 0x4000
	if m.romBanks == 0 {
		m.romBanks = 1
	}
	m.ramBanks = ramSize / 0x2000
	if m.ramBanks == 0 {
		m.ramBanks = 1
	}
	return m
}

func (m *MBC1) romBank0() int {
	if m.mode == 1 {
		return int(m.bank2<<5) % m.romBanks
	}
	return 0
}

func (m *MBC1) romBankSwitch() int {
	bank := int(m.bank2<<5) | int(m.bank1)
	return bank % m.romBanks
}

func (m *MBC1) ramBank() int {
	if m.mode == 1 {
		return int(m.bank2) % m.ramBanks
	}
	return 0
}

func (m *MBC1) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		off := m.romBank0()*0x4000 + int(addr)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr < 0x8000:
		off := m.romBankSwitch()*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return 0xFF
		}
		off := m.ramBank()*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC1) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		v := value & 0x1F
		if v == 0 {
			v = 1
		}
		m.bank1 = v
	case addr < 0x6000:
		m.bank2 = value & 0x03
	case addr < 0x8000:
		m.mode = value & 0x01
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled || len(m.ram) == 0 {
			return
		}
		off := m.ramBank()*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

// SaveRAM returns a copy of external RAM for battery persistence.
func (m *MBC1) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

// LoadRAM restores previously-saved external RAM.
func (m *MBC1) LoadRAM(data []byte) {
	copy(m.ram, data)
}
