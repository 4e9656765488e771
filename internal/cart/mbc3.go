package cart

// MBC3 implements 7-bit ROM banking and 2-bit RAM banking. Real-time
// clock is a Non-goal; RTC register indices (0x08-0x0C written to the
// RAM-bank-select latch) are kept as inert bytes that read back whatever
// was last written, so RTC-probing ROMs see a stable value instead of
// open-bus garbage, without implementing the clock itself.
type MBC3 struct {
	rom []byte
	ram []byte

	ramEnabled bool
	romBank    byte // 7 bits, 0 forced to 1
	ramBank    byte // 0-3, or an RTC register index 0x08-0x0C

	rtc [5]byte // latched RTC registers 0x08-0x0C, inert

	romBanks int
	ramBanks int
}

// NewMBC3 returns an MBC3 cartridge with the given ROM image and RAM size.
func NewMBC3(rom []byte, ramSize int) *MBC3 {
	m := &MBC3{rom: rom, romBank: 1}
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

func (m *MBC3) isRTCSelect() bool { return m.ramBank >= 0x08 && m.ramBank <= 0x0C }

func (m *MBC3) Read(addr uint16) byte {
	switch {
	case addr < 0x4000:
		if int(addr) < len(m.rom) {
			return m.rom[addr]
		}
		return 0xFF
	case addr < 0x8000:
		bank := int(m.romBank) % m.romBanks
		off := bank*0x4000 + int(addr-0x4000)
		if off < len(m.rom) {
			return m.rom[off]
		}
		return 0xFF
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return 0xFF
		}
		if m.isRTCSelect() {
			return m.rtc[m.ramBank-0x08]
		}
		if len(m.ram) == 0 {
			return 0xFF
		}
		off := int(m.ramBank%byte(m.ramBanks))*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			return m.ram[off]
		}
		return 0xFF
	default:
		return 0xFF
	}
}

func (m *MBC3) Write(addr uint16, value byte) {
	switch {
	case addr < 0x2000:
		m.ramEnabled = value&0x0F == 0x0A
	case addr < 0x4000:
		v := value & 0x7F
		if v == 0 {
			v = 1
		}
		m.romBank = v
	case addr < 0x6000:
		m.ramBank = value
	case addr < 0x8000:
		// Latch-clock write: no-op without an implemented RTC.
	case addr >= 0xA000 && addr <= 0xBFFF:
		if !m.ramEnabled {
			return
		}
		if m.isRTCSelect() {
			m.rtc[m.ramBank-0x08] = value
			return
		}
		if len(m.ram) == 0 {
			return
		}
		off := int(m.ramBank%byte(m.ramBanks))*0x2000 + int(addr-0xA000)
		if off < len(m.ram) {
			m.ram[off] = value
		}
	}
}

// SaveRAM returns a copy of external RAM for battery persistence.
func (m *MBC3) SaveRAM() []byte {
	if len(m.ram) == 0 {
		return nil
	}
	out := make([]byte, len(m.ram))
	copy(out, m.ram)
	return out
}

// LoadRAM restores previously-saved external RAM.
func (m *MBC3) LoadRAM(data []byte) {
	copy(m.ram, data)
}
