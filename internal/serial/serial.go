// Package serial stubs the SB/SC link-cable registers (0xFF01/0xFF02).
// Real link-cable clocking and the Serial interrupt are Non-goals; this
// stub exists so Blargg-style test ROMs, which report pass/fail by
// writing a byte to SB and then toggling SC's start bit, can be observed
// by attaching an io.Writer sink.
//
// Grounded on original_source/src/serial.rs (fixed-value reads, write
// is a pass-through side effect) and the teacher's bus.go sb/sc/sw fields.
package serial

import "io"

const (
	SB uint16 = 0xFF01
	SC uint16 = 0xFF02
)

// Serial is the stubbed link-cable port.
type Serial struct {
	sb   byte
	sc   byte
	Sink io.Writer // optional; written to when SC's start bit is set
}

// New returns a Serial stub with no sink attached.
func New() *Serial {
	return &Serial{sc: 0x7E}
}

// Read returns SB's last-written byte and SC with its fixed high bits.
func (s *Serial) Read(addr uint16) byte {
	switch addr {
	case SB:
		return s.sb
	case SC:
		return s.sc | 0x7E
	default:
		return 0xFF
	}
}

// Write latches SB, or on an SC write with the start bit set, emits the
// latched SB byte to Sink (a real transfer never completes: no clock is
// emulated, so the start bit is not cleared and no interrupt fires).
func (s *Serial) Write(addr uint16, value byte) {
	switch addr {
	case SB:
		s.sb = value
	case SC:
		s.sc = value
		if value&0x80 != 0 && s.Sink != nil {
			_, _ = s.Sink.Write([]byte{s.sb})
		}
	}
}
