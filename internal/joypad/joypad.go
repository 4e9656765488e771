// Package joypad models the FF00 button matrix: a write-selected row
// (buttons or d-pad) read back active-low, and an edge-triggered
// interrupt raised whenever an injected button press lowers a bit that
// was previously high in the currently selected row.
//
// Grounded on valerio-go-jeebie's jeebie/memory/joypad.go for the
// row-select/active-low shape; the interrupt-on-press behavior (absent
// there) is added per spec.
package joypad

import "github.com/jterrac/gbcore/internal/bitutil"

// Button identifies one of the eight physical inputs.
type Button uint8

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

func (b Button) isDirection() bool { return b <= Down }

// RequestFunc is called when a press lowers a bit in the selected row.
type RequestFunc func()

// Joypad is the button-matrix component.
type Joypad struct {
	dpad    byte // active-low, bits 0-3: right,left,up,down
	buttons byte // active-low, bits 0-3: a,b,select,start
	select_ byte // last written bits 5-4 (0 = row selected)

	request RequestFunc
}

// New returns a Joypad with no buttons pressed.
func New(request RequestFunc) *Joypad {
	return &Joypad{dpad: 0x0F, buttons: 0x0F, request: request}
}

// Read returns the FF00 register value for the currently selected row(s).
func (j *Joypad) Read() byte {
	row := byte(0x0F)
	if j.select_&0x20 == 0 { // bit 5 low selects buttons
		row &= j.buttons
	}
	if j.select_&0x10 == 0 { // bit 4 low selects direction
		row &= j.dpad
	}
	return 0xC0 | j.select_ | row
}

// Write sets the row-select bits (5-4); other bits are ignored.
func (j *Joypad) Write(value byte) {
	j.select_ = value & 0x30
}

func (j *Joypad) rowAndBit(btn Button) (row *byte, bit uint) {
	if btn.isDirection() {
		return &j.dpad, uint(btn)
	}
	return &j.buttons, uint(btn) - uint(A)
}

// Press lowers the bit for btn and raises the Joypad interrupt if that bit
// belongs to a currently-selected row and was previously released.
func (j *Joypad) Press(btn Button) {
	row, bit := j.rowAndBit(btn)
	wasSet := bitutil.IsSet(bit, *row)
	*row = bitutil.Clear(bit, *row)

	rowSelected := (btn.isDirection() && j.select_&0x10 == 0) ||
		(!btn.isDirection() && j.select_&0x20 == 0)
	if wasSet && rowSelected && j.request != nil {
		j.request()
	}
}

// Release raises the bit for btn.
func (j *Joypad) Release(btn Button) {
	row, bit := j.rowAndBit(btn)
	*row = bitutil.Set(bit, *row)
}
