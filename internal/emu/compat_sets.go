package emu

// cgbCompatSets holds the four-shade RGB555 recoloring applied to a
// DMG-only cartridge's grayscale output when running under CGB
// compatibility mode, indexed by compatTitleExact/compatTitleContains
// in compat_tables.go. Shade 0 is lightest, shade 3 darkest.
var cgbCompatSets = [][4]uint16{
	{0x7FE6, 0x4FE0, 0x2760, 0x0120}, // Green
	{0x7F9C, 0x5A73, 0x314A, 0x0861}, // Sepia
	{0x7FFF, 0x4DFF, 0x1ABF, 0x0010}, // Blue
	{0x7FFF, 0x7E94, 0x5129, 0x0000}, // Red
	{0x7FFF, 0x6B3F, 0x4A33, 0x1086}, // Pastel
	{0x7FFF, 0x56B5, 0x294A, 0x0000}, // Gray (plain DMG)
}

var cgbCompatSetNames = []string{"Green", "Sepia", "Blue", "Red", "Pastel", "Gray"}
