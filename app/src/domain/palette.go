package domain

// PaletteEntry is one colour of the fixed dashboard palette.
type PaletteEntry struct {
	Index int    `json:"index"`
	Hex   string `json:"hex"`
}

var palette = [...]PaletteEntry{
	{Index: 0, Hex: "#BF915A"},
	{Index: 1, Hex: "#80949D"},
	{Index: 2, Hex: "#A24E35"},
	{Index: 3, Hex: "#C6C2A4"},
	{Index: 4, Hex: "#09181A"},
}

// PaletteSize is the number of entries in the dashboard palette.
const PaletteSize = len(palette)

// Palette returns a copy of the dashboard palette in bucket order.
func Palette() []PaletteEntry {
	out := make([]PaletteEntry, len(palette))
	copy(out, palette[:])
	return out
}

// PaletteAt returns the palette entry at index i. Out-of-range indexes are clamped.
func PaletteAt(i int) PaletteEntry {
	if i < 0 {
		i = 0
	}
	if i >= len(palette) {
		i = len(palette) - 1
	}
	return palette[i]
}
