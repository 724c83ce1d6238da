/*
Package font implements a reader for the FONT*.SYS bitmap font files used by
Ultima Underworld.

A font file starts with a 12-byte header of little-endian 16-bit words: an
unused word, the size in bytes of each glyph bitmap, the width of a space,
the glyph height, the bytes per bitmap row and the widest glyph. The glyphs
follow back to back, each a 1-bit bitmap, most significant bit first with
every row starting on a byte boundary, then a byte holding the glyph width.
*/
package font

const headerSize = 12

// Palette indices used for the pixels of a decoded glyph.
const (
	// Ink marks a set bit
	Ink byte = 0
	// Paper marks a clear bit inside the glyph width
	Paper byte = 11
	// Outside marks a clear bit past the glyph width
	Outside byte = 253
)
