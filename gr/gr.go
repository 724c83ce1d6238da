/*
Package gr implements a reader for the .gr image lists used by Ultima
Underworld for objects, interface elements and similar graphics.

A file starts with a format byte and a little-endian 16-bit image count
followed by a 32-bit offset for each image. Each image has a small header
of type, width and height, an auxiliary palette index for the 4-bit types
and a 16-bit data length, followed by the pixel data. Pixels are either
8-bit palette indices, packed 4-bit indices into an auxiliary palette, or
4-bit indices compressed with package rle.
*/
package gr

// Image types
const (
	TypeRaw8 = 0x04 // 8-bit uncompressed
	TypeRLE4 = 0x08 // 4-bit run-length encoded
	TypeRaw4 = 0x0a // 4-bit uncompressed
)

const (
	digitWidth = 4
	maxAux     = 0x1f
)
