/*
Package crit implements a reader for the critter animation pages used by
Ultima Underworld.

Each critter's frames are split across page files named CRxxPAGE.Nyy with
both numbers in octal. A page holds a segment directory, the frame lists of
its animation segments, a set of 32 entry auxiliary palettes and the frames
themselves. Every frame is run-length encoded with package rle using either
5-bit or 4-bit digits.

The ASSOC.ANM file alongside the pages names each critter.
*/
package crit

import "fmt"

// Frame types
const (
	TypeRLE5 = 0x06 // 5-bit run-length encoded
	TypeRLE4 = 0x08 // 4-bit run-length encoded
)

const (
	auxSize       = 32
	segmentFrames = 8
	frameHeader   = 7
	maxCritters   = 32
	nameSize      = 8
	assocOffset   = maxCritters * nameSize
)

// Filename returns the name of the given page file for a critter.
func Filename(critter, page int) string {
	return fmt.Sprintf("CR%02oPAGE.N%02o", critter, page)
}
