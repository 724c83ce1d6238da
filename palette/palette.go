/*
Package palette reads the palette files shipped with Ultima Underworld.

pals.dat holds eight 256 color palettes stored as 6-bit VGA red, green and
blue components. allpals.dat holds 32 auxiliary palettes of 16 entries,
each entry an index into a 256 color palette; 4-bit images select one of
these to map their pixels.
*/
package palette

import (
	"errors"
	"image/color"
	"io"

	perrors "github.com/pkg/errors"
)

const (
	// Count is the number of palettes in pals.dat
	Count   = 8
	colors  = 256
	auxSize = 16
	// AuxCount is the number of auxiliary palettes in allpals.dat
	AuxCount = 32
)

var (
	// ErrNotEnough is returned when a palette file is short
	ErrNotEnough = errors.New("palette: not enough palette data")
	// ErrBadAux is returned for an auxiliary palette that does not exist
	ErrBadAux = errors.New("palette: invalid auxiliary palette")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	switch err {
	case nil:
		return nil
	case io.EOF, io.ErrUnexpectedEOF:
		return ErrNotEnough
	default:
		return perrors.WithStack(err)
	}
}

// Read decodes all palettes from a pals.dat file. Index 0 of every palette
// is transparent.
func Read(r io.Reader) ([]color.Palette, error) {
	palettes := make([]color.Palette, Count)

	var tmp [colors * 3]byte
	for i := range palettes {
		if err := readFull(r, tmp[:]); err != nil {
			return nil, err
		}

		p := make(color.Palette, colors)
		for j := range p {
			c := color.RGBA{
				tmp[j*3+0] << 2,
				tmp[j*3+1] << 2,
				tmp[j*3+2] << 2,
				0xff,
			}
			if j == 0 {
				c = color.RGBA{}
			}
			p[j] = c
		}
		palettes[i] = p
	}

	return palettes, nil
}

// Grey returns a 256 entry grey ramp, useful when no palette file is
// available.
func Grey() color.Palette {
	p := make(color.Palette, colors)
	for i := range p {
		p[i] = color.Gray{Y: uint8(i)}
	}
	return p
}

// Aux holds auxiliary palettes, each a table of indices into a 256 color
// palette.
type Aux [][]byte

// ReadAux decodes the auxiliary palettes from an allpals.dat file.
func ReadAux(r io.Reader) (Aux, error) {
	aux := make(Aux, AuxCount)
	for i := range aux {
		aux[i] = make([]byte, auxSize)
		if err := readFull(r, aux[i]); err != nil {
			return nil, err
		}
	}
	return aux, nil
}

// Table returns auxiliary palette i.
func (a Aux) Table(i int) ([]byte, error) {
	if i < 0 || i >= len(a) {
		return nil, perrors.Wrapf(ErrBadAux, "%d of %d", i, len(a))
	}
	return a[i], nil
}
