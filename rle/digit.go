package rle

import (
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// digitReader slices a byte stream into fixed width digits, most significant
// bit first. Digits may straddle byte boundaries.
type digitReader struct {
	r     *bitio.Reader
	width uint8
}

func newDigitReader(r io.Reader, width int) *digitReader {
	return &digitReader{
		r:     bitio.NewReader(r),
		width: uint8(width),
	}
}

func (d *digitReader) next() (Digit, error) {
	u, err := d.r.ReadBits(d.width)
	switch err {
	case nil:
		return Digit(u), nil
	case io.EOF, io.ErrUnexpectedEOF:
		return 0, ErrEndOfStream
	default:
		return 0, errors.WithStack(err)
	}
}
