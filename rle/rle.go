/*
Package rle implements the nibble-packed run-length codec used by the Ultima
Underworld image lists and critter animation pages.

Compressed pixel data is a continuous bit string sliced into fixed width
digits of 4 or 5 bits, most significant bit first. Digits are grouped into
variable length counts and records:

	repeat record    count (not 1 or 2), one color digit
	multiple repeat  count of 2, count of repeat records that follow
	run record       count, then that many color digits

A repeat is always followed by a run unless it is part of a multiple repeat
group; a count of 1 in place of a repeat skips straight to the run. There is
no end marker, decoding stops once the expected number of pixels has been
produced. Each color digit is translated through a lookup table of palette
indices before it is written out.
*/
package rle

import (
	"errors"
	"io"

	perrors "github.com/pkg/errors"
)

var (
	// ErrEndOfStream is returned when another digit is needed but the
	// underlying reader has no more bytes.
	ErrEndOfStream = errors.New("rle: end of stream")
	// ErrTruncatedStream is returned by Decode when the compressed data
	// ran out before the requested number of symbols was produced.
	ErrTruncatedStream = errors.New("rle: truncated stream")
	// ErrDigitWidth is returned for a digit width other than 4 or 5.
	ErrDigitWidth = errors.New("rle: unsupported digit width")
	// ErrTableSize is returned when the lookup table cannot be indexed by
	// every possible digit.
	ErrTableSize = errors.New("rle: lookup table too small")
)

// Digit is a single 4 or 5 bit value read from the bitstream.
type Digit uint8

// Count is a decoded variable length count.
type Count uint32

// Identity returns a lookup table mapping every digit of the given width to
// itself.
func Identity(width int) []byte {
	t := make([]byte, 1<<uint(width))
	for i := range t {
		t[i] = byte(i)
	}
	return t
}

func validate(width int, table []byte, n int) error {
	if n < 0 {
		return perrors.Errorf("rle: invalid output length %d", n)
	}
	if width != 4 && width != 5 {
		return perrors.Wrapf(ErrDigitWidth, "width %d", width)
	}
	if len(table) < 1<<uint(width) {
		return perrors.Wrapf(ErrTableSize, "%d entries for %d bit digits", len(table), width)
	}
	return nil
}

func truncated(s *sink) error {
	return perrors.Wrapf(ErrTruncatedStream, "%d of %d symbols decoded", s.written(), cap(s.buf))
}

// Decode reads run-length encoded digits of the given width from r and
// returns n bytes, each the table entry for the decoded digit. If the
// stream ends early the symbols decoded so far are returned along with an
// error matching ErrTruncatedStream.
//
// If r does not implement io.ByteReader it is buffered and may be read
// beyond the end of the compressed data.
func Decode(r io.Reader, width int, table []byte, n int) ([]byte, error) {
	if err := validate(width, table, n); err != nil {
		return nil, err
	}

	out := newSink(n, table)
	in := newInterpreter(newDigitReader(r, width), out)

	if err := in.run(); err != nil {
		if errors.Is(err, ErrEndOfStream) {
			return out.bytes(), truncated(out)
		}
		return out.bytes(), err
	}

	return out.bytes(), nil
}

// DecodeRaw reads n uncompressed digits of the given width from r and
// returns them translated through table.
func DecodeRaw(r io.Reader, width int, table []byte, n int) ([]byte, error) {
	if err := validate(width, table, n); err != nil {
		return nil, err
	}

	out := newSink(n, table)
	dr := newDigitReader(r, width)

	for !out.full() {
		d, err := dr.next()
		if err != nil {
			if errors.Is(err, ErrEndOfStream) {
				return out.bytes(), truncated(out)
			}
			return out.bytes(), err
		}
		out.append(d)
	}

	return out.bytes(), nil
}
