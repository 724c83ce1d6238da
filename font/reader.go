package font

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/icza/bitio"
	perrors "github.com/pkg/errors"
)

var (
	// ErrNotEnough is returned when the file or a glyph bitmap ends early
	ErrNotEnough = errors.New("font: not enough font data")
	// ErrBadHeader is returned when the header describes empty glyphs
	ErrBadHeader = errors.New("font: bad header")
	// ErrBadIndex is returned when asking for a glyph past the end of the
	// file
	ErrBadIndex = errors.New("font: no such glyph")
)

// Header is the font file header.
type Header struct {
	CharSize   int
	SpaceWidth int
	Height     int
	RowWidth   int
	MaxWidth   int
}

// Reader provides access to the glyphs in a font file.
type Reader struct {
	r      io.ReaderAt
	header Header
	n      int
}

// NewReader reads the header from r, which holds size bytes. Trailing bytes
// too short to hold a whole glyph are ignored.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	var tmp [headerSize / 2]uint16
	if err := binary.Read(io.NewSectionReader(r, 0, size), binary.LittleEndian, tmp[:]); err != nil {
		return nil, ErrNotEnough
	}

	h := Header{
		CharSize:   int(tmp[1]),
		SpaceWidth: int(tmp[2]),
		Height:     int(tmp[3]),
		RowWidth:   int(tmp[4]),
		MaxWidth:   int(tmp[5]),
	}
	if h.CharSize == 0 || h.Height == 0 || h.MaxWidth == 0 {
		return nil, perrors.Wrapf(ErrBadHeader, "%d bytes, %dx%d", h.CharSize, h.MaxWidth, h.Height)
	}

	return &Reader{
		r:      r,
		header: h,
		n:      int((size - headerSize) / int64(h.CharSize+1)),
	}, nil
}

// Len returns the number of glyphs.
func (f *Reader) Len() int {
	return f.n
}

// Header returns the font header.
func (f *Reader) Header() Header {
	return f.header
}

// Pixels returns the width of glyph i and its MaxWidth x Height palette
// indices, using Ink, Paper and Outside.
func (f *Reader) Pixels(i int) (int, []byte, error) {
	if i < 0 || i >= f.n {
		return 0, nil, perrors.Wrapf(ErrBadIndex, "%d of %d", i, f.n)
	}

	h := f.header
	b := make([]byte, h.CharSize+1)
	if _, err := io.ReadFull(io.NewSectionReader(f.r, headerSize+int64(i)*int64(len(b)), int64(len(b))), b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, nil, perrors.Wrapf(ErrNotEnough, "glyph %d", i)
		}
		return 0, nil, err
	}
	width := int(b[h.CharSize])

	br := bitio.NewReader(bytes.NewReader(b[:h.CharSize]))
	pixels := make([]byte, 0, h.MaxWidth*h.Height)
	for y := 0; y < h.Height; y++ {
		for x := 0; x < h.MaxWidth; x++ {
			set, err := br.ReadBool()
			if err != nil {
				return 0, nil, perrors.Wrapf(ErrNotEnough, "glyph %d row %d", i, y)
			}
			switch {
			case set:
				pixels = append(pixels, Ink)
			case x < width:
				pixels = append(pixels, Paper)
			default:
				pixels = append(pixels, Outside)
			}
		}
		br.Align()
	}

	return width, pixels, nil
}

// Image decodes glyph i and returns it as an *image.Paletted using pal.
func (f *Reader) Image(i int, pal color.Palette) (*image.Paletted, error) {
	_, b, err := f.Pixels(i)
	if err != nil {
		return nil, err
	}

	m := image.NewPaletted(image.Rect(0, 0, f.header.MaxWidth, f.header.Height), pal)
	copy(m.Pix, b)

	return m, nil
}
