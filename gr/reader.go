package gr

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"

	"github.com/bodgit/uwgfx/palette"
	"github.com/bodgit/uwgfx/rle"
	perrors "github.com/pkg/errors"
)

var (
	// ErrNotEnough is returned when the file ends inside a header or
	// uncompressed pixel data
	ErrNotEnough = errors.New("gr: not enough image data")
	// ErrBadOffset is returned when an image offset lies outside the file
	ErrBadOffset = errors.New("gr: image offset out of range")
	// ErrBadAux is returned when an image uses a nonexistent auxiliary
	// palette
	ErrBadAux = errors.New("gr: invalid auxiliary palette")
	// ErrUnknownType is returned for an unsupported image type
	ErrUnknownType = errors.New("gr: unknown image type")
	// ErrBadIndex is returned when asking for an image past the end of
	// the list
	ErrBadIndex = errors.New("gr: no such image")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrNotEnough
	}
	return err
}

// Header describes a single image without decoding it.
type Header struct {
	Type   byte
	Width  int
	Height int
	Aux    int
	Length int

	data int64
}

// Reader provides access to the images in a .gr file.
type Reader struct {
	r       io.ReaderAt
	size    int64
	format  byte
	offsets []uint32
}

// NewReader reads the table of contents from r, which holds size bytes.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	sr := io.NewSectionReader(r, 0, size)

	var tmp [3]byte
	if err := readFull(sr, tmp[:]); err != nil {
		return nil, err
	}

	gr := &Reader{
		r:       r,
		size:    size,
		format:  tmp[0],
		offsets: make([]uint32, binary.LittleEndian.Uint16(tmp[1:])),
	}

	if err := binary.Read(sr, binary.LittleEndian, gr.offsets); err != nil {
		return nil, ErrNotEnough
	}

	return gr, nil
}

// Len returns the number of images in the file.
func (gr *Reader) Len() int {
	return len(gr.offsets)
}

// Header returns the header of image i.
func (gr *Reader) Header(i int) (Header, error) {
	if i < 0 || i >= len(gr.offsets) {
		return Header{}, perrors.Wrapf(ErrBadIndex, "%d of %d", i, len(gr.offsets))
	}

	offset := int64(gr.offsets[i])
	if offset >= gr.size {
		return Header{}, perrors.Wrapf(ErrBadOffset, "image %d at %#x", i, offset)
	}

	sr := io.NewSectionReader(gr.r, offset, gr.size-offset)

	var tmp [4]byte
	if err := readFull(sr, tmp[:3]); err != nil {
		return Header{}, err
	}

	h := Header{
		Type:   tmp[0],
		Width:  int(tmp[1]),
		Height: int(tmp[2]),
	}

	n := 2
	switch h.Type {
	case TypeRaw8:
	case TypeRLE4, TypeRaw4:
		n++
	default:
		return Header{}, perrors.Wrapf(ErrUnknownType, "image %d has type %#02x", i, h.Type)
	}

	if err := readFull(sr, tmp[:n]); err != nil {
		return Header{}, err
	}
	if n == 3 {
		h.Aux = int(tmp[0])
		if h.Aux > maxAux {
			return Header{}, perrors.Wrapf(ErrBadAux, "image %d uses %#02x", i, h.Aux)
		}
	}
	h.Length = int(binary.LittleEndian.Uint16(tmp[n-2:]))
	h.data = offset + 3 + int64(n)

	return h, nil
}

// Pixels decodes image i into raw 8-bit palette indices, row by row.
func (gr *Reader) Pixels(i int, aux palette.Aux) (Header, []byte, error) {
	h, err := gr.Header(i)
	if err != nil {
		return h, nil, err
	}

	sr := io.NewSectionReader(gr.r, h.data, gr.size-h.data)
	n := h.Width * h.Height

	var b []byte
	switch h.Type {
	case TypeRaw8:
		b = make([]byte, n)
		err = readFull(sr, b)
	case TypeRLE4, TypeRaw4:
		var table []byte
		if table, err = aux.Table(h.Aux); err != nil {
			return h, nil, err
		}
		if h.Type == TypeRLE4 {
			b, err = rle.Decode(sr, digitWidth, table, n)
		} else {
			b, err = rle.DecodeRaw(sr, digitWidth, table, n)
		}
	}
	if err != nil {
		return h, nil, perrors.Wrapf(err, "gr: image %d", i)
	}

	return h, b, nil
}

// Image decodes image i and returns it as an *image.Paletted using pal.
func (gr *Reader) Image(i int, aux palette.Aux, pal color.Palette) (*image.Paletted, error) {
	h, b, err := gr.Pixels(i, aux)
	if err != nil {
		return nil, err
	}

	m := image.NewPaletted(image.Rect(0, 0, h.Width, h.Height), pal)
	copy(m.Pix, b)

	return m, nil
}
