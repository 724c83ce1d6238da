package crit

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
	// ErrNotEnough is returned when a page ends inside its directory or a
	// frame header
	ErrNotEnough = errors.New("crit: not enough page data")
	// ErrBadOffset is returned when a frame offset lies outside the page
	ErrBadOffset = errors.New("crit: frame offset out of range")
	// ErrUnknownType is returned for an unsupported frame type
	ErrUnknownType = errors.New("crit: unknown frame type")
	// ErrBadIndex is returned when asking for a frame past the end of the
	// page
	ErrBadIndex = errors.New("crit: no such frame")
)

type reader struct {
	r   io.Reader
	err error
}

func (r *reader) read(b []byte) {
	if r.err != nil {
		return
	}
	if _, err := io.ReadFull(r.r, b); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			err = ErrNotEnough
		}
		r.err = err
	}
}

func (r *reader) readByte() int {
	var b [1]byte
	r.read(b[:])
	return int(b[0])
}

// Frame describes a single frame without decoding it.
type Frame struct {
	Width  int
	Height int
	HotX   int
	HotY   int
	Type   byte
	Length int

	data int64
}

// Page is a single critter page file.
type Page struct {
	r    io.ReaderAt
	size int64

	// SegmentBase is the number of the first animation segment
	SegmentBase int
	// Segments maps segment numbers to animation segment indices
	Segments []byte
	// Animations holds the frame numbers of each animation segment
	Animations [][segmentFrames]byte

	aux     palette.Aux
	offsets []uint16
}

// NewPage reads the directory of a page from r, which holds size bytes.
func NewPage(r io.ReaderAt, size int64) (*Page, error) {
	rd := &reader{r: io.NewSectionReader(r, 0, size)}
	p := &Page{
		r:    r,
		size: size,
	}

	p.SegmentBase = rd.readByte()
	p.Segments = make([]byte, rd.readByte())
	rd.read(p.Segments)

	p.Animations = make([][segmentFrames]byte, rd.readByte())
	for i := range p.Animations {
		rd.read(p.Animations[i][:])
	}

	p.aux = make(palette.Aux, rd.readByte())
	for i := range p.aux {
		p.aux[i] = make([]byte, auxSize)
		rd.read(p.aux[i])
	}

	p.offsets = make([]uint16, rd.readByte())
	_ = rd.readByte()
	if rd.err == nil {
		if err := binary.Read(rd.r, binary.LittleEndian, p.offsets); err != nil {
			rd.err = ErrNotEnough
		}
	}

	if rd.err != nil {
		return nil, rd.err
	}

	return p, nil
}

// Len returns the number of frames on the page.
func (p *Page) Len() int {
	return len(p.offsets)
}

// Aux returns the auxiliary palettes of the page.
func (p *Page) Aux() palette.Aux {
	return p.aux
}

// Frame returns the header of frame i.
func (p *Page) Frame(i int) (Frame, error) {
	if i < 0 || i >= len(p.offsets) {
		return Frame{}, perrors.Wrapf(ErrBadIndex, "%d of %d", i, len(p.offsets))
	}

	offset := int64(p.offsets[i])
	if offset >= p.size {
		return Frame{}, perrors.Wrapf(ErrBadOffset, "frame %d at %#x", i, offset)
	}

	var tmp [frameHeader]byte
	rd := &reader{r: io.NewSectionReader(p.r, offset, p.size-offset)}
	if rd.read(tmp[:]); rd.err != nil {
		return Frame{}, rd.err
	}

	f := Frame{
		Width:  int(tmp[0]),
		Height: int(tmp[1]),
		HotX:   int(tmp[2]),
		HotY:   int(tmp[3]),
		Type:   tmp[4],
		Length: int(binary.LittleEndian.Uint16(tmp[5:])),
		data:   offset + frameHeader,
	}

	switch f.Type {
	case TypeRLE5, TypeRLE4:
	default:
		return Frame{}, perrors.Wrapf(ErrUnknownType, "frame %d has type %#02x", i, f.Type)
	}

	return f, nil
}

func (f Frame) width() int {
	if f.Type == TypeRLE5 {
		return 5
	}
	return 4
}

// Pixels decodes frame i into 8-bit palette indices through auxiliary
// palette aux.
func (p *Page) Pixels(i, aux int) (Frame, []byte, error) {
	f, err := p.Frame(i)
	if err != nil {
		return f, nil, err
	}

	table, err := p.aux.Table(aux)
	if err != nil {
		return f, nil, err
	}

	sr := io.NewSectionReader(p.r, f.data, p.size-f.data)
	b, err := rle.Decode(sr, f.width(), table, f.Width*f.Height)
	if err != nil {
		return f, nil, perrors.Wrapf(err, "crit: frame %d", i)
	}

	return f, b, nil
}

// Image decodes frame i and returns it as an *image.Paletted using pal.
func (p *Page) Image(i, aux int, pal color.Palette) (*image.Paletted, error) {
	f, b, err := p.Pixels(i, aux)
	if err != nil {
		return nil, err
	}

	m := image.NewPaletted(image.Rect(0, 0, f.Width, f.Height), pal)
	copy(m.Pix, b)

	return m, nil
}
