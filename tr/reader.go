package tr

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"

	perrors "github.com/pkg/errors"
)

var (
	// ErrNotEnough is returned when the file ends early
	ErrNotEnough = errors.New("tr: not enough texture data")
	// ErrBadIndex is returned when asking for a texture past the end of
	// the file
	ErrBadIndex = errors.New("tr: no such texture")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrNotEnough
	}
	return err
}

// Reader provides access to the textures in a .tr file.
type Reader struct {
	r       io.ReaderAt
	size    int64
	xy      int
	offsets []uint32
}

// NewReader reads the table of contents from r, which holds size bytes.
func NewReader(r io.ReaderAt, size int64) (*Reader, error) {
	sr := io.NewSectionReader(r, 0, size)

	var tmp [headerSize]byte
	if err := readFull(sr, tmp[:]); err != nil {
		return nil, err
	}

	tr := &Reader{
		r:       r,
		size:    size,
		xy:      int(tmp[1]),
		offsets: make([]uint32, binary.LittleEndian.Uint16(tmp[2:])),
	}

	if err := binary.Read(sr, binary.LittleEndian, tr.offsets); err != nil {
		return nil, ErrNotEnough
	}

	return tr, nil
}

// Len returns the number of textures.
func (tr *Reader) Len() int {
	return len(tr.offsets)
}

// Size returns the width and height of every texture.
func (tr *Reader) Size() int {
	return tr.xy
}

// Pixels returns the 8-bit palette indices of texture i.
func (tr *Reader) Pixels(i int) ([]byte, error) {
	if i < 0 || i >= len(tr.offsets) {
		return nil, perrors.Wrapf(ErrBadIndex, "%d of %d", i, len(tr.offsets))
	}

	offset := int64(tr.offsets[i])
	if offset > tr.size {
		return nil, perrors.Wrapf(ErrNotEnough, "texture %d at %#x", i, offset)
	}

	b := make([]byte, tr.xy*tr.xy)
	if err := readFull(io.NewSectionReader(tr.r, offset, tr.size-offset), b); err != nil {
		return nil, perrors.Wrapf(err, "texture %d", i)
	}

	return b, nil
}

// Texture decodes texture i and returns it as an *image.Paletted using pal.
func (tr *Reader) Texture(i int, pal color.Palette) (*image.Paletted, error) {
	b, err := tr.Pixels(i)
	if err != nil {
		return nil, err
	}

	m := image.NewPaletted(image.Rect(0, 0, tr.xy, tr.xy), pal)
	copy(m.Pix, b)

	return m, nil
}
