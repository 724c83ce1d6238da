package rle

import (
	"bytes"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readDigits(t *testing.T, b []byte, width int) []Digit {
	t.Helper()

	d := newDigitReader(bytes.NewReader(b), width)

	var digits []Digit
	for {
		digit, err := d.next()
		if err != nil {
			require.ErrorIs(t, err, ErrEndOfStream)
			return digits
		}
		digits = append(digits, digit)
	}
}

// sliceBits is the reference: every byte written out as 8 binary digits and
// the whole string cut into width sized groups.
func sliceBits(b []byte, width int) []Digit {
	var s strings.Builder
	for _, c := range b {
		s.WriteString(strconv.FormatUint(uint64(c)|0x100, 2)[1:])
	}

	var digits []Digit
	bits := s.String()
	for i := 0; i+width <= len(bits); i += width {
		v, _ := strconv.ParseUint(bits[i:i+width], 2, 8)
		digits = append(digits, Digit(v))
	}
	return digits
}

func TestDigitReader(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		width int
		want  []Digit
	}{
		{
			name:  "nibbles",
			in:    []byte{0x12, 0x59},
			width: 4,
			want:  []Digit{1, 2, 5, 9},
		},
		{
			name:  "five bit across bytes",
			in:    []byte{0x1f, 0xff},
			width: 5,
			want:  []Digit{0x03, 0x1f, 0x1f},
		},
		{
			name:  "five bit from five bytes",
			in:    []byte{0x08, 0x86, 0x42, 0x98, 0xe8},
			width: 5,
			want:  []Digit{1, 2, 3, 4, 5, 6, 7, 8},
		},
		{
			name:  "empty",
			in:    nil,
			width: 4,
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, readDigits(t, tt.in, tt.width))
		})
	}
}

func TestDigitReaderMatchesBitSlicing(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))

	for _, width := range []int{4, 5} {
		for n := 0; n < 64; n++ {
			b := make([]byte, n)
			rnd.Read(b)

			assert.Equal(t, sliceBits(b, width), readDigits(t, b, width), "width %d, %x", width, b)
		}
	}
}
