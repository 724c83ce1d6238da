package rle

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name  string
		in    []byte
		width int
		n     int
		want  []byte
	}{
		{
			name:  "repeat",
			in:    []byte{0x37},
			width: 4,
			n:     3,
			want:  []byte{7, 7, 7},
		},
		{
			name:  "run",
			in:    []byte{0x12, 0x59},
			width: 4,
			n:     2,
			want:  []byte{5, 9},
		},
		{
			name:  "multiple repeat",
			in:    []byte{0x22, 0x34, 0x56},
			width: 4,
			n:     8,
			want:  []byte{4, 4, 4, 6, 6, 6, 6, 6},
		},
		{
			// A group count of zero never runs out, so the second selector
			// is another repeat rather than a run length
			name:  "multiple repeat of zero groups",
			in:    []byte{0x20, 0x00, 0x00, 0x03, 0x13, 0x20},
			width: 4,
			n:     6,
			want:  []byte{1, 1, 1, 2, 2, 2},
		},
		{
			name:  "repeat then run",
			in:    []byte{0x41, 0x31, 0x23},
			width: 4,
			n:     7,
			want:  []byte{1, 1, 1, 1, 1, 2, 3},
		},
		{
			// 3 x 1, empty run, 3 x 2
			name:  "empty run",
			in:    []byte{0x31, 0x00, 0x00, 0x00, 0x32},
			width: 4,
			n:     6,
			want:  []byte{1, 1, 1, 2, 2, 2},
		},
		{
			name:  "repeat clamped",
			in:    []byte{0x97},
			width: 4,
			n:     4,
			want:  []byte{7, 7, 7, 7},
		},
		{
			name:  "nothing requested",
			in:    nil,
			width: 4,
			n:     0,
			want:  []byte{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Decode(bytes.NewReader(tt.in), tt.width, Identity(tt.width), tt.n)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDecodeFiveBit(t *testing.T) {
	// 3 x 31, run of 2
	in := pack(t, 5, 3, 31, 2, 17, 30)

	out, err := Decode(bytes.NewReader(in), 5, Identity(5), 5)
	require.NoError(t, err)
	assert.Equal(t, []byte{31, 31, 31, 17, 30}, out)
}

func TestDecodeStopsAtRecordBoundary(t *testing.T) {
	r := bytes.NewReader([]byte{0x22, 0x34, 0x56, 0xff})

	_, err := Decode(r, 4, Identity(4), 8)
	require.NoError(t, err)
	assert.Equal(t, 1, r.Len(), "run record should not be read")
}

func TestDecodeTruncated(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		n    int
		want []byte
	}{
		{
			name: "repeat",
			in:   []byte{},
			n:    3,
			want: []byte{},
		},
		{
			name: "run",
			in:   []byte{0x12},
			n:    2,
			want: []byte{},
		},
		{
			name: "multiple repeat",
			in:   []byte{0x22, 0x34},
			n:    8,
			want: []byte{4, 4, 4},
		},
		{
			name: "run cut short",
			in:   []byte{0x31, 0x45, 0x67},
			n:    7,
			want: []byte{1, 1, 1, 5, 6, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Decode(bytes.NewReader(tt.in), 4, Identity(4), tt.n)
			assert.ErrorIs(t, err, ErrTruncatedStream)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDecodeLookup(t *testing.T) {
	in := []byte{0x22, 0x34, 0x56, 0x31, 0x4a, 0xbc, 0xd0}

	table := make([]byte, 16)
	for i := range table {
		table[i] = byte(0x80 + 3*i)
	}

	raw, err := Decode(bytes.NewReader(in), 4, Identity(4), 12)
	require.NoError(t, err)

	looked, err := Decode(bytes.NewReader(in), 4, table, 12)
	require.NoError(t, err)

	require.Len(t, looked, len(raw))
	for i, d := range raw {
		assert.Equal(t, table[d], looked[i])
	}
}

func TestDecodeInvalid(t *testing.T) {
	_, err := Decode(bytes.NewReader(nil), 6, Identity(6), 1)
	assert.ErrorIs(t, err, ErrDigitWidth)

	_, err = Decode(bytes.NewReader(nil), 5, Identity(4), 1)
	assert.ErrorIs(t, err, ErrTableSize)

	_, err = Decode(bytes.NewReader(nil), 4, Identity(4), -1)
	assert.Error(t, err)
}

func TestDecodeRaw(t *testing.T) {
	table := Identity(4)
	table[0xf] = 0xff

	out, err := DecodeRaw(bytes.NewReader([]byte{0x12, 0x3f}), 4, table, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 0xff}, out)

	out, err = DecodeRaw(bytes.NewReader([]byte{0x12}), 4, table, 3)
	assert.ErrorIs(t, err, ErrTruncatedStream)
	assert.Equal(t, []byte{1, 2}, out)
}

func TestDecodeConcurrent(t *testing.T) {
	table := Identity(4)
	in := []byte{0x22, 0x34, 0x56}
	want := []byte{4, 4, 4, 6, 6, 6, 6, 6}

	var wg sync.WaitGroup
	results := make([][]byte, 16)
	errs := make([]error, len(results))
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Decode(bytes.NewReader(in), 4, table, len(want))
		}(i)
	}
	wg.Wait()

	for i := range results {
		require.NoError(t, errs[i])
		assert.Equal(t, want, results[i])
	}
}
