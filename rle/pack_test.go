package rle

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"
	"github.com/stretchr/testify/require"
)

// pack writes digits MSB first, zero padding the final byte.
func pack(t *testing.T, width int, digits ...Digit) []byte {
	t.Helper()

	b := new(bytes.Buffer)
	w := bitio.NewWriter(b)
	for _, d := range digits {
		require.NoError(t, w.WriteBits(uint64(d), uint8(width)))
	}
	require.NoError(t, w.Close())

	return b.Bytes()
}
