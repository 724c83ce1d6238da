package rle

import (
	"bytes"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestInterpreter(t *testing.T, n int, digits ...Digit) *interpreter {
	t.Helper()
	d := newDigitReader(bytes.NewReader(pack(t, 4, digits...)), 4)
	return newInterpreter(d, newSink(n, Identity(4)))
}

func TestStep(t *testing.T) {
	tests := []struct {
		name   string
		in     state
		digits []Digit
		n      int
		want   state
		out    []byte
	}{
		{
			name:   "selector for run",
			in:     state{phase: selectRepeatOrRun},
			digits: []Digit{1},
			n:      4,
			want:   state{phase: selectRunLength},
			out:    []byte{},
		},
		{
			name:   "selector for multiple repeat",
			in:     state{phase: selectRepeatOrRun},
			digits: []Digit{2, 3},
			n:      4,
			want:   state{phase: selectRepeatOrRun, pending: 2},
			out:    []byte{},
		},
		{
			name:   "multiple repeat of zero groups",
			in:     state{phase: selectRepeatOrRun, pending: 5},
			digits: []Digit{2, 0, 0, 0, 0, 0, 0},
			n:      4,
			want:   state{phase: selectRepeatOrRun, pending: math.MaxUint32},
			out:    []byte{},
		},
		{
			name:   "repeat length and color",
			in:     state{phase: selectRepeatOrRun, pending: 1},
			digits: []Digit{0, 1, 0, 9},
			n:      4,
			want:   state{phase: repeatBody, pending: 1, remaining: 16, color: 9},
			out:    []byte{},
		},
		{
			name: "repeat then run",
			in:   state{phase: repeatBody, remaining: 3, color: 6},
			n:    4,
			want: state{phase: selectRunLength},
			out:  []byte{6, 6, 6},
		},
		{
			name: "repeat within group",
			in:   state{phase: repeatBody, pending: 2, remaining: 1, color: 6},
			n:    4,
			want: state{phase: selectRepeatOrRun, pending: 1},
			out:  []byte{6},
		},
		{
			name: "repeat clamped",
			in:   state{phase: repeatBody, remaining: 200, color: 6},
			n:    2,
			want: state{phase: selectRunLength},
			out:  []byte{6, 6},
		},
		{
			name:   "run length",
			in:     state{phase: selectRunLength},
			digits: []Digit{4},
			n:      4,
			want:   state{phase: runBody, remaining: 4},
			out:    []byte{},
		},
		{
			name:   "run",
			in:     state{phase: runBody, remaining: 3},
			digits: []Digit{1, 2, 3},
			n:      4,
			want:   state{phase: selectRepeatOrRun},
			out:    []byte{1, 2, 3},
		},
		{
			name: "empty run",
			in:   state{phase: runBody},
			n:    4,
			want: state{phase: selectRepeatOrRun},
			out:  []byte{},
		},
		{
			name:   "run clamped",
			in:     state{phase: runBody, remaining: 3},
			digits: []Digit{1, 2},
			n:      2,
			want:   state{phase: selectRepeatOrRun},
			out:    []byte{1, 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newTestInterpreter(t, tt.n, tt.digits...)

			s, err := in.step(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, s)
			assert.Equal(t, tt.out, in.out.bytes())
		})
	}
}

func TestStepEndOfStream(t *testing.T) {
	for _, s := range []state{
		{phase: selectRepeatOrRun},
		{phase: selectRunLength},
		{phase: runBody, remaining: 1},
	} {
		in := newInterpreter(newDigitReader(bytes.NewReader(nil), 4), newSink(1, Identity(4)))

		_, err := in.step(s)
		assert.ErrorIs(t, err, ErrEndOfStream, s.phase.String())
	}
}

func TestSinkAppendWhenFull(t *testing.T) {
	s := newSink(1, Identity(4))
	s.append(3)

	assert.True(t, s.full())
	assert.Equal(t, 0, s.remaining())
	assert.Panics(t, func() { s.append(4) })
}
