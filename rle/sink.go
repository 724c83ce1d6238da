package rle

// sink collects translated symbols up to a fixed capacity.
type sink struct {
	buf   []byte
	table []byte
}

func newSink(n int, table []byte) *sink {
	return &sink{
		buf:   make([]byte, 0, n),
		table: table,
	}
}

// append writes the table entry for d. The caller must check full first.
func (s *sink) append(d Digit) {
	if s.full() {
		panic("rle: append to full sink")
	}
	s.buf = append(s.buf, s.table[d])
}

func (s *sink) remaining() int {
	return cap(s.buf) - len(s.buf)
}

func (s *sink) full() bool {
	return len(s.buf) == cap(s.buf)
}

func (s *sink) written() int {
	return len(s.buf)
}

func (s *sink) bytes() []byte {
	return s.buf
}
