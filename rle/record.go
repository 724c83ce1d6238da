package rle

type phase int

const (
	selectRepeatOrRun phase = iota
	repeatBody
	selectRunLength
	runBody
)

func (p phase) String() string {
	switch p {
	case selectRepeatOrRun:
		return "select repeat or run"
	case repeatBody:
		return "repeat"
	case selectRunLength:
		return "select run length"
	case runBody:
		return "run"
	}
	return "unknown"
}

// Selector counts read in place of a repeat length.
const (
	selectRun      Count = 1
	selectMultiple Count = 2
)

// state is everything carried from one record step to the next.
type state struct {
	phase phase
	// Repeat records still to come in the current multiple repeat group.
	pending Count
	// Symbols left to emit in repeatBody or runBody.
	remaining Count
	color     Digit
}

type interpreter struct {
	d   *digitReader
	out *sink
}

func newInterpreter(d *digitReader, out *sink) *interpreter {
	return &interpreter{
		d:   d,
		out: out,
	}
}

// run steps through records until the sink is full.
func (in *interpreter) run() error {
	s := state{phase: selectRepeatOrRun}
	for !in.out.full() {
		var err error
		if s, err = in.step(s); err != nil {
			return err
		}
	}
	return nil
}

func (in *interpreter) step(s state) (state, error) {
	switch s.phase {
	case selectRepeatOrRun:
		return in.readSelector(s)
	case repeatBody:
		return in.emitRepeat(s)
	case selectRunLength:
		return in.readRunLength(s)
	case runBody:
		return in.emitRun(s)
	}
	panic("rle: invalid phase " + s.phase.String())
}

func (in *interpreter) readSelector(s state) (state, error) {
	c, err := in.d.decodeCount()
	if err != nil {
		return s, err
	}

	switch c {
	case selectRun:
		s.phase = selectRunLength
		return s, nil
	case selectMultiple:
		m, err := in.d.decodeCount()
		if err != nil {
			return s, err
		}
		// The group count includes the repeat about to be read. A count of
		// zero wraps, leaving every later selector a repeat.
		s.pending = m - 1
		return s, nil
	}

	color, err := in.d.next()
	if err != nil {
		return s, err
	}
	s.phase, s.remaining, s.color = repeatBody, c, color
	return s, nil
}

// emitRepeat emits the repeated color, clamped to the space left in the sink.
func (in *interpreter) emitRepeat(s state) (state, error) {
	for ; s.remaining > 0 && !in.out.full(); s.remaining-- {
		in.out.append(s.color)
	}
	s.remaining = 0

	if s.pending > 0 {
		s.pending--
		s.phase = selectRepeatOrRun
	} else {
		s.phase = selectRunLength
	}
	return s, nil
}

func (in *interpreter) readRunLength(s state) (state, error) {
	l, err := in.d.decodeCount()
	if err != nil {
		return s, err
	}
	s.phase, s.remaining = runBody, l
	return s, nil
}

// emitRun copies literal digits, stopping without reading further once the
// sink is full.
func (in *interpreter) emitRun(s state) (state, error) {
	for ; s.remaining > 0 && !in.out.full(); s.remaining-- {
		d, err := in.d.next()
		if err != nil {
			return s, err
		}
		in.out.append(d)
	}
	s.remaining = 0
	s.phase = selectRepeatOrRun
	return s, nil
}
