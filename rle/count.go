package rle

// Counts use an escalating digit group code:
//
//	d0                    d0 != 0
//	0 d1 d2               d1<<4 | d2 != 0
//	0 0 0 d3 d4 d5        d3<<8 | d4<<4 | d5
//
// The groups are always combined 4 bits apart, even for 5 bit digits, so a
// non-terminal digit above 15 overlaps its neighbour. Existing assets depend
// on this.
const countShift = 4

// decodeCount reads one count from d.
func (d *digitReader) decodeCount() (Count, error) {
	d0, err := d.next()
	if err != nil {
		return 0, err
	}
	if d0 != 0 {
		return Count(d0), nil
	}

	v, err := d.group(2)
	if err != nil {
		return 0, err
	}
	if v != 0 {
		return v, nil
	}

	return d.group(3)
}

// group reads n digits and combines them countShift bits apart.
func (d *digitReader) group(n int) (Count, error) {
	var v Count
	for i := 0; i < n; i++ {
		digit, err := d.next()
		if err != nil {
			return 0, err
		}
		v = v<<countShift | Count(digit)
	}
	return v, nil
}
