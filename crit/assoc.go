package crit

import (
	"bytes"
	"io"
)

// Critter is an entry in ASSOC.ANM.
type Critter struct {
	Name      string
	Animation int
	Variant   int
}

// ReadAssoc reads the critter table from an ASSOC.ANM file. Unused slots
// have an empty name.
func ReadAssoc(r io.Reader) ([]Critter, error) {
	var tmp [assocOffset + maxCritters*2]byte
	rd := &reader{r: r}
	if rd.read(tmp[:]); rd.err != nil {
		return nil, rd.err
	}

	critters := make([]Critter, maxCritters)
	for i := range critters {
		name := tmp[i*nameSize : (i+1)*nameSize]
		if n := bytes.IndexByte(name, 0); n >= 0 {
			name = name[:n]
		}
		critters[i] = Critter{
			Name:      string(name),
			Animation: int(tmp[assocOffset+i*2]),
			Variant:   int(tmp[assocOffset+i*2+1]),
		}
	}

	return critters, nil
}
