/*
Package uwgfx is a library for extracting the graphics from Ultima Underworld
data files.
*/
package uwgfx

import (
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/bodgit/uwgfx/crit"
	"github.com/bodgit/uwgfx/palette"
	"github.com/pkg/errors"
)

const (
	palsFilename    = "PALS.DAT"
	allpalsFilename = "ALLPALS.DAT"
	assocFilename   = "ASSOC.ANM"
)

// Extractor decodes every supported asset under a data directory.
type Extractor struct {
	catalog *Catalog
	logger  *log.Logger

	palettes []color.Palette
	aux      palette.Aux

	mu    sync.Mutex
	assoc map[string][]crit.Critter
}

// New returns an Extractor that records images in catalog, which may be
// nil, and logs progress to logger.
func New(catalog *Catalog, logger *log.Logger) *Extractor {
	return &Extractor{
		catalog:  catalog,
		logger:   logger,
		palettes: []color.Palette{palette.Grey()},
		assoc:    make(map[string][]crit.Critter),
	}
}

// findFile looks for name in dir ignoring case, the original games shipped
// with upper case filenames.
func findFile(dir, name string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(e.Name(), name) {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return "", os.ErrNotExist
}

// LoadPalettes reads PALS.DAT and ALLPALS.DAT from dir. Without them images
// are written with a grey ramp and 4-bit images cannot be decoded.
func (e *Extractor) LoadPalettes(dir string) error {
	file, err := findFile(dir, palsFilename)
	if err != nil {
		return errors.Wrapf(err, "finding %s", palsFilename)
	}
	f, err := os.Open(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if e.palettes, err = palette.Read(f); err != nil {
		return errors.Wrap(err, file)
	}

	file, err = findFile(dir, allpalsFilename)
	if err != nil {
		return errors.Wrapf(err, "finding %s", allpalsFilename)
	}
	a, err := os.Open(file)
	if err != nil {
		return err
	}
	defer a.Close()

	if e.aux, err = palette.ReadAux(a); err != nil {
		return errors.Wrap(err, file)
	}

	e.logger.Printf("Loaded %d palettes and %d auxiliary palettes from %s\n", len(e.palettes), len(e.aux), dir)

	return nil
}
