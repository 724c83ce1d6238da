package uwgfx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/bodgit/uwgfx/crit"
	"github.com/bodgit/uwgfx/font"
	"github.com/bodgit/uwgfx/gr"
	"github.com/bodgit/uwgfx/tr"
	perrors "github.com/pkg/errors"
)

var (
	critPage = regexp.MustCompile(`^CR([0-7]{2})PAGE\.N[0-7]{2}$`)
	fontFile = regexp.MustCompile(`^FONT.*\.SYS$`)
)

type asset struct {
	path string
	rel  string
	kind string
}

// decoded is one image taken from an asset.
type decoded struct {
	index  int
	width  int
	height int
	aux    sql.NullInt64
	pixels []byte
}

func classify(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".gr":
		return KindGR
	case ".tr":
		return KindTR
	}
	switch upper := strings.ToUpper(name); {
	case critPage.MatchString(upper):
		return KindCrit
	case fontFile.MatchString(upper):
		return KindFont
	}
	return ""
}

func (e *Extractor) findAssets(ctx context.Context, base string) (<-chan asset, <-chan error, error) {
	out := make(chan asset)
	errc := make(chan error, 1)
	go func() {
		defer close(out)
		defer close(errc)
		errc <- filepath.Walk(base, func(file string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}

			// Ignore any hidden files or directories
			if info.Name()[0] == '.' {
				if info.Mode().IsDir() {
					return filepath.SkipDir
				}
				return nil
			}

			if !info.Mode().IsRegular() {
				return nil
			}

			kind := classify(info.Name())
			if kind == "" {
				return nil
			}

			rel, err := filepath.Rel(base, file)
			if err != nil {
				return err
			}

			select {
			case out <- asset{path: file, rel: rel, kind: kind}:
			case <-ctx.Done():
				return errors.New("walk cancelled")
			}

			return nil
		})
	}()
	return out, errc, nil
}

func (e *Extractor) decodeGR(a asset, f *os.File, size int64) ([]decoded, error) {
	r, err := gr.NewReader(f, size)
	if err != nil {
		return nil, err
	}

	var images []decoded
	for i := 0; i < r.Len(); i++ {
		h, b, err := r.Pixels(i, e.aux)
		if err != nil {
			e.logger.Printf("Skipping \"%s\" image %d: %v\n", a.rel, i, err)
			continue
		}
		d := decoded{index: i, width: h.Width, height: h.Height, pixels: b}
		if h.Type != gr.TypeRaw8 {
			d.aux = sql.NullInt64{Int64: int64(h.Aux), Valid: true}
		}
		images = append(images, d)
	}
	return images, nil
}

func (e *Extractor) decodeTR(a asset, f *os.File, size int64) ([]decoded, error) {
	r, err := tr.NewReader(f, size)
	if err != nil {
		return nil, err
	}

	var images []decoded
	for i := 0; i < r.Len(); i++ {
		b, err := r.Pixels(i)
		if err != nil {
			e.logger.Printf("Skipping \"%s\" texture %d: %v\n", a.rel, i, err)
			continue
		}
		images = append(images, decoded{index: i, width: r.Size(), height: r.Size(), pixels: b})
	}
	return images, nil
}

// critters returns the contents of ASSOC.ANM in dir, reading it at most
// once. A missing or broken file is cached as nil.
func (e *Extractor) critters(dir string) []crit.Critter {
	e.mu.Lock()
	defer e.mu.Unlock()

	if critters, ok := e.assoc[dir]; ok {
		return critters
	}
	e.assoc[dir] = nil

	file, err := findFile(dir, assocFilename)
	if err != nil {
		return nil
	}
	f, err := os.Open(file)
	if err != nil {
		return nil
	}
	defer f.Close()

	critters, err := crit.ReadAssoc(f)
	if err != nil {
		e.logger.Printf("Ignoring \"%s\": %v\n", file, err)
		return nil
	}
	e.assoc[dir] = critters

	return critters
}

// critterAux picks the auxiliary palette for a critter page from the
// variant recorded in ASSOC.ANM, falling back to the first one.
func (e *Extractor) critterAux(a asset, p *crit.Page) int {
	critters := e.critters(filepath.Dir(a.path))

	m := critPage.FindStringSubmatch(strings.ToUpper(filepath.Base(a.path)))
	n, err := strconv.ParseInt(m[1], 8, 0)
	if err != nil || int(n) >= len(critters) {
		return 0
	}

	c := critters[n]
	e.logger.Printf("\"%s\" is critter \"%s\", variant %d\n", a.rel, c.Name, c.Variant)
	if c.Variant < len(p.Aux()) {
		return c.Variant
	}
	return 0
}

func (e *Extractor) decodeCrit(a asset, f *os.File, size int64) ([]decoded, error) {
	p, err := crit.NewPage(f, size)
	if err != nil {
		return nil, err
	}
	if len(p.Aux()) == 0 {
		e.logger.Printf("Skipping \"%s\": no auxiliary palettes\n", a.rel)
		return nil, nil
	}

	aux := e.critterAux(a, p)

	var images []decoded
	for i := 0; i < p.Len(); i++ {
		h, b, err := p.Pixels(i, aux)
		if err != nil {
			e.logger.Printf("Skipping \"%s\" frame %d: %v\n", a.rel, i, err)
			continue
		}
		images = append(images, decoded{
			index:  i,
			width:  h.Width,
			height: h.Height,
			aux:    sql.NullInt64{Int64: int64(aux), Valid: true},
			pixels: b,
		})
	}
	return images, nil
}

func (e *Extractor) decodeFont(a asset, f *os.File, size int64) ([]decoded, error) {
	r, err := font.NewReader(f, size)
	if err != nil {
		return nil, err
	}

	h := r.Header()
	var images []decoded
	for i := 0; i < r.Len(); i++ {
		_, b, err := r.Pixels(i)
		if err != nil {
			e.logger.Printf("Skipping \"%s\" glyph %d: %v\n", a.rel, i, err)
			continue
		}
		images = append(images, decoded{index: i, width: h.MaxWidth, height: h.Height, pixels: b})
	}
	return images, nil
}

func writePNG(file string, d decoded, pal color.Palette) error {
	m := image.NewPaletted(image.Rect(0, 0, d.width, d.height), pal)
	copy(m.Pix, d.pixels)

	f, err := os.Create(file)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := png.Encode(f, m); err != nil {
		return err
	}
	return f.Close()
}

func (e *Extractor) extractAsset(a asset, outDir string) error {
	f, err := os.Open(a.path)
	if err != nil {
		return err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return err
	}

	var images []decoded
	switch a.kind {
	case KindGR:
		images, err = e.decodeGR(a, f, info.Size())
	case KindTR:
		images, err = e.decodeTR(a, f, info.Size())
	case KindCrit:
		images, err = e.decodeCrit(a, f, info.Size())
	case KindFont:
		images, err = e.decodeFont(a, f, info.Size())
	}
	if err != nil {
		// A broken container shouldn't stop the rest of the extraction
		e.logger.Printf("Skipping \"%s\": %v\n", a.rel, err)
		return nil
	}

	dir := filepath.Join(outDir, a.rel)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	for _, d := range images {
		if err := writePNG(filepath.Join(dir, fmt.Sprintf("%03d.png", d.index)), d, e.palettes[0]); err != nil {
			return err
		}

		if e.catalog == nil {
			continue
		}
		if _, err := e.catalog.AddImage(Image{
			Source: filepath.ToSlash(a.rel),
			Kind:   a.kind,
			Index:  d.index,
			Width:  d.width,
			Height: d.height,
			Aux:    d.aux,
		}, d.pixels); err != nil {
			return err
		}
	}

	e.logger.Printf("Extracted %d images from \"%s\"\n", len(images), a.rel)

	return nil
}

func (e *Extractor) assetWorker(ctx context.Context, in <-chan asset, outDir string) (<-chan error, error) {
	errc := make(chan error, 1)
	go func() {
		defer close(errc)
		for a := range in {
			if ctx.Err() != nil {
				return
			}
			if err := e.extractAsset(a, outDir); err != nil {
				errc <- perrors.Wrap(err, a.rel)
				return
			}
		}
	}()
	return errc, nil
}

// waitForPipeline returns the first error from errs. It cancels the
// pipeline on that error but only returns once every stage has finished.
func waitForPipeline(cancel context.CancelFunc, errs ...<-chan error) error {
	var first error
	for err := range mergeErrors(errs...) {
		if err != nil && first == nil {
			first = err
			cancel()
		}
	}
	return first
}

func mergeErrors(cs ...<-chan error) <-chan error {
	var wg sync.WaitGroup
	out := make(chan error, len(cs))
	wg.Add(len(cs))
	for _, c := range cs {
		go func(c <-chan error) {
			for n := range c {
				out <- n
			}
			wg.Done()
		}(c)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}

// Extract decodes every image list, texture file, critter page and font under
// dataDir and writes each image as a PNG beneath outDir, mirroring the
// directory layout with one directory per asset file.
func (e *Extractor) Extract(dataDir, outDir string) error {
	dir, err := filepath.Abs(dataDir)
	if err != nil {
		return err
	}

	ctx, cancelFunc := context.WithCancel(context.Background())
	defer cancelFunc()

	var errcList []<-chan error

	assets, errc, err := e.findAssets(ctx, dir)
	if err != nil {
		return err
	}
	errcList = append(errcList, errc)

	for i := 0; i < runtime.NumCPU(); i++ {
		errc, err := e.assetWorker(ctx, assets, outDir)
		if err != nil {
			return err
		}
		errcList = append(errcList, errc)
	}

	return waitForPipeline(cancelFunc, errcList...)
}
