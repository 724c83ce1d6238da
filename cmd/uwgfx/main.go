package main

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/uwgfx"
	"github.com/bodgit/uwgfx/palette"
	"github.com/bodgit/uwgfx/rle"
	"github.com/urfave/cli/v2"
)

const defaultDB = "uwgfx.db"

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(io.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func decodeStream(c *cli.Context) error {
	f, err := os.Open(c.Args().First())
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Seek(c.Int64("offset"), io.SeekStart); err != nil {
		return err
	}

	width, height, bits := c.Int("width"), c.Int("height"), c.Int("bits")

	b, err := rle.Decode(f, bits, rle.Identity(bits), width*height)
	if err != nil {
		return err
	}

	m := image.NewPaletted(image.Rect(0, 0, width, height), palette.Grey())
	for i, v := range b {
		// Spread the digits across the grey ramp so they're visible
		m.Pix[i] = v << uint(8-bits)
	}

	out, err := os.Create(c.String("out"))
	if err != nil {
		return err
	}
	defer out.Close()

	if err := png.Encode(out, m); err != nil {
		return err
	}
	return out.Close()
}

func main() {
	app := cli.NewApp()

	app.Name = "uwgfx"
	app.Usage = "Ultima Underworld graphics extraction utility"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"UWGFX_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to catalog database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "extract",
			Usage:       "Extract all graphics to PNG files",
			Description: "Decodes every .gr, .tr, critter page and font file under DATADIR, writing the images beneath OUTDIR and recording them in the catalog.",
			ArgsUsage:   "DATADIR OUTDIR",
			Flags: []cli.Flag{
				&cli.BoolFlag{
					Name:  "no-catalog",
					Usage: "do not record images in the catalog",
				},
				&cli.StringFlag{
					Name:    "palettes",
					EnvVars: []string{"UWGFX_PALETTES"},
					Usage:   "directory holding PALS.DAT and ALLPALS.DAT (default DATADIR)",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 2 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				var catalog *uwgfx.Catalog
				if !c.Bool("no-catalog") {
					if catalog, err = uwgfx.NewCatalog(c.String("db")); err != nil {
						return cli.NewExitError(err, 1)
					}
					defer catalog.Close()
				}

				e := uwgfx.New(catalog, logger)

				dir := c.String("palettes")
				if dir == "" {
					dir = c.Args().First()
				}
				if err := e.LoadPalettes(dir); err != nil {
					logger.Printf("Using a grey palette: %v\n", err)
				}

				if err := e.Extract(c.Args().Get(0), c.Args().Get(1)); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "decode",
			Usage:       "Decode a single run-length encoded stream",
			Description: "Decodes the stream starting at --offset in FILE without a palette, writing the raw digits as a grey PNG.",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.Int64Flag{
					Name:  "offset",
					Usage: "byte offset of the compressed data",
				},
				&cli.IntFlag{
					Name:  "bits",
					Value: 4,
					Usage: "digit width, 4 or 5",
				},
				&cli.IntFlag{
					Name:     "width",
					Required: true,
					Usage:    "image width",
				},
				&cli.IntFlag{
					Name:     "height",
					Required: true,
					Usage:    "image height",
				},
				&cli.StringFlag{
					Name:  "out",
					Value: "out.png",
					Usage: "PNG file to write",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				if err := decodeStream(c); err != nil {
					return cli.NewExitError(err, 1)
				}

				return nil
			},
		},
		{
			Name:        "list",
			Usage:       "List catalog contents",
			Description: "Lists the images recorded for SOURCE, or every source when none is given.",
			ArgsUsage:   "[SOURCE]",
			Action: func(c *cli.Context) error {
				catalog, err := uwgfx.NewCatalog(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				defer catalog.Close()

				if c.NArg() < 1 {
					sources, err := catalog.Sources()
					if err != nil {
						return cli.NewExitError(err, 1)
					}
					for _, s := range sources {
						fmt.Println(s)
					}
					return nil
				}

				images, err := catalog.Images(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, 1)
				}
				for _, m := range images {
					aux := "-"
					if m.Aux.Valid {
						aux = fmt.Sprint(m.Aux.Int64)
					}
					fmt.Printf("%3d %3dx%-3d aux %-2s %s\n", m.Index, m.Width, m.Height, aux, m.SHA1)
				}

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
