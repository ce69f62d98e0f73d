package main

import (
	"context"
	"errors"
	"fmt"
	"io/ioutil"
	"log"
	"os"
	"path/filepath"

	"github.com/bodgit/himawari"
	"github.com/bodgit/himawari/calibration"
	"github.com/bodgit/himawari/metadata"
	"github.com/urfave/cli/v2"
)

const defaultDB = "himawari.db"

// Exit codes
const (
	exitFailure            = 1
	exitInvalidInputFormat = 2
	exitUnexpectedDataSize = 3
)

func init() {
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}
}

func exitCode(err error) int {
	switch {
	case errors.Is(err, himawari.ErrInvalidInputFormat):
		return exitInvalidInputFormat
	case errors.Is(err, himawari.ErrUnexpectedDataSize):
		return exitUnexpectedDataSize
	default:
		return exitFailure
	}
}

func newLogger(c *cli.Context) *log.Logger {
	logger := log.New(ioutil.Discard, "", 0)
	if c.Bool("verbose") {
		logger.SetOutput(os.Stderr)
	}
	return logger
}

func drawOptions(c *cli.Context) himawari.Options {
	opts := himawari.Options{
		Colorscale:         c.String("color"),
		OutputDir:          c.String("output"),
		Comment:            c.String("comment"),
		Workers:            c.Int("workers"),
		RemoveDecompressed: c.Bool("remove-decompressed"),
		Preview:            c.Int("preview"),
		PreviewColors:      c.Int("preview-colors"),
	}

	if converter := c.String("converter"); converter != "" {
		opts.Transformer = himawari.ExecTransformer{
			Command: converter,
			Dir:     c.String("scratch"),
		}
	}

	if c.Bool("pgmtoppm") {
		opts.Remapper = himawari.ExecRemapper{
			Dir: c.String("scratch"),
		}
	}

	return opts
}

func main() {
	app := cli.NewApp()

	app.Name = "himawari"
	app.Usage = "Himawari-8 gridded data image generator"
	app.Version = "1.0.0"

	cwd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			EnvVars: []string{"HIMAWARI_DB"},
			Value:   filepath.Join(cwd, defaultDB),
			Usage:   "path to calibration database",
		},
		&cli.BoolFlag{
			Name:    "verbose",
			Aliases: []string{"v"},
			Usage:   "increase verbosity",
		},
	}

	app.Commands = []*cli.Command{
		{
			Name:        "draw",
			Usage:       "Draw an image from a gridded data file",
			Description: "FILE is either a .geoss or a .geoss.bz2 file, for example 201606010230.tir.01.fld.geoss.bz2",
			ArgsUsage:   "FILE",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:  "color",
					Usage: "colorscale to apply; NRL, IRBD or IRWV for infrared bands, VIS for visual bands",
				},
				&cli.StringFlag{
					Name:  "output",
					Usage: "directory for the images, defaults to the directory of FILE",
				},
				&cli.StringFlag{
					Name:  "comment",
					Value: himawari.DefaultComment,
					Usage: "comment written into the image header",
				},
				&cli.IntFlag{
					Name:  "workers",
					Usage: "number of workers building the lookup table, defaults to the number of CPUs",
				},
				&cli.BoolFlag{
					Name:  "remove-decompressed",
					Usage: "remove the grid decompressed from a .bz2 file afterwards",
				},
				&cli.IntFlag{
					Name:  "preview",
					Usage: "also write a PNG preview no larger than this many pixels on each side",
				},
				&cli.IntFlag{
					Name:  "preview-colors",
					Value: 256,
					Usage: "maximum number of colors in a color preview",
				},
				&cli.StringFlag{
					Name:  "converter",
					Usage: "path to an external converter to use instead of the built-in one",
				},
				&cli.BoolFlag{
					Name:  "pgmtoppm",
					Usage: "colorize with the Netpbm pgmtoppm command",
				},
				&cli.StringFlag{
					Name:  "scratch",
					Usage: "directory for scratch files used by external commands",
				},
			},
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				db, err := calibration.NewDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, exitFailure)
				}
				defer db.Close()

				h := himawari.New(db, newLogger(c))

				result, err := h.Draw(context.Background(), c.Args().First(), drawOptions(c))
				if err != nil {
					return cli.NewExitError(err, exitCode(err))
				}

				for _, w := range result.Warnings {
					fmt.Fprintln(os.Stderr, "warning:", w)
				}

				for _, file := range []string{result.Greyscale, result.Color, result.Preview} {
					if file != "" {
						fmt.Println(file)
					}
				}

				return nil
			},
		},
		{
			Name:        "import",
			Usage:       "Import calibration tables",
			Description: "Each FILE is a text table of count and value pairs named after its channel, for example tir.01",
			ArgsUsage:   "FILE...",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				logger := newLogger(c)

				db, err := calibration.NewDB(c.String("db"))
				if err != nil {
					return cli.NewExitError(err, exitFailure)
				}
				defer db.Close()

				for _, file := range c.Args().Slice() {
					channel, err := db.ImportFile(file)
					if err != nil {
						return cli.NewExitError(err, exitFailure)
					}
					logger.Printf("Imported %s from %s\n", channel, file)
				}

				return nil
			},
		},
		{
			Name:      "info",
			Usage:     "Show what a gridded data file contains",
			ArgsUsage: "FILE",
			Action: func(c *cli.Context) error {
				if c.NArg() < 1 {
					cli.ShowCommandHelpAndExit(c, c.Command.FullName(), 1)
				}

				md, err := metadata.Parse(c.Args().First())
				if err != nil {
					return cli.NewExitError(err, exitCode(err))
				}

				when, err := md.Time()
				if err != nil {
					return cli.NewExitError(err, exitFailure)
				}

				fmt.Printf("Channel:    %s\n", md)
				fmt.Printf("Time:       %s\n", when.Format("2006-01-02 15:04 MST"))
				fmt.Printf("Compressed: %t\n", md.Compressed)
				fmt.Printf("Geometry:   %d x %d\n", md.Side(), md.Side())
				fmt.Printf("Grid size:  %d bytes\n", md.GridSize())

				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
