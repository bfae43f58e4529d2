package main

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/fedragon/go-imgcoords/internal"
	"github.com/fedragon/go-imgcoords/internal/dataset"
	"github.com/fedragon/go-imgcoords/internal/fs"

	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

func main() {
	app := &cli.App{
		Name:                 "imgcoords",
		Usage:                "Scans image files for EXIF coordinates and returns a GeoJSON or KML data file",
		Version:              "0.2.0",
		EnableBashCompletion: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write the dataset to `FILE` (atomically) instead of stdout",
				EnvVars: []string{"IMGCOORDS_OUTPUT"},
			},
			&cli.StringFlag{
				Name:    "cache",
				Usage:   "Bolt database `FILE` caching generated thumbnails",
				EnvVars: []string{"IMGCOORDS_CACHE"},
			},
			&cli.IntFlag{
				Name:    "workers",
				Aliases: []string{"w"},
				Usage:   "Number of concurrent workers",
				Value:   runtime.NumCPU(),
				EnvVars: []string{"IMGCOORDS_WORKERS"},
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Log every dropped file",
				EnvVars: []string{"IMGCOORDS_VERBOSE"},
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "scan",
				Usage: "scans a directory tree",
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:    "dir",
						Aliases: []string{"d"},
						Usage:   "Root `DIR`ECTORY of the tree to scan",
						Value:   ".",
						EnvVars: []string{"IMGCOORDS_DIR"},
					},
					&cli.StringFlag{
						Name:    "before",
						Aliases: []string{"b"},
						Usage:   "Maximum EXIF timestamp (inclusive) YYYY-MM-DD",
					},
					&cli.StringFlag{
						Name:    "after",
						Aliases: []string{"a"},
						Usage:   "Minimum EXIF timestamp (inclusive) YYYY-MM-DD",
					},
				),
				Action: scan,
			},
			{
				Name:   "import",
				Usage:  "imports a list of files from STDIN, eg. `find SOME_DIRECTORY | imgcoords import`",
				Flags:  commonFlags(),
				Action: importFiles,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "update",
			Aliases: []string{"u"},
			Usage:   "A GeoJSON or KML `FILE` to update, ignoring files already in it",
			EnvVars: []string{"IMGCOORDS_UPDATE"},
		},
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format [KML, GEOJSON]",
			Value:   dataset.FormatGeoJSON,
			EnvVars: []string{"IMGCOORDS_FORMAT"},
		},
		&cli.BoolFlag{
			Name:    "thumbnails",
			Aliases: []string{"t"},
			Usage:   "Generate thumbnails for GeoJSON",
			EnvVars: []string{"IMGCOORDS_THUMBNAILS"},
		},
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.DisableStacktrace = true
	if !verbose {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}

func expand(path string) (string, error) {
	if path == "" {
		return "", nil
	}

	return homedir.Expand(path)
}

func parseDate(c *cli.Context, name string) (*time.Time, error) {
	if !c.IsSet(name) {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, c.String(name))
	if err != nil {
		return nil, fmt.Errorf("bad date for --%s: %w", name, err)
	}

	return &t, nil
}

func options(c *cli.Context) (internal.Options, error) {
	opts := internal.Options{
		Format:     c.String("format"),
		Thumbnails: c.Bool("thumbnails"),
		NumWorkers: c.Int("workers"),
	}

	var err error
	if opts.Update, err = expand(c.String("update")); err != nil {
		return opts, err
	}
	if opts.Output, err = expand(c.String("output")); err != nil {
		return opts, err
	}
	if opts.CachePath, err = expand(c.String("cache")); err != nil {
		return opts, err
	}

	return opts, nil
}

func run(c *cli.Context, opts internal.Options, source func(*zap.Logger) internal.Source) error {
	logger, err := newLogger(c.Bool("verbose"))
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Determined number of workers", zap.Int("num_workers", opts.NumWorkers))

	if err := internal.NewRunner(logger, opts, os.Stdout).Run(context.Background(), source(logger)); err != nil {
		logger.Error("Run failed", zap.Error(err))
		return cli.Exit("", 1)
	}

	return nil
}

func scan(c *cli.Context) error {
	opts, err := options(c)
	if err != nil {
		return err
	}

	if opts.Before, err = parseDate(c, "before"); err != nil {
		return err
	}
	if opts.After, err = parseDate(c, "after"); err != nil {
		return err
	}

	root, err := expand(c.String("dir"))
	if err != nil {
		return err
	}

	return run(c, opts, func(logger *zap.Logger) internal.Source {
		return func() <-chan string {
			return fs.Walk(logger, root)
		}
	})
}

func importFiles(c *cli.Context) error {
	opts, err := options(c)
	if err != nil {
		return err
	}

	return run(c, opts, func(logger *zap.Logger) internal.Source {
		return func() <-chan string {
			return fs.ReadLines(logger, os.Stdin)
		}
	})
}
