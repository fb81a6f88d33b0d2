package remap

import (
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync/atomic"

	"recolor/imagefile"
	"recolor/palette"
	"recolor/parallel"

	"github.com/alecthomas/kong"
)

type CLICmd struct {
	Paths        []string `arg:"" name:"path" help:"[palette] image: palette is a built-in name or a palette file, the built-in default is used when omitted"`
	Output       string   `help:"Output file, defaults to <palette>_<image> next to the source image" type:"path"`
	NoAutoOrient bool     `help:"Do not apply the EXIF orientation of the source image" default:"false"`
	Quiet        bool     `help:"Do not log progress" default:"false"`

	PaletteSrc string `kong:"-"`
	ImagePath  string `kong:"-"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	switch len(c.Paths) {
	case 1:
		c.PaletteSrc, c.ImagePath = palette.DefaultName, c.Paths[0]
	case 2:
		c.PaletteSrc, c.ImagePath = c.Paths[0], c.Paths[1]
	default:
		return fmt.Errorf("expected [palette] image, got %d arguments", len(c.Paths))
	}

	imagePath, err := filepath.Abs(c.ImagePath)
	if err != nil {
		return fmt.Errorf("invalid image path %q: %w", c.ImagePath, err)
	}
	c.ImagePath = imagePath

	return nil
}

func (c *CLICmd) Run(workers parallel.Workers, out io.Writer) error {
	pal, err := palette.Resolve(c.PaletteSrc)
	if err != nil {
		return err
	}

	logger := slog.Default().With("file", c.ImagePath, "palette", pal.Name())

	img, err := imagefile.Load(c.ImagePath, !c.NoAutoOrient)
	if err != nil {
		return err
	}

	dest := c.Output
	if dest == "" {
		dest = OutputPath(pal.Name(), c.ImagePath)
	}
	if !imagefile.CanEncode(dest) {
		png := strings.TrimSuffix(dest, filepath.Ext(dest)) + ".png"
		logger.Info("output format not supported, writing PNG", "requested", dest, "output", png)
		dest = png
	}

	opts := []Option{WithWorkers(int(workers))}
	if !c.Quiet {
		opts = append(opts, WithProgress(progressLogger(logger)))
	}

	size := img.Bounds().Size()
	logger.Info("applying palette", "colors", pal.Len(), "width", size.X, "height", size.Y)
	res, err := Apply(pal, img, opts...)
	if err != nil {
		return err
	}

	if err = imagefile.Save(dest, res, pal.ColorPalette()); err != nil {
		return err
	}

	logger.Debug("saved", "output", dest)
	fmt.Fprintln(out, dest)
	return nil
}

// progressLogger logs once every time another tenth of the image is done.
func progressLogger(logger *slog.Logger) ProgressFunc {
	var logged atomic.Int64
	return func(done, total int) {
		step := int64(done * 10 / total)
		for {
			last := logged.Load()
			if step <= last {
				return
			}
			if logged.CompareAndSwap(last, step) {
				logger.Info("progress", "percent", step*10)
				return
			}
		}
	}
}
