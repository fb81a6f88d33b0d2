package remap

import (
	"fmt"
	"image"
	"image/color"
	"path/filepath"
	"sync/atomic"

	"recolor/palette"
	"recolor/parallel"

	"github.com/disintegration/imaging"
)

// ProgressFunc receives the number of pixels remapped so far. It may be
// called from several goroutines at once and done is not monotonic across
// calls.
type ProgressFunc func(done, total int)

type config struct {
	workers  int
	progress ProgressFunc
}

type Option func(*config)

// WithWorkers sets the number of goroutines. Values below 1 use GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *config) { c.workers = n }
}

func WithProgress(f ProgressFunc) Option {
	return func(c *config) { c.progress = f }
}

// bands per worker, so that slow bands do not leave workers idle at the end
const bandsPerWorker = 4

// Apply returns a copy of img where each pixel is replaced by its nearest
// palette color, keeping the pixel's alpha. The result always has its origin
// at (0, 0) and the same size as img; img itself is left untouched.
//
// Rows are split into disjoint bands remapped in parallel. Every band writes
// only its own rows of the output, so no locking is involved, and the output
// does not depend on the number of workers.
func Apply(pal *palette.Palette, img image.Image, opts ...Option) (*image.NRGBA, error) {
	if pal.Len() == 0 {
		return nil, palette.ErrEmpty
	}

	var conf config
	for _, opt := range opts {
		opt(&conf)
	}

	size := img.Bounds().Size()
	if size.X <= 0 || size.Y <= 0 {
		return image.NewNRGBA(image.Rect(0, 0, size.X, size.Y)), nil
	}

	src := imaging.Clone(img)
	dst := image.NewNRGBA(src.Rect)
	width, height := src.Rect.Dx(), src.Rect.Dy()

	pool := parallel.Start(conf.workers)
	total := width * height
	var done atomic.Int64

	bands := min(pool.Workers()*bandsPerWorker, height)
	rowsPerBand := (height + bands - 1) / bands
	for y0 := 0; y0 < height; y0 += rowsPerBand {
		y1 := min(y0+rowsPerBand, height)
		pool.Do(func() {
			for y := y0; y < y1; y++ {
				remapRow(pal, src, dst, y)
				if conf.progress != nil {
					conf.progress(int(done.Add(int64(width))), total)
				}
			}
		})
	}

	if err := pool.Wait(true); err != nil {
		return nil, fmt.Errorf("remap aborted: %w", err)
	}

	return dst, nil
}

func remapRow(pal *palette.Palette, src, dst *image.NRGBA, y int) {
	width := src.Rect.Dx()
	s := src.Pix[y*src.Stride : y*src.Stride+width*4 : y*src.Stride+width*4]
	d := dst.Pix[y*dst.Stride : y*dst.Stride+width*4 : y*dst.Stride+width*4]
	for i := 0; i < len(s); i += 4 {
		c := pal.Closest(color.NRGBA{R: s[i], G: s[i+1], B: s[i+2], A: s[i+3]})
		d[i], d[i+1], d[i+2], d[i+3] = c.R, c.G, c.B, c.A
	}
}

// OutputPath names the remapped copy of imagePath after the palette:
// <dir>/<palette>_<file>.
func OutputPath(paletteName, imagePath string) string {
	dir, file := filepath.Split(imagePath)
	return filepath.Join(dir, paletteName+"_"+file)
}
