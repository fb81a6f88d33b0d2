package imagefile

import (
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/disintegration/imaging"
	"golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Error is returned by Load and Save.
type Error struct {
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("could not %s image %q: %v", e.Op, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

var encoders = map[string]string{
	".png":  "png",
	".jpg":  "jpeg",
	".jpeg": "jpeg",
	".gif":  "gif",
	".bmp":  "bmp",
	".tif":  "tiff",
	".tiff": "tiff",
}

// CanEncode reports whether Save supports the extension of path.
func CanEncode(path string) bool {
	_, ok := encoders[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load decodes the image at path. Any format registered with the image
// package is accepted; autoOrient applies the EXIF orientation of JPEG files.
func Load(path string, autoOrient bool) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &Error{Op: "open", Path: path, Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close image", "name", path, "error", closeErr)
		}
	}()

	img, err := imaging.Decode(f, imaging.AutoOrientation(autoOrient))
	if err != nil {
		return nil, &Error{Op: "decode", Path: path, Err: err}
	}
	return img, nil
}

// Save encodes img in the format given by the extension of path. The file is
// written under a temporary name and renamed once complete. GIF files use
// pal as their color table; it may be nil for other formats.
func Save(path string, img image.Image, pal color.Palette) (err error) {
	format, ok := encoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return &Error{Op: "encode", Path: path, Err: fmt.Errorf("unsupported output format: %q", filepath.Ext(path))}
	}

	if format == "jpeg" && !isOpaque(img) {
		slog.Warn("JPEG has no alpha channel, translucent pixels are blended onto black", "output", path)
	}

	destDir, destName := filepath.Split(path)
	if destDir == "" {
		destDir = "."
	}

	outFile, err := os.CreateTemp(destDir, destName+".*")
	if err != nil {
		return &Error{Op: "create", Path: path, Err: err}
	}
	canRename := false
	defer func() {
		if defErr := outFile.Sync(); defErr != nil && err == nil {
			err = &Error{Op: "flush", Path: path, Err: defErr}
		}
		if defErr := outFile.Close(); defErr != nil && err == nil {
			err = &Error{Op: "close", Path: path, Err: defErr}
		}

		if canRename && err == nil {
			if defErr := os.Rename(outFile.Name(), path); defErr != nil {
				err = &Error{Op: "rename", Path: path, Err: defErr}
			}
		}
		if err != nil {
			if defErr := os.Remove(outFile.Name()); defErr != nil {
				slog.Error("could not remove temporary file", "name", outFile.Name(), "error", defErr)
			}
		}
	}()

	if err = encode(outFile, format, img, pal); err != nil {
		return &Error{Op: "encode", Path: path, Err: err}
	}

	canRename = true
	return nil
}

func encode(f *os.File, format string, img image.Image, pal color.Palette) error {
	switch format {
	case "gif":
		if len(pal) == 0 || len(pal) > 256 {
			return fmt.Errorf("GIF needs a palette of 1 to 256 colors, got %d", len(pal))
		}
		return gif.Encode(f, img, &gif.Options{
			NumColors: len(pal),
			Quantizer: fixedQuantizer(pal),
			Drawer:    draw.Src,
		})
	case "jpeg":
		return jpeg.Encode(f, img, &jpeg.Options{Quality: 100})
	case "png":
		enc := png.Encoder{
			CompressionLevel: png.BestCompression,
			BufferPool:       pngPool,
		}
		return enc.Encode(f, img)
	case "bmp":
		return bmp.Encode(f, img)
	case "tiff":
		return tiff.Encode(f, img, &tiff.Options{Compression: tiff.Deflate})
	}
	return fmt.Errorf("unsupported output format: %s", format)
}

// isOpaque reports whether every pixel of img is fully opaque.
func isOpaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

// fixedQuantizer hands the GIF encoder a known palette instead of letting it
// build one from the image.
type fixedQuantizer color.Palette

func (q fixedQuantizer) Quantize(p color.Palette, _ image.Image) color.Palette {
	return append(p[:0], q...)
}

type pngEncoderBufferPool struct {
	pool sync.Pool
}

func (p *pngEncoderBufferPool) Get() *png.EncoderBuffer {
	return p.pool.Get().(*png.EncoderBuffer)
}

func (p *pngEncoderBufferPool) Put(buf *png.EncoderBuffer) {
	p.pool.Put(buf)
}

var pngPool = &pngEncoderBufferPool{
	pool: sync.Pool{
		New: func() any {
			return &png.EncoderBuffer{}
		},
	},
}
