package remap

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"path/filepath"
	"sync/atomic"
	"testing"

	"recolor/palette"
	"recolor/parallel"
)

func testPalette(t *testing.T, colors ...palette.Color) *palette.Palette {
	t.Helper()
	pal, err := palette.New("test", colors...)
	if err != nil {
		t.Fatalf("palette.New failed: %v", err)
	}
	return pal
}

// createGradientImage fills an image with a deterministic mix of colors and
// alpha values.
func createGradientImage(width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetNRGBA(x, y, color.NRGBA{
				R: uint8(x * 255 / max(width-1, 1)),
				G: uint8(y * 255 / max(height-1, 1)),
				B: uint8((x*7 + y*13) % 256),
				A: uint8((x + y) % 256),
			})
		}
	}
	return img
}

// sequential is the single threaded reference for Apply.
func sequential(pal *palette.Palette, img *image.NRGBA) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst.SetNRGBA(x-b.Min.X, y-b.Min.Y, pal.Closest(img.NRGBAAt(x, y)))
		}
	}
	return dst
}

func TestApply_EndToEnd(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{0, 0, 0, 255})
	img.SetNRGBA(1, 0, color.NRGBA{255, 255, 255, 128})
	pal := testPalette(t, palette.Color{R: 10, G: 10, B: 10}, palette.Color{R: 240, G: 240, B: 240})

	res, err := Apply(pal, img)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}

	want := []color.NRGBA{{10, 10, 10, 255}, {240, 240, 240, 128}}
	for x, w := range want {
		if got := res.NRGBAAt(x, 0); got != w {
			t.Errorf("pixel %d: got %v, want %v", x, got, w)
		}
	}
}

func TestApply_MatchesSequential(t *testing.T) {
	img := createGradientImage(97, 61)
	pal := palette.Default()
	want := sequential(pal, img)

	for _, workers := range []int{1, 2, 3, 8, 64, 0} {
		res, err := Apply(pal, img, WithWorkers(workers))
		if err != nil {
			t.Fatalf("workers=%d: Apply failed: %v", workers, err)
		}
		if res.Bounds() != want.Bounds() {
			t.Fatalf("workers=%d: bounds got %v, want %v", workers, res.Bounds(), want.Bounds())
		}
		if !bytes.Equal(res.Pix, want.Pix) {
			t.Errorf("workers=%d: output differs from sequential reference", workers)
		}
	}
}

func TestApply_Deterministic(t *testing.T) {
	img := createGradientImage(50, 40)
	pal, _ := palette.Builtin("vga16")

	first, err := Apply(pal, img, WithWorkers(7))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	second, err := Apply(pal, img, WithWorkers(7))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !bytes.Equal(first.Pix, second.Pix) {
		t.Error("two runs produced different output")
	}
}

func TestApply_Dimensions(t *testing.T) {
	pal := palette.Default()
	tests := []struct {
		name string
		rect image.Rectangle
	}{
		{"single pixel", image.Rect(0, 0, 1, 1)},
		{"single row", image.Rect(0, 0, 300, 1)},
		{"single column", image.Rect(0, 0, 1, 300)},
		{"offset origin", image.Rect(-5, 10, 20, 33)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(tt.rect)
			res, err := Apply(pal, img, WithWorkers(4))
			if err != nil {
				t.Fatalf("Apply failed: %v", err)
			}
			if res.Bounds().Size() != tt.rect.Size() {
				t.Errorf("size: got %v, want %v", res.Bounds().Size(), tt.rect.Size())
			}
			if res.Bounds().Min != (image.Point{}) {
				t.Errorf("origin: got %v, want (0,0)", res.Bounds().Min)
			}
		})
	}
}

func TestApply_OffsetOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(3, 4, 5, 5))
	img.SetNRGBA(3, 4, color.NRGBA{250, 250, 250, 9})
	img.SetNRGBA(4, 4, color.NRGBA{5, 5, 5, 200})
	pal := testPalette(t, palette.Color{}, palette.Color{R: 255, G: 255, B: 255})

	res, err := Apply(pal, img)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := res.NRGBAAt(0, 0); got != (color.NRGBA{255, 255, 255, 9}) {
		t.Errorf("(0,0): got %v", got)
	}
	if got := res.NRGBAAt(1, 0); got != (color.NRGBA{0, 0, 0, 200}) {
		t.Errorf("(1,0): got %v", got)
	}
}

func TestApply_RGBASource(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.Set(0, 0, color.NRGBA{200, 0, 0, 255})
	pal := testPalette(t, palette.Color{R: 255}, palette.Color{B: 255})

	res, err := Apply(pal, img)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if got := res.NRGBAAt(0, 0); got != (color.NRGBA{255, 0, 0, 255}) {
		t.Errorf("got %v, want red", got)
	}
}

func TestApply_SourceUntouched(t *testing.T) {
	img := createGradientImage(16, 16)
	before := append([]uint8(nil), img.Pix...)

	if _, err := Apply(palette.Default(), img); err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !bytes.Equal(img.Pix, before) {
		t.Error("source image was modified")
	}
}

func TestApply_EmptyImage(t *testing.T) {
	res, err := Apply(palette.Default(), image.NewNRGBA(image.Rect(0, 0, 0, 10)))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if !res.Bounds().Empty() {
		t.Errorf("bounds: got %v, want empty", res.Bounds())
	}
}

func TestApply_NoPalette(t *testing.T) {
	img := createGradientImage(4, 4)
	for _, pal := range []*palette.Palette{nil, {}} {
		if _, err := Apply(pal, img); !errors.Is(err, palette.ErrEmpty) {
			t.Errorf("error: got %v, want ErrEmpty", err)
		}
	}
}

func TestApply_Progress(t *testing.T) {
	img := createGradientImage(31, 29)
	var calls, last atomic.Int64
	var maxDone atomic.Int64

	_, err := Apply(palette.Default(), img, WithWorkers(4), WithProgress(func(done, total int) {
		calls.Add(1)
		if total != 31*29 {
			t.Errorf("total: got %d", total)
		}
		for {
			m := maxDone.Load()
			if int64(done) <= m || maxDone.CompareAndSwap(m, int64(done)) {
				break
			}
		}
		last.Store(int64(done))
	}))
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if calls.Load() != 29 {
		t.Errorf("calls: got %d, want one per row (29)", calls.Load())
	}
	if maxDone.Load() != 31*29 {
		t.Errorf("final count: got %d, want %d", maxDone.Load(), 31*29)
	}
}

func TestApply_WorkerFailure(t *testing.T) {
	img := createGradientImage(20, 20)
	var n atomic.Int64

	res, err := Apply(palette.Default(), img, WithWorkers(4), WithProgress(func(done, total int) {
		if n.Add(1) == 5 {
			panic("progress sink exploded")
		}
	}))
	if res != nil {
		t.Error("partial image returned after worker failure")
	}
	var perr *parallel.PanicError
	if !errors.As(err, &perr) {
		t.Fatalf("error: got %v, want *parallel.PanicError", err)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		palette string
		image   string
		want    string
	}{
		{"gruvbox", "/tmp/pics/cat.png", "/tmp/pics/gruvbox_cat.png"},
		{"sunset", "dog.jpg", "sunset_dog.jpg"},
		{"vga16", "a/b/c.tar.gif", "a/b/vga16_c.tar.gif"},
	}

	for _, tt := range tests {
		if got := OutputPath(tt.palette, filepath.FromSlash(tt.image)); got != filepath.FromSlash(tt.want) {
			t.Errorf("OutputPath(%q, %q): got %q, want %q", tt.palette, tt.image, got, tt.want)
		}
	}
}
