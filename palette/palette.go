package palette

import (
	"errors"
	"fmt"
	"image/color"
)

// ErrEmpty is returned when a palette would end up with no colors.
var ErrEmpty = errors.New("palette has no colors")

// Color is an opaque 8-bit RGB palette entry.
type Color struct {
	R, G, B uint8
}

var _ color.Color = Color{}

func (c Color) RGBA() (uint32, uint32, uint32, uint32) {
	r, g, b := uint32(c.R), uint32(c.G), uint32(c.B)
	return r | r<<8, g | g<<8, b | b<<8, 0xFFFF
}

func (c Color) String() string {
	return fmt.Sprintf("(%d,%d,%d)", c.R, c.G, c.B)
}

// Palette is an ordered, non-empty set of reference colors. It is never
// modified after New returns and may be shared between goroutines.
type Palette struct {
	name   string
	colors []Color
}

func New(name string, colors ...Color) (*Palette, error) {
	if len(colors) == 0 {
		return nil, fmt.Errorf("palette %q: %w", name, ErrEmpty)
	}

	return &Palette{
		name:   name,
		colors: append([]Color(nil), colors...),
	}, nil
}

func (p *Palette) Name() string {
	return p.name
}

func (p *Palette) Len() int {
	if p == nil {
		return 0
	}
	return len(p.colors)
}

func (p *Palette) At(i int) Color {
	return p.colors[i]
}

func (p *Palette) Colors() []Color {
	return append([]Color(nil), p.colors...)
}

// ColorPalette returns the entries as a color.Palette, in order.
func (p *Palette) ColorPalette() color.Palette {
	pal := make(color.Palette, len(p.colors))
	for i, c := range p.colors {
		pal[i] = c
	}
	return pal
}

// Index returns the position of the entry nearest to q in RGB space. Alpha is
// ignored. When several entries are equally near, the first one wins.
func (p *Palette) Index(q color.NRGBA) int {
	if len(p.colors) == 0 {
		panic("palette: nearest color lookup on an empty palette")
	}

	ret, best := 0, distance(q, p.colors[0])
	for i := 1; i < len(p.colors); i++ {
		if d := distance(q, p.colors[i]); d < best {
			if d == 0 {
				return i
			}
			ret, best = i, d
		}
	}
	return ret
}

// Closest returns the nearest palette color with the alpha of q.
func (p *Palette) Closest(q color.NRGBA) color.NRGBA {
	c := p.colors[p.Index(q)]
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: q.A}
}

// distance is the squared euclidean distance, the root is not needed to
// compare candidates.
func distance(q color.NRGBA, c Color) int {
	dr := int(q.R) - int(c.R)
	dg := int(q.G) - int(c.G)
	db := int(q.B) - int(c.B)
	return dr*dr + dg*dg + db*db
}
