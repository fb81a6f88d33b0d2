package palette

import "sort"

// DefaultName is the palette used when none is given.
const DefaultName = "gruvbox"

var builtins = map[string][]Color{
	"gruvbox": rgbs(
		// backgrounds
		0x1d2021, 0x282828, 0x32302f, 0x3c3836, 0x504945, 0x665c54, 0x7c6f64,
		// foregrounds
		0x928374, 0xa89984, 0xbdae93, 0xd5c4a1, 0xebdbb2, 0xfbf1c7,
		// red, green, yellow, blue, purple, aqua, orange
		0xcc241d, 0xfb4934, 0x9d0006,
		0x98971a, 0xb8bb26, 0x79740e,
		0xd79921, 0xfabd2f, 0xb57614,
		0x458588, 0x83a598, 0x076678,
		0xb16286, 0xd3869b, 0x8f3f71,
		0x689d6a, 0x8ec07c, 0x427b58,
		0xd65d0e, 0xfe8019, 0xaf3a03,
	),
	"bw": rgbs(0x000000, 0xffffff),
	"gray16": func() []Color {
		res := make([]Color, 16)
		for i := range res {
			v := uint8(i * 0x11)
			res[i] = Color{R: v, G: v, B: v}
		}
		return res
	}(),
	"vga16": rgbs(
		0x000000, 0x0000aa, 0x00aa00, 0x00aaaa, 0xaa0000, 0xaa00aa, 0xaa5500, 0xaaaaaa,
		0x555555, 0x5555ff, 0x55ff55, 0x55ffff, 0xff5555, 0xff55ff, 0xffff55, 0xffffff,
	),
}

func rgbs(vals ...uint32) []Color {
	res := make([]Color, len(vals))
	for i, v := range vals {
		res[i] = Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}
	}
	return res
}

// Builtin returns the compiled-in palette with the given name.
func Builtin(name string) (*Palette, bool) {
	colors, ok := builtins[name]
	if !ok {
		return nil, false
	}
	return &Palette{name: name, colors: colors}, true
}

func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Default() *Palette {
	pal, _ := Builtin(DefaultName)
	return pal
}
