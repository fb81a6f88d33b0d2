package palette

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrFieldCount is the cause of a ParseError for lines that do not hold
// exactly three values.
var ErrFieldCount = errors.New("expected 3 fields")

// ParseError reports a malformed line of a text palette.
type ParseError struct {
	Source string
	Line   int
	Text   string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("palette %q line %d (%q): %v", e.Source, e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// LoadError is returned by Load for any failure to read a palette file.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load palette file %q: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// maxLineLength bounds a single palette line, including whitespace.
const maxLineLength = 4096

// Parse reads a text palette: one color per line, written as three
// whitespace separated decimal values between 0 and 255, each optionally
// preceded by a single '+'.
func Parse(r io.Reader, name string) (*Palette, error) {
	var colors []Color

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 256), maxLineLength)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()

		c, err := parseColor(text)
		if err != nil {
			return nil, &ParseError{Source: name, Line: line, Text: text, Err: err}
		}
		colors = append(colors, c)
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return nil, &ParseError{Source: name, Line: line + 1, Err: err}
		}
		return nil, fmt.Errorf("could not read palette %q: %w", name, err)
	}

	return New(name, colors...)
}

func parseColor(s string) (Color, error) {
	fields := strings.Fields(s)
	if len(fields) != 3 {
		return Color{}, fmt.Errorf("%w, got %d", ErrFieldCount, len(fields))
	}

	var ch [3]uint8
	for i, f := range fields {
		v, err := strconv.ParseUint(strings.TrimPrefix(f, "+"), 10, 8)
		if err != nil {
			return Color{}, err
		}
		ch[i] = uint8(v)
	}

	return Color{R: ch[0], G: ch[1], B: ch[2]}, nil
}

// Load reads a palette file. Files with a .pal extension are read as RIFF
// palettes, everything else as text. The palette is named after the file.
func Load(path string) (*Palette, error) {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	f, err := os.Open(path)
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Error("could not close palette file", "name", path, "error", closeErr)
		}
	}()

	var pal *Palette
	if strings.EqualFold(ext, ".pal") {
		pal, err = ReadRIFF(f, name)
	} else {
		pal, err = Parse(f, name)
	}
	if err != nil {
		return nil, &LoadError{Path: path, Err: err}
	}

	return pal, nil
}

// Resolve returns the built-in palette called nameOrPath, or loads it from
// disk when no built-in has that name.
func Resolve(nameOrPath string) (*Palette, error) {
	if pal, ok := Builtin(nameOrPath); ok {
		return pal, nil
	}
	return Load(nameOrPath)
}
