package palette

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/lucasb-eyer/go-colorful"
)

type CLICmd struct {
	Source string `arg:"" optional:"" help:"Built-in palette name or palette file (text or RIFF .pal)"`
	List   bool   `help:"List built-in palette names" default:"false"`
	Export string `help:"Write the palette to this file in RIFF PAL format" type:"path"`
}

func (c *CLICmd) Validate(kctx *kong.Context) error {
	if c.List {
		return nil
	}
	if c.Source == "" {
		return fmt.Errorf("no palette given")
	}
	if c.Export != "" && !strings.EqualFold(filepath.Ext(c.Export), ".pal") {
		return fmt.Errorf("export file %q must have a .pal extension", c.Export)
	}
	return nil
}

func (c *CLICmd) Run(out io.Writer) error {
	if c.List {
		for _, name := range BuiltinNames() {
			pal, _ := Builtin(name)
			fmt.Fprintf(out, "%s\t%d colors\n", name, pal.Len())
		}
		return nil
	}

	pal, err := Resolve(c.Source)
	if err != nil {
		return err
	}

	if err = Describe(out, pal); err != nil {
		return err
	}

	if c.Export != "" {
		if err = export(c.Export, pal); err != nil {
			return err
		}
		slog.Info("palette exported", "palette", pal.Name(), "file", c.Export, "colors", pal.Len())
	}

	return nil
}

// Describe writes one line per palette entry: index, channels and hex code.
func Describe(w io.Writer, pal *Palette) error {
	if _, err := fmt.Fprintf(w, "# %s: %d colors\n", pal.Name(), pal.Len()); err != nil {
		return err
	}
	for i, c := range pal.colors {
		cf, _ := colorful.MakeColor(c)
		if _, err := fmt.Fprintf(w, "%3d  %3d %3d %3d  %s\n", i, c.R, c.G, c.B, cf.Hex()); err != nil {
			return err
		}
	}
	return nil
}

func export(path string, pal *Palette) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("could not create palette file %q: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("could not close palette file %q: %w", path, closeErr)
		}
	}()

	if _, err = WriteRIFF(f, pal); err != nil {
		return fmt.Errorf("could not write palette file %q: %w", path, err)
	}
	return nil
}
