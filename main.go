package main

import (
	"errors"
	"io"
	"log/slog"
	"os"

	"recolor/imagefile"
	"recolor/palette"
	"recolor/parallel"
	"recolor/remap"

	"github.com/alecthomas/kong"
)

type CLI struct {
	Workers int  `help:"Number of parallel workers, 0 uses all CPUs" default:"0"`
	Debug   bool `help:"Enable debug logging" default:"false"`

	Remap   remap.CLICmd   `cmd:"" default:"withargs" help:"Recolor an image with the nearest colors of a palette"`
	Palette palette.CLICmd `cmd:"" help:"Show, list or export palettes"`
}

const (
	exitFailure = 1
	exitPalette = 2
	exitImageIO = 3
	exitRemap   = 4
)

func exitCode(err error) int {
	var parseErr *palette.ParseError
	var loadErr *palette.LoadError
	var ioErr *imagefile.Error
	var panicErr *parallel.PanicError
	switch {
	case errors.As(err, &parseErr), errors.As(err, &loadErr), errors.Is(err, palette.ErrEmpty):
		return exitPalette
	case errors.As(err, &ioErr):
		return exitImageIO
	case errors.As(err, &panicErr):
		return exitRemap
	}
	return exitFailure
}

func newParser(cli *CLI, out io.Writer, options ...kong.Option) (*kong.Kong, error) {
	return kong.New(cli, append([]kong.Option{
		kong.Name("recolor"),
		kong.Description("Map every pixel of an image to the nearest color of a palette."),
		kong.UsageOnError(),
		kong.BindTo(out, (*io.Writer)(nil)),
	}, options...)...)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli, os.Stdout)
	if err != nil {
		panic(err)
	}
	kctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	level := slog.LevelInfo
	if cli.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	if err := kctx.Run(parallel.Workers(cli.Workers)); err != nil {
		slog.Error("failed", "command", kctx.Command(), "error", err)
		os.Exit(exitCode(err))
	}
}
