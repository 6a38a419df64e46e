// Command crunch compresses a C64 program into a self-extracting PRG.
//
// Usage:
//
//	crunch [flags] in.prg out.prg
//
// The input is a PRG file whose first two bytes are its load address, unless
// -raw is given together with -load. The output runs with RUN and jumps to
// -start, which defaults to the load address.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/arloliu/crunch"
	"github.com/arloliu/crunch/compress"
	"github.com/arloliu/crunch/endian"
	"github.com/arloliu/crunch/format"
	"github.com/arloliu/crunch/internal/report"
	"github.com/arloliu/crunch/sfx"
)

var errUsage = errors.New("usage: crunch [flags] in.prg out.prg")

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// addressFlag is a 16-bit address given as $hex, 0xhex or decimal.
type addressFlag struct {
	value uint16
	set   bool
}

func (a *addressFlag) String() string {
	if !a.set {
		return ""
	}

	return fmt.Sprintf("$%04x", a.value)
}

func (a *addressFlag) Set(s string) error {
	v, err := parseAddress(s)
	if err != nil {
		return err
	}
	a.value, a.set = v, true

	return nil
}

func parseAddress(s string) (uint16, error) {
	s = strings.TrimSpace(s)
	base := 10
	switch {
	case strings.HasPrefix(s, "$"):
		s, base = s[1:], 16
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		s, base = s[2:], 16
	}
	v, err := strconv.ParseUint(s, base, 16)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q", s)
	}

	return uint16(v), nil
}

func run(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("crunch", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var start, load addressFlag
	fs.Var(&start, "start", "Start address after decrunching (default: load address)")
	fs.Var(&load, "load", "Load address of a raw input")
	passes := fs.Int("passes", crunch.DefaultMaxPasses, "Maximum number of parse passes")
	line := fs.Int("line", sfx.DefaultLineNumber, "Line number of the BASIC SYS line")
	raw := fs.Bool("raw", false, "Input has no load address header")
	verify := fs.Bool("verify", false, "Unpack the image and compare it with the input")
	compare := fs.Bool("compare", false, "Print the sizes reached by the other codecs")
	chartPath := fs.String("chart", "", "Write the cumulative bit cost of the parse as SVG")
	verbose := fs.Bool("v", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return errUsage
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	in, err := os.ReadFile(inPath)
	if err != nil {
		return err
	}

	var body []byte
	switch {
	case *raw && !load.set:
		return errors.New("-raw needs -load")
	case *raw:
		body = in
	default:
		if len(in) < 2 {
			return fmt.Errorf("%s: missing load address", inPath)
		}
		if !load.set {
			load.value = endian.Word(in, 0)
		}
		body = in[2:]
	}
	if !start.set {
		start.value = load.value
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	c, err := crunch.NewCompressor(
		crunch.WithMaxPasses(*passes),
		crunch.WithLineNumber(*line),
		crunch.WithVerify(*verify),
		crunch.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	res, err := c.Compress(body, load.value, start.value)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, res.Image, 0o644); err != nil {
		return err
	}

	st := res.Stats
	fmt.Fprintf(stdout, "%s: $%04x-$%04x, %d bytes -> %d bytes (%.1f%%), %d passes, start $%04x\n",
		inPath, load.value, int(load.value)+len(body), st.InputSize, st.ImageSize, st.Ratio()*100, st.Passes, start.value)
	fmt.Fprintf(stdout, "  %d literals, %d sequences (%d runs), %.0f bits\n",
		st.Literals, st.Sequences, st.Runs, st.Cost)

	if *compare {
		if err := printComparison(stdout, body); err != nil {
			return err
		}
	}

	if *chartPath != "" {
		if err := writeChart(*chartPath, inPath, res); err != nil {
			return err
		}
	}

	return nil
}

func printComparison(w io.Writer, body []byte) error {
	fmt.Fprintf(w, "  %-8s %8s %8s %10s\n", "codec", "size", "saved", "time")
	for _, typ := range format.CompressionTypes() {
		codec, err := compress.GetCodec(typ)
		if err != nil {
			return err
		}
		stats, err := compress.Measure(typ, codec, body)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "  %-8s %8d %7.1f%% %9.2fms\n",
			typ, stats.CompressedSize, stats.SpaceSavings(), float64(stats.CompressionTimeNs)/1e6)
	}

	return nil
}

func writeChart(path, title string, res *crunch.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.CostChart(f, title, res.Chain); err != nil {
		f.Close()
		return err
	}

	return f.Close()
}
