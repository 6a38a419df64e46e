package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/crunch/decrunch"
	"github.com/arloliu/crunch/sfx"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in      string
		want    uint16
		wantErr bool
	}{
		{"$0801", 0x0801, false},
		{"0x080d", 0x080d, false},
		{"0XC000", 0xc000, false},
		{"2049", 2049, false},
		{" $ffff ", 0xffff, false},
		{"$10000", 0, true},
		{"65536", 0, true},
		{"", 0, true},
		{"$", 0, true},
		{"start", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseAddress(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func writePRG(t *testing.T, dir string, load uint16, body []byte) string {
	t.Helper()

	path := filepath.Join(dir, "in.prg")
	prg := append([]byte{byte(load), byte(load >> 8)}, body...)
	require.NoError(t, os.WriteFile(path, prg, 0o644))

	return path
}

func program() []byte {
	return bytes.Repeat([]byte("10 PRINT CHR$(205.5+RND(1)); : GOTO 10\x00"), 30)
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	in := writePRG(t, dir, 0x0801, program())
	out := filepath.Join(dir, "out.prg")
	chart := filepath.Join(dir, "cost.svg")

	var stdout, stderr bytes.Buffer
	err := run([]string{"-start", "$080d", "-line", "64", "-verify", "-chart", chart, in, out}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())
	require.Contains(t, stdout.String(), "$0801-")
	require.Contains(t, stdout.String(), "start $080d")

	image, err := os.ReadFile(out)
	require.NoError(t, err)
	p, err := decrunch.Unpack(image)
	require.NoError(t, err)
	require.Equal(t, program(), p.Data)
	require.Equal(t, uint16(0x0801), p.Load)
	require.Equal(t, uint16(0x080d), p.Start)

	n, err := sfx.LineNumber(image)
	require.NoError(t, err)
	require.Equal(t, 64, n)

	svg, err := os.ReadFile(chart)
	require.NoError(t, err)
	require.Contains(t, string(svg), "<svg")
}

func TestRunRaw(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.bin")
	require.NoError(t, os.WriteFile(in, program(), 0o644))
	out := filepath.Join(dir, "out.prg")

	var stdout, stderr bytes.Buffer
	require.Error(t, run([]string{"-raw", in, out}, &stdout, &stderr))

	require.NoError(t, run([]string{"-raw", "-load", "0x4000", in, out}, &stdout, &stderr))
	image, err := os.ReadFile(out)
	require.NoError(t, err)
	p, err := decrunch.Unpack(image)
	require.NoError(t, err)
	require.Equal(t, uint16(0x4000), p.Load)
	require.Equal(t, uint16(0x4000), p.Start)
}

func TestRunCompare(t *testing.T) {
	dir := t.TempDir()
	in := writePRG(t, dir, 0x1000, program())

	var stdout, stderr bytes.Buffer
	require.NoError(t, run([]string{"-compare", "-passes", "2", in, filepath.Join(dir, "out.prg")}, &stdout, &stderr))
	for _, name := range []string{"None", "Zstd", "S2", "LZ4", "Crunch"} {
		require.Contains(t, stdout.String(), name)
	}
}

func TestRunErrors(t *testing.T) {
	dir := t.TempDir()
	short := filepath.Join(dir, "short.prg")
	require.NoError(t, os.WriteFile(short, []byte{0x01}, 0o644))

	tests := []struct {
		name string
		args []string
	}{
		{"no arguments", nil},
		{"missing output", []string{short}},
		{"missing input", []string{filepath.Join(dir, "nope.prg"), filepath.Join(dir, "out.prg")}},
		{"missing load address", []string{short, filepath.Join(dir, "out.prg")}},
		{"bad address", []string{"-start", "zz", short, filepath.Join(dir, "out.prg")}},
		{"bad passes", []string{"-passes", "0", writePRG(t, dir, 0x1000, program()), filepath.Join(dir, "out.prg")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			require.Error(t, run(tt.args, &stdout, &stderr))
		})
	}
}
