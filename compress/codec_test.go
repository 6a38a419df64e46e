package compress

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/crunch"
	"github.com/arloliu/crunch/errs"
	"github.com/arloliu/crunch/format"
)

// getAllCodecs returns all available codec implementations for testing
func getAllCodecs() map[string]Codec {
	return map[string]Codec{
		"NoOp":   NewNoOpCompressor(),
		"LZ4":    NewLZ4Compressor(),
		"S2":     NewS2Compressor(),
		"Zstd":   NewZstdCompressor(),
		"Crunch": NewCrunchCompressor(),
	}
}

func TestCompressionStats_Calculations(t *testing.T) {
	tests := []struct {
		name            string
		stats           CompressionStats
		expectedRatio   float64
		expectedSavings float64
	}{
		{
			name:            "good compression",
			stats:           CompressionStats{Algorithm: format.CompressionCrunch, OriginalSize: 1000, CompressedSize: 300},
			expectedRatio:   0.3,
			expectedSavings: 70.0,
		},
		{
			name:            "no compression benefit",
			stats:           CompressionStats{Algorithm: format.CompressionNone, OriginalSize: 500, CompressedSize: 500},
			expectedRatio:   1.0,
			expectedSavings: 0.0,
		},
		{
			name:            "compression overhead",
			stats:           CompressionStats{Algorithm: format.CompressionS2, OriginalSize: 100, CompressedSize: 120},
			expectedRatio:   1.2,
			expectedSavings: -20.0,
		},
		{
			name:            "zero original size",
			stats:           CompressionStats{Algorithm: format.CompressionLZ4, OriginalSize: 0, CompressedSize: 100},
			expectedRatio:   0.0,
			expectedSavings: 100.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.InDelta(t, tt.expectedRatio, tt.stats.CompressionRatio(), 0.001)
			require.InDelta(t, tt.expectedSavings, tt.stats.SpaceSavings(), 0.001)
		})
	}
}

func TestCreateCodec(t *testing.T) {
	for _, typ := range format.CompressionTypes() {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := CreateCodec(typ, "payload")
			require.NoError(t, err)
			require.NotNil(t, codec)

			builtin, err := GetCodec(typ)
			require.NoError(t, err)
			require.IsType(t, codec, builtin)
		})
	}

	_, err := CreateCodec(format.CompressionType(0xff), "payload")
	require.ErrorContains(t, err, "invalid payload compression")

	_, err = GetCodec(format.CompressionType(0xff))
	require.ErrorContains(t, err, "unsupported compression type")
}

func TestNoOpCompressor_RoundTrip(t *testing.T) {
	compressor := NewNoOpCompressor()
	data := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD}

	compressed, err := compressor.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &compressed[0])

	decompressed, err := compressor.Decompress(compressed)
	require.NoError(t, err)
	require.Same(t, &compressed[0], &decompressed[0])
}

func TestAllCodecs_EmptyData(t *testing.T) {
	for name, codec := range getAllCodecs() {
		t.Run(name, func(t *testing.T) {
			compressed, err := codec.Compress(nil)
			require.NoError(t, err)
			require.Nil(t, compressed)

			decompressed, err := codec.Decompress(nil)
			require.NoError(t, err)
			require.Nil(t, decompressed)

			compressed, err = codec.Compress([]byte{})
			require.NoError(t, err)

			decompressed, err = codec.Decompress(compressed)
			require.NoError(t, err)
			require.Empty(t, decompressed)
		})
	}
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	testCases := []struct {
		name string
		data []byte
	}{
		{name: "small_text", data: []byte("10 SYS 2061")},
		{name: "repeated_pattern", data: bytes.Repeat([]byte("ABCD"), 100)},
		{name: "binary_data", data: []byte{0x00, 0x01, 0x02, 0x03, 0xFF, 0xFE, 0xFD, 0xFC}},
		{name: "single_byte", data: []byte{0x42}},
		{name: "screen_runs", data: generateBenchmarkData(4096, "runs")},
		{name: "code", data: generateBenchmarkData(4096, "code")},
		{name: "noise", data: generateBenchmarkData(4096, "noise")},
		{name: "full_memory", data: make([]byte, 65536)},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			for _, tc := range testCases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)
					require.NotNil(t, compressed)

					t.Logf("Original: %d bytes, Compressed: %d bytes", len(tc.data), len(compressed))

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.Equal(t, tc.data, decompressed)
				})
			}
		})
	}
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalidInputs := []struct {
		name string
		data []byte
	}{
		{name: "random_bytes", data: []byte{0xFF, 0xFF, 0xFF, 0xFF}},
		{name: "text_as_compressed", data: []byte("this is not compressed data")},
		{name: "corrupted_header", data: []byte{0x00, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07}},
	}

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			if codecName == "NoOp" {
				t.Skip("NoOp codec doesn't validate data")
			}

			for _, input := range invalidInputs {
				t.Run(input.name, func(t *testing.T) {
					_, err := codec.Decompress(input.data)
					require.Error(t, err)
				})
			}
		})
	}
}

func TestAllCodecs_ConcurrentUsage(t *testing.T) {
	const numGoroutines = 8
	testData := bytes.Repeat([]byte("LDA #$00 STA $D020 "), 20)

	for codecName, codec := range getAllCodecs() {
		t.Run(codecName, func(t *testing.T) {
			compressed, err := codec.Compress(testData)
			require.NoError(t, err)

			var wg sync.WaitGroup
			failures := make(chan error, numGoroutines*2)
			for range numGoroutines {
				wg.Add(2)
				go func() {
					defer wg.Done()
					out, err := codec.Compress(testData)
					if err == nil && !bytes.Equal(out, compressed) {
						err = errors.New("compressed output differs")
					}
					failures <- err
				}()
				go func() {
					defer wg.Done()
					out, err := codec.Decompress(compressed)
					if err == nil && !bytes.Equal(out, testData) {
						err = errors.New("data mismatch")
					}
					failures <- err
				}()
			}
			wg.Wait()
			close(failures)

			for err := range failures {
				require.NoError(t, err)
			}
		})
	}
}

func TestCrunchCompressor(t *testing.T) {
	t.Run("runs", func(t *testing.T) {
		data := generateBenchmarkData(8192, "runs")

		crunched, err := NewCrunchCompressor().Compress(data)
		require.NoError(t, err)
		require.Less(t, len(crunched), len(data)/20)
	})

	t.Run("options", func(t *testing.T) {
		data := generateBenchmarkData(2048, "code")
		c := NewCrunchCompressor(crunch.WithMaxPasses(1))

		compressed, err := c.Compress(data)
		require.NoError(t, err)
		out, err := c.Decompress(compressed)
		require.NoError(t, err)
		require.Equal(t, data, out)
	})

	t.Run("invalid option", func(t *testing.T) {
		_, err := NewCrunchCompressor(crunch.WithMaxOffset(0)).Compress([]byte{1, 2, 3})
		require.ErrorIs(t, err, errs.ErrInvalidOption)
	})

	t.Run("payload too large", func(t *testing.T) {
		_, err := NewCrunchCompressor().Compress(make([]byte, maxPayload+1))
		require.ErrorIs(t, err, errs.ErrInputTooLarge)
	})
}

func TestMeasure(t *testing.T) {
	data := generateBenchmarkData(4096, "runs")

	for _, typ := range format.CompressionTypes() {
		t.Run(typ.String(), func(t *testing.T) {
			codec, err := GetCodec(typ)
			require.NoError(t, err)

			stats, err := Measure(typ, codec, data)
			require.NoError(t, err)
			require.Equal(t, typ, stats.Algorithm)
			require.Equal(t, int64(len(data)), stats.OriginalSize)
			require.Positive(t, stats.CompressedSize)
			require.GreaterOrEqual(t, stats.CompressionTimeNs, int64(0))
		})
	}

	t.Run("mismatch", func(t *testing.T) {
		_, err := Measure(format.CompressionNone, brokenCodec{}, data)
		require.ErrorContains(t, err, "round trip mismatch")
	})

	t.Run("compress error", func(t *testing.T) {
		_, err := Measure(format.CompressionNone, failingCodec{}, data)
		require.ErrorContains(t, err, "compression failed")
	})
}

// brokenCodec drops the last byte on decompression.
type brokenCodec struct{}

func (brokenCodec) Compress(data []byte) ([]byte, error)   { return data, nil }
func (brokenCodec) Decompress(data []byte) ([]byte, error) { return data[:len(data)-1], nil }

type failingCodec struct{}

func (failingCodec) Compress([]byte) ([]byte, error)   { return nil, fmt.Errorf("boom") }
func (failingCodec) Decompress([]byte) ([]byte, error) { return nil, nil }
