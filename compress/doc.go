// Package compress puts crunch and general purpose codecs behind one
// interface, so that crunch can be measured against them on the same
// payloads.
//
// # Overview
//
// Crunch targets a single machine: payloads are C64 program bodies of at
// most 64 KiB, decompressed by a 6502 in place. The baselines are the
// codecs a modern system would pick for the same bytes:
//   - None: No compression, the reference row
//   - Zstd: Best general purpose ratio
//   - S2: Fast LZ77 with a compact format
//   - LZ4: Fast block format
//   - Crunch: Optimal-parse stream, as stored in self-extracting images
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Supported Algorithms
//
// **Crunch** (format.CompressionCrunch)
//
//	codec := compress.NewCrunchCompressor(crunch.WithMaxPasses(8))
//	stream, _ := codec.Compress(data)
//	original, _ := codec.Decompress(stream)
//
// The stream is encoded to end at $FFFF and carries its own end address, so
// no framing is added. Compression is slow, since every pass parses the
// whole buffer; decompression is a single backward scan.
//
// **Zstandard (Zstd)** (format.CompressionZstd)
//
// Uses the pure Go encoder from klauspost/compress at its best level. With
// cgo available, building with the gozstd tag switches to valyala/gozstd.
//
// **S2** (format.CompressionS2) and **LZ4** (format.CompressionLZ4)
//
// Block formats from klauspost/compress/s2 and pierrec/lz4, both at their
// strongest setting.
//
// # Measuring
//
// Measure runs one round trip and returns a CompressionStats:
//
//	for _, typ := range format.CompressionTypes() {
//	    codec, _ := compress.GetCodec(typ)
//	    stats, err := compress.Measure(typ, codec, body)
//	    if err != nil {
//	        return err
//	    }
//	    fmt.Printf("%-8s %6d %.2f%%\n", typ, stats.CompressedSize, stats.SpaceSavings())
//	}
//
// # Thread Safety
//
// All codec implementations are safe for concurrent use. Encoders and
// decoders that hold state are pooled.
package compress
