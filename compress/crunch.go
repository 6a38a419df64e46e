package compress

import (
	"github.com/arloliu/crunch"
	"github.com/arloliu/crunch/decrunch"
)

// CrunchCompressor wraps bare crunch streams in the Codec interface.
//
// The payload is placed at the top of the address space, so any payload of
// up to 64 KiB fits. The stream records its own load address and length,
// which Decompress recovers without extra framing.
type CrunchCompressor struct {
	opts []crunch.Option
}

var _ Codec = (*CrunchCompressor)(nil)

// NewCrunchCompressor creates a crunch codec. Invalid options are reported
// by Compress.
func NewCrunchCompressor(opts ...crunch.Option) CrunchCompressor {
	return CrunchCompressor{opts: opts}
}

// Compress encodes data as a crunch stream ending at $FFFF.
func (c CrunchCompressor) Compress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	s, err := crunch.Encode(data, uint16(crunch.MaxInputSize-len(data)), c.opts...)
	if err != nil {
		return nil, err
	}

	return s.Data, nil
}

// Decompress decodes a crunch stream.
func (c CrunchCompressor) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	out, _, err := decrunch.DecodeStream(data)

	return out, err
}
