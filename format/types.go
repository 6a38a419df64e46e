package format

type (
	CompressionType uint8
	TokenKind       uint8
)

const (
	CompressionNone   CompressionType = 0x1 // CompressionNone represents no compression.
	CompressionZstd   CompressionType = 0x2 // CompressionZstd represents Zstandard compression.
	CompressionS2     CompressionType = 0x3 // CompressionS2 represents S2 compression.
	CompressionLZ4    CompressionType = 0x4 // CompressionLZ4 represents LZ4 compression.
	CompressionCrunch CompressionType = 0x5 // CompressionCrunch represents the optimal-parse crunch stream.
)

const (
	TokenLiteral  TokenKind = 0x1 // TokenLiteral is a raw byte.
	TokenSequence TokenKind = 0x2 // TokenSequence is a back-reference with offset > 1.
	TokenRun      TokenKind = 0x3 // TokenRun is an offset-1 back-reference repeating the previous byte.
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "None"
	case CompressionZstd:
		return "Zstd"
	case CompressionS2:
		return "S2"
	case CompressionLZ4:
		return "LZ4"
	case CompressionCrunch:
		return "Crunch"
	default:
		return "Unknown"
	}
}

func (k TokenKind) String() string {
	switch k {
	case TokenLiteral:
		return "Literal"
	case TokenSequence:
		return "Sequence"
	case TokenRun:
		return "Run"
	default:
		return "Unknown"
	}
}

// CompressionTypes lists every compression type in declaration order.
func CompressionTypes() []CompressionType {
	return []CompressionType{CompressionNone, CompressionZstd, CompressionS2, CompressionLZ4, CompressionCrunch}
}
