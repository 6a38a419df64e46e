package crunch

import (
	"log/slog"

	"github.com/arloliu/crunch/internal/options"
	"github.com/arloliu/crunch/sfx"
)

const (
	// DefaultMaxPasses bounds the refinement loop. It is never reached in
	// practice since the loop stops at the first pass that does not improve.
	DefaultMaxPasses = 65536
	// DefaultMaxOffset is the longest back-reference the decruncher can follow.
	DefaultMaxOffset = 65536
)

// Config holds the compressor settings. Use the With* options to change it.
type Config struct {
	maxPasses  int
	maxOffset  int
	lineNumber int
	verify     bool
	logger     *slog.Logger
}

// Option represents a functional option for configuring a Compressor.
// This is a type alias for the generic Option interface specialized for Config.
type Option = options.Option[*Config]

func newConfig() *Config {
	return &Config{
		maxPasses:  DefaultMaxPasses,
		maxOffset:  DefaultMaxOffset,
		lineNumber: sfx.DefaultLineNumber,
		logger:     slog.New(slog.DiscardHandler),
	}
}

// WithMaxPasses limits the number of parse passes. One pass parses with the
// seed model only.
func WithMaxPasses(n int) Option {
	return options.New(func(c *Config) error {
		if err := options.InRange("max passes", n, 1, DefaultMaxPasses); err != nil {
			return err
		}
		c.maxPasses = n

		return nil
	})
}

// WithMaxOffset limits how far back sequences may reference. Smaller windows
// index faster at the cost of ratio.
func WithMaxOffset(n int) Option {
	return options.New(func(c *Config) error {
		if err := options.InRange("max offset", n, 1, DefaultMaxOffset); err != nil {
			return err
		}
		c.maxOffset = n

		return nil
	})
}

// WithLineNumber sets the line number of the BASIC SYS line in the image.
func WithLineNumber(n int) Option {
	return options.New(func(c *Config) error {
		if err := options.InRange("line number", n, 0, 63999); err != nil {
			return err
		}
		c.lineNumber = n

		return nil
	})
}

// WithVerify makes Compress unpack every image it builds and compare the
// result with the input.
func WithVerify(enabled bool) Option {
	return options.NoError(func(c *Config) {
		c.verify = enabled
	})
}

// WithLogger sets the logger receiving per-pass debug records and the final
// summary. A nil logger discards everything, which is the default.
func WithLogger(logger *slog.Logger) Option {
	return options.NoError(func(c *Config) {
		if logger == nil {
			logger = slog.New(slog.DiscardHandler)
		}
		c.logger = logger
	})
}
