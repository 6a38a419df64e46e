package options

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/crunch/errs"
)

type testConfig struct {
	Passes   int
	Name     string
	Verify   bool
	LastCall string
}

func withPasses(n int) Option[*testConfig] {
	return New(func(c *testConfig) error {
		if err := InRange("passes", n, 1, 16); err != nil {
			return err
		}
		c.Passes = n
		c.LastCall = "passes"

		return nil
	})
}

func withName(name string) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.Name = name
		c.LastCall = "name"
	})
}

func withVerify(v bool) Option[*testConfig] {
	return NoError(func(c *testConfig) {
		c.Verify = v
		c.LastCall = "verify"
	})
}

func TestOption_New(t *testing.T) {
	t.Run("applies accepted value", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, withPasses(4).apply(cfg))
		require.Equal(t, 4, cfg.Passes)
	})

	t.Run("propagates rejection", func(t *testing.T) {
		cfg := &testConfig{}
		err := withPasses(0).apply(cfg)
		require.ErrorIs(t, err, errs.ErrInvalidOption)
		require.Contains(t, err.Error(), "passes")
		require.Zero(t, cfg.Passes)
	})
}

func TestOption_Apply(t *testing.T) {
	t.Run("applies in order", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withPasses(2), withName("tune"), withVerify(true))
		require.NoError(t, err)
		require.Equal(t, 2, cfg.Passes)
		require.Equal(t, "tune", cfg.Name)
		require.True(t, cfg.Verify)
		require.Equal(t, "verify", cfg.LastCall)
	})

	t.Run("stops at first error", func(t *testing.T) {
		cfg := &testConfig{}
		err := Apply(cfg, withName("first"), withPasses(99), withVerify(true))
		require.ErrorIs(t, err, errs.ErrInvalidOption)
		require.Equal(t, "first", cfg.Name)
		require.False(t, cfg.Verify)
		require.Equal(t, "name", cfg.LastCall)
	})

	t.Run("skips nil options", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Apply(cfg, nil, withName("x")))
		require.Equal(t, "x", cfg.Name)
	})

	t.Run("empty options", func(t *testing.T) {
		cfg := &testConfig{}
		require.NoError(t, Apply(cfg))
		require.Equal(t, testConfig{}, *cfg)
	})
}

func TestInRange(t *testing.T) {
	require.NoError(t, InRange("offset", 1, 1, 65536))
	require.NoError(t, InRange("offset", 65536, 1, 65536))
	require.ErrorIs(t, InRange("offset", 65537, 1, 65536), errs.ErrInvalidOption)
	require.ErrorIs(t, InRange("offset", -1, 0, 10), errs.ErrInvalidOption)
}
