package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/cwbudde/pycc/internal/config"
	"github.com/stretchr/testify/require"
)

func TestDefaultHasBigIntPromotionOn(t *testing.T) {
	cfg := config.Default()
	require.Equal(t, "0.13.0", cfg.ZigTarget)
	require.True(t, cfg.BigIntPromotion)
	require.False(t, cfg.DebugComments)
}

func TestLoadWithNoOverridesReturnsDefaults(t *testing.T) {
	cfg, err := config.Load("", config.Overrides{})
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadFlagOverridesWinOverDefault(t *testing.T) {
	target := "0.14.0"
	off := false
	cfg, err := config.Load("", config.Overrides{ZigTarget: &target, BigIntPromotion: &off})
	require.NoError(t, err)
	require.Equal(t, "0.14.0", cfg.ZigTarget)
	require.False(t, cfg.BigIntPromotion)
}

func TestLoadProjectFileOverridesDefaultsButNotFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pycc.yaml")
	require.NoError(t, os.WriteFile(path, []byte("zig_target: \"0.12.0\"\ndebug_comments: true\n"), 0o644))

	cfg, err := config.Load(path, config.Overrides{})
	require.NoError(t, err)
	require.Equal(t, "0.12.0", cfg.ZigTarget)
	require.True(t, cfg.DebugComments)

	flagTarget := "0.15.0"
	cfg2, err := config.Load(path, config.Overrides{ZigTarget: &flagTarget})
	require.NoError(t, err)
	require.Equal(t, "0.15.0", cfg2.ZigTarget)
}

func TestLoadMissingProjectFileIsNotAnError(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), config.Overrides{})
	require.NoError(t, err)
	require.Equal(t, config.Default(), cfg)
}

func TestLoadEnvOverridesDefaultButNotFlag(t *testing.T) {
	t.Setenv("PYCC_ZIG_TARGET", "0.11.0")
	t.Setenv("PYCC_BIG_INT_PROMOTION", "false")

	cfg, err := config.Load("", config.Overrides{})
	require.NoError(t, err)
	require.Equal(t, "0.11.0", cfg.ZigTarget)
	require.False(t, cfg.BigIntPromotion)

	flagTarget := "0.16.0"
	cfg2, err := config.Load("", config.Overrides{ZigTarget: &flagTarget})
	require.NoError(t, err)
	require.Equal(t, "0.16.0", cfg2.ZigTarget)
}
