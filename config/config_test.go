package config

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blkbrew/device"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()
	// Keep a blkbrew.yaml in the working directory from leaking in.
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	fs := pflag.NewFlagSet("blkbrew", pflag.ContinueOnError)
	RegisterFlags(fs)
	require.NoError(t, fs.Parse(args))
	return Load(fs)
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	assert.False(t, cfg.Debug)
	assert.Equal(t, uint64(2<<30), cfg.RealSizeByte)
	assert.Equal(t, uint64(16<<30), cfg.FakeSizeByte)
	assert.Equal(t, 31, cfg.WrapExponent)
	assert.Equal(t, 0, cfg.BlockOrder)
	assert.Equal(t, device.ResetManualUSB, cfg.ResetType)
	assert.Equal(t, uint64(0), cfg.StartAt)
	assert.Equal(t, uint64(math.MaxUint64), cfg.EndAt)
	assert.True(t, cfg.Write)
	assert.True(t, cfg.Read)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.File)
}

func TestLoad_Flags(t *testing.T) {
	cfg, err := load(t,
		"--debug-real-size=1m", "--debug-fake-size=4M", "--debug-wrap=20",
		"--reset-type=none", "--start-at=0x10", "--end-at=100",
		"--do-not-read", "--show-bad")
	require.NoError(t, err)

	assert.True(t, cfg.Debug, "debug-* flags imply --debug")
	assert.Equal(t, uint64(1<<20), cfg.RealSizeByte)
	assert.Equal(t, uint64(4<<20), cfg.FakeSizeByte)
	assert.Equal(t, 20, cfg.WrapExponent)
	assert.Equal(t, device.ResetNone, cfg.ResetType)
	assert.Equal(t, uint64(16), cfg.StartAt)
	assert.Equal(t, uint64(100), cfg.EndAt)
	assert.True(t, cfg.Write)
	assert.False(t, cfg.Read)
	assert.True(t, cfg.ShowBad)
}

func TestLoad_KeepFileImpliesDebug(t *testing.T) {
	cfg, err := load(t, "--debug-keep-file")
	require.NoError(t, err)
	assert.True(t, cfg.Debug)
	assert.True(t, cfg.KeepFile)
}

func TestLoad_Environment(t *testing.T) {
	t.Setenv("BLKBREW_RESET_TYPE", "usb")
	t.Setenv("BLKBREW_DEBUG_WRAP", "24")

	cfg, err := load(t)
	require.NoError(t, err)
	assert.Equal(t, device.ResetUSB, cfg.ResetType)
	assert.Equal(t, 24, cfg.WrapExponent)
	assert.True(t, cfg.Debug)
}

func TestLoad_FlagBeatsEnvironment(t *testing.T) {
	t.Setenv("BLKBREW_RESET_TYPE", "usb")

	cfg, err := load(t, "--reset-type=none")
	require.NoError(t, err)
	assert.Equal(t, device.ResetNone, cfg.ResetType)
}

func TestLoad_ConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, os.WriteFile(file, []byte("debug-fake-size: 8g\nlog-level: debug\nui: true\n"), 0600))

	cfg, err := load(t, "--config", file)
	require.NoError(t, err)
	assert.Equal(t, file, cfg.File)
	assert.Equal(t, uint64(8<<30), cfg.FakeSizeByte)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.UI)
	assert.True(t, cfg.Debug)
}

func TestLoad_MissingExplicitConfigFile(t *testing.T) {
	_, err := load(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		param string
	}{
		{"bad reset type", []string{"--reset-type=scsi"}, "reset type"},
		{"bad real size", []string{"--debug-real-size=lots"}, "real size"},
		{"bad fake size", []string{"--debug-fake-size="}, "fake size"},
		{"bad start", []string{"--start-at=-1"}, "start block"},
		{"bad end", []string{"--end-at=zz"}, "end block"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.args...)
			var cfgErr *device.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Equal(t, tt.param, cfgErr.Param)
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Target:       "/dev/sdz",
			RealSizeByte: 1 << 20,
			FakeSizeByte: 4 << 20,
			WrapExponent: 20,
			EndAt:        math.MaxUint64,
			LogLevel:     "info",
		}
	}
	require.NoError(t, valid().Validate())

	tests := []struct {
		name   string
		mutate func(c *Config)
		param  string
	}{
		{"no target", func(c *Config) { c.Target = "" }, "device"},
		{"inverted range", func(c *Config) { c.StartAt, c.EndAt = 10, 9 }, "range"},
		{"unknown reset", func(c *Config) { c.ResetType = 7 }, "reset type"},
		{"log level", func(c *Config) { c.LogLevel = "loud" }, "log level"},
		{"geometry when debugging", func(c *Config) { c.Debug = true; c.FakeSizeByte = 1 }, "fake size"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			var cfgErr *device.ConfigError
			require.ErrorAs(t, c.Validate(), &cfgErr)
			assert.Equal(t, tt.param, cfgErr.Param)
		})
	}

	c := valid()
	c.FakeSizeByte = 1
	assert.NoError(t, c.Validate(), "geometry is ignored for real devices")
}

func TestConfig_Geometry(t *testing.T) {
	c := &Config{RealSizeByte: 1, FakeSizeByte: 2, WrapExponent: 3, BlockOrder: 9}
	assert.Equal(t, device.Geometry{RealSizeByte: 1, FakeSizeByte: 2, WrapExponent: 3, BlockOrder: 9}, c.Geometry())
}
