// Package config loads the parameters of a run from flags, BLKBREW_*
// environment variables and an optional blkbrew.yaml file, in that order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"blkbrew/device"
)

// Flag and configuration keys.
const (
	KeyConfig          = "config"
	KeyDebug           = "debug"
	KeyDebugRealSize   = "debug-real-size"
	KeyDebugFakeSize   = "debug-fake-size"
	KeyDebugWrap       = "debug-wrap"
	KeyDebugBlockOrder = "debug-block-order"
	KeyDebugKeepFile   = "debug-keep-file"
	KeyResetType       = "reset-type"
	KeyStartAt         = "start-at"
	KeyEndAt           = "end-at"
	KeyDoNotWrite      = "do-not-write"
	KeyDoNotRead       = "do-not-read"
	KeyUI              = "ui"
	KeyShowBad         = "show-bad"
	KeyLogLevel        = "log-level"
	KeyLogJSON         = "log-json"
)

const (
	DefaultRealSize = "2g"
	DefaultFakeSize = "16g"
	DefaultWrap     = 31
	EnvPrefix       = "BLKBREW"
)

var debugKeys = []string{KeyDebugRealSize, KeyDebugFakeSize, KeyDebugWrap, KeyDebugBlockOrder, KeyDebugKeepFile}

// Config is the validated parameter set of a run.
type Config struct {
	// Target is the device node, or the backing file (or its directory)
	// when Debug is set.
	Target string

	Debug        bool
	RealSizeByte uint64
	FakeSizeByte uint64
	WrapExponent int
	BlockOrder   int
	KeepFile     bool

	ResetType device.ResetType
	StartAt   uint64
	EndAt     uint64
	Write     bool
	Read      bool

	UI       bool
	ShowBad  bool
	LogLevel string
	LogJSON  bool

	// File is the configuration file that was read, if any.
	File string
}

type rawConfig struct {
	Debug      bool   `mapstructure:"debug"`
	RealSize   string `mapstructure:"debug-real-size"`
	FakeSize   string `mapstructure:"debug-fake-size"`
	Wrap       int    `mapstructure:"debug-wrap"`
	BlockOrder int    `mapstructure:"debug-block-order"`
	KeepFile   bool   `mapstructure:"debug-keep-file"`
	ResetType  string `mapstructure:"reset-type"`
	StartAt    string `mapstructure:"start-at"`
	EndAt      string `mapstructure:"end-at"`
	DoNotWrite bool   `mapstructure:"do-not-write"`
	DoNotRead  bool   `mapstructure:"do-not-read"`
	UI         bool   `mapstructure:"ui"`
	ShowBad    bool   `mapstructure:"show-bad"`
	LogLevel   string `mapstructure:"log-level"`
	LogJSON    bool   `mapstructure:"log-json"`
}

// RegisterFlags adds every run flag to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String(KeyConfig, "", "configuration file (default: blkbrew.yaml in ., $HOME/.blkbrew, /etc/blkbrew)")

	fs.Bool(KeyDebug, false, "emulate a fake-capacity drive on a file instead of opening a device")
	fs.String(KeyDebugRealSize, DefaultRealSize, "real size of the emulated drive")
	fs.String(KeyDebugFakeSize, DefaultFakeSize, "announced size of the emulated drive")
	fs.Int(KeyDebugWrap, DefaultWrap, "emulated addresses alias every 2^N bytes")
	fs.Int(KeyDebugBlockOrder, 0, "emulated block size is 2^N bytes (0 = 512)")
	fs.Bool(KeyDebugKeepFile, false, "do not remove the emulated drive's backing file")

	fs.String(KeyResetType, device.DefaultResetType.String(),
		"how the drive is reset between passes: "+resetTypeNames())
	fs.String(KeyStartAt, "0", "first block to check")
	fs.String(KeyEndAt, "", "last block to check (default: last block of the drive)")
	fs.Bool(KeyDoNotWrite, false, "skip the write pass")
	fs.Bool(KeyDoNotRead, false, "skip the read pass")

	fs.Bool(KeyUI, false, "full-screen progress display")
	fs.Bool(KeyShowBad, false, "list bad sectors too")
	fs.String(KeyLogLevel, "info", "log level: debug, info, warn, error")
	fs.Bool(KeyLogJSON, false, "log as JSON")
}

func resetTypeNames() string {
	var names []string
	for _, t := range device.ResetTypes() {
		names = append(names, t.String())
	}
	return strings.Join(names, ", ")
}

// Load reads the parameters. fs must carry the flags of RegisterFlags.
// Target is left empty for the caller to fill in.
func Load(fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	if err := v.BindPFlags(fs); err != nil {
		return nil, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if file := v.GetString(KeyConfig); file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("blkbrew")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.blkbrew")
		v.AddConfigPath("/etc/blkbrew")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var raw rawConfig
	if err := v.Unmarshal(&raw); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	cfg := &Config{
		Debug:        raw.Debug,
		WrapExponent: raw.Wrap,
		BlockOrder:   raw.BlockOrder,
		KeepFile:     raw.KeepFile,
		Write:        !raw.DoNotWrite,
		Read:         !raw.DoNotRead,
		UI:           raw.UI,
		ShowBad:      raw.ShowBad,
		LogLevel:     raw.LogLevel,
		LogJSON:      raw.LogJSON,
		File:         v.ConfigFileUsed(),
	}

	// Tuning the emulated drive only makes sense when emulating.
	for _, k := range debugKeys {
		if v.IsSet(k) {
			cfg.Debug = true
		}
	}

	var err error
	if cfg.RealSizeByte, err = ParseSize(raw.RealSize); err != nil {
		return nil, &device.ConfigError{Param: "real size", Reason: err.Error()}
	}
	if cfg.FakeSizeByte, err = ParseSize(raw.FakeSize); err != nil {
		return nil, &device.ConfigError{Param: "fake size", Reason: err.Error()}
	}
	if cfg.ResetType, err = device.ParseResetType(raw.ResetType); err != nil {
		return nil, err
	}
	if cfg.StartAt, err = ParseBlock(raw.StartAt); err != nil {
		return nil, &device.ConfigError{Param: "start block", Reason: err.Error()}
	}
	cfg.EndAt = math.MaxUint64
	if raw.EndAt != "" {
		if cfg.EndAt, err = ParseBlock(raw.EndAt); err != nil {
			return nil, &device.ConfigError{Param: "end block", Reason: err.Error()}
		}
	}

	return cfg, nil
}

// Validate rejects parameters no run could use.
func (c *Config) Validate() error {
	if c.Target == "" {
		return &device.ConfigError{Param: "device", Reason: "no device given"}
	}
	if c.StartAt > c.EndAt {
		return &device.ConfigError{
			Param:  "range",
			Reason: fmt.Sprintf("start block 0x%x is past end block 0x%x", c.StartAt, c.EndAt),
		}
	}
	if !isKnownReset(c.ResetType) {
		return &device.ConfigError{Param: "reset type", Reason: fmt.Sprintf("unknown reset type %d", int(c.ResetType))}
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return &device.ConfigError{Param: "log level", Reason: fmt.Sprintf("%q is not one of debug, info, warn, error", c.LogLevel)}
	}
	if c.Debug {
		return c.Geometry().Validate()
	}
	return nil
}

func isKnownReset(t device.ResetType) bool {
	for _, known := range device.ResetTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Geometry returns the emulated drive layout.
func (c *Config) Geometry() device.Geometry {
	return device.Geometry{
		RealSizeByte: c.RealSizeByte,
		FakeSizeByte: c.FakeSizeByte,
		WrapExponent: c.WrapExponent,
		BlockOrder:   c.BlockOrder,
	}
}
