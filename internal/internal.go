// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package internal holds the configuration shared by the x86lift commands.
package internal

import (
	"errors"
	"fmt"
	"os"
	"os/user"
	"path/filepath"
	"runtime"
	"strconv"

	"github.com/mstoykov/envconfig"
	"github.com/spf13/afero"
	"gopkg.in/guregu/null.v3"
	"gopkg.in/yaml.v3"
)

const (
	configDirEnvKey = "X86LIFT_CONFIG_DIR"

	// ConfigFileName is the name of the config file inside ConfigDir.
	ConfigFileName = "config.yaml"
)

// ConfigDir returns the directory holding the x86lift config file.
func ConfigDir() (string, error) {
	if configDir := os.Getenv(configDirEnvKey); configDir != "" {
		return configDir, nil
	}
	if runtime.GOOS == "windows" {
		return filepath.Join(os.Getenv("APPDATA"), "x86lift"), nil
	}
	homeDir := guessUnixHomeDir()
	if homeDir == "" {
		return "", errors.New("unable to get current user home directory: os/user lookup failed; $HOME is empty")
	}
	return filepath.Join(homeDir, ".config", "x86lift"), nil
}

func guessUnixHomeDir() string {
	usr, err := user.Current()
	if err == nil {
		return usr.HomeDir
	}
	return os.Getenv("HOME")
}

// Config holds the settings of a run. Fields are valid when some layer
// set them.
type Config struct {
	Base        null.String `yaml:"base" envconfig:"X86LIFT_BASE"`
	Entry       null.String `yaml:"entry" envconfig:"X86LIFT_ENTRY"`
	Concurrency null.Int    `yaml:"concurrency" envconfig:"X86LIFT_CONCURRENCY"`
	FollowCalls null.Bool   `yaml:"follow_calls" envconfig:"X86LIFT_FOLLOW_CALLS"`
	Prologues   null.Bool   `yaml:"prologues" envconfig:"X86LIFT_PROLOGUES"`

	Color     null.String `yaml:"color" envconfig:"X86LIFT_COLOR"`
	LogFormat null.String `yaml:"log_format" envconfig:"X86LIFT_LOG_FORMAT"`
	Verbose   null.Bool   `yaml:"verbose" envconfig:"X86LIFT_VERBOSE"`
}

// DefaultConfig returns the built-in defaults. None of its fields are
// valid, so every other layer overrides them.
func DefaultConfig() Config {
	return Config{
		Concurrency: null.NewInt(10, false),
		FollowCalls: null.NewBool(false, false),
		Prologues:   null.NewBool(false, false),
		Color:       null.NewString("auto", false),
		LogFormat:   null.NewString("text", false),
		Verbose:     null.NewBool(false, false),
	}
}

// Apply returns c with the valid fields of cfg applied over it.
func (c Config) Apply(cfg Config) Config {
	if cfg.Base.Valid {
		c.Base = cfg.Base
	}
	if cfg.Entry.Valid {
		c.Entry = cfg.Entry
	}
	if cfg.Concurrency.Valid && cfg.Concurrency.Int64 > 0 {
		c.Concurrency = cfg.Concurrency
	}
	if cfg.FollowCalls.Valid {
		c.FollowCalls = cfg.FollowCalls
	}
	if cfg.Prologues.Valid {
		c.Prologues = cfg.Prologues
	}
	if cfg.Color.Valid && cfg.Color.String != "" {
		c.Color = cfg.Color
	}
	if cfg.LogFormat.Valid && cfg.LogFormat.String != "" {
		c.LogFormat = cfg.LogFormat
	}
	if cfg.Verbose.Valid {
		c.Verbose = cfg.Verbose
	}
	return c
}

// UnmarshalYAML reads the config file form, in which absent keys stay
// invalid.
func (c *Config) UnmarshalYAML(n *yaml.Node) error {
	var raw struct {
		Base        *string `yaml:"base"`
		Entry       *string `yaml:"entry"`
		Concurrency *int64  `yaml:"concurrency"`
		FollowCalls *bool   `yaml:"follow_calls"`
		Prologues   *bool   `yaml:"prologues"`
		Color       *string `yaml:"color"`
		LogFormat   *string `yaml:"log_format"`
		Verbose     *bool   `yaml:"verbose"`
	}
	if err := n.Decode(&raw); err != nil {
		return err
	}
	*c = Config{
		Base:        null.StringFromPtr(raw.Base),
		Entry:       null.StringFromPtr(raw.Entry),
		Concurrency: null.IntFromPtr(raw.Concurrency),
		FollowCalls: null.BoolFromPtr(raw.FollowCalls),
		Prologues:   null.BoolFromPtr(raw.Prologues),
		Color:       null.StringFromPtr(raw.Color),
		LogFormat:   null.StringFromPtr(raw.LogFormat),
		Verbose:     null.BoolFromPtr(raw.Verbose),
	}
	return nil
}

// ReadConfigFile reads the YAML config at path. A missing file yields an
// empty config.
func ReadConfigFile(fs afero.Fs, path string) (Config, error) {
	data, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, err
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, nil
}

// ConfigFromEnv reads the X86LIFT_* variables through lookup.
func ConfigFromEnv(lookup func(string) (string, bool)) (Config, error) {
	var c Config
	if err := envconfig.Process("", &c, lookup); err != nil {
		return Config{}, err
	}
	return c, nil
}

// LoadConfig consolidates the defaults, the config file at path and the
// environment, in increasing precedence. An empty path skips the file.
func LoadConfig(fs afero.Fs, path string, lookup func(string) (string, bool)) (Config, error) {
	conf := DefaultConfig()
	if path != "" {
		fileConf, err := ReadConfigFile(fs, path)
		if err != nil {
			return conf, err
		}
		conf = conf.Apply(fileConf)
	}
	envConf, err := ConfigFromEnv(lookup)
	if err != nil {
		return conf, err
	}
	return conf.Apply(envConf), nil
}

// ParseAddr parses a 32-bit address in decimal, or hex with a 0x prefix.
func ParseAddr(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid address %q: %w", s, err)
	}
	return uint32(v), nil
}

// Addr parses a valid address field. ok is false when the field is
// unset.
func Addr(s null.String) (addr uint32, ok bool, err error) {
	if !s.Valid || s.String == "" {
		return 0, false, nil
	}
	addr, err = ParseAddr(s.String)
	return addr, err == nil, err
}
