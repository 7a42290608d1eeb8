// Copyright 2026 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cmd

import (
	"io"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/guregu/null.v3"

	"github.com/google/x86lift/internal"
)

// state is shared by the commands of one invocation.
type state struct {
	fs     afero.Fs
	stdout io.Writer
	stderr io.Writer
	lookup func(string) (string, bool)
	logger *logrus.Logger

	configFile string
	conf       internal.Config
}

func newState() *state {
	return &state{
		fs:     afero.NewOsFs(),
		stdout: os.Stdout,
		stderr: os.Stderr,
		lookup: os.LookupEnv,
		logger: &logrus.Logger{
			Out:       os.Stderr,
			Formatter: new(logrus.TextFormatter),
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
		conf: internal.DefaultConfig(),
	}
}

// NewRoot command.
func NewRoot() *cobra.Command {
	return newRoot(newState())
}

func newRoot(st *state) *cobra.Command {
	root := &cobra.Command{
		Use:   "x86lift",
		Short: "x86lift disassembles 32-bit x86 code and lifts it to C-like text.",
		Example: `  x86lift <cmd> <pid|path> ...
  x86lift disasm --base 0x401000 code.bin
  x86lift lift --entry 0x08049010 a.out
  x86lift help  # displays this help message`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return st.setup(cmd.Flags())
		},
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().AddFlagSet(rootFlagSet(&st.configFile))
	root.SetOut(st.stdout)
	root.SetErr(st.stderr)
	root.AddCommand(ImageCommands(st)...)
	root.AddCommand(InfoCommand(st))
	return root
}

// Execute runs the root command on the process arguments and returns the
// exit code.
func Execute() int {
	st := newState()
	if err := newRoot(st).Execute(); err != nil {
		if !errors.Is(err, errIncomplete) {
			st.logger.Error(err)
		}
		return 1
	}
	return 0
}

func rootFlagSet(configFile *string) *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.StringVarP(configFile, "config", "c", "", "config file (default: "+internal.ConfigFileName+" in the x86lift config directory)")
	flags.String("base", "", "load address of a raw image, or a new base for an executable")
	flags.String("entry", "", "entry point (default: the image's own)")
	flags.Int64("concurrency", 0, "functions lifted at once by scan")
	flags.Bool("follow-calls", false, "explore direct call targets as part of the function")
	flags.Bool("prologues", false, "add frame-pointer prologues as entry points")
	flags.String("color", "", "listing colors: auto, always or never")
	flags.String("log-format", "", "log format: text or json")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	return flags
}

// getNullString and the other getters return a flag as a null value,
// valid when the flag was given.
func getNullString(flags *pflag.FlagSet, key string) null.String {
	v, err := flags.GetString(key)
	if err != nil {
		panic(err)
	}
	return null.NewString(v, flags.Changed(key))
}

func getNullBool(flags *pflag.FlagSet, key string) null.Bool {
	v, err := flags.GetBool(key)
	if err != nil {
		panic(err)
	}
	return null.NewBool(v, flags.Changed(key))
}

func getNullInt64(flags *pflag.FlagSet, key string) null.Int {
	v, err := flags.GetInt64(key)
	if err != nil {
		panic(err)
	}
	return null.NewInt(v, flags.Changed(key))
}

// configFromFlags returns the settings given on the command line.
func configFromFlags(flags *pflag.FlagSet) internal.Config {
	return internal.Config{
		Base:        getNullString(flags, "base"),
		Entry:       getNullString(flags, "entry"),
		Concurrency: getNullInt64(flags, "concurrency"),
		FollowCalls: getNullBool(flags, "follow-calls"),
		Prologues:   getNullBool(flags, "prologues"),
		Color:       getNullString(flags, "color"),
		LogFormat:   getNullString(flags, "log-format"),
		Verbose:     getNullBool(flags, "verbose"),
	}
}

// setup consolidates the configuration and prepares the logger.
func (st *state) setup(flags *pflag.FlagSet) error {
	path := st.configFile
	if path == "" {
		if dir, err := internal.ConfigDir(); err == nil {
			path = filepath.Join(dir, internal.ConfigFileName)
		}
	}
	conf, err := internal.LoadConfig(st.fs, path, st.lookup)
	if err != nil {
		return errors.Wrap(err, "couldn't load config")
	}
	st.conf = conf.Apply(configFromFlags(flags))

	switch st.conf.Color.String {
	case "auto", "always", "never":
	default:
		return errors.Errorf("unsupported color mode %q", st.conf.Color.String)
	}

	st.logger.SetOutput(st.stderr)
	if st.conf.Verbose.Bool {
		st.logger.SetLevel(logrus.DebugLevel)
	}
	switch st.conf.LogFormat.String {
	case "json":
		st.logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		st.logger.SetFormatter(&logrus.TextFormatter{DisableColors: !st.colorful(st.stderr)})
	default:
		return errors.Errorf("unsupported log format %q", st.conf.LogFormat.String)
	}
	st.logger.WithField("config", path).Debug("configured")
	return nil
}

// colorful reports whether output to w should be colored.
func (st *state) colorful(w io.Writer) bool {
	switch st.conf.Color.String {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
