// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import "flag"

// CLIFlags holds the parsed command-line surface.
type CLIFlags struct {
	ConfigPath string
	Dev        bool
	Watch      bool
	NoWatch    bool
	Verbose    bool
}

// ParseCommandLineArgs defines and parses the CLI flags. It registers them
// on a fresh FlagSet on every call, so tests may call it repeatedly within
// one process without panicking on redefinition.
func ParseCommandLineArgs(args []string) (CLIFlags, error) {
	fs := flag.NewFlagSet("locoforge", flag.ContinueOnError)

	var f CLIFlags

	fs.StringVar(&f.ConfigPath, "config", "./i18n-config.yaml", "Path to a locoforge configuration file.")
	fs.StringVar(&f.ConfigPath, "c", "./i18n-config.yaml", "Shorthand for --config.")
	fs.BoolVar(&f.Dev, "dev", false, "Enable development mode: write back justified sources and translation data.")
	fs.BoolVar(&f.Dev, "d", false, "Shorthand for --dev.")
	fs.BoolVar(&f.Watch, "watch", false, "Force watch mode on.")
	fs.BoolVar(&f.Watch, "w", false, "Shorthand for --watch.")
	fs.BoolVar(&f.NoWatch, "no-watch", false, "Force watch mode off.")
	fs.BoolVar(&f.Verbose, "verbose", false, "Echo the resolved configuration on startup.")
	fs.BoolVar(&f.Verbose, "v", false, "Shorthand for --verbose.")

	if err := fs.Parse(args); err != nil {
		return CLIFlags{}, err
	}

	return f, nil
}

// ResolveWatch applies §6's default: watch is on iff --dev, unless
// overridden by an explicit --watch or --no-watch flag.
func (f CLIFlags) ResolveWatch() bool {
	if f.NoWatch {
		return false
	}

	if f.Watch {
		return true
	}

	return f.Dev
}
