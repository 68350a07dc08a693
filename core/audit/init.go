// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

// Package audit provides the process-wide zerolog setup shared by the CLI
// and by package config once a configuration has been loaded.
package audit

import (
	"os"

	"github.com/rs/zerolog/log"
)

// SetDefaultLogger installs a console logger to stderr, used before a
// configuration has been loaded (flag parsing errors, config load failures).
func SetDefaultLogger() {
	log.Logger = log.Output(ConsoleWriter(os.Stderr))
}

func init() {
	SetDefaultLogger()
}
