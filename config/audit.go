// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// SetupAudit configures the global logger's verbosity from cfg.Log.Level
// and --verbose. This tool has no HTTP-span or response-recording surface
// to set up, unlike a server process's audit setup.
func (cfg *Config) SetupAudit() {
	level := zerolog.InfoLevel

	switch cfg.Log.Level {
	case "debug":
		level = zerolog.DebugLevel
	case "info":
		level = zerolog.InfoLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	if cfg.Verbose {
		level = zerolog.DebugLevel
	}

	zerolog.SetGlobalLevel(level)

	log.Debug().Str("level", level.String()).Msg("logger level set")
}
