// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/rs/zerolog/log"
)

// readConfigFile loads configFilePath into cfg. YAML is a JSON superset,
// so a single yaml.Unmarshal handles both `.yaml`/`.yml` and `.json`; the
// extension only decides an extra sanity check for `.json` files.
// `.js`/`.mjs`/`.cjs` config modules are out of scope for a Go
// reimplementation — see DESIGN.md.
func (cfg *Config) readConfigFile(configFilePath string) error {
	if configFilePath == "" {
		return nil
	}

	if _, err := os.Stat(configFilePath); os.IsNotExist(err) {
		log.Info().Str("path", configFilePath).Msg("No configuration file found, using defaults")

		return nil
	}

	raw, err := os.ReadFile(configFilePath) // #nosec G304 -- path comes from CLI flag/default
	if err != nil {
		return fmt.Errorf("failed to read configuration file %s: %w", configFilePath, err)
	}

	switch strings.ToLower(filepath.Ext(configFilePath)) {
	case ".json":
		if !json.Valid(raw) {
			return fmt.Errorf("failed to parse JSON from %s: invalid document", configFilePath)
		}
	case ".yaml", ".yml":
		// no additional check
	default:
		return fmt.Errorf("unsupported configuration file extension for %s (supported: .yaml, .yml, .json)", configFilePath)
	}

	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("failed to parse configuration from %s: %w", configFilePath, err)
	}

	log.Info().Str("path", configFilePath).Msg("Successfully loaded configuration")

	return nil
}
