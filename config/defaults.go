// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

// SetDefaults populates the configuration with default values, applied
// before the config file and environment overlay so either can override
// them.
func (cfg *Config) SetDefaults() {
	cfg.Src = "src"
	cfg.TranslationData = "i18n.json"
	cfg.Output = "locales/[locale].json"
	cfg.Prefix = ""
	cfg.Locales = []string{"en"}

	cfg.Localize = map[string]LocalizedElementConfig{
		"*": {Content: "text"},
	}
	cfg.Whitespace = map[string]string{"*": "Preserve"}
	cfg.Diagnostics = map[string]string{"all": "warn"}

	cfg.Log.Level = "info"
}
