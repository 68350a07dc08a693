// Copyright 2023 - 2025, VnPower and the PixivFE contributors
// SPDX-License-Identifier: AGPL-3.0-only

package config

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// validation errors.
var (
	errNoSrc             = errors.New("src is required")
	errNoLocales         = errors.New("at least one locale must be configured")
	errDuplicateLocale   = errors.New("duplicate locale in locales")
	errNoTranslationData = errors.New("translationData is required")
	errNoOutput          = errors.New("output is required")
	errOutputNoLocale    = errors.New("output must contain the [locale] placeholder")
	errInvalidWhitespace = errors.New("invalid whitespace policy")
	errInvalidHandling   = errors.New("invalid diagnostics handling")
	errInvalidContent    = errors.New("localize content must be \"text\", \"html\", or empty")
)

var validHandlings = map[string]bool{"ignore": true, "warn": true, "error": true}

var errInvalidLocaleTag = errors.New("locale is not a well-formed BCP 47 tag")

// validateAndSet validates the configuration and normalizes a few fields.
func (cfg *Config) validateAndSet() error {
	if cfg.Src == "" {
		return errNoSrc
	}

	if len(cfg.Locales) == 0 {
		return errNoLocales
	}

	seen := make(map[string]bool, len(cfg.Locales))
	for _, l := range cfg.Locales {
		if seen[l] {
			return fmt.Errorf("%w: %q", errDuplicateLocale, l)
		}

		seen[l] = true

		if _, err := language.Parse(l); err != nil {
			return fmt.Errorf("%w: %q", errInvalidLocaleTag, l)
		}
	}

	if cfg.TranslationData == "" {
		return errNoTranslationData
	}

	if cfg.Output == "" {
		return errNoOutput
	}

	if !strings.Contains(cfg.Output, "[locale]") {
		return errOutputNoLocale
	}

	for tag, name := range cfg.Whitespace {
		if _, ok := parseWhitespacePolicy(name); !ok {
			return fmt.Errorf("%w for %q: %q", errInvalidWhitespace, tag, name)
		}
	}

	for name, handling := range cfg.Diagnostics {
		if !validHandlings[strings.ToLower(handling)] {
			return fmt.Errorf("%w for %q: %q", errInvalidHandling, name, handling)
		}
	}

	for tag, le := range cfg.Localize {
		switch strings.ToLower(le.Content) {
		case "", "text", "html":
		default:
			return fmt.Errorf("%w (tag %q, got %q)", errInvalidContent, tag, le.Content)
		}
	}

	return nil
}
