package project

import (
	"path/filepath"
	"regexp"
	"strings"

	"codeberg.org/locoforge/locoforge/config"
)

var (
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	disallowedRun = regexp.MustCompile(`[^A-Za-z0-9.]+`)
)

// derivePrefix computes the per-file key prefix for absFilename, an
// absolute path under srcAbs (the caller enumerates cfg.Src, so every live
// filename falls under it by construction; a filename that escapes it is a
// caller bug, not a data condition to diagnose here).
func derivePrefix(cfg *config.Config, srcAbs, absFilename string) string {
	rel, err := filepath.Rel(srcAbs, absFilename)
	if err != nil {
		rel = absFilename
	}

	rel = filepath.ToSlash(rel)

	dir := filepath.Dir(rel)
	base := filepath.Base(rel)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	if strings.EqualFold(name, "index") && dir != "." {
		name = filepath.Base(dir)
	}

	return cfg.Prefix + sanitizePrefixSegment(name) + "."
}

// sanitizePrefixSegment turns a filename stem into a kebab-case prefix
// segment: camelCase boundaries get a hyphen, then any run of characters
// outside [A-Za-z0-9.] collapses to a single hyphen, then the whole thing
// is lowercased.
func sanitizePrefixSegment(name string) string {
	s := camelBoundary.ReplaceAllString(name, "$1-$2")
	s = disallowedRun.ReplaceAllString(s, "-")

	return strings.ToLower(s)
}
