// Package pairset implements a bidirectional many-to-many index between
// filenames and localization keys, used by the project orchestrator to
// answer "which files currently know this key?" in O(1) plus result size.
//
// This is two plain maps plus a small invariant-preserving wrapper — no
// weak references or generic graph structure.
package pairset

// Set is a bidirectional filename↔key index. The zero value is not usable;
// construct with New.
type Set struct {
	byFile map[string]map[string]struct{}
	byKey  map[string]map[string]struct{}
}

// New returns an empty Set.
func New() *Set {
	return &Set{
		byFile: make(map[string]map[string]struct{}),
		byKey:  make(map[string]map[string]struct{}),
	}
}

// Add records that filename knows key. Idempotent.
func (s *Set) Add(filename, key string) {
	if s.byFile[filename] == nil {
		s.byFile[filename] = make(map[string]struct{})
	}

	s.byFile[filename][key] = struct{}{}

	if s.byKey[key] == nil {
		s.byKey[key] = make(map[string]struct{})
	}

	s.byKey[key][filename] = struct{}{}
}

// RemoveKey removes the (filename, key) pair. It is a no-op if the pair is
// not present. If filename or key end up with no remaining pairs, their
// entry is pruned from the index entirely.
func (s *Set) RemoveKey(filename, key string) {
	if keys, ok := s.byFile[filename]; ok {
		delete(keys, key)

		if len(keys) == 0 {
			delete(s.byFile, filename)
		}
	}

	if files, ok := s.byKey[key]; ok {
		delete(files, filename)

		if len(files) == 0 {
			delete(s.byKey, key)
		}
	}
}

// RemoveFile removes every pair involving filename.
func (s *Set) RemoveFile(filename string) {
	for key := range s.byFile[filename] {
		if files, ok := s.byKey[key]; ok {
			delete(files, filename)

			if len(files) == 0 {
				delete(s.byKey, key)
			}
		}
	}

	delete(s.byFile, filename)
}

// Keys returns the filenames that currently know key. The returned slice is
// a fresh copy in unspecified order; safe to retain.
func (s *Set) Keys(key string) []string {
	files := s.byKey[key]
	if len(files) == 0 {
		return nil
	}

	out := make([]string, 0, len(files))
	for f := range files {
		out = append(out, f)
	}

	return out
}

// FilesOf returns the keys currently known by filename. The returned slice
// is a fresh copy in unspecified order; safe to retain.
func (s *Set) FilesOf(filename string) []string {
	keys := s.byFile[filename]
	if len(keys) == 0 {
		return nil
	}

	out := make([]string, 0, len(keys))
	for k := range keys {
		out = append(out, k)
	}

	return out
}

// IsKnownByOther reports whether key is known by some filename other than
// excludeFilename. This is the "reserved key" predicate used during
// justification: a key is reserved for a file if some other file already
// owns it.
func (s *Set) IsKnownByOther(key, excludeFilename string) bool {
	for f := range s.byKey[key] {
		if f != excludeFilename {
			return true
		}
	}

	return false
}
